package store

import (
	"context"
	"fmt"
	"testing"
)

func TestLoadEmptyStore(t *testing.T) {
	s := Store{Dir: t.TempDir()}
	p, err := s.Load(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(p.RecentRouteIDs) != 0 {
		t.Fatalf("recent = %v", p.RecentRouteIDs)
	}
	if p.MapPort != 0 {
		t.Fatalf("map port = %d", p.MapPort)
	}
}

func TestTouchRouteOrdersNewestFirst(t *testing.T) {
	ctx := context.Background()
	s := Store{Dir: t.TempDir()}

	for _, id := range []string{"1", "2", "3"} {
		if err := s.TouchRoute(ctx, id); err != nil {
			t.Fatalf("touch %s: %v", id, err)
		}
	}
	// Reopening an old route moves it to the front without duplicating.
	if err := s.TouchRoute(ctx, "1"); err != nil {
		t.Fatalf("re-touch: %v", err)
	}

	p, err := s.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	want := []string{"1", "3", "2"}
	if len(p.RecentRouteIDs) != len(want) {
		t.Fatalf("recent = %v, want %v", p.RecentRouteIDs, want)
	}
	for i := range want {
		if p.RecentRouteIDs[i] != want[i] {
			t.Fatalf("recent = %v, want %v", p.RecentRouteIDs, want)
		}
	}
}

func TestTouchRouteTrimsToCap(t *testing.T) {
	ctx := context.Background()
	s := Store{Dir: t.TempDir()}

	for i := 0; i < maxRecentRoutes+5; i++ {
		if err := s.TouchRoute(ctx, fmt.Sprintf("r%d", i)); err != nil {
			t.Fatalf("touch: %v", err)
		}
	}

	p, err := s.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(p.RecentRouteIDs) != maxRecentRoutes {
		t.Fatalf("recent has %d entries, want %d", len(p.RecentRouteIDs), maxRecentRoutes)
	}
	if p.RecentRouteIDs[0] != fmt.Sprintf("r%d", maxRecentRoutes+4) {
		t.Fatalf("newest = %s", p.RecentRouteIDs[0])
	}
}

func TestTouchRouteIgnoresEmptyID(t *testing.T) {
	ctx := context.Background()
	s := Store{Dir: t.TempDir()}
	if err := s.TouchRoute(ctx, ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	p, err := s.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(p.RecentRouteIDs) != 0 {
		t.Fatalf("recent = %v", p.RecentRouteIDs)
	}
}

func TestSaveMapPortRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := Store{Dir: t.TempDir()}

	if err := s.SaveMapPort(ctx, 8123); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := s.SaveMapPort(ctx, 9201); err != nil {
		t.Fatalf("overwrite: %v", err)
	}

	p, err := s.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if p.MapPort != 9201 {
		t.Fatalf("map port = %d, want 9201", p.MapPort)
	}
}
