// Package store persists small, user-facing client state between runs:
// recently opened routes and the last map-bridge port. It never stores
// route data; the server is the source of truth for everything the
// editor shows.
//
// Best effort by design: callers tolerate a missing or broken prefs DB
// and carry on with defaults.
package store

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"strconv"
	"time"

	_ "modernc.org/sqlite"
)

const maxRecentRoutes = 10

// Prefs is the persisted client state.
type Prefs struct {
	// RecentRouteIDs is newest first, capped at maxRecentRoutes.
	RecentRouteIDs []string
	// MapPort is the last port the map bridge bound, 0 when unset.
	MapPort int
}

// Store reads and writes prefs under Dir (default: ~/.hb2).
type Store struct {
	Dir string
}

// DefaultDir resolves the per-user prefs directory.
func DefaultDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".hb2"
	}
	return filepath.Join(home, ".hb2")
}

func (s Store) dir() string {
	if s.Dir != "" {
		return s.Dir
	}
	return DefaultDir()
}

func (s Store) path() string {
	return filepath.Join(s.dir(), "state.sqlite")
}

func (s Store) open(ctx context.Context) (*sql.DB, error) {
	if err := os.MkdirAll(s.dir(), 0o755); err != nil {
		return nil, err
	}
	// modernc.org/sqlite driver name is "sqlite".
	db, err := sql.Open("sqlite", s.path())
	if err != nil {
		return nil, err
	}
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			_ = db.Close()
			return nil, err
		}
	}
	if err := migrate(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

func migrate(ctx context.Context, db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS meta (
			k TEXT PRIMARY KEY,
			v TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS recent_routes (
			route_id TEXT PRIMARY KEY,
			opened_at INTEGER NOT NULL
		);`,
	}
	for _, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

// Load reads prefs, returning zero-value prefs on any failure.
func (s Store) Load(ctx context.Context) (Prefs, error) {
	db, err := s.open(ctx)
	if err != nil {
		return Prefs{}, err
	}
	defer db.Close()

	var p Prefs
	rows, err := db.QueryContext(ctx,
		`SELECT route_id FROM recent_routes ORDER BY opened_at DESC LIMIT ?`, maxRecentRoutes)
	if err != nil {
		return Prefs{}, err
	}
	defer rows.Close()
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return Prefs{}, err
		}
		p.RecentRouteIDs = append(p.RecentRouteIDs, id)
	}
	if err := rows.Err(); err != nil {
		return Prefs{}, err
	}

	var portStr string
	err = db.QueryRowContext(ctx, `SELECT v FROM meta WHERE k = 'map_port'`).Scan(&portStr)
	switch {
	case err == sql.ErrNoRows:
	case err != nil:
		return Prefs{}, err
	default:
		p.MapPort, _ = strconv.Atoi(portStr)
	}
	return p, nil
}

// TouchRoute records a route as most recently opened and trims the list.
func (s Store) TouchRoute(ctx context.Context, routeID string) error {
	if routeID == "" {
		return nil
	}
	db, err := s.open(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	// Nanoseconds so rapid successive touches still order correctly.
	now := time.Now().UnixNano()
	if _, err := db.ExecContext(ctx,
		`INSERT INTO recent_routes (route_id, opened_at) VALUES (?, ?)
		 ON CONFLICT(route_id) DO UPDATE SET opened_at = excluded.opened_at`,
		routeID, now); err != nil {
		return err
	}
	_, err = db.ExecContext(ctx,
		`DELETE FROM recent_routes WHERE route_id NOT IN (
			SELECT route_id FROM recent_routes ORDER BY opened_at DESC LIMIT ?
		)`, maxRecentRoutes)
	return err
}

// SaveMapPort remembers the map bridge port for the next run.
func (s Store) SaveMapPort(ctx context.Context, port int) error {
	db, err := s.open(ctx)
	if err != nil {
		return err
	}
	defer db.Close()
	_, err = db.ExecContext(ctx,
		`INSERT INTO meta (k, v) VALUES ('map_port', ?)
		 ON CONFLICT(k) DO UPDATE SET v = excluded.v`,
		strconv.Itoa(port))
	return err
}
