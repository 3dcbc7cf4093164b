// Package db stores imported shot logs in SQLite so per-player queries do not
// rescan the raw CSV exports.
package db

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	"github.com/brensch/shottree/shotlog"

	_ "modernc.org/sqlite"
)

// DB wraps the SQLite connection with serialized writes.
type DB struct {
	conn *sql.DB
	mu   sync.Mutex
}

// PlayerCount is a player with the number of stored attempts.
type PlayerCount struct {
	Name  string
	ID    int64
	Shots int64
}

// New opens (or creates) the database at dbPath and initializes the schema.
func New(dbPath string) (*DB, error) {
	conn, err := sql.Open("sqlite", "file:"+dbPath+"?_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	conn.SetMaxOpenConns(1) // SQLite only supports one writer
	conn.SetMaxIdleConns(1)

	db := &DB{conn: conn}
	if err := db.initSchema(); err != nil {
		conn.Close()
		return nil, err
	}
	return db, nil
}

func (db *DB) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS shots (
		game_id TEXT NOT NULL,
		player_id INTEGER NOT NULL,
		shot_number INTEGER NOT NULL,
		player_name TEXT NOT NULL,
		matchup TEXT,
		location TEXT,
		period INTEGER,
		game_clock TEXT,
		shot_clock REAL,
		dribbles INTEGER,
		touch_time REAL,
		shot_dist REAL,
		pts_type INTEGER,
		made BOOLEAN NOT NULL,
		closest_defender TEXT,
		close_def_dist REAL,
		PRIMARY KEY (game_id, player_id, shot_number)
	);

	CREATE INDEX IF NOT EXISTS idx_shots_player_name ON shots(player_name);
	`

	db.mu.Lock()
	defer db.mu.Unlock()

	if _, err := db.conn.Exec(schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// InsertShots stores shots in a single transaction. Attempts already present
// (same game, player and shot number) are ignored. It returns the number of
// new rows.
func (db *DB) InsertShots(ctx context.Context, shots []shotlog.Shot) (int64, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `INSERT OR IGNORE INTO shots (
		game_id, player_id, shot_number, player_name, matchup, location, period,
		game_clock, shot_clock, dribbles, touch_time, shot_dist, pts_type, made,
		closest_defender, close_def_dist
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare shot statement: %w", err)
	}
	defer stmt.Close()

	var inserted int64
	for _, s := range shots {
		res, err := stmt.ExecContext(ctx,
			s.GameID, s.PlayerID, s.ShotNumber, s.PlayerName, s.Matchup, s.Location, s.Period,
			s.GameClock, s.ShotClock, s.Dribbles, s.TouchTime, s.ShotDist, s.PtsType, s.Made,
			s.ClosestDefender, s.CloseDefDist,
		)
		if err != nil {
			return 0, fmt.Errorf("failed to insert shot %s/%d: %w", s.GameID, s.ShotNumber, err)
		}
		n, err := res.RowsAffected()
		if err == nil {
			inserted += n
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return inserted, nil
}

// Players lists stored players ordered by attempts, most first.
func (db *DB) Players(ctx context.Context) ([]PlayerCount, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	rows, err := db.conn.QueryContext(ctx,
		"SELECT player_name, player_id, COUNT(*) AS n FROM shots GROUP BY player_name, player_id ORDER BY n DESC, player_name",
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var players []PlayerCount
	for rows.Next() {
		var p PlayerCount
		if err := rows.Scan(&p.Name, &p.ID, &p.Shots); err != nil {
			return nil, err
		}
		players = append(players, p)
	}
	return players, rows.Err()
}

// ShotCount returns the total number of stored attempts.
func (db *DB) ShotCount(ctx context.Context) (int64, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	var n int64
	err := db.conn.QueryRowContext(ctx, "SELECT COUNT(*) FROM shots").Scan(&n)
	return n, err
}

// ShotsForPlayer returns a source over one player's attempts in game and
// shot order.
func (db *DB) ShotsForPlayer(player string) shotlog.Source {
	return playerSource{db: db, player: player}
}

type playerSource struct {
	db     *DB
	player string
}

func (p playerSource) Each(ctx context.Context, fn func(shotlog.Shot) error) error {
	shots, err := p.db.queryPlayer(ctx, p.player)
	if err != nil {
		return err
	}
	return shotlog.SliceSource(shots).Each(ctx, fn)
}

// queryPlayer loads rows fully before returning so fn never runs while the
// connection is held.
func (db *DB) queryPlayer(ctx context.Context, player string) ([]shotlog.Shot, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	rows, err := db.conn.QueryContext(ctx, `SELECT
		game_id, player_id, shot_number, player_name, matchup, location, period,
		game_clock, shot_clock, dribbles, touch_time, shot_dist, pts_type, made,
		closest_defender, close_def_dist
	FROM shots WHERE player_name = ? ORDER BY game_id, shot_number`, player)
	if err != nil {
		return nil, fmt.Errorf("query shots: %w", err)
	}
	defer rows.Close()

	var shots []shotlog.Shot
	for rows.Next() {
		var s shotlog.Shot
		if err := rows.Scan(
			&s.GameID, &s.PlayerID, &s.ShotNumber, &s.PlayerName, &s.Matchup, &s.Location, &s.Period,
			&s.GameClock, &s.ShotClock, &s.Dribbles, &s.TouchTime, &s.ShotDist, &s.PtsType, &s.Made,
			&s.ClosestDefender, &s.CloseDefDist,
		); err != nil {
			return nil, err
		}
		shots = append(shots, s)
	}
	return shots, rows.Err()
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}
