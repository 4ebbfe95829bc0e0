package tracking

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/charleschow/draft-lottery/internal/core/league"
	"github.com/charleschow/draft-lottery/internal/core/report"
	"github.com/charleschow/draft-lottery/internal/telemetry"

	_ "modernc.org/sqlite"
)

const (
	DefaultMaxBytes int64   = 256 << 20 // 256 MiB
	evictPct        float64 = 0.10      // evict oldest 10% of runs
	vacuumInterval          = 10        // incremental vacuum every N evictions
)

// RunRecord is one persisted simulation run. Teams is empty when the
// record comes from RecentRuns.
type RunRecord struct {
	ID        int64
	CreatedAt time.Time
	Season    string
	Source    string
	Trials    int
	Seed      uint64
	Shards    int
	Exponent  float64
	Rules     league.Rules
	TeamCount int
	Teams     []report.TeamSummary
}

// RecordFromDocument converts a run summary into a storable record.
func RecordFromDocument(doc *report.Document) RunRecord {
	return RunRecord{
		CreatedAt: doc.Generated,
		Season:    doc.Season,
		Source:    doc.Source,
		Trials:    doc.Trials,
		Seed:      doc.Seed,
		Shards:    doc.Shards,
		Exponent:  doc.Exponent,
		Rules:     doc.Rules,
		TeamCount: len(doc.Teams),
		Teams:     doc.Teams,
	}
}

// TeamPoint is one team's summary within a stored run.
type TeamPoint struct {
	RunID     int64
	CreatedAt time.Time
	Season    string
	report.TeamSummary
}

// Store persists run summaries in a FIFO SQLite database capped at
// maxBytes. The oldest 10% of runs are evicted when the budget is exceeded.
type Store struct {
	db           *sql.DB
	mu           sync.Mutex
	maxBytes     int64
	cachedSize   int64
	runCount     int64
	evictCounter int
}

func OpenStore(path string) (*Store, error) {
	return OpenStoreWithBudget(path, DefaultMaxBytes)
}

func OpenStoreWithBudget(path string, maxBytes int64) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create run store dir: %w", err)
	}

	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(wal)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	db.SetMaxOpenConns(1)

	var avMode int
	if err := db.QueryRow(`PRAGMA auto_vacuum`).Scan(&avMode); err != nil {
		db.Close()
		return nil, fmt.Errorf("read auto_vacuum: %w", err)
	}
	if avMode != 2 {
		if _, err := db.Exec(`PRAGMA auto_vacuum = INCREMENTAL`); err != nil {
			db.Close()
			return nil, fmt.Errorf("set auto_vacuum: %w", err)
		}
		if _, err := db.Exec(`VACUUM`); err != nil {
			telemetry.Warnf("run store: VACUUM to enable auto_vacuum failed: %v", err)
		}
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init run schema: %w", err)
	}

	var size int64
	db.QueryRow(`SELECT COALESCE(page_count * page_size, 0) FROM pragma_page_count(), pragma_page_size()`).Scan(&size)
	var runCount int64
	db.QueryRow(`SELECT COUNT(*) FROM runs`).Scan(&runCount)

	telemetry.Plainf("run store: opened %s  size=%d  runs=%d", path, size, runCount)
	return &Store{db: db, maxBytes: maxBytes, cachedSize: size, runCount: runCount}, nil
}

const schema = `CREATE TABLE IF NOT EXISTS runs (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	created_at  TEXT    NOT NULL,
	season      TEXT    NOT NULL DEFAULT '',
	source      TEXT    NOT NULL DEFAULT '',
	trials      INTEGER NOT NULL,
	seed        INTEGER NOT NULL, -- uint64 bit pattern
	shards      INTEGER NOT NULL DEFAULT 1,
	exponent    REAL    NOT NULL,
	rules_json  TEXT    NOT NULL,
	team_count  INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS run_teams (
	run_id          INTEGER NOT NULL,
	team            TEXT    NOT NULL,
	team_key        TEXT    NOT NULL, -- normalised name
	wins            INTEGER NOT NULL,
	losses          INTEGER NOT NULL,
	games_played    INTEGER NOT NULL,
	win_probability REAL    NOT NULL,
	average_wins    REAL    NOT NULL,
	average_losses  REAL    NOT NULL,
	expected_pick   REAL    NOT NULL,
	top_odds        REAL    NOT NULL,
	pick_probs      TEXT    NOT NULL, -- JSON array
	PRIMARY KEY (run_id, team_key)
);

CREATE INDEX IF NOT EXISTS run_teams_by_key ON run_teams (team_key, run_id)`

// InsertRun stores a run and its team rows and returns the run ID.
func (s *Store) InsertRun(r RunRecord) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rulesJSON, err := json.Marshal(r.Rules)
	if err != nil {
		return 0, fmt.Errorf("marshal rules: %w", err)
	}
	created := r.CreatedAt
	if created.IsZero() {
		created = time.Now()
	}

	tx, err := s.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.Exec(
		`INSERT INTO runs (created_at, season, source, trials, seed, shards, exponent, rules_json, team_count)
		 VALUES (?,?,?,?,?,?,?,?,?)`,
		created.UTC().Format(time.RFC3339Nano), r.Season, r.Source, r.Trials,
		int64(r.Seed), max(1, r.Shards), r.Exponent, string(rulesJSON), len(r.Teams),
	)
	if err != nil {
		return 0, fmt.Errorf("insert run: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("run id: %w", err)
	}

	stmt, err := tx.Prepare(
		`INSERT INTO run_teams (run_id, team, team_key, wins, losses, games_played,
			win_probability, average_wins, average_losses, expected_pick, top_odds, pick_probs)
		 VALUES (?,?,?,?,?,?,?,?,?,?,?,?)`)
	if err != nil {
		return 0, fmt.Errorf("prepare team insert: %w", err)
	}
	defer stmt.Close()

	for _, t := range r.Teams {
		probs, err := json.Marshal(t.PickProbabilities)
		if err != nil {
			return 0, fmt.Errorf("marshal pick probabilities: %w", err)
		}
		if _, err := stmt.Exec(id, t.Team, league.Normalize(t.Team), t.Wins, t.Losses, t.GamesPlayed,
			t.WinProbability, t.AverageWins, t.AverageLosses, t.ExpectedPick, t.TopOdds, string(probs)); err != nil {
			return 0, fmt.Errorf("insert team %s: %w", t.Team, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit run: %w", err)
	}

	s.runCount++
	s.refreshSize()
	if s.cachedSize > s.maxBytes {
		s.evict()
	}
	return id, nil
}

// RecentRuns returns up to limit runs, newest first, without team rows.
func (s *Store) RecentRuns(limit int) ([]RunRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.Query(
		`SELECT id, created_at, season, source, trials, seed, shards, exponent, rules_json, team_count
		 FROM runs ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var out []RunRecord
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Run returns one run with its team rows ordered by ascending average wins.
func (s *Store) Run(id int64) (RunRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, err := scanRun(s.db.QueryRow(
		`SELECT id, created_at, season, source, trials, seed, shards, exponent, rules_json, team_count
		 FROM runs WHERE id = ?`, id))
	if err != nil {
		return RunRecord{}, err
	}

	rows, err := s.db.Query(
		`SELECT team, wins, losses, games_played, win_probability, average_wins,
			average_losses, expected_pick, top_odds, pick_probs
		 FROM run_teams WHERE run_id = ? ORDER BY average_wins ASC, team ASC`, id)
	if err != nil {
		return RunRecord{}, fmt.Errorf("query run teams: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		t, err := scanTeam(rows)
		if err != nil {
			return RunRecord{}, err
		}
		r.Teams = append(r.Teams, t)
	}
	return r, rows.Err()
}

// TeamHistory returns a team's summaries across runs, newest first. The
// team may be given by any name Normalize resolves.
func (s *Store) TeamHistory(team string, limit int) ([]TeamPoint, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.Query(
		`SELECT r.id, r.created_at, r.season,
			t.team, t.wins, t.losses, t.games_played, t.win_probability, t.average_wins,
			t.average_losses, t.expected_pick, t.top_odds, t.pick_probs
		 FROM run_teams t JOIN runs r ON r.id = t.run_id
		 WHERE t.team_key = ? ORDER BY r.id DESC LIMIT ?`, league.Normalize(team), limit)
	if err != nil {
		return nil, fmt.Errorf("query team history: %w", err)
	}
	defer rows.Close()

	var out []TeamPoint
	for rows.Next() {
		var p TeamPoint
		var created, probs string
		if err := rows.Scan(&p.RunID, &created, &p.Season,
			&p.Team, &p.Wins, &p.Losses, &p.GamesPlayed, &p.WinProbability, &p.AverageWins,
			&p.AverageLosses, &p.ExpectedPick, &p.TopOdds, &probs,
		); err != nil {
			return nil, fmt.Errorf("scan team history: %w", err)
		}
		p.CreatedAt, _ = time.Parse(time.RFC3339Nano, created)
		if err := json.Unmarshal([]byte(probs), &p.PickProbabilities); err != nil {
			return nil, fmt.Errorf("decode pick probabilities: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(sc scanner) (RunRecord, error) {
	var r RunRecord
	var created, rulesJSON string
	var seed int64
	if err := sc.Scan(&r.ID, &created, &r.Season, &r.Source, &r.Trials, &seed,
		&r.Shards, &r.Exponent, &rulesJSON, &r.TeamCount); err != nil {
		return r, fmt.Errorf("scan run: %w", err)
	}
	r.Seed = uint64(seed)
	r.CreatedAt, _ = time.Parse(time.RFC3339Nano, created)
	if err := json.Unmarshal([]byte(rulesJSON), &r.Rules); err != nil {
		return r, fmt.Errorf("decode rules: %w", err)
	}
	return r, nil
}

func scanTeam(sc scanner) (report.TeamSummary, error) {
	var t report.TeamSummary
	var probs string
	if err := sc.Scan(&t.Team, &t.Wins, &t.Losses, &t.GamesPlayed, &t.WinProbability,
		&t.AverageWins, &t.AverageLosses, &t.ExpectedPick, &t.TopOdds, &probs); err != nil {
		return t, fmt.Errorf("scan run team: %w", err)
	}
	if err := json.Unmarshal([]byte(probs), &t.PickProbabilities); err != nil {
		return t, fmt.Errorf("decode pick probabilities: %w", err)
	}
	return t, nil
}

// refreshSize re-reads the database file size from SQLite pragmas.
// Must be called with s.mu held.
func (s *Store) refreshSize() {
	var size int64
	row := s.db.QueryRow(`SELECT COALESCE(page_count * page_size, 0) FROM pragma_page_count(), pragma_page_size()`)
	if err := row.Scan(&size); err == nil {
		s.cachedSize = size
	}
}

// evict deletes the oldest 10% of runs (at least one) and their teams.
// Must be called with s.mu held.
func (s *Store) evict() {
	toDelete := max(1, int64(float64(s.runCount)*evictPct))

	tx, err := s.db.Begin()
	if err != nil {
		telemetry.Warnf("run store evict: %v", err)
		return
	}
	defer tx.Rollback()

	const oldest = `SELECT id FROM runs ORDER BY id ASC LIMIT ?`
	if _, err := tx.Exec(`DELETE FROM run_teams WHERE run_id IN (`+oldest+`)`, toDelete); err != nil {
		telemetry.Warnf("run store evict teams: %v", err)
		return
	}
	res, err := tx.Exec(`DELETE FROM runs WHERE id IN (`+oldest+`)`, toDelete)
	if err != nil {
		telemetry.Warnf("run store evict runs: %v", err)
		return
	}
	if err := tx.Commit(); err != nil {
		telemetry.Warnf("run store evict commit: %v", err)
		return
	}

	deleted, _ := res.RowsAffected()
	s.runCount -= deleted
	s.evictCounter++

	telemetry.Infof("run store: evicted %d runs (target %d)", deleted, toDelete)

	if s.evictCounter%vacuumInterval == 0 {
		s.db.Exec(`PRAGMA incremental_vacuum`)
	}

	s.refreshSize()
}

// RunCount is the number of runs currently stored.
func (s *Store) RunCount() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.runCount
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}
