// Package store persists analysis runs and their per-gene results in
// SQLite.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	_ "modernc.org/sqlite" // pure go sqlite driver

	"github.com/aria-lang/popgen-go/internal/analysis"
)

// ErrRunNotFound is returned for an unknown run id.
var ErrRunNotFound = errors.New("run not found")

var schema = []string{`
CREATE TABLE IF NOT EXISTS runs (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	label      TEXT NOT NULL,
	coding     INTEGER NOT NULL,
	genes      INTEGER NOT NULL,
	created_at TEXT NOT NULL
)`, `
CREATE TABLE IF NOT EXISTS gene_results (
	run_id          INTEGER NOT NULL REFERENCES runs(id),
	position        INTEGER NOT NULL,
	gene            TEXT NOT NULL,
	ingroup         INTEGER NOT NULL,
	outgroup        INTEGER NOT NULL,
	length          INTEGER NOT NULL,
	sites           INTEGER NOT NULL,
	polymorphisms   INTEGER NOT NULL,
	singletons      INTEGER NOT NULL,
	transitions     INTEGER NOT NULL,
	pi              REAL,
	theta           REAL,
	tajima_d        REAL,
	tajima_d_prime  REAL,
	divergence      REAL,
	divergent_sites INTEGER NOT NULL,
	derived         TEXT NOT NULL,
	syn_sites       REAL,
	nonsyn_sites    REAL,
	pi_s            REAL,
	pi_n            REAL,
	ps              INTEGER NOT NULL,
	pn              INTEGER NOT NULL,
	ds              INTEGER NOT NULL,
	dn              INTEGER NOT NULL,
	ni              REAL,
	PRIMARY KEY (run_id, position)
)`}

// Run describes one stored analysis run.
type Run struct {
	ID      int64     `json:"id"`
	Label   string    `json:"label"`
	Coding  bool      `json:"coding"`
	Genes   int       `json:"genes"`
	Created time.Time `json:"created"`
}

// Store is a SQLite database of analysis runs.
type Store struct {
	db   *sql.DB
	mu   sync.Mutex
	path string
}

// Open opens or creates the database at path.
func Open(path string) (*Store, error) {
	if path == "" {
		path = "popgen.db"
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil && !errors.Is(err, os.ErrExist) {
		return nil, fmt.Errorf("create dirs: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("create schema: %w", err)
		}
	}
	return &Store{db: db, path: path}, nil
}

// Close closes the database.
func (s *Store) Close() error { return s.db.Close() }

// Path returns the database path.
func (s *Store) Path() string { return s.path }

// nullable stores non-finite values as NULL.
func nullable(v float64) sql.NullFloat64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: v, Valid: true}
}

func fromNullable(v sql.NullFloat64) float64 {
	if !v.Valid {
		return math.NaN()
	}
	return v.Float64
}

func joinInts(xs []int) string {
	parts := make([]string, len(xs))
	for i, x := range xs {
		parts[i] = strconv.Itoa(x)
	}
	return strings.Join(parts, ",")
}

// SaveRun stores results under a new run and returns its id.
func (s *Store) SaveRun(ctx context.Context, label string, coding bool, results []analysis.Result) (id int64, retErr error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin: %w", err)
	}
	defer func() {
		if retErr != nil {
			_ = tx.Rollback()
		}
	}()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO runs(label, coding, genes, created_at) VALUES(?,?,?,?)`,
		label, coding, len(results), time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return 0, fmt.Errorf("insert run: %w", err)
	}
	id, err = res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("run id: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO gene_results(
		run_id, position, gene, ingroup, outgroup, length, sites, polymorphisms,
		singletons, transitions, pi, theta, tajima_d, tajima_d_prime, divergence,
		divergent_sites, derived, syn_sites, nonsyn_sites, pi_s, pi_n, ps, pn, ds,
		dn, ni) VALUES(?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`)
	if err != nil {
		return 0, fmt.Errorf("prepare: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for i, r := range results {
		if _, err := stmt.ExecContext(ctx,
			id, i, r.Gene, r.Ingroup, r.Outgroup, r.Length, r.Sites, r.Polymorphisms,
			r.Singletons, r.Transitions, nullable(r.Pi), nullable(r.Theta),
			nullable(r.TajimaD), nullable(r.TajimaDPrime), nullable(r.Divergence),
			r.DivergentSites, joinInts(r.Derived[:]), nullable(r.SynSites),
			nullable(r.NonsynSites), nullable(r.PiS), nullable(r.PiN), r.Ps, r.Pn,
			r.Ds, r.Dn, nullable(r.NI),
		); err != nil {
			return 0, fmt.Errorf("insert %s: %w", r.Gene, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return id, nil
}

// Runs lists every stored run, newest first.
func (s *Store) Runs(ctx context.Context) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, label, coding, genes, created_at FROM runs ORDER BY id DESC`)
	if err != nil {
		return nil, fmt.Errorf("select runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var runs []Run
	for rows.Next() {
		var r Run
		var created string
		if err := rows.Scan(&r.ID, &r.Label, &r.Coding, &r.Genes, &created); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		if r.Created, err = time.Parse(time.RFC3339Nano, created); err != nil {
			return nil, fmt.Errorf("run %d: %w", r.ID, err)
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// Run returns one run's metadata.
func (s *Store) Run(ctx context.Context, id int64) (Run, error) {
	var r Run
	var created string
	err := s.db.QueryRowContext(ctx,
		`SELECT id, label, coding, genes, created_at FROM runs WHERE id = ?`, id).
		Scan(&r.ID, &r.Label, &r.Coding, &r.Genes, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, fmt.Errorf("run %d: %w", id, ErrRunNotFound)
	}
	if err != nil {
		return Run{}, fmt.Errorf("select run: %w", err)
	}
	if r.Created, err = time.Parse(time.RFC3339Nano, created); err != nil {
		return Run{}, fmt.Errorf("run %d: %w", id, err)
	}
	return r, nil
}

// Results returns a run's gene results in their original order.
// Non-finite values come back as NaN.
func (s *Store) Results(ctx context.Context, runID int64) ([]analysis.Result, error) {
	if _, err := s.Run(ctx, runID); err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, `SELECT
		gene, ingroup, outgroup, length, sites, polymorphisms, singletons,
		transitions, pi, theta, tajima_d, tajima_d_prime, divergence,
		divergent_sites, derived, syn_sites, nonsyn_sites, pi_s, pi_n, ps, pn,
		ds, dn, ni
		FROM gene_results WHERE run_id = ? ORDER BY position`, runID)
	if err != nil {
		return nil, fmt.Errorf("select results: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []analysis.Result
	for rows.Next() {
		var r analysis.Result
		var pi, theta, d, dp, k, syn, nonsyn, piS, piN, ni sql.NullFloat64
		var derived string
		if err := rows.Scan(
			&r.Gene, &r.Ingroup, &r.Outgroup, &r.Length, &r.Sites, &r.Polymorphisms,
			&r.Singletons, &r.Transitions, &pi, &theta, &d, &dp, &k,
			&r.DivergentSites, &derived, &syn, &nonsyn, &piS, &piN, &r.Ps, &r.Pn,
			&r.Ds, &r.Dn, &ni,
		); err != nil {
			return nil, fmt.Errorf("scan result: %w", err)
		}
		r.Pi, r.Theta = fromNullable(pi), fromNullable(theta)
		r.TajimaD, r.TajimaDPrime = fromNullable(d), fromNullable(dp)
		r.Divergence = fromNullable(k)
		r.SynSites, r.NonsynSites = fromNullable(syn), fromNullable(nonsyn)
		r.PiS, r.PiN = fromNullable(piS), fromNullable(piN)
		r.NI = fromNullable(ni)
		if derived != "" {
			for i, f := range strings.Split(derived, ",") {
				if i >= len(r.Derived) {
					break
				}
				if r.Derived[i], err = strconv.Atoi(f); err != nil {
					return nil, fmt.Errorf("gene %s: derived spectrum: %w", r.Gene, err)
				}
			}
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// DeleteRun removes a run and its results.
func (s *Store) DeleteRun(ctx context.Context, id int64) (retErr error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() {
		if retErr != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err := tx.ExecContext(ctx, `DELETE FROM gene_results WHERE run_id = ?`, id); err != nil {
		return fmt.Errorf("delete results: %w", err)
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM runs WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete run: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete run: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("run %d: %w", id, ErrRunNotFound)
	}
	return tx.Commit()
}
