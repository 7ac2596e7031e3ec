// Package history persists voting outcomes to a local SQLite database
// so selections can be audited after the fact: which patch won, how
// the votes split, and what every agent said.
package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/Dicklesworthstone/patchquorum/internal/voting"
)

// ErrNotFound is returned when no record has the requested id.
var ErrNotFound = errors.New("voting record not found")

const schema = `
CREATE TABLE IF NOT EXISTS voting_results (
	id                     INTEGER PRIMARY KEY AUTOINCREMENT,
	created_at             TEXT    NOT NULL,
	issue_title            TEXT    NOT NULL,
	selected_patch_index   INTEGER NOT NULL,
	selected_patch_content TEXT    NOT NULL,
	total_voters           INTEGER NOT NULL,
	early_stopped          INTEGER NOT NULL,
	consensus_strength     REAL    NOT NULL,
	unanimous              INTEGER NOT NULL,
	vote_distribution      TEXT    NOT NULL,
	agent_evaluations      TEXT    NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_voting_results_created_at ON voting_results(created_at);
`

// Record is one stored voting outcome.
type Record struct {
	ID         int64          `json:"id"`
	CreatedAt  time.Time      `json:"created_at"`
	IssueTitle string         `json:"issue_title"`
	Result     *voting.Result `json:"result"`
}

// Store wraps the SQLite database holding voting history.
type Store struct {
	db *sql.DB
}

// Open opens (and if needed initializes) the database at path. Use
// ":memory:" for an ephemeral store.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open history db: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init history schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Save persists one voting result and returns its record id.
func (s *Store) Save(ctx context.Context, issueTitle string, res *voting.Result) (int64, error) {
	dist, err := json.Marshal(res.VoteDistribution)
	if err != nil {
		return 0, fmt.Errorf("marshal vote distribution: %w", err)
	}
	evals, err := json.Marshal(res.AgentEvaluations)
	if err != nil {
		return 0, fmt.Errorf("marshal agent evaluations: %w", err)
	}

	out, err := s.db.ExecContext(ctx, `
		INSERT INTO voting_results (
			created_at, issue_title,
			selected_patch_index, selected_patch_content,
			total_voters, early_stopped,
			consensus_strength, unanimous,
			vote_distribution, agent_evaluations
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		time.Now().UTC().Format(time.RFC3339Nano),
		issueTitle,
		res.SelectedPatchIndex,
		res.SelectedPatchContent,
		res.TotalVoters,
		res.EarlyStopped,
		res.ConsensusMetrics.ConsensusStrength,
		res.ConsensusMetrics.Unanimous,
		string(dist),
		string(evals),
	)
	if err != nil {
		return 0, fmt.Errorf("insert voting record: %w", err)
	}
	id, err := out.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("voting record id: %w", err)
	}
	return id, nil
}

// Get loads one record by id.
func (s *Store) Get(ctx context.Context, id int64) (*Record, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, created_at, issue_title,
		       selected_patch_index, selected_patch_content,
		       total_voters, early_stopped,
		       consensus_strength, unanimous,
		       vote_distribution, agent_evaluations
		FROM voting_results WHERE id = ?`, id)

	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return rec, err
}

// List returns the most recent records, newest first.
func (s *Store) List(ctx context.Context, limit int) ([]*Record, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, created_at, issue_title,
		       selected_patch_index, selected_patch_content,
		       total_voters, early_stopped,
		       consensus_strength, unanimous,
		       vote_distribution, agent_evaluations
		FROM voting_results ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list voting records: %w", err)
	}
	defer rows.Close()

	var records []*Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(row scanner) (*Record, error) {
	var (
		rec       Record
		createdAt string
		dist      string
		evals     string
		res       voting.Result
	)
	err := row.Scan(
		&rec.ID, &createdAt, &rec.IssueTitle,
		&res.SelectedPatchIndex, &res.SelectedPatchContent,
		&res.TotalVoters, &res.EarlyStopped,
		&res.ConsensusMetrics.ConsensusStrength, &res.ConsensusMetrics.Unanimous,
		&dist, &evals,
	)
	if err != nil {
		return nil, err
	}

	rec.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return nil, fmt.Errorf("parse record timestamp: %w", err)
	}
	if err := json.Unmarshal([]byte(dist), &res.VoteDistribution); err != nil {
		return nil, fmt.Errorf("decode vote distribution: %w", err)
	}
	if err := json.Unmarshal([]byte(evals), &res.AgentEvaluations); err != nil {
		return nil, fmt.Errorf("decode agent evaluations: %w", err)
	}
	rec.Result = &res
	return &rec, nil
}
