package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"litkg/internal/graph"
)

// ErrGraphNotFound is returned when loading a name that was never saved.
var ErrGraphNotFound = errors.New("graph not found")

type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates or opens a SQLite database.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	if err := db.Ping(); err != nil {
		return nil, err
	}

	s := &SQLiteStore{db: db}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to init schema: %w", err)
	}

	return s, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) initSchema() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS graphs (
			name TEXT PRIMARY KEY,
			updated_at TIMESTAMP
		);`,
		`CREATE TABLE IF NOT EXISTS nodes (
			graph_name TEXT,
			name TEXT,
			PRIMARY KEY (graph_name, name)
		);`,
		`CREATE TABLE IF NOT EXISTS edges (
			graph_name TEXT,
			source TEXT,
			target TEXT,
			weight REAL,
			origin TEXT,
			PRIMARY KEY (graph_name, source, target)
		);`,
		`CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			graph_name TEXT,
			total_nodes INTEGER,
			valid_nodes INTEGER,
			invalid_nodes INTEGER,
			precision REAL,
			report JSON,
			created_at TIMESTAMP
		);`,
		`CREATE TABLE IF NOT EXISTS predictions (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			graph_name TEXT,
			strategy TEXT,
			source TEXT,
			target TEXT,
			score REAL,
			created_at TIMESTAMP
		);`,
		`CREATE INDEX IF NOT EXISTS idx_runs_graph ON runs(graph_name, created_at);`,
		`CREATE INDEX IF NOT EXISTS idx_predictions_graph ON predictions(graph_name, created_at);`,
	}

	for _, q := range queries {
		if _, err := s.db.Exec(q); err != nil {
			return err
		}
	}
	return nil
}

// --- GraphStore ---

func (s *SQLiteStore) SaveGraph(ctx context.Context, g *graph.Graph) error {
	if g.Name == "" {
		return fmt.Errorf("cannot save a graph without a name")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO graphs (name, updated_at) VALUES (?, ?)
		ON CONFLICT(name) DO UPDATE SET updated_at=excluded.updated_at
	`, g.Name, time.Now().UTC()); err != nil {
		return err
	}

	// Saving is snapshot-style: prior contents of the name are replaced.
	if _, err := tx.ExecContext(ctx, `DELETE FROM nodes WHERE graph_name = ?`, g.Name); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM edges WHERE graph_name = ?`, g.Name); err != nil {
		return err
	}

	nodeStmt, err := tx.PrepareContext(ctx, `INSERT INTO nodes (graph_name, name) VALUES (?, ?)`)
	if err != nil {
		return err
	}
	defer nodeStmt.Close()

	for _, node := range g.Nodes() {
		if _, err := nodeStmt.Exec(g.Name, node); err != nil {
			return err
		}
	}

	edgeStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO edges (graph_name, source, target, weight, origin) VALUES (?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer edgeStmt.Close()

	for _, edge := range g.Edges() {
		if _, err := edgeStmt.Exec(g.Name, edge.Source, edge.Target, edge.Weight, string(edge.Origin)); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (s *SQLiteStore) LoadGraph(ctx context.Context, name string) (*graph.Graph, error) {
	var stored string
	err := s.db.QueryRowContext(ctx, `SELECT name FROM graphs WHERE name = ?`, name).Scan(&stored)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrGraphNotFound, name)
	}
	if err != nil {
		return nil, err
	}

	g := graph.NewGraph(name)

	rows, err := s.db.QueryContext(ctx, `SELECT name FROM nodes WHERE graph_name = ?`, name)
	if err != nil {
		return nil, fmt.Errorf("failed to query nodes: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var node string
		if err := rows.Scan(&node); err != nil {
			return nil, fmt.Errorf("failed to scan node: %w", err)
		}
		g.AddNode(node)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	edgeRows, err := s.db.QueryContext(ctx, `SELECT source, target, weight, origin FROM edges WHERE graph_name = ?`, name)
	if err != nil {
		return nil, fmt.Errorf("failed to query edges: %w", err)
	}
	defer edgeRows.Close()

	for edgeRows.Next() {
		var e graph.Edge
		var origin string
		if err := edgeRows.Scan(&e.Source, &e.Target, &e.Weight, &origin); err != nil {
			return nil, fmt.Errorf("failed to scan edge: %w", err)
		}
		e.Origin = graph.Origin(origin)
		g.PutEdge(e)
	}
	if err := edgeRows.Err(); err != nil {
		return nil, err
	}

	return g, nil
}

func (s *SQLiteStore) ListGraphs(ctx context.Context) ([]GraphInfo, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT g.name, g.updated_at,
			(SELECT COUNT(*) FROM nodes n WHERE n.graph_name = g.name),
			(SELECT COUNT(*) FROM edges e WHERE e.graph_name = g.name)
		FROM graphs g ORDER BY g.name
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []GraphInfo
	for rows.Next() {
		var info GraphInfo
		if err := rows.Scan(&info.Name, &info.UpdatedAt, &info.Nodes, &info.Edges); err != nil {
			return nil, err
		}
		out = append(out, info)
	}
	return out, rows.Err()
}

// --- RunStore ---

func (s *SQLiteStore) SaveRun(ctx context.Context, run *Run) error {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO runs (id, graph_name, total_nodes, valid_nodes, invalid_nodes, precision, report, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, run.ID, run.GraphName, run.TotalNodes, run.ValidNodes, run.InvalidNodes,
		run.Precision, []byte(run.Report), run.CreatedAt)
	return err
}

func (s *SQLiteStore) ListRuns(ctx context.Context, graphName string) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, graph_name, total_nodes, valid_nodes, invalid_nodes, precision, report, created_at
		FROM runs WHERE graph_name = ? ORDER BY created_at DESC
	`, graphName)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Run
	for rows.Next() {
		var run Run
		var report []byte
		if err := rows.Scan(&run.ID, &run.GraphName, &run.TotalNodes, &run.ValidNodes,
			&run.InvalidNodes, &run.Precision, &report, &run.CreatedAt); err != nil {
			return nil, err
		}
		run.Report = report
		out = append(out, run)
	}
	return out, rows.Err()
}

// --- PredictionStore ---

func (s *SQLiteStore) SavePredictions(ctx context.Context, rows []PredictionRow) error {
	if len(rows) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO predictions (graph_name, strategy, source, target, score, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	now := time.Now().UTC()
	for _, row := range rows {
		createdAt := row.CreatedAt
		if createdAt.IsZero() {
			createdAt = now
		}
		if _, err := stmt.Exec(row.GraphName, row.Strategy, row.Source, row.Target, row.Score, createdAt); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (s *SQLiteStore) ListPredictions(ctx context.Context, graphName string) ([]PredictionRow, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT graph_name, strategy, source, target, score, created_at
		FROM predictions WHERE graph_name = ? ORDER BY created_at DESC, id DESC
	`, graphName)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []PredictionRow
	for rows.Next() {
		var row PredictionRow
		if err := rows.Scan(&row.GraphName, &row.Strategy, &row.Source, &row.Target, &row.Score, &row.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}
