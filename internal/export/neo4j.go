// Package export pushes co-occurrence graphs to Neo4j for downstream
// consumers.
package export

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"litkg/internal/graph"
	"litkg/internal/logging"
)

// Config carries the Neo4j connection settings.
type Config struct {
	URI      string
	User     string
	Password string
	Database string
	Timeout  time.Duration
}

// Exporter writes graphs into a Neo4j database as Entity nodes connected
// by CO_OCCURS relations.
type Exporter struct {
	driver   neo4j.DriverWithContext
	database string
	log      *logging.Logger
}

// NewExporter connects to Neo4j and verifies connectivity within the
// configured timeout.
func NewExporter(ctx context.Context, cfg Config, log *logging.Logger) (*Exporter, error) {
	uri := strings.TrimSpace(cfg.URI)
	if uri == "" {
		return nil, fmt.Errorf("neo4j uri not configured")
	}
	user := strings.TrimSpace(cfg.User)
	if user == "" {
		user = "neo4j"
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	driver, err := neo4j.NewDriverWithContext(uri, neo4j.BasicAuth(user, cfg.Password, ""), func(c *neo4j.Config) {
		c.SocketConnectTimeout = timeout
	})
	if err != nil {
		return nil, fmt.Errorf("failed to init neo4j driver: %w", err)
	}

	verifyCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := driver.VerifyConnectivity(verifyCtx); err != nil {
		_ = driver.Close(ctx)
		return nil, fmt.Errorf("failed to verify neo4j connectivity: %w", err)
	}

	return &Exporter{
		driver:   driver,
		database: strings.TrimSpace(cfg.Database),
		log:      logging.OrNop(log),
	}, nil
}

// Close releases the driver.
func (e *Exporter) Close(ctx context.Context) error {
	if e == nil || e.driver == nil {
		return nil
	}
	err := e.driver.Close(ctx)
	e.driver = nil
	return err
}

// ExportGraph merges the graph's nodes and edges into Neo4j in one write
// session. The graph itself is read-only here. Returns the node and
// relation counts written.
func (e *Exporter) ExportGraph(ctx context.Context, g *graph.Graph) (int, int, error) {
	if g == nil {
		return 0, 0, nil
	}

	nodes := make([]map[string]any, 0, g.NodeCount())
	for _, name := range g.Nodes() {
		nodes = append(nodes, map[string]any{
			"name":  name,
			"graph": g.Name,
		})
	}

	rels := make([]map[string]any, 0, g.EdgeCount())
	for _, edge := range g.Edges() {
		rels = append(rels, map[string]any{
			"source": edge.Source,
			"target": edge.Target,
			"weight": edge.Weight,
			"origin": string(edge.Origin),
			"graph":  g.Name,
		})
	}

	session := e.driver.NewSession(ctx, neo4j.SessionConfig{
		AccessMode:   neo4j.AccessModeWrite,
		DatabaseName: e.database,
	})
	defer session.Close(ctx)

	// Best-effort schema; may fail for restricted users.
	if res, err := session.Run(ctx, `CREATE CONSTRAINT entity_name_unique IF NOT EXISTS FOR (n:Entity) REQUIRE n.name IS UNIQUE`, nil); err != nil {
		e.log.Warn("neo4j schema init failed (continuing)", "error", err)
	} else {
		_, _ = res.Consume(ctx)
	}

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		if len(nodes) > 0 {
			res, err := tx.Run(ctx, `
UNWIND $nodes AS n
MERGE (entity:Entity {name: n.name})
SET entity.graph = n.graph
`, map[string]any{"nodes": nodes})
			if err != nil {
				return nil, err
			}
			if _, err := res.Consume(ctx); err != nil {
				return nil, err
			}
		}

		if len(rels) > 0 {
			res, err := tx.Run(ctx, `
UNWIND $rels AS r
MATCH (a:Entity {name: r.source})
MATCH (b:Entity {name: r.target})
MERGE (a)-[e:CO_OCCURS]->(b)
SET e.weight = r.weight, e.origin = r.origin, e.graph = r.graph
`, map[string]any{"rels": rels})
			if err != nil {
				return nil, err
			}
			if _, err := res.Consume(ctx); err != nil {
				return nil, err
			}
		}
		return nil, nil
	})
	if err != nil {
		return 0, 0, fmt.Errorf("failed to export graph %q: %w", g.Name, err)
	}

	e.log.Info("graph exported", "graph", g.Name, "nodes", len(nodes), "relations", len(rels))
	return len(nodes), len(rels), nil
}
