package graph

import (
	"litkg/internal/corpus"
)

// IngestStats summarizes one ingestion pass.
type IngestStats struct {
	Records  int
	Skipped  int
	NodesAdd int
	EdgesAdd int
}

// Ingest builds co-occurrence edges from every record's entity set. Records
// without entities are counted as skipped.
func (g *Graph) Ingest(records []corpus.Record) IngestStats {
	stats := IngestStats{Records: len(records)}
	nodesBefore := g.NodeCount()
	edgesBefore := g.EdgeCount()

	for _, rec := range records {
		names := rec.EntityNames()
		if len(names) == 0 {
			stats.Skipped++
			continue
		}
		g.BuildFromEntitySet(names)
	}

	stats.NodesAdd = g.NodeCount() - nodesBefore
	stats.EdgesAdd = g.EdgeCount() - edgesBefore
	return stats
}
