package graph

import (
	"encoding/json"
	"fmt"
	"os"
)

type snapshot struct {
	Name  string   `json:"name,omitempty"`
	Nodes []string `json:"nodes"`
	Edges []Edge   `json:"edges"`
}

// MarshalJSON emits the graph as a deterministic node/edge listing.
func (g *Graph) MarshalJSON() ([]byte, error) {
	return json.Marshal(snapshot{
		Name:  g.Name,
		Nodes: g.Nodes(),
		Edges: g.Edges(),
	})
}

// UnmarshalJSON restores a graph from its snapshot form and rebuilds the
// adjacency indices, which are not serialized.
func (g *Graph) UnmarshalJSON(data []byte) error {
	var snap snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return err
	}

	g.Name = snap.Name
	g.nodes = make(map[string]struct{}, len(snap.Nodes))
	g.edges = make(map[[2]string]*Edge, len(snap.Edges))
	g.adjacency = make(map[string]map[string]*Edge, len(snap.Nodes))

	for _, n := range snap.Nodes {
		g.AddNode(n)
	}
	for i := range snap.Edges {
		e := snap.Edges[i]
		key := pairKey(e.Source, e.Target)
		e.Source, e.Target = key[0], key[1]
		if e.Origin == "" {
			e.Origin = OriginObserved
		}
		g.insertEdge(&e)
	}
	return nil
}

// SaveSnapshot persists the graph to a JSON file.
func SaveSnapshot(g *Graph, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create snapshot file: %w", err)
	}
	defer f.Close()

	encoder := json.NewEncoder(f)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(g); err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}
	return nil
}

// LoadSnapshot loads a graph from a JSON snapshot file.
func LoadSnapshot(path string) (*Graph, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open snapshot file: %w", err)
	}
	defer f.Close()

	g := NewGraph("")
	decoder := json.NewDecoder(f)
	if err := decoder.Decode(g); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot: %w", err)
	}
	return g, nil
}
