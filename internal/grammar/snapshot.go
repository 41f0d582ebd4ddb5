package grammar

import "encoding/json"

// Snapshot represents a snapshot of the grammar for drift detection.
type Snapshot struct {
	Operators []OperatorSnapshot `json:"operators"`
	Paths     []string           `json:"paths"`
}

// OperatorSnapshot represents an operator in the snapshot.
type OperatorSnapshot struct {
	Symbol string `json:"symbol"`
	Kind   string `json:"kind"`
}

// GetSnapshot returns a JSON-serializable snapshot of the grammar.
func GetSnapshot() Snapshot {
	g := GetGrammar()

	ops := make([]OperatorSnapshot, len(g.Operators))
	for i, op := range g.Operators {
		ops[i] = OperatorSnapshot{Symbol: op.Symbol, Kind: op.Kind}
	}

	paths := make([]string, len(g.Paths))
	for i, p := range g.Paths {
		paths[i] = p.Form
	}

	return Snapshot{
		Operators: ops,
		Paths:     paths,
	}
}

// GetSnapshotJSON returns the snapshot as JSON bytes.
func GetSnapshotJSON() ([]byte, error) {
	snapshot := GetSnapshot()
	return json.MarshalIndent(snapshot, "", "  ")
}
