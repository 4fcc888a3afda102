package puzzle

import (
	"encoding/json"
	"testing"
)

func line(moves ...string) []Move {
	out := make([]Move, len(moves))
	for i, s := range moves {
		out[i] = MustParseMove(s)
	}
	return out
}

func TestTreeInsertSharesPrefixes(t *testing.T) {
	tree := NewSolutionTree()
	tree.Insert(line("d1h5", "g6h5", "c4f7"))
	tree.Insert(line("d1h5", "g6h5", "h2h4"))

	if len(tree) != 1 {
		t.Fatalf("root should have 1 move, got %d", len(tree))
	}
	replies := tree["d1-h5"]["g6-h5"]
	if len(replies) != 2 {
		t.Fatalf("shared prefix should branch into 2 moves, got %d", len(replies))
	}
	if leaf := replies["c4-f7"]; len(leaf) != 0 {
		t.Errorf("leaf should be empty, got %v", leaf)
	}
}

func TestTreeDepth(t *testing.T) {
	tests := []struct {
		name  string
		lines [][]Move
		want  int
	}{
		{"empty", nil, 0},
		{"mate in one", [][]Move{line("a7a8q")}, 1},
		{"mate in two", [][]Move{line("d5c6", "b7c6", "f1b5")}, 3},
		{"uneven branches", [][]Move{
			line("d5c6", "b7c6", "f1b5"),
			line("e2e4"),
		}, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tree := NewSolutionTree()
			for _, l := range tt.lines {
				tree.Insert(l)
			}
			if got := tree.Depth(); got != tt.want {
				t.Errorf("Depth() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestTreeJSON(t *testing.T) {
	tree := NewSolutionTree()
	tree.Insert(line("a7a8q"))

	data, err := json.Marshal(tree)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(data) != `{"a7-a8q":{}}` {
		t.Errorf("marshal = %s, want {\"a7-a8q\":{}}", data)
	}
}
