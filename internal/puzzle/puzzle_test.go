package puzzle

import "testing"

func TestParseMateCount(t *testing.T) {
	tests := []struct {
		label string
		want  int
	}{
		{"Mate in one", 1},
		{"Mate in two", 2},
		{"Mate in Three", 3},
		{"MATE IN FOUR", 4},
		{"mate in five", 5},
		{"Mate in ten", 10},
		{"Mate in 2", 2},
		{"mate in 12", 12},
		{"Mate in two or three", 2}, // first match wins
		{"White to move", 0},
		{"", 0},
	}

	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			if got := ParseMateCount(tt.label); got != tt.want {
				t.Errorf("ParseMateCount(%q) = %d, want %d", tt.label, got, tt.want)
			}
		})
	}
}

func TestTitleCase(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"mate in two", "Mate in Two"},
		{"MATE IN TWO", "Mate in Two"},
		{"white to move", "White to Move"},
		{"in the end", "In The End"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := TitleCase(tt.in); got != tt.want {
				t.Errorf("TitleCase(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestPuzzleMateCount(t *testing.T) {
	p := Puzzle{ID: 1, Type: "Mate in three"}
	if got := p.MateCount(); got != 3 {
		t.Errorf("MateCount() = %d, want 3", got)
	}
}
