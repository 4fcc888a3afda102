package solve

import (
	"github.com/notnil/chess"

	"github.com/casvannoort/4462-chess-problems/internal/puzzle"
)

// BuildTree merges candidate mating lines into one solution tree.
//
// When the puzzle carries a reference continuation whose first move
// matches a candidate and whose length is exactly the full mate line
// (2*mateIn-1 plies), the reference is grafted in place of the engine's
// own continuation: the curated line is authoritative when it is
// complete. An incomplete reference cannot be trusted and the engine
// line is kept instead. Engine lines longer than the mate are trimmed to
// mate length.
//
// After merging, terminal promotion moves are augmented with the other
// promotion pieces that also deliver mate on the same position.
func BuildTree(fen string, cands Candidates, reference []puzzle.Move, mateIn int) puzzle.SolutionTree {
	fullLine := 2*mateIn - 1
	refComplete := len(reference) == fullLine

	tree := puzzle.NewSolutionTree()
	for first, pv := range cands {
		line := pv
		if refComplete && reference[0] == first {
			line = reference
		}
		if len(line) > fullLine {
			line = line[:fullLine]
		}
		tree.Insert(line)
	}

	augmentPromotions(fen, tree)
	return tree
}

// augmentPromotions finds every leaf move that promotes and adds the
// sibling promotion choices that also mate. A queen promotion that mates
// is often matched by rook (or bishop) underpromotions; those are equally
// valid terminal moves and the presentation app accepts any of them.
// Synthesized moves that are illegal or fail to mate are dropped
// silently. The walk carries explicit (node, position) frames.
func augmentPromotions(fen string, tree puzzle.SolutionTree) {
	opt, err := chess.FEN(fen)
	if err != nil {
		return
	}
	root := chess.NewGame(opt).Position()

	type frame struct {
		node puzzle.SolutionTree
		pos  *chess.Position
	}
	notation := chess.UCINotation{}

	stack := []frame{{node: tree, pos: root}}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		var alternates []puzzle.Move
		for key, child := range f.node {
			m, err := puzzle.ParseMove(key)
			if err != nil {
				continue
			}
			played, err := notation.Decode(f.pos, m.UCI())
			if err != nil {
				continue
			}
			next := f.pos.Update(played)

			if len(child) > 0 {
				stack = append(stack, frame{node: child, pos: next})
				continue
			}
			if !m.IsPromotion() {
				continue
			}
			for _, p := range puzzle.PromotionPieces {
				if p == m.Promotion {
					continue
				}
				alt := m.WithPromotion(p)
				if deliversMate(notation, f.pos, alt) {
					alternates = append(alternates, alt)
				}
			}
		}
		for _, alt := range alternates {
			f.node[alt.String()] = puzzle.SolutionTree{}
		}
	}
}

// deliversMate replays the move on the position and reports whether it
// checkmates. Illegal moves do not mate.
func deliversMate(notation chess.UCINotation, pos *chess.Position, m puzzle.Move) bool {
	played, err := notation.Decode(pos, m.UCI())
	if err != nil {
		return false
	}
	return pos.Update(played).Status() == chess.Checkmate
}
