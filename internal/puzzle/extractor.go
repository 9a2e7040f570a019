package puzzle

import (
	"github.com/chessreview/review/internal/chessrules"
	"github.com/chessreview/review/internal/classify"
)

// ExtractOptions carries the per-player context the extractor needs: which
// side the puzzles are mined for, and the optional opening/rating used to
// stamp each puzzle record.
type ExtractOptions struct {
	PlayerIsWhite bool
	Opening       string
	Rating        int
}

// Extracted groups the extractor's three disjoint output lists.
type Extracted struct {
	Mistakes      []Puzzle
	MissedTactics []Puzzle
	Positive      []Puzzle
}

// Extract mines mistake, missed-tactic, and positive puzzles from a
// finished review's ordered evaluations.
func Extract(evaluations []classify.MoveEvaluation, opts ExtractOptions) Extracted {
	var out Extracted

	// Each candidate is built under recover: a panic while building one
	// puzzle (theme detection included) drops that puzzle only.
	safe := func(build func() (Puzzle, bool)) (p Puzzle, ok bool) {
		defer func() {
			if recover() != nil {
				p, ok = Puzzle{}, false
			}
		}()
		return build()
	}

	for _, ev := range evaluations {
		if ev.IsWhiteMove != opts.PlayerIsWhite {
			continue
		}
		if ev.MoveNumber < minMoveNumber {
			continue
		}
		if isTooLost(ev, opts.PlayerIsWhite) {
			continue
		}

		if len(out.Mistakes) < mistakeCap {
			if p, ok := safe(func() (Puzzle, bool) { return mistakePuzzle(ev, opts, len(out.Mistakes)) }); ok {
				out.Mistakes = append(out.Mistakes, p)
			}
		}
		if len(out.MissedTactics) < missedTacticCap {
			if p, ok := safe(func() (Puzzle, bool) { return missedTacticPuzzle(ev, opts) }); ok {
				out.MissedTactics = append(out.MissedTactics, p)
			}
		}
		if len(out.Positive) < positiveCap {
			if p, ok := safe(func() (Puzzle, bool) { return positivePuzzle(ev, opts) }); ok {
				out.Positive = append(out.Positive, p)
			}
		}
	}

	return out
}

// isTooLost implements the shared "not too lost" filter: the player's own
// eval must be no worse than -500, and they must not already be getting
// mated.
func isTooLost(ev classify.MoveEvaluation, playerIsWhite bool) bool {
	playerEval := ev.EvalBefore.ToPlayerPerspective(playerIsWhite)
	if playerEval.IsMate() && playerEval.MateIn() < 0 {
		return true
	}
	return int(playerEval) < tooLostEvalFloor
}

func mistakeMarker(m classify.MarkerType) bool {
	switch m {
	case classify.Inaccuracy, classify.Mistake, classify.Miss, classify.Blunder:
		return true
	default:
		return false
	}
}

func mistakeFloor(m classify.MarkerType) int {
	switch m {
	case classify.Miss:
		return 100
	case classify.Mistake:
		return 150
	case classify.Blunder:
		return 250
	default:
		return 0
	}
}

func mistakePuzzle(ev classify.MoveEvaluation, opts ExtractOptions, alreadyFound int) (Puzzle, bool) {
	if !mistakeMarker(ev.Marker) {
		return Puzzle{}, false
	}
	if ev.PlayedUCI != "" && ev.PlayedUCI == ev.BestMove {
		return Puzzle{}, false
	}
	floor := mistakeFloor(ev.Marker)
	if ev.CentipawnLoss < floor || ev.CentipawnLoss < 100 {
		return Puzzle{}, false
	}
	if isTrivialRecapture(ev) {
		return Puzzle{}, false
	}

	playerEval := ev.EvalBefore.ToPlayerPerspective(opts.PlayerIsWhite)
	if alreadyFound >= 5 && int(playerEval) > stillWinningEval && ev.Marker != classify.Blunder {
		return Puzzle{}, false
	}

	evalBefore := ev.EvalBefore
	evalAfter := ev.EvalAfter
	theme, hasTheme := classify.DetectTheme(ev.FEN, ev.PlayedUCI, &evalBefore, &evalAfter)
	gain, _ := classify.MaterialGain(ev.FEN, ev.PlayedUCI, &evalBefore, &evalAfter)

	if !passesQualityGate(ev.Marker, theme, hasTheme, gain) {
		return Puzzle{}, false
	}

	return newPuzzle(ev, opts, theme, hasTheme, gain, false, false), true
}

// isTrivialRecapture skips the degenerate "queen takes pawn, nothing else
// to capture" case: a puzzle built on the only available capture teaches
// nothing.
func isTrivialRecapture(ev classify.MoveEvaluation) bool {
	pos, err := chessrules.LoadFEN(ev.FEN)
	if err != nil {
		return false
	}
	move, ok := pos.FindMove(ev.PlayedUCI)
	if !ok || !move.IsCapture {
		return false
	}
	if move.Piece != chessrules.Queen || move.Captured != chessrules.Pawn {
		return false
	}
	captures := 0
	for _, m := range pos.LegalMoves() {
		if m.IsCapture {
			captures++
		}
	}
	return captures == 1
}

func missedTacticPuzzle(ev classify.MoveEvaluation, opts ExtractOptions) (Puzzle, bool) {
	switch ev.Marker {
	case classify.Inaccuracy, classify.Miss, classify.Good:
	default:
		return Puzzle{}, false
	}
	if ev.BestMove == "" || ev.PlayedUCI == ev.BestMove {
		return Puzzle{}, false
	}

	evalBefore := ev.EvalBefore
	evalAfter := ev.EvalAfter
	theme, hasTheme := classify.DetectTheme(ev.FEN, ev.BestMove, &evalBefore, &evalAfter)
	gain, _ := classify.MaterialGain(ev.FEN, ev.BestMove, &evalBefore, &evalAfter)

	justified := (hasTheme && theme.Confidence >= missedTacticThemeConf) ||
		gain >= missedTacticMaterial || ev.CentipawnLoss >= missedTacticCPLoss
	if !justified {
		return Puzzle{}, false
	}
	if isObviousCapture(ev.FEN, ev.BestMove) && !(hasTheme && theme.Confidence >= missedTacticThemeConf) {
		return Puzzle{}, false
	}

	p := newPuzzle(ev, opts, theme, hasTheme, gain, false, true)
	p.Marker = classify.Miss
	return p, true
}

// isObviousCapture rejects "captured a defended piece at least as valuable
// as the mover, with no pawn-value recapture available" as a missed-
// tactic puzzle, unless the theme detector found something genuine.
func isObviousCapture(fen, uci string) bool {
	pos, err := chessrules.LoadFEN(fen)
	if err != nil {
		return false
	}
	move, ok := pos.FindMove(uci)
	if !ok || !move.IsCapture {
		return false
	}
	targetValue := classify.PieceValue(move.Captured)
	moverValue := classify.PieceValue(move.Piece)
	if targetValue < moverValue {
		return false
	}
	after, err := pos.Apply(uci)
	if err != nil {
		return false
	}
	for _, m := range after.LegalMoves() {
		if m.To == move.To && classify.PieceValue(m.Piece) <= 100 {
			return false
		}
	}
	return true
}

func positivePuzzle(ev classify.MoveEvaluation, opts ExtractOptions) (Puzzle, bool) {
	if ev.Marker != classify.Brilliant {
		return Puzzle{}, false
	}
	playerEval := ev.EvalBefore.ToPlayerPerspective(opts.PlayerIsWhite)
	if playerEval.IsMate() && playerEval.MateIn() < 0 {
		return Puzzle{}, false
	}
	if int(playerEval) < tooLostEvalFloor {
		return Puzzle{}, false
	}

	evalBefore := ev.EvalBefore
	evalAfter := ev.EvalAfter
	theme, hasTheme := classify.DetectTheme(ev.FEN, ev.PlayedUCI, &evalBefore, &evalAfter)
	gain, _ := classify.MaterialGain(ev.FEN, ev.PlayedUCI, &evalBefore, &evalAfter)

	if !passesQualityGate(ev.Marker, theme, hasTheme, gain) {
		return Puzzle{}, false
	}

	return newPuzzle(ev, opts, theme, hasTheme, gain, true, false), true
}

// passesQualityGate implements spec §4.13's shared quality gate.
func passesQualityGate(marker classify.MarkerType, theme classify.Theme, hasTheme bool, gain int) bool {
	if marker == classify.Blunder {
		return true
	}
	if hasTheme && validThemes[theme.Name] {
		return true
	}
	if hasTheme && genericThemes[theme.Name] && gain >= qualityGateMaterial {
		return true
	}
	if !hasTheme && gain >= qualityGateMaterial {
		return true
	}
	return false
}

func newPuzzle(ev classify.MoveEvaluation, opts ExtractOptions, theme classify.Theme, hasTheme bool, gain int, isPositive, isMissedTactic bool) Puzzle {
	p := Puzzle{
		FEN:            ev.FEN,
		Played:         ev.PlayedUCI,
		Best:           ev.BestMove,
		CentipawnLoss:  ev.CentipawnLoss,
		Marker:         ev.Marker,
		MoveNumber:     ev.MoveNumber,
		PlayerColor:    colorName(opts.PlayerIsWhite),
		Opening:        opts.Opening,
		IsPositive:     isPositive,
		IsMissedTactic: isMissedTactic,
		MaterialGain:   gain,
	}
	if hasTheme {
		p.TacticalTheme = theme.Name
	}
	if opts.Rating > 0 {
		p.Rating = opts.Rating + 300
	}
	return p
}

func colorName(isWhite bool) string {
	if isWhite {
		return "white"
	}
	return "black"
}
