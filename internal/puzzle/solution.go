package puzzle

import (
	"time"

	"github.com/chessreview/review/internal/chessrules"
	"github.com/chessreview/review/internal/engine"
)

// MinQualityScore is the threshold a caller should drop finished puzzles
// below.
const MinQualityScore = 50

// UniqueMoveThreshold bounds how close the top two replies can be, in
// centipawns, before a user ply is judged to have multiple acceptable
// answers and the solution is cut short.
const UniqueMoveThreshold = 75

// SolutionOptions configures one solution-generation run.
type SolutionOptions struct {
	Depth     int
	MaxMoves  int
	Timeout   time.Duration
}

// DefaultSolutionOptions returns the spec's suggested defaults.
func DefaultSolutionOptions() SolutionOptions {
	return SolutionOptions{Depth: 18, MaxMoves: 8, Timeout: 15 * time.Second}
}

// GenerateSolution re-drives the engine pool from fen to build a playable
// solution line starting with the puzzle's first move. It returns what it
// collected even if the engine fails partway through.
func GenerateSolution(pool *engine.Pool, fen, firstMoveUCI string, opts SolutionOptions) []SolutionMove {
	pos, err := chessrules.LoadFEN(fen)
	if err != nil {
		return nil
	}

	solution := make([]SolutionMove, 0, opts.MaxMoves)
	solution = append(solution, SolutionMove{UCI: firstMoveUCI, IsUserMove: true, FENBeforeThisMove: fen})

	pos, err = pos.Apply(firstMoveUCI)
	if err != nil {
		return solution
	}

	for i := 1; i < opts.MaxMoves; i++ {
		if pos.IsGameOver() {
			break
		}

		if len(solution) >= 3 && terminatesByEval(pos, pool, opts) {
			break
		}

		isUserPly := i%2 == 1
		if isUserPly && len(solution) >= 3 && ambiguousBestReply(pos, pool, opts) {
			break
		}

		analysis, err := pool.Analyze(pos.FEN(), engine.AnalyzeOptions{Depth: opts.Depth, Timeout: opts.Timeout})
		if err != nil || analysis.BestMove == "" {
			break
		}

		fenBefore := pos.FEN()
		next, err := pos.Apply(analysis.BestMove)
		if err != nil {
			break
		}

		solution = append(solution, SolutionMove{
			UCI:               analysis.BestMove,
			IsUserMove:        isUserPly,
			FENBeforeThisMove: fenBefore,
		})
		pos = next
	}

	return solution
}

// terminatesByEval checks the eval-based stop conditions: a won-or-lost
// advantage already established, or a forced mate found. The engine's raw
// score is already relative to the side to move, which is exactly the
// "player perspective" the spec asks for here.
func terminatesByEval(pos *chessrules.Position, pool *engine.Pool, opts SolutionOptions) bool {
	analysis, err := pool.Analyze(pos.FEN(), engine.AnalyzeOptions{Depth: opts.Depth, Timeout: opts.Timeout})
	if err != nil {
		return false
	}
	abs := int(analysis.Evaluation)
	if abs < 0 {
		abs = -abs
	}
	if abs >= 500 {
		return true
	}
	return abs > 10000
}

// ambiguousBestReply reports whether the top two engine lines from pos are
// within UniqueMoveThreshold of each other, meaning a user ply here would
// accept more than one correct answer.
func ambiguousBestReply(pos *chessrules.Position, pool *engine.Pool, opts SolutionOptions) bool {
	analysis, err := pool.Analyze(pos.FEN(), engine.AnalyzeOptions{Depth: opts.Depth, Timeout: opts.Timeout})
	if err != nil || len(analysis.TopMoves) < 2 {
		return false
	}
	diff := int(analysis.TopMoves[0].CP) - int(analysis.TopMoves[1].CP)
	if diff < 0 {
		diff = -diff
	}
	return diff <= UniqueMoveThreshold
}

// QualityScore implements the spec's scoring formula for a finished
// puzzle: theme presence, material gain, move-uniqueness (assumed true by
// construction, since ambiguousBestReply already filtered it out),
// solution length, and eval swing all contribute points.
func QualityScore(hasTheme bool, materialGain int, solutionLen int, evalSwing int) int {
	score := 0
	if hasTheme {
		score += 30
	}
	if materialGain >= 100 {
		score += 20
	}
	score += 25 // unique best move, assumed by construction
	if solutionLen >= 2 && solutionLen <= 4 {
		score += 15
	}
	if evalSwing >= 200 {
		score += 10
	}
	return score
}
