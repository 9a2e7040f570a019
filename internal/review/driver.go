package review

import (
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/chessreview/review/internal/book"
	"github.com/chessreview/review/internal/chessrules"
	"github.com/chessreview/review/internal/classify"
	"github.com/chessreview/review/internal/config"
	"github.com/chessreview/review/internal/engine"
)

const (
	retryAttempts  = 3
	retryMinDepth  = 6
	mateScoreLoser = -99999
)

// Driver walks a parsed game through the engine pool and classification
// cascade, producing one MoveEvaluation per ply plus aggregate accuracy.
type Driver struct {
	pool       *engine.Pool
	book       *book.Table
	depth      classify.DepthSchedule
	thresholds classify.Thresholds
	moveTimeMs int
	timeout    time.Duration
	logger     *zap.Logger
}

// NewDriver builds a Driver from the loaded configuration.
func NewDriver(pool *engine.Pool, bookTable *book.Table, cfg *config.Config, logger *zap.Logger) *Driver {
	return &Driver{
		pool:       pool,
		book:       bookTable,
		depth:      cfg.Depth,
		thresholds: cfg.Thresholds,
		moveTimeMs: cfg.AnalysisMoveMs,
		timeout:    cfg.AnalysisTimeout,
		logger:     logger,
	}
}

// Review analyzes every ply of a parsed game and returns the aggregate
// result, firing opts.OnProgress/OnMove once per ply as it goes.
func (d *Driver) Review(game *chessrules.ParsedGame, opts Options) (*ReviewResult, error) {
	total := len(game.Plies)
	evaluations := make([]classify.MoveEvaluation, 0, total)
	summary := make(map[string]int)

	var whiteAccSum, blackAccSum float64
	var whiteCPLossSum, blackCPLossSum float64
	var whiteMoves, blackMoves int
	var complexitySum float64
	var complexityCount int

	var analysisBefore *classify.EngineAnalysis
	var hadMateBefore bool

	for i, ply := range game.Plies {
		posBefore, err := chessrules.LoadFEN(ply.FENBefore)
		if err != nil {
			return nil, newError(InvalidInput, "malformed FEN before move "+ply.Move.SAN, err)
		}
		posAfter, err := chessrules.LoadFEN(ply.FENAfter)
		if err != nil {
			return nil, newError(InvalidInput, "malformed FEN after move "+ply.Move.SAN, err)
		}

		depth := d.depth.ProgressiveDepth(i)
		isBook := d.book.IsBookMove(ply.FENBefore, ply.FENAfter, ply.MoveNumber, d.thresholds.MaxBookMoves)

		wasInCheck := posBefore.IsCheck()
		onlyLegalMove := len(posBefore.LegalMoves()) == 1

		var analysisAfter *classify.EngineAnalysis

		if isBook {
			// Book plies bypass the engine entirely: the orchestrator's
			// Book rule fires before either analysis value is read, so
			// nil is a legitimate input here. The next ply (if not also
			// book) recomputes its own "before" analysis from scratch,
			// since there is nothing to carry across the skip.
			analysisBefore = nil
			hadMateBefore = false
		} else {
			if analysisBefore == nil {
				analysisBefore, err = d.analyzeOrSynthetic(posBefore, depth)
				if err != nil {
					return nil, err
				}
				hadMateBefore = analysisBefore.Evaluation.IsMate() &&
					analysisBefore.Evaluation.ToPlayerPerspective(ply.IsWhiteMove).MateIn() > 0
			}

			analysisAfter, err = d.analyzeOrSynthetic(posAfter, depth)
			if err != nil {
				return nil, err
			}
		}

		in := classify.OrchestratorInput{
			FENBefore:      ply.FENBefore,
			FENAfter:       ply.FENAfter,
			PlayedSAN:      ply.Move.SAN,
			PlayedUCI:      ply.Move.UCI(),
			Move:           ply.Move,
			IsWhiteMove:    ply.IsWhiteMove,
			MoveNumber:     ply.MoveNumber,
			AnalysisBefore: analysisBefore,
			AnalysisAfter:  analysisAfter,
			GameWinner:     game.Winner,
			PosBefore:      posBefore,
			PosAfter:       posAfter,
			WasInCheck:     wasInCheck,
			OnlyLegalMove:  onlyLegalMove,
			HadMateBefore:  hadMateBefore,
			IsBook:         isBook,
			Thresholds:     d.thresholds,
		}

		result := classify.Orchestrate(in)
		evaluations = append(evaluations, result)
		summary[result.Marker.String()]++

		acc := moveAccuracy(result.CentipawnLoss)
		if ply.IsWhiteMove {
			whiteAccSum += acc
			whiteCPLossSum += float64(result.CentipawnLoss)
			whiteMoves++
		} else {
			blackAccSum += acc
			blackCPLossSum += float64(result.CentipawnLoss)
			blackMoves++
		}

		if in.AnalysisBefore != nil && len(in.AnalysisBefore.TopMoves) >= 2 {
			topEvals := make([]int, len(in.AnalysisBefore.TopMoves))
			for j, tm := range in.AnalysisBefore.TopMoves {
				topEvals[j] = int(tm.CP)
			}
			complexitySum += classify.CalculateComplexity(topEvals)
			complexityCount++
		}

		if opts.OnMove != nil {
			opts.OnMove(newMoveEvent(result))
		}
		if opts.OnProgress != nil {
			opts.OnProgress(newProgressEvent(i+1, total))
		}

		if isBook {
			continue
		}

		// The position after this ply is the "before" position for the
		// next one; its evaluation is already computed.
		analysisBefore = analysisAfter
		hadMateBefore = analysisAfter.Evaluation.IsMate() &&
			analysisAfter.Evaluation.ToPlayerPerspective(!ply.IsWhiteMove).MateIn() > 0
	}

	complexity := 0.0
	if complexityCount > 0 {
		complexity = complexitySum / float64(complexityCount)
	}

	// The last ply's eval_after is already White-perspective, so it doubles
	// directly as the final position's win probability input.
	winProbWhite := 0.5
	if len(evaluations) > 0 {
		winProbWhite = classify.EvalToWinProbability(int(evaluations[len(evaluations)-1].EvalAfter))
	}

	result := &ReviewResult{
		Accuracy: Accuracy{
			White: averageAccuracy(whiteAccSum, whiteMoves),
			Black: averageAccuracy(blackAccSum, blackMoves),
		},
		Summary:     summary,
		TotalMoves:  total,
		Evaluations: evaluations,
		Diagnostics: Diagnostics{
			T1Accuracy: Accuracy{
				White: classify.CalculateT1Accuracy(acpl(whiteCPLossSum, whiteMoves)),
				Black: classify.CalculateT1Accuracy(acpl(blackCPLossSum, blackMoves)),
			},
			Complexity: complexity,
			FinalWinProbability: Accuracy{
				White: winProbWhite * 100,
				Black: (1 - winProbWhite) * 100,
			},
			FinalEloAdvantage: classify.WinProbabilityToElo(winProbWhite),
		},
	}

	if opts.OpponentRating > 0 {
		var wonWhite, wonBlack *bool
		if game.Winner != nil {
			w := *game.Winner
			b := !w
			wonWhite, wonBlack = &w, &b
		}
		result.Diagnostics.PerformanceRating = &PerformanceRating{
			White: classify.CalculatePerformanceRating(opts.OpponentRating, result.Accuracy.White, wonWhite),
			Black: classify.CalculatePerformanceRating(opts.OpponentRating, result.Accuracy.Black, wonBlack),
		}
	}

	return result, nil
}

// acpl returns the average centipawn loss for a side, or 0 (a perfect
// score under CalculateT1Accuracy) when it made no moves.
func acpl(sum float64, moves int) float64 {
	if moves == 0 {
		return 0
	}
	return sum / float64(moves)
}

// analyzeOrSynthetic returns the game-over synthetic analysis when pos has
// no legal continuation, otherwise drives the engine pool (with retry) and
// normalizes the result to White's perspective.
func (d *Driver) analyzeOrSynthetic(pos *chessrules.Position, depth int) (*classify.EngineAnalysis, error) {
	if pos.IsGameOver() {
		raw := &classify.EngineAnalysis{}
		if pos.IsCheckmate() {
			raw.Evaluation = classify.Score(mateScoreLoser)
		}
		return normalizeAnalysis(raw, pos.SideToMove() == chessrules.White), nil
	}

	raw, err := d.retryAnalyze(pos.FEN(), depth)
	if err != nil {
		return nil, err
	}
	return normalizeAnalysis(raw, pos.SideToMove() == chessrules.White), nil
}

// retryAnalyze calls the pool up to retryAttempts times, widening the
// timeout and narrowing the depth on each failure, per the driver's
// retry contract: attempt N gets timeout*N and depth-1 (floored at
// retryMinDepth) relative to attempt N-1.
func (d *Driver) retryAnalyze(fen string, depth int) (*classify.EngineAnalysis, error) {
	var lastErr error
	attemptDepth := depth

	for attempt := 1; attempt <= retryAttempts; attempt++ {
		opts := engine.AnalyzeOptions{
			Depth:      attemptDepth,
			MoveTimeMs: d.moveTimeMs,
			Timeout:    d.timeout * time.Duration(attempt),
		}
		analysis, err := d.pool.Analyze(fen, opts)
		if err == nil && len(analysis.TopMoves) > 0 {
			return analysis, nil
		}
		if err == nil {
			err = newError(EngineInvalidOutput, "engine returned no top moves", nil)
		} else {
			err = fromEngineError(err)
		}
		lastErr = err
		if d.logger != nil {
			d.logger.Warn("analysis attempt failed",
				zap.Int("attempt", attempt), zap.String("fen", fen), zap.Error(err))
		}
		attemptDepth--
		if attemptDepth < retryMinDepth {
			attemptDepth = retryMinDepth
		}
	}
	return nil, lastErr
}

// normalizeAnalysis converts a raw (side-to-move-perspective) analysis
// into a White-perspective one. This is the single point in the whole
// pipeline where the sign flip happens; everything downstream assumes
// White's perspective already.
func normalizeAnalysis(raw *classify.EngineAnalysis, sideToMoveIsWhite bool) *classify.EngineAnalysis {
	out := &classify.EngineAnalysis{
		Evaluation: raw.Evaluation.ToPlayerPerspective(sideToMoveIsWhite),
		BestMove:   raw.BestMove,
		Depth:      raw.Depth,
	}
	if len(raw.TopMoves) > 0 {
		out.TopMoves = make([]classify.TopMove, len(raw.TopMoves))
		for i, tm := range raw.TopMoves {
			out.TopMoves[i] = classify.TopMove{UCI: tm.UCI, CP: tm.CP.ToPlayerPerspective(sideToMoveIsWhite)}
		}
	}
	return out
}

// moveAccuracy implements the per-move accuracy contribution: a move with
// zero loss scores 100, and accuracy decays exponentially with loss,
// capped at a 200cp loss so a single catastrophic blunder doesn't drag
// the denominator below where any two blunders would look the same.
func moveAccuracy(cpLoss int) float64 {
	capped := cpLoss
	if capped > 200 {
		capped = 200
	}
	return 100.0 * math.Pow(0.995, float64(capped))
}

func averageAccuracy(sum float64, n int) float64 {
	if n == 0 {
		return 100.0
	}
	return sum / float64(n)
}
