package classify

import (
	"strings"

	"github.com/chessreview/review/internal/chessrules"
)

// OrchestratorInput is everything the cascade (C10) needs for one ply.
// It is assembled by the Review Driver (C11) from two perspective-
// normalized EngineAnalysis values plus chess-rules-level facts about the
// position.
type OrchestratorInput struct {
	FENBefore     string
	FENAfter      string
	PlayedSAN     string
	PlayedUCI     string
	Move          chessrules.Move
	IsWhiteMove   bool
	MoveNumber    int
	AnalysisBefore *EngineAnalysis
	AnalysisAfter  *EngineAnalysis
	GameWinner     *bool

	PosBefore *chessrules.Position
	PosAfter  *chessrules.Position

	WasInCheck    bool
	OnlyLegalMove bool
	HadMateBefore bool

	IsBook bool

	Thresholds Thresholds
}

// Orchestrate runs the twelve-step classification cascade and always
// produces a MoveEvaluation (I4: the first rule to fire wins).
func Orchestrate(in OrchestratorInput) MoveEvaluation {
	eval := func(marker MarkerType, cpLoss int) MoveEvaluation {
		depth := 0
		if in.AnalysisAfter != nil {
			depth = in.AnalysisAfter.Depth
		}
		bestMove := ""
		if in.AnalysisBefore != nil {
			bestMove = in.AnalysisBefore.BestMove
		}
		var before, after Score
		if in.AnalysisBefore != nil {
			before = in.AnalysisBefore.Evaluation
		}
		if in.AnalysisAfter != nil {
			after = in.AnalysisAfter.Evaluation
		}
		return MoveEvaluation{
			FEN:           in.FENBefore,
			FENAfter:      in.FENAfter,
			MoveSAN:       in.PlayedSAN,
			PlayedUCI:     in.PlayedUCI,
			EvalBefore:    before,
			EvalAfter:     after,
			BestMove:      bestMove,
			Marker:        marker,
			CentipawnLoss: cpLoss,
			Depth:         depth,
			MoveNumber:    in.MoveNumber,
			IsWhiteMove:   in.IsWhiteMove,
		}
	}

	// 1. Book.
	if in.IsBook {
		return eval(Book, 0)
	}

	// 2. SAN mate suffix.
	if strings.HasSuffix(in.PlayedSAN, "#") {
		return eval(Best, 0)
	}

	// 3. Build context.
	ctx := BuildContext(in.FENBefore, in.PlayedSAN, in.PlayedUCI, in.IsWhiteMove,
		in.AnalysisBefore, in.AnalysisAfter,
		func(uci string) (string, bool) {
			if in.PosAfter == nil {
				return "", false
			}
			return in.PosAfter.FEN(), true
		}, in.MoveNumber)
	ctx.GameWinner = in.GameWinner

	// 4. Raw cp loss, phase forgiveness, round. PhaseForgiveness is
	// specified over ply index, not the full-move number PGN counts in:
	// move_number N covers ply index 2(N-1) for White and 2(N-1)+1 for
	// Black.
	plyIndex := (in.MoveNumber - 1) * 2
	if !in.IsWhiteMove {
		plyIndex++
	}
	cpLoss := CentipawnLoss(ctx)
	cpLoss = int(float64(cpLoss)*PhaseForgiveness(plyIndex) + 0.5)
	cpLoss = Clamp(cpLoss)

	// 5. Mate handler.
	mateIn := MateInput{
		SAN:         in.PlayedSAN,
		EvalBefore:  ctx.EvalBefore,
		EvalAfter:   ctx.EvalAfter,
		EvalIfBest:  ctx.EvalIfBestMove,
		IsWhiteMove: in.IsWhiteMove,
		OnlyLegalMove: in.OnlyLegalMove,
		WasForced:     in.OnlyLegalMove || in.WasInCheck,
	}
	if marker, loss, ok := ClassifyMate(mateIn); ok {
		return eval(marker, loss)
	}

	// 6. Brilliant detector.
	var afterTopMoves []TopMove
	if in.AnalysisAfter != nil {
		afterTopMoves = in.AnalysisAfter.TopMoves
	}
	brilliantIn := BrilliantInput{
		Move:          in.Move,
		WasInCheck:    in.WasInCheck,
		OnlyLegalMove: in.OnlyLegalMove,
		MoveNumber:    in.MoveNumber,
		EvalBefore:    ctx.EvalBefore,
		EvalAfter:     ctx.EvalAfter,
		EvalIfBest:    ctx.EvalIfBestMove,
		IsWhiteMove:   in.IsWhiteMove,
		CentipawnLoss: cpLoss,
		BestMoveUCI:   ctx.BestMoveUCI,
		PlayedUCI:     in.PlayedUCI,
		PosBefore:     in.PosBefore,
		PosAfter:      in.PosAfter,
		TopMovesAfter: afterTopMoves,
		HadMateBefore: in.HadMateBefore,
	}
	if b := DetectBrilliant(brilliantIn); b.IsBrilliant {
		return eval(Brilliant, cpLoss)
	}

	// 7. Zero loss, sanity-checked against engine consistency.
	if cpLoss == 0 {
		after := int(ctx.EvalAfter.ToPlayerPerspective(in.IsWhiteMove))
		best := int(ctx.EvalIfBestMove.ToPlayerPerspective(in.IsWhiteMove))
		if absInt(after-best) <= 500 {
			return eval(Best, 0)
		}
	}

	// 8. Top-move classifier.
	if marker, ok := ClassifyTopMove(ctx, cpLoss, in.Thresholds); ok {
		return eval(marker, cpLoss)
	}

	// 9. Great detector.
	tierIn := TierInput{
		Move:          in.Move,
		CentipawnLoss: cpLoss,
		EvalBefore:    ctx.EvalBefore,
		EvalAfter:     ctx.EvalAfter,
		EvalIfBest:    ctx.EvalIfBestMove,
		IsWhiteMove:   in.IsWhiteMove,
		MoveNumber:    in.MoveNumber,
		IsMateContext: ctx.EvalBefore.IsMate() || ctx.EvalAfter.IsMate(),
		GamePhase:     gamePhase(in.MoveNumber),
	}
	if great := DetectGreat(tierIn); great.Matched {
		return eval(Great, cpLoss)
	}

	// 10/11. Blunder, Mistake, Miss, Inaccuracy, with the mate-safety
	// downgrade to Good when eval_after is already a mate for the player —
	// applies only to Inaccuracy/Mistake/Blunder, not Miss.
	_, afterForPlayer, _ := mateFacts(ctx.EvalAfter, in.IsWhiteMove)
	if blunder := DetectBlunder(tierIn); blunder.Matched {
		if afterForPlayer {
			return eval(Good, cpLoss)
		}
		return eval(Blunder, cpLoss)
	}
	if mistake := DetectMistake(tierIn); mistake.Matched {
		if afterForPlayer {
			return eval(Good, cpLoss)
		}
		return eval(Mistake, cpLoss)
	}
	if miss := DetectMiss(tierIn); miss.Matched {
		return eval(Miss, cpLoss)
	}
	if inacc := DetectInaccuracy(tierIn); inacc.Matched {
		if afterForPlayer {
			return eval(Good, cpLoss)
		}
		return eval(Inaccuracy, cpLoss)
	}

	// 12. Fallback threshold table.
	return eval(markerFromLoss(cpLoss, in.Thresholds), cpLoss)
}

// gamePhase is a coarse ply-count based phase classifier, used only to
// pick the Inaccuracy detector's leniency multiplier.
func gamePhase(moveNumber int) Phase {
	switch {
	case moveNumber <= 10:
		return PhaseOpening
	case moveNumber <= 40:
		return PhaseMiddlegame
	default:
		return PhaseEndgame
	}
}
