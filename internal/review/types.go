// Package review implements the per-game review driver (C11): it walks a
// parsed game ply by ply, drives the engine pool with progressive depth
// and book shortcuts, normalizes every evaluation to White's perspective
// exactly once, hands each ply to the classification cascade, and
// accumulates the result into a ReviewResult plus a stream of JSON events
// a caller can forward to a client as the review progresses.
package review

import "github.com/chessreview/review/internal/classify"

// Accuracy is the per-side accuracy summary.
type Accuracy struct {
	White float64 `json:"white"`
	Black float64 `json:"black"`
}

// ReviewResult is the complete output of reviewing one game. Summary is
// keyed by marker name (classify.MarkerType.String()) rather than the
// MarkerType itself, since the latter has no encoding.TextMarshaler and
// would otherwise serialize as a bare integer.
type ReviewResult struct {
	Accuracy    Accuracy                  `json:"accuracy"`
	Summary     map[string]int            `json:"summary"`
	TotalMoves  int                       `json:"total_moves"`
	Evaluations []classify.MoveEvaluation `json:"evaluations"`
	Diagnostics Diagnostics               `json:"diagnostics"`
}

// PerformanceRating is a per-side estimated performance rating against
// Options.OpponentRating, populated only when that rating is known.
type PerformanceRating struct {
	White int `json:"white"`
	Black int `json:"black"`
}

// Diagnostics carries secondary metrics alongside the primary accuracy
// formula: the Lichess-style T1 accuracy curve, a position-complexity
// average derived from the spread of top engine lines, the final
// position's win probability and its Elo-equivalent advantage, and (when
// Options.OpponentRating is set) an estimated performance rating per side.
type Diagnostics struct {
	T1Accuracy          Accuracy           `json:"t1_accuracy"`
	Complexity          float64            `json:"complexity"`
	FinalWinProbability Accuracy           `json:"final_win_probability"`
	FinalEloAdvantage   float64            `json:"final_elo_advantage"`
	PerformanceRating   *PerformanceRating `json:"performance_rating,omitempty"`
}

// Options configures one Review call.
type Options struct {
	// OpponentRating, if known, feeds Diagnostics.PerformanceRating, not
	// classification itself.
	OpponentRating int

	// OnProgress and OnMove, if set, are invoked once per ply as the
	// review proceeds, mirroring the progress/move event shapes below.
	OnProgress func(ProgressEvent)
	OnMove     func(MoveEvent)
}

// ProgressEvent is emitted after every ply is analyzed.
type ProgressEvent struct {
	Type        string  `json:"type"`
	CurrentMove int     `json:"currentMove"`
	TotalMoves  int      `json:"totalMoves"`
	Percentage  float64 `json:"percentage"`
}

// MoveEvent is emitted after every ply is classified.
type MoveEvent struct {
	Type             string             `json:"type"`
	MoveNumber       int                `json:"moveNumber"`
	FEN              string             `json:"fen"`
	Move             string             `json:"move"`
	MarkerType       classify.MarkerType `json:"markerType"`
	CentipawnLoss    int                `json:"centipawnLoss"`
	EvaluationBefore classify.Score     `json:"evaluationBefore"`
	EvaluationAfter  classify.Score     `json:"evaluationAfter"`
	BestMove         string             `json:"bestMove"`
}

// CompleteEvent is emitted once, after the last ply.
type CompleteEvent struct {
	Type       string         `json:"type"`
	ReviewID   string         `json:"reviewId"`
	Accuracy   Accuracy       `json:"accuracy"`
	Summary    map[string]int `json:"summary"`
	TotalMoves int            `json:"totalMoves"`
}

// ErrorEvent is emitted in place of further progress/move/complete events
// when a ply could not be analyzed.
type ErrorEvent struct {
	Type    string `json:"type"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

func newProgressEvent(current, total int) ProgressEvent {
	pct := 0.0
	if total > 0 {
		pct = float64(current) / float64(total) * 100.0
	}
	return ProgressEvent{Type: "progress", CurrentMove: current, TotalMoves: total, Percentage: pct}
}

func newMoveEvent(ev classify.MoveEvaluation) MoveEvent {
	return MoveEvent{
		Type:             "move",
		MoveNumber:       ev.MoveNumber,
		FEN:              ev.FEN,
		Move:             ev.MoveSAN,
		MarkerType:       ev.Marker,
		CentipawnLoss:    ev.CentipawnLoss,
		EvaluationBefore: ev.EvalBefore,
		EvaluationAfter:  ev.EvalAfter,
		BestMove:         ev.BestMove,
	}
}

func newCompleteEvent(reviewID string, result ReviewResult) CompleteEvent {
	return CompleteEvent{
		Type:       "complete",
		ReviewID:   reviewID,
		Accuracy:   result.Accuracy,
		Summary:    result.Summary,
		TotalMoves: result.TotalMoves,
	}
}

func newErrorEvent(message, code string) ErrorEvent {
	return ErrorEvent{Type: "error", Message: message, Code: code}
}
