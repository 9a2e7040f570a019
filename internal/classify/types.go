// Package classify implements the move evaluation and classification
// pipeline: mate-score encoding (C3), per-ply context and centipawn-loss
// computation (C4), the mate-sequence handler (C5), the sacrifice
// analyzer (C6), the brilliant detector (C7), the tier detectors (C8),
// the top-move classifier (C9; the book table is in package book), the
// orchestrator that composes all of the above into one marker per move
// (C10), and the tactical theme
// detector (C12). Every function here is pure: given the same inputs it
// returns the same outputs, and none of them touch the engine pool or
// the filesystem.
package classify

import "fmt"

// Score is a centipawn evaluation or an encoded mate distance, always
// eventually normalized to White's perspective before it reaches the
// classification cascade. A mate is encoded as a value whose absolute
// value is >= MateThreshold; the distance is (100000-|value|)/100.
type Score int

// MateThreshold is the minimum absolute value of a Score that encodes a
// forced mate rather than a centipawn evaluation.
const MateThreshold = 97000

// mateBase is the base from which 100*N is subtracted to encode mate
// distance: mate-in-N encodes as sign*(100000-100*N).
const mateBase = 100000

// IsMate reports whether s encodes a forced mate.
func (s Score) IsMate() bool {
	v := int(s)
	if v < 0 {
		v = -v
	}
	return v >= MateThreshold
}

// MateIn returns the signed mate distance: positive means the player to
// whom this Score belongs mates in N, negative means they get mated in
// N. Only meaningful when IsMate() is true.
func (s Score) MateIn() int {
	v := int(s)
	sign := 1
	if v < 0 {
		sign = -1
		v = -v
	}
	return sign * ((mateBase - v) / 100)
}

// ToPlayerPerspective negates a White-perspective score for Black.
func (s Score) ToPlayerPerspective(isWhite bool) Score {
	if isWhite {
		return s
	}
	return -s
}

// EncodeMateScore converts a UCI "score mate V" value (relative to the
// side to move) into the Score encoding: positive V -> 100000-100*V,
// negative V -> -100000-100*V.
func EncodeMateScore(mateV int) Score {
	if mateV >= 0 {
		return Score(mateBase - 100*mateV)
	}
	return Score(-mateBase - 100*mateV)
}

// Clamp bounds a centipawn loss to the [0, 1000] range required by
// invariant I2.
func Clamp(loss int) int {
	if loss < 0 {
		return 0
	}
	if loss > 1000 {
		return 1000
	}
	return loss
}

// TopMove is one entry of an engine's k-best move list.
type TopMove struct {
	UCI string
	CP  Score
}

// EngineAnalysis is the normalized result of analysing one position.
// Evaluation and every TopMove.CP are in White's perspective by the time
// this value reaches the classification cascade (the driver performs the
// sign flip once, at the boundary, per the spec's perspective-sign rule).
type EngineAnalysis struct {
	Evaluation Score
	BestMove   string
	TopMoves   []TopMove
	Depth      int
}

// MarkerType is the closed move-quality taxonomy.
type MarkerType int

const (
	Book MarkerType = iota
	Brilliant
	Great
	Best
	Good
	Inaccuracy
	Miss
	Mistake
	Blunder
)

func (m MarkerType) String() string {
	switch m {
	case Book:
		return "Book"
	case Brilliant:
		return "Brilliant"
	case Great:
		return "Great"
	case Best:
		return "Best"
	case Good:
		return "Good"
	case Inaccuracy:
		return "Inaccuracy"
	case Miss:
		return "Miss"
	case Mistake:
		return "Mistake"
	case Blunder:
		return "Blunder"
	default:
		return fmt.Sprintf("MarkerType(%d)", int(m))
	}
}

// MarshalJSON renders the marker as its name, matching the persisted
// shape from the spec's data model.
func (m MarkerType) MarshalJSON() ([]byte, error) {
	return []byte(`"` + m.String() + `"`), nil
}

// MoveContext is the immutable per-ply struct the cascade is built from.
type MoveContext struct {
	FENBefore    string
	FENAfter     string
	PlayedSAN    string
	PlayedUCI    string
	IsWhiteMove  bool
	EvalBefore  Score
	EvalAfter   Score
	BestMoveUCI string
	// TopMoves is analysis_before's k-best list: what the engine judged
	// available from the position the mover was actually facing.
	TopMoves []TopMove

	// EvalIfBestMove is the cp of the top-move entry matching BestMoveUCI,
	// falling back to TopMoves[0].CP, falling back to EvalAfter (in which
	// case IsEvalIfBestUnreliable is set).
	EvalIfBestMove          Score
	IsInTopMoves            bool
	IsEvalIfBestUnreliable  bool
	MoveNumber              int

	// Winner, if known: true = white won, false = black won, nil = drawn
	// or unknown. Carried separately since it is optional per §4.4.
	GameWinner *bool
}

// MoveEvaluation is the immutable classification result for one ply.
type MoveEvaluation struct {
	FEN           string     `json:"fen"`
	FENAfter      string     `json:"-"`
	MoveSAN       string     `json:"move_san"`
	PlayedUCI     string     `json:"-"`
	EvalBefore    Score      `json:"eval_before"`
	EvalAfter     Score      `json:"eval_after"`
	BestMove      string     `json:"best_move"`
	Marker        MarkerType `json:"marker"`
	CentipawnLoss int        `json:"centipawn_loss"`
	Depth         int        `json:"depth"`
	Timestamp     int64      `json:"timestamp"`
	MoveNumber    int        `json:"-"`
	IsWhiteMove   bool       `json:"-"`
}

// Thresholds is the configurable classification threshold profile. The
// corpus carries two conflicting tables (see DESIGN.md); this struct
// holds the single profile adopted for this deployment. The top-move
// classifier and the fallback loss table read the cp bands from it, and
// the review driver reads MaxBookMoves. The tier and brilliant detectors
// do not read it: they use their own fixed cut-offs, so the StillWinning*
// fields are not consulted by any detector (their defaults equal the
// values those detectors use).
type Thresholds struct {
	Best       int // cp_loss <= Best -> Best (outside the top-move fast path)
	Great      int // cp_loss <= Great -> eligible for Great detector
	Good       int // cp_loss <= Good
	Inaccuracy int // cp_loss <= Inaccuracy
	Miss       int // cp_loss <= Miss
	Mistake    int // cp_loss <= Mistake, else Blunder

	// "Still winning" leniency thresholds, deliberately distinct per
	// detector (spec §9 design note: do not unify).
	StillWinningBlunder   int // eval_after >= this -> never Blunder
	StillWinningMistake   int // eval_after >= this -> never Mistake
	StillWinningBrilliant int // eval_before > this -> not Brilliant

	MaxBookMoves int
}

// DefaultThresholds returns the profile selected for this deployment:
// the spec's own §6 defaults (Best 10-20, Great 15-35, Good 30-60,
// Inaccuracy 50-120, Miss 100-180, Mistake 150-250, Blunder 250+),
// resolving the corpus's two conflicting tables in favor of the one the
// spec itself names (see DESIGN.md Open Question resolutions).
func DefaultThresholds() Thresholds {
	return Thresholds{
		Best:       20,
		Great:      35,
		Good:       60,
		Inaccuracy: 120,
		Miss:       180,
		Mistake:    250,

		StillWinningBlunder:   200,
		StillWinningMistake:   150,
		StillWinningBrilliant: 300,

		MaxBookMoves: 25,
	}
}

// DepthSchedule configures progressive search depth as a function of ply
// index: start, then +Increment every EveryKPlys plies, bounded to
// [Min, Max].
type DepthSchedule struct {
	Start      int
	Increment  int
	EveryKPlys int
	Min        int
	Max        int
}

// ProgressiveDepth computes the search depth for ply index i (0-based).
func (d DepthSchedule) ProgressiveDepth(plyIndex int) int {
	if d.EveryKPlys <= 0 {
		return clampInt(d.Start, d.Min, d.Max)
	}
	steps := plyIndex / d.EveryKPlys
	depth := d.Start + steps*d.Increment
	return clampInt(depth, d.Min, d.Max)
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
