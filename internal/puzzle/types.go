// Package puzzle implements the puzzle extractor (C13) and solution
// sequence generator (C14): mining a finished review for mistake,
// missed-tactic, and brilliant-move puzzles, and re-driving the engine
// pool to produce a playable solution line for each one.
package puzzle

import "github.com/chessreview/review/internal/classify"

// SolutionMove is one ply of a puzzle's solution line.
type SolutionMove struct {
	UCI               string `json:"uci"`
	IsUserMove        bool   `json:"is_user_move"`
	FENBeforeThisMove string `json:"fen_before_this_move"`
}

// Puzzle is a single mined puzzle, ready to be served or persisted.
type Puzzle struct {
	FEN             string              `json:"fen"`
	Played          string              `json:"played"`
	Best            string              `json:"best"`
	CentipawnLoss   int                 `json:"cp_loss"`
	Marker          classify.MarkerType `json:"marker"`
	MoveNumber      int                 `json:"move_number"`
	PlayerColor     string              `json:"player_color"`
	Opening         string              `json:"opening,omitempty"`
	Rating          int                 `json:"rating,omitempty"`
	IsPositive      bool                `json:"is_positive"`
	IsMissedTactic  bool                `json:"is_missed_tactic"`
	TacticalTheme   string              `json:"tactical_theme,omitempty"`
	MaterialGain    int                 `json:"material_gain"`
	Solution        []SolutionMove      `json:"solution"`
}

// validThemes is the set of theme names whose mere presence satisfies the
// puzzle extractor's quality gate, regardless of material gain. It holds
// both the snake_case tags the tactical theme detector (C12) actually
// emits (fork, pin, skewer, discovered_attack, double_check, back_rank,
// smothered_mate, trapped_piece, zwischenzug, deflection, mate_threat) and
// the spec's own camelCase vocabulary, so a puzzle tagged by an external
// source under either spelling still clears the gate.
var validThemes = map[string]bool{
	"fork": true, "pin": true, "skewer": true,
	"discovered_attack": true, "discoveredAttack": true,
	"double_check": true, "doubleCheck": true, "doubleAttack": true,
	"back_rank": true, "backRankMate": true,
	"smothered_mate": true, "smotheredMate": true,
	"trapped_piece": true, "trappedPiece": true,
	"mate_threat": true, "mateInN": true, "mate": true,
	"deflection": true, "decoy": true, "clearance": true, "sacrifice": true,
	"interference": true, "hangingPiece": true, "overloaded": true,
	"undermining": true, "zwischenzug": true, "quietMove": true,
	"desperado": true, "intermezzo": true, "promotion": true,
	"advancedPawn": true, "passedPawn": true, "discovery": true,
}

// genericThemes names theme labels that only qualify a puzzle when paired
// with a large material gain (spec §4.13 quality gate, clause c). Includes
// C12's own generic fallback tags (winning_material, material_gain)
// alongside the spec's externally-sourced vocabulary.
var genericThemes = map[string]bool{
	"advantage": true, "crushing": true, "endgame": true,
	"equality": true, "winning_material": true, "material_gain": true,
}

const (
	mistakeCap      = 5
	missedTacticCap = 3
	positiveCap     = 2

	minMoveNumber = 6

	tooLostEvalFloor = -500
	stillWinningEval = 600

	missedTacticThemeConf = 50
	missedTacticMaterial  = 100
	missedTacticCPLoss    = 150

	qualityGateMaterial = 200
)
