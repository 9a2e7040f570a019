package chessrules

import (
	"fmt"
	"strings"

	chess "github.com/corentings/chess/v2"
)

// GamePly is one half-move of a parsed game, carrying both endpoint
// positions so the review driver never has to re-derive them.
type GamePly struct {
	FENBefore   string
	FENAfter    string
	Move        Move
	MoveNumber  int
	IsWhiteMove bool
	PosBefore   *Position
	PosAfter    *Position
}

// ParsedGame is a full game broken into plies, plus its result if decisive.
type ParsedGame struct {
	Plies  []GamePly
	Winner *bool // true = White won, false = Black won, nil = draw/unknown
}

// ParsePGN parses PGN move text into a ParsedGame. This is the only place
// in the module that touches the underlying library's PGN reader.
func ParsePGN(pgn string) (*ParsedGame, error) {
	opt, err := chess.PGN(strings.NewReader(pgn))
	if err != nil {
		return nil, fmt.Errorf("chessrules: parse PGN: %w", err)
	}
	game := chess.NewGame(opt)

	positions := game.Positions()
	moves := game.Moves()
	if len(positions) == 0 {
		return nil, fmt.Errorf("chessrules: PGN produced no positions")
	}

	plies := make([]GamePly, 0, len(moves))
	replay := chess.NewGame()
	replayPositions := make([]*chess.Game, len(moves)+1)
	replayPositions[0] = replay.Clone()

	for i, m := range moves {
		if i+1 >= len(positions) {
			break
		}
		before := positions[i]
		after := positions[i+1]
		san := chess.AlgebraicNotation{}.Encode(before, m)

		if err := replay.PushMove(san, &chess.PushMoveOptions{ForceMainline: true}); err != nil {
			return nil, fmt.Errorf("chessrules: replay move %d (%s): %w", i+1, san, err)
		}
		replayPositions[i+1] = replay.Clone()

		plies = append(plies, GamePly{
			FENBefore:   before.String(),
			FENAfter:    after.String(),
			Move:        convertMove(before, m),
			MoveNumber:  i/2 + 1,
			IsWhiteMove: before.Turn() == chess.White,
			PosBefore:   &Position{game: replayPositions[i]},
			PosAfter:    &Position{game: replayPositions[i+1]},
		})
	}

	pg := &ParsedGame{Plies: plies}
	switch game.Outcome() {
	case chess.WhiteWon:
		w := true
		pg.Winner = &w
	case chess.BlackWon:
		b := false
		pg.Winner = &b
	}
	return pg, nil
}
