// Package chessrules is the sole place the review pipeline touches a
// concrete chess rules library (github.com/corentings/chess/v2). Every
// other package in this module works against the small Position/Move
// surface defined here, not against the library's own types, so the
// classification cascade never has to know how legality, check detection,
// or SAN/UCI conversion are actually implemented.
package chessrules

import (
	"fmt"
	"strings"

	chess "github.com/corentings/chess/v2"
)

// Color mirrors chess.Color without leaking the library type.
type Color int

const (
	White Color = iota
	Black
)

func (c Color) String() string {
	if c == White {
		return "white"
	}
	return "black"
}

// Opposite returns the other color.
func (c Color) Opposite() Color {
	if c == White {
		return Black
	}
	return White
}

// PieceType mirrors chess.PieceType.
type PieceType int

const (
	NoPieceType PieceType = iota
	Pawn
	Knight
	Bishop
	Rook
	Queen
	King
)

// Move is the engine-agnostic move shape the classification cascade
// consumes, per the spec's data model.
type Move struct {
	From      string // algebraic square, e.g. "e2"
	To        string // algebraic square, e.g. "e4"
	Piece     PieceType
	Captured  PieceType // NoPieceType when the move is not a capture
	IsCapture bool
	Promotion PieceType // NoPieceType when not a promotion
	SAN       string
	IsCheck   bool
	IsMate    bool
}

// UCI returns the compact "from+to+promotion?" form.
func (m Move) UCI() string {
	if m.Promotion == NoPieceType {
		return m.From + m.To
	}
	return m.From + m.To + strings.ToLower(pieceLetter(m.Promotion))
}

// Position is an immutable board state identified by a FEN string.
type Position struct {
	game *chess.Game
}

// LoadFEN parses a FEN string into a Position.
func LoadFEN(fen string) (*Position, error) {
	opt, err := chess.FEN(fen)
	if err != nil {
		return nil, fmt.Errorf("chessrules: invalid FEN %q: %w", fen, err)
	}
	return &Position{game: chess.NewGame(opt)}, nil
}

// NewGamePosition returns the starting position.
func NewGamePosition() *Position {
	return &Position{game: chess.NewGame()}
}

// FEN returns the position's FEN string.
func (p *Position) FEN() string {
	return p.game.Position().String()
}

// SideToMove returns which color is to move.
func (p *Position) SideToMove() Color {
	if p.game.Position().Turn() == chess.Black {
		return Black
	}
	return White
}

// IsCheck reports whether the side to move is in check.
func (p *Position) IsCheck() bool {
	return p.game.Position().InCheck()
}

// IsCheckmate reports whether the position is checkmate.
func (p *Position) IsCheckmate() bool {
	return p.game.Method() == chess.Checkmate
}

// IsStalemate reports whether the position is stalemate.
func (p *Position) IsStalemate() bool {
	return p.game.Method() == chess.Stalemate
}

// IsGameOver reports whether the game has ended (mate, stalemate, draw by
// rule, or insufficient material).
func (p *Position) IsGameOver() bool {
	return p.game.Outcome() != chess.NoOutcome
}

// LegalMoves enumerates every legal move from this position.
func (p *Position) LegalMoves() []Move {
	pos := p.game.Position()
	valid := p.game.ValidMoves()
	moves := make([]Move, 0, len(valid))
	for _, m := range valid {
		moves = append(moves, convertMove(pos, m))
	}
	return moves
}

// FindMove returns the legal move matching a UCI string (from+to+promo),
// or false if no legal move matches.
func (p *Position) FindMove(uci string) (Move, bool) {
	for _, m := range p.LegalMoves() {
		if strings.EqualFold(m.UCI(), uci) {
			return m, true
		}
	}
	return Move{}, false
}

// Apply plays a move (identified by its UCI string) and returns the
// resulting position. The move must be legal in this position.
func (p *Position) Apply(uci string) (*Position, error) {
	clone := p.game.Clone()
	if err := clone.PushNotationMove(uci, chess.UCINotation{}, nil); err != nil {
		return nil, fmt.Errorf("chessrules: apply move %q: %w", uci, err)
	}
	return &Position{game: clone}, nil
}

// PieceAt returns the piece occupying a square, or ok=false if empty.
func (p *Position) PieceAt(square string) (PieceType, Color, bool) {
	sq, err := parseSquare(square)
	if err != nil {
		return NoPieceType, White, false
	}
	piece := p.game.Position().Board().Piece(sq)
	if piece == chess.NoPiece {
		return NoPieceType, White, false
	}
	return fromChessPieceType(piece.Type()), fromChessColor(piece.Color()), true
}

// ReplaySAN replays a sequence of SAN moves from a starting FEN and
// returns the resulting FEN. Used once at startup to compile the opening
// book table from a list of known lines.
func ReplaySAN(startFEN string, sanMoves []string) (string, error) {
	pos, err := LoadFEN(startFEN)
	if err != nil {
		return "", err
	}
	game := pos.game
	for _, san := range sanMoves {
		if err := game.PushMove(san, &chess.PushMoveOptions{ForceMainline: true}); err != nil {
			return "", fmt.Errorf("chessrules: replay SAN %q: %w", san, err)
		}
	}
	return game.Position().String(), nil
}

func convertMove(pos *chess.Position, m *chess.Move) Move {
	from := m.S1().String()
	to := m.S2().String()
	san := chess.AlgebraicNotation{}.Encode(pos, m)

	captured := NoPieceType
	isCapture := m.HasTag(chess.Capture)
	if isCapture {
		if victim := pos.Board().Piece(m.S2()); victim != chess.NoPiece {
			captured = fromChessPieceType(victim.Type())
		}
	}

	mover := NoPieceType
	if piece := pos.Board().Piece(m.S1()); piece != chess.NoPiece {
		mover = fromChessPieceType(piece.Type())
	}

	promo := NoPieceType
	if m.Promo() != chess.NoPieceType {
		promo = fromChessPieceType(m.Promo())
	}

	return Move{
		From:      from,
		To:        to,
		Piece:     mover,
		Captured:  captured,
		IsCapture: isCapture,
		Promotion: promo,
		SAN:       san,
		IsCheck:   strings.Contains(san, "+") || strings.Contains(san, "#"),
		IsMate:    strings.Contains(san, "#"),
	}
}

func parseSquare(square string) (chess.Square, error) {
	sq := chess.SquareFromString(strings.ToLower(square))
	if sq == chess.NoSquare {
		return chess.NoSquare, fmt.Errorf("chessrules: invalid square %q", square)
	}
	return sq, nil
}

func fromChessColor(c chess.Color) Color {
	if c == chess.Black {
		return Black
	}
	return White
}

func fromChessPieceType(pt chess.PieceType) PieceType {
	switch pt {
	case chess.Pawn:
		return Pawn
	case chess.Knight:
		return Knight
	case chess.Bishop:
		return Bishop
	case chess.Rook:
		return Rook
	case chess.Queen:
		return Queen
	case chess.King:
		return King
	default:
		return NoPieceType
	}
}

func pieceLetter(pt PieceType) string {
	switch pt {
	case Knight:
		return "N"
	case Bishop:
		return "B"
	case Rook:
		return "R"
	case Queen:
		return "Q"
	case King:
		return "K"
	default:
		return ""
	}
}
