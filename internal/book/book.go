// Package book holds a small, immutable table of common opening lines,
// compiled once at startup, used to short-circuit classification for
// well-known theory moves (C9's book half).
package book

import (
	"strings"

	"github.com/chessreview/review/internal/chessrules"
)

// startingFEN is the standard chess starting position.
const startingFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

// lines is the built-in table of well-known openings, expressed as SAN
// move sequences. Every intermediate position along each line — not just
// its final one — is recorded, since a ply is Book when either its
// before- or after-position matches.
var lines = [][]string{
	{"e4", "e5", "Nf3", "Nc6", "Bb5", "a6", "Ba4", "Nf6", "O-O", "Be7"},        // Ruy Lopez
	{"e4", "e5", "Nf3", "Nc6", "Bb5", "a6", "Bxc6", "dxc6"},                    // Exchange Ruy Lopez
	{"e4", "e5", "Nf3", "Nc6", "Bc4", "Bc5"},                                  // Italian
	{"e4", "e5", "Nf3", "Nc6", "Bc4", "Nf6", "Ng5", "d5", "exd5", "Na5"},       // Two Knights
	{"e4", "c5", "Nf3", "d6", "d4", "cxd4", "Nxd4", "Nf6", "Nc3", "a6"},        // Najdorf Sicilian
	{"e4", "c5", "Nf3", "Nc6", "Bb5"},                                         // Rossolimo
	{"e4", "c6", "d4", "d5", "Nc3", "dxe4", "Nxe4", "Bf5"},                     // Caro-Kann
	{"e4", "e6", "d4", "d5", "Nc3", "Bb4"},                                    // French Winawer
	{"d4", "d5", "c4", "e6", "Nc3", "Nf6"},                                    // QGD
	{"d4", "d5", "c4", "c6", "Nf3", "Nf6"},                                    // Slav
	{"d4", "Nf6", "c4", "g6", "Nc3", "Bg7", "e4", "d6"},                       // King's Indian
	{"d4", "Nf6", "c4", "e6", "Nc3", "Bb4"},                                   // Nimzo-Indian
	{"d4", "Nf6", "c4", "e6", "g3", "d5"},                                     // Catalan
	{"c4", "e5", "Nc3", "Nf6"},                                                // English
	{"Nf3", "d5", "g3", "Nf6", "Bg2", "e6"},                                   // Reti
	{"e4", "e5", "Nc3", "Nf6", "f4"},                                          // Vienna
	{"d4", "f5"},                                                              // Dutch
	{"e4", "d6", "d4", "Nf6", "Nc3", "g6"},                                    // Pirc
	{"e4", "g6", "d4", "Bg7"},                                                 // Modern
	{"d4", "c5"},                                                              // Benoni
}

// Table is the compiled, immutable lookup. A key is the first four FEN
// fields (placement, side-to-move, castling, en-passant).
type Table struct {
	positions map[string]bool
}

// New compiles the built-in line table. Replaying a bad line is a
// programming error in this package, not a runtime condition, so New
// returns an error rather than panicking and lets the caller decide.
func New() (*Table, error) {
	t := &Table{positions: make(map[string]bool)}
	t.positions[fenKey(startingFEN)] = true

	for _, line := range lines {
		for i := 1; i <= len(line); i++ {
			fen, err := chessrules.ReplaySAN(startingFEN, line[:i])
			if err != nil {
				return nil, err
			}
			t.positions[fenKey(fen)] = true
		}
	}
	return t, nil
}

// Contains reports whether fen's position (ignoring halfmove/fullmove
// counters) is in the book table.
func (t *Table) Contains(fen string) bool {
	return t.positions[fenKey(fen)]
}

// IsBookMove reports whether the ply from fenBefore to fenAfter is a book
// move: either endpoint known, and still within the opening phase.
func (t *Table) IsBookMove(fenBefore, fenAfter string, moveNumber, maxBookMoves int) bool {
	if moveNumber > maxBookMoves {
		return false
	}
	return t.Contains(fenBefore) || t.Contains(fenAfter)
}

func fenKey(fen string) string {
	fields := strings.Fields(fen)
	if len(fields) < 4 {
		return fen
	}
	return strings.Join(fields[:4], " ")
}
