package models

import (
	"strconv"
	"strings"
)

// Position is a player's playing position
type Position string

// Playing positions
const (
	Goalkeeper Position = "Goalkeeper"
	Defender   Position = "Defender"
	Midfielder Position = "Midfielder"
	Forward    Position = "Forward"
)

// Positions lists every position in squad selection order.
// The order is part of the selection policy: earlier positions are filled first.
var Positions = []Position{Goalkeeper, Defender, Midfielder, Forward}

var positionAliases = map[string]Position{
	"goalkeeper": Goalkeeper,
	"gk":         Goalkeeper,
	"gkp":        Goalkeeper,
	"defender":   Defender,
	"def":        Defender,
	"midfielder": Midfielder,
	"mid":        Midfielder,
	"forward":    Forward,
	"fwd":        Forward,
}

// ParsePosition accepts full names, FPL short names (GKP, DEF, MID, FWD)
// and FPL element_type codes 1-4.
func ParsePosition(s string) (Position, bool) {
	key := strings.ToLower(strings.TrimSpace(s))
	if key == "" {
		return "", false
	}
	if p, ok := positionAliases[key]; ok {
		return p, true
	}
	if code, err := strconv.Atoi(key); err == nil {
		return PositionFromElementType(code)
	}
	return "", false
}

// PositionFromElementType maps the FPL element_type code to a Position
func PositionFromElementType(code int) (Position, bool) {
	if code < 1 || code > len(Positions) {
		return "", false
	}
	return Positions[code-1], true
}

// IsValid reports whether p is one of the four known positions
func (p Position) IsValid() bool {
	switch p {
	case Goalkeeper, Defender, Midfielder, Forward:
		return true
	default:
		return false
	}
}

// String returns the position name
func (p Position) String() string {
	return string(p)
}
