package deck

import (
	"fmt"
	"strings"
)

// Suit represents a card suit
type Suit int

const (
	Spades Suit = iota
	Clubs
	Hearts
	Diamonds
)

// Suits lists the four suits in shoe-building order
var Suits = []Suit{Spades, Clubs, Hearts, Diamonds}

// String returns the string representation of a suit
func (s Suit) String() string {
	switch s {
	case Spades:
		return "♠"
	case Clubs:
		return "♣"
	case Hearts:
		return "♥"
	case Diamonds:
		return "♦"
	default:
		return "?"
	}
}

// Colour returns the four-colour deck colour name used when rendering a suit.
func (s Suit) Colour() string {
	switch s {
	case Clubs:
		return "green"
	case Hearts:
		return "red"
	case Diamonds:
		return "blue"
	default:
		return "black"
	}
}

// Rank represents a card rank
type Rank int

const (
	Ace Rank = iota + 1
	Two
	Three
	Four
	Five
	Six
	Seven
	Eight
	Nine
	Ten
	Jack
	Queen
	King
)

// String returns the short label printed on the card face
func (r Rank) String() string {
	switch r {
	case Ace:
		return "A"
	case Jack:
		return "J"
	case Queen:
		return "Q"
	case King:
		return "K"
	default:
		if r >= Two && r <= Ten {
			return fmt.Sprintf("%d", int(r))
		}
		return "?"
	}
}

// Name returns the spoken name of the rank: Ace, Jack, Queen, King or the numeral.
func (r Rank) Name() string {
	switch r {
	case Ace:
		return "Ace"
	case Jack:
		return "Jack"
	case Queen:
		return "Queen"
	case King:
		return "King"
	default:
		return r.String()
	}
}

// IsTenValue reports whether the rank is worth ten points (10, J, Q, K).
func (r Rank) IsTenValue() bool {
	return r >= Ten && r <= King
}

// Card represents a playing card
type Card struct {
	Rank Rank
	Suit Suit
}

// NewCard creates a new card
func NewCard(rank Rank, suit Suit) Card {
	return Card{Rank: rank, Suit: suit}
}

// String returns the string representation of a card (e.g., "A♠", "10♥")
func (c Card) String() string {
	return c.Rank.String() + c.Suit.String()
}

// Name returns the spoken rank name of the card
func (c Card) Name() string {
	return c.Rank.Name()
}

// Narrative returns the card name with its indefinite article, "an Ace", "an 8", "a King".
func (c Card) Narrative() string {
	name := c.Name()
	if c.Rank == Ace || c.Rank == Eight {
		return "an " + name
	}
	return "a " + name
}

// IsAce returns true if the card is an Ace
func (c Card) IsAce() bool {
	return c.Rank == Ace
}

// ParseRank parses a rank label. "1" is accepted as an alias for the Ace and
// "T" as an alias for the 10.
func ParseRank(s string) (Rank, error) {
	switch strings.ToUpper(s) {
	case "A", "1":
		return Ace, nil
	case "2":
		return Two, nil
	case "3":
		return Three, nil
	case "4":
		return Four, nil
	case "5":
		return Five, nil
	case "6":
		return Six, nil
	case "7":
		return Seven, nil
	case "8":
		return Eight, nil
	case "9":
		return Nine, nil
	case "10", "T":
		return Ten, nil
	case "J":
		return Jack, nil
	case "Q":
		return Queen, nil
	case "K":
		return King, nil
	}
	return 0, fmt.Errorf("invalid rank %q", s)
}

// ParseSuit parses a suit letter (s, c, h, d) or symbol.
func ParseSuit(s string) (Suit, error) {
	switch strings.ToLower(s) {
	case "s", "♠":
		return Spades, nil
	case "c", "♣":
		return Clubs, nil
	case "h", "♥":
		return Hearts, nil
	case "d", "♦":
		return Diamonds, nil
	}
	return 0, fmt.Errorf("invalid suit %q", s)
}

// ParseCard parses a card such as "As", "10h", "Td" or "1c". The suit may be
// omitted, in which case the card is a spade.
func ParseCard(s string) (Card, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Card{}, fmt.Errorf("empty card")
	}

	runes := []rune(s)
	rankPart, suitPart := s, ""
	if _, err := ParseSuit(string(runes[len(runes)-1])); err == nil && len(runes) > 1 {
		rankPart = string(runes[:len(runes)-1])
		suitPart = string(runes[len(runes)-1])
	}

	rank, err := ParseRank(rankPart)
	if err != nil {
		return Card{}, fmt.Errorf("parse %q: %w", s, err)
	}
	suit := Spades
	if suitPart != "" {
		if suit, err = ParseSuit(suitPart); err != nil {
			return Card{}, fmt.Errorf("parse %q: %w", s, err)
		}
	}
	return Card{Rank: rank, Suit: suit}, nil
}

// ParseCards parses a whitespace or comma separated list of cards.
func ParseCards(s string) ([]Card, error) {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ' ' || r == ',' || r == '\t'
	})
	cards := make([]Card, 0, len(fields))
	for _, f := range fields {
		card, err := ParseCard(f)
		if err != nil {
			return nil, err
		}
		cards = append(cards, card)
	}
	return cards, nil
}

// MustParseCards is like ParseCards but panics on error. Intended for tests.
func MustParseCards(s string) []Card {
	cards, err := ParseCards(s)
	if err != nil {
		panic(err)
	}
	return cards
}
