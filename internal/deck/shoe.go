package deck

import (
	"errors"
	"math/rand/v2"
	"slices"
)

// DeckSize is the number of cards in one deck.
const DeckSize = 52

// ErrEmptyShoe is returned when drawing from a shoe with no cards left.
var ErrEmptyShoe = errors.New("shoe is empty")

// Shoe is the multi-deck stack cards are dealt from until the next reshuffle.
// Cards are drawn from the end of the slice.
type Shoe struct {
	cards       []Card
	decks       int
	numbersOnly bool
	capacity    int
	rng         *rand.Rand
	stacked     []Card // draw order for stacked shoes, nil otherwise
}

// NewShoe builds decks ordered decks, concatenates them and shuffles the result.
// In numbers-only mode the J, Q and K slots of each suit are replaced by tens.
func NewShoe(rng *rand.Rand, decks int, numbersOnly bool) *Shoe {
	if rng == nil {
		panic("rng is required for shoe creation")
	}
	if decks < 1 {
		panic("shoe needs at least one deck")
	}
	s := &Shoe{
		decks:       decks,
		numbersOnly: numbersOnly,
		capacity:    decks * DeckSize,
		rng:         rng,
	}
	s.Reset()
	return s
}

// NewStackedShoe returns a shoe that deals exactly the given cards, first card
// first. Reset restores the same sequence. Intended for scripted scenarios.
func NewStackedShoe(cards ...Card) *Shoe {
	s := &Shoe{
		decks:    (len(cards) + DeckSize - 1) / DeckSize,
		capacity: len(cards),
		stacked:  slices.Clone(cards),
	}
	s.Reset()
	return s
}

func ranks(numbersOnly bool) []Rank {
	if numbersOnly {
		return []Rank{Ace, Two, Three, Four, Five, Six, Seven, Eight, Nine, Ten, Ten, Ten, Ten}
	}
	return []Rank{Ace, Two, Three, Four, Five, Six, Seven, Eight, Nine, Ten, Jack, Queen, King}
}

// Reset refills the shoe to capacity and reshuffles it.
func (s *Shoe) Reset() {
	if s.stacked != nil {
		s.cards = slices.Clone(s.stacked)
		slices.Reverse(s.cards)
		return
	}

	s.cards = s.cards[:0]
	for range s.decks {
		for _, suit := range Suits {
			for _, rank := range ranks(s.numbersOnly) {
				s.cards = append(s.cards, NewCard(rank, suit))
			}
		}
	}
	s.Shuffle()
}

// Shuffle randomizes the order of the remaining cards (Fisher-Yates).
func (s *Shoe) Shuffle() {
	if s.rng == nil {
		return
	}
	for i := len(s.cards) - 1; i > 0; i-- {
		j := s.rng.IntN(i + 1)
		s.cards[i], s.cards[j] = s.cards[j], s.cards[i]
	}
}

// Draw removes and returns the last card of the shoe.
func (s *Shoe) Draw() (Card, error) {
	if len(s.cards) == 0 {
		return Card{}, ErrEmptyShoe
	}
	card := s.cards[len(s.cards)-1]
	s.cards = s.cards[:len(s.cards)-1]
	return card, nil
}

// Remaining returns the number of cards left in the shoe
func (s *Shoe) Remaining() int {
	return len(s.cards)
}

// Capacity returns the number of cards in a freshly reset shoe
func (s *Shoe) Capacity() int {
	return s.capacity
}

// Dealt returns the number of cards drawn since the last reset
func (s *Shoe) Dealt() int {
	return s.capacity - len(s.cards)
}

// Decks returns the number of decks the shoe was built from
func (s *Shoe) Decks() int {
	return s.decks
}

// NumbersOnly reports whether face cards were replaced by tens
func (s *Shoe) NumbersOnly() bool {
	return s.numbersOnly
}

// Penetration returns the fraction of the shoe already dealt, in [0, 1].
func (s *Shoe) Penetration() float64 {
	if s.capacity == 0 {
		return 0
	}
	return float64(s.Dealt()) / float64(s.capacity)
}

// NeedsReshuffle reports whether fewer than threshold (a fraction of capacity)
// cards remain.
func (s *Shoe) NeedsReshuffle(threshold float64) bool {
	return float64(len(s.cards)) < float64(s.capacity)*threshold
}
