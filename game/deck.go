package game

import (
	"math/rand"
	"time"
)

// Suit is a playing card suit
type Suit string

const (
	Spades   Suit = "♠"
	Hearts   Suit = "♥"
	Diamonds Suit = "♦"
	Clubs    Suit = "♣"
)

// Rank is a playing card rank
type Rank string

const (
	Ace   Rank = "A"
	Two   Rank = "2"
	Three Rank = "3"
	Four  Rank = "4"
	Five  Rank = "5"
	Six   Rank = "6"
	Seven Rank = "7"
	Eight Rank = "8"
	Nine  Rank = "9"
	Ten   Rank = "10"
	Jack  Rank = "J"
	Queen Rank = "Q"
	King  Rank = "K"
)

var allSuits = []Suit{Spades, Hearts, Diamonds, Clubs}

var allRanks = []Rank{Ace, Two, Three, Four, Five, Six, Seven, Eight, Nine, Ten, Jack, Queen, King}

// Card is a single playing card
type Card struct {
	Rank Rank
	Suit Suit
}

func (c Card) String() string {
	return string(c.Rank) + string(c.Suit)
}

// Shoe is a draw pile built from one or more shuffled decks. It rebuilds
// itself when the remaining cards fall below the reshuffle threshold, so a
// draw always succeeds.
type Shoe struct {
	cards       []Card
	decks       int
	reshuffleAt int
	rng         *rand.Rand
}

// NewShoe builds a shuffled shoe of the given number of decks. The shoe is
// rebuilt whenever fewer than reshuffleAt cards remain before a draw. A nil
// rng falls back to a time-seeded source.
func NewShoe(decks, reshuffleAt int, rng *rand.Rand) *Shoe {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	s := &Shoe{
		decks:       decks,
		reshuffleAt: reshuffleAt,
		rng:         rng,
	}
	s.rebuild()
	return s
}

func (s *Shoe) rebuild() {
	s.cards = s.cards[:0]
	for i := 0; i < s.decks; i++ {
		for _, suit := range allSuits {
			for _, rank := range allRanks {
				s.cards = append(s.cards, Card{Rank: rank, Suit: suit})
			}
		}
	}
	s.rng.Shuffle(len(s.cards), func(i, j int) {
		s.cards[i], s.cards[j] = s.cards[j], s.cards[i]
	})
}

// Draw removes and returns the top card, rebuilding the shoe first when it
// has run down to the reshuffle threshold
func (s *Shoe) Draw() Card {
	if len(s.cards) < s.reshuffleAt || len(s.cards) == 0 {
		s.rebuild()
	}
	card := s.cards[len(s.cards)-1]
	s.cards = s.cards[:len(s.cards)-1]
	return card
}

// Remaining reports how many cards are left before the next rebuild
func (s *Shoe) Remaining() int {
	return len(s.cards)
}

// NewStackedShoe builds a shoe that deals the given cards in order and
// never reshuffles. Test fixtures only.
func NewStackedShoe(cards ...Card) *Shoe {
	stacked := make([]Card, len(cards))
	for i, c := range cards {
		stacked[len(cards)-1-i] = c
	}
	return &Shoe{cards: stacked, decks: 1}
}
