package game

import (
	"math/rand"
	"sort"
)

// DiceRoll is one throw of three dice
type DiceRoll [3]int

// RollDice throws three independent dice in 1..6
func RollDice(rng *rand.Rand) DiceRoll {
	return DiceRoll{rng.Intn(6) + 1, rng.Intn(6) + 1, rng.Intn(6) + 1}
}

// Sum returns the pip total
func (r DiceRoll) Sum() int {
	return r[0] + r[1] + r[2]
}

// IsTriple reports whether all three dice show the same face
func (r DiceRoll) IsTriple() bool {
	return r[0] == r[1] && r[1] == r[2]
}

// Sorted returns the roll in ascending order
func (r DiceRoll) Sorted() DiceRoll {
	s := r
	sort.Ints(s[:])
	return s
}

func (r DiceRoll) count(face int) int {
	n := 0
	for _, d := range r {
		if d == face {
			n++
		}
	}
	return n
}

// DiceBet is one wager on a dice roll. Each kind is its own type carrying
// exactly the fields that kind needs, so an invalid combination cannot be
// expressed.
type DiceBet interface {
	// Wins reports whether the roll wins this bet
	Wins(roll DiceRoll) bool

	// Multiplier is the profit multiplier applied to the stake on a win
	Multiplier() int64
}

// SmallBet wins on totals 4 through 10, voided by any triple
type SmallBet struct{}

func (SmallBet) Wins(r DiceRoll) bool {
	return !r.IsTriple() && r.Sum() >= 4 && r.Sum() <= 10
}
func (SmallBet) Multiplier() int64 { return 1 }

// LargeBet wins on totals 11 through 17, voided by any triple
type LargeBet struct{}

func (LargeBet) Wins(r DiceRoll) bool {
	return !r.IsTriple() && r.Sum() >= 11 && r.Sum() <= 17
}
func (LargeBet) Multiplier() int64 { return 1 }

// OddBet wins on odd totals, voided by any triple
type OddBet struct{}

func (OddBet) Wins(r DiceRoll) bool {
	return !r.IsTriple() && r.Sum()%2 == 1
}
func (OddBet) Multiplier() int64 { return 1 }

// EvenBet wins on even totals, voided by any triple
type EvenBet struct{}

func (EvenBet) Wins(r DiceRoll) bool {
	return !r.IsTriple() && r.Sum()%2 == 0
}
func (EvenBet) Multiplier() int64 { return 1 }

// AnyTripleBet wins when all three dice match
type AnyTripleBet struct{}

func (AnyTripleBet) Wins(r DiceRoll) bool { return r.IsTriple() }
func (AnyTripleBet) Multiplier() int64    { return 30 }

// SpecificTripleBet wins when all three dice show Face
type SpecificTripleBet struct {
	Face int
}

func (b SpecificTripleBet) Wins(r DiceRoll) bool {
	return r.IsTriple() && r[0] == b.Face
}
func (SpecificTripleBet) Multiplier() int64 { return 150 }

// SpecificDoubleBet wins when at least two dice show Face
type SpecificDoubleBet struct {
	Face int
}

func (b SpecificDoubleBet) Wins(r DiceRoll) bool {
	return r.count(b.Face) >= 2
}
func (SpecificDoubleBet) Multiplier() int64 { return 8 }

// TwoDiceComboBet wins when both named faces are present. A and B must
// differ; the session validates before accepting the bet.
type TwoDiceComboBet struct {
	A, B int
}

func (b TwoDiceComboBet) Wins(r DiceRoll) bool {
	if b.A == b.B {
		return r.count(b.A) >= 2
	}
	return r.count(b.A) >= 1 && r.count(b.B) >= 1
}
func (TwoDiceComboBet) Multiplier() int64 { return 5 }

// ThreeDiceExactBet wins when the roll matches the named triple, order
// ignored
type ThreeDiceExactBet struct {
	Faces [3]int
}

func (b ThreeDiceExactBet) Wins(r DiceRoll) bool {
	want := DiceRoll(b.Faces).Sorted()
	return want == r.Sorted()
}
func (ThreeDiceExactBet) Multiplier() int64 { return 30 }

// StraightBet wins on three consecutive distinct faces
type StraightBet struct{}

func (StraightBet) Wins(r DiceRoll) bool {
	s := r.Sorted()
	return s[0]+1 == s[1] && s[1]+1 == s[2]
}
func (StraightBet) Multiplier() int64 { return 30 }

// SettleDiceBet resolves a bet against a roll, returning the amount handed
// back to the player and the signed profit
func SettleDiceBet(bet DiceBet, roll DiceRoll, amount int64) (returnAmount, profit int64) {
	if bet.Wins(roll) {
		profit = amount * bet.Multiplier()
		return amount + profit, profit
	}
	return 0, -amount
}
