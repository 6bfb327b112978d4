package game

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDiceBet_SmallLargeOddEven(t *testing.T) {
	assert.True(t, SmallBet{}.Wins(DiceRoll{1, 2, 3}))
	assert.True(t, SmallBet{}.Wins(DiceRoll{3, 3, 4}))
	assert.False(t, SmallBet{}.Wins(DiceRoll{4, 4, 5}))

	assert.True(t, LargeBet{}.Wins(DiceRoll{4, 4, 5}))
	assert.True(t, LargeBet{}.Wins(DiceRoll{6, 6, 5}))
	assert.False(t, LargeBet{}.Wins(DiceRoll{2, 3, 4}))

	assert.True(t, OddBet{}.Wins(DiceRoll{1, 2, 4}))
	assert.False(t, OddBet{}.Wins(DiceRoll{1, 2, 3}))

	assert.True(t, EvenBet{}.Wins(DiceRoll{1, 2, 3}))
	assert.False(t, EvenBet{}.Wins(DiceRoll{1, 2, 4}))
}

func TestDiceBet_TripleVoidsSimpleBets(t *testing.T) {
	triple := DiceRoll{6, 6, 6}

	// 18 would be large and even, but any triple voids the simple bets
	assert.False(t, SmallBet{}.Wins(DiceRoll{1, 1, 1}))
	assert.False(t, LargeBet{}.Wins(triple))
	assert.False(t, OddBet{}.Wins(DiceRoll{3, 3, 3}))
	assert.False(t, EvenBet{}.Wins(triple))
}

func TestDiceBet_Triples(t *testing.T) {
	assert.True(t, AnyTripleBet{}.Wins(DiceRoll{4, 4, 4}))
	assert.False(t, AnyTripleBet{}.Wins(DiceRoll{4, 4, 5}))

	assert.True(t, SpecificTripleBet{Face: 4}.Wins(DiceRoll{4, 4, 4}))
	assert.False(t, SpecificTripleBet{Face: 4}.Wins(DiceRoll{5, 5, 5}))
}

func TestDiceBet_DoublesAndCombos(t *testing.T) {
	assert.True(t, SpecificDoubleBet{Face: 2}.Wins(DiceRoll{2, 2, 5}))
	assert.True(t, SpecificDoubleBet{Face: 2}.Wins(DiceRoll{2, 2, 2}))
	assert.False(t, SpecificDoubleBet{Face: 2}.Wins(DiceRoll{2, 3, 5}))

	assert.True(t, TwoDiceComboBet{A: 2, B: 5}.Wins(DiceRoll{2, 4, 5}))
	assert.False(t, TwoDiceComboBet{A: 2, B: 5}.Wins(DiceRoll{2, 4, 6}))

	assert.True(t, ThreeDiceExactBet{Faces: [3]int{5, 1, 3}}.Wins(DiceRoll{3, 5, 1}))
	assert.False(t, ThreeDiceExactBet{Faces: [3]int{5, 1, 3}}.Wins(DiceRoll{3, 5, 5}))
}

func TestDiceBet_Straight(t *testing.T) {
	assert.True(t, StraightBet{}.Wins(DiceRoll{2, 3, 4}))
	assert.True(t, StraightBet{}.Wins(DiceRoll{6, 4, 5}))
	assert.False(t, StraightBet{}.Wins(DiceRoll{2, 2, 3}))
	assert.False(t, StraightBet{}.Wins(DiceRoll{1, 3, 5}))
}

func TestSettleDiceBet(t *testing.T) {
	ret, profit := SettleDiceBet(StraightBet{}, DiceRoll{2, 3, 4}, 100)
	assert.Equal(t, int64(3100), ret)
	assert.Equal(t, int64(3000), profit)

	ret, profit = SettleDiceBet(SmallBet{}, DiceRoll{6, 6, 6}, 100)
	assert.Equal(t, int64(0), ret)
	assert.Equal(t, int64(-100), profit)

	ret, profit = SettleDiceBet(SmallBet{}, DiceRoll{1, 2, 3}, 100)
	assert.Equal(t, int64(200), ret)
	assert.Equal(t, int64(100), profit)
}

func TestRollDice_Bounds(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 1000; i++ {
		roll := RollDice(rng)
		for _, d := range roll {
			assert.GreaterOrEqual(t, d, 1)
			assert.LessOrEqual(t, d, 6)
		}
	}
}
