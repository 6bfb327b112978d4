package game

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSettleSlots_SkullForfeitsFirst(t *testing.T) {
	// Two skulls forfeit even alongside another symbol
	ret, profit := SettleSlots([3]SlotSymbol{SymbolSkull, SymbolSkull, SymbolSeven}, 100)
	assert.Equal(t, int64(0), ret)
	assert.Equal(t, int64(-100), profit)

	// Three skulls forfeit rather than paying a three of a kind
	ret, profit = SettleSlots([3]SlotSymbol{SymbolSkull, SymbolSkull, SymbolSkull}, 100)
	assert.Equal(t, int64(0), ret)
	assert.Equal(t, int64(-100), profit)
}

func TestSettleSlots_ThreeOfAKind(t *testing.T) {
	ret, profit := SettleSlots([3]SlotSymbol{SymbolSeven, SymbolSeven, SymbolSeven}, 100)
	assert.Equal(t, int64(2000), ret)
	assert.Equal(t, int64(1900), profit)

	ret, profit = SettleSlots([3]SlotSymbol{SymbolCherry, SymbolCherry, SymbolCherry}, 100)
	assert.Equal(t, int64(300), ret)
	assert.Equal(t, int64(200), profit)
}

func TestSettleSlots_TwoOfAKind(t *testing.T) {
	// A cherry pair returns the stake
	ret, profit := SettleSlots([3]SlotSymbol{SymbolCherry, SymbolCherry, SymbolLemon}, 100)
	assert.Equal(t, int64(100), ret)
	assert.Equal(t, int64(0), profit)

	// One skull does not spoil a pair of another symbol
	ret, profit = SettleSlots([3]SlotSymbol{SymbolMelon, SymbolSkull, SymbolMelon}, 100)
	assert.Equal(t, int64(200), ret)
	assert.Equal(t, int64(100), profit)
}

func TestSettleSlots_Loss(t *testing.T) {
	ret, profit := SettleSlots([3]SlotSymbol{SymbolCherry, SymbolLemon, SymbolGrape}, 100)
	assert.Equal(t, int64(0), ret)
	assert.Equal(t, int64(-100), profit)
}

func TestSpinSlots_DrawsFromWeightTable(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	seen := make(map[SlotSymbol]int)
	for i := 0; i < 10000; i++ {
		spin := SpinSlots(rng)
		for _, s := range spin {
			seen[s]++
		}
	}

	// Every symbol should appear, with cherries far ahead of sevens
	for _, entry := range symbolWeights {
		assert.Greater(t, seen[entry.symbol], 0, "symbol %s never drawn", entry.symbol)
	}
	assert.Greater(t, seen[SymbolCherry], seen[SymbolSeven])
}
