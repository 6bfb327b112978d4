package game

import "math/rand"

// SlotSymbol is one reel symbol
type SlotSymbol string

const (
	SymbolCherry SlotSymbol = "cherry"
	SymbolLemon  SlotSymbol = "lemon"
	SymbolGrape  SlotSymbol = "grape"
	SymbolMelon  SlotSymbol = "melon"
	SymbolSeven  SlotSymbol = "seven"
	SymbolSkull  SlotSymbol = "skull"
)

// symbolWeights is the fixed draw table. Weights sum to 100.
var symbolWeights = []struct {
	symbol SlotSymbol
	weight int
}{
	{SymbolCherry, 25},
	{SymbolLemon, 25},
	{SymbolGrape, 20},
	{SymbolMelon, 15},
	{SymbolSkull, 10},
	{SymbolSeven, 5},
}

// Return multipliers on the stake. The skull has no payout rows: two or
// more skulls forfeit the stake before matches are even considered.
var (
	threeSameMultiplier = map[SlotSymbol]int64{
		SymbolCherry: 3,
		SymbolLemon:  3,
		SymbolGrape:  5,
		SymbolMelon:  8,
		SymbolSeven:  20,
	}
	twoSameMultiplier = map[SlotSymbol]int64{
		SymbolCherry: 1,
		SymbolLemon:  1,
		SymbolGrape:  2,
		SymbolMelon:  2,
		SymbolSeven:  5,
	}
)

const totalSymbolWeight = 100

func drawSymbol(rng *rand.Rand) SlotSymbol {
	n := rng.Intn(totalSymbolWeight)
	for _, entry := range symbolWeights {
		if n < entry.weight {
			return entry.symbol
		}
		n -= entry.weight
	}
	return symbolWeights[len(symbolWeights)-1].symbol
}

// SpinSlots draws three symbols independently from the weight table
func SpinSlots(rng *rand.Rand) [3]SlotSymbol {
	return [3]SlotSymbol{drawSymbol(rng), drawSymbol(rng), drawSymbol(rng)}
}

// SettleSlots resolves one spin. Two or more skulls forfeit the stake
// outright, then three of a kind, then exactly two of a kind, else a loss.
func SettleSlots(spin [3]SlotSymbol, bet int64) (returnAmount, profit int64) {
	counts := make(map[SlotSymbol]int, 3)
	for _, s := range spin {
		counts[s]++
	}

	if counts[SymbolSkull] >= 2 {
		return 0, -bet
	}

	for symbol, n := range counts {
		if n == 3 {
			returnAmount = bet * threeSameMultiplier[symbol]
			return returnAmount, returnAmount - bet
		}
	}

	for symbol, n := range counts {
		if n == 2 {
			returnAmount = bet * twoSameMultiplier[symbol]
			return returnAmount, returnAmount - bet
		}
	}

	return 0, -bet
}
