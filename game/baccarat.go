package game

import "math"

// BaccaratBetKind identifies one of the bets a baccarat table accepts
type BaccaratBetKind string

const (
	BetPlayer      BaccaratBetKind = "player"
	BetBanker      BaccaratBetKind = "banker"
	BetTie         BaccaratBetKind = "tie"
	BetPlayerPair  BaccaratBetKind = "player_pair"
	BetBankerPair  BaccaratBetKind = "banker_pair"
	BetAnyPair     BaccaratBetKind = "any_pair"
	BetPerfectPair BaccaratBetKind = "perfect_pair"
)

// sideBetPayouts are the profit multipliers for the pair side bets
var sideBetPayouts = map[BaccaratBetKind]int64{
	BetPlayerPair:  11,
	BetBankerPair:  11,
	BetAnyPair:     5,
	BetPerfectPair: 25,
}

// BaccaratWinner is the main result of a round
type BaccaratWinner int

const (
	PlayerWins BaccaratWinner = iota
	BankerWins
	TieResult
)

// BaccaratCardValue returns a card's baccarat value: tens and faces are
// worth nothing, aces one
func BaccaratCardValue(c Card) int {
	switch c.Rank {
	case Ten, Jack, Queen, King:
		return 0
	case Ace:
		return 1
	case Two:
		return 2
	case Three:
		return 3
	case Four:
		return 4
	case Five:
		return 5
	case Six:
		return 6
	case Seven:
		return 7
	case Eight:
		return 8
	case Nine:
		return 9
	}
	return 0
}

// BaccaratTotal returns the mod-10 total of a hand
func BaccaratTotal(hand []Card) int {
	total := 0
	for _, c := range hand {
		total += BaccaratCardValue(c)
	}
	return total % 10
}

func isRankPair(hand []Card) bool {
	return len(hand) >= 2 && hand[0].Rank == hand[1].Rank
}

func isPerfectPair(hand []Card) bool {
	return len(hand) >= 2 && hand[0].Rank == hand[1].Rank && hand[0].Suit == hand[1].Suit
}

// bankerDraws implements the fixed tableau for the banker's third card when
// the player drew one
func bankerDraws(bankerTotal, playerThirdValue int) bool {
	switch {
	case bankerTotal <= 2:
		return true
	case bankerTotal == 3:
		return playerThirdValue != 8
	case bankerTotal == 4:
		return playerThirdValue >= 2 && playerThirdValue <= 7
	case bankerTotal == 5:
		return playerThirdValue >= 4 && playerThirdValue <= 7
	case bankerTotal == 6:
		return playerThirdValue >= 6 && playerThirdValue <= 7
	}
	return false
}

// BaccaratRound is the fully dealt state of one round
type BaccaratRound struct {
	PlayerHand []Card
	BankerHand []Card

	PlayerTotal int
	BankerTotal int
	Winner      BaccaratWinner

	PlayerPair  bool
	BankerPair  bool
	AnyPair     bool
	PerfectPair bool
}

// PlayBaccaratRound deals a full round from the shoe. Naturals stop play;
// otherwise the player draws on five or less and the banker follows the
// tableau.
func PlayBaccaratRound(shoe *Shoe) BaccaratRound {
	playerHand := []Card{shoe.Draw(), shoe.Draw()}
	bankerHand := []Card{shoe.Draw(), shoe.Draw()}

	playerTotal := BaccaratTotal(playerHand)
	bankerTotal := BaccaratTotal(bankerHand)

	playerNatural := playerTotal == 8 || playerTotal == 9
	bankerNatural := bankerTotal == 8 || bankerTotal == 9

	if !playerNatural && !bankerNatural {
		var playerThird *Card
		if playerTotal <= 5 {
			c := shoe.Draw()
			playerHand = append(playerHand, c)
			playerThird = &c
		}

		if playerThird == nil {
			// Player stood pat, banker draws on five or less
			if bankerTotal <= 5 {
				bankerHand = append(bankerHand, shoe.Draw())
			}
		} else if bankerDraws(bankerTotal, BaccaratCardValue(*playerThird)) {
			bankerHand = append(bankerHand, shoe.Draw())
		}
	}

	round := BaccaratRound{
		PlayerHand:  playerHand,
		BankerHand:  bankerHand,
		PlayerTotal: BaccaratTotal(playerHand),
		BankerTotal: BaccaratTotal(bankerHand),
		PlayerPair:  isRankPair(playerHand),
		BankerPair:  isRankPair(bankerHand),
		PerfectPair: isPerfectPair(playerHand) || isPerfectPair(bankerHand),
	}
	round.AnyPair = round.PlayerPair || round.BankerPair

	switch {
	case round.PlayerTotal > round.BankerTotal:
		round.Winner = PlayerWins
	case round.BankerTotal > round.PlayerTotal:
		round.Winner = BankerWins
	default:
		round.Winner = TieResult
	}

	return round
}

// SettleBaccaratBet settles one bet against a dealt round, returning the
// amount handed back to the bettor and the signed profit. Banker wins carry
// the 5% commission, rounded up in the bettor's favor.
func SettleBaccaratBet(kind BaccaratBetKind, amount int64, round BaccaratRound) (returnAmount, profit int64) {
	switch kind {
	case BetPlayer:
		switch round.Winner {
		case PlayerWins:
			profit = amount
		case TieResult:
			profit = 0
		default:
			profit = -amount
		}
	case BetBanker:
		switch round.Winner {
		case BankerWins:
			profit = int64(math.Ceil(float64(amount) * 0.95))
		case TieResult:
			profit = 0
		default:
			profit = -amount
		}
	case BetTie:
		if round.Winner == TieResult {
			profit = amount * 8
		} else {
			profit = -amount
		}
	case BetPlayerPair:
		profit = sideBetProfit(round.PlayerPair, kind, amount)
	case BetBankerPair:
		profit = sideBetProfit(round.BankerPair, kind, amount)
	case BetAnyPair:
		profit = sideBetProfit(round.AnyPair, kind, amount)
	case BetPerfectPair:
		profit = sideBetProfit(round.PerfectPair, kind, amount)
	default:
		profit = -amount
	}

	if profit >= 0 {
		returnAmount = amount + profit
	}
	return returnAmount, profit
}

func sideBetProfit(hit bool, kind BaccaratBetKind, amount int64) int64 {
	if hit {
		return amount * sideBetPayouts[kind]
	}
	return -amount
}
