package game

// BlackjackCardValue returns a card's blackjack value. Face cards count 10
// and aces count 11; soft reduction happens at the hand level.
func BlackjackCardValue(c Card) int {
	switch c.Rank {
	case Jack, Queen, King, Ten:
		return 10
	case Ace:
		return 11
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

// BlackjackHandValue returns the best total for a hand, counting aces as 11
// and dropping them to 1 one at a time while the hand would bust
func BlackjackHandValue(hand []Card) int {
	total := 0
	aces := 0
	for _, c := range hand {
		total += BlackjackCardValue(c)
		if c.Rank == Ace {
			aces++
		}
	}
	for total > 21 && aces > 0 {
		total -= 10
		aces--
	}
	return total
}

// IsNatural reports whether the hand is a two-card 21
func IsNatural(hand []Card) bool {
	return len(hand) == 2 && BlackjackHandValue(hand) == 21
}

// IsFiveCardCharlie reports whether the hand reached five cards without
// busting
func IsFiveCardCharlie(hand []Card) bool {
	return len(hand) >= 5 && BlackjackHandValue(hand) <= 21
}

// DealerPlay draws cards onto the dealer's hand until the total reaches 17,
// returning the completed hand. No soft-17 special casing.
func DealerPlay(shoe *Shoe, hand []Card) []Card {
	for BlackjackHandValue(hand) < 17 {
		hand = append(hand, shoe.Draw())
	}
	return hand
}

// BlackjackOutcome is the result of comparing the player's hand against the
// dealer's
type BlackjackOutcome int

const (
	BlackjackLose BlackjackOutcome = iota
	BlackjackPush
	BlackjackWin
)

// CompareBlackjackHands settles a stand against a finished dealer hand. The
// caller handles player busts and the natural and Charlie payouts before
// dealer play ever happens.
func CompareBlackjackHands(playerTotal, dealerTotal int) BlackjackOutcome {
	if dealerTotal > 21 || playerTotal > dealerTotal {
		return BlackjackWin
	}
	if playerTotal == dealerTotal {
		return BlackjackPush
	}
	return BlackjackLose
}
