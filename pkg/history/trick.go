package history

import "ohpshaw-server/pkg/deck"

// Winner returns the player who won the trick
// The lead card wins unless it is beaten by a higher card of the same suit, or by a trump
// when the winning card is not itself a trump. A trump of deck.NoCard disables trumping.
func (t *Trick) Winner(trump deck.Card) (int, bool) {
	if len(t.Plays) == 0 {
		return 0, false
	}

	best := t.Plays[0]
	for _, play := range t.Plays[1:] {
		if Beats(play.Card, best.Card, trump) {
			best = play
		}
	}

	return best.Player, true
}

// LedSuit returns the suit of the first card played
func (t *Trick) LedSuit() (deck.Suit, bool) {
	if len(t.Plays) == 0 {
		return 0, false
	}

	return t.Plays[0].Card.Suit(), true
}

// Beats returns true if card takes the trick away from the currently winning card
func Beats(card, winning, trump deck.Card) bool {
	if card.Suit() == winning.Suit() {
		return card.Rank() > winning.Rank()
	}

	if !trump.Valid() {
		return false
	}

	return card.Suit() == trump.Suit() && winning.Suit() != trump.Suit()
}
