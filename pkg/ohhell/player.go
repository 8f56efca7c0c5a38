package ohhell

import "ohpshaw-server/pkg/deck"

// Player is an individual's state for a single hand
type Player struct {
	Seat      int
	holdings  *deck.Holdings
	deal      []deck.Card
	bid       int
	hasBid    bool
	tricksWon int
}

// NewPlayer returns a player with nothing dealt
func NewPlayer(seat int) *Player {
	return &Player{
		Seat:     seat,
		holdings: &deck.Holdings{},
		deal:     make([]deck.Card, 0, MaxTricks),
	}
}

// AddCard deals a card to the player
func (p *Player) AddCard(card deck.Card) {
	p.holdings.Add(card)
	p.deal = append(p.deal, card)
}

// Holdings returns the cards the player still holds
func (p *Player) Holdings() *deck.Holdings {
	return p.holdings
}

// Deal returns a copy of the cards the player was dealt, in deal order
func (p *Player) Deal() []deck.Card {
	return append([]deck.Card{}, p.deal...)
}

// Bid returns the player's bid and whether it has been placed
func (p *Player) Bid() (int, bool) {
	return p.bid, p.hasBid
}

// TricksWon returns the number of tricks the player has taken so far
func (p *Player) TricksWon() int {
	return p.tricksWon
}
