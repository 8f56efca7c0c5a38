package deck

import (
	"errors"
	"ohpshaw-server/internal/rng"
)

// ErrEndOfDeck is an error when Draw() is attempted and there are no more cards
var ErrEndOfDeck = errors.New("end of deck reached")

// Deck represents a playing deck
type Deck struct {
	Cards []Card `json:"cards"`
}

// New returns a new deck of cards, shuffled with a Fisher-Yates shuffle driven by r.
// Every permutation is equally likely as long as r is uniform.
func New(r rng.Generator) *Deck {
	d := &Deck{}
	d.buildDeck()
	d.shuffle(r)

	return d
}

// NewFromCards returns a deck that will draw cards in the order given.
// This is used for tests and replays; the cards are not validated
func NewFromCards(cards []Card) *Deck {
	c := make([]Card, len(cards))
	copy(c, cards)

	return &Deck{Cards: c}
}

func (d *Deck) buildDeck() {
	cards := make([]Card, NumCards)
	for i := range cards {
		cards[i] = Card(i)
	}

	d.Cards = cards
}

func (d *Deck) shuffle(r rng.Generator) {
	for j := len(d.Cards) - 1; j > 0; j-- {
		i := r.Intn(j + 1)

		d.Cards[i], d.Cards[j] = d.Cards[j], d.Cards[i]
	}
}

// Draw will draw the next card
// If there are no more cards, an ErrEndOfDeck is returned along with NoCard.
func (d *Deck) Draw() (Card, error) {
	if len(d.Cards) <= 0 {
		return NoCard, ErrEndOfDeck
	}

	card := d.Cards[0]
	d.Cards = d.Cards[1:]

	return card, nil
}

// CanDraw returns true if there are {want} cards left in the deck
func (d *Deck) CanDraw(want int) bool {
	return len(d.Cards) >= want
}

// CardsLeft returns the number of cards left in the deck
func (d *Deck) CardsLeft() int {
	return len(d.Cards)
}
