package deck

// Holdings is the set of cards a player holds during a hand
// The zero value is an empty set
type Holdings struct {
	cards [NumCards]bool
	count int
}

// NewHoldings returns holdings containing the cards
func NewHoldings(cards ...Card) *Holdings {
	h := &Holdings{}
	for _, card := range cards {
		h.Add(card)
	}

	return h
}

// Add adds a card, adding a card that's already held is a no-op
func (h *Holdings) Add(card Card) {
	if !card.Valid() || h.cards[card] {
		return
	}

	h.cards[card] = true
	h.count++
}

// Remove removes the card and returns true if it was held
func (h *Holdings) Remove(card Card) bool {
	if !h.Has(card) {
		return false
	}

	h.cards[card] = false
	h.count--
	return true
}

// Has returns true if the card is held
func (h *Holdings) Has(card Card) bool {
	return card.Valid() && h.cards[card]
}

// HasSuit returns true if at least one card of the suit is held
func (h *Holdings) HasSuit(suit Suit) bool {
	return h.FirstOfSuit(suit) != NoCard
}

// FirstOfSuit returns the lowest card held in the suit, or NoCard
func (h *Holdings) FirstOfSuit(suit Suit) Card {
	if suit < 0 || suit >= NumSuits {
		return NoCard
	}

	start := int(suit) * RanksPerSuit
	for i := start; i < start+RanksPerSuit; i++ {
		if h.cards[i] {
			return Card(i)
		}
	}

	return NoCard
}

// Count returns the number of cards held
func (h *Holdings) Count() int {
	return h.count
}

// FirstCard returns the lowest-indexed card held, or NoCard if empty
func (h *Holdings) FirstCard() Card {
	for i, held := range h.cards {
		if held {
			return Card(i)
		}
	}

	return NoCard
}

// Cards returns the held cards in ascending order
func (h *Holdings) Cards() []Card {
	cards := make([]Card, 0, h.count)
	for i, held := range h.cards {
		if held {
			cards = append(cards, Card(i))
		}
	}

	return cards
}
