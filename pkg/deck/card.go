package deck

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrInvalidCard is returned when a card value is outside of [0, 52)
var ErrInvalidCard = errors.New("card must be between 0 and 51")

// Card is an individual playing card encoded as suit*13 + rank
type Card int

// Suit represents a card suit
type Suit int

// suit constants, in encoding order
const (
	Clubs Suit = iota
	Diamonds
	Hearts
	Spades
)

// Rank is the rank of a card within its suit, Two (0) through Ace (12)
type Rank int

// rank constants
const (
	Two Rank = iota
	Three
	Four
	Five
	Six
	Seven
	Eight
	Nine
	Ten
	Jack
	Queen
	King
	Ace
)

const (
	// NumCards is the number of cards in a deck
	NumCards = 52

	// NumSuits is the number of suits
	NumSuits = 4

	// RanksPerSuit is the number of cards in each suit
	RanksPerSuit = 13

	// NoCard stands in for a missing card, e.g., when there is no trump
	NoCard Card = -1
)

var suitNames = [NumSuits]string{"Clubs", "Diamonds", "Hearts", "Spades"}

var rankNames = [RanksPerSuit]string{
	"Two", "Three", "Four", "Five", "Six", "Seven", "Eight",
	"Nine", "Ten", "Jack", "Queen", "King", "Ace",
}

// NewCard returns the card for the suit and rank
func NewCard(suit Suit, rank Rank) Card {
	return Card(int(suit)*RanksPerSuit + int(rank))
}

// SuitOf returns the suit of the card
func SuitOf(c Card) Suit {
	return Suit(int(c) / RanksPerSuit)
}

// RankOf returns the rank of the card
func RankOf(c Card) Rank {
	return Rank(int(c) % RanksPerSuit)
}

// Suit returns the suit of the card
func (c Card) Suit() Suit {
	return SuitOf(c)
}

// Rank returns the rank of the card
func (c Card) Rank() Rank {
	return RankOf(c)
}

// Valid returns true if the card is one of the 52 cards in a deck
func (c Card) Valid() bool {
	return c >= 0 && c < NumCards
}

func (c Card) String() string {
	if !c.Valid() {
		return "none"
	}

	return fmt.Sprintf("%s of %s", c.Rank(), c.Suit())
}

func (s Suit) String() string {
	if s < 0 || s >= NumSuits {
		return "Unknown"
	}

	return suitNames[s]
}

func (r Rank) String() string {
	if r < 0 || r >= RanksPerSuit {
		return "Unknown"
	}

	return rankNames[r]
}

// ParseCard parses the wire representation of a card (a decimal integer)
func ParseCard(s string) (Card, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return NoCard, fmt.Errorf("could not parse card %q: %w", s, err)
	}

	card := Card(n)
	if !card.Valid() {
		return NoCard, ErrInvalidCard
	}

	return card, nil
}
