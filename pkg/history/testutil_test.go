package history

import (
	"time"

	"ohpshaw-server/pkg/deck"
)

var testStart = time.Date(2026, 10, 16, 19, 30, 0, 0, time.UTC)

// twoHandGame returns a three player game with two completed hands
// Scores after hand 1: 0, -5, -5; after hand 2: 10, 5, -5
func twoHandGame() *Game {
	g := NewGame(3, testStart)
	g.ID = "9a1f7a4e-7b8e-4d55-9a43-44e0c0bb8a12"
	_ = g.AddPlayer(0, "Paul", "127.0.0.1")
	_ = g.AddPlayer(1, "Anne", "")
	_ = g.AddPlayer(2, "Lester", "")

	g.AddHand(&Hand{
		NumCards: 2,
		Dealer:   0,
		Trump:    5,
		Players: []HandPlayer{
			{Player: 0, Deal: []deck.Card{0, 1}, Bid: 1, TricksMade: 2},
			{Player: 1, Deal: []deck.Card{14, 15}, Bid: 1, TricksMade: 0},
			{Player: 2, Deal: []deck.Card{27, 28}, Bid: 1, TricksMade: 0},
		},
		Tricks: []Trick{
			{Plays: []Play{{1, 14}, {2, 27}, {0, 1}}},
			{Plays: []Play{{0, 0}, {1, 15}, {2, 28}}},
		},
	})

	g.AddHand(&Hand{
		NumCards: 1,
		Dealer:   1,
		Trump:    40,
		Players: []HandPlayer{
			{Player: 0, Deal: []deck.Card{3}, Bid: 0, TricksMade: 0},
			{Player: 1, Deal: []deck.Card{16}, Bid: 0, TricksMade: 0},
			{Player: 2, Deal: []deck.Card{29}, Bid: 0, TricksMade: 1},
		},
		Tricks: []Trick{
			{Plays: []Play{{2, 29}, {0, 3}, {1, 16}}},
		},
	})

	return g
}
