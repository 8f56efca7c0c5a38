package history

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"ohpshaw-server/pkg/deck"
)

// Player is an entry on the game roster
type Player struct {
	ID   int    `yaml:"id" json:"id"`
	Name string `yaml:"name" json:"name"`
	Addr string `yaml:"addr,omitempty" json:"addr,omitempty"`
}

// Play is a single card played in a trick
type Play struct {
	Player int       `yaml:"player" json:"player"`
	Card   deck.Card `yaml:"card" json:"card"`
}

// Trick is the cards played in a trick, in play order starting with the lead
type Trick struct {
	Plays []Play `yaml:"plays" json:"plays"`
}

// HandPlayer is an individual player's record of a hand
type HandPlayer struct {
	Player     int         `yaml:"player" json:"player"`
	Deal       []deck.Card `yaml:"deal" json:"deal"`
	Bid        int         `yaml:"bid" json:"bid"`
	TricksMade int         `yaml:"tricksMade" json:"tricksMade"`
}

// Hand is a completed hand
// Players is in roster order
type Hand struct {
	NumCards int          `yaml:"numCards" json:"numCards"`
	Dealer   int          `yaml:"dealer" json:"dealer"`
	Trump    deck.Card    `yaml:"trump" json:"trump"`
	Players  []HandPlayer `yaml:"players" json:"players"`
	Tricks   []Trick      `yaml:"tricks" json:"tricks"`
}

// Game is the history of a game
type Game struct {
	ID         string    `yaml:"id" json:"id"`
	NumPlayers int       `yaml:"numPlayers" json:"numPlayers"`
	Start      time.Time `yaml:"start" json:"start"`
	Players    []Player  `yaml:"players" json:"players"`
	Hands      []*Hand   `yaml:"hands" json:"hands"`
}

// NewGame returns an empty game record
func NewGame(numPlayers int, start time.Time) *Game {
	return &Game{
		ID:         uuid.New().String(),
		NumPlayers: numPlayers,
		Start:      start,
		Players:    make([]Player, 0, numPlayers),
		Hands:      make([]*Hand, 0),
	}
}

// AddPlayer adds a player to the roster
func (g *Game) AddPlayer(id int, name, addr string) error {
	if len(g.Players) >= g.NumPlayers {
		return ErrRosterFull
	}

	if _, found := g.seatOf(id); found {
		return fmt.Errorf("player %d is already on the roster", id)
	}

	g.Players = append(g.Players, Player{ID: id, Name: name, Addr: addr})
	return nil
}

// AddHand appends a completed hand
func (g *Game) AddHand(hand *Hand) {
	g.Hands = append(g.Hands, hand)
}

// HandsPlayed returns the number of completed hands
func (g *Game) HandsPlayed() int {
	return len(g.Hands)
}

// Names returns the names of the players in roster order
func (g *Game) Names() []string {
	names := make([]string, len(g.Players))
	for i, p := range g.Players {
		names[i] = p.Name
	}

	return names
}

// NextDealer returns the dealer of the next hand
func (g *Game) NextDealer() (int, error) {
	n := len(g.Hands)
	if n == 0 {
		return 0, ErrNoHandsYet
	}

	return (g.Hands[n-1].Dealer + 1) % g.NumPlayers, nil
}

// seatOf returns the roster index of the player id
func (g *Game) seatOf(id int) (int, bool) {
	for i, p := range g.Players {
		if p.ID == id {
			return i, true
		}
	}

	return 0, false
}

// Bids returns the bids indexed by player id
func (h *Hand) Bids() []int {
	bids := make([]int, len(h.Players))
	for i, p := range h.Players {
		bids[i] = p.Bid
	}

	return bids
}

// TricksMade returns the tricks made indexed by player id
func (h *Hand) TricksMade() []int {
	made := make([]int, len(h.Players))
	for i, p := range h.Players {
		made[i] = p.TricksMade
	}

	return made
}

// Deals returns the original deal of each player
func (h *Hand) Deals() [][]deck.Card {
	deals := make([][]deck.Card, len(h.Players))
	for i, p := range h.Players {
		deals[i] = p.Deal
	}

	return deals
}

// Validate checks the invariants of a completed hand
func (h *Hand) Validate() error {
	made := 0
	for _, p := range h.Players {
		if len(p.Deal) != h.NumCards {
			return fmt.Errorf("player %d was dealt %d cards, expected %d", p.Player, len(p.Deal), h.NumCards)
		}

		if p.Bid < 0 || p.Bid > h.NumCards {
			return fmt.Errorf("player %d bid %d with %d cards", p.Player, p.Bid, h.NumCards)
		}

		made += p.TricksMade
	}

	if made != h.NumCards {
		return fmt.Errorf("tricks made total %d, expected %d", made, h.NumCards)
	}

	return nil
}
