package history

import (
	"fmt"
	"time"

	"gopkg.in/yaml.v2"
	"ohpshaw-server/pkg/deck"
)

// MaxCards is the largest hand that can appear in a log
const MaxCards = 10

// Encode returns the YAML representation of the game
func Encode(g *Game) ([]byte, error) {
	return yaml.Marshal(g)
}

// the log*-types mirror the public records, but use pointers so missing fields can be detected
type logGame struct {
	ID         string       `yaml:"id"`
	NumPlayers *int         `yaml:"numPlayers"`
	Start      *time.Time   `yaml:"start"`
	Players    []*logPlayer `yaml:"players"`
	Hands      []*logHand   `yaml:"hands"`
}

type logPlayer struct {
	ID   *int   `yaml:"id"`
	Name string `yaml:"name"`
	Addr string `yaml:"addr"`
}

type logHand struct {
	NumCards *int             `yaml:"numCards"`
	Dealer   *int             `yaml:"dealer"`
	Trump    *int             `yaml:"trump"`
	Players  []*logHandPlayer `yaml:"players"`
	Tricks   []*logTrick      `yaml:"tricks"`
}

type logHandPlayer struct {
	Player     *int  `yaml:"player"`
	Deal       []int `yaml:"deal"`
	Bid        *int  `yaml:"bid"`
	TricksMade *int  `yaml:"tricksMade"`
}

type logTrick struct {
	Plays []*logPlay `yaml:"plays"`
}

type logPlay struct {
	Player *int `yaml:"player"`
	Card   *int `yaml:"card"`
}

func corrupt(format string, a ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrCorruptLog, fmt.Sprintf(format, a...))
}

// Decode parses a game log produced by Encode
// Any structural problem is reported as an error wrapping ErrCorruptLog
func Decode(data []byte) (*Game, error) {
	var raw logGame
	if err := yaml.UnmarshalStrict(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptLog, err)
	}

	if raw.NumPlayers == nil || *raw.NumPlayers <= 0 {
		return nil, corrupt("missing numPlayers")
	}

	if raw.Start == nil || raw.Start.IsZero() {
		return nil, corrupt("missing start time")
	}

	g := &Game{
		ID:         raw.ID,
		NumPlayers: *raw.NumPlayers,
		Start:      *raw.Start,
		Players:    make([]Player, 0, *raw.NumPlayers),
		Hands:      make([]*Hand, 0, len(raw.Hands)),
	}

	if len(raw.Players) != g.NumPlayers {
		return nil, corrupt("roster has %d players, expected %d", len(raw.Players), g.NumPlayers)
	}

	for i, p := range raw.Players {
		if p == nil || p.ID == nil {
			return nil, corrupt("player %d is missing an id", i)
		}

		if p.Name == "" {
			return nil, corrupt("player %d is missing a name", *p.ID)
		}

		if err := g.AddPlayer(*p.ID, p.Name, p.Addr); err != nil {
			return nil, corrupt("%v", err)
		}
	}

	for i, rh := range raw.Hands {
		hand, err := g.decodeHand(rh)
		if err != nil {
			return nil, fmt.Errorf("hand %d: %w", i, err)
		}

		g.AddHand(hand)
	}

	return g, nil
}

func (g *Game) decodeHand(rh *logHand) (*Hand, error) {
	if rh == nil || rh.NumCards == nil || rh.Dealer == nil {
		return nil, corrupt("missing numCards or dealer")
	}

	numCards := *rh.NumCards
	if numCards < 1 || numCards > MaxCards {
		return nil, corrupt("numCards %d out of range", numCards)
	}

	if *rh.Dealer < 0 || *rh.Dealer >= g.NumPlayers {
		return nil, corrupt("dealer %d is not on the roster", *rh.Dealer)
	}

	trump := deck.NoCard
	if rh.Trump != nil {
		trump = deck.Card(*rh.Trump)
	}

	if trump == deck.NoCard && numCards != MaxCards {
		return nil, corrupt("missing trump for a %d card hand", numCards)
	}

	if trump != deck.NoCard && !trump.Valid() {
		return nil, corrupt("trump %d out of range", trump)
	}

	h := &Hand{
		NumCards: numCards,
		Dealer:   *rh.Dealer,
		Trump:    trump,
		Players:  make([]HandPlayer, len(rh.Players)),
		Tricks:   make([]Trick, 0, len(rh.Tricks)),
	}

	if len(rh.Players) != g.NumPlayers {
		return nil, corrupt("hand has %d players, expected %d", len(rh.Players), g.NumPlayers)
	}

	for i, rp := range rh.Players {
		if rp == nil || rp.Player == nil || rp.Bid == nil || rp.TricksMade == nil {
			return nil, corrupt("player entry %d is missing player, bid or tricksMade", i)
		}

		if g.Players[i].ID != *rp.Player {
			return nil, corrupt("player entry %d references player %d, not on the roster in that seat", i, *rp.Player)
		}

		cards, err := decodeCards(rp.Deal)
		if err != nil {
			return nil, err
		}

		h.Players[i] = HandPlayer{
			Player:     *rp.Player,
			Deal:       cards,
			Bid:        *rp.Bid,
			TricksMade: *rp.TricksMade,
		}
	}

	for _, rt := range rh.Tricks {
		if rt == nil {
			return nil, corrupt("empty trick")
		}

		trick := Trick{Plays: make([]Play, len(rt.Plays))}
		for i, rp := range rt.Plays {
			if rp == nil || rp.Player == nil || rp.Card == nil {
				return nil, corrupt("play is missing player or card")
			}

			if _, found := g.seatOf(*rp.Player); !found {
				return nil, corrupt("play references player %d", *rp.Player)
			}

			card := deck.Card(*rp.Card)
			if !card.Valid() {
				return nil, corrupt("card %d out of range", *rp.Card)
			}

			trick.Plays[i] = Play{Player: *rp.Player, Card: card}
		}

		h.Tricks = append(h.Tricks, trick)
	}

	if err := h.Validate(); err != nil {
		return nil, corrupt("%v", err)
	}

	return h, nil
}

func decodeCards(values []int) ([]deck.Card, error) {
	cards := make([]deck.Card, len(values))
	for i, v := range values {
		card := deck.Card(v)
		if !card.Valid() {
			return nil, corrupt("card %d out of range", v)
		}

		cards[i] = card
	}

	return cards, nil
}
