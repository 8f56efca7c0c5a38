package ohhell

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"ohpshaw-server/pkg/deck"
	"ohpshaw-server/pkg/history"
)

// Hand is a single deal-bid-play cycle of Oh Hell
// It is not safe for concurrent use; the dealer owns it
type Hand struct {
	logger   logrus.FieldLogger
	numCards int
	dealer   int
	trump    deck.Card
	players  []*Player

	bidsPlaced int

	// trick data
	leader     int
	trick      history.Trick
	tricks     []history.Trick
	lastWinner int
}

// NewHand deals a new hand
// Cards are dealt one at a time starting to the left of the dealer. If the hand is smaller than
// MaxTricks, the next card is turned up as trump.
func NewHand(logger logrus.FieldLogger, numPlayers, numCards, dealer int, d *deck.Deck) (*Hand, error) {
	if err := ValidatePlayerCount(numPlayers); err != nil {
		return nil, err
	}

	if numCards < 1 || numCards > MaxTricks {
		return nil, fmt.Errorf("expected between 1 and %d cards, got %d", MaxTricks, numCards)
	}

	if dealer < 0 || dealer >= numPlayers {
		return nil, fmt.Errorf("dealer %d is not seated", dealer)
	}

	h := &Hand{
		logger:     logger,
		numCards:   numCards,
		dealer:     dealer,
		trump:      deck.NoCard,
		players:    make([]*Player, numPlayers),
		tricks:     make([]history.Trick, 0, numCards),
		lastWinner: -1,
	}

	for i := range h.players {
		h.players[i] = NewPlayer(i)
	}

	h.leader = h.next(dealer)

	seat := h.leader
	for i := 0; i < numCards*numPlayers; i++ {
		card, err := d.Draw()
		if err != nil {
			return nil, err
		}

		h.players[seat].AddCard(card)
		seat = h.next(seat)
	}

	if numCards < MaxTricks {
		trump, err := d.Draw()
		if err != nil {
			return nil, err
		}

		h.trump = trump
	}

	h.logger.WithFields(logrus.Fields{
		"numCards": numCards,
		"dealer":   dealer,
		"trump":    h.trump,
	}).Debug("hand dealt")

	return h, nil
}

func (h *Hand) next(seat int) int {
	return (seat + 1) % len(h.players)
}

// NumCards returns the number of tricks in the hand
func (h *Hand) NumCards() int {
	return h.numCards
}

// Dealer returns the seat of the dealer
func (h *Hand) Dealer() int {
	return h.dealer
}

// Trump returns the trump card, or deck.NoCard if the hand has no trump
func (h *Hand) Trump() deck.Card {
	return h.trump
}

// Player returns the player in the seat
func (h *Hand) Player(seat int) *Player {
	return h.players[seat]
}

// BidOrder returns the seats in bidding order: left of the dealer around to the dealer
func (h *Hand) BidOrder() []int {
	order := make([]int, len(h.players))
	seat := h.dealer
	for i := range order {
		seat = h.next(seat)
		order[i] = seat
	}

	return order
}

// IsBiddingOver returns true once every player has bid
func (h *Hand) IsBiddingOver() bool {
	return h.bidsPlaced == len(h.players)
}

// CurrentBidder returns the seat that must bid next, or -1 if bidding is over
func (h *Hand) CurrentBidder() int {
	if h.IsBiddingOver() {
		return -1
	}

	return (h.dealer + 1 + h.bidsPlaced) % len(h.players)
}

func (h *Hand) totalBids() int {
	total := 0
	for _, p := range h.players {
		if p.hasBid {
			total += p.bid
		}
	}

	return total
}

// HookBid returns the bid the current bidder may not make, or -1 if every bid in range is allowed
// Only the last bidder (the dealer) is ever restricted
func (h *Hand) HookBid() int {
	if h.bidsPlaced != len(h.players)-1 {
		return -1
	}

	forbidden := h.numCards - h.totalBids()
	if forbidden < 0 || forbidden > h.numCards {
		return -1
	}

	return forbidden
}

// PlaceBid records a bid for the seat
func (h *Hand) PlaceBid(seat, bid int) error {
	if h.IsBiddingOver() {
		return ErrBiddingIsOver
	}

	if seat != h.CurrentBidder() {
		return ErrIsNotPlayersTurn
	}

	if bid < 0 || bid > h.numCards {
		return ErrBidOutOfRange
	}

	if bid == h.HookBid() {
		return ErrHookBid
	}

	p := h.players[seat]
	p.bid = bid
	p.hasBid = true
	h.bidsPlaced++

	h.logger.WithFields(logrus.Fields{"seat": seat, "bid": bid}).Debug("bid placed")
	return nil
}

// AutoBid returns the lowest legal bid for the current bidder
func (h *Hand) AutoBid() int {
	if h.HookBid() == 0 {
		return 1
	}

	return 0
}

// Bids returns every bid by seat; bids not yet placed are -1
func (h *Hand) Bids() []int {
	bids := make([]int, len(h.players))
	for i, p := range h.players {
		if p.hasBid {
			bids[i] = p.bid
		} else {
			bids[i] = -1
		}
	}

	return bids
}

// IsOver returns true once every trick has been played
func (h *Hand) IsOver() bool {
	return len(h.tricks) == h.numCards
}

// CurrentTurn returns the seat that must play next, or -1 if no one can play
func (h *Hand) CurrentTurn() int {
	if !h.IsBiddingOver() || h.IsOver() {
		return -1
	}

	return (h.leader + len(h.trick.Plays)) % len(h.players)
}

// LedSuit returns the suit led in the current trick
// The second return value is false when no card has been played in the trick
func (h *Hand) LedSuit() (deck.Suit, bool) {
	return h.trick.LedSuit()
}

// TrickPlays returns the cards played so far in the current trick
func (h *Hand) TrickPlays() []history.Play {
	return append([]history.Play{}, h.trick.Plays...)
}

// Tricks returns the completed tricks in play order
func (h *Hand) Tricks() []history.Trick {
	return append([]history.Trick{}, h.tricks...)
}

// TricksPlayed returns the number of completed tricks
func (h *Hand) TricksPlayed() int {
	return len(h.tricks)
}

// LastTrickWinner returns the winner of the last completed trick, or -1 if none has been completed
func (h *Hand) LastTrickWinner() int {
	return h.lastWinner
}

// canPlayCard returns nil if the player can play the specified card
// This method does not check if it's actually the player's turn or not
func (h *Hand) canPlayCard(p *Player, card deck.Card) error {
	if !p.holdings.Has(card) {
		return ErrCardNotInPlayersHand
	}

	led, ok := h.LedSuit()
	if ok && card.Suit() != led && p.holdings.HasSuit(led) {
		return ErrPlayOnSuit
	}

	return nil
}

// ValidMoves returns the cards the seat may legally play right now
func (h *Hand) ValidMoves(seat int) []deck.Card {
	p := h.players[seat]
	moves := make([]deck.Card, 0, p.holdings.Count())
	for _, card := range p.holdings.Cards() {
		if h.canPlayCard(p, card) == nil {
			moves = append(moves, card)
		}
	}

	return moves
}

// AutoCard returns the lowest legal card for the seat
func (h *Hand) AutoCard(seat int) deck.Card {
	holdings := h.players[seat].holdings
	if led, ok := h.LedSuit(); ok {
		if card := holdings.FirstOfSuit(led); card != deck.NoCard {
			return card
		}
	}

	return holdings.FirstCard()
}

// PlayCard plays the card for the seat
// trickOver is true if the card completed a trick, in which case LastTrickWinner() is the winner
func (h *Hand) PlayCard(seat int, card deck.Card) (trickOver bool, err error) {
	if !h.IsBiddingOver() {
		return false, ErrBiddingNotOver
	}

	if h.IsOver() {
		return false, ErrHandIsOver
	}

	if seat != h.CurrentTurn() {
		return false, ErrIsNotPlayersTurn
	}

	p := h.players[seat]
	if err := h.canPlayCard(p, card); err != nil {
		return false, err
	}

	p.holdings.Remove(card)
	h.trick.Plays = append(h.trick.Plays, history.Play{Player: seat, Card: card})

	if len(h.trick.Plays) < len(h.players) {
		return false, nil
	}

	winner, _ := h.trick.Winner(h.trump)
	h.players[winner].tricksWon++
	h.tricks = append(h.tricks, h.trick)
	h.trick = history.Trick{}
	h.leader = winner
	h.lastWinner = winner

	h.logger.WithFields(logrus.Fields{"winner": winner, "trick": len(h.tricks)}).Debug("trick won")
	return true, nil
}

// Record returns the history record of the completed hand
func (h *Hand) Record() (*history.Hand, error) {
	if !h.IsOver() {
		return nil, ErrHandNotOver
	}

	players := make([]history.HandPlayer, len(h.players))
	for i, p := range h.players {
		players[i] = history.HandPlayer{
			Player:     i,
			Deal:       p.Deal(),
			Bid:        p.bid,
			TricksMade: p.tricksWon,
		}
	}

	return &history.Hand{
		NumCards: h.numCards,
		Dealer:   h.dealer,
		Trump:    h.trump,
		Players:  players,
		Tricks:   append([]history.Trick{}, h.tricks...),
	}, nil
}
