package room

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"ohpshaw-server/internal/rng"
	"ohpshaw-server/pkg/deck"
	"ohpshaw-server/pkg/history"
	"ohpshaw-server/pkg/ohhell"
)

// State is the protocol state of the dealer
type State int

// States
const (
	StateRegistration State = iota
	StateRestart
	StatePlaying
	StateGameOver
)

func (s State) String() string {
	switch s {
	case StateRegistration:
		return "REGISTRATION"
	case StateRestart:
		return "RESTART"
	case StatePlaying:
		return "PLAYING"
	case StateGameOver:
		return "GAME_OVER"
	}

	return "UNKNOWN"
}

// Store persists the game log
type Store interface {
	Save(g *history.Game) error
	Path() string
}

// Options are the table rules of the dealer
type Options struct {
	// TurnTimeout is how long a player has to answer a BID or GET_CARD; zero waits forever
	TurnTimeout time.Duration

	// AutoPlayLastCard plays a player's last card without prompting
	AutoPlayLastCard bool

	// LogDir is where the logs of new games are written
	LogDir string

	// Rng picks the first dealer and shuffles; defaults to rng.Crypto
	Rng rng.Generator

	// NewDeck returns the deck for the next hand; defaults to a deck shuffled by Rng
	NewDeck func() *deck.Deck

	// Now defaults to time.Now
	Now func() time.Time

	// TrickCounts defaults to ohhell.TrickCounts
	TrickCounts func(numPlayers int) []int
}

func (o *Options) setDefaults() {
	if o.Rng == nil {
		o.Rng = rng.Crypto{}
	}

	if o.NewDeck == nil {
		r := o.Rng
		o.NewDeck = func() *deck.Deck {
			return deck.New(r)
		}
	}

	if o.Now == nil {
		o.Now = time.Now
	}

	if o.TrickCounts == nil {
		o.TrickCounts = ohhell.TrickCounts
	}
}

var errTurnTimeout = errors.New("turn timed out")

type pendingTurn struct {
	seat   int
	prompt string
}

// Dealer runs games of Oh Hell
// All game state is owned by the goroutine in Run(); connections feed it through a single event channel
type Dealer struct {
	logger     logrus.FieldLogger
	opts       Options
	numPlayers int

	registry *Registry
	game     *history.Game
	store    Store
	state    State

	events  chan event
	done    chan struct{}
	clients map[*Client]bool

	hand      *ohhell.Hand
	handIndex int
	pending   *pendingTurn

	status     Status
	statusLock sync.RWMutex
}

// NewDealer returns a dealer that registers players for a fresh game
func NewDealer(logger logrus.FieldLogger, registry *Registry, opts Options) (*Dealer, error) {
	if err := ohhell.ValidatePlayerCount(registry.Size()); err != nil {
		return nil, err
	}

	opts.setDefaults()
	now := opts.Now()
	d := newDealer(logger, registry, opts)
	d.game = history.NewGame(registry.Size(), now)
	d.store = history.NewFileStore(opts.LogDir, now)
	d.state = StateRegistration
	d.updateStatus()

	return d, nil
}

// NewRecoveryDealer returns a dealer that waits for the players of a saved game to log in again, then resumes it
// Further games are logged to new files in Options.LogDir
func NewRecoveryDealer(logger logrus.FieldLogger, game *history.Game, store Store, opts Options) (*Dealer, error) {
	if err := ohhell.ValidatePlayerCount(game.NumPlayers); err != nil {
		return nil, err
	}

	if len(game.Players) != game.NumPlayers {
		return nil, fmt.Errorf("%w: roster has %d players, expected %d", history.ErrCorruptLog, len(game.Players), game.NumPlayers)
	}

	opts.setDefaults()
	d := newDealer(logger, NewRecoveredRegistry(game), opts)
	d.game = game
	d.store = store
	d.state = StateRestart
	d.updateStatus()

	return d, nil
}

func newDealer(logger logrus.FieldLogger, registry *Registry, opts Options) *Dealer {
	return &Dealer{
		logger:     logger,
		opts:       opts,
		numPlayers: registry.Size(),
		registry:   registry,
		events:     make(chan event, 256),
		done:       make(chan struct{}),
		clients:    make(map[*Client]bool),
		handIndex:  -1,
	}
}

// AddClient starts serving a connection
// This method returns immediately
func (d *Dealer) AddClient(client *Client) {
	go client.writeLoop()
	go client.readLoop(d.events, d.done)
}

// ServeTCP accepts line protocol connections until the listener fails or the dealer stops
func (d *Dealer) ServeTCP(ln net.Listener) error {
	for {
		conn, err := ln.Accept()
		if err != nil {
			select {
			case <-d.done:
				return nil
			default:
				return err
			}
		}

		d.AddClient(NewClient(NewLineConn(conn)))
	}
}

// Run plays games until ctx is done or a game can't continue
func (d *Dealer) Run(ctx context.Context) error {
	defer func() {
		close(d.done)
		for client := range d.clients {
			client.Close()
		}
	}()

	d.logger.WithField("state", d.state).Info("dealer started")
	for {
		var err error
		switch d.state {
		case StateRegistration, StateRestart:
			err = d.seatPlayers(ctx)
		case StatePlaying:
			err = d.playGame(ctx)
		case StateGameOver:
			d.newGame()
		}

		if err != nil {
			return err
		}
	}
}

// Status returns a snapshot of the table
// It is safe to call from any goroutine
func (d *Dealer) Status() Status {
	d.statusLock.RLock()
	defer d.statusLock.RUnlock()

	return d.status
}

func (d *Dealer) setState(s State) {
	d.logger.WithFields(logrus.Fields{"from": d.state, "to": s}).Info("state changed")
	d.state = s
	d.updateStatus()
}

func (d *Dealer) gameLogger() logrus.FieldLogger {
	return d.logger.WithField("game", d.game.ID)
}

func (d *Dealer) nextEvent(ctx context.Context, timeout <-chan time.Time) (event, error) {
	select {
	case <-ctx.Done():
		return event{}, ctx.Err()
	case <-timeout:
		return event{}, errTurnTimeout
	case ev := <-d.events:
		return ev, nil
	}
}

func (d *Dealer) seatPlayers(ctx context.Context) error {
	for !d.registry.Full() {
		ev, err := d.nextEvent(ctx, nil)
		if err != nil {
			return err
		}

		d.handleEvent(ev)
	}

	d.setState(StatePlaying)
	return nil
}

// handleEvent processes traffic that isn't the answer to a prompt
func (d *Dealer) handleEvent(ev event) {
	switch ev.kind {
	case eventConnect:
		d.clients[ev.client] = true
		d.logger.WithField("client", ev.client.String()).Info("client connected")
	case eventDisconnect:
		delete(d.clients, ev.client)
		d.logger.WithError(ev.err).WithField("client", ev.client.String()).Info("client disconnected")
		d.leave(ev.client)
	case eventLine:
		d.handleLine(ev.client, ev.line)
	}
}

func (d *Dealer) handleLine(c *Client, line string) {
	cmd, arg := parseLine(line)
	switch cmd {
	case "":
		return
	case cmdLogin:
		d.login(c, arg)
	case cmdLogout:
		if _, ok := d.registry.SeatOf(c); !ok {
			c.Send("%s Not logged in", cmdError)
			return
		}

		d.leave(c)
		c.Send(cmdOK)
		c.Close()
	default:
		if _, ok := d.registry.SeatOf(c); !ok {
			c.Send("%s Not logged in", cmdError)
			return
		}

		if d.state == StatePlaying && (cmd == cmdBid || cmd == cmdPlayCard) {
			c.Send("%s Not your turn", cmdError)
			return
		}

		c.Send("%s Illegal command", cmdError)
	}
}

func (d *Dealer) login(c *Client, name string) {
	log := d.logger.WithFields(logrus.Fields{"client": c.String(), "name": name})

	var seat int
	var err error
	if d.state == StateRegistration {
		seat, err = d.registry.Join(c, name)
	} else {
		seat, err = d.registry.Rebind(c, name)
	}

	if err != nil {
		log.WithError(err).Debug("login rejected")
		c.Send("%s %s", cmdError, err)
		return
	}

	c.Send(cmdOK)
	d.registry.BroadcastExcept(c, fmt.Sprintf("%s %s", cmdNewPlayer, d.registry.Seat(seat).Name))
	log.WithField("seat", seat).Info("player logged in")

	if d.state == StatePlaying {
		d.catchUp(seat)
	}

	d.updateStatus()
}

// leave unbinds a departing client
// Before a game starts the seat is given up; once a game is underway it is held for the player to return
func (d *Dealer) leave(c *Client) {
	log := d.logger.WithField("client", c.String())
	if d.state == StateRegistration {
		if seat, ok := d.registry.Remove(c); ok {
			log.WithField("seat", seat).Info("player left")
		}
	} else if seat, ok := d.registry.Vacate(c); ok {
		log.WithField("seat", seat).Warn("seat vacated")
	}

	d.updateStatus()
}

// catchUp replays the game so far to a player who logged in again during play
func (d *Dealer) catchUp(seat int) {
	d.registry.SendTo(seat, d.startGameLine())

	h := d.hand
	if h == nil {
		return
	}

	d.registry.SendTo(seat, "%s %d %d", cmdNewHand, h.NumCards(), h.Dealer())
	for _, card := range h.Player(seat).Holdings().Cards() {
		d.registry.SendTo(seat, "%s %d", cmdDraw, int(card))
	}

	d.registry.SendTo(seat, "%s %d", cmdDealOver, int(h.Trump()))
	for _, s := range h.BidOrder() {
		if bid, ok := h.Player(s).Bid(); ok {
			d.registry.SendTo(seat, "%s %d %d", cmdBidAnnounce, s, bid)
		}
	}

	for _, trick := range h.Tricks() {
		for _, play := range trick.Plays {
			d.registry.SendTo(seat, "%s %d %d", cmdCardPlayed, play.Player, int(play.Card))
		}

		winner, _ := trick.Winner(h.Trump())
		d.registry.SendTo(seat, "%s %d", cmdTrickWinner, winner)
	}

	for _, play := range h.TrickPlays() {
		d.registry.SendTo(seat, "%s %d %d", cmdCardPlayed, play.Player, int(play.Card))
	}

	if d.pending != nil && d.pending.seat == seat {
		d.registry.SendTo(seat, d.pending.prompt)
	}
}

func (d *Dealer) startGameLine() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %d", cmdStartGame, d.registry.Len())
	for _, seat := range d.registry.Seats() {
		fmt.Fprintf(&b, " %s %d", seat.Name, seat.Score)
	}

	return b.String()
}

// turnTimer starts the clock for a turn; the channel is nil when turns never expire
func (d *Dealer) turnTimer() (<-chan time.Time, func()) {
	if d.opts.TurnTimeout <= 0 {
		return nil, func() {}
	}

	timer := time.NewTimer(d.opts.TurnTimeout)
	return timer.C, func() {
		timer.Stop()
	}
}

// awaitTurn prompts the seat and waits for its answer, handling everyone else's traffic in the meantime
// The timeout covers the whole turn, so rejected answers do not restart it
func (d *Dealer) awaitTurn(ctx context.Context, seat int, prompt, expect string, timeout <-chan time.Time) (string, error) {
	d.pending = &pendingTurn{seat: seat, prompt: prompt}
	defer func() {
		d.pending = nil
	}()

	d.registry.SendTo(seat, prompt)
	d.updateStatus()

	for {
		ev, err := d.nextEvent(ctx, timeout)
		if err != nil {
			return "", err
		}

		if ev.kind == eventLine {
			if s, ok := d.registry.SeatOf(ev.client); ok && s == seat {
				cmd, arg := parseLine(ev.line)
				if cmd == expect {
					return arg, nil
				}

				if cmd != cmdLogin && cmd != cmdLogout {
					ev.client.Send("%s Illegal command", cmdError)
					ev.client.Send(prompt)
					continue
				}
			}
		}

		d.handleEvent(ev)
	}
}

func (d *Dealer) playGame(ctx context.Context) error {
	if len(d.game.Players) == 0 {
		for i, seat := range d.registry.Seats() {
			if err := d.game.AddPlayer(i, seat.Name, seat.Addr); err != nil {
				return err
			}
		}
	}

	log := d.gameLogger()
	log.WithFields(logrus.Fields{
		"players": d.game.Names(),
		"log":     d.store.Path(),
	}).Info("game started")

	d.registry.Broadcast(d.startGameLine())

	counts := d.opts.TrickCounts(d.numPlayers)
	dealer, err := d.game.NextDealer()
	if errors.Is(err, history.ErrNoHandsYet) {
		dealer = d.opts.Rng.Intn(d.numPlayers)
	}

	for d.handIndex = d.game.HandsPlayed(); d.handIndex < len(counts); d.handIndex++ {
		if err := d.playHand(ctx, counts[d.handIndex], dealer); err != nil {
			return err
		}

		dealer = (dealer + 1) % d.numPlayers
	}

	scores := d.registry.Scores()
	winner, tied := Winner(scores)
	if len(tied) > 1 {
		log.WithField("tied", tied).Warn("game ended in a tie, lowest seat wins")
	}

	log.WithFields(logrus.Fields{"winner": winner, "scores": scores}).Info("game over")
	d.registry.Broadcast("%s %d", cmdGameOver, winner)
	d.setState(StateGameOver)

	return nil
}

func (d *Dealer) playHand(ctx context.Context, numCards, dealer int) error {
	log := d.gameLogger().WithFields(logrus.Fields{
		"hand":     d.handIndex,
		"numCards": numCards,
		"dealer":   dealer,
	})

	hand, err := ohhell.NewHand(log, d.numPlayers, numCards, dealer, d.opts.NewDeck())
	if err != nil {
		return fmt.Errorf("could not deal hand %d: %w", d.handIndex, err)
	}

	d.hand = hand
	defer func() {
		d.hand = nil
	}()

	d.registry.Broadcast("%s %d %d", cmdNewHand, numCards, dealer)
	for seat := 0; seat < d.numPlayers; seat++ {
		for _, card := range hand.Player(seat).Deal() {
			d.registry.SendTo(seat, "%s %d", cmdDraw, int(card))
		}
	}

	d.registry.Broadcast("%s %d", cmdDealOver, int(hand.Trump()))
	d.updateStatus()

	for !hand.IsBiddingOver() {
		seat := hand.CurrentBidder()
		bid, err := d.collectBid(ctx, log, seat)
		if err != nil {
			return err
		}

		d.registry.Broadcast("%s %d %d", cmdBidAnnounce, seat, bid)
		d.updateStatus()
	}

	for !hand.IsOver() {
		seat := hand.CurrentTurn()
		card, trickOver, err := d.collectCard(ctx, log, seat)
		if err != nil {
			return err
		}

		d.registry.Broadcast("%s %d %d", cmdCardPlayed, seat, int(card))
		if trickOver {
			d.registry.Broadcast("%s %d", cmdTrickWinner, hand.LastTrickWinner())
		}

		d.updateStatus()
	}

	record, err := hand.Record()
	if err != nil {
		return err
	}

	d.game.AddHand(record)
	if err := d.store.Save(d.game); err != nil {
		log.WithError(err).WithField("path", d.store.Path()).Error("could not save game log")
	}

	deltas := record.Deltas()
	d.registry.AddScores(deltas)
	d.registry.Broadcast("%s %s", cmdEndHand, joinInts(deltas))
	log.WithFields(logrus.Fields{"bids": record.Bids(), "made": record.TricksMade(), "deltas": deltas}).Info("hand over")

	return nil
}

func (d *Dealer) collectBid(ctx context.Context, log logrus.FieldLogger, seat int) (int, error) {
	timeout, stop := d.turnTimer()
	defer stop()

	for {
		arg, err := d.awaitTurn(ctx, seat, cmdBid, cmdBid, timeout)
		if errors.Is(err, errTurnTimeout) {
			bid := d.hand.AutoBid()
			log.WithFields(logrus.Fields{"seat": seat, "bid": bid}).Warn("bid timed out, bidding for player")
			if err := d.hand.PlaceBid(seat, bid); err != nil {
				return 0, err
			}

			return bid, nil
		} else if err != nil {
			return 0, err
		}

		bid, err := strconv.Atoi(arg)
		if err != nil {
			d.registry.SendTo(seat, "%s Illegal command", cmdError)
			continue
		}

		err = d.hand.PlaceBid(seat, bid)
		switch {
		case err == nil:
			d.registry.SendTo(seat, cmdOK)
			return bid, nil
		case errors.Is(err, ohhell.ErrHookBid):
			d.registry.SendTo(seat, "%s %d", cmdBadBid, bid)
		default:
			d.registry.SendTo(seat, "%s %s", cmdError, err)
		}

		log.WithError(err).WithFields(logrus.Fields{"seat": seat, "bid": bid}).Debug("bid rejected")
	}
}

func (d *Dealer) collectCard(ctx context.Context, log logrus.FieldLogger, seat int) (deck.Card, bool, error) {
	if holdings := d.hand.Player(seat).Holdings(); d.opts.AutoPlayLastCard && holdings.Count() == 1 {
		card := holdings.FirstCard()
		trickOver, err := d.hand.PlayCard(seat, card)
		return card, trickOver, err
	}

	timeout, stop := d.turnTimer()
	defer stop()

	for {
		arg, err := d.awaitTurn(ctx, seat, cmdGetCard, cmdPlayCard, timeout)
		if errors.Is(err, errTurnTimeout) {
			card := d.hand.AutoCard(seat)
			log.WithFields(logrus.Fields{"seat": seat, "card": card}).Warn("play timed out, playing for player")
			trickOver, err := d.hand.PlayCard(seat, card)
			return card, trickOver, err
		} else if err != nil {
			return deck.NoCard, false, err
		}

		card, err := deck.ParseCard(arg)
		if err == nil {
			var trickOver bool
			if trickOver, err = d.hand.PlayCard(seat, card); err == nil {
				d.registry.SendTo(seat, cmdOK)
				return card, trickOver, nil
			}
		}

		log.WithError(err).WithFields(logrus.Fields{"seat": seat, "card": arg}).Debug("card rejected")
		d.registry.SendTo(seat, "%s Improper card", cmdError)
	}
}

// newGame closes out a finished game and opens registration for the next one
func (d *Dealer) newGame() {
	d.registry.CloseAll()
	d.registry = NewRegistry(d.numPlayers)

	now := d.opts.Now()
	d.game = history.NewGame(d.numPlayers, now)
	d.store = history.NewFileStore(d.opts.LogDir, now)
	d.handIndex = -1
	d.setState(StateRegistration)
}
