package room

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"ohpshaw-server/pkg/deck"
	"ohpshaw-server/pkg/history"
)

var testStart = time.Date(2026, 10, 16, 19, 30, 0, 0, time.UTC)

type fixedRng int

func (f fixedRng) Intn(n int) int {
	return int(f) % n
}

// testOptions deals the decks in order, one per hand, and picks seat 0 as the first dealer
func testOptions(t *testing.T, counts []int, decks ...[]deck.Card) Options {
	i := 0
	return Options{
		LogDir: t.TempDir(),
		Rng:    fixedRng(0),
		Now: func() time.Time {
			return testStart
		},
		TrickCounts: func(int) []int {
			return counts
		},
		NewDeck: func() *deck.Deck {
			d := deck.NewFromCards(decks[i%len(decks)])
			i++
			return d
		},
	}
}

func runDealer(t *testing.T, d *Dealer) {
	ctx, cancel := context.WithCancel(context.Background())
	errs := make(chan error, 1)
	go func() {
		errs <- d.Run(ctx)
	}()

	t.Cleanup(func() {
		cancel()
		select {
		case err := <-errs:
			assert.Equal(t, context.Canceled, err)
		case <-time.After(5 * time.Second):
			t.Error("dealer did not stop")
		}
	})
}

type testPlayer struct {
	t      *testing.T
	conn   net.Conn
	reader *bufio.Reader
}

func connect(t *testing.T, d *Dealer) *testPlayer {
	server, client := net.Pipe()
	d.AddClient(NewClient(NewLineConn(server)))
	t.Cleanup(func() {
		_ = client.Close()
	})

	return &testPlayer{t: t, conn: client, reader: bufio.NewReader(client)}
}

func (p *testPlayer) send(line string) {
	p.t.Helper()
	_ = p.conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
	_, err := fmt.Fprintf(p.conn, "%s\n", line)
	assert.NoError(p.t, err)
}

func (p *testPlayer) readLine() (string, error) {
	_ = p.conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	line, err := p.reader.ReadString('\n')
	return strings.TrimRight(line, "\n"), err
}

func (p *testPlayer) expect(lines ...string) {
	p.t.Helper()
	for _, want := range lines {
		got, err := p.readLine()
		if !assert.NoError(p.t, err, "waiting for %q", want) {
			p.t.FailNow()
		}

		assert.Equal(p.t, want, got)
	}
}

// readUntil returns every line up to and including the first with the prefix
func (p *testPlayer) readUntil(prefix string) []string {
	p.t.Helper()
	var lines []string
	for {
		line, err := p.readLine()
		if !assert.NoError(p.t, err, "waiting for %q", prefix) {
			p.t.FailNow()
		}

		lines = append(lines, line)
		if strings.HasPrefix(line, prefix) {
			return lines
		}
	}
}

func (p *testPlayer) expectClosed() {
	p.t.Helper()
	_, err := p.readLine()
	assert.Equal(p.t, io.EOF, err)
}

// three players, one single-trick hand with dealer 0; the dealer's lone trump takes the trick
func TestDealer_BottomRound(t *testing.T) {
	a := assert.New(t)

	opts := testOptions(t, []int{1}, []deck.Card{14, 27, 1, 5})
	d, err := NewDealer(logrus.StandardLogger(), NewRegistry(3), opts)
	a.NoError(err)
	runDealer(t, d)

	paul := connect(t, d)
	paul.send("LOGIN Paul")
	paul.expect("OK")

	anne := connect(t, d)
	anne.send("LOGIN Anne")
	anne.expect("OK")
	paul.expect("NEW_PLAYER Anne")

	lester := connect(t, d)
	lester.send("LOGIN Lester")
	lester.expect("OK")

	start := "START_GAME 3 Paul 0 Anne 0 Lester 0"
	paul.expect("NEW_PLAYER Lester", start, "NEW_HAND 1 0", "DRAW 1", "DEAL_OVER 5")
	anne.expect("NEW_PLAYER Lester", start, "NEW_HAND 1 0", "DRAW 14", "DEAL_OVER 5", "BID")
	lester.expect(start, "NEW_HAND 1 0", "DRAW 27", "DEAL_OVER 5")

	lester.send("BID 0")
	lester.expect("ERROR Not your turn")

	anne.send("BID 1")
	anne.expect("OK", "BID_ANNOUNCE 1 1")
	lester.expect("BID_ANNOUNCE 1 1", "BID")
	lester.send("BID 0")
	lester.expect("OK", "BID_ANNOUNCE 2 0")

	// the dealer may not bring the total to one
	paul.expect("BID_ANNOUNCE 1 1", "BID_ANNOUNCE 2 0", "BID")
	paul.send("BID 0")
	paul.expect("BADBID 0", "BID")
	paul.send("BID 1")
	paul.expect("OK", "BID_ANNOUNCE 0 1")
	anne.expect("BID_ANNOUNCE 2 0", "BID_ANNOUNCE 0 1", "GET_CARD")
	lester.expect("BID_ANNOUNCE 0 1")

	anne.send("PLAY_CARD 14")
	anne.expect("OK", "CARD_PLAYED 1 14")
	lester.expect("CARD_PLAYED 1 14", "GET_CARD")
	lester.send("PLAY_CARD 27")
	lester.expect("OK", "CARD_PLAYED 2 27")
	paul.expect("CARD_PLAYED 1 14", "CARD_PLAYED 2 27", "GET_CARD")
	paul.send("PLAY_CARD 40")
	paul.expect("ERROR Improper card", "GET_CARD")
	paul.send("PLAY_CARD 1")
	paul.expect("OK")

	end := []string{"CARD_PLAYED 0 1", "TRICK_WINNER 0", "END_HAND 11 -5 10", "GAME_OVER 0"}
	paul.expect(end...)
	anne.expect(append([]string{"CARD_PLAYED 2 27"}, end...)...)
	lester.expect(end...)

	paul.expectClosed()
	anne.expectClosed()
	lester.expectClosed()

	g, err := history.OpenFileStore(filepath.Join(opts.LogDir, "2026-10-16-game.yaml")).Load()
	a.NoError(err)
	a.Equal([]string{"Paul", "Anne", "Lester"}, g.Names())
	a.Equal([]int{11, -5, 10}, g.CurrentScores())
	a.Equal([]int{1, 1, 0}, g.Hands[0].Bids())
	a.Equal([]history.Play{{Player: 1, Card: 14}, {Player: 2, Card: 27}, {Player: 0, Card: 1}}, g.Hands[0].Tricks[0].Plays)

	// the next game gets a new log
	a.Eventually(func() bool {
		s := d.Status()
		return s.State == "REGISTRATION" && s.LogFile == filepath.Join(opts.LogDir, "2026-10-16-g2-game.yaml")
	}, 5*time.Second, 10*time.Millisecond)
}

func TestDealer_Registration(t *testing.T) {
	a := assert.New(t)

	d, err := NewDealer(logrus.StandardLogger(), NewRegistry(2), testOptions(t, []int{1}, []deck.Card{0, 1, 2}))
	a.NoError(err)
	runDealer(t, d)

	paul := connect(t, d)
	paul.send("LOGIN Paul")
	paul.expect("OK")

	other := connect(t, d)
	other.send("LOGIN paul")
	other.expect("ERROR name already logged in")
	other.send("BID 1")
	other.expect("ERROR Not logged in")
	other.send("LOGIN")
	other.expect("ERROR invalid name")

	paul.send("HELLO")
	paul.expect("ERROR Illegal command")
	paul.send("LOGOUT")
	paul.expect("OK")
	paul.expectClosed()

	a.Eventually(func() bool {
		return len(d.Status().Seats) == 0
	}, 5*time.Second, 10*time.Millisecond)

	other.send("LOGIN Paul")
	other.expect("OK")
	a.Eventually(func() bool {
		s := d.Status()
		return len(s.Seats) == 1 && s.Seats[0] == SeatStatus{Name: "Paul", Connected: true}
	}, 5*time.Second, 10*time.Millisecond)

	anne := connect(t, d)
	anne.send("LOGIN Anne")
	anne.expect("OK", "START_GAME 2 Paul 0 Anne 0")
	other.expect("NEW_PLAYER Anne", "START_GAME 2 Paul 0 Anne 0")
}

func TestDealer_NewDealer_playerCount(t *testing.T) {
	_, err := NewDealer(logrus.StandardLogger(), NewRegistry(6), Options{})
	assert.EqualError(t, err, "expected between 2 and 5 players, got 6")
}

// a player who drops during play logs in again and is caught up, including the outstanding prompt
func TestDealer_Rejoin(t *testing.T) {
	a := assert.New(t)

	d, err := NewDealer(logrus.StandardLogger(), NewRegistry(2), testOptions(t, []int{1}, []deck.Card{0, 13, 26}))
	a.NoError(err)
	runDealer(t, d)

	paul := connect(t, d)
	paul.send("LOGIN Paul")
	paul.expect("OK")

	anne := connect(t, d)
	anne.send("LOGIN Anne")
	anne.expect("OK")

	start := "START_GAME 2 Paul 0 Anne 0"
	paul.expect("NEW_PLAYER Anne", start, "NEW_HAND 1 0", "DRAW 13", "DEAL_OVER 26")
	anne.expect(start, "NEW_HAND 1 0", "DRAW 0", "DEAL_OVER 26", "BID")
	anne.send("BID 0")
	anne.expect("OK", "BID_ANNOUNCE 1 0")

	paul.expect("BID_ANNOUNCE 1 0", "BID")
	paul.send("LOGOUT")
	paul.expect("OK")
	paul.expectClosed()

	a.Eventually(func() bool {
		s := d.Status()
		return len(s.Seats) == 2 && !s.Seats[0].Connected
	}, 5*time.Second, 10*time.Millisecond)

	s := d.Status()
	a.Equal("PLAYING", s.State)
	a.Equal(0, s.Hand.Turn)
	a.Equal([]int{-1, 0}, s.Hand.Bids)

	paul = connect(t, d)
	paul.send("LOGIN PAUL")
	paul.expect("OK", start, "NEW_HAND 1 0", "DRAW 13", "DEAL_OVER 26", "BID_ANNOUNCE 1 0", "BID")
	anne.expect("NEW_PLAYER Paul")

	paul.send("BID 1")
	paul.expect("BADBID 1", "BID")
	paul.send("BID 0")
	paul.expect("OK", "BID_ANNOUNCE 0 0")
	anne.expect("BID_ANNOUNCE 0 0", "GET_CARD")

	anne.send("PLAY_CARD 0")
	anne.expect("OK", "CARD_PLAYED 1 0")
	paul.expect("CARD_PLAYED 1 0", "GET_CARD")
	paul.send("PLAY_CARD 13")
	paul.expect("OK")

	end := []string{"CARD_PLAYED 0 13", "TRICK_WINNER 1", "END_HAND 10 0", "GAME_OVER 0"}
	paul.expect(end...)
	anne.expect(end...)
}

// a crashed game is resumed at the next hand with the next dealer and the saved scores
func TestDealer_Recovery(t *testing.T) {
	a := assert.New(t)

	saved := history.NewGame(3, testStart)
	a.NoError(saved.AddPlayer(0, "Paul", ""))
	a.NoError(saved.AddPlayer(1, "Anne", ""))
	a.NoError(saved.AddPlayer(2, "Lester", ""))
	saved.AddHand(&history.Hand{
		NumCards: 2,
		Dealer:   0,
		Trump:    5,
		Players: []history.HandPlayer{
			{Player: 0, Deal: []deck.Card{12, 25}, Bid: 1, TricksMade: 2},
			{Player: 1, Deal: []deck.Card{26, 40}, Bid: 1, TricksMade: 0},
			{Player: 2, Deal: []deck.Card{39, 27}, Bid: 1, TricksMade: 0},
		},
		Tricks: []history.Trick{
			{Plays: []history.Play{{Player: 1, Card: 26}, {Player: 2, Card: 39}, {Player: 0, Card: 12}}},
			{Plays: []history.Play{{Player: 0, Card: 25}, {Player: 1, Card: 40}, {Player: 2, Card: 27}}},
		},
	})

	store := history.OpenFileStore(filepath.Join(t.TempDir(), "2026-10-16-game.yaml"))
	a.NoError(store.Save(saved))
	g, err := store.Load()
	a.NoError(err)

	opts := testOptions(t, []int{2, 1}, []deck.Card{0, 13, 51, 50})
	d, err := NewRecoveryDealer(logrus.StandardLogger(), g, store, opts)
	a.NoError(err)
	a.Equal("RESTART", d.Status().State)
	runDealer(t, d)

	paul := connect(t, d)
	paul.send("LOGIN paul")
	paul.expect("OK")

	bob := connect(t, d)
	bob.send("LOGIN Bob")
	bob.expect("ERROR name not found or already logged in")
	bob.send("LOGIN Paul")
	bob.expect("ERROR name not found or already logged in")

	anne := connect(t, d)
	anne.send("LOGIN ANNE")
	anne.expect("OK")
	paul.expect("NEW_PLAYER Anne")

	lester := connect(t, d)
	lester.send("LOGIN Lester")
	lester.expect("OK")
	paul.expect("NEW_PLAYER Lester")
	anne.expect("NEW_PLAYER Lester")

	// dealer 1 follows the saved dealer 0
	start := "START_GAME 3 Paul 0 Anne -5 Lester -5"
	paul.expect(start, "NEW_HAND 1 1", "DRAW 13", "DEAL_OVER 50")
	anne.expect(start, "NEW_HAND 1 1", "DRAW 51", "DEAL_OVER 50")
	lester.expect(start, "NEW_HAND 1 1", "DRAW 0", "DEAL_OVER 50", "BID")

	lester.send("BID 0")
	lester.expect("OK", "BID_ANNOUNCE 2 0")
	paul.expect("BID_ANNOUNCE 2 0", "BID")
	paul.send("BID 0")
	paul.expect("OK", "BID_ANNOUNCE 0 0")
	anne.expect("BID_ANNOUNCE 2 0", "BID_ANNOUNCE 0 0", "BID")
	anne.send("BID 1")
	anne.expect("BADBID 1", "BID")
	anne.send("BID 0")
	anne.expect("OK", "BID_ANNOUNCE 1 0")

	lester.expect("BID_ANNOUNCE 0 0", "BID_ANNOUNCE 1 0", "GET_CARD")
	lester.send("PLAY_CARD 0")
	lester.expect("OK", "CARD_PLAYED 2 0")
	paul.expect("BID_ANNOUNCE 1 0", "CARD_PLAYED 2 0", "GET_CARD")
	paul.send("PLAY_CARD 13")
	paul.expect("OK", "CARD_PLAYED 0 13")
	anne.expect("CARD_PLAYED 2 0", "CARD_PLAYED 0 13", "GET_CARD")
	anne.send("PLAY_CARD 51")
	anne.expect("OK")

	end := []string{"CARD_PLAYED 1 51", "TRICK_WINNER 1", "END_HAND 10 0 10", "GAME_OVER 0"}
	anne.expect(end...)
	paul.expect(end...)
	lester.expect(append([]string{"CARD_PLAYED 0 13"}, end...)...)

	g, err = store.Load()
	a.NoError(err)
	a.Equal(2, g.HandsPlayed())
	a.Equal([]int{10, -5, 5}, g.CurrentScores())
	dealer, err := g.NextDealer()
	a.NoError(err)
	a.Equal(2, dealer)
}

func TestNewRecoveryDealer_badRoster(t *testing.T) {
	g := history.NewGame(3, testStart)
	_ = g.AddPlayer(0, "Paul", "")

	_, err := NewRecoveryDealer(logrus.StandardLogger(), g, history.OpenFileStore("unused.yaml"), Options{})
	assert.ErrorIs(t, err, history.ErrCorruptLog)
}

// silent players are bid and played for once their turn times out
func TestDealer_TurnTimeout(t *testing.T) {
	a := assert.New(t)

	opts := testOptions(t, []int{2}, []deck.Card{0, 13, 1, 14, 26})
	opts.TurnTimeout = 20 * time.Millisecond
	d, err := NewDealer(logrus.StandardLogger(), NewRegistry(2), opts)
	a.NoError(err)
	runDealer(t, d)

	paul := connect(t, d)
	paul.send("LOGIN Paul")
	paul.expect("OK")

	anne := connect(t, d)
	anne.send("LOGIN Anne")
	anne.expect("OK")

	lines := paul.readUntil("GAME_OVER")
	a.Equal([]string{
		"NEW_PLAYER Anne",
		"START_GAME 2 Paul 0 Anne 0",
		"NEW_HAND 2 0",
		"DRAW 13",
		"DRAW 14",
		"DEAL_OVER 26",
		"BID_ANNOUNCE 1 0",
		"BID",
		"BID_ANNOUNCE 0 0",
		"CARD_PLAYED 1 0",
		"GET_CARD",
		"CARD_PLAYED 0 13",
		"TRICK_WINNER 1",
		"CARD_PLAYED 1 1",
		"GET_CARD",
		"CARD_PLAYED 0 14",
		"TRICK_WINNER 1",
		"END_HAND 10 0",
		"GAME_OVER 0",
	}, lines)

	lines = anne.readUntil("GAME_OVER")
	a.Contains(lines, "END_HAND 10 0")
}

// rejected bids do not restart the clock; the engine bids for the player once the turn expires
func TestDealer_TurnTimeout_rejectedBids(t *testing.T) {
	a := assert.New(t)

	opts := testOptions(t, []int{1}, []deck.Card{0, 13, 26})
	opts.TurnTimeout = 150 * time.Millisecond
	d, err := NewDealer(logrus.StandardLogger(), NewRegistry(2), opts)
	a.NoError(err)
	runDealer(t, d)

	paul := connect(t, d)
	paul.send("LOGIN Paul")
	paul.expect("OK")

	anne := connect(t, d)
	anne.send("LOGIN Anne")
	anne.expect("OK", "START_GAME 2 Paul 0 Anne 0", "NEW_HAND 1 0", "DRAW 0", "DEAL_OVER 26", "BID")

	started := time.Now()
	announced := false
	for i := 0; i < 60 && !announced; i++ {
		time.Sleep(50 * time.Millisecond)
		anne.send("BID 9")

		// an ERROR and a fresh prompt, or the bid placed for her
		lines := anne.readUntil("BID")
		announced = lines[len(lines)-1] == "BID_ANNOUNCE 1 0"
	}

	a.True(announced)
	a.True(time.Since(started) < 2*time.Second)

	lines := paul.readUntil("GAME_OVER")
	a.Contains(lines, "BID_ANNOUNCE 1 0")
}

// a player returning mid-hand is shown the tricks already completed
func TestDealer_Rejoin_completedTricks(t *testing.T) {
	a := assert.New(t)

	d, err := NewDealer(logrus.StandardLogger(), NewRegistry(2), testOptions(t, []int{2}, []deck.Card{0, 13, 1, 14, 26}))
	a.NoError(err)
	runDealer(t, d)

	paul := connect(t, d)
	paul.send("LOGIN Paul")
	paul.expect("OK")

	anne := connect(t, d)
	anne.send("LOGIN Anne")
	anne.expect("OK")

	start := "START_GAME 2 Paul 0 Anne 0"
	paul.expect("NEW_PLAYER Anne", start, "NEW_HAND 2 0", "DRAW 13", "DRAW 14", "DEAL_OVER 26")
	anne.expect(start, "NEW_HAND 2 0", "DRAW 0", "DRAW 1", "DEAL_OVER 26", "BID")
	anne.send("BID 0")
	anne.expect("OK", "BID_ANNOUNCE 1 0")

	paul.expect("BID_ANNOUNCE 1 0", "BID")
	paul.send("BID 0")
	paul.expect("OK", "BID_ANNOUNCE 0 0")
	anne.expect("BID_ANNOUNCE 0 0", "GET_CARD")

	anne.send("PLAY_CARD 0")
	anne.expect("OK", "CARD_PLAYED 1 0")
	paul.expect("CARD_PLAYED 1 0", "GET_CARD")
	paul.send("PLAY_CARD 13")
	paul.expect("OK", "CARD_PLAYED 0 13", "TRICK_WINNER 1")
	anne.expect("CARD_PLAYED 0 13", "TRICK_WINNER 1", "GET_CARD")

	paul.send("LOGOUT")
	paul.expect("OK")
	paul.expectClosed()

	a.Eventually(func() bool {
		s := d.Status()
		return len(s.Seats) == 2 && !s.Seats[0].Connected
	}, 5*time.Second, 10*time.Millisecond)

	paul = connect(t, d)
	paul.send("LOGIN Paul")
	paul.expect("OK", start, "NEW_HAND 2 0", "DRAW 14", "DEAL_OVER 26",
		"BID_ANNOUNCE 1 0", "BID_ANNOUNCE 0 0", "CARD_PLAYED 1 0", "CARD_PLAYED 0 13", "TRICK_WINNER 1")
	anne.expect("NEW_PLAYER Paul")

	anne.send("PLAY_CARD 1")
	anne.expect("OK", "CARD_PLAYED 1 1")
	paul.expect("CARD_PLAYED 1 1", "GET_CARD")
	paul.send("PLAY_CARD 14")
	paul.expect("OK")

	end := []string{"CARD_PLAYED 0 14", "TRICK_WINNER 1", "END_HAND 10 0", "GAME_OVER 0"}
	paul.expect(end...)
	anne.expect(end...)
}

func TestDealer_AutoPlayLastCard(t *testing.T) {
	a := assert.New(t)

	opts := testOptions(t, []int{1}, []deck.Card{0, 13, 26})
	opts.AutoPlayLastCard = true
	d, err := NewDealer(logrus.StandardLogger(), NewRegistry(2), opts)
	a.NoError(err)
	runDealer(t, d)

	paul := connect(t, d)
	paul.send("LOGIN Paul")
	paul.expect("OK")

	anne := connect(t, d)
	anne.send("LOGIN Anne")
	anne.expect("OK", "START_GAME 2 Paul 0 Anne 0", "NEW_HAND 1 0", "DRAW 0", "DEAL_OVER 26", "BID")
	anne.send("BID 0")
	anne.expect("OK", "BID_ANNOUNCE 1 0")

	paul.expect("NEW_PLAYER Anne", "START_GAME 2 Paul 0 Anne 0", "NEW_HAND 1 0", "DRAW 13", "DEAL_OVER 26", "BID_ANNOUNCE 1 0", "BID")
	paul.send("BID 0")
	paul.expect("OK")

	end := []string{"BID_ANNOUNCE 0 0", "CARD_PLAYED 1 0", "CARD_PLAYED 0 13", "TRICK_WINNER 1", "END_HAND 10 0", "GAME_OVER 0"}
	paul.expect(end...)
	anne.expect(end...)
}
