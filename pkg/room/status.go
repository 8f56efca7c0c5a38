package room

import "ohpshaw-server/pkg/history"

// SeatStatus is a seat as shown on the status page
type SeatStatus struct {
	Name      string `json:"name"`
	Connected bool   `json:"connected"`
	Score     int    `json:"score"`
}

// HandStatus is the hand in progress
type HandStatus struct {
	NumCards     int   `json:"numCards"`
	Dealer       int   `json:"dealer"`
	Trump        int   `json:"trump"`
	Bids         []int `json:"bids"`
	TricksPlayed int   `json:"tricksPlayed"`

	// Turn is the seat the dealer is waiting on, or -1
	Turn int `json:"turn"`
}

// Status is a read-only snapshot of the table
type Status struct {
	State       string                   `json:"state"`
	GameID      string                   `json:"gameId"`
	NumPlayers  int                      `json:"numPlayers"`
	Seats       []SeatStatus             `json:"seats"`
	HandsPlayed int                      `json:"handsPlayed"`
	TotalHands  int                      `json:"totalHands"`
	Hand        *HandStatus              `json:"hand,omitempty"`
	LogFile     string                   `json:"logFile"`
	ScoreSheet  []*history.ScoreSheetRow `json:"scoreSheet"`
}

// updateStatus publishes a new snapshot
// NOTE: must only be called from the run loop
func (d *Dealer) updateStatus() {
	s := Status{
		State:       d.state.String(),
		GameID:      d.game.ID,
		NumPlayers:  d.numPlayers,
		Seats:       make([]SeatStatus, 0, d.registry.Len()),
		HandsPlayed: d.game.HandsPlayed(),
		TotalHands:  len(d.opts.TrickCounts(d.numPlayers)),
		LogFile:     d.store.Path(),
		ScoreSheet:  d.game.ScoreSheet(),
	}

	for _, seat := range d.registry.Seats() {
		s.Seats = append(s.Seats, SeatStatus{
			Name:      seat.Name,
			Connected: seat.Connected(),
			Score:     seat.Score,
		})
	}

	if h := d.hand; h != nil {
		s.Hand = &HandStatus{
			NumCards:     h.NumCards(),
			Dealer:       h.Dealer(),
			Trump:        int(h.Trump()),
			Bids:         h.Bids(),
			TricksPlayed: h.TricksPlayed(),
			Turn:         -1,
		}

		if d.pending != nil {
			s.Hand.Turn = d.pending.seat
		}
	}

	d.statusLock.Lock()
	d.status = s
	d.statusLock.Unlock()
}
