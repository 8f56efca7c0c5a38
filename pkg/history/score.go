package history

// Score returns the change in score for a player who bid and made the given number of tricks
// Making the bid exactly earns 10 + bid*bid; each trick short costs 5; overtricks earn nothing.
func Score(bid, made int) int {
	switch {
	case bid == made:
		return 10 + bid*bid
	case made < bid:
		return -5 * (bid - made)
	default:
		return 0
	}
}

// Deltas returns the change in score for each player in the hand
func (h *Hand) Deltas() []int {
	deltas := make([]int, len(h.Players))
	for i, p := range h.Players {
		deltas[i] = Score(p.Bid, p.TricksMade)
	}

	return deltas
}

// CurrentScores returns the cumulative score of each player in roster order
func (g *Game) CurrentScores() []int {
	scores := make([]int, g.NumPlayers)
	for _, hand := range g.Hands {
		for i, delta := range hand.Deltas() {
			if i < len(scores) {
				scores[i] += delta
			}
		}
	}

	return scores
}

// ScoreSheetEntry is a player's line for a single hand
type ScoreSheetEntry struct {
	Bid   int `json:"bid"`
	Made  int `json:"made"`
	Score int `json:"score"`
}

// ScoreSheetRow is a single hand on the score sheet
type ScoreSheetRow struct {
	NumCards int                `json:"numCards"`
	Players  []*ScoreSheetEntry `json:"players"`
}

// ScoreSheet returns every hand with running totals
func (g *Game) ScoreSheet() []*ScoreSheetRow {
	scores := make([]int, g.NumPlayers)
	rows := make([]*ScoreSheetRow, 0, len(g.Hands))
	for _, hand := range g.Hands {
		row := &ScoreSheetRow{
			NumCards: hand.NumCards,
			Players:  make([]*ScoreSheetEntry, 0, len(hand.Players)),
		}

		for i, p := range hand.Players {
			if i >= len(scores) {
				break
			}

			scores[i] += Score(p.Bid, p.TricksMade)
			row.Players = append(row.Players, &ScoreSheetEntry{
				Bid:   p.Bid,
				Made:  p.TricksMade,
				Score: scores[i],
			})
		}

		rows = append(rows, row)
	}

	return rows
}
