package room

import (
	"strconv"
	"strings"
)

// wire commands
const (
	cmdLogin       = "LOGIN"
	cmdLogout      = "LOGOUT"
	cmdOK          = "OK"
	cmdError       = "ERROR"
	cmdNewPlayer   = "NEW_PLAYER"
	cmdStartGame   = "START_GAME"
	cmdNewHand     = "NEW_HAND"
	cmdDraw        = "DRAW"
	cmdDealOver    = "DEAL_OVER"
	cmdBid         = "BID"
	cmdBadBid      = "BADBID"
	cmdBidAnnounce = "BID_ANNOUNCE"
	cmdGetCard     = "GET_CARD"
	cmdPlayCard    = "PLAY_CARD"
	cmdCardPlayed  = "CARD_PLAYED"
	cmdTrickWinner = "TRICK_WINNER"
	cmdEndHand     = "END_HAND"
	cmdGameOver    = "GAME_OVER"
)

// parseLine splits a line into its command and the first argument
func parseLine(line string) (cmd string, arg string) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return "", ""
	}

	if len(fields) > 1 {
		arg = fields[1]
	}

	return strings.ToUpper(fields[0]), arg
}

func joinInts(values []int) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = strconv.Itoa(v)
	}

	return strings.Join(parts, " ")
}

// Winner returns the seat with the highest score
// Ties go to the lowest seat; every tied seat is returned as well
func Winner(scores []int) (winner int, tied []int) {
	for i, score := range scores {
		if score > scores[winner] {
			winner = i
		}
	}

	for i, score := range scores {
		if score == scores[winner] {
			tied = append(tied, i)
		}
	}

	return winner, tied
}
