package ohhell

import (
	"errors"
	"fmt"
)

// ErrIsNotPlayersTurn is returned when it's not the player's turn
var ErrIsNotPlayersTurn = errors.New("not player's turn")

// ErrBidOutOfRange is returned when a bid is less than zero or more than the number of tricks
var ErrBidOutOfRange = errors.New("bid is out of range")

// ErrHookBid is returned when the dealer's bid would make the total bids equal the number of tricks
var ErrHookBid = errors.New("total bids cannot equal the number of tricks")

// ErrBiddingNotOver is returned when a card is played before everyone has bid
var ErrBiddingNotOver = errors.New("bidding is not over")

// ErrBiddingIsOver is returned when a bid is placed after everyone has bid
var ErrBiddingIsOver = errors.New("bidding is over")

// ErrCardNotInPlayersHand happens when the player tries to play a card they don't have
var ErrCardNotInPlayersHand = errors.New("card is not in player's hand")

// ErrPlayOnSuit happens when a player has a card of the lead suit and plays an off-suit card
var ErrPlayOnSuit = errors.New("player has an on-suit card")

// ErrHandIsOver is returned when a card is played after the last trick
var ErrHandIsOver = errors.New("the hand is over")

// ErrHandNotOver is returned when the record of an unfinished hand is requested
var ErrHandNotOver = errors.New("the hand is not over")

// PlayerCountError is an error on the number of players in the game
type PlayerCountError int

func (p PlayerCountError) Error() string {
	return fmt.Sprintf("expected between %d and %d players, got %d", MinPlayers, MaxPlayers, int(p))
}
