package history

import "errors"

// ErrNoHandsYet is returned when a resume point is requested for a game with no completed hands
var ErrNoHandsYet = errors.New("no hands have been played")

// ErrCorruptLog is returned when a persisted game log is structurally invalid
var ErrCorruptLog = errors.New("corrupt game log")

// ErrRosterFull is returned when a player is added to a game that already has every seat
var ErrRosterFull = errors.New("roster is full")

// ErrUnknownPlayer is returned when a player id is not on the roster
var ErrUnknownPlayer = errors.New("player is not on the roster")
