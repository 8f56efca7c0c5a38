package room

import (
	"errors"
	"fmt"
	"strings"

	"ohpshaw-server/pkg/history"
)

// ErrNameTaken is returned when a name is already on the roster
var ErrNameTaken = errors.New("name already logged in")

// ErrNameNotFound is returned when a rejoining name matches no vacant seat
var ErrNameNotFound = errors.New("name not found or already logged in")

// ErrInvalidName is returned when a name is empty or contains whitespace
var ErrInvalidName = errors.New("invalid name")

// ErrRegistryFull is returned when every seat is taken
var ErrRegistryFull = errors.New("game is full")

// ErrAlreadySeated is returned when a client logs in twice
var ErrAlreadySeated = errors.New("already logged in")

// Seat is a place at the table
type Seat struct {
	Name  string
	Addr  string
	Score int

	client *Client
}

// Connected returns true if a client is bound to the seat
func (s *Seat) Connected() bool {
	return s.client != nil
}

// Registry binds clients to seats
// It is owned by the dealer's run loop and is not safe for concurrent use
type Registry struct {
	size  int
	seats []*Seat
}

// NewRegistry returns an empty registry with room for size players
func NewRegistry(size int) *Registry {
	return &Registry{
		size:  size,
		seats: make([]*Seat, 0, size),
	}
}

// NewRecoveredRegistry returns a registry holding the game's roster with every seat vacant
func NewRecoveredRegistry(g *history.Game) *Registry {
	r := NewRegistry(g.NumPlayers)
	scores := g.CurrentScores()
	for i, p := range g.Players {
		r.seats = append(r.seats, &Seat{
			Name:  p.Name,
			Addr:  p.Addr,
			Score: scores[i],
		})
	}

	return r
}

// Size returns the number of seats at the table
func (r *Registry) Size() int {
	return r.size
}

// Len returns the number of seats claimed so far
func (r *Registry) Len() int {
	return len(r.seats)
}

// Seat returns the seat at the index
func (r *Registry) Seat(i int) *Seat {
	return r.seats[i]
}

// Seats returns the seats in join order
func (r *Registry) Seats() []*Seat {
	return append([]*Seat{}, r.seats...)
}

func (r *Registry) find(name string) (int, bool) {
	for i, seat := range r.seats {
		if strings.EqualFold(seat.Name, name) {
			return i, true
		}
	}

	return -1, false
}

func validateName(name string) error {
	if name == "" || strings.ContainsAny(name, " \t\r\n") {
		return ErrInvalidName
	}

	return nil
}

// Join claims the next seat for a newly registering client
func (r *Registry) Join(c *Client, name string) (int, error) {
	if err := validateName(name); err != nil {
		return -1, err
	}

	if _, ok := r.SeatOf(c); ok {
		return -1, ErrAlreadySeated
	}

	if _, found := r.find(name); found {
		return -1, ErrNameTaken
	}

	if len(r.seats) >= r.size {
		return -1, ErrRegistryFull
	}

	r.seats = append(r.seats, &Seat{
		Name:   name,
		Addr:   c.RemoteAddr(),
		client: c,
	})

	return len(r.seats) - 1, nil
}

// Rebind binds the client to the vacant seat whose name matches, ignoring case
func (r *Registry) Rebind(c *Client, name string) (int, error) {
	if _, ok := r.SeatOf(c); ok {
		return -1, ErrAlreadySeated
	}

	i, found := r.find(name)
	if !found || r.seats[i].client != nil {
		return -1, ErrNameNotFound
	}

	r.seats[i].client = c
	r.seats[i].Addr = c.RemoteAddr()
	return i, nil
}

// Vacate unbinds the client from its seat, keeping the seat
func (r *Registry) Vacate(c *Client) (int, bool) {
	i, ok := r.SeatOf(c)
	if ok {
		r.seats[i].client = nil
	}

	return i, ok
}

// Remove gives up the client's seat; later seats move up
func (r *Registry) Remove(c *Client) (int, bool) {
	i, ok := r.SeatOf(c)
	if ok {
		r.seats = append(r.seats[:i], r.seats[i+1:]...)
	}

	return i, ok
}

// SeatOf returns the index of the client's seat
func (r *Registry) SeatOf(c *Client) (int, bool) {
	for i, seat := range r.seats {
		if seat.client == c {
			return i, true
		}
	}

	return -1, false
}

// Full returns true once every seat is claimed and connected
func (r *Registry) Full() bool {
	if len(r.seats) < r.size {
		return false
	}

	for _, seat := range r.seats {
		if seat.client == nil {
			return false
		}
	}

	return true
}

// Broadcast sends the line to every connected seat
func (r *Registry) Broadcast(format string, args ...interface{}) {
	line := format
	if len(args) > 0 {
		line = fmt.Sprintf(format, args...)
	}

	for _, seat := range r.seats {
		if seat.client != nil {
			seat.client.Send(line)
		}
	}
}

// BroadcastExcept sends the line to every connected seat other than the client's
func (r *Registry) BroadcastExcept(c *Client, line string) {
	for _, seat := range r.seats {
		if seat.client != nil && seat.client != c {
			seat.client.Send(line)
		}
	}
}

// SendTo sends the line to the seat
// Returns false if the seat is vacant
func (r *Registry) SendTo(seat int, format string, args ...interface{}) bool {
	c := r.seats[seat].client
	if c == nil {
		return false
	}

	return c.Send(format, args...)
}

// Scores returns the live score of each seat
func (r *Registry) Scores() []int {
	scores := make([]int, len(r.seats))
	for i, seat := range r.seats {
		scores[i] = seat.Score
	}

	return scores
}

// AddScores adds the deltas to the live scores
func (r *Registry) AddScores(deltas []int) {
	for i, delta := range deltas {
		if i < len(r.seats) {
			r.seats[i].Score += delta
		}
	}
}

// CloseAll closes every connected client and empties the registry
func (r *Registry) CloseAll() {
	for _, seat := range r.seats {
		if seat.client != nil {
			seat.client.Close()
		}
	}

	r.seats = r.seats[:0]
}
