package room

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Client is a player's connection to the server
// Lines are sent from a buffered queue by the write loop, so Send never waits on the network
type Client struct {
	// ID identifies the connection in logs
	ID string

	conn Conn

	// send is a channel for sending lines to the client
	send chan string

	// closed is closed when the client will accept no more lines
	closed    chan struct{}
	closeOnce sync.Once
}

// NewClient returns a new client object
func NewClient(conn Conn) *Client {
	return &Client{
		ID:     uuid.New().String(),
		conn:   conn,
		send:   make(chan string, 256),
		closed: make(chan struct{}),
	}
}

// Send queues a line for the client
// Returns false if the client has been closed
func (c *Client) Send(format string, args ...interface{}) bool {
	select {
	case <-c.closed:
		return false
	default:
	}

	line := format
	if len(args) > 0 {
		line = fmt.Sprintf(format, args...)
	}

	select {
	case c.send <- line:
		return true
	case <-c.closed:
		return false
	}
}

// Close stops accepting lines; queued lines are written before the connection is closed
func (c *Client) Close() {
	c.closeOnce.Do(func() {
		close(c.closed)
	})
}

// RemoteAddr returns the address of the client
func (c *Client) RemoteAddr() string {
	return c.conn.RemoteAddr()
}

// String returns a traceable identifier for the client
func (c *Client) String() string {
	return fmt.Sprintf("%s:%s", c.ID, c.RemoteAddr())
}

func (c *Client) writeLoop() {
	var tick <-chan time.Time
	if _, ok := c.conn.(pinger); ok {
		ticker := time.NewTicker(pingPeriod)
		defer ticker.Stop()
		tick = ticker.C
	}

	defer func() {
		c.Close()
		_ = c.conn.Close()
	}()

	for {
		select {
		case <-tick:
			if err := c.conn.(pinger).Ping(); err != nil {
				return
			}
		case line := <-c.send:
			if !c.write(line) {
				return
			}
		case <-c.closed:
			for {
				select {
				case line := <-c.send:
					if !c.write(line) {
						return
					}
				default:
					return
				}
			}
		}
	}
}

func (c *Client) write(line string) bool {
	logrus.WithField("client", c.String()).WithField("message", line).Trace("sending message to client")
	if err := c.conn.WriteLine(line); err != nil {
		logrus.WithError(err).WithField("client", c.String()).Debug("could not write message")
		return false
	}

	return true
}

// readLoop delivers every line from the client to events until the connection fails or done is closed
func (c *Client) readLoop(events chan<- event, done <-chan struct{}) {
	deliver := func(ev event) bool {
		select {
		case events <- ev:
			return true
		case <-done:
			return false
		}
	}

	if !deliver(event{kind: eventConnect, client: c}) {
		return
	}

	for {
		line, err := c.conn.ReadLine()
		if err != nil {
			c.Close()
			deliver(event{kind: eventDisconnect, client: c, err: err})
			return
		}

		logrus.WithField("client", c.String()).WithField("message", line).Trace("received message from client")
		if !deliver(event{kind: eventLine, client: c, line: line}) {
			return
		}
	}
}
