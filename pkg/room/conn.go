package room

import (
	"bufio"
	"io"
	"net"
	"strings"
	"time"

	"github.com/gorilla/websocket"
)

const writeWait = time.Second * 10
const pongWait = time.Second * 60
const pingPeriod = pongWait * 9 / 10

// Conn is a line-oriented connection to a player
type Conn interface {
	// ReadLine blocks until a full line is available and returns it without the terminator
	ReadLine() (string, error)

	// WriteLine writes the line followed by a terminator
	WriteLine(line string) error

	Close() error
	RemoteAddr() string
}

// pinger is implemented by connections that need a keepalive
type pinger interface {
	Ping() error
}

type lineConn struct {
	conn   net.Conn
	reader *bufio.Reader
}

// NewLineConn returns a Conn that speaks newline-terminated text over a stream connection
func NewLineConn(conn net.Conn) Conn {
	return &lineConn{
		conn:   conn,
		reader: bufio.NewReader(conn),
	}
}

func (l *lineConn) ReadLine() (string, error) {
	line, err := l.reader.ReadString('\n')
	if err != nil {
		if err == io.EOF && line != "" {
			return strings.TrimRight(line, "\r\n"), nil
		}

		return "", err
	}

	return strings.TrimRight(line, "\r\n"), nil
}

func (l *lineConn) WriteLine(line string) error {
	_ = l.conn.SetWriteDeadline(time.Now().Add(writeWait))
	_, err := io.WriteString(l.conn, line+"\n")
	return err
}

func (l *lineConn) Close() error {
	return l.conn.Close()
}

func (l *lineConn) RemoteAddr() string {
	if addr := l.conn.RemoteAddr(); addr != nil {
		return addr.String()
	}

	return ""
}

type webSocketConn struct {
	conn *websocket.Conn
}

// NewWebSocketConn returns a Conn that sends each line as a websocket text frame
// The read deadline is extended every time a pong is received
func NewWebSocketConn(conn *websocket.Conn) Conn {
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		_ = conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	return &webSocketConn{conn: conn}
}

func (w *webSocketConn) ReadLine() (string, error) {
	for {
		msgType, data, err := w.conn.ReadMessage()
		if err != nil {
			return "", err
		}

		if msgType == websocket.TextMessage || msgType == websocket.BinaryMessage {
			return strings.TrimRight(string(data), "\r\n"), nil
		}
	}
}

func (w *webSocketConn) WriteLine(line string) error {
	_ = w.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return w.conn.WriteMessage(websocket.TextMessage, []byte(line))
}

func (w *webSocketConn) Ping() error {
	return w.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait))
}

func (w *webSocketConn) Close() error {
	_ = w.conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(writeWait))
	return w.conn.Close()
}

func (w *webSocketConn) RemoteAddr() string {
	if addr := w.conn.RemoteAddr(); addr != nil {
		return addr.String()
	}

	return ""
}
