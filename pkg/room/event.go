package room

type eventKind int

const (
	eventConnect eventKind = iota
	eventLine
	eventDisconnect
)

// event is something a connection tells the dealer's run loop
type event struct {
	kind   eventKind
	client *Client
	line   string
	err    error
}
