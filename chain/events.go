package chain

// Event names. These six make up the only durable externally-observable log;
// any read surface should be derivable from replaying them plus current-state
// queries.
const (
	EventVoteOpened              = "VoteOpened"
	EventVoteCast                = "VoteCast"
	EventVoteClosed              = "VoteClosed"
	EventMintFinalized           = "MintFinalized"
	EventAuthorizedCallerChanged = "AuthorizedCallerChanged"
	EventTokenMinted             = "TokenMinted"
)

// Event is one entry of the log. Seq is assigned by the store at append time
// and is strictly increasing; Attrs hold the event payload as flat strings so
// replay never needs the emitting contract's types.
type Event struct {
	Seq   uint64            `json:"seq"`
	Time  int64             `json:"time"`
	Name  string            `json:"name"`
	Attrs map[string]string `json:"attrs"`
}

// EventStore is the durable append-only log. Append assigns Seq; ForEach
// replays in Seq order.
type EventStore interface {
	Append(ev Event) (Event, error)
	ForEach(fn func(Event) error) error
	Close() error
}
