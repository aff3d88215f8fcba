package wire

// EventType tags everything the session can react to: a decoded frame, a
// decode failure, or a local occurrence injected by the driver loop.
type EventType string

const (
	EvtNone  EventType = "NoEvent"
	EvtError EventType = "DecodeError"

	EvtChaReceived    EventType = "ChallengeReceived"
	EvtAccReceived    EventType = "AcceptReceived"
	EvtRevReceived    EventType = "RevealReceived"
	EvtShotReceived   EventType = "ShotReceived"
	EvtResultReceived EventType = "ResultReceived"

	// Local events, never produced by the decoder.
	EvtStartPressed EventType = "StartPressed"
	EvtResetPressed EventType = "ResetPressed"
	EvtMessageSent  EventType = "MessageSent"
)

// Event is a single occurrence. EvtNone is emitted for every consumed byte
// that did not complete a frame; it is distinct from having no input at all.
type Event struct {
	Type   EventType
	Value  uint16 // CHA/ACC/REV parameter
	Row    int
	Col    int
	Result GuessResult
}

func StartPressed() Event { return Event{Type: EvtStartPressed} }
func ResetPressed() Event { return Event{Type: EvtResetPressed} }
func MessageSent() Event  { return Event{Type: EvtMessageSent} }
