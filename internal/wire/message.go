package wire

import "fmt"

// MessageType is the three-letter tag that opens every frame payload.
type MessageType string

const (
	MessageNone MessageType = ""
	MessageCha  MessageType = "CHA" // challenge: commitment to the challenger's secret
	MessageAcc  MessageType = "ACC" // accept: the accepter's counter value
	MessageRev  MessageType = "REV" // reveal: the challenger's secret
	MessageSho  MessageType = "SHO" // shot: row, col
	MessageRes  MessageType = "RES" // result: row, col, guess result
)

// GuessResult is the outcome code carried in the third RES field. The values
// are part of the wire protocol and must not be renumbered.
type GuessResult int

const (
	ResultMiss GuessResult = iota
	ResultHit
	ResultSmallSunk
	ResultMediumSunk
	ResultLargeSunk
	ResultHugeSunk
)

func (r GuessResult) Sunk() bool {
	return r >= ResultSmallSunk && r <= ResultHugeSunk
}

// Message is one outgoing protocol message. Which fields are meaningful
// depends on Type; use the constructors below rather than filling it by hand.
type Message struct {
	Type   MessageType
	Value  uint16 // CHA commitment, ACC counter, REV secret
	Row    int    // SHO, RES
	Col    int    // SHO, RES
	Result GuessResult // RES only
}

func NewChallenge(commitment uint16) Message {
	return Message{Type: MessageCha, Value: commitment}
}

func NewAccept(counter uint16) Message {
	return Message{Type: MessageAcc, Value: counter}
}

func NewReveal(secret uint16) Message {
	return Message{Type: MessageRev, Value: secret}
}

func NewShot(row, col int) Message {
	return Message{Type: MessageSho, Row: row, Col: col}
}

func NewResult(row, col int, result GuessResult) Message {
	return Message{Type: MessageRes, Row: row, Col: col, Result: result}
}

// Checksum is the running XOR of every payload byte, per NMEA 0183.
func Checksum(payload []byte) byte {
	var c byte
	for _, b := range payload {
		c ^= b
	}
	return c
}

// Encode wraps a message payload as $<payload>*<CC>\r\n, where CC is the
// checksum as two uppercase hex digits. Encoding MessageNone yields no frame.
//
// Example: NewShot(2, 9) encodes to "$SHO,2,9*5F\r\n".
func Encode(m Message) []byte {
	payload := payloadFor(m)
	if payload == "" {
		return nil
	}
	return []byte(fmt.Sprintf("$%s*%02X\r\n", payload, Checksum([]byte(payload))))
}

func payloadFor(m Message) string {
	switch m.Type {
	case MessageCha, MessageAcc, MessageRev:
		return fmt.Sprintf("%s,%d", m.Type, m.Value)
	case MessageSho:
		// row/col are signed on the wire
		return fmt.Sprintf("%s,%d,%d", m.Type, m.Row, m.Col)
	case MessageRes:
		return fmt.Sprintf("%s,%d,%d,%d", m.Type, m.Row, m.Col, m.Result)
	default:
		return ""
	}
}
