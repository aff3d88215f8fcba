package wire

import (
	"errors"
	"strconv"
	"strings"
)

var ErrFraming = errors.New("framing error")
var ErrChecksum = errors.New("checksum mismatch")
var ErrParse = errors.New("unparseable payload")

// NMEA 0183 caps a full frame at 82 bytes including the $, *, checksum
// digits, and CRLF, which bounds the payload accordingly.
const (
	MaxFrameLen   = 82
	checksumLen   = 2
	MaxPayloadLen = MaxFrameLen - 1 - 1 - checksumLen - 1 - 1
)

type decodeState int

const (
	awaitingStart decodeState = iota
	recordingPayload
	recordingChecksum
)

// Decoder turns a raw byte stream into events one byte at a time. Frames
// arrive in pieces, so the scanner state persists across calls; any error is
// local to the current frame and the decoder resynchronizes on the next '$'.
// The zero value is ready to use. Not safe for concurrent use.
type Decoder struct {
	state    decodeState
	payload  []byte
	checksum [checksumLen]byte
	ckLen    int
	gotCR    bool
}

// Decode consumes one byte. It returns an EvtNone event until a frame
// completes, then the decoded event, or an EvtError event alongside one of
// ErrFraming, ErrChecksum, or ErrParse. After any error the decoder is
// already reset and ready for the next frame.
func (d *Decoder) Decode(b byte) (Event, error) {
	switch d.state {
	case awaitingStart:
		if b == '$' {
			d.begin()
		}
		return Event{Type: EvtNone}, nil

	case recordingPayload:
		switch {
		case b == '*':
			d.state = recordingChecksum
		case b == '\r' || b == '$':
			return d.abort(ErrFraming)
		case len(d.payload) >= MaxPayloadLen:
			return d.abort(ErrFraming)
		default:
			d.payload = append(d.payload, b)
		}
		return Event{Type: EvtNone}, nil

	case recordingChecksum:
		switch {
		case d.ckLen < checksumLen:
			if !isHexDigit(b) {
				return d.abort(ErrFraming)
			}
			d.checksum[d.ckLen] = b
			d.ckLen++
			return Event{Type: EvtNone}, nil
		case !d.gotCR:
			if b != '\r' {
				return d.abort(ErrFraming)
			}
			d.gotCR = true
			return Event{Type: EvtNone}, nil
		default:
			if b != '\n' {
				return d.abort(ErrFraming)
			}
			d.state = awaitingStart
			return parseFrame(d.payload, d.checksum)
		}
	}

	// unreachable, but never leave the scanner wedged
	d.state = awaitingStart
	return Event{Type: EvtError}, ErrFraming
}

func (d *Decoder) begin() {
	d.state = recordingPayload
	d.payload = d.payload[:0]
	d.ckLen = 0
	d.gotCR = false
}

func (d *Decoder) abort(err error) (Event, error) {
	d.state = awaitingStart
	return Event{Type: EvtError}, err
}

func isHexDigit(b byte) bool {
	return (b >= '0' && b <= '9') || (b >= 'A' && b <= 'F') || (b >= 'a' && b <= 'f')
}

// parseFrame validates the checksum then parses the comma-separated payload
// against the fixed arity of its tag.
func parseFrame(payload []byte, checksum [checksumLen]byte) (Event, error) {
	want, err := strconv.ParseUint(string(checksum[:]), 16, 8)
	if err != nil {
		return Event{Type: EvtError}, ErrChecksum
	}
	if byte(want) != Checksum(payload) {
		return Event{Type: EvtError}, ErrChecksum
	}

	fields := strings.Split(string(payload), ",")
	switch MessageType(fields[0]) {
	case MessageCha, MessageAcc, MessageRev:
		if len(fields) != 2 {
			return Event{Type: EvtError}, ErrParse
		}
		v, err := strconv.ParseUint(fields[1], 10, 16)
		if err != nil {
			return Event{Type: EvtError}, ErrParse
		}
		t := map[MessageType]EventType{
			MessageCha: EvtChaReceived,
			MessageAcc: EvtAccReceived,
			MessageRev: EvtRevReceived,
		}[MessageType(fields[0])]
		return Event{Type: t, Value: uint16(v)}, nil

	case MessageSho:
		if len(fields) != 3 {
			return Event{Type: EvtError}, ErrParse
		}
		row, err := strconv.Atoi(fields[1])
		if err != nil {
			return Event{Type: EvtError}, ErrParse
		}
		col, err := strconv.Atoi(fields[2])
		if err != nil {
			return Event{Type: EvtError}, ErrParse
		}
		return Event{Type: EvtShotReceived, Row: row, Col: col}, nil

	case MessageRes:
		if len(fields) != 4 {
			return Event{Type: EvtError}, ErrParse
		}
		var vals [3]uint64
		for i := 0; i < 3; i++ {
			v, err := strconv.ParseUint(fields[i+1], 10, 16)
			if err != nil {
				return Event{Type: EvtError}, ErrParse
			}
			vals[i] = v
		}
		return Event{
			Type:   EvtResultReceived,
			Row:    int(vals[0]),
			Col:    int(vals[1]),
			Result: GuessResult(vals[2]),
		}, nil

	default:
		return Event{Type: EvtError}, ErrParse
	}
}
