// Package relay pairs two peers and forwards raw protocol bytes between
// them. The room is a plain byte pipe: it never rewrites traffic, but it does
// run a decoder over each direction to count frames and decode errors.
package relay

import (
	"context"

	"go.uber.org/zap"

	"github.com/calebdsmith/battleboats/internal/metrics"
	"github.com/calebdsmith/battleboats/internal/wire"
)

// MaxPeers is the number of seats in a room; BattleBoats is strictly
// two-player.
const MaxPeers = 2

type Msg interface{ isRoomMsg() }

type Join struct {
	ClientID string
	Outbox   chan []byte // where this peer wants to receive the other side's bytes
}

func (Join) isRoomMsg() {}

type Leave struct{ ClientID string }

func (Leave) isRoomMsg() {}

// FromPeer carries bytes read from one peer's connection.
type FromPeer struct {
	ClientID string
	Data     []byte
}

func (FromPeer) isRoomMsg() {}

type Shutdown struct{}

func (Shutdown) isRoomMsg() {}

type GetState struct {
	Reply chan View
}

func (GetState) isRoomMsg() {}

// View reflects room internals without data races; test-only.
type View struct {
	NumPeers     int
	Frames       uint64
	DecodeErrors uint64
}

type Room struct {
	inbox   chan Msg
	peers   map[string]chan []byte
	taps    map[string]*wire.Decoder
	frames  uint64
	errors  uint64
	log     *zap.Logger
	metrics *metrics.Metrics
	ctx     context.Context
	cancel  context.CancelFunc
}

// NewRoom starts the room's goroutine. m may be nil when nothing scrapes.
func NewRoom(parent context.Context, log *zap.Logger, m *metrics.Metrics) *Room {
	ctx, cancel := context.WithCancel(parent)
	if log == nil {
		log = zap.NewNop()
	}

	r := &Room{
		inbox:   make(chan Msg, 64),
		peers:   make(map[string]chan []byte),
		taps:    make(map[string]*wire.Decoder),
		log:     log,
		metrics: m,
		ctx:     ctx,
		cancel:  cancel,
	}

	go r.loop()
	return r
}

func (r *Room) Inbox() chan<- Msg { return r.inbox }

func (r *Room) loop() {
	for {
		select {
		case <-r.ctx.Done():
			r.shutdown()
			return

		case m := <-r.inbox:
			switch msg := m.(type) {
			case Join:
				if len(r.peers) >= MaxPeers {
					// room is full; refuse the seat
					close(msg.Outbox)
					break
				}
				r.peers[msg.ClientID] = msg.Outbox
				r.taps[msg.ClientID] = &wire.Decoder{}
				r.log.Info("peer joined",
					zap.String("client_id", msg.ClientID),
					zap.Int("peers", len(r.peers)))

			case Leave:
				// close the outbox so the peer's writer goroutine exits
				if ch, ok := r.peers[msg.ClientID]; ok {
					close(ch)
					delete(r.peers, msg.ClientID)
					delete(r.taps, msg.ClientID)
				}

			case FromPeer:
				if _, ok := r.peers[msg.ClientID]; !ok {
					break // bytes from someone who never joined
				}
				r.tap(msg.ClientID, msg.Data)
				r.forward(msg.ClientID, msg.Data)

			case GetState:
				msg.Reply <- View{
					NumPeers:     len(r.peers),
					Frames:       r.frames,
					DecodeErrors: r.errors,
				}

			case Shutdown:
				r.shutdown()
				return
			}
		}
	}
}

// tap runs the peer's bytes through its observation decoder. Purely for
// counters; the bytes forwarded are untouched either way.
func (r *Room) tap(clientID string, data []byte) {
	dec := r.taps[clientID]
	for _, b := range data {
		ev, err := dec.Decode(b)
		switch {
		case err != nil:
			r.errors++
			if r.metrics != nil {
				r.metrics.DecodeErrors.Inc()
			}
		case ev.Type != wire.EvtNone:
			r.frames++
			if r.metrics != nil {
				r.metrics.FramesRelayed.Inc()
			}
		}
	}
}

// forward copies the bytes to every peer except the sender. A peer that
// cannot keep up is dropped rather than allowed to stall the room.
func (r *Room) forward(from string, data []byte) {
	for id, ch := range r.peers {
		if id == from {
			continue
		}
		select {
		case ch <- data:
		default:
			r.log.Warn("dropping slow peer", zap.String("client_id", id))
			close(ch)
			delete(r.peers, id)
			delete(r.taps, id)
		}
	}
}

func (r *Room) shutdown() {
	for id, ch := range r.peers {
		close(ch)
		delete(r.peers, id)
	}
	clear(r.taps)
	r.cancel()
}
