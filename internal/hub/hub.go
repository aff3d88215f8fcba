// Package hub maps six-character join codes to relay rooms.
package hub

import (
	"context"

	"go.uber.org/zap"

	"github.com/calebdsmith/battleboats/internal/metrics"
	"github.com/calebdsmith/battleboats/internal/relay"
)

type HubMsg interface{ isHubMsg() }

type CreateRoom struct {
	Code  string
	Reply chan *relay.Room
}

type GetRoom struct {
	Code  string
	Reply chan *relay.Room
}

type EnsureRoom struct {
	Code  string
	Reply chan *relay.Room
}

type RemoveRoom struct {
	Code string
}

type ShutdownHub struct{}

func (CreateRoom) isHubMsg()  {}
func (GetRoom) isHubMsg()     {}
func (EnsureRoom) isHubMsg()  {}
func (RemoveRoom) isHubMsg()  {}
func (ShutdownHub) isHubMsg() {}

type Hub struct {
	inbox   chan HubMsg
	rooms   map[string]*relay.Room
	log     *zap.Logger
	metrics *metrics.Metrics
	ctx     context.Context
	cancel  context.CancelFunc
}

func NewHub(parent context.Context, log *zap.Logger, m *metrics.Metrics) *Hub {
	ctx, cancel := context.WithCancel(parent)
	if log == nil {
		log = zap.NewNop()
	}
	h := &Hub{
		inbox:   make(chan HubMsg, 64),
		rooms:   make(map[string]*relay.Room),
		log:     log,
		metrics: m,
		ctx:     ctx,
		cancel:  cancel,
	}
	go h.loop()
	return h
}

func (h *Hub) Inbox() chan<- HubMsg { return h.inbox }

func (h *Hub) loop() {
	for {
		select {
		case <-h.ctx.Done():
			h.shutdown()
			return

		case m := <-h.inbox:
			switch msg := m.(type) {
			case CreateRoom:
				msg.Reply <- h.ensure(msg.Code)

			case GetRoom:
				msg.Reply <- h.rooms[msg.Code] // may be nil

			case EnsureRoom:
				msg.Reply <- h.ensure(msg.Code)

			case RemoveRoom:
				if room := h.rooms[msg.Code]; room != nil {
					room.Inbox() <- relay.Shutdown{}
					delete(h.rooms, msg.Code)
					h.gaugeRooms()
				}

			case ShutdownHub:
				h.shutdown()
				return
			}
		}
	}
}

func (h *Hub) ensure(code string) *relay.Room {
	if room := h.rooms[code]; room != nil {
		return room
	}
	room := relay.NewRoom(h.ctx, h.log.With(zap.String("code", code)), h.metrics)
	h.rooms[code] = room
	h.gaugeRooms()
	return room
}

func (h *Hub) shutdown() {
	for _, room := range h.rooms {
		room.Inbox() <- relay.Shutdown{}
	}
	clear(h.rooms)
	h.gaugeRooms()
	h.cancel()
}

func (h *Hub) gaugeRooms() {
	if h.metrics != nil {
		h.metrics.ActiveRooms.Set(float64(len(h.rooms)))
	}
}
