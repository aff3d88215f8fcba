// Package client connects to a relay room and plays one full match.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/coder/websocket"
	"go.uber.org/zap"

	"github.com/calebdsmith/battleboats/internal/agent"
	"github.com/calebdsmith/battleboats/internal/boardview"
	"github.com/calebdsmith/battleboats/internal/field"
	"github.com/calebdsmith/battleboats/internal/types"
	"github.com/calebdsmith/battleboats/internal/wire"
)

type Options struct {
	// URL is the server base, e.g. http://localhost:8080.
	URL string
	// Code is the six-character match code to join.
	Code string
	// Begin makes this side issue the challenge once connected.
	Begin bool
	// Seed fixes boat placement and guessing; zero draws from the clock.
	Seed int64
	// Report posts the result back to the server when the game ends.
	Report bool
	// Out receives board renders. Defaults to stdout.
	Out io.Writer
}

// Run plays a match to its end screen and returns the terminal outcome.
func Run(ctx context.Context, opts Options, log *zap.Logger) (agent.Outcome, error) {
	if log == nil {
		log = zap.NewNop()
	}
	out := opts.Out
	if out == nil {
		out = os.Stdout
	}
	seed := opts.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	wsURL, err := websocketURL(opts.URL, opts.Code)
	if err != nil {
		return agent.OutcomeNone, err
	}
	conn, _, err := websocket.Dial(ctx, wsURL, nil)
	if err != nil {
		return agent.OutcomeNone, fmt.Errorf("dial %s: %w", wsURL, err)
	}
	defer conn.Close(websocket.StatusNormalClosure, "done")

	rng := rand.New(rand.NewSource(seed))
	tracker := field.NewTracker(rng)
	ag := agent.New(tracker, rng, log)
	ag.SetDisplay(boardview.NewConsole(tracker, out))

	events := make(chan wire.Event, 16)
	readErr := make(chan error, 1)
	go readLoop(ctx, conn, events, readErr, log)

	// Local events run before anything from the peer. MessageSent lands
	// here so the agent never blocks on its own feedback.
	var pending []wire.Event
	if opts.Begin {
		pending = append(pending, wire.StartPressed())
	}

	for ag.State() != agent.StateEndScreen {
		var ev wire.Event
		if len(pending) > 0 {
			ev, pending = pending[0], pending[1:]
		} else {
			select {
			case <-ctx.Done():
				return agent.OutcomeNone, ctx.Err()
			case err := <-readErr:
				return agent.OutcomeNone, fmt.Errorf("connection lost: %w", err)
			case ev = <-events:
			}
		}

		msg := ag.Step(ev)
		if msg.Type == wire.MessageNone {
			continue
		}
		if err := conn.Write(ctx, websocket.MessageBinary, wire.Encode(msg)); err != nil {
			return agent.OutcomeNone, fmt.Errorf("send %s: %w", msg.Type, err)
		}
		pending = append(pending, wire.MessageSent())
	}

	outcome := ag.Outcome()
	log.Info("game over",
		zap.String("outcome", string(outcome)),
		zap.Int("turns", ag.TurnCount()))

	if opts.Report {
		if err := reportResult(ctx, opts, ag); err != nil {
			log.Warn("reporting result", zap.Error(err))
		}
	}
	return outcome, nil
}

func websocketURL(base, code string) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("parse server url: %w", err)
	}
	switch u.Scheme {
	case "http", "ws":
		u.Scheme = "ws"
	case "https", "wss":
		u.Scheme = "wss"
	default:
		return "", errors.New("server url must be http(s) or ws(s)")
	}
	u.Path = "/ws"
	u.RawQuery = url.Values{"code": {code}}.Encode()
	return u.String(), nil
}

func readLoop(ctx context.Context, conn *websocket.Conn, events chan<- wire.Event, readErr chan<- error, log *zap.Logger) {
	var dec wire.Decoder
	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			readErr <- err
			return
		}
		for _, b := range data {
			ev, err := dec.Decode(b)
			if err != nil {
				log.Warn("dropping frame", zap.Error(err))
				continue
			}
			if ev.Type == wire.EvtNone {
				continue
			}
			select {
			case events <- ev:
			case <-ctx.Done():
				return
			}
		}
	}
}

func reportResult(ctx context.Context, opts Options, ag *agent.Agent) error {
	me, them := "accepter", "challenger"
	if opts.Begin {
		me, them = them, me
	}

	report := types.ResultReport{Turns: ag.TurnCount()}
	switch ag.Outcome() {
	case agent.OutcomeVictory:
		report.Winner = me
	case agent.OutcomeDefeat:
		report.Winner = them
	case agent.OutcomeCheat:
		report.Winner = me
		report.CheatDetected = true
	default:
		report.Winner = "draw"
	}

	body, err := json.Marshal(report)
	if err != nil {
		return err
	}
	endpoint := fmt.Sprintf("%s/matches/%s/result", opts.URL, opts.Code)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("server returned %s", resp.Status)
	}
	return nil
}
