package agent

import (
	"math/rand"
	"testing"

	"github.com/calebdsmith/battleboats/internal/negotiation"
	"github.com/calebdsmith/battleboats/internal/wire"
)

// fakeField scripts board behavior so transitions can be pinned exactly.
type fakeField struct {
	resets       int
	placed       int
	ownFleet     uint8
	oppFleet     uint8
	attackResult wire.GuessResult
	nextRow      int
	nextCol      int

	attacks [][2]int
	updates []wire.Event
}

func newFakeField() *fakeField {
	return &fakeField{ownFleet: 0b1111, oppFleet: 0b1111, attackResult: wire.ResultMiss}
}

func (f *fakeField) Reset()            { f.resets++ }
func (f *fakeField) PlaceBoats() error { f.placed++; return nil }
func (f *fakeField) RegisterAttack(row, col int) wire.GuessResult {
	f.attacks = append(f.attacks, [2]int{row, col})
	return f.attackResult
}
func (f *fakeField) UpdateKnowledge(row, col int, result wire.GuessResult) {
	f.updates = append(f.updates, wire.Event{Row: row, Col: col, Result: result})
}
func (f *fakeField) OwnFleet() uint8          { return f.ownFleet }
func (f *fakeField) OppFleet() uint8          { return f.oppFleet }
func (f *fakeField) NextGuess() (int, int) { return f.nextRow, f.nextCol }

func newTestAgent(f Field, seed int64) *Agent {
	return New(f, rand.New(rand.NewSource(seed)), nil)
}

func TestStartPressedEmitsChallenge(t *testing.T) {
	f := newFakeField()
	a := newTestAgent(f, 1)

	msg := a.Step(wire.StartPressed())

	if msg.Type != wire.MessageCha {
		t.Fatalf("got %v, want CHA", msg.Type)
	}
	if a.State() != StateChallenging {
		t.Fatalf("state = %v, want %v", a.State(), StateChallenging)
	}
	if f.placed != 1 {
		t.Fatalf("boats placed %d times, want 1", f.placed)
	}
	// the commitment on the wire must be a valid hash image
	if msg.Value >= negotiation.PublicModulus {
		t.Fatalf("commitment %d not below the public modulus", msg.Value)
	}
}

func TestChallengeReceivedEmitsAccept(t *testing.T) {
	f := newFakeField()
	a := newTestAgent(f, 1)

	msg := a.Step(wire.Event{Type: wire.EvtChaReceived, Value: negotiation.Hash(99)})

	if msg.Type != wire.MessageAcc {
		t.Fatalf("got %v, want ACC", msg.Type)
	}
	if a.State() != StateAccepting {
		t.Fatalf("state = %v, want %v", a.State(), StateAccepting)
	}
	if f.placed != 1 {
		t.Fatalf("boats placed %d times, want 1", f.placed)
	}
}

// Challenger+Heads and Accepter+Tails must both mean "I attack first".
func TestTurnOrderSymmetry(t *testing.T) {
	t.Run("challenger goes first on heads", func(t *testing.T) {
		f := newFakeField()
		a := newTestAgent(f, 1)
		a.Step(wire.StartPressed())

		// pick a counter that forces heads against the agent's secret
		counter := negotiation.SecretForCounter(a.secret)
		msg := a.Step(wire.Event{Type: wire.EvtAccReceived, Value: counter})

		if msg.Type != wire.MessageRev {
			t.Fatalf("got %v, want REV", msg.Type)
		}
		if a.State() != StateWaitingToSend {
			t.Fatalf("state = %v, want %v", a.State(), StateWaitingToSend)
		}
	})

	t.Run("challenger defends on tails", func(t *testing.T) {
		f := newFakeField()
		a := newTestAgent(f, 1)
		a.Step(wire.StartPressed())

		counter := a.secret // equal values xor to zero: tails
		msg := a.Step(wire.Event{Type: wire.EvtAccReceived, Value: counter})

		if msg.Type != wire.MessageRev {
			t.Fatalf("got %v, want REV", msg.Type)
		}
		if a.State() != StateDefending {
			t.Fatalf("state = %v, want %v", a.State(), StateDefending)
		}
	})

	t.Run("accepter goes first on tails", func(t *testing.T) {
		f := newFakeField()
		f.nextRow, f.nextCol = 1, 4
		a := newTestAgent(f, 1)
		a.Step(wire.Event{Type: wire.EvtChaReceived, Value: negotiation.Hash(a.counter)})
		// reveal equal to our counter: xor zero, tails, accepter first
		secret := a.counter
		a.commitment = negotiation.Hash(secret)

		msg := a.Step(wire.Event{Type: wire.EvtRevReceived, Value: secret})

		if msg.Type != wire.MessageSho || msg.Row != 1 || msg.Col != 4 {
			t.Fatalf("got %+v, want SHO at (1,4)", msg)
		}
		if a.State() != StateAttacking {
			t.Fatalf("state = %v, want %v", a.State(), StateAttacking)
		}
	})

	t.Run("accepter defends on heads", func(t *testing.T) {
		f := newFakeField()
		a := newTestAgent(f, 1)
		a.Step(wire.Event{Type: wire.EvtChaReceived, Value: 0})
		secret := negotiation.SecretForCounter(a.counter)
		a.commitment = negotiation.Hash(secret)

		msg := a.Step(wire.Event{Type: wire.EvtRevReceived, Value: secret})

		if msg.Type != wire.MessageNone {
			t.Fatalf("defending accepter sent %v, want nothing", msg.Type)
		}
		if a.State() != StateDefending {
			t.Fatalf("state = %v, want %v", a.State(), StateDefending)
		}
	})
}

func TestCheatDetection(t *testing.T) {
	f := newFakeField()
	a := newTestAgent(f, 1)

	a.Step(wire.Event{Type: wire.EvtChaReceived, Value: negotiation.Hash(500)})
	// reveal something that does not hash to the stored commitment
	msg := a.Step(wire.Event{Type: wire.EvtRevReceived, Value: 501})

	if msg.Type != wire.MessageNone {
		t.Fatalf("cheated-on agent sent %v, want nothing", msg.Type)
	}
	if a.State() != StateEndScreen {
		t.Fatalf("state = %v, want %v", a.State(), StateEndScreen)
	}
	if a.Outcome() != OutcomeCheat {
		t.Fatalf("outcome = %v, want %v", a.Outcome(), OutcomeCheat)
	}

	// no further traffic out of the terminal state
	if m := a.Step(wire.Event{Type: wire.EvtShotReceived, Row: 0, Col: 0}); m.Type != wire.MessageNone {
		t.Fatalf("end screen emitted %v", m.Type)
	}
}

func TestDefendingRepliesAndSinkEndsGame(t *testing.T) {
	f := newFakeField()
	a := newTestAgent(f, 1)
	a.state = StateDefending

	// normal exchange: reply with the attack result, wait to send our shot
	f.attackResult = wire.ResultHit
	msg := a.Step(wire.Event{Type: wire.EvtShotReceived, Row: 2, Col: 9})
	if msg.Type != wire.MessageRes || msg.Row != 2 || msg.Col != 9 || msg.Result != wire.ResultHit {
		t.Fatalf("got %+v, want RES hit at (2,9)", msg)
	}
	if a.State() != StateWaitingToSend {
		t.Fatalf("state = %v, want %v", a.State(), StateWaitingToSend)
	}

	// final segment of our fleet: report the sink, then the game is over
	a.state = StateDefending
	f.attackResult = wire.ResultHugeSunk
	f.ownFleet = 0
	msg = a.Step(wire.Event{Type: wire.EvtShotReceived, Row: 3, Col: 3})
	if msg.Type != wire.MessageRes || msg.Result != wire.ResultHugeSunk {
		t.Fatalf("got %+v, want RES huge-sunk", msg)
	}
	if a.State() != StateEndScreen {
		t.Fatalf("state = %v, want %v", a.State(), StateEndScreen)
	}
	if a.Outcome() != OutcomeDefeat {
		t.Fatalf("outcome = %v, want %v", a.Outcome(), OutcomeDefeat)
	}
}

func TestDefendingBothFleetsGoneIsDraw(t *testing.T) {
	f := newFakeField()
	a := newTestAgent(f, 1)
	a.state = StateDefending

	// the incoming shot finishes our fleet while theirs is already gone
	f.attackResult = wire.ResultHugeSunk
	f.ownFleet = 0
	f.oppFleet = 0
	msg := a.Step(wire.Event{Type: wire.EvtShotReceived, Row: 1, Col: 1})
	if msg.Type != wire.MessageRes {
		t.Fatalf("got %+v, want RES", msg)
	}
	if a.State() != StateEndScreen {
		t.Fatalf("state = %v, want %v", a.State(), StateEndScreen)
	}
	if a.Outcome() != OutcomeDraw {
		t.Fatalf("outcome = %v, want %v", a.Outcome(), OutcomeDraw)
	}
}

func TestAttackingVictory(t *testing.T) {
	f := newFakeField()
	a := newTestAgent(f, 1)
	a.state = StateAttacking

	f.oppFleet = 0
	msg := a.Step(wire.Event{Type: wire.EvtResultReceived, Row: 0, Col: 0, Result: wire.ResultSmallSunk})

	if msg.Type != wire.MessageNone {
		t.Fatalf("victor sent %v, want nothing", msg.Type)
	}
	if a.State() != StateEndScreen || a.Outcome() != OutcomeVictory {
		t.Fatalf("state=%v outcome=%v, want end screen victory", a.State(), a.Outcome())
	}
	if len(f.updates) != 1 {
		t.Fatalf("knowledge updated %d times, want 1", len(f.updates))
	}
}

func TestWaitingToSendAdvancesTurn(t *testing.T) {
	f := newFakeField()
	f.nextRow, f.nextCol = 4, 7
	a := newTestAgent(f, 1)
	a.state = StateWaitingToSend

	msg := a.Step(wire.MessageSent())

	if msg.Type != wire.MessageSho || msg.Row != 4 || msg.Col != 7 {
		t.Fatalf("got %+v, want SHO at (4,7)", msg)
	}
	if a.State() != StateAttacking {
		t.Fatalf("state = %v, want %v", a.State(), StateAttacking)
	}
	if a.TurnCount() != 1 {
		t.Fatalf("turn count = %d, want 1", a.TurnCount())
	}
}

func TestResetFromAnyState(t *testing.T) {
	states := []State{
		StateStart, StateChallenging, StateAccepting,
		StateAttacking, StateDefending, StateWaitingToSend, StateEndScreen,
	}

	for _, s := range states {
		t.Run(string(s), func(t *testing.T) {
			f := newFakeField()
			a := newTestAgent(f, 1)
			a.state = s
			a.turnCount = 9
			a.outcome = OutcomeVictory
			resetsBefore := f.resets

			if msg := a.Step(wire.ResetPressed()); msg.Type != wire.MessageNone {
				t.Fatalf("reset emitted %v", msg.Type)
			}
			if a.State() != StateStart {
				t.Fatalf("state = %v, want %v", a.State(), StateStart)
			}
			if a.TurnCount() != 0 || a.Outcome() != OutcomeNone {
				t.Fatalf("session data survived reset")
			}
			if f.resets != resetsBefore+1 {
				t.Fatalf("field not reinitialized on reset")
			}
		})
	}
}

func TestNoiseEventsAreIgnored(t *testing.T) {
	cases := []struct {
		state State
		ev    wire.Event
	}{
		{StateStart, wire.Event{Type: wire.EvtError}},
		{StateChallenging, wire.Event{Type: wire.EvtShotReceived, Row: 1, Col: 1}},
		{StateAccepting, wire.Event{Type: wire.EvtAccReceived, Value: 3}},
		{StateAttacking, wire.Event{Type: wire.EvtError}},
		{StateDefending, wire.Event{Type: wire.EvtResultReceived}},
		{StateWaitingToSend, wire.Event{Type: wire.EvtShotReceived}},
	}

	for _, tc := range cases {
		t.Run(string(tc.state)+"/"+string(tc.ev.Type), func(t *testing.T) {
			f := newFakeField()
			a := newTestAgent(f, 1)
			a.state = tc.state

			msg := a.Step(tc.ev)

			if msg.Type != wire.MessageNone {
				t.Fatalf("noise produced message %v", msg.Type)
			}
			if a.State() != tc.state {
				t.Fatalf("noise moved state %v -> %v", tc.state, a.State())
			}
		})
	}
}

type countingDisplay struct {
	outcomes []Outcome
}

func (c *countingDisplay) ShowTurn(bool, int)    {}
func (c *countingDisplay) ShowOutcome(o Outcome) { c.outcomes = append(c.outcomes, o) }

func TestEndScreenRendersOnce(t *testing.T) {
	f := newFakeField()
	a := newTestAgent(f, 1)
	d := &countingDisplay{}
	a.SetDisplay(d)

	a.state = StateAttacking
	f.oppFleet = 0
	a.Step(wire.Event{Type: wire.EvtResultReceived, Result: wire.ResultSmallSunk})

	for i := 0; i < 5; i++ {
		a.Step(wire.Event{Type: wire.EvtShotReceived, Row: i, Col: i})
	}

	if len(d.outcomes) != 1 {
		t.Fatalf("outcome rendered %d times, want once", len(d.outcomes))
	}
	if d.outcomes[0] != OutcomeVictory {
		t.Fatalf("rendered %v, want %v", d.outcomes[0], OutcomeVictory)
	}
}
