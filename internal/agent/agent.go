// Package agent sequences one BattleBoats session: challenge, acceptance,
// the commit-reveal turn-order flip, and the shot/result exchange. It is a
// synchronous state machine; the driver loop feeds it one event at a time and
// sends whatever message comes back.
package agent

import (
	"math/rand"

	"go.uber.org/zap"

	"github.com/calebdsmith/battleboats/internal/negotiation"
	"github.com/calebdsmith/battleboats/internal/wire"
)

// State is the session phase. Exactly one is active at a time and only Step
// mutates it.
type State string

const (
	StateStart         State = "start"
	StateChallenging   State = "challenging"
	StateAccepting     State = "accepting"
	StateAttacking     State = "attacking"
	StateDefending     State = "defending"
	StateWaitingToSend State = "waiting_to_send"
	StateEndScreen     State = "end_screen"
)

// Outcome is the terminal result of a session.
type Outcome string

const (
	OutcomeNone    Outcome = ""
	OutcomeVictory Outcome = "victory"
	OutcomeDefeat  Outcome = "defeat"
	OutcomeDraw    Outcome = "draw"
	// OutcomeCheat means the peer's revealed secret did not match its
	// commitment. Unrecoverable, and deliberately distinct from a loss.
	OutcomeCheat Outcome = "cheat_detected"
)

// Field is the board bookkeeping the agent delegates to. One implementation
// covers both the agent's own board and its knowledge of the opponent's.
type Field interface {
	Reset()
	PlaceBoats() error
	// RegisterAttack resolves an incoming shot against the own board.
	RegisterAttack(row, col int) wire.GuessResult
	// UpdateKnowledge folds the opponent's answer to our shot into the
	// opponent-knowledge board.
	UpdateKnowledge(row, col int, result wire.GuessResult)
	OwnFleet() uint8
	OppFleet() uint8
	// NextGuess must never repeat a previously attacked coordinate.
	NextGuess() (row, col int)
}

// Display receives fire-and-forget render calls. The agent never reads
// anything back from it.
type Display interface {
	ShowTurn(myTurn bool, turnCount int)
	ShowOutcome(Outcome)
}

type nopDisplay struct{}

func (nopDisplay) ShowTurn(bool, int)  {}
func (nopDisplay) ShowOutcome(Outcome) {}

// Agent is one side's session controller. Not safe for concurrent use; the
// driver loop must finish one Step before starting the next.
type Agent struct {
	state   State
	field   Field
	display Display
	log     *zap.Logger
	rng     *rand.Rand

	secret     uint16 // A, when this peer challenges
	counter    uint16 // B, when this peer accepts
	commitment uint16 // opponent's commitment, when this peer accepts

	myTurn       bool
	turnCount    int
	outcome      Outcome
	outcomeShown bool
}

// New builds an agent in the Start state. rng feeds secret selection (and is
// shared with nothing else); a nil logger is replaced with a no-op.
func New(field Field, rng *rand.Rand, log *zap.Logger) *Agent {
	if log == nil {
		log = zap.NewNop()
	}
	a := &Agent{
		field:   field,
		display: nopDisplay{},
		log:     log,
		rng:     rng,
	}
	a.reset()
	return a
}

// SetDisplay swaps in a renderer. Intended to be called once, before play.
func (a *Agent) SetDisplay(d Display) {
	if d != nil {
		a.display = d
	}
}

func (a *Agent) State() State     { return a.state }
func (a *Agent) Outcome() Outcome { return a.outcome }
func (a *Agent) TurnCount() int   { return a.turnCount }
func (a *Agent) MyTurn() bool     { return a.myTurn }

func (a *Agent) reset() {
	a.state = StateStart
	a.secret = 0
	a.counter = 0
	a.commitment = 0
	a.myTurn = false
	a.turnCount = 0
	a.outcome = OutcomeNone
	a.outcomeShown = false
	a.field.Reset()
}

// Step consumes one event and returns the message to transmit, which is
// MessageNone for most event/state pairs. Events that make no sense in the
// current state are ignored: noise on the wire must not cause transitions.
func (a *Agent) Step(ev wire.Event) wire.Message {
	if ev.Type == wire.EvtResetPressed {
		a.log.Info("session reset")
		a.reset()
		return wire.Message{}
	}

	switch a.state {
	case StateStart:
		return a.stepStart(ev)
	case StateChallenging:
		return a.stepChallenging(ev)
	case StateAccepting:
		return a.stepAccepting(ev)
	case StateAttacking:
		return a.stepAttacking(ev)
	case StateDefending:
		return a.stepDefending(ev)
	case StateWaitingToSend:
		return a.stepWaitingToSend(ev)
	case StateEndScreen:
		a.showEndScreen()
		return wire.Message{}
	}
	return wire.Message{}
}

func (a *Agent) stepStart(ev wire.Event) wire.Message {
	switch ev.Type {
	case wire.EvtStartPressed:
		a.secret = uint16(a.rng.Intn(0x10000))
		commitment := negotiation.Hash(a.secret)
		if err := a.field.PlaceBoats(); err != nil {
			a.log.Error("boat placement failed", zap.Error(err))
			return wire.Message{}
		}
		a.transition(StateChallenging)
		return wire.NewChallenge(commitment)

	case wire.EvtChaReceived:
		a.commitment = ev.Value
		a.counter = uint16(a.rng.Intn(0x10000))
		if err := a.field.PlaceBoats(); err != nil {
			a.log.Error("boat placement failed", zap.Error(err))
			return wire.Message{}
		}
		a.transition(StateAccepting)
		return wire.NewAccept(a.counter)
	}
	return wire.Message{}
}

func (a *Agent) stepChallenging(ev wire.Event) wire.Message {
	if ev.Type != wire.EvtAccReceived {
		return wire.Message{}
	}

	flip := negotiation.CoinFlip(a.secret, ev.Value)
	a.log.Info("turn order settled",
		zap.String("role", "challenger"),
		zap.String("flip", flip.String()))

	// Challenger attacks first on heads.
	if flip == negotiation.Heads {
		a.myTurn = true
		a.transition(StateWaitingToSend)
	} else {
		a.transition(StateDefending)
	}
	return wire.NewReveal(a.secret)
}

func (a *Agent) stepAccepting(ev wire.Event) wire.Message {
	if ev.Type != wire.EvtRevReceived {
		return wire.Message{}
	}

	if !negotiation.Verify(ev.Value, a.commitment) {
		a.log.Warn("revealed secret does not match commitment",
			zap.Uint16("revealed", ev.Value),
			zap.Uint16("commitment", a.commitment))
		a.outcome = OutcomeCheat
		a.transition(StateEndScreen)
		a.showEndScreen()
		return wire.Message{}
	}

	flip := negotiation.CoinFlip(ev.Value, a.counter)
	a.log.Info("turn order settled",
		zap.String("role", "accepter"),
		zap.String("flip", flip.String()))

	// Accepter attacks first on tails, the mirror of the challenger's
	// mapping, so exactly one side opens fire.
	if flip == negotiation.Tails {
		a.myTurn = true
		a.transition(StateAttacking)
		row, col := a.field.NextGuess()
		a.display.ShowTurn(a.myTurn, a.turnCount)
		return wire.NewShot(row, col)
	}
	a.transition(StateDefending)
	a.display.ShowTurn(a.myTurn, a.turnCount)
	return wire.Message{}
}

func (a *Agent) stepAttacking(ev wire.Event) wire.Message {
	if ev.Type != wire.EvtResultReceived {
		return wire.Message{}
	}

	a.field.UpdateKnowledge(ev.Row, ev.Col, ev.Result)
	if a.field.OppFleet() == 0 {
		a.transition(StateEndScreen)
		a.showEndScreen()
		return wire.Message{}
	}
	a.myTurn = false
	a.transition(StateDefending)
	a.display.ShowTurn(a.myTurn, a.turnCount)
	return wire.Message{}
}

func (a *Agent) stepDefending(ev wire.Event) wire.Message {
	if ev.Type != wire.EvtShotReceived {
		return wire.Message{}
	}

	result := a.field.RegisterAttack(ev.Row, ev.Col)
	reply := wire.NewResult(ev.Row, ev.Col, result)

	if a.field.OwnFleet() == 0 {
		a.transition(StateEndScreen)
		a.showEndScreen()
		return reply
	}
	a.transition(StateWaitingToSend)
	a.display.ShowTurn(a.myTurn, a.turnCount)
	return reply
}

func (a *Agent) stepWaitingToSend(ev wire.Event) wire.Message {
	if ev.Type != wire.EvtMessageSent {
		return wire.Message{}
	}

	a.turnCount++
	a.myTurn = true
	a.transition(StateAttacking)
	row, col := a.field.NextGuess()
	a.display.ShowTurn(a.myTurn, a.turnCount)
	return wire.NewShot(row, col)
}

// showEndScreen renders the final outcome exactly once, no matter how many
// further events land in the terminal state.
func (a *Agent) showEndScreen() {
	if a.outcomeShown {
		return
	}
	if a.outcome == OutcomeNone {
		own, opp := a.field.OwnFleet(), a.field.OppFleet()
		switch {
		case opp == 0 && own != 0:
			a.outcome = OutcomeVictory
		case own == 0 && opp != 0:
			a.outcome = OutcomeDefeat
		case own == 0 && opp == 0:
			a.outcome = OutcomeDraw
		}
	}
	a.log.Info("game over", zap.String("outcome", string(a.outcome)))
	a.display.ShowOutcome(a.outcome)
	a.outcomeShown = true
}

func (a *Agent) transition(next State) {
	a.log.Debug("state transition",
		zap.String("from", string(a.state)),
		zap.String("to", string(next)))
	a.state = next
}
