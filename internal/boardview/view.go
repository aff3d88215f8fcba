// Package boardview renders the two game grids to a terminal.
package boardview

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/calebdsmith/battleboats/internal/agent"
	"github.com/calebdsmith/battleboats/internal/field"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	gridStyle  = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			Padding(0, 1)
	hitStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	missStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	boatStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	victoryStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10"))
	defeatStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))
)

func glyph(s field.Square) string {
	switch s {
	case field.SquareEmpty:
		return "."
	case field.SquareUnknown:
		return "?"
	case field.SquareHit:
		return hitStyle.Render("X")
	case field.SquareMiss:
		return missStyle.Render("o")
	case field.SquareSmallBoat, field.SquareMediumBoat,
		field.SquareLargeBoat, field.SquareHugeBoat:
		return boatStyle.Render("#")
	default:
		return " "
	}
}

func grid(title string, b *field.Board) string {
	var sb strings.Builder
	sb.WriteString("  ")
	for c := 0; c < field.Cols; c++ {
		fmt.Fprintf(&sb, "%d ", c)
	}
	for r := 0; r < field.Rows; r++ {
		sb.WriteByte('\n')
		fmt.Fprintf(&sb, "%d ", r)
		for c := 0; c < field.Cols; c++ {
			sb.WriteString(glyph(b.Square(r, c)))
			sb.WriteByte(' ')
		}
	}
	return lipgloss.JoinVertical(lipgloss.Center,
		titleStyle.Render(title),
		gridStyle.Render(sb.String()))
}

// Render draws both grids side by side with a turn banner.
func Render(own, opp *field.Board, myTurn bool, turn int) string {
	banner := fmt.Sprintf("turn %d, waiting for opponent", turn)
	if myTurn {
		banner = fmt.Sprintf("turn %d, your shot", turn)
	}
	boards := lipgloss.JoinHorizontal(lipgloss.Top,
		grid("Your fleet", own),
		"  ",
		grid("Their waters", opp))
	return lipgloss.JoinVertical(lipgloss.Left, boards, banner)
}

func RenderOutcome(o agent.Outcome) string {
	switch o {
	case agent.OutcomeVictory:
		return victoryStyle.Render("VICTORY")
	case agent.OutcomeDefeat:
		return defeatStyle.Render("DEFEAT")
	case agent.OutcomeDraw:
		return titleStyle.Render("DRAW")
	case agent.OutcomeCheat:
		return defeatStyle.Render("OPPONENT CHEATED")
	default:
		return ""
	}
}

// BoardSource yields the current boards. Queried on every render because a
// session reset replaces the boards outright.
type BoardSource interface {
	Own() *field.Board
	Opp() *field.Board
}

// Console implements the agent's display on top of a board source.
type Console struct {
	src BoardSource
	out io.Writer
}

func NewConsole(src BoardSource, out io.Writer) *Console {
	return &Console{src: src, out: out}
}

func (c *Console) ShowTurn(myTurn bool, turn int) {
	fmt.Fprintln(c.out, Render(c.src.Own(), c.src.Opp(), myTurn, turn))
}

func (c *Console) ShowOutcome(o agent.Outcome) {
	fmt.Fprintln(c.out, RenderOutcome(o))
}
