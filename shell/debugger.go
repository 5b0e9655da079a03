package shell

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/davecgh/go-spew/spew"

	"mips32sim/cpu"
	"mips32sim/mem"
)

// model is the bubbletea model for the TUI debugger: step one instruction
// per keypress, watching registers and a window of memory around PC.
type model struct {
	cpu *cpu.Cpu
	bus *mem.Bus

	prevPC uint32
	quit   bool
}

const wordsPerRow = 4
const rows = 8

// Init returns no initial command; the Cpu is already constructed by the
// caller of Debug.
func (m model) Init() tea.Cmd {
	return nil
}

// Update is called when a message is received. Use it to inspect messages
// and, in response, update the model and/or send a command.
func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.quit = true
			return m, tea.Quit

		case " ", "j":
			if m.cpu.Running {
				m.prevPC = m.cpu.Current.PC
				m.cpu.Step(m.bus)
			}

		case "g":
			for m.cpu.Running {
				m.cpu.Step(m.bus)
			}
		}
	}
	return m, nil
}

// renderRow renders one row of memory words as a line, highlighting PC.
func (m model) renderRow(start uint32) string {
	s := fmt.Sprintf("%08x | ", start)
	for i := uint32(0); i < wordsPerRow; i++ {
		addr := start + i*4
		word := m.bus.ReadWord(addr)
		if addr == m.cpu.Current.PC {
			s += fmt.Sprintf("[%08x] ", word)
		} else {
			s += fmt.Sprintf(" %08x  ", word)
		}
	}
	return s
}

func (m model) memoryWindow() string {
	base := m.cpu.Current.PC &^ uint32(wordsPerRow*4-1)
	start := base - uint32(rows/2)*wordsPerRow*4

	lines := []string{"address  | words"}
	for r := 0; r < rows; r++ {
		lines = append(lines, m.renderRow(start+uint32(r)*wordsPerRow*4))
	}
	return strings.Join(lines, "\n")
}

func (m model) status() string {
	halted := "running"
	if !m.cpu.Running {
		halted = "halted"
	}
	return fmt.Sprintf(`
PC: %08x (was %08x)
HI: %08x
LO: %08x
instructions: %d
status: %s
`,
		m.cpu.Current.PC, m.prevPC, m.cpu.Current.HI, m.cpu.Current.LO,
		m.cpu.InstructionCount, halted)
}

func (m model) registers() string {
	var b strings.Builder
	for r := 0; r < 32; r += 4 {
		fmt.Fprintf(&b, "$%-2d=%08x  $%-2d=%08x  $%-2d=%08x  $%-2d=%08x\n",
			r, m.cpu.Current.Regs[r],
			r+1, m.cpu.Current.Regs[r+1],
			r+2, m.cpu.Current.Regs[r+2],
			r+3, m.cpu.Current.Regs[r+3])
	}
	return b.String()
}

// View renders the program's UI, which is just a string. The view is
// rendered after every Update.
func (m model) View() string {
	return lipgloss.JoinVertical(
		lipgloss.Left,
		lipgloss.JoinHorizontal(
			lipgloss.Top,
			m.memoryWindow(),
			m.status(),
		),
		"",
		m.registers(),
		"",
		spew.Sdump(m.cpu.Current),
		"\nspace/j: step   g: run   q: quit",
	)
}

// Debug starts an interactive TUI stepping c over b from its current state.
func Debug(c *cpu.Cpu, b *mem.Bus) error {
	_, err := tea.NewProgram(model{cpu: c, bus: b, prevPC: c.Current.PC}).Run()
	return err
}
