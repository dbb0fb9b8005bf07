package bubbletea

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ateneo-app/ateneo"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-runewidth"
)

var _ tea.Model = Model{}

// Model is the Bubble Tea model for the ateneo TUI.
type Model struct {
	// Input is the text input component. Exported for test access.
	Input textinput.Model
	// Viewport is the scrollable output area. Exported for test access.
	Viewport viewport.Model

	turn   TurnFunc
	stop   StopFunc
	reset  ResetFunc
	course string
	styles Styles

	blocks     []MessageBlock
	blockFocus int // index of focused collapsible block (-1 = none)

	// Active blocks for the current turn. Token snapshots update the
	// answer block in place; reasoning snapshots replace the reasoning
	// block's text. Both are nil between turns.
	activeAnswer    *AnswerBlock
	activeReasoning *ReasoningBlock

	spinner spinner.Model
	running bool
	cancel  context.CancelFunc
	snapCh  chan ateneo.Snapshot
	doneCh  chan TurnDoneMsg
	turnSeq int // current turn's sequence; messages from older turns are dropped
	err     error
	ready   bool
}

// New creates a new TUI Model. The conversation, when non-nil, seeds the
// view with prior turns. The course label is shown in the status line.
func New(turn TurnFunc, stop StopFunc, reset ResetFunc, conv *ateneo.Conversation, course string, theme ateneo.Theme) Model {
	ti := textinput.New()
	ti.Placeholder = "Ask a question..."
	ti.Prompt = ""
	ti.Focus()
	ti.CharLimit = 0

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	m := Model{
		Input:      ti,
		turn:       turn,
		stop:       stop,
		reset:      reset,
		course:     course,
		styles:     NewStyles(theme),
		spinner:    sp,
		blockFocus: -1,
	}
	if conv != nil {
		m = m.renderConversation(conv)
	}
	return m
}

// Running returns whether a turn is currently in flight.
func (m Model) Running() bool { return m.running }

// Err returns the last error, if any.
func (m Model) Err() error { return m.err }

// SetRunning is a test helper that puts the model in a running state.
func SetRunning(m Model) (Model, tea.Cmd) {
	m.running = true
	return m, nil
}

// SetRunningWithCancel is a test helper that puts the model in a running state
// with a cancel function.
func SetRunningWithCancel(m Model, cancel func()) (Model, tea.Cmd) {
	m.running = true
	m.cancel = cancel
	return m, nil
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m = m.handleWindowSize(msg)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case SnapshotMsg:
		if msg.Seq != m.turnSeq {
			return m, nil
		}
		m = m.applySnapshot(msg.Snapshot)
		m.Viewport.SetContent(m.renderContent())
		m.Viewport.GotoBottom()
		if m.snapCh != nil {
			return m, listenForSnapshot(m.turnSeq, m.snapCh, m.doneCh)
		}
		return m, nil

	case TurnDoneMsg:
		if msg.Seq != m.turnSeq {
			return m, nil
		}
		m = m.finishTurn(msg)
		cmd := m.Input.Focus()
		cmds = append(cmds, cmd)
		return m, tea.Batch(cmds...)

	case spinner.TickMsg:
		if !m.running {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	// Pass remaining messages to sub-components.
	// Viewport always receives messages for scrolling (keyboard and mouse).
	var cmd tea.Cmd
	m.Viewport, cmd = m.Viewport.Update(msg)
	cmds = append(cmds, cmd)

	if !m.running {
		m.Input, cmd = m.Input.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Initializing..."
	}

	var b strings.Builder

	// Output area.
	b.WriteString(m.Viewport.View())
	b.WriteString("\n")

	// Status line.
	b.WriteString(m.statusLine())
	b.WriteString("\n")

	// Input area.
	b.WriteString(m.Input.View())

	return b.String()
}

func (m Model) handleWindowSize(msg tea.WindowSizeMsg) Model {
	inputH := 1
	statusHeight := 1
	borderHeight := 2 // newlines between sections
	vpHeight := msg.Height - inputH - statusHeight - borderHeight

	if vpHeight < 1 {
		vpHeight = 1
	}

	if !m.ready {
		m.Viewport = viewport.New(msg.Width, vpHeight)
		m.Viewport.SetContent(m.renderContent())
		m.Viewport.GotoBottom()
		m.ready = true
	} else {
		m.Viewport.Width = msg.Width
		m.Viewport.Height = vpHeight
	}

	m.Input.Width = msg.Width
	return m
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC:
		if m.running {
			if m.cancel != nil {
				m.cancel()
			}
			return m, nil
		}
		return m, tea.Quit

	case tea.KeyEsc:
		if m.running && m.stop != nil {
			stop := m.stop
			return m, func() tea.Msg {
				// Errors surface through the turn itself: a failed stop
				// falls back to local cancellation and the turn ends
				// with a cancelled snapshot either way.
				_ = stop(context.Background())
				return nil
			}
		}
		return m, nil

	case tea.KeyCtrlR:
		return m.resetConversation()

	case tea.KeyEnter:
		if m.running {
			return m, nil
		}
		text := strings.TrimSpace(m.Input.Value())
		if text == "" {
			return m, nil
		}
		return m.submitInput(text)

	case tea.KeyTab:
		if !m.running && m.blockFocus >= 0 {
			block, cmd := m.blocks[m.blockFocus].Update(ToggleMsg{})
			m.blocks[m.blockFocus] = block
			m.Viewport.SetContent(m.renderContent())
			return m, cmd
		}
		return m, nil

	case tea.KeyShiftTab:
		if !m.running {
			m = m.cycleFocusPrev()
			m.Viewport.SetContent(m.renderContent())
		}
		return m, nil
	}

	// When idle, pass keys to both the input (for typing) and viewport
	// (for scrolling). Only forward non-character keys to viewport to avoid
	// conflicts (e.g. 'j'/'k' are viewport scroll AND text characters).
	if !m.running {
		var cmd tea.Cmd
		var cmds []tea.Cmd

		if msg.Type != tea.KeyRunes {
			m.Viewport, cmd = m.Viewport.Update(msg)
			cmds = append(cmds, cmd)
		}

		m.Input, cmd = m.Input.Update(msg)
		cmds = append(cmds, cmd)

		return m, tea.Batch(cmds...)
	}

	return m, nil
}

func (m Model) submitInput(text string) (tea.Model, tea.Cmd) {
	m.Input.SetValue("")
	m.err = nil

	m.blocks = append(m.blocks, NewQuestionBlock(text, m.styles))
	m.activeAnswer = nil
	m.activeReasoning = nil
	m.Viewport.SetContent(m.renderContent())
	m.Viewport.GotoBottom()

	ctx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel
	m.snapCh = make(chan ateneo.Snapshot, 256)
	m.doneCh = make(chan TurnDoneMsg, 1)
	m.turnSeq++
	m.running = true

	m.Input.Blur()

	return m, tea.Batch(
		startTurn(m.turn, ctx, text, m.snapCh, m.doneCh),
		listenForSnapshot(m.turnSeq, m.snapCh, m.doneCh),
		m.spinner.Tick,
	)
}

func (m Model) resetConversation() (tea.Model, tea.Cmd) {
	if m.cancel != nil {
		m.cancel()
	}
	// Supersede the in-flight turn: bump the sequence so its remaining
	// snapshot and done messages are dropped instead of resurfacing the
	// old turn in the cleared view.
	m.turnSeq++
	m.running = false
	m.cancel = nil
	m.snapCh = nil
	m.doneCh = nil
	m.blocks = nil
	m.blockFocus = -1
	m.activeAnswer = nil
	m.activeReasoning = nil
	m.err = nil
	m.Viewport.SetContent("")

	cmds := []tea.Cmd{m.Input.Focus()}
	if reset := m.reset; reset != nil {
		cmds = append(cmds, func() tea.Msg {
			reset(context.Background())
			return nil
		})
	}
	return m, tea.Batch(cmds...)
}

// applySnapshot updates the current turn's blocks from an accumulated
// snapshot. Blocks are created lazily the first time their content appears,
// so a reasoning trace that precedes the first token lands above the answer.
func (m Model) applySnapshot(snap ateneo.Snapshot) Model {
	if snap.Reasoning != "" {
		if m.activeReasoning == nil {
			m.activeReasoning = NewReasoningBlock(m.styles)
			m.blocks = append(m.blocks, m.activeReasoning)
			m = m.updateBlockFocus()
		}
		m.activeReasoning.SetText(snap.Reasoning)
	}
	if snap.Text != "" {
		if m.activeAnswer == nil {
			m.activeAnswer = NewAnswerBlock()
			m.blocks = append(m.blocks, m.activeAnswer)
		}
		m.activeAnswer.SetText(snap.Text)
	}
	return m
}

func (m Model) finishTurn(msg TurnDoneMsg) Model {
	m.running = false
	m.cancel = nil
	m.snapCh = nil
	m.doneCh = nil

	// The final snapshot carries the user-visible markers for cancelled
	// and incomplete turns, so apply it before finalizing.
	m = m.applySnapshot(msg.Snapshot)
	if m.activeAnswer != nil {
		m.activeAnswer.Finish()
	}
	if msg.Err != nil && !errors.Is(msg.Err, context.Canceled) {
		m.err = msg.Err
		m.blocks = append(m.blocks, NewErrorBlock(msg.Err, m.styles))
	}
	m = m.updateBlockFocus()
	m.Viewport.SetContent(m.renderContent())
	m.Viewport.GotoBottom()
	return m
}

// renderConversation creates blocks from a previously saved conversation.
func (m Model) renderConversation(conv *ateneo.Conversation) Model {
	for _, turn := range conv.Turns {
		m.blocks = append(m.blocks, NewQuestionBlock(turn.Prompt, m.styles))
		if turn.Reasoning != "" {
			rb := NewReasoningBlock(m.styles)
			rb.SetText(turn.Reasoning)
			m.blocks = append(m.blocks, rb)
		}
		if turn.Answer != "" {
			ab := NewAnswerBlock()
			ab.SetText(turn.Answer)
			ab.Finish()
			m.blocks = append(m.blocks, ab)
		}
	}
	return m.updateBlockFocus()
}

func (m Model) renderContent() string {
	if len(m.blocks) == 0 {
		return ""
	}
	var b strings.Builder
	for i, block := range m.blocks {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(block.View(m.Viewport.Width))
	}
	return b.String()
}

// updateBlockFocus scans backwards to find the last collapsible block.
// Only the focused block responds to Tab. ShiftTab cycles to the previous
// collapsible block.
func (m Model) updateBlockFocus() Model {
	m.blockFocus = -1
	for i := len(m.blocks) - 1; i >= 0; i-- {
		if _, ok := m.blocks[i].(*ReasoningBlock); ok {
			m.blockFocus = i
			return m
		}
	}
	return m
}

// cycleFocusPrev moves blockFocus to the previous collapsible block, wrapping around.
func (m Model) cycleFocusPrev() Model {
	start := m.blockFocus - 1
	if start < 0 {
		start = len(m.blocks) - 1
	}
	for i := range len(m.blocks) {
		idx := (start - i + len(m.blocks)) % len(m.blocks)
		if _, ok := m.blocks[idx].(*ReasoningBlock); ok {
			m.blockFocus = idx
			return m
		}
	}
	m.blockFocus = -1
	return m
}

func (m Model) statusLine() string {
	width := m.Viewport.Width
	if m.err != nil {
		text := truncateLine(fmt.Sprintf("Error: %v", m.err), width)
		return m.styles.Error.Render(text)
	}

	var hint string
	if m.running {
		hint = m.spinner.View() + " Generating... Esc to stop"
	} else {
		hint = "Enter to send, Ctrl+R to reset, Ctrl+C to quit"
	}
	if m.course == "" {
		return m.styles.Muted.Render(truncateLine(hint, width))
	}
	label := truncateLine(m.course, width)
	rest := width - runewidth.StringWidth(label) - 3
	if rest <= 0 {
		return m.styles.Accent.Render(label)
	}
	return m.styles.Accent.Render(label) + m.styles.Muted.Render(" | "+truncateLine(hint, rest))
}

func truncateLine(s string, width int) string {
	if width <= 0 {
		return s
	}
	return runewidth.Truncate(s, width, "…")
}

// startTurn runs the turn in a goroutine and signals completion.
func startTurn(run TurnFunc, ctx context.Context, prompt string, snapCh chan<- ateneo.Snapshot, doneCh chan<- TurnDoneMsg) tea.Cmd {
	return func() tea.Msg {
		snap, err := run(ctx, prompt, func(s ateneo.Snapshot) {
			select {
			case snapCh <- s:
			case <-ctx.Done():
			}
		})
		close(snapCh)
		doneCh <- TurnDoneMsg{Snapshot: snap, Err: err}
		return nil
	}
}

// listenForSnapshot waits for the next snapshot from the channel and stamps
// it with the turn's sequence. When the channel closes, it reads the result
// from doneCh and returns it.
func listenForSnapshot(seq int, ch <-chan ateneo.Snapshot, doneCh <-chan TurnDoneMsg) tea.Cmd {
	return func() tea.Msg {
		snap, ok := <-ch
		if !ok {
			done := <-doneCh
			done.Seq = seq
			return done
		}
		return SnapshotMsg{Seq: seq, Snapshot: snap}
	}
}
