package tui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

const maxRecentVotes = 64

func padToWidth(s string, width int) string {
	current := runewidth.StringWidth(s)
	if current >= width {
		return s
	}
	return s + strings.Repeat(" ", width-current)
}

func separatorLine(width int) string {
	if width < 2 {
		return strings.Repeat("─", width)
	}
	return "├" + strings.Repeat("─", width-2) + "┤"
}

func formatInfoLine(text string, width int) string {
	if width < 2 {
		return padToWidth(text, width)
	}
	return "│" + padToWidth(text, width-2) + "│"
}

// StatusUpdate carries the verifier's current counters and chain identity.
type StatusUpdate struct {
	Height        uint64
	ChainID       string
	NodeVersion   string
	SourceChain   string
	Verifier      string
	Contract      string
	EventsSeen    uint64
	VotesCast     uint64
	HandlerErrors uint64
}

// VoteUpdate describes one cast vote.
type VoteUpdate struct {
	PollID string
	Votes  []string
	Time   time.Time
}

// statusMsg and voteMsg wrap channel data as bubbletea messages.
type statusMsg struct {
	status StatusUpdate
}

type voteMsg struct {
	vote VoteUpdate
}

// Model holds the TUI state
type Model struct {
	status StatusUpdate
	recent []VoteUpdate
	width  int
	height int
}

// NewModel creates a new TUI model
func NewModel() Model {
	return Model{}
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case statusMsg:
		m.status = msg.status
		return m, nil

	case voteMsg:
		m.recent = append([]VoteUpdate{msg.vote}, m.recent...)
		if len(m.recent) > maxRecentVotes {
			m.recent = m.recent[:maxRecentVotes]
		}
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		}
	}

	return m, nil
}

// View renders the UI
func (m Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	header := m.renderHeader()
	votes := m.renderVotes()

	return lipgloss.JoinVertical(lipgloss.Left, header, votes)
}

// renderHeader renders the top header section
func (m Model) renderHeader() string {
	colWidth := (m.width - 4) / 3
	rightColWidth := m.width - colWidth*2 - 4

	chainLine := "chain: N/A"
	if m.status.ChainID != "" {
		chainLine = fmt.Sprintf("chain: %s", m.status.ChainID)
	}
	versionLine := "node version: N/A"
	if m.status.NodeVersion != "" {
		versionLine = fmt.Sprintf("node version: %s", m.status.NodeVersion)
	}

	leftLines := []string{
		fmt.Sprintf("height=%d", m.status.Height),
		fmt.Sprintf("events seen: %d", m.status.EventsSeen),
		fmt.Sprintf("votes cast: %d", m.status.VotesCast),
		fmt.Sprintf("handler errors: %d", m.status.HandlerErrors),
	}
	middleLines := []string{
		chainLine,
		versionLine,
		fmt.Sprintf("source chain: %s", m.status.SourceChain),
	}
	rightLines := []string{
		fmt.Sprintf("verifier: %s", truncate(m.status.Verifier, rightColWidth-12)),
		fmt.Sprintf("contract: %s", truncate(m.status.Contract, rightColWidth-12)),
	}

	maxLines := len(leftLines)
	if len(middleLines) > maxLines {
		maxLines = len(middleLines)
	}
	if len(rightLines) > maxLines {
		maxLines = len(rightLines)
	}

	var rows []string
	for i := 0; i < maxLines; i++ {
		left := ""
		if i < len(leftLines) {
			left = leftLines[i]
		}
		middle := ""
		if i < len(middleLines) {
			middle = middleLines[i]
		}
		right := ""
		if i < len(rightLines) {
			right = rightLines[i]
		}

		rows = append(rows, fmt.Sprintf("│ %s │ %s │ %s │",
			padToWidth(truncate(left, colWidth-2), colWidth-2),
			padToWidth(truncate(middle, colWidth-2), colWidth-2),
			padToWidth(truncate(right, rightColWidth-2), rightColWidth-2)))
	}

	topBorder := fmt.Sprintf("┌%s┬%s┬%s┐",
		strings.Repeat("─", colWidth),
		strings.Repeat("─", colWidth),
		strings.Repeat("─", rightColWidth))
	separator := fmt.Sprintf("├%s┴%s┴%s┤",
		strings.Repeat("─", colWidth),
		strings.Repeat("─", colWidth),
		strings.Repeat("─", rightColWidth))

	return topBorder + "\n" + strings.Join(rows, "\n") + "\n" + separator
}

// renderVotes renders the recent votes table
func (m Model) renderVotes() string {
	availableHeight := m.height - 8
	if availableHeight <= 2 {
		return ""
	}

	maxRows := availableHeight - 3
	rows := len(m.recent)
	if rows > maxRows {
		rows = maxRows
	}

	var lines []string
	for i := 0; i < rows; i++ {
		vote := m.recent[i]
		line := fmt.Sprintf(" %s  poll=%s  %s",
			vote.Time.Format("15:04:05"),
			vote.PollID,
			summarizeVotes(vote.Votes))
		lines = append(lines, formatInfoLine(truncate(line, m.width-2), m.width))
	}
	if len(lines) == 0 {
		lines = append(lines, formatInfoLine(" no votes cast yet", m.width))
	}

	bottomBorder := "└" + strings.Repeat("─", m.width-2) + "┘"

	return strings.Join(lines, "\n") + "\n" +
		separatorLine(m.width) + "\n" +
		formatInfoLine(" Time, Poll, Votes (✅ succeeded, ❌ failed, 🔍 not found)", m.width) + "\n" +
		bottomBorder
}

// summarizeVotes renders one symbol per message vote, in message order.
func summarizeVotes(votes []string) string {
	var b strings.Builder
	for _, v := range votes {
		switch v {
		case "succeeded_on_chain":
			b.WriteString("✅")
		case "failed_on_chain":
			b.WriteString("❌")
		case "not_found":
			b.WriteString("🔍")
		default:
			b.WriteString("?")
		}
	}
	return b.String()
}

func truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	if runewidth.StringWidth(s) <= width {
		return s
	}
	out := ""
	for _, r := range s {
		if runewidth.StringWidth(out+string(r)) > width-3 {
			break
		}
		out += string(r)
	}
	return out + "..."
}

// Run starts the TUI program
func Run(updateCh <-chan interface{}) error {
	m := NewModel()
	p := tea.NewProgram(m, tea.WithAltScreen())

	// Start goroutine to receive updates
	go func() {
		for data := range updateCh {
			switch update := data.(type) {
			case StatusUpdate:
				p.Send(statusMsg{status: update})
			case VoteUpdate:
				p.Send(voteMsg{vote: update})
			}
		}
		// Channel closed, quit TUI
		p.Quit()
	}()

	_, err := p.Run()
	return err
}
