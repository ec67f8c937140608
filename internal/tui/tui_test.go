package tui

import (
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSummarizeVotes(t *testing.T) {
	assert.Equal(t, "✅❌🔍?", summarizeVotes([]string{
		"succeeded_on_chain", "failed_on_chain", "not_found", "bogus",
	}))
	assert.Equal(t, "", summarizeVotes(nil))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "", truncate("anything", 0))
	assert.Equal(t, "abc...", truncate("abcdefghij", 6))
}

func TestModelUpdate(t *testing.T) {
	m := NewModel()

	updated, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	model := updated.(Model)
	assert.Equal(t, 100, model.width)

	updated, _ = model.Update(statusMsg{status: StatusUpdate{Height: 42, ChainID: "axelar-testnet"}})
	model = updated.(Model)
	assert.Equal(t, uint64(42), model.status.Height)

	updated, _ = model.Update(voteMsg{vote: VoteUpdate{PollID: "100", Votes: []string{"not_found"}, Time: time.Now()}})
	model = updated.(Model)
	require.Len(t, model.recent, 1)
	assert.Equal(t, "100", model.recent[0].PollID)

	view := model.View()
	assert.Contains(t, view, "height=42")
	assert.Contains(t, view, "poll=100")
}

func TestRecentVotesBounded(t *testing.T) {
	m := NewModel()
	var model tea.Model = m
	for i := 0; i < maxRecentVotes+10; i++ {
		model, _ = model.Update(voteMsg{vote: VoteUpdate{PollID: "1"}})
	}
	assert.Len(t, model.(Model).recent, maxRecentVotes)
}
