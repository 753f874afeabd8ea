package export

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ailearn/backend/models"
)

func TestMarkdownContainsAllTurns(t *testing.T) {
	turns := []models.ConversationTurn{
		{Input: "What is recursion?", Output: "A function calling itself."},
		{Input: "Give an example", Output: "Walking a directory tree."},
	}

	content, err := Markdown("alice", "Recursion", "gemini-2.5-flash", turns)
	require.NoError(t, err)

	text := string(content)
	assert.Contains(t, text, "# Learning session: Recursion")
	assert.Contains(t, text, "What is recursion?")
	assert.Contains(t, text, "A function calling itself.")
	assert.Contains(t, text, "Walking a directory tree.")
	assert.Contains(t, text, "alice")
	assert.Contains(t, text, "gemini-2.5-flash")
	assert.Contains(t, text, "Google Drive")
}

func TestMarkdownEmptyTranscript(t *testing.T) {
	_, err := Markdown("alice", "Recursion", "gemini-2.5-flash", nil)
	assert.Error(t, err)
}

func TestFilename(t *testing.T) {
	name := Filename("Graph Theory")
	assert.Contains(t, name, "chat_graph_theory_")
	assert.Contains(t, name, ".md")

	assert.Contains(t, Filename(""), "chat_session_")
}
