package chains

import (
	"sync"
	"time"

	"ailearn/backend/models"
)

// Memory is the ordered transcript of prior (question, answer) turns for one
// session. Appends are chronological; nothing mutates a stored turn except a
// full Clear. Bounded by maxTurns with drop-oldest eviction so the replayed
// context cannot grow without limit; maxTurns <= 0 disables the bound.
type Memory struct {
	mu       sync.Mutex
	maxTurns int
	turns    []models.ConversationTurn
}

// NewMemory creates an empty transcript bounded to maxTurns.
func NewMemory(maxTurns int) *Memory {
	return &Memory{maxTurns: maxTurns}
}

// Append records one completed turn, evicting the oldest if over budget.
func (m *Memory) Append(input, output string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.turns = append(m.turns, models.ConversationTurn{
		Input:     input,
		Output:    output,
		CreatedAt: time.Now().UTC(),
	})
	if m.maxTurns > 0 && len(m.turns) > m.maxTurns {
		m.turns = m.turns[len(m.turns)-m.maxTurns:]
	}
}

// Turns returns a copy of the transcript in chronological order.
func (m *Memory) Turns() []models.ConversationTurn {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]models.ConversationTurn, len(m.turns))
	copy(out, m.turns)
	return out
}

// Clear resets the transcript.
func (m *Memory) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.turns = nil
}

// Len returns the number of stored turns.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.turns)
}
