package chains

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ailearn/backend/gemini"
)

const testKey = "AIzaXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXX"

// fakeProvider emulates the generateContent endpoint and records every
// request it receives.
type fakeProvider struct {
	mu       sync.Mutex
	requests []gemini.GenerateRequest

	// reply builds the answer text; returning status != 200 fails the call.
	reply func(req *gemini.GenerateRequest) (string, int)

	server *httptest.Server
}

func newFakeProvider(t *testing.T, reply func(req *gemini.GenerateRequest) (string, int)) *fakeProvider {
	t.Helper()
	p := &fakeProvider{reply: reply}
	p.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req gemini.GenerateRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))

		p.mu.Lock()
		p.requests = append(p.requests, req)
		p.mu.Unlock()

		text, status := p.reply(&req)
		if status != http.StatusOK {
			w.WriteHeader(status)
			json.NewEncoder(w).Encode(map[string]any{
				"error": map[string]any{"code": status, "message": "boom"},
			})
			return
		}
		json.NewEncoder(w).Encode(gemini.GenerateResponse{
			Candidates: []gemini.Candidate{{Content: gemini.ModelText(text)}},
		})
	}))
	t.Cleanup(p.server.Close)
	return p
}

func (p *fakeProvider) tutor() *Tutor {
	return NewTutor(gemini.NewClient(&gemini.Config{
		BaseURL: p.server.URL,
		Timeout: 5 * time.Second,
	}))
}

func (p *fakeProvider) recorded() []gemini.GenerateRequest {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]gemini.GenerateRequest, len(p.requests))
	copy(out, p.requests)
	return out
}

func systemText(req *gemini.GenerateRequest) string {
	if req.SystemInstruction == nil || len(req.SystemInstruction.Parts) == 0 {
		return ""
	}
	return req.SystemInstruction.Parts[0].Text
}

func TestAskReturnsRawText(t *testing.T) {
	p := newFakeProvider(t, func(req *gemini.GenerateRequest) (string, int) {
		return "It is how plants turn light into energy.", http.StatusOK
	})

	answer, err := p.tutor().Ask(context.Background(), "What is it?", "Photosynthesis", testKey)
	require.NoError(t, err)
	assert.Equal(t, "It is how plants turn light into energy.", answer)

	reqs := p.recorded()
	require.Len(t, reqs, 1)
	assert.Contains(t, systemText(&reqs[0]), "Photosynthesis")
	require.Len(t, reqs[0].Contents, 1)
	assert.Equal(t, "What is it?", reqs[0].Contents[0].Parts[0].Text)
}

func TestAnalyzeTopicParsesStructuredOutput(t *testing.T) {
	structured := `{
		"main_topic": "Recursion",
		"sub_topics": ["base case", "recursive case"],
		"real_world_examples": ["directory trees", "russian dolls"],
		"connection_to_main_topic": "each subtopic is a part of every recursive definition",
		"future_learning_resources": ["https://example.com/recursion"],
		"quizz_me_on_it": ["What stops a recursion? A base case."]
	}`
	p := newFakeProvider(t, func(req *gemini.GenerateRequest) (string, int) {
		return "```json\n" + structured + "\n```", http.StatusOK
	})

	explanation, err := p.tutor().AnalyzeTopic(context.Background(), "Explain it", "Recursion", testKey)
	require.NoError(t, err)
	assert.Equal(t, "Recursion", explanation.MainTopic)
	assert.NotEmpty(t, explanation.SubTopics)
	assert.NotEmpty(t, explanation.RealWorldExamples)
	assert.NotEmpty(t, explanation.ConnectionToMainTopic)
	assert.NotEmpty(t, explanation.FutureLearningResources)
	assert.NotEmpty(t, explanation.QuizzMeOnIt)

	reqs := p.recorded()
	require.Len(t, reqs, 1)
	assert.Contains(t, systemText(&reqs[0]), "format instructions")
}

func TestAnalyzeTopicFallsBackOnMalformedOutput(t *testing.T) {
	p := newFakeProvider(t, func(req *gemini.GenerateRequest) (string, int) {
		return "Recursion is when a function calls itself.", http.StatusOK
	})

	explanation, err := p.tutor().AnalyzeTopic(context.Background(), "Explain it", "Recursion", testKey)
	assert.Nil(t, explanation, "no partial object on parse failure")

	var parseErr *ParseError
	require.ErrorAs(t, err, &parseErr)
	assert.Equal(t, "Recursion is when a function calls itself.", parseErr.Raw)
}

func TestAnalyzeTopicRejectsPartialObject(t *testing.T) {
	// Valid JSON, but five of the six required fields are missing. That must
	// fall back exactly like unparsable output, never a partial object.
	p := newFakeProvider(t, func(req *gemini.GenerateRequest) (string, int) {
		return `{"main_topic": "Recursion"}`, http.StatusOK
	})

	explanation, err := p.tutor().AnalyzeTopic(context.Background(), "Explain it", "Recursion", testKey)
	assert.Nil(t, explanation)

	var parseErr *ParseError
	require.ErrorAs(t, err, &parseErr)
	assert.Equal(t, `{"main_topic": "Recursion"}`, parseErr.Raw)
}

func TestAnalyzeTopicRejectsEmptyListField(t *testing.T) {
	p := newFakeProvider(t, func(req *gemini.GenerateRequest) (string, int) {
		return `{
			"main_topic": "Recursion",
			"sub_topics": [],
			"real_world_examples": ["directory trees"],
			"connection_to_main_topic": "c",
			"future_learning_resources": ["r"],
			"quizz_me_on_it": ["q"]
		}`, http.StatusOK
	})

	explanation, err := p.tutor().AnalyzeTopic(context.Background(), "Explain it", "Recursion", testKey)
	assert.Nil(t, explanation)

	var parseErr *ParseError
	require.ErrorAs(t, err, &parseErr)
}

func TestAnalyzeParallelReturnsFourPerspectives(t *testing.T) {
	p := newFakeProvider(t, func(req *gemini.GenerateRequest) (string, int) {
		system := systemText(req)
		switch {
		case strings.Contains(system, "simple explainer"):
			return "simple answer", http.StatusOK
		case strings.Contains(system, "technical expert"):
			return "technical answer", http.StatusOK
		case strings.Contains(system, "coding assistant"):
			return "code answer", http.StatusOK
		case strings.Contains(system, "historical analyst"):
			return "history answer", http.StatusOK
		}
		return "unexpected prompt", http.StatusOK
	})

	results, err := p.tutor().AnalyzeParallel(context.Background(), "Explain it", "Recursion", testKey)
	require.NoError(t, err)

	assert.Len(t, results, 4)
	assert.Equal(t, "simple answer", results["simple"])
	assert.Equal(t, "technical answer", results["technical"])
	assert.Equal(t, "code answer", results["code"])
	assert.Equal(t, "history answer", results["history"])
}

func TestAnalyzeParallelPartialFailure(t *testing.T) {
	p := newFakeProvider(t, func(req *gemini.GenerateRequest) (string, int) {
		if strings.Contains(systemText(req), "historical analyst") {
			return "", http.StatusInternalServerError
		}
		return "fine", http.StatusOK
	})

	results, err := p.tutor().AnalyzeParallel(context.Background(), "Explain it", "Recursion", testKey)
	require.Error(t, err)

	// All four keys survive; the failed one carries the placeholder.
	assert.Len(t, results, 4)
	assert.Equal(t, FailedPerspective, results["history"])
	assert.Equal(t, "fine", results["simple"])
	assert.Equal(t, "fine", results["technical"])
	assert.Equal(t, "fine", results["code"])
}

func TestChatReplaysTranscriptInOrder(t *testing.T) {
	p := newFakeProvider(t, func(req *gemini.GenerateRequest) (string, int) {
		return "A" + string(rune('0'+len(req.Contents))), http.StatusOK
	})
	tutor := p.tutor()
	mem := NewMemory(50)

	first, err := tutor.Chat(context.Background(), "Q1", "Recursion", testKey, mem)
	require.NoError(t, err)

	_, err = tutor.Chat(context.Background(), "Q2", "Recursion", testKey, mem)
	require.NoError(t, err)

	reqs := p.recorded()
	require.Len(t, reqs, 2)

	// Second request: Q1 input, Q1 output, then Q2, in that order.
	second := reqs[1].Contents
	require.Len(t, second, 3)
	assert.Equal(t, "user", second[0].Role)
	assert.Equal(t, "Q1", second[0].Parts[0].Text)
	assert.Equal(t, "model", second[1].Role)
	assert.Equal(t, first, second[1].Parts[0].Text)
	assert.Equal(t, "user", second[2].Role)
	assert.Equal(t, "Q2", second[2].Parts[0].Text)

	assert.Equal(t, 2, mem.Len())
}

func TestChatRecordsFailedTurn(t *testing.T) {
	p := newFakeProvider(t, func(req *gemini.GenerateRequest) (string, int) {
		return "", http.StatusInternalServerError
	})
	mem := NewMemory(50)

	_, err := p.tutor().Chat(context.Background(), "Q1", "Recursion", testKey, mem)
	require.Error(t, err)

	turns := mem.Turns()
	require.Len(t, turns, 1, "the failed turn still lands in the transcript")
	assert.Equal(t, "Q1", turns[0].Input)
	assert.Equal(t, errorTurnOutput, turns[0].Output)
}
