package chains

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"golang.org/x/sync/errgroup"

	"ailearn/backend/gemini"
	"ailearn/backend/models"
)

// Perspective names for parallel analysis. The result map always contains
// exactly these keys.
var Perspectives = []string{"simple", "technical", "code", "history"}

var perspectivePrompts = map[string]string{
	"simple":    simplePrompt,
	"technical": technicalPrompt,
	"code":      codePrompt,
	"history":   historyPrompt,
}

// FailedPerspective fills a slot whose sub-call errored so the four-key
// contract of AnalyzeParallel holds even on partial failure.
const FailedPerspective = "Sorry, this perspective could not be generated."

// errorTurnOutput is recorded in the transcript when a memory-chat call
// fails, keeping the log consistent with what the user saw.
const errorTurnOutput = "[generation failed]"

// ParseError reports that structured-analysis output did not match the
// expected schema. Raw carries the unparsed model text so callers can fall
// back to displaying it.
type ParseError struct {
	Raw   string
	Cause error
}

func (e *ParseError) Error() string {
	return "structured output did not match the expected schema: " + e.Cause.Error()
}

func (e *ParseError) Unwrap() error {
	return e.Cause
}

// Tutor dispatches the four request shapes against the model client. It
// carries no cross-call state; memory-chat statefulness lives in the Memory
// passed by the caller.
type Tutor struct {
	client *gemini.Client
}

// NewTutor creates a tutor bound to the given model client.
func NewTutor(client *gemini.Client) *Tutor {
	return &Tutor{client: client}
}

// Ask is a single round trip: tutor system prompt plus the question, raw
// text back.
func (t *Tutor) Ask(ctx context.Context, question, topic, apiKey string) (string, error) {
	system := renderPrompt(tutorPrompt, topic)
	return t.client.Generate(ctx, apiKey, system, nil, question)
}

// AnalyzeTopic asks for a six-field structured explanation and parses the
// response. On a schema mismatch the returned error is a *ParseError whose
// Raw field holds the full model text.
func (t *Tutor) AnalyzeTopic(ctx context.Context, question, topic, apiKey string) (*models.TopicExplanation, error) {
	system := renderPrompt(structuredPrompt, topic)
	raw, err := t.client.Generate(ctx, apiKey, system, nil, question)
	if err != nil {
		return nil, err
	}
	return parseTopicExplanation(raw)
}

// AnalyzeParallel fans the question out to the four perspective prompts
// concurrently and joins at a single barrier. The map always has all four
// keys; a failed sub-call gets a placeholder value and the first error is
// returned alongside the partial result.
func (t *Tutor) AnalyzeParallel(ctx context.Context, question, topic, apiKey string) (map[string]string, error) {
	results := make([]string, len(Perspectives))

	var g errgroup.Group
	for i, name := range Perspectives {
		i := i
		system := renderPrompt(perspectivePrompts[name], topic)
		g.Go(func() error {
			answer, err := t.client.Generate(ctx, apiKey, system, nil, question)
			if err != nil {
				results[i] = FailedPerspective
				return err
			}
			results[i] = answer
			return nil
		})
	}
	err := g.Wait()

	out := make(map[string]string, len(Perspectives))
	for i, name := range Perspectives {
		out[name] = results[i]
	}
	return out, err
}

// Chat replays the full transcript ahead of the new question and appends the
// completed turn to mem. The whole transcript is resubmitted verbatim every
// call. A provider failure is still recorded as an error-placeholder turn so
// the log stays consistent.
func (t *Tutor) Chat(ctx context.Context, question, topic, apiKey string, mem *Memory) (string, error) {
	system := renderPrompt(tutorPrompt, topic)

	turns := mem.Turns()
	history := make([]gemini.Content, 0, len(turns)*2)
	for _, turn := range turns {
		history = append(history, gemini.UserText(turn.Input), gemini.ModelText(turn.Output))
	}

	answer, err := t.client.Generate(ctx, apiKey, system, history, question)
	if err != nil {
		mem.Append(question, errorTurnOutput)
		return "", err
	}
	mem.Append(question, answer)
	return answer, nil
}

// parseTopicExplanation decodes model text into the schema, tolerating
// markdown fences and surrounding prose. All six fields are required;
// valid JSON that leaves any of them empty is treated as a parse failure,
// never returned as a partial object.
func parseTopicExplanation(raw string) (*models.TopicExplanation, error) {
	text := strings.TrimSpace(raw)
	if start := strings.Index(text, "{"); start >= 0 {
		if end := strings.LastIndex(text, "}"); end > start {
			text = text[start : end+1]
		}
	}

	var explanation models.TopicExplanation
	if err := json.Unmarshal([]byte(text), &explanation); err != nil {
		return nil, &ParseError{Raw: raw, Cause: err}
	}

	if explanation.MainTopic == "" ||
		len(explanation.SubTopics) == 0 ||
		len(explanation.RealWorldExamples) == 0 ||
		explanation.ConnectionToMainTopic == "" ||
		len(explanation.FutureLearningResources) == 0 ||
		len(explanation.QuizzMeOnIt) == 0 {
		return nil, &ParseError{Raw: raw, Cause: errors.New("one or more required fields are missing or empty")}
	}
	return &explanation, nil
}
