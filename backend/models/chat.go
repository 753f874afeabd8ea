package models

import "time"

// ConversationTurn is one (question, answer) pair in a session transcript.
type ConversationTurn struct {
	Input     string    `json:"input"`
	Output    string    `json:"output"`
	CreatedAt time.Time `json:"created_at"`
}

// TopicExplanation is the structured-analysis output schema. The model is
// instructed, not constrained, to emit it, so any of these may come back
// malformed and the caller falls back to raw text.
type TopicExplanation struct {
	MainTopic               string   `json:"main_topic"`
	SubTopics               []string `json:"sub_topics"`
	RealWorldExamples       []string `json:"real_world_examples"`
	ConnectionToMainTopic   string   `json:"connection_to_main_topic"`
	FutureLearningResources []string `json:"future_learning_resources"`
	QuizzMeOnIt             []string `json:"quizz_me_on_it"`
}
