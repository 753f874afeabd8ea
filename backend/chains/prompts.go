// Package chains implements the four request shapes of the tutor: plain
// question answering, structured topic analysis, parallel multi-perspective
// analysis and memory-backed chat.
package chains

import "strings"

// System prompt templates. Placeholders are bound with renderPrompt.
const (
	tutorPrompt = "You are a helpful and fun tutor who understands the {topic} well. " +
		"You will always respond in simple terms and explain the foundations of the {topic} clearly."

	structuredPrompt = tutorPrompt +
		" When you answer, make sure to follow the format instructions: {format_instructions}"

	simplePrompt = "You are a simple explainer who breaks down {topic} concepts into " +
		"easy-to-understand parts for beginners. Use analogies and simple language."

	technicalPrompt = "You are a technical expert in {topic} who provides detailed and in-depth " +
		"explanations with precise terminology. Use technical terms and provide comprehensive insights."

	codePrompt = "You are a coding assistant who provides code examples and explanations related " +
		"to {topic}. Focus on practical coding aspects and best practices."

	historyPrompt = "You are a historical analyst who explains the historical context and evolution " +
		"of {topic}. Provide timelines and significant milestones."
)

// formatInstructions tells the model how to shape structured-analysis output.
// It is an instruction, not a constraint; parsing may still fail.
const formatInstructions = "Respond with a single JSON object and nothing else. " +
	"The object must have exactly these fields:\n" +
	`"main_topic" (string): what is the main topic?` + "\n" +
	`"sub_topics" (array of strings): list all of the subtopics, with a very brief description of each subtopic` + "\n" +
	`"real_world_examples" (array of strings): provide real world examples for the sub_topics` + "\n" +
	`"connection_to_main_topic" (string): how does each subtopic connect to the main topic?` + "\n" +
	`"future_learning_resources" (array of strings): provide links to future learning resources for each subtopic` + "\n" +
	`"quizz_me_on_it" (array of strings): create a short quiz with answers to test my understanding of the main topic and subtopics` + "\n" +
	"Do not wrap the JSON in markdown fences or add commentary."

func renderPrompt(template, topic string) string {
	return strings.NewReplacer(
		"{topic}", topic,
		"{format_instructions}", formatInstructions,
	).Replace(template)
}
