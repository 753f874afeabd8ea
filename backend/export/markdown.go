// Package export renders a session transcript to Markdown for download.
// Despite the Drive wording this performs no upload; it only produces the
// file plus manual upload instructions.
package export

import (
	"fmt"
	"strings"
	"time"

	"ailearn/backend/models"
)

// Markdown renders the transcript with metadata, one section per turn, and
// the manual Google Drive upload steps at the end.
func Markdown(username, topic, model string, turns []models.ConversationTurn) ([]byte, error) {
	if len(turns) == 0 {
		return nil, fmt.Errorf("transcript has no messages")
	}

	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("# Learning session: %s\n\n", topic))
	sb.WriteString("## Session Information\n\n")
	sb.WriteString(fmt.Sprintf("- **User**: %s\n", username))
	sb.WriteString(fmt.Sprintf("- **Topic**: %s\n", topic))
	sb.WriteString(fmt.Sprintf("- **Model**: %s\n", model))
	sb.WriteString(fmt.Sprintf("- **Turns**: %d\n", len(turns)))
	sb.WriteString(fmt.Sprintf("- **Exported**: %s\n", time.Now().Format(time.RFC3339)))
	sb.WriteString("\n---\n\n")

	for i, turn := range turns {
		sb.WriteString(fmt.Sprintf("## Question %d\n\n", i+1))
		sb.WriteString(turn.Input)
		sb.WriteString("\n\n**Tutor:**\n\n")
		sb.WriteString(turn.Output)
		sb.WriteString("\n\n")
	}

	sb.WriteString("---\n\n")
	sb.WriteString("## Upload to Google Drive\n\n")
	sb.WriteString("1. Copy this file's content\n")
	sb.WriteString("2. Go to https://drive.google.com\n")
	sb.WriteString("3. Click \"New\" -> \"Google Docs\" (or \"Upload files\")\n")
	sb.WriteString("4. Paste the content or upload the file\n")
	sb.WriteString("5. Save it under your preferred name\n")

	return []byte(sb.String()), nil
}

// Filename builds a download name like chat_rag_2026-08-30.md.
func Filename(topic string) string {
	slug := strings.ToLower(strings.Join(strings.Fields(topic), "_"))
	if slug == "" {
		slug = "session"
	}
	return fmt.Sprintf("chat_%s_%s.md", slug, time.Now().Format("2006-01-02"))
}
