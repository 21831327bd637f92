package prompt

import (
	"fmt"
	"strings"

	"github.com/ternarybob/adjutant/internal/common"
	"github.com/ternarybob/adjutant/internal/interfaces"
	"github.com/ternarybob/adjutant/internal/models"
)

const systemPrompt = `You are an Enterprise AI Assistant helping employees find information and answer questions about company resources.

Instructions:
- Answer the question based on the provided context and tool results
- If you don't have enough information, say so clearly
- Be concise but comprehensive
- Use professional, helpful language
- If referencing specific documents or data, mention the source`

const (
	historyWindow    = 4
	historyCharLimit = 500
	toolCharLimit    = 1000
)

// Assemble builds the two-message prompt for the gateway: a fixed system
// persona plus a user message carrying the labeled context sections and the
// question. Pure and deterministic; identical inputs produce byte-identical
// output.
func Assemble(query, ragContext string, toolExecutions []models.ToolExecution, history []models.Message) []models.Message {
	var context strings.Builder

	if ragContext != "" && ragContext != interfaces.NoRelevantDocuments {
		context.WriteString("<context_from_documents>\n")
		context.WriteString(ragContext)
		context.WriteString("\n</context_from_documents>\n\n")
	}

	var toolText strings.Builder
	for _, exec := range toolExecutions {
		if !exec.Success || exec.Result == nil {
			continue
		}
		data := common.TruncateRunes(fmt.Sprintf("%v", exec.Result), toolCharLimit)
		toolText.WriteString(fmt.Sprintf("**%s**:\n%s\n\n", exec.ToolName, data))
	}
	if toolText.Len() > 0 {
		context.WriteString("<tool_results>\n")
		context.WriteString(toolText.String())
		context.WriteString("</tool_results>\n\n")
	}

	if len(history) > 0 {
		recent := history
		if len(recent) > historyWindow {
			recent = recent[len(recent)-historyWindow:]
		}

		var historyText strings.Builder
		for _, msg := range recent {
			content := common.TruncateRunes(msg.Content, historyCharLimit)
			historyText.WriteString(fmt.Sprintf("%s: %s\n", capitalize(msg.Role), content))
		}
		context.WriteString("<conversation_history>\n")
		context.WriteString(historyText.String())
		context.WriteString("</conversation_history>\n\n")
	}

	userContent := fmt.Sprintf("%s\n<user_question>\n%s\n</user_question>", context.String(), query)

	return []models.Message{
		{Role: "system", Content: systemPrompt},
		{Role: "user", Content: userContent},
	}
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
