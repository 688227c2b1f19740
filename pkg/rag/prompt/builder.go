package prompt

import (
	"path/filepath"
	"strings"

	"doc-chat-be/pkg/store"
)

// FallbackInstruction prefixes direct answers for sessions without an index.
const FallbackInstruction = "Answer the question and also ask the user to upload files to ask questions from the files.\n"

// CondenseBuilder rewrites a context-dependent follow-up question into a
// standalone question using the prior conversation.
type CondenseBuilder struct {
	history []store.Turn
	query   string
}

func NewCondenseBuilder(history []store.Turn, query string) *CondenseBuilder {
	return &CondenseBuilder{
		history: history,
		query:   query,
	}
}

func (b *CondenseBuilder) Build() string {
	var prompt strings.Builder

	prompt.WriteString("Combine the chat history and follow up question into a standalone question.\n")
	prompt.WriteString("Chat History:\n")
	writeHistory(&prompt, b.history)
	prompt.WriteString("\nFollow up question: ")
	prompt.WriteString(b.query)
	prompt.WriteString("\n\nStandalone question:")

	return prompt.String()
}

// AnswerBuilder composes the final answering prompt: retrieved context,
// the full chat history, and the user's original question.
type AnswerBuilder struct {
	chunks  []store.Chunk
	history []store.Turn
	query   string
}

func NewAnswerBuilder(chunks []store.Chunk, history []store.Turn, query string) *AnswerBuilder {
	return &AnswerBuilder{
		chunks:  chunks,
		history: history,
		query:   query,
	}
}

func (b *AnswerBuilder) Build() string {
	var prompt strings.Builder

	b.writeTask(&prompt)
	b.writeContext(&prompt)
	b.writeHistory(&prompt)
	b.writeQuestion(&prompt)

	return prompt.String()
}

func (b *AnswerBuilder) writeTask(prompt *strings.Builder) {
	prompt.WriteString("Answer the question based on the context and chat history.\n")
	prompt.WriteString("If you cannot find the answer in the context, ask more related questions from the user.\n")
	prompt.WriteString("Mention the name of the documents you used in your answer.\n\n")
}

func (b *AnswerBuilder) writeContext(prompt *strings.Builder) {
	prompt.WriteString("context:\n")
	for _, chunk := range b.chunks {
		prompt.WriteString("Document Content: ")
		prompt.WriteString(chunk.Content)
		prompt.WriteString("\nDocument Source: ")
		// Only the basename is ever shown to the model, never a full path.
		prompt.WriteString(filepath.Base(chunk.Source))
		prompt.WriteString("\n\n")
	}
}

func (b *AnswerBuilder) writeHistory(prompt *strings.Builder) {
	prompt.WriteString("chat_history:\n")
	writeHistory(prompt, b.history)
	prompt.WriteString("\n")
}

func (b *AnswerBuilder) writeQuestion(prompt *strings.Builder) {
	prompt.WriteString("question:\n")
	prompt.WriteString(b.query)
	prompt.WriteString("\n\nAnswer:")
}

func writeHistory(prompt *strings.Builder, history []store.Turn) {
	for _, turn := range history {
		prompt.WriteString("Human: ")
		prompt.WriteString(turn.Question)
		prompt.WriteString("\nAssistant: ")
		prompt.WriteString(turn.Answer)
		prompt.WriteString("\n")
	}
}
