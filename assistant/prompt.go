package assistant

// Instruction templates for the generation call. The contextual variant
// embeds the retrieved context and tells the model to prefer it but fall
// back to general knowledge when the context doesn't answer the question.
const (
	systemPromptWithContext = "You are a helpful research assistant. Use the following information to answer the user's question. If the information doesn't contain the answer, say so honestly and provide general information if possible.\n\nContext:\n"

	systemPromptGeneral = "You are a helpful research assistant. Answer the user's question based on your knowledge. Be concise, accurate, and helpful."
)

// BuildSystemPrompt returns the system instruction for a generation call.
// An empty context means "no retrieved context" and yields the general
// knowledge instruction, never an error.
func BuildSystemPrompt(context string) string {
	if context == "" {
		return systemPromptGeneral
	}
	return systemPromptWithContext + context
}
