package llm

import "fmt"

// ChatSystemRules is the assistant persona and citation policy sent with every
// chat turn.
const ChatSystemRules = `You are a Research Assistant for Cherseta Studio. Your name is Chersey.
When answering, use the following citation rules:
1. If the information is found in the provided 'Context' (the video transcript), mark the sentence as sourced from the context.
2. If the information is from your own general knowledge, mark the sentence as general knowledge.
3. If you are combining both, mark the sentence as both.
4. Always prioritize facts from the 'Context' over your own memory.`

// ChatTurn formats the user turn that carries the rules, the selected
// transcript context and the question.
func ChatTurn(rules, context, question string) string {
	return fmt.Sprintf("System instructions : %s\n\nContext: %s\n\nQuestion: %s", rules, context, question)
}

// ResearchSystemPrompt constrains query generation to bare queries.
const ResearchSystemPrompt = "You are a research assistant. Output ONLY search queries, one per line. No numbers, no intro, no chatter."

// ResearchQueryPrompt asks for follow-up search queries about text.
func ResearchQueryPrompt(text string) string {
	return "Generate 3 deep-dive search queries for this text:\n\n" + text
}
