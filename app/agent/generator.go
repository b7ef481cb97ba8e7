package agent

import (
	"context"
	"fmt"
	"strings"

	"docqa/model"
	"docqa/types"
)

const answerPrompt = `Generate a comprehensive answer to the following query based on the evaluation result.

Query: %s

Evaluation Result:
%s

Generate a response that:
1. Directly answers the query
2. Includes any relevant conditions or limitations
3. Is clear, concise, and easy to understand
4. Cites the relevant clauses that support the answer`

const generatorSystem = "You are an expert at generating clear and comprehensive answers based on document analysis."

// AnswerGenerator turns a structured evaluation into the final
// natural-language answer.
type AnswerGenerator struct {
	llm model.ChatModel
}

func NewAnswerGenerator(llm model.ChatModel) *AnswerGenerator {
	return &AnswerGenerator{llm: llm}
}

// GenerateAnswer returns the model's free-text answer as-is. There is no
// fallback here; failures propagate to the request boundary.
func (g *AnswerGenerator) GenerateAnswer(ctx context.Context, question string, eval types.Evaluation) (string, error) {
	evalText := fmt.Sprintf("Answer: %s\nReasoning: %s\nConditions: %s\nConfidence: %.2f",
		eval.Answer, eval.Reasoning, strings.Join(eval.Conditions, ", "), eval.Confidence)

	return g.llm.Chat(ctx, model.ChatRequest{
		System:      generatorSystem,
		Prompt:      fmt.Sprintf(answerPrompt, question, evalText),
		Temperature: 0.2,
	})
}
