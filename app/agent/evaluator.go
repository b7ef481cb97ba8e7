package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"docqa/model"
	"docqa/types"
)

const evaluationPrompt = `Based on the following query and relevant document clauses, evaluate the logic and determine the answer.

Query: %s

Relevant Clauses:
%s

Provide a detailed evaluation that includes:
1. A direct answer to the query
2. Reasoning for your answer based on the clauses
3. Any conditions or limitations mentioned in the clauses
4. A confidence score (0-1) indicating how certain you are of the answer

Return a JSON object with the following structure:
{
    "answer": "Direct answer to the query",
    "reasoning": "Detailed reasoning for the answer",
    "conditions": ["Condition 1", "Condition 2", ...],
    "confidence": 0.95
}`

const evaluatorSystem = "You are an expert at analyzing insurance policies and legal documents to provide accurate answers."

// fallbackEvaluation is returned when the model's output cannot be decoded.
var fallbackEvaluation = types.Evaluation{
	Answer:     "Unable to determine answer from provided clauses.",
	Reasoning:  "Error processing the clauses.",
	Conditions: []string{},
	Confidence: 0.0,
}

// LogicEvaluator asks the model for a structured judgment over the
// retrieved clauses.
type LogicEvaluator struct {
	llm model.ChatModel
}

func NewLogicEvaluator(llm model.ChatModel) *LogicEvaluator {
	return &LogicEvaluator{llm: llm}
}

// EvaluateLogic returns the model's evaluation of the question against the
// clauses. Output that cannot be decoded yields the fixed fallback, not an
// error; transport failures propagate.
func (e *LogicEvaluator) EvaluateLogic(ctx context.Context, question string, clauses []types.ClauseMatch) (types.Evaluation, error) {
	raw, err := e.llm.Chat(ctx, model.ChatRequest{
		System:      evaluatorSystem,
		Prompt:      fmt.Sprintf(evaluationPrompt, question, clauseBlock(clauses)),
		Temperature: 0.1,
		JSONOutput:  true,
	})
	if err != nil {
		return types.Evaluation{}, err
	}

	payload, err := model.ExtractJSON(raw)
	if err != nil {
		return fallbackEvaluation, nil
	}

	var eval types.Evaluation
	if err := json.Unmarshal([]byte(payload), &eval); err != nil {
		return fallbackEvaluation, nil
	}
	if eval.Conditions == nil {
		eval.Conditions = []string{}
	}
	return eval, nil
}

// clauseBlock renders the clauses as a numbered context block, 1-indexed
// in retrieval order.
func clauseBlock(clauses []types.ClauseMatch) string {
	parts := make([]string, len(clauses))
	for i, c := range clauses {
		parts[i] = fmt.Sprintf("Clause %d: %s", i+1, c.Content)
	}
	return strings.Join(parts, "\n\n")
}
