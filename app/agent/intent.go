package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"docqa/model"
	"docqa/types"
)

const intentPrompt = `Analyze the following query and extract:
1. The main intent or question being asked
2. Key entities or terms that are important for retrieval
3. The type of information being requested

Query: %s

Return a JSON object with the following structure:
{
    "intent": "Brief description of the main intent",
    "entities": ["entity1", "entity2", ...],
    "information_type": "Type of information requested"
}`

// Ordered keyword tables for domain detection. First matching domain wins.
var domainKeywords = []struct {
	domain   string
	keywords []string
}{
	{"insurance", []string{"policy", "coverage", "premium", "insurance", "claim"}},
	{"legal", []string{"contract", "agreement", "clause", "legal", "law"}},
	{"hr", []string{"employee", "hr", "human resources", "leave", "termination"}},
	{"compliance", []string{"compliance", "regulation", "audit", "standard"}},
}

// IntentExtractor asks the model for a structured reading of a question,
// framed by the detected document domain.
type IntentExtractor struct {
	llm model.ChatModel
}

func NewIntentExtractor(llm model.ChatModel) *IntentExtractor {
	return &IntentExtractor{llm: llm}
}

// ExtractIntent never fails: when the model call or its output cannot be
// used, it degrades to treating the whole question as the intent.
func (e *IntentExtractor) ExtractIntent(ctx context.Context, question string) types.Intent {
	fallback := types.Intent{
		Intent:          question,
		Entities:        []string{},
		InformationType: "general",
	}

	domain := DetectDomain(question)
	system := fmt.Sprintf("You are an expert at analyzing queries for %s document retrieval systems.", domain)

	raw, err := e.llm.Chat(ctx, model.ChatRequest{
		System:      system,
		Prompt:      fmt.Sprintf(intentPrompt, question),
		Temperature: 0.1,
		JSONOutput:  true,
	})
	if err != nil {
		return fallback
	}

	payload, err := model.ExtractJSON(raw)
	if err != nil {
		return fallback
	}

	var intent types.Intent
	if err := json.Unmarshal([]byte(payload), &intent); err != nil {
		return fallback
	}
	if intent.Entities == nil {
		intent.Entities = []string{}
	}
	return intent
}

// DetectDomain classifies a question into a fixed document domain by
// case-insensitive keyword matching, in table order.
func DetectDomain(question string) string {
	lower := strings.ToLower(question)
	for _, d := range domainKeywords {
		for _, kw := range d.keywords {
			if strings.Contains(lower, kw) {
				return d.domain
			}
		}
	}
	return "general"
}
