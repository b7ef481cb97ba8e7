package types

// Chunk is one ordered piece of a processed document. Metadata carries
// whatever the loader knows about the chunk (source, index, token count)
// and travels with the vector into the index.
type Chunk struct {
	Content  string
	Metadata map[string]any
}

// Document is a processed source: a derived id plus its ordered chunks.
type Document struct {
	ID     string
	Source string
	Chunks []Chunk
}

// Intent is the structured reading of a question, as extracted by the model.
type Intent struct {
	Intent          string   `json:"intent"`
	Entities        []string `json:"entities"`
	InformationType string   `json:"information_type"`
}

// Evaluation is the model's structured judgment over retrieved clauses.
type Evaluation struct {
	Answer     string   `json:"answer"`
	Reasoning  string   `json:"reasoning"`
	Conditions []string `json:"conditions"`
	Confidence float64  `json:"confidence"`
}

// ClauseMatch is a single similarity-search hit, ranked by Score descending.
type ClauseMatch struct {
	ID       string
	Score    float64
	Content  string
	Metadata map[string]any
}
