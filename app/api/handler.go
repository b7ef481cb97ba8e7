package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	"docqa/cache"
	"docqa/loader"
	"docqa/model"
	"docqa/store"
	"docqa/types"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const (
	// Successful responses are cached for 30 minutes; identical requests
	// inside the window skip the whole pipeline, ingestion included.
	responseTTL = 1800 * time.Second

	searchTopK = 5
)

// IntentExtractor classifies a question; it degrades internally and never fails.
type IntentExtractor interface {
	ExtractIntent(ctx context.Context, question string) types.Intent
}

// LogicEvaluator produces a structured judgment over retrieved clauses.
type LogicEvaluator interface {
	EvaluateLogic(ctx context.Context, question string, clauses []types.ClauseMatch) (types.Evaluation, error)
}

// AnswerGenerator produces the final answer text from an evaluation.
type AnswerGenerator interface {
	GenerateAnswer(ctx context.Context, question string, eval types.Evaluation) (string, error)
}

// RunHandler sequences the QA pipeline: process document, embed and upsert
// chunks, then per question run intent extraction, similarity search, logic
// evaluation and answer generation.
type RunHandler struct {
	logger    *slog.Logger
	processor loader.DocumentProcessor
	embedder  model.EmbedderInterface
	vectors   store.VectorStorer
	intents   IntentExtractor
	evaluator LogicEvaluator
	generator AnswerGenerator
	cache     cache.ResponseCache
}

func NewRunHandler(
	processor loader.DocumentProcessor,
	embedder model.EmbedderInterface,
	vectors store.VectorStorer,
	intents IntentExtractor,
	evaluator LogicEvaluator,
	generator AnswerGenerator,
	respCache cache.ResponseCache,
) *RunHandler {
	return &RunHandler{
		logger:    slog.Default(),
		processor: processor,
		embedder:  embedder,
		vectors:   vectors,
		intents:   intents,
		evaluator: evaluator,
		generator: generator,
		cache:     respCache,
	}
}

func (h *RunHandler) HandleRun(c *fiber.Ctx) error {
	var params types.RunRequest
	if c.BodyParser(&params) != nil {
		return ErrBadRequest()
	}
	if errors := types.Validate(&params); len(errors) > 0 {
		return NewValidationError(errors)
	}

	ctx := c.UserContext()
	reqID := uuid.NewString()

	// The cache key is the exact request body, so a repeated submission
	// returns the earlier response verbatim.
	key := cache.Key(c.Body())
	if payload, ok, err := h.cache.Get(ctx, key); err != nil {
		h.logger.Warn("cache read failed, treating as miss", "request_id", reqID, "error", err)
	} else if ok {
		h.logger.Info("cache hit", "request_id", reqID)
		c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
		return c.Send(payload)
	}

	answers, err := h.runPipeline(ctx, reqID, params)
	if err != nil {
		h.logger.Error("pipeline failed", "request_id", reqID, "error", err)
		return ErrInternal("Error processing request: " + err.Error())
	}

	resp := types.RunResponse{Answers: answers}
	payload, err := json.Marshal(resp)
	if err != nil {
		return ErrInternal("Error processing request: " + err.Error())
	}

	if err := h.cache.Set(ctx, key, payload, responseTTL); err != nil {
		h.logger.Warn("cache write failed", "request_id", reqID, "error", err)
	}

	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	return c.Send(payload)
}

func (h *RunHandler) runPipeline(ctx context.Context, reqID string, params types.RunRequest) ([]string, error) {
	docID, chunks, err := h.processor.Process(ctx, params.Documents)
	if err != nil {
		return nil, err
	}
	h.logger.Info("document processed", "request_id", reqID, "doc_id", docID, "chunks", len(chunks))

	texts := make([]string, len(chunks))
	for i := range chunks {
		texts[i] = chunks[i].Content
	}
	vectors, err := h.embedder.Embed(ctx, texts)
	if err != nil {
		return nil, err
	}
	if err := h.vectors.Upsert(ctx, docID, chunks, vectors); err != nil {
		return nil, err
	}

	answers := make([]string, 0, len(params.Questions))
	for _, question := range params.Questions {
		answer, err := h.answerQuestion(ctx, docID, question)
		if err != nil {
			return nil, err
		}
		answers = append(answers, answer)
	}
	return answers, nil
}

func (h *RunHandler) answerQuestion(ctx context.Context, docID, question string) (string, error) {
	intent := h.intents.ExtractIntent(ctx, question)

	// Entities from the extracted intent sharpen the retrieval query.
	searchText := question
	if len(intent.Entities) > 0 {
		searchText = question + " " + strings.Join(intent.Entities, " ")
	}

	queryVectors, err := h.embedder.Embed(ctx, []string{searchText})
	if err != nil {
		return "", err
	}

	clauses, err := h.vectors.Search(ctx, queryVectors[0], docID, searchTopK)
	if err != nil {
		return "", err
	}

	eval, err := h.evaluator.EvaluateLogic(ctx, question, clauses)
	if err != nil {
		return "", err
	}

	return h.generator.GenerateAnswer(ctx, question, eval)
}
