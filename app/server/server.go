package server

import (
	"context"
	"fmt"
	"log/slog"

	"docqa/app/agent"
	"docqa/app/api"
	"docqa/app/middleware"
	"docqa/cache"
	"docqa/loader"
	"docqa/model"
	"docqa/store"
	"docqa/types"

	"github.com/gofiber/fiber/v2"
)

var config = fiber.Config{
	ErrorHandler: api.ErrorHandler,
}

type Server struct {
	listenAddr string
	logger     *slog.Logger
	app        *fiber.App
}

// New constructs every collaborator explicitly and wires the routes.
// Nothing here is a process-global; swapping a collaborator for a test
// double happens through api.NewRunHandler.
func New(ctx context.Context, cfg types.Config) (*Server, error) {
	llm := model.NewGrokClient(cfg.GrokBaseURL, cfg.GrokAPIKey, cfg.GrokModel)
	embedder := model.NewGrokEmbedder(cfg.GrokBaseURL, cfg.GrokAPIKey, cfg.EmbeddingModel)

	var vectors store.VectorStorer
	switch cfg.VectorStore {
	case "postgres":
		pg, err := store.NewPostgresStore(ctx, cfg.PostgresConnStr)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to Postgres: %w", err)
		}
		if err := pg.Init(ctx); err != nil {
			return nil, fmt.Errorf("failed to create tables: %w", err)
		}
		vectors = pg
	default:
		vectors = store.NewPineconeStore(store.PineconeConfig{
			Host:      cfg.PineconeIndexHost,
			APIKey:    cfg.PineconeAPIKey,
			Namespace: cfg.PineconeNamespace,
		})
	}

	respCache, err := cache.NewRedisCache(cfg.RedisURL)
	if err != nil {
		return nil, err
	}

	processor := loader.New(cfg.ChunkSize, cfg.ChunkOverlap, cfg.ConverterURL)

	runHandler := api.NewRunHandler(
		processor,
		embedder,
		vectors,
		agent.NewIntentExtractor(llm),
		agent.NewLogicEvaluator(llm),
		agent.NewAnswerGenerator(llm),
		respCache,
	)
	checkHandler := api.NewCheckHandler()

	app := fiber.New(config)
	app.Get("/check/healthy", checkHandler.HandleHealthy)

	hackrx := app.Group("/hackrx", middleware.BearerAuth(cfg.APIToken))
	hackrx.Post("/run", runHandler.HandleRun)

	return &Server{
		listenAddr: cfg.ServerAddr,
		logger:     slog.Default(),
		app:        app,
	}, nil
}

func (s *Server) Run() {
	if err := s.app.Listen(s.listenAddr); err != nil {
		s.logger.Error("error to start server", "error", err.Error())
	}
}

func (s *Server) Stop() {
	if err := s.app.Shutdown(); err != nil {
		s.logger.Error("error during shutdown", "error", err.Error())
	}
	s.logger.Info("server stopped")
}
