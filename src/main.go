package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/humuhimi/hedera-hackathon-ai-theme-sub000/internal/a2a"
	"github.com/humuhimi/hedera-hackathon-ai-theme-sub000/internal/agentcard"
	"github.com/humuhimi/hedera-hackathon-ai-theme-sub000/internal/config"
	"github.com/humuhimi/hedera-hackathon-ai-theme-sub000/internal/events"
	"github.com/humuhimi/hedera-hackathon-ai-theme-sub000/internal/httpapi"
	"github.com/humuhimi/hedera-hackathon-ai-theme-sub000/internal/llm"
	"github.com/humuhimi/hedera-hackathon-ai-theme-sub000/internal/matcher"
	"github.com/humuhimi/hedera-hackathon-ai-theme-sub000/internal/negotiation"
	"github.com/humuhimi/hedera-hackathon-ai-theme-sub000/internal/service"
	"github.com/humuhimi/hedera-hackathon-ai-theme-sub000/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logLevel := slog.LevelInfo
	if cfg.Environment == "development" {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	slog.Info("starting agent-bazaar",
		"environment", cfg.Environment,
		"port", cfg.Port,
		"store_type", cfg.StoreType,
	)

	var st store.Store
	var mongoClient *mongo.Client

	switch cfg.StoreType {
	case "mongo":
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		clientOpts := options.Client().ApplyURI(cfg.MongoURI)
		var mongoErr error
		mongoClient, mongoErr = mongo.Connect(ctx, clientOpts)
		if mongoErr != nil {
			slog.Error("failed to connect to mongodb", "error", mongoErr)
			os.Exit(1)
		}
		if err := mongoClient.Ping(ctx, nil); err != nil {
			slog.Error("failed to ping mongodb", "error", err)
			os.Exit(1)
		}

		mongoStore := store.NewMongoStore(mongoClient, cfg.MongoDB)
		if err := mongoStore.EnsureIndexes(ctx); err != nil {
			slog.Warn("failed to create indexes", "error", err)
		}
		st = mongoStore
		slog.Info("using mongodb store", "uri", cfg.MongoURI, "db", cfg.MongoDB)

	default:
		st = store.NewMemoryStore()
		slog.Info("using in-memory store (development mode)")
	}
	defer func() { _ = st.Close() }()
	if mongoClient != nil {
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := mongoClient.Disconnect(ctx); err != nil {
				slog.Error("failed to disconnect mongodb", "error", err)
			}
		}()
	}

	if cfg.GeminiAPIKey == "" {
		slog.Error("GEMINI_API_KEY is required")
		os.Exit(1)
	}
	gemini, err := llm.NewGeminiClient(context.Background(), cfg.GeminiAPIKey, cfg.GeminiModel)
	if err != nil {
		slog.Error("failed to initialize gemini client", "error", err)
		os.Exit(1)
	}

	pub := events.NewPublisher("agent-bazaar")
	for eventType, url := range cfg.Webhooks {
		pub.RegisterEndpoint(eventType, url)
	}

	directory := agentcard.NewMemoryDirectory()
	resolver := agentcard.NewResolver(directory)
	protocol := a2a.NewClient(time.Duration(cfg.A2ATimeoutSeconds) * time.Second)

	engine := negotiation.NewEngine(st, protocol, gemini, pub, cfg.MaxRounds)
	m := matcher.New(gemini, cfg.MatchScoreFloor)
	orchestrator := service.NewOrchestrator(st, m, resolver, engine, pub)
	svc := service.New(st, directory, pub, orchestrator)

	router := httpapi.NewRouter(svc)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		slog.Info("http server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("http server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("server stopped")
}
