package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awsssm "github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/qdrant/go-client/qdrant"

	"statute-agent/handler"
	"statute-agent/internal/integrations/embeddings"
	"statute-agent/internal/integrations/paramstore"
	"statute-agent/internal/integrations/together"
	"statute-agent/internal/repository"
	"statute-agent/internal/usecase"
)

func main() {
	_ = godotenv.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	ctx := context.Background()

	// ---- Configuration (read only here) ----
	port := getEnv("PORT", "8080")
	webDir := getEnv("WEB_DIR", "./web")

	qdrantHost := getEnv("QDRANT_HOST", "localhost")
	qdrantPort := envInt("QDRANT_PORT", 6334)
	collection := mustEnv(logger, "QDRANT_COLLECTION")

	embeddingsBaseURL := mustEnv(logger, "EMBEDDINGS_BASE_URL")
	embeddingsModel := getEnv("EMBEDDINGS_MODEL", "text-embedding-3-small")
	embeddingsKeyParam := getEnv("EMBEDDINGS_API_KEY_PARAM", "")

	togetherBaseURL := getEnv("TOGETHER_BASE_URL", "")
	togetherModel := getEnv("TOGETHER_MODEL", "mistralai/Mistral-7B-Instruct-v0.2")
	togetherKeyParam := getEnv("TOGETHER_API_KEY_PARAM", "TOGETHER_API_KEY")

	paramPrefix := getEnv("PARAM_PREFIX", "")

	retrievalK := envInt("RETRIEVAL_K", 4)
	memoryWindow := envInt("MEMORY_WINDOW", 2)
	temperature := envFloat("GEN_TEMPERATURE", 0.5)
	maxTokens := envInt("GEN_MAX_TOKENS", 200)
	tokenBudget := envInt("PROMPT_TOKEN_BUDGET", 1800)
	requestTimeout := time.Duration(envInt("REQUEST_TIMEOUT_SECS", 30)) * time.Second

	// ---- Secret source ----
	// SSM when a parameter prefix is configured, plain environment otherwise.
	var secrets paramstore.Getter = paramstore.Env{}
	if paramPrefix != "" {
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
		if err != nil {
			logger.Error("failed to load AWS config", "err", err)
			os.Exit(1)
		}
		secrets, err = paramstore.NewSSM(awsssm.NewFromConfig(awsCfg), paramPrefix)
		if err != nil {
			logger.Error("failed to create SSM paramstore", "err", err)
			os.Exit(1)
		}
	}

	// ---- Clients ----
	embedClient, err := embeddings.NewClient(secrets, embeddingsKeyParam, embeddingsBaseURL, embeddingsModel)
	if err != nil {
		logger.Error("failed to create embeddings client", "err", err)
		os.Exit(1)
	}

	qdrantClient, err := qdrant.NewClient(&qdrant.Config{Host: qdrantHost, Port: qdrantPort})
	if err != nil {
		logger.Error("failed to connect to qdrant", "err", err)
		os.Exit(1)
	}
	index, err := repository.New(qdrantClient, embedClient, collection)
	if err != nil {
		logger.Error("failed to create passage index", "err", err)
		os.Exit(1)
	}
	// The process must not serve traffic without an index.
	if err := index.Ping(ctx); err != nil {
		logger.Error("passage index unavailable", "err", err)
		os.Exit(1)
	}
	logger.Info("passage index ready", "collection", collection)

	var togetherOpts []together.Option
	if togetherBaseURL != "" {
		togetherOpts = append(togetherOpts, together.WithBaseURL(togetherBaseURL))
	}
	generator, err := together.NewClient(secrets, togetherKeyParam, togetherModel, togetherOpts...)
	if err != nil {
		logger.Error("failed to create together client", "err", err)
		os.Exit(1)
	}

	// ---- Services ----
	catalog, err := usecase.NewCatalog(nil)
	if err != nil {
		logger.Error("failed to load response catalog", "err", err)
		os.Exit(1)
	}
	answers, err := usecase.NewAnswerService(index, generator, usecase.AnswerServiceConfig{
		RetrievalK:        retrievalK,
		Temperature:       temperature,
		MaxTokens:         maxTokens,
		PromptTokenBudget: tokenBudget,
	}, logger)
	if err != nil {
		logger.Error("failed to create answer service", "err", err)
		os.Exit(1)
	}
	sessions := usecase.NewSessionRegistry(memoryWindow)
	dispatch, err := usecase.NewDispatcher(catalog, answers, sessions)
	if err != nil {
		logger.Error("failed to create dispatcher", "err", err)
		os.Exit(1)
	}

	// ---- HTTP server ----
	h, err := handler.NewHandler(dispatch, webDir, requestTimeout, logger)
	if err != nil {
		logger.Error("failed to create handler", "err", err)
		os.Exit(1)
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	h.Register(router)

	srv := &http.Server{Addr: ":" + port, Handler: router}

	go func() {
		logger.Info("listening", "port", port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "err", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "err", err)
	}
	logger.Info("stopped")
}

func mustEnv(logger *slog.Logger, key string) string {
	v := os.Getenv(key)
	if v == "" {
		logger.Error("required environment variable is not set", "key", key)
		os.Exit(1)
	}
	return v
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func envFloat(key string, def float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return def
	}
	return f
}
