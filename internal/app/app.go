package app

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/quizarena/trivia-duel/internal/auth"
	"github.com/quizarena/trivia-duel/internal/config"
	"github.com/quizarena/trivia-duel/internal/db/repository"
	"github.com/quizarena/trivia-duel/internal/duel"
	duelqueue "github.com/quizarena/trivia-duel/internal/duel/queue"
	"github.com/quizarena/trivia-duel/internal/duel/scoring"
	"github.com/quizarena/trivia-duel/internal/leaderboard"
	"github.com/quizarena/trivia-duel/internal/logging"
	"github.com/quizarena/trivia-duel/internal/question"
	"github.com/quizarena/trivia-duel/internal/server"
	ws "github.com/quizarena/trivia-duel/pkg/http/ws"
)

// Application aggregates shared infrastructure (DB, cache, HTTP server).
type Application struct {
	cfg    *config.App
	logger zerolog.Logger

	pool  *pgxpool.Pool
	redis *redis.Client
	http  *http.Server

	lbBroadcaster *leaderboard.Broadcaster
	bgCancels     []context.CancelFunc
}

// New bootstraps config, logger, Postgres, Redis and the duel services.
func New(ctx context.Context, cfg *config.App) (*Application, error) {
	logger := logging.New(cfg.Name, cfg.Env)
	logger.Info().Msg("starting application bootstrap")

	connString := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s pool_max_conns=10",
		cfg.Postgres.Host, cfg.Postgres.Port, cfg.Postgres.User, cfg.Postgres.Password, cfg.Postgres.Database, cfg.Postgres.SSLMode)

	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		DB:       cfg.Redis.DB,
		PoolSize: cfg.Redis.PoolSize,
	})

	verifier := auth.NewVerifier([]byte(cfg.Security.JWTSecret))

	questionStore := question.NewPostgresStore(pool)
	questionCache := question.NewCache(redisClient, 0)
	questionSvc := question.NewService(questionStore, questionCache, time.Now().UnixNano(), logger)

	scoringEngine := scoring.NewEngine(scoring.DefaultConfig())
	validator := question.NewValidator(scoringEngine, cfg.Duel.TimePerQuestion)

	outcomeRepo := repository.NewOutcomeRepository(pool)

	leaderboardSvc := leaderboard.NewService(redisClient, logger, leaderboard.ServiceOptions{
		TopN:          cfg.Leaderboard.TopN,
		PubSubChannel: cfg.Leaderboard.PubSubChannel,
	})

	wsHub := ws.NewHub(logger)

	duelCfg := duel.Config{
		QuestionCount:     cfg.Duel.QuestionCount,
		TimePerQuestion:   cfg.Duel.TimePerQuestion,
		TimeoutBuffer:     cfg.Duel.TimeoutBuffer,
		CountdownSeconds:  cfg.Duel.CountdownSeconds,
		RoundDisplayDelay: cfg.Duel.RoundDisplayDelay,
		ReadyGracePeriod:  cfg.Duel.ReadyGracePeriod,
	}

	duelEngine := duel.NewEngine(
		duelCfg,
		duelqueue.New(logger),
		duel.NewRegistry(logger),
		questionSvc,
		wsHub,
		validator,
		outcomeRepo,
		leaderboardSvc,
		logger,
	)

	duelHandler := duel.NewHandler(duelEngine, wsHub, verifier, logger)
	lbBroadcaster := leaderboard.NewBroadcaster(redisClient, wsHub, cfg.Leaderboard.PubSubChannel, logger)
	lbHTTPHandler := leaderboard.NewHTTPHandler(leaderboardSvc, logger)

	apiServer := server.NewHTTPServer(cfg, logger, pool, redisClient, duelHandler.HandleWebSocket, lbHTTPHandler.HandleGet)

	return &Application{
		cfg:           cfg,
		logger:        logger,
		pool:          pool,
		redis:         redisClient,
		http:          apiServer,
		lbBroadcaster: lbBroadcaster,
		bgCancels:     make([]context.CancelFunc, 0, 1),
	}, nil
}

// Run starts the HTTP server and waits for termination signals.
func (a *Application) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	a.startBackgroundWorkers(ctx)

	go func() {
		a.logger.Info().Str("addr", a.cfg.HTTPAddr).Msg("http server listening")
		if err := a.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		a.logger.Info().Str("signal", sig.String()).Msg("shutdown signal received")
	case err := <-errCh:
		return fmt.Errorf("http server error: %w", err)
	case <-ctx.Done():
		a.logger.Warn().Msg("context canceled")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.GracefulShutdownTimeout)
	defer cancel()

	if err := a.http.Shutdown(shutdownCtx); err != nil {
		a.logger.Error().Err(err).Msg("http shutdown error")
	}

	for _, cancel := range a.bgCancels {
		cancel()
	}

	a.pool.Close()
	if err := a.redis.Close(); err != nil {
		a.logger.Error().Err(err).Msg("redis shutdown error")
	}

	a.logger.Info().Msg("shutdown complete")
	return nil
}

func (a *Application) startBackgroundWorkers(ctx context.Context) {
	if a.lbBroadcaster != nil {
		bgCtx, cancel := context.WithCancel(ctx)
		a.bgCancels = append(a.bgCancels, cancel)
		go func() {
			if err := a.lbBroadcaster.Run(bgCtx); err != nil && err != context.Canceled {
				a.logger.Warn().Err(err).Msg("leaderboard broadcaster stopped")
			}
		}()
	}
}
