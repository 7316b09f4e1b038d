package cli

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"trivia-quiz-service/internal/app"
	"trivia-quiz-service/internal/config"
	"trivia-quiz-service/internal/identity"
	memorystore "trivia-quiz-service/internal/infra/memory"
	pgstore "trivia-quiz-service/internal/infra/postgres"
	redisstore "trivia-quiz-service/internal/infra/redis"
	transport "trivia-quiz-service/internal/transport/http"
	"trivia-quiz-service/internal/trivia"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the quiz server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg, log); err != nil {
			return err
		}
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	source := trivia.NewClient(cfg.Trivia.BaseURL, nil)

	id := identity.New(identity.Config{URL: cfg.Auth.URL, Token: cfg.Auth.Token}, nil, log)
	// Identity bootstrap and category fetches are independent; neither
	// blocks the other or server startup.
	go id.Bootstrap(context.Background())

	store, err := buildLeaderboardStore(ctx, cfg, log)
	if err != nil {
		return err
	}

	handler := transport.NewSessionHandler(source, store, id, log)

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	mux.HandleFunc("/ws", handler.ServeWS)

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.WithField("port", finalPort).Info("starting trivia quiz service")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Error("failed to start server")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Info("shutting down server...")
	case <-ctx.Done():
		log.Info("context canceled, shutting down server...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// buildLeaderboardStore picks the persistence backend by configuration:
// Postgres, then Redis, then plain in-memory. The in-memory fallback keeps
// the leaderboard working but scores do not survive a restart.
func buildLeaderboardStore(ctx context.Context, cfg config.Config, log logrus.FieldLogger) (app.LeaderboardStore, error) {
	switch {
	case cfg.Postgres.URL != "":
		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return nil, err
		}
		return pgstore.NewLeaderboardStore(ctx, pool)
	case cfg.Redis.Addr != "":
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		return redisstore.NewLeaderboardStore(ctx, client, cfg.App.ID)
	default:
		log.Warn("no leaderboard backend configured, scores are kept in memory only")
		return memorystore.NewLeaderboardStore(), nil
	}
}
