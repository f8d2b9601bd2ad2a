package config

import (
	"context"
	"fmt"
	"time"

	"github.com/caarlos0/env/v10"
)

// App holds core runtime configuration shared across services.
type App struct {
	Name                    string        `env:"APP_NAME" envDefault:"trivia-duel"`
	Env                     string        `env:"APP_ENV" envDefault:"development"`
	HTTPAddr                string        `env:"HTTP_ADDR" envDefault:"0.0.0.0:8080"`
	GracefulShutdownTimeout time.Duration `env:"GRACEFUL_SHUTDOWN_SECONDS" envDefault:"20s"`

	Postgres    Postgres
	Redis       Redis
	Security    Security
	Duel        Duel
	Leaderboard Leaderboard
}

// Postgres captures connection info for the SQL database.
type Postgres struct {
	Host     string `env:"PG_HOST,notEmpty"`
	Port     int    `env:"PG_PORT" envDefault:"5432"`
	User     string `env:"PG_USER,notEmpty"`
	Password string `env:"PG_PASSWORD,notEmpty"`
	Database string `env:"PG_DATABASE,notEmpty"`
	SSLMode  string `env:"PG_SSL_MODE" envDefault:"disable"`
}

// Redis holds cache + leaderboard configuration.
type Redis struct {
	Addr     string `env:"REDIS_ADDR,notEmpty"`
	DB       int    `env:"REDIS_DB" envDefault:"0"`
	PoolSize int    `env:"REDIS_POOL_SIZE" envDefault:"20"`
}

// Security stores secrets for token verification.
type Security struct {
	JWTSecret string `env:"JWT_SECRET,notEmpty"`
}

// Duel groups gameplay timings and defaults.
type Duel struct {
	QuestionCount     int           `env:"DUEL_QUESTION_COUNT" envDefault:"10"`
	TimePerQuestion   time.Duration `env:"DUEL_TIME_PER_QUESTION" envDefault:"10s"`
	TimeoutBuffer     time.Duration `env:"DUEL_TIMEOUT_BUFFER" envDefault:"1s"`
	CountdownSeconds  int           `env:"DUEL_COUNTDOWN_SECONDS" envDefault:"3"`
	RoundDisplayDelay time.Duration `env:"DUEL_ROUND_DISPLAY_DELAY" envDefault:"3s"`
	ReadyGracePeriod  time.Duration `env:"DUEL_READY_GRACE_PERIOD" envDefault:"20s"`
}

// Leaderboard governs ranking reads and broadcast behavior.
type Leaderboard struct {
	TopN          int    `env:"LEADERBOARD_TOP_N" envDefault:"50"`
	PubSubChannel string `env:"LEADERBOARD_PUBSUB_CHANNEL" envDefault:"lb:updates"`
}

// Load parses environment variables into App config.
func Load(ctx context.Context) (*App, error) {
	cfg := &App{}
	if err := env.ParseWithOptions(cfg, env.Options{RequiredIfNoDef: true}); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}
