package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"goLangClient/game"

	"github.com/joho/godotenv"
)

// Config holds everything the chart client reads from the environment.
type Config struct {
	GameServerURL string
	HTTPAddr      string
	LogLevel      string

	Chart    ChartConfig
	Players  PlayersConfig
	Redis    RedisConfig
	Postgres PostgresConfig

	// StockDataPath is the directory of price CSVs used by the simulator.
	StockDataPath string
}

// ChartConfig holds the candle engine settings.
type ChartConfig struct {
	CandleInterval time.Duration
	WindowCapacity int
	ScalePadding   float64
	ScaleEpsilon   float64
	GridLines      int
	ViewportWidth  float64
	ViewportHeight float64
}

// Options converts the chart settings for the engine.
func (c ChartConfig) Options() game.Options {
	return game.Options{
		Interval:    c.CandleInterval,
		Capacity:    c.WindowCapacity,
		PadFraction: c.ScalePadding,
		Epsilon:     c.ScaleEpsilon,
		GridLines:   c.GridLines,
	}
}

// PlayersConfig is what the client sends when it joins a game.
type PlayersConfig struct {
	Names            []string
	NumPlayers       int
	ActionsPerSecond float64
}

type RedisConfig struct {
	URL      string
	Password string
	DB       int
}

// Enabled reports whether a Redis address was configured.
func (c RedisConfig) Enabled() bool {
	return c.URL != ""
}

type PostgresConfig struct {
	DatabaseURL string
}

func (c PostgresConfig) Enabled() bool {
	return c.DatabaseURL != ""
}

// Load reads .env if present, then the environment.
func Load() (*Config, error) {
	_ = godotenv.Load() // .env is optional

	cfg := FromEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// FromEnv builds a Config from environment variables without validating it.
func FromEnv() *Config {
	return &Config{
		GameServerURL: getEnv("GAME_SERVER_URL", DefaultGameServerURL),
		HTTPAddr:      getEnv("HTTP_ADDR", DefaultHTTPAddr),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		Chart: ChartConfig{
			CandleInterval: getEnvDuration("CANDLE_INTERVAL_MS", DefaultCandleIntervalMs*time.Millisecond),
			WindowCapacity: getEnvInt("WINDOW_CAPACITY", DefaultWindowCapacity),
			ScalePadding:   getEnvFloat("SCALE_PADDING", DefaultScalePadding),
			ScaleEpsilon:   getEnvFloat("SCALE_EPSILON", DefaultScaleEpsilon),
			GridLines:      getEnvInt("GRID_LINES", DefaultGridLines),
			ViewportWidth:  getEnvFloat("VIEWPORT_WIDTH", DefaultViewportWidth),
			ViewportHeight: getEnvFloat("VIEWPORT_HEIGHT", DefaultViewportHeight),
		},
		Players: PlayersConfig{
			Names:            getEnvList("PLAYER_NAMES", []string{"Player 1", "Player 2", "Player 3", "Player 4"}),
			NumPlayers:       getEnvInt("NUM_PLAYERS", DefaultNumPlayers),
			ActionsPerSecond: getEnvFloat("ACTIONS_PER_SECOND", DefaultActionsPerSecond),
		},
		Redis: RedisConfig{
			URL:      getEnv("REDIS_URL", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		Postgres: PostgresConfig{
			DatabaseURL: getEnv("DATABASE_URL", ""),
		},
		StockDataPath: getEnv("STOCK_DATA_PATH", "./Stock_Data"),
	}
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	var errs []error

	ch := c.Chart
	if ch.CandleInterval <= 0 {
		errs = append(errs, fmt.Errorf("candle interval must be positive, got %v", ch.CandleInterval))
	}
	if ch.WindowCapacity < 1 {
		errs = append(errs, fmt.Errorf("window capacity must be at least 1, got %d", ch.WindowCapacity))
	}
	if ch.ScalePadding < 0 || !isFinite(ch.ScalePadding) {
		errs = append(errs, fmt.Errorf("scale padding must be a non-negative number, got %v", ch.ScalePadding))
	}
	if ch.ScaleEpsilon <= 0 || !isFinite(ch.ScaleEpsilon) {
		errs = append(errs, fmt.Errorf("scale epsilon must be positive, got %v", ch.ScaleEpsilon))
	}
	if ch.GridLines < 0 {
		errs = append(errs, fmt.Errorf("grid lines must not be negative, got %d", ch.GridLines))
	}
	if ch.ViewportWidth <= 0 || ch.ViewportHeight <= 0 {
		errs = append(errs, fmt.Errorf("viewport must be positive, got %vx%v", ch.ViewportWidth, ch.ViewportHeight))
	}
	if c.Players.NumPlayers < 0 {
		errs = append(errs, fmt.Errorf("number of players must not be negative, got %d", c.Players.NumPlayers))
	}
	if c.Players.ActionsPerSecond <= 0 {
		errs = append(errs, fmt.Errorf("actions per second must be positive, got %v", c.Players.ActionsPerSecond))
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}

// PlayerNames returns NumPlayers names, generating "Player N" for missing ones.
func (p PlayersConfig) PlayerNames() []string {
	names := make([]string, 0, p.NumPlayers)
	for i := 0; i < p.NumPlayers; i++ {
		if i < len(p.Names) && p.Names[i] != "" {
			names = append(names, p.Names[i])
		} else {
			names = append(names, fmt.Sprintf("Player %d", i+1))
		}
	}
	return names
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvDuration reads a millisecond count.
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	ms := getEnvInt(key, -1)
	if ms < 0 {
		return defaultValue
	}
	return time.Duration(ms) * time.Millisecond
}

func getEnvList(key string, defaultValue []string) []string {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	parts := strings.Split(valueStr, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
