package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"goLangClient/config"
	"goLangClient/state"
)

var (
	// RedisClient is the global Redis client instance
	RedisClient *redis.Client

	ErrNotInitialized = errors.New("backend not initialized")

	log logrus.FieldLogger = logrus.StandardLogger()
)

// SetLogger replaces the package logger.
func SetLogger(l logrus.FieldLogger) {
	log = l
}

// leaderboardMember is the sorted-set member for one result. The ID keeps
// equal results from different rounds apart.
type leaderboardMember struct {
	ID        string `json:"id"`
	PlayerID  string `json:"player_id"`
	Timestamp string `json:"timestamp"`
}

// RoundSummary is the short-lived cache entry for a finished round.
type RoundSummary struct {
	RoundID     string                   `json:"roundId"`
	Symbol      string                   `json:"symbol"`
	Candles     int                      `json:"candles"`
	Open        float64                  `json:"open"`
	Close       float64                  `json:"close"`
	High        float64                  `json:"high"`
	Low         float64                  `json:"low"`
	Leaderboard []state.LeaderboardEntry `json:"leaderboard"`
	EndedAt     time.Time                `json:"endedAt"`
}

// InitRedis initializes the Redis client connection
func InitRedis(cfg config.RedisConfig) error {
	log.Info("🔌 Connecting to Redis...")

	RedisClient = redis.NewClient(&redis.Options{
		Addr:         cfg.URL,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
		MinIdleConns: 2,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := RedisClient.Ping(ctx).Err(); err != nil {
		RedisClient.Close()
		RedisClient = nil
		return fmt.Errorf("failed to connect to Redis: %w", err)
	}

	log.Infof("✅ Redis connected successfully - URL: %s", cfg.URL)
	return nil
}

// CloseRedis closes the Redis connection
func CloseRedis() error {
	if RedisClient != nil {
		log.Info("🔌 Closing Redis connection...")
		err := RedisClient.Close()
		RedisClient = nil
		return err
	}
	return nil
}

/* =========================
   GLOBAL LEADERBOARD
   Redis Key: leaderboard:global -> ZSet{member JSON: networth}
========================= */

// RecordResults adds a round's final net worths and trims the set to the
// best LeaderboardMaxSize. It returns the current top GlobalTopSize.
func RecordResults(ctx context.Context, results []state.LeaderboardEntry, at time.Time) ([]state.GlobalEntry, error) {
	if RedisClient == nil {
		return nil, ErrNotInitialized
	}

	timestamp := at.UTC().Format(time.RFC3339)
	members := make([]redis.Z, 0, len(results))
	for _, r := range results {
		member, err := json.Marshal(leaderboardMember{
			ID:        uuid.NewString(),
			PlayerID:  r.PlayerID,
			Timestamp: timestamp,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to marshal leaderboard member: %w", err)
		}
		members = append(members, redis.Z{Score: r.Networth, Member: string(member)})
	}

	if len(members) > 0 {
		_, err := RedisClient.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.ZAdd(ctx, config.RedisLeaderboardKey, members...)
			// Lowest scores first; keep only the top LeaderboardMaxSize.
			pipe.ZRemRangeByRank(ctx, config.RedisLeaderboardKey, 0, -int64(config.LeaderboardMaxSize)-1)
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("failed to record results: %w", err)
		}
		log.Infof("🏆 Saved %d results to global leaderboard", len(members))
	}

	return TopResults(ctx, config.GlobalTopSize)
}

// TopResults returns the n best results, best first.
func TopResults(ctx context.Context, n int) ([]state.GlobalEntry, error) {
	if RedisClient == nil {
		return nil, ErrNotInitialized
	}
	if n <= 0 {
		return []state.GlobalEntry{}, nil
	}

	zs, err := RedisClient.ZRevRangeWithScores(ctx, config.RedisLeaderboardKey, 0, int64(n)-1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get leaderboard: %w", err)
	}

	entries := make([]state.GlobalEntry, 0, len(zs))
	for _, z := range zs {
		raw, _ := z.Member.(string)
		var member leaderboardMember
		if err := json.Unmarshal([]byte(raw), &member); err != nil {
			log.Warnf("⚠️  Skipping unreadable leaderboard member %q: %v", raw, err)
			continue
		}
		entries = append(entries, state.GlobalEntry{
			PlayerID:  member.PlayerID,
			Networth:  z.Score,
			Timestamp: member.Timestamp,
		})
	}
	return entries, nil
}

// Leaderboard adapts the package functions to the simulator's leaderboard.
type Leaderboard struct{}

func (Leaderboard) RecordResults(ctx context.Context, results []state.LeaderboardEntry, at time.Time) ([]state.GlobalEntry, error) {
	return RecordResults(ctx, results, at)
}

/* =========================
   ROUND SUMMARY CACHE
   Redis Key: round:{roundId}:summary -> JSON, expires after RoundSummaryTTL
========================= */

// Summarize condenses a round record for the cache.
func Summarize(round state.RoundRecord) RoundSummary {
	s := RoundSummary{
		RoundID:     round.RoundID,
		Symbol:      round.Symbol,
		Candles:     len(round.Candles),
		Leaderboard: round.Leaderboard,
		EndedAt:     round.EndedAt,
	}
	for i, c := range round.Candles {
		if i == 0 {
			s.Open, s.High, s.Low = c.Open, c.High, c.Low
		}
		s.High = max(s.High, c.High)
		s.Low = min(s.Low, c.Low)
		s.Close = c.Close
	}
	return s
}

// CacheRoundSummary stores a round summary with a TTL.
func CacheRoundSummary(ctx context.Context, summary RoundSummary) error {
	if RedisClient == nil {
		return ErrNotInitialized
	}

	data, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("failed to marshal round summary: %w", err)
	}

	key := fmt.Sprintf(config.RedisRoundSummaryKey, summary.RoundID)
	if err := RedisClient.Set(ctx, key, data, config.RoundSummaryTTL).Err(); err != nil {
		return fmt.Errorf("failed to cache round summary: %w", err)
	}
	return nil
}

// GetRoundSummary returns a cached summary, or nil if it expired or never
// existed.
func GetRoundSummary(ctx context.Context, roundID string) (*RoundSummary, error) {
	if RedisClient == nil {
		return nil, ErrNotInitialized
	}

	key := fmt.Sprintf(config.RedisRoundSummaryKey, roundID)
	data, err := RedisClient.Get(ctx, key).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get round summary: %w", err)
	}

	var summary RoundSummary
	if err := json.Unmarshal([]byte(data), &summary); err != nil {
		return nil, fmt.Errorf("failed to unmarshal round summary: %w", err)
	}
	return &summary, nil
}

/* =========================
   HEALTH CHECK
========================= */

// HealthCheck performs a Redis health check
func HealthCheck(ctx context.Context) error {
	if RedisClient == nil {
		return ErrNotInitialized
	}
	return RedisClient.Ping(ctx).Err()
}
