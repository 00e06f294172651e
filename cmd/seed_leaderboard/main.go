package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/joho/godotenv"

	"goLangClient/config"
	"goLangClient/db"
	"goLangClient/state"
)

func main() {
	// Load env
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env not found")
	}

	cfg := config.FromEnv()
	if !cfg.Redis.Enabled() {
		log.Fatal("REDIS_URL not set")
	}

	if err := db.InitRedis(cfg.Redis); err != nil {
		log.Fatalf("Failed to init redis: %v", err)
	}
	defer db.CloseRedis()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Finished rounds with a spread of net worths
	rounds := [][]state.LeaderboardEntry{
		{
			{PlayerID: "Player 1", Networth: 12450.75, Type: state.PlayerTypeHum},
			{PlayerID: "Player 2", Networth: 10185.50, Type: state.PlayerTypeHum},
			{PlayerID: "AI", Networth: 9920.25, Type: state.PlayerTypeAI},
		},
		{
			{PlayerID: "Player 3", Networth: 15300.00, Type: state.PlayerTypeHum},
			{PlayerID: "AI", Networth: 11067.50, Type: state.PlayerTypeAI},
			{PlayerID: "Player 4", Networth: 8245.25, Type: state.PlayerTypeHum},
		},
		{
			{PlayerID: "Player 1", Networth: 7032.00, Type: state.PlayerTypeHum},
			{PlayerID: "AI", Networth: 10018.75, Type: state.PlayerTypeAI},
		},
	}

	fmt.Println("Seeding leaderboard with test data...")

	now := time.Now()
	var top []state.GlobalEntry
	for i, results := range rounds {
		at := now.Add(time.Duration(i-len(rounds)) * config.RoundDuration)
		var err error
		top, err = db.RecordResults(ctx, results, at)
		if err != nil {
			log.Fatalf("Failed to record round %d: %v", i+1, err)
		}
		for _, r := range results {
			fmt.Printf("  round %d %-10s -> %.2f\n", i+1, r.PlayerID, r.Networth)
		}
	}

	fmt.Printf("\nLeaderboard (%d entries):\n", len(top))
	for i, e := range top {
		fmt.Printf("  #%d %-10s %.2f  %s\n", i+1, e.PlayerID, e.Networth, e.Timestamp)
	}
}
