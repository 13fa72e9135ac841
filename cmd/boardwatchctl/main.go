package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/seojin-dev/boardwatch/internal/maia"
	"github.com/seojin-dev/boardwatch/internal/prefs"
)

const startingFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

func main() {
	if len(os.Args) < 2 {
		usage()
	}

	switch os.Args[1] {
	case "status":
		store := openStore()
		defer store.Close()
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		elo, err := store.Rating(ctx)
		if err != nil {
			log.Fatalf("rating read error: %v", err)
		}
		paused, err := store.Paused(ctx)
		if err != nil {
			log.Fatalf("paused read error: %v", err)
		}
		fmt.Printf("rating=%d paused=%v\n", elo, paused)
	case "rating":
		if len(os.Args) < 3 {
			usage()
		}
		n, err := strconv.Atoi(os.Args[2])
		if err != nil {
			log.Fatalf("rating must be an integer: %v", err)
		}
		store := openStore()
		defer store.Close()
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := store.SetRating(ctx, n); err != nil {
			log.Fatalf("rating write error: %v", err)
		}
		fmt.Printf("rating=%d\n", n)
	case "pause", "resume":
		store := openStore()
		defer store.Close()
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		v := os.Args[1] == "pause"
		if err := store.SetPaused(ctx, v); err != nil {
			log.Fatalf("paused write error: %v", err)
		}
		fmt.Printf("paused=%v\n", v)
	case "check":
		baseURL := os.Getenv("MAIA_BASE_URL")
		if baseURL == "" {
			log.Fatal("MAIA_BASE_URL is required")
		}
		client := maia.NewClient(baseURL, maia.WithTimeout(8*time.Second))
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		move, err := client.BestMove(ctx, startingFEN, prefs.DefaultRating)
		if err != nil {
			log.Fatalf("maia check error: %v", err)
		}
		fmt.Printf("maia ok: move=%s\n", move)
	default:
		usage()
	}
}

func openStore() prefs.Store {
	redisURL := os.Getenv("REDIS_URL")
	if redisURL == "" {
		log.Fatal("REDIS_URL is required")
	}
	store, err := prefs.NewRedisStore(redisURL)
	if err != nil {
		log.Fatalf("redis error: %v", err)
	}
	return store
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: boardwatchctl {status | rating <elo> | pause | resume | check}")
	os.Exit(2)
}
