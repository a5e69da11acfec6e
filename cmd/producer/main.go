package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/povarna/generative-ai-agents/call-review-agent/internal/api"
	red "github.com/povarna/generative-ai-agents/call-review-agent/internal/redis"
	applog "github.com/povarna/generative-ai-agents/call-review-agent/internal/setup/logger"
	streamredis "github.com/povarna/generative-ai-agents/call-review-agent/internal/stream/redis"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

func main() {
	data := flag.String("d", "", "Inline JSON AnalysisRequest")
	file := flag.String("f", "", "Path to a JSON AnalysisRequest")
	stream := flag.String("stream", streamredis.DefaultRequestStream, "Stream name")
	flag.Parse()

	if *data == "" && *file == "" {
		fmt.Fprintln(os.Stderr, "Usage: producer -d '<json>' | -f request.json")
		flag.PrintDefaults()
		os.Exit(1)
	}

	_ = godotenv.Load()
	applog.Setup()

	if err := run(*data, *file, *stream); err != nil {
		log.Error().Err(err).Msg("producer failed")
		os.Exit(1)
	}
}

func run(data, file, stream string) error {
	if file != "" {
		content, err := os.ReadFile(file)
		if err != nil {
			return fmt.Errorf("read %s: %w", file, err)
		}
		data = string(content)
	}

	// Reject what the worker would only turn into an error entry.
	req, err := api.DecodeRequest([]byte(data))
	if err != nil {
		return err
	}

	ctx := context.Background()
	client, err := red.ConnectRedis(ctx, red.Options{
		Addr:       os.Getenv("REDIS_ADDR"),
		Password:   os.Getenv("REDIS_PASSWORD"),
		MaxRetries: 3,
	})
	if err != nil {
		return err
	}
	defer client.Close()

	id, err := client.XAdd(ctx, &redis.XAddArgs{
		Stream: stream,
		Values: map[string]any{"payload": data},
	}).Result()
	if err != nil {
		return err
	}

	log.Info().Str("stream", stream).Str("id", id).Str("conversation_id", req.ConversationID).Msg("Published successfully!")
	return nil
}
