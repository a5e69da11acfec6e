package stream

import "github.com/povarna/generative-ai-agents/call-review-agent/internal/stream/redis"

const ProviderRedis = "redis"

type StreamConfig struct {
	Provider    string // redis
	RedisConfig *redis.RedisStreamConfig
}
