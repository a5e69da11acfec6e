package redis

const (
	DefaultRequestStream = "analysis-requests"
	DefaultResultStream  = "analysis-results"
	DefaultGroup         = "call-review-group"
	defaultResultMaxLen  = 10000
)

type RedisStreamConfig struct {
	RedisAddr     string
	RedisPassword string
	Stream        string
	ResultStream  string
	Group         string
	ConsumerName  string
	// ResultMaxLen caps the result stream (approximate trimming). 0 means the default.
	ResultMaxLen int64
}

func NewRedisStreamConfig(redisAddr string, redisPassword string, stream string, group string, consumerName string) *RedisStreamConfig {
	return &RedisStreamConfig{
		RedisAddr:     redisAddr,
		RedisPassword: redisPassword,
		Stream:        stream,
		ResultStream:  DefaultResultStream,
		Group:         group,
		ConsumerName:  consumerName,
		ResultMaxLen:  defaultResultMaxLen,
	}
}
