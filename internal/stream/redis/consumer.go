package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/povarna/generative-ai-agents/call-review-agent/internal/api"
	"github.com/povarna/generative-ai-agents/call-review-agent/internal/models"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const (
	fieldPayload        = "payload"
	fieldConversationID = "conversation_id"
	fieldRequestID      = "request_id"
	fieldStatus         = "status"

	statusOK    = "ok"
	statusError = "error"

	// Messages left pending by any consumer longer than claimMinIdle are
	// claimed at startup and then every claimInterval.
	claimMinIdle  = 30 * time.Second
	claimInterval = time.Minute
	claimBatch    = 10
)

var errMissingPayload = errors.New("missing payload field")

type Consumer struct {
	client       *redis.Client
	stream       string
	resultStream string
	resultMaxLen int64
	groupID      string
	consumerName string
	analyzer     api.CallAnalyzer
	logger       *zerolog.Logger
	lastClaim    time.Time
}

func NewConsumer(client *redis.Client, cfg *RedisStreamConfig, callAnalyzer api.CallAnalyzer, logger *zerolog.Logger) *Consumer {
	resultStream := cfg.ResultStream
	if resultStream == "" {
		resultStream = DefaultResultStream
	}
	maxLen := cfg.ResultMaxLen
	if maxLen <= 0 {
		maxLen = defaultResultMaxLen
	}

	return &Consumer{
		client:       client,
		stream:       cfg.Stream,
		resultStream: resultStream,
		resultMaxLen: maxLen,
		groupID:      cfg.Group,
		consumerName: cfg.ConsumerName,
		analyzer:     callAnalyzer,
		logger:       logger,
	}
}

func (c *Consumer) Setup(ctx context.Context) error {
	err := c.client.XGroupCreateMkStream(ctx, c.stream, c.groupID, "0").Err()
	if err != nil && err.Error() != "BUSYGROUP Consumer Group name already exists" {
		return err
	}
	return nil
}

func (c *Consumer) Start(ctx context.Context) error {
	c.logger.Info().
		Str("stream", c.stream).
		Str("result_stream", c.resultStream).
		Str("group", c.groupID).
		Str("consumer", c.consumerName).
		Msg("Consumer started")

	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		if now := time.Now(); claimDue(now, c.lastClaim) {
			c.claimPending(ctx)
			c.lastClaim = now
		}

		msgs, err := c.client.XReadGroup(ctx, &redis.XReadGroupArgs{
			Group:    c.groupID,
			Consumer: c.consumerName,
			Streams:  []string{c.stream, ">"},
			Count:    1,
			Block:    2 * time.Second,
		}).Result()

		if err != nil {
			if errors.Is(err, redis.Nil) {
				// timeout, no message -> loop again
				continue
			}

			if ctx.Err() != nil {
				return ctx.Err() // context cancelled during block
			}

			c.logger.Error().Err(err).Msg("Failed to read from stream")
			continue
		}

		for _, msg := range msgs[0].Messages {
			c.process(ctx, msg)
		}
	}
}

// claimDue reports whether a pending-claim pass should run. A zero lastClaim
// means no pass has run yet.
func claimDue(now time.Time, lastClaim time.Time) bool {
	return lastClaim.IsZero() || now.Sub(lastClaim) >= claimInterval
}

// claimPending takes over messages that were delivered but never acked, such
// as those whose result could not be published, and processes them again.
func (c *Consumer) claimPending(ctx context.Context) {
	start := "0-0"
	for {
		msgs, next, err := c.client.XAutoClaim(ctx, &redis.XAutoClaimArgs{
			Stream:   c.stream,
			Group:    c.groupID,
			Consumer: c.consumerName,
			MinIdle:  claimMinIdle,
			Start:    start,
			Count:    claimBatch,
		}).Result()
		if err != nil {
			if ctx.Err() == nil {
				c.logger.Error().Err(err).Msg("Failed to claim pending messages")
			}
			return
		}

		if len(msgs) > 0 {
			c.logger.Info().Int("count", len(msgs)).Msg("Claimed pending messages")
		}
		for _, msg := range msgs {
			c.process(ctx, msg)
		}

		if next == "" || next == "0-0" {
			return
		}
		start = next
	}
}

func (c *Consumer) Stop() error {
	return c.client.Close()
}

func (c *Consumer) process(ctx context.Context, msg redis.XMessage) {
	c.logger.Info().Str("id", msg.ID).Msg("Message received")

	values, err := c.handle(ctx, msg)
	if err != nil {
		// bad message: ACK to skip it
		c.logger.Error().Err(err).Str("id", msg.ID).Msg("Failed to decode message")
		c.ack(ctx, msg.ID)
		return
	}

	id, err := c.client.XAdd(ctx, &redis.XAddArgs{
		Stream: c.resultStream,
		MaxLen: c.resultMaxLen,
		Approx: true,
		Values: values,
	}).Result()
	if err != nil {
		// Not acked: the next claim pass retries it.
		c.logger.Error().Err(err).Str("id", msg.ID).Msg("Failed to publish result")
		return
	}

	c.logger.Info().
		Str("id", msg.ID).
		Str("result_id", id).
		Any("conversation_id", values[fieldConversationID]).
		Any("status", values[fieldStatus]).
		Msg("Analysis published")

	c.ack(ctx, msg.ID)
}

// handle runs one stream message through the analyzer and returns the fields
// of the result entry. Payload-level failures become error entries; only an
// undecodable message returns an error.
func (c *Consumer) handle(ctx context.Context, msg redis.XMessage) (map[string]any, error) {
	payload, ok := msg.Values[fieldPayload].(string)
	if !ok {
		return nil, errMissingPayload
	}

	request, err := api.DecodeRequest([]byte(payload))
	if errors.Is(err, api.ErrConversationIDMissing) {
		return resultValues(msg.ID, "", statusError, models.ErrorResponse{Error: err.Error()})
	}
	if err != nil {
		return nil, err
	}

	result, err := c.analyzer.Analyze(ctx, request.ConversationID, request.Transcript)
	if err != nil {
		_, errPayload := api.ErrorPayload(err)
		c.logger.Error().
			Err(err).
			Str("id", msg.ID).
			Str("conversation_id", request.ConversationID).
			Msg("Analysis failed")
		return resultValues(msg.ID, request.ConversationID, statusError, errPayload)
	}

	return resultValues(msg.ID, request.ConversationID, statusOK, result)
}

func resultValues(requestID string, conversationID string, status string, body any) (map[string]any, error) {
	encoded, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encode result: %w", err)
	}

	return map[string]any{
		fieldRequestID:      requestID,
		fieldConversationID: conversationID,
		fieldStatus:         status,
		fieldPayload:        string(encoded),
	}, nil
}

func (c *Consumer) ack(ctx context.Context, msgID string) {
	if err := c.client.XAck(ctx, c.stream, c.groupID, msgID).Err(); err != nil {
		c.logger.Error().Err(err).Str("id", msgID).Msg("Failed to ACK message")
	}
}
