package consumer

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"go-trading-coach/internal/coach/config"
	"go-trading-coach/internal/coach/dto"
	"go-trading-coach/internal/coach/service"
	"go-trading-coach/pkg/common"
	"go-trading-coach/pkg/logger"
	"go-trading-coach/pkg/telegram"
	"go-trading-coach/pkg/utils"

	"github.com/redis/go-redis/v9"
)

// RedisConsumer reads inbound chat messages from the analyze stream, runs the
// coaching pipeline and publishes the formatted result.
type RedisConsumer struct {
	cfg          *config.Config
	redisClient  *redis.Client
	coachService service.CoachService
	notifier     telegram.Notifier
	logger       *logger.Logger
	stopChan     chan struct{}
	wg           sync.WaitGroup
}

// NewRedisConsumer creates a new RedisConsumer. notifier may be nil when the
// ops alert channel is disabled.
func NewRedisConsumer(
	cfg *config.Config,
	redisClient *redis.Client,
	coachService service.CoachService,
	notifier telegram.Notifier,
	log *logger.Logger,
) *RedisConsumer {
	return &RedisConsumer{
		cfg:          cfg,
		redisClient:  redisClient,
		coachService: coachService,
		notifier:     notifier,
		logger:       log,
		stopChan:     make(chan struct{}),
	}
}

// Start begins the consumer's processing loops.
func (c *RedisConsumer) Start(ctx context.Context) {
	c.logger.Info("Redis consumer started")
	c.registerStreamHandler(ctx, c.processTask, common.RedisStreamChatAnalyze, c.cfg.Coach.RedisStreamChatAnalyzeTimeout)
	c.registerTickerHandler(ctx, c.processRetries, c.cfg.Coach.RedisStreamChatAnalyzeRetryInterval, c.cfg.Coach.RedisStreamChatAnalyzeTimeout, common.RedisStreamChatAnalyze+"-retry")
}

// Stop signals all handler goroutines to exit and waits for them.
func (c *RedisConsumer) Stop() {
	close(c.stopChan)
	c.wg.Wait()
	c.logger.Info("Redis consumer stopped")
}

func (c *RedisConsumer) registerStreamHandler(ctx context.Context, fn func(ctx context.Context), streamName string, timeout time.Duration) {
	c.logger.Info("Registering stream handler", logger.Field("stream", streamName))
	c.wg.Add(1)
	utils.GoSafe(func() {
		defer c.wg.Done()
		for {
			select {
			case <-ctx.Done():
				c.logger.Info("Redis consumer stopping due to context cancellation")
				return
			case <-c.stopChan:
				c.logger.Info("Redis consumer stopping")
				return
			default:
				ctxTimeout, cancel := context.WithTimeout(ctx, timeout)
				fn(ctxTimeout)
				cancel()
			}
		}
	})
}

func (c *RedisConsumer) registerTickerHandler(ctx context.Context, fn func(ctx context.Context), interval time.Duration, timeout time.Duration, name string) {
	c.logger.Info("Registering ticker handler",
		logger.Field("name", name),
		logger.Field("interval", interval),
		logger.Field("timeout", timeout))
	c.wg.Add(1)
	utils.GoSafe(func() {
		defer c.wg.Done()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				ctxTimeout, cancel := context.WithTimeout(ctx, timeout)
				fn(ctxTimeout)
				cancel()
			case <-ctx.Done():
				return
			case <-c.stopChan:
				return
			}
		}
	})
}

// processTask handles one new message from the analyze stream.
func (c *RedisConsumer) processTask(ctx context.Context) {
	streams, err := c.redisClient.XReadGroup(ctx, &redis.XReadGroupArgs{
		Group:    common.RedisStreamGroup,
		Consumer: common.RedisStreamConsumer,
		Streams:  []string{common.RedisStreamChatAnalyze, ">"}, // ">" means only new messages
		Count:    1,
		Block:    2 * time.Second, // Block for 2 seconds to allow graceful shutdown
	}).Result()
	if err != nil {
		// Ignore context cancellation and timeout errors, as they are expected during shutdown or idle periods.
		if err == context.Canceled || err == redis.Nil {
			return
		}
		c.logger.Error("Failed to read from stream", logger.ErrorField(err))
		return
	}

	if len(streams) == 0 || len(streams[0].Messages) == 0 {
		return
	}

	message := streams[0].Messages[0]
	if err := c.handleMessage(ctx, message); err != nil {
		c.logger.Error("Failed to handle chat message", logger.ErrorField(err), logger.Field("message_id", message.ID))
		return
	}
	if err := c.ackNDel(ctx, common.RedisStreamChatAnalyze, message.ID); err != nil {
		c.logger.Error("Failed to acknowledge and delete chat message", logger.ErrorField(err), logger.Field("message_id", message.ID))
	}
}

func (c *RedisConsumer) handleMessage(ctx context.Context, message redis.XMessage) error {
	// The task data is expected to be a JSON string in the 'payload' field.
	taskData, ok := message.Values["payload"].(string)
	if !ok {
		return fmt.Errorf("field 'payload' not found or not a string in stream message")
	}

	var streamData dto.StreamDataChatMessage
	if err := json.Unmarshal([]byte(taskData), &streamData); err != nil {
		return fmt.Errorf("failed to unmarshal chat message payload: %w", err)
	}

	c.logger.Debug("Processing chat message", logger.StringField("message_id", streamData.MessageID), logger.StringField("user_id", streamData.UserID))

	result, err := c.coachService.AnalyzeMessage(ctx, &dto.ChatMessage{
		ID:         streamData.MessageID,
		UserID:     streamData.UserID,
		Content:    streamData.Content,
		ImageURL:   streamData.ImageURL,
		ReceivedAt: time.Now(),
	}, dto.AnalyzeOptions{IncludeReasoning: true, IncludeInsights: true})
	if err != nil {
		return fmt.Errorf("failed to analyze chat message: %w", err)
	}

	return c.publishResult(ctx, streamData, result)
}

// publishResult pushes the formatted analysis onto the result stream for the
// chat transport to deliver.
func (c *RedisConsumer) publishResult(ctx context.Context, streamData dto.StreamDataChatMessage, result *dto.AnalysisResult) error {
	payload, err := json.Marshal(map[string]interface{}{
		"message_id": streamData.MessageID,
		"user_id":    streamData.UserID,
		"analysis":   result,
		"display":    service.FormatAnalysisResult(result),
	})
	if err != nil {
		return fmt.Errorf("failed to marshal result payload: %w", err)
	}

	return c.redisClient.XAdd(ctx, &redis.XAddArgs{
		Stream: common.RedisStreamChatResult,
		MaxLen: c.cfg.Redis.StreamMaxLen,
		Approx: true,
		Values: map[string]interface{}{"payload": string(payload)},
	}).Err()
}

func (c *RedisConsumer) ackNDel(ctx context.Context, streamName string, messageID string) error {
	if err := c.redisClient.XAck(ctx, streamName, common.RedisStreamGroup, messageID).Err(); err != nil {
		return err
	}
	return c.redisClient.XDel(ctx, streamName, messageID).Err()
}

// processRetries reclaims messages stuck in the pending list and either
// retries them or gives up past the retry budget with an ops alert.
func (c *RedisConsumer) processRetries(ctx context.Context) {
	msgs, _, err := c.redisClient.XAutoClaim(ctx, &redis.XAutoClaimArgs{
		Stream:   common.RedisStreamChatAnalyze,
		Group:    common.RedisStreamGroup,
		Consumer: common.RedisStreamConsumer + "-retry",
		MinIdle:  c.cfg.Coach.RedisStreamChatAnalyzeMaxIdleDuration,
		Start:    "0",
		Count:    1,
	}).Result()
	if err != nil {
		if err == context.Canceled || err == redis.Nil {
			return
		}
		c.logger.Error("Failed to claim chat message on retry", logger.ErrorField(err))
		return
	}

	if len(msgs) == 0 {
		return
	}

	msg := msgs[0]
	pendingInfo, err := c.redisClient.XPendingExt(ctx, &redis.XPendingExtArgs{
		Stream: common.RedisStreamChatAnalyze,
		Group:  common.RedisStreamGroup,
		Start:  msg.ID,
		End:    msg.ID,
		Count:  1,
	}).Result()
	if err != nil {
		c.logger.Error("Failed to get pending info", logger.ErrorField(err))
		return
	}
	if len(pendingInfo) == 0 {
		c.logger.Warn("pending msg not found, but exist on xautoclaim",
			logger.StringField("stream", common.RedisStreamChatAnalyze),
			logger.StringField("message_id", msg.ID))
		return
	}

	if pendingInfo[0].RetryCount >= int64(c.cfg.Coach.RedisStreamChatAnalyzeMaxRetry) {
		c.logger.Error("pending msg retry count exceeded",
			logger.StringField("stream", common.RedisStreamChatAnalyze),
			logger.StringField("message_id", msg.ID),
			logger.IntField("retry_count", int(pendingInfo[0].RetryCount)),
			logger.IntField("max_retry", c.cfg.Coach.RedisStreamChatAnalyzeMaxRetry),
		)
		if c.notifier != nil {
			alert := telegram.FormatErrorAlertMessage(time.Now(), "chat-analyze-retry-exceeded",
				fmt.Sprintf("Chat analysis retry count exceeded for stream message %s", msg.ID), common.RedisStreamChatAnalyze)
			if err := c.notifier.SendMessage(alert); err != nil {
				c.logger.Error("Failed to send retry exceeded alert", logger.ErrorField(err))
			}
		}
		if err := c.ackNDel(ctx, common.RedisStreamChatAnalyze, msg.ID); err != nil {
			c.logger.Error("Failed to acknowledge and delete chat message", logger.ErrorField(err), logger.Field("message_id", msg.ID))
		}
		return
	}

	if err := c.handleMessage(ctx, msg); err != nil {
		c.logger.Error("Failed to handle chat message on retry", logger.ErrorField(err), logger.Field("message_id", msg.ID))
		return
	}
	if err := c.ackNDel(ctx, common.RedisStreamChatAnalyze, msg.ID); err != nil {
		c.logger.Error("Failed to acknowledge and delete chat message", logger.ErrorField(err), logger.Field("message_id", msg.ID))
		return
	}
	c.logger.Info("Retry chat message processed successfully", logger.Field("message_id", msg.ID))
}
