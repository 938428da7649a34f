package publisher

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"github.com/frahmantamala/attendance-engine/pkg/telemetry"
)

// Processor handles one message. shouldRetry with a delay hides the message
// for that many seconds instead of deleting it.
type Processor interface {
	Process(ctx context.Context, msg types.Message) (shouldRetry bool, retryDelay int32, err error)
}

// Consumer polls a queue and hands messages to a pool of processors.
type Consumer struct {
	client      SQSClient
	queueURL    string
	processor   Processor
	logger      *slog.Logger
	Concurrency int
	WaitSeconds int32
}

func NewConsumer(client SQSClient, queueURL string, processor Processor, logger *slog.Logger) *Consumer {
	return &Consumer{
		client:      client,
		queueURL:    queueURL,
		processor:   processor,
		logger:      logger,
		Concurrency: 10,
		WaitSeconds: 20,
	}
}

// Start polls until ctx is cancelled, then waits for in-flight messages.
func (c *Consumer) Start(ctx context.Context) {
	c.logger.Info("SQS consumer started", "queue_url", c.queueURL, "concurrency", c.Concurrency)

	messages := make(chan types.Message, c.Concurrency)
	var wg sync.WaitGroup
	for i := 0; i < c.Concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for msg := range messages {
				c.HandleMessage(ctx, msg)
			}
		}()
	}

	c.poll(ctx, messages)
	wg.Wait()
	c.logger.Info("SQS consumer stopped")
}

func (c *Consumer) poll(ctx context.Context, messages chan<- types.Message) {
	defer close(messages)

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		output, err := c.client.ReceiveMessage(ctx, &sqs.ReceiveMessageInput{
			QueueUrl:              aws.String(c.queueURL),
			MaxNumberOfMessages:   int32(min(c.Concurrency, 10)),
			WaitTimeSeconds:       c.WaitSeconds,
			MessageAttributeNames: []string{"All"},
		})
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			c.logger.Error("error receiving messages", "error", err)
			continue
		}
		for _, msg := range output.Messages {
			messages <- msg
		}
	}
}

// HandleMessage processes one message and deletes it on success.
func (c *Consumer) HandleMessage(ctx context.Context, msg types.Message) {
	ctx, span := telemetry.StartSpanFromSQSMessage(ctx, msg)
	defer span.End()

	shouldRetry, retryDelay, err := c.processor.Process(ctx, msg)
	if err != nil && shouldRetry {
		c.logger.Warn("processing failed, will retry", "error", err, "retry_delay", retryDelay, "message_id", aws.ToString(msg.MessageId))
		_, _ = c.client.ChangeMessageVisibility(ctx, &sqs.ChangeMessageVisibilityInput{
			QueueUrl:          aws.String(c.queueURL),
			ReceiptHandle:     msg.ReceiptHandle,
			VisibilityTimeout: retryDelay,
		})
		return
	}
	if err != nil {
		c.logger.Error("unrecoverable error processing message, will not retry", "error", err, "message_id", aws.ToString(msg.MessageId))
		return
	}

	if _, err := c.client.DeleteMessage(ctx, &sqs.DeleteMessageInput{
		QueueUrl:      aws.String(c.queueURL),
		ReceiptHandle: msg.ReceiptHandle,
	}); err != nil {
		c.logger.Error("failed to delete message", "error", err, "message_id", aws.ToString(msg.MessageId))
	}
}

var ErrMalformedEvent = errors.New("malformed event message")

type envelope struct {
	ID   string                 `json:"id"`
	Type string                 `json:"type"`
	Data map[string]interface{} `json:"data"`
}

// LogProcessor records each forwarded attendance event in the service log.
// It backs the events worker used to inspect a queue.
type LogProcessor struct {
	logger *slog.Logger
}

func NewLogProcessor(logger *slog.Logger) *LogProcessor {
	return &LogProcessor{logger: logger}
}

func (p *LogProcessor) Process(_ context.Context, msg types.Message) (bool, int32, error) {
	var env envelope
	if err := json.Unmarshal([]byte(aws.ToString(msg.Body)), &env); err != nil || env.Type == "" {
		return false, 0, ErrMalformedEvent
	}
	p.logger.Info("attendance event received",
		"event_id", env.ID,
		"event_type", env.Type,
		"employee_id", env.Data["employee_id"],
		"status", env.Data["status"])
	return false, 0, nil
}
