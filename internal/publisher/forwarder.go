package publisher

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"github.com/frahmantamala/attendance-engine/internal/core/events"
	"github.com/frahmantamala/attendance-engine/pkg/telemetry"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	AttributeEventType = "EventType"
	AttributeEventID   = "EventID"
)

// SQSClient is the subset of the AWS SQS client used here.
type SQSClient interface {
	SendMessage(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error)
	ReceiveMessage(ctx context.Context, params *sqs.ReceiveMessageInput, optFns ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error)
	DeleteMessage(ctx context.Context, params *sqs.DeleteMessageInput, optFns ...func(*sqs.Options)) (*sqs.DeleteMessageOutput, error)
	ChangeMessageVisibility(ctx context.Context, params *sqs.ChangeMessageVisibilityInput, optFns ...func(*sqs.Options)) (*sqs.ChangeMessageVisibilityOutput, error)
}

// Forwarder copies attendance events from the in-process bus onto an SQS
// queue for payroll and reporting consumers.
type Forwarder struct {
	client   SQSClient
	queueURL string
	logger   *slog.Logger
	tracer   trace.Tracer
}

func NewForwarder(client SQSClient, queueURL string, logger *slog.Logger) *Forwarder {
	return &Forwarder{
		client:   client,
		queueURL: queueURL,
		logger:   logger,
		tracer:   otel.Tracer("attendance-events"),
	}
}

// Register subscribes the forwarder to every attendance event type.
func (f *Forwarder) Register(bus *events.EventBus) {
	for _, eventType := range events.AttendanceTypes {
		bus.Subscribe(eventType, f.Handle)
	}
}

// Handle is an events.Handler sending one event as one message.
func (f *Forwarder) Handle(ctx context.Context, event events.Event) error {
	ctx, span := f.tracer.Start(ctx, "publish "+event.EventType(),
		trace.WithSpanKind(trace.SpanKindProducer),
		trace.WithAttributes(
			attribute.String("messaging.system", "aws_sqs"),
			attribute.String("messaging.destination.name", f.queueURL),
			attribute.String("app.event_id", event.EventID()),
		),
	)
	defer span.End()

	body, err := json.Marshal(event)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "marshal failed")
		return fmt.Errorf("failed to marshal event %s: %w", event.EventID(), err)
	}

	attributes := telemetry.InjectTraceContext(ctx)
	attributes[AttributeEventType] = types.MessageAttributeValue{
		DataType:    aws.String("String"),
		StringValue: aws.String(event.EventType()),
	}
	attributes[AttributeEventID] = types.MessageAttributeValue{
		DataType:    aws.String("String"),
		StringValue: aws.String(event.EventID()),
	}

	out, err := f.client.SendMessage(ctx, &sqs.SendMessageInput{
		QueueUrl:          aws.String(f.queueURL),
		MessageBody:       aws.String(string(body)),
		MessageAttributes: attributes,
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "send failed")
		return fmt.Errorf("failed to send event %s: %w", event.EventID(), err)
	}

	f.logger.Debug("event forwarded",
		"event_type", event.EventType(),
		"event_id", event.EventID(),
		"message_id", aws.ToString(out.MessageId))
	return nil
}
