// Package messaging 提供消息队列实现
package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"adwise-ai-api/pkg/metrics"
)

var tracer = otel.Tracer("messaging")

// Producer 消息生产者
type Producer struct {
	client *redis.Client
	maxLen int64
}

// NewProducer 创建消息生产者
func NewProducer(client *redis.Client, maxLen int64) *Producer {
	if maxLen <= 0 {
		maxLen = 100000
	}
	return &Producer{
		client: client,
		maxLen: maxLen,
	}
}

// Publish 发布消息到指定流
func (p *Producer) Publish(ctx context.Context, stream Stream, msg *Message) (string, error) {
	ctx, span := tracer.Start(ctx, "producer.Publish",
		trace.WithAttributes(
			attribute.String("stream", string(stream)),
			attribute.String("message.id", msg.ID),
			attribute.String("message.type", msg.Type),
		))
	defer span.End()

	data, err := json.Marshal(msg)
	if err != nil {
		span.RecordError(err)
		metrics.PlanEventsPublished.WithLabelValues(string(stream), "error").Inc()
		return "", fmt.Errorf("failed to marshal message: %w", err)
	}

	result, err := p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: string(stream),
		MaxLen: p.maxLen,
		Approx: true,
		Values: map[string]interface{}{
			"data": string(data),
		},
	}).Result()

	if err != nil {
		span.RecordError(err)
		metrics.PlanEventsPublished.WithLabelValues(string(stream), "error").Inc()
		return "", fmt.Errorf("failed to publish message: %w", err)
	}

	span.SetAttributes(attribute.String("stream.message_id", result))
	metrics.PlanEventsPublished.WithLabelValues(string(stream), "ok").Inc()
	return result, nil
}

// PublishPlanGenerated 发布方案生成完成事件
func (p *Producer) PublishPlanGenerated(ctx context.Context, event *PlanGeneratedMessage) (string, error) {
	msg, err := NewMessage(event.GenerationID, "plan.generated", event.ClientID, event)
	if err != nil {
		return "", err
	}

	msg.SetMetadata("provider", event.Provider)
	if event.Model != "" {
		msg.SetMetadata("model", event.Model)
	}

	return p.Publish(ctx, StreamPlanEvents, msg)
}

// PublishPlanLaunched 发布方案投放事件
func (p *Producer) PublishPlanLaunched(ctx context.Context, event *PlanLaunchedMessage) (string, error) {
	msg, err := NewMessage(event.GenerationID, "plan.launched", event.ClientID, event)
	if err != nil {
		return "", err
	}

	return p.Publish(ctx, StreamPlanEvents, msg)
}

// PublishAudit 发布审计记录到审计流
func (p *Producer) PublishAudit(ctx context.Context, entry *AuditMessage) (string, error) {
	msg, err := newAuditMessage(entry)
	if err != nil {
		return "", err
	}
	return p.Publish(ctx, StreamAuditLog, msg)
}

func newAuditMessage(entry *AuditMessage) (*Message, error) {
	if entry.OccurredAt.IsZero() {
		entry.OccurredAt = time.Now()
	}
	return NewMessage(uuid.NewString(), "audit."+entry.Action, entry.ClientID, entry)
}

// PlanGeneratedMessage 方案生成完成消息
type PlanGeneratedMessage struct {
	GenerationID string   `json:"generation_id"`
	ClientID     string   `json:"client_id"`
	Provider     string   `json:"provider"`
	Model        string   `json:"model,omitempty"`
	BusinessName string   `json:"business_name"`
	City         string   `json:"city"`
	BudgetLevel  string   `json:"budget_level"`
	Warnings     []string `json:"warnings,omitempty"`
	DurationMs   int64    `json:"duration_ms"`
}

// PlanLaunchedMessage 方案投放消息
type PlanLaunchedMessage struct {
	GenerationID string `json:"generation_id"`
	ClientID     string `json:"client_id"`
	RequestID    string `json:"request_id,omitempty"`
}

// AuditMessage 审计记录，追踪客户端触发的数据变更
type AuditMessage struct {
	Action       string    `json:"action"`
	ClientID     string    `json:"client_id"`
	GenerationID string    `json:"generation_id,omitempty"`
	RequestID    string    `json:"request_id,omitempty"`
	OccurredAt   time.Time `json:"occurred_at"`
}
