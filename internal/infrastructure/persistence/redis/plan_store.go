// Package redis 提供 Redis 缓存实现
package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"adwise-ai-api/internal/config"
	"adwise-ai-api/internal/domain/repository"
	"adwise-ai-api/pkg/metrics"
)

var planStoreTracer = otel.Tracer("redis.plan_store")

const lastPlanKeyPrefix = "adwise:last_plan:"

// PlanStore 基于 Redis 的最近方案存储
type PlanStore struct {
	client *Client
	ttl    time.Duration
}

// NewPlanStore 创建最近方案存储
func NewPlanStore(client *Client, cfg *config.Config) *PlanStore {
	return &PlanStore{
		client: client,
		ttl:    cfg.Plan.LastPlanTTL,
	}
}

func lastPlanKey(clientID string) string {
	clientID = strings.TrimSpace(clientID)
	if clientID == "" {
		clientID = "default"
	}
	return lastPlanKeyPrefix + clientID
}

// SaveLastPlan 覆盖写入客户端最近方案
func (s *PlanStore) SaveLastPlan(ctx context.Context, clientID string, plan *repository.StoredPlan) error {
	ctx, span := planStoreTracer.Start(ctx, "plan_store.SaveLastPlan",
		trace.WithAttributes(attribute.String("plan.client_id", clientID)))
	defer span.End()

	if plan == nil {
		return fmt.Errorf("stored plan is nil")
	}

	bytes, err := json.Marshal(plan)
	if err != nil {
		span.RecordError(err)
		metrics.LastPlanCacheOps.WithLabelValues("save", "error").Inc()
		return fmt.Errorf("failed to marshal stored plan: %w", err)
	}

	if err := s.client.rdb.Set(ctx, lastPlanKey(clientID), bytes, s.ttl).Err(); err != nil {
		span.RecordError(err)
		metrics.LastPlanCacheOps.WithLabelValues("save", "error").Inc()
		return fmt.Errorf("failed to save last plan: %w", err)
	}

	metrics.LastPlanCacheOps.WithLabelValues("save", "ok").Inc()
	return nil
}

// GetLastPlan 读取客户端最近方案，不存在时返回 (nil, nil)
func (s *PlanStore) GetLastPlan(ctx context.Context, clientID string) (*repository.StoredPlan, error) {
	ctx, span := planStoreTracer.Start(ctx, "plan_store.GetLastPlan",
		trace.WithAttributes(attribute.String("plan.client_id", clientID)))
	defer span.End()

	bytes, err := s.client.rdb.Get(ctx, lastPlanKey(clientID)).Bytes()
	if err != nil {
		if IsNil(err) {
			span.SetAttributes(attribute.Bool("cache.hit", false))
			metrics.LastPlanCacheOps.WithLabelValues("get", "miss").Inc()
			return nil, nil
		}
		span.RecordError(err)
		metrics.LastPlanCacheOps.WithLabelValues("get", "error").Inc()
		return nil, fmt.Errorf("failed to get last plan: %w", err)
	}

	var plan repository.StoredPlan
	if err := json.Unmarshal(bytes, &plan); err != nil {
		span.RecordError(err)
		metrics.LastPlanCacheOps.WithLabelValues("get", "error").Inc()
		return nil, fmt.Errorf("failed to unmarshal stored plan: %w", err)
	}

	span.SetAttributes(attribute.Bool("cache.hit", true))
	metrics.LastPlanCacheOps.WithLabelValues("get", "hit").Inc()
	return &plan, nil
}

// DeleteLastPlan 删除客户端最近方案
func (s *PlanStore) DeleteLastPlan(ctx context.Context, clientID string) error {
	ctx, span := planStoreTracer.Start(ctx, "plan_store.DeleteLastPlan",
		trace.WithAttributes(attribute.String("plan.client_id", clientID)))
	defer span.End()

	if err := s.client.rdb.Del(ctx, lastPlanKey(clientID)).Err(); err != nil {
		span.RecordError(err)
		metrics.LastPlanCacheOps.WithLabelValues("delete", "error").Inc()
		return fmt.Errorf("failed to delete last plan: %w", err)
	}

	metrics.LastPlanCacheOps.WithLabelValues("delete", "ok").Inc()
	return nil
}
