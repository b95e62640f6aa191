package repository

import (
	"context"
	"time"

	"adwise-ai-api/internal/domain/entity"
)

// StoredPlan 客户端最近一次生成的方案快照
type StoredPlan struct {
	GenerationID string               `json:"generation_id"`
	Plan         *entity.CampaignPlan `json:"plan"`
	Warnings     []string             `json:"warnings,omitempty"`
	Provider     string               `json:"provider"`
	Model        string               `json:"model"`
	GeneratedAt  time.Time            `json:"generated_at"`
}

// PlanStore 最近方案存储，按客户端维度读写
type PlanStore interface {
	SaveLastPlan(ctx context.Context, clientID string, plan *StoredPlan) error
	// GetLastPlan 不存在时返回 (nil, nil)
	GetLastPlan(ctx context.Context, clientID string) (*StoredPlan, error)
	DeleteLastPlan(ctx context.Context, clientID string) error
}
