// Package repository 定义领域仓储接口
package repository

import (
	"context"

	"adwise-ai-api/internal/domain/entity"
)

// PlanGenerationRepository 广告计划生成记录仓储
type PlanGenerationRepository interface {
	Create(ctx context.Context, generation *entity.PlanGeneration) error
	Update(ctx context.Context, generation *entity.PlanGeneration) error
	GetByID(ctx context.Context, id string) (*entity.PlanGeneration, error)
	// ListByClient 按创建时间倒序返回指定客户端的生成记录
	ListByClient(ctx context.Context, clientID string, limit, offset int) ([]*entity.PlanGeneration, int64, error)
}
