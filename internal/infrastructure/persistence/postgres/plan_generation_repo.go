// Package postgres 提供 PostgreSQL Repository 实现
package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"adwise-ai-api/internal/domain/entity"
)

// PlanGenerationRepository 方案生成记录仓储实现
type PlanGenerationRepository struct {
	client *Client
}

// NewPlanGenerationRepository 创建方案生成记录仓储
func NewPlanGenerationRepository(client *Client) *PlanGenerationRepository {
	return &PlanGenerationRepository{client: client}
}

// Create 创建生成记录
func (r *PlanGenerationRepository) Create(ctx context.Context, gen *entity.PlanGeneration) error {
	ctx, span := tracer.Start(ctx, "postgres.PlanGenerationRepository.Create")
	defer span.End()

	db := getDB(ctx, r.client.db)
	if err := db.Create(gen).Error; err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to create plan generation: %w", err)
	}
	return nil
}

// Update 更新生成记录
func (r *PlanGenerationRepository) Update(ctx context.Context, gen *entity.PlanGeneration) error {
	ctx, span := tracer.Start(ctx, "postgres.PlanGenerationRepository.Update")
	defer span.End()

	db := getDB(ctx, r.client.db)
	if err := db.Save(gen).Error; err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to update plan generation: %w", err)
	}
	return nil
}

// GetByID 根据 ID 获取生成记录，不存在时返回 nil
func (r *PlanGenerationRepository) GetByID(ctx context.Context, id string) (*entity.PlanGeneration, error) {
	ctx, span := tracer.Start(ctx, "postgres.PlanGenerationRepository.GetByID")
	defer span.End()

	db := getDB(ctx, r.client.db)
	var gen entity.PlanGeneration
	if err := db.First(&gen, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		span.RecordError(err)
		return nil, fmt.Errorf("failed to get plan generation: %w", err)
	}
	return &gen, nil
}

// ListByClient 按客户端分页获取生成记录，按创建时间倒序
func (r *PlanGenerationRepository) ListByClient(ctx context.Context, clientID string, limit, offset int) ([]*entity.PlanGeneration, int64, error) {
	ctx, span := tracer.Start(ctx, "postgres.PlanGenerationRepository.ListByClient")
	defer span.End()

	db := getDB(ctx, r.client.db)
	query := db.Model(&entity.PlanGeneration{}).Where("client_id = ?", clientID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		span.RecordError(err)
		return nil, 0, fmt.Errorf("failed to count plan generations: %w", err)
	}

	var gens []*entity.PlanGeneration
	if err := query.Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&gens).Error; err != nil {
		span.RecordError(err)
		return nil, 0, fmt.Errorf("failed to list plan generations: %w", err)
	}

	return gens, total, nil
}
