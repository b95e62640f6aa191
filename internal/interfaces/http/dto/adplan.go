// Package dto 提供 HTTP 层数据传输对象
package dto

import (
	"time"

	"adwise-ai-api/internal/domain/entity"
	"adwise-ai-api/internal/domain/repository"
)

// GeneratePlanRequest 广告计划生成请求。
// 字段级校验统一由应用层完成，这里不加 binding 标签，保证错误提示逐字段可读。
type GeneratePlanRequest struct {
	BusinessName        string `json:"business_name"`
	BusinessDescription string `json:"business_description"`
	CampaignObjective   string `json:"campaign_objective"`
	Country             string `json:"country"`
	City                string `json:"city"`
	Area                string `json:"area"`
	UrbanType           string `json:"urban_type"`
	BudgetLevel         string `json:"budget_level"`
	PreferredChannels   string `json:"preferred_channels"`
	TargetCustomerNotes string `json:"target_customer_notes"`
}

// ToEntity 转换为领域请求
func (r *GeneratePlanRequest) ToEntity() *entity.CampaignRequest {
	if r == nil {
		return nil
	}
	return &entity.CampaignRequest{
		BusinessName:        r.BusinessName,
		BusinessDescription: r.BusinessDescription,
		CampaignObjective:   r.CampaignObjective,
		Country:             r.Country,
		City:                r.City,
		Area:                r.Area,
		UrbanType:           r.UrbanType,
		BudgetLevel:         entity.BudgetLevel(r.BudgetLevel),
		PreferredChannels:   r.PreferredChannels,
		TargetCustomerNotes: r.TargetCustomerNotes,
	}
}

// UsageMeta 模型调用元信息
type UsageMeta struct {
	Provider         string    `json:"provider"`
	Model            string    `json:"model,omitempty"`
	PromptTokens     int       `json:"prompt_tokens,omitempty"`
	CompletionTokens int       `json:"completion_tokens,omitempty"`
	GeneratedAt      time.Time `json:"generated_at"`
}

// PlanResponse 广告计划生成响应
type PlanResponse struct {
	GenerationID string               `json:"generation_id"`
	Plan         *entity.CampaignPlan `json:"plan"`
	Warnings     []string             `json:"warnings,omitempty"`
	Usage        *UsageMeta           `json:"usage,omitempty"`
	DurationMs   int64                `json:"duration_ms"`
}

// LastPlanResponse 最近方案响应
type LastPlanResponse struct {
	GenerationID string               `json:"generation_id"`
	Plan         *entity.CampaignPlan `json:"plan"`
	Warnings     []string             `json:"warnings,omitempty"`
	Provider     string               `json:"provider,omitempty"`
	Model        string               `json:"model,omitempty"`
	GeneratedAt  time.Time            `json:"generated_at"`
}

// NewLastPlanResponse 从存储快照构建响应
func NewLastPlanResponse(stored *repository.StoredPlan) *LastPlanResponse {
	if stored == nil {
		return nil
	}
	return &LastPlanResponse{
		GenerationID: stored.GenerationID,
		Plan:         stored.Plan,
		Warnings:     stored.Warnings,
		Provider:     stored.Provider,
		Model:        stored.Model,
		GeneratedAt:  stored.GeneratedAt,
	}
}

// LaunchPlanRequest 方案投放请求
type LaunchPlanRequest struct {
	GenerationID string `json:"generation_id"`
}

// LaunchPlanResponse 方案投放响应
type LaunchPlanResponse struct {
	GenerationID string `json:"generation_id,omitempty"`
	Status       string `json:"status"`
}

// GenerationSummary 生成历史条目
type GenerationSummary struct {
	ID           string    `json:"id"`
	ClientID     string    `json:"client_id"`
	Status       string    `json:"status"`
	Provider     string    `json:"provider,omitempty"`
	Model        string    `json:"model,omitempty"`
	ErrorMessage string    `json:"error_message,omitempty"`
	DurationMs   int       `json:"duration_ms,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// NewGenerationSummary 从实体构建历史条目
func NewGenerationSummary(gen *entity.PlanGeneration) *GenerationSummary {
	if gen == nil {
		return nil
	}
	return &GenerationSummary{
		ID:           gen.ID,
		ClientID:     gen.ClientID,
		Status:       string(gen.Status),
		Provider:     gen.Provider,
		Model:        gen.Model,
		ErrorMessage: gen.ErrorMessage,
		DurationMs:   gen.DurationMs,
		CreatedAt:    gen.CreatedAt,
	}
}
