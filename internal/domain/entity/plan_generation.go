// Package entity 定义领域实体
package entity

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// GenerationStatus 生成记录状态
type GenerationStatus string

const (
	GenerationStatusRunning   GenerationStatus = "running"
	GenerationStatusCompleted GenerationStatus = "completed"
	GenerationStatusFailed    GenerationStatus = "failed"
)

// PlanGeneration 一次广告计划生成的历史记录
type PlanGeneration struct {
	ID               string           `json:"id" gorm:"type:uuid;primaryKey"`
	ClientID         string           `json:"client_id" gorm:"type:varchar(64);index;not null"`
	Status           GenerationStatus `json:"status" gorm:"type:varchar(16);not null"`
	RequestParams    json.RawMessage  `json:"request_params" gorm:"type:jsonb"`
	RawOutput        string           `json:"raw_output,omitempty" gorm:"type:text"`
	Plan             json.RawMessage  `json:"plan,omitempty" gorm:"type:jsonb"`
	Warnings         json.RawMessage  `json:"warnings,omitempty" gorm:"type:jsonb"`
	ErrorMessage     string           `json:"error_message,omitempty" gorm:"type:text"`
	Provider         string           `json:"provider,omitempty" gorm:"type:varchar(32)"`
	Model            string           `json:"model,omitempty" gorm:"type:varchar(64)"`
	TokensPrompt     int              `json:"tokens_prompt,omitempty" gorm:"not null;default:0"`
	TokensCompletion int              `json:"tokens_completion,omitempty" gorm:"not null;default:0"`
	DurationMs       int              `json:"duration_ms,omitempty" gorm:"not null;default:0"`
	CreatedAt        time.Time        `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt        time.Time        `json:"updated_at" gorm:"autoUpdateTime"`
	StartedAt        *time.Time       `json:"started_at,omitempty"`
	CompletedAt      *time.Time       `json:"completed_at,omitempty"`
}

// TableName 指定表名
func (PlanGeneration) TableName() string {
	return "plan_generations"
}

// NewPlanGeneration 创建新的生成记录
func NewPlanGeneration(clientID string, requestParams json.RawMessage) *PlanGeneration {
	now := time.Now()
	return &PlanGeneration{
		ID:            uuid.NewString(),
		ClientID:      clientID,
		Status:        GenerationStatusRunning,
		RequestParams: requestParams,
		CreatedAt:     now,
		StartedAt:     &now,
	}
}

// Complete 标记生成成功
func (g *PlanGeneration) Complete(plan json.RawMessage, raw string, durationMs int) {
	now := time.Now()
	g.Status = GenerationStatusCompleted
	g.Plan = plan
	g.RawOutput = raw
	g.DurationMs = durationMs
	g.CompletedAt = &now
}

// Fail 标记生成失败
func (g *PlanGeneration) Fail(errMsg string, durationMs int) {
	now := time.Now()
	g.Status = GenerationStatusFailed
	g.ErrorMessage = errMsg
	g.DurationMs = durationMs
	g.CompletedAt = &now
}
