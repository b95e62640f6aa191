package model

import "adwise-ai-api/internal/domain/entity"

// AdPlanGenerateInput 广告计划生成工作流输入
type AdPlanGenerateInput struct {
	Request *entity.CampaignRequest

	Provider string
	Model    string

	Temperature *float32
	MaxTokens   *int
}
