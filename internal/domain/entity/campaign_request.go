// Package entity 定义领域实体
package entity

// BudgetLevel 预算档位
type BudgetLevel string

const (
	BudgetLevelLow    BudgetLevel = "low"
	BudgetLevelMedium BudgetLevel = "medium"
	BudgetLevelHigh   BudgetLevel = "high"
)

// IsValid 校验预算档位取值
func (b BudgetLevel) IsValid() bool {
	switch b {
	case BudgetLevelLow, BudgetLevelMedium, BudgetLevelHigh:
		return true
	default:
		return false
	}
}

// CampaignRequest 一次生成请求的输入（提交后不可变，不做服务端持久化）
type CampaignRequest struct {
	BusinessName        string      `json:"business_name"`
	BusinessDescription string      `json:"business_description"`
	CampaignObjective   string      `json:"campaign_objective"`
	Country             string      `json:"country"`
	City                string      `json:"city"`
	Area                string      `json:"area"`
	UrbanType           string      `json:"urban_type"`
	BudgetLevel         BudgetLevel `json:"budget_level"`
	PreferredChannels   string      `json:"preferred_channels"`
	// TargetCustomerNotes 允许为空，其余字段均为必填
	TargetCustomerNotes string `json:"target_customer_notes"`
}
