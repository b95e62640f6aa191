package adplan

import (
	"strings"
	"unicode/utf8"

	"adwise-ai-api/internal/domain/entity"
)

// ValidateCampaignRequest 校验生成请求。
// 除 target_customer_notes 外所有字段必填；只做校验，不修改请求内容。
func ValidateCampaignRequest(req *entity.CampaignRequest) error {
	var issues []string
	if req == nil {
		return RequestValidationError{Issues: []string{"request is nil"}}
	}

	required := []struct {
		field string
		value string
	}{
		{"business_name", req.BusinessName},
		{"business_description", req.BusinessDescription},
		{"campaign_objective", req.CampaignObjective},
		{"country", req.Country},
		{"city", req.City},
		{"area", req.Area},
		{"urban_type", req.UrbanType},
		{"preferred_channels", req.PreferredChannels},
	}
	for _, f := range required {
		if strings.TrimSpace(f.value) == "" {
			issues = append(issues, f.field+" is required")
		} else if utf8.RuneCountInString(f.value) > 2000 {
			issues = append(issues, f.field+" too long")
		}
	}

	if strings.TrimSpace(string(req.BudgetLevel)) == "" {
		issues = append(issues, "budget_level is required")
	} else if !req.BudgetLevel.IsValid() {
		issues = append(issues, "budget_level invalid: "+string(req.BudgetLevel)+" (expected low, medium or high)")
	}

	if utf8.RuneCountInString(req.TargetCustomerNotes) > 5000 {
		issues = append(issues, "target_customer_notes too long")
	}

	if len(issues) > 0 {
		return RequestValidationError{Issues: issues}
	}
	return nil
}
