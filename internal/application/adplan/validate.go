package adplan

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"adwise-ai-api/internal/domain/entity"
)

var allowedSegmentChannels = map[string]struct{}{
	"Mobile":  {},
	"In-app":  {},
	"Display": {},
	"Search":  {},
	"CTV":     {},
}

// ValidateCampaignPlan 对模型输出做强约束校验，避免脏数据透传给前端。
// 创意与分群的引用关系单独走 CheckCreativeReferences，属于提示而非硬错误。
func ValidateCampaignPlan(plan *entity.CampaignPlan) error {
	var issues []string
	if plan == nil {
		return PlanValidationError{Issues: []string{"plan is nil"}}
	}

	if !plan.KPIs.BudgetLevel.IsValid() {
		issues = append(issues, "kpis.budget_level invalid: "+string(plan.KPIs.BudgetLevel))
	}
	if plan.KPIs.EstimatedReach < 0 {
		issues = append(issues, "kpis.estimated_reach must be non-negative")
	}
	if plan.KPIs.EstimatedCTRPercent < 0 || plan.KPIs.EstimatedCTRPercent > 100 {
		issues = append(issues, "kpis.estimated_ctr_percent out of range [0,100]")
	}
	if plan.KPIs.ConfidenceScorePercent < 0 || plan.KPIs.ConfidenceScorePercent > 100 {
		issues = append(issues, "kpis.confidence_score_percent out of range [0,100]")
	}

	if strings.TrimSpace(plan.CampaignOverview.Title) == "" {
		issues = append(issues, "campaign_overview.title is required")
	} else if utf8.RuneCountInString(plan.CampaignOverview.Title) > 255 {
		issues = append(issues, "campaign_overview.title too long")
	}
	if strings.TrimSpace(plan.CampaignOverview.Summary) == "" {
		issues = append(issues, "campaign_overview.summary is required")
	}
	if strings.TrimSpace(plan.CampaignOverview.PrimaryObjective) == "" {
		issues = append(issues, "campaign_overview.primary_objective is required")
	}

	if strings.TrimSpace(plan.GeoStrategy.City) == "" {
		issues = append(issues, "geo_strategy.city is required")
	}
	if strings.TrimSpace(plan.GeoStrategy.PrimaryArea) == "" {
		issues = append(issues, "geo_strategy.primary_area is required")
	}
	if plan.GeoStrategy.RecommendedRadiusKM <= 0 {
		issues = append(issues, "geo_strategy.recommended_radius_km must be positive")
	}
	if len(plan.GeoStrategy.TargetRegions) == 0 {
		issues = append(issues, "geo_strategy.target_regions is required")
	}
	for i := range plan.GeoStrategy.TargetRegions {
		r := plan.GeoStrategy.TargetRegions[i]
		path := fmt.Sprintf("geo_strategy.target_regions[%d]", i)
		if strings.TrimSpace(r.Name) == "" {
			issues = append(issues, path+".name is required")
		}
		if !r.Priority.IsValid() {
			issues = append(issues, path+".priority invalid: "+string(r.Priority))
		}
		if strings.TrimSpace(r.Reason) == "" {
			issues = append(issues, path+".reason is required")
		}
	}
	if len(plan.GeoStrategy.TimeWindows) == 0 {
		issues = append(issues, "geo_strategy.time_windows is required")
	}
	for i := range plan.GeoStrategy.TimeWindows {
		w := plan.GeoStrategy.TimeWindows[i]
		path := fmt.Sprintf("geo_strategy.time_windows[%d]", i)
		if strings.TrimSpace(w.Label) == "" {
			issues = append(issues, path+".label is required")
		}
		if strings.TrimSpace(w.HoursLocal) == "" {
			issues = append(issues, path+".hours_local is required")
		}
		if strings.TrimSpace(w.Reason) == "" {
			issues = append(issues, path+".reason is required")
		}
	}

	if len(plan.AudienceSegments) == 0 {
		issues = append(issues, "audience_segments is required")
	}
	segmentNames := make(map[string]struct{}, len(plan.AudienceSegments))
	for i := range plan.AudienceSegments {
		s := plan.AudienceSegments[i]
		path := fmt.Sprintf("audience_segments[%d]", i)

		name := strings.TrimSpace(s.SegmentName)
		if name == "" {
			issues = append(issues, path+".segment_name is required")
		} else {
			if _, ok := segmentNames[name]; ok {
				issues = append(issues, path+".segment_name duplicated: "+name)
			} else {
				segmentNames[name] = struct{}{}
			}
		}

		if strings.TrimSpace(s.Description) == "" {
			issues = append(issues, path+".description is required")
		}
		if strings.TrimSpace(s.AgeRange) == "" {
			issues = append(issues, path+".age_range is required")
		}
		if len(s.Interests) == 0 {
			issues = append(issues, path+".interests is required")
		}
		if len(s.PreferredChannels) == 0 {
			issues = append(issues, path+".preferred_channels is required")
		}
		for j, ch := range s.PreferredChannels {
			if _, ok := allowedSegmentChannels[ch]; !ok {
				issues = append(issues, fmt.Sprintf("%s.preferred_channels[%d] invalid: %s", path, j, ch))
			}
		}
	}

	if len(plan.Creatives) == 0 {
		issues = append(issues, "creatives is required")
	}
	for i := range plan.Creatives {
		c := plan.Creatives[i]
		path := fmt.Sprintf("creatives[%d]", i)
		if strings.TrimSpace(c.SegmentName) == "" {
			issues = append(issues, path+".segment_name is required")
		}
		if strings.TrimSpace(c.AdFormat) == "" {
			issues = append(issues, path+".ad_format is required")
		}
		if strings.TrimSpace(c.Headline) == "" {
			issues = append(issues, path+".headline is required")
		}
		if strings.TrimSpace(c.PrimaryText) == "" {
			issues = append(issues, path+".primary_text is required")
		}
		if strings.TrimSpace(c.CallToAction) == "" {
			issues = append(issues, path+".call_to_action is required")
		}
		if strings.TrimSpace(c.GeoContextHook) == "" {
			issues = append(issues, path+".geo_context_hook is required")
		}
	}

	if len(issues) > 0 {
		return PlanValidationError{Issues: issues}
	}
	return nil
}

// CheckCreativeReferences 检查创意对分群的引用，未命中时返回提示列表。
// 引用缺失不阻断返回，前端仍可渲染，只是对应创意无法归入分群。
func CheckCreativeReferences(plan *entity.CampaignPlan) []string {
	if plan == nil {
		return nil
	}

	segmentNames := make(map[string]struct{}, len(plan.AudienceSegments))
	for i := range plan.AudienceSegments {
		name := strings.TrimSpace(plan.AudienceSegments[i].SegmentName)
		if name != "" {
			segmentNames[name] = struct{}{}
		}
	}

	var warnings []string
	for i := range plan.Creatives {
		name := strings.TrimSpace(plan.Creatives[i].SegmentName)
		if name == "" {
			continue
		}
		if _, ok := segmentNames[name]; !ok {
			warnings = append(warnings,
				fmt.Sprintf("creatives[%d].segment_name does not match any audience segment: %s", i, name))
		}
	}
	return warnings
}
