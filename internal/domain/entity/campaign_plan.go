// Package entity 定义领域实体
package entity

// RegionPriority 目标区域优先级
type RegionPriority string

const (
	RegionPriorityHigh   RegionPriority = "high"
	RegionPriorityMedium RegionPriority = "medium"
	RegionPriorityLow    RegionPriority = "low"
)

// IsValid 校验优先级取值
func (p RegionPriority) IsValid() bool {
	switch p {
	case RegionPriorityHigh, RegionPriorityMedium, RegionPriorityLow:
		return true
	default:
		return false
	}
}

// CampaignPlan 模型生成的完整广告计划，供前端仪表盘渲染
type CampaignPlan struct {
	KPIs             KPIs              `json:"kpis"`
	CampaignOverview CampaignOverview  `json:"campaign_overview"`
	GeoStrategy      GeoStrategy       `json:"geo_strategy"`
	AudienceSegments []AudienceSegment `json:"audience_segments"`
	Creatives        []Creative        `json:"creatives"`
}

// KPIs 关键指标卡片数据
type KPIs struct {
	EstimatedReach         float64     `json:"estimated_reach"`
	EstimatedCTRPercent    float64     `json:"estimated_ctr_percent"`
	ConfidenceScorePercent float64     `json:"confidence_score_percent"`
	BudgetLevel            BudgetLevel `json:"budget_level"`
}

// CampaignOverview 计划概览
type CampaignOverview struct {
	Title            string `json:"title"`
	Summary          string `json:"summary"`
	PrimaryObjective string `json:"primary_objective"`
}

// GeoStrategy 地理投放策略
type GeoStrategy struct {
	City                string         `json:"city"`
	PrimaryArea         string         `json:"primary_area"`
	RecommendedRadiusKM float64        `json:"recommended_radius_km"`
	TargetRegions       []TargetRegion `json:"target_regions"`
	TimeWindows         []TimeWindow   `json:"time_windows"`
}

// TargetRegion 目标投放区域
type TargetRegion struct {
	Name     string         `json:"name"`
	Priority RegionPriority `json:"priority"`
	Reason   string         `json:"reason"`
}

// TimeWindow 投放时段
type TimeWindow struct {
	Label      string `json:"label"`
	HoursLocal string `json:"hours_local"`
	Reason     string `json:"reason"`
}

// AudienceSegment 受众分群，segment_name 在列表内唯一，被创意引用
type AudienceSegment struct {
	SegmentName       string   `json:"segment_name"`
	Description       string   `json:"description"`
	AgeRange          string   `json:"age_range"`
	Interests         []string `json:"interests"`
	PreferredChannels []string `json:"preferred_channels"`
}

// Creative 广告创意，segment_name 应引用 audience_segments 中的分群
type Creative struct {
	SegmentName    string `json:"segment_name"`
	AdFormat       string `json:"ad_format"`
	Headline       string `json:"headline"`
	PrimaryText    string `json:"primary_text"`
	CallToAction   string `json:"call_to_action"`
	GeoContextHook string `json:"geo_context_hook"`
}
