package adplan

import (
	"strings"
	"testing"
)

const samplePlanJSON = `{
  "kpis": {"estimated_reach": 50000, "estimated_ctr_percent": 1.8, "confidence_score_percent": 75, "budget_level": "low"},
  "campaign_overview": {"title": "t", "summary": "s", "primary_objective": "o"},
  "geo_strategy": {
    "city": "Pune", "primary_area": "Baner", "recommended_radius_km": 2,
    "target_regions": [{"name": "Baner Road", "priority": "high", "reason": "r"}],
    "time_windows": [{"label": "Morning", "hours_local": "08:00-11:00", "reason": "r"}]
  },
  "audience_segments": [{"segment_name": "Students", "description": "d", "age_range": "18-24", "interests": ["snacks"], "preferred_channels": ["Mobile"]}],
  "creatives": [{"segment_name": "Students", "ad_format": "Search", "headline": "h", "primary_text": "p", "call_to_action": "c", "geo_context_hook": "g"}]
}`

func TestParseCampaignPlan(t *testing.T) {
	plan, raw, err := ParseCampaignPlan(samplePlanJSON)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if plan.GeoStrategy.City != "Pune" {
		t.Errorf("unexpected city: %s", plan.GeoStrategy.City)
	}
	if len(plan.AudienceSegments) != 1 || plan.AudienceSegments[0].SegmentName != "Students" {
		t.Errorf("unexpected segments: %+v", plan.AudienceSegments)
	}
	if !strings.HasPrefix(raw, "{") {
		t.Errorf("expected extracted json text, got %q", raw)
	}
}

func TestParseCampaignPlanWithFences(t *testing.T) {
	wrapped := "Here is the plan:\n```json\n" + samplePlanJSON + "\n```\nHope this helps."
	plan, _, err := ParseCampaignPlan(wrapped)
	if err != nil {
		t.Fatalf("parse failed on fenced output: %v", err)
	}
	if plan.CampaignOverview.Title != "t" {
		t.Errorf("unexpected title: %s", plan.CampaignOverview.Title)
	}
}

func TestParseCampaignPlanEmpty(t *testing.T) {
	if _, _, err := ParseCampaignPlan("   \n  "); err == nil {
		t.Fatal("expected error on empty output")
	}
}

func TestParseCampaignPlanMalformed(t *testing.T) {
	if _, _, err := ParseCampaignPlan(`{"kpis": `); err == nil {
		t.Fatal("expected error on truncated json")
	}
	if _, _, err := ParseCampaignPlan("no json here at all"); err == nil {
		t.Fatal("expected error on non-json output")
	}
}
