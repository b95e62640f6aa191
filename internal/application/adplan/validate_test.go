package adplan

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"adwise-ai-api/internal/domain/entity"
)

func validCampaignPlan() *entity.CampaignPlan {
	return &entity.CampaignPlan{
		KPIs: entity.KPIs{
			EstimatedReach:         120000,
			EstimatedCTRPercent:    2.4,
			ConfidenceScorePercent: 82,
			BudgetLevel:            entity.BudgetLevelMedium,
		},
		CampaignOverview: entity.CampaignOverview{
			Title:            "Evening Chai Rush",
			Summary:          "Target office workers around Indiranagar during evening commute.",
			PrimaryObjective: "Increase footfall during evening hours",
		},
		GeoStrategy: entity.GeoStrategy{
			City:                "Bengaluru",
			PrimaryArea:         "Indiranagar",
			RecommendedRadiusKM: 3.5,
			TargetRegions: []entity.TargetRegion{
				{Name: "Indiranagar 100ft Road", Priority: entity.RegionPriorityHigh, Reason: "dense office cluster"},
				{Name: "Domlur", Priority: entity.RegionPriorityMedium, Reason: "adjacent tech park"},
			},
			TimeWindows: []entity.TimeWindow{
				{Label: "Evening commute", HoursLocal: "17:00-20:00", Reason: "post-work snack window"},
			},
		},
		AudienceSegments: []entity.AudienceSegment{
			{
				SegmentName:       "Office Professionals",
				Description:       "Working professionals aged 24-38 near tech parks",
				AgeRange:          "24-38",
				Interests:         []string{"food delivery", "cafes"},
				PreferredChannels: []string{"Mobile", "In-app"},
			},
		},
		Creatives: []entity.Creative{
			{
				SegmentName:    "Office Professionals",
				AdFormat:       "In-app banner",
				Headline:       "Chai break, 5 minutes away",
				PrimaryText:    "Fresh chai and snacks right outside your office.",
				CallToAction:   "Get directions",
				GeoContextHook: "Near Indiranagar metro station",
			},
		},
	}
}

func TestValidateCampaignPlan(t *testing.T) {
	if err := ValidateCampaignPlan(validCampaignPlan()); err != nil {
		t.Fatalf("valid plan rejected: %v", err)
	}
}

func TestValidateCampaignPlanKPIBounds(t *testing.T) {
	plan := validCampaignPlan()
	plan.KPIs.EstimatedReach = -1
	plan.KPIs.EstimatedCTRPercent = 104
	plan.KPIs.ConfidenceScorePercent = -3
	plan.KPIs.BudgetLevel = "mega"

	err := ValidateCampaignPlan(plan)
	var verr PlanValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected PlanValidationError, got %v", err)
	}
	if len(verr.Issues) != 4 {
		t.Fatalf("expected 4 issues, got %d: %v", len(verr.Issues), verr.Issues)
	}
	if !strings.Contains(verr.First(), "kpis.budget_level invalid") {
		t.Errorf("unexpected first issue: %s", verr.First())
	}
}

func TestValidateCampaignPlanGeoStrategy(t *testing.T) {
	plan := validCampaignPlan()
	plan.GeoStrategy.RecommendedRadiusKM = 0
	plan.GeoStrategy.TargetRegions[1].Priority = "urgent"
	plan.GeoStrategy.TimeWindows = nil

	err := ValidateCampaignPlan(plan)
	var verr PlanValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected PlanValidationError, got %v", err)
	}
	for _, want := range []string{
		"geo_strategy.recommended_radius_km must be positive",
		"geo_strategy.target_regions[1].priority invalid: urgent",
		"geo_strategy.time_windows is required",
	} {
		if !containsIssue(verr.Issues, want) {
			t.Errorf("missing issue %q in %v", want, verr.Issues)
		}
	}
}

func TestValidateCampaignPlanSegments(t *testing.T) {
	plan := validCampaignPlan()
	plan.AudienceSegments = append(plan.AudienceSegments, entity.AudienceSegment{
		SegmentName:       "Office Professionals",
		Description:       "duplicate name",
		AgeRange:          "20-30",
		Interests:         []string{"tea"},
		PreferredChannels: []string{"Billboard"},
	})

	err := ValidateCampaignPlan(plan)
	var verr PlanValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected PlanValidationError, got %v", err)
	}
	for _, want := range []string{
		"audience_segments[1].segment_name duplicated: Office Professionals",
		"audience_segments[1].preferred_channels[0] invalid: Billboard",
	} {
		if !containsIssue(verr.Issues, want) {
			t.Errorf("missing issue %q in %v", want, verr.Issues)
		}
	}
}

func TestValidateCampaignPlanCreativeFields(t *testing.T) {
	plan := validCampaignPlan()
	plan.Creatives[0].Headline = ""
	plan.Creatives[0].GeoContextHook = "  "

	err := ValidateCampaignPlan(plan)
	var verr PlanValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected PlanValidationError, got %v", err)
	}
	for _, want := range []string{
		"creatives[0].headline is required",
		"creatives[0].geo_context_hook is required",
	} {
		if !containsIssue(verr.Issues, want) {
			t.Errorf("missing issue %q in %v", want, verr.Issues)
		}
	}
}

func TestCheckCreativeReferences(t *testing.T) {
	plan := validCampaignPlan()
	if warnings := CheckCreativeReferences(plan); len(warnings) != 0 {
		t.Fatalf("expected no warnings, got %v", warnings)
	}

	// 引用未知分群只产生提示，不是硬错误
	plan.Creatives = append(plan.Creatives, entity.Creative{
		SegmentName:    "Night Owls",
		AdFormat:       "Display",
		Headline:       "Late night chai",
		PrimaryText:    "Open till midnight.",
		CallToAction:   "Visit now",
		GeoContextHook: "Around Koramangala",
	})
	warnings := CheckCreativeReferences(plan)
	if len(warnings) != 1 {
		t.Fatalf("expected 1 warning, got %v", warnings)
	}
	want := "creatives[1].segment_name does not match any audience segment: Night Owls"
	if warnings[0] != want {
		t.Fatalf("unexpected warning: %s", warnings[0])
	}
	if err := ValidateCampaignPlan(plan); err != nil {
		t.Fatalf("dangling reference must not fail hard validation: %v", err)
	}
}

func TestValidateCampaignPlanRoundTrip(t *testing.T) {
	plan := validCampaignPlan()
	if err := ValidateCampaignPlan(plan); err != nil {
		t.Fatalf("fixture must validate: %v", err)
	}

	data, err := json.Marshal(plan)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	// 序列化再解析回来的计划必须通过同一套校验
	reparsed, _, err := ParseCampaignPlan(string(data))
	if err != nil {
		t.Fatalf("reparse: %v", err)
	}
	if err := ValidateCampaignPlan(reparsed); err != nil {
		t.Fatalf("reparsed plan failed validation: %v", err)
	}
	if reparsed.GeoStrategy.City != plan.GeoStrategy.City {
		t.Fatalf("round trip changed city: %s", reparsed.GeoStrategy.City)
	}
	if len(reparsed.AudienceSegments) != len(plan.AudienceSegments) {
		t.Fatalf("round trip changed segment count: %d", len(reparsed.AudienceSegments))
	}
}

func TestCheckCreativeReferencesNil(t *testing.T) {
	if warnings := CheckCreativeReferences(nil); warnings != nil {
		t.Fatalf("expected nil warnings, got %v", warnings)
	}
}

func containsIssue(issues []string, want string) bool {
	for _, got := range issues {
		if got == want {
			return true
		}
	}
	return false
}
