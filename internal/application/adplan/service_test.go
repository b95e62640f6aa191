package adplan

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"adwise-ai-api/internal/config"
	apperrors "adwise-ai-api/pkg/errors"
)

type fakeChatModel struct {
	mu    sync.Mutex
	calls int
	reply func(ctx context.Context, msgs []*schema.Message) (*schema.Message, error)
}

func (m *fakeChatModel) Generate(ctx context.Context, input []*schema.Message, _ ...model.Option) (*schema.Message, error) {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()
	return m.reply(ctx, input)
}

func (m *fakeChatModel) Stream(context.Context, []*schema.Message, ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	return nil, fmt.Errorf("stream not supported")
}

func (m *fakeChatModel) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

type fakeFactory struct {
	model        model.BaseChatModel
	err          error
	getCalls     int
	defaultCalls int
}

func (f *fakeFactory) Get(context.Context, string) (model.BaseChatModel, error) {
	f.getCalls++
	if f.err != nil {
		return nil, f.err
	}
	return f.model, nil
}

func (f *fakeFactory) Default(context.Context) (model.BaseChatModel, error) {
	f.defaultCalls++
	if f.err != nil {
		return nil, f.err
	}
	return f.model, nil
}

func testPlanConfig(timeout time.Duration) *config.Config {
	return &config.Config{
		LLM: config.LLMConfig{
			DefaultProvider: "test",
			Providers: map[string]config.ProviderConfig{
				"test": {
					Model:       "test-model",
					MaxTokens:   1024,
					Temperature: 0.5,
					Timeout:     timeout,
				},
			},
		},
		Plan: config.PlanConfig{HistoryPageSize: 20},
	}
}

func newTestService(cm *fakeChatModel, timeout time.Duration) *PlanService {
	return NewPlanService(testPlanConfig(timeout), &fakeFactory{model: cm}, nil, nil, nil, nil, nil)
}

func staticReply(content string) func(context.Context, []*schema.Message) (*schema.Message, error) {
	return func(context.Context, []*schema.Message) (*schema.Message, error) {
		return &schema.Message{
			Role:    schema.Assistant,
			Content: content,
			ResponseMeta: &schema.ResponseMeta{
				Usage: &schema.TokenUsage{PromptTokens: 120, CompletionTokens: 340, TotalTokens: 460},
			},
		}, nil
	}
}

func TestGeneratePlanSuccess(t *testing.T) {
	cm := &fakeChatModel{reply: staticReply(samplePlanJSON)}
	svc := newTestService(cm, time.Minute)

	res := svc.GeneratePlan(context.Background(), "client-1", validCampaignRequest())
	if !res.Success {
		t.Fatalf("expected success, got error: %+v", res.Error)
	}
	if res.Data == nil || res.Data.Plan == nil {
		t.Fatal("expected plan payload")
	}
	if res.Data.GenerationID == "" {
		t.Error("expected non-empty generation id")
	}
	if res.Data.Plan.GeoStrategy.City != "Pune" {
		t.Errorf("unexpected city: %s", res.Data.Plan.GeoStrategy.City)
	}
	if len(res.Data.Warnings) != 0 {
		t.Errorf("expected no warnings, got %v", res.Data.Warnings)
	}
	if res.Data.Meta.PromptTokens != 120 || res.Data.Meta.CompletionTokens != 340 {
		t.Errorf("unexpected token usage: %+v", res.Data.Meta)
	}
	if cm.callCount() != 1 {
		t.Errorf("expected 1 model call, got %d", cm.callCount())
	}
}

func TestGeneratePlanFallsBackToDefaultModel(t *testing.T) {
	cm := &fakeChatModel{reply: staticReply(samplePlanJSON)}
	factory := &fakeFactory{model: cm}
	cfg := testPlanConfig(time.Minute)
	cfg.LLM.DefaultProvider = ""
	svc := NewPlanService(cfg, factory, nil, nil, nil, nil, nil)

	res := svc.GeneratePlan(context.Background(), "client-1", validCampaignRequest())
	if !res.Success {
		t.Fatalf("expected success, got error: %+v", res.Error)
	}
	if factory.defaultCalls != 1 {
		t.Errorf("expected 1 default model lookup, got %d", factory.defaultCalls)
	}
	if factory.getCalls != 0 {
		t.Errorf("expected no named lookups, got %d", factory.getCalls)
	}
}

func TestGeneratePlanInvalidRequestSkipsModel(t *testing.T) {
	cm := &fakeChatModel{reply: staticReply(samplePlanJSON)}
	svc := newTestService(cm, time.Minute)

	req := validCampaignRequest()
	req.BusinessName = ""
	req.BudgetLevel = "gigantic"

	res := svc.GeneratePlan(context.Background(), "client-1", req)
	if res.Success {
		t.Fatal("expected failure for invalid request")
	}
	if res.Error == nil || res.Error.Code != apperrors.CodeRequestInvalid {
		t.Fatalf("expected %s, got %+v", apperrors.CodeRequestInvalid, res.Error)
	}
	if cm.callCount() != 0 {
		t.Errorf("model must not be called on invalid request, got %d calls", cm.callCount())
	}
}

func TestGeneratePlanMalformedOutput(t *testing.T) {
	cm := &fakeChatModel{reply: staticReply("I cannot produce JSON today, sorry.")}
	svc := newTestService(cm, time.Minute)

	res := svc.GeneratePlan(context.Background(), "", validCampaignRequest())
	if res.Success {
		t.Fatal("expected failure for malformed output")
	}
	if res.Error.Code != apperrors.CodeGenerationFailed {
		t.Fatalf("expected %s, got %s", apperrors.CodeGenerationFailed, res.Error.Code)
	}
}

func TestGeneratePlanEmptyOutput(t *testing.T) {
	cm := &fakeChatModel{reply: staticReply("   ")}
	svc := newTestService(cm, time.Minute)

	res := svc.GeneratePlan(context.Background(), "", validCampaignRequest())
	if res.Success {
		t.Fatal("expected failure for empty output")
	}
	if res.Error.Code != apperrors.CodeGenerationFailed {
		t.Fatalf("expected %s, got %s", apperrors.CodeGenerationFailed, res.Error.Code)
	}
}

func TestGeneratePlanTimeout(t *testing.T) {
	cm := &fakeChatModel{reply: func(ctx context.Context, _ []*schema.Message) (*schema.Message, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	}}
	svc := newTestService(cm, 50*time.Millisecond)

	res := svc.GeneratePlan(context.Background(), "client-1", validCampaignRequest())
	if res.Success {
		t.Fatal("expected failure on timeout")
	}
	if res.Error.Code != apperrors.CodeGenerationTimeout {
		t.Fatalf("expected %s, got %s", apperrors.CodeGenerationTimeout, res.Error.Code)
	}
}

func TestGeneratePlanSchemaInvalid(t *testing.T) {
	// 合法 JSON，但缺字段且取值越界
	bad := `{"kpis": {"estimated_reach": -5, "estimated_ctr_percent": 150, "confidence_score_percent": 80, "budget_level": "low"},
		"campaign_overview": {"title": "t", "summary": "s", "primary_objective": "o"},
		"geo_strategy": {"city": "Pune", "primary_area": "Baner", "recommended_radius_km": 2,
			"target_regions": [{"name": "Baner Road", "priority": "high", "reason": "r"}],
			"time_windows": [{"label": "Morning", "hours_local": "08:00-11:00", "reason": "r"}]},
		"audience_segments": [],
		"creatives": []}`
	cm := &fakeChatModel{reply: staticReply(bad)}
	svc := newTestService(cm, time.Minute)

	res := svc.GeneratePlan(context.Background(), "", validCampaignRequest())
	if res.Success {
		t.Fatal("expected failure for schema-invalid plan")
	}
	if res.Error.Code != apperrors.CodePlanSchemaInvalid {
		t.Fatalf("expected %s, got %s", apperrors.CodePlanSchemaInvalid, res.Error.Code)
	}
}

func TestGeneratePlanDanglingReferenceIsWarning(t *testing.T) {
	withDangling := `{
	  "kpis": {"estimated_reach": 50000, "estimated_ctr_percent": 1.8, "confidence_score_percent": 75, "budget_level": "low"},
	  "campaign_overview": {"title": "t", "summary": "s", "primary_objective": "o"},
	  "geo_strategy": {
	    "city": "Pune", "primary_area": "Baner", "recommended_radius_km": 2,
	    "target_regions": [{"name": "Baner Road", "priority": "high", "reason": "r"}],
	    "time_windows": [{"label": "Morning", "hours_local": "08:00-11:00", "reason": "r"}]
	  },
	  "audience_segments": [{"segment_name": "Students", "description": "d", "age_range": "18-24", "interests": ["snacks"], "preferred_channels": ["Mobile"]}],
	  "creatives": [{"segment_name": "Commuters", "ad_format": "Search", "headline": "h", "primary_text": "p", "call_to_action": "c", "geo_context_hook": "g"}]
	}`
	cm := &fakeChatModel{reply: staticReply(withDangling)}
	svc := newTestService(cm, time.Minute)

	res := svc.GeneratePlan(context.Background(), "client-1", validCampaignRequest())
	if !res.Success {
		t.Fatalf("dangling reference must not fail generation: %+v", res.Error)
	}
	if len(res.Data.Warnings) != 1 {
		t.Fatalf("expected 1 warning, got %v", res.Data.Warnings)
	}
}

func TestGeneratePlanNeverPanics(t *testing.T) {
	cm := &fakeChatModel{reply: func(context.Context, []*schema.Message) (*schema.Message, error) {
		panic("model exploded")
	}}
	svc := newTestService(cm, time.Minute)

	res := svc.GeneratePlan(context.Background(), "client-1", validCampaignRequest())
	if res == nil {
		t.Fatal("expected a result, got nil")
	}
	if res.Success {
		t.Fatal("expected failure after panic")
	}
	if res.Error == nil {
		t.Fatal("expected error payload")
	}
	switch res.Error.Code {
	case apperrors.CodeInternalError, apperrors.CodeGenerationFailed:
	default:
		t.Fatalf("unexpected error code: %s", res.Error.Code)
	}
}

func TestLastPlanWithoutStore(t *testing.T) {
	svc := newTestService(&fakeChatModel{reply: staticReply(samplePlanJSON)}, time.Minute)

	stored, err := svc.LastPlan(context.Background(), "client-1")
	if err != nil || stored != nil {
		t.Fatalf("expected (nil, nil) without store, got (%v, %v)", stored, err)
	}
	if err := svc.DeleteLastPlan(context.Background(), "client-1"); err != nil {
		t.Fatalf("delete without store must be a no-op: %v", err)
	}
}
