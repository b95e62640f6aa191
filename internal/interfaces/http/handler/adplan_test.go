package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/gin-gonic/gin"

	"adwise-ai-api/internal/application/adplan"
	"adwise-ai-api/internal/config"
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

type stubChatModel struct {
	content string
	err     error
}

func (m *stubChatModel) Generate(context.Context, []*schema.Message, ...model.Option) (*schema.Message, error) {
	if m.err != nil {
		return nil, m.err
	}
	return &schema.Message{Role: schema.Assistant, Content: m.content}, nil
}

func (m *stubChatModel) Stream(context.Context, []*schema.Message, ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	return nil, fmt.Errorf("stream not supported")
}

type stubFactory struct {
	model model.BaseChatModel
}

func (f *stubFactory) Get(context.Context, string) (model.BaseChatModel, error) {
	return f.model, nil
}

func (f *stubFactory) Default(context.Context) (model.BaseChatModel, error) {
	return f.model, nil
}

func newTestRouter(cm model.BaseChatModel) *gin.Engine {
	gin.SetMode(gin.TestMode)
	cfg := &config.Config{
		LLM: config.LLMConfig{
			DefaultProvider: "test",
			Providers: map[string]config.ProviderConfig{
				"test": {Model: "test-model", Timeout: time.Minute},
			},
		},
		Plan: config.PlanConfig{HistoryPageSize: 20},
	}
	service := adplan.NewPlanService(cfg, &stubFactory{model: cm}, nil, nil, nil, nil, nil)
	h := NewAdPlanHandler(cfg, service)

	engine := gin.New()
	v1 := engine.Group("/v1")
	plans := v1.Group("/plans")
	{
		plans.POST("/generate", h.GeneratePlan)
		plans.GET("/last", h.LastPlan)
		plans.DELETE("/last", h.DeleteLastPlan)
		plans.POST("/launch", h.LaunchPlan)
	}
	generations := v1.Group("/generations")
	{
		generations.GET("", h.ListGenerations)
		generations.GET("/:gid", h.GetGeneration)
	}
	return engine
}

func validGenerateBody() []byte {
	body, _ := json.Marshal(map[string]string{
		"business_name":         "Chai Point",
		"business_description":  "Tea cafe chain",
		"campaign_objective":    "Increase footfall",
		"country":               "India",
		"city":                  "Bengaluru",
		"area":                  "Indiranagar",
		"urban_type":            "metro",
		"budget_level":          "medium",
		"preferred_channels":    "Mobile, Display",
		"target_customer_notes": "Young professionals",
	})
	return body
}

func doRequest(engine *gin.Engine, method, path string, body []byte) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Client-ID", "test-client")
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func TestGeneratePlanEndpoint(t *testing.T) {
	engine := newTestRouter(&stubChatModel{content: samplePlanJSON})

	w := doRequest(engine, http.MethodPost, "/v1/plans/generate", validGenerateBody())
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp struct {
		Code int `json:"code"`
		Data struct {
			GenerationID string `json:"generation_id"`
			Plan         struct {
				GeoStrategy struct {
					City string `json:"city"`
				} `json:"geo_strategy"`
			} `json:"plan"`
		} `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid response json: %v", err)
	}
	if resp.Data.GenerationID == "" {
		t.Error("expected generation_id in response")
	}
	if resp.Data.Plan.GeoStrategy.City != "Pune" {
		t.Errorf("unexpected city: %s", resp.Data.Plan.GeoStrategy.City)
	}
}

func TestGeneratePlanEndpointInvalidRequest(t *testing.T) {
	engine := newTestRouter(&stubChatModel{content: samplePlanJSON})

	body, _ := json.Marshal(map[string]string{
		"business_name": "Chai Point",
		"budget_level":  "huge",
	})
	w := doRequest(engine, http.MethodPost, "/v1/plans/generate", body)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", w.Code, w.Body.String())
	}

	var resp struct {
		Error struct {
			ErrorCode string `json:"error_code"`
			Details   string `json:"details"`
		} `json:"error"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid response json: %v", err)
	}
	if resp.Error.ErrorCode != "4001" {
		t.Errorf("expected error_code 4001, got %s", resp.Error.ErrorCode)
	}
	if resp.Error.Details == "" {
		t.Error("expected validation details in response")
	}
}

func TestGeneratePlanEndpointMalformedBody(t *testing.T) {
	engine := newTestRouter(&stubChatModel{content: samplePlanJSON})

	w := doRequest(engine, http.MethodPost, "/v1/plans/generate", []byte("{not json"))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestGeneratePlanEndpointBadModelOutput(t *testing.T) {
	engine := newTestRouter(&stubChatModel{content: "sorry, no json"})

	w := doRequest(engine, http.MethodPost, "/v1/plans/generate", validGenerateBody())
	if w.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d: %s", w.Code, w.Body.String())
	}
}

func TestLastPlanEndpointNotFound(t *testing.T) {
	engine := newTestRouter(&stubChatModel{content: samplePlanJSON})

	// 没有配置缓存时视为不存在
	w := doRequest(engine, http.MethodGet, "/v1/plans/last", nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}

func TestDeleteLastPlanEndpoint(t *testing.T) {
	engine := newTestRouter(&stubChatModel{content: samplePlanJSON})

	w := doRequest(engine, http.MethodDelete, "/v1/plans/last", nil)
	if w.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", w.Code)
	}
}

func TestLaunchPlanEndpoint(t *testing.T) {
	engine := newTestRouter(&stubChatModel{content: samplePlanJSON})

	body, _ := json.Marshal(map[string]string{"generation_id": "gen-123"})
	w := doRequest(engine, http.MethodPost, "/v1/plans/launch", body)
	if w.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d: %s", w.Code, w.Body.String())
	}
}

func TestListGenerationsEndpoint(t *testing.T) {
	engine := newTestRouter(&stubChatModel{content: samplePlanJSON})

	w := doRequest(engine, http.MethodGet, "/v1/generations?page=1&page_size=10", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp struct {
		Meta struct {
			Page     int `json:"page"`
			PageSize int `json:"page_size"`
		} `json:"meta"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid response json: %v", err)
	}
	if resp.Meta.Page != 1 || resp.Meta.PageSize != 10 {
		t.Errorf("unexpected page meta: %+v", resp.Meta)
	}
}

func TestGetGenerationEndpointNotFound(t *testing.T) {
	engine := newTestRouter(&stubChatModel{content: samplePlanJSON})

	w := doRequest(engine, http.MethodGet, "/v1/generations/does-not-exist", nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}
