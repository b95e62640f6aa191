package chain

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	openaiopts "github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	llmctx "adwise-ai-api/internal/domain/service"
	wfmodel "adwise-ai-api/internal/workflow/model"
	wfnode "adwise-ai-api/internal/workflow/node"
	workflowport "adwise-ai-api/internal/workflow/port"
	workflowprompt "adwise-ai-api/internal/workflow/prompt"
	"adwise-ai-api/pkg/logger"
)

type AdPlanChain struct {
	factory workflowport.ChatModelFactory

	chainOnce sync.Once
	chain     compose.Runnable[*wfmodel.AdPlanGenerateInput, *schema.Message]
	chainErr  error
}

func NewAdPlanChain(factory workflowport.ChatModelFactory) *AdPlanChain {
	return &AdPlanChain{factory: factory}
}

func (c *AdPlanChain) Invoke(ctx context.Context, in *wfmodel.AdPlanGenerateInput) (*schema.Message, error) {
	if c == nil || c.factory == nil {
		return nil, fmt.Errorf("llm factory not configured")
	}
	if in == nil {
		return nil, fmt.Errorf("input is nil")
	}

	chain, err := c.getChain()
	if err != nil {
		return nil, err
	}
	return chain.Invoke(ctx, in)
}

type adPlanChainState struct {
	In       *wfmodel.AdPlanGenerateInput
	Messages []*schema.Message
	OutMsg   *schema.Message
}

func (c *AdPlanChain) getChain() (compose.Runnable[*wfmodel.AdPlanGenerateInput, *schema.Message], error) {
	c.chainOnce.Do(func() {
		c.chain, c.chainErr = c.buildChain(context.Background())
	})
	return c.chain, c.chainErr
}

func (c *AdPlanChain) buildChain(ctx context.Context) (compose.Runnable[*wfmodel.AdPlanGenerateInput, *schema.Message], error) {
	chain := compose.NewChain[*wfmodel.AdPlanGenerateInput, *schema.Message]()

	chain.AppendLambda(
		compose.InvokableLambda(func(_ context.Context, in *wfmodel.AdPlanGenerateInput) (*adPlanChainState, error) {
			if in == nil {
				return nil, fmt.Errorf("input is nil")
			}
			return &adPlanChainState{In: in}, nil
		}),
		compose.WithNodeName("adplan.init"),
	)

	chain.AppendLambda(
		compose.InvokableLambda(func(ctx context.Context, st *adPlanChainState) (*adPlanChainState, error) {
			if st == nil || st.In == nil {
				return nil, fmt.Errorf("state is nil")
			}
			msgs, err := FormatAdPlanMessages(ctx, st.In)
			if err != nil {
				return nil, err
			}
			st.Messages = msgs
			return st, nil
		}),
		compose.WithNodeName("adplan.template"),
	)

	chain.AppendLambda(
		compose.InvokableLambda(func(ctx context.Context, st *adPlanChainState) (*adPlanChainState, error) {
			if st == nil || st.In == nil {
				return nil, fmt.Errorf("state is nil")
			}
			if c.factory == nil {
				return nil, fmt.Errorf("llm factory not configured")
			}

			provider := strings.TrimSpace(st.In.Provider)
			ctx = llmctx.WithWorkflowProvider(ctx, "ad_plan_generate", provider)

			var chatModel model.BaseChatModel
			var err error
			if provider == "" {
				chatModel, err = c.factory.Default(ctx)
			} else {
				chatModel, err = c.factory.Get(ctx, provider)
			}
			if err != nil {
				return nil, err
			}

			outMsg, err := chatModel.Generate(ctx, st.Messages, buildAdPlanModelOptions(st.In, true)...)
			if err != nil && wfnode.IsResponseFormatUnsupportedError(err) {
				logger.Warn(ctx, "llm json_schema not supported, fallback to prompt-only",
					"provider", provider,
					"model", pickAdPlanModel(st.In),
					"error", err.Error(),
				)
				outMsg, err = chatModel.Generate(ctx, st.Messages, buildAdPlanModelOptions(st.In, false)...)
			}
			if err != nil {
				return nil, err
			}
			if outMsg == nil {
				return nil, fmt.Errorf("empty llm response")
			}
			st.OutMsg = outMsg
			return st, nil
		}),
		compose.WithNodeName("adplan.llm"),
	)

	chain.AppendLambda(
		compose.InvokableLambda(func(_ context.Context, st *adPlanChainState) (*schema.Message, error) {
			if st == nil || st.OutMsg == nil {
				return nil, fmt.Errorf("state is nil")
			}
			return st.OutMsg, nil
		}),
		compose.WithNodeName("adplan.finalize"),
	)

	return chain.Compile(ctx)
}

var defaultPromptRegistry = workflowprompt.NewRegistry()

// FormatAdPlanMessages 渲染投放方案提示词。
// 约定：相同输入必须渲染出字节级一致的消息（schema 经 json.Marshal 输出，键序稳定）。
func FormatAdPlanMessages(ctx context.Context, in *wfmodel.AdPlanGenerateInput) ([]*schema.Message, error) {
	tpl, err := defaultPromptRegistry.ChatTemplate(workflowprompt.PromptAdPlanV1)
	if err != nil {
		return nil, err
	}
	if in == nil || in.Request == nil {
		return nil, fmt.Errorf("input is nil")
	}

	schemaJSON, err := json.MarshalIndent(AdPlanJSONSchema(), "", "  ")
	if err != nil {
		return nil, err
	}

	req := in.Request
	vars := map[string]any{
		"output_schema":         string(schemaJSON),
		"business_name":         strings.TrimSpace(req.BusinessName),
		"business_description":  strings.TrimSpace(req.BusinessDescription),
		"campaign_objective":    strings.TrimSpace(req.CampaignObjective),
		"country":               strings.TrimSpace(req.Country),
		"city":                  strings.TrimSpace(req.City),
		"area":                  strings.TrimSpace(req.Area),
		"urban_type":            strings.TrimSpace(req.UrbanType),
		"budget_level":          strings.TrimSpace(string(req.BudgetLevel)),
		"preferred_channels":    strings.TrimSpace(req.PreferredChannels),
		"target_customer_notes": strings.TrimSpace(req.TargetCustomerNotes),
	}
	return tpl.Format(ctx, vars)
}

func buildAdPlanModelOptions(in *wfmodel.AdPlanGenerateInput, enableSchema bool) []model.Option {
	opts := make([]model.Option, 0, 4)
	if in == nil {
		return opts
	}

	if in.Temperature != nil {
		opts = append(opts, model.WithTemperature(*in.Temperature))
	}
	if in.MaxTokens != nil {
		opts = append(opts, model.WithMaxTokens(*in.MaxTokens))
	}
	if strings.TrimSpace(in.Model) != "" {
		m := strings.TrimSpace(in.Model)
		opts = append(opts, model.WithModel(m))
	}

	if enableSchema {
		opts = append(opts, openaiopts.WithExtraFields(map[string]any{
			"response_format": map[string]any{
				"type": "json_schema",
				"json_schema": map[string]any{
					"name":   "ad_plan",
					"strict": false,
					"schema": AdPlanJSONSchema(),
				},
			},
		}))
	}

	return opts
}

func pickAdPlanModel(in *wfmodel.AdPlanGenerateInput) string {
	if in == nil {
		return ""
	}
	if strings.TrimSpace(in.Model) != "" {
		return strings.TrimSpace(in.Model)
	}
	return ""
}

// AdPlanJSONSchema 既用于 response_format 约束，也渲染进提示词正文，两处保持同源。
func AdPlanJSONSchema() map[string]any {
	budgetEnum := []any{"low", "medium", "high"}
	priorityEnum := []any{"high", "medium", "low"}
	channelEnum := []any{"Mobile", "In-app", "Display", "Search", "CTV"}

	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"required":             []any{"kpis", "campaign_overview", "geo_strategy", "audience_segments", "creatives"},
		"properties": map[string]any{
			"kpis": map[string]any{
				"type":                 "object",
				"additionalProperties": false,
				"required":             []any{"estimated_reach", "estimated_ctr_percent", "confidence_score_percent", "budget_level"},
				"properties": map[string]any{
					"estimated_reach":          map[string]any{"type": "number", "description": "The estimated reach of the ad campaign."},
					"estimated_ctr_percent":    map[string]any{"type": "number", "description": "The estimated click-through rate percentage."},
					"confidence_score_percent": map[string]any{"type": "number", "description": "The confidence score percentage."},
					"budget_level":             map[string]any{"type": "string", "enum": budgetEnum},
				},
			},
			"campaign_overview": map[string]any{
				"type":                 "object",
				"additionalProperties": false,
				"required":             []any{"title", "summary", "primary_objective"},
				"properties": map[string]any{
					"title":             map[string]any{"type": "string", "description": "A short campaign title."},
					"summary":           map[string]any{"type": "string", "description": "A 2-3 line explanation of the strategy."},
					"primary_objective": map[string]any{"type": "string"},
				},
			},
			"geo_strategy": map[string]any{
				"type":                 "object",
				"additionalProperties": false,
				"required":             []any{"city", "primary_area", "recommended_radius_km", "target_regions", "time_windows"},
				"properties": map[string]any{
					"city":                  map[string]any{"type": "string"},
					"primary_area":          map[string]any{"type": "string", "description": "The primary area within the city to target."},
					"recommended_radius_km": map[string]any{"type": "number", "description": "The recommended radius in kilometers around the primary area."},
					"target_regions": map[string]any{
						"type": "array",
						"items": map[string]any{
							"type":                 "object",
							"additionalProperties": false,
							"required":             []any{"name", "priority", "reason"},
							"properties": map[string]any{
								"name":     map[string]any{"type": "string", "description": "The name of the area or neighborhood."},
								"priority": map[string]any{"type": "string", "enum": priorityEnum},
								"reason":   map[string]any{"type": "string", "description": "The reason why this area is a good target."},
							},
						},
					},
					"time_windows": map[string]any{
						"type": "array",
						"items": map[string]any{
							"type":                 "object",
							"additionalProperties": false,
							"required":             []any{"label", "hours_local", "reason"},
							"properties": map[string]any{
								"label":       map[string]any{"type": "string", "description": "A label for the time window (e.g., Office commute)."},
								"hours_local": map[string]any{"type": "string", "description": "The hours of the time window in local time (e.g., 7:00-10:00)."},
								"reason":      map[string]any{"type": "string", "description": "The reason why this time window is ideal."},
							},
						},
					},
				},
			},
			"audience_segments": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type":                 "object",
					"additionalProperties": false,
					"required":             []any{"segment_name", "description", "age_range", "interests", "preferred_channels"},
					"properties": map[string]any{
						"segment_name": map[string]any{"type": "string"},
						"description":  map[string]any{"type": "string", "description": "Who they are and what they care about (no sensitive traits)."},
						"age_range":    map[string]any{"type": "string", "description": "The age range of the audience segment (e.g., 22-35)."},
						"interests":    map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
						"preferred_channels": map[string]any{
							"type":  "array",
							"items": map[string]any{"type": "string", "enum": channelEnum},
						},
					},
				},
			},
			"creatives": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type":                 "object",
					"additionalProperties": false,
					"required":             []any{"segment_name", "ad_format", "headline", "primary_text", "call_to_action", "geo_context_hook"},
					"properties": map[string]any{
						"segment_name":     map[string]any{"type": "string", "description": "Must match one of audience_segments.segment_name."},
						"ad_format":        map[string]any{"type": "string", "description": "The format of the ad (e.g., Mobile banner / Video / Native)."},
						"headline":         map[string]any{"type": "string", "description": "Max 60 characters."},
						"primary_text":     map[string]any{"type": "string", "description": "1-2 short lines."},
						"call_to_action":   map[string]any{"type": "string", "description": "E.g., Order Now."},
						"geo_context_hook": map[string]any{"type": "string", "description": "A line referencing the local city/area or time of day."},
					},
				},
			},
		},
	}
}
