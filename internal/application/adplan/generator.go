package adplan

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"adwise-ai-api/internal/domain/entity"
	workflowchain "adwise-ai-api/internal/workflow/chain"
	wfmodel "adwise-ai-api/internal/workflow/model"
	workflowport "adwise-ai-api/internal/workflow/port"
)

type PlanGenerateOutput struct {
	Plan *entity.CampaignPlan
	Raw  string
	Meta wfmodel.LLMUsageMeta
}

type PlanGenerator struct {
	chain *workflowchain.AdPlanChain
}

func NewPlanGenerator(factory workflowport.ChatModelFactory) *PlanGenerator {
	return &PlanGenerator{
		chain: workflowchain.NewAdPlanChain(factory),
	}
}

func (g *PlanGenerator) Generate(ctx context.Context, in *wfmodel.AdPlanGenerateInput) (*PlanGenerateOutput, error) {
	if g == nil || g.chain == nil {
		return nil, fmt.Errorf("ad plan workflow not configured")
	}
	if in == nil {
		return nil, fmt.Errorf("input is nil")
	}

	outMsg, err := g.chain.Invoke(ctx, in)
	if err != nil {
		return nil, classifyChainError(ctx, err)
	}
	if outMsg == nil || strings.TrimSpace(outMsg.Content) == "" {
		return nil, GenerationError{Kind: GenerationErrEmpty, Err: fmt.Errorf("empty llm response")}
	}

	plan, raw, err := ParseCampaignPlan(outMsg.Content)
	if err != nil {
		return nil, GenerationError{Kind: GenerationErrMalformed, Err: err}
	}

	meta := wfmodel.LLMUsageMeta{
		Provider:    strings.TrimSpace(in.Provider),
		Model:       strings.TrimSpace(in.Model),
		GeneratedAt: time.Now().UTC(),
	}
	if in.Temperature != nil {
		meta.Temperature = float64(*in.Temperature)
	}
	if outMsg.ResponseMeta != nil && outMsg.ResponseMeta.Usage != nil {
		meta.PromptTokens = outMsg.ResponseMeta.Usage.PromptTokens
		meta.CompletionTokens = outMsg.ResponseMeta.Usage.CompletionTokens
	}

	return &PlanGenerateOutput{
		Plan: plan,
		Raw:  raw,
		Meta: meta,
	}, nil
}

func classifyChainError(ctx context.Context, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || ctx.Err() == context.DeadlineExceeded {
		return GenerationError{Kind: GenerationErrTimeout, Err: err}
	}
	if errors.Is(err, context.Canceled) || ctx.Err() == context.Canceled {
		return GenerationError{Kind: GenerationErrTimeout, Err: err}
	}
	return GenerationError{Kind: GenerationErrTransport, Err: err}
}
