package adplan

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"adwise-ai-api/internal/config"
	"adwise-ai-api/internal/domain/entity"
	"adwise-ai-api/internal/domain/repository"
	"adwise-ai-api/internal/infrastructure/messaging"
	wfmodel "adwise-ai-api/internal/workflow/model"
	workflowport "adwise-ai-api/internal/workflow/port"
	apperrors "adwise-ai-api/pkg/errors"
	"adwise-ai-api/pkg/logger"
	"adwise-ai-api/pkg/metrics"
)

const (
	defaultClientID          = "default"
	defaultGenerationTimeout = 60 * time.Second
)

// Result 生成操作的判定式结果：要么 Data，要么 Error，调用方无需处理 panic 或裸错误。
type Result struct {
	Success bool                `json:"success"`
	Data    *GeneratedPlan      `json:"data,omitempty"`
	Error   *apperrors.AppError `json:"error,omitempty"`
}

// GeneratedPlan 一次成功生成的完整产出
type GeneratedPlan struct {
	GenerationID string               `json:"generation_id"`
	Plan         *entity.CampaignPlan `json:"plan"`
	Warnings     []string             `json:"warnings,omitempty"`
	Meta         wfmodel.LLMUsageMeta `json:"-"`
	DurationMs   int64                `json:"duration_ms"`
}

func successResult(data *GeneratedPlan) *Result {
	return &Result{Success: true, Data: data}
}

func failureResult(err *apperrors.AppError) *Result {
	return &Result{Success: false, Error: err}
}

// PlanService 广告计划生成应用服务。
// repo/store/producer/cache 允许为 nil，对应能力降级为不落库、不缓存、不发事件。
type PlanService struct {
	cfg       *config.Config
	generator *PlanGenerator
	repo      repository.PlanGenerationRepository
	store     repository.PlanStore
	producer  *messaging.Producer
	txMgr     repository.TxManager
	cache     KVCache
}

// NewPlanService 创建应用服务
func NewPlanService(
	cfg *config.Config,
	factory workflowport.ChatModelFactory,
	repo repository.PlanGenerationRepository,
	store repository.PlanStore,
	producer *messaging.Producer,
	txMgr repository.TxManager,
	cache KVCache,
) *PlanService {
	return &PlanService{
		cfg:       cfg,
		generator: NewPlanGenerator(factory),
		repo:      repo,
		store:     store,
		producer:  producer,
		txMgr:     txMgr,
		cache:     cache,
	}
}

func normalizeClientID(clientID string) string {
	clientID = strings.TrimSpace(clientID)
	if clientID == "" {
		return defaultClientID
	}
	return clientID
}

// GeneratePlan 执行完整生成流程：校验请求、调用模型、校验输出、落库、缓存、发事件。
// 永远返回判定式 Result，不向上抛错误。
func (s *PlanService) GeneratePlan(ctx context.Context, clientID string, req *entity.CampaignRequest) (res *Result) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			logger.Error(ctx, "panic during ad plan generation", fmt.Errorf("%v", r))
			metrics.PlanGenerationTotal.WithLabelValues("panic").Inc()
			res = failureResult(apperrors.New(apperrors.CodeInternalError, "internal server error"))
		}
	}()

	clientID = normalizeClientID(clientID)

	// 请求非法时不触发模型调用
	if err := ValidateCampaignRequest(req); err != nil {
		var verr RequestValidationError
		errors.As(err, &verr)
		metrics.PlanGenerationTotal.WithLabelValues("invalid_request").Inc()
		metrics.PlanValidationIssues.WithLabelValues("request").Add(float64(len(verr.Issues)))
		return failureResult(
			apperrors.New(apperrors.CodeRequestInvalid, "campaign request invalid").
				WithDetail(strings.Join(verr.Issues, "; ")))
	}

	provider := s.cfg.LLM.DefaultProvider
	providerCfg, hasProvider := s.cfg.LLM.Providers[provider]

	timeout := defaultGenerationTimeout
	if hasProvider && providerCfg.Timeout > 0 {
		timeout = providerCfg.Timeout
	}

	reqJSON, err := json.Marshal(req)
	if err != nil {
		metrics.PlanGenerationTotal.WithLabelValues("error").Inc()
		return failureResult(apperrors.Wrap(err, apperrors.CodeInternalError, "failed to encode request"))
	}

	record := entity.NewPlanGeneration(clientID, reqJSON)
	record.Provider = provider
	if hasProvider {
		record.Model = providerCfg.Model
	}
	s.createRecord(ctx, record)

	in := &wfmodel.AdPlanGenerateInput{
		Request:  req,
		Provider: provider,
	}
	if hasProvider {
		in.Model = providerCfg.Model
		if providerCfg.Temperature > 0 {
			t := float32(providerCfg.Temperature)
			in.Temperature = &t
		}
		if providerCfg.MaxTokens > 0 {
			mt := providerCfg.MaxTokens
			in.MaxTokens = &mt
		}
	}

	genCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	out, genErr := s.generator.Generate(genCtx, in)
	if genErr != nil {
		return s.failGeneration(ctx, record, provider, start, genErr)
	}

	if err := ValidateCampaignPlan(out.Plan); err != nil {
		var perr PlanValidationError
		errors.As(err, &perr)
		metrics.PlanGenerationTotal.WithLabelValues("invalid_plan").Inc()
		metrics.PlanValidationIssues.WithLabelValues("plan").Add(float64(len(perr.Issues)))
		logger.Warn(ctx, "llm output failed plan validation",
			"client_id", clientID,
			"generation_id", record.ID,
			"issue_count", len(perr.Issues),
			"first_issue", perr.First(),
		)
		record.Fail(perr.Error(), int(time.Since(start).Milliseconds()))
		s.updateRecord(ctx, record)
		return failureResult(
			apperrors.New(apperrors.CodePlanSchemaInvalid, "campaign plan schema invalid").
				WithDetail(strings.Join(perr.Issues, "; ")))
	}

	warnings := CheckCreativeReferences(out.Plan)
	if len(warnings) > 0 {
		metrics.PlanValidationIssues.WithLabelValues("reference").Add(float64(len(warnings)))
		logger.Warn(ctx, "plan creatives reference unknown segments",
			"client_id", clientID,
			"generation_id", record.ID,
			"warning_count", len(warnings),
		)
	}

	durationMs := time.Since(start).Milliseconds()

	planJSON, err := json.Marshal(out.Plan)
	if err != nil {
		metrics.PlanGenerationTotal.WithLabelValues("error").Inc()
		record.Fail("failed to encode plan: "+err.Error(), int(durationMs))
		s.updateRecord(ctx, record)
		return failureResult(apperrors.Wrap(err, apperrors.CodeInternalError, "failed to encode plan"))
	}

	if len(warnings) > 0 {
		if warningsJSON, err := json.Marshal(warnings); err == nil {
			record.Warnings = warningsJSON
		}
	}
	if out.Meta.Model != "" {
		record.Model = out.Meta.Model
	}
	record.TokensPrompt = out.Meta.PromptTokens
	record.TokensCompletion = out.Meta.CompletionTokens
	record.Complete(planJSON, out.Raw, int(durationMs))
	s.updateRecord(ctx, record)

	s.saveLastPlan(ctx, clientID, record, out, warnings)
	s.publishGenerated(ctx, clientID, record, req, warnings, durationMs)

	metrics.PlanGenerationTotal.WithLabelValues("success").Inc()
	metrics.PlanGenerationDuration.WithLabelValues(provider).Observe(time.Since(start).Seconds())

	return successResult(&GeneratedPlan{
		GenerationID: record.ID,
		Plan:         out.Plan,
		Warnings:     warnings,
		Meta:         out.Meta,
		DurationMs:   durationMs,
	})
}

func (s *PlanService) failGeneration(ctx context.Context, record *entity.PlanGeneration, provider string, start time.Time, err error) *Result {
	durationMs := int(time.Since(start).Milliseconds())

	var genErr GenerationError
	kind := GenerationErrTransport
	if errors.As(err, &genErr) {
		kind = genErr.Kind
	}

	record.Fail(err.Error(), durationMs)
	s.updateRecord(ctx, record)

	logger.Error(ctx, "ad plan generation failed", err,
		"client_id", record.ClientID,
		"generation_id", record.ID,
		"provider", provider,
		"kind", string(kind),
	)

	switch kind {
	case GenerationErrTimeout:
		metrics.PlanGenerationTotal.WithLabelValues("timeout").Inc()
		return failureResult(
			apperrors.Wrap(err, apperrors.CodeGenerationTimeout, "ad plan generation timed out"))
	case GenerationErrMalformed:
		metrics.PlanGenerationTotal.WithLabelValues("malformed").Inc()
		return failureResult(
			apperrors.Wrap(err, apperrors.CodeGenerationFailed, "ad plan generation failed").
				WithDetail("model output was not a parseable campaign plan"))
	case GenerationErrEmpty:
		metrics.PlanGenerationTotal.WithLabelValues("empty").Inc()
		return failureResult(
			apperrors.Wrap(err, apperrors.CodeGenerationFailed, "ad plan generation failed").
				WithDetail("model returned empty output"))
	default:
		metrics.PlanGenerationTotal.WithLabelValues("error").Inc()
		return failureResult(
			apperrors.Wrap(err, apperrors.CodeGenerationFailed, "ad plan generation failed"))
	}
}

func (s *PlanService) createRecord(ctx context.Context, record *entity.PlanGeneration) {
	if s.repo == nil {
		return
	}
	if err := s.repo.Create(ctx, record); err != nil {
		// 落库失败不阻断生成
		logger.Error(ctx, "failed to create plan generation record", err,
			"generation_id", record.ID)
	}
}

func (s *PlanService) updateRecord(ctx context.Context, record *entity.PlanGeneration) {
	if s.repo == nil {
		return
	}
	if err := s.repo.Update(ctx, record); err != nil {
		logger.Error(ctx, "failed to update plan generation record", err,
			"generation_id", record.ID)
		return
	}
	// 状态变更后清掉单条查询缓存
	if s.cache != nil {
		if err := s.cache.Delete(ctx, generationCacheKey(record.ID)); err != nil {
			logger.Warn(ctx, "failed to invalidate generation cache",
				"generation_id", record.ID, "error", err.Error())
		}
	}
}

func (s *PlanService) saveLastPlan(ctx context.Context, clientID string, record *entity.PlanGeneration, out *PlanGenerateOutput, warnings []string) {
	if s.store == nil {
		return
	}
	stored := &repository.StoredPlan{
		GenerationID: record.ID,
		Plan:         out.Plan,
		Warnings:     warnings,
		Provider:     record.Provider,
		Model:        record.Model,
		GeneratedAt:  out.Meta.GeneratedAt,
	}
	if err := s.store.SaveLastPlan(ctx, clientID, stored); err != nil {
		// 缓存失败不阻断返回
		logger.Error(ctx, "failed to cache last plan", err,
			"client_id", clientID, "generation_id", record.ID)
	}
}

func (s *PlanService) publishGenerated(ctx context.Context, clientID string, record *entity.PlanGeneration, req *entity.CampaignRequest, warnings []string, durationMs int64) {
	if s.producer == nil {
		return
	}
	event := &messaging.PlanGeneratedMessage{
		GenerationID: record.ID,
		ClientID:     clientID,
		Provider:     record.Provider,
		Model:        record.Model,
		BusinessName: req.BusinessName,
		City:         req.City,
		BudgetLevel:  string(req.BudgetLevel),
		Warnings:     warnings,
		DurationMs:   durationMs,
	}
	if _, err := s.producer.PublishPlanGenerated(ctx, event); err != nil {
		logger.Error(ctx, "failed to publish plan generated event", err,
			"client_id", clientID, "generation_id", record.ID)
	}
}

// LastPlan 查询客户端最近一次生成的方案，不存在时返回 (nil, nil)
func (s *PlanService) LastPlan(ctx context.Context, clientID string) (*repository.StoredPlan, error) {
	if s.store == nil {
		return nil, nil
	}
	return s.store.GetLastPlan(ctx, normalizeClientID(clientID))
}

// DeleteLastPlan 删除客户端最近一次生成的方案
func (s *PlanService) DeleteLastPlan(ctx context.Context, clientID string) error {
	if s.store == nil {
		return nil
	}
	clientID = normalizeClientID(clientID)
	if err := s.store.DeleteLastPlan(ctx, clientID); err != nil {
		return err
	}

	// 客户端主动删除数据计入审计流
	if s.producer != nil {
		if _, err := s.producer.PublishAudit(ctx, &messaging.AuditMessage{
			Action:   "last_plan.deleted",
			ClientID: clientID,
		}); err != nil {
			logger.Warn(ctx, "failed to publish audit record",
				"client_id", clientID, "error", err.Error())
		}
	}
	return nil
}

// LaunchPlan 标记方案投放。当前仅发布事件供下游消费，不对接真实投放渠道。
func (s *PlanService) LaunchPlan(ctx context.Context, clientID, generationID, requestID string) error {
	clientID = normalizeClientID(clientID)

	if s.repo != nil && strings.TrimSpace(generationID) != "" {
		record, err := s.repo.GetByID(ctx, generationID)
		if err != nil {
			return err
		}
		if record == nil {
			return apperrors.New(apperrors.CodeNotFound, "plan generation not found")
		}
	}

	if s.producer == nil {
		return nil
	}
	_, err := s.producer.PublishPlanLaunched(ctx, &messaging.PlanLaunchedMessage{
		GenerationID: generationID,
		ClientID:     clientID,
		RequestID:    requestID,
	})
	return err
}

// ListGenerations 分页查询生成历史
func (s *PlanService) ListGenerations(ctx context.Context, clientID string, page, pageSize int) ([]*entity.PlanGeneration, int64, error) {
	if s.repo == nil {
		return nil, 0, nil
	}

	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = s.cfg.Plan.HistoryPageSize
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	if pageSize > 100 {
		pageSize = 100
	}

	offset := (page - 1) * pageSize
	clientID = normalizeClientID(clientID)

	// 计数与取页放在同一事务里，保证分页快照一致
	if s.txMgr != nil {
		var (
			gens  []*entity.PlanGeneration
			total int64
		)
		err := s.txMgr.WithTransaction(ctx, func(txCtx context.Context) error {
			var err error
			gens, total, err = s.repo.ListByClient(txCtx, clientID, pageSize, offset)
			return err
		})
		return gens, total, err
	}

	return s.repo.ListByClient(ctx, clientID, pageSize, offset)
}

// GetGeneration 查询单条生成记录，不存在时返回 (nil, nil)。
// 配置了缓存时短暂缓存结果，合并仪表盘轮询产生的并发查询。
func (s *PlanService) GetGeneration(ctx context.Context, id string) (*entity.PlanGeneration, error) {
	if s.repo == nil {
		return nil, nil
	}
	if s.cache == nil {
		return s.repo.GetByID(ctx, id)
	}

	bytes, err := s.cache.GetOrLoadSafe(ctx, generationCacheKey(id), generationCacheTTL, func() (interface{}, error) {
		return s.repo.GetByID(ctx, id)
	})
	if err != nil {
		return nil, err
	}

	var gen *entity.PlanGeneration
	if err := json.Unmarshal(bytes, &gen); err != nil {
		return nil, err
	}
	return gen, nil
}
