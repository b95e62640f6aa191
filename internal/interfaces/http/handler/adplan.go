// Package handler 提供 HTTP 请求处理器
package handler

import (
	"errors"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"adwise-ai-api/internal/application/adplan"
	"adwise-ai-api/internal/config"
	"adwise-ai-api/internal/interfaces/http/dto"
	apperrors "adwise-ai-api/pkg/errors"
	"adwise-ai-api/pkg/logger"
)

// AdPlanHandler 广告计划生成与查询
type AdPlanHandler struct {
	cfg     *config.Config
	service *adplan.PlanService
}

// NewAdPlanHandler 创建广告计划处理器
func NewAdPlanHandler(cfg *config.Config, service *adplan.PlanService) *AdPlanHandler {
	return &AdPlanHandler{
		cfg:     cfg,
		service: service,
	}
}

// clientIDFromGin 从请求头解析客户端标识，缺省为 default
func clientIDFromGin(c *gin.Context) string {
	return strings.TrimSpace(c.GetHeader("X-Client-ID"))
}

// GeneratePlan 同步生成广告计划
// @Summary 生成广告计划
// @Description 调用 LLM 生成地理定向广告计划，输出经结构校验后返回
// @Tags AdPlan
// @Accept json
// @Produce json
// @Param X-Client-ID header string false "客户端标识"
// @Param body body dto.GeneratePlanRequest true "生成请求"
// @Success 200 {object} dto.Response[dto.PlanResponse]
// @Failure 400 {object} dto.ErrorResponse
// @Failure 422 {object} dto.ErrorResponse
// @Failure 502 {object} dto.ErrorResponse
// @Failure 504 {object} dto.ErrorResponse
// @Router /v1/plans/generate [post]
func (h *AdPlanHandler) GeneratePlan(c *gin.Context) {
	ctx := c.Request.Context()
	clientID := clientIDFromGin(c)

	var req dto.GeneratePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	result := h.service.GeneratePlan(ctx, clientID, req.ToEntity())
	if !result.Success {
		appErr := result.Error
		logger.Warn(ctx, "plan generation request failed",
			"client_id", clientID,
			"code", string(appErr.Code),
			"message", appErr.Message,
		)
		dto.ErrorWithDetail(c, appErr.HTTPStatus, appErr.Message, &dto.ErrorDetail{
			ErrorCode: string(appErr.Code),
			Details:   appErr.Detail,
		})
		return
	}

	data := result.Data
	resp := dto.PlanResponse{
		GenerationID: data.GenerationID,
		Plan:         data.Plan,
		Warnings:     data.Warnings,
		DurationMs:   data.DurationMs,
		Usage: &dto.UsageMeta{
			Provider:         data.Meta.Provider,
			Model:            data.Meta.Model,
			PromptTokens:     data.Meta.PromptTokens,
			CompletionTokens: data.Meta.CompletionTokens,
			GeneratedAt:      data.Meta.GeneratedAt,
		},
	}
	dto.Success(c, resp)
}

// LastPlan 查询最近一次生成的方案
// @Summary 查询最近方案
// @Tags AdPlan
// @Produce json
// @Param X-Client-ID header string false "客户端标识"
// @Success 200 {object} dto.Response[dto.LastPlanResponse]
// @Failure 404 {object} dto.ErrorResponse
// @Router /v1/plans/last [get]
func (h *AdPlanHandler) LastPlan(c *gin.Context) {
	ctx := c.Request.Context()
	clientID := clientIDFromGin(c)

	stored, err := h.service.LastPlan(ctx, clientID)
	if err != nil {
		dto.InternalError(c, "failed to load last plan")
		return
	}
	if stored == nil {
		dto.NotFound(c, "no plan generated yet")
		return
	}
	dto.Success(c, dto.NewLastPlanResponse(stored))
}

// DeleteLastPlan 删除最近一次生成的方案
// @Summary 删除最近方案
// @Tags AdPlan
// @Produce json
// @Param X-Client-ID header string false "客户端标识"
// @Success 204
// @Router /v1/plans/last [delete]
func (h *AdPlanHandler) DeleteLastPlan(c *gin.Context) {
	ctx := c.Request.Context()
	clientID := clientIDFromGin(c)

	if err := h.service.DeleteLastPlan(ctx, clientID); err != nil {
		dto.InternalError(c, "failed to delete last plan")
		return
	}
	dto.NoContent(c)
}

// LaunchPlan 标记方案投放
// @Summary 投放方案
// @Description 当前仅发布投放事件供下游消费，不对接真实投放渠道
// @Tags AdPlan
// @Accept json
// @Produce json
// @Param X-Client-ID header string false "客户端标识"
// @Param body body dto.LaunchPlanRequest true "投放请求"
// @Success 202 {object} dto.Response[dto.LaunchPlanResponse]
// @Failure 404 {object} dto.ErrorResponse
// @Router /v1/plans/launch [post]
func (h *AdPlanHandler) LaunchPlan(c *gin.Context) {
	ctx := c.Request.Context()
	clientID := clientIDFromGin(c)

	var req dto.LaunchPlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	if err := h.service.LaunchPlan(ctx, clientID, req.GenerationID, c.GetString("request_id")); err != nil {
		var appErr *apperrors.AppError
		if errors.As(err, &appErr) && appErr.Code == apperrors.CodeNotFound {
			dto.NotFound(c, "plan generation not found")
			return
		}
		dto.InternalError(c, "failed to launch plan")
		return
	}

	dto.Accepted(c, dto.LaunchPlanResponse{
		GenerationID: req.GenerationID,
		Status:       "accepted",
	})
}

// ListGenerations 分页查询生成历史
// @Summary 查询生成历史
// @Tags AdPlan
// @Produce json
// @Param X-Client-ID header string false "客户端标识"
// @Param page query int false "页码"
// @Param page_size query int false "分页大小"
// @Success 200 {object} dto.Response[[]dto.GenerationSummary]
// @Router /v1/generations [get]
func (h *AdPlanHandler) ListGenerations(c *gin.Context) {
	ctx := c.Request.Context()
	clientID := clientIDFromGin(c)

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "0"))

	gens, total, err := h.service.ListGenerations(ctx, clientID, page, pageSize)
	if err != nil {
		dto.InternalError(c, "failed to list generations")
		return
	}

	items := make([]*dto.GenerationSummary, 0, len(gens))
	for _, gen := range gens {
		items = append(items, dto.NewGenerationSummary(gen))
	}

	if pageSize <= 0 {
		pageSize = h.cfg.Plan.HistoryPageSize
		if pageSize <= 0 {
			pageSize = 20
		}
	}
	dto.SuccessWithPage(c, items, dto.NewPageMeta(page, pageSize, int(total)))
}

// GetGeneration 查询单条生成记录
// @Summary 查询生成记录
// @Tags AdPlan
// @Produce json
// @Param gid path string true "生成记录 ID"
// @Success 200 {object} dto.Response[entity.PlanGeneration]
// @Failure 404 {object} dto.ErrorResponse
// @Router /v1/generations/{gid} [get]
func (h *AdPlanHandler) GetGeneration(c *gin.Context) {
	ctx := c.Request.Context()
	gid := strings.TrimSpace(c.Param("gid"))
	if gid == "" {
		dto.BadRequest(c, "generation id is required")
		return
	}

	gen, err := h.service.GetGeneration(ctx, gid)
	if err != nil {
		dto.InternalError(c, "failed to get generation")
		return
	}
	if gen == nil {
		dto.NotFound(c, "generation not found")
		return
	}
	dto.Success(c, gen)
}
