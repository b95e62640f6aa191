// Package router 提供 HTTP 路由配置
package router

import (
	"adwise-ai-api/internal/interfaces/http/handler"

	"github.com/gin-gonic/gin"
)

// RegisterV1Routes 注册 v1 版本路由
func RegisterV1Routes(
	v1 *gin.RouterGroup,
	adPlanHandler *handler.AdPlanHandler,
) {
	// 广告计划
	plans := v1.Group("/plans")
	{
		plans.POST("/generate", adPlanHandler.GeneratePlan)
		plans.GET("/last", adPlanHandler.LastPlan)
		plans.DELETE("/last", adPlanHandler.DeleteLastPlan)
		plans.POST("/launch", adPlanHandler.LaunchPlan)
	}

	// 生成历史
	generations := v1.Group("/generations")
	{
		generations.GET("", adPlanHandler.ListGenerations)
		generations.GET("/:gid", adPlanHandler.GetGeneration)
	}
}
