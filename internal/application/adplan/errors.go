// Package adplan 实现广告计划生成的应用服务
package adplan

import (
	"fmt"
	"strings"
)

// RequestValidationError 请求参数校验失败，Issues 逐条列出字段与约束
type RequestValidationError struct {
	Issues []string
}

func (e RequestValidationError) Error() string {
	if len(e.Issues) == 0 {
		return "campaign request validation failed"
	}
	return "campaign request validation failed: " + strings.Join(e.Issues, "; ")
}

// PlanValidationError 模型输出结构校验失败
type PlanValidationError struct {
	Issues []string
}

func (e PlanValidationError) Error() string {
	if len(e.Issues) == 0 {
		return "campaign plan validation failed"
	}
	return "campaign plan validation failed: " + strings.Join(e.Issues, "; ")
}

// First 返回第一条问题，用于简短的对外提示
func (e PlanValidationError) First() string {
	if len(e.Issues) == 0 {
		return ""
	}
	return e.Issues[0]
}

// GenerationErrorKind 生成失败的分类
type GenerationErrorKind string

const (
	GenerationErrTimeout   GenerationErrorKind = "timeout"
	GenerationErrEmpty     GenerationErrorKind = "empty"
	GenerationErrMalformed GenerationErrorKind = "malformed"
	GenerationErrTransport GenerationErrorKind = "transport"
)

// GenerationError 模型调用或输出解析失败
type GenerationError struct {
	Kind GenerationErrorKind
	Err  error
}

func (e GenerationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("ad plan generation failed (%s): %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("ad plan generation failed (%s)", e.Kind)
}

func (e GenerationError) Unwrap() error {
	return e.Err
}
