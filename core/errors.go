package core

import (
	"errors"
	"fmt"
	"strings"
)

// DomainError 是领域层的统一错误类型。
//
// 设计原则：
//   - 所有领域层错误都使用此类型
//   - 提供错误代码（Code）和消息（Message）
//   - 支持错误检查函数（IsXXX），可穿透 fmt.Errorf("%w") 包装
//
// 对调用方可见的只有 INVALID_REQUEST 与 ESTIMATION_UNAVAILABLE，
// 其余错误都在 estimate.Service 内部被降级吸收。
type DomainError struct {
	Code    string // 错误代码（如 "NOT_FOUND", "LOAD_TIMEOUT"）
	Message string // 错误消息
	Module  string // 模块名称（如 "artifact", "model", "estimate"）
	Err     error  // 底层原因（可选）
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *DomainError) Unwrap() error { return e.Err }

// Is 按 Module + Code 判断相等，便于 errors.Is(err, ErrArtifactNotFound)。
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Code == t.Code && (t.Module == "" || e.Module == t.Module)
}

// IsDomainError 检查错误是否为 DomainError 类型
func IsDomainError(err error) bool {
	return GetDomainError(err) != nil
}

// GetDomainError 获取错误链上的第一个 DomainError，如果不是则返回 nil
func GetDomainError(err error) *DomainError {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}
	return nil
}

// NewDomainError 创建新的领域错误
func NewDomainError(module, code, message string) *DomainError {
	return &DomainError{
		Module:  module,
		Code:    code,
		Message: message,
	}
}

// WrapDomainError 创建带底层原因的领域错误
func WrapDomainError(module, code, message string, err error) *DomainError {
	return &DomainError{
		Module:  module,
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// 错误代码常量
const (
	ErrorCodeNotFound              = "NOT_FOUND"              // 制品不存在
	ErrorCodeTransient             = "TRANSIENT"              // 网络/存储临时故障
	ErrorCodeInvalidArtifact       = "INVALID_ARTIFACT"       // 制品无法解析或不满足约束
	ErrorCodeInvalidRequest        = "INVALID_REQUEST"        // 请求缺少必填字段
	ErrorCodeModelUnavailable      = "MODEL_UNAVAILABLE"      // 冷却期内无可用模型
	ErrorCodeLoadTimeout           = "LOAD_TIMEOUT"           // 等待加载超时
	ErrorCodeEstimationUnavailable = "ESTIMATION_UNAVAILABLE" // 无模型且无可比房源
)

// 模块名称常量
const (
	ModuleArtifact    = "artifact"
	ModuleModel       = "model"
	ModuleFeature     = "feature"
	ModuleComparables = "comparables"
	ModuleEstimate    = "estimate"
)

var (
	// ErrArtifactNotFound 表示制品 key 不存在
	ErrArtifactNotFound = NewDomainError(ModuleArtifact, ErrorCodeNotFound, "artifact: key not found")

	// ErrModelUnavailable 表示处于失败冷却期且没有可返回的模型
	ErrModelUnavailable = NewDomainError(ModuleModel, ErrorCodeModelUnavailable, "model: unavailable during failure cooldown")

	// ErrLoadTimeout 表示等待其他调用方加载模型超时
	ErrLoadTimeout = NewDomainError(ModuleModel, ErrorCodeLoadTimeout, "model: timed out waiting for load")

	// ErrEstimationUnavailable 表示模型与可比房源均不可用
	ErrEstimationUnavailable = NewDomainError(ModuleEstimate, ErrorCodeEstimationUnavailable, "estimate: no model and no comparable listings")
)

// NewTransientError 包装一次存储/网络临时故障
func NewTransientError(op string, err error) *DomainError {
	return WrapDomainError(ModuleArtifact, ErrorCodeTransient, "artifact: "+op, err)
}

// NewInvalidArtifactError 包装制品解析/校验失败
func NewInvalidArtifactError(msg string, err error) *DomainError {
	return WrapDomainError(ModuleArtifact, ErrorCodeInvalidArtifact, "artifact: "+msg, err)
}

// InvalidRequestError 描述缺失的必填字段，同时列出调用方实际提供的字段。
type InvalidRequestError struct {
	Required []string
	Provided []string
	Reason   string
}

func (e *InvalidRequestError) Error() string {
	reason := e.Reason
	if reason == "" {
		reason = "missing required fields"
	}
	return fmt.Sprintf("estimate: invalid request: %s (required: [%s], provided: [%s])",
		reason, strings.Join(e.Required, ", "), strings.Join(e.Provided, ", "))
}

// Is 使 InvalidRequestError 与 INVALID_REQUEST 代码的 DomainError 等价。
func (e *InvalidRequestError) Is(target error) bool {
	t, ok := target.(*DomainError)
	return ok && t.Code == ErrorCodeInvalidRequest
}

// ErrInvalidRequest 用于 errors.Is 判断
var ErrInvalidRequest = NewDomainError(ModuleEstimate, ErrorCodeInvalidRequest, "estimate: invalid request")

func hasCode(err error, code string) bool {
	if err == nil {
		return false
	}
	if domainErr := GetDomainError(err); domainErr != nil {
		return domainErr.Code == code
	}
	return false
}

// IsNotFound 检查错误是否为 NOT_FOUND
func IsNotFound(err error) bool { return hasCode(err, ErrorCodeNotFound) }

// IsTransient 检查错误是否为 TRANSIENT
func IsTransient(err error) bool { return hasCode(err, ErrorCodeTransient) }

// IsModelUnavailable 检查错误是否为 MODEL_UNAVAILABLE
func IsModelUnavailable(err error) bool { return hasCode(err, ErrorCodeModelUnavailable) }

// IsLoadTimeout 检查错误是否为 LOAD_TIMEOUT
func IsLoadTimeout(err error) bool { return hasCode(err, ErrorCodeLoadTimeout) }

// IsEstimationUnavailable 检查错误是否为 ESTIMATION_UNAVAILABLE
func IsEstimationUnavailable(err error) bool { return hasCode(err, ErrorCodeEstimationUnavailable) }

// IsInvalidRequest 检查错误是否为 INVALID_REQUEST
func IsInvalidRequest(err error) bool {
	var reqErr *InvalidRequestError
	if errors.As(err, &reqErr) {
		return true
	}
	return hasCode(err, ErrorCodeInvalidRequest)
}
