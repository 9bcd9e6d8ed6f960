// Package dsl 提供基于 CEL (Common Expression Language) 的房源过滤表达式。
package dsl

import (
	"fmt"
	"sync"

	"github.com/google/cel-go/cel"
)

// DefaultListingFilter 只保留上架中且未被标记的房源
const DefaultListingFilter = `listing.status == "active" && !listing.flagged`

var (
	// celEnv 是全局的 CEL 环境，线程安全，可复用
	celEnv     *cel.Env
	celEnvErr  error
	celEnvOnce sync.Once
)

// getCELEnv 获取或创建 CEL 环境
func getCELEnv() (*cel.Env, error) {
	celEnvOnce.Do(func() {
		celEnv, celEnvErr = cel.NewEnv(
			cel.Variable("listing", cel.DynType),
		)
	})
	return celEnv, celEnvErr
}

// Filter 是编译后的房源过滤表达式，可并发调用 Match。
//
// 表达式语法（CEL 标准语法），变量 listing 的字段：
//
//	id, price_per_month, bedrooms, bathrooms, property_type, city, postcode, status, flagged
//
// 示例：
//   - `listing.status == "active" && !listing.flagged`
//   - `listing.price_per_month > 300.0 && listing.city == "Leeds"`
type Filter struct {
	expr string
	prg  cel.Program
}

// Compile 编译表达式。空表达式使用 DefaultListingFilter。
func Compile(expr string) (*Filter, error) {
	if expr == "" {
		expr = DefaultListingFilter
	}
	env, err := getCELEnv()
	if err != nil {
		return nil, fmt.Errorf("cel env: %w", err)
	}

	ast, issues := env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("compile error: %w", issues.Err())
	}

	prg, err := env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("program error: %w", err)
	}
	return &Filter{expr: expr, prg: prg}, nil
}

// Expr 返回表达式原文
func (f *Filter) Expr() string { return f.expr }

// Match 对一条房源求值，表达式必须返回布尔值。
// 访问不存在的字段会报错，字段集合由调用方保证完整。
func (f *Filter) Match(listing map[string]any) (bool, error) {
	out, _, err := f.prg.Eval(map[string]any{"listing": listing})
	if err != nil {
		return false, fmt.Errorf("eval error: %w", err)
	}
	result, ok := out.Value().(bool)
	if !ok {
		return false, fmt.Errorf("expression must return boolean, got %T", out.Value())
	}
	return result, nil
}
