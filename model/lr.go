package model

import (
	"fmt"
	"math"
)

// LinearModel 实现了线性回归：price = Bias + sum(Weight_i * x_i)。
// 与逻辑回归不同，输出不做 Sigmoid 变换，直接是金额。
type LinearModel struct {
	Bias    float64   // 偏置项 (Intercept)
	Weights []float64 // 按特征顺序的系数
}

func NewLinearModel(bias float64, weights []float64) (*LinearModel, error) {
	if len(weights) == 0 {
		return nil, fmt.Errorf("linear: no weights")
	}
	return &LinearModel{Bias: bias, Weights: weights}, nil
}

func (m *LinearModel) Name() string { return "linear" }

func (m *LinearModel) Inputs() int { return len(m.Weights) }

func (m *LinearModel) Predict(vec []float64) (float64, error) {
	if len(vec) != len(m.Weights) {
		return 0, fmt.Errorf("linear: expected %d inputs, got %d", len(m.Weights), len(vec))
	}
	score := m.Bias
	for i, w := range m.Weights {
		score += w * vec[i]
	}
	if math.IsNaN(score) || math.IsInf(score, 0) {
		return 0, fmt.Errorf("linear: non-finite output")
	}
	return score, nil
}
