package model

import (
	"math"
	"time"

	"github.com/rushteam/rentprice/feature"
)

const (
	fallbackHidden = 4
	// fallbackBaseRent 是输出层偏置，使未训练网络的输出落在月租量级
	fallbackBaseRent = 1200.0
)

// NewFallbackModel 构造一个未训练的最小 MLP：inputs -> 4 (ReLU) -> 1。
//
// 权重按 Xavier 幅度的常数初始化，不使用随机数，同样的输入总是得到同样的输出。
// 它没有任何训练信号，估价主要依赖与可比房源的混合。
func NewFallbackModel(inputs int) *MLPModel {
	scale := math.Sqrt(2.0/float64(inputs+fallbackHidden)) * 0.1

	hidden := Layer{
		Weights:    make([][]float64, fallbackHidden),
		Biases:     make([]float64, fallbackHidden),
		Activation: "relu",
	}
	for j := range hidden.Weights {
		row := make([]float64, inputs)
		for k := range row {
			row[k] = scale
		}
		hidden.Weights[j] = row
	}

	outRow := make([]float64, fallbackHidden)
	for k := range outRow {
		outRow[k] = scale
	}
	output := Layer{
		Weights: [][]float64{outRow},
		Biases:  []float64{fallbackBaseRent},
	}

	// 结构由构造保证合法
	m, _ := NewMLPModel(inputs, []Layer{hidden, output})
	return m
}

// newFallbackLoaded 组合降级模型与降级元数据
func newFallbackLoaded(now time.Time) *Loaded {
	meta := feature.FallbackMetadata()
	return &Loaded{
		model:    NewFallbackModel(meta.FeatureCount()),
		meta:     meta,
		fallback: true,
		loadedAt: now,
	}
}
