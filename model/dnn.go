package model

import (
	"fmt"
	"math"
)

// Layer 是一层全连接网络。
// Weights[neuron][input] = weight，Biases[neuron] = bias。
type Layer struct {
	Weights    [][]float64 `json:"weights"`
	Biases     []float64   `json:"biases"`
	Activation string      `json:"activation,omitempty"` // relu / linear（默认 linear）
}

// MLPModel 是多层感知机回归模型（全连接 + ReLU，输出层线性）。
//
// 工程特征：
//   - 实时性：好（本地推理，无 I/O）
//   - 只读：构造后不再修改，可被并发请求共享
type MLPModel struct {
	inputs int
	layers []Layer
}

// NewMLPModel 校验网络结构并创建模型。
// 最后一层必须恰好 1 个神经元。
func NewMLPModel(inputs int, layers []Layer) (*MLPModel, error) {
	if inputs <= 0 {
		return nil, fmt.Errorf("mlp: inputs must be positive, got %d", inputs)
	}
	if len(layers) == 0 {
		return nil, fmt.Errorf("mlp: no layers")
	}
	prev := inputs
	for i, l := range layers {
		if len(l.Weights) == 0 {
			return nil, fmt.Errorf("mlp: layer %d has no neurons", i)
		}
		if len(l.Biases) != len(l.Weights) {
			return nil, fmt.Errorf("mlp: layer %d has %d neurons but %d biases", i, len(l.Weights), len(l.Biases))
		}
		for j, row := range l.Weights {
			if len(row) != prev {
				return nil, fmt.Errorf("mlp: layer %d neuron %d expects %d inputs, got %d", i, j, prev, len(row))
			}
		}
		switch l.Activation {
		case "", "linear", "relu":
		default:
			return nil, fmt.Errorf("mlp: layer %d has unsupported activation %q", i, l.Activation)
		}
		prev = len(l.Weights)
	}
	if prev != 1 {
		return nil, fmt.Errorf("mlp: output layer must have 1 neuron, got %d", prev)
	}
	return &MLPModel{inputs: inputs, layers: layers}, nil
}

func (m *MLPModel) Name() string { return "mlp" }

func (m *MLPModel) Inputs() int { return m.inputs }

// Predict 前向传播。
func (m *MLPModel) Predict(vec []float64) (float64, error) {
	if len(vec) != m.inputs {
		return 0, fmt.Errorf("mlp: expected %d inputs, got %d", m.inputs, len(vec))
	}
	current := vec
	for _, l := range m.layers {
		next := make([]float64, len(l.Weights))
		for j, row := range l.Weights {
			sum := l.Biases[j]
			for k, w := range row {
				sum += w * current[k]
			}
			if l.Activation == "relu" {
				sum = relu(sum)
			}
			next[j] = sum
		}
		current = next
	}
	out := current[0]
	if math.IsNaN(out) || math.IsInf(out, 0) {
		return 0, fmt.Errorf("mlp: non-finite output")
	}
	return out, nil
}

// relu ReLU 激活函数。
func relu(x float64) float64 {
	if x > 0 {
		return x
	}
	return 0
}
