package model

// Regressor 是估价模型的最小抽象：输入定长特征向量，输出一个月租金额。
// 具体实现可以是训练好的 MLP、线性模型，或降级时构造的未训练网络。
type Regressor interface {
	Name() string
	// Inputs 返回模型期望的输入维度
	Inputs() int
	Predict(vec []float64) (float64, error)
}
