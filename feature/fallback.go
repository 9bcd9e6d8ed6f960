package feature

// FallbackFeatureNames 是降级模型使用的固定特征顺序
var FallbackFeatureNames = []string{
	FeatureBedrooms,
	FeatureBathrooms,
	FeaturePropertyType,
	FeatureCity,
	FeatureFurnishingStatus,
	FeaturePostcode,
	FeatureHasParking,
	FeatureHasGarden,
}

// FallbackMetadata 返回训练制品不可用时使用的元数据。
//
// 均值/标准差是固定常量，大致对应一个以两居为主的租赁市场；
// 类别映射覆盖常见房型与装修状态。每次调用返回新实例，调用方可以放心持有。
func FallbackMetadata() *Metadata {
	names := make([]string, len(FallbackFeatureNames))
	copy(names, FallbackFeatureNames)
	return &Metadata{
		FeatureNames: names,
		//           bed  bath type city furn  post   park  garden
		Mean: []float64{2.0, 1.5, 1.5, 50.0, 1.0, 100.0, 0.4, 0.3},
		Std:  []float64{1.2, 0.7, 1.3, 29.0, 0.8, 58.0, 0.49, 0.46},
		CategoricalMaps: map[string]map[string]int{
			FeaturePropertyType: {
				"Flat":       0,
				"House":      1,
				"Studio":     2,
				"Bungalow":   3,
				"Maisonette": 4,
				"Room":       5,
			},
			FeatureFurnishingStatus: {
				"Unfurnished":    0,
				"Part Furnished": 1,
				"Furnished":      2,
			},
		},
		ModelVersion: "fallback",
	}
}
