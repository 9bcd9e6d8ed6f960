package feature

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rushteam/rentprice/core"
)

func TestHash31(t *testing.T) {
	tests := []struct {
		in   string
		want int64
	}{
		{"", 0},
		{"London", 2013264328},
		{"Manchester", 1997313268},
		{"SW1A", 2557844},
		{"M1", 2436},
		{"Zürich", 1482116162},
		// 32 位回绕后恰好为 -2^31，绝对值不能溢出
		{"polygenelubricants", 2147483648},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Hash31(tt.in))
		})
	}
}

func TestLocationCodes(t *testing.T) {
	assert.Equal(t, 28.0, CityCode("London"))
	assert.Equal(t, 68.0, CityCode("Manchester"))
	assert.Equal(t, 0.0, CityCode(""))

	assert.Equal(t, 44.0, PostcodeCode("SW1A 1AA"))
	assert.Equal(t, 44.0, PostcodeCode("  sw1a 2bb "), "只取第一段并大写")
	assert.Equal(t, 36.0, PostcodeCode("m1"))
	assert.Equal(t, 0.0, PostcodeCode("   "))
	assert.Equal(t, "SW1A", PostcodeOutward("sw1a\t1aa"))
}

func TestCategoricalCode(t *testing.T) {
	meta := FallbackMetadata()
	tests := []struct {
		name    string
		feature string
		value   string
		want    float64
	}{
		{"known type", FeaturePropertyType, "House", 1},
		{"first type", FeaturePropertyType, "Flat", 0},
		{"unknown type maps to 0", FeaturePropertyType, "Castle", 0},
		{"missing type maps to 0", FeaturePropertyType, "", 0},
		{"known furnishing", FeatureFurnishingStatus, "Part Furnished", 1},
		{"no map for feature", "heating", "gas", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CategoricalCode(meta, tt.feature, tt.value))
		})
	}
}

func TestEncode_FallbackMetadata(t *testing.T) {
	meta := FallbackMetadata()
	attrs := core.PropertyAttributes{
		Bedrooms:         core.IntPtr(2),
		PropertyType:     "House",
		City:             "London",
		Postcode:         "SW1A 1AA",
		FurnishingStatus: "Furnished",
		HasParking:       true,
	}

	vec, err := Encode(attrs, meta)
	require.NoError(t, err)
	require.Len(t, vec, meta.FeatureCount())

	raw := []float64{2, 1, 1, 28, 2, 44, 1, 0}
	for i := range raw {
		want := (raw[i] - meta.Mean[i]) / meta.Std[i]
		assert.InDelta(t, want, vec[i], 1e-12, "feature %s", meta.FeatureNames[i])
	}
}

func TestEncode_Deterministic(t *testing.T) {
	meta := FallbackMetadata()
	attrs := core.PropertyAttributes{
		Bedrooms:     core.IntPtr(3),
		Bathrooms:    core.IntPtr(2),
		PropertyType: "Flat",
		City:         "Manchester",
		Postcode:     "M1 4BT",
		HasGarden:    true,
	}
	first, err := Encode(attrs, meta)
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		again, err := Encode(attrs, FallbackMetadata())
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestEncode_FollowsMetadataOrder(t *testing.T) {
	meta := &Metadata{
		FeatureNames: []string{FeatureHasGarden, FeatureBedrooms, "unknown_feature"},
		Mean:         []float64{0, 1, 0},
		Std:          []float64{1, 2, 1},
	}
	attrs := core.PropertyAttributes{Bedrooms: core.IntPtr(5), HasGarden: true, PropertyType: "Flat"}

	vec, err := Encode(attrs, meta)
	require.NoError(t, err)
	assert.Equal(t, Vector{1, 2, 0}, vec)
}

func TestEncode_Defaults(t *testing.T) {
	meta := &Metadata{
		FeatureNames: []string{FeatureBedrooms, FeatureBathrooms, FeatureCity, FeaturePostcode},
		Mean:         []float64{0, 0, 0, 0},
		Std:          []float64{1, 1, 1, 1},
	}
	vec, err := Encode(core.PropertyAttributes{}, meta)
	require.NoError(t, err)
	assert.Equal(t, Vector{1, 1, 0, 0}, vec, "缺失的卧室/卫生间默认为 1，缺失的位置为 0")
}

func TestEncode_RejectsInconsistentMetadata(t *testing.T) {
	_, err := Encode(core.PropertyAttributes{}, &Metadata{
		FeatureNames: []string{FeatureBedrooms},
		Mean:         []float64{0, 1},
		Std:          []float64{1},
	})
	assert.Error(t, err)

	_, err = Encode(core.PropertyAttributes{}, nil)
	assert.Error(t, err)
}
