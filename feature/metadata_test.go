package feature

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rushteam/rentprice/core"
)

func TestParseMetadata(t *testing.T) {
	data := []byte(`{
		"feature_names": ["bedrooms", "property_type"],
		"mean": [2.1, 0.8],
		"std": [1.1, 0.9],
		"categorical_maps": {"property_type": {"Flat": 0, "House": 1}},
		"model_version": "2026.09"
	}`)

	meta, err := ParseMetadata(data)
	require.NoError(t, err)
	assert.Equal(t, []string{"bedrooms", "property_type"}, meta.FeatureNames)
	assert.Equal(t, 1, meta.CategoricalMaps["property_type"]["House"])
	assert.Equal(t, "2026.09", meta.ModelVersion)
}

func TestMetadataValidate(t *testing.T) {
	tests := []struct {
		name string
		meta Metadata
	}{
		{"empty", Metadata{}},
		{"mean length", Metadata{FeatureNames: []string{"a", "b"}, Mean: []float64{0}, Std: []float64{1, 1}}},
		{"std length", Metadata{FeatureNames: []string{"a"}, Mean: []float64{0}, Std: []float64{}}},
		{"zero std", Metadata{FeatureNames: []string{"a", "b"}, Mean: []float64{0, 0}, Std: []float64{1, 0}}},
		{"nan std", Metadata{FeatureNames: []string{"a"}, Mean: []float64{0}, Std: []float64{math.NaN()}}},
		{"inf mean", Metadata{FeatureNames: []string{"a"}, Mean: []float64{math.Inf(1)}, Std: []float64{1}}},
		{"duplicate name", Metadata{FeatureNames: []string{"a", "a"}, Mean: []float64{0, 0}, Std: []float64{1, 1}}},
		{"blank name", Metadata{FeatureNames: []string{""}, Mean: []float64{0}, Std: []float64{1}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.meta.Validate()
			require.Error(t, err)
			domainErr := core.GetDomainError(err)
			require.NotNil(t, domainErr)
			assert.Equal(t, core.ErrorCodeInvalidArtifact, domainErr.Code)
		})
	}

	assert.NoError(t, FallbackMetadata().Validate())
}

func TestParseMetadata_RejectsZeroStd(t *testing.T) {
	data, err := json.Marshal(Metadata{
		FeatureNames: []string{"bedrooms"},
		Mean:         []float64{2},
		Std:          []float64{0},
	})
	require.NoError(t, err)

	_, err = ParseMetadata(data)
	assert.Error(t, err)

	_, err = ParseMetadata([]byte("{not json"))
	assert.Error(t, err)
}

func TestMetadataClone(t *testing.T) {
	meta := FallbackMetadata()
	clone := meta.Clone()
	clone.Mean[0] = 99
	clone.CategoricalMaps[FeaturePropertyType]["Flat"] = 42

	assert.Equal(t, 2.0, meta.Mean[0])
	assert.Equal(t, 0, meta.CategoricalMaps[FeaturePropertyType]["Flat"])
}
