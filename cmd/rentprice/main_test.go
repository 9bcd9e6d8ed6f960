package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rushteam/rentprice/core"
)

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, ExitSuccess},
		{"invalid request", &core.InvalidRequestError{Required: []string{"bedrooms"}}, ExitInvalid},
		{"wrapped invalid request", fmt.Errorf("estimate: %w", &core.InvalidRequestError{}), ExitInvalid},
		{"unavailable", core.ErrEstimationUnavailable, ExitUnavailable},
		{"other", errors.New("config error"), ExitError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, exitCode(tt.err))
		})
	}
}

// writeConfig 写入一个指向空制品目录的配置，模型缓存会退回降级模型。
func writeConfig(t *testing.T, extra string) string {
	t.Helper()
	dir := t.TempDir()
	cfg := fmt.Sprintf("artifacts:\n  kind: file\n  dir: %s\n%s", filepath.Join(dir, "artifacts"), extra)
	path := filepath.Join(dir, "rentprice.yaml")
	require.NoError(t, os.WriteFile(path, []byte(cfg), 0o644))
	return path
}

func runCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestEstimateCommand_MissingBedrooms(t *testing.T) {
	_, err := runCommand(t, "estimate", "-c", writeConfig(t, ""), "--property-type", "Flat")
	require.Error(t, err)
	assert.Equal(t, ExitInvalid, exitCode(err))
	assert.Contains(t, err.Error(), "provided: [property_type]")
}

func TestEstimateCommand_JSON(t *testing.T) {
	out, err := runCommand(t, "estimate", "-c", writeConfig(t, ""),
		"--bedrooms", "2", "--property-type", "Flat", "--city", "London", "--json")
	require.NoError(t, err)

	var res core.PredictionResult
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, core.ModelStatusModel, res.ModelStatus)
	assert.Equal(t, 0.7, res.Confidence)
	assert.LessOrEqual(t, res.PriceRange.Min, res.EstimatedPrice)
	assert.GreaterOrEqual(t, res.PriceRange.Max, res.EstimatedPrice)
}

func TestEstimateCommand_Unavailable(t *testing.T) {
	path := writeConfig(t, "model:\n  fallback: false\n")
	_, err := runCommand(t, "estimate", "-c", path, "--bedrooms", "0", "--property-type", "Studio")
	require.Error(t, err)
	assert.Equal(t, ExitUnavailable, exitCode(err))
}

func TestModelStatusCommand(t *testing.T) {
	out, err := runCommand(t, "model-status", "-c", writeConfig(t, ""))
	require.NoError(t, err)
	assert.Contains(t, out, "State:     failed_cooldown")
	assert.Contains(t, out, "Fallback:  true")
	assert.Contains(t, out, "LastError:")
}
