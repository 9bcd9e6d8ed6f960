package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/rushteam/rentprice/estimate"
	"github.com/rushteam/rentprice/model"
)

// Config 是估价引擎的配置结构（YAML；JSON 作为 YAML 子集同样可读）。
type Config struct {
	Model       ModelConfig       `yaml:"model"`
	Artifacts   ArtifactsConfig   `yaml:"artifacts"`
	Comparables ComparablesConfig `yaml:"comparables"`
}

// ModelConfig 模型缓存配置
type ModelConfig struct {
	ModelKey    string        `yaml:"model_key"`
	MetadataKey string        `yaml:"metadata_key"`
	Cooldown    time.Duration `yaml:"cooldown"`     // 加载失败后的冷却时间
	WaitTimeout time.Duration `yaml:"wait_timeout"` // 等待并发加载的上限
	LoadTimeout time.Duration `yaml:"load_timeout"` // 单次拉取制品的上限
	Fallback    *bool         `yaml:"fallback"`     // 是否启用降级模型，默认 true
}

// ArtifactsConfig 制品存储配置
type ArtifactsConfig struct {
	Kind   string       `yaml:"kind"` // file / redis / azblob / memory
	Dir    string       `yaml:"dir"`
	Redis  RedisConfig  `yaml:"redis"`
	AzBlob AzBlobConfig `yaml:"azblob"`
}

type RedisConfig struct {
	Addr   string `yaml:"addr"`
	DB     int    `yaml:"db"`
	Prefix string `yaml:"prefix"`
}

type AzBlobConfig struct {
	AccountURL string `yaml:"account_url"`
	Container  string `yaml:"container"`
}

// ComparablesConfig 可比房源配置
type ComparablesConfig struct {
	Kind         string        `yaml:"kind"` // postgres / memory / none
	DSN          string        `yaml:"dsn"`
	MaxConns     int           `yaml:"max_conns"`
	Table        string        `yaml:"table"`
	Limit        int           `yaml:"limit"`
	Timeout      time.Duration `yaml:"timeout"`
	Filter       string        `yaml:"filter"`        // memory：CEL 过滤表达式
	ListingsFile string        `yaml:"listings_file"` // memory：房源 JSON 文件
}

// Default 返回默认配置
func Default() *Config {
	fallback := true
	return &Config{
		Model: ModelConfig{
			ModelKey:    "model.json",
			MetadataKey: "metadata.json",
			Cooldown:    model.DefaultCooldown,
			WaitTimeout: model.DefaultWaitTimeout,
			LoadTimeout: model.DefaultLoadTimeout,
			Fallback:    &fallback,
		},
		Artifacts: ArtifactsConfig{
			Kind: "file",
			Dir:  "./artifacts",
			Redis: RedisConfig{
				Addr:   "localhost:6379",
				Prefix: "rentprice:",
			},
		},
		Comparables: ComparablesConfig{
			Kind:     "none",
			MaxConns: 4,
			Limit:    estimate.MaxComparables,
			Timeout:  2 * time.Second,
		},
	}
}

// Load 从 YAML 文件加载配置，未设置的字段保留默认值。
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	return Parse(data)
}

// Parse 解析 YAML 内容
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse yaml: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// FallbackEnabled 是否启用降级模型
func (m ModelConfig) FallbackEnabled() bool {
	return m.Fallback == nil || *m.Fallback
}

// Validate 校验配置
func (c *Config) Validate() error {
	if c.Model.ModelKey == "" || c.Model.MetadataKey == "" {
		return fmt.Errorf("config: model.model_key and model.metadata_key are required")
	}
	if c.Model.Cooldown < 0 || c.Model.WaitTimeout < 0 || c.Model.LoadTimeout < 0 {
		return fmt.Errorf("config: model durations must not be negative")
	}
	if c.Comparables.Limit < 0 || c.Comparables.Limit > estimate.MaxComparables {
		return fmt.Errorf("config: comparables.limit must be within [0, %d]", estimate.MaxComparables)
	}
	switch c.Artifacts.Kind {
	case "file":
		if c.Artifacts.Dir == "" {
			return fmt.Errorf("config: artifacts.dir is required for kind file")
		}
	case "redis":
		if c.Artifacts.Redis.Addr == "" {
			return fmt.Errorf("config: artifacts.redis.addr is required for kind redis")
		}
	case "azblob":
		if c.Artifacts.AzBlob.AccountURL == "" || c.Artifacts.AzBlob.Container == "" {
			return fmt.Errorf("config: artifacts.azblob.account_url and container are required for kind azblob")
		}
	case "memory":
	default:
		if !hasArtifactBuilder(c.Artifacts.Kind) {
			return fmt.Errorf("config: unknown artifacts.kind %q (supported: %v)", c.Artifacts.Kind, ArtifactKinds())
		}
	}
	switch c.Comparables.Kind {
	case "postgres":
		if c.Comparables.DSN == "" {
			return fmt.Errorf("config: comparables.dsn is required for kind postgres")
		}
	case "memory", "none", "":
	default:
		if !hasComparablesBuilder(c.Comparables.Kind) {
			return fmt.Errorf("config: unknown comparables.kind %q (supported: %v)", c.Comparables.Kind, ComparablesKinds())
		}
	}
	return nil
}
