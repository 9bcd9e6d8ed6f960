package model

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/rushteam/rentprice/core"
	"github.com/rushteam/rentprice/feature"
)

// 默认参数
const (
	DefaultCooldown    = 5 * time.Minute
	DefaultWaitTimeout = 10 * time.Second
	DefaultLoadTimeout = 30 * time.Second
)

const loadFlightKey = "model"

// State 是缓存状态机：Empty -> Loading -> Ready | FailedCooldown。
type State int

const (
	StateEmpty State = iota
	StateLoading
	StateReady
	StateFailedCooldown
)

func (s State) String() string {
	switch s {
	case StateEmpty:
		return "empty"
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	case StateFailedCooldown:
		return "failed_cooldown"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Cache 持有进程内唯一的已加载模型及其元数据。
//
// 行为：
//   - Ready：直接返回缓存模型，只取读锁，无 I/O
//   - Empty：由一个调用方加载，其余调用方共享同一次加载（singleflight），
//     最多等待 WaitTimeout，超时返回 ErrLoadTimeout，加载本身继续完成
//   - 加载失败：构造降级模型继续服务，记录失败时间；冷却期内不再访问 ArtifactStore，
//     冷却期过后的下一次 Get 重新尝试加载真实制品
//   - 禁用降级时，冷却期内 Get 快速失败并返回 ErrModelUnavailable
//
// Cache 是显式注入的对象，每个测试可以使用独立实例。
type Cache struct {
	store       core.ArtifactStore
	modelKey    string
	metadataKey string

	cooldown    time.Duration
	waitTimeout time.Duration
	loadTimeout time.Duration
	fallback    bool
	logger      *slog.Logger
	now         func() time.Time

	group singleflight.Group

	mu          sync.RWMutex
	state       State
	current     *Loaded
	lastFailure time.Time
	lastErr     error
	attempts    int
}

// Option 配置 Cache
type Option func(*Cache)

// WithCooldown 设置失败冷却时间
func WithCooldown(d time.Duration) Option {
	return func(c *Cache) {
		if d > 0 {
			c.cooldown = d
		}
	}
}

// WithWaitTimeout 设置等待其他调用方加载的最长时间
func WithWaitTimeout(d time.Duration) Option {
	return func(c *Cache) {
		if d > 0 {
			c.waitTimeout = d
		}
	}
}

// WithLoadTimeout 设置单次制品拉取的超时时间
func WithLoadTimeout(d time.Duration) Option {
	return func(c *Cache) {
		if d > 0 {
			c.loadTimeout = d
		}
	}
}

// WithoutFallback 禁用降级模型：加载失败后冷却期内 Get 返回 ErrModelUnavailable
func WithoutFallback() Option {
	return func(c *Cache) { c.fallback = false }
}

// WithLogger 设置日志
func WithLogger(l *slog.Logger) Option {
	return func(c *Cache) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithClock 替换时钟（测试冷却期使用）
func WithClock(now func() time.Time) Option {
	return func(c *Cache) {
		if now != nil {
			c.now = now
		}
	}
}

// NewCache 创建模型缓存，首次 Get 时才加载。
func NewCache(store core.ArtifactStore, modelKey, metadataKey string, opts ...Option) *Cache {
	c := &Cache{
		store:       store,
		modelKey:    modelKey,
		metadataKey: metadataKey,
		cooldown:    DefaultCooldown,
		waitTimeout: DefaultWaitTimeout,
		loadTimeout: DefaultLoadTimeout,
		fallback:    true,
		logger:      slog.Default(),
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get 返回可用模型。
func (c *Cache) Get(ctx context.Context) (*Loaded, error) {
	c.mu.RLock()
	state, current, lastFailure := c.state, c.current, c.lastFailure
	c.mu.RUnlock()

	switch state {
	case StateReady:
		return current, nil
	case StateLoading:
		// 重试期间继续服务上一次的模型（降级模型或强制重载前的模型）
		if current != nil {
			return current, nil
		}
	case StateFailedCooldown:
		if c.now().Sub(lastFailure) < c.cooldown {
			if current != nil {
				return current, nil
			}
			return nil, core.ErrModelUnavailable
		}
	}
	return c.await(ctx, false)
}

// Reload 忽略冷却期强制重新加载真实制品，仍然与并发加载合并。
// 失败时保留当前已服务的真实模型。
func (c *Cache) Reload(ctx context.Context) (*Loaded, error) {
	return c.await(ctx, true)
}

func (c *Cache) await(ctx context.Context, force bool) (*Loaded, error) {
	// 加载与调用方的取消解耦：调用方超时离开后，加载仍会完成并写入缓存
	loadCtx := context.WithoutCancel(ctx)
	ch := c.group.DoChan(loadFlightKey, func() (any, error) {
		return c.load(loadCtx, force)
	})

	timer := time.NewTimer(c.waitTimeout)
	defer timer.Stop()

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*Loaded), nil
	case <-timer.C:
		c.logger.Warn("timed out waiting for model load", "wait_timeout", c.waitTimeout)
		return nil, core.ErrLoadTimeout
	case <-ctx.Done():
		return nil, core.WrapDomainError(core.ModuleModel, core.ErrorCodeLoadTimeout, "model: caller gave up waiting for load", ctx.Err())
	}
}

// load 在 singleflight 内执行，同一时刻只有一个。
func (c *Cache) load(ctx context.Context, force bool) (*Loaded, error) {
	c.mu.Lock()
	// 在我们读取状态与进入 flight 之间，上一次加载可能已经完成
	if !force {
		switch c.state {
		case StateReady:
			current := c.current
			c.mu.Unlock()
			return current, nil
		case StateFailedCooldown:
			if c.now().Sub(c.lastFailure) < c.cooldown {
				current := c.current
				c.mu.Unlock()
				if current == nil {
					return nil, core.ErrModelUnavailable
				}
				return current, nil
			}
		}
	}
	c.state = StateLoading
	c.attempts++
	attempt := c.attempts
	c.mu.Unlock()

	start := time.Now()
	c.logger.Info("loading model artifact",
		"store", c.store.Name(), "model_key", c.modelKey, "metadata_key", c.metadataKey, "attempt", attempt)

	fetchCtx, cancel := context.WithTimeout(ctx, c.loadTimeout)
	defer cancel()
	loaded, err := c.fetch(fetchCtx)

	c.mu.Lock()
	defer c.mu.Unlock()

	if err == nil {
		c.state = StateReady
		c.current = loaded
		c.lastErr = nil
		c.logger.Info("model artifact loaded",
			"model", loaded.Name(), "version", loaded.Version(), "features", loaded.meta.FeatureCount(),
			"duration", time.Since(start))
		return loaded, nil
	}

	c.lastFailure = c.now()
	c.lastErr = err

	// 强制重载失败时不降级已在服务的真实模型
	if c.current != nil && !c.current.IsFallback() {
		c.state = StateReady
		c.logger.Warn("model reload failed, keeping current model", "error", err, "version", c.current.Version())
		return c.current, nil
	}

	c.state = StateFailedCooldown
	if !c.fallback {
		c.current = nil
		c.logger.Error("model artifact load failed", "error", err, "cooldown", c.cooldown)
		return nil, core.WrapDomainError(core.ModuleModel, core.ErrorCodeModelUnavailable, "model: artifact load failed", err)
	}

	if c.current == nil {
		c.current = newFallbackLoaded(c.now())
	}
	c.logger.Warn("model artifact load failed, serving fallback model",
		"error", err, "cooldown", c.cooldown, "duration", time.Since(start))
	return c.current, nil
}

func (c *Cache) fetch(ctx context.Context) (*Loaded, error) {
	modelBytes, err := c.store.FetchModel(ctx, c.modelKey)
	if err != nil {
		return nil, fmt.Errorf("fetch model %q: %w", c.modelKey, err)
	}
	metaBytes, err := c.store.FetchMetadata(ctx, c.metadataKey)
	if err != nil {
		return nil, fmt.Errorf("fetch metadata %q: %w", c.metadataKey, err)
	}

	meta, err := feature.ParseMetadata(metaBytes)
	if err != nil {
		return nil, err
	}
	m, err := DecodeArtifact(modelBytes)
	if err != nil {
		return nil, err
	}
	if err := checkArity(m, meta); err != nil {
		return nil, err
	}
	return &Loaded{model: m, meta: meta, loadedAt: c.now()}, nil
}

func checkArity(m Regressor, meta *feature.Metadata) error {
	if m == nil || meta == nil {
		return core.NewInvalidArtifactError("模型或元数据为空", nil)
	}
	if err := meta.Validate(); err != nil {
		return err
	}
	if m.Inputs() != meta.FeatureCount() {
		return core.NewInvalidArtifactError(
			fmt.Sprintf("模型输入维度 %d 与特征数 %d 不一致", m.Inputs(), meta.FeatureCount()), nil)
	}
	return nil
}

// Status 是缓存的只读快照
type Status struct {
	State       State
	Fallback    bool
	Model       string
	Version     string
	LoadedAt    time.Time
	LastFailure time.Time
	LastError   error
	Attempts    int
}

// Status 返回当前状态（不会触发加载）
func (c *Cache) Status() Status {
	c.mu.RLock()
	defer c.mu.RUnlock()
	st := Status{
		State:       c.state,
		LastFailure: c.lastFailure,
		LastError:   c.lastErr,
		Attempts:    c.attempts,
	}
	if c.current != nil {
		st.Fallback = c.current.IsFallback()
		st.Model = c.current.Name()
		st.Version = c.current.Version()
		st.LoadedAt = c.current.LoadedAt()
	}
	return st
}
