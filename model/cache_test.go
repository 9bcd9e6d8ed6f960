package model

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rushteam/rentprice/core"
	"github.com/rushteam/rentprice/feature"
)

// fakeStore 计数的 ArtifactStore；gate 不为 nil 时 FetchModel 阻塞直到 gate 关闭。
type fakeStore struct {
	model    []byte
	metadata []byte
	modelErr error
	gate     chan struct{}

	modelFetches atomic.Int32
	metaFetches  atomic.Int32
}

func (s *fakeStore) Name() string { return "fake" }

func (s *fakeStore) FetchModel(ctx context.Context, key string) ([]byte, error) {
	s.modelFetches.Add(1)
	if s.gate != nil {
		select {
		case <-s.gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if s.modelErr != nil {
		return nil, s.modelErr
	}
	return s.model, nil
}

func (s *fakeStore) FetchMetadata(ctx context.Context, key string) ([]byte, error) {
	s.metaFetches.Add(1)
	return s.metadata, nil
}

func linearArtifact(t *testing.T, bias float64, n int) []byte {
	t.Helper()
	weights := make([]float64, n)
	data, err := json.Marshal(map[string]any{"type": "linear", "bias": bias, "weights": weights})
	require.NoError(t, err)
	return data
}

func metadataBytes(t *testing.T, meta *feature.Metadata) []byte {
	t.Helper()
	data, err := json.Marshal(meta)
	require.NoError(t, err)
	return data
}

func validStore(t *testing.T) *fakeStore {
	meta := feature.FallbackMetadata()
	meta.ModelVersion = "v3"
	return &fakeStore{
		model:    linearArtifact(t, 1400, meta.FeatureCount()),
		metadata: metadataBytes(t, meta),
	}
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeClock 可手动推进的时钟
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func TestCache_LoadsOnceAndServesFromMemory(t *testing.T) {
	store := validStore(t)
	cache := NewCache(store, "model.json", "metadata.json", WithLogger(quietLogger()))
	assert.Equal(t, StateEmpty, cache.Status().State)

	loaded, err := cache.Get(context.Background())
	require.NoError(t, err)
	assert.False(t, loaded.IsFallback())
	assert.Equal(t, "v3", loaded.Version())

	vec := make(feature.Vector, 8)
	got, err := loaded.Predict(vec)
	require.NoError(t, err)
	assert.Equal(t, 1400.0, got)

	again, err := cache.Get(context.Background())
	require.NoError(t, err)
	assert.Same(t, loaded, again)
	assert.Equal(t, int32(1), store.modelFetches.Load())
	assert.Equal(t, StateReady, cache.Status().State)
}

func TestCache_ConcurrentGetFetchesOnce(t *testing.T) {
	store := validStore(t)
	store.gate = make(chan struct{})
	cache := NewCache(store, "model.json", "metadata.json", WithLogger(quietLogger()))

	const callers = 32
	var wg sync.WaitGroup
	results := make([]*Loaded, callers)
	errs := make([]error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = cache.Get(context.Background())
		}(i)
	}

	require.Eventually(t, func() bool { return store.modelFetches.Load() == 1 }, time.Second, time.Millisecond)
	close(store.gate)
	wg.Wait()

	for i := 0; i < callers; i++ {
		require.NoError(t, errs[i])
		assert.Same(t, results[0], results[i])
	}
	assert.Equal(t, int32(1), store.modelFetches.Load())
	assert.Equal(t, int32(1), store.metaFetches.Load())
}

func TestCache_FallbackAndCooldown(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)}
	store := &fakeStore{modelErr: core.ErrArtifactNotFound}
	cache := NewCache(store, "model.json", "metadata.json",
		WithClock(clock.Now), WithCooldown(5*time.Minute), WithLogger(quietLogger()))

	loaded, err := cache.Get(context.Background())
	require.NoError(t, err)
	assert.True(t, loaded.IsFallback())
	assert.Equal(t, feature.FallbackFeatureNames, loaded.Metadata().FeatureNames)

	st := cache.Status()
	assert.Equal(t, StateFailedCooldown, st.State)
	assert.True(t, st.Fallback)
	assert.True(t, errors.Is(st.LastError, core.ErrArtifactNotFound))

	// 冷却期内不访问存储
	clock.Advance(4 * time.Minute)
	again, err := cache.Get(context.Background())
	require.NoError(t, err)
	assert.Same(t, loaded, again)
	assert.Equal(t, int32(1), store.modelFetches.Load())

	// 冷却期过后重试，恢复后切换到真实模型
	valid := validStore(t)
	store.modelErr = nil
	store.model = valid.model
	store.metadata = valid.metadata
	clock.Advance(2 * time.Minute)

	recovered, err := cache.Get(context.Background())
	require.NoError(t, err)
	assert.False(t, recovered.IsFallback())
	assert.Equal(t, int32(2), store.modelFetches.Load())
	assert.Equal(t, StateReady, cache.Status().State)
}

func TestCache_WithoutFallbackFailsFastDuringCooldown(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)}
	store := &fakeStore{modelErr: core.NewTransientError("get", errors.New("connection reset"))}
	cache := NewCache(store, "model.json", "metadata.json",
		WithClock(clock.Now), WithoutFallback(), WithLogger(quietLogger()))

	_, err := cache.Get(context.Background())
	require.Error(t, err)
	assert.True(t, core.IsModelUnavailable(err))
	assert.ErrorContains(t, err, "connection reset")

	_, err = cache.Get(context.Background())
	assert.ErrorIs(t, err, core.ErrModelUnavailable)
	assert.Equal(t, int32(1), store.modelFetches.Load())

	clock.Advance(DefaultCooldown + time.Second)
	_, err = cache.Get(context.Background())
	assert.True(t, core.IsModelUnavailable(err))
	assert.Equal(t, int32(2), store.modelFetches.Load())
}

func TestCache_RejectsZeroStdMetadata(t *testing.T) {
	meta := feature.FallbackMetadata()
	meta.Std[3] = 0
	store := &fakeStore{
		model:    linearArtifact(t, 1400, meta.FeatureCount()),
		metadata: metadataBytes(t, meta),
	}
	cache := NewCache(store, "model.json", "metadata.json", WithLogger(quietLogger()))

	loaded, err := cache.Get(context.Background())
	require.NoError(t, err)
	assert.True(t, loaded.IsFallback(), "非法元数据不能进入编码器")
	assert.Equal(t, core.ErrorCodeInvalidArtifact, core.GetDomainError(cache.Status().LastError).Code)
	for _, s := range loaded.Metadata().Std {
		assert.NotZero(t, s)
	}
}

func TestCache_RejectsArityMismatch(t *testing.T) {
	store := &fakeStore{
		model:    linearArtifact(t, 1400, 3),
		metadata: metadataBytes(t, feature.FallbackMetadata()),
	}
	cache := NewCache(store, "model.json", "metadata.json", WithoutFallback(), WithLogger(quietLogger()))

	_, err := cache.Get(context.Background())
	require.Error(t, err)
	assert.True(t, core.IsModelUnavailable(err))
}

func TestCache_WaitTimeout(t *testing.T) {
	store := validStore(t)
	store.gate = make(chan struct{})
	cache := NewCache(store, "model.json", "metadata.json",
		WithWaitTimeout(20*time.Millisecond), WithLogger(quietLogger()))

	_, err := cache.Get(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrLoadTimeout)
	assert.Equal(t, StateLoading, cache.Status().State)

	// 加载在调用方离开后继续完成
	close(store.gate)
	require.Eventually(t, func() bool { return cache.Status().State == StateReady }, time.Second, time.Millisecond)

	loaded, err := cache.Get(context.Background())
	require.NoError(t, err)
	assert.False(t, loaded.IsFallback())
	assert.Equal(t, int32(1), store.modelFetches.Load())
}

func TestCache_ReloadKeepsModelOnFailure(t *testing.T) {
	store := validStore(t)
	cache := NewCache(store, "model.json", "metadata.json", WithLogger(quietLogger()))

	first, err := cache.Get(context.Background())
	require.NoError(t, err)

	store.modelErr = core.NewTransientError("get", errors.New("timeout"))
	reloaded, err := cache.Reload(context.Background())
	require.NoError(t, err)
	assert.Same(t, first, reloaded)
	assert.Equal(t, StateReady, cache.Status().State)
	assert.Equal(t, int32(2), store.modelFetches.Load())
}

func TestLoadedMetadataIsCopy(t *testing.T) {
	loaded, err := NewLoaded(NewFallbackModel(8), feature.FallbackMetadata())
	require.NoError(t, err)

	meta := loaded.Metadata()
	meta.Mean[0] = 1000
	assert.Equal(t, 2.0, loaded.Metadata().Mean[0])

	_, err = NewLoaded(NewFallbackModel(3), feature.FallbackMetadata())
	assert.Error(t, err)
}
