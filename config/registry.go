package config

import (
	"context"
	"sort"
	"sync"

	"github.com/rushteam/rentprice/core"
)

// ArtifactBuilder 根据配置构建制品存储；返回的 close 可以为 nil。
type ArtifactBuilder func(ctx context.Context, cfg ArtifactsConfig) (core.ArtifactStore, func() error, error)

// ComparablesBuilder 根据配置构建可比房源查询；返回的 close 可以为 nil。
type ComparablesBuilder func(ctx context.Context, cfg ComparablesConfig) (core.ComparablesProvider, func() error, error)

var (
	artifactBuilders    = make(map[string]ArtifactBuilder)
	comparablesBuilders = make(map[string]ComparablesBuilder)
	buildersMu          sync.RWMutex
)

// RegisterArtifactStore 注册一种制品存储，kind 对应 artifacts.kind。
// 可在 init 中调用以扩展内置的 file / redis / azblob / memory。
func RegisterArtifactStore(kind string, builder ArtifactBuilder) {
	if kind == "" || builder == nil {
		return
	}
	buildersMu.Lock()
	defer buildersMu.Unlock()
	artifactBuilders[kind] = builder
}

// RegisterComparables 注册一种可比房源来源，kind 对应 comparables.kind。
func RegisterComparables(kind string, builder ComparablesBuilder) {
	if kind == "" || builder == nil {
		return
	}
	buildersMu.Lock()
	defer buildersMu.Unlock()
	comparablesBuilders[kind] = builder
}

// ArtifactKinds 返回已注册的制品存储类型（排序），用于错误提示。
func ArtifactKinds() []string {
	buildersMu.RLock()
	defer buildersMu.RUnlock()
	return sortedKeys(artifactBuilders)
}

// ComparablesKinds 返回已注册的可比房源类型（排序）。
func ComparablesKinds() []string {
	buildersMu.RLock()
	defer buildersMu.RUnlock()
	return sortedKeys(comparablesBuilders)
}

func hasArtifactBuilder(kind string) bool {
	_, ok := lookupArtifactBuilder(kind)
	return ok
}

func hasComparablesBuilder(kind string) bool {
	_, ok := lookupComparablesBuilder(kind)
	return ok
}

func lookupArtifactBuilder(kind string) (ArtifactBuilder, bool) {
	buildersMu.RLock()
	defer buildersMu.RUnlock()
	b, ok := artifactBuilders[kind]
	return b, ok
}

func lookupComparablesBuilder(kind string) (ComparablesBuilder, bool) {
	buildersMu.RLock()
	defer buildersMu.RUnlock()
	b, ok := comparablesBuilders[kind]
	return b, ok
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
