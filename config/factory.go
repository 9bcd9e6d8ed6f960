package config

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/rushteam/rentprice/core"
	"github.com/rushteam/rentprice/estimate"
	"github.com/rushteam/rentprice/model"
	"github.com/rushteam/rentprice/pkg/dsl"
	"github.com/rushteam/rentprice/store"
)

func init() {
	RegisterArtifactStore("file", buildFileStore)
	RegisterArtifactStore("memory", buildMemoryStore)
	RegisterArtifactStore("redis", buildRedisStore)
	RegisterArtifactStore("azblob", buildBlobStore)

	RegisterComparables("none", buildNoComparables)
	RegisterComparables("memory", buildMemoryComparables)
	RegisterComparables("postgres", buildPostgresComparables)
}

// Runtime 是按配置装配好的估价引擎
type Runtime struct {
	Artifacts   core.ArtifactStore
	Comparables core.ComparablesProvider
	Cache       *model.Cache
	Service     *estimate.Service

	closers []func() error
}

// Close 释放连接池等资源
func (r *Runtime) Close() error {
	var errs []error
	for i := len(r.closers) - 1; i >= 0; i-- {
		if err := r.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Build 根据配置构建制品存储、可比房源、模型缓存与估价服务。
func Build(ctx context.Context, cfg *Config, logger *slog.Logger) (*Runtime, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}

	rt := &Runtime{}

	artifactBuilder, ok := lookupArtifactBuilder(cfg.Artifacts.Kind)
	if !ok {
		return nil, fmt.Errorf("unknown artifacts kind: %s", cfg.Artifacts.Kind)
	}
	artifacts, closeArtifacts, err := artifactBuilder(ctx, cfg.Artifacts)
	if err != nil {
		return nil, fmt.Errorf("build artifacts %s: %w", cfg.Artifacts.Kind, err)
	}
	rt.Artifacts = artifacts
	if closeArtifacts != nil {
		rt.closers = append(rt.closers, closeArtifacts)
	}

	compsKind := cfg.Comparables.Kind
	if compsKind == "" {
		compsKind = "none"
	}
	compsBuilder, ok := lookupComparablesBuilder(compsKind)
	if !ok {
		_ = rt.Close()
		return nil, fmt.Errorf("unknown comparables kind: %s", compsKind)
	}
	comps, closeComps, err := compsBuilder(ctx, cfg.Comparables)
	if err != nil {
		_ = rt.Close()
		return nil, fmt.Errorf("build comparables %s: %w", compsKind, err)
	}
	rt.Comparables = comps
	if closeComps != nil {
		rt.closers = append(rt.closers, closeComps)
	}

	cacheOpts := []model.Option{
		model.WithCooldown(cfg.Model.Cooldown),
		model.WithWaitTimeout(cfg.Model.WaitTimeout),
		model.WithLoadTimeout(cfg.Model.LoadTimeout),
		model.WithLogger(logger.With("component", "model_cache")),
	}
	if !cfg.Model.FallbackEnabled() {
		cacheOpts = append(cacheOpts, model.WithoutFallback())
	}
	rt.Cache = model.NewCache(artifacts, cfg.Model.ModelKey, cfg.Model.MetadataKey, cacheOpts...)

	rt.Service = estimate.NewService(rt.Cache, comps,
		estimate.WithComparablesLimit(cfg.Comparables.Limit),
		estimate.WithComparablesTimeout(cfg.Comparables.Timeout),
		estimate.WithServiceLogger(logger.With("component", "estimate")),
	)
	return rt, nil
}

func buildFileStore(_ context.Context, cfg ArtifactsConfig) (core.ArtifactStore, func() error, error) {
	return store.NewFileStore(cfg.Dir), nil, nil
}

func buildMemoryStore(_ context.Context, _ ArtifactsConfig) (core.ArtifactStore, func() error, error) {
	return store.NewMemoryStore(), nil, nil
}

func buildRedisStore(ctx context.Context, cfg ArtifactsConfig) (core.ArtifactStore, func() error, error) {
	s, err := store.NewRedisStore(ctx, cfg.Redis.Addr, cfg.Redis.DB, cfg.Redis.Prefix)
	if err != nil {
		return nil, nil, err
	}
	return s, s.Close, nil
}

func buildBlobStore(_ context.Context, cfg ArtifactsConfig) (core.ArtifactStore, func() error, error) {
	s, err := store.NewBlobStore(cfg.AzBlob.AccountURL, cfg.AzBlob.Container)
	if err != nil {
		return nil, nil, err
	}
	return s, nil, nil
}

func buildNoComparables(_ context.Context, _ ComparablesConfig) (core.ComparablesProvider, func() error, error) {
	return nil, nil, nil
}

func buildMemoryComparables(_ context.Context, cfg ComparablesConfig) (core.ComparablesProvider, func() error, error) {
	filter, err := dsl.Compile(cfg.Filter)
	if err != nil {
		return nil, nil, fmt.Errorf("compile filter: %w", err)
	}
	var listings []store.ListingRecord
	if cfg.ListingsFile != "" {
		listings, err = store.LoadListingsFile(cfg.ListingsFile)
		if err != nil {
			return nil, nil, err
		}
	}
	comps, err := store.NewMemoryComparables(listings, filter)
	if err != nil {
		return nil, nil, err
	}
	return comps, nil, nil
}

func buildPostgresComparables(ctx context.Context, cfg ComparablesConfig) (core.ComparablesProvider, func() error, error) {
	comps, err := store.NewPostgresComparables(ctx, cfg.DSN, cfg.MaxConns, cfg.Table)
	if err != nil {
		return nil, nil, err
	}
	return comps, func() error { comps.Close(); return nil }, nil
}
