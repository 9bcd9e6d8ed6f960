package store

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/rushteam/rentprice/core"
)

// FileStore 本地目录实现的 ArtifactStore，key 是相对目录的斜杠路径。
//
// 用法：
//
//	artifacts := store.NewFileStore("./artifacts")
//	data, err := artifacts.FetchModel(ctx, "rent/v3/model.json")
type FileStore struct {
	dir string
}

// NewFileStore 创建本地目录制品存储
func NewFileStore(dir string) *FileStore {
	return &FileStore{dir: dir}
}

func (f *FileStore) Name() string { return "file" }

func (f *FileStore) FetchModel(ctx context.Context, key string) ([]byte, error) {
	return f.get(ctx, key)
}

func (f *FileStore) FetchMetadata(ctx context.Context, key string) ([]byte, error) {
	return f.get(ctx, key)
}

func (f *FileStore) get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, transient(f.Name(), key, err)
	}
	rel := filepath.FromSlash(key)
	if !filepath.IsLocal(rel) {
		return nil, core.NewInvalidArtifactError(fmt.Sprintf("非法的制品路径: %s", key), nil)
	}
	data, err := os.ReadFile(filepath.Join(f.dir, rel))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, notFound(f.Name(), key)
	}
	if err != nil {
		return nil, transient(f.Name(), key, err)
	}
	return data, nil
}

var _ core.ArtifactStore = (*FileStore)(nil)
