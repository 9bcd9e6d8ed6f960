package store

import (
	"context"
	"fmt"
	"io"

	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/bloberror"

	"github.com/rushteam/rentprice/core"
)

// BlobStore 是 Azure Blob Storage 实现的 ArtifactStore，key 是容器内的 blob 名。
type BlobStore struct {
	client    *azblob.Client
	container string
}

// NewBlobStore 使用 DefaultAzureCredential 连接存储账户
//
// 用法：
//
//	artifacts, err := store.NewBlobStore("https://acct.blob.core.windows.net/", "models")
//	data, err := artifacts.FetchModel(ctx, "rent/v3/model.json.zst")
func NewBlobStore(accountURL, container string) (*BlobStore, error) {
	cred, err := azidentity.NewDefaultAzureCredential(nil)
	if err != nil {
		return nil, fmt.Errorf("创建 Azure 凭据失败: %w", err)
	}
	client, err := azblob.NewClient(accountURL, cred, nil)
	if err != nil {
		return nil, fmt.Errorf("创建 Blob 客户端失败: %w", err)
	}
	return NewBlobStoreWithClient(client, container), nil
}

// NewBlobStoreWithClient 使用已有客户端
func NewBlobStoreWithClient(client *azblob.Client, container string) *BlobStore {
	return &BlobStore{client: client, container: container}
}

func (b *BlobStore) Name() string { return "azblob" }

func (b *BlobStore) FetchModel(ctx context.Context, key string) ([]byte, error) {
	return b.get(ctx, key)
}

func (b *BlobStore) FetchMetadata(ctx context.Context, key string) ([]byte, error) {
	return b.get(ctx, key)
}

func (b *BlobStore) get(ctx context.Context, key string) ([]byte, error) {
	resp, err := b.client.DownloadStream(ctx, b.container, key, nil)
	if err != nil {
		if bloberror.HasCode(err, bloberror.BlobNotFound, bloberror.ContainerNotFound) {
			return nil, notFound(b.Name(), b.container+"/"+key)
		}
		return nil, transient(b.Name(), b.container+"/"+key, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, transient(b.Name(), b.container+"/"+key, err)
	}
	return data, nil
}

var _ core.ArtifactStore = (*BlobStore)(nil)
