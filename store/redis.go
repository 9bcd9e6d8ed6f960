package store

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"

	"github.com/rushteam/rentprice/core"
)

// RedisStore 是 Redis 实现的 ArtifactStore。
// 制品以普通 string 值保存在 prefix+key 下，适合多实例共享同一份模型。
type RedisStore struct {
	client redis.UniversalClient
	prefix string
}

// NewRedisStore 连接 Redis 并 Ping 一次
func NewRedisStore(ctx context.Context, addr string, db int, prefix string) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}
	return &RedisStore{client: client, prefix: prefix}, nil
}

// NewRedisStoreWithClient 使用已有客户端（集群、哨兵等）
func NewRedisStoreWithClient(client redis.UniversalClient, prefix string) *RedisStore {
	return &RedisStore{client: client, prefix: prefix}
}

func (r *RedisStore) Name() string { return "redis" }

func (r *RedisStore) FetchModel(ctx context.Context, key string) ([]byte, error) {
	return r.get(ctx, key)
}

func (r *RedisStore) FetchMetadata(ctx context.Context, key string) ([]byte, error) {
	return r.get(ctx, key)
}

func (r *RedisStore) get(ctx context.Context, key string) ([]byte, error) {
	val, err := r.client.Get(ctx, r.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, notFound(r.Name(), r.prefix+key)
	}
	if err != nil {
		return nil, transient(r.Name(), r.prefix+key, err)
	}
	return val, nil
}

// Put 发布一个制品（运维工具使用），不设置过期时间
func (r *RedisStore) Put(ctx context.Context, key string, value []byte) error {
	return r.client.Set(ctx, r.prefix+key, value, 0).Err()
}

func (r *RedisStore) Close() error {
	return r.client.Close()
}

var _ core.ArtifactStore = (*RedisStore)(nil)
