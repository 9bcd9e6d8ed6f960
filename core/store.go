package core

import "context"

// ArtifactStore 是模型制品存储的领域接口。
//
// 设计原则：
//   - 定义在领域层（core），由基础设施层（store）实现
//   - 只需要"按 key 取字节"的能力，存储介质（本地文件、Redis、Blob）对模型缓存透明
//
// 错误约定：
//   - key 不存在返回 ErrArtifactNotFound（errors.Is 可判断）
//   - 网络/存储故障返回 TRANSIENT 代码的 DomainError（见 NewTransientError）
//
// 实现：
//   - store.FileStore / store.MemoryStore / store.RedisStore / store.BlobStore
type ArtifactStore interface {
	// Name 返回存储后端名称（用于日志）
	Name() string

	// FetchModel 读取序列化模型
	FetchModel(ctx context.Context, key string) ([]byte, error)

	// FetchMetadata 读取模型元数据（JSON）
	FetchMetadata(ctx context.Context, key string) ([]byte, error)
}

// ComparablesProvider 是可比房源查询的领域接口。
//
// 返回与 propertyType、bedrooms 精确匹配、状态为 active、未被标记的房源，
// 按发布时间倒序，最多 limit 条。空列表是合法结果，不是错误。
//
// 实现：
//   - store.PostgresComparables（生产）
//   - store.MemoryComparables（测试/开发/CLI）
type ComparablesProvider interface {
	Find(ctx context.Context, propertyType string, bedrooms int, limit int) ([]ComparableListing, error)
}
