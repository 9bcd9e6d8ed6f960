package store

import (
	"fmt"

	"github.com/rushteam/rentprice/core"
)

// 注意：此包只包含实现，接口定义在 core 包。
// 使用 core.ArtifactStore 和 core.ComparablesProvider 接口。
//
// 示例：
//   var artifacts core.ArtifactStore = NewFileStore("./artifacts")
//   var comps core.ComparablesProvider = NewMemoryComparables(listings, nil)

// notFound 返回可被 errors.Is(err, core.ErrArtifactNotFound) 识别的错误
func notFound(backend, key string) error {
	return core.NewDomainError(core.ModuleArtifact, core.ErrorCodeNotFound,
		fmt.Sprintf("artifact: key not found in %s: %s", backend, key))
}

// transient 把后端错误包装为 TRANSIENT；调用方取消/超时原样保留在错误链上
func transient(backend, key string, err error) error {
	return core.NewTransientError(fmt.Sprintf("%s get %s", backend, key), err)
}
