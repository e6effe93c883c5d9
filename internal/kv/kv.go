package kv

import "context"

// 五个固定的集合键，与前端 window.storage 使用的键保持一致，
// 以便读取同一份已有数据
const (
	KeyPosts       = "share-posts"
	KeyExpiryItems = "expiry-items"
	KeyUserStats   = "user-stats"
	KeyLikedPosts  = "liked-posts"
	KeyComments    = "comments"
)

// Service 是外部键值存储服务的抽象。值为序列化后的 JSON 文本。
// Get 的第二个返回值表示键是否存在；键不存在不是错误。
type Service interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
}
