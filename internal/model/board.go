package model

import (
	"strconv"
	"strings"
	"time"
)

// PostType 帖子类型
type PostType string

const (
	PostTypeOffer   PostType = "offer"   // 分享
	PostTypeRequest PostType = "request" // 求助
)

// PostStatus 帖子状态
type PostStatus string

const (
	PostStatusOpen     PostStatus = "open"
	PostStatusResolved PostStatus = "resolved"
)

// ExpiryRef 是帖子对临期食品的引用，内部保存字符串形式的ID。
// 表单提交的ID可能是字符串，存储的ID是整数，比较必须统一经过该类型，
// 避免散落在各处的隐式类型转换。空值表示未关联。
type ExpiryRef string

// NewExpiryRef 根据临期食品ID构造引用
func NewExpiryRef(id int64) ExpiryRef {
	return ExpiryRef(strconv.FormatInt(id, 10))
}

// ParseExpiryRef 在表单边界将原始输入转换为引用
func ParseExpiryRef(raw string) ExpiryRef {
	return ExpiryRef(strings.TrimSpace(raw))
}

// IsZero 判断引用是否为空
func (r ExpiryRef) IsZero() bool {
	return r == ""
}

// Matches 判断引用是否指向给定ID
func (r ExpiryRef) Matches(id int64) bool {
	return !r.IsZero() && string(r) == strconv.FormatInt(id, 10)
}

// Post 掲示板的一条帖子
type Post struct {
	ID             int64      `json:"id"`
	Type           PostType   `json:"type"`
	Title          string     `json:"title"`
	Description    string     `json:"description"`
	Deadline       string     `json:"deadline"` // YYYY-MM-DD，空表示无期限
	Tags           []string   `json:"tags"`
	LinkedExpiryID ExpiryRef  `json:"linkedExpiryId"`
	Status         PostStatus `json:"status"`
	Thanks         int        `json:"thanks"`
	CreatedAt      time.Time  `json:"createdAt"`
	UserName       string     `json:"userName"`
}

// ExpiryItem 临期食品
type ExpiryItem struct {
	ID         int64     `json:"id"`
	Name       string    `json:"name"`
	ExpiryDate string    `json:"expiryDate"` // YYYY-MM-DD，必填
	Quantity   string    `json:"quantity"`
	Tags       []string  `json:"tags"`
	CreatedAt  time.Time `json:"createdAt"`
}

// Comment 帖子评论。按帖子ID（字符串形式）分组存储，组内为插入顺序。
type Comment struct {
	ID        int64     `json:"id"`
	Text      string    `json:"text"`
	UserName  string    `json:"userName"`
	CreatedAt time.Time `json:"createdAt"`
}

// CommentMap 评论集合，键为字符串形式的帖子ID
type CommentMap map[string][]*Comment

// For 返回指定帖子的评论列表
func (m CommentMap) For(postID int64) []*Comment {
	return m[strconv.FormatInt(postID, 10)]
}

// Append 追加一条评论（评论只增不删）
func (m CommentMap) Append(postID int64, c *Comment) {
	key := strconv.FormatInt(postID, 10)
	m[key] = append(m[key], c)
}

// UserStats 本地用户的累计统计，不区分用户
type UserStats struct {
	Borrowed int `json:"borrowed"` // offer 帖子从 open 变为 resolved 的次数
	Shared   int `json:"shared"`   // 创建 offer 帖子的次数
}

// BoardStats 掲示板聚合统计，每次展示时全量重算，避免增量计数漂移
type BoardStats struct {
	TotalPosts    int `json:"totalPosts"`
	ResolvedCount int `json:"resolvedCount"`
	TotalThanks   int `json:"totalThanks"`
	TotalComments int `json:"totalComments"`
	OfferCount    int `json:"offerCount"`
	RequestCount  int `json:"requestCount"`
}
