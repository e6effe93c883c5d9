// Package store 持有五个集合的权威内存状态，并通过外部键值服务做写穿透持久化。
// 持久化失败只记录日志，内存状态仍然是权威数据，不回滚也不重试。
package store

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/IamGODofNEWWORLD/MeShare/internal/kv"
	"github.com/IamGODofNEWWORLD/MeShare/internal/link"
	"github.com/IamGODofNEWWORLD/MeShare/internal/model"
	"github.com/IamGODofNEWWORLD/MeShare/internal/util"
	"go.uber.org/zap"
)

// Store 是五个集合的唯一所有者，所有修改都经过它的方法
type Store struct {
	mu sync.Mutex
	kv kv.Service

	posts      []*model.Post
	items      []*model.ExpiryItem
	stats      model.UserStats
	likedPosts []int64
	comments   model.CommentMap

	// ID 取创建时刻的毫秒时间戳，同一毫秒内连续创建时递增保证唯一
	lastID int64
}

// New 创建空状态的 Store
func New(service kv.Service) *Store {
	return &Store{
		kv:       service,
		comments: make(model.CommentMap),
	}
}

// Load 从键值服务加载五个集合。键不存在或数据损坏时保留零值默认，
// 这是本地缓存数据，加载失败不致命。
func (s *Store) Load(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	loadJSON(ctx, s.kv, kv.KeyPosts, &s.posts)
	loadJSON(ctx, s.kv, kv.KeyExpiryItems, &s.items)
	loadJSON(ctx, s.kv, kv.KeyUserStats, &s.stats)
	loadJSON(ctx, s.kv, kv.KeyLikedPosts, &s.likedPosts)
	loadJSON(ctx, s.kv, kv.KeyComments, &s.comments)

	if s.comments == nil {
		s.comments = make(model.CommentMap)
	}

	// 保证新ID不会与已加载的数据冲突
	for _, p := range s.posts {
		if p.ID > s.lastID {
			s.lastID = p.ID
		}
	}
	for _, it := range s.items {
		if it.ID > s.lastID {
			s.lastID = it.ID
		}
	}

	util.Logger.Info("数据加载完成",
		zap.Int("posts", len(s.posts)),
		zap.Int("expiry_items", len(s.items)),
		zap.Int("liked_posts", len(s.likedPosts)))
}

func loadJSON(ctx context.Context, service kv.Service, key string, dst interface{}) {
	value, ok, err := service.Get(ctx, key)
	if err != nil {
		util.Logger.Warn("读取集合失败，使用默认值", zap.String("key", key), zap.Error(err))
		return
	}
	if !ok {
		return
	}
	if err := json.Unmarshal([]byte(value), dst); err != nil {
		util.Logger.Warn("集合数据损坏，使用默认值", zap.String("key", key), zap.Error(err))
	}
}

// persist 序列化并写入一个集合，失败只记录日志
func (s *Store) persist(ctx context.Context, key string, value interface{}) {
	data, err := json.Marshal(value)
	if err != nil {
		util.Logger.Error("序列化集合失败", zap.String("key", key), zap.Error(err))
		return
	}
	if err := s.kv.Set(ctx, key, string(data)); err != nil {
		util.Logger.Error("持久化集合失败，内存状态保持权威", zap.String("key", key), zap.Error(err))
	}
}

// NextID 生成新实体ID
func (s *Store) NextID() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := time.Now().UnixMilli()
	if id <= s.lastID {
		id = s.lastID + 1
	}
	s.lastID = id
	return id
}

// Posts 返回帖子列表快照（新到旧）。调用方不得修改其中的元素。
func (s *Store) Posts() []*model.Post {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append(make([]*model.Post, 0, len(s.posts)), s.posts...)
}

// ExpiryItems 返回临期食品列表快照
func (s *Store) ExpiryItems() []*model.ExpiryItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append(make([]*model.ExpiryItem, 0, len(s.items)), s.items...)
}

// Stats 返回用户统计
func (s *Store) Stats() model.UserStats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stats
}

// HasLiked 判断本地用户是否已感谢过该帖子
func (s *Store) HasLiked(postID int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range s.likedPosts {
		if id == postID {
			return true
		}
	}
	return false
}

// Comments 返回全部评论集合。调用方不得修改。
func (s *Store) Comments() model.CommentMap {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.comments
}

// CommentsFor 返回指定帖子的评论快照（插入顺序即展示顺序）
func (s *Store) CommentsFor(postID int64) []*model.Comment {
	s.mu.Lock()
	defer s.mu.Unlock()
	list := s.comments.For(postID)
	return append(make([]*model.Comment, 0, len(list)), list...)
}

// FindPost 按ID查找帖子
func (s *Store) FindPost(id int64) *model.Post {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.findPost(id)
}

func (s *Store) findPost(id int64) *model.Post {
	for _, p := range s.posts {
		if p.ID == id {
			return p
		}
	}
	return nil
}

// FindExpiryItem 按ID查找临期食品
func (s *Store) FindExpiryItem(id int64) *model.ExpiryItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, it := range s.items {
		if it.ID == id {
			return it
		}
	}
	return nil
}

// PrependPost 新帖子插到最前（掲示板按新到旧展示）
func (s *Store) PrependPost(ctx context.Context, p *model.Post) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.posts = append([]*model.Post{p}, s.posts...)
	s.persist(ctx, kv.KeyPosts, s.posts)
}

// SetPostStatus 修改帖子状态，返回修改后的帖子
func (s *Store) SetPostStatus(ctx context.Context, id int64, status model.PostStatus) *model.Post {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := s.findPost(id)
	if p == nil {
		return nil
	}
	p.Status = status
	s.persist(ctx, kv.KeyPosts, s.posts)
	return p
}

// IncrementThanks 给帖子加一次感谢，返回修改后的帖子。
// 幂等控制在调用方（likedPosts 判断）完成。
func (s *Store) IncrementThanks(ctx context.Context, id int64) *model.Post {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := s.findPost(id)
	if p == nil {
		return nil
	}
	p.Thanks++
	s.persist(ctx, kv.KeyPosts, s.posts)
	return p
}

// MarkLiked 记录本地用户已感谢该帖子
func (s *Store) MarkLiked(ctx context.Context, postID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.likedPosts = append(s.likedPosts, postID)
	s.persist(ctx, kv.KeyLikedPosts, s.likedPosts)
}

// SetStats 覆盖用户统计
func (s *Store) SetStats(ctx context.Context, stats model.UserStats) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stats = stats
	s.persist(ctx, kv.KeyUserStats, s.stats)
}

// AppendComment 给帖子追加一条评论
func (s *Store) AppendComment(ctx context.Context, postID int64, c *model.Comment) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.comments.Append(postID, c)
	s.persist(ctx, kv.KeyComments, s.comments)
}

// PrependExpiryItem 新食品插到最前
func (s *Store) PrependExpiryItem(ctx context.Context, it *model.ExpiryItem) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = append([]*model.ExpiryItem{it}, s.items...)
	s.persist(ctx, kv.KeyExpiryItems, s.items)
}

// DeleteExpiryItem 删除临期食品并清空指向它的帖子引用。
// 两个集合在同一临界区内一起持久化，外界不会看到指向已删食品的引用。
func (s *Store) DeleteExpiryItem(ctx context.Context, id int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	found := false
	remaining := make([]*model.ExpiryItem, 0, len(s.items))
	for _, it := range s.items {
		if it.ID == id {
			found = true
			continue
		}
		remaining = append(remaining, it)
	}
	if !found {
		return false
	}
	s.items = remaining

	cleared := link.CascadeDelete(id, s.posts)

	s.persist(ctx, kv.KeyExpiryItems, s.items)
	s.persist(ctx, kv.KeyPosts, s.posts)

	util.Logger.Info("删除临期食品",
		util.Int64("item_id", id),
		zap.Int("cleared_links", cleared))
	return true
}
