package service

import (
	"context"
	"strings"
	"time"

	"github.com/IamGODofNEWWORLD/MeShare/internal/errors"
	"github.com/IamGODofNEWWORLD/MeShare/internal/link"
	"github.com/IamGODofNEWWORLD/MeShare/internal/model"
	"github.com/IamGODofNEWWORLD/MeShare/internal/store"
	"github.com/IamGODofNEWWORLD/MeShare/internal/tags"
	"github.com/IamGODofNEWWORLD/MeShare/internal/util"
	"github.com/IamGODofNEWWORLD/MeShare/internal/view"
)

// DefaultUserName 本地用户的显示名（单用户应用，无账号体系）
const DefaultUserName = "あなた"

// BoardService 实现掲示板的全部操作，状态只通过 store 修改
type BoardService struct {
	store *store.Store
}

func NewBoardService(s *store.Store) *BoardService {
	return &BoardService{store: s}
}

// CreatePostInput 发帖表单
type CreatePostInput struct {
	Type           string   `json:"type" binding:"required,oneof=offer request"`
	Title          string   `json:"title" binding:"required"`
	Description    string   `json:"description"`
	Deadline       string   `json:"deadline" binding:"omitempty,datestr"`
	Tags           []string `json:"tags"`
	LinkedExpiryID string   `json:"linkedExpiryId"`
	UserName       string   `json:"userName"`
}

// CreatePost 创建帖子。关联了临期食品时继承期限、合并标签；
// offer 帖子计入 shared 统计。
func (s *BoardService) CreatePost(ctx context.Context, in CreatePostInput) (*model.Post, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, errors.New(errors.ErrValidation, "标题不能为空")
	}

	postType := model.PostType(in.Type)
	if postType != model.PostTypeOffer && postType != model.PostTypeRequest {
		return nil, errors.New(errors.ErrValidation, "未知的帖子类型")
	}

	deadline := strings.TrimSpace(in.Deadline)
	if deadline != "" {
		if _, err := time.Parse(util.DateLayout, deadline); err != nil {
			return nil, errors.Wrap(errors.ErrValidation, "期限日期格式不正确", err)
		}
	}

	var normalized []string
	for _, raw := range in.Tags {
		normalized = tags.Append(normalized, raw)
	}

	userName := strings.TrimSpace(in.UserName)
	if userName == "" {
		userName = DefaultUserName
	}

	post := &model.Post{
		ID:             s.store.NextID(),
		Type:           postType,
		Title:          title,
		Description:    in.Description,
		Deadline:       deadline,
		Tags:           normalized,
		LinkedExpiryID: model.ParseExpiryRef(in.LinkedExpiryID),
		Status:         model.PostStatusOpen,
		Thanks:         0,
		CreatedAt:      time.Now(),
		UserName:       userName,
	}

	// 引用是尽力而为的：解析失败时保留引用原值，仅跳过字段合并
	if linked := link.Resolve(post.LinkedExpiryID, s.store.ExpiryItems()); linked != nil {
		link.MergeOnCreate(post, linked)
	}

	s.store.PrependPost(ctx, post)

	if post.Type == model.PostTypeOffer {
		stats := s.store.Stats()
		stats.Shared++
		s.store.SetStats(ctx, stats)
	}

	return post, nil
}

// CreateExpiryItemInput 临期食品表单
type CreateExpiryItemInput struct {
	Name       string   `json:"name" binding:"required"`
	ExpiryDate string   `json:"expiryDate" binding:"required,datestr"`
	Quantity   string   `json:"quantity"`
	Tags       []string `json:"tags"`
}

// CreateExpiryItem 登记一件临期食品
func (s *BoardService) CreateExpiryItem(ctx context.Context, in CreateExpiryItemInput) (*model.ExpiryItem, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, errors.New(errors.ErrValidation, "食品名不能为空")
	}
	if _, err := time.Parse(util.DateLayout, in.ExpiryDate); err != nil {
		return nil, errors.Wrap(errors.ErrValidation, "保质期日期格式不正确", err)
	}

	var normalized []string
	for _, raw := range in.Tags {
		normalized = tags.Append(normalized, raw)
	}

	item := &model.ExpiryItem{
		ID:         s.store.NextID(),
		Name:       name,
		ExpiryDate: in.ExpiryDate,
		Quantity:   in.Quantity,
		Tags:       normalized,
		CreatedAt:  time.Now(),
	}

	s.store.PrependExpiryItem(ctx, item)
	return item, nil
}

// ToggleStatus 在 open 和 resolved 之间切换帖子状态。
// borrowed 统计只在 offer 帖子从 open 变为 resolved 的瞬间加一，
// 判断必须基于切换前的状态。
func (s *BoardService) ToggleStatus(ctx context.Context, postID int64) (*model.Post, error) {
	before := s.store.FindPost(postID)
	if before == nil {
		return nil, errors.New(errors.ErrPostNotFound, "帖子不存在")
	}

	wasOpenOffer := before.Type == model.PostTypeOffer && before.Status == model.PostStatusOpen

	next := model.PostStatusResolved
	if before.Status == model.PostStatusResolved {
		next = model.PostStatusOpen
	}
	post := s.store.SetPostStatus(ctx, postID, next)

	if wasOpenOffer {
		stats := s.store.Stats()
		stats.Borrowed++
		s.store.SetStats(ctx, stats)
	}

	return post, nil
}

// Thank 给帖子加一次感谢。每个帖子只记一次，重复调用是空操作。
func (s *BoardService) Thank(ctx context.Context, postID int64) (*model.Post, error) {
	post := s.store.FindPost(postID)
	if post == nil {
		return nil, errors.New(errors.ErrPostNotFound, "帖子不存在")
	}
	if s.store.HasLiked(postID) {
		return post, nil
	}

	post = s.store.IncrementThanks(ctx, postID)
	s.store.MarkLiked(ctx, postID)
	return post, nil
}

// AddComment 给帖子追加一条评论（评论只增不删）
func (s *BoardService) AddComment(ctx context.Context, postID int64, text, userName string) (*model.Comment, error) {
	if s.store.FindPost(postID) == nil {
		return nil, errors.New(errors.ErrPostNotFound, "帖子不存在")
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, errors.New(errors.ErrValidation, "评论内容不能为空")
	}
	if strings.TrimSpace(userName) == "" {
		userName = DefaultUserName
	}

	comment := &model.Comment{
		ID:        s.store.NextID(),
		Text:      text,
		UserName:  userName,
		CreatedAt: time.Now(),
	}
	s.store.AppendComment(ctx, postID, comment)
	return comment, nil
}

// DeleteExpiryItem 删除临期食品，并把引用它的帖子的关联字段清空
func (s *BoardService) DeleteExpiryItem(ctx context.Context, itemID int64) error {
	if !s.store.DeleteExpiryItem(ctx, itemID) {
		return errors.New(errors.ErrExpiryItemNotFound, "临期食品不存在")
	}
	return nil
}

// DraftFromExpiryItem 根据临期食品生成分享帖草稿，不产生任何状态变化
func (s *BoardService) DraftFromExpiryItem(itemID int64) (*model.Post, error) {
	item := s.store.FindExpiryItem(itemID)
	if item == nil {
		return nil, errors.New(errors.ErrExpiryItemNotFound, "临期食品不存在")
	}
	return link.DraftFromExpiryItem(item), nil
}

// BoardView 掲示板页投影
type BoardView struct {
	Posts     []*model.Post `json:"posts"`
	Tags      []string      `json:"tags"`
	ActiveTag string        `json:"activeTag"`
}

// Board 返回按标签筛选后的掲示板投影。tag 为空或 "ALL" 时不筛选。
func (s *BoardService) Board(tag string) BoardView {
	if tag == "" {
		tag = tags.AllTag
	}
	posts := s.store.Posts()
	return BoardView{
		Posts:     tags.FilterByTag(posts, tag),
		Tags:      tags.All(posts),
		ActiveTag: tag,
	}
}

// CommentsFor 返回帖子的评论列表
func (s *BoardService) CommentsFor(postID int64) ([]*model.Comment, error) {
	if s.store.FindPost(postID) == nil {
		return nil, errors.New(errors.ErrPostNotFound, "帖子不存在")
	}
	return s.store.CommentsFor(postID), nil
}

// ExpiryOverview 返回临期页投影（按保质期升序，带剩余天数和紧急程度）
func (s *BoardService) ExpiryOverview(today time.Time) []*view.ExpiryOverview {
	return view.BuildExpiryOverview(s.store.ExpiryItems(), s.store.Posts(), today)
}

// StatsView 实绩页投影
type StatsView struct {
	UserStats   model.UserStats  `json:"userStats"`
	Aggregate   model.BoardStats `json:"aggregate"`
	Leaderboard []*model.Post    `json:"leaderboard"`
}

// StatsOverview 返回实绩页投影，排行取感谢数最高的前 n 个帖子
func (s *BoardService) StatsOverview(n int) StatsView {
	posts := s.store.Posts()
	return StatsView{
		UserStats:   s.store.Stats(),
		Aggregate:   view.Aggregate(posts, s.store.Comments()),
		Leaderboard: view.Leaderboard(posts, n),
	}
}
