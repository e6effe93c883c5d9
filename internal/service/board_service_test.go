package service

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/IamGODofNEWWORLD/MeShare/internal/errors"
	"github.com/IamGODofNEWWORLD/MeShare/internal/kv"
	"github.com/IamGODofNEWWORLD/MeShare/internal/model"
	"github.com/IamGODofNEWWORLD/MeShare/internal/store"
	"github.com/IamGODofNEWWORLD/MeShare/internal/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	util.InitLogger("error", false)
	os.Exit(m.Run())
}

func newTestService() *BoardService {
	return NewBoardService(store.New(kv.NewMemory()))
}

func TestCreatePostOfferBumpsShared(t *testing.T) {
	ctx := context.Background()
	s := newTestService()

	post, err := s.CreatePost(ctx, CreatePostInput{
		Type:  "offer",
		Title: "カレーあります",
		Tags:  []string{" #食事 ", "食事", "#カレー"},
	})
	require.NoError(t, err)

	assert.Equal(t, model.PostStatusOpen, post.Status)
	assert.Equal(t, 0, post.Thanks)
	assert.Equal(t, DefaultUserName, post.UserName)
	// 标签规范化并去重
	assert.Equal(t, []string{"食事", "カレー"}, post.Tags)

	// offer 帖子计入 shared
	assert.Equal(t, 1, s.store.Stats().Shared)

	// request 帖子不计入
	_, err = s.CreatePost(ctx, CreatePostInput{Type: "request", Title: "砂糖ください"})
	require.NoError(t, err)
	assert.Equal(t, 1, s.store.Stats().Shared)
}

func TestCreatePostValidation(t *testing.T) {
	ctx := context.Background()
	s := newTestService()

	_, err := s.CreatePost(ctx, CreatePostInput{Type: "offer", Title: "   "})
	require.Error(t, err)
	assert.Equal(t, errors.ErrValidation, err.(*errors.AppError).Code)

	_, err = s.CreatePost(ctx, CreatePostInput{Type: "trade", Title: "x"})
	require.Error(t, err)

	_, err = s.CreatePost(ctx, CreatePostInput{Type: "offer", Title: "x", Deadline: "09/01"})
	require.Error(t, err)

	// 校验失败不产生任何状态变化
	assert.Empty(t, s.store.Posts())
	assert.Equal(t, 0, s.store.Stats().Shared)
}

func TestCreatePostWithLinkedItemMerges(t *testing.T) {
	ctx := context.Background()
	s := newTestService()

	item, err := s.CreateExpiryItem(ctx, CreateExpiryItemInput{
		Name:       "牛乳",
		ExpiryDate: "2026-09-01",
		Tags:       []string{"dairy"},
	})
	require.NoError(t, err)

	post, err := s.CreatePost(ctx, CreatePostInput{
		Type:           "offer",
		Title:          "牛乳あります",
		Tags:           []string{"share"},
		LinkedExpiryID: string(model.NewExpiryRef(item.ID)),
	})
	require.NoError(t, err)

	// 未填期限时继承食品的保质期，标签合并
	assert.Equal(t, "2026-09-01", post.Deadline)
	assert.Equal(t, []string{"share", "dairy"}, post.Tags)
	assert.True(t, post.LinkedExpiryID.Matches(item.ID))
}

// 引用是尽力而为的：指向不存在的食品时保留原值，只跳过字段合并
func TestCreatePostWithDanglingRef(t *testing.T) {
	ctx := context.Background()
	s := newTestService()

	post, err := s.CreatePost(ctx, CreatePostInput{
		Type:           "offer",
		Title:          "謎のシェア",
		LinkedExpiryID: "424242",
	})
	require.NoError(t, err)
	assert.Equal(t, model.ExpiryRef("424242"), post.LinkedExpiryID)
	assert.Empty(t, post.Deadline)
}

func TestCreateExpiryItemValidation(t *testing.T) {
	ctx := context.Background()
	s := newTestService()

	_, err := s.CreateExpiryItem(ctx, CreateExpiryItemInput{Name: " ", ExpiryDate: "2026-09-01"})
	require.Error(t, err)

	_, err = s.CreateExpiryItem(ctx, CreateExpiryItemInput{Name: "米", ExpiryDate: ""})
	require.Error(t, err)

	assert.Empty(t, s.store.ExpiryItems())
}

func TestToggleStatusBorrowedRule(t *testing.T) {
	ctx := context.Background()
	s := newTestService()

	post, err := s.CreatePost(ctx, CreatePostInput{Type: "offer", Title: "パンあります"})
	require.NoError(t, err)

	// open → resolved：borrowed 加一
	toggled, err := s.ToggleStatus(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, model.PostStatusResolved, toggled.Status)
	assert.Equal(t, 1, s.store.Stats().Borrowed)

	// resolved → open：不计数
	toggled, err = s.ToggleStatus(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, model.PostStatusOpen, toggled.Status)
	assert.Equal(t, 1, s.store.Stats().Borrowed)

	// 再次 open → resolved：再计一次（与原应用一致）
	_, err = s.ToggleStatus(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, s.store.Stats().Borrowed)
}

func TestToggleStatusRequestNotCounted(t *testing.T) {
	ctx := context.Background()
	s := newTestService()

	post, err := s.CreatePost(ctx, CreatePostInput{Type: "request", Title: "醤油ください"})
	require.NoError(t, err)

	_, err = s.ToggleStatus(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, s.store.Stats().Borrowed)
}

func TestThankIdempotent(t *testing.T) {
	ctx := context.Background()
	s := newTestService()

	post, err := s.CreatePost(ctx, CreatePostInput{Type: "offer", Title: "お菓子あります"})
	require.NoError(t, err)

	first, err := s.Thank(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, first.Thanks)

	// 同一帖子再次感谢是空操作
	second, err := s.Thank(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, second.Thanks)

	_, err = s.Thank(ctx, 999)
	require.Error(t, err)
	assert.Equal(t, errors.ErrPostNotFound, err.(*errors.AppError).Code)
}

func TestAddComment(t *testing.T) {
	ctx := context.Background()
	s := newTestService()

	post, err := s.CreatePost(ctx, CreatePostInput{Type: "offer", Title: "紅茶あります"})
	require.NoError(t, err)

	_, err = s.AddComment(ctx, post.ID, "いただきます", "")
	require.NoError(t, err)
	_, err = s.AddComment(ctx, post.ID, "  ", "")
	require.Error(t, err)

	comments, err := s.CommentsFor(post.ID)
	require.NoError(t, err)
	require.Len(t, comments, 1)
	assert.Equal(t, "いただきます", comments[0].Text)
	assert.Equal(t, DefaultUserName, comments[0].UserName)

	_, err = s.AddComment(ctx, 999, "x", "")
	require.Error(t, err)
}

func TestDeleteExpiryItemCascades(t *testing.T) {
	ctx := context.Background()
	s := newTestService()

	item, err := s.CreateExpiryItem(ctx, CreateExpiryItemInput{Name: "牛乳", ExpiryDate: "2026-09-01"})
	require.NoError(t, err)

	linked, err := s.CreatePost(ctx, CreatePostInput{
		Type: "offer", Title: "牛乳あります",
		LinkedExpiryID: string(model.NewExpiryRef(item.ID)),
	})
	require.NoError(t, err)
	unrelated, err := s.CreatePost(ctx, CreatePostInput{Type: "request", Title: "パンください"})
	require.NoError(t, err)

	require.NoError(t, s.DeleteExpiryItem(ctx, item.ID))

	assert.True(t, s.store.FindPost(linked.ID).LinkedExpiryID.IsZero())
	// 无关帖子不受影响
	assert.True(t, s.store.FindPost(unrelated.ID).LinkedExpiryID.IsZero())
	assert.Empty(t, s.store.ExpiryItems())

	err = s.DeleteExpiryItem(ctx, item.ID)
	require.Error(t, err)
	assert.Equal(t, errors.ErrExpiryItemNotFound, err.(*errors.AppError).Code)
}

func TestDraftFromExpiryItem(t *testing.T) {
	ctx := context.Background()
	s := newTestService()

	tomorrow := time.Now().AddDate(0, 0, 1).Format(util.DateLayout)
	item, err := s.CreateExpiryItem(ctx, CreateExpiryItemInput{
		Name:       "milk",
		ExpiryDate: tomorrow,
		Quantity:   "1L",
		Tags:       []string{"dairy"},
	})
	require.NoError(t, err)

	draft, err := s.DraftFromExpiryItem(item.ID)
	require.NoError(t, err)
	assert.Contains(t, draft.Tags, "dairy")
	assert.Contains(t, draft.Tags, "milk")
	assert.Equal(t, tomorrow, draft.Deadline)
	assert.True(t, draft.LinkedExpiryID.Matches(item.ID))

	// 草稿不落库
	assert.Empty(t, s.store.Posts())

	_, err = s.DraftFromExpiryItem(999)
	require.Error(t, err)
}

func TestBoardFilterProjection(t *testing.T) {
	ctx := context.Background()
	s := newTestService()

	_, err := s.CreatePost(ctx, CreatePostInput{Type: "offer", Title: "a", Tags: []string{"dairy"}})
	require.NoError(t, err)
	_, err = s.CreatePost(ctx, CreatePostInput{Type: "offer", Title: "b", Tags: []string{"fruit"}})
	require.NoError(t, err)

	all := s.Board("")
	assert.Len(t, all.Posts, 2)
	assert.Equal(t, "ALL", all.ActiveTag)
	// 新帖在前
	assert.Equal(t, "b", all.Posts[0].Title)

	dairy := s.Board("dairy")
	require.Len(t, dairy.Posts, 1)
	assert.Equal(t, "a", dairy.Posts[0].Title)
	assert.ElementsMatch(t, []string{"dairy", "fruit"}, dairy.Tags)
}

func TestStatsOverview(t *testing.T) {
	ctx := context.Background()
	s := newTestService()

	p1, err := s.CreatePost(ctx, CreatePostInput{Type: "offer", Title: "a"})
	require.NoError(t, err)
	_, err = s.CreatePost(ctx, CreatePostInput{Type: "request", Title: "b"})
	require.NoError(t, err)

	_, err = s.Thank(ctx, p1.ID)
	require.NoError(t, err)
	_, err = s.AddComment(ctx, p1.ID, "コメント", "")
	require.NoError(t, err)

	stats := s.StatsOverview(5)
	assert.Equal(t, 1, stats.UserStats.Shared)
	assert.Equal(t, 2, stats.Aggregate.TotalPosts)
	assert.Equal(t, 1, stats.Aggregate.TotalThanks)
	assert.Equal(t, 1, stats.Aggregate.TotalComments)
	require.NotEmpty(t, stats.Leaderboard)
	assert.Equal(t, p1.ID, stats.Leaderboard[0].ID)
}
