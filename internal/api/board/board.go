package board

import (
	"net/http"
	"strconv"
	"time"

	"github.com/IamGODofNEWWORLD/MeShare/internal/errors"
	"github.com/IamGODofNEWWORLD/MeShare/internal/service"
	"github.com/IamGODofNEWWORLD/MeShare/internal/util"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// 排行榜默认长度：みんな页显示 5 条，实绩页显示 10 条
const defaultLeaderboardSize = 5

type BoardHandler struct {
	boardService *service.BoardService
}

func NewBoardHandler(boardService *service.BoardService) *BoardHandler {
	return &BoardHandler{boardService: boardService}
}

// GetBoard 返回按标签筛选的掲示板（帖子 + 标签词表）
func (h *BoardHandler) GetBoard(c *gin.Context) {
	tag := c.Query("tag")
	c.JSON(http.StatusOK, gin.H{
		"code": 200,
		"data": h.boardService.Board(tag),
	})
}

// CreatePost 创建帖子
func (h *BoardHandler) CreatePost(c *gin.Context) {
	var in service.CreatePostInput
	if err := c.ShouldBindJSON(&in); err != nil {
		util.Logger.Warn("无效的发帖数据", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "无效的发帖数据"})
		return
	}

	post, err := h.boardService.CreatePost(c.Request.Context(), in)
	if err != nil {
		errors.HandleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"code": 201,
		"data": post,
	})
}

// ToggleStatus 在 open / resolved 之间切换帖子状态
func (h *BoardHandler) ToggleStatus(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "无效的帖子ID"})
		return
	}

	post, err := h.boardService.ToggleStatus(c.Request.Context(), id)
	if err != nil {
		errors.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code": 200,
		"data": post,
	})
}

// ThankPost 给帖子加一次感谢（每个帖子只记一次，重复请求幂等）
func (h *BoardHandler) ThankPost(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "无效的帖子ID"})
		return
	}

	post, err := h.boardService.Thank(c.Request.Context(), id)
	if err != nil {
		errors.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code": 200,
		"data": post,
	})
}

// ListComments 返回帖子的评论（插入顺序）
func (h *BoardHandler) ListComments(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "无效的帖子ID"})
		return
	}

	comments, err := h.boardService.CommentsFor(id)
	if err != nil {
		errors.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code": 200,
		"data": comments,
	})
}

type createCommentRequest struct {
	Text     string `json:"text" binding:"required"`
	UserName string `json:"userName"`
}

// CreateComment 给帖子追加一条评论
func (h *BoardHandler) CreateComment(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "无效的帖子ID"})
		return
	}

	var req createCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "评论内容不能为空"})
		return
	}

	comment, err := h.boardService.AddComment(c.Request.Context(), id, req.Text, req.UserName)
	if err != nil {
		errors.HandleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"code": 201,
		"data": comment,
	})
}

// ListExpiryItems 返回临期页投影（按保质期升序，带剩余天数和紧急程度）
func (h *BoardHandler) ListExpiryItems(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"code": 200,
		"data": h.boardService.ExpiryOverview(time.Now()),
	})
}

// CreateExpiryItem 登记一件临期食品
func (h *BoardHandler) CreateExpiryItem(c *gin.Context) {
	var in service.CreateExpiryItemInput
	if err := c.ShouldBindJSON(&in); err != nil {
		util.Logger.Warn("无效的临期食品数据", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "无效的临期食品数据"})
		return
	}

	item, err := h.boardService.CreateExpiryItem(c.Request.Context(), in)
	if err != nil {
		errors.HandleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"code": 201,
		"data": item,
	})
}

// DeleteExpiryItem 删除临期食品并清理帖子里指向它的引用
func (h *BoardHandler) DeleteExpiryItem(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "无效的食品ID"})
		return
	}

	if err := h.boardService.DeleteExpiryItem(c.Request.Context(), id); err != nil {
		errors.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "删除成功"})
}

// DraftFromExpiryItem 返回由临期食品预填的分享帖草稿（无副作用）
func (h *BoardHandler) DraftFromExpiryItem(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "无效的食品ID"})
		return
	}

	draft, err := h.boardService.DraftFromExpiryItem(id)
	if err != nil {
		errors.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code": 200,
		"data": draft,
	})
}

// GetStats 返回实绩页投影（用户统计 + 聚合统计 + 感谢排行）
func (h *BoardHandler) GetStats(c *gin.Context) {
	top, err := strconv.Atoi(c.DefaultQuery("top", strconv.Itoa(defaultLeaderboardSize)))
	if err != nil || top <= 0 {
		top = defaultLeaderboardSize
	}

	c.JSON(http.StatusOK, gin.H{
		"code": 200,
		"data": h.boardService.StatsOverview(top),
	})
}
