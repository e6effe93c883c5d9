package board

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/IamGODofNEWWORLD/MeShare/internal/kv"
	"github.com/IamGODofNEWWORLD/MeShare/internal/model"
	"github.com/IamGODofNEWWORLD/MeShare/internal/service"
	"github.com/IamGODofNEWWORLD/MeShare/internal/store"
	"github.com/IamGODofNEWWORLD/MeShare/internal/util"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	util.InitLogger("error", false)
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterValidation("datestr", util.ValidateDateString)
	}
	os.Exit(m.Run())
}

func newTestRouter() *gin.Engine {
	boardStore := store.New(kv.NewMemory())
	handler := NewBoardHandler(service.NewBoardService(boardStore))

	r := gin.New()
	api := r.Group("/api")
	{
		api.GET("/board", handler.GetBoard)
		api.POST("/posts", handler.CreatePost)
		api.POST("/posts/:id/status", handler.ToggleStatus)
		api.POST("/posts/:id/thanks", handler.ThankPost)
		api.GET("/posts/:id/comments", handler.ListComments)
		api.POST("/posts/:id/comments", handler.CreateComment)
		api.GET("/expiry-items", handler.ListExpiryItems)
		api.POST("/expiry-items", handler.CreateExpiryItem)
		api.DELETE("/expiry-items/:id", handler.DeleteExpiryItem)
		api.GET("/expiry-items/:id/draft", handler.DraftFromExpiryItem)
		api.GET("/stats", handler.GetStats)
	}
	return r
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, path, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func dataOf(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var resp struct {
		Data map[string]interface{} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.Data
}

func TestCreatePostAndBoard(t *testing.T) {
	r := newTestRouter()

	w := doJSON(t, r, "POST", "/api/posts", gin.H{
		"type":  "offer",
		"title": "カレーあります",
		"tags":  []string{"#食事"},
	})
	assert.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(t, r, "GET", "/api/board", nil)
	require.Equal(t, http.StatusOK, w.Code)
	data := dataOf(t, w)
	posts := data["posts"].([]interface{})
	require.Len(t, posts, 1)
	assert.Equal(t, "ALL", data["activeTag"])

	// 按标签筛选
	w = doJSON(t, r, "GET", "/api/board?tag=食事", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, dataOf(t, w)["posts"].([]interface{}), 1)

	w = doJSON(t, r, "GET", "/api/board?tag=果物", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, dataOf(t, w)["posts"].([]interface{}), 0)
}

func TestCreatePostRejectsInvalidBody(t *testing.T) {
	r := newTestRouter()

	// 标题缺失
	w := doJSON(t, r, "POST", "/api/posts", gin.H{"type": "offer"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// 未知类型
	w = doJSON(t, r, "POST", "/api/posts", gin.H{"type": "trade", "title": "x"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// 期限格式错误
	w = doJSON(t, r, "POST", "/api/posts", gin.H{"type": "offer", "title": "x", "deadline": "01/09/2026"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestThanksIdempotentOverHTTP(t *testing.T) {
	r := newTestRouter()

	w := doJSON(t, r, "POST", "/api/posts", gin.H{"type": "offer", "title": "お菓子あります"})
	require.Equal(t, http.StatusCreated, w.Code)
	id := int64(dataOf(t, w)["id"].(float64))

	path := fmt.Sprintf("/api/posts/%d/thanks", id)
	w = doJSON(t, r, "POST", path, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(1), dataOf(t, w)["thanks"])

	// 重复感谢不再加一
	w = doJSON(t, r, "POST", path, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(1), dataOf(t, w)["thanks"])

	w = doJSON(t, r, "POST", "/api/posts/999/thanks", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestToggleStatusOverHTTP(t *testing.T) {
	r := newTestRouter()

	w := doJSON(t, r, "POST", "/api/posts", gin.H{"type": "offer", "title": "パンあります"})
	require.Equal(t, http.StatusCreated, w.Code)
	id := int64(dataOf(t, w)["id"].(float64))

	w = doJSON(t, r, "POST", fmt.Sprintf("/api/posts/%d/status", id), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, string(model.PostStatusResolved), dataOf(t, w)["status"])

	// borrowed 只在 open → resolved 时计数
	w = doJSON(t, r, "GET", "/api/stats", nil)
	require.Equal(t, http.StatusOK, w.Code)
	userStats := dataOf(t, w)["userStats"].(map[string]interface{})
	assert.Equal(t, float64(1), userStats["borrowed"])
}

func TestCommentsOverHTTP(t *testing.T) {
	r := newTestRouter()

	w := doJSON(t, r, "POST", "/api/posts", gin.H{"type": "offer", "title": "紅茶あります"})
	require.Equal(t, http.StatusCreated, w.Code)
	id := int64(dataOf(t, w)["id"].(float64))

	path := fmt.Sprintf("/api/posts/%d/comments", id)
	w = doJSON(t, r, "POST", path, gin.H{"text": "いただきます"})
	assert.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(t, r, "POST", path, gin.H{"text": ""})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, r, "GET", path, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Data []map[string]interface{} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Data, 1)
	assert.Equal(t, "いただきます", resp.Data[0]["text"])
}

func TestExpiryItemLifecycleOverHTTP(t *testing.T) {
	r := newTestRouter()

	w := doJSON(t, r, "POST", "/api/expiry-items", gin.H{
		"name":       "牛乳",
		"expiryDate": "2026-09-01",
		"quantity":   "1L",
		"tags":       []string{"dairy"},
	})
	require.Equal(t, http.StatusCreated, w.Code)
	itemID := int64(dataOf(t, w)["id"].(float64))

	// 保质期缺失被拒绝
	w = doJSON(t, r, "POST", "/api/expiry-items", gin.H{"name": "パン"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// 草稿预填且无副作用
	w = doJSON(t, r, "GET", fmt.Sprintf("/api/expiry-items/%d/draft", itemID), nil)
	require.Equal(t, http.StatusOK, w.Code)
	draft := dataOf(t, w)
	assert.Equal(t, "牛乳あります", draft["title"])
	assert.Equal(t, "2026-09-01", draft["deadline"])

	w = doJSON(t, r, "GET", "/api/board", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, dataOf(t, w)["posts"].([]interface{}), 0)

	// 删除后列表为空
	w = doJSON(t, r, "DELETE", fmt.Sprintf("/api/expiry-items/%d", itemID), nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, r, "DELETE", fmt.Sprintf("/api/expiry-items/%d", itemID), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
