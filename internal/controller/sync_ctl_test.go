package controller

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"orderpro_v1_202608/internal/task"
)

// 全任务停用的管理器：触发接口返回 ErrTaskDisabled，流仍须正常收尾
func setupSyncRouter() *gin.Engine {
	tm := task.NewTaskManager(&task.TaskManagerDeps{}, &task.TaskManagerConfig{})
	ctl := NewSyncController(tm)

	r := gin.New()
	sync := r.Group("/api/v1/sync")
	{
		sync.POST("/orders/:shop_id", ctl.StreamOrderSync)
		sync.POST("/products/:shop_id", ctl.StreamProductSync)
		sync.GET("/status", ctl.Status)
	}
	return r
}

func TestStreamOrderSync_DoneSentinel(t *testing.T) {
	r := setupSyncRouter()

	w := performJSON(r, http.MethodPost, "/api/v1/sync/orders/1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/x-ndjson", w.Header().Get("Content-Type"))

	// 每行一个 JSON 事件，最后一行固定为 DONE
	lines := strings.Split(strings.TrimRight(w.Body.String(), "\n"), "\n")
	require.NotEmpty(t, lines)
	assert.Equal(t, "DONE", lines[len(lines)-1])

	// 任务停用以 error 事件下发，而不是中断流
	var ev struct {
		Message   string `json:"message"`
		Type      string `json:"type"`
		Timestamp string `json:"timestamp"`
	}
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &ev))
	assert.Equal(t, "error", ev.Type)
	assert.NotEmpty(t, ev.Message)
	assert.NotEmpty(t, ev.Timestamp)
}

func TestStreamOrderSync_BadShopID(t *testing.T) {
	r := setupSyncRouter()

	w := performJSON(r, http.MethodPost, "/api/v1/sync/orders/abc", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSyncStatus(t *testing.T) {
	r := setupSyncRouter()

	w := performJSON(r, http.MethodGet, "/api/v1/sync/status", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data struct {
			Tasks map[string]bool `json:"tasks"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, map[string]bool{"order": false, "product": false, "cleanup": false}, resp.Data.Tasks)
}
