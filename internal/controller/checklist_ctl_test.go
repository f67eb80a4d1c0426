package controller

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"orderpro_v1_202608/internal/model"
	"orderpro_v1_202608/internal/repository"
	"orderpro_v1_202608/internal/service"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// ==================== 测试辅助 ====================

func setupChecklistCtlTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err, "连接测试数据库失败")
	require.NoError(t, db.AutoMigrate(&model.Order{}, &model.LineItem{}, &model.CheckboxState{}))
	return db
}

func setupChecklistRouter(db *gorm.DB) *gin.Engine {
	svc := service.NewChecklistService(
		repository.NewOrderRepository(db),
		repository.NewCheckboxRepository(db),
		repository.NewCheckboxCache(nil),
	)
	ctl := NewChecklistController(svc)

	r := gin.New()
	orders := r.Group("/api/v1/orders")
	{
		orders.GET("/:id/checklist", ctl.GetChecklist)
		orders.POST("/:id/checklist/init", ctl.Initialize)
		orders.POST("/:id/checklist/toggle", ctl.Toggle)
		orders.POST("/:id/checklist/recalculate", ctl.PurgeRecalculate)
		orders.GET("/:id/progress", ctl.GetProgress)
	}
	return r
}

func seedChecklistCtlOrder(t *testing.T, db *gorm.DB) {
	created := time.Date(2026, 8, 20, 10, 0, 0, 0, time.UTC)
	require.NoError(t, db.Create(&model.Order{
		ID: 1, ShopifyOrderID: 900001, ShopID: 1, Name: "#1001",
		ShopifyCreatedAt: &created,
		Items: []model.LineItem{
			{
				ShopifyLineItemID: 800001, SKU: "CREATOR",
				VariantTitle: "Terra Cotta / M",
				Quantity:     2, RefundableQuantity: 2,
			},
		},
	}).Error)
}

// closeNotifyRecorder 给 ResponseRecorder 补上 gin Stream 依赖的 CloseNotify
type closeNotifyRecorder struct {
	*httptest.ResponseRecorder
	closed chan bool
}

func (c *closeNotifyRecorder) CloseNotify() <-chan bool { return c.closed }

func performJSON(r http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}
	req, _ := http.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(&closeNotifyRecorder{w, make(chan bool, 1)}, req)
	return w
}

// ==================== 清单接口 ====================

func TestChecklistFlow(t *testing.T) {
	db := setupChecklistCtlTestDB(t)
	r := setupChecklistRouter(db)
	seedChecklistCtlOrder(t, db)

	// 1. 初始化骨架
	w := performJSON(r, http.MethodPost, "/api/v1/orders/1/checklist/init?shop_id=1", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	// 2. 读清单
	w = performJSON(r, http.MethodGet, "/api/v1/orders/1/checklist?shop_id=1", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var listResp struct {
		Data struct {
			Checked int `json:"checked"`
			Total   int `json:"total"`
			Units   []struct {
				VariantKey string `json:"variant_key"`
				Checked    bool   `json:"checked"`
			} `json:"units"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &listResp))
	assert.Equal(t, 2, listResp.Data.Total)
	assert.Equal(t, 0, listResp.Data.Checked)
	require.Len(t, listResp.Data.Units, 2)

	// 3. 勾选第一件
	key := listResp.Data.Units[0].VariantKey
	w = performJSON(r, http.MethodPost, "/api/v1/orders/1/checklist/toggle?shop_id=1",
		gin.H{"variant_key": key, "checked": true})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	// 4. 进度徽章 1/2
	w = performJSON(r, http.MethodGet, "/api/v1/orders/1/progress?shop_id=1&by_sku=true", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var progressResp struct {
		Data struct {
			Checked int `json:"checked"`
			Total   int `json:"total"`
			BySKU   []struct {
				SKU     string `json:"sku"`
				Checked int    `json:"checked"`
				Total   int    `json:"total"`
			} `json:"by_sku"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &progressResp))
	assert.Equal(t, 1, progressResp.Data.Checked)
	assert.Equal(t, 2, progressResp.Data.Total)
	require.Len(t, progressResp.Data.BySKU, 1)
	assert.Equal(t, "CREATOR", progressResp.Data.BySKU[0].SKU)

	// 5. 清理重建保留勾选数量
	w = performJSON(r, http.MethodPost, "/api/v1/orders/1/checklist/recalculate?shop_id=1", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var rebuildResp struct {
		Data struct {
			Checked int `json:"checked"`
			Total   int `json:"total"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &rebuildResp))
	assert.Equal(t, 1, rebuildResp.Data.Checked)
	assert.Equal(t, 2, rebuildResp.Data.Total)
}

func TestChecklistToggle_StaleKey(t *testing.T) {
	db := setupChecklistCtlTestDB(t)
	r := setupChecklistRouter(db)
	seedChecklistCtlOrder(t, db)

	w := performJSON(r, http.MethodPost, "/api/v1/orders/1/checklist/toggle?shop_id=1",
		gin.H{"variant_key": "1--HOODIE--Noir--XL--9--0", "checked": true})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestChecklist_MissingShopID(t *testing.T) {
	db := setupChecklistCtlTestDB(t)
	r := setupChecklistRouter(db)
	seedChecklistCtlOrder(t, db)

	w := performJSON(r, http.MethodGet, "/api/v1/orders/1/checklist", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestChecklist_BadOrderID(t *testing.T) {
	db := setupChecklistCtlTestDB(t)
	r := setupChecklistRouter(db)

	for _, path := range []string{
		"/api/v1/orders/abc/checklist?shop_id=1",
		fmt.Sprintf("/api/v1/orders/%d/checklist?shop_id=1", 0),
	} {
		w := performJSON(r, http.MethodGet, path, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code, path)
	}
}

func TestChecklist_CrossShopRejected(t *testing.T) {
	db := setupChecklistCtlTestDB(t)
	r := setupChecklistRouter(db)
	seedChecklistCtlOrder(t, db)

	w := performJSON(r, http.MethodGet, "/api/v1/orders/1/checklist?shop_id=99", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
