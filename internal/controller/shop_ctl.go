package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"orderpro_v1_202608/internal/api/dto"
	"orderpro_v1_202608/internal/model"
	"orderpro_v1_202608/internal/repository"
	"orderpro_v1_202608/internal/service"
)

// ShopController 店铺控制器
type ShopController struct {
	svc *service.ShopService
}

// NewShopController 创建店铺控制器
func NewShopController(svc *service.ShopService) *ShopController {
	return &ShopController{svc: svc}
}

// ==================== 店铺 CRUD ====================

// Create 创建店铺
// POST /api/v1/shops
func (c *ShopController) Create(ctx *gin.Context) {
	var req dto.CreateShopRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"code": 400, "message": err.Error()})
		return
	}

	shop := &model.Shop{
		Name:        req.Name,
		Domain:      req.Domain,
		AccessToken: req.AccessToken,
		APIVersion:  req.APIVersion,
	}
	if req.Currency != "" {
		shop.CurrencyCode = req.Currency
	}

	if err := c.svc.Create(ctx, shop); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"code": 400, "message": err.Error()})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"code": 200, "message": "店铺已创建", "data": buildShopVO(shop)})
}

// List 店铺列表
// GET /api/v1/shops
func (c *ShopController) List(ctx *gin.Context) {
	var req dto.ListShopsRequest
	if err := ctx.ShouldBindQuery(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"code": 400, "message": err.Error()})
		return
	}

	shops, total, err := c.svc.List(ctx, repository.ShopFilter{
		Status:   req.Status,
		Keyword:  req.Keyword,
		Page:     req.Page,
		PageSize: req.PageSize,
	})
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"code": 500, "message": err.Error()})
		return
	}

	list := make([]dto.ShopVO, len(shops))
	for i := range shops {
		list[i] = buildShopVO(&shops[i])
	}

	ctx.JSON(http.StatusOK, gin.H{
		"code": 200,
		"data": gin.H{"total": total, "list": list},
	})
}

// GetByID 店铺详情
// GET /api/v1/shops/:id
func (c *ShopController) GetByID(ctx *gin.Context) {
	id := parseID(ctx, "id")
	if id == 0 {
		return
	}

	shop, err := c.svc.Get(ctx, id)
	if err != nil {
		ctx.JSON(http.StatusNotFound, gin.H{"code": 404, "message": err.Error()})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"code": 200, "data": buildShopVO(shop)})
}

// UpdateSettings 更新店铺设置
// PATCH /api/v1/shops/:id
func (c *ShopController) UpdateSettings(ctx *gin.Context) {
	id := parseID(ctx, "id")
	if id == 0 {
		return
	}

	var req service.SettingsUpdate
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"code": 400, "message": err.Error()})
		return
	}

	shop, err := c.svc.UpdateSettings(ctx, id, &req)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"code": 400, "message": err.Error()})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"code": 200, "message": "设置已更新", "data": buildShopVO(shop)})
}

// Delete 删除店铺
// DELETE /api/v1/shops/:id
func (c *ShopController) Delete(ctx *gin.Context) {
	id := parseID(ctx, "id")
	if id == 0 {
		return
	}

	if err := c.svc.Delete(ctx, id); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"code": 400, "message": err.Error()})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"code": 200, "message": "店铺已删除"})
}

// ==================== 连通性与地点 ====================

// TestConnection 连通性检查
// POST /api/v1/shops/:id/test
func (c *ShopController) TestConnection(ctx *gin.Context) {
	id := parseID(ctx, "id")
	if id == 0 {
		return
	}

	if err := c.svc.TestConnection(ctx, id); err != nil {
		ctx.JSON(http.StatusBadGateway, gin.H{"code": 502, "message": err.Error()})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"code": 200, "message": "连接正常"})
}

// SyncLocations 同步发货地点
// POST /api/v1/shops/:id/locations/sync
func (c *ShopController) SyncLocations(ctx *gin.Context) {
	id := parseID(ctx, "id")
	if id == 0 {
		return
	}

	locations, err := c.svc.SyncLocations(ctx, id)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"code": 400, "message": err.Error()})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"code":    200,
		"message": "发货地点已同步",
		"data":    c.buildLocationVOs(ctx, id, locations),
	})
}

// ListLocations 发货地点列表
// GET /api/v1/shops/:id/locations
func (c *ShopController) ListLocations(ctx *gin.Context) {
	id := parseID(ctx, "id")
	if id == 0 {
		return
	}

	locations, err := c.svc.ListLocations(ctx, id)
	if err != nil {
		ctx.JSON(http.StatusNotFound, gin.H{"code": 404, "message": err.Error()})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"code": 200, "data": c.buildLocationVOs(ctx, id, locations)})
}

// ==================== 视图构建 ====================

func buildShopVO(shop *model.Shop) dto.ShopVO {
	return dto.ShopVO{
		ID:                shop.ID,
		Name:              shop.Name,
		Domain:            shop.Domain,
		APIVersion:        shop.APIVersion,
		CurrencyCode:      shop.CurrencyCode,
		HandlingFeeCents:  shop.HandlingFeeCents,
		DefaultLocationID: shop.DefaultLocationID,
		Status:            shop.Status,
		HasToken:          shop.AccessToken != "",
		LastOrderSyncAt:   shop.LastOrderSyncAt,
		LastProductSyncAt: shop.LastProductSyncAt,
		CreatedAt:         shop.CreatedAt,
	}
}

func (c *ShopController) buildLocationVOs(ctx *gin.Context, shopID int64, locations []model.Location) []dto.LocationVO {
	defaultID := int64(0)
	if shop, err := c.svc.Get(ctx, shopID); err == nil {
		defaultID = shop.DefaultLocationID
	}

	vos := make([]dto.LocationVO, len(locations))
	for i := range locations {
		vos[i] = dto.LocationVO{
			ID:                locations[i].ID,
			ShopifyLocationID: locations[i].ShopifyLocationID,
			Name:              locations[i].Name,
			Active:            locations[i].Active,
			IsDefault:         locations[i].ID == defaultID,
		}
	}
	return vos
}
