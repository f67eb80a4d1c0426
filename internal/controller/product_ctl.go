package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"orderpro_v1_202608/internal/api/dto"
	"orderpro_v1_202608/internal/repository"
	"orderpro_v1_202608/internal/service"
)

// ProductController 商品控制器
type ProductController struct {
	svc *service.ProductService
}

// NewProductController 创建商品控制器
func NewProductController(svc *service.ProductService) *ProductController {
	return &ProductController{svc: svc}
}

// ==================== 商品查询 ====================

// List 商品列表（含变体）
// GET /api/v1/products
func (c *ProductController) List(ctx *gin.Context) {
	var req dto.ListProductsRequest
	if err := ctx.ShouldBindQuery(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"code": 400, "message": err.Error()})
		return
	}

	products, total, err := c.svc.List(ctx, repository.ProductFilter{
		ShopID:   req.ShopID,
		Status:   req.Status,
		Keyword:  req.Keyword,
		Page:     req.Page,
		PageSize: req.PageSize,
	})
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"code": 500, "message": err.Error()})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"code": 200,
		"data": gin.H{"total": total, "list": products},
	})
}

// GetByID 商品详情（含变体与元字段）
// GET /api/v1/products/:id
func (c *ProductController) GetByID(ctx *gin.Context) {
	id := parseID(ctx, "id")
	if id == 0 {
		return
	}
	shopID := shopIDQuery(ctx)
	if shopID == 0 {
		return
	}

	product, err := c.svc.GetDetail(ctx, shopID, id)
	if err != nil {
		ctx.JSON(http.StatusNotFound, gin.H{"code": 404, "message": err.Error()})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"code": 200, "data": product})
}

// ==================== 成本回写 ====================

// PushCosts 批量回写库存成本
// POST /api/v1/products/costs/push?shop_id=1
func (c *ProductController) PushCosts(ctx *gin.Context) {
	shopID := shopIDQuery(ctx)
	if shopID == 0 {
		return
	}

	var req dto.PushCostsRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"code": 400, "message": err.Error()})
		return
	}

	updates := make([]service.CostUpdate, len(req.Updates))
	for i, u := range req.Updates {
		updates[i] = service.CostUpdate{VariantID: u.VariantID, CostCents: u.CostCents}
	}

	result, err := c.svc.PushInventoryCosts(ctx, shopID, updates, nil)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"code": 400, "message": err.Error()})
		return
	}

	resp := dto.SyncResultResponse{
		ShopID:    shopID,
		Succeeded: len(result.Succeeded),
		Failed:    len(result.Failed),
	}
	for _, f := range result.Failed {
		resp.Failures = append(resp.Failures, dto.SyncFailure{ID: f.ID, Reason: f.Reason})
	}

	ctx.JSON(http.StatusOK, gin.H{"code": 200, "message": "成本回写完成", "data": resp})
}

// ==================== 元字段回写 ====================

// PushMetafields 批量回写变体元字段
// POST /api/v1/products/metafields/push?shop_id=1
func (c *ProductController) PushMetafields(ctx *gin.Context) {
	shopID := shopIDQuery(ctx)
	if shopID == 0 {
		return
	}

	var req dto.PushMetafieldsRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"code": 400, "message": err.Error()})
		return
	}

	updates := make([]service.MetafieldUpdate, len(req.Updates))
	for i, u := range req.Updates {
		updates[i] = service.MetafieldUpdate{
			VariantID: u.VariantID,
			Namespace: u.Namespace,
			Key:       u.Key,
			Type:      u.Type,
			Value:     u.Value,
		}
	}

	result, err := c.svc.PushVariantMetafields(ctx, shopID, updates, nil)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"code": 400, "message": err.Error()})
		return
	}

	resp := dto.SyncResultResponse{
		ShopID:    shopID,
		Succeeded: len(result.Succeeded),
		Failed:    len(result.Failed),
	}
	for _, f := range result.Failed {
		resp.Failures = append(resp.Failures, dto.SyncFailure{ID: f.ID, Reason: f.Reason})
	}

	ctx.JSON(http.StatusOK, gin.H{"code": 200, "message": "元字段回写完成", "data": resp})
}
