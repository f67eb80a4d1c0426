package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"orderpro_v1_202608/internal/api/dto"
	"orderpro_v1_202608/internal/model"
	"orderpro_v1_202608/internal/repository"
	"orderpro_v1_202608/internal/service"
)

// SupplierController 补货单控制器
type SupplierController struct {
	svc *service.SupplierService
}

// NewSupplierController 创建补货单控制器
func NewSupplierController(svc *service.SupplierService) *SupplierController {
	return &SupplierController{svc: svc}
}

// ==================== 补货单 CRUD ====================

// Create 创建补货单
// POST /api/v1/supplier-orders
func (c *SupplierController) Create(ctx *gin.Context) {
	var req dto.CreateSupplierOrderRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"code": 400, "message": err.Error()})
		return
	}

	order, err := c.svc.Create(ctx, req.ShopID, req.Note)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"code": 400, "message": err.Error()})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"code": 200, "message": "补货单已创建", "data": buildSupplierVO(order)})
}

// List 补货单列表
// GET /api/v1/supplier-orders
func (c *SupplierController) List(ctx *gin.Context) {
	var req dto.ListSupplierOrdersRequest
	if err := ctx.ShouldBindQuery(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"code": 400, "message": err.Error()})
		return
	}

	orders, total, err := c.svc.List(ctx, repository.SupplierOrderFilter{
		ShopID:   req.ShopID,
		Status:   req.Status,
		Page:     req.Page,
		PageSize: req.PageSize,
	})
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"code": 500, "message": err.Error()})
		return
	}

	list := make([]dto.SupplierOrderVO, len(orders))
	for i := range orders {
		list[i] = buildSupplierVO(&orders[i])
	}

	ctx.JSON(http.StatusOK, gin.H{
		"code": 200,
		"data": gin.H{"total": total, "list": list},
	})
}

// GetByID 补货单详情
// GET /api/v1/supplier-orders/:id
func (c *SupplierController) GetByID(ctx *gin.Context) {
	id := parseID(ctx, "id")
	if id == 0 {
		return
	}
	shopID := shopIDQuery(ctx)
	if shopID == 0 {
		return
	}

	order, err := c.svc.GetDetail(ctx, shopID, id)
	if err != nil {
		ctx.JSON(http.StatusNotFound, gin.H{"code": 404, "message": err.Error()})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"code": 200, "data": buildSupplierVO(order)})
}

// Delete 删除补货单（仅草稿）
// DELETE /api/v1/supplier-orders/:id
func (c *SupplierController) Delete(ctx *gin.Context) {
	id := parseID(ctx, "id")
	if id == 0 {
		return
	}
	shopID := shopIDQuery(ctx)
	if shopID == 0 {
		return
	}

	if err := c.svc.Delete(ctx, shopID, id); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"code": 400, "message": err.Error()})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"code": 200, "message": "补货单已删除"})
}

// ==================== 条目操作 ====================

// AddItem 添加条目
// POST /api/v1/supplier-orders/:id/items
func (c *SupplierController) AddItem(ctx *gin.Context) {
	id := parseID(ctx, "id")
	if id == 0 {
		return
	}
	shopID := shopIDQuery(ctx)
	if shopID == 0 {
		return
	}

	var req dto.AddSupplierItemRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"code": 400, "message": err.Error()})
		return
	}

	order, err := c.svc.AddItem(ctx, shopID, id, req.VariantID, req.Quantity, req.UnitPriceCents)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"code": 400, "message": err.Error()})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"code": 200, "message": "条目已添加", "data": buildSupplierVO(order)})
}

// UpdateItem 更新条目
// PUT /api/v1/supplier-orders/:id/items/:item_id
func (c *SupplierController) UpdateItem(ctx *gin.Context) {
	id := parseID(ctx, "id")
	if id == 0 {
		return
	}
	itemID := parseID(ctx, "item_id")
	if itemID == 0 {
		return
	}
	shopID := shopIDQuery(ctx)
	if shopID == 0 {
		return
	}

	var req dto.UpdateSupplierItemRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"code": 400, "message": err.Error()})
		return
	}

	order, err := c.svc.UpdateItem(ctx, shopID, id, itemID, req.Quantity, req.UnitPriceCents)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"code": 400, "message": err.Error()})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"code": 200, "message": "条目已更新", "data": buildSupplierVO(order)})
}

// RemoveItem 删除条目
// DELETE /api/v1/supplier-orders/:id/items/:item_id
func (c *SupplierController) RemoveItem(ctx *gin.Context) {
	id := parseID(ctx, "id")
	if id == 0 {
		return
	}
	itemID := parseID(ctx, "item_id")
	if itemID == 0 {
		return
	}
	shopID := shopIDQuery(ctx)
	if shopID == 0 {
		return
	}

	order, err := c.svc.RemoveItem(ctx, shopID, id, itemID)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"code": 400, "message": err.Error()})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"code": 200, "message": "条目已删除", "data": buildSupplierVO(order)})
}

// ValidateItem 人工核对条目
// POST /api/v1/supplier-orders/:id/items/:item_id/validate
func (c *SupplierController) ValidateItem(ctx *gin.Context) {
	id := parseID(ctx, "id")
	if id == 0 {
		return
	}
	itemID := parseID(ctx, "item_id")
	if itemID == 0 {
		return
	}
	shopID := shopIDQuery(ctx)
	if shopID == 0 {
		return
	}

	var req dto.ValidateSupplierItemRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"code": 400, "message": err.Error()})
		return
	}

	if err := c.svc.ValidateItem(ctx, shopID, id, itemID, req.Validated); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"code": 400, "message": err.Error()})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"code": 200, "message": "条目核对状态已更新"})
}

// ==================== 差额与状态 ====================

// SetBalance 设置差额调整
// PUT /api/v1/supplier-orders/:id/balance
func (c *SupplierController) SetBalance(ctx *gin.Context) {
	id := parseID(ctx, "id")
	if id == 0 {
		return
	}
	shopID := shopIDQuery(ctx)
	if shopID == 0 {
		return
	}

	var req dto.SupplierBalanceRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"code": 400, "message": err.Error()})
		return
	}

	order, err := c.svc.SetBalanceAdjustment(ctx, shopID, id, req.AmountCents)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"code": 400, "message": err.Error()})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"code": 200, "message": "差额调整已保存", "data": buildSupplierVO(order)})
}

// Transition 推进状态
// POST /api/v1/supplier-orders/:id/transition
func (c *SupplierController) Transition(ctx *gin.Context) {
	id := parseID(ctx, "id")
	if id == 0 {
		return
	}
	shopID := shopIDQuery(ctx)
	if shopID == 0 {
		return
	}

	var req dto.TransitionSupplierOrderRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"code": 400, "message": err.Error()})
		return
	}

	order, err := c.svc.Transition(ctx, shopID, id, req.Status)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"code": 400, "message": err.Error()})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"code": 200, "message": "状态已更新", "data": buildSupplierVO(order)})
}

// ==================== 视图构建 ====================

func buildSupplierVO(order *model.SupplierOrder) dto.SupplierOrderVO {
	vo := dto.SupplierOrderVO{
		ID:                     order.ID,
		ShopID:                 order.ShopID,
		Reference:              order.Reference,
		Status:                 order.Status,
		SubtotalCents:          order.SubtotalCents,
		BalanceAdjustmentCents: order.BalanceAdjustmentCents,
		TotalHTCents:           order.TotalHTCents,
		TotalTTCCents:          order.TotalTTCCents,
		Note:                   order.Note,
		CompletedAt:            order.CompletedAt,
		CreatedAt:              order.CreatedAt,
	}
	for i := range order.Items {
		item := &order.Items[i]
		vo.Items = append(vo.Items, dto.SupplierOrderItemVO{
			ID:             item.ID,
			VariantID:      item.VariantID,
			SKU:            item.SKU,
			Title:          item.Title,
			Quantity:       item.Quantity,
			UnitPriceCents: item.UnitPriceCents,
			Validated:      item.Validated,
		})
	}
	return vo
}
