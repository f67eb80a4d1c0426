package controller

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"orderpro_v1_202608/internal/api/dto"
	"orderpro_v1_202608/internal/model"
	"orderpro_v1_202608/internal/repository"
	"orderpro_v1_202608/internal/service"
)

// OrderController 订单控制器
type OrderController struct {
	svc *service.OrderService
}

// NewOrderController 创建订单控制器
func NewOrderController(svc *service.OrderService) *OrderController {
	return &OrderController{svc: svc}
}

// ==================== 订单列表与详情 ====================

// List 订单列表
// GET /api/v1/orders
func (c *OrderController) List(ctx *gin.Context) {
	var req dto.ListOrdersRequest
	if err := ctx.ShouldBindQuery(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"code": 400, "message": err.Error()})
		return
	}

	filter := repository.OrderFilter{
		ShopID:            req.ShopID,
		FulfillmentStatus: req.FulfillmentStatus,
		FinancialStatus:   req.FinancialStatus,
		Keyword:           req.Keyword,
		Page:              req.Page,
		PageSize:          req.PageSize,
	}

	if req.StartDate != "" {
		if t, err := time.Parse("2006-01-02", req.StartDate); err == nil {
			filter.StartDate = &t
		}
	}
	if req.EndDate != "" {
		if t, err := time.Parse("2006-01-02", req.EndDate); err == nil {
			filter.EndDate = &t
		}
	}

	orders, total, err := c.svc.List(ctx, filter)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"code": 500, "message": err.Error()})
		return
	}

	list := make([]dto.OrderListItem, len(orders))
	for i := range orders {
		o := &orders[i]
		list[i] = dto.OrderListItem{
			ID:                o.ID,
			ShopifyOrderID:    o.ShopifyOrderID,
			ShopID:            o.ShopID,
			Name:              o.Name,
			FulfillmentStatus: o.FulfillmentStatus,
			FinancialStatus:   o.FinancialStatus,
			ItemCount:         len(o.Items),
			TotalUnits:        o.TotalUnits(),
			Tags:              o.Tags,
			ShopifyCreatedAt:  o.ShopifyCreatedAt,
			SyncedAt:          o.SyncedAt,
		}
	}

	ctx.JSON(http.StatusOK, gin.H{
		"code": 200,
		"data": dto.ListOrdersResponse{Total: total, List: list},
	})
}

// GetByID 订单详情
// GET /api/v1/orders/:id
func (c *OrderController) GetByID(ctx *gin.Context) {
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

	ctx.JSON(http.StatusOK, gin.H{
		"code": 200,
		"data": buildOrderDetail(order),
	})
}

// ==================== 发货标记 ====================

// MarkFulfilled 标记订单已发货
// POST /api/v1/orders/:id/fulfill
func (c *OrderController) MarkFulfilled(ctx *gin.Context) {
	id := parseID(ctx, "id")
	if id == 0 {
		return
	}
	shopID := shopIDQuery(ctx)
	if shopID == 0 {
		return
	}

	if err := c.svc.MarkFulfilled(ctx, shopID, id); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"code": 400, "message": err.Error()})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"code": 200, "message": "订单已标记发货"})
}

// ==================== 视图构建 ====================

func buildOrderDetail(order *model.Order) dto.OrderDetailResponse {
	items := make([]dto.OrderItemVO, len(order.Items))
	for i := range order.Items {
		li := &order.Items[i]
		items[i] = dto.OrderItemVO{
			ID:                 li.ID,
			ShopifyLineItemID:  li.ShopifyLineItemID,
			Title:              li.Title,
			SKU:                li.SKU,
			VariantTitle:       li.VariantTitle,
			Quantity:           li.Quantity,
			RefundableQuantity: li.RefundableQuantity,
			Cancelled:          li.IsCancelled(),
			UnitPrice:          li.GetUnitPrice(),
			Currency:           li.Currency,
		}
	}

	return dto.OrderDetailResponse{
		Order: &dto.OrderVO{
			ID:                order.ID,
			ShopifyOrderID:    order.ShopifyOrderID,
			ShopID:            order.ShopID,
			Name:              order.Name,
			FulfillmentStatus: order.FulfillmentStatus,
			FinancialStatus:   order.FinancialStatus,
			Note:              order.Note,
			Tags:              order.Tags,
			TotalUnits:        order.TotalUnits(),
			ShopifyCreatedAt:  order.ShopifyCreatedAt,
			ShopifyUpdatedAt:  order.ShopifyUpdatedAt,
			SyncedAt:          order.SyncedAt,
		},
		Items: items,
	}
}
