package controller

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"orderpro_v1_202608/internal/api/dto"
	"orderpro_v1_202608/internal/model"
	"orderpro_v1_202608/internal/service"
)

// BillingController 计费控制器
type BillingController struct {
	svc *service.BillingService
}

// NewBillingController 创建计费控制器
func NewBillingController(svc *service.BillingService) *BillingController {
	return &BillingController{svc: svc}
}

// ==================== 单笔订单计费 ====================

// GetOrderBilling 订单计费明细
// GET /api/v1/billing/orders/:id
func (c *BillingController) GetOrderBilling(ctx *gin.Context) {
	orderID := parseID(ctx, "id")
	if orderID == 0 {
		return
	}
	shopID := shopIDQuery(ctx)
	if shopID == 0 {
		return
	}

	billing, err := c.svc.GetOrderBilling(ctx, shopID, orderID)
	if err != nil {
		ctx.JSON(http.StatusNotFound, gin.H{"code": 404, "message": err.Error()})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"code": 200, "data": billing})
}

// ==================== 周期汇总 ====================

// GetWeekSummary 周汇总
// GET /api/v1/billing/weekly
func (c *BillingController) GetWeekSummary(ctx *gin.Context) {
	c.summary(ctx, c.svc.GetWeekSummary)
}

// GetMonthSummary 月汇总
// GET /api/v1/billing/monthly
func (c *BillingController) GetMonthSummary(ctx *gin.Context) {
	c.summary(ctx, c.svc.GetMonthSummary)
}

func (c *BillingController) summary(ctx *gin.Context, fn func(ctx0 context.Context, shopID int64, anchor time.Time) (*service.PeriodSummary, error)) {
	var req dto.BillingSummaryRequest
	if err := ctx.ShouldBindQuery(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"code": 400, "message": err.Error()})
		return
	}

	anchor := time.Now()
	if req.Anchor != "" {
		t, err := time.Parse("2006-01-02", req.Anchor)
		if err != nil {
			ctx.JSON(http.StatusBadRequest, gin.H{"code": 400, "message": "无效的日期"})
			return
		}
		anchor = t
	}

	summary, err := fn(ctx, req.ShopID, anchor)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"code": 500, "message": err.Error()})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"code": 200, "data": summary})
}

// ==================== 差额调整 ====================

// SetBalanceAdjustment 录入/覆盖周期差额调整
// PUT /api/v1/billing/balance
func (c *BillingController) SetBalanceAdjustment(ctx *gin.Context) {
	var req dto.SetBalanceAdjustmentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"code": 400, "message": err.Error()})
		return
	}

	adj := &model.BalanceAdjustment{
		ShopID:      req.ShopID,
		Period:      req.Period,
		Kind:        req.Kind,
		AmountCents: req.AmountCents,
		Note:        req.Note,
	}
	if err := c.svc.SetBalanceAdjustment(ctx, adj); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"code": 400, "message": err.Error()})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"code": 200, "message": "差额调整已保存", "data": adj})
}
