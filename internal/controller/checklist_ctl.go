package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"orderpro_v1_202608/internal/api/dto"
	"orderpro_v1_202608/internal/service"
)

// ChecklistController 生产清单控制器
type ChecklistController struct {
	svc *service.ChecklistService
}

// NewChecklistController 创建生产清单控制器
func NewChecklistController(svc *service.ChecklistService) *ChecklistController {
	return &ChecklistController{svc: svc}
}

// ==================== 清单与勾选 ====================

// GetChecklist 订单生产清单（单件粒度）
// GET /api/v1/orders/:id/checklist
func (c *ChecklistController) GetChecklist(ctx *gin.Context) {
	orderID := parseID(ctx, "id")
	if orderID == 0 {
		return
	}
	shopID := shopIDQuery(ctx)
	if shopID == 0 {
		return
	}

	units, err := c.svc.ListUnits(ctx, shopID, orderID)
	if err != nil {
		ctx.JSON(http.StatusNotFound, gin.H{"code": 404, "message": err.Error()})
		return
	}

	resp := dto.ChecklistResponse{
		OrderID: orderID,
		Total:   len(units),
		Units:   make([]dto.ChecklistUnitVO, len(units)),
	}
	for i := range units {
		u := &units[i]
		if u.Checked {
			resp.Checked++
		}
		resp.Units[i] = dto.ChecklistUnitVO{
			VariantKey:   u.VariantKey,
			SKU:          u.SKU,
			Color:        u.Color,
			Size:         u.Size,
			ProductIndex: u.ProductIndex,
			UnitIndex:    u.UnitIndex,
			Checked:      u.Checked,
		}
	}

	ctx.JSON(http.StatusOK, gin.H{"code": 200, "data": resp})
}

// Initialize 批量初始化订单勾选行
// POST /api/v1/orders/:id/checklist/init
func (c *ChecklistController) Initialize(ctx *gin.Context) {
	orderID := parseID(ctx, "id")
	if orderID == 0 {
		return
	}
	shopID := shopIDQuery(ctx)
	if shopID == 0 {
		return
	}

	created, err := c.svc.InitializeOrder(ctx, shopID, orderID)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"code": 400, "message": err.Error()})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"code":    200,
		"message": "生产清单已初始化",
		"data":    gin.H{"created": created},
	})
}

// Toggle 勾选/取消单件
// POST /api/v1/orders/:id/checklist/toggle
func (c *ChecklistController) Toggle(ctx *gin.Context) {
	orderID := parseID(ctx, "id")
	if orderID == 0 {
		return
	}
	shopID := shopIDQuery(ctx)
	if shopID == 0 {
		return
	}

	var req dto.ToggleCheckboxRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"code": 400, "message": err.Error()})
		return
	}

	state, err := c.svc.Toggle(ctx, shopID, orderID, req.VariantKey, req.Checked)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"code": 400, "message": err.Error()})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"code": 200,
		"data": gin.H{
			"variant_key": state.VariantKey,
			"checked":     state.Checked,
		},
	})
}

// ==================== 进度 ====================

// GetProgress 订单进度（含按 SKU 分组）
// GET /api/v1/orders/:id/progress
func (c *ChecklistController) GetProgress(ctx *gin.Context) {
	orderID := parseID(ctx, "id")
	if orderID == 0 {
		return
	}
	shopID := shopIDQuery(ctx)
	if shopID == 0 {
		return
	}

	progress, err := c.svc.GetProgress(ctx, shopID, orderID)
	if err != nil {
		ctx.JSON(http.StatusNotFound, gin.H{"code": 404, "message": err.Error()})
		return
	}

	resp := dto.ProgressResponse{
		OrderID: orderID,
		Checked: progress.Checked,
		Total:   progress.Total,
	}

	if ctx.Query("by_sku") == "true" {
		groups, err := c.svc.GetSKUProgress(ctx, shopID, orderID)
		if err != nil {
			ctx.JSON(http.StatusInternalServerError, gin.H{"code": 500, "message": err.Error()})
			return
		}
		for _, g := range groups {
			resp.BySKU = append(resp.BySKU, dto.SKUProgressVO{
				SKU:     g.SKU,
				Checked: g.Checked,
				Total:   g.Total,
			})
		}
	}

	ctx.JSON(http.StatusOK, gin.H{"code": 200, "data": resp})
}

// ==================== 清理重建 ====================

// PurgeRecalculate 清理并重建订单勾选行
// POST /api/v1/orders/:id/checklist/recalculate
func (c *ChecklistController) PurgeRecalculate(ctx *gin.Context) {
	orderID := parseID(ctx, "id")
	if orderID == 0 {
		return
	}
	shopID := shopIDQuery(ctx)
	if shopID == 0 {
		return
	}

	progress, err := c.svc.PurgeAndRecalculate(ctx, shopID, orderID)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"code": 400, "message": err.Error()})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"code":    200,
		"message": "勾选行已重建",
		"data": dto.ProgressResponse{
			OrderID: orderID,
			Checked: progress.Checked,
			Total:   progress.Total,
		},
	})
}
