package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"orderpro_v1_202608/internal/api/dto"
	"orderpro_v1_202608/internal/model"
	"orderpro_v1_202608/internal/service"
)

// PricingController 价格规则控制器
type PricingController struct {
	svc *service.PricingService
}

// NewPricingController 创建价格规则控制器
func NewPricingController(svc *service.PricingService) *PricingController {
	return &PricingController{svc: svc}
}

// ==================== 规则 CRUD ====================

// List 规则列表
// GET /api/v1/price-rules
func (c *PricingController) List(ctx *gin.Context) {
	shopID := shopIDQuery(ctx)
	if shopID == 0 {
		return
	}

	rules, err := c.svc.ListRules(ctx, shopID)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"code": 500, "message": err.Error()})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"code": 200, "data": rules})
}

// Create 创建规则
// POST /api/v1/price-rules
func (c *PricingController) Create(ctx *gin.Context) {
	var req dto.CreatePriceRuleRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"code": 400, "message": err.Error()})
		return
	}

	rule := &model.PriceRule{
		ShopID:             req.ShopID,
		RuleType:           req.RuleType,
		SearchString:       req.SearchString,
		MetafieldNamespace: req.MetafieldNamespace,
		MetafieldKey:       req.MetafieldKey,
		MetafieldValue:     req.MetafieldValue,
		OptionName:         req.OptionName,
		OptionValue:        req.OptionValue,
		PriceCents:         req.PriceCents,
		ModifierCents:      req.ModifierCents,
		Priority:           req.Priority,
		Active:             true,
	}
	if req.Active != nil {
		rule.Active = *req.Active
	}

	if err := c.svc.CreateRule(ctx, rule); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"code": 400, "message": err.Error()})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"code": 200, "message": "规则已创建", "data": rule})
}

// Update 更新规则
// PUT /api/v1/price-rules/:id
func (c *PricingController) Update(ctx *gin.Context) {
	id := parseID(ctx, "id")
	if id == 0 {
		return
	}
	shopID := shopIDQuery(ctx)
	if shopID == 0 {
		return
	}

	var req dto.UpdatePriceRuleRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"code": 400, "message": err.Error()})
		return
	}

	rule, err := c.svc.GetRule(ctx, shopID, id)
	if err != nil {
		ctx.JSON(http.StatusNotFound, gin.H{"code": 404, "message": err.Error()})
		return
	}

	applyRuleUpdate(rule, &req)

	if err := c.svc.UpdateRule(ctx, rule); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"code": 400, "message": err.Error()})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"code": 200, "message": "规则已更新", "data": rule})
}

// Delete 删除规则
// DELETE /api/v1/price-rules/:id
func (c *PricingController) Delete(ctx *gin.Context) {
	id := parseID(ctx, "id")
	if id == 0 {
		return
	}
	shopID := shopIDQuery(ctx)
	if shopID == 0 {
		return
	}

	if err := c.svc.DeleteRule(ctx, shopID, id); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"code": 400, "message": err.Error()})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"code": 200, "message": "规则已删除"})
}

// ==================== 试算 ====================

// Preview 规则试算
// GET /api/v1/price-rules/preview
func (c *PricingController) Preview(ctx *gin.Context) {
	var req dto.PreviewPriceRequest
	if err := ctx.ShouldBindQuery(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"code": 400, "message": err.Error()})
		return
	}

	descriptor := service.FormatItemDescriptor(req.SKU, req.Color, req.Size)
	result, err := c.svc.Preview(ctx, req.ShopID, descriptor)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"code": 500, "message": err.Error()})
		return
	}

	resp := dto.PreviewPriceResponse{
		Descriptor: result.Descriptor,
		TotalCents: result.TotalCents,
	}
	for _, r := range result.Matched {
		resp.Matched = append(resp.Matched, dto.RuleMatchVO{
			ID:           r.ID,
			RuleType:     r.RuleType,
			SearchString: r.SearchString,
			PriceCents:   r.PriceCents,
		})
	}

	ctx.JSON(http.StatusOK, gin.H{"code": 200, "data": resp})
}

// ==================== 内部辅助 ====================

// applyRuleUpdate 只覆盖请求中携带的字段
func applyRuleUpdate(rule *model.PriceRule, req *dto.UpdatePriceRuleRequest) {
	if req.SearchString != nil {
		rule.SearchString = *req.SearchString
	}
	if req.MetafieldNamespace != nil {
		rule.MetafieldNamespace = *req.MetafieldNamespace
	}
	if req.MetafieldKey != nil {
		rule.MetafieldKey = *req.MetafieldKey
	}
	if req.MetafieldValue != nil {
		rule.MetafieldValue = *req.MetafieldValue
	}
	if req.OptionName != nil {
		rule.OptionName = *req.OptionName
	}
	if req.OptionValue != nil {
		rule.OptionValue = *req.OptionValue
	}
	if req.PriceCents != nil {
		rule.PriceCents = *req.PriceCents
	}
	if req.ModifierCents != nil {
		rule.ModifierCents = *req.ModifierCents
	}
	if req.Priority != nil {
		rule.Priority = *req.Priority
	}
	if req.Active != nil {
		rule.Active = *req.Active
	}
}
