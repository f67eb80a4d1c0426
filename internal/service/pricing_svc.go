package service

import (
	"context"
	"fmt"
	"strings"

	"orderpro_v1_202608/internal/model"
	"orderpro_v1_202608/internal/repository"
)

// ==================== 价格匹配引擎（纯函数） ====================

// FormatItemDescriptor 格式化条目描述串，价格规则的匹配对象
// 形如 "CREATOR - Heritage Brown - M"（颜色先过规范化表）
func FormatItemDescriptor(sku, color, size string) string {
	parts := make([]string, 0, 3)
	if sku != "" {
		parts = append(parts, sku)
	}
	if color != "" {
		parts = append(parts, TransformColor(color))
	}
	if size != "" {
		parts = append(parts, size)
	}
	return strings.Join(parts, " - ")
}

// MatchRules 返回描述串命中的全部 substring 规则
// 匹配不区分大小写；命中顺序即规则传入顺序，无优先级裁决
func MatchRules(descriptor string, rules []model.PriceRule) []model.PriceRule {
	lowered := strings.ToLower(descriptor)
	var matched []model.PriceRule
	for _, rule := range rules {
		if !rule.Active || rule.RuleType != model.RuleTypeSubstring {
			continue
		}
		if rule.SearchString == "" {
			continue
		}
		if strings.Contains(lowered, strings.ToLower(rule.SearchString)) {
			matched = append(matched, rule)
		}
	}
	return matched
}

// CalculateItemPrice 计算条目单价（分）
// 所有命中规则的金额无条件叠加；零命中返回 0
func CalculateItemPrice(descriptor string, rules []model.PriceRule) int64 {
	var total int64
	for _, rule := range MatchRules(descriptor, rules) {
		total += rule.PriceCents
	}
	return total
}

// ==================== 结构化匹配（补货/Shopify 定向） ====================

// ItemAttributes 结构化匹配输入
type ItemAttributes struct {
	// 键格式 "namespace.key"
	Metafields map[string]string
	Options    []SelectedOption
}

// matchStructuredRule 单条结构化规则匹配
func matchStructuredRule(attrs ItemAttributes, rule *model.PriceRule) bool {
	switch rule.RuleType {
	case model.RuleTypeMetafield:
		if attrs.Metafields == nil {
			return false
		}
		v, ok := attrs.Metafields[rule.MetafieldNamespace+"."+rule.MetafieldKey]
		return ok && v == rule.MetafieldValue
	case model.RuleTypeOption:
		for _, opt := range attrs.Options {
			if strings.EqualFold(opt.Name, rule.OptionName) &&
				strings.EqualFold(opt.Value, rule.OptionValue) {
				return true
			}
		}
	}
	return false
}

// CalculateStructuredPrice 结构化定价（分）
// 每条命中规则贡献 基础金额 + 修正金额；同字段多条命中依旧全部叠加
// （与产品确认前保持现状，不做去重裁决）
func CalculateStructuredPrice(attrs ItemAttributes, rules []model.PriceRule) (int64, []model.PriceRule) {
	var total int64
	var matched []model.PriceRule
	for i := range rules {
		rule := rules[i]
		if !rule.Active {
			continue
		}
		if matchStructuredRule(attrs, &rule) {
			total += rule.PriceCents + rule.ModifierCents
			matched = append(matched, rule)
		}
	}
	return total, matched
}

// ==================== PricingService 价格规则服务 ====================

// PricingService 价格规则服务
type PricingService struct {
	ruleRepo repository.PriceRuleRepository
}

// NewPricingService 创建价格规则服务
func NewPricingService(ruleRepo repository.PriceRuleRepository) *PricingService {
	return &PricingService{ruleRepo: ruleRepo}
}

// ListRules 店铺全部规则
func (s *PricingService) ListRules(ctx context.Context, shopID int64) ([]model.PriceRule, error) {
	return s.ruleRepo.ListByShop(ctx, shopID)
}

// CreateRule 新建规则
func (s *PricingService) CreateRule(ctx context.Context, rule *model.PriceRule) error {
	if rule.ShopID == 0 {
		return fmt.Errorf("缺少店铺 ID")
	}
	if err := validateRule(rule); err != nil {
		return err
	}
	return s.ruleRepo.Create(ctx, rule)
}

// GetRule 查询单条规则（校验店铺归属）
func (s *PricingService) GetRule(ctx context.Context, shopID, ruleID int64) (*model.PriceRule, error) {
	rule, err := s.ruleRepo.GetByID(ctx, ruleID)
	if err != nil {
		return nil, fmt.Errorf("规则不存在")
	}
	if rule.ShopID != shopID {
		return nil, fmt.Errorf("规则不属于该店铺")
	}
	return rule, nil
}

// UpdateRule 更新规则
func (s *PricingService) UpdateRule(ctx context.Context, rule *model.PriceRule) error {
	existing, err := s.ruleRepo.GetByID(ctx, rule.ID)
	if err != nil {
		return fmt.Errorf("规则不存在")
	}
	if existing.ShopID != rule.ShopID {
		return fmt.Errorf("规则不属于该店铺")
	}
	if err := validateRule(rule); err != nil {
		return err
	}
	rule.CreatedAt = existing.CreatedAt
	return s.ruleRepo.Update(ctx, rule)
}

// DeleteRule 删除规则
func (s *PricingService) DeleteRule(ctx context.Context, shopID, ruleID int64) error {
	existing, err := s.ruleRepo.GetByID(ctx, ruleID)
	if err != nil {
		return fmt.Errorf("规则不存在")
	}
	if existing.ShopID != shopID {
		return fmt.Errorf("规则不属于该店铺")
	}
	return s.ruleRepo.Delete(ctx, ruleID)
}

// PreviewResult 规则预览结果
type PreviewResult struct {
	Descriptor string
	Matched    []model.PriceRule
	TotalCents int64
}

// Preview 试算：给定描述串，返回命中的规则和叠加金额（前端展示"哪些规则生效了"）
func (s *PricingService) Preview(ctx context.Context, shopID int64, descriptor string) (*PreviewResult, error) {
	rules, err := s.ruleRepo.ListActive(ctx, shopID)
	if err != nil {
		return nil, fmt.Errorf("查询价格规则失败: %w", err)
	}
	matched := MatchRules(descriptor, rules)
	var total int64
	for _, rule := range matched {
		total += rule.PriceCents
	}
	return &PreviewResult{
		Descriptor: descriptor,
		Matched:    matched,
		TotalCents: total,
	}, nil
}

// validateRule 按规则类型校验必填字段
func validateRule(rule *model.PriceRule) error {
	switch rule.RuleType {
	case model.RuleTypeSubstring, "":
		rule.RuleType = model.RuleTypeSubstring
		if rule.SearchString == "" {
			return fmt.Errorf("substring 规则缺少 search_string")
		}
	case model.RuleTypeMetafield:
		if rule.MetafieldNamespace == "" || rule.MetafieldKey == "" {
			return fmt.Errorf("metafield 规则缺少 namespace/key")
		}
	case model.RuleTypeOption:
		if rule.OptionName == "" {
			return fmt.Errorf("option 规则缺少 option_name")
		}
	default:
		return fmt.Errorf("未知规则类型: %s", rule.RuleType)
	}
	return nil
}
