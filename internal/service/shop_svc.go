package service

import (
	"context"
	"fmt"
	"strings"

	"orderpro_v1_202608/internal/model"
	"orderpro_v1_202608/internal/repository"

	"go.uber.org/zap"
)

// ==================== ShopService 店铺服务 ====================

// ShopService 店铺服务（租户管理）
type ShopService struct {
	shopRepo     repository.ShopRepository
	locationRepo repository.LocationRepository
	clients      *ClientFactory
}

// NewShopService 创建店铺服务
func NewShopService(
	shopRepo repository.ShopRepository,
	locationRepo repository.LocationRepository,
	clients *ClientFactory,
) *ShopService {
	return &ShopService{
		shopRepo:     shopRepo,
		locationRepo: locationRepo,
		clients:      clients,
	}
}

// ==================== 基础 CRUD ====================

// Create 创建店铺
// 创建后即刻做一次连通性检查，失败只告警不阻断（凭证可以后补）
func (s *ShopService) Create(ctx context.Context, shop *model.Shop) error {
	if shop.Name == "" || shop.Domain == "" {
		return fmt.Errorf("店铺名称和域名不能为空")
	}
	if !strings.HasSuffix(shop.Domain, ".myshopify.com") {
		return fmt.Errorf("域名必须是 xxx.myshopify.com 格式")
	}
	if _, err := s.shopRepo.GetByDomain(ctx, shop.Domain); err == nil {
		return fmt.Errorf("域名 %s 已存在", shop.Domain)
	}

	if shop.APIVersion == "" {
		shop.APIVersion = "2024-01"
	}
	if err := s.shopRepo.Create(ctx, shop); err != nil {
		return fmt.Errorf("创建店铺失败: %w", err)
	}

	if shop.AccessToken != "" {
		if err := s.TestConnection(ctx, shop.ID); err != nil {
			zap.S().Warnf("[Shop] 店铺 %s 连通性检查失败: %v", shop.Name, err)
		}
	}
	return nil
}

// Get 查询店铺
func (s *ShopService) Get(ctx context.Context, shopID int64) (*model.Shop, error) {
	shop, err := s.shopRepo.GetByID(ctx, shopID)
	if err != nil {
		return nil, fmt.Errorf("店铺不存在")
	}
	return shop, nil
}

// List 分页查询店铺
func (s *ShopService) List(ctx context.Context, filter repository.ShopFilter) ([]model.Shop, int64, error) {
	return s.shopRepo.List(ctx, filter)
}

// Delete 删除店铺（软删除）
func (s *ShopService) Delete(ctx context.Context, shopID int64) error {
	if _, err := s.Get(ctx, shopID); err != nil {
		return err
	}
	return s.shopRepo.Delete(ctx, shopID)
}

// ==================== 设置 ====================

// SettingsUpdate 可更新的店铺设置，nil 字段表示不修改
type SettingsUpdate struct {
	Name              *string `json:"name"`
	AccessToken       *string `json:"access_token"`
	APIVersion        *string `json:"api_version"`
	CurrencyCode      *string `json:"currency_code"`
	HandlingFeeCents  *int64  `json:"handling_fee_cents"`
	DefaultLocationID *int64  `json:"default_location_id"`
	Status            *int    `json:"status"`
}

// UpdateSettings 更新店铺设置（只改传入的字段）
func (s *ShopService) UpdateSettings(ctx context.Context, shopID int64, upd *SettingsUpdate) (*model.Shop, error) {
	shop, err := s.Get(ctx, shopID)
	if err != nil {
		return nil, err
	}

	fields := map[string]interface{}{}
	if upd.Name != nil {
		fields["name"] = *upd.Name
	}
	if upd.AccessToken != nil {
		fields["access_token"] = *upd.AccessToken
		// 换了令牌就重置状态，让同步重新探活
		fields["status"] = model.ShopStatusActive
	}
	if upd.APIVersion != nil {
		fields["api_version"] = *upd.APIVersion
	}
	if upd.CurrencyCode != nil {
		fields["currency_code"] = *upd.CurrencyCode
	}
	if upd.HandlingFeeCents != nil {
		if *upd.HandlingFeeCents < 0 {
			return nil, fmt.Errorf("人工费不能为负数")
		}
		fields["handling_fee_cents"] = *upd.HandlingFeeCents
	}
	if upd.DefaultLocationID != nil {
		loc, err := s.locationRepo.GetByID(ctx, *upd.DefaultLocationID)
		if err != nil || loc.ShopID != shopID {
			return nil, fmt.Errorf("发货地点不存在")
		}
		fields["default_location_id"] = *upd.DefaultLocationID
	}
	if upd.Status != nil {
		fields["status"] = *upd.Status
	}

	if len(fields) == 0 {
		return shop, nil
	}
	if err := s.shopRepo.UpdateFields(ctx, shopID, fields); err != nil {
		return nil, fmt.Errorf("更新店铺设置失败: %w", err)
	}
	return s.Get(ctx, shopID)
}

// ==================== 连通性与地点同步 ====================

// TestConnection 连通性检查（拉 shop.json）
func (s *ShopService) TestConnection(ctx context.Context, shopID int64) error {
	shop, err := s.Get(ctx, shopID)
	if err != nil {
		return err
	}
	if shop.AccessToken == "" {
		return fmt.Errorf("店铺缺少访问令牌")
	}

	remote, err := s.clients.Rest(shop).GetShop(ctx)
	if err != nil {
		return fmt.Errorf("连接 Shopify 失败: %w", err)
	}
	zap.S().Infof("[Shop] 店铺 %s 连通正常 (%s, %s)", shop.Name, remote.Domain, remote.Currency)
	return nil
}

// SyncLocations 从 Shopify 同步发货地点
// 首个活跃地点自动设为默认地点（未设置时）
func (s *ShopService) SyncLocations(ctx context.Context, shopID int64) ([]model.Location, error) {
	shop, err := s.Get(ctx, shopID)
	if err != nil {
		return nil, err
	}
	if !shop.IsActive() {
		return nil, fmt.Errorf("店铺 %s 未启用或缺少访问令牌", shop.Name)
	}

	remote, err := s.clients.Rest(shop).GetLocations(ctx)
	if err != nil {
		return nil, fmt.Errorf("拉取发货地点失败: %w", err)
	}

	for i := range remote {
		loc := &model.Location{
			ShopID:            shopID,
			ShopifyLocationID: remote[i].ID,
			Name:              remote[i].Name,
			Active:            remote[i].Active,
		}
		if err := s.locationRepo.UpsertByShopifyID(ctx, loc); err != nil {
			return nil, fmt.Errorf("地点 %s 写入失败: %w", remote[i].Name, err)
		}
		if shop.DefaultLocationID == 0 && loc.Active {
			if err := s.shopRepo.UpdateFields(ctx, shopID, map[string]interface{}{
				"default_location_id": loc.ID,
			}); err == nil {
				shop.DefaultLocationID = loc.ID
			}
		}
	}

	return s.locationRepo.ListByShop(ctx, shopID)
}

// ListLocations 查询店铺发货地点
func (s *ShopService) ListLocations(ctx context.Context, shopID int64) ([]model.Location, error) {
	if _, err := s.Get(ctx, shopID); err != nil {
		return nil, err
	}
	return s.locationRepo.ListByShop(ctx, shopID)
}
