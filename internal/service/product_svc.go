package service

import (
	"context"
	"fmt"
	"time"

	"orderpro_v1_202608/internal/model"
	"orderpro_v1_202608/internal/repository"
	"orderpro_v1_202608/pkg/shopify"

	"go.uber.org/zap"
	"gorm.io/datatypes"
)

// ==================== ProductService 商品服务 ====================

// 成本批量写入每批条数，批间歇 50ms，避免撞限速
const costWriteChunkSize = 50

// 元字段批量写入每批条数，metafieldsSet 单次 mutation 的上限是 25
const metafieldWriteChunkSize = 25

// ProductService 商品服务
type ProductService struct {
	shopRepo    repository.ShopRepository
	productRepo repository.ProductRepository
	variantRepo repository.VariantRepository
	clients     *ClientFactory
}

// NewProductService 创建商品服务
func NewProductService(
	shopRepo repository.ShopRepository,
	productRepo repository.ProductRepository,
	variantRepo repository.VariantRepository,
	clients *ClientFactory,
) *ProductService {
	return &ProductService{
		shopRepo:    shopRepo,
		productRepo: productRepo,
		variantRepo: variantRepo,
		clients:     clients,
	}
}

// ==================== 查询 ====================

// List 分页查询商品（含变体）
func (s *ProductService) List(ctx context.Context, filter repository.ProductFilter) ([]model.Product, int64, error) {
	if filter.ShopID == 0 {
		return nil, 0, fmt.Errorf("缺少店铺 ID")
	}
	return s.productRepo.List(ctx, filter)
}

// GetDetail 查询商品详情（含变体）
func (s *ProductService) GetDetail(ctx context.Context, shopID, productID int64) (*model.Product, error) {
	product, err := s.productRepo.GetByID(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("商品不存在")
	}
	if product.ShopID != shopID {
		return nil, fmt.Errorf("商品不属于该店铺")
	}
	return product, nil
}

// ==================== 商品同步 ====================

// SyncProducts 从 Shopify 拉取商品、变体与元字段并入库
// GraphQL 游标翻页，单个商品失败计入结果不中断
func (s *ProductService) SyncProducts(ctx context.Context, shopID int64, sink EventSink) (*shopify.BatchResult, error) {
	shop, err := s.shopRepo.GetByID(ctx, shopID)
	if err != nil {
		sink.emit(EventError, "店铺不存在")
		return nil, fmt.Errorf("店铺不存在")
	}
	if !shop.IsActive() {
		sink.emit(EventError, fmt.Sprintf("店铺 %s 未启用或缺少访问令牌", shop.Name))
		return nil, fmt.Errorf("店铺 %s 未启用或缺少访问令牌", shop.Name)
	}

	client := s.clients.GraphQL(shop)
	result := &shopify.BatchResult{}

	sink.emit(EventInfo, fmt.Sprintf("开始同步店铺 %s 的商品", shop.Name))

	cursor := ""
	pageNum := 0
	for {
		page, err := client.GetProductsPage(ctx, cursor, 50)
		if err != nil {
			sink.emit(EventError, fmt.Sprintf("拉取商品失败: %v", err))
			return result, fmt.Errorf("拉取商品失败: %w", err)
		}

		pageNum++
		sink.emit(EventInfo, fmt.Sprintf("第 %d 页获取 %d 个商品", pageNum, len(page.Products)))

		for i := range page.Products {
			gp := &page.Products[i]
			pid := shopify.ParseGID(gp.ID)
			if err := s.upsertFromGraphQL(ctx, shop.ID, gp); err != nil {
				zap.S().Warnf("[Sync] 商品 %s 入库失败: %v", gp.Title, err)
				sink.emit(EventWarning, fmt.Sprintf("商品 %s 入库失败: %v", gp.Title, err))
				result.AddFailure(pid, err)
				continue
			}
			result.AddSuccess(pid)
		}

		if !page.HasNextPage {
			break
		}
		cursor = page.EndCursor
	}

	if err := s.shopRepo.TouchProductSync(ctx, shopID, time.Now()); err != nil {
		zap.S().Warnf("[Sync] 更新店铺 %d 商品同步时间失败: %v", shopID, err)
	}

	sink.emit(EventSuccess, fmt.Sprintf("商品同步完成: %s", result.Summary()))
	return result, nil
}

// upsertFromGraphQL 单个商品（含变体）入库
func (s *ProductService) upsertFromGraphQL(ctx context.Context, shopID int64, gp *shopify.GQLProduct) error {
	now := time.Now()
	product := &model.Product{
		ShopifyProductID: shopify.ParseGID(gp.ID),
		ShopID:           shopID,
		Title:            gp.Title,
		Vendor:           gp.Vendor,
		Status:           gp.Status,
		SyncedAt:         &now,
	}
	if err := s.productRepo.Upsert(ctx, product); err != nil {
		return fmt.Errorf("商品写入失败: %w", err)
	}

	for i := range gp.Variants {
		gv := &gp.Variants[i]
		variant := &model.Variant{
			ProductID:              product.ID,
			ShopID:                 shopID,
			ShopifyVariantID:       shopify.ParseGID(gv.ID),
			SKU:                    gv.SKU,
			Title:                  gv.Title,
			PriceCents:             shopify.ParseMoneyToCents(gv.Price),
			CostCents:              shopify.ParseMoneyToCents(gv.UnitCost),
			InventoryQuantity:      gv.InventoryQuantity,
			ShopifyInventoryItemID: shopify.ParseGID(gv.InventoryItemID),
			Metafields:             metafieldsToMap(gv.Metafields),
		}
		if err := s.variantRepo.Upsert(ctx, variant); err != nil {
			return fmt.Errorf("变体 %s 写入失败: %w", gv.SKU, err)
		}
	}
	return nil
}

// metafieldsToMap 元字段列表转 JSONB 映射，键格式 "namespace.key"
func metafieldsToMap(metafields []shopify.GQLMetafield) datatypes.JSONMap {
	if len(metafields) == 0 {
		return nil
	}
	m := make(datatypes.JSONMap, len(metafields))
	for _, mf := range metafields {
		m[mf.Namespace+"."+mf.Key] = mf.Value
	}
	return m
}

// ==================== 成本回写 ====================

// CostUpdate 单个变体的成本回写条目
type CostUpdate struct {
	VariantID int64 `json:"variant_id"`
	CostCents int64 `json:"cost_cents"`
}

// PushInventoryCosts 批量回写库存成本到 Shopify
// 每 50 条一批，批间歇 50ms；失败的批次不回滚已提交的批次
func (s *ProductService) PushInventoryCosts(ctx context.Context, shopID int64, updates []CostUpdate, sink EventSink) (*shopify.BatchResult, error) {
	shop, err := s.shopRepo.GetByID(ctx, shopID)
	if err != nil {
		return nil, fmt.Errorf("店铺不存在")
	}
	if !shop.IsActive() {
		return nil, fmt.Errorf("店铺 %s 未启用或缺少访问令牌", shop.Name)
	}

	client := s.clients.Rest(shop)
	result := &shopify.BatchResult{}

	for start := 0; start < len(updates); start += costWriteChunkSize {
		end := start + costWriteChunkSize
		if end > len(updates) {
			end = len(updates)
		}

		for _, u := range updates[start:end] {
			variant, err := s.variantRepo.GetByID(ctx, u.VariantID)
			if err != nil {
				result.AddFailure(u.VariantID, fmt.Errorf("变体不存在"))
				continue
			}
			if variant.ShopID != shopID {
				result.AddFailure(u.VariantID, fmt.Errorf("变体不属于该店铺"))
				continue
			}
			if variant.ShopifyInventoryItemID == 0 {
				result.AddFailure(u.VariantID, fmt.Errorf("变体缺少库存项 ID"))
				continue
			}

			if err := client.UpdateInventoryCost(ctx, variant.ShopifyInventoryItemID, u.CostCents); err != nil {
				result.AddFailure(u.VariantID, err)
				continue
			}

			variant.CostCents = u.CostCents
			if err := s.variantRepo.Update(ctx, variant); err != nil {
				result.AddFailure(u.VariantID, fmt.Errorf("本地成本更新失败: %w", err))
				continue
			}
			result.AddSuccess(u.VariantID)
		}

		sink.emit(EventInfo, fmt.Sprintf("成本回写进度 %d/%d", end, len(updates)))
		if end < len(updates) {
			time.Sleep(50 * time.Millisecond)
		}
	}

	sink.emit(EventSuccess, fmt.Sprintf("成本回写完成: %s", result.Summary()))
	return result, nil
}

// ==================== 元字段回写 ====================

// MetafieldUpdate 单个变体的元字段回写条目
type MetafieldUpdate struct {
	VariantID int64  `json:"variant_id"`
	Namespace string `json:"namespace"`
	Key       string `json:"key"`
	Type      string `json:"type"`
	Value     string `json:"value"`
}

// PushVariantMetafields 批量回写变体元字段到 Shopify
// 每 25 条一批走 metafieldsSet，批间歇 50ms；失败的批次不回滚已提交的批次，
// 成功的条目同步更新本地变体的元字段映射
func (s *ProductService) PushVariantMetafields(ctx context.Context, shopID int64, updates []MetafieldUpdate, sink EventSink) (*shopify.BatchResult, error) {
	shop, err := s.shopRepo.GetByID(ctx, shopID)
	if err != nil {
		return nil, fmt.Errorf("店铺不存在")
	}
	if !shop.IsActive() {
		return nil, fmt.Errorf("店铺 %s 未启用或缺少访问令牌", shop.Name)
	}

	client := s.clients.GraphQL(shop)
	result := &shopify.BatchResult{}

	for start := 0; start < len(updates); start += metafieldWriteChunkSize {
		end := start + metafieldWriteChunkSize
		if end > len(updates) {
			end = len(updates)
		}

		// 校验归属并组装本批 mutation 输入
		var batch []*model.Variant
		var batchUpdates []*MetafieldUpdate
		var inputs []shopify.MetafieldInput
		for i := start; i < end; i++ {
			u := &updates[i]
			variant, err := s.variantRepo.GetByID(ctx, u.VariantID)
			if err != nil {
				result.AddFailure(u.VariantID, fmt.Errorf("变体不存在"))
				continue
			}
			if variant.ShopID != shopID {
				result.AddFailure(u.VariantID, fmt.Errorf("变体不属于该店铺"))
				continue
			}

			mfType := u.Type
			if mfType == "" {
				mfType = "single_line_text_field"
			}
			inputs = append(inputs, shopify.MetafieldInput{
				OwnerGID:  shopify.VariantGID(variant.ShopifyVariantID),
				Namespace: u.Namespace,
				Key:       u.Key,
				Type:      mfType,
				Value:     u.Value,
			})
			batch = append(batch, variant)
			batchUpdates = append(batchUpdates, u)
		}

		if len(inputs) > 0 {
			if err := client.SetMetafields(ctx, inputs); err != nil {
				for _, u := range batchUpdates {
					result.AddFailure(u.VariantID, err)
				}
			} else {
				for i, variant := range batch {
					u := batchUpdates[i]
					if variant.Metafields == nil {
						variant.Metafields = datatypes.JSONMap{}
					}
					variant.Metafields[u.Namespace+"."+u.Key] = u.Value
					if uerr := s.variantRepo.Update(ctx, variant); uerr != nil {
						result.AddFailure(u.VariantID, fmt.Errorf("本地元字段更新失败: %w", uerr))
						continue
					}
					result.AddSuccess(u.VariantID)
				}
			}
		}

		sink.emit(EventInfo, fmt.Sprintf("元字段回写进度 %d/%d", end, len(updates)))
		if end < len(updates) {
			time.Sleep(50 * time.Millisecond)
		}
	}

	sink.emit(EventSuccess, fmt.Sprintf("元字段回写完成: %s", result.Summary()))
	return result, nil
}
