package shopify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"orderpro_v1_202608/pkg/net"
)

// ==================== RestClient Admin REST 客户端 ====================

// RestClient Shopify Admin REST 客户端
// 分页方式：响应 Link 头 rel="next" 指向下一页完整 URL
type RestClient struct {
	dispatcher net.Dispatcher
	shopID     int64
	baseURL    string // https://xxx.myshopify.com/admin/api/2024-01
	token      string
}

// NewRestClient 创建 REST 客户端
func NewRestClient(dispatcher net.Dispatcher, shopID int64, baseURL, token string) *RestClient {
	return &RestClient{
		dispatcher: dispatcher,
		shopID:     shopID,
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
	}
}

// ==================== 订单 ====================

// GetOrdersPage 拉取一页订单
// pageURL 为空时用 params 构建首页 URL；返回下一页 URL（无下一页时为空串）
func (c *RestClient) GetOrdersPage(ctx context.Context, pageURL string, params url.Values) ([]RestOrder, string, error) {
	if pageURL == "" {
		pageURL = fmt.Sprintf("%s/orders.json?%s", c.baseURL, params.Encode())
	}

	var payload struct {
		Orders []RestOrder `json:"orders"`
	}
	next, err := c.getJSON(ctx, pageURL, &payload)
	if err != nil {
		return nil, "", err
	}
	return payload.Orders, next, nil
}

// CloseOrder 关闭订单（本地标记发货后回写）
func (c *RestClient) CloseOrder(ctx context.Context, orderID int64) error {
	u := fmt.Sprintf("%s/orders/%d/close.json", c.baseURL, orderID)
	return c.postJSON(ctx, u, map[string]interface{}{}, nil)
}

// ==================== 地点与库存 ====================

// GetLocations 拉取发货地点列表
func (c *RestClient) GetLocations(ctx context.Context) ([]RestLocation, error) {
	var payload struct {
		Locations []RestLocation `json:"locations"`
	}
	u := fmt.Sprintf("%s/locations.json", c.baseURL)
	if _, err := c.getJSON(ctx, u, &payload); err != nil {
		return nil, err
	}
	return payload.Locations, nil
}

// AdjustInventoryLevel 调整库存水位
// available_adjustment 为增量（补货入库传正数）
func (c *RestClient) AdjustInventoryLevel(ctx context.Context, inventoryItemID, locationID int64, delta int) error {
	u := fmt.Sprintf("%s/inventory_levels/adjust.json", c.baseURL)
	body := map[string]interface{}{
		"inventory_item_id":    inventoryItemID,
		"location_id":          locationID,
		"available_adjustment": delta,
	}
	return c.postJSON(ctx, u, body, nil)
}

// UpdateInventoryCost 更新库存成本
func (c *RestClient) UpdateInventoryCost(ctx context.Context, inventoryItemID int64, costCents int64) error {
	u := fmt.Sprintf("%s/inventory_items/%d.json", c.baseURL, inventoryItemID)
	body := map[string]interface{}{
		"inventory_item": map[string]interface{}{
			"id":   inventoryItemID,
			"cost": fmt.Sprintf("%d.%02d", costCents/100, costCents%100),
		},
	}
	return c.putJSON(ctx, u, body, nil)
}

// ==================== 店铺 ====================

// GetShop 拉取店铺信息（连通性检查）
func (c *RestClient) GetShop(ctx context.Context) (*RestShop, error) {
	var payload struct {
		Shop RestShop `json:"shop"`
	}
	u := fmt.Sprintf("%s/shop.json", c.baseURL)
	if _, err := c.getJSON(ctx, u, &payload); err != nil {
		return nil, err
	}
	return &payload.Shop, nil
}

// ==================== 内部请求封装 ====================

// getJSON 发送 GET 并解析响应，返回 Link 头中的下一页 URL
func (c *RestClient) getJSON(ctx context.Context, u string, out interface{}) (string, error) {
	req, err := net.BuildShopifyGetRequest(ctx, u, c.token)
	if err != nil {
		return "", fmt.Errorf("构建请求失败: %w", err)
	}

	resp, err := c.dispatcher.Send(ctx, c.shopID, req)
	if err != nil {
		return "", fmt.Errorf("请求 Shopify API 失败: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("Shopify API 错误 [%d]: %s", resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return "", fmt.Errorf("解析响应失败: %w", err)
	}

	return ParseLinkNext(resp.Header.Get("Link")), nil
}

func (c *RestClient) postJSON(ctx context.Context, u string, body, out interface{}) error {
	return c.sendJSON(ctx, http.MethodPost, u, body, out)
}

func (c *RestClient) putJSON(ctx context.Context, u string, body, out interface{}) error {
	return c.sendJSON(ctx, http.MethodPut, u, body, out)
}

func (c *RestClient) sendJSON(ctx context.Context, method, u string, body, out interface{}) error {
	buf, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("序列化请求失败: %w", err)
	}

	req, err := net.BuildShopifyRequest(ctx, method, u, bytes.NewReader(buf), c.token)
	if err != nil {
		return fmt.Errorf("构建请求失败: %w", err)
	}

	resp, err := c.dispatcher.Send(ctx, c.shopID, req)
	if err != nil {
		return fmt.Errorf("请求 Shopify API 失败: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		raw, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("Shopify API 错误 [%d]: %s", resp.StatusCode, string(raw))
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("解析响应失败: %w", err)
		}
	}
	return nil
}

// ==================== Link 头分页解析 ====================

// ParseLinkNext 解析 Link 头中 rel="next" 的 URL
// 格式形如：<https://x/admin/api/2024-01/orders.json?page_info=abc>; rel="next"
func ParseLinkNext(header string) string {
	if header == "" {
		return ""
	}
	for _, part := range strings.Split(header, ",") {
		part = strings.TrimSpace(part)
		if !strings.Contains(part, `rel="next"`) {
			continue
		}
		start := strings.Index(part, "<")
		end := strings.Index(part, ">")
		if start >= 0 && end > start {
			return part[start+1 : end]
		}
	}
	return ""
}
