package shopify

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// ==================== GraphQLClient Admin GraphQL 客户端 ====================

// GraphQLClient Shopify Admin GraphQL 客户端
// 分页方式：pageInfo { hasNextPage, endCursor } 游标
type GraphQLClient struct {
	client   *resty.Client
	endpoint string
}

// NewGraphQLClient 创建 GraphQL 客户端
// 它是商品/元字段同步统一的网络请求入口
func NewGraphQLClient(baseURL, token string) *GraphQLClient {
	client := resty.New().
		SetTimeout(20*time.Second). // 拉取商品可能比较慢，给 20s
		SetHeader("User-Agent", "OrderPro-Go-App/1.0").
		SetHeader("Content-Type", "application/json").
		SetHeader("X-Shopify-Access-Token", token)

	return &GraphQLClient{
		client:   client,
		endpoint: strings.TrimRight(baseURL, "/") + "/graphql.json",
	}
}

// gqlError GraphQL 错误条目
type gqlError struct {
	Message string `json:"message"`
}

// execute 执行一次 GraphQL 查询
func (c *GraphQLClient) execute(ctx context.Context, query string, vars map[string]interface{}, data interface{}) error {
	body := map[string]interface{}{
		"query":     query,
		"variables": vars,
	}

	resp, err := c.client.R().
		SetContext(ctx).
		SetBody(body).
		Post(c.endpoint)
	if err != nil {
		return fmt.Errorf("请求 Shopify GraphQL 失败: %w", err)
	}
	if resp.StatusCode() >= 400 {
		return fmt.Errorf("Shopify GraphQL 错误 [%d]: %s", resp.StatusCode(), resp.String())
	}

	var envelope struct {
		Data   json.RawMessage `json:"data"`
		Errors []gqlError      `json:"errors"`
	}
	if err := json.Unmarshal(resp.Body(), &envelope); err != nil {
		return fmt.Errorf("解析响应失败: %w", err)
	}
	if len(envelope.Errors) > 0 {
		msgs := make([]string, len(envelope.Errors))
		for i, e := range envelope.Errors {
			msgs[i] = e.Message
		}
		return fmt.Errorf("Shopify GraphQL 错误: %s", strings.Join(msgs, "; "))
	}

	if data != nil {
		if err := json.Unmarshal(envelope.Data, data); err != nil {
			return fmt.Errorf("解析 data 失败: %w", err)
		}
	}
	return nil
}

// ==================== 商品分页查询 ====================

const productsPageQuery = `
query productsPage($first: Int!, $after: String) {
  products(first: $first, after: $after) {
    pageInfo { hasNextPage endCursor }
    edges {
      node {
        id
        title
        vendor
        status
        variants(first: 100) {
          edges {
            node {
              id
              sku
              title
              price
              inventoryQuantity
              inventoryItem { id unitCost { amount } }
              metafields(first: 20) {
                edges { node { namespace key value } }
              }
            }
          }
        }
      }
    }
  }
}`

// GetProductsPage 拉取一页商品（含变体与元字段）
// cursor 为空串表示第一页
func (c *GraphQLClient) GetProductsPage(ctx context.Context, cursor string, pageSize int) (*ProductsPage, error) {
	if pageSize <= 0 {
		pageSize = 50
	}

	vars := map[string]interface{}{"first": pageSize}
	if cursor != "" {
		vars["after"] = cursor
	}

	var data struct {
		Products struct {
			PageInfo struct {
				HasNextPage bool   `json:"hasNextPage"`
				EndCursor   string `json:"endCursor"`
			} `json:"pageInfo"`
			Edges []struct {
				Node struct {
					ID       string `json:"id"`
					Title    string `json:"title"`
					Vendor   string `json:"vendor"`
					Status   string `json:"status"`
					Variants struct {
						Edges []struct {
							Node struct {
								ID                string `json:"id"`
								SKU               string `json:"sku"`
								Title             string `json:"title"`
								Price             string `json:"price"`
								InventoryQuantity int    `json:"inventoryQuantity"`
								InventoryItem     struct {
									ID       string `json:"id"`
									UnitCost *struct {
										Amount string `json:"amount"`
									} `json:"unitCost"`
								} `json:"inventoryItem"`
								Metafields struct {
									Edges []struct {
										Node GQLMetafield `json:"node"`
									} `json:"edges"`
								} `json:"metafields"`
							} `json:"node"`
						} `json:"edges"`
					} `json:"variants"`
				} `json:"node"`
			} `json:"edges"`
		} `json:"products"`
	}

	if err := c.execute(ctx, productsPageQuery, vars, &data); err != nil {
		return nil, err
	}

	page := &ProductsPage{
		EndCursor:   data.Products.PageInfo.EndCursor,
		HasNextPage: data.Products.PageInfo.HasNextPage,
	}
	for _, edge := range data.Products.Edges {
		p := GQLProduct{
			ID:     edge.Node.ID,
			Title:  edge.Node.Title,
			Vendor: edge.Node.Vendor,
			Status: edge.Node.Status,
		}
		for _, ve := range edge.Node.Variants.Edges {
			v := GQLVariant{
				ID:                ve.Node.ID,
				SKU:               ve.Node.SKU,
				Title:             ve.Node.Title,
				Price:             ve.Node.Price,
				InventoryQuantity: ve.Node.InventoryQuantity,
				InventoryItemID:   ve.Node.InventoryItem.ID,
			}
			if ve.Node.InventoryItem.UnitCost != nil {
				v.UnitCost = ve.Node.InventoryItem.UnitCost.Amount
			}
			for _, me := range ve.Node.Metafields.Edges {
				v.Metafields = append(v.Metafields, me.Node)
			}
			p.Variants = append(p.Variants, v)
		}
		page.Products = append(page.Products, p)
	}

	return page, nil
}

// ==================== 变体元字段批量写入 ====================

const metafieldsSetMutation = `
mutation metafieldsSet($metafields: [MetafieldsSetInput!]!) {
  metafieldsSet(metafields: $metafields) {
    userErrors { field message }
  }
}`

// MetafieldInput 元字段写入条目
type MetafieldInput struct {
	OwnerGID  string `json:"ownerId"`
	Namespace string `json:"namespace"`
	Key       string `json:"key"`
	Type      string `json:"type"`
	Value     string `json:"value"`
}

// SetMetafields 批量写入元字段
// 上限 25 条一批（API 的 metafieldsSet 限制），调用方负责分块
func (c *GraphQLClient) SetMetafields(ctx context.Context, inputs []MetafieldInput) error {
	var data struct {
		MetafieldsSet struct {
			UserErrors []struct {
				Field   []string `json:"field"`
				Message string   `json:"message"`
			} `json:"userErrors"`
		} `json:"metafieldsSet"`
	}

	vars := map[string]interface{}{"metafields": inputs}
	if err := c.execute(ctx, metafieldsSetMutation, vars, &data); err != nil {
		return err
	}
	if n := len(data.MetafieldsSet.UserErrors); n > 0 {
		first := data.MetafieldsSet.UserErrors[0]
		return fmt.Errorf("metafieldsSet 返回 %d 个错误，首个: %s", n, first.Message)
	}
	return nil
}
