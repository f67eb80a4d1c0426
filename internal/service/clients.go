package service

import (
	"orderpro_v1_202608/internal/model"
	"orderpro_v1_202608/pkg/net"
	"orderpro_v1_202608/pkg/shopify"
)

// ==================== Shopify 客户端工厂 ====================

// ClientFactory 按店铺凭证构建 Shopify 客户端
// REST 请求共用一个 Dispatcher，跨任务维持每店铺的发送节奏
type ClientFactory struct {
	dispatcher net.Dispatcher
}

// NewClientFactory 创建客户端工厂
func NewClientFactory(dispatcher net.Dispatcher) *ClientFactory {
	return &ClientFactory{dispatcher: dispatcher}
}

// Rest 构建店铺 REST 客户端
func (f *ClientFactory) Rest(shop *model.Shop) *shopify.RestClient {
	return shopify.NewRestClient(f.dispatcher, shop.ID, shop.AdminBaseURL(), shop.AccessToken)
}

// GraphQL 构建店铺 GraphQL 客户端
func (f *ClientFactory) GraphQL(shop *model.Shop) *shopify.GraphQLClient {
	return shopify.NewGraphQLClient(shop.AdminBaseURL(), shop.AccessToken)
}
