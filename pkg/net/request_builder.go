package net

import (
	"context"
	"io"
	"net/http"
)

// BuildShopifyRequest 通用 Shopify Admin 请求构建器
// 适用方：ShopService, ProductService, OrderService 等所有业务服务
// 职责：统一封装鉴权头 (X-Shopify-Access-Token) 和标准头 (Accept, Content-Type)
func BuildShopifyRequest(ctx context.Context, method, url string, body io.Reader, accessToken string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, err
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Shopify-Access-Token", accessToken)

	return req, nil
}

// BuildShopifyGetRequest 构建 Shopify GET 请求
func BuildShopifyGetRequest(ctx context.Context, url string, accessToken string) (*http.Request, error) {
	return BuildShopifyRequest(ctx, http.MethodGet, url, nil, accessToken)
}

// BuildShopifyPostRequest 构建 Shopify POST 请求
func BuildShopifyPostRequest(ctx context.Context, url string, body io.Reader, accessToken string) (*http.Request, error) {
	return BuildShopifyRequest(ctx, http.MethodPost, url, body, accessToken)
}

// BuildShopifyPutRequest 构建 Shopify PUT 请求
func BuildShopifyPutRequest(ctx context.Context, url string, body io.Reader, accessToken string) (*http.Request, error) {
	return BuildShopifyRequest(ctx, http.MethodPut, url, body, accessToken)
}
