package main

import (
	"fmt"
	"log"
	"time"

	"github.com/go-resty/resty/v2"

	"orderpro_v1_202608/pkg/config"
)

// 遗留的单店连通性冒烟测试
// 用环境变量里的凭证直连 Shopify Admin API，验证域名 / token / 版本号可用
// 正式服务入口在 cmd/main.go
func main() {
	fmt.Println(">>> 开始执行连通性测试...")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ 配置加载失败: %v", err)
	}

	legacy := cfg.LegacyShopify
	if legacy.ShopDomain == "" || legacy.AccessToken == "" {
		log.Fatal("❌ 缺少 SHOPIFY_SHOP_DOMAIN / SHOPIFY_ACCESS_TOKEN 环境变量")
	}
	fmt.Printf("✅ 读取配置成功: [Domain: %s] [Version: %s] [Token长度: %d]\n",
		legacy.ShopDomain, legacy.APIVersion, len(legacy.AccessToken))

	client := resty.New()
	client.SetTimeout(10 * time.Second)
	client.SetRetryCount(3)
	client.SetHeader("X-Shopify-Access-Token", legacy.AccessToken)

	url := fmt.Sprintf("https://%s/admin/api/%s/shop.json", legacy.ShopDomain, legacy.APIVersion)

	var result struct {
		Shop struct {
			ID       int64  `json:"id"`
			Name     string `json:"name"`
			Currency string `json:"currency"`
			Domain   string `json:"myshopify_domain"`
		} `json:"shop"`
	}

	resp, err := client.R().SetResult(&result).Get(url)
	if err != nil {
		log.Fatalf("❌ 请求失败: %v", err)
	}
	if resp.IsError() {
		log.Fatalf("❌ Shopify 返回错误 [%d]: %s", resp.StatusCode(), resp.String())
	}

	fmt.Printf("✅ 连接成功: [ID: %d] [Name: %s] [Currency: %s]\n",
		result.Shop.ID, result.Shop.Name, result.Shop.Currency)
	fmt.Println(">>> 连通性测试完成")
}
