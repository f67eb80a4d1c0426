package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// ==================== 全局配置 ====================

// Config 进程级配置
// 注意：Shopify 租户凭证存在 shops 表里，这里只有基础设施配置
// 和一条遗留的单店环境变量通道（冒烟测试用）
type Config struct {
	Port        string
	Environment string

	Database DatabaseConfig
	Redis    RedisConfig

	// 遗留通道：环境变量配置的单店连接
	LegacyShopify LegacyShopifyConfig

	LogLevel string
}

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// RedisConfig Redis 配置（勾选状态缓存 / 同步冷却）
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// LegacyShopifyConfig 遗留单店连接配置
type LegacyShopifyConfig struct {
	ShopDomain  string
	AccessToken string
	APIVersion  string
}

// DSN 拼接 Postgres 连接串
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		d.Host, d.User, d.Password, d.DBName, d.Port, d.SSLMode)
}

// IsProduction 是否生产环境
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// Load 加载配置
// 优先级：环境变量 > .env 文件 > 默认值
func Load() (*Config, error) {
	viper.SetConfigType("env")
	viper.SetConfigName(".env")
	viper.AddConfigPath(".")
	viper.AddConfigPath("..")

	viper.SetDefault("PORT", "8080")
	viper.SetDefault("ENVIRONMENT", "development")
	viper.SetDefault("DB_HOST", "localhost")
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_USER", "postgres")
	viper.SetDefault("DB_PASSWORD", "postgres")
	viper.SetDefault("DB_NAME", "orderpro")
	viper.SetDefault("DB_SSLMODE", "disable")
	viper.SetDefault("REDIS_ADDR", "localhost:6379")
	viper.SetDefault("REDIS_DB", 0)
	viper.SetDefault("SHOPIFY_API_VERSION", "2024-01")
	viper.SetDefault("LOG_LEVEL", "info")

	viper.AutomaticEnv()

	// .env 不存在不算错误，直接用环境变量
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("读取配置文件失败: %w", err)
		}
	}

	cfg := &Config{
		Port:        viper.GetString("PORT"),
		Environment: viper.GetString("ENVIRONMENT"),
		Database: DatabaseConfig{
			Host:     viper.GetString("DB_HOST"),
			Port:     viper.GetString("DB_PORT"),
			User:     viper.GetString("DB_USER"),
			Password: viper.GetString("DB_PASSWORD"),
			DBName:   viper.GetString("DB_NAME"),
			SSLMode:  viper.GetString("DB_SSLMODE"),
		},
		Redis: RedisConfig{
			Addr:     viper.GetString("REDIS_ADDR"),
			Password: viper.GetString("REDIS_PASSWORD"),
			DB:       viper.GetInt("REDIS_DB"),
		},
		LegacyShopify: LegacyShopifyConfig{
			ShopDomain:  viper.GetString("SHOPIFY_SHOP_DOMAIN"),
			AccessToken: viper.GetString("SHOPIFY_ACCESS_TOKEN"),
			APIVersion:  viper.GetString("SHOPIFY_API_VERSION"),
		},
		LogLevel: viper.GetString("LOG_LEVEL"),
	}

	return cfg, nil
}
