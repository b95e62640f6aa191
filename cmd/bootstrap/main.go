package main

import (
	"context"
	"fmt"
	"log"

	"github.com/joho/godotenv"

	"adwise-ai-api/internal/config"
	"adwise-ai-api/internal/domain/entity"
	"adwise-ai-api/internal/wire"
)

func main() {
	_ = godotenv.Load()

	fmt.Println("Starting system bootstrap...")

	// 1. 加载配置
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	ctx := context.Background()

	// 2. 初始化数据层（仅 PostgreSQL）
	dataLayer, cleanup, err := wire.InitializePostgresOnly(ctx, cfg)
	if err != nil {
		log.Fatalf("failed to initialize data layer: %v", err)
	}
	defer cleanup()

	// 3. 建表
	fmt.Println("Running schema migration...")
	if err := dataLayer.PgClient.DB().WithContext(ctx).AutoMigrate(
		&entity.PlanGeneration{},
	); err != nil {
		log.Fatalf("failed to migrate schema: %v", err)
	}

	// 4. 连通性确认
	if err := dataLayer.PgClient.Ping(ctx); err != nil {
		log.Fatalf("failed to ping database: %v", err)
	}

	fmt.Println("Bootstrap completed.")
}
