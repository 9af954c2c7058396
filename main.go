package main

import (
	"context"
	"log"
	"os"

	"askrelay/internal/api"
	"askrelay/internal/config"
	"askrelay/internal/service/gateway"
	"askrelay/internal/service/resolver"
	"askrelay/internal/storage"
	"askrelay/internal/store"

	"github.com/gin-gonic/gin"
)

func main() {
	cfgPath := os.Getenv("ASKRELAY_CONFIG")
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	dbType := os.Getenv("ASKRELAY_DB")
	if dbType == "" {
		dbType = "mysql"
	}
	log.Printf("dbType: %s\n", dbType)
	db, err := storage.Open(dbType, cfg)
	if err != nil {
		log.Fatalf("open database: %v", err)
	}
	defer db.Close()

	// Create necessary tables: faqs, conversations
	if err := storage.Migrate(db, dbType); err != nil {
		log.Fatalf("migrate database: %v", err)
	}

	gatewayService, err := gateway.NewService(context.Background(), cfg)
	if err != nil {
		log.Fatalf("init completion gateway: %v", err)
	}
	storeService := store.NewService(db)
	answerResolver := resolver.New(resolver.NewSQLStore(storeService), gatewayService, cfg.BasicConfig.SystemPrompt)

	handlers := api.NewHandler(answerResolver)

	router := gin.Default()
	handlers.RegisterRoutes(router)

	addr := cfg.BasicConfig.ServerAddress
	if addr == "" {
		addr = ":8000"
	}

	if err := router.Run(addr); err != nil {
		log.Fatalf("server stopped: %v", err)
	}
}
