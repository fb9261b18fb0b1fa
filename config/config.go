package config

import (
	"log"
	"os"

	"github.com/joho/godotenv"
)

// LoadEnv 读 .env（没有就用进程环境变量，比如容器里）
func LoadEnv() {
	if _, err := os.Stat(".env"); err != nil {
		return
	}
	if err := godotenv.Load(); err != nil {
		log.Printf("load .env failed: %v", err)
	}
}
