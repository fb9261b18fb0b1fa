package db

import (
	"Gin_postgres_redis_club_tool/models"
	"fmt"
	"log"
	"os"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

func ConnectDB() *gorm.DB {
	dsn := fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		os.Getenv("DB_HOST"),
		os.Getenv("DB_USER"),
		os.Getenv("DB_PASSWORD"),
		os.Getenv("DB_NAME"),
		os.Getenv("DB_PORT"),
	)

	var err error
	DB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatal("Failed to connect to database: ", err)
	}

	if err := Migrate(DB); err != nil {
		log.Fatal("Failed to migrate models: ", err)
	}
	log.Println("Database connected")
	return DB
}

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.User{}, &models.Credential{}, &models.Invite{},
		&models.Material{}, &models.Loan{}, &models.Activity{},
		&models.Notification{}, &models.Settings{}, &models.Adjustment{},
	); err != nil {
		return err
	}

	// Quantity Ledger 每次都按需求和，给未结清借用建局部索引
	if err := db.Exec(fmt.Sprintf(`
	  CREATE INDEX IF NOT EXISTS %s_open_by_material
	  ON %s (material_id)
	  WHERE state IN ('pending','active','pending_return');
	`, models.LoanTable, models.LoanTable)).Error; err != nil {
		return err
	}

	// 按活动找未结清借用（批量 pending_return / stale 统计）
	if err := db.Exec(fmt.Sprintf(`
	  CREATE INDEX IF NOT EXISTS %s_open_by_activity
	  ON %s (activity_id)
	  WHERE activity_id IS NOT NULL AND state IN ('pending','active','pending_return');
	`, models.LoanTable, models.LoanTable)).Error; err != nil {
		return err
	}

	// stale 扫描：in_progress 且已过结束时间
	if err := db.Exec(fmt.Sprintf(`
	  CREATE INDEX IF NOT EXISTS %s_inprogress_endat
	  ON %s (end_at)
	  WHERE status = 'in_progress';
	`, models.ActivityTable, models.ActivityTable)).Error; err != nil {
		return err
	}

	// 未读通知列表
	if err := db.Exec(fmt.Sprintf(`
	  CREATE INDEX IF NOT EXISTS %s_unread_by_user
	  ON %s (user_id, created_at DESC)
	  WHERE read_at IS NULL;
	`, models.NotificationTable, models.NotificationTable)).Error; err != nil {
		return err
	}

	return nil
}
