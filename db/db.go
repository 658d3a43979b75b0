package db

import (
	"fmt"
	"log"
	"os"

	"toollend/models"

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
		&models.User{},
		&models.Invite{},
		&models.Item{},
		&models.Inventory{},
		&models.BorrowReceipt{},
		&models.BorrowLineItem{},
		&models.ReturnCondition{},
	); err != nil {
		return err
	}

	// 借用中的收据是首页热点查询
	if err := db.Exec(fmt.Sprintf(`
	  CREATE INDEX IF NOT EXISTS %s_open_user_due
	  ON %s (user_id, due_at)
	  WHERE status = 'active';
	`, models.ReceiptTable, models.ReceiptTable)).Error; err != nil {
		return err
	}

	// 归还记录按收据时间序读取
	if err := db.Exec(fmt.Sprintf(`
	  CREATE INDEX IF NOT EXISTS %s_receipt_created
	  ON %s (receipt_id, created_at);
	`, models.ReturnConditionTable, models.ReturnConditionTable)).Error; err != nil {
		return err
	}

	return nil
}
