package database

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"

	"github.com/abm5616/farmcloud/config"
)

// DB is the shared connection pool, initialised once at startup.
var DB *sql.DB

func InitDB() error {
	cfg := config.LoadConfig()
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?parseTime=true&charset=utf8mb4",
		cfg.DBUser, cfg.DBPassword, cfg.DBHost, cfg.DBPort, cfg.DBName)

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return fmt.Errorf("ping database: %w", err)
	}
	if err := migrate(db); err != nil {
		return fmt.Errorf("migrate schema: %w", err)
	}

	DB = db
	return nil
}

func CloseDB() {
	if DB != nil {
		if err := DB.Close(); err != nil {
			return
		}
	}
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS customers (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		full_name VARCHAR(200) NOT NULL,
		phone_number VARCHAR(15) NOT NULL UNIQUE,
		email VARCHAR(254) NOT NULL DEFAULT '',
		address_line1 VARCHAR(255) NOT NULL DEFAULT '',
		address_line2 VARCHAR(255) NOT NULL DEFAULT '',
		city VARCHAR(100) NOT NULL DEFAULT '',
		customer_type VARCHAR(20) NOT NULL DEFAULT 'INDIVIDUAL',
		is_active TINYINT(1) NOT NULL DEFAULT 1,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS animals (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		tag_number VARCHAR(50) NOT NULL UNIQUE,
		animal_type VARCHAR(10) NOT NULL,
		breed_name VARCHAR(100) NOT NULL DEFAULT '',
		weight DECIMAL(6,2) NOT NULL DEFAULT 0,
		age_months INT NOT NULL DEFAULT 0,
		status VARCHAR(20) NOT NULL DEFAULT 'AVAILABLE',
		price DECIMAL(10,2) NOT NULL DEFAULT 0,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		INDEX idx_animals_status_type (status, animal_type)
	)`,
	`CREATE TABLE IF NOT EXISTS offers (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		name VARCHAR(200) NOT NULL,
		offer_type VARCHAR(20) NOT NULL,
		animal_type VARCHAR(10) NOT NULL DEFAULT '',
		price DECIMAL(10,2) NOT NULL DEFAULT 0,
		is_active TINYINT(1) NOT NULL DEFAULT 1,
		stock_quantity INT NOT NULL DEFAULT 0,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS orders (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		order_number VARCHAR(50) NOT NULL UNIQUE,
		customer_id BIGINT NOT NULL,
		status VARCHAR(20) NOT NULL DEFAULT 'PENDING',
		delivery_method VARCHAR(20) NOT NULL,
		delivery_address TEXT NOT NULL,
		delivery_date DATE NULL,
		delivery_time_slot VARCHAR(50) NOT NULL DEFAULT '',
		delivery_notes TEXT NOT NULL,
		customer_notes TEXT NOT NULL,
		internal_notes TEXT NOT NULL,
		payment_status VARCHAR(20) NOT NULL DEFAULT 'UNPAID',
		payment_method VARCHAR(20) NULL,
		subtotal DECIMAL(10,2) NOT NULL DEFAULT 0,
		delivery_fee DECIMAL(8,2) NOT NULL DEFAULT 0,
		discount_amount DECIMAL(8,2) NOT NULL DEFAULT 0,
		total_amount DECIMAL(10,2) NOT NULL DEFAULT 0,
		amount_paid DECIMAL(10,2) NOT NULL DEFAULT 0,
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL,
		confirmed_at DATETIME NULL,
		completed_at DATETIME NULL,
		INDEX idx_orders_status_date (status, delivery_date),
		INDEX idx_orders_customer (customer_id, created_at)
	)`,
	`CREATE TABLE IF NOT EXISTS order_items (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		order_id BIGINT NOT NULL,
		animal_id BIGINT NULL,
		offer_id BIGINT NULL,
		item_name VARCHAR(200) NOT NULL,
		quantity INT NOT NULL,
		unit_price DECIMAL(10,2) NOT NULL,
		total_price DECIMAL(10,2) NOT NULL,
		INDEX idx_order_items_order (order_id)
	)`,
}

func migrate(db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}
