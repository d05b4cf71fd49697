package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
)

type Database struct {
	Conn *sql.DB
}

func NewDatabase(dsn string) (*Database, error) {
	conn, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := conn.PingContext(ctx); err != nil {
		return nil, err
	}
	conn.SetMaxOpenConns(25)
	conn.SetMaxIdleConns(25)
	conn.SetConnMaxLifetime(5 * time.Minute)
	return &Database{Conn: conn}, nil
}

func (d *Database) AutoMigrate() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS users (
            id SERIAL PRIMARY KEY,
            name VARCHAR(100) NOT NULL,
            email VARCHAR(255) UNIQUE NOT NULL,
            password VARCHAR(255) NOT NULL,
            role VARCHAR(10) CHECK (role IN ('DRIVER', 'SENDER', 'ADMIN')) NOT NULL,
            status VARCHAR(10) CHECK (status IN ('PENDING', 'APPROVED', 'REJECTED')) DEFAULT 'PENDING',
            created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
        )`,

		`CREATE TABLE IF NOT EXISTS trucks (
            user_id INT PRIMARY KEY REFERENCES users(id) ON DELETE CASCADE,
            driver_license VARCHAR(50) NOT NULL,
            license_plate VARCHAR(20) NOT NULL,
            model VARCHAR(50) NOT NULL,
            current_status VARCHAR(10) CHECK (current_status IN ('IDLE', 'READY', 'BUSY')) DEFAULT 'IDLE'
        )`,

		`CREATE TABLE IF NOT EXISTS organizations (
            user_id INT PRIMARY KEY REFERENCES users(id) ON DELETE CASCADE,
            name VARCHAR(100) NOT NULL,
            reg_number VARCHAR(50) NOT NULL,
            headquarters VARCHAR(100) NOT NULL
        )`,

		`CREATE TABLE IF NOT EXISTS locations (
            id SERIAL PRIMARY KEY,
            driver_id VARCHAR(64) NOT NULL,
            lat DOUBLE PRECISION NOT NULL,
            lng DOUBLE PRECISION NOT NULL,
            recorded_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
        )`,

		`CREATE INDEX IF NOT EXISTS idx_locations_driver_time
            ON locations (driver_id, recorded_at DESC)`,
	}

	for _, query := range queries {
		_, err := d.Conn.Exec(query)
		if err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}

	return nil
}
