package kv

import (
	"context"
	"database/sql"
	"time"

	"github.com/IamGODofNEWWORLD/MeShare/internal/common"
	_ "github.com/go-sql-driver/mysql"
)

// MySQL 把五个集合键存入单表
type MySQL struct {
	db *sql.DB
}

// NewMySQL 连接数据库并建表，dsn 形如 user:pass@tcp(host:port)/dbname
func NewMySQL(dsn string) (*MySQL, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, err
	}

	// 测试数据库连接
	if err := common.WithRetry(db.Ping, 3); err != nil {
		db.Close()
		return nil, err
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := migrateMySQL(db); err != nil {
		db.Close()
		return nil, err
	}

	return &MySQL{db: db}, nil
}

func migrateMySQL(db *sql.DB) error {
	query := `
	CREATE TABLE IF NOT EXISTS kv_entries (
		k VARCHAR(64) PRIMARY KEY,
		v MEDIUMTEXT NOT NULL,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP
	) CHARACTER SET utf8mb4`
	_, err := db.Exec(query)
	return err
}

func (s *MySQL) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT v FROM kv_entries WHERE k = ?`, key).Scan(&value)
	if err != nil {
		if err == sql.ErrNoRows {
			return "", false, nil
		}
		return "", false, err
	}
	return value, true, nil
}

func (s *MySQL) Set(ctx context.Context, key, value string) error {
	query := `
	INSERT INTO kv_entries (k, v) VALUES (?, ?)
	ON DUPLICATE KEY UPDATE v = VALUES(v)`
	_, err := s.db.ExecContext(ctx, query, key, value)
	return err
}

// Close 关闭底层数据库连接
func (s *MySQL) Close() error {
	return s.db.Close()
}
