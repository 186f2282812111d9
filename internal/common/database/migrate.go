package database

import (
	"context"
	"fmt"

	"gorm.io/gorm"
)

// IsPostgres 判断连接是否为 PostgreSQL
func IsPostgres(db *gorm.DB) bool {
	return db.Dialector.Name() == "postgres"
}

// Migrate 自动迁移表结构；postgresStmts 只在 PostgreSQL 上执行（扩展、排他约束等）
func Migrate(ctx context.Context, db *gorm.DB, models []interface{}, postgresStmts ...string) error {
	if err := db.WithContext(ctx).AutoMigrate(models...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	if !IsPostgres(db) {
		return nil
	}
	for _, stmt := range postgresStmts {
		if err := db.WithContext(ctx).Exec(stmt).Error; err != nil {
			return fmt.Errorf("migrate statement: %w", err)
		}
	}
	return nil
}
