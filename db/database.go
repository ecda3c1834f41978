package db

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"TaskLists/crud"

	"github.com/mattn/go-sqlite3"
)

// Database SQLite数据库句柄，由进程启动时创建并注入到各个存储适配器
type Database struct {
	sql *sql.DB
}

// Open 打开SQLite数据库并建表
func Open(path string) (*Database, error) {
	// 确保数据目录存在
	if dir := filepath.Dir(path); dir != "." && !strings.HasPrefix(path, "file:") {
		if _, err := os.Stat(dir); os.IsNotExist(err) {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return nil, fmt.Errorf("创建数据目录失败: %v", err)
			}
		}
	}

	// 打开外键约束，建表语句里的引用关系才会生效
	dsn := path
	if strings.Contains(dsn, "?") {
		dsn += "&_foreign_keys=on"
	} else {
		dsn += "?_foreign_keys=on"
	}

	conn, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("打开数据库失败: %v", err)
	}

	// 测试连接
	if err := conn.Ping(); err != nil {
		return nil, fmt.Errorf("数据库连接失败: %v", err)
	}

	d := &Database{sql: conn}
	if err := d.createTables(); err != nil {
		return nil, fmt.Errorf("创建表失败: %v", err)
	}

	return d, nil
}

// createTables 创建数据库表
func (d *Database) createTables() error {
	// 创建用户表
	userTable := `
	CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		email TEXT UNIQUE NOT NULL CHECK(email <> ''),
		password TEXT NOT NULL,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);
	`

	// 创建清单表
	listTable := `
	CREATE TABLE IF NOT EXISTS lists (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL CHECK(name <> '' AND length(name) <= 50),
		description TEXT,
		created_by TEXT NOT NULL,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL,
		FOREIGN KEY (created_by) REFERENCES users(id) ON DELETE CASCADE
	);
	`

	// 创建条目表，同一清单下条目名称唯一
	itemTable := `
	CREATE TABLE IF NOT EXISTS items (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL CHECK(name <> '' AND length(name) <= 50),
		status TEXT NOT NULL DEFAULT 'active' CHECK(status IN ('active', 'complete', 'pastdue')),
		notes TEXT,
		due TEXT,
		created_by TEXT NOT NULL,
		list_id TEXT NOT NULL,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL,
		UNIQUE(list_id, name),
		FOREIGN KEY (created_by) REFERENCES users(id) ON DELETE CASCADE,
		FOREIGN KEY (list_id) REFERENCES lists(id) ON DELETE CASCADE
	);
	`

	// 执行建表语句
	for _, table := range []string{userTable, listTable, itemTable} {
		if _, err := d.sql.Exec(table); err != nil {
			return err
		}
	}

	// 创建索引以提高按所有者查询的性能
	indexes := []string{
		"CREATE INDEX IF NOT EXISTS idx_lists_created_by ON lists(created_by)",
		"CREATE INDEX IF NOT EXISTS idx_items_created_by ON items(created_by)",
	}
	for _, index := range indexes {
		if _, err := d.sql.Exec(index); err != nil {
			return err
		}
	}

	return nil
}

// Close 关闭数据库连接
func (d *Database) Close() error {
	if d.sql != nil {
		return d.sql.Close()
	}
	return nil
}

// 将time.Time转换为字符串存储
func timeToString(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

// 将字符串转换为time.Time
func stringToTime(s string) (time.Time, error) {
	return time.Parse(time.RFC3339, s)
}

// classify 把底层数据库错误归入引擎的错误分类
// 未命中行归为不存在，约束冲突（非空、枚举、唯一键、外键）归为校验失败
func classify(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return crud.ErrNotFound
	}
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) && sqliteErr.Code == sqlite3.ErrConstraint {
		return fmt.Errorf("%w: %v", crud.ErrValidation, err)
	}
	return err
}
