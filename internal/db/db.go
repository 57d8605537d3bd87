package db

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// DB 是一个全局的数据库连接实例
var DB *gorm.DB

// Init 初始化数据库连接并执行自动迁移。
// databasePath 为空时将回退到默认值 poselog.db。
func Init(databasePath string) error {
	path := strings.TrimSpace(databasePath)
	if path == "" {
		path = "poselog.db"
	}

	if err := ensureParentDir(path); err != nil {
		return err
	}

	var err error
	DB, err = gorm.Open(sqlite.Open(path), &gorm.Config{})
	if err != nil {
		return err
	}

	// 自动迁移模式，为核心模型创建表
	if err = DB.AutoMigrate(
		&User{},
		&Asana{},
		&AsanaImage{},
	); err != nil {
		return err
	}

	return Backfill(DB)
}

// Backfill 将历史数据归一到当前模式：
// 旧版图片行通过 pose_id 关联体式记录，这里折叠进 asana_id；
// 同时重算漂移的 image_count 缓存。
func Backfill(gdb *gorm.DB) error {
	if err := gdb.Model(&AsanaImage{}).
		Where("asana_id IS NULL AND pose_id IS NOT NULL").
		Update("asana_id", gorm.Expr("pose_id")).Error; err != nil {
		return err
	}

	return gdb.Exec(`UPDATE asanas SET image_count = (
		SELECT COUNT(*) FROM asana_images
		WHERE asana_images.asana_id = asanas.id
	)`).Error
}

func ensureParentDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}

	info, err := os.Stat(dir)
	if err == nil {
		if !info.IsDir() {
			return errors.New("database path parent is not a directory")
		}
		return nil
	}

	if os.IsNotExist(err) {
		return os.MkdirAll(dir, 0o755)
	}

	return err
}
