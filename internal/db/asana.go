package db

import (
	"strings"

	"gorm.io/gorm"
)

// Asana 定义体式记录模型。
// CreatedBy 历史上既存过邮箱也存过用户数字 ID，两种形式都视为创建者身份；
// 为空表示系统内置体式，不接受任何用户上传。
type Asana struct {
	gorm.Model
	Name          string `gorm:"not null"`
	Description   string
	CreatedBy     string `gorm:"index"`
	IsUserManaged bool   `gorm:"default:true"`
	ImageCount    int    `gorm:"default:0"`
}

// IsSystem 判断是否为系统内置体式（无创建者）。
func (a Asana) IsSystem() bool {
	return strings.TrimSpace(a.CreatedBy) == ""
}
