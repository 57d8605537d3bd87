package main

import (
	"fmt"
	"log"

	"github.com/poselog/internal/config"
	"github.com/poselog/internal/db"
)

// 演示数据生成器：创建一个演示账号、若干系统内置体式和用户自建体式。
func main() {
	cfg := config.Load()
	if err := db.Init(cfg.DatabasePath); err != nil {
		log.Fatal("数据库初始化失败:", err)
	}

	fmt.Println("开始生成演示数据...")

	if err := db.EnsureUser("demo", "demo@example.com", "demo123"); err != nil {
		log.Fatal("创建演示用户失败:", err)
	}

	createSystemAsanas()
	createDemoAsanas()

	fmt.Println("演示数据生成完成！")
	fmt.Println("用户: demo (密码: demo123)")
}

// 系统内置体式没有创建者，任何人都不可上传图片。
func createSystemAsanas() {
	names := []string{"Tadasana", "Savasana", "Balasana"}
	for _, name := range names {
		asana := db.Asana{
			Name:          name,
			Description:   fmt.Sprintf("系统内置体式 **%s** 的参考说明。", name),
			CreatedBy:     "",
			IsUserManaged: false,
		}
		if err := db.DB.Where("name = ?", name).FirstOrCreate(&asana).Error; err != nil {
			log.Printf("创建系统体式 %s 失败: %v", name, err)
		}
	}
	fmt.Printf("系统体式: %d 个\n", len(names))
}

func createDemoAsanas() {
	names := []string{"Vrksasana", "Virabhadrasana II", "Trikonasana"}
	for _, name := range names {
		asana := db.Asana{
			Name:          name,
			Description:   fmt.Sprintf("练习笔记：%s。\n\n- 保持呼吸\n- 注意髋部对齐", name),
			CreatedBy:     "demo@example.com",
			IsUserManaged: true,
		}
		if err := db.DB.Where("name = ?", name).FirstOrCreate(&asana).Error; err != nil {
			log.Printf("创建体式 %s 失败: %v", name, err)
		}
	}
	fmt.Printf("演示体式: %d 个\n", len(names))
}
