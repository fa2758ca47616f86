// scripts/create_admin.go — สร้างบัญชีผู้ดูแลระบบจาก env
//
//	ADMIN_USERNAME=... ADMIN_PASSWORD=... go run scripts/create_admin.go
//
// ถ้ามี username นี้อยู่แล้วจะรีเซ็ตรหัสผ่านให้แทน (ใช้ตอนลืมรหัส)
package main

import (
	"log"
	"os"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/ballnaha/p-post-sub003/config"
	"github.com/ballnaha/p-post-sub003/database"
	"github.com/ballnaha/p-post-sub003/models"
)

func main() {
	// config.Load() อ่าน .env ให้ด้วย เลยตั้ง ADMIN_* ใน .env ได้เหมือนกัน
	cfg := config.Load()
	database.Connect(cfg)

	username := os.Getenv("ADMIN_USERNAME")
	password := os.Getenv("ADMIN_PASSWORD")
	if username == "" || password == "" {
		log.Fatal("ต้องตั้ง ADMIN_USERNAME และ ADMIN_PASSWORD ก่อนรัน")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("hash password: %v", err)
	}

	var u models.User
	err = database.DB.Where("username = ?", username).First(&u).Error
	switch {
	case err == gorm.ErrRecordNotFound:
		u = models.User{Username: username, Password: string(hashed), Role: "admin"}
		if err := database.DB.Create(&u).Error; err != nil {
			log.Fatalf("create admin: %v", err)
		}
		log.Printf("สร้างบัญชี %s (role=admin) เรียบร้อย", username)
	case err != nil:
		log.Fatalf("query users: %v", err)
	default:
		if err := database.DB.Model(&u).Update("password", string(hashed)).Error; err != nil {
			log.Fatalf("reset password: %v", err)
		}
		log.Printf("รีเซ็ตรหัสผ่านของ %s เรียบร้อย", username)
	}
}
