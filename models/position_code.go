package models

import "time"

// PositionCode = ตารางอ้างอิงรหัสตำแหน่ง
// RankLevel ตัวเลขน้อย = ระดับสูงกว่า (1 คือสูงสุด)
type PositionCode struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	Code      string `gorm:"size:20;uniqueIndex;not null" json:"code"`
	Name      string `gorm:"size:120;not null" json:"name"`
	RankLevel int    `gorm:"not null" json:"rank_level"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
