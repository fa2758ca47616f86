package models

import "time"

// MovementRecord = การย้าย 1 ก้าวของคน 1 คน ภายใน transaction เดียว
// ฟิลด์บุคคลเป็น snapshot ณ เวลาทำรายการ (ไม่ sync กับบัญชีตำแหน่งย้อนหลัง)
type MovementRecord struct {
	ID            uint `gorm:"primaryKey" json:"id"`
	TransactionID uint `gorm:"not null;index" json:"transaction_id"`
	Sequence      int  `gorm:"not null" json:"sequence"` // ลำดับภายใน transaction

	// ฝั่งต้นทาง
	PersonnelID *uint  `gorm:"index" json:"personnel_id"` // null = placeholder ไม่มีตัวคนจริง
	NationalID  string `gorm:"size:13;index" json:"national_id"`
	FullName    string `gorm:"size:120" json:"full_name"`
	Rank        string `gorm:"size:40" json:"rank"`
	BirthDate   string `gorm:"size:10" json:"birth_date"`
	Seniority   string `gorm:"size:40" json:"seniority"`
	Education   string `gorm:"size:120" json:"education"`

	FromUnit           string `gorm:"size:80" json:"from_unit"`
	FromPositionNumber string `gorm:"size:20" json:"from_position_number"`
	FromPosition       string `gorm:"size:120" json:"from_position"`

	// ฝั่งปลายทาง
	ToUnit           string `gorm:"size:80" json:"to_unit"`
	ToPositionNumber string `gorm:"size:20" json:"to_position_number"`
	ToPosition       string `gorm:"size:120" json:"to_position"`
	ToPosCodeID      *uint  `json:"to_pos_code_id"`

	Supporter string `gorm:"size:120" json:"supporter"` // ผู้สนับสนุน
	Reason    string `gorm:"size:255" json:"reason"`    // เหตุผลการย้าย

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
