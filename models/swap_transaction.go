package models

import "time"

// ประเภทของรายการสับเปลี่ยน
const (
	SwapTypeTwoWay      = "two-way"
	SwapTypeThreeWay    = "three-way"
	SwapTypeTransfer    = "transfer"
	SwapTypePromotion   = "promotion-chain"
	SwapTypeBoardLayout = "board-layout" // แถว sentinel เก็บผังบอร์ด ไม่ใช่การย้ายจริง
)

// สถานะของรายการ
const (
	SwapStatusDraft     = "draft"
	SwapStatusCompleted = "completed"
	SwapStatusCancelled = "cancelled"
)

// SwapTransaction = การดำเนินการทางธุรการ 1 ครั้ง (สับเปลี่ยน/โอนย้าย/เลื่อนตำแหน่ง)
// ประกอบด้วย MovementRecord ตั้งแต่ 1 รายการขึ้นไป
type SwapTransaction struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	Year        string `gorm:"size:4;not null;index" json:"year"` // พ.ศ.
	SwapType    string `gorm:"size:20;not null;index" json:"swap_type"`
	Status      string `gorm:"size:20;not null;default:'draft'" json:"status"`
	GroupNumber string `gorm:"size:30" json:"group_number"`    // รหัสลำดับกลุ่มที่แสดงต่อผู้ใช้
	Notes       string `gorm:"type:text" json:"notes"`         // board-layout: เก็บ JSON ผังเลน

	Details []MovementRecord `gorm:"foreignKey:TransactionID;constraint:OnDelete:CASCADE" json:"details,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// board-layout ต้องมีได้ไม่เกิน 1 แถวต่อปี — บังคับด้วยการลบแล้วสร้างใหม่ทุกครั้งที่บันทึก
