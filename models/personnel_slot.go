package models

import "time"

// PersonnelSlot = ตำแหน่งที่ได้รับอนุมัติ 1 อัตรา ต่อ 1 ปีงบประมาณ
// ช่องว่าง (ว่าง/กันตำแหน่ง) ดูจาก FullName เท่านั้น ไม่มี boolean แยก
type PersonnelSlot struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Year string `gorm:"size:4;not null;index" json:"year"` // พ.ศ. เช่น "2568"

	Unit           string `gorm:"size:80;not null;index:idx_slot_unit_pos" json:"unit"`
	PositionNumber string `gorm:"size:20;not null;index:idx_slot_unit_pos" json:"position_number"` // เลขตำแหน่ง (คีย์ถาวรของอัตรา)
	NoID           string `gorm:"size:10" json:"no_id"`                                            // ลำดับในบัญชี (ใช้เรียงผล)

	FullName   string `gorm:"size:120" json:"full_name"` // "ว่าง" / "ว่าง (กันตำแหน่ง)" = ไม่มีผู้ครอง
	Rank       string `gorm:"size:40" json:"rank"`
	NationalID string `gorm:"size:13" json:"national_id"`

	PositionTitle string `gorm:"size:120" json:"position_title"`
	PosCodeID     *uint  `gorm:"index" json:"pos_code_id"` // FK -> position_codes.id (เชื่อมแบบ logic)
	Seniority     string `gorm:"size:40" json:"seniority"`
	Age           string `gorm:"size:10" json:"age"`
	Education     string `gorm:"size:120" json:"education"`

	BirthDate   string `gorm:"size:10" json:"birth_date"`   // YYYY-MM-DD
	EnrollDate  string `gorm:"size:10" json:"enroll_date"`  // วันบรรจุ
	AppointDate string `gorm:"size:10" json:"appoint_date"` // วันดำรงตำแหน่งล่าสุด
	RetireDate  string `gorm:"size:10" json:"retire_date"`

	TrainingCourse string `gorm:"size:120" json:"training_course"`
	TrainingYear   string `gorm:"size:4" json:"training_year"`

	Active bool `gorm:"not null;default:true" json:"active"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// หมายเหตุ: (year, unit, position_number) ต้องไม่ซ้ำในแถวที่ active
// บังคับที่ชั้น handler ตอนสร้าง/แก้ไข (ข้อมูลนำเข้าเก่าอาจมีซ้ำ จึงไม่ใส่ unique index)
