package reconcile

import "strings"

// SlotKey = คีย์ประจำอัตรา (สังกัด + เลขตำแหน่ง)
// ใช้ struct แทนการต่อ string กันปัญหาตัวคั่นชนกับข้อมูลจริง
type SlotKey struct {
	Unit           string
	PositionNumber string
}

func NewSlotKey(unit, positionNumber string) SlotKey {
	return SlotKey{
		Unit:           strings.TrimSpace(unit),
		PositionNumber: strings.TrimSpace(positionNumber),
	}
}

// Valid = คีย์ใช้งานได้ต่อเมื่อมีเลขตำแหน่ง
func (k SlotKey) Valid() bool { return k.PositionNumber != "" }
