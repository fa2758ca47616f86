package reconcile

import "strings"

// OccupancyState = สถานะการครองตำแหน่ง แปลงจาก FullName ครั้งเดียวตอนอ่านจาก DB
// ห้ามไปเทียบ string "ว่าง" ซ้ำที่ชั้นอื่นอีก
type OccupancyState string

const (
	Occupied OccupancyState = "occupied"
	Vacant   OccupancyState = "vacant"
	Reserved OccupancyState = "reserved" // ว่างแบบกันตำแหน่งไว้
)

// ค่า placeholder ที่ข้อมูลนำเข้าใช้แทน "ไม่มีผู้ครอง"
var vacantSentinels = map[string]OccupancyState{
	"ว่าง":                Vacant,
	"-":                  Vacant,
	"ว่าง (กันตำแหน่ง)":    Reserved,
	"ว่าง(กันตำแหน่ง)":     Reserved,
	"กันตำแหน่ง":          Reserved,
}

// Occupancy จำแนกสถานะจากชื่อผู้ครองตำแหน่ง
func Occupancy(fullName string) OccupancyState {
	name := strings.TrimSpace(fullName)
	if name == "" {
		return Vacant
	}
	if st, ok := vacantSentinels[name]; ok {
		return st
	}
	// เผื่อ variant ที่มีช่องว่างแทรก เช่น "ว่าง  (กันตำแหน่ง)"
	if strings.HasPrefix(name, "ว่าง") {
		if strings.Contains(name, "กันตำแหน่ง") {
			return Reserved
		}
		return Vacant
	}
	return Occupied
}
