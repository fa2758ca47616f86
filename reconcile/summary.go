package reconcile

import (
	"strings"

	"github.com/ballnaha/p-post-sub003/models"
)

// Summary = ตัวเลขสรุปนับจากชุดผลลัพธ์เต็ม (ก่อนแบ่งหน้า)
type Summary struct {
	TotalPersonnel int `json:"totalPersonnel"`
	Promoted       int `json:"promoted"` // rank_level ปลายทางต่ำกว่าต้นทาง = ได้เลื่อน
	TwoWaySwap     int `json:"twoWaySwap"`
	ThreeWaySwap   int `json:"threeWaySwap"`
	Transfer       int `json:"transfer"`
	PromotionChain int `json:"promotionChain"`
	TotalVacant    int `json:"totalVacant"`   // อัตราว่างทั้งหมดก่อนหัก movement
	FilledVacant   int `json:"filledVacant"`  // อัตราว่างที่มีคนกำลังเข้า
	NoDestination  int `json:"noDestination"` // แถวที่ยังไม่มีปลายทาง
}

// summarize นับสรุปจาก rows ที่ผ่านฟิลเตอร์แล้ว
// rankLevels = posCodeId -> rank_level (เลขน้อย = ระดับสูงกว่า)
func summarize(rows []Row, rankLevels map[uint]int) Summary {
	var s Summary
	s.TotalPersonnel = len(rows)
	for i := range rows {
		r := &rows[i]
		switch r.SwapType {
		case models.SwapTypeTwoWay:
			s.TwoWaySwap++
		case models.SwapTypeThreeWay:
			s.ThreeWaySwap++
		case models.SwapTypeTransfer:
			s.Transfer++
		case models.SwapTypePromotion:
			s.PromotionChain++
		}
		if strings.TrimSpace(r.ToPositionNumber) == "" {
			s.NoDestination++
		}
		if isPromotion(r, rankLevels) {
			s.Promoted++
		}
	}
	return s
}

func isPromotion(r *Row, rankLevels map[uint]int) bool {
	if r.ToPosCodeID == nil || r.PosCodeID == nil {
		return false
	}
	to, okTo := rankLevels[*r.ToPosCodeID]
	from, okFrom := rankLevels[*r.PosCodeID]
	return okTo && okFrom && to < from
}
