package reconcile

import (
	"errors"
	"strings"

	"github.com/ballnaha/p-post-sub003/models"
)

// ErrMalformedThreeWay = transaction สามเส้าที่จำนวน record ไม่เท่า 3
// และจับคู่ตามเลขตำแหน่งไม่ได้
var ErrMalformedThreeWay = errors.New("three-way transaction does not have exactly 3 records")

// IndexByTransaction จัดกลุ่ม movement ตาม transaction ไว้ใช้กับ ResolveReplacements
func IndexByTransaction(movements []Movement) map[uint][]*Movement {
	out := map[uint][]*Movement{}
	for i := range movements {
		m := &movements[i]
		out[m.TransactionID] = append(out[m.TransactionID], m)
	}
	return out
}

// ResolveReplacements หา "คนที่จะมาแทน" ให้แถวในหน้าปัจจุบัน
// คือ record ใน transaction เดียวกันที่ต้นทางตรงกับปลายทางของแถวนี้
// ทำเฉพาะหน้าที่แสดง ไม่ทำทั้งชุด
func ResolveReplacements(page []Row, byTx map[uint][]*Movement) {
	for i := range page {
		r := &page[i]
		if !r.HasSwapped || r.TransactionID == nil || strings.TrimSpace(r.ToPositionNumber) == "" {
			continue
		}
		peers := byTx[*r.TransactionID]
		m, err := findReplacement(r, peers)
		if err != nil {
			r.ReplacementWarning = err.Error()
			continue
		}
		if m != nil {
			r.Replacement = &ReplacementInfo{
				FullName:           m.FullName,
				Rank:               m.Rank,
				NationalID:         m.NationalID,
				FromUnit:           m.FromUnit,
				FromPositionNumber: m.FromPositionNumber,
				FromPosition:       m.FromPosition,
			}
		}
	}
}

func findReplacement(r *Row, peers []*Movement) (*Movement, error) {
	// จับคู่ตรง: ต้นทางของเพื่อนร่วม transaction = ปลายทางของแถวนี้
	for _, m := range peers {
		if m.ID == r.MovementID {
			continue
		}
		if strings.TrimSpace(m.FromPositionNumber) != "" && m.FromPositionNumber == r.ToPositionNumber {
			return m, nil
		}
	}
	// fallback เทียบชื่อตำแหน่ง กรณี snapshot ไม่มีเลข
	for _, m := range peers {
		if m.ID == r.MovementID {
			continue
		}
		if strings.TrimSpace(m.FromPosition) != "" && m.FromPosition == r.ToPosition {
			return m, nil
		}
	}
	if r.SwapType != models.SwapTypeThreeWay {
		return nil, nil
	}
	// สามเส้าข้อมูล snapshot เพี้ยน: เหลือ 2 record ตัวที่ "ไม่ได้" กำลังเข้ามา
	// แทนที่แถวนี้ คือคนที่จะไปแทนเก้าอี้ที่แถวนี้สละ
	if len(peers) != 3 {
		return nil, ErrMalformedThreeWay
	}
	others := make([]*Movement, 0, 2)
	for _, m := range peers {
		if m.ID != r.MovementID {
			others = append(others, m)
		}
	}
	if len(others) != 2 {
		return nil, ErrMalformedThreeWay
	}
	if others[0].ToPositionNumber == r.FromPositionNumber {
		return others[1], nil
	}
	return others[0], nil
}
