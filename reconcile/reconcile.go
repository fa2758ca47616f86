package reconcile

import (
	"strings"

	"github.com/ballnaha/p-post-sub003/models"
)

// Movement = MovementRecord พร้อมข้อมูลหัว transaction ที่ต้องใช้ตอนแสดงผล
type Movement struct {
	models.MovementRecord
	SwapType    string
	GroupNumber string
}

// Options = ฟิลเตอร์ของการกระทบยอด (unit/posCodeId กรองที่ชั้น storage แล้ว)
type Options struct {
	Status   string // all | vacant | reserved | occupied
	SwapType string // all | none | two-way | three-way | transfer | promotion-chain
	Search   string // ค้นหาแบบ substring ไม่สนตัวพิมพ์ ทั้งฝั่งผู้ครองและฝั่งปลายทาง
}

// ReplacementInfo = คนที่จะเข้ามาแทนในเก้าอี้ที่แถวนี้กำลังจะสละ
type ReplacementInfo struct {
	FullName           string `json:"fullName"`
	Rank               string `json:"rank"`
	NationalID         string `json:"nationalId"`
	FromUnit           string `json:"fromUnit"`
	FromPositionNumber string `json:"fromPositionNumber"`
	FromPosition       string `json:"fromPosition"`
}

// Row = สถานะปัจจุบันของอัตรา 1 แถว (ผลลัพธ์ ไม่ persist)
type Row struct {
	SlotID         uint           `json:"slotId"`
	NoID           string         `json:"noId"`
	Unit           string         `json:"unit"`
	PositionNumber string         `json:"positionNumber"`
	Position       string         `json:"position"`
	PosCodeID      *uint          `json:"posCodeId"`
	Occupancy      OccupancyState `json:"occupancy"`
	FilledVacancy  bool           `json:"filledVacancy"` // อัตราว่างที่มีคนกำลังเข้ามา

	FullName    string `json:"fullName"`
	Rank        string `json:"rank"`
	NationalID  string `json:"nationalId"`
	Seniority   string `json:"seniority"`
	Age         string `json:"age"`
	Education   string `json:"education"`
	BirthDate   string `json:"birthDate"`
	EnrollDate  string `json:"enrollDate"`
	AppointDate string `json:"appointDate"`
	RetireDate  string `json:"retireDate"`

	HasSwapped    bool   `json:"hasSwapped"`
	SwapType      string `json:"swapType,omitempty"`
	TransactionID *uint  `json:"transactionId,omitempty"`
	GroupNumber   string `json:"groupNumber,omitempty"`

	FromUnit           string `json:"fromUnit"`
	FromPositionNumber string `json:"fromPositionNumber"`
	FromPosition       string `json:"fromPosition"`
	ToUnit             string `json:"toUnit,omitempty"`
	ToPositionNumber   string `json:"toPositionNumber,omitempty"`
	ToPosition         string `json:"toPosition,omitempty"`
	ToPosCodeID        *uint  `json:"toPosCodeId,omitempty"`

	Supporter string `json:"supporter,omitempty"`
	Reason    string `json:"reason,omitempty"`

	Replacement        *ReplacementInfo `json:"replacement,omitempty"`
	ReplacementWarning string           `json:"replacementWarning,omitempty"`

	// ใช้ภายในตอน resolve replacement เพื่อไม่จับคู่กับ record ของตัวเอง
	MovementID uint `json:"-"`
}

// indexes = ดัชนีค้น movement สามทาง สร้างครั้งเดียวต่อการกระทบยอด
type indexes struct {
	byPersonnel map[uint]*Movement
	byNational  map[string]*Movement
	claimedDest map[SlotKey]*Movement // ปลายทางที่มีคนกำลังเข้า
	byTx        map[uint][]*Movement
}

func buildIndexes(movements []Movement) indexes {
	ix := indexes{
		byPersonnel: map[uint]*Movement{},
		byNational:  map[string]*Movement{},
		claimedDest: map[SlotKey]*Movement{},
		byTx:        map[uint][]*Movement{},
	}
	for i := range movements {
		m := &movements[i]
		if m.PersonnelID != nil && *m.PersonnelID > 0 {
			ix.byPersonnel[*m.PersonnelID] = m
		}
		if nid := strings.TrimSpace(m.NationalID); nid != "" {
			ix.byNational[nid] = m
		}
		if k := NewSlotKey(m.ToUnit, m.ToPositionNumber); k.Valid() {
			ix.claimedDest[k] = m
		}
		ix.byTx[m.TransactionID] = append(ix.byTx[m.TransactionID], m)
	}
	return ix
}

// movementForSlot หา movement ของคนที่ครองอัตรานี้ (personnelId ก่อน เลขบัตรเป็น fallback)
func (ix indexes) movementForSlot(slot *models.PersonnelSlot) *Movement {
	if m, ok := ix.byPersonnel[slot.ID]; ok {
		return m
	}
	if nid := strings.TrimSpace(slot.NationalID); nid != "" {
		if m, ok := ix.byNational[nid]; ok {
			return m
		}
	}
	return nil
}

// Reconcile กระทบยอดบัญชีตำแหน่งกับ movement log แล้วคืนสถานะปัจจุบันต่ออัตรา
// พร้อม summary ที่นับจากชุดผลลัพธ์เต็มก่อนแบ่งหน้า
func Reconcile(slots []models.PersonnelSlot, movements []Movement, opts Options, rankLevels map[uint]int) ([]Row, Summary) {
	ix := buildIndexes(movements)

	var (
		rows         []Row
		totalVacant  int
		filledVacant int
	)

	for i := range slots {
		slot := &slots[i]
		occ := Occupancy(slot.FullName)

		if !matchStatus(opts.Status, occ) {
			continue
		}
		if occ != Occupied {
			totalVacant++
		}

		switch occ {
		case Occupied:
			row := rowFromSlot(slot, occ)
			if m := ix.movementForSlot(slot); m != nil {
				decorateDeparture(&row, m)
			}
			rows = append(rows, row)

		default: // Vacant / Reserved
			key := NewSlotKey(slot.Unit, slot.PositionNumber)
			arriving := ix.claimedDest[key]
			if arriving == nil {
				// placeholder identity อาจไปโผล่ใน movement เอง (ข้อมูลนำเข้าเก่า)
				arriving = ix.movementForSlot(slot)
			}
			if arriving == nil {
				// อัตราว่างจริง แสดงเป็นแถวว่าง
				rows = append(rows, rowFromSlot(slot, occ))
				continue
			}
			// อัตราว่างที่ถูกจอง: ซ่อนแถวว่าง แสดงเป็นแถวของคนที่กำลังเข้ามาแทน
			filledVacant++
			rows = append(rows, rowFromArrival(slot, occ, arriving))
		}
	}

	rows = filterSwapType(rows, opts.SwapType)
	rows = filterSearch(rows, opts.Search)
	sortRows(rows)

	sum := summarize(rows, rankLevels)
	sum.TotalVacant = totalVacant
	sum.FilledVacant = filledVacant
	return rows, sum
}

func matchStatus(status string, occ OccupancyState) bool {
	switch status {
	case "", "all":
		return true
	case "vacant":
		return occ == Vacant
	case "reserved":
		return occ == Reserved
	case "occupied":
		return occ == Occupied
	default:
		return true
	}
}

// rowFromSlot = แถวพื้นฐานจากบัญชีตำแหน่ง (ยังไม่มี movement ฝั่ง from สะท้อนอัตราเอง)
func rowFromSlot(slot *models.PersonnelSlot, occ OccupancyState) Row {
	name := slot.FullName
	if occ != Occupied {
		name = ""
	}
	return Row{
		SlotID:         slot.ID,
		NoID:           slot.NoID,
		Unit:           slot.Unit,
		PositionNumber: slot.PositionNumber,
		Position:       slot.PositionTitle,
		PosCodeID:      slot.PosCodeID,
		Occupancy:      occ,

		FullName:    name,
		Rank:        slot.Rank,
		NationalID:  slot.NationalID,
		Seniority:   slot.Seniority,
		Age:         slot.Age,
		Education:   slot.Education,
		BirthDate:   slot.BirthDate,
		EnrollDate:  slot.EnrollDate,
		AppointDate: slot.AppointDate,
		RetireDate:  slot.RetireDate,

		FromUnit:           slot.Unit,
		FromPositionNumber: slot.PositionNumber,
		FromPosition:       slot.PositionTitle,
	}
}

// decorateDeparture ติด movement ขาออกให้แถวของผู้ครองปัจจุบัน
// ฝั่ง from ใช้ snapshot ของ movement (ต้นทางจริงของคน อาจต่างจากข้อมูลอัตรา)
func decorateDeparture(row *Row, m *Movement) {
	row.HasSwapped = true
	row.MovementID = m.ID
	txID := m.TransactionID
	row.TransactionID = &txID
	row.SwapType = m.SwapType
	row.GroupNumber = m.GroupNumber

	if strings.TrimSpace(m.FromPositionNumber) != "" {
		row.FromUnit = m.FromUnit
		row.FromPositionNumber = m.FromPositionNumber
		row.FromPosition = m.FromPosition
	}
	row.ToUnit = m.ToUnit
	row.ToPositionNumber = m.ToPositionNumber
	row.ToPosition = m.ToPosition
	row.ToPosCodeID = m.ToPosCodeID
	row.Supporter = m.Supporter
	row.Reason = m.Reason
}

// rowFromArrival = อัตราว่างที่มีคนกำลังเข้ามา: แสดงข้อมูลคนที่เข้า ไม่ใช่แถวว่าง
func rowFromArrival(slot *models.PersonnelSlot, occ OccupancyState, m *Movement) Row {
	txID := m.TransactionID
	return Row{
		SlotID:         slot.ID,
		NoID:           slot.NoID,
		Unit:           slot.Unit,
		PositionNumber: slot.PositionNumber,
		Position:       slot.PositionTitle,
		PosCodeID:      slot.PosCodeID,
		Occupancy:      occ,
		FilledVacancy:  true,

		FullName:   m.FullName,
		Rank:       m.Rank,
		NationalID: m.NationalID,
		Seniority:  m.Seniority,
		Education:  m.Education,
		BirthDate:  m.BirthDate,

		HasSwapped:    true,
		MovementID:    m.ID,
		TransactionID: &txID,
		SwapType:      m.SwapType,
		GroupNumber:   m.GroupNumber,

		FromUnit:           m.FromUnit,
		FromPositionNumber: m.FromPositionNumber,
		FromPosition:       m.FromPosition,
		ToUnit:             slot.Unit,
		ToPositionNumber:   slot.PositionNumber,
		ToPosition:         slot.PositionTitle,
		ToPosCodeID:        m.ToPosCodeID,

		Supporter: m.Supporter,
		Reason:    m.Reason,
	}
}

func filterSwapType(rows []Row, swapType string) []Row {
	switch swapType {
	case "", "all":
		return rows
	}
	out := rows[:0]
	for _, r := range rows {
		if swapType == "none" {
			if !r.HasSwapped {
				out = append(out, r)
			}
			continue
		}
		if r.SwapType == swapType {
			out = append(out, r)
		}
	}
	return out
}

func filterSearch(rows []Row, search string) []Row {
	q := strings.ToLower(strings.TrimSpace(search))
	if q == "" {
		return rows
	}
	out := rows[:0]
	for _, r := range rows {
		if rowMatches(&r, q) {
			out = append(out, r)
		}
	}
	return out
}

// rowMatches ค้นทั้งฝั่งผู้ครองปัจจุบันและฝั่งปลายทาง เจอฝั่งใดฝั่งหนึ่งก็พอ
func rowMatches(r *Row, q string) bool {
	holder := []string{r.FullName, r.Rank, r.NationalID, r.Unit, r.PositionNumber, r.Position}
	dest := []string{r.ToUnit, r.ToPositionNumber, r.ToPosition, r.Supporter, r.Reason}
	for _, s := range holder {
		if strings.Contains(strings.ToLower(s), q) {
			return true
		}
	}
	for _, s := range dest {
		if strings.Contains(strings.ToLower(s), q) {
			return true
		}
	}
	return false
}

// Paginate ตัดช่วง [page*size, (page+1)*size) — page เริ่มที่ 0
func Paginate(rows []Row, page, pageSize int) []Row {
	if pageSize <= 0 {
		return rows
	}
	start := page * pageSize
	if start < 0 || start >= len(rows) {
		return []Row{}
	}
	end := start + pageSize
	if end > len(rows) {
		end = len(rows)
	}
	return rows[start:end]
}
