package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/ballnaha/p-post-sub003/database"
	"github.com/ballnaha/p-post-sub003/models"
	"github.com/ballnaha/p-post-sub003/reconcile"
)

// BoardHandler = ผังบอร์ดจัดเลนรายการย้าย
// ผังถูกเก็บเป็นแถว sentinel (swap_type = board-layout) 1 แถวต่อปี
// ใน Notes เป็น JSON — บันทึกทุกครั้งคือลบแถวเดิมแล้วสร้างใหม่ ไม่ update ทับ
type BoardHandler struct{}

func NewBoardHandler() *BoardHandler { return &BoardHandler{} }

/* -------------------- Layout document -------------------- */

type boardLane struct {
	Index          int    `json:"index"`
	TransactionID  uint   `json:"transactionId,omitempty"`
	Title          string `json:"title"`
	VacantPosition string `json:"vacantPosition,omitempty"`
	IsCompleted    bool   `json:"isCompleted"`

	// เฉพาะเลน custom (ยังไม่ผูก transaction ตอนส่งมา): ฝังรายการไว้ในเอกสารด้วย
	ItemIDs   []string                   `json:"itemIds,omitempty"`
	Personnel map[string]movementPayload `json:"personnel,omitempty"`
}

type boardDoc struct {
	Lanes []boardLane `json:"lanes"`
}

type boardColumn struct {
	ID             string   `json:"id"`
	Index          int      `json:"index"`
	Title          string   `json:"title"`
	TransactionID  uint     `json:"transactionId,omitempty"`
	VacantPosition string   `json:"vacantPosition,omitempty"`
	IsCompleted    bool     `json:"isCompleted"`
	ItemIDs        []string `json:"itemIds"`
	Missing        bool     `json:"missing,omitempty"` // transaction ที่อ้างถูกลบไปแล้ว
}

type boardSavePayload struct {
	Year      string                     `json:"year"`
	Columns   []boardColumn              `json:"columns"`
	Personnel map[string]movementPayload `json:"personnelMap"`
}

func loadBoardSentinel(db *gorm.DB, year string) (*models.SwapTransaction, *boardDoc, error) {
	var sentinel models.SwapTransaction
	err := db.Where("year = ? AND swap_type = ?", year, models.SwapTypeBoardLayout).
		Order("id DESC").First(&sentinel).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, err
	}
	var doc boardDoc
	if err := json.Unmarshal([]byte(sentinel.Notes), &doc); err != nil {
		// เอกสารเสีย ถือว่าไม่มีผัง (ไปทับตอนบันทึกรอบถัดไป)
		return &sentinel, &boardDoc{}, nil
	}
	return &sentinel, &doc, nil
}

/* -------------------- GET /personnel-board -------------------- */

func (h *BoardHandler) Load(c echo.Context) error {
	year := strings.TrimSpace(c.QueryParam("year"))
	if !reYear.MatchString(year) {
		return echo.NewHTTPError(http.StatusBadRequest, map[string]any{
			"error":  "VALIDATION_ERROR",
			"fields": map[string]string{"year": "กรุณาระบุปีงบประมาณเป็น พ.ศ. 4 หลัก"},
		})
	}

	_, doc, err := loadBoardSentinel(database.DB, year)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, map[string]string{"error": "DB_QUERY_FAILED"})
	}
	if doc == nil {
		return c.JSON(http.StatusOK, map[string]any{
			"success": true, "year": year,
			"columns": []boardColumn{}, "personnelMap": map[string]movementPayload{},
		})
	}

	columns := make([]boardColumn, 0, len(doc.Lanes))
	personnelMap := map[string]movementPayload{}

	for _, lane := range doc.Lanes {
		col := boardColumn{
			ID:             fmt.Sprintf("lane-%d", lane.Index),
			Index:          lane.Index,
			Title:          lane.Title,
			TransactionID:  lane.TransactionID,
			VacantPosition: lane.VacantPosition,
			IsCompleted:    lane.IsCompleted,
			ItemIDs:        []string{},
		}

		if len(lane.ItemIDs) > 0 {
			// เลน custom: ใช้รายการที่ฝังไว้ในเอกสาร (id เดิมต้องคงที่ข้าม save/load)
			col.ItemIDs = append(col.ItemIDs, lane.ItemIDs...)
			for id, p := range lane.Personnel {
				personnelMap[id] = p
			}
		} else if lane.TransactionID > 0 {
			var tr models.SwapTransaction
			err := database.DB.Preload("Details", func(db *gorm.DB) *gorm.DB {
				return db.Order("sequence ASC")
			}).First(&tr, "id = ?", lane.TransactionID).Error
			switch {
			case err == gorm.ErrRecordNotFound:
				// ถูกลบจากที่อื่น: คงเลนไว้เป็น placeholder ให้ผู้ใช้เห็นว่าหาย
				col.Missing = true
				col.Title = lane.Title + " (รายการถูกลบ)"
			case err != nil:
				return echo.NewHTTPError(http.StatusInternalServerError, map[string]string{"error": "DB_QUERY_FAILED"})
			default:
				// refresh จากข้อมูลจริงเสมอ ไม่ใช้ snapshot ในเอกสาร
				for i := range tr.Details {
					rec := &tr.Details[i]
					itemID := fmt.Sprintf("rec-%d", rec.ID)
					col.ItemIDs = append(col.ItemIDs, itemID)
					personnelMap[itemID] = payloadFromMovement(rec)
				}
			}
		}
		columns = append(columns, col)
	}

	return c.JSON(http.StatusOK, map[string]any{
		"success": true, "year": year,
		"columns": columns, "personnelMap": personnelMap,
	})
}

func payloadFromMovement(m *models.MovementRecord) movementPayload {
	return movementPayload{
		PersonnelID: m.PersonnelID,
		NationalID:  m.NationalID,
		FullName:    m.FullName,
		Rank:        m.Rank,
		BirthDate:   m.BirthDate,
		Seniority:   m.Seniority,
		Education:   m.Education,

		FromUnit:           m.FromUnit,
		FromPositionNumber: m.FromPositionNumber,
		FromPosition:       m.FromPosition,
		ToUnit:             m.ToUnit,
		ToPositionNumber:   m.ToPositionNumber,
		ToPosition:         m.ToPosition,
		ToPosCodeID:        m.ToPosCodeID,

		Supporter: m.Supporter,
		Reason:    m.Reason,
	}
}

/* -------------------- POST /personnel-board -------------------- */

func (h *BoardHandler) Save(c echo.Context) error {
	var p boardSavePayload
	if err := c.Bind(&p); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, map[string]string{"error": "INVALID_PAYLOAD"})
	}
	year := strings.TrimSpace(p.Year)
	if !reYear.MatchString(year) {
		return echo.NewHTTPError(http.StatusBadRequest, map[string]any{
			"error":  "VALIDATION_ERROR",
			"fields": map[string]string{"year": "กรุณาระบุปีงบประมาณเป็น พ.ศ. 4 หลัก"},
		})
	}

	// กันสองเลนแย่งอัตราปลายทางเดียวกันก่อนเริ่มเขียน
	if detail := findDestinationClash(&p); detail != "" {
		return echo.NewHTTPError(http.StatusConflict, map[string]string{"error": "TARGET_SLOT_FILLED", "detail": detail})
	}

	var (
		updated int
		created int
		lanes   []boardLane
	)

	err := database.DB.Transaction(func(tx *gorm.DB) error {
		_, prevDoc, err := loadBoardSentinel(tx, year)
		if err != nil {
			return err
		}

		// transaction เดิมที่ผังเก่าอ้างถึง ไว้เทียบหาเลนที่ถูกถอดออก
		prevTxIDs := map[uint]bool{}
		if prevDoc != nil {
			for _, lane := range prevDoc.Lanes {
				if lane.TransactionID > 0 {
					prevTxIDs[lane.TransactionID] = true
				}
			}
		}

		keepTxIDs := map[uint]bool{}
		lanes = make([]boardLane, 0, len(p.Columns))

		for idx, col := range p.Columns {
			lane := boardLane{
				Index:          idx,
				Title:          strings.TrimSpace(col.Title),
				VacantPosition: strings.TrimSpace(col.VacantPosition),
				IsCompleted:    col.IsCompleted,
			}

			if col.TransactionID > 0 {
				// เลนที่ผูกกับ transaction จริง: upsert record ตามลำดับใหม่
				if err := upsertLaneRecords(tx, col.TransactionID, col, p.Personnel); err != nil {
					return err
				}
				if err := syncLaneStatus(tx, col.TransactionID, col.IsCompleted); err != nil {
					return err
				}
				lane.TransactionID = col.TransactionID
				keepTxIDs[col.TransactionID] = true
				updated++
			} else {
				// เลน custom: สร้าง transaction ใหม่ทั้งชุด + ฝังรายการไว้ในเอกสารด้วย
				txID, itemIDs, personnel, err := createLaneTransaction(tx, year, col, p.Personnel)
				if err != nil {
					return err
				}
				lane.TransactionID = txID
				lane.ItemIDs = itemIDs
				lane.Personnel = personnel
				keepTxIDs[txID] = true
				created++
			}
			lanes = append(lanes, lane)
		}

		// transaction ที่ผังเก่าอ้างแต่ผังใหม่ไม่มีแล้ว → ลบทิ้ง (พร้อม record)
		for txID := range prevTxIDs {
			if keepTxIDs[txID] {
				continue
			}
			if err := tx.Delete(&models.MovementRecord{}, "transaction_id = ?", txID).Error; err != nil {
				return err
			}
			if err := tx.Delete(&models.SwapTransaction{}, "id = ?", txID).Error; err != nil {
				return err
			}
		}

		// sentinel: ลบของเดิมทั้งหมดแล้วสร้างแถวใหม่ (บังคับ singleton ต่อปี)
		if err := tx.Where("year = ? AND swap_type = ?", year, models.SwapTypeBoardLayout).
			Delete(&models.SwapTransaction{}).Error; err != nil {
			return err
		}
		raw, err := json.Marshal(boardDoc{Lanes: lanes})
		if err != nil {
			return err
		}
		return tx.Create(&models.SwapTransaction{
			Year:     year,
			SwapType: models.SwapTypeBoardLayout,
			Status:   models.SwapStatusCompleted,
			Notes:    string(raw),
		}).Error
	})
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]any{
			"success": false,
			"error":   "BOARD_SAVE_FAILED",
			"message": err.Error(),
		})
	}

	return c.JSON(http.StatusOK, map[string]any{
		"success":                  true,
		"message":                  "บันทึกผังบอร์ดแล้ว",
		"updatedTransactionsCount": updated,
		"createdTransactionsCount": created,
		"lanesCount":               len(lanes),
		"lanes":                    lanes,
	})
}

// findDestinationClash เช็คว่ามีสองรายการในผังชี้อัตราปลายทางเดียวกันไหม
func findDestinationClash(p *boardSavePayload) string {
	seen := map[reconcile.SlotKey]string{}
	for _, col := range p.Columns {
		for _, itemID := range col.ItemIDs {
			person, ok := p.Personnel[itemID]
			if !ok {
				continue
			}
			k := reconcile.NewSlotKey(person.ToUnit, person.ToPositionNumber)
			if !k.Valid() {
				continue
			}
			if prev, dup := seen[k]; dup {
				return fmt.Sprintf("ตำแหน่ง %s (%s) ถูกใช้ทั้งใน %q และ %q",
					k.PositionNumber, k.Unit, prev, col.Title)
			}
			seen[k] = col.Title
		}
	}
	return ""
}

// upsertLaneRecords ปรับ record ของ transaction ให้ตรงกับลำดับรายการในเลน
// มี record ที่ sequence เดิม → update, ไม่มี → create, เกินท้าย → ลบ
func upsertLaneRecords(tx *gorm.DB, txID uint, col boardColumn, personnel map[string]movementPayload) error {
	var count int64
	if err := tx.Model(&models.SwapTransaction{}).Where("id = ?", txID).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return fmt.Errorf("transaction %d ไม่อยู่ในระบบแล้ว", txID)
	}

	var existing []models.MovementRecord
	if err := tx.Where("transaction_id = ?", txID).Order("sequence ASC").Find(&existing).Error; err != nil {
		return err
	}

	for i, itemID := range col.ItemIDs {
		person, ok := personnel[itemID]
		if !ok {
			return fmt.Errorf("ไม่พบข้อมูลบุคคลของรายการ %s", itemID)
		}
		rec := movementFromPayload(&person, txID, i+1)
		if i < len(existing) {
			rec.ID = existing[i].ID
			rec.CreatedAt = existing[i].CreatedAt
			if err := tx.Save(&rec).Error; err != nil {
				return err
			}
		} else {
			if err := tx.Create(&rec).Error; err != nil {
				return err
			}
		}
	}
	// ตัด record ส่วนเกินท้ายเลน
	if len(existing) > len(col.ItemIDs) {
		if err := tx.Where("transaction_id = ? AND sequence > ?", txID, len(col.ItemIDs)).
			Delete(&models.MovementRecord{}).Error; err != nil {
			return err
		}
	}
	return nil
}

func syncLaneStatus(tx *gorm.DB, txID uint, isCompleted bool) error {
	status := models.SwapStatusDraft
	if isCompleted {
		status = models.SwapStatusCompleted
	}
	return tx.Model(&models.SwapTransaction{}).Where("id = ?", txID).Update("status", status).Error
}

// createLaneTransaction สร้าง transaction ใหม่ให้เลน custom
// คืน itemIds (เติม uuid ให้ตัวที่ยังไม่มี) กับ personnel ที่จะฝังในเอกสาร
func createLaneTransaction(tx *gorm.DB, year string, col boardColumn, personnel map[string]movementPayload) (uint, []string, map[string]movementPayload, error) {
	swapType := models.SwapTypeTransfer
	if len(col.ItemIDs) > 1 {
		swapType = models.SwapTypePromotion
	}
	status := models.SwapStatusDraft
	if col.IsCompleted {
		status = models.SwapStatusCompleted
	}
	tr := models.SwapTransaction{
		Year:        year,
		SwapType:    swapType,
		Status:      status,
		GroupNumber: strings.TrimSpace(col.Title),
	}
	if err := tx.Create(&tr).Error; err != nil {
		return 0, nil, nil, err
	}

	itemIDs := make([]string, 0, len(col.ItemIDs))
	embedded := map[string]movementPayload{}
	for i, rawID := range col.ItemIDs {
		// รายการใหม่จาก FE อาจยังไม่มี id ให้ออก uuid ก่อนค่อยหาข้อมูลบุคคลด้วย key เดิม
		itemID := strings.TrimSpace(rawID)
		if itemID == "" {
			itemID = uuid.NewString()
		}
		person, ok := personnel[rawID]
		if !ok {
			return 0, nil, nil, fmt.Errorf("ไม่พบข้อมูลบุคคลของรายการ %s", itemID)
		}
		rec := movementFromPayload(&person, tr.ID, i+1)
		if err := tx.Create(&rec).Error; err != nil {
			return 0, nil, nil, err
		}
		itemIDs = append(itemIDs, itemID)
		embedded[itemID] = person
	}
	return tr.ID, itemIDs, embedded, nil
}

/* -------------------- DELETE /personnel-board -------------------- */

// ลบเฉพาะแถวผัง ไม่แตะ transaction ที่ผังอ้างถึง
func (h *BoardHandler) Delete(c echo.Context) error {
	year := strings.TrimSpace(c.QueryParam("year"))
	if !reYear.MatchString(year) {
		return echo.NewHTTPError(http.StatusBadRequest, map[string]any{
			"error":  "VALIDATION_ERROR",
			"fields": map[string]string{"year": "กรุณาระบุปีงบประมาณเป็น พ.ศ. 4 หลัก"},
		})
	}
	res := database.DB.Where("year = ? AND swap_type = ?", year, models.SwapTypeBoardLayout).
		Delete(&models.SwapTransaction{})
	if res.Error != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, map[string]string{"error": "DB_DELETE_FAILED"})
	}
	return c.JSON(http.StatusOK, map[string]any{
		"success":      true,
		"message":      "ลบผังบอร์ดแล้ว",
		"deletedCount": res.RowsAffected,
	})
}
