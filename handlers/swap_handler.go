package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/ballnaha/p-post-sub003/database"
	"github.com/ballnaha/p-post-sub003/models"
	"github.com/ballnaha/p-post-sub003/reconcile"
)

type SwapHandler struct{}

func NewSwapHandler() *SwapHandler { return &SwapHandler{} }

/* -------------------- Payload structs -------------------- */

type movementPayload struct {
	PersonnelID *uint  `json:"personnelId"`
	NationalID  string `json:"nationalId"`
	FullName    string `json:"fullName"`
	Rank        string `json:"rank"`
	BirthDate   string `json:"birthDate"`
	Seniority   string `json:"seniority"`
	Education   string `json:"education"`

	FromUnit           string `json:"fromUnit"`
	FromPositionNumber string `json:"fromPositionNumber"`
	FromPosition       string `json:"fromPosition"`
	ToUnit             string `json:"toUnit"`
	ToPositionNumber   string `json:"toPositionNumber"`
	ToPosition         string `json:"toPosition"`
	ToPosCodeID        *uint  `json:"toPosCodeId"`

	Supporter string `json:"supporter"`
	Reason    string `json:"reason"`
}

type swapCreatePayload struct {
	Year        string            `json:"year"`
	SwapType    string            `json:"swapType"`
	Status      string            `json:"status"`
	GroupNumber string            `json:"groupNumber"`
	Notes       string            `json:"notes"`
	Details     []movementPayload `json:"details"`
}

/* -------------------- Validation -------------------- */

// จำนวน record ที่ถูกต้องต่อประเภท (0 = ไม่จำกัด)
var swapTypeArity = map[string]int{
	models.SwapTypeTwoWay:    2,
	models.SwapTypeThreeWay:  3,
	models.SwapTypeTransfer:  0,
	models.SwapTypePromotion: 0,
}

func validateSwapCreate(p *swapCreatePayload) map[string]string {
	errs := map[string]string{}
	if !reYear.MatchString(strings.TrimSpace(p.Year)) {
		errs["year"] = "ปีงบประมาณต้องเป็น พ.ศ. 4 หลัก"
	}
	arity, known := swapTypeArity[strings.TrimSpace(p.SwapType)]
	if !known {
		// board-layout สร้างผ่าน /personnel-board เท่านั้น
		errs["swapType"] = "ประเภทการสับเปลี่ยนไม่ถูกต้อง"
	} else if arity > 0 && len(p.Details) != arity {
		errs["details"] = fmt.Sprintf("ประเภทนี้ต้องมี %d รายการ", arity)
	}
	if len(p.Details) < 1 {
		errs["details"] = "ต้องมีรายการย้ายอย่างน้อย 1 รายการ"
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}

// ตรวจปลายทางที่ชี้ออกนอก transaction ว่าอัตรานั้นยังว่างอยู่จริง
// ปลายทางที่เป็นต้นทางของ record อื่นใน transaction เดียวกันถือว่าเก้าอี้กำลังถูกสละ ไม่ต้องเช็ค
func checkDestinations(db *gorm.DB, p *swapCreatePayload) (conflict string, err error) {
	vacatedInside := map[reconcile.SlotKey]bool{}
	for i := range p.Details {
		if k := reconcile.NewSlotKey(p.Details[i].FromUnit, p.Details[i].FromPositionNumber); k.Valid() {
			vacatedInside[k] = true
		}
	}
	for i := range p.Details {
		d := &p.Details[i]
		k := reconcile.NewSlotKey(d.ToUnit, d.ToPositionNumber)
		if !k.Valid() || vacatedInside[k] {
			continue
		}
		var slot models.PersonnelSlot
		qerr := db.Where("year = ? AND unit = ? AND position_number = ? AND active = ?",
			p.Year, k.Unit, k.PositionNumber, true).First(&slot).Error
		if qerr == gorm.ErrRecordNotFound {
			continue // อัตราไม่อยู่ในบัญชีปีนี้ ปล่อยผ่าน (ย้ายข้ามหน่วย)
		}
		if qerr != nil {
			return "", qerr
		}
		if reconcile.Occupancy(slot.FullName) == reconcile.Occupied {
			return fmt.Sprintf("ตำแหน่ง %s (%s) มีผู้ครองอยู่แล้ว", k.PositionNumber, k.Unit), nil
		}
	}
	return "", nil
}

/* -------------------- Handlers: CRUD -------------------- */

// GET /swaps — ?year&swapType&status&limit=&offset=
func (h *SwapHandler) List(c echo.Context) error {
	limit := clamp(atoiOr(c.QueryParam("limit"), 20), 1, 100)
	offset := atoiOr(c.QueryParam("offset"), 0)
	if offset < 0 {
		offset = 0
	}

	tx := database.DB.Model(&models.SwapTransaction{}).
		Where("swap_type <> ?", models.SwapTypeBoardLayout) // แถวผังบอร์ดไม่ใช่รายการย้าย

	if s := strings.TrimSpace(c.QueryParam("year")); s != "" {
		tx = tx.Where("year = ?", s)
	}
	if s := strings.TrimSpace(c.QueryParam("swapType")); s != "" {
		tx = tx.Where("swap_type = ?", s)
	}
	if s := strings.TrimSpace(c.QueryParam("status")); s != "" {
		tx = tx.Where("status = ?", s)
	}

	var items []models.SwapTransaction
	if err := tx.Preload("Details", func(db *gorm.DB) *gorm.DB {
		return db.Order("sequence ASC")
	}).Order("id DESC").Limit(limit).Offset(offset).Find(&items).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, map[string]string{"error": "DB_QUERY_FAILED"})
	}
	return c.JSON(http.StatusOK, items)
}

// GET /swaps/:id
func (h *SwapHandler) GetByID(c echo.Context) error {
	id, err := strconv.Atoi(strings.TrimSpace(c.Param("id")))
	if err != nil || id <= 0 {
		return echo.NewHTTPError(http.StatusBadRequest, map[string]string{"error": "INVALID_ID"})
	}
	var tr models.SwapTransaction
	if err := database.DB.Preload("Details", func(db *gorm.DB) *gorm.DB {
		return db.Order("sequence ASC")
	}).First(&tr, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return echo.NewHTTPError(http.StatusNotFound, map[string]string{"error": "NOT_FOUND"})
		}
		return echo.NewHTTPError(http.StatusInternalServerError, map[string]string{"error": "DB_QUERY_FAILED"})
	}
	return c.JSON(http.StatusOK, tr)
}

// POST /swaps — สร้าง transaction พร้อม details ทั้งชุดใน DB transaction เดียว
func (h *SwapHandler) Create(c echo.Context) error {
	var p swapCreatePayload
	if err := c.Bind(&p); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, map[string]string{"error": "INVALID_PAYLOAD"})
	}
	if errs := validateSwapCreate(&p); errs != nil {
		return echo.NewHTTPError(http.StatusBadRequest, map[string]any{"error": "VALIDATION_ERROR", "fields": errs})
	}

	conflict, err := checkDestinations(database.DB, &p)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, map[string]string{"error": "DB_QUERY_FAILED"})
	}
	if conflict != "" {
		return echo.NewHTTPError(http.StatusConflict, map[string]string{"error": "TARGET_SLOT_FILLED", "detail": conflict})
	}

	status := strings.TrimSpace(p.Status)
	if status == "" {
		status = models.SwapStatusDraft
	}

	tr := models.SwapTransaction{
		Year:        strings.TrimSpace(p.Year),
		SwapType:    strings.TrimSpace(p.SwapType),
		Status:      status,
		GroupNumber: strings.TrimSpace(p.GroupNumber),
		Notes:       strings.TrimSpace(p.Notes),
	}

	tx := database.DB.Begin()
	if err := tx.Create(&tr).Error; err != nil {
		tx.Rollback()
		return echo.NewHTTPError(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}
	for i := range p.Details {
		rec := movementFromPayload(&p.Details[i], tr.ID, i+1)
		if err := tx.Create(&rec).Error; err != nil {
			tx.Rollback()
			return echo.NewHTTPError(http.StatusBadRequest, map[string]string{"error": err.Error()})
		}
	}
	if err := tx.Commit().Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}

	var out models.SwapTransaction
	if err := database.DB.Preload("Details").First(&out, "id = ?", tr.ID).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, map[string]string{"error": "DB_QUERY_FAILED"})
	}
	return c.JSON(http.StatusCreated, out)
}

func movementFromPayload(d *movementPayload, txID uint, seq int) models.MovementRecord {
	return models.MovementRecord{
		TransactionID: txID,
		Sequence:      seq,
		PersonnelID:   d.PersonnelID,
		NationalID:    strings.TrimSpace(d.NationalID),
		FullName:      strings.TrimSpace(d.FullName),
		Rank:          strings.TrimSpace(d.Rank),
		BirthDate:     strings.TrimSpace(d.BirthDate),
		Seniority:     strings.TrimSpace(d.Seniority),
		Education:     strings.TrimSpace(d.Education),

		FromUnit:           strings.TrimSpace(d.FromUnit),
		FromPositionNumber: strings.TrimSpace(d.FromPositionNumber),
		FromPosition:       strings.TrimSpace(d.FromPosition),
		ToUnit:             strings.TrimSpace(d.ToUnit),
		ToPositionNumber:   strings.TrimSpace(d.ToPositionNumber),
		ToPosition:         strings.TrimSpace(d.ToPosition),
		ToPosCodeID:        d.ToPosCodeID,

		Supporter: strings.TrimSpace(d.Supporter),
		Reason:    strings.TrimSpace(d.Reason),
	}
}

// PUT /swaps/:id — แก้สถานะ/หมายเหตุ/เลขกลุ่ม (ตัว details แก้ผ่านบอร์ด)
func (h *SwapHandler) Update(c echo.Context) error {
	id, err := strconv.Atoi(strings.TrimSpace(c.Param("id")))
	if err != nil || id <= 0 {
		return echo.NewHTTPError(http.StatusBadRequest, map[string]string{"error": "INVALID_ID"})
	}

	var req map[string]any
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, map[string]string{"error": "INVALID_PAYLOAD"})
	}

	var tr models.SwapTransaction
	if err := database.DB.First(&tr, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return echo.NewHTTPError(http.StatusNotFound, map[string]string{"error": "NOT_FOUND"})
		}
		return echo.NewHTTPError(http.StatusInternalServerError, map[string]string{"error": "DB_QUERY_FAILED"})
	}
	if tr.SwapType == models.SwapTypeBoardLayout {
		return echo.NewHTTPError(http.StatusBadRequest, map[string]string{"error": "BOARD_LAYOUT_READONLY"})
	}

	if v, ok := req["status"].(string); ok && strings.TrimSpace(v) != "" {
		s := strings.TrimSpace(v)
		if s != models.SwapStatusDraft && s != models.SwapStatusCompleted && s != models.SwapStatusCancelled {
			return echo.NewHTTPError(http.StatusBadRequest, map[string]any{
				"error":  "VALIDATION_ERROR",
				"fields": map[string]string{"status": "สถานะไม่ถูกต้อง"},
			})
		}
		tr.Status = s
	}
	if v, ok := req["groupNumber"].(string); ok {
		tr.GroupNumber = strings.TrimSpace(v)
	}
	if v, ok := req["notes"].(string); ok {
		tr.Notes = strings.TrimSpace(v)
	}

	if err := database.DB.Save(&tr).Error; err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, tr)
}

// DELETE /swaps/:id — ลบทั้ง transaction (cascade ไปที่ details)
func (h *SwapHandler) Delete(c echo.Context) error {
	id, err := strconv.Atoi(strings.TrimSpace(c.Param("id")))
	if err != nil || id <= 0 {
		return echo.NewHTTPError(http.StatusBadRequest, map[string]string{"error": "INVALID_ID"})
	}

	tx := database.DB.Begin()
	if err := tx.Delete(&models.MovementRecord{}, "transaction_id = ?", id).Error; err != nil {
		tx.Rollback()
		return echo.NewHTTPError(http.StatusInternalServerError, map[string]string{"error": "DB_DELETE_FAILED"})
	}
	res := tx.Delete(&models.SwapTransaction{}, "id = ?", id)
	if res.Error != nil {
		tx.Rollback()
		return echo.NewHTTPError(http.StatusInternalServerError, map[string]string{"error": "DB_DELETE_FAILED"})
	}
	if res.RowsAffected == 0 {
		tx.Rollback()
		return echo.NewHTTPError(http.StatusNotFound, map[string]string{"error": "NOT_FOUND"})
	}
	if err := tx.Commit().Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	return c.NoContent(http.StatusNoContent)
}
