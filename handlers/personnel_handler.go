package handlers

import (
	"net/http"
	"regexp"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/ballnaha/p-post-sub003/database"
	"github.com/ballnaha/p-post-sub003/models"
	"github.com/ballnaha/p-post-sub003/reconcile"
)

type PersonnelHandler struct{}

func NewPersonnelHandler() *PersonnelHandler { return &PersonnelHandler{} }

var (
	reYear = regexp.MustCompile(`^[0-9]{4}$`) // พ.ศ. 4 หลัก
)

/* -------------------- Validation -------------------- */

func validateSlot(s *models.PersonnelSlot) map[string]string {
	errs := map[string]string{}
	if !reYear.MatchString(strings.TrimSpace(s.Year)) {
		errs["year"] = "ปีงบประมาณต้องเป็น พ.ศ. 4 หลัก"
	}
	if strings.TrimSpace(s.Unit) == "" {
		errs["unit"] = "กรุณาระบุสังกัด"
	}
	if strings.TrimSpace(s.PositionNumber) == "" {
		errs["position_number"] = "กรุณาระบุเลขตำแหน่ง"
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}

/* -------------------- Handlers: CRUD -------------------- */

// GET /personnel — ?year&unit&posCodeId&status&q=&limit=&offset=
func (h *PersonnelHandler) List(c echo.Context) error {
	limit := clamp(atoiOr(c.QueryParam("limit"), 20), 1, 200)
	offset := atoiOr(c.QueryParam("offset"), 0)
	if offset < 0 {
		offset = 0
	}

	tx := database.DB.Model(&models.PersonnelSlot{}).Where("active = ?", true)

	if s := strings.TrimSpace(c.QueryParam("year")); s != "" {
		tx = tx.Where("year = ?", s)
	}
	if s := strings.TrimSpace(c.QueryParam("unit")); s != "" {
		tx = tx.Where("unit = ?", s)
	}
	if s := strings.TrimSpace(c.QueryParam("posCodeId")); s != "" {
		if id, err := strconv.Atoi(s); err == nil && id > 0 {
			tx = tx.Where("pos_code_id = ?", id)
		}
	}
	if q := strings.TrimSpace(c.QueryParam("q")); q != "" {
		like := "%" + q + "%"
		tx = tx.Where(`
			full_name ILIKE ? OR rank ILIKE ? OR national_id ILIKE ? OR
			position_title ILIKE ? OR position_number ILIKE ?
		`, like, like, like, like, like)
	}

	var items []models.PersonnelSlot
	if err := tx.Order("id ASC").Limit(limit).Offset(offset).Find(&items).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, map[string]string{"error": "DB_QUERY_FAILED"})
	}

	// แปลงสถานะการครองครั้งเดียวตรงนี้ FE ไม่ต้องรู้จัก string "ว่าง"
	out := make([]map[string]any, 0, len(items))
	for i := range items {
		out = append(out, slotWithOccupancy(&items[i]))
	}
	return c.JSON(http.StatusOK, out)
}

func slotWithOccupancy(s *models.PersonnelSlot) map[string]any {
	return map[string]any{
		"slot":      s,
		"occupancy": reconcile.Occupancy(s.FullName),
	}
}

// GET /personnel/:id
func (h *PersonnelHandler) GetByID(c echo.Context) error {
	id, err := strconv.Atoi(strings.TrimSpace(c.Param("id")))
	if err != nil || id <= 0 {
		return echo.NewHTTPError(http.StatusBadRequest, map[string]string{"error": "INVALID_ID"})
	}
	var s models.PersonnelSlot
	if err := database.DB.First(&s, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return echo.NewHTTPError(http.StatusNotFound, map[string]string{"error": "NOT_FOUND"})
		}
		return echo.NewHTTPError(http.StatusInternalServerError, map[string]string{"error": "DB_QUERY_FAILED"})
	}
	return c.JSON(http.StatusOK, slotWithOccupancy(&s))
}

// POST /personnel
func (h *PersonnelHandler) Create(c echo.Context) error {
	var s models.PersonnelSlot
	if err := c.Bind(&s); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, map[string]string{"error": "INVALID_PAYLOAD"})
	}
	if errs := validateSlot(&s); errs != nil {
		return echo.NewHTTPError(http.StatusBadRequest, map[string]any{"error": "VALIDATION_ERROR", "fields": errs})
	}

	// (year, unit, position_number) ห้ามซ้ำในแถว active
	var dup int64
	database.DB.Model(&models.PersonnelSlot{}).
		Where("year = ? AND unit = ? AND position_number = ? AND active = ?",
			s.Year, s.Unit, s.PositionNumber, true).
		Count(&dup)
	if dup > 0 {
		return echo.NewHTTPError(http.StatusConflict, map[string]string{"error": "SLOT_ALREADY_EXISTS"})
	}

	s.ID = 0
	s.Active = true
	if err := database.DB.Create(&s).Error; err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusCreated, slotWithOccupancy(&s))
}

// PUT /personnel/:id
func (h *PersonnelHandler) Update(c echo.Context) error {
	id, err := strconv.Atoi(strings.TrimSpace(c.Param("id")))
	if err != nil || id <= 0 {
		return echo.NewHTTPError(http.StatusBadRequest, map[string]string{"error": "INVALID_ID"})
	}

	var cur models.PersonnelSlot
	if err := database.DB.First(&cur, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return echo.NewHTTPError(http.StatusNotFound, map[string]string{"error": "NOT_FOUND"})
		}
		return echo.NewHTTPError(http.StatusInternalServerError, map[string]string{"error": "DB_QUERY_FAILED"})
	}

	// bind ทับสำเนาของแถวเดิม ฟิลด์ที่ payload ไม่ส่งมาคงค่าเดิมไว้ (เช่น active)
	in := cur
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, map[string]string{"error": "INVALID_PAYLOAD"})
	}
	in.ID = cur.ID
	in.CreatedAt = cur.CreatedAt
	if errs := validateSlot(&in); errs != nil {
		return echo.NewHTTPError(http.StatusBadRequest, map[string]any{"error": "VALIDATION_ERROR", "fields": errs})
	}

	// (year, unit, position_number) ห้ามชนแถว active อื่น เงื่อนไขเดียวกับตอน Create
	if in.Active {
		var dup int64
		database.DB.Model(&models.PersonnelSlot{}).
			Where("year = ? AND unit = ? AND position_number = ? AND active = ? AND id <> ?",
				in.Year, in.Unit, in.PositionNumber, true, in.ID).
			Count(&dup)
		if dup > 0 {
			return echo.NewHTTPError(http.StatusConflict, map[string]string{"error": "SLOT_ALREADY_EXISTS"})
		}
	}

	if err := database.DB.Save(&in).Error; err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, slotWithOccupancy(&in))
}

// DELETE /personnel/:id — ปิด active ไม่ลบจริง (บัญชีเก่าต้องดูย้อนหลังได้)
func (h *PersonnelHandler) Delete(c echo.Context) error {
	id, err := strconv.Atoi(strings.TrimSpace(c.Param("id")))
	if err != nil || id <= 0 {
		return echo.NewHTTPError(http.StatusBadRequest, map[string]string{"error": "INVALID_ID"})
	}
	tx := database.DB.Model(&models.PersonnelSlot{}).Where("id = ?", id).Update("active", false)
	if tx.Error != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, map[string]string{"error": "DB_DELETE_FAILED"})
	}
	if tx.RowsAffected == 0 {
		return echo.NewHTTPError(http.StatusNotFound, map[string]string{"error": "NOT_FOUND"})
	}
	return c.NoContent(http.StatusNoContent)
}
