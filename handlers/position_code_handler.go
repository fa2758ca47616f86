package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/ballnaha/p-post-sub003/database"
	"github.com/ballnaha/p-post-sub003/models"
)

type PositionCodeHandler struct{}

func NewPositionCodeHandler() *PositionCodeHandler { return &PositionCodeHandler{} }

// GET /position-codes
func (h *PositionCodeHandler) List(c echo.Context) error {
	var items []models.PositionCode
	if err := database.DB.Order("rank_level ASC, code ASC").Find(&items).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, map[string]string{"error": "DB_QUERY_FAILED"})
	}
	return c.JSON(http.StatusOK, items)
}

func validatePositionCode(pc *models.PositionCode) map[string]string {
	fields := map[string]string{}
	if strings.TrimSpace(pc.Code) == "" {
		fields["code"] = "กรุณาระบุรหัสตำแหน่ง"
	}
	if strings.TrimSpace(pc.Name) == "" {
		fields["name"] = "กรุณาระบุชื่อตำแหน่ง"
	}
	if pc.RankLevel <= 0 {
		fields["rank_level"] = "ระดับต้องเป็นเลขบวก (1 = สูงสุด)"
	}
	if len(fields) == 0 {
		return nil
	}
	return fields
}

// POST /position-codes
func (h *PositionCodeHandler) Create(c echo.Context) error {
	var pc models.PositionCode
	if err := c.Bind(&pc); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, map[string]string{"error": "INVALID_PAYLOAD"})
	}
	if fields := validatePositionCode(&pc); fields != nil {
		return echo.NewHTTPError(http.StatusBadRequest, map[string]any{"error": "VALIDATION_ERROR", "fields": fields})
	}

	pc.ID = 0
	if err := database.DB.Create(&pc).Error; err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusCreated, pc)
}

// PUT /position-codes/:id
func (h *PositionCodeHandler) Update(c echo.Context) error {
	id, err := strconv.Atoi(strings.TrimSpace(c.Param("id")))
	if err != nil || id <= 0 {
		return echo.NewHTTPError(http.StatusBadRequest, map[string]string{"error": "INVALID_ID"})
	}
	var cur models.PositionCode
	if err := database.DB.First(&cur, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return echo.NewHTTPError(http.StatusNotFound, map[string]string{"error": "NOT_FOUND"})
		}
		return echo.NewHTTPError(http.StatusInternalServerError, map[string]string{"error": "DB_QUERY_FAILED"})
	}
	// bind ทับสำเนาของแถวเดิม ฟิลด์ที่ไม่ส่งมาคงค่าเดิม แล้วตรวจแบบเดียวกับตอน Create
	in := cur
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, map[string]string{"error": "INVALID_PAYLOAD"})
	}
	in.ID = cur.ID
	in.CreatedAt = cur.CreatedAt
	if fields := validatePositionCode(&in); fields != nil {
		return echo.NewHTTPError(http.StatusBadRequest, map[string]any{"error": "VALIDATION_ERROR", "fields": fields})
	}
	if err := database.DB.Save(&in).Error; err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, in)
}

// DELETE /position-codes/:id
func (h *PositionCodeHandler) Delete(c echo.Context) error {
	id, err := strconv.Atoi(strings.TrimSpace(c.Param("id")))
	if err != nil || id <= 0 {
		return echo.NewHTTPError(http.StatusBadRequest, map[string]string{"error": "INVALID_ID"})
	}
	tx := database.DB.Delete(&models.PositionCode{}, "id = ?", id)
	if tx.Error != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, map[string]string{"error": "DB_DELETE_FAILED"})
	}
	if tx.RowsAffected == 0 {
		return echo.NewHTTPError(http.StatusNotFound, map[string]string{"error": "NOT_FOUND"})
	}
	return c.NoContent(http.StatusNoContent)
}
