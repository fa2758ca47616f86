package handlers

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/ballnaha/p-post-sub003/database"
	"github.com/ballnaha/p-post-sub003/models"
	"github.com/ballnaha/p-post-sub003/reconcile"
)

type DashboardHandler struct{}

func NewDashboardHandler() *DashboardHandler { return &DashboardHandler{} }

// GET /dashboard/summary?year=2568
// ตัวเลขคร่าว ๆ สำหรับหน้าแรก: อัตราทั้งหมด/ว่าง/กัน, รายการย้ายแยกประเภท, draft ค้าง
func (h *DashboardHandler) Summary(c echo.Context) error {
	year := strings.TrimSpace(c.QueryParam("year"))
	if !reYear.MatchString(year) {
		return echo.NewHTTPError(http.StatusBadRequest, map[string]any{
			"error":  "VALIDATION_ERROR",
			"fields": map[string]string{"year": "กรุณาระบุปีงบประมาณเป็น พ.ศ. 4 หลัก"},
		})
	}

	var slots []models.PersonnelSlot
	if err := database.DB.Select("full_name").
		Where("active = ? AND year = ?", true, year).Find(&slots).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, map[string]string{"error": "DB_QUERY_FAILED"})
	}
	var vacant, reserved int
	for i := range slots {
		switch reconcile.Occupancy(slots[i].FullName) {
		case reconcile.Vacant:
			vacant++
		case reconcile.Reserved:
			reserved++
		}
	}

	type typeCount struct {
		SwapType string
		N        int64
	}
	var byType []typeCount
	database.DB.Model(&models.SwapTransaction{}).
		Select("swap_type, COUNT(*) AS n").
		Where("year = ? AND swap_type <> ?", year, models.SwapTypeBoardLayout).
		Group("swap_type").Scan(&byType)

	swaps := map[string]int64{}
	for _, tc := range byType {
		swaps[tc.SwapType] = tc.N
	}

	var pendingDrafts int64
	database.DB.Model(&models.SwapTransaction{}).
		Where("year = ? AND status = ? AND swap_type <> ?",
			year, models.SwapStatusDraft, models.SwapTypeBoardLayout).
		Count(&pendingDrafts)

	return c.JSON(http.StatusOK, map[string]any{
		"year":           year,
		"total_slots":    len(slots),
		"vacant_slots":   vacant,
		"reserved_slots": reserved,
		"swaps_by_type":  swaps,
		"pending_drafts": pendingDrafts,
	})
}
