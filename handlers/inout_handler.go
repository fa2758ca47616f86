package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/ballnaha/p-post-sub003/database"
	"github.com/ballnaha/p-post-sub003/models"
	"github.com/ballnaha/p-post-sub003/reconcile"
)

// InOutHandler = เส้นทางกระทบยอด "เข้า-ออก": ใครครองอัตราไหน ใครกำลังมา ใครกำลังไป
type InOutHandler struct{}

func NewInOutHandler() *InOutHandler { return &InOutHandler{} }

/* -------------------- Query parsing -------------------- */

type inOutQuery struct {
	Year      string
	Unit      string
	PosCodeID int
	Status    string
	SwapType  string
	Search    string
	Page      int
	PageSize  int
}

// parseInOutQuery — year บังคับและต้องเป็นตัวเลข (ไม่ปล่อยผ่านเงียบ ๆ)
// page/pageSize ที่เพี้ยนใช้ค่า default แล้ว clamp แบบเดียวกับ limit/offset ของ CRUD
func parseInOutQuery(c echo.Context) (*inOutQuery, map[string]string) {
	q := &inOutQuery{
		Year:     strings.TrimSpace(c.QueryParam("year")),
		Unit:     strings.TrimSpace(c.QueryParam("unit")),
		Status:   strings.TrimSpace(c.QueryParam("status")),
		SwapType: strings.TrimSpace(c.QueryParam("swapType")),
		Search:   strings.TrimSpace(c.QueryParam("search")),
		Page:     atoiOr(c.QueryParam("page"), 0),
		PageSize: clamp(atoiOr(c.QueryParam("pageSize"), 20), 1, 200),
	}
	if q.Page < 0 {
		q.Page = 0
	}
	if s := strings.TrimSpace(c.QueryParam("posCodeId")); s != "" {
		id, err := strconv.Atoi(s)
		if err != nil || id <= 0 {
			return nil, map[string]string{"posCodeId": "posCodeId ต้องเป็นเลขบวก"}
		}
		q.PosCodeID = id
	}
	if !reYear.MatchString(q.Year) {
		return nil, map[string]string{"year": "กรุณาระบุปีงบประมาณเป็น พ.ศ. 4 หลัก"}
	}
	return q, nil
}

/* -------------------- Data loading -------------------- */

// loadReconcileInputs ดึงข้อมูล 3 ชุดที่การกระทบยอดต้องใช้
// movement เอาเฉพาะของ transaction ที่ completed ปีเดียวกัน (ไม่รวมแถวผังบอร์ด)
// เชื่อม transaction กับ record แบบ logic ใน Go ไม่ใช้ SQL join
func loadReconcileInputs(q *inOutQuery) ([]models.PersonnelSlot, []reconcile.Movement, map[uint]int, error) {
	tx := database.DB.Where("active = ? AND year = ?", true, q.Year)
	if q.Unit != "" {
		tx = tx.Where("unit = ?", q.Unit)
	}
	if q.PosCodeID > 0 {
		tx = tx.Where("pos_code_id = ?", q.PosCodeID)
	}
	var slots []models.PersonnelSlot
	if err := tx.Find(&slots).Error; err != nil {
		return nil, nil, nil, err
	}

	var trs []models.SwapTransaction
	if err := database.DB.
		Where("year = ? AND status = ? AND swap_type <> ?",
			q.Year, models.SwapStatusCompleted, models.SwapTypeBoardLayout).
		Find(&trs).Error; err != nil {
		return nil, nil, nil, err
	}

	movements := []reconcile.Movement{}
	if len(trs) > 0 {
		meta := make(map[uint]*models.SwapTransaction, len(trs))
		ids := make([]uint, 0, len(trs))
		for i := range trs {
			meta[trs[i].ID] = &trs[i]
			ids = append(ids, trs[i].ID)
		}
		var recs []models.MovementRecord
		if err := database.DB.Where("transaction_id IN ?", ids).
			Order("transaction_id ASC, sequence ASC").Find(&recs).Error; err != nil {
			return nil, nil, nil, err
		}
		for i := range recs {
			t := meta[recs[i].TransactionID]
			movements = append(movements, reconcile.Movement{
				MovementRecord: recs[i],
				SwapType:       t.SwapType,
				GroupNumber:    t.GroupNumber,
			})
		}
	}

	var codes []models.PositionCode
	if err := database.DB.Find(&codes).Error; err != nil {
		return nil, nil, nil, err
	}
	rankLevels := make(map[uint]int, len(codes))
	for _, pc := range codes {
		rankLevels[pc.ID] = pc.RankLevel
	}

	return slots, movements, rankLevels, nil
}

/* -------------------- Handler -------------------- */

// GET /reconciled-positions
// ?unit&posCodeId&status&swapType&year&search&page&pageSize&filtersOnly
func (h *InOutHandler) List(c echo.Context) error {
	q, fields := parseInOutQuery(c)
	if fields != nil {
		return echo.NewHTTPError(http.StatusBadRequest, map[string]any{"error": "VALIDATION_ERROR", "fields": fields})
	}

	slots, movements, rankLevels, err := loadReconcileInputs(q)
	if err != nil {
		// สัญญากับ FE: 500 พร้อม message ของ error จริง (ระบบภายใน)
		return c.JSON(http.StatusInternalServerError, map[string]any{
			"success": false,
			"error":   "RECONCILE_FAILED",
			"message": err.Error(),
		})
	}

	opts := reconcile.Options{Status: q.Status, SwapType: q.SwapType, Search: q.Search}
	rows, summary := reconcile.Reconcile(slots, movements, opts, rankLevels)

	if strings.EqualFold(c.QueryParam("filtersOnly"), "true") {
		return c.JSON(http.StatusOK, map[string]any{
			"success": true,
			"data": map[string]any{
				"totalCount": len(rows),
				"summary":    summary,
				"filters":    aggregateFilters(rows, movements),
			},
		})
	}

	page := reconcile.Paginate(rows, q.Page, q.PageSize)
	reconcile.ResolveReplacements(page, reconcile.IndexByTransaction(movements))

	return c.JSON(http.StatusOK, map[string]any{
		"success": true,
		"data": map[string]any{
			"swapDetails": page,
			"totalCount":  len(rows),
			"page":        q.Page,
			"pageSize":    q.PageSize,
			"summary":     summary,
			"filters": map[string]any{
				"unit":      q.Unit,
				"posCodeId": q.PosCodeID,
				"status":    q.Status,
				"swapType":  q.SwapType,
				"search":    q.Search,
			},
		},
	})
}
