package handlers

import (
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/ballnaha/p-post-sub003/cache"
	"github.com/ballnaha/p-post-sub003/reconcile"
)

const (
	filterValueCap  = 200 // ค่า distinct สูงสุดต่อฟิลด์
	filterBatchSize = 200 // ขนาด batch ตอนไล่ resolve replacement ทั้งชุด
)

// FiltersHandler สรุปค่า distinct + ความถี่ของ 6 ฟิลด์ จากชุดกระทบยอดเต็ม
// ผลถูกพักใน cache ที่ฉีดเข้ามา (ปิดได้ในเทส)
type FiltersHandler struct {
	Cache cache.Store
}

func NewFiltersHandler(store cache.Store) *FiltersHandler {
	return &FiltersHandler{Cache: store}
}

// FilterOption = 1 ค่าในตารางความถี่
type FilterOption struct {
	Value string `json:"value"`
	Label string `json:"label"`
	Count int    `json:"count"`
}

/* -------------------- Aggregation -------------------- */

// aggregateFilters นับความถี่ทีละ batch เหมือนไล่อ่านผลทีละหน้า
// (replacement resolve เป็นของแพงสุด เลยทำเป็นช่วง ๆ ไม่ทำทั้งก้อน)
func aggregateFilters(rows []reconcile.Row, movements []reconcile.Movement) map[string][]FilterOption {
	byTx := reconcile.IndexByTransaction(movements)

	counts := map[string]map[string]int{
		"incomingPerson":  {},
		"currentHolder":   {},
		"currentPosition": {},
		"newPosition":     {},
		"supporter":       {},
		"reason":          {},
	}

	for start := 0; start < len(rows); start += filterBatchSize {
		end := start + filterBatchSize
		if end > len(rows) {
			end = len(rows)
		}
		batch := rows[start:end]
		reconcile.ResolveReplacements(batch, byTx)
		for i := range batch {
			r := &batch[i]
			incoming := ""
			if r.Replacement != nil {
				incoming = r.Replacement.FullName
			} else if r.FilledVacancy {
				incoming = r.FullName
			}
			bump(counts["incomingPerson"], incoming)
			bump(counts["currentHolder"], r.FullName)
			bump(counts["currentPosition"], r.Position)
			bump(counts["newPosition"], r.ToPosition)
			bump(counts["supporter"], r.Supporter)
			bump(counts["reason"], r.Reason)
		}
	}

	out := make(map[string][]FilterOption, len(counts))
	for field, m := range counts {
		out[field] = topOptions(m, filterValueCap)
	}
	return out
}

func bump(m map[string]int, v string) {
	v = strings.TrimSpace(v)
	if v == "" {
		return
	}
	m[v]++
}

// topOptions เรียงตามความถี่มาก→น้อย ตัดที่ limit (เสมอกันเรียงตามค่า กันผลสลับไปมา)
func topOptions(m map[string]int, limit int) []FilterOption {
	opts := make([]FilterOption, 0, len(m))
	for v, n := range m {
		opts = append(opts, FilterOption{Value: v, Label: v, Count: n})
	}
	sort.Slice(opts, func(i, j int) bool {
		if opts[i].Count != opts[j].Count {
			return opts[i].Count > opts[j].Count
		}
		return opts[i].Value < opts[j].Value
	})
	if len(opts) > limit {
		opts = opts[:limit]
	}
	return opts
}

/* -------------------- Handler -------------------- */

// GET /reconciled-positions/filters — ?unit&posCodeId&status&swapType&year
func (h *FiltersHandler) List(c echo.Context) error {
	q, fields := parseInOutQuery(c)
	if fields != nil {
		return echo.NewHTTPError(http.StatusBadRequest, map[string]any{"error": "VALIDATION_ERROR", "fields": fields})
	}

	key := fmt.Sprintf("filters|%s|%s|%d|%s|%s", q.Year, q.Unit, q.PosCodeID, q.Status, q.SwapType)
	if h.Cache != nil {
		if v, ok := h.Cache.Get(key); ok {
			return c.JSON(http.StatusOK, map[string]any{"success": true, "data": v, "cached": true})
		}
	}

	slots, movements, rankLevels, err := loadReconcileInputs(q)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]any{
			"success": false,
			"error":   "FILTERS_FAILED",
			"message": err.Error(),
		})
	}

	opts := reconcile.Options{Status: q.Status, SwapType: q.SwapType}
	rows, _ := reconcile.Reconcile(slots, movements, opts, rankLevels)
	data := aggregateFilters(rows, movements)

	if h.Cache != nil {
		h.Cache.Set(key, data)
	}
	return c.JSON(http.StatusOK, map[string]any{"success": true, "data": data})
}
