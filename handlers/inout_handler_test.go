package handlers

import (
	"net/http"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ballnaha/p-post-sub003/cache"
	"github.com/ballnaha/p-post-sub003/database"
	"github.com/ballnaha/p-post-sub003/models"
)

// ชุดข้อมูลปี 2568: ผู้ครอง 1 คนกำลังย้ายไปอัตราว่าง, อัตราว่างอีกช่องไม่มีใครจอง
func seedInOutFixture(t *testing.T) {
	t.Helper()

	require.NoError(t, database.DB.Create(&models.PositionCode{ID: 1, Code: "0101", Name: "สว.", RankLevel: 3}).Error)
	require.NoError(t, database.DB.Create(&models.PositionCode{ID: 2, Code: "0205", Name: "รอง สว.", RankLevel: 5}).Error)

	pc := uint(2)
	slots := []models.PersonnelSlot{
		{ID: 1, Year: "2568", Unit: "บก.น.1", PositionNumber: "101", NoID: "1",
			FullName: "พ.ต.ท. สมชาย ใจดี", NationalID: "1103700000011", PosCodeID: &pc, Active: true},
		{ID: 2, Year: "2568", Unit: "บก.น.1", PositionNumber: "102", NoID: "2",
			FullName: "ว่าง", Active: true},
		{ID: 3, Year: "2568", Unit: "บก.น.1", PositionNumber: "103", NoID: "3",
			FullName: "ว่าง", Active: true},
	}
	for i := range slots {
		require.NoError(t, database.DB.Create(&slots[i]).Error)
	}

	tr := models.SwapTransaction{ID: 1, Year: "2568", SwapType: models.SwapTypeTransfer,
		Status: models.SwapStatusCompleted, GroupNumber: "กลุ่ม 1"}
	require.NoError(t, database.DB.Create(&tr).Error)

	pid := uint(1)
	toPC := uint(1)
	require.NoError(t, database.DB.Create(&models.MovementRecord{
		ID: 1, TransactionID: 1, Sequence: 1,
		PersonnelID: &pid, NationalID: "1103700000011", FullName: "พ.ต.ท. สมชาย ใจดี",
		FromUnit: "บก.น.1", FromPositionNumber: "101", FromPosition: "รอง สว.",
		ToUnit: "บก.น.1", ToPositionNumber: "102", ToPosition: "สว.", ToPosCodeID: &toPC,
		Reason: "หมุนเวียนกำลังพล",
	}).Error)
}

func TestReconciledPositionsEndToEnd(t *testing.T) {
	setupTestDB(t)
	seedInOutFixture(t)
	e := echo.New()
	h := NewInOutHandler()

	rec, err := doJSON(t, e, h.List, http.MethodGet, "/reconciled-positions?year=2568", "")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, rec.Code)

	out := decodeBody(t, rec)
	assert.Equal(t, true, out["success"])
	data := out["data"].(map[string]any)

	// 3 แถว: ผู้ครองที่กำลังย้าย, อัตราว่างที่เขากำลังเข้า, อัตราว่างจริง
	assert.EqualValues(t, 3, data["totalCount"])
	details := data["swapDetails"].([]any)
	require.Len(t, details, 3)

	first := details[0].(map[string]any)
	assert.Equal(t, "1", first["noId"])
	assert.Equal(t, "พ.ต.ท. สมชาย ใจดี", first["fullName"])
	assert.Equal(t, true, first["hasSwapped"])
	assert.Equal(t, "102", first["toPositionNumber"])

	second := details[1].(map[string]any)
	assert.Equal(t, "พ.ต.ท. สมชาย ใจดี", second["fullName"]) // แถวฝั่งเข้า
	assert.Equal(t, true, second["filledVacancy"])

	third := details[2].(map[string]any)
	assert.Equal(t, "vacant", third["occupancy"])
	assert.Equal(t, false, third["hasSwapped"])

	summary := data["summary"].(map[string]any)
	assert.EqualValues(t, 3, summary["totalPersonnel"])
	assert.EqualValues(t, 2, summary["totalVacant"])
	assert.EqualValues(t, 1, summary["filledVacant"])
	// นับเฉพาะแถวขาออก (แถวขาเข้าอัตราว่างไม่มีรหัสตำแหน่งต้นทางให้เทียบ)
	assert.EqualValues(t, 1, summary["promoted"])
}

func TestReconciledPositionsRequiresNumericYear(t *testing.T) {
	setupTestDB(t)
	e := echo.New()
	h := NewInOutHandler()

	for _, target := range []string{"/reconciled-positions", "/reconciled-positions?year=abcd"} {
		_, err := doJSON(t, e, h.List, http.MethodGet, target, "")
		require.Error(t, err, target)
		he, ok := err.(*echo.HTTPError)
		require.True(t, ok)
		assert.Equal(t, http.StatusBadRequest, he.Code)
	}
}

func TestReconciledPositionsPagination(t *testing.T) {
	setupTestDB(t)
	seedInOutFixture(t)
	e := echo.New()
	h := NewInOutHandler()

	rec, err := doJSON(t, e, h.List, http.MethodGet, "/reconciled-positions?year=2568&page=1&pageSize=2", "")
	require.NoError(t, err)
	out := decodeBody(t, rec)
	data := out["data"].(map[string]any)
	assert.EqualValues(t, 3, data["totalCount"])
	assert.Len(t, data["swapDetails"].([]any), 1) // หน้า 2 เหลือแถวเดียว
	assert.EqualValues(t, 1, data["page"])
	assert.EqualValues(t, 2, data["pageSize"])
}

func TestFiltersEndpointUsesCache(t *testing.T) {
	setupTestDB(t)
	seedInOutFixture(t)
	e := echo.New()
	h := NewFiltersHandler(cache.NewTTL(5*time.Minute, 100))

	rec, err := doJSON(t, e, h.List, http.MethodGet, "/reconciled-positions/filters?year=2568", "")
	require.NoError(t, err)
	out := decodeBody(t, rec)
	require.Equal(t, true, out["success"])
	assert.Nil(t, out["cached"])

	data := out["data"].(map[string]any)
	holders := data["currentHolder"].([]any)
	require.NotEmpty(t, holders)
	top := holders[0].(map[string]any)
	assert.Equal(t, "พ.ต.ท. สมชาย ใจดี", top["value"])
	assert.EqualValues(t, 2, top["count"]) // โผล่ทั้งแถวขาออกและแถวขาเข้า

	reasons := data["reason"].([]any)
	require.NotEmpty(t, reasons)
	assert.Equal(t, "หมุนเวียนกำลังพล", reasons[0].(map[string]any)["value"])

	// ยิงซ้ำด้วยฟิลเตอร์เดิม → ได้จาก cache
	rec, err = doJSON(t, e, h.List, http.MethodGet, "/reconciled-positions/filters?year=2568", "")
	require.NoError(t, err)
	out = decodeBody(t, rec)
	assert.Equal(t, true, out["cached"])
}
