package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/ballnaha/p-post-sub003/database"
	"github.com/ballnaha/p-post-sub003/models"
)

// ตั้ง DB sqlite in-memory แทน Postgres แล้วชี้ global database.DB ไปที่มัน
func setupTestDB(t *testing.T) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1) // :memory: ผูกกับ connection เดียว
	require.NoError(t, database.Migrate(db))
	database.DB = db
}

func doJSON(t *testing.T, e *echo.Echo, h echo.HandlerFunc, method, target, body string) (*httptest.ResponseRecorder, error) {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	return rec, h(c)
}

func jsonUint(v uint) string { return strconv.FormatUint(uint64(v), 10) }

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

const saveBody = `{
	"year": "2568",
	"columns": [
		{
			"title": "กลุ่มสับเปลี่ยน 1",
			"isCompleted": false,
			"itemIds": ["it-1", "it-2"]
		}
	],
	"personnelMap": {
		"it-1": {
			"fullName": "พ.ต.ท. หนึ่ง คงมั่น",
			"rank": "พ.ต.ท.",
			"fromUnit": "บก.น.1", "fromPositionNumber": "101", "fromPosition": "รอง สว.",
			"toUnit": "บก.น.1", "toPositionNumber": "102", "toPosition": "สว."
		},
		"it-2": {
			"fullName": "พ.ต.ท. สอง มั่นคง",
			"rank": "พ.ต.ท.",
			"fromUnit": "บก.น.1", "fromPositionNumber": "102", "fromPosition": "รอง สว.",
			"toUnit": "บก.น.1", "toPositionNumber": "101", "toPosition": "สว."
		}
	}
}`

func TestBoardSaveLoadRoundTrip(t *testing.T) {
	setupTestDB(t)
	e := echo.New()
	h := NewBoardHandler()

	rec, err := doJSON(t, e, h.Save, http.MethodPost, "/personnel-board", saveBody)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, rec.Code)

	out := decodeBody(t, rec)
	assert.Equal(t, true, out["success"])
	assert.EqualValues(t, 1, out["createdTransactionsCount"])
	assert.EqualValues(t, 0, out["updatedTransactionsCount"])
	assert.EqualValues(t, 1, out["lanesCount"])

	// sentinel ต้องมีแถวเดียวต่อปี และเลน custom 2 รายการกลายเป็น transaction จริง
	var sentinels int64
	database.DB.Model(&models.SwapTransaction{}).
		Where("year = ? AND swap_type = ?", "2568", models.SwapTypeBoardLayout).Count(&sentinels)
	assert.EqualValues(t, 1, sentinels)

	var recs int64
	database.DB.Model(&models.MovementRecord{}).Count(&recs)
	assert.EqualValues(t, 2, recs)

	// โหลดกลับ: ลำดับเลน ชื่อเลน และ itemIds ต้องเหมือนตอนบันทึก
	rec, err = doJSON(t, e, h.Load, http.MethodGet, "/personnel-board?year=2568", "")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, rec.Code)

	out = decodeBody(t, rec)
	cols := out["columns"].([]any)
	require.Len(t, cols, 1)
	col := cols[0].(map[string]any)
	assert.Equal(t, "กลุ่มสับเปลี่ยน 1", col["title"])
	assert.Equal(t, []any{"it-1", "it-2"}, col["itemIds"])

	pm := out["personnelMap"].(map[string]any)
	p1 := pm["it-1"].(map[string]any)
	assert.Equal(t, "พ.ต.ท. หนึ่ง คงมั่น", p1["fullName"])
	assert.Equal(t, "102", p1["toPositionNumber"])
}

func TestBoardResaveReplacesSentinelAndDropsRemovedLanes(t *testing.T) {
	setupTestDB(t)
	e := echo.New()
	h := NewBoardHandler()

	rec, err := doJSON(t, e, h.Save, http.MethodPost, "/personnel-board", saveBody)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, rec.Code)

	// บันทึกใหม่แบบไม่มีเลนเดิม: transaction ที่ผังเก่าอ้างต้องถูกลบพร้อม record
	rec, err = doJSON(t, e, h.Save, http.MethodPost, "/personnel-board",
		`{"year":"2568","columns":[],"personnelMap":{}}`)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, rec.Code)

	var txs int64
	database.DB.Model(&models.SwapTransaction{}).
		Where("swap_type <> ?", models.SwapTypeBoardLayout).Count(&txs)
	assert.Zero(t, txs)

	var recs int64
	database.DB.Model(&models.MovementRecord{}).Count(&recs)
	assert.Zero(t, recs)

	var sentinels int64
	database.DB.Model(&models.SwapTransaction{}).
		Where("swap_type = ?", models.SwapTypeBoardLayout).Count(&sentinels)
	assert.EqualValues(t, 1, sentinels)
}

func TestBoardLinkedLaneUpsertTrimsTrailingRecords(t *testing.T) {
	setupTestDB(t)
	e := echo.New()
	h := NewBoardHandler()

	rec, err := doJSON(t, e, h.Save, http.MethodPost, "/personnel-board", saveBody)
	require.NoError(t, err)
	out := decodeBody(t, rec)
	lanes := out["lanes"].([]any)
	txID := uint(lanes[0].(map[string]any)["transactionId"].(float64))

	// ส่งกลับเป็นเลนที่ผูก transaction แล้ว เหลือรายการเดียว → record เกินต้องถูกตัด
	body := `{
		"year": "2568",
		"columns": [
			{"title": "กลุ่มสับเปลี่ยน 1", "transactionId": ` + jsonUint(txID) + `, "isCompleted": true, "itemIds": ["it-1"]}
		],
		"personnelMap": {
			"it-1": {
				"fullName": "พ.ต.ท. หนึ่ง คงมั่น",
				"fromUnit": "บก.น.1", "fromPositionNumber": "101",
				"toUnit": "บก.น.1", "toPositionNumber": "102"
			}
		}
	}`
	rec, err = doJSON(t, e, h.Save, http.MethodPost, "/personnel-board", body)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, rec.Code)

	out = decodeBody(t, rec)
	assert.EqualValues(t, 1, out["updatedTransactionsCount"])
	assert.EqualValues(t, 0, out["createdTransactionsCount"])

	var recs []models.MovementRecord
	database.DB.Where("transaction_id = ?", txID).Find(&recs)
	require.Len(t, recs, 1)
	assert.Equal(t, 1, recs[0].Sequence)

	// isCompleted=true ต้องดันสถานะ transaction เป็น completed
	var tr models.SwapTransaction
	require.NoError(t, database.DB.First(&tr, "id = ?", txID).Error)
	assert.Equal(t, models.SwapStatusCompleted, tr.Status)
}

func TestBoardSaveRejectsDestinationClash(t *testing.T) {
	setupTestDB(t)
	e := echo.New()
	h := NewBoardHandler()

	body := `{
		"year": "2568",
		"columns": [
			{"title": "เลน ก", "itemIds": ["a-1"]},
			{"title": "เลน ข", "itemIds": ["b-1"]}
		],
		"personnelMap": {
			"a-1": {"fullName": "ก", "toUnit": "บก.น.1", "toPositionNumber": "555"},
			"b-1": {"fullName": "ข", "toUnit": "บก.น.1", "toPositionNumber": "555"}
		}
	}`
	_, err := doJSON(t, e, h.Save, http.MethodPost, "/personnel-board", body)
	require.Error(t, err)
	he, ok := err.(*echo.HTTPError)
	require.True(t, ok)
	assert.Equal(t, http.StatusConflict, he.Code)

	// ห้ามมีอะไรถูกเขียนลง DB เลย
	var count int64
	database.DB.Model(&models.SwapTransaction{}).Count(&count)
	assert.Zero(t, count)
}

func TestBoardSaveAtomicOnMidLoopFailure(t *testing.T) {
	setupTestDB(t)
	e := echo.New()
	h := NewBoardHandler()

	// เลนแรกถูกต้อง เลนที่สองอ้าง transaction ที่ไม่มีจริง → ต้อง rollback ทั้งหมด
	body := `{
		"year": "2568",
		"columns": [
			{"title": "เลนดี", "itemIds": ["ok-1"]},
			{"title": "เลนเสีย", "transactionId": 9999, "itemIds": ["bad-1"]}
		],
		"personnelMap": {
			"ok-1": {"fullName": "ก", "toUnit": "บก.น.1", "toPositionNumber": "111"},
			"bad-1": {"fullName": "ข", "toUnit": "บก.น.2", "toPositionNumber": "222"}
		}
	}`
	rec, err := doJSON(t, e, h.Save, http.MethodPost, "/personnel-board", body)
	require.NoError(t, err) // handler ตอบ JSON 500 เอง ไม่โยน error ออกมา
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	out := decodeBody(t, rec)
	assert.Equal(t, false, out["success"])

	// สถานะก่อนหน้าต้องไม่ถูกแตะ: ไม่มี transaction ไม่มี record ไม่มี sentinel
	var txs, recs int64
	database.DB.Model(&models.SwapTransaction{}).Count(&txs)
	database.DB.Model(&models.MovementRecord{}).Count(&recs)
	assert.Zero(t, txs)
	assert.Zero(t, recs)
}

func TestBoardDelete(t *testing.T) {
	setupTestDB(t)
	e := echo.New()
	h := NewBoardHandler()

	rec, err := doJSON(t, e, h.Save, http.MethodPost, "/personnel-board", saveBody)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, rec.Code)

	rec, err = doJSON(t, e, h.Delete, http.MethodDelete, "/personnel-board?year=2568", "")
	require.NoError(t, err)
	out := decodeBody(t, rec)
	assert.EqualValues(t, 1, out["deletedCount"])

	// ลบเฉพาะผัง transaction จริงต้องยังอยู่
	var txs int64
	database.DB.Model(&models.SwapTransaction{}).
		Where("swap_type <> ?", models.SwapTypeBoardLayout).Count(&txs)
	assert.EqualValues(t, 1, txs)
}

// รายการใหม่จาก FE ที่ยังไม่มี id ต้องได้ uuid ตอนบันทึก
// และข้อมูลบุคคลในเอกสารต้องถูก key ใหม่ตาม id ที่ออกให้
func TestBoardSaveMintsItemIDForBlankCustomItem(t *testing.T) {
	setupTestDB(t)
	e := echo.New()
	h := NewBoardHandler()

	body := `{
		"year": "2568",
		"columns": [
			{"title": "ย้ายเดี่ยว", "isCompleted": false, "itemIds": [""]}
		],
		"personnelMap": {
			"": {
				"fullName": "พ.ต.ท. สาม ยั่งยืน",
				"rank": "พ.ต.ท.",
				"fromUnit": "บก.น.2", "fromPositionNumber": "201", "fromPosition": "รอง สว.",
				"toUnit": "บก.น.2", "toPositionNumber": "202", "toPosition": "สว."
			}
		}
	}`
	rec, err := doJSON(t, e, h.Save, http.MethodPost, "/personnel-board", body)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, rec.Code)

	out := decodeBody(t, rec)
	lanes := out["lanes"].([]any)
	require.Len(t, lanes, 1)
	lane := lanes[0].(map[string]any)

	itemIDs := lane["itemIds"].([]any)
	require.Len(t, itemIDs, 1)
	minted := itemIDs[0].(string)
	assert.NotEmpty(t, minted)

	personnel := lane["personnel"].(map[string]any)
	require.Contains(t, personnel, minted)
	person := personnel[minted].(map[string]any)
	assert.Equal(t, "พ.ต.ท. สาม ยั่งยืน", person["fullName"])
}

func TestBoardLoadRequiresYear(t *testing.T) {
	setupTestDB(t)
	e := echo.New()
	h := NewBoardHandler()

	_, err := doJSON(t, e, h.Load, http.MethodGet, "/personnel-board", "")
	require.Error(t, err)
	he, ok := err.(*echo.HTTPError)
	require.True(t, ok)
	assert.Equal(t, http.StatusBadRequest, he.Code)
}
