package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ballnaha/p-post-sub003/database"
	"github.com/ballnaha/p-post-sub003/models"
)

// เหมือน doJSON แต่เซ็ต path param :id ให้ด้วย
func doJSONID(t *testing.T, e *echo.Echo, h echo.HandlerFunc, method, target, body, id string) (*httptest.ResponseRecorder, error) {
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
	c.SetParamNames("id")
	c.SetParamValues(id)
	return rec, h(c)
}

func seedSlot(t *testing.T, s models.PersonnelSlot) models.PersonnelSlot {
	t.Helper()
	require.NoError(t, database.DB.Create(&s).Error)
	return s
}

// ย้ายอัตราไปทับเลขตำแหน่งที่มีแถว active อยู่แล้วต้องโดน 409
// ไม่งั้นบัญชีจะมี 2 แถว active บนอัตราเดียวกัน
func TestPersonnelUpdateRejectsDuplicateActiveSlot(t *testing.T) {
	setupTestDB(t)
	e := echo.New()
	h := NewPersonnelHandler()

	seedSlot(t, models.PersonnelSlot{
		Year: "2568", Unit: "บก.น.1", PositionNumber: "101",
		FullName: "พ.ต.ท. หนึ่ง คงมั่น", Active: true,
	})
	s2 := seedSlot(t, models.PersonnelSlot{
		Year: "2568", Unit: "บก.น.1", PositionNumber: "102",
		FullName: "พ.ต.ท. สอง มั่นคง", Active: true,
	})

	body := `{"year":"2568","unit":"บก.น.1","position_number":"101","full_name":"พ.ต.ท. สอง มั่นคง","active":true}`
	_, err := doJSONID(t, e, h.Update, http.MethodPut, "/personnel/"+jsonUint(s2.ID), body, jsonUint(s2.ID))
	require.Error(t, err)
	he, ok := err.(*echo.HTTPError)
	require.True(t, ok)
	assert.Equal(t, http.StatusConflict, he.Code)

	var active int64
	database.DB.Model(&models.PersonnelSlot{}).
		Where("year = ? AND unit = ? AND position_number = ? AND active = ?",
			"2568", "บก.น.1", "101", true).
		Count(&active)
	assert.EqualValues(t, 1, active)

	// แก้แถวเดิมด้วยเลขตำแหน่งของตัวเองต้องยังผ่าน (ไม่นับตัวเองเป็นแถวซ้ำ)
	body = `{"year":"2568","unit":"บก.น.1","position_number":"102","full_name":"พ.ต.อ. สอง มั่นคง"}`
	rec, err := doJSONID(t, e, h.Update, http.MethodPut, "/personnel/"+jsonUint(s2.ID), body, jsonUint(s2.ID))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)
}

// PUT ที่ส่งมาไม่ครบทุกฟิลด์ต้องไม่ล้างฟิลด์ที่ไม่ได้ส่ง
// โดยเฉพาะ active ห้ามพลิกเป็น false จนอัตราหายจากบัญชี
func TestPersonnelUpdateKeepsOmittedFields(t *testing.T) {
	setupTestDB(t)
	e := echo.New()
	h := NewPersonnelHandler()

	s := seedSlot(t, models.PersonnelSlot{
		Year: "2568", Unit: "บก.น.1", PositionNumber: "101",
		NoID: "5", FullName: "พ.ต.ท. หนึ่ง คงมั่น",
		Rank: "พ.ต.ท.", NationalID: "1100500123456",
		Active: true,
	})

	body := `{"year":"2568","unit":"บก.น.1","position_number":"101","full_name":"พ.ต.อ. หนึ่ง คงมั่น"}`
	rec, err := doJSONID(t, e, h.Update, http.MethodPut, "/personnel/"+jsonUint(s.ID), body, jsonUint(s.ID))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)

	var got models.PersonnelSlot
	require.NoError(t, database.DB.First(&got, "id = ?", s.ID).Error)
	assert.True(t, got.Active)
	assert.Equal(t, "5", got.NoID)
	assert.Equal(t, "1100500123456", got.NationalID)
	assert.Equal(t, "พ.ต.อ. หนึ่ง คงมั่น", got.FullName)
}
