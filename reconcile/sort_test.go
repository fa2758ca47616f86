package reconcile

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCompareNatural(t *testing.T) {
	cases := []struct {
		a, b string
		want int
	}{
		{"2", "10", -1},
		{"10", "2", 1},
		{"10", "10", 0},
		{"10/1", "10/2", -1},
		{"10/2", "100", -1},
		{"007", "7", 0}, // เลขศูนย์นำหน้าไม่ถือว่าต่างกัน
		{"1ก", "1ข", -1},
		{"9", "9/1", -1},
	}
	for _, tc := range cases {
		got := compareNatural(tc.a, tc.b)
		switch tc.want {
		case 0:
			assert.Zero(t, got, "%q vs %q", tc.a, tc.b)
		case -1:
			assert.Negative(t, got, "%q vs %q", tc.a, tc.b)
		default:
			assert.Positive(t, got, "%q vs %q", tc.a, tc.b)
		}
	}
}

func TestSortRowsNoIDFirstThenName(t *testing.T) {
	rows := []Row{
		{NoID: "", FullName: "สมหญิง"},
		{NoID: "10", FullName: "สมศักดิ์"},
		{NoID: "2", FullName: "สมชาย"},
		{NoID: "", FullName: "กานดา"},
	}
	sortRows(rows)

	assert.Equal(t, "2", rows[0].NoID)
	assert.Equal(t, "10", rows[1].NoID)
	// แถวไม่มี NoID ต่อท้าย เรียงตามชื่อแบบไทย
	assert.Equal(t, "", rows[2].NoID)
	assert.Equal(t, "กานดา", rows[2].FullName)
	assert.Equal(t, "สมหญิง", rows[3].FullName)
}
