package reconcile

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOccupancy(t *testing.T) {
	cases := []struct {
		name string
		want OccupancyState
	}{
		{"", Vacant},
		{"   ", Vacant},
		{"-", Vacant},
		{"ว่าง", Vacant},
		{"ว่าง (กันตำแหน่ง)", Reserved},
		{"ว่าง(กันตำแหน่ง)", Reserved},
		{"ว่าง  (กันตำแหน่ง)", Reserved},
		{"กันตำแหน่ง", Reserved},
		{"พ.ต.ท. สมชาย ใจดี", Occupied},
		{"ร.ต.อ. วารี ว่องไว", Occupied},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, Occupancy(tc.name), "fullName=%q", tc.name)
	}
}

func TestSlotKey(t *testing.T) {
	k := NewSlotKey("  บก.น.1 ", " 1001 ")
	assert.Equal(t, SlotKey{Unit: "บก.น.1", PositionNumber: "1001"}, k)
	assert.True(t, k.Valid())
	assert.False(t, NewSlotKey("บก.น.1", "  ").Valid())

	// คีย์เป็น struct ค่าที่มีตัวคั่นแปลก ๆ ต้องไม่ชนกัน
	a := NewSlotKey("ก|ข", "1")
	b := NewSlotKey("ก", "ข|1")
	assert.NotEqual(t, a, b)
}
