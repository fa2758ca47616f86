package reconcile

import (
	"sort"
	"strings"
	"unicode"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// sortRows เรียงตามลำดับในบัญชี (NoID) แบบ numeric-aware
// แถวที่ไม่มี NoID ไปอยู่ท้าย แล้วเรียงตามชื่อด้วย collation ภาษาไทย
func sortRows(rows []Row) {
	col := collate.New(language.Thai)
	sort.SliceStable(rows, func(i, j int) bool {
		a := strings.TrimSpace(rows[i].NoID)
		b := strings.TrimSpace(rows[j].NoID)
		switch {
		case a != "" && b != "":
			if c := compareNatural(a, b); c != 0 {
				return c < 0
			}
			return col.CompareString(rows[i].FullName, rows[j].FullName) < 0
		case a != "":
			return true // มีลำดับมาก่อนไม่มีลำดับ
		case b != "":
			return false
		default:
			return col.CompareString(rows[i].FullName, rows[j].FullName) < 0
		}
	})
}

// compareNatural เทียบ string เป็นช่วงตัวเลขสลับช่วงตัวอักษร
// เช่น "2" < "10", "10/1" < "10/2" < "100"
func compareNatural(a, b string) int {
	for a != "" && b != "" {
		aTok, aRest, aNum := nextToken(a)
		bTok, bRest, bNum := nextToken(b)
		if aNum && bNum {
			// เลขยาวกว่า (หลังตัด 0 นำหน้า) = ค่ามากกว่า
			at := strings.TrimLeft(aTok, "0")
			bt := strings.TrimLeft(bTok, "0")
			if len(at) != len(bt) {
				if len(at) < len(bt) {
					return -1
				}
				return 1
			}
			if at != bt {
				if at < bt {
					return -1
				}
				return 1
			}
		} else if aTok != bTok {
			if aTok < bTok {
				return -1
			}
			return 1
		}
		a, b = aRest, bRest
	}
	switch {
	case a == "" && b == "":
		return 0
	case a == "":
		return -1
	default:
		return 1
	}
}

// nextToken ตัด prefix ที่เป็นตัวเลขล้วนหรือไม่ใช่ตัวเลขล้วนออกมา 1 ช่วง
func nextToken(s string) (tok, rest string, numeric bool) {
	runes := []rune(s)
	numeric = unicode.IsDigit(runes[0])
	i := 1
	for i < len(runes) && unicode.IsDigit(runes[i]) == numeric {
		i++
	}
	return string(runes[:i]), string(runes[i:]), numeric
}
