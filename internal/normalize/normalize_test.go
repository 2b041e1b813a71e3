package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/joseph-ayodele/equipment-tracker/internal/entity"
)

func TestKey(t *testing.T) {
	assert.Equal(t, "serialno", Key(" Serial No. "))
	assert.Equal(t, "일자no", Key("일자-No."))
	assert.Equal(t, "s/n", Key("S/N"))
	assert.Equal(t, "repairdate", Key("repair_date"))
}

func TestRowLookup(t *testing.T) {
	t.Run("should match headers loosely", func(t *testing.T) {
		r := NewHeaderRow([]string{"Serial No.", "일자 - No."}, []string{" S1 ", "2024/03/07"})
		assert.Equal(t, "S1", r.Lookup("SerialNo"))
		assert.Equal(t, "2024/03/07", r.Lookup("일자-No."))
	})

	t.Run("should skip blank aliases", func(t *testing.T) {
		r := NewHeaderRow([]string{"규격", "일련번호"}, []string{"  ", "S2"})
		assert.Equal(t, "S2", r.Get(MovementAliases, FieldSerial))
	})

	t.Run("should tolerate short rows", func(t *testing.T) {
		r := NewHeaderRow([]string{"a", "b", "c"}, []string{"1"})
		assert.Equal(t, "", r.Lookup("c"))
		assert.Equal(t, "", r.At(5))
	})

	t.Run("should render json scalars", func(t *testing.T) {
		r := NewMapRow(map[string]any{"cost": float64(120000), "serial": "S1", "flag": true, "none": nil})
		assert.Equal(t, "120000", r.Lookup("Cost"))
		assert.Equal(t, "true", r.Lookup("flag"))
		assert.Equal(t, "", r.Lookup("none"))
	})
}

func TestNumbers(t *testing.T) {
	assert.Equal(t, 3, Quantity("3EA"))
	assert.Equal(t, 1, Quantity(""))
	assert.Equal(t, 1, Quantity("0"))
	assert.Equal(t, -2, Quantity("-2"))
	assert.Equal(t, 1, Quantity("abc"))

	assert.Equal(t, int64(1200000), Amount("₩1,200,000"))
	assert.Equal(t, int64(500), Amount("-500"))
	assert.Equal(t, int64(0), Amount("n/a"))

	assert.Equal(t, 0, Count(""))
	assert.Equal(t, 2, Count("2대"))
}

func TestSerials(t *testing.T) {
	t.Run("should map by header and dedup", func(t *testing.T) {
		rows := [][]string{
			{"No", "품목계열", "일련번호"},
			{"1", "", "S1"},
			{"2", "굴삭기", "S2"},
			{"3", "발전기", "S1"},
			{"4", "발전기", ""},
		}
		assert.Equal(t, []entity.SerialEntry{
			{Serial: "S1", Category: "발전기"},
			{Serial: "S2", Category: "굴삭기"},
		}, Serials(rows))
	})

	t.Run("should fall back to positions", func(t *testing.T) {
		rows := [][]string{
			{"번호", "종류", "번호2"},
			{"1", "굴삭기", "S9"},
		}
		assert.Equal(t, []entity.SerialEntry{{Serial: "S9", Category: "굴삭기"}}, Serials(rows))
	})
}

func TestMovements(t *testing.T) {
	t.Run("should map a movement log", func(t *testing.T) {
		rows := [][]string{
			{"일자-No.", "출고창고명", "입고창고명", "품목명", "규격", "수량", "비고"},
			{"2024/03/07 -1", "청명", "현장A", "발전기", "S1", "", "점검"},
			{"2024/03/08 -2", "현장A", "청명", "발전기", "", "1", ""},
		}
		assert.Equal(t, []entity.Movement{{
			Date:          "2024-03-07",
			OutLocation:   "청명",
			InLocation:    "현장A",
			EquipmentName: "발전기",
			Serial:        "S1",
			Quantity:      1,
			Note:          "점검",
		}}, Movements(rows))
	})

	t.Run("should turn stock snapshots into movements", func(t *testing.T) {
		rows := [][]string{
			{"재고일", "일련번호", "청명", "현장", "업체"},
			{"2024-05-01", "S1", "1", "", ""},
			{"2024-05-01", "S2", "0", "1", "1"},
			{"2024-05-01", "S3", "0", "0", "0"},
		}
		got := Movements(rows)
		assert.Len(t, got, 3)
		assert.Equal(t, "청명", got[0].InLocation)
		assert.Equal(t, "업체", got[1].InLocation)
		assert.Equal(t, "", got[2].InLocation)
		assert.Equal(t, 1, got[2].Quantity)
	})

	t.Run("should fall back to positions", func(t *testing.T) {
		rows := [][]string{
			{"a", "b", "c", "d", "e", "f", "g", "h"},
			{"2024.03.07", "청명", "현장", "발전기", "S1", "2", "메모", "정상"},
		}
		assert.Equal(t, []entity.Movement{{
			Date: "2024-03-07", OutLocation: "청명", InLocation: "현장", EquipmentName: "발전기",
			Serial: "S1", Quantity: 2, Note: "메모", Status: "정상",
		}}, Movements(rows))
	})
}

func TestRepairs(t *testing.T) {
	t.Run("should map workbook rows", func(t *testing.T) {
		rows := [][]string{
			{"수리일자", "일련번호", "수리업체", "내역", "비용"},
			{"2024.04.01", "S1", "대한정비", "엔진 교체", "1,500,000원"},
			{"2024.04.02", "", "대한정비", "", ""},
			{"미정", "S2", "", "", ""},
		}
		assert.Equal(t, []entity.Repair{
			{Date: "2024-04-01", Serial: "S1", Company: "대한정비", Details: "엔진 교체", Cost: 1500000},
			{Date: "미정", Serial: "S2"},
		}, Repairs(rows))
	})

	t.Run("should map the clean json fallback", func(t *testing.T) {
		got := CleanRepairs([]map[string]any{
			{"repair_date": "20240401", "serial": "S1", "repair_company": "A", "repair_type": "점검", "cost": float64(30000)},
			{"serial": ""},
		})
		assert.Equal(t, []entity.Repair{
			{Date: "2024-04-01", Serial: "S1", Company: "A", Details: "점검", Cost: 30000},
		}, got)
	})
}

func TestClassifySheet(t *testing.T) {
	tests := []struct {
		name     string
		expected SheetKind
	}{
		{name: "주문내역", expected: SheetOrderHistory},
		{name: "Order History", expected: SheetOrderHistory},
		{name: "주문 품목", expected: SheetOrderItems},
		{name: "Items", expected: SheetOrderItems},
		{name: "공급업체", expected: SheetSuppliers},
		{name: "제품 카탈로그", expected: SheetCatalog},
		{name: "Sheet1", expected: SheetUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ClassifySheet(tt.name))
		})
	}
}

func TestOrders(t *testing.T) {
	sheets := map[string][][]string{
		"주문내역": {
			{"주문번호", "주문일자", "공급업체", "총금액"},
			{"PO-1", "2024/02/01", "대한상사", "10,000"},
			{"", "2024/02/02", "", ""},
		},
		"품목": {
			{"주문번호", "품목명", "수량", "단가"},
			{"PO-1", "필터", "2", "5,000"},
		},
		"공급업체": {
			{"업체명", "연락처"},
			{"대한상사", "02-000-0000"},
		},
		"Sheet1": {{"x"}, {"y"}},
	}
	got := Orders([]string{"주문내역", "품목", "공급업체", "Sheet1"}, sheets)

	assert.Len(t, got.History, 1)
	assert.Equal(t, "2024-02-01", got.History[0].OrderDate)
	assert.Equal(t, int64(10000), got.History[0].TotalAmount)
	assert.Equal(t, "주문완료", got.History[0].Status)

	assert.Len(t, got.Items, 1)
	assert.Equal(t, int64(10000), got.Items[0].TotalPrice)
	assert.Equal(t, "개", got.Items[0].Unit)

	assert.Len(t, got.Suppliers, 1)
	assert.Equal(t, 5, got.Suppliers[0].Rating)
	assert.Equal(t, "일반", got.Suppliers[0].Category)

	assert.Empty(t, got.Catalog)
	assert.False(t, got.Empty())
}
