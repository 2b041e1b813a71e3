package constants

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyLocation(t *testing.T) {
	tests := []struct {
		input    string
		expected LocationKind
	}{
		{input: "대성 업체", expected: LocationVendor},
		{input: "평택 현장", expected: LocationField},
		{input: "청명 창고", expected: LocationHeadquarters},
		{input: "본사", expected: LocationHeadquarters},
		{input: "업체 현장", expected: LocationVendor},
		{input: "현장 복귀 청명", expected: LocationField},
		{input: "부산", expected: LocationOther},
		{input: "", expected: LocationOther},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, ClassifyLocation(tt.input))
		})
	}
}

func TestPlacementFor(t *testing.T) {
	t.Run("should map known kinds", func(t *testing.T) {
		assert.Equal(t, Placement{Status: StatusUnderRepair, Location: "업체"}, PlacementFor("A 업체"))
		assert.Equal(t, Placement{Status: StatusOperating, Location: "현장"}, PlacementFor("B 현장"))
		assert.Equal(t, Placement{Status: StatusIdle, Location: HeadquartersWarehouse}, PlacementFor("청명"))
	})

	t.Run("should treat blank as headquarters", func(t *testing.T) {
		assert.Equal(t, DefaultPlacement(), PlacementFor("   "))
	})

	t.Run("should keep unrecognized text and flag it", func(t *testing.T) {
		assert.Equal(t, Placement{Status: StatusUnknown, Location: "부산"}, PlacementFor(" 부산 "))
	})
}

func TestKindOf(t *testing.T) {
	k, ok := KindOf(".XLSX")
	assert.True(t, ok)
	assert.Equal(t, SourceXLSX, k)

	k, ok = KindOf("tsv")
	assert.True(t, ok)
	assert.Equal(t, SourceCSV, k)

	_, ok = KindOf(".pdf")
	assert.False(t, ok)
}
