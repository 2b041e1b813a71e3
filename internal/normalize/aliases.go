package normalize

// Field is a canonical field name used as an alias table key.
type Field string

const (
	FieldSerial    Field = "serial"
	FieldCategory  Field = "category"
	FieldDate      Field = "date"
	FieldOut       Field = "outLocation"
	FieldIn        Field = "inLocation"
	FieldName      Field = "equipmentName"
	FieldQuantity  Field = "quantity"
	FieldNote      Field = "note"
	FieldStatus    Field = "status"
	FieldStockHQ   Field = "stockHeadquarters"
	FieldStockSite Field = "stockField"
	FieldStockVend Field = "stockVendor"
	FieldCompany   Field = "company"
	FieldDetails   Field = "details"
	FieldCost      Field = "cost"
)

// AliasTable maps a canonical field to the header spellings seen in the
// wild, in priority order.
type AliasTable map[Field][]string

var SerialAliases = AliasTable{
	FieldSerial:   {"일련번호", "S/N", "SN", "Serial"},
	FieldCategory: {"품목계열", "품목", "카테고리", "Category"},
}

var MovementAliases = AliasTable{
	FieldDate:      {"일자-No.", "일자", "입고일자", "출고일자", "일시", "날짜", "Date", "등록일", "기준일", "재고일"},
	FieldOut:       {"출고창고명", "출고창고", "출고", "From", "from", "출고지", "출고(창고)", "출고위치"},
	FieldIn:        {"입고창고명", "입고창고", "입고", "To", "to", "입고지", "입고(창고)", "입고위치", "현재위치"},
	FieldName:      {"장비명", "품명", "품목명", "Name", "Equipment"},
	FieldSerial:    {"규격", "일련번호", "S/N", "SN", "Serial", "Serial No", "SerialNo", "SerialNo.", "일련 No", "일련 No."},
	FieldQuantity:  {"수량", "Qty", "수량(EA)", "재고", "재고수량", "수"},
	FieldNote:      {"비고", "메모", "Note", "장비상태"},
	FieldStatus:    {"상태", "Status", "장비상태"},
	FieldStockHQ:   {"청명", "본사", "본사창고", "청명창고"},
	FieldStockSite: {"현장", "현장재고"},
	FieldStockVend: {"업체", "수리업체", "외주", "협력사"},
}

var RepairAliases = AliasTable{
	FieldDate:    {"일자", "입고일자", "수리일자", "Date"},
	FieldSerial:  {"일련번호", "S/N", "SN", "Serial"},
	FieldCompany: {"업체", "수리업체", "입고처", "Company"},
	FieldDetails: {"내용", "비고", "내역", "Details"},
	FieldCost:    {"비용", "수리비용", "금액", "Cost"},
}

// CleanRepairAliases covers the exported repairs_db_clean.json layout,
// which mixes Korean headers with snake_case keys.
var CleanRepairAliases = AliasTable{
	FieldDate:    {"수리일자", "일자", "입고일자", "date", "repair_date"},
	FieldSerial:  {"일련번호", "S/N", "SN", "Serial", "serial"},
	FieldCompany: {"업체", "수리업체", "입고처", "Company", "repair_company"},
	FieldDetails: {"내용", "비고", "내역", "Details", "repair_type", "type"},
	FieldCost:    {"비용", "수리비용", "금액", "Cost", "cost"},
}
