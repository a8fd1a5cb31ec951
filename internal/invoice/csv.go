package invoice

import (
	"strconv"
	"strings"
)

// utf8BOM keeps spreadsheet software from misreading the export as Shift_JIS.
const utf8BOM = "\uFEFF"

// csvHeader is the fixed column order the university purchase-request system
// imports.
var csvHeader = []string{
	"起案日", "依頼者", "納入先名", "相手先",
	"品名", "数量", "単位", "税込単価", "金額(税込)", "本体価格", "消費税額",
}

// ExportCSV renders the invoice as purchase-request CSV. Literal commas in
// the item name are swapped for full-width commas instead of quoting the
// field; the downstream importer splits rows naively and does not understand
// RFC 4180 quoting, so this substitution must not be "fixed".
func ExportCSV(inv *Invoice) []byte {
	lines := make([]string, 0, len(inv.Items)+1)
	lines = append(lines, strings.Join(csvHeader, ","))

	for _, item := range inv.CalculatedItems() {
		fields := []string{
			inv.Date,
			inv.RequesterName,
			inv.DeliveryDestination,
			inv.VendorName,
			strings.ReplaceAll(item.Name, ",", "，"),
			formatNumber(item.Quantity),
			item.Unit,
			formatNumber(item.UnitPriceIncTax),
			strconv.FormatInt(item.AmountIncTax, 10),
			strconv.FormatInt(item.NetPrice, 10),
			strconv.FormatInt(item.TaxAmount, 10),
		}
		lines = append(lines, strings.Join(fields, ","))
	}

	return []byte(utf8BOM + strings.Join(lines, "\n"))
}

// ExportFilename embeds the document date so exports sort by draft date.
func ExportFilename(inv *Invoice) string {
	return "purchase_request_" + inv.Date + ".csv"
}

// formatNumber renders quantities and unit prices without trailing zeros,
// matching how the accounting staff type them.
func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
