package invoice

import (
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("ExportCSV", func() {
	var (
		inv    *Invoice
		output string
		lines  []string
	)

	BeforeEach(func() {
		inv = &Invoice{
			Date:                "2024-06-03",
			VendorName:          "Amazon Japan G.K.",
			RequesterName:       "山田太郎",
			DeliveryDestination: "工学部 第3研究室",
			Items: []*LineItem{
				{ID: "row-1", Name: "USBケーブル", Quantity: 3, Unit: "本", UnitPriceIncTax: 880},
			},
		}
	})

	JustBeforeEach(func() {
		output = string(ExportCSV(inv))
		lines = strings.Split(strings.TrimPrefix(output, "\uFEFF"), "\n")
	})

	It("starts with a UTF-8 byte order mark", func() {
		Expect(output).To(HavePrefix("\uFEFF"))
	})

	It("writes the fixed header row", func() {
		Expect(lines[0]).To(Equal("起案日,依頼者,納入先名,相手先,品名,数量,単位,税込単価,金額(税込),本体価格,消費税額"))
	})

	It("writes one row per item with derived values", func() {
		Expect(lines).To(HaveLen(2))
		Expect(lines[1]).To(Equal("2024-06-03,山田太郎,工学部 第3研究室,Amazon Japan G.K.,USBケーブル,3,本,880,2640,2400,240"))
	})

	When("an item name contains a comma", func() {
		BeforeEach(func() {
			inv.Items[0].Name = "Pen, Blue"
		})

		It("substitutes a full-width comma", func() {
			Expect(lines[1]).To(ContainSubstring("Pen， Blue"))
		})

		It("preserves the column count", func() {
			Expect(strings.Split(lines[1], ",")).To(HaveLen(11))
		})
	})

	When("the quantity is fractional", func() {
		BeforeEach(func() {
			inv.Items[0].Quantity = 0.5
		})

		It("renders the quantity without padding zeros", func() {
			fields := strings.Split(lines[1], ",")
			Expect(fields[5]).To(Equal("0.5"))
		})
	})

	When("the invoice has no items", func() {
		BeforeEach(func() {
			inv.Items = nil
		})

		It("exports only the header row", func() {
			Expect(lines).To(HaveLen(1))
		})
	})
})

var _ = Describe("ExportFilename", func() {
	It("embeds the document date", func() {
		inv := &Invoice{Date: "2024-06-03"}
		Expect(ExportFilename(inv)).To(Equal("purchase_request_2024-06-03.csv"))
	})
})
