package format

import (
	"strconv"
	"strings"
	"time"
)

// ExportFilename names the exported artifact from the invoice number, or
// falls back to a timestamp when no number is set: Invoice-<number>.pdf or
// Invoice-<unix-millis>.pdf.
func ExportFilename(invoiceNumber string, now time.Time) string {
	number := strings.TrimSpace(invoiceNumber)
	if number == "" {
		number = strconv.FormatInt(now.UnixMilli(), 10)
	}
	return "Invoice-" + number + ".pdf"
}
