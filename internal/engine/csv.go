package engine

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"time"
)

// utf8BOM keeps Excel from mangling Japanese column headers.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

var csvHeader = []string{"企業名", "URL", "お問い合わせURL", "電話番号", "ドメイン"}

// BuildCSV renders records as a UTF-8 CSV with BOM for spreadsheet import.
func BuildCSV(records []EnrichedRecord) ([]byte, error) {
	var buf bytes.Buffer
	buf.Write(utf8BOM)

	w := csv.NewWriter(&buf)
	if err := w.Write(csvHeader); err != nil {
		return nil, err
	}
	for _, r := range records {
		row := []string{r.CompanyName, r.BaseURL, r.ContactURL, r.Phone, r.Domain}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// CSVFileName returns a timestamped artifact name.
func CSVFileName(now time.Time) string {
	return fmt.Sprintf("sales_list_%s.csv", now.Format("20060102_150405"))
}
