package linkaudit

import (
	"encoding/csv"
	"io"
)

// Header is the CSV header row.
var Header = []string{"app_id", "app_name", "url", "status", "host", "sample_patterns"}

// Fields returns the row in Header order.
func (r Row) Fields() []string {
	return []string{r.AppID, r.AppName, r.URL, string(r.Status), r.Host, r.SamplePatterns}
}

// WriteCSV writes the header followed by every row.
func WriteCSV(w io.Writer, rows []Row) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return err
	}
	for _, row := range rows {
		if err := cw.Write(row.Fields()); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
