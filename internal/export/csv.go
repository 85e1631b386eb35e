package export

import (
	"encoding/csv"
	"fmt"
	"io"
)

const ContentTypeCSV = "text/csv; charset=utf-8"

// CSVRenderer writes the document grid. Semicolons keep the decimal commas
// intact for spreadsheet apps in Brazilian locales.
type CSVRenderer struct {
	Comma rune
}

func NewCSVRenderer() CSVRenderer {
	return CSVRenderer{Comma: ';'}
}

func (r CSVRenderer) Render(w io.Writer, doc Document) error {
	cw := csv.NewWriter(w)
	if r.Comma != 0 {
		cw.Comma = r.Comma
	}
	if err := cw.WriteAll(doc.Grid()); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	return nil
}
