package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"exodash/internal/engine"
)

// WriteXLSX writes the whole table to a single-sheet workbook: a bold header
// row followed by every record. Nulls become empty cells.
func WriteXLSX(w io.Writer, t *engine.Table, sheet string) error {
	if sheet == "" {
		sheet = "data"
	}
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		return fmt.Errorf("export: name sheet: %w", err)
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("export: header style: %w", err)
	}

	sw, err := f.NewStreamWriter(sheet)
	if err != nil {
		return fmt.Errorf("export: stream writer: %w", err)
	}

	cols := t.Columns()
	header := make([]interface{}, len(cols))
	for i, c := range cols {
		header[i] = c
	}
	if err := sw.SetRow("A1", header, excelize.RowOpts{StyleID: bold}); err != nil {
		return fmt.Errorf("export: header: %w", err)
	}

	for r := 0; r < t.NumRows(); r++ {
		cell, err := excelize.CoordinatesToCellName(1, r+2)
		if err != nil {
			return err
		}
		if err := sw.SetRow(cell, t.Row(r)); err != nil {
			return fmt.Errorf("export: row %d: %w", r, err)
		}
	}
	if err := sw.Flush(); err != nil {
		return fmt.Errorf("export: flush: %w", err)
	}
	return f.Write(w)
}
