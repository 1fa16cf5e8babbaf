// Package sheetx wraps xlsx workbook decoding and encoding behind a small
// row-oriented API. Uploaded recipient sheets come in through Decode and
// tabular exports go out through Encode.
package sheetx

import (
	"bytes"
	"io"

	"github.com/xuri/excelize/v2"
)

// Row is a single spreadsheet row as string cells, in column order.
type Row []string

// Cell returns the cell at index i or "" when the row is shorter.
func (r Row) Cell(i int) string {
	if i < 0 || i >= len(r) {
		return ""
	}
	return r[i]
}

// Decode reads an xlsx workbook and returns the rows of its first sheet,
// in sheet order. Trailing empty rows are dropped by the underlying reader.
func Decode(r io.Reader) ([]Row, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, sheetxErrors.NewWithCause(ErrDecodeFailed, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, sheetxErrors.New(ErrEmptyWorkbook)
	}

	raw, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, sheetxErrors.NewWithCause(ErrDecodeFailed, err).WithDetail("sheet", sheets[0])
	}

	rows := make([]Row, 0, len(raw))
	for _, cells := range raw {
		rows = append(rows, Row(cells))
	}
	return rows, nil
}

// Encode builds an xlsx workbook with a single named sheet containing the
// header followed by rows, and returns the serialized buffer.
func Encode(sheetName string, header Row, rows []Row) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return nil, sheetxErrors.NewWithCause(ErrEncodeFailed, err).WithDetail("sheet", sheetName)
	}

	all := make([]Row, 0, len(rows)+1)
	if len(header) > 0 {
		all = append(all, header)
	}
	all = append(all, rows...)

	for i, row := range all {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return nil, sheetxErrors.NewWithCause(ErrEncodeFailed, err)
		}

		cells := make([]interface{}, len(row))
		for j, v := range row {
			cells[j] = v
		}
		if err := f.SetSheetRow(sheetName, cell, &cells); err != nil {
			return nil, sheetxErrors.NewWithCause(ErrEncodeFailed, err).WithDetail("row", i+1)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, sheetxErrors.NewWithCause(ErrEncodeFailed, err)
	}
	return buf, nil
}
