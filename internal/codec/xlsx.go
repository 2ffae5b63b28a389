package codec

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"PartsKeeper/internal/dates"
	"PartsKeeper/internal/model"

	"github.com/xuri/excelize/v2"
)

// SheetName — лист, в котором хранится таблица запчастей.
const SheetName = "PRINCIPAL"

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// PartsXLSX хранит таблицу на листе PRINCIPAL файла xlsx.
type PartsXLSX struct{}

func (PartsXLSX) ContentType() string { return xlsxContentType }

// Decode читает лист PRINCIPAL (или первый лист, если его нет).
// Столбцы сопоставляются по заголовку, полностью пустые строки пропускаются.
func (PartsXLSX) Decode(data []byte) ([]model.Part, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("open xlsx: %w", err)
	}
	defer f.Close()

	sheet := SheetName
	if idx, err := f.GetSheetIndex(sheet); err != nil || idx < 0 {
		list := f.GetSheetList()
		if len(list) == 0 {
			return nil, nil
		}
		sheet = list[0]
	}
	// RawCellValue: даты остаются порядковыми номерами, а не отформатированным текстом
	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", sheet, err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	header := make([]string, len(rows[0]))
	for i, h := range rows[0] {
		header[i] = strings.ToUpper(strings.TrimSpace(h))
	}

	parts := make([]model.Part, 0, len(rows)-1)
	for i, row := range rows[1:] {
		if blankRow(row) {
			continue
		}
		var p model.Part
		for j, cell := range row {
			if j >= len(header) {
				continue
			}
			value := strings.TrimSpace(cell)
			if isDateColumn(header[j]) && value != "" {
				value = dateCell(f, sheet, j+1, i+2, value)
			}
			p.SetCell(header[j], value)
		}
		p.FillConstituents()
		parts = append(parts, p)
	}
	return parts, nil
}

// dateCell переводит числовую ячейку даты в dd/mm/yy. Текстовые ячейки
// остаются как есть, даже если текст похож на число ("2024").
func dateCell(f *excelize.File, sheet string, col, row int, raw string) string {
	name, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return raw
	}
	typ, err := f.GetCellType(sheet, name)
	if err != nil {
		return raw
	}
	switch typ {
	case excelize.CellTypeNumber, excelize.CellTypeUnset:
	default:
		return raw
	}
	serial, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return raw
	}
	if d, ok := dates.Normalize(serial); ok {
		return dates.Format(d, dates.LayoutDMY2)
	}
	return raw
}

func isDateColumn(col string) bool {
	return col == model.ColEndDate || col == model.ColVerifiedAt
}

// Encode пишет все столбцы model.Columns на лист PRINCIPAL.
// Все значения пишутся текстом: числовые даты раскрываются ещё при чтении.
func (PartsXLSX) Encode(parts []model.Part) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		return nil, err
	}
	header := make([]any, len(model.Columns))
	for i, c := range model.Columns {
		header[i] = c
	}
	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		return nil, err
	}
	for i, p := range parts {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		values := make([]any, len(model.Columns))
		for j, col := range model.Columns {
			values[j] = p.Cell(col)
		}
		if err := f.SetSheetRow(SheetName, cell, &values); err != nil {
			return nil, err
		}
	}
	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func blankRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
