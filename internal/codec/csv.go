package codec

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strings"
	"time"

	"PartsKeeper/internal/model"

	"github.com/google/uuid"
)

// Разделители выгрузок.
const (
	CommaCSV = ','
	CommaTSV = '\t'
)

// WriteDelimited пишет заголовок и строки через encoding/csv.
func WriteDelimited(header []string, rows [][]string, comma rune) ([]byte, error) {
	buf := &bytes.Buffer{}
	w := csv.NewWriter(buf)
	w.Comma = comma
	if err := w.Write(header); err != nil {
		return nil, err
	}
	if err := w.WriteAll(rows); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ReadDelimited возвращает заголовок и строки данных.
func ReadDelimited(data []byte, comma rune) ([]string, [][]string, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil, nil
	}
	r := csv.NewReader(bytes.NewReader(data))
	r.Comma = comma
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("read delimited: %w", err)
	}
	if len(records) == 0 {
		return nil, nil, nil
	}
	return records[0], records[1:], nil
}

// PartsCSV — выгрузка строк в CSV/TSV с заданным набором столбцов.
type PartsCSV struct {
	Comma   rune
	Columns []string
}

func (c PartsCSV) ContentType() string {
	if c.Comma == CommaTSV {
		return "text/tab-separated-values; charset=utf-8"
	}
	return "text/csv; charset=utf-8"
}

func (c PartsCSV) columns() []string {
	if len(c.Columns) == 0 {
		return model.Columns
	}
	return c.Columns
}

func (c PartsCSV) comma() rune {
	if c.Comma == 0 {
		return CommaCSV
	}
	return c.Comma
}

func (c PartsCSV) Encode(parts []model.Part) ([]byte, error) {
	cols := c.columns()
	rows := make([][]string, len(parts))
	for i, p := range parts {
		rows[i] = p.Values(cols)
	}
	return WriteDelimited(cols, rows, c.comma())
}

func (c PartsCSV) Decode(data []byte) ([]model.Part, error) {
	header, rows, err := ReadDelimited(data, c.comma())
	if err != nil {
		return nil, err
	}
	parts := make([]model.Part, 0, len(rows))
	for _, row := range rows {
		if blankRow(row) {
			continue
		}
		var p model.Part
		for j, cell := range row {
			if j < len(header) {
				p.SetCell(header[j], cell)
			}
		}
		p.FillConstituents()
		parts = append(parts, p)
	}
	return parts, nil
}

// auditHeader — столбцы logs.csv. id добавлен последним, старые файлы его не имеют.
var auditHeader = []string{"data_hora", "usuario", "acao", "detalhes", "antes", "depois", "id"}

// AuditCSV — формат logs.csv.
type AuditCSV struct{}

func (AuditCSV) ContentType() string { return "text/csv; charset=utf-8" }

func (AuditCSV) Encode(entries []model.AuditEntry) ([]byte, error) {
	rows := make([][]string, len(entries))
	for i, e := range entries {
		rows[i] = []string{
			e.Timestamp.UTC().Format(model.AuditTimeLayout),
			e.User, e.Action, e.Details, e.Before, e.After, e.ID,
		}
	}
	return WriteDelimited(auditHeader, rows, CommaCSV)
}

func (AuditCSV) Decode(data []byte) ([]model.AuditEntry, error) {
	header, rows, err := ReadDelimited(data, CommaCSV)
	if err != nil {
		return nil, err
	}
	idx := make(map[string]int, len(header))
	for i, h := range header {
		idx[strings.ToLower(strings.TrimSpace(h))] = i
	}
	get := func(row []string, name string) string {
		if i, ok := idx[name]; ok && i < len(row) {
			return row[i]
		}
		return ""
	}

	out := make([]model.AuditEntry, 0, len(rows))
	for _, row := range rows {
		e := model.AuditEntry{
			ID:      get(row, "id"),
			User:    get(row, "usuario"),
			Action:  get(row, "acao"),
			Details: get(row, "detalhes"),
			Before:  get(row, "antes"),
			After:   get(row, "depois"),
		}
		if ts, err := time.Parse(model.AuditTimeLayout, get(row, "data_hora")); err == nil {
			e.Timestamp = ts
		}
		if e.ID == "" {
			e.ID = uuid.NewString()
		}
		out = append(out, e)
	}
	return out, nil
}
