package service

import (
	"PartsKeeper/internal/codec"
	"PartsKeeper/internal/dates"
	"PartsKeeper/internal/model"
	"PartsKeeper/internal/repo"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/samber/lo"
	"go.uber.org/zap"
)

// Форматы выгрузок.
const (
	FormatCSV  = "csv"
	FormatTSV  = "tsv"
	FormatText = "text"
)

// TableStore — таблица запчастей в удалённом хранилище.
type TableStore interface {
	Fetch(ctx context.Context) (repo.Snapshot[model.Part], error)
	Update(ctx context.Context, message string, mutate repo.Mutation[model.Part]) (repo.Snapshot[model.Part], error)
}

// Auditor записывает действие пользователя в журнал. Ошибки журнала не прерывают операцию.
type Auditor interface {
	Record(ctx context.Context, user, action, details string, before, after any)
}

// PartInput — данные формы заведения запчасти.
type PartInput struct {
	Region      string `json:"uf"`
	FRU         string `json:"fru"`
	Sub1        string `json:"sub1"`
	Sub2        string `json:"sub2"`
	Sub3        string `json:"sub3"`
	Description string `json:"descricao"`
	Machines    string `json:"maquinas"`
	ClientName  string `json:"cliente"`
	Serial      string `json:"serial"`
	EndDate     string `json:"data_fim"`
	SLA         string `json:"sla"`
}

// RenewInput — новая дата окончания и, при необходимости, новый SLA.
type RenewInput struct {
	EndDate string `json:"data_fim"`
	SLA     string `json:"sla"`
}

// IndexedPart — строка вместе с позицией в таблице и отпечатком для If-Match.
type IndexedPart struct {
	Index   int  `json:"index"`
	Expired bool `json:"expired"`
	// ETag — model.Part.Fingerprint на момент чтения.
	ETag string `json:"etag"`
	model.Part
}

// PartService — операции над таблицей запчастей от имени сессии.
type PartService struct {
	table  TableStore
	audit  Auditor
	logger *zap.SugaredLogger
	now    func() time.Time
}

func NewPartService(table TableStore, audit Auditor, logger *zap.SugaredLogger) *PartService {
	return &PartService{table: table, audit: audit, logger: logger, now: time.Now}
}

// List возвращает строки UF пользователя с абсолютными позициями.
func (s *PartService) List(ctx context.Context, sess model.Session) ([]IndexedPart, error) {
	if !sess.Authenticated() {
		return nil, ErrForbidden
	}
	snap, err := s.table.Fetch(ctx)
	if err != nil {
		return nil, err
	}
	today := s.now()
	out := make([]IndexedPart, 0, len(snap.Rows))
	for i, p := range snap.Rows {
		if !sess.CanAccess(p.Region) {
			continue
		}
		out = append(out, indexed(i, p, today))
	}
	return out, nil
}

// Expired — строки UF пользователя с истёкшей датой окончания.
func (s *PartService) Expired(ctx context.Context, sess model.Session) ([]IndexedPart, error) {
	all, err := s.List(ctx, sess)
	if err != nil {
		return nil, err
	}
	return lo.Filter(all, func(p IndexedPart, _ int) bool { return p.Expired }), nil
}

// Create добавляет строку в конец таблицы.
// Непонятная дата окончания не мешает сохранению: строка сохраняется с введённым текстом.
func (s *PartService) Create(ctx context.Context, sess model.Session, in PartInput) (IndexedPart, error) {
	if !sess.Authenticated() {
		return IndexedPart{}, ErrForbidden
	}
	today := s.now()
	p := model.Part{
		Region: in.Region, FRU: in.FRU, Sub1: in.Sub1, Sub2: in.Sub2, Sub3: in.Sub3,
		Description: in.Description, Machines: in.Machines, ClientName: in.ClientName,
		Serial: in.Serial, EndDate: in.EndDate, SLA: in.SLA,
	}
	p.Canonicalize()
	if err := p.Validate(); err != nil {
		return IndexedPart{}, err
	}
	if !sess.CanAccess(p.Region) {
		return IndexedPart{}, fmt.Errorf("%w: region %s", ErrForbidden, p.Region)
	}
	p.EndDate = normalizeEndDate(p.EndDate)
	p.VerifiedAt = dates.Format(today, dates.LayoutDMY2)
	p.Status = model.StatusInside
	p.Recompose()

	var index int
	_, err := s.table.Update(ctx, commitMessage(today, model.ActionCreate, "FRU "+p.FRU), func(rows []model.Part) ([]model.Part, error) {
		index = len(rows)
		return repo.Append(rows, p), nil
	})
	if err != nil {
		return IndexedPart{}, err
	}
	s.logger.Infow("Part created", "user", sess.Login(), "fru", p.FRU, "uf", p.Region, "index", index)
	s.audit.Record(ctx, sess.Login(), model.ActionCreate, "FRU "+p.FRU, nil, p)
	return indexed(index, p, today), nil
}

// Renew продлевает просроченный контракт в позиции index.
func (s *PartService) Renew(ctx context.Context, sess model.Session, index int, etag string, in RenewInput) (IndexedPart, error) {
	if etag == "" {
		return IndexedPart{}, ErrPreconditionRequired
	}
	if strings.TrimSpace(in.EndDate) == "" {
		return IndexedPart{}, model.NewValidationError("data_fim: is required")
	}
	today := s.now()
	var before, after model.Part
	details := fmt.Sprintf("Linha %d", index)
	_, err := s.table.Update(ctx, commitMessage(today, model.ActionRenew, details), func(rows []model.Part) ([]model.Part, error) {
		cur, err := s.target(sess, rows, index, etag)
		if err != nil {
			return nil, err
		}
		if !cur.IsExpired(today) {
			return nil, ErrNotExpired
		}
		before, after = cur, cur
		after.EndDate = normalizeEndDate(strings.ToUpper(strings.TrimSpace(in.EndDate)))
		if sla := strings.ToUpper(strings.TrimSpace(in.SLA)); sla != "" {
			after.SLA = sla
		}
		after.Status = model.StatusInside
		// у старых строк без NOME_CLIENTE/SERIAL описание клиента не пересобрать
		if after.ClientName != "" || after.Serial != "" {
			after.Recompose()
		} else {
			s.logger.Warnw("CLIENTE not recomposed: legacy row without NOME_CLIENTE/SERIAL, descriptor keeps old DATA_FIM and SLA",
				"index", index, "fru", after.FRU, "cliente", after.Client)
		}
		return repo.Replace(rows, index, after)
	})
	if err != nil {
		return IndexedPart{}, err
	}
	s.logger.Infow("Contract renewed", "user", sess.Login(), "index", index, "data_fim", after.EndDate)
	s.audit.Record(ctx, sess.Login(), model.ActionRenew, details, before, after)
	return indexed(index, after, today), nil
}

// Delete удаляет строку index; строки после неё сдвигаются.
func (s *PartService) Delete(ctx context.Context, sess model.Session, index int, etag string) error {
	if etag == "" {
		return ErrPreconditionRequired
	}
	today := s.now()
	var before model.Part
	details := fmt.Sprintf("Linha %d", index)
	_, err := s.table.Update(ctx, commitMessage(today, model.ActionDelete, details), func(rows []model.Part) ([]model.Part, error) {
		cur, err := s.target(sess, rows, index, etag)
		if err != nil {
			return nil, err
		}
		before = cur
		return repo.Remove(rows, index)
	})
	if err != nil {
		return err
	}
	s.logger.Infow("Part deleted", "user", sess.Login(), "index", index, "fru", before.FRU)
	s.audit.Record(ctx, sess.Login(), model.ActionDelete, details, before, nil)
	return nil
}

// Export выгружает видимые строки в CSV или TSV без столбцов STATUS и DATA_VERIFICACAO.
func (s *PartService) Export(ctx context.Context, sess model.Session, format string) ([]byte, string, error) {
	c, err := exportCodec(format)
	if err != nil {
		return nil, "", err
	}
	rows, err := s.List(ctx, sess)
	if err != nil {
		return nil, "", err
	}
	data, err := c.Encode(parts(rows))
	if err != nil {
		return nil, "", err
	}
	s.audit.Record(ctx, sess.Login(), model.ActionExport,
		fmt.Sprintf("Exportou %s (%d linhas)", strings.ToUpper(format), len(rows)), nil, nil)
	return data, c.ContentType(), nil
}

// ExpiredReport выгружает просроченные строки: text — "UF | FRU | CLIENTE | DATA_FIM" по строке на запись.
func (s *PartService) ExpiredReport(ctx context.Context, sess model.Session, format string) ([]byte, string, error) {
	var (
		c   codec.PartsCSV
		err error
	)
	if format != FormatText {
		if c, err = exportCodec(format); err != nil {
			return nil, "", err
		}
	}
	rows, err := s.Expired(ctx, sess)
	if err != nil {
		return nil, "", err
	}

	var (
		data        []byte
		contentType string
	)
	if format == FormatText {
		data, contentType = pipeReport(rows), "text/plain; charset=utf-8"
	} else {
		if data, err = c.Encode(parts(rows)); err != nil {
			return nil, "", err
		}
		contentType = c.ContentType()
	}
	s.audit.Record(ctx, sess.Login(), model.ActionExportExpired,
		fmt.Sprintf("Exportou relatório vencidas (%d linhas)", len(rows)), nil, nil)
	return data, contentType, nil
}

// target находит строку для изменения по позиции и проверяет права и отпечаток.
func (s *PartService) target(sess model.Session, rows []model.Part, index int, etag string) (model.Part, error) {
	if index < 0 || index >= len(rows) {
		return model.Part{}, ErrNoSuchRow
	}
	cur := rows[index]
	if !sess.CanAccess(cur.Region) {
		return model.Part{}, ErrForbidden
	}
	if cur.Fingerprint() != etag {
		return model.Part{}, ErrRowChanged
	}
	return cur, nil
}

func exportCodec(format string) (codec.PartsCSV, error) {
	switch format {
	case FormatCSV, "":
		return codec.PartsCSV{Comma: codec.CommaCSV, Columns: model.ExportColumns}, nil
	case FormatTSV:
		return codec.PartsCSV{Comma: codec.CommaTSV, Columns: model.ExportColumns}, nil
	}
	return codec.PartsCSV{}, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
}

func pipeReport(rows []IndexedPart) []byte {
	var b strings.Builder
	for _, r := range rows {
		fmt.Fprintf(&b, "%s | %s | %s | %s\n", r.Region, r.FRU, r.Client, displayDate(r.EndDate))
	}
	return []byte(b.String())
}

func parts(rows []IndexedPart) []model.Part {
	return lo.Map(rows, func(r IndexedPart, _ int) model.Part { return r.Part })
}

func indexed(i int, p model.Part, today time.Time) IndexedPart {
	return IndexedPart{Index: i, Expired: p.IsExpired(today), ETag: p.Fingerprint(), Part: p}
}

// normalizeEndDate приводит распознанную дату к dd/mm/yy, иначе оставляет текст как есть.
func normalizeEndDate(raw string) string {
	if d, ok := dates.Normalize(raw); ok {
		return dates.Format(d, dates.LayoutDMY2)
	}
	return raw
}

// displayDate приводит распознанные даты (например dd/mm/yyyy) к dd/mm/yy.
func displayDate(raw string) string {
	p := model.Part{EndDate: raw}
	if d, ok := dates.Normalize(p.EndDateValue()); ok {
		return dates.Format(d, dates.LayoutDMY2)
	}
	return raw
}

func commitMessage(at time.Time, action, details string) string {
	return fmt.Sprintf("Atualização automática SALDO_PECAS (%s): %s %s", at.Format("02/01/2006 15:04"), action, details)
}
