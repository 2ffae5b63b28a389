package model

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"time"

	"PartsKeeper/internal/dates"

	"github.com/go-playground/validator/v10"
	"go.uber.org/multierr"
)

// Столбцы листа PRINCIPAL. Имена совпадают с заголовками существующей таблицы.
const (
	ColRegion      = "UF"
	ColFRU         = "FRU"
	ColSub1        = "SUB1"
	ColSub2        = "SUB2"
	ColSub3        = "SUB3"
	ColDescription = "DESCRICAO"
	ColMachines    = "MAQUINAS"
	ColClient      = "CLIENTE"
	ColEndDate     = "DATA_FIM"
	ColSLA         = "SLA"
	ColVerifiedAt  = "DATA_VERIFICACAO"
	ColStatus      = "STATUS"
	ColClientName  = "NOME_CLIENTE"
	ColSerial      = "SERIAL"
)

// Columns — полный порядок столбцов при записи таблицы.
var Columns = []string{
	ColRegion, ColFRU, ColSub1, ColSub2, ColSub3, ColDescription, ColMachines,
	ColClient, ColEndDate, ColSLA, ColVerifiedAt, ColStatus, ColClientName, ColSerial,
}

// ExportColumns — столбцы, которые видит пользователь в выгрузках.
var ExportColumns = []string{
	ColRegion, ColFRU, ColSub1, ColSub2, ColSub3, ColDescription, ColMachines,
	ColClient, ColEndDate, ColSLA,
}

// StatusInside — статус строки с действующим контрактом.
const StatusInside = "DENTRO"

// IdentifierLen — длина FRU и SUB-кодов.
const IdentifierLen = 7

// Part — строка таблицы запчастей.
type Part struct {
	Region      string `json:"uf" validate:"required"`
	FRU         string `json:"fru" validate:"required,len=7"`
	Sub1        string `json:"sub1" validate:"omitempty,len=7"`
	Sub2        string `json:"sub2" validate:"omitempty,len=7"`
	Sub3        string `json:"sub3" validate:"omitempty,len=7"`
	Description string `json:"descricao"`
	Machines    string `json:"maquinas"`
	// Client — составное описание клиента, см. Recompose.
	Client     string `json:"cliente"`
	EndDate    string `json:"data_fim" validate:"required"`
	SLA        string `json:"sla"`
	VerifiedAt string `json:"data_verificacao"`
	Status     string `json:"status"`
	ClientName string `json:"nome_cliente"`
	Serial     string `json:"serial" validate:"required"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	return v
}

// ValidationError перечисляет все нарушенные правила сразу.
type ValidationError struct {
	err error
}

func (e *ValidationError) Error() string {
	return "validation failed: " + e.err.Error()
}

// Violations возвращает сообщения по каждому нарушению.
func (e *ValidationError) Violations() []string {
	errs := multierr.Errors(e.err)
	out := make([]string, 0, len(errs))
	for _, err := range errs {
		out = append(out, err.Error())
	}
	return out
}

// NewValidationError собирает ошибку валидации из сообщений.
func NewValidationError(msgs ...string) *ValidationError {
	var err error
	for _, m := range msgs {
		err = multierr.Append(err, fmt.Errorf("%s", m))
	}
	return &ValidationError{err: err}
}

// Validate проверяет обязательные поля и длину идентификаторов.
func (p Part) Validate() error {
	err := validate.Struct(p)
	if err == nil {
		return nil
	}
	fieldErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}
	var all error
	for _, fe := range fieldErrs {
		all = multierr.Append(all, fmt.Errorf("%s: %s", fe.Field(), describe(fe)))
	}
	return &ValidationError{err: all}
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "len":
		return fmt.Sprintf("must be exactly %s characters", fe.Param())
	default:
		return "failed " + fe.Tag()
	}
}

// Canonicalize обрезает пробелы и переводит значения в верхний регистр, как при вводе формы.
func (p *Part) Canonicalize() {
	for _, f := range []*string{
		&p.Region, &p.FRU, &p.Sub1, &p.Sub2, &p.Sub3, &p.Description, &p.Machines,
		&p.EndDate, &p.SLA, &p.ClientName, &p.Serial,
	} {
		*f = strings.ToUpper(strings.TrimSpace(*f))
	}
}

// Recompose заново строит CLIENTE из имени клиента, серийного номера, даты окончания, SLA и UF.
func (p *Part) Recompose() {
	p.Client = fmt.Sprintf("%s - (%s %s_%s) - %s", p.ClientName, p.Serial, p.displayEndDate(), p.SLA, p.Region)
}

func (p Part) displayEndDate() string {
	if d, ok := dates.Normalize(p.EndDateValue()); ok {
		return dates.Format(d, dates.LayoutDMY2)
	}
	return p.EndDate
}

var clientRe = regexp.MustCompile(`^(.*) - \((\S*) (\S*)_(.*)\) - (\S*)$`)

// FillConstituents восстанавливает имя клиента и серийный номер из CLIENTE
// для строк, записанных до появления отдельных столбцов.
func (p *Part) FillConstituents() {
	if p.ClientName != "" || p.Serial != "" {
		return
	}
	m := clientRe.FindStringSubmatch(p.Client)
	if m == nil {
		return
	}
	p.ClientName = m[1]
	p.Serial = m[2]
}

// EndDateValue отдаёт DATA_FIM как текст; nil для пустой ячейки.
// Числовые даты xlsx превращаются в текст ещё в кодеке, поэтому строка,
// похожая на число, здесь числом не считается.
func (p Part) EndDateValue() any {
	s := strings.TrimSpace(p.EndDate)
	if s == "" {
		return nil
	}
	return s
}

// IsExpired — дата окончания раньше сегодняшнего дня.
func (p Part) IsExpired(today time.Time) bool {
	return dates.IsExpired(p.EndDateValue(), today)
}

// Cell возвращает значение столбца по имени.
func (p Part) Cell(col string) string {
	if f := p.field(col); f != nil {
		return *f
	}
	return ""
}

// SetCell записывает значение столбца; неизвестные столбцы игнорируются.
func (p *Part) SetCell(col, value string) {
	if f := p.field(col); f != nil {
		*f = value
	}
}

func (p *Part) field(col string) *string {
	switch strings.ToUpper(strings.TrimSpace(col)) {
	case ColRegion:
		return &p.Region
	case ColFRU:
		return &p.FRU
	case ColSub1:
		return &p.Sub1
	case ColSub2:
		return &p.Sub2
	case ColSub3:
		return &p.Sub3
	case ColDescription:
		return &p.Description
	case ColMachines:
		return &p.Machines
	case ColClient:
		return &p.Client
	case ColEndDate:
		return &p.EndDate
	case ColSLA:
		return &p.SLA
	case ColVerifiedAt:
		return &p.VerifiedAt
	case ColStatus:
		return &p.Status
	case ColClientName:
		return &p.ClientName
	case ColSerial:
		return &p.Serial
	}
	return nil
}

// Values возвращает значения в порядке cols.
func (p Part) Values(cols []string) []string {
	out := make([]string, len(cols))
	for i, c := range cols {
		out[i] = p.Cell(c)
	}
	return out
}

// Fingerprint — короткий хеш содержимого строки. Клиент передаёт его при изменении
// строки по позиции, чтобы не изменить строку, которая успела сдвинуться.
func (p Part) Fingerprint() string {
	h := sha256.Sum256([]byte(strings.Join(p.Values(Columns), "\x1f")))
	return hex.EncodeToString(h[:8])
}
