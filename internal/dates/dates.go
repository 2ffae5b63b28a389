// Package dates приводит даты окончания контрактов к календарной дате.
//
// Даты приходят из трёх источников: date picker формы, импорт xlsx (числовая дата
// в днях от эпохи табличных редакторов) и текст, уже сериализованный ранее.
package dates

import (
	"math"
	"strings"
	"time"
)

// Форматы вывода, в которых даты хранятся в таблице.
const (
	LayoutDMY4 = "02/01/2006"
	LayoutDMY2 = "02/01/06"
	LayoutISO  = "2006-01-02"
)

// parseLayouts проверяются по порядку, побеждает первый подошедший.
// Однозначные день и месяц допускаются.
var parseLayouts = []string{"2/1/2006", "2/1/06", "2006-1-2"}

// maxSerial — 9999-12-31 в числовом формате табличных редакторов.
const maxSerial = 2958465

// firstSerialAfterLeapBug — первый номер дня после несуществующего 29.02.1900.
const firstSerialAfterLeapBug = 61

var (
	// serialOrigin — день 0: за два дня до 1900-01-01.
	serialOrigin = time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC)
	// serialOriginLeapBug — начало отсчёта для номеров до фиктивного 29.02.1900,
	// так что номер 1 соответствует 1900-01-01.
	serialOriginLeapBug = time.Date(1899, time.December, 31, 0, 0, 0, 0, time.UTC)
)

// Normalize возвращает календарную дату (полночь UTC) для значения v.
// ok=false означает, что значение не удалось распознать. Функция не паникует.
// Нулевой time.Time (0001-01-01) — это незаполненное поле, он считается как nil.
func Normalize(v any) (time.Time, bool) {
	switch x := v.(type) {
	case nil:
		return time.Time{}, false
	case time.Time:
		if x.IsZero() {
			return time.Time{}, false
		}
		return DateOf(x), true
	case *time.Time:
		if x == nil || x.IsZero() {
			return time.Time{}, false
		}
		return DateOf(*x), true
	case int:
		return fromSerial(int64(x))
	case int32:
		return fromSerial(int64(x))
	case int64:
		return fromSerial(x)
	case uint:
		return fromSerialUnsigned(uint64(x))
	case uint32:
		return fromSerialUnsigned(uint64(x))
	case uint64:
		return fromSerialUnsigned(x)
	case float32:
		return fromFloat(float64(x))
	case float64:
		return fromFloat(x)
	case string:
		return parseText(x)
	default:
		return time.Time{}, false
	}
}

// DateOf отбрасывает время суток.
func DateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Format выводит дату в одном из поддерживаемых форматов.
func Format(d time.Time, layout string) string {
	return d.Format(layout)
}

// IsExpired: дата строго раньше сегодняшнего дня. Нераспознанная дата не считается просроченной.
func IsExpired(endDate any, today time.Time) bool {
	d, ok := Normalize(endDate)
	if !ok {
		return false
	}
	return d.Before(DateOf(today))
}

func parseText(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range parseLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func fromFloat(f float64) (time.Time, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return time.Time{}, false
	}
	if f < 0 || f > maxSerial {
		return time.Time{}, false
	}
	return fromSerial(int64(f))
}

func fromSerialUnsigned(n uint64) (time.Time, bool) {
	if n > maxSerial {
		return time.Time{}, false
	}
	return fromSerial(int64(n))
}

func fromSerial(n int64) (time.Time, bool) {
	if n < 0 || n > maxSerial {
		return time.Time{}, false
	}
	if n >= 1 && n < firstSerialAfterLeapBug {
		return serialOriginLeapBug.AddDate(0, 0, int(n)), true
	}
	return serialOrigin.AddDate(0, 0, int(n)), true
}
