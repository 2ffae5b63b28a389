package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Действия журнала. Значения совпадают с уже записанными в logs.csv.
const (
	ActionLogin         = "LOGIN"
	ActionLoginFail     = "LOGIN_FAIL"
	ActionLogout        = "LOGOUT"
	ActionCreate        = "CADASTRO"
	ActionRenew         = "RENOVACAO"
	ActionDelete        = "EXCLUSAO"
	ActionExport        = "EXPORTACAO"
	ActionExportExpired = "EXPORTACAO_RELATORIO_VENCIDAS"
	ActionExportLogs    = "EXPORTAR_LOGS"
)

// AuditTimeLayout — формат времени в logs.csv.
const AuditTimeLayout = "2006-01-02 15:04:05"

// AuditEntry — запись журнала действий. Основное хранилище — logs.csv рядом с таблицей,
// локальная БД используется, когда удалённая запись не удалась.
type AuditEntry struct {
	ID        string    `gorm:"primaryKey" json:"id"`
	Timestamp time.Time `gorm:"not null;index" json:"timestamp"`
	User      string    `gorm:"not null" json:"user"`
	Action    string    `gorm:"not null" json:"action"`
	Details   string    `json:"details"`
	Before    string    `json:"before"`
	After     string    `json:"after"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"-"`
}

// NewAuditEntry создаёт запись; before/after сериализуются в JSON, nil даёт пустую строку.
func NewAuditEntry(at time.Time, user, action, details string, before, after any) AuditEntry {
	return AuditEntry{
		ID:        uuid.NewString(),
		Timestamp: at.UTC().Truncate(time.Second),
		User:      user,
		Action:    action,
		Details:   details,
		Before:    toJSON(before),
		After:     toJSON(after),
	}
}

func toJSON(v any) string {
	if v == nil {
		return ""
	}
	b, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(b)
}
