package repo

import (
	"PartsKeeper/internal/model"
	"context"

	"gorm.io/gorm"
)

// AuditRepository — локальный журнал действий, куда попадают записи,
// не сохранённые в удалённый logs.csv.
type AuditRepository interface {
	Create(ctx context.Context, e *model.AuditEntry) error
	// ListAll возвращает записи от новых к старым.
	ListAll(ctx context.Context) ([]model.AuditEntry, error)
}

type auditRepo struct {
	db *gorm.DB
}

// NewAuditRepository создаёт реализацию репозитория журнала на gorm.
func NewAuditRepository(db *gorm.DB) AuditRepository {
	return &auditRepo{db: db}
}

func (r *auditRepo) Create(ctx context.Context, e *model.AuditEntry) error {
	return r.db.WithContext(ctx).Create(e).Error
}

func (r *auditRepo) ListAll(ctx context.Context) ([]model.AuditEntry, error) {
	var out []model.AuditEntry
	err := r.db.WithContext(ctx).Order("timestamp DESC").Order("created_at DESC").Find(&out).Error
	return out, err
}
