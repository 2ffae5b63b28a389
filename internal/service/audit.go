package service

import (
	"PartsKeeper/internal/codec"
	"PartsKeeper/internal/metrics"
	"PartsKeeper/internal/model"
	"PartsKeeper/internal/repo"
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/samber/lo"
	"go.uber.org/zap"
)

// AuditLog — удалённый logs.csv.
type AuditLog interface {
	Fetch(ctx context.Context) (repo.Snapshot[model.AuditEntry], error)
	Update(ctx context.Context, message string, mutate repo.Mutation[model.AuditEntry]) (repo.Snapshot[model.AuditEntry], error)
}

// AuditService пишет журнал в удалённый logs.csv, а при ошибке — в локальную БД.
type AuditService struct {
	remote AuditLog
	local  repo.AuditRepository
	logger *zap.SugaredLogger
	now    func() time.Time
}

// NewAuditService: remote может быть nil (журнал только локальный).
func NewAuditService(remote AuditLog, local repo.AuditRepository, logger *zap.SugaredLogger) *AuditService {
	return &AuditService{remote: remote, local: local, logger: logger, now: time.Now}
}

// Record добавляет запись в журнал. Основная операция уже выполнена,
// поэтому ошибки только логируются.
func (s *AuditService) Record(ctx context.Context, user, action, details string, before, after any) {
	e := model.NewAuditEntry(s.now(), user, action, details, before, after)
	if s.remote != nil {
		msg := fmt.Sprintf("Atualização automática logs (%s)", s.now().Format("02/01/2006 15:04"))
		_, err := s.remote.Update(ctx, msg, func(rows []model.AuditEntry) ([]model.AuditEntry, error) {
			return repo.Append(rows, e), nil
		})
		if err == nil {
			return
		}
		metrics.AuditFallbacks.Inc()
		s.logger.Warnw("Remote audit log write failed, falling back to local database",
			"action", action, "user", user, "error", err)
	}
	if s.local == nil {
		s.logger.Errorw("Audit entry dropped: no local database", "action", action, "user", user)
		return
	}
	if err := s.local.Create(ctx, &e); err != nil {
		s.logger.Errorw("Audit entry dropped", "action", action, "user", user, "error", err)
	}
}

// List — журнал для администратора: удалённые и локальные записи, от новых к старым.
func (s *AuditService) List(ctx context.Context, sess model.Session) ([]model.AuditEntry, error) {
	if !sess.IsAdmin() {
		return nil, ErrForbidden
	}
	var all []model.AuditEntry
	if s.remote != nil {
		snap, err := s.remote.Fetch(ctx)
		if err != nil {
			return nil, err
		}
		all = append(all, snap.Rows...)
	}
	if s.local != nil {
		local, err := s.local.ListAll(ctx)
		if err != nil {
			return nil, err
		}
		all = append(all, local...)
	}
	all = lo.UniqBy(all, func(e model.AuditEntry) string { return e.ID })
	sort.SliceStable(all, func(i, j int) bool { return all[i].Timestamp.After(all[j].Timestamp) })
	return all, nil
}

// Export выгружает журнал в CSV (формат logs.csv).
func (s *AuditService) Export(ctx context.Context, sess model.Session) ([]byte, string, error) {
	entries, err := s.List(ctx, sess)
	if err != nil {
		return nil, "", err
	}
	c := codec.AuditCSV{}
	data, err := c.Encode(entries)
	if err != nil {
		return nil, "", err
	}
	s.Record(ctx, sess.Login(), model.ActionExportLogs, fmt.Sprintf("Exportou logs (%d linhas)", len(entries)), nil, nil)
	return data, c.ContentType(), nil
}
