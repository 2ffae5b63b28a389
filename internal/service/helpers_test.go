package service

import (
	"PartsKeeper/internal/blob"
	"PartsKeeper/internal/codec"
	"PartsKeeper/internal/model"
	"PartsKeeper/internal/repo"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// мок для Auditor
type mockAuditor struct{ mock.Mock }

func (m *mockAuditor) Record(ctx context.Context, user, action, details string, before, after any) {
	m.Called(ctx, user, action, details, before, after)
}

var _ Auditor = (*mockAuditor)(nil)

// 15/03/2025 — "сегодня" во всех тестах сервиса
var testToday = time.Date(2025, 3, 15, 10, 30, 0, 0, time.UTC)

func session(t *testing.T, login string, regions ...string) model.Session {
	t.Helper()
	s, err := model.Anonymous().Authenticate(login, regions)
	require.NoError(t, err)
	return s
}

func newTestPartService(t *testing.T) (*PartService, *mockAuditor, *blob.Memory) {
	t.Helper()
	mem := blob.NewMemory()
	table := repo.NewSynchronizer[model.Part](mem, "SALDO_PECAS.xlsx", codec.PartsXLSX{}, zap.NewNop().Sugar(), repo.SyncOptions{})
	audit := new(mockAuditor)
	audit.On("Record", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return()
	svc := NewPartService(table, audit, zap.NewNop().Sugar())
	svc.now = func() time.Time { return testToday }
	return svc, audit, mem
}

func partInput(uf, fru, endDate string) PartInput {
	return PartInput{
		Region: uf, FRU: fru, Description: "fonte", Machines: "x3650",
		ClientName: "acme", Serial: "sn1", EndDate: endDate, SLA: "24x7",
	}
}
