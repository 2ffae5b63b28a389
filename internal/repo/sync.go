package repo

import (
	"PartsKeeper/internal/blob"
	"PartsKeeper/internal/codec"
	"PartsKeeper/internal/metrics"
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"go.uber.org/zap"
)

// Snapshot — содержимое таблицы и версия, с которой оно прочитано.
// Пустая версия означает, что файла в хранилище ещё нет.
type Snapshot[T any] struct {
	Rows    []T
	Version string
}

// SyncOptions — параметры кэша и повторов.
type SyncOptions struct {
	// CacheTTL — время жизни прочитанной таблицы; 0 отключает кэш.
	CacheTTL time.Duration
	// MaxRetries — число повторов временных ошибок на один вызов хранилища.
	MaxRetries      uint64
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

// DefaultSyncOptions — TTL 2s как у кэша исходной таблицы.
func DefaultSyncOptions() SyncOptions {
	return SyncOptions{
		CacheTTL:        2 * time.Second,
		MaxRetries:      3,
		InitialInterval: 200 * time.Millisecond,
		MaxInterval:     2 * time.Second,
	}
}

// Mutation изменяет копию таблицы.
type Mutation[T any] func(rows []T) ([]T, error)

// Synchronizer читает и записывает одну таблицу в blob.Store.
type Synchronizer[T any] struct {
	store  blob.Store
	key    string
	codec  codec.Codec[T]
	opts   SyncOptions
	cache  *expirable.LRU[string, Snapshot[T]]
	logger *zap.SugaredLogger
}

// NewSynchronizer создаёт синхронизатор для ключа key.
func NewSynchronizer[T any](store blob.Store, key string, c codec.Codec[T], logger *zap.SugaredLogger, opts SyncOptions) *Synchronizer[T] {
	s := &Synchronizer[T]{store: store, key: key, codec: c, opts: opts, logger: logger}
	if opts.CacheTTL > 0 {
		s.cache = expirable.NewLRU[string, Snapshot[T]](1, nil, opts.CacheTTL)
	}
	return s
}

// Key — ключ таблицы в хранилище.
func (s *Synchronizer[T]) Key() string { return s.key }

// Fetch возвращает таблицу из кэша или из хранилища. NotFound даёт пустую таблицу.
func (s *Synchronizer[T]) Fetch(ctx context.Context) (Snapshot[T], error) {
	if s.cache != nil {
		if snap, ok := s.cache.Get(s.key); ok {
			return clone(snap), nil
		}
	}
	return s.fetchFresh(ctx)
}

func (s *Synchronizer[T]) fetchFresh(ctx context.Context) (Snapshot[T], error) {
	var obj blob.Object
	err := s.retry(ctx, "get", func() error {
		var err error
		obj, err = s.store.Get(ctx, s.key)
		return err
	})
	if errors.Is(err, blob.ErrNotFound) {
		return Snapshot[T]{}, nil
	}
	if err != nil {
		return Snapshot[T]{}, err
	}

	snap := Snapshot[T]{Version: obj.Version}
	if len(obj.Data) > 0 {
		rows, err := s.codec.Decode(obj.Data)
		if err != nil {
			return Snapshot[T]{}, fmt.Errorf("decode %s: %w", s.key, err)
		}
		snap.Rows = rows
	}
	if s.cache != nil {
		s.cache.Add(s.key, snap)
	}
	return clone(snap), nil
}

// Commit записывает таблицу, если версия в хранилище всё ещё version.
// Конфликт и ошибки авторизации возвращаются сразу, временные ошибки повторяются с backoff.
func (s *Synchronizer[T]) Commit(ctx context.Context, rows []T, version, message string) (string, error) {
	data, err := s.codec.Encode(rows)
	if err != nil {
		return "", fmt.Errorf("encode %s: %w", s.key, err)
	}
	var newVersion string
	err = s.retry(ctx, "put", func() error {
		var err error
		newVersion, err = s.store.Put(ctx, s.key, data, blob.PutOptions{
			IfMatch:     version,
			Message:     message,
			ContentType: s.codec.ContentType(),
		})
		return err
	})
	if err != nil {
		return "", err
	}
	s.Invalidate()
	return newVersion, nil
}

// Update читает актуальную таблицу (минуя кэш), применяет mutate и записывает результат.
// Конфликт не разрешается автоматически: кэш сбрасывается, ошибка возвращается,
// и пользователь повторяет правку на свежих данных.
func (s *Synchronizer[T]) Update(ctx context.Context, message string, mutate Mutation[T]) (Snapshot[T], error) {
	snap, err := s.fetchFresh(ctx)
	if err != nil {
		return Snapshot[T]{}, err
	}
	rows, err := mutate(snap.Rows)
	if err != nil {
		return Snapshot[T]{}, err
	}
	version, err := s.Commit(ctx, rows, snap.Version, message)
	if err != nil {
		if errors.Is(err, blob.ErrConflict) {
			s.Invalidate()
			metrics.SyncConflicts.WithLabelValues(s.key).Inc()
			s.logger.Infow("Version conflict", "key", s.key, "version", snap.Version)
		}
		return Snapshot[T]{}, err
	}
	return Snapshot[T]{Rows: rows, Version: version}, nil
}

// Invalidate сбрасывает кэш таблицы.
func (s *Synchronizer[T]) Invalidate() {
	if s.cache != nil {
		s.cache.Remove(s.key)
	}
}

// retry повторяет fn, пока ошибка временная, не дольше MaxRetries раз.
func (s *Synchronizer[T]) retry(ctx context.Context, op string, fn func() error) error {
	b := backoff.NewExponentialBackOff()
	if s.opts.InitialInterval > 0 {
		b.InitialInterval = s.opts.InitialInterval
	}
	if s.opts.MaxInterval > 0 {
		b.MaxInterval = s.opts.MaxInterval
	}
	policy := backoff.WithContext(backoff.WithMaxRetries(b, s.opts.MaxRetries), ctx)

	return backoff.RetryNotify(func() error {
		err := fn()
		metrics.ObserveStore(s.key, op, err)
		if err == nil || blob.IsTransient(err) {
			return err
		}
		return backoff.Permanent(err)
	}, policy, func(err error, wait time.Duration) {
		s.logger.Warnw("Store call failed, retrying", "key", s.key, "op", op, "wait", wait, "error", err)
	})
}

func clone[T any](snap Snapshot[T]) Snapshot[T] {
	return Snapshot[T]{Rows: slices.Clone(snap.Rows), Version: snap.Version}
}
