package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq" // PostgreSQL драйвер
	"github.com/pkg/errors"
	_ "modernc.org/sqlite" // SQLite драйвер

	"github.com/seifadel74/getyourtrip/internal/session"
)

const sessionSchema = `
CREATE TABLE IF NOT EXISTS session_values (
	namespace  TEXT NOT NULL,
	name       TEXT NOT NULL,
	value      TEXT NOT NULL,
	updated_at TIMESTAMP NOT NULL,
	PRIMARY KEY (namespace, name)
)`

// Connect открывает базу сессий. driver: "sqlite" или "postgres".
func Connect(driver, dsn string) (*sqlx.DB, error) {
	db, err := sqlx.Connect(driver, dsn)
	if err != nil {
		return nil, errors.Wrapf(err, "не удалось подключиться к базе сессий (%s)", driver)
	}
	if driver == "sqlite" {
		// SQLite не любит параллельную запись, а ":memory:" живет в рамках одного соединения
		db.SetMaxOpenConns(1)
	}
	return db, nil
}

// SessionRepository хранит значения клиентских сессий в SQL-таблице.
// Каждая сессия (браузер или чат) живет в своем пространстве имен.
type SessionRepository struct {
	db *sqlx.DB
}

// NewSessionRepository создает репозиторий сессий.
func NewSessionRepository(db *sqlx.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

// Init создает таблицу, если ее еще нет.
func (r *SessionRepository) Init(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, sessionSchema); err != nil {
		return errors.Wrap(err, "ошибка создания таблицы сессий")
	}
	return nil
}

// Scope возвращает хранилище, ограниченное одним пространством имен.
func (r *SessionRepository) Scope(namespace string) session.Store {
	return &scopedStore{repo: r, namespace: namespace}
}

// DeleteNamespace удаляет все значения пространства имен.
func (r *SessionRepository) DeleteNamespace(ctx context.Context, namespace string) error {
	_, err := r.db.ExecContext(ctx, r.db.Rebind(`DELETE FROM session_values WHERE namespace = ?`), namespace)
	if err != nil {
		return errors.Wrapf(err, "ошибка удаления сессии %s", namespace)
	}
	return nil
}

// PurgeOlderThan удаляет значения, не обновлявшиеся с момента before. Возвращает число удаленных строк.
func (r *SessionRepository) PurgeOlderThan(ctx context.Context, before time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, r.db.Rebind(`DELETE FROM session_values WHERE updated_at < ?`), before.UTC())
	if err != nil {
		return 0, errors.Wrap(err, "ошибка очистки устаревших сессий")
	}
	return res.RowsAffected()
}

func (r *SessionRepository) get(ctx context.Context, namespace, name string) (string, error) {
	var value string
	err := r.db.GetContext(ctx, &value,
		r.db.Rebind(`SELECT value FROM session_values WHERE namespace = ? AND name = ?`), namespace, name)
	if errors.Is(err, sql.ErrNoRows) {
		return "", session.ErrNotFound
	}
	if err != nil {
		return "", errors.Wrapf(err, "ошибка чтения %s из сессии", name)
	}
	return value, nil
}

func (r *SessionRepository) set(ctx context.Context, namespace, name, value string) error {
	query := r.db.Rebind(`INSERT INTO session_values (namespace, name, value, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (namespace, name) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`)
	if _, err := r.db.ExecContext(ctx, query, namespace, name, value, time.Now().UTC()); err != nil {
		return errors.Wrapf(err, "ошибка записи %s в сессию", name)
	}
	return nil
}

func (r *SessionRepository) delete(ctx context.Context, namespace, name string) error {
	_, err := r.db.ExecContext(ctx,
		r.db.Rebind(`DELETE FROM session_values WHERE namespace = ? AND name = ?`), namespace, name)
	if err != nil {
		return errors.Wrapf(err, "ошибка удаления %s из сессии", name)
	}
	return nil
}

type scopedStore struct {
	repo      *SessionRepository
	namespace string
}

func (s *scopedStore) Get(ctx context.Context, key string) (string, error) {
	return s.repo.get(ctx, s.namespace, key)
}

func (s *scopedStore) Set(ctx context.Context, key, value string) error {
	return s.repo.set(ctx, s.namespace, key, value)
}

func (s *scopedStore) Delete(ctx context.Context, key string) error {
	return s.repo.delete(ctx, s.namespace, key)
}
