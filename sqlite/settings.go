package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	txStdLib "github.com/Thiht/transactor/stdlib"

	"github.com/benjamonnguyen/pomodo"
)

type settingsRepo struct {
	dbGetter txStdLib.DBGetter
	l        pomodo.Logger
}

var _ pomodo.SettingsRepo = (*settingsRepo)(nil)

func NewSettingsRepo(dbGetter txStdLib.DBGetter, logger pomodo.Logger) pomodo.SettingsRepo {
	return &settingsRepo{
		dbGetter: dbGetter,
		l:        logger,
	}
}

func (r *settingsRepo) GetSetting(ctx context.Context, key string) (string, error) {
	if key == "" {
		return "", fmt.Errorf("provide key: %w", pomodo.ErrValidation)
	}

	var value sql.NullString
	err := r.dbGetter(ctx).QueryRowContext(ctx, "SELECT value FROM settings WHERE key = ?", key).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", fmt.Errorf("setting %q: %w", key, pomodo.ErrNotFound)
		}
		return "", storageError("get setting", err)
	}
	return value.String, nil
}

func (r *settingsRepo) SetSetting(ctx context.Context, key, value string) error {
	if key == "" {
		return fmt.Errorf("provide key: %w", pomodo.ErrValidation)
	}

	query := "INSERT INTO settings (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value"
	r.l.Debug("setting value", "query", query, "key", key, "value", value)
	if _, err := r.dbGetter(ctx).ExecContext(ctx, query, key, value); err != nil {
		return storageError("set setting", err)
	}
	return nil
}
