package postgres

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5"
	pgxmock "github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/require"

	"mediabot/internal/errs"
)

func newStore(t *testing.T) (*Store, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	return NewWithPool(mock), mock
}

func TestStore_Load_OK(t *testing.T) {
	s, mock := newStore(t)
	defer mock.Close()

	mock.ExpectQuery(`SELECT value FROM bot_records WHERE key=\$1`).
		WithArgs("config").
		WillReturnRows(pgxmock.NewRows([]string{"value"}).AddRow([]byte(`{"mode":"api"}`)))

	data, err := s.Load(context.Background(), "config")
	require.NoError(t, err)
	require.JSONEq(t, `{"mode":"api"}`, string(data))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_Load_Missing(t *testing.T) {
	s, mock := newStore(t)
	defer mock.Close()

	mock.ExpectQuery(`SELECT value FROM bot_records WHERE key=\$1`).
		WithArgs("session:1").
		WillReturnError(pgx.ErrNoRows)

	_, err := s.Load(context.Background(), "session:1")
	require.ErrorIs(t, err, errs.ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_Save_Upserts(t *testing.T) {
	s, mock := newStore(t)
	defer mock.Close()

	mock.ExpectExec(`INSERT INTO bot_records \(key, value, updated_at\)`).
		WithArgs("session:1", []byte("payload")).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	require.NoError(t, s.Save(context.Background(), "session:1", []byte("payload")))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_Delete(t *testing.T) {
	s, mock := newStore(t)
	defer mock.Close()

	mock.ExpectExec(`DELETE FROM bot_records WHERE key=\$1`).
		WithArgs("shared_session").
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	require.NoError(t, s.Delete(context.Background(), "shared_session"))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_Keys(t *testing.T) {
	s, mock := newStore(t)
	defer mock.Close()

	mock.ExpectQuery(`SELECT key FROM bot_records WHERE starts_with\(key, \$1\) ORDER BY key`).
		WithArgs("session:").
		WillReturnRows(pgxmock.NewRows([]string{"key"}).AddRow("session:1").AddRow("session:2"))

	keys, err := s.Keys(context.Background(), "session:")
	require.NoError(t, err)
	require.Equal(t, []string{"session:1", "session:2"}, keys)
	require.NoError(t, mock.ExpectationsWereMet())
}
