package clients

import (
	"context"
	"testing"

	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRepo(t *testing.T) (*Repository, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return NewRepository(mock, nil), mock
}

func TestFindOrCreateExisting(t *testing.T) {
	repo, mock := newTestRepo(t)

	mock.ExpectQuery("SELECT id, nome, telefone FROM clientes").
		WithArgs("+5511999999999").
		WillReturnRows(pgxmock.NewRows([]string{"id", "nome", "telefone"}).
			AddRow(int64(3), "Maria", "+5511999999999"))

	c, err := repo.FindOrCreate(context.Background(), "whatsapp:+5511999999999", "Maria")
	require.NoError(t, err)
	assert.Equal(t, int64(3), c.ID)
	assert.Equal(t, "Maria", c.Name)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestFindOrCreateRefreshesPlaceholderName(t *testing.T) {
	repo, mock := newTestRepo(t)

	mock.ExpectQuery("SELECT id, nome, telefone FROM clientes").
		WithArgs("+5511999999999").
		WillReturnRows(pgxmock.NewRows([]string{"id", "nome", "telefone"}).
			AddRow(int64(3), DefaultName, "+5511999999999"))
	mock.ExpectExec("UPDATE clientes SET nome").
		WithArgs("Maria", int64(3)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	c, err := repo.FindOrCreate(context.Background(), "+5511999999999", "Maria")
	require.NoError(t, err)
	assert.Equal(t, "Maria", c.Name)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestFindOrCreateInserts(t *testing.T) {
	repo, mock := newTestRepo(t)

	mock.ExpectQuery("SELECT id, nome, telefone FROM clientes").
		WithArgs("+5511999999999").
		WillReturnRows(pgxmock.NewRows([]string{"id", "nome", "telefone"}))
	mock.ExpectQuery("INSERT INTO clientes").
		WithArgs("Maria", "+5511999999999").
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(9)))

	c, err := repo.FindOrCreate(context.Background(), "11999999999", "Maria")
	require.NoError(t, err)
	assert.Equal(t, int64(9), c.ID)
	assert.Equal(t, "+5511999999999", c.Phone)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestFindOrCreateRejectsBadPhone(t *testing.T) {
	repo, _ := newTestRepo(t)
	_, err := repo.FindOrCreate(context.Background(), "123", "Maria")
	assert.ErrorIs(t, err, ErrInvalidPhone)
}

func TestFindByPhoneNotFound(t *testing.T) {
	repo, mock := newTestRepo(t)

	mock.ExpectQuery("SELECT id, nome, telefone FROM clientes").
		WithArgs("+5511999999999").
		WillReturnRows(pgxmock.NewRows([]string{"id", "nome", "telefone"}))

	_, err := repo.FindByPhone(context.Background(), "+5511999999999")
	assert.ErrorIs(t, err, ErrClientNotFound)
}

func TestRename(t *testing.T) {
	repo, mock := newTestRepo(t)

	mock.ExpectExec("UPDATE clientes SET nome").
		WithArgs("José Augusto", int64(3)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectQuery("SELECT id, nome, telefone FROM clientes").
		WithArgs(int64(3)).
		WillReturnRows(pgxmock.NewRows([]string{"id", "nome", "telefone"}).
			AddRow(int64(3), "José Augusto", "+5511999999999"))

	c, err := repo.Rename(context.Background(), 3, "José Augusto")
	require.NoError(t, err)
	assert.Equal(t, "José Augusto", c.Name)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRenameRejectsShortName(t *testing.T) {
	repo, _ := newTestRepo(t)
	_, err := repo.Rename(context.Background(), 3, "Jo")
	assert.ErrorIs(t, err, ErrInvalidName)
}

func TestRenameNotFound(t *testing.T) {
	repo, mock := newTestRepo(t)

	mock.ExpectExec("UPDATE clientes SET nome").
		WithArgs("Maria", int64(99)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	_, err := repo.Rename(context.Background(), 99, "Maria")
	assert.ErrorIs(t, err, ErrClientNotFound)
}

func TestNormalizePhone(t *testing.T) {
	cases := []struct {
		in  string
		out string
	}{
		{"whatsapp:+5511999999999", "+5511999999999"},
		{"11999999999", "+5511999999999"},
		{"+55 (11) 99999-9999", "+5511999999999"},
		{"5511999999999", "+5511999999999"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.out, NormalizePhone(tc.in), tc.in)
	}
}

func TestValidName(t *testing.T) {
	assert.True(t, ValidName("João Silva"))
	assert.True(t, ValidName("Ana"))
	assert.False(t, ValidName("Jo"))
	assert.False(t, ValidName("R2D2"))
	assert.False(t, ValidName("   "))
}
