package repository_test

import (
	"context"
	"errors"
	"testing"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wildberries/catalog/internal/domain"
	"wildberries/catalog/internal/repository"
)

func newMock(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)

	return mock
}

func TestEnsureSchema(t *testing.T) {
	mock := newMock(t)
	repo := repository.NewLeafRepository(mock)

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS leaf_subjects").
		WillReturnResult(pgxmock.NewResult("CREATE TABLE", 0))

	require.NoError(t, repo.EnsureSchema(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSaveLeafRecords(t *testing.T) {
	mock := newMock(t)
	repo := repository.NewLeafRepository(mock)

	failed := domain.NewLeafRecord(domain.LeafDescriptor{LeafID: 2, LeafName: "Обувь", LeafFullURL: "https://www.wildberries.ru/catalog/obuv"})
	failed.Fail(errors.New("HTTP error: 503 Service Unavailable"))
	records := []domain.LeafRecord{
		{
			LeafID: 1, LeafName: "Платья", LeafFullURL: "https://www.wildberries.ru/catalog/platya",
			Subjects: []domain.Subject{{ID: 69, Name: "Платья"}},
		},
		failed,
	}

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO leaf_subjects").
		WithArgs(int64(1), "Платья", "https://www.wildberries.ru/catalog/platya", []byte(`[{"id":69,"name":"Платья"}]`), (*string)(nil)).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec("INSERT INTO leaf_subjects").
		WithArgs(int64(2), "Обувь", "https://www.wildberries.ru/catalog/obuv", []byte(`[]`), failed.Error).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()

	require.NoError(t, repo.SaveLeafRecords(context.Background(), records))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSaveLeafRecordsRollsBackOnError(t *testing.T) {
	mock := newMock(t)
	repo := repository.NewLeafRepository(mock)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO leaf_subjects").
		WithArgs(int64(1), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnError(errors.New("connection reset"))
	mock.ExpectRollback()

	err := repo.SaveLeafRecords(context.Background(), []domain.LeafRecord{{LeafID: 1, Subjects: []domain.Subject{}}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to save leaf 1")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSaveLeafRecordsEmpty(t *testing.T) {
	mock := newMock(t)
	repo := repository.NewLeafRepository(mock)

	require.NoError(t, repo.SaveLeafRecords(context.Background(), nil))
	assert.NoError(t, mock.ExpectationsWereMet())
}
