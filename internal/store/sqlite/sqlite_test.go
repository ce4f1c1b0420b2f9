package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/nulzo/resto-analytics/internal/store"
	"github.com/nulzo/resto-analytics/internal/store/model"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockRepo(t *testing.T) (*SqliteRepository, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	return NewSqliteRepository(sqlx.NewDb(db, "sqlite3"), time.Second), mock
}

func TestRestaurantScan_PushesFilterDown(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta(
		`SELECT id, name, location, cuisine FROM restaurants WHERE name LIKE ? ESCAPE '\' AND cuisine = ? ORDER BY id`)).
		WithArgs(`%50\% pizza%`, "Italian").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "location", "cuisine"}).
			AddRow(1, "50% Pizza", "Pune", "Italian"))

	rows, err := repo.Restaurants().Scan(context.Background(), model.RestaurantFilter{
		Search:  "50% pizza",
		Cuisine: "Italian",
	})

	require.NoError(t, err)
	assert.Equal(t, []model.Restaurant{{ID: 1, Name: "50% Pizza", Location: "Pune", Cuisine: "Italian"}}, rows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRestaurantScan_NoFilter(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, name, location, cuisine FROM restaurants ORDER BY id`)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "location", "cuisine"}))

	rows, err := repo.Restaurants().Scan(context.Background(), model.RestaurantFilter{})

	require.NoError(t, err)
	assert.Empty(t, rows)
	assert.NotNil(t, rows)
}

func TestOrderScan_DateBounds(t *testing.T) {
	repo, mock := newMockRepo(t)

	id := int64(10)
	since := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	before := time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC)
	at := time.Date(2024, 1, 2, 10, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta(
		`SELECT id, restaurant_id, amount, order_time FROM orders WHERE restaurant_id = ? AND order_time >= ? AND order_time < ? ORDER BY id`)).
		WithArgs(id, since, before).
		WillReturnRows(sqlmock.NewRows([]string{"id", "restaurant_id", "amount", "order_time"}).
			AddRow(1, 10, "100.50", at).
			AddRow(2, 10, 80, nil))

	orders, err := repo.Orders().Scan(context.Background(), model.OrderFilter{
		RestaurantID: &id,
		Since:        &since,
		Before:       &before,
	})

	require.NoError(t, err)
	require.Len(t, orders, 2)
	assert.True(t, decimal.RequireFromString("100.50").Equal(orders[0].Amount))
	require.NotNil(t, orders[0].OrderTime)
	assert.True(t, at.Equal(*orders[0].OrderTime))
	assert.Nil(t, orders[1].OrderTime)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRestaurantLookup(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, name, location, cuisine FROM restaurants WHERE id IN (?, ?)`)).
		WithArgs(int64(1), int64(99)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "location", "cuisine"}).
			AddRow(1, "Tandoor House", "Delhi", "Indian"))

	found, err := repo.Restaurants().Lookup(context.Background(), []int64{1, 99})

	require.NoError(t, err)
	assert.Len(t, found, 1)
	assert.Equal(t, "Tandoor House", found[1].Name)
	_, ok := found[99]
	assert.False(t, ok)
}

func TestRestaurantLookup_EmptyIDsSkipsQuery(t *testing.T) {
	repo, mock := newMockRepo(t)

	found, err := repo.Restaurants().Lookup(context.Background(), nil)

	require.NoError(t, err)
	assert.Empty(t, found)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRestaurantGet_NotFound(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, name, location, cuisine FROM restaurants WHERE id = ?`)).
		WithArgs(int64(7)).
		WillReturnError(sql.ErrNoRows)

	_, err := repo.Restaurants().Get(context.Background(), 7)

	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestOrderScan_DriverErrorIsUnavailable(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(`SELECT id, restaurant_id, amount, order_time FROM orders`).
		WillReturnError(errors.New("database is locked"))

	_, err := repo.Orders().Scan(context.Background(), model.OrderFilter{})

	assert.ErrorIs(t, err, store.ErrUnavailable)
	assert.Contains(t, err.Error(), "database is locked")
}

func TestWithTx_RollsBackOnError(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM restaurants`)).
		WillReturnError(errors.New("disk I/O error"))
	mock.ExpectRollback()

	err := repo.WithTx(context.Background(), func(tx store.Repository) error {
		return tx.Restaurants().ReplaceAll(context.Background(), []model.Restaurant{{ID: 1, Name: "A"}})
	})

	assert.ErrorIs(t, err, store.ErrUnavailable)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEscapeLike(t *testing.T) {
	assert.Equal(t, `a\%b\_c\\d`, escapeLike(`a%b_c\d`))
}
