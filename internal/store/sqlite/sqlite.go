package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/nulzo/resto-analytics/internal/store"
	"github.com/nulzo/resto-analytics/internal/store/model"
)

// insertChunkSize keeps batch inserts below SQLite's bound-variable limit.
const insertChunkSize = 200

// DB defines the interface for database operations (satisfied by *sqlx.DB and *sqlx.Tx)
type DB interface {
	GetContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	SelectContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	NamedExecContext(ctx context.Context, query string, arg interface{}) (sql.Result, error)
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	Rebind(query string) string
}

// SqliteRepository implements store.Repository
type SqliteRepository struct {
	db       *sqlx.DB // Required for starting new transactions
	executor DB       // Used for actual queries (can be *sqlx.DB or *sqlx.Tx)
	timeout  time.Duration
}

func NewSqliteRepository(db *sqlx.DB, queryTimeout time.Duration) *SqliteRepository {
	return &SqliteRepository{
		db:       db,
		executor: db,
		timeout:  queryTimeout,
	}
}

func (r *SqliteRepository) Close() error {
	return r.db.Close()
}

func (r *SqliteRepository) Ping(ctx context.Context) error {
	ctx, cancel := r.bound(ctx)
	defer cancel()
	if err := r.db.PingContext(ctx); err != nil {
		return wrap("ping", err)
	}
	return nil
}

func (r *SqliteRepository) WithTx(ctx context.Context, fn func(repo store.Repository) error) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return wrap("begin tx", err)
	}

	// Create a repository instance that uses the transaction
	txRepo := &SqliteRepository{
		db:       r.db, // Keep the original DB handle
		executor: tx,
		timeout:  r.timeout,
	}

	if err := fn(txRepo); err != nil {
		// attempt rollback, but prioritize original error
		_ = tx.Rollback()
		return err
	}

	return tx.Commit()
}

func (r *SqliteRepository) Restaurants() store.RestaurantRepository {
	return &restaurantRepo{db: r.executor, bound: r.bound}
}

func (r *SqliteRepository) Orders() store.OrderRepository {
	return &orderRepo{db: r.executor, bound: r.bound}
}

// bound applies the per-call query timeout, if any.
func (r *SqliteRepository) bound(ctx context.Context) (context.Context, context.CancelFunc) {
	if r.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, r.timeout)
}

// wrap maps driver errors onto the store sentinels.
func wrap(op string, err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return store.ErrNotFound
	}
	return fmt.Errorf("%s: %w: %w", op, store.ErrUnavailable, err)
}

type restaurantRepo struct {
	db    DB
	bound func(context.Context) (context.Context, context.CancelFunc)
}

const restaurantColumns = `id, name, location, cuisine`

func (r *restaurantRepo) Scan(ctx context.Context, filter model.RestaurantFilter) ([]model.Restaurant, error) {
	ctx, cancel := r.bound(ctx)
	defer cancel()

	where, args := restaurantWhere(filter)
	query := `SELECT ` + restaurantColumns + ` FROM restaurants` + where + ` ORDER BY id`

	restaurants := []model.Restaurant{}
	if err := r.db.SelectContext(ctx, &restaurants, query, args...); err != nil {
		return nil, wrap("scan restaurants", err)
	}
	return restaurants, nil
}

func (r *restaurantRepo) Lookup(ctx context.Context, ids []int64) (map[int64]model.Restaurant, error) {
	out := make(map[int64]model.Restaurant, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	ctx, cancel := r.bound(ctx)
	defer cancel()

	query, args, err := sqlx.In(`SELECT `+restaurantColumns+` FROM restaurants WHERE id IN (?)`, ids)
	if err != nil {
		return nil, fmt.Errorf("build lookup query: %w", err)
	}

	var rows []model.Restaurant
	if err := r.db.SelectContext(ctx, &rows, r.db.Rebind(query), args...); err != nil {
		return nil, wrap("lookup restaurants", err)
	}

	for _, rest := range rows {
		out[rest.ID] = rest
	}
	return out, nil
}

func (r *restaurantRepo) Get(ctx context.Context, id int64) (*model.Restaurant, error) {
	ctx, cancel := r.bound(ctx)
	defer cancel()

	var rest model.Restaurant
	query := `SELECT ` + restaurantColumns + ` FROM restaurants WHERE id = ?`
	if err := r.db.GetContext(ctx, &rest, query, id); err != nil {
		return nil, wrap("get restaurant", err)
	}
	return &rest, nil
}

func (r *restaurantRepo) ReplaceAll(ctx context.Context, restaurants []model.Restaurant) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM restaurants`); err != nil {
		return wrap("clear restaurants", err)
	}

	query := `INSERT INTO restaurants (id, name, location, cuisine) VALUES (:id, :name, :location, :cuisine)`
	for start := 0; start < len(restaurants); start += insertChunkSize {
		end := min(start+insertChunkSize, len(restaurants))
		if _, err := r.db.NamedExecContext(ctx, query, restaurants[start:end]); err != nil {
			return wrap("insert restaurants", err)
		}
	}
	return nil
}

type orderRepo struct {
	db    DB
	bound func(context.Context) (context.Context, context.CancelFunc)
}

func (r *orderRepo) Scan(ctx context.Context, filter model.OrderFilter) ([]model.Order, error) {
	ctx, cancel := r.bound(ctx)
	defer cancel()

	where, args := orderWhere(filter)
	query := `SELECT id, restaurant_id, amount, order_time FROM orders` + where + ` ORDER BY id`

	orders := []model.Order{}
	if err := r.db.SelectContext(ctx, &orders, query, args...); err != nil {
		return nil, wrap("scan orders", err)
	}
	return orders, nil
}

func (r *orderRepo) ReplaceAll(ctx context.Context, orders []model.Order) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM orders`); err != nil {
		return wrap("clear orders", err)
	}

	// order times are stored in UTC so that range predicates compare correctly
	normalized := make([]model.Order, len(orders))
	for i, o := range orders {
		if o.OrderTime != nil {
			t := o.OrderTime.UTC()
			o.OrderTime = &t
		}
		normalized[i] = o
	}

	query := `INSERT INTO orders (id, restaurant_id, amount, order_time) VALUES (:id, :restaurant_id, :amount, :order_time)`
	for start := 0; start < len(normalized); start += insertChunkSize {
		end := min(start+insertChunkSize, len(normalized))
		if _, err := r.db.NamedExecContext(ctx, query, normalized[start:end]); err != nil {
			return wrap("insert orders", err)
		}
	}
	return nil
}

func restaurantWhere(f model.RestaurantFilter) (string, []interface{}) {
	var clauses []string
	var args []interface{}

	if f.Search != "" {
		clauses = append(clauses, `name LIKE ? ESCAPE '\'`)
		args = append(args, "%"+escapeLike(f.Search)+"%")
	}
	if f.Cuisine != "" {
		clauses = append(clauses, `cuisine = ?`)
		args = append(args, f.Cuisine)
	}
	if f.Location != "" {
		clauses = append(clauses, `location = ?`)
		args = append(args, f.Location)
	}

	return joinWhere(clauses), args
}

func orderWhere(f model.OrderFilter) (string, []interface{}) {
	var clauses []string
	var args []interface{}

	if f.RestaurantID != nil {
		clauses = append(clauses, `restaurant_id = ?`)
		args = append(args, *f.RestaurantID)
	}
	if f.Since != nil {
		clauses = append(clauses, `order_time >= ?`)
		args = append(args, f.Since.UTC())
	}
	if f.Before != nil {
		clauses = append(clauses, `order_time < ?`)
		args = append(args, f.Before.UTC())
	}

	return joinWhere(clauses), args
}

func joinWhere(clauses []string) string {
	if len(clauses) == 0 {
		return ""
	}
	return ` WHERE ` + strings.Join(clauses, ` AND `)
}

// escapeLike neutralises LIKE wildcards so search is a plain substring match.
// SQLite's LIKE is already case-insensitive for ASCII.
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
