package orders

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/alvbalcab/PetJoy/internal/domain"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/lib/pq"
)

type Repository struct {
	db *sql.DB
}

func NewRepository(cred *Credentials) (*Repository, error) {
	psqlconn := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		cred.Host,
		cred.Port,
		cred.User,
		cred.Password,
		cred.DBName)

	db, err := sql.Open("postgres", psqlconn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if e2 := db.Ping(); e2 != nil {
		return nil, fmt.Errorf("failed to ping database: %w", e2)
	}

	db.SetMaxOpenConns(100)
	db.SetMaxIdleConns(10)
	fmt.Println("Connected to postgres!")
	return &Repository{db: db}, nil
}

// NewRepositoryWithDB wraps an existing handle (used by tests).
func NewRepositoryWithDB(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// DB exposes the shared handle so the product repository can reuse the
// connection pool; products and orders live in the same database on purpose,
// the stock decrement has to join the order transaction.
func (r *Repository) DB() *sql.DB {
	return r.db
}

func (r *Repository) RunMigrations(cred *Credentials) error {
	driver, err := postgres.WithInstance(r.db, &postgres.Config{
		MigrationsTable: "storefront_schema_migrations",
	})
	if err != nil {
		return fmt.Errorf("could not create migration driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance(
		fmt.Sprintf("file://%s", cred.MigrationsDirPath),
		"postgres",
		driver,
	)
	if err != nil {
		return fmt.Errorf("could not create migrate instance: %w", err)
	}

	if e2 := m.Up(); e2 != nil && !errors.Is(e2, migrate.ErrNoChange) {
		return fmt.Errorf("could not run migrations: %w", e2)
	}

	return nil
}

// CreateOrder writes the order, its lines, the stock decrements and the
// order.created outbox row in a single transaction. On any failure nothing is
// persisted. A second order for the same payment session hits the unique
// index and comes back as ErrDuplicateOrder.
func (r *Repository) CreateOrder(ctx context.Context, order *domain.Order) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin order transaction: %w", err)
	}
	defer tx.Rollback()

	orderQuery := `INSERT INTO orders
	        (number, customer_id, first_name, last_name, email, phone, address, city, postal_code,
	         subtotal, tax, shipping, total, payment_method, payment_session_id, status, notes, created_at)
	        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, NOW())
	        RETURNING id, created_at`

	insertErr := tx.QueryRowContext(ctx, orderQuery,
		order.Number,
		order.CustomerID,
		order.FirstName,
		order.LastName,
		order.Email,
		order.Phone,
		order.Address,
		order.City,
		order.PostalCode,
		order.Subtotal,
		order.Tax,
		order.Shipping,
		order.Total,
		order.PaymentMethod,
		order.PaymentSessionID,
		order.Status,
		order.Notes,
	).Scan(&order.ID, &order.CreatedAt)

	if insertErr != nil {
		var pqErr *pq.Error
		if errors.As(insertErr, &pqErr) && pqErr.Code == "23505" {
			return ErrDuplicateOrder
		}
		return fmt.Errorf("insert order: %w", insertErr)
	}

	itemQuery := `INSERT INTO order_items
	        (order_id, product_id, product_name, size, quantity, unit_price, total)
	        VALUES ($1, $2, $3, $4, $5, $6, $7)
	        RETURNING id`

	for i := range order.Items {
		item := &order.Items[i]
		item.OrderID = order.ID
		err := tx.QueryRowContext(ctx, itemQuery,
			order.ID,
			item.ProductID,
			item.ProductName,
			item.Size,
			item.Quantity,
			item.UnitPrice,
			item.Total,
		).Scan(&item.ID)
		if err != nil {
			return fmt.Errorf("insert order item: %w", err)
		}

		// No guard against concurrent checkouts of the same product; stock
		// can go negative (see DESIGN.md).
		_, err = tx.ExecContext(ctx,
			`UPDATE products SET stock = stock - $1 WHERE id = $2`,
			item.Quantity, item.ProductID)
		if err != nil {
			return fmt.Errorf("decrement stock for product %d: %w", item.ProductID, err)
		}
	}

	payload, err := orderCreatedPayload(order)
	if err != nil {
		return err
	}
	_, err = tx.ExecContext(ctx,
		`INSERT INTO order_outbox (aggregate_id, event_type, payload, created_at)
		 VALUES ($1, $2, $3, NOW())`,
		order.Number, "order.created", payload)
	if err != nil {
		return fmt.Errorf("insert outbox event: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit order transaction: %w", err)
	}
	return nil
}

func orderCreatedPayload(order *domain.Order) ([]byte, error) {
	items := make([]map[string]interface{}, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, map[string]interface{}{
			"product_id":   item.ProductID,
			"product_name": item.ProductName,
			"size":         item.Size,
			"quantity":     item.Quantity,
			"unit_price":   item.UnitPrice,
			"total":        item.Total,
		})
	}
	payload := map[string]interface{}{
		"number": order.Number,
		"email":  order.Email,
		"total":  order.Total,
		"status": order.Status,
		"items":  items,
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal order payload: %w", err)
	}
	return data, nil
}

const orderColumns = `id, number, customer_id, first_name, last_name, email, phone, address, city,
	postal_code, subtotal, tax, shipping, total, payment_method, payment_session_id, status, notes, created_at`

func (r *Repository) GetByNumber(ctx context.Context, number string) (*domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE number = $1`
	return r.queryOne(ctx, query, number)
}

func (r *Repository) GetByNumberAndEmail(ctx context.Context, number, email string) (*domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE number = $1 AND email = $2`
	return r.queryOne(ctx, query, number, email)
}

func (r *Repository) GetByPaymentSession(ctx context.Context, sessionID string) (*domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE payment_session_id = $1`
	return r.queryOne(ctx, query, sessionID)
}

func (r *Repository) queryOne(ctx context.Context, query string, args ...interface{}) (*domain.Order, error) {
	var order domain.Order
	err := scanOrder(r.db.QueryRowContext(ctx, query, args...), &order)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query order: %w", err)
	}

	if err := r.loadItems(ctx, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *Repository) ListByCustomer(ctx context.Context, customerID int64) ([]*domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE customer_id = $1 ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, customerID)
	if err != nil {
		return nil, fmt.Errorf("query orders by customer id: %w", err)
	}
	defer rows.Close()

	var result []*domain.Order
	for rows.Next() {
		var order domain.Order
		if err := scanOrder(rows, &order); err != nil {
			return nil, fmt.Errorf("scan order row: %w", err)
		}
		result = append(result, &order)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	for _, order := range result {
		if err := r.loadItems(ctx, order); err != nil {
			return nil, err
		}
	}
	return result, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanOrder(row rowScanner, order *domain.Order) error {
	return row.Scan(
		&order.ID,
		&order.Number,
		&order.CustomerID,
		&order.FirstName,
		&order.LastName,
		&order.Email,
		&order.Phone,
		&order.Address,
		&order.City,
		&order.PostalCode,
		&order.Subtotal,
		&order.Tax,
		&order.Shipping,
		&order.Total,
		&order.PaymentMethod,
		&order.PaymentSessionID,
		&order.Status,
		&order.Notes,
		&order.CreatedAt,
	)
}

func (r *Repository) loadItems(ctx context.Context, order *domain.Order) error {
	query := `SELECT id, order_id, product_id, product_name, size, quantity, unit_price, total
	          FROM order_items WHERE order_id = $1 ORDER BY id`

	rows, err := r.db.QueryContext(ctx, query, order.ID)
	if err != nil {
		return fmt.Errorf("query order items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var item domain.OrderItem
		if err := rows.Scan(
			&item.ID,
			&item.OrderID,
			&item.ProductID,
			&item.ProductName,
			&item.Size,
			&item.Quantity,
			&item.UnitPrice,
			&item.Total,
		); err != nil {
			return fmt.Errorf("scan order item row: %w", err)
		}
		order.Items = append(order.Items, item)
	}
	return rows.Err()
}

func (r *Repository) GetUnprocessedEvents(ctx context.Context, limit int) ([]*OutboxEvent, error) {
	query := `SELECT id, aggregate_id, event_type, payload, created_at
	          FROM order_outbox WHERE processed_at IS NULL ORDER BY id LIMIT $1`

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("query outbox events: %w", err)
	}
	defer rows.Close()

	var events []*OutboxEvent
	for rows.Next() {
		var event OutboxEvent
		if err := rows.Scan(&event.ID, &event.AggregateID, &event.EventType, &event.Payload, &event.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan outbox row: %w", err)
		}
		events = append(events, &event)
	}
	return events, rows.Err()
}

func (r *Repository) MarkEventAsProcessed(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE order_outbox SET processed_at = NOW() WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("mark outbox event %d processed: %w", id, err)
	}
	return nil
}

func (r *Repository) Close() error {
	return r.db.Close()
}
