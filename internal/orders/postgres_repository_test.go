package orders

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alvbalcab/PetJoy/internal/domain"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestOrder() *domain.Order {
	return &domain.Order{
		Number:        "ORD-AB12CD34EF56",
		FirstName:     "Ana",
		LastName:      "García",
		Email:         "ana@example.com",
		Address:       "Calle Mayor 1",
		City:          "Madrid",
		PostalCode:    "28001",
		Subtotal:      decimal.RequireFromString("39.98"),
		Tax:           decimal.Zero,
		Shipping:      decimal.RequireFromString("4.95"),
		Total:         decimal.RequireFromString("44.93"),
		PaymentMethod: "card",
		Status:        domain.OrderStatusPending,
		Items: []domain.OrderItem{
			{
				ProductID:   1,
				ProductName: "Dog bed",
				Quantity:    2,
				UnitPrice:   decimal.RequireFromString("19.99"),
				Total:       decimal.RequireFromString("39.98"),
			},
		},
	}
}

func TestCreateOrder_Success(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	order := newTestOrder()

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO orders").
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(int64(7), time.Now()))
	mock.ExpectQuery("INSERT INTO order_items").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(11)))
	mock.ExpectExec("UPDATE products SET stock").
		WithArgs(order.Items[0].Quantity, order.Items[0].ProductID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO order_outbox").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	repo := NewRepositoryWithDB(db)
	err = repo.CreateOrder(context.Background(), order)
	require.NoError(t, err)

	assert.Equal(t, int64(7), order.ID)
	assert.Equal(t, int64(11), order.Items[0].ID)
	assert.Equal(t, int64(7), order.Items[0].OrderID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateOrder_DuplicatePaymentSession(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO orders").
		WillReturnError(&pq.Error{Code: "23505"})
	mock.ExpectRollback()

	repo := NewRepositoryWithDB(db)
	err = repo.CreateOrder(context.Background(), newTestOrder())
	require.ErrorIs(t, err, ErrDuplicateOrder)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateOrder_ItemFailureRollsBack(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO orders").
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(int64(7), time.Now()))
	mock.ExpectQuery("INSERT INTO order_items").
		WillReturnError(fmt.Errorf("connection reset"))
	mock.ExpectRollback()

	repo := NewRepositoryWithDB(db)
	err = repo.CreateOrder(context.Background(), newTestOrder())
	require.ErrorContains(t, err, "insert order item")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateOrder_OutboxFailureRollsBack(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	order := newTestOrder()

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO orders").
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(int64(7), time.Now()))
	mock.ExpectQuery("INSERT INTO order_items").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(11)))
	mock.ExpectExec("UPDATE products SET stock").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO order_outbox").
		WillReturnError(fmt.Errorf("connection reset"))
	mock.ExpectRollback()

	repo := NewRepositoryWithDB(db)
	err = repo.CreateOrder(context.Background(), order)
	require.ErrorContains(t, err, "insert outbox event")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func orderRows(number string) *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "number", "customer_id", "first_name", "last_name", "email", "phone",
		"address", "city", "postal_code", "subtotal", "tax", "shipping", "total",
		"payment_method", "payment_session_id", "status", "notes", "created_at",
	}).AddRow(
		int64(7), number, nil, "Ana", "García", "ana@example.com", "",
		"Calle Mayor 1", "Madrid", "28001", "39.98", "0.00", "4.95", "44.93",
		"card", nil, "pending", "", time.Now(),
	)
}

func itemRows(orderID int64) *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "order_id", "product_id", "product_name", "size", "quantity", "unit_price", "total",
	}).AddRow(int64(11), orderID, int64(1), "Dog bed", "", int32(2), "19.99", "39.98")
}

func TestGetByNumber_Found(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT (.+) FROM orders WHERE number").
		WithArgs("ORD-AB12CD34EF56").
		WillReturnRows(orderRows("ORD-AB12CD34EF56"))
	mock.ExpectQuery("SELECT (.+) FROM order_items").
		WithArgs(int64(7)).
		WillReturnRows(itemRows(7))

	repo := NewRepositoryWithDB(db)
	order, err := repo.GetByNumber(context.Background(), "ORD-AB12CD34EF56")
	require.NoError(t, err)

	assert.Equal(t, "ORD-AB12CD34EF56", order.Number)
	assert.Equal(t, "44.93", order.Total.StringFixed(2))
	require.Len(t, order.Items, 1)
	assert.Equal(t, "Dog bed", order.Items[0].ProductName)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetByNumber_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT (.+) FROM orders WHERE number").
		WithArgs("ORD-MISSING00000").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	repo := NewRepositoryWithDB(db)
	order, err := repo.GetByNumber(context.Background(), "ORD-MISSING00000")
	require.ErrorIs(t, err, ErrOrderNotFound)
	assert.Nil(t, order)
}

func TestGetByNumberAndEmail_WrongEmail(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT (.+) FROM orders WHERE number = (.+) AND email").
		WithArgs("ORD-AB12CD34EF56", "other@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	repo := NewRepositoryWithDB(db)
	_, err = repo.GetByNumberAndEmail(context.Background(), "ORD-AB12CD34EF56", "other@example.com")
	require.ErrorIs(t, err, ErrOrderNotFound)
}

func TestGetByPaymentSession_Found(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT (.+) FROM orders WHERE payment_session_id").
		WithArgs("cs_test_123").
		WillReturnRows(orderRows("ORD-AB12CD34EF56"))
	mock.ExpectQuery("SELECT (.+) FROM order_items").
		WillReturnRows(itemRows(7))

	repo := NewRepositoryWithDB(db)
	order, err := repo.GetByPaymentSession(context.Background(), "cs_test_123")
	require.NoError(t, err)
	assert.Equal(t, "ORD-AB12CD34EF56", order.Number)
}

func TestListByCustomer(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	rows := orderRows("ORD-AB12CD34EF56")
	mock.ExpectQuery("SELECT (.+) FROM orders WHERE customer_id").
		WithArgs(int64(42)).
		WillReturnRows(rows)
	mock.ExpectQuery("SELECT (.+) FROM order_items").
		WillReturnRows(itemRows(7))

	repo := NewRepositoryWithDB(db)
	list, err := repo.ListByCustomer(context.Background(), 42)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "ORD-AB12CD34EF56", list[0].Number)
	require.Len(t, list[0].Items, 1)
}

func TestGetUnprocessedEvents(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT (.+) FROM order_outbox WHERE processed_at IS NULL").
		WithArgs(100).
		WillReturnRows(sqlmock.NewRows([]string{"id", "aggregate_id", "event_type", "payload", "created_at"}).
			AddRow(int64(1), "ORD-AB12CD34EF56", "order.created", []byte(`{"number":"ORD-AB12CD34EF56"}`), time.Now()))

	repo := NewRepositoryWithDB(db)
	events, err := repo.GetUnprocessedEvents(context.Background(), 100)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "order.created", events[0].EventType)
	assert.Equal(t, "ORD-AB12CD34EF56", events[0].AggregateID)
}

func TestMarkEventAsProcessed(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("UPDATE order_outbox SET processed_at").
		WithArgs(int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	repo := NewRepositoryWithDB(db)
	require.NoError(t, repo.MarkEventAsProcessed(context.Background(), 1))
	assert.NoError(t, mock.ExpectationsWereMet())
}
