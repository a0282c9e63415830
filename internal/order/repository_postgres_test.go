package order

import (
	"database/sql/driver"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/stepkart/stepkart-backend/internal/database"
)

type recordingInventory struct {
	decremented []string
	incremented []string
}

func (r *recordingInventory) DecrementSize(q database.Querier, productID int, size string, qty int) error {
	r.decremented = append(r.decremented, size)
	return nil
}

func (r *recordingInventory) IncrementSize(q database.Querier, productID int, size string, qty int) error {
	r.incremented = append(r.incremented, size)
	return nil
}

var orderColumnNames = []string{
	"order_id", "code", "user_id", "guest", "items", "subtotal", "tax", "shipping",
	"discount", "total", "coupon_code", "status", "payment_status", "payment_intent_id",
	"status_history", "shipping_address", "carrier", "created_at", "updated_at",
}

func sampleRow(id int, code string) []driver.Value {
	return []driver.Value{
		id, code, 5, nil,
		[]byte(`[{"productId":1,"name":"Runner","price":100,"size":"8","quantity":2}]`),
		200.0, 20.0, 30.0, 50.0, 200.0, "",
		StatusConfirmed, PaymentPending, "",
		[]byte(`[{"status":"CONFIRMED","timestamp":"2026-01-02T03:04:05Z","actor":"customer"}]`),
		[]byte(`{"name":"Asha","phone":"9000000000","line1":"12 MG Road","city":"Pune","postalCode":"411001"}`),
		nil, "2026-01-02T03:04:05Z", "2026-01-02T03:04:05Z",
	}
}

func TestGetByIDOrCodeResolvesNumericID(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(`SELECT .+ FROM orders WHERE order_id = \$1 OR code = \$2`).
		WithArgs(42, "42").
		WillReturnRows(sqlmock.NewRows(orderColumnNames).AddRow(sampleRow(42, "SK-20260102-AB12")...))

	repo := NewPostgresRepository(db, &recordingInventory{})
	ord, err := repo.GetByIDOrCode("42")
	if err != nil {
		t.Fatalf("GetByIDOrCode: %v", err)
	}
	if ord.ID != 42 {
		t.Errorf("id = %d, want 42", ord.ID)
	}
	if len(ord.Items) != 1 || ord.Items[0].Size != "8" {
		t.Errorf("items not unmarshalled: %+v", ord.Items)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestGetByIDOrCodeResolvesOrderCode(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	// a non-numeric ref parses to id 0, so only the code predicate can match
	mock.ExpectQuery(`SELECT .+ FROM orders WHERE order_id = \$1 OR code = \$2`).
		WithArgs(0, "SK-20260102-AB12").
		WillReturnRows(sqlmock.NewRows(orderColumnNames).AddRow(sampleRow(42, "SK-20260102-AB12")...))

	repo := NewPostgresRepository(db, &recordingInventory{})
	ord, err := repo.GetByIDOrCode("SK-20260102-AB12")
	if err != nil {
		t.Fatalf("GetByIDOrCode: %v", err)
	}
	if ord.Code != "SK-20260102-AB12" {
		t.Errorf("code = %q", ord.Code)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestGetByIDOrCodeNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(`SELECT .+ FROM orders`).
		WithArgs(0, "missing").
		WillReturnRows(sqlmock.NewRows(orderColumnNames))

	repo := NewPostgresRepository(db, &recordingInventory{})
	if _, err := repo.GetByIDOrCode("missing"); err != ErrNotFound {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestCreateDecrementsEveryItemInTransaction(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO orders`).
		WillReturnRows(sqlmock.NewRows([]string{"order_id"}).AddRow(7))
	mock.ExpectCommit()

	inv := &recordingInventory{}
	repo := NewPostgresRepository(db, inv)

	ord := Order{
		Code:   "SK-20260102-ZZ99",
		UserID: 5,
		Items: []Item{
			{ProductID: 1, Name: "Runner", Price: 100, Size: "8", Quantity: 2},
			{ProductID: 2, Name: "Court", Price: 80, Size: "9", Quantity: 1},
		},
		Subtotal: 280, Total: 280,
		Status: StatusConfirmed, PaymentStatus: PaymentPending,
		History: []StatusEntry{{Status: StatusConfirmed, Timestamp: "2026-01-02T03:04:05Z", Actor: "customer"}},
	}
	ord.ShippingAddress.Name = "Asha"
	ord.ShippingAddress.Phone = "9000000000"
	ord.ShippingAddress.Line1 = "12 MG Road"
	ord.ShippingAddress.City = "Pune"
	ord.ShippingAddress.PostalCode = "411001"

	created, err := repo.Create(ord, 0)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.ID != 7 {
		t.Errorf("id = %d, want 7", created.ID)
	}
	if len(inv.decremented) != 2 {
		t.Fatalf("decrement calls = %v, want one per item", inv.decremented)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestCreateWithoutAddressAborts(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectRollback()

	inv := &recordingInventory{}
	repo := NewPostgresRepository(db, inv)

	ord := Order{
		Code:   "SK-20260102-ZZ98",
		UserID: 0,
		Guest:  &GuestInfo{Email: "guest@example.com"},
		Items:  []Item{{ProductID: 1, Size: "8", Quantity: 1}},
	}
	if _, err := repo.Create(ord, 0); err != ErrAddressRequired {
		t.Fatalf("err = %v, want ErrAddressRequired", err)
	}
	if len(inv.decremented) != 0 {
		t.Error("no inventory mutation may happen without a shipping address")
	}
}
