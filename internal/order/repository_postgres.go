package order

import (
	"database/sql"
	"encoding/json"
	"strconv"

	"github.com/stepkart/stepkart-backend/internal/address"
	"github.com/stepkart/stepkart-backend/internal/database"
)

// Inventory is the slice of the product repository order placement needs:
// per-size bucket mutation running on the caller's transaction.
type Inventory interface {
	DecrementSize(q database.Querier, productID int, size string, qty int) error
	IncrementSize(q database.Querier, productID int, size string, qty int) error
}

// PostgresRepository stores orders with items, history, guest identity and
// the address snapshot as JSONB columns.
// Table layout expected:
//   order_id serial primary key,
//   code text unique not null,
//   user_id int not null default 0,           -- 0 means guest
//   guest jsonb, items jsonb not null,
//   subtotal numeric, tax numeric, shipping numeric, discount numeric, total numeric,
//   coupon_code text not null default '',
//   status text, payment_status text, payment_intent_id text not null default '',
//   status_history jsonb not null, shipping_address jsonb not null, carrier jsonb,
//   created_at text, updated_at text

type PostgresRepository struct {
	db        *sql.DB
	inventory Inventory
}

const orderColumns = `order_id, code, user_id, guest, items, subtotal, tax, shipping, discount, total,
        coupon_code, status, payment_status, payment_intent_id, status_history, shipping_address, carrier,
        created_at, updated_at`

func NewPostgresRepository(db *sql.DB, inventory Inventory) *PostgresRepository {
	return &PostgresRepository{db: db, inventory: inventory}
}

func (r *PostgresRepository) Create(ord Order, addressID int) (Order, error) {
	tx, err := r.db.Begin()
	if err != nil {
		return Order{}, err
	}
	defer tx.Rollback()

	// resolve a stored address inside the transaction when the payload
	// referenced one instead of sending inline fields
	if !ord.ShippingAddress.Complete() && addressID > 0 && ord.UserID > 0 {
		var a address.Address
		err := tx.QueryRow(`SELECT address_id, user_id, name, phone, line1, line2, city, state, postal_code, created_at, updated_at
            FROM addresses WHERE user_id = $1 AND address_id = $2`, ord.UserID, addressID).Scan(
			&a.AddressID, &a.UserID, &a.Name, &a.Phone, &a.Line1, &a.Line2, &a.City, &a.State, &a.PostalCode, &a.CreatedAt, &a.UpdatedAt)
		if err != nil && err != sql.ErrNoRows {
			return Order{}, err
		}
		if err == nil {
			ord.ShippingAddress = a
		}
	}
	if !ord.ShippingAddress.Complete() {
		return Order{}, ErrAddressRequired
	}

	itemsJSON, err := json.Marshal(ord.Items)
	if err != nil {
		return Order{}, err
	}
	historyJSON, err := json.Marshal(ord.History)
	if err != nil {
		return Order{}, err
	}
	addressJSON, err := json.Marshal(ord.ShippingAddress)
	if err != nil {
		return Order{}, err
	}
	var guestJSON []byte
	if ord.Guest != nil {
		if guestJSON, err = json.Marshal(ord.Guest); err != nil {
			return Order{}, err
		}
	}

	err = tx.QueryRow(`INSERT INTO orders
        (code, user_id, guest, items, subtotal, tax, shipping, discount, total, coupon_code,
         status, payment_status, payment_intent_id, status_history, shipping_address, created_at, updated_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17)
        RETURNING order_id`,
		ord.Code, ord.UserID, nullableJSON(guestJSON), itemsJSON, ord.Subtotal, ord.Tax, ord.Shipping,
		ord.Discount, ord.Total, ord.CouponCode, ord.Status, ord.PaymentStatus, ord.PaymentIntentID,
		historyJSON, addressJSON, ord.CreatedAt, ord.UpdatedAt).Scan(&ord.ID)
	if err != nil {
		return Order{}, err
	}

	for _, item := range ord.Items {
		if err := r.inventory.DecrementSize(tx, item.ProductID, item.Size, item.Quantity); err != nil {
			return Order{}, err
		}
	}

	return ord, tx.Commit()
}

func (r *PostgresRepository) GetByIDOrCode(ref string) (Order, error) {
	// a numeric ref may match the internal id; any ref may match the code.
	// Found via either field is equivalent for all downstream logic.
	id, _ := strconv.Atoi(ref)
	row := r.db.QueryRow(`SELECT `+orderColumns+` FROM orders WHERE order_id = $1 OR code = $2`, id, ref)
	ord, err := scanOrder(row)
	if err == sql.ErrNoRows {
		return Order{}, ErrNotFound
	}
	return ord, err
}

func (r *PostgresRepository) ListByUser(userID int) ([]Order, error) {
	rows, err := r.db.Query(`SELECT `+orderColumns+` FROM orders WHERE user_id = $1 AND user_id > 0 ORDER BY order_id DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectOrders(rows)
}

func (r *PostgresRepository) Search(q SearchQuery) ([]Order, error) {
	f := database.NewFilter()
	if q.Status != "" {
		f.Equal("status", q.Status)
	}
	if q.PaymentStatus != "" {
		f.Equal("payment_status", q.PaymentStatus)
	}
	if q.UserID > 0 {
		f.Equal("user_id", q.UserID)
	}
	if q.CodePrefix != "" {
		f.Prefix("code", q.CodePrefix)
	}
	if q.CreatedFrom != "" {
		f.GreaterOrEqual("created_at", q.CreatedFrom)
	}
	if q.CreatedTo != "" {
		f.LessOrEqual("created_at", q.CreatedTo)
	}

	where, args := f.Where()
	rows, err := r.db.Query(`SELECT `+orderColumns+` FROM orders`+where+` ORDER BY order_id DESC`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectOrders(rows)
}

func (r *PostgresRepository) UpdateStatus(ord Order, restock bool) (Order, error) {
	tx, err := r.db.Begin()
	if err != nil {
		return Order{}, err
	}
	defer tx.Rollback()

	historyJSON, err := json.Marshal(ord.History)
	if err != nil {
		return Order{}, err
	}
	var carrierJSON []byte
	if ord.Carrier != nil {
		if carrierJSON, err = json.Marshal(ord.Carrier); err != nil {
			return Order{}, err
		}
	}

	res, err := tx.Exec(`UPDATE orders
        SET status=$2, status_history=$3, carrier=COALESCE($4, carrier), updated_at=$5
        WHERE order_id=$1`,
		ord.ID, ord.Status, historyJSON, nullableJSON(carrierJSON), ord.UpdatedAt)
	if err != nil {
		return Order{}, err
	}
	if cnt, _ := res.RowsAffected(); cnt == 0 {
		return Order{}, ErrNotFound
	}

	if restock {
		for _, item := range ord.Items {
			if err := r.inventory.IncrementSize(tx, item.ProductID, item.Size, item.Quantity); err != nil {
				return Order{}, err
			}
		}
	}

	return ord, tx.Commit()
}

func (r *PostgresRepository) SetPayment(orderID int, paymentStatus, paymentIntentID string, updatedAt string) (Order, error) {
	row := r.db.QueryRow(`UPDATE orders
        SET payment_status=$2,
            payment_intent_id=CASE WHEN $3 = '' THEN payment_intent_id ELSE $3 END,
            updated_at=$4
        WHERE order_id=$1
        RETURNING `+orderColumns,
		orderID, paymentStatus, paymentIntentID, updatedAt)
	ord, err := scanOrder(row)
	if err == sql.ErrNoRows {
		return Order{}, ErrNotFound
	}
	return ord, err
}

func (r *PostgresRepository) HasOrders(userID int, guestEmail string) (bool, error) {
	var count int
	var err error
	switch {
	case userID > 0:
		err = r.db.QueryRow(`SELECT COUNT(*) FROM orders WHERE user_id = $1`, userID).Scan(&count)
	case guestEmail != "":
		err = r.db.QueryRow(`SELECT COUNT(*) FROM orders WHERE guest->>'email' = $1`, guestEmail).Scan(&count)
	default:
		return false, nil
	}
	return count > 0, err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrder(row rowScanner) (Order, error) {
	var ord Order
	var guestJSON, itemsJSON, historyJSON, addressJSON, carrierJSON []byte
	err := row.Scan(&ord.ID, &ord.Code, &ord.UserID, &guestJSON, &itemsJSON,
		&ord.Subtotal, &ord.Tax, &ord.Shipping, &ord.Discount, &ord.Total,
		&ord.CouponCode, &ord.Status, &ord.PaymentStatus, &ord.PaymentIntentID,
		&historyJSON, &addressJSON, &carrierJSON, &ord.CreatedAt, &ord.UpdatedAt)
	if err != nil {
		return Order{}, err
	}

	if len(guestJSON) > 0 {
		ord.Guest = &GuestInfo{}
		if err := json.Unmarshal(guestJSON, ord.Guest); err != nil {
			return Order{}, err
		}
	}
	if err := json.Unmarshal(itemsJSON, &ord.Items); err != nil {
		return Order{}, err
	}
	if err := json.Unmarshal(historyJSON, &ord.History); err != nil {
		return Order{}, err
	}
	if err := json.Unmarshal(addressJSON, &ord.ShippingAddress); err != nil {
		return Order{}, err
	}
	if len(carrierJSON) > 0 {
		ord.Carrier = &Carrier{}
		if err := json.Unmarshal(carrierJSON, ord.Carrier); err != nil {
			return Order{}, err
		}
	}
	return ord, nil
}

func collectOrders(rows *sql.Rows) ([]Order, error) {
	out := make([]Order, 0)
	for rows.Next() {
		ord, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, ord)
	}
	return out, rows.Err()
}

// nullableJSON maps an empty marshal result to SQL NULL.
func nullableJSON(b []byte) any {
	if len(b) == 0 {
		return nil
	}
	return b
}
