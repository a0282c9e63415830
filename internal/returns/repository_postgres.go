package returns

import (
	"database/sql"
	"encoding/json"

	"github.com/stepkart/stepkart-backend/internal/database"
	"github.com/stepkart/stepkart-backend/internal/order"
)

// Inventory is the slice of the product repository a completed return with
// restock needs.
type Inventory interface {
	IncrementSize(q database.Querier, productID int, size string, qty int) error
}

// PostgresRepository stores return requests with the returned item snapshots
// as a JSONB column.
type PostgresRepository struct {
	db        *sql.DB
	inventory Inventory
}

const returnColumns = `return_id, order_id, order_code, user_id, email, type, items, reason, refund_amount, pickup_charge, status, note, created_at, updated_at`

func NewPostgresRepository(db *sql.DB, inventory Inventory) *PostgresRepository {
	return &PostgresRepository{db: db, inventory: inventory}
}

func (r *PostgresRepository) Create(ret ReturnRequest) (ReturnRequest, error) {
	itemsJSON, err := json.Marshal(ret.Items)
	if err != nil {
		return ReturnRequest{}, err
	}
	err = r.db.QueryRow(`INSERT INTO returns
        (order_id, order_code, user_id, email, type, items, reason, refund_amount, pickup_charge, status, note, created_at, updated_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
        RETURNING return_id`,
		ret.OrderID, ret.OrderCode, ret.UserID, ret.Email, ret.Type, itemsJSON, ret.Reason,
		ret.RefundAmount, ret.PickupCharge, ret.Status, ret.Note, ret.CreatedAt, ret.UpdatedAt).Scan(&ret.ID)
	return ret, err
}

func (r *PostgresRepository) GetByID(id int) (ReturnRequest, error) {
	row := r.db.QueryRow(`SELECT `+returnColumns+` FROM returns WHERE return_id = $1`, id)
	ret, err := scanReturn(row)
	if err == sql.ErrNoRows {
		return ReturnRequest{}, ErrNotFound
	}
	return ret, err
}

func (r *PostgresRepository) ListByOrder(orderID int) ([]ReturnRequest, error) {
	rows, err := r.db.Query(`SELECT `+returnColumns+` FROM returns WHERE order_id = $1 ORDER BY return_id DESC`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectReturns(rows)
}

func (r *PostgresRepository) List() ([]ReturnRequest, error) {
	rows, err := r.db.Query(`SELECT ` + returnColumns + ` FROM returns ORDER BY return_id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectReturns(rows)
}

func (r *PostgresRepository) Update(ret ReturnRequest, restock bool) (ReturnRequest, error) {
	tx, err := r.db.Begin()
	if err != nil {
		return ReturnRequest{}, err
	}
	defer tx.Rollback()

	res, err := tx.Exec(`UPDATE returns SET status=$2, note=$3, updated_at=$4 WHERE return_id=$1`,
		ret.ID, ret.Status, ret.Note, ret.UpdatedAt)
	if err != nil {
		return ReturnRequest{}, err
	}
	if cnt, _ := res.RowsAffected(); cnt == 0 {
		return ReturnRequest{}, ErrNotFound
	}

	if restock {
		for _, item := range ret.Items {
			if err := r.inventory.IncrementSize(tx, item.ProductID, item.Size, item.Quantity); err != nil {
				return ReturnRequest{}, err
			}
		}
	}

	return ret, tx.Commit()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanReturn(row rowScanner) (ReturnRequest, error) {
	var ret ReturnRequest
	var itemsJSON []byte
	err := row.Scan(&ret.ID, &ret.OrderID, &ret.OrderCode, &ret.UserID, &ret.Email, &ret.Type,
		&itemsJSON, &ret.Reason, &ret.RefundAmount, &ret.PickupCharge,
		&ret.Status, &ret.Note, &ret.CreatedAt, &ret.UpdatedAt)
	if err != nil {
		return ReturnRequest{}, err
	}
	var items []order.Item
	if err := json.Unmarshal(itemsJSON, &items); err != nil {
		return ReturnRequest{}, err
	}
	ret.Items = items
	return ret, nil
}

func collectReturns(rows *sql.Rows) ([]ReturnRequest, error) {
	out := make([]ReturnRequest, 0)
	for rows.Next() {
		ret, err := scanReturn(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, ret)
	}
	return out, rows.Err()
}
