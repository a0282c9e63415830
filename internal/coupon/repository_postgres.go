package coupon

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// PostgresRepository stores coupons, their ephemeral reservations and the
// usage ledger.
// Tables expected:
//   coupons (id serial primary key, code text unique, discount_type text,
//            value numeric, min_order_value numeric, expires_at timestamptz,
//            max_uses int, current_uses int default 0,
//            first_time_only bool, active bool, created_at text, updated_at text)
//   coupon_reservations (id uuid primary key, code text, user_id int,
//            guest_email text, expires_at timestamptz)
//   coupon_usages (code text, user_id int, guest_email text, order_id int,
//            used_at timestamptz)

type PostgresRepository struct {
	db *sql.DB
}

const couponColumns = `id, code, discount_type, value, min_order_value, expires_at, max_uses, current_uses, first_time_only, active, created_at, updated_at`

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func scanCoupon(row *sql.Row) (Coupon, error) {
	var cp Coupon
	err := row.Scan(&cp.ID, &cp.Code, &cp.DiscountType, &cp.Value, &cp.MinOrderValue,
		&cp.ExpiresAt, &cp.MaxUses, &cp.CurrentUses, &cp.FirstTimeOnly, &cp.Active,
		&cp.CreatedAt, &cp.UpdatedAt)
	if err == sql.ErrNoRows {
		return Coupon{}, ErrNotFound
	}
	return cp, err
}

func (r *PostgresRepository) GetByCode(code string) (Coupon, error) {
	return scanCoupon(r.db.QueryRow(`SELECT `+couponColumns+` FROM coupons WHERE code = $1`, code))
}

func (r *PostgresRepository) List() ([]Coupon, error) {
	rows, err := r.db.Query(`SELECT ` + couponColumns + ` FROM coupons ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Coupon, 0)
	for rows.Next() {
		var cp Coupon
		if err := rows.Scan(&cp.ID, &cp.Code, &cp.DiscountType, &cp.Value, &cp.MinOrderValue,
			&cp.ExpiresAt, &cp.MaxUses, &cp.CurrentUses, &cp.FirstTimeOnly, &cp.Active,
			&cp.CreatedAt, &cp.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, cp)
	}
	return out, rows.Err()
}

func (r *PostgresRepository) Create(cp Coupon) (Coupon, error) {
	err := r.db.QueryRow(`INSERT INTO coupons (code, discount_type, value, min_order_value, expires_at, max_uses, current_uses, first_time_only, active, created_at, updated_at)
        VALUES ($1,$2,$3,$4,$5,$6,0,$7,$8,$9,$10)
        RETURNING id`,
		cp.Code, cp.DiscountType, cp.Value, cp.MinOrderValue, cp.ExpiresAt, cp.MaxUses,
		cp.FirstTimeOnly, cp.Active, cp.CreatedAt, cp.UpdatedAt).Scan(&cp.ID)
	if err != nil {
		return Coupon{}, err
	}
	return cp, nil
}

func (r *PostgresRepository) Update(id int, cp Coupon) (Coupon, error) {
	return scanCoupon(r.db.QueryRow(`UPDATE coupons
        SET discount_type=$2, value=$3, min_order_value=$4, expires_at=$5, max_uses=$6, first_time_only=$7, active=$8, updated_at=$9
        WHERE id=$1
        RETURNING `+couponColumns,
		id, cp.DiscountType, cp.Value, cp.MinOrderValue, cp.ExpiresAt, cp.MaxUses,
		cp.FirstTimeOnly, cp.Active, cp.UpdatedAt))
}

func (r *PostgresRepository) Delete(id int) error {
	res, err := r.db.Exec(`DELETE FROM coupons WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if cnt, _ := res.RowsAffected(); cnt == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresRepository) Reserve(code string, req Requester, now, expiresAt time.Time) (Reservation, bool, error) {
	tx, err := r.db.Begin()
	if err != nil {
		return Reservation{}, false, err
	}
	defer tx.Rollback()

	// opportunistic sweep of stale claims, same transaction as the insert so
	// a concurrent apply cannot interleave with the cleanup
	if _, err := tx.Exec(`DELETE FROM coupon_reservations WHERE expires_at <= $1`, now); err != nil {
		return Reservation{}, false, err
	}

	existing := Reservation{Code: code, UserID: req.UserID, GuestEmail: req.GuestEmail}
	err = tx.QueryRow(`SELECT id, expires_at FROM coupon_reservations
        WHERE code = $1 AND user_id = $2 AND guest_email = $3 AND expires_at > $4`,
		code, req.UserID, req.GuestEmail, now).Scan(&existing.ID, &existing.ExpiresAt)
	if err == nil {
		// returning the unexpired claim untouched prevents expiry extension
		// through repeated apply calls
		return existing, false, tx.Commit()
	}
	if err != sql.ErrNoRows {
		return Reservation{}, false, err
	}

	created := Reservation{
		ID:         uuid.NewString(),
		Code:       code,
		UserID:     req.UserID,
		GuestEmail: req.GuestEmail,
		ExpiresAt:  expiresAt,
	}
	if _, err := tx.Exec(`INSERT INTO coupon_reservations (id, code, user_id, guest_email, expires_at)
        VALUES ($1,$2,$3,$4,$5)`,
		created.ID, created.Code, created.UserID, created.GuestEmail, created.ExpiresAt); err != nil {
		return Reservation{}, false, err
	}

	return created, true, tx.Commit()
}

func (r *PostgresRepository) DeleteReservation(code string, req Requester) error {
	_, err := r.db.Exec(`DELETE FROM coupon_reservations WHERE code = $1 AND user_id = $2 AND guest_email = $3`,
		code, req.UserID, req.GuestEmail)
	return err
}

func (r *PostgresRepository) HasUsage(code string, req Requester) (bool, error) {
	var count int
	err := r.db.QueryRow(`SELECT COUNT(*) FROM coupon_usages WHERE code = $1 AND user_id = $2 AND guest_email = $3`,
		code, req.UserID, req.GuestEmail).Scan(&count)
	return count > 0, err
}

func (r *PostgresRepository) RecordUsage(code string, req Requester, orderID int, usedAt time.Time) error {
	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	res, err := tx.Exec(`UPDATE coupons
        SET current_uses = current_uses + 1
        WHERE code = $1 AND (max_uses IS NULL OR current_uses < max_uses)`, code)
	if err != nil {
		return err
	}
	if cnt, _ := res.RowsAffected(); cnt == 0 {
		return ErrUsageLimitReached
	}

	if _, err := tx.Exec(`INSERT INTO coupon_usages (code, user_id, guest_email, order_id, used_at)
        VALUES ($1,$2,$3,$4,$5)`,
		code, req.UserID, req.GuestEmail, orderID, usedAt); err != nil {
		return err
	}

	return tx.Commit()
}
