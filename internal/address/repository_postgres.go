package address

import (
	"database/sql"
)

// PostgresRepository stores addresses in a dedicated table with a foreign
// key to users.
// Table layout expected:
//   address_id serial primary key,
//   user_id int not null,
//   name text, phone text,
//   line1 text, line2 text, city text, state text, postal_code text,
//   created_at text, updated_at text

type PostgresRepository struct {
	db *sql.DB
}

const (
	addressColumns = `address_id, user_id, name, phone, line1, line2, city, state, postal_code, created_at, updated_at`

	insertAddressQuery = `
        INSERT INTO addresses (user_id, name, phone, line1, line2, city, state, postal_code, created_at, updated_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
        RETURNING ` + addressColumns

	updateAddressQuery = `
        UPDATE addresses
        SET name=$3, phone=$4, line1=$5, line2=$6, city=$7, state=$8, postal_code=$9, updated_at=$10
        WHERE user_id=$1 AND address_id=$2
        RETURNING ` + addressColumns

	deleteAddressQuery = `
        DELETE FROM addresses WHERE user_id=$1 AND address_id=$2
    `
)

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func scanAddress(row *sql.Row) (Address, error) {
	var a Address
	err := row.Scan(&a.AddressID, &a.UserID, &a.Name, &a.Phone, &a.Line1, &a.Line2, &a.City, &a.State, &a.PostalCode, &a.CreatedAt, &a.UpdatedAt)
	if err == sql.ErrNoRows {
		return Address{}, ErrNotFound
	}
	return a, err
}

func (r *PostgresRepository) GetAddresses(userID int) ([]Address, error) {
	if userID <= 0 {
		return nil, ErrNotFound
	}
	rows, err := r.db.Query(`SELECT `+addressColumns+` FROM addresses WHERE user_id = $1 ORDER BY address_id`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Address, 0)
	for rows.Next() {
		var a Address
		if err := rows.Scan(&a.AddressID, &a.UserID, &a.Name, &a.Phone, &a.Line1, &a.Line2, &a.City, &a.State, &a.PostalCode, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, a)
	}

	return out, rows.Err()
}

func (r *PostgresRepository) GetByID(userID, addressID int) (Address, error) {
	return scanAddress(r.db.QueryRow(`SELECT `+addressColumns+` FROM addresses WHERE user_id=$1 AND address_id=$2`, userID, addressID))
}

func (r *PostgresRepository) AddAddress(a Address) (Address, error) {
	return scanAddress(r.db.QueryRow(insertAddressQuery,
		a.UserID, a.Name, a.Phone, a.Line1, a.Line2, a.City, a.State, a.PostalCode, a.CreatedAt, a.UpdatedAt))
}

func (r *PostgresRepository) UpdateAddress(a Address) (Address, error) {
	return scanAddress(r.db.QueryRow(updateAddressQuery,
		a.UserID, a.AddressID, a.Name, a.Phone, a.Line1, a.Line2, a.City, a.State, a.PostalCode, a.UpdatedAt))
}

func (r *PostgresRepository) DeleteAddress(userID, addressID int) error {
	res, err := r.db.Exec(deleteAddressQuery, userID, addressID)
	if err != nil {
		return err
	}
	cnt, _ := res.RowsAffected()
	if cnt == 0 {
		return ErrNotFound
	}
	return nil
}
