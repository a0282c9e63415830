package product

import (
	"database/sql"

	"github.com/stepkart/stepkart-backend/internal/database"
)

// PostgresRepository stores products in the `products` table and the per-size
// breakdown in `product_sizes` (product_id, size, stock).

type PostgresRepository struct {
	db *sql.DB
}

const productColumns = `product_id, name, category, price, description, image, stock, active, created_at, updated_at`

const (
	// GREATEST floors the bucket at zero in a single statement, so two
	// concurrent decrements cannot lose an update.
	decrementSizeQuery = `
        UPDATE product_sizes
        SET stock = GREATEST(stock - $3, 0)
        WHERE product_id = $1 AND size = $2
    `
	incrementSizeQuery = `
        UPDATE product_sizes
        SET stock = stock + $3
        WHERE product_id = $1 AND size = $2
    `
	recomputeStockQuery = `
        UPDATE products
        SET stock = (SELECT COALESCE(SUM(stock), 0) FROM product_sizes WHERE product_id = $1)
        WHERE product_id = $1
    `
)

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) List() ([]Product, error) {
	rows, err := r.db.Query(`SELECT ` + productColumns + ` FROM products WHERE active ORDER BY product_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Product, 0)
	for rows.Next() {
		var p Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Category, &p.Price, &p.Description, &p.Image, &p.Stock, &p.Active, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range out {
		sizes, err := r.loadSizes(out[i].ID)
		if err != nil {
			return nil, err
		}
		out[i].Sizes = sizes
	}
	return out, nil
}

func (r *PostgresRepository) GetByID(id int) (Product, error) {
	var p Product
	err := r.db.QueryRow(`SELECT `+productColumns+` FROM products WHERE product_id = $1`, id).Scan(
		&p.ID, &p.Name, &p.Category, &p.Price, &p.Description, &p.Image, &p.Stock, &p.Active, &p.CreatedAt, &p.UpdatedAt)
	if err == sql.ErrNoRows {
		return Product{}, ErrNotFound
	}
	if err != nil {
		return Product{}, err
	}

	p.Sizes, err = r.loadSizes(id)
	return p, err
}

func (r *PostgresRepository) Create(p Product) (Product, error) {
	tx, err := r.db.Begin()
	if err != nil {
		return Product{}, err
	}
	defer tx.Rollback()

	p.Stock = AggregateStock(p.Sizes)
	err = tx.QueryRow(`INSERT INTO products (name, category, price, description, image, stock, active, created_at, updated_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
        RETURNING product_id`,
		p.Name, p.Category, p.Price, p.Description, p.Image, p.Stock, p.Active, p.CreatedAt, p.UpdatedAt).Scan(&p.ID)
	if err != nil {
		return Product{}, err
	}

	if err := r.writeSizes(tx, p.ID, p.Sizes); err != nil {
		return Product{}, err
	}
	return p, tx.Commit()
}

func (r *PostgresRepository) Update(id int, p Product) (Product, error) {
	tx, err := r.db.Begin()
	if err != nil {
		return Product{}, err
	}
	defer tx.Rollback()

	p.ID = id
	p.Stock = AggregateStock(p.Sizes)
	res, err := tx.Exec(`UPDATE products
        SET name=$2, category=$3, price=$4, description=$5, image=$6, stock=$7, active=$8, updated_at=$9
        WHERE product_id=$1`,
		id, p.Name, p.Category, p.Price, p.Description, p.Image, p.Stock, p.Active, p.UpdatedAt)
	if err != nil {
		return Product{}, err
	}
	if cnt, _ := res.RowsAffected(); cnt == 0 {
		return Product{}, ErrNotFound
	}

	if _, err := tx.Exec(`DELETE FROM product_sizes WHERE product_id = $1`, id); err != nil {
		return Product{}, err
	}
	if err := r.writeSizes(tx, id, p.Sizes); err != nil {
		return Product{}, err
	}
	return p, tx.Commit()
}

func (r *PostgresRepository) Delete(id int) error {
	res, err := r.db.Exec(`UPDATE products SET active = FALSE WHERE product_id = $1`, id)
	if err != nil {
		return err
	}
	if cnt, _ := res.RowsAffected(); cnt == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresRepository) DecrementSize(q database.Querier, productID int, size string, qty int) error {
	res, err := q.Exec(decrementSizeQuery, productID, size, qty)
	if err != nil {
		return err
	}
	if cnt, _ := res.RowsAffected(); cnt == 0 {
		return ErrNotFound
	}
	_, err = q.Exec(recomputeStockQuery, productID)
	return err
}

func (r *PostgresRepository) IncrementSize(q database.Querier, productID int, size string, qty int) error {
	res, err := q.Exec(incrementSizeQuery, productID, size, qty)
	if err != nil {
		return err
	}
	if cnt, _ := res.RowsAffected(); cnt == 0 {
		// bucket may have been removed by an admin edit; recreate it
		if _, err := q.Exec(`INSERT INTO product_sizes (product_id, size, stock) VALUES ($1,$2,$3)`, productID, size, qty); err != nil {
			return err
		}
	}
	_, err = q.Exec(recomputeStockQuery, productID)
	return err
}

func (r *PostgresRepository) loadSizes(productID int) (map[string]int, error) {
	rows, err := r.db.Query(`SELECT size, stock FROM product_sizes WHERE product_id = $1`, productID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	sizes := make(map[string]int)
	for rows.Next() {
		var size string
		var stock int
		if err := rows.Scan(&size, &stock); err != nil {
			return nil, err
		}
		sizes[size] = stock
	}
	return sizes, rows.Err()
}

func (r *PostgresRepository) writeSizes(q database.Querier, productID int, sizes map[string]int) error {
	for size, stock := range sizes {
		if stock < 0 {
			stock = 0
		}
		if _, err := q.Exec(`INSERT INTO product_sizes (product_id, size, stock) VALUES ($1,$2,$3)`, productID, size, stock); err != nil {
			return err
		}
	}
	return nil
}
