package cart

import (
	"database/sql"
	"encoding/json"

	"github.com/lib/pq"
)

// PostgresRepository keeps each user's cart as a JSON map keyed by
// product|size|color in the carts table, so line merging happens in Go and
// the write is a single upsert.
type PostgresRepository struct {
	db *sql.DB
}

const cartProductsQuery = `
    SELECT product_id, name, price, image FROM products WHERE product_id = ANY($1::int[])
`

const cartStocksQuery = `
    SELECT product_id, size, stock FROM product_sizes WHERE product_id = ANY($1::int[])
`

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Upsert(userID int, line Line, updatedAt string) ([]Item, error) {
	lines, err := r.load(userID)
	if err != nil {
		return nil, err
	}

	k := line.key()
	existing := lines[k]
	line.Quantity += existing.Quantity
	if line.Quantity <= 0 {
		delete(lines, k)
	} else {
		lines[k] = line
	}

	raw, err := json.Marshal(lines)
	if err != nil {
		return nil, err
	}
	_, err = r.db.Exec(`INSERT INTO carts (user_id, items, updated_at) VALUES ($1, $2, $3)
        ON CONFLICT (user_id) DO UPDATE SET items = $2, updated_at = $3`,
		userID, raw, updatedAt)
	if err != nil {
		return nil, err
	}

	return r.join(lines)
}

func (r *PostgresRepository) Get(userID int) ([]Item, error) {
	lines, err := r.load(userID)
	if err != nil {
		return nil, err
	}
	return r.join(lines)
}

func (r *PostgresRepository) Clear(userID int, updatedAt string) error {
	_, err := r.db.Exec(`UPDATE carts SET items = '{}', updated_at = $2 WHERE user_id = $1`, userID, updatedAt)
	return err
}

func (r *PostgresRepository) load(userID int) (map[string]Line, error) {
	var raw sql.NullString
	err := r.db.QueryRow(`SELECT items FROM carts WHERE user_id = $1`, userID).Scan(&raw)
	if err == sql.ErrNoRows {
		return map[string]Line{}, nil
	}
	if err != nil {
		return nil, err
	}

	lines := make(map[string]Line)
	if raw.Valid && raw.String != "" {
		if err := json.Unmarshal([]byte(raw.String), &lines); err != nil {
			return nil, err
		}
	}
	return lines, nil
}

// join attaches live product details to the stored lines. A line whose
// product disappeared from the catalog is served without details rather
// than dropped.
func (r *PostgresRepository) join(lines map[string]Line) ([]Item, error) {
	if len(lines) == 0 {
		return []Item{}, nil
	}

	ids := make([]int, 0, len(lines))
	for _, l := range lines {
		ids = append(ids, l.ProductID)
	}

	rows, err := r.db.Query(cartProductsQuery, pq.Array(ids))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	type detail struct {
		name  string
		price float64
		image string
	}
	details := make(map[int]detail)
	for rows.Next() {
		var id int
		var d detail
		if err := rows.Scan(&id, &d.name, &d.price, &d.image); err != nil {
			return nil, err
		}
		details[id] = d
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	stockRows, err := r.db.Query(cartStocksQuery, pq.Array(ids))
	if err != nil {
		return nil, err
	}
	defer stockRows.Close()

	type bucket struct {
		productID int
		size      string
	}
	stocks := make(map[bucket]int)
	for stockRows.Next() {
		var b bucket
		var n int
		if err := stockRows.Scan(&b.productID, &b.size, &n); err != nil {
			return nil, err
		}
		stocks[b] = n
	}
	if err := stockRows.Err(); err != nil {
		return nil, err
	}

	out := make([]Item, 0, len(lines))
	for _, l := range lines {
		item := Item{Line: l}
		if d, ok := details[l.ProductID]; ok {
			item.Name = d.name
			item.Price = d.price
			item.Image = d.image
			item.InStock = stocks[bucket{l.ProductID, l.Size}] >= l.Quantity
		}
		out = append(out, item)
	}
	return out, nil
}
