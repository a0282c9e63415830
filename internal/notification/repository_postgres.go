package notification

import "database/sql"

// PostgresRepository stores the notification log.
// Table layout expected:
//   id serial primary key,
//   order_id int not null,
//   channel text, "trigger" text, status text, error text,
//   created_at timestamptz

type PostgresRepository struct {
	db *sql.DB
}

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Record(e Entry) error {
	_, err := r.db.Exec(`INSERT INTO notification_log (order_id, channel, "trigger", status, error, created_at)
        VALUES ($1,$2,$3,$4,$5,$6)`,
		e.OrderID, e.Channel, e.Trigger, e.Status, e.Error, e.CreatedAt)
	return err
}

func (r *PostgresRepository) ListByOrderID(orderID int) ([]Entry, error) {
	rows, err := r.db.Query(`SELECT id, order_id, channel, "trigger", status, error, created_at
        FROM notification_log WHERE order_id = $1 ORDER BY id`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Entry, 0)
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.OrderID, &e.Channel, &e.Trigger, &e.Status, &e.Error, &e.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
