package user

import (
	"database/sql"

	"github.com/stepkart/stepkart-backend/internal/database"
)

// PostgresRepository stores users in the `users` table.
// Table layout expected:
//   user_id serial primary key,
//   email text unique not null,
//   password text not null,
//   first_name text, last_name text, phone text,
//   role text not null default 'customer',
//   created_at text, updated_at text

type PostgresRepository struct {
	db *sql.DB
}

const userColumns = `user_id, email, password, first_name, last_name, phone, role, created_at, updated_at`

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func scanUser(row *sql.Row) (User, error) {
	var u User
	err := row.Scan(&u.ID, &u.Email, &u.Password, &u.FirstName, &u.LastName, &u.Phone, &u.Role, &u.CreatedAt, &u.UpdatedAt)
	if err == sql.ErrNoRows {
		return User{}, ErrNotFound
	}
	return u, err
}

func (r *PostgresRepository) GetByID(id int) (User, error) {
	return scanUser(r.db.QueryRow(`SELECT `+userColumns+` FROM users WHERE user_id = $1`, id))
}

func (r *PostgresRepository) GetByEmail(email string) (User, error) {
	return scanUser(r.db.QueryRow(`SELECT `+userColumns+` FROM users WHERE email = $1`, email))
}

func (r *PostgresRepository) Create(u User) (User, error) {
	if u.Role == "" {
		u.Role = RoleCustomer
	}
	err := r.db.QueryRow(`INSERT INTO users (email, password, first_name, last_name, phone, role, created_at, updated_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
        RETURNING user_id`,
		u.Email, u.Password, u.FirstName, u.LastName, u.Phone, u.Role, u.CreatedAt, u.UpdatedAt).Scan(&u.ID)
	if err != nil {
		return User{}, err
	}
	return u, nil
}

func (r *PostgresRepository) Update(id int, u User) (User, error) {
	return scanUser(r.db.QueryRow(`UPDATE users
        SET email=$2, first_name=$3, last_name=$4, phone=$5,
            password = CASE WHEN $6 = '' THEN password ELSE $6 END,
            role = CASE WHEN $7 = '' THEN role ELSE $7 END,
            updated_at=$8
        WHERE user_id=$1
        RETURNING `+userColumns,
		id, u.Email, u.FirstName, u.LastName, u.Phone, u.Password, u.Role, u.UpdatedAt))
}

// Search lists users matching the optional predicates in q. Predicates are
// AND-composed through the shared filter builder.
func (r *PostgresRepository) Search(q SearchQuery) ([]User, error) {
	f := database.NewFilter()
	if q.Email != "" {
		f.ILike("email", q.Email)
	}
	if q.Name != "" {
		f.ILike("first_name || ' ' || last_name", q.Name)
	}
	if q.Phone != "" {
		f.Prefix("phone", q.Phone)
	}
	if q.Role != "" {
		f.Equal("role", q.Role)
	}

	where, args := f.Where()
	rows, err := r.db.Query(`SELECT `+userColumns+` FROM users`+where+` ORDER BY user_id`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]User, 0)
	for rows.Next() {
		var u User
		if err := rows.Scan(&u.ID, &u.Email, &u.Password, &u.FirstName, &u.LastName, &u.Phone, &u.Role, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}
