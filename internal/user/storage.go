package user

import (
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"doorman/infrastructure"
)

type Saver interface {
	SaveUser(tx *sql.Tx, user *User) error
}

type Updater interface {
	LockUser(tx *sql.Tx, id uuid.UUID) (*User, error)
	UpdateUser(tx *sql.Tx, user *User) error
}

type Provider interface {
	UserByUsername(username string) (*User, error)
	UserByEmail(email string) (*User, error)
	UserByID(id uuid.UUID) (*User, error)
	Users() ([]*User, error)
}

type PostgresStorage struct {
	db *sql.DB
}

func NewUserPostgresStorage(db *sql.DB) *PostgresStorage {
	return &PostgresStorage{db: db}
}

const userColumns = `id, username, email, password_hash, delivery, is_admin, is_active,
	is_verified, shortcode, auth_link_route, bearer_token, created_at, last_login, current_auth_time`

func (r *PostgresStorage) SaveUser(tx *sql.Tx, user *User) error {
	_, err := tx.Exec(`
		INSERT INTO users (id, username, email, password_hash, delivery, is_admin, is_active,
		                   is_verified, shortcode, auth_link_route, bearer_token, created_at,
		                   last_login, current_auth_time)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
		user.ID, user.Username, user.Email, user.PasswordHash, user.Delivery, user.IsAdmin,
		user.IsActive, user.IsVerified, user.Shortcode, user.AuthLinkRoute, user.BearerToken,
		user.CreatedAt, user.LastLogin, user.CurrentAuthTime)
	return mapUniqueViolation(err)
}

func (r *PostgresStorage) UpdateUser(tx *sql.Tx, user *User) error {
	_, err := tx.Exec(`
		UPDATE users SET
		email = $2, password_hash = $3, delivery = $4, is_admin = $5, is_active = $6,
		is_verified = $7, shortcode = $8, auth_link_route = $9, bearer_token = $10,
		last_login = $11, current_auth_time = $12
		WHERE id = $1`,
		user.ID, user.Email, user.PasswordHash, user.Delivery, user.IsAdmin, user.IsActive,
		user.IsVerified, user.Shortcode, user.AuthLinkRoute, user.BearerToken,
		user.LastLogin, user.CurrentAuthTime)
	return mapUniqueViolation(err)
}

// LockUser reads the row with FOR UPDATE so that concurrent mutations of the
// same user serialize on the row lock.
func (r *PostgresStorage) LockUser(tx *sql.Tx, id uuid.UUID) (*User, error) {
	row := tx.QueryRow(`SELECT `+userColumns+` FROM users WHERE id = $1 FOR UPDATE`, id)
	return scanUser(row)
}

func (r *PostgresStorage) UserByUsername(username string) (*User, error) {
	row := r.db.QueryRow(`SELECT `+userColumns+` FROM users WHERE username = $1`, username)
	return scanUser(row)
}

func (r *PostgresStorage) UserByEmail(email string) (*User, error) {
	row := r.db.QueryRow(`SELECT `+userColumns+` FROM users WHERE email = $1`, email)
	return scanUser(row)
}

func (r *PostgresStorage) UserByID(id uuid.UUID) (*User, error) {
	row := r.db.QueryRow(`SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	return scanUser(row)
}

func (r *PostgresStorage) Users() ([]*User, error) {
	rows, err := r.db.Query(`SELECT ` + userColumns + ` FROM users ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []*User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanUser(row scanner) (*User, error) {
	user := &User{}
	err := row.Scan(
		&user.ID, &user.Username, &user.Email, &user.PasswordHash, &user.Delivery,
		&user.IsAdmin, &user.IsActive, &user.IsVerified, &user.Shortcode,
		&user.AuthLinkRoute, &user.BearerToken, &user.CreatedAt, &user.LastLogin,
		&user.CurrentAuthTime)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, infrastructure.ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}

// mapUniqueViolation converts Postgres unique-constraint failures into the
// conflict errors callers branch on.
func mapUniqueViolation(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		switch pqErr.Constraint {
		case "user_account_email":
			return infrastructure.ErrDuplicateEmail
		default:
			return infrastructure.ErrDuplicateUsername
		}
	}
	return err
}
