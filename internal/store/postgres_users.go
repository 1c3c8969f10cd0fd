package store

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/febriand/go-shop-api/internal/accounts"
)

const userColumns = `id, username, email, password_hash, first_name, last_name,
	phone_number, address, date_of_birth, role, created_at`

func scanUser(row pgx.Row) (accounts.User, error) {
	var u accounts.User
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.FirstName,
		&u.LastName, &u.PhoneNumber, &u.Address, &u.DateOfBirth, &u.Role, &u.CreatedAt)
	return u, err
}

func (s *Postgres) CreateUser(ctx context.Context, u *accounts.User) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO users (id, username, email, password_hash, first_name, last_name,
			phone_number, address, date_of_birth, role, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)`,
		u.ID, u.Username, u.Email, u.PasswordHash, u.FirstName, u.LastName,
		u.PhoneNumber, u.Address, u.DateOfBirth, u.Role, u.CreatedAt)
	if isUniqueViolation(err) {
		return accounts.ErrUserExists
	}
	return err
}

func (s *Postgres) GetUser(ctx context.Context, id string) (accounts.User, error) {
	u, err := scanUser(s.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id=$1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return accounts.User{}, accounts.ErrUserNotFound
	}
	return u, err
}

func (s *Postgres) UserByUsername(ctx context.Context, username string) (accounts.User, error) {
	u, err := scanUser(s.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE username=$1`, username))
	if errors.Is(err, pgx.ErrNoRows) {
		return accounts.User{}, accounts.ErrUserNotFound
	}
	return u, err
}

// UpdateUser writes profile fields only; identity and credentials are fixed.
func (s *Postgres) UpdateUser(ctx context.Context, u *accounts.User) error {
	ct, err := s.pool.Exec(ctx, `
		UPDATE users SET first_name=$2, last_name=$3, phone_number=$4, address=$5, date_of_birth=$6
		WHERE id=$1`,
		u.ID, u.FirstName, u.LastName, u.PhoneNumber, u.Address, u.DateOfBirth)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return accounts.ErrUserNotFound
	}
	return nil
}
