package sqlxrepos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/lonesystem/core"
	"github.com/trezcool/lonesystem/core/user"
)

const userColumns = "id, name, username, email, is_active, password_hash, created_at, updated_at, last_login"

type userRow struct {
	ID           string    `db:"id"`
	Name         string    `db:"name"`
	Username     string    `db:"username"`
	Email        string    `db:"email"`
	IsActive     bool      `db:"is_active"`
	PasswordHash []byte    `db:"password_hash"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    null.Time `db:"updated_at"`
	LastLogin    null.Time `db:"last_login"`
}

type userRepository struct {
	baseRepository
}

var _ user.Repository = (*userRepository)(nil) // interface compliance check

func NewUserRepository(exec core.DBExecutor) *userRepository {
	return &userRepository{baseRepository{exec: exec}}
}

func utcNullTime(t null.Time) null.Time {
	if t.Valid {
		t.Time = t.Time.UTC()
	}
	return t
}

func (repo userRepository) toRow(usr user.User) userRow {
	return userRow{
		ID:           usr.ID,
		Name:         usr.Name,
		Username:     usr.Username,
		Email:        usr.Email,
		IsActive:     usr.IsActive,
		PasswordHash: usr.PasswordHash,
		CreatedAt:    usr.CreatedAt.UTC(),
		UpdatedAt:    utcNullTime(usr.UpdatedAt),
		LastLogin:    utcNullTime(usr.LastLogin),
	}
}

func (repo userRepository) fromRow(row userRow) user.User {
	return user.User{
		ID:           row.ID,
		Name:         row.Name,
		Username:     row.Username,
		Email:        row.Email,
		IsActive:     row.IsActive,
		PasswordHash: row.PasswordHash,
		CreatedAt:    row.CreatedAt.UTC(),
		UpdatedAt:    utcNullTime(row.UpdatedAt),
		LastLogin:    utcNullTime(row.LastLogin),
	}
}

func (repo userRepository) CheckUniqueness(ctx context.Context, username, email, excludedID string, exec ...core.DBExecutor) error {
	exe := repo.getExec(exec)
	var found []struct {
		Username string `db:"username"`
		Email    string `db:"email"`
	}
	q := "SELECT username, email FROM users WHERE (username = ? OR email = ?)"
	args := []interface{}{username, email}
	if excludedID != "" {
		q += " AND id <> ?"
		args = append(args, excludedID)
	}
	if err := sqlxSelect(ctx, exe, &found, q, args...); err != nil {
		return errors.Wrap(err, "checking user uniqueness")
	}
	for _, f := range found {
		if f.Username == username {
			return user.ErrUsernameExists
		}
	}
	if len(found) > 0 {
		return user.ErrEmailExists
	}
	return nil
}

func (repo userRepository) CreateUser(ctx context.Context, usr user.User, exec ...core.DBExecutor) (user.User, error) {
	exe := repo.getExec(exec)
	usr.ID = uuid.New().String()
	row := repo.toRow(usr)

	q := exe.Rebind(`INSERT INTO users (` + userColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	_, err := exe.ExecContext(ctx, q,
		row.ID, row.Name, row.Username, row.Email, row.IsActive, row.PasswordHash, row.CreatedAt, row.UpdatedAt, row.LastLogin)
	if err != nil {
		return user.User{}, errors.Wrap(err, "inserting user")
	}
	return repo.fromRow(row), nil
}

func (repo userRepository) QueryUsers(ctx context.Context, exec ...core.DBExecutor) ([]user.User, error) {
	var rows []userRow
	if err := sqlxSelect(ctx, repo.getExec(exec), &rows, "SELECT "+userColumns+" FROM users ORDER BY username"); err != nil {
		return nil, errors.Wrap(err, "querying users")
	}
	users := make([]user.User, 0, len(rows))
	for _, row := range rows {
		users = append(users, repo.fromRow(row))
	}
	return users, nil
}

func (repo userRepository) GetUserByID(ctx context.Context, id string, exec ...core.DBExecutor) (user.User, error) {
	if _, err := uuid.Parse(id); err != nil {
		return user.User{}, user.ErrNotFound
	}
	var row userRow
	if err := sqlxGet(ctx, repo.getExec(exec), &row, "SELECT "+userColumns+" FROM users WHERE id = ?", id); err != nil {
		return user.User{}, trapNoRowsErr(err, user.ErrNotFound, "finding user by ID")
	}
	return repo.fromRow(row), nil
}

func (repo userRepository) GetUserByUsernameOrEmail(ctx context.Context, uname string, exec ...core.DBExecutor) (user.User, error) {
	var row userRow
	q := "SELECT " + userColumns + " FROM users WHERE username = ? OR email = ?"
	if err := sqlxGet(ctx, repo.getExec(exec), &row, q, uname, uname); err != nil {
		return user.User{}, trapNoRowsErr(err, user.ErrNotFound, "finding user")
	}
	return repo.fromRow(row), nil
}

func (repo userRepository) UpdateUser(ctx context.Context, usr user.User, exec ...core.DBExecutor) (user.User, error) {
	exe := repo.getExec(exec)
	row := repo.toRow(usr)

	q := exe.Rebind(`UPDATE users SET name = ?, username = ?, email = ?, is_active = ?, password_hash = ?,
		updated_at = ?, last_login = ? WHERE id = ?`)
	res, err := exe.ExecContext(ctx, q,
		row.Name, row.Username, row.Email, row.IsActive, row.PasswordHash, row.UpdatedAt, row.LastLogin, row.ID)
	if err != nil {
		return user.User{}, errors.Wrap(err, "updating user")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return user.User{}, user.ErrNotFound
	}
	return repo.fromRow(row), nil
}
