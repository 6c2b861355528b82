package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/Gachenge/school-portal/internal/apperr"
	"github.com/Gachenge/school-portal/internal/model"
	"github.com/Gachenge/school-portal/internal/utils"
)

// UserRepo provides access to the users table.  All failures surface as
// apperr values so handlers can map them to HTTP statuses without
// inspecting driver errors.
type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

const userColumns = "id,username,email,password_hash,role,is_active,phone,avatar,created_at,updated_at"

func scanUser(row *sql.Row) (model.User, error) {
	var u model.User
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.Role,
		&u.IsActive, &u.Phone, &u.Avatar, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}

// isDuplicate reports whether err is a MySQL duplicate-key violation (1062).
func isDuplicate(err error) bool {
	return err != nil && strings.Contains(strings.ToLower(err.Error()), "1062")
}

// Create inserts a new user with role USER and is_active false, hashing the
// password with the given bcrypt cost.  Username and email are checked for
// uniqueness first so the caller gets a precise conflict message; the unique
// indexes still back the check against races.
func (r *UserRepo) Create(ctx context.Context, username, email, password string, cost int) (model.User, error) {
	username = strings.TrimSpace(username)
	email = strings.ToLower(strings.TrimSpace(email))

	var exists int
	if err := r.DB.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM users WHERE email=?", email).Scan(&exists); err != nil {
		return model.User{}, apperr.Unexpected(err.Error())
	}
	if exists > 0 {
		return model.User{}, apperr.AlreadyRegistered("email is already registered")
	}
	if err := r.DB.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM users WHERE username=?", username).Scan(&exists); err != nil {
		return model.User{}, apperr.Unexpected(err.Error())
	}
	if exists > 0 {
		return model.User{}, apperr.AlreadyRegistered("username is already registered")
	}

	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return model.User{}, apperr.Unexpected(err.Error())
	}
	id := uuid.NewString()
	_, err = r.DB.ExecContext(ctx,
		"INSERT INTO users (id, username, email, password_hash, role) VALUES (?,?,?,?,?)",
		id, username, email, hash, model.RoleUser)
	if err != nil {
		if isDuplicate(err) {
			return model.User{}, apperr.AlreadyRegistered("username or email is already registered")
		}
		return model.User{}, apperr.Unexpected(err.Error())
	}
	return r.GetByID(ctx, id)
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id string) (model.User, error) {
	u, err := scanUser(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE id=? LIMIT 1", id))
	if errors.Is(err, sql.ErrNoRows) {
		return model.User{}, apperr.NotFound("user not found")
	}
	if err != nil {
		return model.User{}, apperr.Unexpected(err.Error())
	}
	return u, nil
}

// GetByUsername fetches a user by exact username.
func (r *UserRepo) GetByUsername(ctx context.Context, username string) (model.User, error) {
	u, err := scanUser(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE username=? LIMIT 1", strings.TrimSpace(username)))
	if errors.Is(err, sql.ErrNoRows) {
		return model.User{}, apperr.NotFound("user not found")
	}
	if err != nil {
		return model.User{}, apperr.Unexpected(err.Error())
	}
	return u, nil
}

// GetByEmail fetches a user by normalized email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (model.User, error) {
	u, err := scanUser(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE email=? LIMIT 1",
		strings.ToLower(strings.TrimSpace(email))))
	if errors.Is(err, sql.ErrNoRows) {
		return model.User{}, apperr.NotFound("user not found")
	}
	if err != nil {
		return model.User{}, apperr.Unexpected(err.Error())
	}
	return u, nil
}

// GetByUsernameOrEmail resolves a login selector that may be either field.
// Used by the password-reset flow where the client supplies one string.
func (r *UserRepo) GetByUsernameOrEmail(ctx context.Context, selector string) (model.User, error) {
	selector = strings.TrimSpace(selector)
	u, err := scanUser(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE username=? OR email=? LIMIT 1",
		selector, strings.ToLower(selector)))
	if errors.Is(err, sql.ErrNoRows) {
		return model.User{}, apperr.NotFound("username or email does not match")
	}
	if err != nil {
		return model.User{}, apperr.Unexpected(err.Error())
	}
	return u, nil
}

// List returns all users ordered by creation time.
func (r *UserRepo) List(ctx context.Context) ([]model.User, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+userColumns+" FROM users ORDER BY created_at")
	if err != nil {
		return nil, apperr.Unexpected(err.Error())
	}
	defer rows.Close()
	users := make([]model.User, 0)
	for rows.Next() {
		var u model.User
		if err := rows.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.Role,
			&u.IsActive, &u.Phone, &u.Avatar, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, apperr.Unexpected(err.Error())
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Unexpected(err.Error())
	}
	return users, nil
}

// UserEdit carries the self-service editable fields.  Nil pointers leave
// the column unchanged.  Role and is_active are deliberately absent: role
// changes only through profile creation and activation only through token
// consumption.
type UserEdit struct {
	Username *string
	Email    *string
	Phone    *string
	Avatar   *string
}

// Update applies edit to the user and returns the fresh row along with a
// flag reporting whether the email changed.  An email change deactivates
// the account until the new address is verified.  A username or email
// already taken by another user fails with AlreadyRegistered.
func (r *UserRepo) Update(ctx context.Context, id string, edit UserEdit) (model.User, bool, error) {
	current, err := r.GetByID(ctx, id)
	if err != nil {
		return model.User{}, false, err
	}

	username := current.Username
	if edit.Username != nil {
		username = strings.TrimSpace(*edit.Username)
	}
	email := current.Email
	if edit.Email != nil {
		email = strings.ToLower(strings.TrimSpace(*edit.Email))
	}

	var taken int
	if err := r.DB.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM users WHERE (username=? OR email=?) AND id<>?",
		username, email, id).Scan(&taken); err != nil {
		return model.User{}, false, apperr.Unexpected(err.Error())
	}
	if taken > 0 {
		return model.User{}, false, apperr.AlreadyRegistered("username or email is already registered")
	}

	emailChanged := email != current.Email
	phone := current.Phone
	if edit.Phone != nil {
		phone = edit.Phone
	}
	avatar := current.Avatar
	if edit.Avatar != nil {
		avatar = edit.Avatar
	}
	isActive := current.IsActive
	if emailChanged {
		// Changing the address invalidates the previous verification.
		isActive = false
	}

	_, err = r.DB.ExecContext(ctx,
		"UPDATE users SET username=?, email=?, phone=?, avatar=?, is_active=? WHERE id=?",
		username, email, phone, avatar, isActive, id)
	if err != nil {
		if isDuplicate(err) {
			return model.User{}, false, apperr.AlreadyRegistered("username or email is already registered")
		}
		return model.User{}, false, apperr.Unexpected(err.Error())
	}
	updated, err := r.GetByID(ctx, id)
	if err != nil {
		return model.User{}, false, err
	}
	return updated, emailChanged, nil
}

// Activate marks the user's email as verified.  Re-activating an already
// active user is a no-op, which makes token consumption idempotent.
func (r *UserRepo) Activate(ctx context.Context, id string) (model.User, error) {
	res, err := r.DB.ExecContext(ctx, "UPDATE users SET is_active=1 WHERE id=?", id)
	if err != nil {
		return model.User{}, apperr.Unexpected(err.Error())
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		// Distinguish "already active" from "no such user".
		return r.GetByID(ctx, id)
	}
	return r.GetByID(ctx, id)
}

// Delete removes the user row; profiles, blogs and comments cascade.
func (r *UserRepo) Delete(ctx context.Context, id string) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM users WHERE id=?", id)
	if err != nil {
		return apperr.Unexpected(err.Error())
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return apperr.NotFound("user not found")
	}
	return nil
}
