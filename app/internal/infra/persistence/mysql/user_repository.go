package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/go-sql-driver/mysql"

	dom "example.com/coffee-shop/app/internal/domain/user"
)

const errDuplicateEntry = 1062

type UserRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(ctx context.Context, u *dom.User) (_ *dom.User, retErr error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() {
		if retErr != nil {
			_ = tx.Rollback()
		}
	}()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO users (username, email, password_hash) VALUES (?, ?, ?)`,
		u.Username, u.Email, u.PasswordHash,
	)
	if err != nil {
		return nil, duplicateUserError(err)
	}
	id, _ := res.LastInsertId()

	for _, role := range u.Roles {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO user_roles (user_id, role_code) VALUES (?, ?)`,
			id, string(role),
		); err != nil {
			return nil, fmt.Errorf("assign role %s: %w", role, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	u.ID = id
	return u, nil
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (*dom.User, error) {
	return r.getOne(ctx, `u.id = ?`, id)
}

func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*dom.User, error) {
	return r.getOne(ctx, `u.username = ?`, username)
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*dom.User, error) {
	return r.getOne(ctx, `u.email = ?`, email)
}

func (r *UserRepository) getOne(ctx context.Context, where string, arg any) (*dom.User, error) {
	row := r.db.QueryRowContext(ctx, `
        SELECT u.id, u.username, u.email, u.password_hash, COALESCE(GROUP_CONCAT(r.role_code), '')
        FROM users u
        LEFT JOIN user_roles r ON r.user_id = u.id
        WHERE `+where+`
        GROUP BY u.id, u.username, u.email, u.password_hash
    `, arg)

	var u dom.User
	var roles string
	if err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &roles); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, dom.ErrUserNotFound
		}
		return nil, err
	}
	if roles != "" {
		parsed, err := dom.ParseRoleCodes(strings.Split(roles, ","))
		if err != nil {
			return nil, fmt.Errorf("user %d: %w", u.ID, err)
		}
		u.Roles = parsed
	}
	return &u, nil
}

func duplicateUserError(err error) error {
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) && myErr.Number == errDuplicateEntry {
		if strings.Contains(myErr.Message, "username") {
			return dom.ErrUsernameTaken
		}
		return dom.ErrEmailAlreadyUsed
	}
	return err
}
