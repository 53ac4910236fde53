package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/kyrios-fx/backend/internal/db"
	"github.com/kyrios-fx/backend/internal/domain"

	"github.com/go-sql-driver/mysql"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

const userColumns = `id, name, email, phone, password_hash, referral_code, referred_by_code,
	email_verified, otp_verified, status, role, login_attempts, lock_until,
	password_reset_token, password_reset_expires, dob, country, mt5_id, broker_name, plan, capital,
	admin_verified, verification_status, version, created_at, updated_at, deleted_at`

var userSortColumns = map[string]string{
	"name":      "name",
	"email":     "email",
	"createdAt": "created_at",
}

type userRepository struct {
	db *sqlx.DB
}

func newUserRepository(db *sqlx.DB) *userRepository {
	return &userRepository{
		db: db,
	}
}

func isDuplicateEntry(err error) bool {
	var mysqlError *mysql.MySQLError
	return errors.As(err, &mysqlError) && mysqlError.Number == db.DuplicateEntry
}

func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	const op = "repository.user.Create"

	const query = `
	INSERT INTO user
	(id, name, email, phone, password_hash, referral_code, referred_by_code,
	 email_verified, otp_verified, status, role, capital, verification_status, version)
	VALUES(uuid_to_bin(?), ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?);
	`

	result, err := r.db.ExecContext(ctx, query,
		user.ID,
		user.Name,
		user.Email,
		user.Phone,
		user.PasswordHash,
		user.ReferralCode,
		user.ReferredByCode,
		user.EmailVerified,
		user.OTPVerified,
		user.Status,
		user.Role,
		user.Capital,
		user.VerificationStatus,
		user.Version,
	)
	if err != nil {
		if isDuplicateEntry(err) {
			return domain.ErrDuplicateEntry
		}
		return fmt.Errorf("%s: insert user failed: %w", op, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: rows affected failed: %w", op, err)
	}
	if rowsAffected == 0 {
		return domain.ErrNoRowsAffected
	}

	return nil
}

func (r *userRepository) getOne(ctx context.Context, op, where string, arg any) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM user WHERE ` + where + ` AND deleted_at IS NULL;`

	var user domain.User
	if err := r.db.GetContext(ctx, &user, query, arg); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("%s: select user failed: %w", op, err)
	}
	return &user, nil
}

func (r *userRepository) GetOneByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	return r.getOne(ctx, "repository.user.GetOneByID", "id = uuid_to_bin(?)", id)
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.getOne(ctx, "repository.user.GetByEmail", "email = ?", email)
}

func (r *userRepository) GetByReferralCode(ctx context.Context, code string) (*domain.User, error) {
	return r.getOne(ctx, "repository.user.GetByReferralCode", "referral_code = ?", code)
}

func (r *userRepository) GetByResetToken(ctx context.Context, tokenHash string) (*domain.User, error) {
	return r.getOne(ctx, "repository.user.GetByResetToken", "password_reset_token = ?", tokenHash)
}

func (r *userRepository) Update(ctx context.Context, user *domain.User) error {
	const op = "repository.user.Update"

	const query = `
	UPDATE user SET
		name = ?, email = ?, phone = ?, password_hash = ?, email_verified = ?, otp_verified = ?,
		status = ?, role = ?, login_attempts = ?, lock_until = ?,
		password_reset_token = ?, password_reset_expires = ?,
		dob = ?, country = ?, mt5_id = ?, broker_name = ?, plan = ?, capital = ?,
		admin_verified = ?, verification_status = ?, version = version + 1
	WHERE id = uuid_to_bin(?) AND version = ? AND deleted_at IS NULL;
	`

	result, err := r.db.ExecContext(ctx, query,
		user.Name, user.Email, user.Phone, user.PasswordHash, user.EmailVerified, user.OTPVerified,
		user.Status, user.Role, user.LoginAttempts, user.LockUntil,
		user.PasswordResetToken, user.PasswordResetExpires,
		user.DOB, user.Country, user.MT5ID, user.BrokerName, user.Plan, user.Capital,
		user.AdminVerified, user.VerificationStatus,
		user.ID, user.Version,
	)
	if err != nil {
		if isDuplicateEntry(err) {
			return domain.ErrDuplicateEntry
		}
		return fmt.Errorf("%s: update user failed: %w", op, err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: rows affected failed: %w", op, err)
	}
	if rows == 0 {
		return domain.ErrVersionConflict
	}

	user.Version++
	return nil
}

func buildUserWhere(filter UserFilter) (string, []any) {
	conditions := []string{"deleted_at IS NULL"}
	var args []any

	if filter.Role != nil {
		conditions = append(conditions, "role = ?")
		args = append(args, *filter.Role)
	}
	if filter.Status != nil {
		conditions = append(conditions, "status = ?")
		args = append(args, *filter.Status)
	}
	if filter.Email != "" {
		conditions = append(conditions, "email LIKE ?")
		args = append(args, "%"+filter.Email+"%")
	}
	if filter.ReferredByCode != "" {
		conditions = append(conditions, "referred_by_code = ?")
		args = append(args, filter.ReferredByCode)
	}

	return " WHERE " + strings.Join(conditions, " AND "), args
}

func (r *userRepository) Count(ctx context.Context, filter UserFilter) (int64, error) {
	where, args := buildUserWhere(filter)

	var count int64
	if err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM user`+where, args...); err != nil {
		return 0, fmt.Errorf("count users failed: %w", err)
	}
	return count, nil
}

func (r *userRepository) List(ctx context.Context, filter UserFilter) ([]*domain.User, error) {
	const op = "repository.user.List"

	where, args := buildUserWhere(filter)

	sortColumn, ok := userSortColumns[filter.SortBy]
	if !ok {
		sortColumn = "created_at"
	}
	order := "DESC"
	if strings.EqualFold(filter.Order, "asc") {
		order = "ASC"
	}

	query := `SELECT ` + userColumns + ` FROM user` + where +
		fmt.Sprintf(" ORDER BY %s %s LIMIT ? OFFSET ?", sortColumn, order)
	args = append(args, filter.Limit, filter.Offset)

	users := make([]*domain.User, 0, filter.Limit)
	if err := r.db.SelectContext(ctx, &users, query, args...); err != nil {
		return nil, fmt.Errorf("%s: select users failed: %w", op, err)
	}
	return users, nil
}

func (r *userRepository) SoftDelete(ctx context.Context, id uuid.UUID) error {
	const query = `UPDATE user SET deleted_at = now() WHERE id = uuid_to_bin(?) AND deleted_at IS NULL;`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("soft delete user failed: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected failed: %w", err)
	}
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}
