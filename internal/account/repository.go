// AngelaMos | 2026
// repository.go

package account

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/driveready/driveready-api/internal/core"
)

type Repository interface {
	Create(ctx context.Context, acct *Account) error
	GetByID(ctx context.Context, id string) (*Account, error)
	GetByEmail(ctx context.Context, email string) (*Account, error)
	GetByIdentifier(ctx context.Context, identifier string) (*Account, error)
	RecordLoginFailure(
		ctx context.Context,
		id string,
		policy LockoutPolicy,
	) (int, *time.Time, error)
	RecordLoginSuccess(ctx context.Context, id string) error
	UpdatePassword(ctx context.Context, id, passwordHash string) error
	MarkEmailVerified(ctx context.Context, id string) error
	UpdateProfile(ctx context.Context, id string, update ProfileUpdate) error
	SetRole(ctx context.Context, id, roleID string) error
	SetActive(ctx context.Context, id string, active bool) error
	IncrementTokenVersion(ctx context.Context, id string) error
	List(ctx context.Context, params ListParams) ([]Account, int, error)
}

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

const accountColumns = `
	a.id, a.name, a.email, a.phone, a.location, a.avatar_url,
	a.password_hash, a.role_id, r.name AS role_name,
	a.email_verified, a.active, a.last_login,
	a.login_attempts, a.lock_until, a.token_version,
	a.subscription_plan, a.subscription_active,
	a.subscription_start, a.subscription_end,
	a.created_at, a.updated_at`

func (r *repository) Create(ctx context.Context, acct *Account) error {
	query := `
		INSERT INTO accounts (
			id, name, email, phone, location, password_hash, role_id
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7
		)
		RETURNING created_at, updated_at, token_version`

	err := r.db.GetContext(ctx, acct, query,
		acct.ID,
		acct.Name,
		acct.Email,
		acct.Phone,
		acct.Location,
		acct.PasswordHash,
		acct.RoleID,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return fmt.Errorf("create account: %w", core.ErrDuplicateKey)
		}
		return fmt.Errorf("create account: %w", err)
	}

	return nil
}

func (r *repository) GetByID(ctx context.Context, id string) (*Account, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM accounts a
		JOIN roles r ON r.id = a.role_id
		WHERE a.id = $1`, accountColumns)

	var acct Account
	err := r.db.GetContext(ctx, &acct, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get account: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get account: %w", err)
	}

	return &acct, nil
}

func (r *repository) GetByEmail(
	ctx context.Context,
	email string,
) (*Account, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM accounts a
		JOIN roles r ON r.id = a.role_id
		WHERE a.email = $1`, accountColumns)

	var acct Account
	err := r.db.GetContext(ctx, &acct, query, strings.ToLower(email))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get account by email: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get account by email: %w", err)
	}

	return &acct, nil
}

// GetByIdentifier resolves a login identifier that may be either an
// email address or a phone number.
func (r *repository) GetByIdentifier(
	ctx context.Context,
	identifier string,
) (*Account, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM accounts a
		JOIN roles r ON r.id = a.role_id
		WHERE a.email = $1 OR a.phone = $2`, accountColumns)

	var acct Account
	err := r.db.GetContext(
		ctx,
		&acct,
		query,
		strings.ToLower(identifier),
		identifier,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf(
			"get account by identifier: %w",
			core.ErrNotFound,
		)
	}
	if err != nil {
		return nil, fmt.Errorf("get account by identifier: %w", err)
	}

	return &acct, nil
}

// RecordLoginFailure applies the lockout transition in one statement so
// two concurrent failures both count. The CASE arms mirror
// LockoutPolicy.NextFailureState: a stale lock restarts the window at 1,
// otherwise the counter increments and the lock engages at the
// threshold.
func (r *repository) RecordLoginFailure(
	ctx context.Context,
	id string,
	policy LockoutPolicy,
) (int, *time.Time, error) {
	query := `
		UPDATE accounts
		SET
			login_attempts = CASE
				WHEN lock_until IS NOT NULL AND lock_until <= NOW() THEN 1
				ELSE login_attempts + 1
			END,
			lock_until = CASE
				WHEN lock_until IS NOT NULL AND lock_until <= NOW() THEN NULL
				WHEN lock_until IS NULL AND login_attempts + 1 >= $2
					THEN NOW() + make_interval(secs => $3)
				ELSE lock_until
			END,
			updated_at = NOW()
		WHERE id = $1
		RETURNING login_attempts, lock_until`

	var state struct {
		LoginAttempts int        `db:"login_attempts"`
		LockUntil     *time.Time `db:"lock_until"`
	}

	err := r.db.GetContext(ctx, &state, query,
		id,
		policy.Threshold,
		policy.Duration.Seconds(),
	)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil, fmt.Errorf("record login failure: %w", core.ErrNotFound)
	}
	if err != nil {
		return 0, nil, fmt.Errorf("record login failure: %w", err)
	}

	return state.LoginAttempts, state.LockUntil, nil
}

// RecordLoginSuccess clears the lockout state and stamps last_login in
// a single write.
func (r *repository) RecordLoginSuccess(ctx context.Context, id string) error {
	query := `
		UPDATE accounts
		SET login_attempts = 0, lock_until = NULL,
			last_login = NOW(), updated_at = NOW()
		WHERE id = $1`

	return r.execExpectingRow(ctx, "record login success", query, id)
}

// UpdatePassword stores a new hash and bumps token_version, which
// invalidates every previously issued token for the account.
func (r *repository) UpdatePassword(
	ctx context.Context,
	id, passwordHash string,
) error {
	query := `
		UPDATE accounts
		SET password_hash = $2, token_version = token_version + 1,
			updated_at = NOW()
		WHERE id = $1`

	return r.execExpectingRow(ctx, "update password", query, id, passwordHash)
}

func (r *repository) MarkEmailVerified(ctx context.Context, id string) error {
	query := `
		UPDATE accounts
		SET email_verified = true, updated_at = NOW()
		WHERE id = $1`

	return r.execExpectingRow(ctx, "mark email verified", query, id)
}

func (r *repository) UpdateProfile(
	ctx context.Context,
	id string,
	update ProfileUpdate,
) error {
	var sets []string
	var args []any
	args = append(args, id)
	argIdx := 2

	appendSet := func(column string, value any) {
		sets = append(sets, fmt.Sprintf("%s = $%d", column, argIdx))
		args = append(args, value)
		argIdx++
	}

	if update.Name != nil {
		appendSet("name", *update.Name)
	}
	if update.Phone != nil {
		appendSet("phone", *update.Phone)
	}
	if update.Location != nil {
		appendSet("location", *update.Location)
	}
	if update.AvatarURL != nil {
		appendSet("avatar_url", *update.AvatarURL)
	}

	if len(sets) == 0 {
		return nil
	}

	sets = append(sets, "updated_at = NOW()")

	query := fmt.Sprintf(
		"UPDATE accounts SET %s WHERE id = $1",
		strings.Join(sets, ", "),
	)

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		if isDuplicateKeyError(err) {
			return fmt.Errorf("update profile: %w", core.ErrDuplicateKey)
		}
		return fmt.Errorf("update profile: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update profile: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("update profile: %w", core.ErrNotFound)
	}

	return nil
}

func (r *repository) SetRole(ctx context.Context, id, roleID string) error {
	query := `
		UPDATE accounts
		SET role_id = $2, updated_at = NOW()
		WHERE id = $1`

	return r.execExpectingRow(ctx, "set role", query, id, roleID)
}

func (r *repository) SetActive(
	ctx context.Context,
	id string,
	active bool,
) error {
	query := `
		UPDATE accounts
		SET active = $2, updated_at = NOW()
		WHERE id = $1`

	return r.execExpectingRow(ctx, "set active", query, id, active)
}

func (r *repository) IncrementTokenVersion(
	ctx context.Context,
	id string,
) error {
	query := `
		UPDATE accounts
		SET token_version = token_version + 1, updated_at = NOW()
		WHERE id = $1`

	return r.execExpectingRow(ctx, "increment token version", query, id)
}

func (r *repository) List(
	ctx context.Context,
	params ListParams,
) ([]Account, int, error) {
	params.Normalize()

	var conditions []string
	var args []any
	argIdx := 1

	conditions = append(conditions, "TRUE")

	if params.Search != "" {
		conditions = append(conditions, fmt.Sprintf(
			"(a.email ILIKE $%d OR a.name ILIKE $%d)", argIdx, argIdx))
		args = append(args, "%"+escapeLike(params.Search)+"%")
		argIdx++
	}

	if params.Role != "" {
		conditions = append(conditions, fmt.Sprintf("r.name = $%d", argIdx))
		args = append(args, params.Role)
		argIdx++
	}

	if params.Active != nil {
		conditions = append(conditions, fmt.Sprintf("a.active = $%d", argIdx))
		args = append(args, *params.Active)
		argIdx++
	}

	whereClause := strings.Join(conditions, " AND ")

	countQuery := fmt.Sprintf(`
		SELECT COUNT(*)
		FROM accounts a
		JOIN roles r ON r.id = a.role_id
		WHERE %s`, whereClause)

	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count accounts: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM accounts a
		JOIN roles r ON r.id = a.role_id
		WHERE %s
		ORDER BY a.created_at DESC
		LIMIT $%d OFFSET $%d`,
		accountColumns, whereClause, argIdx, argIdx+1)

	args = append(args, params.PageSize, params.Offset())

	var accounts []Account
	if err := r.db.SelectContext(ctx, &accounts, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list accounts: %w", err)
	}

	return accounts, total, nil
}

func (r *repository) execExpectingRow(
	ctx context.Context,
	op, query string,
	args ...any,
) error {
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if rows == 0 {
		return fmt.Errorf("%s: %w", op, core.ErrNotFound)
	}

	return nil
}

func isDuplicateKeyError(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}

func escapeLike(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, "%", "\\%")
	s = strings.ReplaceAll(s, "_", "\\_")
	return s
}
