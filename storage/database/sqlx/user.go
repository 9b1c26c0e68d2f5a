package sqlxrepos

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/stagi/core"
	"github.com/trezcool/stagi/core/user"
)

type userRow struct {
	ID           string         `db:"id"`
	Name         null.String    `db:"name"`
	Username     null.String    `db:"username"`
	Email        null.String    `db:"email"`
	IsActive     null.Bool      `db:"is_active"`
	Roles        pq.StringArray `db:"roles"`
	PasswordHash null.Bytes     `db:"password_hash"`
	CreatedAt    null.Time      `db:"created_at"`
	UpdatedAt    null.Time      `db:"updated_at"`
	LastLogin    null.Time      `db:"last_login"`
}

func packUser(usr user.User) userRow {
	return userRow{
		ID:           usr.ID,
		Name:         null.NewString(usr.Name, usr.Name != ""),
		Username:     null.NewString(usr.Username, usr.Username != ""),
		Email:        null.NewString(usr.Email, usr.Email != ""),
		IsActive:     null.BoolFromPtr(usr.IsActive),
		Roles:        usr.Roles,
		PasswordHash: null.BytesFrom(usr.PasswordHash),
		CreatedAt:    null.NewTime(usr.CreatedAt.UTC(), !usr.CreatedAt.IsZero()),
		UpdatedAt:    null.NewTime(usr.UpdatedAt.UTC(), !usr.UpdatedAt.IsZero()),
		LastLogin:    null.NewTime(usr.LastLogin.UTC(), !usr.LastLogin.IsZero()),
	}
}

func (row userRow) unpack() user.User {
	return user.User{
		ID:           row.ID,
		Name:         row.Name.String,
		Username:     row.Username.String,
		Email:        row.Email.String,
		IsActive:     row.IsActive.Ptr(),
		Roles:        row.Roles,
		PasswordHash: row.PasswordHash.Bytes,
		CreatedAt:    row.CreatedAt.Time,
		UpdatedAt:    row.UpdatedAt.Time,
		LastLogin:    row.LastLogin.Time,
	}
}

type userRepository struct {
	db *sqlx.DB
}

var _ user.Repository = (*userRepository)(nil) // interface compliance check

func NewUserRepository(db *sqlx.DB) *userRepository {
	return &userRepository{db: db}
}

func (repo userRepository) CheckUsernameUniqueness(ctx context.Context, username, email string, excludedUsers []user.User, exec ...core.DBExecutor) error {
	q := `
SELECT EXISTS (SELECT 1 FROM "user" WHERE username = $1 AND $1 != '' AND id != ALL($3)) AS username_taken,
       EXISTS (SELECT 1 FROM "user" WHERE email = $2 AND $2 != '' AND id != ALL($3)) AS email_taken`

	excludedIDs := make(pq.StringArray, 0, len(excludedUsers))
	for _, exclUsr := range excludedUsers {
		excludedIDs = append(excludedIDs, exclUsr.ID)
	}

	var taken struct {
		Username bool `db:"username_taken"`
		Email    bool `db:"email_taken"`
	}
	if err := sqlx.GetContext(ctx, getExec(repo.db, exec), &taken, q, username, email, excludedIDs); err != nil {
		return errors.Wrap(err, "checking user uniqueness")
	}
	if taken.Username {
		return user.ErrUsernameExists
	}
	if taken.Email {
		return user.ErrEmailExists
	}
	return nil
}

func (repo userRepository) CreateUser(ctx context.Context, usr user.User, exec ...core.DBExecutor) (user.User, error) {
	usr.ID = uuid.New().String()
	row := packUser(usr)
	q := `
INSERT INTO "user" (id, name, username, email, is_active, roles, password_hash, created_at, updated_at, last_login)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := getExec(repo.db, exec).ExecContext(ctx, q,
		row.ID, row.Name, row.Username, row.Email, row.IsActive, row.Roles,
		row.PasswordHash, row.CreatedAt, row.UpdatedAt, row.LastLogin,
	)
	if err != nil {
		if isUniqueViolation(err, "user_username_key") {
			return user.User{}, user.ErrUsernameExists
		}
		if isUniqueViolation(err, "user_email_key") {
			return user.User{}, user.ErrEmailExists
		}
		return user.User{}, errors.Wrap(err, "inserting user")
	}
	return row.unpack(), nil
}

func (repo userRepository) QueryUsers(ctx context.Context, filter *user.QueryFilter, ordering []core.DBOrdering, exec ...core.DBExecutor) ([]user.User, error) {
	q := `SELECT * FROM "user" WHERE true`
	var args []interface{}
	arg := func(val interface{}) string {
		args = append(args, val)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter != nil {
		// users with Name, Username or Email matching the search keyword
		if filter.Search != "" {
			val := arg("%" + filter.Search + "%")
			q += fmt.Sprintf(" AND (name ILIKE %[1]s OR username ILIKE %[1]s OR email ILIKE %[1]s)", val)
		}
		// users with any role that starts with any of the provided roles
		if len(filter.Roles) > 0 {
			q += " AND ("
			for i, role := range filter.Roles {
				if i > 0 {
					q += " OR "
				}
				q += fmt.Sprintf("EXISTS (SELECT 1 FROM UNNEST(roles) user_role WHERE user_role ILIKE %s)", arg(role+"%"))
			}
			q += ")"
		}
		if filter.IsActive != nil {
			q += fmt.Sprintf(" AND is_active = %s", arg(*filter.IsActive))
		}
		if !filter.CreatedFrom.IsZero() {
			q += fmt.Sprintf(" AND created_at >= %s", arg(filter.CreatedFrom.UTC()))
		}
		if !filter.CreatedTo.IsZero() {
			q += fmt.Sprintf(" AND created_at <= %s", arg(filter.CreatedTo.UTC()))
		}
	}
	q += orderBy(ordering)

	var rows []userRow
	if err := sqlx.SelectContext(ctx, getExec(repo.db, exec), &rows, q, args...); err != nil {
		return nil, errors.Wrap(err, "querying users")
	}
	users := make([]user.User, 0, len(rows))
	for _, row := range rows {
		users = append(users, row.unpack())
	}
	return users, nil
}

func (repo userRepository) GetUser(ctx context.Context, filter user.GetFilter, exec ...core.DBExecutor) (user.User, error) {
	q := `SELECT * FROM "user" WHERE `
	var args []interface{}

	switch {
	case filter.ID != "":
		if _, err := uuid.Parse(filter.ID); err != nil {
			return user.User{}, user.ErrNotFound
		}
		q += "id = $1"
		args = append(args, filter.ID)
	case filter.Username != "":
		q += "username = $1"
		args = append(args, filter.Username)
	case filter.Email != "":
		q += "email = $1"
		args = append(args, filter.Email)
	case len(filter.UsernameOrEmail) == 2:
		q += "username = $1 OR email = $2"
		args = append(args, filter.UsernameOrEmail[0], filter.UsernameOrEmail[1])
	default:
		return user.User{}, user.ErrNotFound
	}

	var row userRow
	if err := sqlx.GetContext(ctx, getExec(repo.db, exec), &row, q, args...); err != nil {
		return user.User{}, trapNoRowsErr(err, user.ErrNotFound, "finding user")
	}
	return row.unpack(), nil
}

func (repo userRepository) UpdateUser(ctx context.Context, usr user.User, exec ...core.DBExecutor) (user.User, error) {
	row := packUser(usr)
	q := `
UPDATE "user" SET
    name          = COALESCE($2, name),
    username      = COALESCE($3, username),
    email         = COALESCE($4, email),
    is_active     = COALESCE($5, is_active),
    roles         = COALESCE($6, roles),
    password_hash = COALESCE($7, password_hash),
    updated_at    = COALESCE($8, updated_at),
    last_login    = COALESCE($9, last_login)
WHERE id = $1
RETURNING *`
	var roles interface{} // nil roles must not overwrite
	if usr.Roles != nil {
		roles = row.Roles
	}
	var hash interface{}
	if usr.PasswordHash != nil {
		hash = row.PasswordHash
	}

	var updated userRow
	err := sqlx.GetContext(ctx, getExec(repo.db, exec), &updated, q,
		row.ID, row.Name, row.Username, row.Email, row.IsActive, roles,
		hash, row.UpdatedAt, row.LastLogin,
	)
	if err != nil {
		return user.User{}, trapNoRowsErr(err, user.ErrNotFound, "updating user")
	}
	return updated.unpack(), nil
}

func (repo userRepository) UpdateOrCreateUser(ctx context.Context, usr user.User, exec ...core.DBExecutor) (user.User, error) {
	if usr.ID == "" {
		return repo.CreateUser(ctx, usr, exec...)
	}
	return repo.UpdateUser(ctx, usr, exec...)
}

func (repo userRepository) DeleteUsersByID(ctx context.Context, ids []string, exec ...core.DBExecutor) (int, error) {
	res, err := getExec(repo.db, exec).ExecContext(ctx, `DELETE FROM "user" WHERE id = ANY($1)`, pq.StringArray(ids))
	if err != nil {
		return 0, errors.Wrap(err, "deleting users")
	}
	cnt, _ := res.RowsAffected()
	return int(cnt), nil
}
