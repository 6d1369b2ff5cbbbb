package sqlxrepos

import (
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/abelmak/chapterdesk/core/user"
)

type userRow struct {
	ID           string         `db:"id"`
	Name         string         `db:"name"`
	Username     string         `db:"username"`
	Email        string         `db:"email"`
	IsActive     bool           `db:"is_active"`
	Roles        pq.StringArray `db:"roles"`
	ChapterID    sql.NullString `db:"chapter_id"`
	PasswordHash []byte         `db:"password_hash"`
	CreatedAt    time.Time      `db:"created_at"`
	UpdatedAt    time.Time      `db:"updated_at"`
	LastLogin    sql.NullTime   `db:"last_login"`
}

func (r userRow) toUser() user.User {
	return user.User{
		ID:           r.ID,
		Name:         r.Name,
		Username:     r.Username,
		Email:        r.Email,
		IsActive:     r.IsActive,
		Roles:        r.Roles,
		ChapterID:    r.ChapterID.String,
		PasswordHash: r.PasswordHash,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
		LastLogin:    r.LastLogin.Time,
	}
}

func newUserRow(usr user.User) userRow {
	return userRow{
		ID:           usr.ID,
		Name:         usr.Name,
		Username:     usr.Username,
		Email:        usr.Email,
		IsActive:     usr.IsActive,
		Roles:        usr.Roles,
		ChapterID:    sql.NullString{String: usr.ChapterID, Valid: usr.ChapterID != ""},
		PasswordHash: usr.PasswordHash,
		CreatedAt:    usr.CreatedAt,
		UpdatedAt:    usr.UpdatedAt,
		LastLogin:    sql.NullTime{Time: usr.LastLogin, Valid: !usr.LastLogin.IsZero()},
	}
}

func toUsers(rows []userRow) []user.User {
	users := make([]user.User, len(rows))
	for i, r := range rows {
		users[i] = r.toUser()
	}
	return users
}

type userRepository struct {
	db *sqlx.DB
}

func NewUserRepository(db *sqlx.DB) user.Repository {
	return &userRepository{db: db}
}

func (repo *userRepository) CheckUsernameUniqueness(username, email string, excludedUsers ...user.User) error {
	check := func(col, val string) (bool, error) {
		q := `SELECT COUNT(*) FROM users WHERE ` + col + ` = ?`
		args := []interface{}{val}

		if len(excludedUsers) > 0 {
			ids := make([]string, len(excludedUsers))
			for i, u := range excludedUsers {
				ids[i] = u.ID
			}
			inQ, inArgs, err := sqlx.In(`id NOT IN (?)`, ids)
			if err != nil {
				return false, errors.Wrap(err, "building exclusion filter")
			}
			q += ` AND ` + inQ
			args = append(args, inArgs...)
		}

		var count int
		if err := repo.db.Get(&count, repo.db.Rebind(q), args...); err != nil {
			return false, errors.Wrap(err, "checking user uniqueness")
		}
		return count > 0, nil
	}

	if username != "" {
		if taken, err := check("username", username); err != nil {
			return err
		} else if taken {
			return user.ErrUsernameExists
		}
	}
	if email != "" {
		if taken, err := check("email", email); err != nil {
			return err
		} else if taken {
			return user.ErrEmailExists
		}
	}
	return nil
}

func (repo *userRepository) CreateUser(usr user.User) (user.User, error) {
	const q = `
	INSERT INTO users (
		id, name, username, email, is_active, roles, chapter_id, password_hash,
		created_at, updated_at, last_login
	) VALUES (
		:id, :name, :username, :email, :is_active, :roles, :chapter_id, :password_hash,
		:created_at, :updated_at, :last_login
	)`
	if _, err := repo.db.NamedExec(q, newUserRow(usr)); err != nil {
		return user.User{}, errors.Wrap(err, "inserting user")
	}
	return usr, nil
}

func (repo *userRepository) QueryAllUsers() ([]user.User, error) {
	var rows []userRow
	if err := repo.db.Select(&rows, `SELECT * FROM users`); err != nil {
		return nil, errors.Wrap(err, "selecting users")
	}
	return toUsers(rows), nil
}

func (repo *userRepository) getBy(where string, args ...interface{}) (user.User, error) {
	var row userRow
	if err := repo.db.Get(&row, `SELECT * FROM users WHERE `+where, args...); err != nil {
		if err == sql.ErrNoRows {
			return user.User{}, user.ErrNotFound
		}
		return user.User{}, errors.Wrap(err, "selecting user")
	}
	return row.toUser(), nil
}

func (repo *userRepository) GetUserByID(id string) (user.User, error) {
	return repo.getBy(`id = $1`, id)
}

func (repo *userRepository) GetUserByUsername(username string) (user.User, error) {
	return repo.getBy(`username = $1`, username)
}

func (repo *userRepository) GetUserByEmail(email string) (user.User, error) {
	return repo.getBy(`email = $1`, email)
}

func (repo *userRepository) GetUserByUsernameOrEmail(username string) (user.User, error) {
	return repo.getBy(`username = $1 OR email = $1`, username)
}

func (repo *userRepository) FilterUsers(filter user.QueryFilter) ([]user.User, error) {
	q := `SELECT * FROM users WHERE true`
	var args []interface{}

	if filter.Search != "" {
		val := "%" + filter.Search + "%"
		q += ` AND (name ILIKE ? OR username ILIKE ? OR email ILIKE ?)`
		args = append(args, val, val, val)
	}
	if len(filter.Roles) > 0 {
		// any role with one of the given prefixes
		q += ` AND EXISTS (SELECT 1 FROM unnest(roles) AS r WHERE `
		for i, role := range filter.Roles {
			if i > 0 {
				q += ` OR `
			}
			q += `r LIKE ?`
			args = append(args, role+"%")
		}
		q += `)`
	}
	if filter.IsActive != nil {
		q += ` AND is_active = ?`
		args = append(args, *filter.IsActive)
	}
	if filter.ChapterID != "" {
		q += ` AND chapter_id = ?`
		args = append(args, filter.ChapterID)
	}
	if !filter.CreatedFrom.IsZero() {
		q += ` AND created_at >= ?`
		args = append(args, filter.CreatedFrom.UTC())
	}
	if !filter.CreatedTo.IsZero() {
		q += ` AND created_at <= ?`
		args = append(args, filter.CreatedTo.UTC())
	}

	var rows []userRow
	if err := repo.db.Select(&rows, repo.db.Rebind(q), args...); err != nil {
		return nil, errors.Wrap(err, "filtering users")
	}
	return toUsers(rows), nil
}

func (repo *userRepository) UpdateUser(usr user.User, isActive *bool) (user.User, error) {
	const q = `
	UPDATE users SET
		name = COALESCE(NULLIF($2, ''), name),
		username = COALESCE(NULLIF($3, ''), username),
		email = COALESCE(NULLIF($4, ''), email),
		is_active = COALESCE($5, is_active),
		roles = COALESCE($6, roles),
		chapter_id = $7,
		password_hash = COALESCE($8, password_hash),
		updated_at = $9
	WHERE id = $1`

	var roles interface{}
	if usr.Roles != nil {
		roles = pq.StringArray(usr.Roles)
	}
	var hash interface{}
	if usr.PasswordHash != nil {
		hash = usr.PasswordHash
	}
	chapterID := sql.NullString{String: usr.ChapterID, Valid: usr.ChapterID != ""}

	res, err := repo.db.Exec(q, usr.ID, usr.Name, usr.Username, usr.Email, isActive, roles, chapterID, hash, usr.UpdatedAt)
	if err != nil {
		return user.User{}, errors.Wrap(err, "updating user")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return user.User{}, user.ErrNotFound
	}
	return repo.GetUserByID(usr.ID)
}

func (repo *userRepository) SetLastLogin(usr user.User) error {
	res, err := repo.db.Exec(`UPDATE users SET last_login = $2 WHERE id = $1`, usr.ID, usr.LastLogin)
	if err != nil {
		return errors.Wrap(err, "setting last login")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return user.ErrNotFound
	}
	return nil
}

func (repo *userRepository) DeleteUsersByID(ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	q, args, err := sqlx.In(`DELETE FROM users WHERE id IN (?)`, ids)
	if err != nil {
		return errors.Wrap(err, "building delete query")
	}
	if _, err = repo.db.Exec(repo.db.Rebind(q), args...); err != nil {
		return errors.Wrap(err, "deleting users")
	}
	return nil
}
