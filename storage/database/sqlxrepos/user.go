package sqlxrepos

import (
	"context"

	"github.com/pkg/errors"

	"github.com/trezcool/icba/core"
	"github.com/trezcool/icba/core/user"
)

const (
	userColumns    = "id, username, email, first_name, last_name, password_hash, date_joined"
	studentColumns = "id, user_id, reset_code, reset_code_expires_at"
	sessionColumns = "token, user_id, created_at, expires_at"
)

type userRepository struct {
	repository
}

var _ user.Repository = (*userRepository)(nil) // interface compliance check

func NewUserRepository(db core.DBExecutor) *userRepository {
	return &userRepository{repository{db: db}}
}

func (repo userRepository) CreateUser(ctx context.Context, usr user.User, exec ...core.DBExecutor) (user.User, error) {
	exe := repo.getExec(exec)
	q := `INSERT INTO users (username, email, first_name, last_name, password_hash, date_joined)
		VALUES (?, ?, ?, ?, ?, ?) RETURNING id`
	err := repo.get(ctx, exe, &usr.ID, q,
		usr.Username, usr.Email, usr.FirstName, usr.LastName, usr.PasswordHash, usr.DateJoined.UTC())
	if err != nil {
		return user.User{}, trapUniqueErr(err, user.ErrUsernameExists, "inserting user")
	}
	return usr, nil
}

func (repo userRepository) GetUser(ctx context.Context, filter user.GetFilter, exec ...core.DBExecutor) (user.User, error) {
	var (
		where string
		args  []interface{}
	)
	switch {
	case filter.ID != 0:
		where, args = "id = ?", []interface{}{filter.ID}
	case filter.Username != "":
		where, args = "username = ?", []interface{}{filter.Username}
	case filter.UsernameOrEmail != "":
		where, args = "username = ? OR email = ?", []interface{}{filter.UsernameOrEmail, filter.UsernameOrEmail}
	default:
		return user.User{}, user.ErrUserNotFound
	}

	exe := repo.getExec(exec)
	var usr user.User
	if err := repo.get(ctx, exe, &usr, "SELECT "+userColumns+" FROM users WHERE "+where+" ORDER BY id LIMIT 1", args...); err != nil {
		return user.User{}, trapNoRowsErr(err, user.ErrUserNotFound, "finding user")
	}

	q := `SELECT g.name FROM groups g
		JOIN user_groups ug ON ug.group_id = g.id
		WHERE ug.user_id = ? ORDER BY g.name`
	if err := repo.selekt(ctx, exe, &usr.Groups, q, usr.ID); err != nil {
		return user.User{}, errors.Wrap(err, "listing user groups")
	}
	return usr, nil
}

func (repo userRepository) UpdateUser(ctx context.Context, usr user.User, exec ...core.DBExecutor) error {
	q := "UPDATE users SET email = ?, first_name = ?, last_name = ?, password_hash = ? WHERE id = ?"
	if _, err := repo.exec(ctx, repo.getExec(exec), q, usr.Email, usr.FirstName, usr.LastName, usr.PasswordHash, usr.ID); err != nil {
		return errors.Wrap(err, "updating user")
	}
	return nil
}

func (repo userRepository) AddUserToGroup(ctx context.Context, userID int, group string, exec ...core.DBExecutor) error {
	q := `INSERT INTO user_groups (user_id, group_id)
		SELECT CAST(? AS INTEGER), id FROM groups WHERE name = ?
		ON CONFLICT DO NOTHING`
	if _, err := repo.exec(ctx, repo.getExec(exec), q, userID, group); err != nil {
		return errors.Wrap(err, "adding user to group")
	}
	return nil
}

func (repo userRepository) CreateStudent(ctx context.Context, st user.Student, exec ...core.DBExecutor) (user.Student, error) {
	q := "INSERT INTO students (" + studentColumns + ") VALUES (?, ?, ?, ?)"
	if _, err := repo.exec(ctx, repo.getExec(exec), q, st.ID, st.UserID, st.ResetCode, st.ResetCodeExpiresAt); err != nil {
		return user.Student{}, errors.Wrap(err, "inserting student")
	}
	return st, nil
}

func (repo userRepository) GetStudent(ctx context.Context, filter user.StudentFilter, exec ...core.DBExecutor) (user.Student, error) {
	var (
		where string
		arg   interface{}
	)
	switch {
	case filter.ID != "":
		where, arg = "id = ?", filter.ID
	case filter.UserID != 0:
		where, arg = "user_id = ?", filter.UserID
	case filter.ResetCode != "":
		where, arg = "reset_code = ?", filter.ResetCode
	default:
		return user.Student{}, user.ErrNoStudent
	}

	var st user.Student
	if err := repo.get(ctx, repo.getExec(exec), &st, "SELECT "+studentColumns+" FROM students WHERE "+where, arg); err != nil {
		return user.Student{}, trapNoRowsErr(err, user.ErrNoStudent, "finding student")
	}
	return st, nil
}

func (repo userRepository) UpdateStudent(ctx context.Context, st user.Student, exec ...core.DBExecutor) error {
	q := "UPDATE students SET reset_code = ?, reset_code_expires_at = ? WHERE id = ?"
	if _, err := repo.exec(ctx, repo.getExec(exec), q, st.ResetCode, st.ResetCodeExpiresAt, st.ID); err != nil {
		return trapUniqueErr(err, user.ErrResetCodeConflict, "updating student")
	}
	return nil
}

func (repo userRepository) UpsertSession(ctx context.Context, sess user.Session, exec ...core.DBExecutor) (user.Session, error) {
	exe := repo.getExec(exec)
	now := sess.CreatedAt.UTC()
	q := `INSERT INTO sessions (` + sessionColumns + `) VALUES (?, ?, ?, ?)
		ON CONFLICT (user_id) DO UPDATE
		SET token = excluded.token, created_at = excluded.created_at, expires_at = excluded.expires_at
		WHERE sessions.expires_at <= ?`
	if _, err := repo.exec(ctx, exe, q, sess.Token, sess.UserID, now, sess.ExpiresAt.UTC(), now); err != nil {
		return user.Session{}, errors.Wrap(err, "upserting session")
	}

	var stored user.Session
	if err := repo.get(ctx, exe, &stored, "SELECT "+sessionColumns+" FROM sessions WHERE user_id = ?", sess.UserID); err != nil {
		return user.Session{}, errors.Wrap(err, "finding session")
	}
	return stored, nil
}

func (repo userRepository) GetSession(ctx context.Context, token string, exec ...core.DBExecutor) (user.Session, error) {
	var sess user.Session
	if err := repo.get(ctx, repo.getExec(exec), &sess, "SELECT "+sessionColumns+" FROM sessions WHERE token = ?", token); err != nil {
		return user.Session{}, trapNoRowsErr(err, user.ErrSessionNotFound, "finding session")
	}
	return sess, nil
}

func (repo userRepository) DeleteSession(ctx context.Context, token string, exec ...core.DBExecutor) error {
	if _, err := repo.exec(ctx, repo.getExec(exec), "DELETE FROM sessions WHERE token = ?", token); err != nil {
		return errors.Wrap(err, "deleting session")
	}
	return nil
}

func (repo userRepository) DeleteUserSessions(ctx context.Context, userID int, exec ...core.DBExecutor) error {
	if _, err := repo.exec(ctx, repo.getExec(exec), "DELETE FROM sessions WHERE user_id = ?", userID); err != nil {
		return errors.Wrap(err, "deleting user sessions")
	}
	return nil
}
