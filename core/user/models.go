package user

import (
	"strings"
	"time"

	"github.com/volatiletech/null/v8"
	"golang.org/x/crypto/bcrypt"

	"github.com/trezcool/icba/core"
)

// Groups
const (
	GroupProfessor     = "professor"
	GroupAdministrator = "administrator"
	GroupStudent       = "student"
)

var (
	AllGroups = []string{GroupProfessor, GroupAdministrator, GroupStudent}

	groupPriorities = map[string]int{
		GroupProfessor:     3,
		GroupAdministrator: 2,
		GroupStudent:       1,
	}
)

func IsGroup(name string) bool {
	_, ok := groupPriorities[name]
	return ok
}

func GroupPriority(group string) int {
	return groupPriorities[group]
}

type User struct {
	ID           int       `json:"id" db:"id"`
	Username     string    `json:"username" db:"username"`
	Email        string    `json:"email" db:"email"`
	FirstName    string    `json:"first_name" db:"first_name"`
	LastName     string    `json:"last_name" db:"last_name"`
	PasswordHash []byte    `json:"-" db:"password_hash"`
	DateJoined   time.Time `json:"date_joined" db:"date_joined"` // UTC
	Groups       []string  `json:"groups" db:"-"`
}

func (u *User) SetPassword(pwd string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = hash
	return nil
}

func (u *User) CheckPassword(pwd string) error {
	return bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(pwd))
}

func (u User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

func (u User) InGroup(group string) bool {
	for _, g := range u.Groups {
		if g == group {
			return true
		}
	}
	return false
}

// Role resolves the user's role from their groups: professor > administrator > student.
func (u User) Role() (string, error) {
	var role string
	for _, g := range u.Groups {
		if GroupPriority(g) > GroupPriority(role) {
			role = g
		}
	}
	if role == "" {
		return "", ErrNoGroup
	}
	return role, nil
}

// IsFaculty reports whether the user may manage classes & surveys.
func (u User) IsFaculty() bool {
	role, err := u.Role()
	return err == nil && (role == GroupProfessor || role == GroupAdministrator)
}

// Student is the 1:1 student profile of a User.
type Student struct {
	ID                 string      `json:"id" db:"id"`
	UserID             int         `json:"user_id" db:"user_id"`
	ResetCode          null.String `json:"-" db:"reset_code"`
	ResetCodeExpiresAt null.Time   `json:"-" db:"reset_code_expires_at"`
}

// HasActiveResetCode reports whether the student holds a reset code that has not expired at `now`.
func (s Student) HasActiveResetCode(now time.Time) bool {
	return s.ResetCode.Valid && s.ResetCodeExpiresAt.Valid && now.Before(s.ResetCodeExpiresAt.Time)
}

func (s *Student) clearResetCode() {
	s.ResetCode = null.String{}
	s.ResetCodeExpiresAt = null.Time{}
}

type Session struct {
	Token     string    `json:"session_id" db:"token"`
	UserID    int       `json:"-" db:"user_id"`
	CreatedAt time.Time `json:"-" db:"created_at"` // UTC
	ExpiresAt time.Time `json:"-" db:"expires_at"` // UTC
}

func (s Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// NewUser contains information needed to register a new student.
type NewUser struct {
	Username  string `form:"username" validate:"required,max=150"`
	Password  string `form:"password" validate:"required"`
	Email     string `form:"email" validate:"required,email,max=254"`
	FirstName string `form:"first_name" validate:"required,max=150"`
	LastName  string `form:"last_name" validate:"required,max=150"`
}

func (nu *NewUser) Clean() {
	nu.Username = core.CleanString(nu.Username)
	nu.Email = core.CleanString(nu.Email, true /* lower */)
	nu.FirstName = core.CleanString(nu.FirstName)
	nu.LastName = core.CleanString(nu.LastName)
}

// PasswordChange is validated against the password policy, using the user attrs for similarity checks.
type PasswordChange struct {
	Password  string `form:"password" validate:"required"`
	Username  string `form:"-"`
	Email     string `form:"-"`
	FirstName string `form:"-"`
	LastName  string `form:"-"`
}

func newPasswordChange(usr User, pwd string) PasswordChange {
	return PasswordChange{
		Password:  pwd,
		Username:  usr.Username,
		Email:     usr.Email,
		FirstName: usr.FirstName,
		LastName:  usr.LastName,
	}
}

type GetFilter struct {
	ID              int
	Username        string
	UsernameOrEmail string
}

type StudentFilter struct {
	ID        string
	UserID    int
	ResetCode string
}
