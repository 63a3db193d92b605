package user

import (
	"context"
	"fmt"
	"net/mail"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/trezcool/icba/core"
)

var (
	// errors
	ErrUserNotFound      = core.NewAppError(104, core.KindNotFound, "No user with that username")
	ErrWrongPassword     = core.NewAppError(105, core.KindInvalid, "Wrong password for user")
	ErrUsernameExists    = core.NewAppError(106, core.KindConflict, "Username already exists in database")
	ErrResetCodeExists   = core.NewAppError(107, core.KindConflict, "User already has a reset code")
	ErrBadResetCode      = core.NewAppError(108, core.KindNotFound, "Bad reset code")
	ErrNotLoggedIn       = core.NewAppError(109, core.KindAuthRequired, "No user logged in")
	ErrNoGroup           = core.NewAppError(110, core.KindNotFound, "No group associated with current user")
	ErrWeakPassword      = core.NewAppError(111, core.KindInvalid, "Not strong enough password")
	ErrTooManyResets     = core.NewAppError(112, core.KindTooManyRequests, "Too many password reset requests")
	ErrInvalidEmail      = core.NewAppError(113, core.KindInvalid, "Invalid email address")
	ErrNoStudent         = core.NewAppError(114, core.KindNotFound, "No student associated with current user")
	ErrSessionNotFound   = errors.New("session not found")
	ErrResetCodeConflict = errors.New("reset code already taken")

	errUnknownGroup = errors.New("unknown group")
)

const resetCodeAttempts = 5

type (
	Repository interface {
		// CreateUser returns ErrUsernameExists when the username is taken.
		CreateUser(ctx context.Context, usr User, exec ...core.DBExecutor) (User, error)
		// GetUser returns the first user matching one of the filter fields, with their groups.
		GetUser(ctx context.Context, filter GetFilter, exec ...core.DBExecutor) (User, error)
		UpdateUser(ctx context.Context, usr User, exec ...core.DBExecutor) error
		AddUserToGroup(ctx context.Context, userID int, group string, exec ...core.DBExecutor) error

		CreateStudent(ctx context.Context, st Student, exec ...core.DBExecutor) (Student, error)
		GetStudent(ctx context.Context, filter StudentFilter, exec ...core.DBExecutor) (Student, error)
		// UpdateStudent returns ErrResetCodeConflict when the reset code is held by another student.
		UpdateStudent(ctx context.Context, st Student, exec ...core.DBExecutor) error

		// UpsertSession stores sess unless the user holds a session that is still active at sess.CreatedAt.
		// It returns the user's stored session.
		UpsertSession(ctx context.Context, sess Session, exec ...core.DBExecutor) (Session, error)
		GetSession(ctx context.Context, token string, exec ...core.DBExecutor) (Session, error)
		DeleteSession(ctx context.Context, token string, exec ...core.DBExecutor) error
		DeleteUserSessions(ctx context.Context, userID int, exec ...core.DBExecutor) error
	}

	Service struct {
		db       core.DB
		repo     Repository
		mailSvc  core.EmailService
		limiter  core.Limiter
		validate *validator.Validate
		conf     *core.Config
	}
)

func NewService(
	db core.DB,
	repo Repository,
	mailSvc core.EmailService,
	limiter core.Limiter,
	validate *validator.Validate,
	conf *core.Config,
) *Service {
	return &Service{
		db:       db,
		repo:     repo,
		mailSvc:  mailSvc,
		limiter:  limiter,
		validate: validate,
		conf:     conf,
	}
}

// validationErr translates validator errors into the matching user error.
func (svc *Service) validationErr(err error) error {
	switch {
	case core.HasFailedTag(err, PasswordPolicyTags...):
		return ErrWeakPassword
	case core.HasFailedTag(err, "email"):
		return ErrInvalidEmail
	}
	if flds := core.FieldErrors(err, nil); flds != nil {
		return core.NewValidationError(nil, flds...)
	}
	return err
}

// Register creates a student account: the user, their `student` group membership & their student profile.
func (svc *Service) Register(ctx context.Context, nu NewUser) (User, Student, error) {
	nu.Clean()
	if err := svc.validate.Struct(nu); err != nil {
		return User{}, Student{}, svc.validationErr(err)
	}

	usr := User{
		Username:   nu.Username,
		Email:      nu.Email,
		FirstName:  nu.FirstName,
		LastName:   nu.LastName,
		DateJoined: core.Now(),
	}
	if err := usr.SetPassword(nu.Password); err != nil {
		return User{}, Student{}, errors.Wrap(err, "hashing password")
	}

	var st Student
	err := core.WithTx(ctx, svc.db, func(tx core.DBExecutor) error {
		var err error
		if usr, err = svc.repo.CreateUser(ctx, usr, tx); err != nil {
			return err
		}
		if err = svc.repo.AddUserToGroup(ctx, usr.ID, GroupStudent, tx); err != nil {
			return err
		}
		usr.Groups = []string{GroupStudent}
		st, err = svc.repo.CreateStudent(ctx, Student{ID: uuid.NewString(), UserID: usr.ID}, tx)
		return err
	})
	if err != nil {
		return User{}, Student{}, err
	}

	svc.sendMail(usr, "Welcome to "+svc.conf.AppName, "welcome", map[string]interface{}{
		"FirstName": usr.FirstName,
		"LastName":  usr.LastName,
		"Username":  usr.Username,
	})
	return usr, st, nil
}

// Login returns the user's active session, opening a new one when they have none.
func (svc *Service) Login(ctx context.Context, username, password string) (Session, error) {
	usr, err := svc.repo.GetUser(ctx, GetFilter{Username: core.CleanString(username)})
	if err != nil {
		return Session{}, err
	}
	if err = usr.CheckPassword(password); err != nil {
		return Session{}, ErrWrongPassword
	}

	now := core.Now()
	return svc.repo.UpsertSession(ctx, Session{
		Token:     uuid.NewString(),
		UserID:    usr.ID,
		CreatedAt: now,
		ExpiresAt: now.Add(svc.conf.Session.TTL),
	})
}

// Logout destroys the session. Unknown tokens are not an error.
func (svc *Service) Logout(ctx context.Context, token string) error {
	return svc.repo.DeleteSession(ctx, token)
}

// Resolve returns the user owning the session token. Expired sessions are deleted.
func (svc *Service) Resolve(ctx context.Context, token string) (User, error) {
	if token == "" {
		return User{}, ErrNotLoggedIn
	}
	sess, err := svc.repo.GetSession(ctx, token)
	if err != nil {
		if errors.Cause(err) == ErrSessionNotFound {
			return User{}, ErrNotLoggedIn
		}
		return User{}, err
	}
	if sess.Expired(core.Now()) {
		if err = svc.repo.DeleteSession(ctx, token); err != nil {
			return User{}, err
		}
		return User{}, ErrNotLoggedIn
	}

	usr, err := svc.repo.GetUser(ctx, GetFilter{ID: sess.UserID})
	if err != nil {
		if errors.Cause(err) == ErrUserNotFound {
			return User{}, ErrNotLoggedIn
		}
		return User{}, err
	}
	return usr, nil
}

func (svc *Service) StudentOf(ctx context.Context, usr User) (Student, error) {
	st, err := svc.repo.GetStudent(ctx, StudentFilter{UserID: usr.ID})
	if err != nil {
		if errors.Cause(err) == ErrNoStudent {
			return Student{}, ErrNoStudent
		}
		return Student{}, err
	}
	return st, nil
}

func (svc *Service) RoleOf(usr User) (string, error) {
	return usr.Role()
}

func (svc *Service) GetByUsername(ctx context.Context, username string) (User, error) {
	return svc.repo.GetUser(ctx, GetFilter{Username: core.CleanString(username)})
}

// GetStudent returns the student profile & its user.
func (svc *Service) GetStudent(ctx context.Context, id string) (Student, User, error) {
	st, err := svc.repo.GetStudent(ctx, StudentFilter{ID: core.CleanString(id)})
	if err != nil {
		return Student{}, User{}, err
	}
	usr, err := svc.repo.GetUser(ctx, GetFilter{ID: st.UserID})
	if err != nil {
		return Student{}, User{}, err
	}
	return st, usr, nil
}

// RequestPasswordReset stores a new reset code on the student & emails it to them.
func (svc *Service) RequestPasswordReset(ctx context.Context, username string) error {
	usr, err := svc.GetByUsername(ctx, username)
	if err != nil {
		return err
	}
	st, err := svc.StudentOf(ctx, usr)
	if err != nil {
		return err
	}

	now := core.Now()
	if st.HasActiveResetCode(now) {
		return ErrResetCodeExists
	}
	if svc.limiter != nil {
		ok, err := svc.limiter.Allow(ctx, "pwdreset:"+usr.Username, svc.conf.Reset.Cooldown)
		if err != nil {
			return errors.Wrap(err, "checking reset cooldown")
		}
		if !ok {
			return ErrTooManyResets
		}
	}

	st.ResetCodeExpiresAt.SetValid(now.Add(svc.conf.Reset.CodeTTL))
	for i := 0; ; i++ {
		code, err := newResetCode()
		if err != nil {
			return err
		}
		st.ResetCode.SetValid(code)
		err = svc.repo.UpdateStudent(ctx, st)
		if err == nil {
			break
		}
		if errors.Cause(err) != ErrResetCodeConflict || i == resetCodeAttempts-1 {
			return err
		}
	}

	svc.sendMail(usr, "Password Reset", "reset_code", map[string]interface{}{
		"FirstName": usr.FirstName,
		"LastName":  usr.LastName,
		"Code":      st.ResetCode.String,
		"ExpiresIn": fmt.Sprintf("%d minutes", int(svc.conf.Reset.CodeTTL.Minutes())),
	})
	return nil
}

// ResetPassword consumes the reset code, sets the new password & closes all of the user's sessions.
func (svc *Service) ResetPassword(ctx context.Context, code, newPassword string) error {
	code = strings.ToUpper(core.CleanString(code))
	if !isResetCodeFormat(code) {
		return ErrBadResetCode
	}
	st, err := svc.repo.GetStudent(ctx, StudentFilter{ResetCode: code})
	if err != nil {
		if errors.Cause(err) == ErrNoStudent {
			return ErrBadResetCode
		}
		return err
	}
	if !st.HasActiveResetCode(core.Now()) {
		return ErrBadResetCode
	}

	usr, err := svc.repo.GetUser(ctx, GetFilter{ID: st.UserID})
	if err != nil {
		return err
	}
	if err = svc.validate.Struct(newPasswordChange(usr, newPassword)); err != nil {
		return svc.validationErr(err)
	}
	if err = usr.SetPassword(newPassword); err != nil {
		return errors.Wrap(err, "hashing password")
	}

	err = core.WithTx(ctx, svc.db, func(tx core.DBExecutor) error {
		if err := svc.repo.UpdateUser(ctx, usr, tx); err != nil {
			return err
		}
		st.clearResetCode()
		if err := svc.repo.UpdateStudent(ctx, st, tx); err != nil {
			return err
		}
		return svc.repo.DeleteUserSessions(ctx, usr.ID, tx)
	})
	if err != nil {
		return err
	}

	svc.sendMail(usr, "Password Changed", "password_changed", map[string]interface{}{
		"FirstName": usr.FirstName,
		"LastName":  usr.LastName,
	})
	return nil
}

// AddUser creates the user or, when the username exists, updates their email, names & password.
// Users added to the `student` group get a student profile.
func (svc *Service) AddUser(ctx context.Context, nu NewUser, groups ...string) (User, error) {
	nu.Clean()
	for _, g := range groups {
		if !IsGroup(g) {
			return User{}, core.NewValidationError(errUnknownGroup, core.FieldError{Field: "group", Error: "unknown group: " + g})
		}
	}

	usr, err := svc.repo.GetUser(ctx, GetFilter{Username: nu.Username})
	exists := err == nil
	if err != nil && errors.Cause(err) != ErrUserNotFound {
		return User{}, err
	}
	if !exists {
		usr = User{Username: nu.Username, DateJoined: core.Now()}
	}
	if nu.Email != "" {
		usr.Email = nu.Email
	}
	if nu.FirstName != "" {
		usr.FirstName = nu.FirstName
	}
	if nu.LastName != "" {
		usr.LastName = nu.LastName
	}
	if err = svc.validate.Struct(newPasswordChange(usr, nu.Password)); err != nil {
		return User{}, svc.validationErr(err)
	}
	if err = usr.SetPassword(nu.Password); err != nil {
		return User{}, errors.Wrap(err, "hashing password")
	}

	err = core.WithTx(ctx, svc.db, func(tx core.DBExecutor) error {
		var err error
		if exists {
			err = svc.repo.UpdateUser(ctx, usr, tx)
		} else {
			usr, err = svc.repo.CreateUser(ctx, usr, tx)
		}
		if err != nil {
			return err
		}
		for _, g := range groups {
			if err = svc.addToGroup(ctx, &usr, g, tx); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return User{}, err
	}
	return usr, nil
}

// AddToGroup adds the user to the group, creating their student profile for the `student` group.
func (svc *Service) AddToGroup(ctx context.Context, username, group string) error {
	if !IsGroup(group) {
		return core.NewValidationError(errUnknownGroup, core.FieldError{Field: "group", Error: "unknown group: " + group})
	}
	usr, err := svc.GetByUsername(ctx, username)
	if err != nil {
		return err
	}
	return core.WithTx(ctx, svc.db, func(tx core.DBExecutor) error {
		return svc.addToGroup(ctx, &usr, group, tx)
	})
}

func (svc *Service) addToGroup(ctx context.Context, usr *User, group string, tx core.DBExecutor) error {
	if err := svc.repo.AddUserToGroup(ctx, usr.ID, group, tx); err != nil {
		return err
	}
	if !usr.InGroup(group) {
		usr.Groups = append(usr.Groups, group)
	}
	if group != GroupStudent {
		return nil
	}
	_, err := svc.repo.GetStudent(ctx, StudentFilter{UserID: usr.ID}, tx)
	if errors.Cause(err) == ErrNoStudent {
		_, err = svc.repo.CreateStudent(ctx, Student{ID: uuid.NewString(), UserID: usr.ID}, tx)
	}
	return err
}

// SetPassword sets the user's password & closes all of their sessions.
func (svc *Service) SetPassword(ctx context.Context, username, password string) error {
	usr, err := svc.GetByUsername(ctx, username)
	if err != nil {
		return err
	}
	if err = svc.validate.Struct(newPasswordChange(usr, password)); err != nil {
		return svc.validationErr(err)
	}
	if err = usr.SetPassword(password); err != nil {
		return errors.Wrap(err, "hashing password")
	}
	return core.WithTx(ctx, svc.db, func(tx core.DBExecutor) error {
		if err := svc.repo.UpdateUser(ctx, usr, tx); err != nil {
			return err
		}
		return svc.repo.DeleteUserSessions(ctx, usr.ID, tx)
	})
}

func (svc *Service) sendMail(usr User, subject, tmpl string, data map[string]interface{}) {
	if svc.mailSvc == nil || usr.Email == "" {
		return
	}
	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:           []mail.Address{{Name: usr.FullName(), Address: usr.Email}},
		Subject:      subject,
		TemplateName: tmpl,
		TemplateData: data,
	})
}
