package class

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/trezcool/icba/core"
	"github.com/trezcool/icba/core/position"
	"github.com/trezcool/icba/core/user"
)

var (
	// errors
	ErrNoPermission     = core.NewAppError(404, core.KindForbidden, "User does not have permission to this")
	ErrAdminNotFound    = core.NewAppError(405, core.KindNotFound, "No user with that username")
	ErrStudentNotFound  = core.NewAppError(406, core.KindNotFound, "No student with that id")
	ErrNotFound         = core.NewAppError(407, core.KindNotFound, "Class does not exist")
	ErrAlreadyEnrolled  = core.NewAppError(408, core.KindConflict, "Student already enrolled in Class")
	ErrClassExists      = core.NewAppError(409, core.KindConflict, "Class with that title, semester and year already exists")
	ErrInvalidSchedule  = core.NewAppError(410, core.KindInvalid, "Invalid class schedule")
	ErrInvalidDateRange = core.NewAppError(411, core.KindInvalid, "Invalid date format")
)

const (
	dateLayout = "01/02/2006"
	// maxSummaryDays bounds the date span of a movement summary
	maxSummaryDays = 366
)

type (
	Repository interface {
		// CreateClass returns ErrClassExists when (title, semester, year) is taken.
		CreateClass(ctx context.Context, cls Class, exec ...core.DBExecutor) (Class, error)
		GetClass(ctx context.Context, id int, exec ...core.DBExecutor) (Class, error)
		ListClassesByAdmin(ctx context.Context, adminID int, exec ...core.DBExecutor) ([]Class, error)
		// CreateEnrollment returns ErrAlreadyEnrolled when the student is already enrolled in the class.
		CreateEnrollment(ctx context.Context, enr Enrollment, exec ...core.DBExecutor) (Enrollment, error)
		ListEnrolledStudentIDs(ctx context.Context, classID int, exec ...core.DBExecutor) ([]string, error)
	}

	// UserService looks up the users & students classes refer to.
	UserService interface {
		GetByUsername(ctx context.Context, username string) (user.User, error)
		GetStudent(ctx context.Context, id string) (user.Student, user.User, error)
	}

	// PositionService reads the position ledger.
	PositionService interface {
		InRange(ctx context.Context, studentID string, rng position.Range) ([]position.Position, error)
	}

	Service struct {
		db       core.DB
		repo     Repository
		userSvc  UserService
		posSvc   PositionService
		validate *validator.Validate
		conf     *core.Config
	}
)

func NewService(
	db core.DB,
	repo Repository,
	userSvc UserService,
	posSvc PositionService,
	validate *validator.Validate,
	conf *core.Config,
) *Service {
	return &Service{
		db:       db,
		repo:     repo,
		userSvc:  userSvc,
		posSvc:   posSvc,
		validate: validate,
		conf:     conf,
	}
}

// Create creates a class administered by the user named in nc.Admin. Only faculty may create classes.
func (svc *Service) Create(ctx context.Context, caller user.User, nc NewClass) (Class, error) {
	if !caller.IsFaculty() {
		return Class{}, ErrNoPermission
	}
	nc.Title = core.CleanString(nc.Title)
	nc.Semester = core.CleanString(nc.Semester)
	nc.Admin = core.CleanString(nc.Admin)
	if err := svc.validate.Struct(nc); err != nil {
		return Class{}, core.NewValidationError(nil, core.FieldErrors(err, nil)...)
	}

	admin, err := svc.userSvc.GetByUsername(ctx, nc.Admin)
	if err != nil {
		if errors.Cause(err) == user.ErrUserNotFound {
			return Class{}, ErrAdminNotFound
		}
		return Class{}, err
	}
	start, end, days, ok := nc.parseSchedule()
	if !ok {
		return Class{}, ErrInvalidSchedule
	}

	cls := Class{
		Title:     nc.Title,
		AdminID:   admin.ID,
		Semester:  nc.Semester,
		Year:      nc.Year,
		StartTime: start,
		EndTime:   end,
		Days:      days,
	}
	err = core.WithTx(ctx, svc.db, func(tx core.DBExecutor) error {
		var err error
		cls, err = svc.repo.CreateClass(ctx, cls, tx)
		return err
	})
	if err != nil {
		return Class{}, err
	}
	return cls, nil
}

// Get returns the class with the given id, as sent by clients.
func (svc *Service) Get(ctx context.Context, id string) (Class, error) {
	classID, err := strconv.Atoi(strings.TrimSpace(id))
	if err != nil {
		return Class{}, ErrNotFound
	}
	return svc.repo.GetClass(ctx, classID)
}

// ListAdministered returns the classes administered by the user.
func (svc *Service) ListAdministered(ctx context.Context, usr user.User) ([]Class, error) {
	return svc.repo.ListClassesByAdmin(ctx, usr.ID)
}

// Enroll enrolls the student in the class. Only faculty may enroll students.
func (svc *Service) Enroll(ctx context.Context, caller user.User, studentID, classID string) (Enrollment, error) {
	if !caller.IsFaculty() {
		return Enrollment{}, ErrNoPermission
	}
	studentID = core.CleanString(studentID)
	if _, err := uuid.Parse(studentID); err != nil {
		return Enrollment{}, ErrStudentNotFound
	}
	if _, _, err := svc.userSvc.GetStudent(ctx, studentID); err != nil {
		if errors.Cause(err) == user.ErrNoStudent {
			return Enrollment{}, ErrStudentNotFound
		}
		return Enrollment{}, err
	}
	cls, err := svc.Get(ctx, classID)
	if err != nil {
		return Enrollment{}, err
	}
	return svc.repo.CreateEnrollment(ctx, Enrollment{ClassID: cls.ID, StudentID: studentID})
}

// MovementSummary returns, for every date between startDate & endDate (MM/DD/YYYY, both included) on which
// the class meets, the positions each enrolled student recorded during the class's time slot, keyed by
// date then student id. Dates & students without positions are left out.
func (svc *Service) MovementSummary(ctx context.Context, caller user.User, classID, startDate, endDate string) (map[string]map[string][]position.Position, error) {
	if !caller.IsFaculty() {
		return nil, ErrNoPermission
	}
	cls, err := svc.Get(ctx, classID)
	if err != nil {
		return nil, err
	}

	loc := svc.conf.Location
	start, err1 := time.ParseInLocation(dateLayout, strings.TrimSpace(startDate), loc)
	end, err2 := time.ParseInLocation(dateLayout, strings.TrimSpace(endDate), loc)
	if err1 != nil || err2 != nil {
		return nil, ErrInvalidDateRange
	}
	if end.Sub(start) > maxSummaryDays*24*time.Hour {
		return nil, ErrInvalidDateRange
	}

	studentIDs, err := svc.repo.ListEnrolledStudentIDs(ctx, cls.ID)
	if err != nil {
		return nil, err
	}

	summary := make(map[string]map[string][]position.Position)
	for date := start; !date.After(end); date = date.AddDate(0, 0, 1) {
		if !cls.MeetsOn(date.Weekday()) {
			continue
		}
		window := cls.Window(date, loc)
		for _, studentID := range studentIDs {
			positions, err := svc.posSvc.InRange(ctx, studentID, window)
			if err != nil {
				return nil, err
			}
			if len(positions) == 0 {
				continue
			}
			key := date.Format("2006-01-02")
			if summary[key] == nil {
				summary[key] = make(map[string][]position.Position)
			}
			summary[key][studentID] = positions
		}
	}
	return summary, nil
}
