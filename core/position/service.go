package position

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/trezcool/icba/core"
)

var (
	// errors
	ErrNotFound       = core.NewAppError(303, core.KindNotFound, "Position does not exist")
	ErrNotOwner       = core.NewAppError(304, core.KindForbidden, "Invalid Student associated with Position")
	ErrInvalidTime    = core.NewAppError(305, core.KindInvalid, "Invalid datetime object")
	ErrInvalidTimeFmt = core.NewAppError(306, core.KindInvalid, "Invalid datetime format")

	// accepted datetime layouts, tried in order; layouts without a zone are read in the configured location
	timeLayouts = []string{
		time.RFC3339Nano,
		"2006-01-02T15:04:05",
		"2006-01-02T15:04",
		"2006-01-02 15:04:05",
		"2006-01-02 15:04",
	}
)

type (
	Repository interface {
		CreatePosition(ctx context.Context, pos Position, exec ...core.DBExecutor) (Position, error)
		GetPosition(ctx context.Context, id string, exec ...core.DBExecutor) (Position, error)
		// ListPositions returns the student's positions ascending by timestamp, optionally limited to rng.
		ListPositions(ctx context.Context, studentID string, rng *Range, exec ...core.DBExecutor) ([]Position, error)
	}

	Service struct {
		repo Repository
		conf *core.Config
	}
)

func NewService(repo Repository, conf *core.Config) *Service {
	return &Service{repo: repo, conf: conf}
}

// Record appends a position for the student, timestamped now.
func (svc *Service) Record(ctx context.Context, studentID string, x, y float64) (Position, error) {
	return svc.repo.CreatePosition(ctx, Position{
		ID:        uuid.NewString(),
		StudentID: studentID,
		Timestamp: core.Now(),
		X:         x,
		Y:         y,
	})
}

// Get returns the position if it belongs to the student.
func (svc *Service) Get(ctx context.Context, studentID, id string) (Position, error) {
	id = core.CleanString(id)
	if _, err := uuid.Parse(id); err != nil {
		return Position{}, ErrNotFound
	}
	pos, err := svc.repo.GetPosition(ctx, id)
	if err != nil {
		return Position{}, err
	}
	if pos.StudentID != studentID {
		return Position{}, ErrNotOwner
	}
	return pos, nil
}

func (svc *Service) ListAll(ctx context.Context, studentID string) ([]Position, error) {
	return svc.repo.ListPositions(ctx, studentID, nil)
}

// InRange returns the student's positions within rng, ascending by timestamp.
func (svc *Service) InRange(ctx context.Context, studentID string, rng Range) ([]Position, error) {
	rng = rng.UTC()
	return svc.repo.ListPositions(ctx, studentID, &rng)
}

// Summary returns the student's positions strictly between the start & end datetimes.
func (svc *Service) Summary(ctx context.Context, studentID, start, end string) ([]Position, error) {
	startTime, err := svc.ParseTime(start)
	if err != nil {
		return nil, err
	}
	endTime, err := svc.ParseTime(end)
	if err != nil {
		return nil, err
	}
	return svc.InRange(ctx, studentID, Range{Start: startTime, End: endTime})
}

// ParseTime parses an ISO 8601 datetime.
func (svc *Service) ParseTime(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, ErrInvalidTimeFmt
	}
	loc := time.UTC
	if svc.conf != nil && svc.conf.Location != nil {
		loc = svc.conf.Location
	}
	for _, layout := range timeLayouts {
		if t, err := time.ParseInLocation(layout, value, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, errors.WithMessage(ErrInvalidTime, value)
}
