package demographic

import (
	"context"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/trezcool/icba/core"
)

var (
	// errors
	ErrExists    = core.NewAppError(204, core.KindConflict, "Demographic object already exists")
	ErrBadLookup = core.NewAppError(205, core.KindInvalid, "Bad lookup value")
	ErrNotFound  = core.NewAppError(206, core.KindNotFound, "Demographic object does not exist")
)

type (
	Repository interface {
		// CreateDemographic returns ErrExists when the student already has one.
		CreateDemographic(ctx context.Context, demo Demographic, exec ...core.DBExecutor) (Demographic, error)
		GetDemographic(ctx context.Context, studentID string, exec ...core.DBExecutor) (Demographic, error)
		UpdateDemographic(ctx context.Context, demo Demographic, exec ...core.DBExecutor) error
		// DeleteDemographic returns ErrNotFound when the student has none.
		DeleteDemographic(ctx context.Context, studentID string, exec ...core.DBExecutor) error
		ListLookups(ctx context.Context, kind string, exec ...core.DBExecutor) ([]Lookup, error)
		LookupExists(ctx context.Context, kind string, id int, exec ...core.DBExecutor) (bool, error)
	}

	Service struct {
		repo     Repository
		validate *validator.Validate
	}
)

func NewService(repo Repository, validate *validator.Validate) *Service {
	return &Service{repo: repo, validate: validate}
}

func (svc *Service) checkLookups(ctx context.Context, demo Demographic) error {
	for _, kind := range LookupKinds {
		ok, err := svc.repo.LookupExists(ctx, kind, demo.lookups()[kind])
		if err != nil {
			return err
		}
		if !ok {
			return ErrBadLookup
		}
	}
	return nil
}

func (svc *Service) Create(ctx context.Context, studentID string, nd NewDemographic) (Demographic, error) {
	nd.Major = core.CleanString(nd.Major)
	if err := svc.validate.Struct(nd); err != nil {
		return Demographic{}, core.NewValidationError(nil, core.FieldErrors(err, nil)...)
	}
	if _, err := svc.repo.GetDemographic(ctx, studentID); err == nil {
		return Demographic{}, ErrExists
	} else if errors.Cause(err) != ErrNotFound {
		return Demographic{}, err
	}

	demo := Demographic{
		StudentID:   studentID,
		Age:         nd.Age,
		Major:       nd.Major,
		GenderID:    nd.Gender,
		GradeYearID: nd.GradeYear,
		EthnicityID: nd.Ethnicity,
		RaceID:      nd.Race,
	}
	if err := svc.checkLookups(ctx, demo); err != nil {
		return Demographic{}, err
	}
	return svc.repo.CreateDemographic(ctx, demo)
}

func (svc *Service) Update(ctx context.Context, studentID string, ud UpdateDemographic) (Demographic, error) {
	if ud.Major != nil {
		major := core.CleanString(*ud.Major)
		ud.Major = &major
	}
	if err := svc.validate.Struct(ud); err != nil {
		return Demographic{}, core.NewValidationError(nil, core.FieldErrors(err, nil)...)
	}
	demo, err := svc.repo.GetDemographic(ctx, studentID)
	if err != nil {
		return Demographic{}, err
	}
	ud.apply(&demo)
	if err = svc.checkLookups(ctx, demo); err != nil {
		return Demographic{}, err
	}
	if err = svc.repo.UpdateDemographic(ctx, demo); err != nil {
		return Demographic{}, err
	}
	return demo, nil
}

func (svc *Service) Delete(ctx context.Context, studentID string) error {
	return svc.repo.DeleteDemographic(ctx, studentID)
}

func (svc *Service) Get(ctx context.Context, studentID string) (Demographic, error) {
	return svc.repo.GetDemographic(ctx, studentID)
}

// Form returns the choices of every lookup field.
func (svc *Service) Form(ctx context.Context) (Form, error) {
	var (
		form Form
		err  error
	)
	dests := map[string]*[]Lookup{
		LookupGender:    &form.Genders,
		LookupGradeYear: &form.GradeYears,
		LookupEthnicity: &form.Ethnicities,
		LookupRace:      &form.Races,
	}
	for _, kind := range LookupKinds {
		if *dests[kind], err = svc.repo.ListLookups(ctx, kind); err != nil {
			return Form{}, err
		}
	}
	return form, nil
}
