package survey

import (
	"context"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/trezcool/icba/core"
	"github.com/trezcool/icba/core/class"
	"github.com/trezcool/icba/core/position"
	"github.com/trezcool/icba/core/user"
)

var (
	// errors
	ErrNotFound            = core.NewAppError(504, core.KindNotFound, "Survey does not exist")
	ErrNoSurvey            = core.NewAppError(505, core.KindNotFound, "Class has no Survey created")
	ErrClassNotFound       = core.NewAppError(506, core.KindNotFound, "Class does not exist")
	ErrSurveyExists        = core.NewAppError(507, core.KindConflict, "Survey already exists for Class")
	ErrInvalidQuestionType = core.NewAppError(508, core.KindInvalid, "Invalid question type")
	ErrAlreadyGenerated    = core.NewAppError(509, core.KindConflict, "Survey instance already generated today")
	ErrInstanceNotFound    = core.NewAppError(510, core.KindNotFound, "Survey instance does not exist")
	ErrNotOwner            = core.NewAppError(511, core.KindForbidden, "Survey instance does not belong to current student")
	ErrNoPermission        = core.NewAppError(512, core.KindForbidden, "User does not have permission to this")
)

type (
	Repository interface {
		// CreateSurvey returns ErrSurveyExists when the admin already has a survey on the class.
		CreateSurvey(ctx context.Context, srv Survey, exec ...core.DBExecutor) (Survey, error)
		GetSurvey(ctx context.Context, id int, exec ...core.DBExecutor) (Survey, error)
		// GetSurveyByClass returns the class's first survey; ErrNoSurvey when it has none.
		GetSurveyByClass(ctx context.Context, classID int, exec ...core.DBExecutor) (Survey, error)
		// CreateQuestion appends the question to its survey, setting its ordinal.
		CreateQuestion(ctx context.Context, q Question, exec ...core.DBExecutor) (Question, error)
		ListQuestions(ctx context.Context, surveyID int, exec ...core.DBExecutor) ([]Question, error)

		// CreateInstance returns ErrAlreadyGenerated when the student has an instance of the survey for that date.
		CreateInstance(ctx context.Context, inst Instance, exec ...core.DBExecutor) (Instance, error)
		CreateQuestionEntry(ctx context.Context, instanceID, questionID int, exec ...core.DBExecutor) (int, error)
		CreatePositionEntry(ctx context.Context, instanceID int, positionID string, exec ...core.DBExecutor) (int, error)
		GetInstance(ctx context.Context, id int, exec ...core.DBExecutor) (Instance, error)
		// ListOpenInstances returns the student's instances generated on or after `since` (YYYY-MM-DD)
		// with at least one unanswered entry.
		ListOpenInstances(ctx context.Context, studentID, since string, exec ...core.DBExecutor) ([]Instance, error)
		ListQuestionEntries(ctx context.Context, instanceID int, exec ...core.DBExecutor) ([]QuestionEntry, error)
		ListPositionEntries(ctx context.Context, instanceID int, exec ...core.DBExecutor) ([]PositionEntry, error)
		ListEntryIDs(ctx context.Context, instanceID int, exec ...core.DBExecutor) ([]int, error)
		// UpsertResponse stores the response text of the entry, reporting whether it was created.
		UpsertResponse(ctx context.Context, entryID int, text string, exec ...core.DBExecutor) (created bool, err error)
	}

	ClassService interface {
		Get(ctx context.Context, id string) (class.Class, error)
	}

	PositionService interface {
		InRange(ctx context.Context, studentID string, rng position.Range) ([]position.Position, error)
	}

	Service struct {
		db       core.DB
		repo     Repository
		classSvc ClassService
		posSvc   PositionService
		validate *validator.Validate
		conf     *core.Config
	}
)

func NewService(
	db core.DB,
	repo Repository,
	classSvc ClassService,
	posSvc PositionService,
	validate *validator.Validate,
	conf *core.Config,
) *Service {
	return &Service{
		db:       db,
		repo:     repo,
		classSvc: classSvc,
		posSvc:   posSvc,
		validate: validate,
		conf:     conf,
	}
}

func (svc *Service) getClass(ctx context.Context, classID string) (class.Class, error) {
	cls, err := svc.classSvc.Get(ctx, classID)
	if err != nil {
		if errors.Cause(err) == class.ErrNotFound {
			return class.Class{}, ErrClassNotFound
		}
		return class.Class{}, err
	}
	return cls, nil
}

// Create creates a survey on the class, administered by the caller. Only faculty may create surveys.
func (svc *Service) Create(ctx context.Context, caller user.User, classID string) (Survey, error) {
	if !caller.IsFaculty() {
		return Survey{}, ErrNoPermission
	}
	cls, err := svc.getClass(ctx, classID)
	if err != nil {
		return Survey{}, err
	}
	return svc.repo.CreateSurvey(ctx, Survey{AdminID: caller.ID, ClassID: cls.ID})
}

func (svc *Service) get(ctx context.Context, surveyID string) (Survey, error) {
	id, err := strconv.Atoi(strings.TrimSpace(surveyID))
	if err != nil {
		return Survey{}, ErrNotFound
	}
	return svc.repo.GetSurvey(ctx, id)
}

// AddQuestion appends a question to the survey. Only the survey's admin may add questions.
func (svc *Service) AddQuestion(ctx context.Context, caller user.User, surveyID string, nq NewQuestion) (Question, error) {
	if !caller.IsFaculty() {
		return Question{}, ErrNoPermission
	}
	nq.Type = core.CleanString(nq.Type, true /* lower */)
	nq.Prompt = core.CleanString(nq.Prompt)
	if err := svc.validate.Struct(nq); err != nil {
		return Question{}, core.NewValidationError(nil, core.FieldErrors(err, nil)...)
	}
	if !IsQuestionType(nq.Type) {
		return Question{}, ErrInvalidQuestionType
	}

	srv, err := svc.get(ctx, surveyID)
	if err != nil {
		return Question{}, err
	}
	if srv.AdminID != caller.ID {
		return Question{}, ErrNoPermission
	}
	return svc.repo.CreateQuestion(ctx, Question{SurveyID: srv.ID, Type: nq.Type, Prompt: nq.Prompt})
}

// GetByClass returns the class's survey with its questions in order.
func (svc *Service) GetByClass(ctx context.Context, classID string) (Survey, error) {
	cls, err := svc.getClass(ctx, classID)
	if err != nil {
		return Survey{}, err
	}
	srv, err := svc.repo.GetSurveyByClass(ctx, cls.ID)
	if err != nil {
		return Survey{}, err
	}
	if srv.Questions, err = svc.repo.ListQuestions(ctx, srv.ID); err != nil {
		return Survey{}, err
	}
	return srv, nil
}

// Generate snapshots today's instance of the class's survey for the student: one entry per survey question
// and one per position the student recorded during today's occurrence of the class slot.
func (svc *Service) Generate(ctx context.Context, st user.Student, classID string) (InstanceSummary, error) {
	cls, err := svc.getClass(ctx, classID)
	if err != nil {
		return InstanceSummary{}, err
	}
	srv, err := svc.repo.GetSurveyByClass(ctx, cls.ID)
	if err != nil {
		return InstanceSummary{}, err
	}
	questions, err := svc.repo.ListQuestions(ctx, srv.ID)
	if err != nil {
		return InstanceSummary{}, err
	}

	now := core.Now()
	positions, err := svc.posSvc.InRange(ctx, st.ID, cls.Window(now, svc.conf.Location))
	if err != nil {
		return InstanceSummary{}, err
	}

	today := core.DateString(now, svc.conf.Location)
	genDate, err := parseDate(today)
	if err != nil {
		return InstanceSummary{}, err
	}
	inst := Instance{SurveyID: srv.ID, StudentID: st.ID, GeneratedOn: genDate, CreatedAt: now}

	err = core.WithTx(ctx, svc.db, func(tx core.DBExecutor) error {
		var err error
		if inst, err = svc.repo.CreateInstance(ctx, inst, tx); err != nil {
			return err
		}
		for _, q := range questions {
			if _, err = svc.repo.CreateQuestionEntry(ctx, inst.ID, q.ID, tx); err != nil {
				return err
			}
		}
		for _, p := range positions {
			if _, err = svc.repo.CreatePositionEntry(ctx, inst.ID, p.ID, tx); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return InstanceSummary{}, err
	}
	return inst.Summary(), nil
}

// ListOpen returns the student's recent instances that still have unanswered entries.
func (svc *Service) ListOpen(ctx context.Context, st user.Student) ([]InstanceSummary, error) {
	since := core.DateString(core.Now().Add(-svc.conf.Survey.OpenWindow), svc.conf.Location)
	insts, err := svc.repo.ListOpenInstances(ctx, st.ID, since)
	if err != nil {
		return nil, err
	}
	summaries := make([]InstanceSummary, 0, len(insts))
	for _, inst := range insts {
		summaries = append(summaries, inst.Summary())
	}
	return summaries, nil
}

// getOwned returns the instance, making sure it belongs to the student.
func (svc *Service) getOwned(ctx context.Context, st user.Student, instanceID string, exec ...core.DBExecutor) (Instance, error) {
	id, err := strconv.Atoi(strings.TrimSpace(instanceID))
	if err != nil {
		return Instance{}, ErrInstanceNotFound
	}
	inst, err := svc.repo.GetInstance(ctx, id, exec...)
	if err != nil {
		return Instance{}, err
	}
	if inst.StudentID != st.ID {
		return Instance{}, ErrNotOwner
	}
	return inst, nil
}

// Get returns the instance with its question & position entries.
func (svc *Service) Get(ctx context.Context, st user.Student, instanceID string) (InstanceDetail, error) {
	inst, err := svc.getOwned(ctx, st, instanceID)
	if err != nil {
		return InstanceDetail{}, err
	}
	questions, err := svc.repo.ListQuestionEntries(ctx, inst.ID)
	if err != nil {
		return InstanceDetail{}, err
	}
	positions, err := svc.repo.ListPositionEntries(ctx, inst.ID)
	if err != nil {
		return InstanceDetail{}, err
	}
	return InstanceDetail{Instance: inst.Summary(), Questions: questions, Positions: positions}, nil
}

// Respond stores the responses, keyed by entry id, of the student's instance.
// It returns the result of each entry: created, updated or bad id.
func (svc *Service) Respond(ctx context.Context, st user.Student, instanceID string, responses map[string]string) (map[string]string, error) {
	results := make(map[string]string, len(responses))
	err := core.WithTx(ctx, svc.db, func(tx core.DBExecutor) error {
		inst, err := svc.getOwned(ctx, st, instanceID, tx)
		if err != nil {
			return err
		}
		ids, err := svc.repo.ListEntryIDs(ctx, inst.ID, tx)
		if err != nil {
			return err
		}
		entryIDs := make(map[int]bool, len(ids))
		for _, id := range ids {
			entryIDs[id] = true
		}

		for key, text := range responses {
			entryID, err := strconv.Atoi(strings.TrimSpace(key))
			if err != nil || !entryIDs[entryID] {
				results[key] = ResultBadID
				continue
			}
			created, err := svc.repo.UpsertResponse(ctx, entryID, text, tx)
			if err != nil {
				return err
			}
			if created {
				results[key] = ResultCreated
			} else {
				results[key] = ResultUpdated
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return results, nil
}
