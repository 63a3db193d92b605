package sqlxrepos

import (
	"context"

	"github.com/pkg/errors"

	"github.com/trezcool/icba/core"
	"github.com/trezcool/icba/core/survey"
)

const (
	surveyColumns   = "id, admin_id, class_id"
	questionColumns = "id, survey_id, type, prompt, ordinal"
	instanceColumns = "id, survey_id, student_id, generated_on, created_at"
)

type surveyRepository struct {
	repository
}

var _ survey.Repository = (*surveyRepository)(nil) // interface compliance check

func NewSurveyRepository(db core.DBExecutor) *surveyRepository {
	return &surveyRepository{repository{db: db}}
}

func (repo surveyRepository) CreateSurvey(ctx context.Context, srv survey.Survey, exec ...core.DBExecutor) (survey.Survey, error) {
	q := "INSERT INTO surveys (admin_id, class_id) VALUES (?, ?) RETURNING id"
	if err := repo.get(ctx, repo.getExec(exec), &srv.ID, q, srv.AdminID, srv.ClassID); err != nil {
		return survey.Survey{}, trapUniqueErr(err, survey.ErrSurveyExists, "inserting survey")
	}
	return srv, nil
}

func (repo surveyRepository) GetSurvey(ctx context.Context, id int, exec ...core.DBExecutor) (survey.Survey, error) {
	var srv survey.Survey
	if err := repo.get(ctx, repo.getExec(exec), &srv, "SELECT "+surveyColumns+" FROM surveys WHERE id = ?", id); err != nil {
		return survey.Survey{}, trapNoRowsErr(err, survey.ErrNotFound, "finding survey")
	}
	return srv, nil
}

func (repo surveyRepository) GetSurveyByClass(ctx context.Context, classID int, exec ...core.DBExecutor) (survey.Survey, error) {
	var srv survey.Survey
	q := "SELECT " + surveyColumns + " FROM surveys WHERE class_id = ? ORDER BY id LIMIT 1"
	if err := repo.get(ctx, repo.getExec(exec), &srv, q, classID); err != nil {
		return survey.Survey{}, trapNoRowsErr(err, survey.ErrNoSurvey, "finding class survey")
	}
	return srv, nil
}

func (repo surveyRepository) CreateQuestion(ctx context.Context, qst survey.Question, exec ...core.DBExecutor) (survey.Question, error) {
	exe := repo.getExec(exec)
	if err := repo.get(ctx, exe, &qst.Ordinal, "SELECT COALESCE(MAX(ordinal), 0) + 1 FROM survey_questions WHERE survey_id = ?", qst.SurveyID); err != nil {
		return survey.Question{}, errors.Wrap(err, "computing question ordinal")
	}
	q := "INSERT INTO survey_questions (survey_id, type, prompt, ordinal) VALUES (?, ?, ?, ?) RETURNING id"
	if err := repo.get(ctx, exe, &qst.ID, q, qst.SurveyID, qst.Type, qst.Prompt, qst.Ordinal); err != nil {
		return survey.Question{}, errors.Wrap(err, "inserting question")
	}
	return qst, nil
}

func (repo surveyRepository) ListQuestions(ctx context.Context, surveyID int, exec ...core.DBExecutor) ([]survey.Question, error) {
	questions := make([]survey.Question, 0)
	q := "SELECT " + questionColumns + " FROM survey_questions WHERE survey_id = ? ORDER BY ordinal, id"
	if err := repo.selekt(ctx, repo.getExec(exec), &questions, q, surveyID); err != nil {
		return nil, errors.Wrap(err, "listing questions")
	}
	return questions, nil
}

func (repo surveyRepository) CreateInstance(ctx context.Context, inst survey.Instance, exec ...core.DBExecutor) (survey.Instance, error) {
	q := "INSERT INTO survey_instances (survey_id, student_id, generated_on, created_at) VALUES (?, ?, ?, ?) RETURNING id"
	err := repo.get(ctx, repo.getExec(exec), &inst.ID, q,
		inst.SurveyID, inst.StudentID, inst.GeneratedOn.Format("2006-01-02"), inst.CreatedAt.UTC())
	if err != nil {
		return survey.Instance{}, trapUniqueErr(err, survey.ErrAlreadyGenerated, "inserting survey instance")
	}
	return inst, nil
}

func (repo surveyRepository) createEntry(ctx context.Context, exe core.DBExecutor, instanceID int, kind string) (int, error) {
	var id int
	q := "INSERT INTO survey_entries (instance_id, kind) VALUES (?, ?) RETURNING id"
	if err := repo.get(ctx, exe, &id, q, instanceID, kind); err != nil {
		return 0, errors.Wrap(err, "inserting survey entry")
	}
	return id, nil
}

func (repo surveyRepository) CreateQuestionEntry(ctx context.Context, instanceID, questionID int, exec ...core.DBExecutor) (int, error) {
	exe := repo.getExec(exec)
	id, err := repo.createEntry(ctx, exe, instanceID, survey.EntryQuestion)
	if err != nil {
		return 0, err
	}
	if _, err = repo.exec(ctx, exe, "INSERT INTO survey_question_entries (entry_id, question_id) VALUES (?, ?)", id, questionID); err != nil {
		return 0, errors.Wrap(err, "inserting question entry")
	}
	return id, nil
}

func (repo surveyRepository) CreatePositionEntry(ctx context.Context, instanceID int, positionID string, exec ...core.DBExecutor) (int, error) {
	exe := repo.getExec(exec)
	id, err := repo.createEntry(ctx, exe, instanceID, survey.EntryPosition)
	if err != nil {
		return 0, err
	}
	if _, err = repo.exec(ctx, exe, "INSERT INTO survey_position_entries (entry_id, position_id) VALUES (?, ?)", id, positionID); err != nil {
		return 0, errors.Wrap(err, "inserting position entry")
	}
	return id, nil
}

func (repo surveyRepository) GetInstance(ctx context.Context, id int, exec ...core.DBExecutor) (survey.Instance, error) {
	var inst survey.Instance
	if err := repo.get(ctx, repo.getExec(exec), &inst, "SELECT "+instanceColumns+" FROM survey_instances WHERE id = ?", id); err != nil {
		return survey.Instance{}, trapNoRowsErr(err, survey.ErrInstanceNotFound, "finding survey instance")
	}
	return inst, nil
}

func (repo surveyRepository) ListOpenInstances(ctx context.Context, studentID, since string, exec ...core.DBExecutor) ([]survey.Instance, error) {
	q := `SELECT ` + instanceColumns + ` FROM survey_instances i
		WHERE i.student_id = ? AND i.generated_on >= ?
		AND EXISTS (
			SELECT 1 FROM survey_entries e
			LEFT JOIN survey_responses r ON r.entry_id = e.id
			WHERE e.instance_id = i.id AND r.entry_id IS NULL
		)
		ORDER BY i.generated_on, i.id`
	insts := make([]survey.Instance, 0)
	if err := repo.selekt(ctx, repo.getExec(exec), &insts, q, studentID, since); err != nil {
		return nil, errors.Wrap(err, "listing open survey instances")
	}
	return insts, nil
}

func (repo surveyRepository) ListQuestionEntries(ctx context.Context, instanceID int, exec ...core.DBExecutor) ([]survey.QuestionEntry, error) {
	q := `SELECT e.id AS entry_id, q.id AS question_id, q.type, q.prompt, r.text AS response
		FROM survey_entries e
		JOIN survey_question_entries qe ON qe.entry_id = e.id
		JOIN survey_questions q ON q.id = qe.question_id
		LEFT JOIN survey_responses r ON r.entry_id = e.id
		WHERE e.instance_id = ?
		ORDER BY q.ordinal, e.id`
	entries := make([]survey.QuestionEntry, 0)
	if err := repo.selekt(ctx, repo.getExec(exec), &entries, q, instanceID); err != nil {
		return nil, errors.Wrap(err, "listing question entries")
	}
	return entries, nil
}

func (repo surveyRepository) ListPositionEntries(ctx context.Context, instanceID int, exec ...core.DBExecutor) ([]survey.PositionEntry, error) {
	q := `SELECT e.id AS entry_id, p.id AS position_id, p.x, p.y, p.timestamp, r.text AS response
		FROM survey_entries e
		JOIN survey_position_entries pe ON pe.entry_id = e.id
		JOIN positions p ON p.id = pe.position_id
		LEFT JOIN survey_responses r ON r.entry_id = e.id
		WHERE e.instance_id = ?
		ORDER BY p.timestamp, e.id`
	entries := make([]survey.PositionEntry, 0)
	if err := repo.selekt(ctx, repo.getExec(exec), &entries, q, instanceID); err != nil {
		return nil, errors.Wrap(err, "listing position entries")
	}
	return entries, nil
}

func (repo surveyRepository) ListEntryIDs(ctx context.Context, instanceID int, exec ...core.DBExecutor) ([]int, error) {
	ids := make([]int, 0)
	if err := repo.selekt(ctx, repo.getExec(exec), &ids, "SELECT id FROM survey_entries WHERE instance_id = ? ORDER BY id", instanceID); err != nil {
		return nil, errors.Wrap(err, "listing survey entries")
	}
	return ids, nil
}

func (repo surveyRepository) UpsertResponse(ctx context.Context, entryID int, text string, exec ...core.DBExecutor) (bool, error) {
	exe := repo.getExec(exec)
	now := core.Now()

	q := `INSERT INTO survey_responses (entry_id, text, created_at, updated_at) VALUES (?, ?, ?, ?)
		ON CONFLICT (entry_id) DO NOTHING`
	n, err := repo.exec(ctx, exe, q, entryID, text, now, now)
	if err != nil {
		return false, errors.Wrap(err, "inserting survey response")
	}
	if n == 1 {
		return true, nil
	}

	if _, err = repo.exec(ctx, exe, "UPDATE survey_responses SET text = ?, updated_at = ? WHERE entry_id = ?", text, now, entryID); err != nil {
		return false, errors.Wrap(err, "updating survey response")
	}
	return false, nil
}
