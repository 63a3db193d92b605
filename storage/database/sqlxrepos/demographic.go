package sqlxrepos

import (
	"context"

	"github.com/pkg/errors"

	"github.com/trezcool/icba/core"
	"github.com/trezcool/icba/core/demographic"
)

const demographicColumns = "student_id, age, major, gender_id, grade_year_id, ethnicity_id, race_id"

var lookupTables = map[string]string{
	demographic.LookupGender:    "gender_lookups",
	demographic.LookupGradeYear: "grade_year_lookups",
	demographic.LookupEthnicity: "ethnicity_lookups",
	demographic.LookupRace:      "race_lookups",
}

type demographicRepository struct {
	repository
}

var _ demographic.Repository = (*demographicRepository)(nil) // interface compliance check

func NewDemographicRepository(db core.DBExecutor) *demographicRepository {
	return &demographicRepository{repository{db: db}}
}

func (repo demographicRepository) lookupTable(kind string) (string, error) {
	table, ok := lookupTables[kind]
	if !ok {
		return "", errors.Errorf("unknown lookup %q", kind)
	}
	return table, nil
}

func (repo demographicRepository) CreateDemographic(ctx context.Context, demo demographic.Demographic, exec ...core.DBExecutor) (demographic.Demographic, error) {
	q := "INSERT INTO demographics (" + demographicColumns + ") VALUES (?, ?, ?, ?, ?, ?, ?)"
	_, err := repo.exec(ctx, repo.getExec(exec), q,
		demo.StudentID, demo.Age, demo.Major, demo.GenderID, demo.GradeYearID, demo.EthnicityID, demo.RaceID)
	if err != nil {
		return demographic.Demographic{}, trapUniqueErr(err, demographic.ErrExists, "inserting demographic")
	}
	return demo, nil
}

func (repo demographicRepository) GetDemographic(ctx context.Context, studentID string, exec ...core.DBExecutor) (demographic.Demographic, error) {
	var demo demographic.Demographic
	q := "SELECT " + demographicColumns + " FROM demographics WHERE student_id = ?"
	if err := repo.get(ctx, repo.getExec(exec), &demo, q, studentID); err != nil {
		return demographic.Demographic{}, trapNoRowsErr(err, demographic.ErrNotFound, "finding demographic")
	}
	return demo, nil
}

func (repo demographicRepository) UpdateDemographic(ctx context.Context, demo demographic.Demographic, exec ...core.DBExecutor) error {
	q := `UPDATE demographics
		SET age = ?, major = ?, gender_id = ?, grade_year_id = ?, ethnicity_id = ?, race_id = ?
		WHERE student_id = ?`
	n, err := repo.exec(ctx, repo.getExec(exec), q,
		demo.Age, demo.Major, demo.GenderID, demo.GradeYearID, demo.EthnicityID, demo.RaceID, demo.StudentID)
	if err != nil {
		return errors.Wrap(err, "updating demographic")
	}
	if n == 0 {
		return demographic.ErrNotFound
	}
	return nil
}

func (repo demographicRepository) DeleteDemographic(ctx context.Context, studentID string, exec ...core.DBExecutor) error {
	n, err := repo.exec(ctx, repo.getExec(exec), "DELETE FROM demographics WHERE student_id = ?", studentID)
	if err != nil {
		return errors.Wrap(err, "deleting demographic")
	}
	if n == 0 {
		return demographic.ErrNotFound
	}
	return nil
}

func (repo demographicRepository) ListLookups(ctx context.Context, kind string, exec ...core.DBExecutor) ([]demographic.Lookup, error) {
	table, err := repo.lookupTable(kind)
	if err != nil {
		return nil, err
	}
	lookups := make([]demographic.Lookup, 0)
	if err = repo.selekt(ctx, repo.getExec(exec), &lookups, "SELECT id, name FROM "+table+" ORDER BY id"); err != nil {
		return nil, errors.Wrapf(err, "listing %s", table)
	}
	return lookups, nil
}

func (repo demographicRepository) LookupExists(ctx context.Context, kind string, id int, exec ...core.DBExecutor) (bool, error) {
	table, err := repo.lookupTable(kind)
	if err != nil {
		return false, err
	}
	var cnt int
	if err = repo.get(ctx, repo.getExec(exec), &cnt, "SELECT COUNT(*) FROM "+table+" WHERE id = ?", id); err != nil {
		return false, errors.Wrapf(err, "checking %s", table)
	}
	return cnt > 0, nil
}
