package sqlxrepos

import (
	"context"

	"github.com/pkg/errors"

	"github.com/trezcool/icba/core"
	"github.com/trezcool/icba/core/class"
)

// times are cast so that both drivers scan them as HH:MM:SS strings
const classColumns = "id, title, admin_id, semester, year, " +
	"CAST(start_time AS TEXT) AS start_time, CAST(end_time AS TEXT) AS end_time"

type classRepository struct {
	repository
}

var _ class.Repository = (*classRepository)(nil) // interface compliance check

func NewClassRepository(db core.DBExecutor) *classRepository {
	return &classRepository{repository{db: db}}
}

func (repo classRepository) CreateClass(ctx context.Context, cls class.Class, exec ...core.DBExecutor) (class.Class, error) {
	exe := repo.getExec(exec)
	q := `INSERT INTO classes (title, admin_id, semester, year, start_time, end_time)
		VALUES (?, ?, ?, ?, ?, ?) RETURNING id`
	err := repo.get(ctx, exe, &cls.ID, q, cls.Title, cls.AdminID, cls.Semester, cls.Year, cls.StartTime, cls.EndTime)
	if err != nil {
		return class.Class{}, trapUniqueErr(err, class.ErrClassExists, "inserting class")
	}

	for _, day := range cls.Days {
		dayID, ok := class.WeekdayID(day)
		if !ok {
			return class.Class{}, class.ErrInvalidSchedule
		}
		if _, err = repo.exec(ctx, exe, "INSERT INTO class_days (class_id, weekday_id) VALUES (?, ?)", cls.ID, dayID); err != nil {
			return class.Class{}, errors.Wrap(err, "inserting class day")
		}
	}
	return cls, nil
}

func (repo classRepository) loadDays(ctx context.Context, exe core.DBExecutor, cls *class.Class) error {
	q := `SELECT w.name FROM weekdays w
		JOIN class_days cd ON cd.weekday_id = w.id
		WHERE cd.class_id = ? ORDER BY w.id`
	cls.Days = make([]string, 0)
	if err := repo.selekt(ctx, exe, &cls.Days, q, cls.ID); err != nil {
		return errors.Wrap(err, "listing class days")
	}
	cls.NormalizeTimes()
	return nil
}

func (repo classRepository) GetClass(ctx context.Context, id int, exec ...core.DBExecutor) (class.Class, error) {
	exe := repo.getExec(exec)
	var cls class.Class
	if err := repo.get(ctx, exe, &cls, "SELECT "+classColumns+" FROM classes WHERE id = ?", id); err != nil {
		return class.Class{}, trapNoRowsErr(err, class.ErrNotFound, "finding class")
	}
	if err := repo.loadDays(ctx, exe, &cls); err != nil {
		return class.Class{}, err
	}
	return cls, nil
}

func (repo classRepository) ListClassesByAdmin(ctx context.Context, adminID int, exec ...core.DBExecutor) ([]class.Class, error) {
	exe := repo.getExec(exec)
	classes := make([]class.Class, 0)
	if err := repo.selekt(ctx, exe, &classes, "SELECT "+classColumns+" FROM classes WHERE admin_id = ? ORDER BY id", adminID); err != nil {
		return nil, errors.Wrap(err, "listing classes")
	}
	for i := range classes {
		if err := repo.loadDays(ctx, exe, &classes[i]); err != nil {
			return nil, err
		}
	}
	return classes, nil
}

func (repo classRepository) CreateEnrollment(ctx context.Context, enr class.Enrollment, exec ...core.DBExecutor) (class.Enrollment, error) {
	q := "INSERT INTO class_enrollments (class_id, student_id) VALUES (?, ?) RETURNING id"
	if err := repo.get(ctx, repo.getExec(exec), &enr.ID, q, enr.ClassID, enr.StudentID); err != nil {
		return class.Enrollment{}, trapUniqueErr(err, class.ErrAlreadyEnrolled, "inserting enrollment")
	}
	return enr, nil
}

func (repo classRepository) ListEnrolledStudentIDs(ctx context.Context, classID int, exec ...core.DBExecutor) ([]string, error) {
	ids := make([]string, 0)
	q := "SELECT student_id FROM class_enrollments WHERE class_id = ? ORDER BY id"
	if err := repo.selekt(ctx, repo.getExec(exec), &ids, q, classID); err != nil {
		return nil, errors.Wrap(err, "listing enrolled students")
	}
	return ids, nil
}
