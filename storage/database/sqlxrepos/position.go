package sqlxrepos

import (
	"context"

	"github.com/pkg/errors"

	"github.com/trezcool/icba/core"
	"github.com/trezcool/icba/core/position"
)

const positionColumns = `id, student_id, "timestamp", x, y`

type positionRepository struct {
	repository
}

var _ position.Repository = (*positionRepository)(nil) // interface compliance check

func NewPositionRepository(db core.DBExecutor) *positionRepository {
	return &positionRepository{repository{db: db}}
}

func (repo positionRepository) CreatePosition(ctx context.Context, pos position.Position, exec ...core.DBExecutor) (position.Position, error) {
	pos.Timestamp = pos.Timestamp.UTC()
	q := "INSERT INTO positions (" + positionColumns + ") VALUES (?, ?, ?, ?, ?)"
	if _, err := repo.exec(ctx, repo.getExec(exec), q, pos.ID, pos.StudentID, pos.Timestamp, pos.X, pos.Y); err != nil {
		return position.Position{}, errors.Wrap(err, "inserting position")
	}
	return pos, nil
}

func (repo positionRepository) GetPosition(ctx context.Context, id string, exec ...core.DBExecutor) (position.Position, error) {
	var pos position.Position
	if err := repo.get(ctx, repo.getExec(exec), &pos, "SELECT "+positionColumns+" FROM positions WHERE id = ?", id); err != nil {
		return position.Position{}, trapNoRowsErr(err, position.ErrNotFound, "finding position")
	}
	return pos, nil
}

func (repo positionRepository) ListPositions(ctx context.Context, studentID string, rng *position.Range, exec ...core.DBExecutor) ([]position.Position, error) {
	q := "SELECT " + positionColumns + " FROM positions WHERE student_id = ?"
	args := []interface{}{studentID}
	if rng != nil {
		if rng.Inclusive {
			q += ` AND "timestamp" >= ? AND "timestamp" <= ?`
		} else {
			q += ` AND "timestamp" > ? AND "timestamp" < ?`
		}
		args = append(args, rng.Start.UTC(), rng.End.UTC())
	}
	q += ` ORDER BY "timestamp", id`

	positions := make([]position.Position, 0)
	if err := repo.selekt(ctx, repo.getExec(exec), &positions, q, args...); err != nil {
		return nil, errors.Wrap(err, "listing positions")
	}
	return positions, nil
}
