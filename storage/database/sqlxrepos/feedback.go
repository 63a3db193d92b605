package sqlxrepos

import (
	"context"

	"github.com/pkg/errors"

	"github.com/trezcool/icba/core"
	"github.com/trezcool/icba/core/feedback"
)

type feedbackRepository struct {
	repository
}

var _ feedback.Repository = (*feedbackRepository)(nil) // interface compliance check

func NewFeedbackRepository(db core.DBExecutor) *feedbackRepository {
	return &feedbackRepository{repository{db: db}}
}

func (repo feedbackRepository) CreateFeedback(ctx context.Context, fb feedback.Feedback, exec ...core.DBExecutor) (feedback.Feedback, error) {
	fb.CreatedAt = fb.CreatedAt.UTC()
	q := "INSERT INTO feedback (text, created_at) VALUES (?, ?) RETURNING id"
	if err := repo.get(ctx, repo.getExec(exec), &fb.ID, q, fb.Text, fb.CreatedAt); err != nil {
		return feedback.Feedback{}, errors.Wrap(err, "inserting feedback")
	}
	return fb, nil
}
