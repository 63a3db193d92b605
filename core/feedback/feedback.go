package feedback

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/icba/core"
)

type (
	Feedback struct {
		ID        int       `json:"id" db:"id"`
		Text      string    `json:"feedback" db:"text"`
		CreatedAt time.Time `json:"created_at" db:"created_at"` // UTC
	}

	NewFeedback struct {
		Text string `form:"feedback" validate:"required"`
	}

	Repository interface {
		CreateFeedback(ctx context.Context, fb Feedback, exec ...core.DBExecutor) (Feedback, error)
	}

	Service struct {
		repo     Repository
		validate *validator.Validate
	}
)

func NewService(repo Repository, validate *validator.Validate) *Service {
	return &Service{repo: repo, validate: validate}
}

func (svc *Service) Submit(ctx context.Context, nf NewFeedback) (Feedback, error) {
	nf.Text = core.CleanString(nf.Text)
	if err := svc.validate.Struct(nf); err != nil {
		return Feedback{}, core.NewValidationError(nil, core.FieldErrors(err, nil)...)
	}
	return svc.repo.CreateFeedback(ctx, Feedback{Text: nf.Text, CreatedAt: core.Now()})
}
