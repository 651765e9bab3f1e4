package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"devrush/internal/model"
)

// SubmissionRepository defines submission persistence operations.
type SubmissionRepository interface {
	Create(ctx context.Context, submission *model.Submission) error
	FindByTeam(ctx context.Context, teamID uuid.UUID) (*model.Submission, error)
	DeleteByTeam(ctx context.Context, teamID uuid.UUID) error
	List(ctx context.Context) ([]model.Submission, error)
}

type submissionRepository struct {
	db *gorm.DB
}

// NewSubmissionRepository creates a new submission repository.
func NewSubmissionRepository(db *gorm.DB) SubmissionRepository {
	return &submissionRepository{db: db}
}

// Create creates a new submission record.
func (r *submissionRepository) Create(ctx context.Context, submission *model.Submission) error {
	return translate(r.db.WithContext(ctx).Create(submission).Error)
}

// FindByTeam finds the submission owned by a team.
func (r *submissionRepository) FindByTeam(ctx context.Context, teamID uuid.UUID) (*model.Submission, error) {
	var submission model.Submission
	if err := r.db.WithContext(ctx).Where("team_id = ?", teamID).First(&submission).Error; err != nil {
		return nil, translate(err)
	}
	return &submission, nil
}

// DeleteByTeam purges a disbanded team's submission. Missing rows are not an error.
func (r *submissionRepository) DeleteByTeam(ctx context.Context, teamID uuid.UUID) error {
	return translate(r.db.WithContext(ctx).Where("team_id = ?", teamID).Delete(&model.Submission{}).Error)
}

// List returns submissions in submission order.
func (r *submissionRepository) List(ctx context.Context) ([]model.Submission, error) {
	var submissions []model.Submission
	if err := r.db.WithContext(ctx).Order("submitted_at ASC").Find(&submissions).Error; err != nil {
		return nil, translate(err)
	}
	return submissions, nil
}
