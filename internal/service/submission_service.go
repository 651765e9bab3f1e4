package service

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	apperrors "devrush/internal/errors"
	"devrush/internal/model"
	"devrush/internal/repository"
)

// SubmissionService is the vault of final submissions, at most one per team.
// Submissions cannot be edited; they disappear only when their team is disbanded.
type SubmissionService interface {
	FindByTeam(ctx context.Context, teamID uuid.UUID) (*model.Submission, error)
	Create(ctx context.Context, teamID uuid.UUID, fields model.SubmissionFields) (*model.Submission, error)
	ListAll(ctx context.Context) ([]model.Submission, error)
}

type submissionService struct {
	store repository.Store
	now   func() time.Time
	log   *zap.Logger
}

// NewSubmissionService creates a new submission service.
func NewSubmissionService(store repository.Store, opts Options) SubmissionService {
	opts = opts.withDefaults()
	return &submissionService{
		store: store,
		now:   opts.Now,
		log:   opts.Logger.Named("submissions"),
	}
}

// FindByTeam returns nil, nil when the team has not submitted.
func (s *submissionService) FindByTeam(ctx context.Context, teamID uuid.UUID) (*model.Submission, error) {
	submission, err := s.store.Submissions().FindByTeam(ctx, teamID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find submission: %w", err)
	}
	return submission, nil
}

// cleanTechStack drops blank and repeated tags, keeping first-seen order.
func cleanTechStack(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" || slices.Contains(out, tag) {
			continue
		}
		out = append(out, tag)
	}
	return out
}

// Create records the team's final submission.
func (s *submissionService) Create(ctx context.Context, teamID uuid.UUID, fields model.SubmissionFields) (*model.Submission, error) {
	if teamID == uuid.Nil {
		return nil, apperrors.ErrTeamRequired
	}
	techStack := cleanTechStack(fields.TechStack)
	if len(techStack) == 0 {
		return nil, fmt.Errorf("%w: select at least one technology", apperrors.ErrInvalidSubmission)
	}

	submission := &model.Submission{
		ID:               uuid.New(),
		TeamID:           teamID,
		ProjectTitle:     fields.ProjectTitle,
		Tagline:          fields.Tagline,
		ProblemStatement: fields.ProblemStatement,
		SolutionApproach: fields.SolutionApproach,
		TechStack:        techStack,
		Novelty:          fields.Novelty,
		PresentationURL:  fields.PresentationURL,
		DemoVideoURL:     fields.DemoVideoURL,
		GithubRepoURL:    fields.GithubRepoURL,
		SubmittedAt:      s.now(),
		IsFinal:          true,
	}

	err := s.store.WithTransaction(ctx, func(ctx context.Context, tx repository.Store) error {
		if _, err := tx.Teams().FindByIDForUpdate(ctx, teamID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return apperrors.ErrTeamNotFound
			}
			return fmt.Errorf("lock team: %w", err)
		}

		_, err := tx.Submissions().FindByTeam(ctx, teamID)
		if err == nil {
			return apperrors.ErrAlreadySubmitted
		}
		if !errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("check submission: %w", err)
		}

		if err := tx.Submissions().Create(ctx, submission); err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				return apperrors.ErrAlreadySubmitted
			}
			return fmt.Errorf("create submission: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("idea submitted", zap.String("team_id", teamID.String()), zap.String("submission_id", submission.ID.String()))
	return submission, nil
}

// ListAll returns submissions in submission order.
func (s *submissionService) ListAll(ctx context.Context) ([]model.Submission, error) {
	submissions, err := s.store.Submissions().List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list submissions: %w", err)
	}
	return submissions, nil
}
