package memory

import (
	"context"
	"slices"

	"github.com/google/uuid"

	"devrush/internal/model"
	"devrush/internal/repository"
)

type submissionRepository struct {
	a access
}

func (r *submissionRepository) Create(ctx context.Context, submission *model.Submission) error {
	return r.a.write(func(st *state) error {
		if _, ok := st.submissions[submission.TeamID]; ok {
			return repository.ErrDuplicate
		}
		if submission.ID == uuid.Nil {
			submission.ID = uuid.New()
		}
		st.submissions[submission.TeamID] = copySubmission(*submission)
		st.subOrder = append(st.subOrder, submission.TeamID)
		return nil
	})
}

func (r *submissionRepository) FindByTeam(ctx context.Context, teamID uuid.UUID) (*model.Submission, error) {
	var found *model.Submission
	err := r.a.read(func(st *state) error {
		s, ok := st.submissions[teamID]
		if !ok {
			return repository.ErrNotFound
		}
		cp := copySubmission(s)
		found = &cp
		return nil
	})
	return found, err
}

func (r *submissionRepository) DeleteByTeam(ctx context.Context, teamID uuid.UUID) error {
	return r.a.write(func(st *state) error {
		delete(st.submissions, teamID)
		st.subOrder = slices.DeleteFunc(st.subOrder, func(v uuid.UUID) bool { return v == teamID })
		return nil
	})
}

func (r *submissionRepository) List(ctx context.Context) ([]model.Submission, error) {
	var submissions []model.Submission
	err := r.a.read(func(st *state) error {
		submissions = make([]model.Submission, 0, len(st.subOrder))
		for _, id := range st.subOrder {
			submissions = append(submissions, copySubmission(st.submissions[id]))
		}
		return nil
	})
	return submissions, err
}
