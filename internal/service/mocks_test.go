package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"devrush/internal/model"
	"devrush/internal/repository"
)

// MockStore is a mock implementation of repository.Store.
// WithTransaction runs fn against the mock itself unless an error is configured.
type MockStore struct {
	mock.Mock
	users       *MockUserRepository
	teams       *MockTeamRepository
	submissions *MockSubmissionRepository
}

func newMockStore() *MockStore {
	return &MockStore{
		users:       new(MockUserRepository),
		teams:       new(MockTeamRepository),
		submissions: new(MockSubmissionRepository),
	}
}

func (m *MockStore) Users() repository.UserRepository { return m.users }
func (m *MockStore) Teams() repository.TeamRepository { return m.teams }
func (m *MockStore) Submissions() repository.SubmissionRepository { return m.submissions }

func (m *MockStore) WithTransaction(ctx context.Context, fn func(ctx context.Context, tx repository.Store) error) error {
	args := m.Called(ctx)
	if err := args.Error(0); err != nil {
		return err
	}
	return fn(ctx, m)
}

// MockUserRepository is a mock implementation of repository.UserRepository.
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) List(ctx context.Context) ([]model.User, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.User), args.Error(1)
}

// MockTeamRepository is a mock implementation of repository.TeamRepository.
type MockTeamRepository struct {
	mock.Mock
}

func (m *MockTeamRepository) team(args mock.Arguments) (*model.Team, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Team), args.Error(1)
}

func (m *MockTeamRepository) Create(ctx context.Context, team *model.Team) error {
	args := m.Called(ctx, team)
	return args.Error(0)
}

func (m *MockTeamRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Team, error) {
	return m.team(m.Called(ctx, id))
}

func (m *MockTeamRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.Team, error) {
	return m.team(m.Called(ctx, id))
}

func (m *MockTeamRepository) FindByCode(ctx context.Context, code string) (*model.Team, error) {
	return m.team(m.Called(ctx, code))
}

func (m *MockTeamRepository) FindByMember(ctx context.Context, userID uuid.UUID) (*model.Team, error) {
	return m.team(m.Called(ctx, userID))
}

func (m *MockTeamRepository) CodeExists(ctx context.Context, code string) (bool, error) {
	args := m.Called(ctx, code)
	return args.Bool(0), args.Error(1)
}

func (m *MockTeamRepository) AddMember(ctx context.Context, member *model.TeamMember) error {
	args := m.Called(ctx, member)
	return args.Error(0)
}

func (m *MockTeamRepository) RemoveMember(ctx context.Context, teamID, userID uuid.UUID) error {
	args := m.Called(ctx, teamID, userID)
	return args.Error(0)
}

func (m *MockTeamRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status model.ApprovalStatus) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

func (m *MockTeamRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockTeamRepository) List(ctx context.Context) ([]model.Team, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Team), args.Error(1)
}

func (m *MockTeamRepository) ListByStatus(ctx context.Context, status model.ApprovalStatus) ([]model.Team, error) {
	args := m.Called(ctx, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Team), args.Error(1)
}

// MockSubmissionRepository is a mock implementation of repository.SubmissionRepository.
type MockSubmissionRepository struct {
	mock.Mock
}

func (m *MockSubmissionRepository) Create(ctx context.Context, submission *model.Submission) error {
	args := m.Called(ctx, submission)
	return args.Error(0)
}

func (m *MockSubmissionRepository) FindByTeam(ctx context.Context, teamID uuid.UUID) (*model.Submission, error) {
	args := m.Called(ctx, teamID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Submission), args.Error(1)
}

func (m *MockSubmissionRepository) DeleteByTeam(ctx context.Context, teamID uuid.UUID) error {
	args := m.Called(ctx, teamID)
	return args.Error(0)
}

func (m *MockSubmissionRepository) List(ctx context.Context) ([]model.Submission, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Submission), args.Error(1)
}
