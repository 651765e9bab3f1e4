package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"devrush/internal/model"
	"devrush/internal/repository"
)

func newTeam(code string, members ...uuid.UUID) *model.Team {
	team := &model.Team{
		TeamName:       "Team " + code,
		TeamCode:       code,
		LeaderID:       members[0],
		Track:          model.TrackGenAI,
		ApprovalStatus: model.ApprovalPending,
		CreatedAt:      time.Now(),
	}
	for i, id := range members {
		team.Members = append(team.Members, model.TeamMember{UserID: id, IsLeader: i == 0, Position: i})
	}
	return team
}

func TestUsers_CreateAndFind(t *testing.T) {
	ctx := context.Background()
	users := NewStore().Users()

	u := &model.User{Email: "a@x.com", FullName: "Ann"}
	require.NoError(t, users.Create(ctx, u))
	assert.NotEqual(t, uuid.Nil, u.ID)

	found, err := users.FindByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, found.ID)

	_, err = users.FindByEmail(ctx, "A@x.com")
	assert.ErrorIs(t, err, repository.ErrNotFound)

	err = users.Create(ctx, &model.User{Email: "a@x.com"})
	assert.ErrorIs(t, err, repository.ErrDuplicate)

	require.NoError(t, users.Create(ctx, &model.User{Email: "b@x.com"}))
	list, err := users.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "a@x.com", list[0].Email)
	assert.Equal(t, "b@x.com", list[1].Email)
}

func TestTeams_MembershipIndex(t *testing.T) {
	ctx := context.Background()
	teams := NewStore().Teams()
	leader, member := uuid.New(), uuid.New()

	team := newTeam("ABC123", leader)
	require.NoError(t, teams.Create(ctx, team))

	require.NoError(t, teams.AddMember(ctx, &model.TeamMember{TeamID: team.ID, UserID: member, Position: 1}))

	byMember, err := teams.FindByMember(ctx, member)
	require.NoError(t, err)
	assert.Equal(t, team.ID, byMember.ID)
	assert.Len(t, byMember.Members, 2)

	err = teams.AddMember(ctx, &model.TeamMember{TeamID: team.ID, UserID: member})
	assert.ErrorIs(t, err, repository.ErrDuplicate)

	require.NoError(t, teams.RemoveMember(ctx, team.ID, member))
	_, err = teams.FindByMember(ctx, member)
	assert.ErrorIs(t, err, repository.ErrNotFound)
	assert.ErrorIs(t, teams.RemoveMember(ctx, team.ID, member), repository.ErrNotFound)

	require.NoError(t, teams.Delete(ctx, team.ID))
	_, err = teams.FindByCode(ctx, "ABC123")
	assert.ErrorIs(t, err, repository.ErrNotFound)
	_, err = teams.FindByMember(ctx, leader)
	assert.ErrorIs(t, err, repository.ErrNotFound)

	exists, err := teams.CodeExists(ctx, "ABC123")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestTeams_ReturnedValuesAreCopies(t *testing.T) {
	ctx := context.Background()
	teams := NewStore().Teams()
	team := newTeam("COPY01", uuid.New())
	require.NoError(t, teams.Create(ctx, team))

	found, err := teams.FindByID(ctx, team.ID)
	require.NoError(t, err)
	found.Members[0].UserName = "mutated"
	found.ApprovalStatus = model.ApprovalApproved

	again, err := teams.FindByID(ctx, team.ID)
	require.NoError(t, err)
	assert.Empty(t, again.Members[0].UserName)
	assert.Equal(t, model.ApprovalPending, again.ApprovalStatus)
}

func TestTeams_ListByStatus(t *testing.T) {
	ctx := context.Background()
	teams := NewStore().Teams()
	a, b := newTeam("AAAAAA", uuid.New()), newTeam("BBBBBB", uuid.New())
	require.NoError(t, teams.Create(ctx, a))
	require.NoError(t, teams.Create(ctx, b))
	require.NoError(t, teams.UpdateStatus(ctx, b.ID, model.ApprovalApproved))

	all, err := teams.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, a.ID, all[0].ID)

	approved, err := teams.ListByStatus(ctx, model.ApprovalApproved)
	require.NoError(t, err)
	require.Len(t, approved, 1)
	assert.Equal(t, b.ID, approved[0].ID)
}

func TestSubmissions_OnePerTeam(t *testing.T) {
	ctx := context.Background()
	subs := NewStore().Submissions()
	teamID := uuid.New()

	require.NoError(t, subs.Create(ctx, &model.Submission{TeamID: teamID, TechStack: []string{"Go"}}))
	err := subs.Create(ctx, &model.Submission{TeamID: teamID})
	assert.ErrorIs(t, err, repository.ErrDuplicate)

	found, err := subs.FindByTeam(ctx, teamID)
	require.NoError(t, err)
	assert.Equal(t, []string{"Go"}, found.TechStack)

	require.NoError(t, subs.DeleteByTeam(ctx, teamID))
	_, err = subs.FindByTeam(ctx, teamID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestWithTransaction_RollsBackOnError(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	boom := errors.New("boom")

	err := store.WithTransaction(ctx, func(ctx context.Context, tx repository.Store) error {
		require.NoError(t, tx.Users().Create(ctx, &model.User{Email: "tx@x.com"}))
		_, err := tx.Users().FindByEmail(ctx, "tx@x.com")
		require.NoError(t, err)
		return boom
	})
	assert.ErrorIs(t, err, boom)

	_, err = store.Users().FindByEmail(ctx, "tx@x.com")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestWithTransaction_Commits(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	leader := uuid.New()

	err := store.WithTransaction(ctx, func(ctx context.Context, tx repository.Store) error {
		team := newTeam("TXTX01", leader)
		if err := tx.Teams().Create(ctx, team); err != nil {
			return err
		}
		return tx.WithTransaction(ctx, func(ctx context.Context, inner repository.Store) error {
			return inner.Submissions().Create(ctx, &model.Submission{TeamID: team.ID})
		})
	})
	require.NoError(t, err)

	team, err := store.Teams().FindByMember(ctx, leader)
	require.NoError(t, err)
	_, err = store.Submissions().FindByTeam(ctx, team.ID)
	assert.NoError(t, err)
}
