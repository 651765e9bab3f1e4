package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"devrush/internal/model"
)

func newSQLiteStore(t *testing.T) Store {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	// One connection keeps every query on the same in-memory database.
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(&model.User{}, &model.Team{}, &model.TeamMember{}, &model.Submission{}))
	return NewStore(db)
}

func newTeam(code string, leader uuid.UUID, created time.Time) *model.Team {
	return &model.Team{
		ID:             uuid.New(),
		TeamName:       "Team " + code,
		TeamCode:       code,
		LeaderID:       leader,
		Track:          model.TrackGenAI,
		ApprovalStatus: model.ApprovalPending,
		CreatedAt:      created,
		Members: []model.TeamMember{
			{UserID: leader, UserName: "lead", Email: "lead@example.com", IsLeader: true, JoinedAt: created},
		},
	}
}

func TestGormUsers_CaseSensitiveEmail(t *testing.T) {
	ctx := context.Background()
	users := newSQLiteStore(t).Users()
	base := time.Date(2026, 1, 10, 9, 0, 0, 0, time.UTC)

	ann := &model.User{ID: uuid.New(), Email: "ann@example.com", FullName: "Ann", CreatedAt: base}
	require.NoError(t, users.Create(ctx, ann))

	found, err := users.FindByEmail(ctx, "ann@example.com")
	require.NoError(t, err)
	assert.Equal(t, ann.ID, found.ID)

	_, err = users.FindByEmail(ctx, "ANN@example.com")
	assert.ErrorIs(t, err, ErrNotFound)

	// Emails differing only in case are different accounts.
	upper := &model.User{ID: uuid.New(), Email: "Ann@example.com", FullName: "Other Ann", CreatedAt: base.Add(time.Minute)}
	require.NoError(t, users.Create(ctx, upper))

	dup := &model.User{ID: uuid.New(), Email: "ann@example.com", FullName: "Copy", CreatedAt: base.Add(2 * time.Minute)}
	assert.ErrorIs(t, users.Create(ctx, dup), ErrDuplicate)

	byID, err := users.FindByID(ctx, upper.ID)
	require.NoError(t, err)
	assert.Equal(t, "Other Ann", byID.FullName)

	_, err = users.FindByID(ctx, uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)

	all, err := users.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, ann.ID, all[0].ID)
	assert.Equal(t, upper.ID, all[1].ID)
}

func TestGormTeams_Membership(t *testing.T) {
	ctx := context.Background()
	teams := newSQLiteStore(t).Teams()
	created := time.Date(2026, 1, 10, 9, 0, 0, 0, time.UTC)

	leader, m1, m2 := uuid.New(), uuid.New(), uuid.New()
	team := newTeam("ABC123", leader, created)
	require.NoError(t, teams.Create(ctx, team))

	for i, id := range []uuid.UUID{m1, m2} {
		require.NoError(t, teams.AddMember(ctx, &model.TeamMember{
			TeamID: team.ID, UserID: id, UserName: "member", Email: "m@example.com", Position: i + 1, JoinedAt: created,
		}))
	}
	assert.ErrorIs(t, teams.AddMember(ctx, &model.TeamMember{TeamID: team.ID, UserID: m1, UserName: "again", Email: "m@example.com"}), ErrDuplicate)

	exists, err := teams.CodeExists(ctx, "ABC123")
	require.NoError(t, err)
	assert.True(t, exists)
	_, err = teams.FindByCode(ctx, "abc123")
	assert.ErrorIs(t, err, ErrNotFound)

	byMember, err := teams.FindByMember(ctx, m2)
	require.NoError(t, err)
	assert.Equal(t, team.ID, byMember.ID)

	require.NoError(t, teams.RemoveMember(ctx, team.ID, m1))
	assert.ErrorIs(t, teams.RemoveMember(ctx, team.ID, m1), ErrNotFound)

	locked, err := teams.FindByIDForUpdate(ctx, team.ID)
	require.NoError(t, err)
	require.Len(t, locked.Members, 2)
	assert.Equal(t, leader, locked.Members[0].UserID)
	assert.Equal(t, m2, locked.Members[1].UserID)
	assert.Equal(t, "ABC123", locked.TeamCode)

	require.NoError(t, teams.UpdateStatus(ctx, team.ID, model.ApprovalApproved))
	approved, err := teams.ListByStatus(ctx, model.ApprovalApproved)
	require.NoError(t, err)
	require.Len(t, approved, 1)
	assert.Equal(t, team.ID, approved[0].ID)

	require.NoError(t, teams.Delete(ctx, team.ID))
	assert.ErrorIs(t, teams.Delete(ctx, team.ID), ErrNotFound)
	_, err = teams.FindByCode(ctx, "ABC123")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = teams.FindByMember(ctx, leader)
	assert.ErrorIs(t, err, ErrNotFound)

	all, err := teams.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestGormSubmissions_OnePerTeam(t *testing.T) {
	ctx := context.Background()
	store := newSQLiteStore(t)
	team := newTeam("XYZ789", uuid.New(), time.Now())
	require.NoError(t, store.Teams().Create(ctx, team))

	sub := &model.Submission{
		ID:           uuid.New(),
		TeamID:       team.ID,
		ProjectTitle: "Ledger",
		TechStack:    []string{"Go", "Solidity"},
		SubmittedAt:  time.Now(),
		IsFinal:      true,
	}
	require.NoError(t, store.Submissions().Create(ctx, sub))

	found, err := store.Submissions().FindByTeam(ctx, team.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"Go", "Solidity"}, found.TechStack)

	again := &model.Submission{ID: uuid.New(), TeamID: team.ID, TechStack: []string{"Rust"}, SubmittedAt: time.Now()}
	assert.ErrorIs(t, store.Submissions().Create(ctx, again), ErrDuplicate)

	require.NoError(t, store.Submissions().DeleteByTeam(ctx, team.ID))
	require.NoError(t, store.Submissions().DeleteByTeam(ctx, team.ID))
	_, err = store.Submissions().FindByTeam(ctx, team.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGormWithTransaction_RollsBackOnError(t *testing.T) {
	ctx := context.Background()
	store := newSQLiteStore(t)
	boom := errors.New("boom")

	err := store.WithTransaction(ctx, func(ctx context.Context, tx Store) error {
		if err := tx.Users().Create(ctx, &model.User{ID: uuid.New(), Email: "tx@example.com", FullName: "Tx"}); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	_, err = store.Users().FindByEmail(ctx, "tx@example.com")
	assert.ErrorIs(t, err, ErrNotFound)
}
