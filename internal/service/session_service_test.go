package service

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "devrush/internal/errors"
	"devrush/internal/model"
	"devrush/internal/repository/memory"
	"devrush/internal/session"
)

const (
	testAdminEmail    = "admin@devrush.com"
	testAdminPassword = "admin123"
)

type sessionEnv struct {
	store       *memory.Store
	slots       *session.MemorySlots
	identity    IdentityService
	teams       TeamService
	submissions SubmissionService
	sessions    *Sessions
}

func newSessionEnv(t *testing.T, verify bool) *sessionEnv {
	t.Helper()
	store := memory.NewStore()
	identity := NewIdentityService(store, nil, Options{})
	teams := NewTeamService(store, Options{})
	submissions := NewSubmissionService(store, Options{})
	_, err := identity.EnsureAdmin(context.Background(), testAdminEmail, "Admin User")
	require.NoError(t, err)

	return &sessionEnv{
		store:       store,
		slots:       session.NewMemorySlots(),
		identity:    identity,
		teams:       teams,
		submissions: submissions,
		sessions: NewSessions(identity, teams, submissions, SessionConfig{
			AdminEmail:      testAdminEmail,
			AdminPassword:   testAdminPassword,
			VerifyPasswords: verify,
		}, Options{}),
	}
}

func (e *sessionEnv) open(sid string) *SessionManager {
	return e.sessions.Open(context.Background(), e.slots.Slot(sid))
}

func (e *sessionEnv) signup(t *testing.T, sid, name string) *SessionManager {
	t.Helper()
	m := e.open(sid)
	_, err := m.Signup(context.Background(), profile(name))
	require.NoError(t, err)
	return m
}

func profile(name string) model.SignupProfile {
	return model.SignupProfile{
		Email:       name + "@example.com",
		Password:    "Secret123",
		FullName:    name,
		Phone:       "9876543210",
		College:     "Institute of Technology",
		YearOfStudy: "3rd",
	}
}

func TestSession_SignupPersistsAndRestores(t *testing.T) {
	env := newSessionEnv(t, true)
	m := env.signup(t, "s1", "ann")

	require.True(t, m.Authenticated())
	assert.Equal(t, "ann@example.com", m.User().Email)
	assert.False(t, m.User().IsAdmin)
	assert.True(t, env.slots.Has("s1"))

	restored := env.open("s1")
	require.True(t, restored.Authenticated())
	assert.Equal(t, m.User().ID, restored.User().ID)
	assert.Nil(t, restored.Team())

	other := env.open("s2")
	assert.False(t, other.Authenticated())
}

func TestSession_ViewRefreshesStoredUser(t *testing.T) {
	ctx := context.Background()
	env := newSessionEnv(t, true)
	ann := env.signup(t, "s1", "ann").User()

	stale := *ann
	stale.FullName = "Stale Name"
	stale.IsAdmin = true
	payload, err := json.Marshal(stale)
	require.NoError(t, err)
	require.NoError(t, env.slots.Slot("s1").Write(ctx, payload))

	m := env.open("s1")
	require.Equal(t, "Stale Name", m.User().FullName)

	view, err := m.View(ctx)
	require.NoError(t, err)
	assert.Equal(t, "ann", view.User.FullName)
	assert.False(t, view.User.IsAdmin)
	assert.Empty(t, view.AllUsers)

	// The refreshed record is written back to the slot.
	assert.Equal(t, "ann", env.open("s1").User().FullName)
}

func TestSession_ViewKeepsGuest(t *testing.T) {
	ctx := context.Background()
	env := newSessionEnv(t, true)
	m := env.open("g1")
	_, err := m.Login(ctx, "visitor@example.com", "whatever")
	require.NoError(t, err)

	view, err := env.open("g1").View(ctx)
	require.NoError(t, err)
	require.NotNil(t, view.User)
	assert.Equal(t, "visitor@example.com", view.User.Email)
	assert.Equal(t, "Demo User", view.User.FullName)
}

func TestSession_EmailsAreCaseSensitive(t *testing.T) {
	ctx := context.Background()
	env := newSessionEnv(t, true)
	ann := env.signup(t, "s1", "ann").User()

	p := profile("ann")
	p.Email = "Ann@example.com"
	other, err := env.open("s2").Signup(ctx, p)
	require.NoError(t, err)
	assert.NotEqual(t, ann.ID, other.ID)

	// A case-mismatched login does not reach ann's account.
	guest, err := env.open("s3").Login(ctx, "ANN@example.com", "Secret123")
	require.NoError(t, err)
	assert.NotEqual(t, ann.ID, guest.ID)
	assert.Equal(t, "Demo User", guest.FullName)
}

func TestSession_DuplicateSignupLeavesStoreUnchanged(t *testing.T) {
	ctx := context.Background()
	env := newSessionEnv(t, true)
	env.signup(t, "s1", "ann")

	before, err := env.identity.ListAll(ctx)
	require.NoError(t, err)

	m := env.open("s2")
	user, err := m.Signup(ctx, profile("ann"))
	assert.ErrorIs(t, err, apperrors.ErrDuplicateEmail)
	assert.Nil(t, user)
	assert.False(t, m.Authenticated())
	assert.False(t, env.slots.Has("s2"))

	after, err := env.identity.ListAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestSession_Login(t *testing.T) {
	ctx := context.Background()
	env := newSessionEnv(t, true)
	env.signup(t, "owner", "ann")

	tests := []struct {
		name          string
		email         string
		password      string
		expectedError error
		admin         bool
		guest         bool
	}{
		{name: "registered user", email: "ann@example.com", password: "Secret123"},
		{name: "wrong password", email: "ann@example.com", password: "nope", expectedError: apperrors.ErrInvalidCredentials},
		{name: "administrator", email: testAdminEmail, password: testAdminPassword, admin: true},
		{name: "administrator with wrong password", email: testAdminEmail, password: "guess", expectedError: apperrors.ErrInvalidCredentials},
		{name: "unknown email becomes guest", email: "walkin@example.com", password: "anything", guest: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := env.open(tt.name)
			user, err := m.Login(ctx, tt.email, tt.password)

			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				assert.Nil(t, user)
				assert.False(t, m.Authenticated())
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.email, user.Email)
			assert.Equal(t, tt.admin, user.IsAdmin)
			assert.True(t, env.slots.Has(tt.name))
			if tt.guest {
				assert.Equal(t, "Demo User", user.FullName)
				assert.Equal(t, "Demo Institute", user.College)
				assert.Equal(t, "1st", user.YearOfStudy)
				stored, err := env.identity.FindByEmail(ctx, tt.email)
				require.NoError(t, err)
				assert.Nil(t, stored)
			}
		})
	}
}

func TestSession_LoginWithoutVerification(t *testing.T) {
	env := newSessionEnv(t, false)
	env.signup(t, "owner", "ann")

	m := env.open("s2")
	user, err := m.Login(context.Background(), "ann@example.com", "whatever")
	require.NoError(t, err)
	assert.Equal(t, "ann", user.FullName)
}

func TestSession_LoginDerivesTeam(t *testing.T) {
	ctx := context.Background()
	env := newSessionEnv(t, true)
	leader := env.signup(t, "s1", "lead")
	_, err := leader.CreateTeam(ctx, "Derived", model.TrackGenAI)
	require.NoError(t, err)
	_, err = leader.SubmitIdea(ctx, validFields())
	require.NoError(t, err)

	m := env.open("s2")
	_, err = m.Login(ctx, "lead@example.com", "Secret123")
	require.NoError(t, err)
	require.NotNil(t, m.Team())
	assert.Equal(t, "Derived", m.Team().TeamName)
	require.NotNil(t, m.Submission())
}

func TestSession_CorruptSlotStartsAnonymous(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"not json", "{nope"},
		{"missing identity", `{"id":"00000000-0000-0000-0000-000000000000","email":""}`},
		{"wrong shape", `["a","b"]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newSessionEnv(t, true)
			env.slots.Put("bad", []byte(tt.data))

			m := env.open("bad")
			assert.False(t, m.Authenticated())
			assert.Nil(t, m.Team())
			assert.False(t, env.slots.Has("bad"))
		})
	}
}

func TestSession_Logout(t *testing.T) {
	ctx := context.Background()
	env := newSessionEnv(t, true)
	m := env.signup(t, "s1", "ann")
	_, err := m.CreateTeam(ctx, "Stays", model.TrackBlockchain)
	require.NoError(t, err)

	require.NoError(t, m.Logout(ctx))
	assert.False(t, m.Authenticated())
	assert.Nil(t, m.Team())
	assert.False(t, env.slots.Has("s1"))

	teams, err := env.teams.ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, teams, 1)
}

func TestSession_RequiresAuthentication(t *testing.T) {
	ctx := context.Background()
	env := newSessionEnv(t, true)
	m := env.open("anon")

	_, err := m.CreateTeam(ctx, "Ghosts", model.TrackGenAI)
	assert.ErrorIs(t, err, apperrors.ErrNotAuthenticated)
	_, err = m.JoinTeam(ctx, "ABC123")
	assert.ErrorIs(t, err, apperrors.ErrNotAuthenticated)
	assert.ErrorIs(t, m.LeaveTeam(ctx), apperrors.ErrNotAuthenticated)
	_, err = m.SubmitIdea(ctx, validFields())
	assert.ErrorIs(t, err, apperrors.ErrNotAuthenticated)

	teams, err := env.teams.ListAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, teams)
}

func TestSession_SubmitWithoutTeam(t *testing.T) {
	ctx := context.Background()
	env := newSessionEnv(t, true)
	m := env.signup(t, "s1", "solo")

	sub, err := m.SubmitIdea(ctx, validFields())
	assert.ErrorIs(t, err, apperrors.ErrTeamRequired)
	assert.Nil(t, sub)
	assert.ErrorIs(t, m.LeaveTeam(ctx), apperrors.ErrTeamRequired)

	all, err := env.submissions.ListAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestSession_HackathonScenario(t *testing.T) {
	ctx := context.Background()
	env := newSessionEnv(t, true)

	leader := env.signup(t, "lead", "lead")
	code, err := leader.CreateTeam(ctx, "CodeCrusaders", model.TrackGenAI)
	require.NoError(t, err)
	assert.True(t, ValidCode(code))
	assert.Equal(t, model.ApprovalPending, leader.Team().ApprovalStatus)

	var members []*SessionManager
	for _, name := range []string{"m1", "m2", "m3"} {
		m := env.signup(t, name, name)
		team, err := m.JoinTeam(ctx, "  "+strings.ToLower(code)+" ")
		require.NoError(t, err)
		assert.Equal(t, code, team.TeamCode)
		members = append(members, m)
	}
	assert.Len(t, members[2].Team().Members, model.MaxTeamMembers)

	fifth := env.signup(t, "m4", "m4")
	_, err = fifth.JoinTeam(ctx, code)
	assert.ErrorIs(t, err, apperrors.ErrTeamFull)
	assert.Nil(t, fifth.Team())

	_, err = fifth.JoinTeam(ctx, "QQQQQQ")
	assert.ErrorIs(t, err, apperrors.ErrTeamNotFound)

	sub, err := members[0].SubmitIdea(ctx, validFields())
	require.NoError(t, err)
	assert.True(t, sub.IsFinal)

	_, err = leader.SubmitIdea(ctx, validFields())
	assert.ErrorIs(t, err, apperrors.ErrAlreadySubmitted)

	view, err := leader.View(ctx)
	require.NoError(t, err)
	require.NotNil(t, view.Submission)
	assert.Equal(t, sub.ID, view.Submission.ID)
	assert.Nil(t, view.AllUsers)
	assert.Nil(t, view.AllTeams)

	// A member leaves; exactly one membership goes.
	require.NoError(t, members[2].LeaveTeam(ctx))
	assert.Nil(t, members[2].Team())
	view, err = leader.View(ctx)
	require.NoError(t, err)
	assert.Len(t, view.Team.Members, 3)

	admin := env.open("admin")
	_, err = admin.Login(ctx, testAdminEmail, testAdminPassword)
	require.NoError(t, err)
	require.NoError(t, admin.ApproveTeam(ctx, leader.Team().ID))

	view, err = admin.View(ctx)
	require.NoError(t, err)
	assert.Len(t, view.AllUsers, 6)
	require.Len(t, view.AllTeams, 1)
	assert.Equal(t, model.ApprovalApproved, view.AllTeams[0].ApprovalStatus)

	// The leader leaves and the team is disbanded with its submission.
	require.NoError(t, leader.LeaveTeam(ctx))
	teams, err := env.teams.ListAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, teams)
	subs, err := env.submissions.ListAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, subs)

	// A member holding a stale team still leaves cleanly.
	require.NotNil(t, members[1].Team())
	require.NoError(t, members[1].LeaveTeam(ctx))
	assert.Nil(t, members[1].Team())
	assert.Nil(t, members[1].Submission())

	view, err = members[0].View(ctx)
	require.NoError(t, err)
	assert.Nil(t, view.Team)
	assert.Nil(t, view.Submission)
}

func TestSession_ApproveUnknownTeam(t *testing.T) {
	ctx := context.Background()
	env := newSessionEnv(t, true)
	admin := env.open("admin")
	_, err := admin.Login(ctx, testAdminEmail, testAdminPassword)
	require.NoError(t, err)

	m := env.signup(t, "s1", "lead")
	_, err = m.CreateTeam(ctx, "Rejects", model.TrackAutomation)
	require.NoError(t, err)

	require.NoError(t, admin.RejectTeam(ctx, m.Team().ID))
	view, err := m.View(ctx)
	require.NoError(t, err)
	assert.Equal(t, model.ApprovalRejected, view.Team.ApprovalStatus)

	assert.ErrorIs(t, admin.ApproveTeam(ctx, admin.User().ID), apperrors.ErrTeamNotFound)
}
