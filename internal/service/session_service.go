package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	apperrors "devrush/internal/errors"
	"devrush/internal/metrics"
	"devrush/internal/model"
	"devrush/internal/session"
)

const bcryptCost = 10

// Guest profile given to unknown emails at login.
const (
	guestName        = "Demo User"
	guestCollege     = "Demo Institute"
	guestYearOfStudy = "1st"
)

// SessionConfig holds the fixed administrator identity and login policy.
type SessionConfig struct {
	AdminEmail    string
	AdminPassword string
	// VerifyPasswords checks stored users' bcrypt hashes at login. When off,
	// a known email logs in with any password.
	VerifyPasswords bool
}

// Sessions opens per-caller SessionManagers over shared services.
type Sessions struct {
	identity    IdentityService
	teams       TeamService
	submissions SubmissionService
	cfg         SessionConfig
	now         func() time.Time
	log         *zap.Logger
	metrics     *metrics.Metrics
}

// NewSessions builds the session factory.
func NewSessions(identity IdentityService, teams TeamService, submissions SubmissionService, cfg SessionConfig, opts Options) *Sessions {
	opts = opts.withDefaults()
	return &Sessions{
		identity:    identity,
		teams:       teams,
		submissions: submissions,
		cfg:         cfg,
		now:         opts.Now,
		log:         opts.Logger.Named("session"),
		metrics:     opts.Metrics,
	}
}

// Open returns a SessionManager bound to slot, restored from whatever the slot holds.
// Restoration never fails; unreadable state leaves the session anonymous.
func (s *Sessions) Open(ctx context.Context, slot session.Slot) *SessionManager {
	m := &SessionManager{Sessions: s, slot: slot}
	m.restore(ctx)
	return m
}

// SessionManager is one caller's session. It is not safe for concurrent use;
// open one per request or per interactive user.
type SessionManager struct {
	*Sessions
	slot session.Slot

	user       *model.User
	team       *model.Team
	submission *model.Submission
}

// User returns the bound user, or nil when anonymous.
func (m *SessionManager) User() *model.User { return m.user }

// Team returns the derived current team, or nil.
func (m *SessionManager) Team() *model.Team { return m.team }

// Submission returns the derived current submission, or nil.
func (m *SessionManager) Submission() *model.Submission { return m.submission }

// Authenticated reports whether a user is bound.
func (m *SessionManager) Authenticated() bool { return m.user != nil }

func (m *SessionManager) restore(ctx context.Context) {
	data, err := m.slot.Read(ctx)
	if err == nil && data == nil {
		return
	}

	var user model.User
	if err == nil {
		err = json.Unmarshal(data, &user)
	}
	if err == nil && (user.ID == uuid.Nil || user.Email == "") {
		err = errors.New("persisted user has no identity")
	}
	if err != nil {
		m.log.Warn("discarding persisted session", zap.Error(fmt.Errorf("%w: %v", apperrors.ErrSessionRestoreFailed, err)))
		if clearErr := m.slot.Clear(ctx); clearErr != nil {
			m.log.Warn("clear persisted session", zap.Error(clearErr))
		}
		m.reset()
		return
	}

	m.user = &user
	if err := m.derive(ctx); err != nil {
		m.log.Warn("derive restored session", zap.String("user_id", user.ID.String()), zap.Error(err))
	}
}

// derive re-reads the current team and submission for the bound user.
func (m *SessionManager) derive(ctx context.Context) error {
	m.team, m.submission = nil, nil
	if m.user == nil {
		return nil
	}
	team, err := m.teams.FindByMember(ctx, m.user.ID)
	if err != nil {
		return err
	}
	m.team = team
	return m.deriveSubmission(ctx)
}

func (m *SessionManager) deriveSubmission(ctx context.Context) error {
	m.submission = nil
	if m.team == nil {
		return nil
	}
	submission, err := m.submissions.FindByTeam(ctx, m.team.ID)
	if err != nil {
		return err
	}
	m.submission = submission
	return nil
}

func (m *SessionManager) reset() {
	m.user, m.team, m.submission = nil, nil, nil
}

// bind makes user current, derives team and submission, and persists the user.
func (m *SessionManager) bind(ctx context.Context, user *model.User) error {
	m.user = user
	if err := m.derive(ctx); err != nil {
		m.reset()
		return err
	}
	m.persist(ctx)
	return nil
}

// persist is best effort; a failed write only costs the caller a later restore.
func (m *SessionManager) persist(ctx context.Context) {
	payload, err := json.Marshal(m.user)
	if err == nil {
		err = m.slot.Write(ctx, payload)
	}
	if err != nil {
		m.log.Warn("persist session", zap.String("user_id", m.user.ID.String()), zap.Error(err))
	}
}

func (m *SessionManager) observe(operation string, err error) {
	m.metrics.ObserveOperation(operation, err)
}

// Login binds the session by, in order: the fixed administrator credential,
// a stored user with that email, or a transient guest that is never stored.
func (m *SessionManager) Login(ctx context.Context, email, password string) (user *model.User, err error) {
	defer func() { m.observe("login", err) }()

	if email == m.cfg.AdminEmail && password == m.cfg.AdminPassword {
		admin, err := m.identity.FindByEmail(ctx, email)
		if err != nil {
			return nil, err
		}
		if admin != nil && admin.IsAdmin {
			if err := m.bind(ctx, admin); err != nil {
				return nil, err
			}
			m.log.Info("administrator logged in", zap.String("user_id", admin.ID.String()))
			return admin, nil
		}
	}

	found, err := m.identity.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if found != nil {
		if m.cfg.VerifyPasswords && !checkPassword(found, password) {
			return nil, apperrors.ErrInvalidCredentials
		}
		if err := m.bind(ctx, found); err != nil {
			return nil, err
		}
		m.log.Info("user logged in", zap.String("user_id", found.ID.String()))
		return found, nil
	}

	guest := &model.User{
		ID:          uuid.New(),
		Email:       email,
		FullName:    guestName,
		College:     guestCollege,
		YearOfStudy: guestYearOfStudy,
		CreatedAt:   m.now(),
	}
	if err := m.bind(ctx, guest); err != nil {
		return nil, err
	}
	m.log.Info("guest logged in", zap.String("user_id", guest.ID.String()))
	return guest, nil
}

func checkPassword(user *model.User, password string) bool {
	if user.PasswordHash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) == nil
}

// Signup registers a participant and binds the session to them.
func (m *SessionManager) Signup(ctx context.Context, profile model.SignupProfile) (user *model.User, err error) {
	defer func() { m.observe("signup", err) }()

	existing, err := m.identity.FindByEmail(ctx, profile.Email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, apperrors.ErrDuplicateEmail
	}

	var hash string
	if profile.Password != "" {
		hashed, err := bcrypt.GenerateFromPassword([]byte(profile.Password), bcryptCost)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		hash = string(hashed)
	}

	user, err = m.identity.Insert(ctx, &model.User{
		ID:           uuid.New(),
		Email:        profile.Email,
		FullName:     profile.FullName,
		Phone:        profile.Phone,
		College:      profile.College,
		YearOfStudy:  profile.YearOfStudy,
		IsAdmin:      false,
		PasswordHash: hash,
		CreatedAt:    m.now(),
	})
	if err != nil {
		return nil, err
	}
	if err := m.bind(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Logout clears the session and its persisted slot. Stores are untouched.
func (m *SessionManager) Logout(ctx context.Context) error {
	if m.user != nil {
		m.log.Info("user logged out", zap.String("user_id", m.user.ID.String()))
	}
	m.reset()
	if err := m.slot.Clear(ctx); err != nil {
		m.log.Warn("clear persisted session", zap.Error(err))
	}
	m.observe("logout", nil)
	return nil
}

// CreateTeam forms a team led by the current user and returns its join code.
func (m *SessionManager) CreateTeam(ctx context.Context, name string, track model.Track) (code string, err error) {
	defer func() { m.observe("create_team", err) }()

	if m.user == nil {
		return "", apperrors.ErrNotAuthenticated
	}
	team, err := m.teams.Create(ctx, m.user, name, track)
	if err != nil {
		return "", err
	}
	m.team, m.submission = team, nil
	return team.TeamCode, nil
}

// JoinTeam joins the team holding code. Input is trimmed and upper-cased.
func (m *SessionManager) JoinTeam(ctx context.Context, code string) (team *model.Team, err error) {
	defer func() { m.observe("join_team", err) }()

	if m.user == nil {
		return nil, apperrors.ErrNotAuthenticated
	}
	team, err = m.teams.Join(ctx, NormalizeCode(code), m.user)
	if err != nil {
		return nil, err
	}
	m.team = team
	if err := m.deriveSubmission(ctx); err != nil {
		m.log.Warn("derive submission after join", zap.Error(err))
	}
	return team, nil
}

// LeaveTeam leaves the current team, disbanding it when the caller leads it.
// The session's team and submission are cleared even when the team was already gone.
func (m *SessionManager) LeaveTeam(ctx context.Context) (err error) {
	defer func() { m.observe("leave_team", err) }()

	if m.user == nil {
		return apperrors.ErrNotAuthenticated
	}
	if m.team == nil {
		return apperrors.ErrTeamRequired
	}

	err = m.teams.Leave(ctx, m.team.ID, m.user.ID)
	m.team, m.submission = nil, nil
	if errors.Is(err, apperrors.ErrTeamNotFound) || errors.Is(err, apperrors.ErrNotTeamMember) {
		// Stale session: the team was disbanded or the membership removed elsewhere.
		return nil
	}
	return err
}

// SubmitIdea records the current team's final submission.
func (m *SessionManager) SubmitIdea(ctx context.Context, fields model.SubmissionFields) (submission *model.Submission, err error) {
	defer func() { m.observe("submit_idea", err) }()

	if m.user == nil {
		return nil, apperrors.ErrNotAuthenticated
	}
	if m.team == nil {
		return nil, apperrors.ErrTeamRequired
	}
	submission, err = m.submissions.Create(ctx, m.team.ID, fields)
	if err != nil {
		return nil, err
	}
	m.submission = submission
	return submission, nil
}

// ApproveTeam marks a team approved. Callers enforce administrator access.
func (m *SessionManager) ApproveTeam(ctx context.Context, teamID uuid.UUID) error {
	return m.setApproval(ctx, "approve_team", teamID, model.ApprovalApproved)
}

// RejectTeam marks a team rejected. Callers enforce administrator access.
func (m *SessionManager) RejectTeam(ctx context.Context, teamID uuid.UUID) error {
	return m.setApproval(ctx, "reject_team", teamID, model.ApprovalRejected)
}

func (m *SessionManager) setApproval(ctx context.Context, operation string, teamID uuid.UUID, status model.ApprovalStatus) (err error) {
	defer func() { m.observe(operation, err) }()

	if err := m.teams.SetApproval(ctx, teamID, status); err != nil {
		return err
	}
	if m.team != nil && m.team.ID == teamID {
		m.team.ApprovalStatus = status
	}
	return nil
}

// refresh swaps the persisted copy of the user for the stored record and writes
// it back. Guests have no stored record and keep the persisted copy.
func (m *SessionManager) refresh(ctx context.Context) error {
	if m.user == nil {
		return nil
	}
	stored, err := m.identity.GetUser(ctx, m.user.ID)
	if err != nil || stored == nil {
		return err
	}
	m.user = stored
	m.persist(ctx)
	return nil
}

// View re-derives and returns the session. Administrators also receive every user and team.
func (m *SessionManager) View(ctx context.Context) (*model.SessionView, error) {
	if err := m.refresh(ctx); err != nil {
		return nil, err
	}
	if err := m.derive(ctx); err != nil {
		return nil, err
	}
	view := &model.SessionView{
		User:       m.user,
		Team:       m.team,
		Submission: m.submission,
	}
	if m.user == nil || !m.user.IsAdmin {
		return view, nil
	}

	users, err := m.identity.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	teams, err := m.teams.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	view.AllUsers, view.AllTeams = users, teams
	return view, nil
}
