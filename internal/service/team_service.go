package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	apperrors "devrush/internal/errors"
	"devrush/internal/model"
	"devrush/internal/repository"
)

const (
	codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	codeLength   = 6
	// maxCodeAttempts bounds retries; with 36^6 codes a collision streak this long means a broken Random.
	maxCodeAttempts = 64
)

var codePattern = regexp.MustCompile(`^[A-Z0-9]{6}$`)

// NormalizeCode trims and upper-cases user-entered join codes.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// ValidCode reports whether code has the join code shape.
func ValidCode(code string) bool {
	return codePattern.MatchString(code)
}

// TeamService is the team registry: formation, membership and approval.
type TeamService interface {
	FindByID(ctx context.Context, id uuid.UUID) (*model.Team, error)
	FindByCode(ctx context.Context, code string) (*model.Team, error)
	FindByMember(ctx context.Context, userID uuid.UUID) (*model.Team, error)
	Create(ctx context.Context, leader *model.User, name string, track model.Track) (*model.Team, error)
	Join(ctx context.Context, code string, user *model.User) (*model.Team, error)
	Leave(ctx context.Context, teamID, userID uuid.UUID) error
	SetApproval(ctx context.Context, teamID uuid.UUID, status model.ApprovalStatus) error
	ListAll(ctx context.Context) ([]model.Team, error)
	ListByStatus(ctx context.Context, status model.ApprovalStatus) ([]model.Team, error)
	Stats(ctx context.Context) (model.TeamStats, error)
}

type teamService struct {
	store  repository.Store
	random Random
	now    func() time.Time
	log    *zap.Logger
}

// NewTeamService creates a new team service.
func NewTeamService(store repository.Store, opts Options) TeamService {
	opts = opts.withDefaults()
	return &teamService{
		store:  store,
		random: opts.Random,
		now:    opts.Now,
		log:    opts.Logger.Named("teams"),
	}
}

// lookup converts repository misses into nil, nil.
func lookup(team *model.Team, err error) (*model.Team, error) {
	if errors.Is(err, repository.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find team: %w", err)
	}
	return team, nil
}

func (s *teamService) FindByID(ctx context.Context, id uuid.UUID) (*model.Team, error) {
	return lookup(s.store.Teams().FindByID(ctx, id))
}

// FindByCode is case-sensitive; codes are stored upper-case.
func (s *teamService) FindByCode(ctx context.Context, code string) (*model.Team, error) {
	return lookup(s.store.Teams().FindByCode(ctx, code))
}

func (s *teamService) FindByMember(ctx context.Context, userID uuid.UUID) (*model.Team, error) {
	return lookup(s.store.Teams().FindByMember(ctx, userID))
}

func (s *teamService) generateCode() string {
	var b strings.Builder
	b.Grow(codeLength)
	for i := 0; i < codeLength; i++ {
		b.WriteByte(codeAlphabet[s.random.IntN(len(codeAlphabet))])
	}
	return b.String()
}

// uniqueCode draws codes until one is unused by the teams visible in tx.
func (s *teamService) uniqueCode(ctx context.Context, teams repository.TeamRepository) (string, error) {
	for attempt := 0; attempt < maxCodeAttempts; attempt++ {
		code := s.generateCode()
		exists, err := teams.CodeExists(ctx, code)
		if err != nil {
			return "", fmt.Errorf("check team code: %w", err)
		}
		if !exists {
			return code, nil
		}
	}
	return "", apperrors.ErrCodeExhausted
}

// Create forms a pending team led by leader with a fresh join code.
func (s *teamService) Create(ctx context.Context, leader *model.User, name string, track model.Track) (*model.Team, error) {
	if leader == nil {
		return nil, apperrors.ErrNotAuthenticated
	}
	if !track.Valid() {
		return nil, apperrors.ErrInvalidTrack
	}

	var team *model.Team
	err := s.store.WithTransaction(ctx, func(ctx context.Context, tx repository.Store) error {
		_, err := tx.Teams().FindByMember(ctx, leader.ID)
		if err == nil {
			return apperrors.ErrAlreadyInTeam
		}
		if !errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("check membership: %w", err)
		}

		code, err := s.uniqueCode(ctx, tx.Teams())
		if err != nil {
			return err
		}

		now := s.now()
		team = &model.Team{
			ID:             uuid.New(),
			TeamName:       strings.TrimSpace(name),
			TeamCode:       code,
			LeaderID:       leader.ID,
			Track:          track,
			ApprovalStatus: model.ApprovalPending,
			CreatedAt:      now,
			Members: []model.TeamMember{{
				UserID:   leader.ID,
				UserName: leader.FullName,
				Email:    leader.Email,
				IsLeader: true,
				Position: 0,
				JoinedAt: now,
			}},
		}
		if err := tx.Teams().Create(ctx, team); err != nil {
			return fmt.Errorf("create team: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("team created",
		zap.String("team_id", team.ID.String()),
		zap.String("leader_id", leader.ID.String()),
		zap.String("track", string(track)),
	)
	return team, nil
}

// Join appends user to the team holding code.
func (s *teamService) Join(ctx context.Context, code string, user *model.User) (*model.Team, error) {
	if user == nil {
		return nil, apperrors.ErrNotAuthenticated
	}

	var joined *model.Team
	err := s.store.WithTransaction(ctx, func(ctx context.Context, tx repository.Store) error {
		found, err := tx.Teams().FindByCode(ctx, code)
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.ErrTeamNotFound
		}
		if err != nil {
			return fmt.Errorf("find team by code: %w", err)
		}

		team, err := tx.Teams().FindByIDForUpdate(ctx, found.ID)
		if err != nil {
			return fmt.Errorf("lock team: %w", err)
		}

		_, err = tx.Teams().FindByMember(ctx, user.ID)
		if err == nil {
			return apperrors.ErrAlreadyInTeam
		}
		if !errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("check membership: %w", err)
		}

		if team.IsFull() {
			return apperrors.ErrTeamFull
		}

		position := 0
		if n := len(team.Members); n > 0 {
			position = team.Members[n-1].Position + 1
		}
		member := &model.TeamMember{
			TeamID:   team.ID,
			UserID:   user.ID,
			UserName: user.FullName,
			Email:    user.Email,
			IsLeader: false,
			Position: position,
			JoinedAt: s.now(),
		}
		if err := tx.Teams().AddMember(ctx, member); err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				return apperrors.ErrAlreadyInTeam
			}
			return fmt.Errorf("add member: %w", err)
		}

		joined, err = tx.Teams().FindByID(ctx, team.ID)
		if err != nil {
			return fmt.Errorf("reload team: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("member joined",
		zap.String("team_id", joined.ID.String()),
		zap.String("user_id", user.ID.String()),
		zap.Int("members", len(joined.Members)),
	)
	return joined, nil
}

// Leave removes userID from the team. A departing leader disbands the team,
// taking every membership and the team's submission with it.
func (s *teamService) Leave(ctx context.Context, teamID, userID uuid.UUID) error {
	disbanded := false
	err := s.store.WithTransaction(ctx, func(ctx context.Context, tx repository.Store) error {
		team, err := tx.Teams().FindByIDForUpdate(ctx, teamID)
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.ErrTeamNotFound
		}
		if err != nil {
			return fmt.Errorf("lock team: %w", err)
		}
		if !team.HasMember(userID) {
			return apperrors.ErrNotTeamMember
		}

		if team.LeaderID != userID {
			if err := tx.Teams().RemoveMember(ctx, teamID, userID); err != nil {
				return fmt.Errorf("remove member: %w", err)
			}
			return nil
		}

		disbanded = true
		if err := tx.Submissions().DeleteByTeam(ctx, teamID); err != nil {
			return fmt.Errorf("delete submission: %w", err)
		}
		if err := tx.Teams().Delete(ctx, teamID); err != nil {
			return fmt.Errorf("delete team: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	if disbanded {
		s.log.Info("team disbanded", zap.String("team_id", teamID.String()), zap.String("leader_id", userID.String()))
	} else {
		s.log.Info("member left", zap.String("team_id", teamID.String()), zap.String("user_id", userID.String()))
	}
	return nil
}

// SetApproval overwrites the team's approval status. Setting the current status again is a no-op.
func (s *teamService) SetApproval(ctx context.Context, teamID uuid.UUID, status model.ApprovalStatus) error {
	if !status.Valid() {
		return apperrors.ErrInvalidApprovalStatus
	}

	err := s.store.WithTransaction(ctx, func(ctx context.Context, tx repository.Store) error {
		if _, err := tx.Teams().FindByIDForUpdate(ctx, teamID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return apperrors.ErrTeamNotFound
			}
			return fmt.Errorf("lock team: %w", err)
		}
		if err := tx.Teams().UpdateStatus(ctx, teamID, status); err != nil {
			return fmt.Errorf("update approval status: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.log.Info("team approval changed", zap.String("team_id", teamID.String()), zap.String("status", string(status)))
	return nil
}

func (s *teamService) ListAll(ctx context.Context) ([]model.Team, error) {
	teams, err := s.store.Teams().List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list teams: %w", err)
	}
	return teams, nil
}

func (s *teamService) ListByStatus(ctx context.Context, status model.ApprovalStatus) ([]model.Team, error) {
	if !status.Valid() {
		return nil, apperrors.ErrInvalidApprovalStatus
	}
	teams, err := s.store.Teams().ListByStatus(ctx, status)
	if err != nil {
		return nil, fmt.Errorf("list teams: %w", err)
	}
	return teams, nil
}

// Stats counts registrations, teams per approval status and submissions.
func (s *teamService) Stats(ctx context.Context) (model.TeamStats, error) {
	var stats model.TeamStats

	users, err := s.store.Users().List(ctx)
	if err != nil {
		return stats, fmt.Errorf("list users: %w", err)
	}
	teams, err := s.store.Teams().List(ctx)
	if err != nil {
		return stats, fmt.Errorf("list teams: %w", err)
	}
	submissions, err := s.store.Submissions().List(ctx)
	if err != nil {
		return stats, fmt.Errorf("list submissions: %w", err)
	}

	stats.TotalRegistrations = len(users)
	stats.TeamsFormed = len(teams)
	stats.Submissions = len(submissions)
	for _, t := range teams {
		switch t.ApprovalStatus {
		case model.ApprovalPending:
			stats.PendingApprovals++
		case model.ApprovalApproved:
			stats.ApprovedTeams++
		case model.ApprovalRejected:
			stats.RejectedTeams++
		}
	}
	return stats, nil
}
