package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"devrush/internal/model"
	"devrush/internal/repository"
)

// DemoPassword is the password of every seeded participant.
const DemoPassword = "DevRush2026"

// DemoMember describes one seeded participant.
type DemoMember struct {
	FullName string
	Email    string
}

// DemoTeam describes one seeded team; the first member leads it.
type DemoTeam struct {
	TeamName       string
	TeamCode       string
	Track          model.Track
	ApprovalStatus model.ApprovalStatus
	CreatedAt      time.Time
	Members        []DemoMember
}

// DemoTeams is the data set loaded by the seed command.
var DemoTeams = []DemoTeam{
	{
		TeamName:       "CodeCrusaders",
		TeamCode:       "ABC123",
		Track:          model.TrackGenAI,
		ApprovalStatus: model.ApprovalPending,
		CreatedAt:      time.Date(2026, 2, 15, 0, 0, 0, 0, time.UTC),
		Members: []DemoMember{
			{FullName: "John Doe", Email: "john@example.com"},
			{FullName: "Jane Smith", Email: "jane@example.com"},
		},
	},
	{
		TeamName:       "BlockBuilders",
		TeamCode:       "XYZ789",
		Track:          model.TrackBlockchain,
		ApprovalStatus: model.ApprovalApproved,
		CreatedAt:      time.Date(2026, 2, 10, 0, 0, 0, 0, time.UTC),
		Members: []DemoMember{
			{FullName: "Alex Kumar", Email: "alex@example.com"},
			{FullName: "Sara Wilson", Email: "sara@example.com"},
			{FullName: "Mike Chen", Email: "mike@example.com"},
		},
	},
	{
		TeamName:       "AutoBots",
		TeamCode:       "DEF456",
		Track:          model.TrackAutomation,
		ApprovalStatus: model.ApprovalPending,
		CreatedAt:      time.Date(2026, 2, 18, 0, 0, 0, 0, time.UTC),
		Members: []DemoMember{
			{FullName: "Emma Brown", Email: "emma@example.com"},
			{FullName: "Chris Lee", Email: "chris@example.com"},
		},
	},
}

// SeedResult counts what a seed run changed.
type SeedResult struct {
	UsersCreated int `json:"users_created"`
	TeamsCreated int `json:"teams_created"`
	TeamsSkipped int `json:"teams_skipped"`
}

// Seeder loads demo teams. Runs are idempotent: existing users are reused and
// teams whose code is taken are skipped.
type Seeder struct {
	store repository.Store
	now   func() time.Time
	log   *zap.Logger
}

// NewSeeder creates a seeder over store.
func NewSeeder(store repository.Store, opts Options) *Seeder {
	opts = opts.withDefaults()
	return &Seeder{store: store, now: opts.Now, log: opts.Logger.Named("seed")}
}

// errSeedConflict aborts a demo team whose member already belongs to a team.
var errSeedConflict = errors.New("demo member already in a team")

// Seed loads teams, creating their members as participants when missing.
func (s *Seeder) Seed(ctx context.Context, teams []DemoTeam) (SeedResult, error) {
	var result SeedResult

	hash, err := bcrypt.GenerateFromPassword([]byte(DemoPassword), bcryptCost)
	if err != nil {
		return result, fmt.Errorf("hash demo password: %w", err)
	}

	for _, demo := range teams {
		if len(demo.Members) == 0 || len(demo.Members) > model.MaxTeamMembers {
			return result, fmt.Errorf("demo team %s has %d members", demo.TeamName, len(demo.Members))
		}

		var created, skipped bool
		var usersCreated int
		err := s.store.WithTransaction(ctx, func(ctx context.Context, tx repository.Store) error {
			created, skipped, usersCreated = false, false, 0

			taken, err := tx.Teams().CodeExists(ctx, demo.TeamCode)
			if err != nil {
				return fmt.Errorf("check team code: %w", err)
			}
			if taken {
				skipped = true
				return nil
			}

			team := &model.Team{
				ID:             uuid.New(),
				TeamName:       demo.TeamName,
				TeamCode:       demo.TeamCode,
				Track:          demo.Track,
				ApprovalStatus: demo.ApprovalStatus,
				CreatedAt:      demo.CreatedAt,
			}
			for i, member := range demo.Members {
				user, fresh, err := s.ensureUser(ctx, tx, member, string(hash))
				if err != nil {
					return err
				}
				if fresh {
					usersCreated++
				}
				if _, err := tx.Teams().FindByMember(ctx, user.ID); err == nil {
					// Roll back members created for this team so far.
					return errSeedConflict
				} else if !errors.Is(err, repository.ErrNotFound) {
					return fmt.Errorf("check membership: %w", err)
				}
				if i == 0 {
					team.LeaderID = user.ID
				}
				team.Members = append(team.Members, model.TeamMember{
					UserID:   user.ID,
					UserName: user.FullName,
					Email:    user.Email,
					IsLeader: i == 0,
					Position: i,
					JoinedAt: demo.CreatedAt,
				})
			}

			if err := tx.Teams().Create(ctx, team); err != nil {
				return fmt.Errorf("create team %s: %w", demo.TeamName, err)
			}
			created = true
			return nil
		})
		if errors.Is(err, errSeedConflict) {
			skipped, usersCreated, err = true, 0, nil
		}
		if err != nil {
			return result, err
		}

		result.UsersCreated += usersCreated
		switch {
		case created:
			result.TeamsCreated++
			s.log.Info("seeded team", zap.String("team_code", demo.TeamCode))
		case skipped:
			result.TeamsSkipped++
			s.log.Info("skipped seeded team", zap.String("team_code", demo.TeamCode))
		}
	}
	return result, nil
}

func (s *Seeder) ensureUser(ctx context.Context, tx repository.Store, member DemoMember, hash string) (*model.User, bool, error) {
	existing, err := tx.Users().FindByEmail(ctx, member.Email)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, false, fmt.Errorf("find user %s: %w", member.Email, err)
	}

	user := &model.User{
		ID:           uuid.New(),
		Email:        member.Email,
		FullName:     member.FullName,
		Phone:        "9876543210",
		College:      "DSCE",
		YearOfStudy:  "3rd",
		PasswordHash: hash,
		CreatedAt:    s.now(),
	}
	if err := tx.Users().Create(ctx, user); err != nil {
		return nil, false, fmt.Errorf("create user %s: %w", member.Email, err)
	}
	return user, true, nil
}
