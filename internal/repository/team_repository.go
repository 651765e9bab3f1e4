package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"devrush/internal/model"
)

// TeamRepository defines team and membership persistence operations.
type TeamRepository interface {
	Create(ctx context.Context, team *model.Team) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Team, error)
	// FindByIDForUpdate locks the team row until the surrounding transaction ends.
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.Team, error)
	FindByCode(ctx context.Context, code string) (*model.Team, error)
	FindByMember(ctx context.Context, userID uuid.UUID) (*model.Team, error)
	CodeExists(ctx context.Context, code string) (bool, error)
	AddMember(ctx context.Context, member *model.TeamMember) error
	RemoveMember(ctx context.Context, teamID, userID uuid.UUID) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status model.ApprovalStatus) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context) ([]model.Team, error)
	ListByStatus(ctx context.Context, status model.ApprovalStatus) ([]model.Team, error)
}

type teamRepository struct {
	db *gorm.DB
}

// NewTeamRepository creates a new team repository.
func NewTeamRepository(db *gorm.DB) TeamRepository {
	return &teamRepository{db: db}
}

func orderedMembers(db *gorm.DB) *gorm.DB {
	return db.Order("position ASC")
}

func (r *teamRepository) query(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Preload("Members", orderedMembers)
}

// Create inserts the team together with its initial members.
func (r *teamRepository) Create(ctx context.Context, team *model.Team) error {
	return translate(r.db.WithContext(ctx).Create(team).Error)
}

func (r *teamRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Team, error) {
	var team model.Team
	if err := r.query(ctx).Where("id = ?", id).First(&team).Error; err != nil {
		return nil, translate(err)
	}
	return &team, nil
}

func (r *teamRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.Team, error) {
	var team model.Team
	if err := r.query(ctx).Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).First(&team).Error; err != nil {
		return nil, translate(err)
	}
	return &team, nil
}

// FindByCode matches the stored code exactly; callers upper-case input first.
func (r *teamRepository) FindByCode(ctx context.Context, code string) (*model.Team, error) {
	var team model.Team
	if err := r.query(ctx).Where("team_code = ?", code).First(&team).Error; err != nil {
		return nil, translate(err)
	}
	return &team, nil
}

func (r *teamRepository) FindByMember(ctx context.Context, userID uuid.UUID) (*model.Team, error) {
	var member model.TeamMember
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&member).Error; err != nil {
		return nil, translate(err)
	}
	return r.FindByID(ctx, member.TeamID)
}

func (r *teamRepository) CodeExists(ctx context.Context, code string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&model.Team{}).Where("team_code = ?", code).Count(&count).Error; err != nil {
		return false, translate(err)
	}
	return count > 0, nil
}

func (r *teamRepository) AddMember(ctx context.Context, member *model.TeamMember) error {
	return translate(r.db.WithContext(ctx).Create(member).Error)
}

func (r *teamRepository) RemoveMember(ctx context.Context, teamID, userID uuid.UUID) error {
	res := r.db.WithContext(ctx).Where("team_id = ? AND user_id = ?", teamID, userID).Delete(&model.TeamMember{})
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *teamRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status model.ApprovalStatus) error {
	return translate(r.db.WithContext(ctx).Model(&model.Team{}).
		Where("id = ?", id).
		Update("approval_status", status).Error)
}

// Delete removes the team and every membership row it owns.
func (r *teamRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if err := r.db.WithContext(ctx).Where("team_id = ?", id).Delete(&model.TeamMember{}).Error; err != nil {
		return translate(err)
	}
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Team{})
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// List returns teams in creation order.
func (r *teamRepository) List(ctx context.Context) ([]model.Team, error) {
	var teams []model.Team
	if err := r.query(ctx).Order("created_at ASC").Find(&teams).Error; err != nil {
		return nil, translate(err)
	}
	return teams, nil
}

func (r *teamRepository) ListByStatus(ctx context.Context, status model.ApprovalStatus) ([]model.Team, error) {
	var teams []model.Team
	if err := r.query(ctx).Where("approval_status = ?", status).Order("created_at ASC").Find(&teams).Error; err != nil {
		return nil, translate(err)
	}
	return teams, nil
}
