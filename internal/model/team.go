package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MaxTeamMembers is the largest team allowed, leader included.
const MaxTeamMembers = 4

// Track is the competition category a team enters.
type Track string

const (
	TrackGenAI          Track = "GenAI"
	TrackBlockchain     Track = "Blockchain"
	TrackAutomation     Track = "Automation"
	TrackOpenInnovation Track = "OpenInnovation"
)

// Tracks lists every valid track in display order.
var Tracks = []Track{TrackGenAI, TrackBlockchain, TrackAutomation, TrackOpenInnovation}

// Valid reports whether t is one of the fixed tracks.
func (t Track) Valid() bool {
	for _, v := range Tracks {
		if v == t {
			return true
		}
	}
	return false
}

// ApprovalStatus is the organizer-controlled state of a team.
type ApprovalStatus string

const (
	ApprovalPending  ApprovalStatus = "pending"
	ApprovalApproved ApprovalStatus = "approved"
	ApprovalRejected ApprovalStatus = "rejected"
)

// Valid reports whether s is pending, approved or rejected.
func (s ApprovalStatus) Valid() bool {
	switch s {
	case ApprovalPending, ApprovalApproved, ApprovalRejected:
		return true
	}
	return false
}

// Team represents one competing group.
type Team struct {
	ID             uuid.UUID      `json:"id" gorm:"type:char(36);primaryKey"`
	TeamName       string         `json:"team_name" gorm:"size:50;not null"`
	TeamCode       string         `json:"team_code" gorm:"uniqueIndex;size:6;not null"`
	LeaderID       uuid.UUID      `json:"leader_id" gorm:"type:char(36);not null;index"`
	Track          Track          `json:"track" gorm:"type:varchar(20);not null;index"`
	ApprovalStatus ApprovalStatus `json:"approval_status" gorm:"type:varchar(20);not null;default:'pending';index"`
	CreatedAt      time.Time      `json:"created_at" gorm:"index"`

	// Relations
	Members []TeamMember `json:"members" gorm:"foreignKey:TeamID;constraint:OnDelete:CASCADE"`
}

// BeforeCreate sets UUID before creating the record.
func (t *Team) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

// HasMember reports whether userID is on the team.
func (t *Team) HasMember(userID uuid.UUID) bool {
	for _, m := range t.Members {
		if m.UserID == userID {
			return true
		}
	}
	return false
}

// IsFull reports whether the team has reached MaxTeamMembers.
func (t *Team) IsFull() bool {
	return len(t.Members) >= MaxTeamMembers
}

// TeamMember is a membership row embedded in a team. A user holds at most one.
type TeamMember struct {
	ID       uint      `json:"-" gorm:"primaryKey"`
	TeamID   uuid.UUID `json:"-" gorm:"type:char(36);not null;index"`
	UserID   uuid.UUID `json:"user_id" gorm:"type:char(36);not null;uniqueIndex"`
	UserName string    `json:"user_name" gorm:"size:100;not null"`
	Email    string    `json:"email" gorm:"size:255;not null"`
	IsLeader bool      `json:"is_leader" gorm:"default:false"`
	Position int       `json:"-" gorm:"not null;default:0"`
	JoinedAt time.Time `json:"joined_at"`
}

// TeamStats summarizes registrations for the organizer dashboard.
type TeamStats struct {
	TotalRegistrations int `json:"total_registrations"`
	TeamsFormed        int `json:"teams_formed"`
	PendingApprovals   int `json:"pending_approvals"`
	ApprovedTeams      int `json:"approved_teams"`
	RejectedTeams      int `json:"rejected_teams"`
	Submissions        int `json:"submissions"`
}
