package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Submission is the single final idea a team records.
type Submission struct {
	ID               uuid.UUID `json:"id" gorm:"type:char(36);primaryKey"`
	TeamID           uuid.UUID `json:"team_id" gorm:"type:char(36);not null;uniqueIndex"`
	ProjectTitle     string    `json:"project_title" gorm:"size:100;not null"`
	Tagline          string    `json:"tagline" gorm:"size:50;not null"`
	ProblemStatement string    `json:"problem_statement" gorm:"type:text;not null"`
	SolutionApproach string    `json:"solution_approach" gorm:"type:text;not null"`
	TechStack        []string  `json:"tech_stack" gorm:"type:text;serializer:json;not null"`
	Novelty          string    `json:"novelty" gorm:"type:text;not null"`
	PresentationURL  string    `json:"presentation_url,omitempty" gorm:"size:500"`
	DemoVideoURL     string    `json:"demo_video_url,omitempty" gorm:"size:500"`
	GithubRepoURL    string    `json:"github_repo_url,omitempty" gorm:"size:500"`
	SubmittedAt      time.Time `json:"submitted_at"`
	IsFinal          bool      `json:"is_final" gorm:"default:true"`
}

// BeforeCreate sets UUID before creating the record.
func (s *Submission) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// SubmissionFields are the participant-provided parts of a submission.
type SubmissionFields struct {
	ProjectTitle     string
	Tagline          string
	ProblemStatement string
	SolutionApproach string
	TechStack        []string
	Novelty          string
	PresentationURL  string
	DemoVideoURL     string
	GithubRepoURL    string
}
