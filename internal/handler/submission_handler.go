package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"devrush/internal/model"
)

// SubmissionHandler handles idea submission.
type SubmissionHandler struct{}

// NewSubmissionHandler creates a new submission handler.
func NewSubmissionHandler() *SubmissionHandler {
	return &SubmissionHandler{}
}

// SubmitIdeaRequest represents a team's final idea submission.
type SubmitIdeaRequest struct {
	ProjectTitle     string   `json:"project_title" validate:"required,min=5,max=100"`
	Tagline          string   `json:"tagline" validate:"required,min=10,max=50"`
	ProblemStatement string   `json:"problem_statement" validate:"required,min=100,max=2000"`
	SolutionApproach string   `json:"solution_approach" validate:"required,min=150,max=3000"`
	TechStack        []string `json:"tech_stack" validate:"required,min=1,dive,required,max=50"`
	Novelty          string   `json:"novelty" validate:"required,min=50,max=1000"`
	PresentationURL  string   `json:"presentation_url" validate:"omitempty,url"`
	DemoVideoURL     string   `json:"demo_video_url" validate:"omitempty,url"`
	GithubRepoURL    string   `json:"github_repo_url" validate:"omitempty,url"`
	// Confirmation attests that the whole team contributed.
	Confirmation bool `json:"confirmation" validate:"required"`
}

// Submit godoc
// @Summary Submit the team's idea
// @Description Submissions are final; a team submits once.
// @Tags submissions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body SubmitIdeaRequest true "Idea submission"
// @Success 201 {object} model.Submission
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /submissions [post]
func (h *SubmissionHandler) Submit(c echo.Context) error {
	m, err := requireSession(c)
	if err != nil {
		return err
	}

	var req SubmitIdeaRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	submission, err := m.SubmitIdea(c.Request().Context(), model.SubmissionFields{
		ProjectTitle:     req.ProjectTitle,
		Tagline:          req.Tagline,
		ProblemStatement: req.ProblemStatement,
		SolutionApproach: req.SolutionApproach,
		TechStack:        req.TechStack,
		Novelty:          req.Novelty,
		PresentationURL:  req.PresentationURL,
		DemoVideoURL:     req.DemoVideoURL,
		GithubRepoURL:    req.GithubRepoURL,
	})
	if err != nil {
		return errorResponse(err)
	}
	return c.JSON(http.StatusCreated, submission)
}
