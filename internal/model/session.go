package model

// SessionView is the caller's derived view of the current session.
// AllUsers and AllTeams are only populated for administrators.
type SessionView struct {
	User       *User       `json:"user"`
	Team       *Team       `json:"team"`
	Submission *Submission `json:"submission"`
	AllUsers   []User      `json:"all_users,omitempty"`
	AllTeams   []Team      `json:"all_teams,omitempty"`
}
