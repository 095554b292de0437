package models

// RoleType defines the backoffice user role type
type RoleType string

const (
	RoleAdmin   RoleType = "ADMIN"
	RoleOfficer RoleType = "OFFICER"
)

// Reviewer is a backoffice account allowed to review applications and
// verify documents. Accounts come from configuration, not from a user table.
type Reviewer struct {
	Username     string   `json:"username"`
	DisplayName  string   `json:"displayName"`
	PasswordHash string   `json:"-"`
	RoleType     RoleType `json:"roleType"`
}
