package domain

import "time"

// User is a member of the support directory.
type User struct {
	ID               string
	Username         string
	Name             string
	Email            string
	IsAccountManager bool
	CreatedAt        time.Time
	UpdatedAt        time.Time
}
