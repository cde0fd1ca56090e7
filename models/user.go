// models/user.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type User struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	OrganizationID primitive.ObjectID `bson:"organizationId" json:"organizationId"`
	FirstName      string             `bson:"firstName" json:"firstName"`
	LastName       string             `bson:"lastName" json:"lastName"`
	Email          string             `bson:"email" json:"email"`
	JobTitle       string             `bson:"jobTitle,omitempty" json:"jobTitle,omitempty"`
	PasswordHash   string             `bson:"passwordHash" json:"-"`
	Role           string             `bson:"role" json:"role"`
	Active         bool               `bson:"active" json:"active"`
	CreatedAt      time.Time          `bson:"createdAt" json:"createdAt"`
}

// DisplayName is the name notifications address the user by.
func (u *User) DisplayName() string {
	if u.FirstName == "" && u.LastName == "" {
		return u.Email
	}
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}

// RoleBinding assigns an event-visibility role to a user. Exactly one
// active binding per user is expected; zero is tolerated and means the
// user sees nothing.
type RoleBinding struct {
	ID                primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	OrganizationID    primitive.ObjectID `bson:"organizationId" json:"organizationId"`
	UserID            primitive.ObjectID `bson:"userId" json:"userId"`
	Role              string             `bson:"role" json:"role"`
	ViewAllEvents     bool               `bson:"viewAllEvents" json:"viewAllEvents"`
	ViewModuleEvents  bool               `bson:"viewModuleEvents" json:"viewModuleEvents"`
	AccessibleModules []string           `bson:"accessibleModules,omitempty" json:"accessibleModules,omitempty"`
	Active            bool               `bson:"active" json:"active"`
	CreatedAt         time.Time          `bson:"createdAt" json:"createdAt"`
}
