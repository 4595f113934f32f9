package domain

import "strconv"

// Identity is the authenticated user's minimal profile plus access token.
type Identity struct {
	ID       int    `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Token    string `json:"-"`
}

// UserID returns the id as a string for logs and event keys.
func (i Identity) UserID() string {
	return strconv.Itoa(i.ID)
}

// User is the public part of an account.
type User struct {
	ID        int    `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
}

// Profile holds the shipping details attached to an account.
type Profile struct {
	ID          int    `json:"id"`
	User        User   `json:"user"`
	Address     string `json:"address"`
	PhoneNumber string `json:"phone_number"`
	City        string `json:"city"`
	Country     string `json:"country"`
	PostalCode  string `json:"postal_code"`
}

// ProfileUpdate carries the editable profile fields.
type ProfileUpdate struct {
	Address     string `json:"address" validate:"max=500"`
	PhoneNumber string `json:"phone_number" validate:"max=20"`
	City        string `json:"city" validate:"max=100"`
	Country     string `json:"country" validate:"max=100"`
	PostalCode  string `json:"postal_code" validate:"max=20"`
}

// Registration is a new-account request.
type Registration struct {
	Username        string `json:"username" validate:"required,max=150"`
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required,min=8"`
	PasswordConfirm string `json:"password_confirm" validate:"required,eqfield=Password"`
	FirstName       string `json:"first_name,omitempty" validate:"max=150"`
	LastName        string `json:"last_name,omitempty" validate:"max=150"`
}
