package identity

import (
	validation "github.com/go-ozzo/ozzo-validation"
)

// RegisterRequest payload
type RegisterRequest struct {
	Email    string `form:"email" json:"email"`
	Username string `form:"username" json:"username"`
	Password string `form:"password" json:"password"`
}

// Validate will run validation rules. Only presence is enforced, there is no
// password composition policy and no email shape check.
func (r RegisterRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(
			&r.Email,
			validation.Required,
		),
		validation.Field(
			&r.Username,
			validation.Required,
		),
		validation.Field(
			&r.Password,
			validation.Required,
		),
	)
}

// LoginRequest payload
type LoginRequest struct {
	Identifier string `form:"identifier" json:"identifier"`
	Password   string `form:"password" json:"password"`
}

// GetIdentifier returns the identifier
func (r LoginRequest) GetIdentifier() string {
	return r.Identifier
}

// GetPassword will return the password
func (r LoginRequest) GetPassword() string {
	return r.Password
}

// Validate will run validation rules
func (r LoginRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(
			&r.Identifier,
			validation.Required,
		),
		validation.Field(
			&r.Password,
			validation.Required,
		),
	)
}
