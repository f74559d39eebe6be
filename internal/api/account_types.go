package api

import "quill/internal/models"

// RegisterRequest is the public sign-up form.
type RegisterRequest struct {
	Username  string `json:"username" validate:"required,username"`
	Password  string `json:"password" validate:"required,min=8"`
	Email     string `json:"email" validate:"required,email"`
	FirstName string `json:"first_name,omitempty" validate:"max=150"`
	LastName  string `json:"last_name,omitempty" validate:"max=150"`
	Phone     string `json:"phone,omitempty" validate:"omitempty,e164"`
	Address   string `json:"address,omitempty" validate:"max=500"`
}

// ProfileUpdateRequest patches the caller's profile. A present empty avatar clears it.
type ProfileUpdateRequest struct {
	Name    *string `json:"name,omitempty" validate:"omitempty,max=100"`
	Avatar  *string `json:"avatar,omitempty"`
	Phone   *string `json:"phone,omitempty" validate:"omitempty,e164"`
	Email   *string `json:"email,omitempty" validate:"omitempty,email"`
	Address *string `json:"address,omitempty" validate:"omitempty,max=500"`
}

// AdminUserCreateRequest creates a user with an explicit role.
type AdminUserCreateRequest struct {
	Username  string `json:"username" validate:"required,username"`
	Password  string `json:"password" validate:"required,min=8"`
	Email     string `json:"email,omitempty" validate:"omitempty,email"`
	FirstName string `json:"first_name,omitempty" validate:"max=150"`
	LastName  string `json:"last_name,omitempty" validate:"max=150"`
	Role      string `json:"role,omitempty"`
}

// AdminUserUpdateRequest patches a user.
type AdminUserUpdateRequest struct {
	Email     *string `json:"email,omitempty" validate:"omitempty,email"`
	FirstName *string `json:"first_name,omitempty" validate:"omitempty,max=150"`
	LastName  *string `json:"last_name,omitempty" validate:"omitempty,max=150"`
	Password  *string `json:"password,omitempty" validate:"omitempty,min=8"`
	Role      *string `json:"role,omitempty"`
	Disabled  *bool   `json:"disabled,omitempty"`
}

// CompanyRequest creates or patches the company record.
type CompanyRequest struct {
	Name    *string `json:"name,omitempty" validate:"omitempty,min=1,max=100"`
	Logo    *string `json:"logo,omitempty"`
	Phone   *string `json:"phone,omitempty" validate:"omitempty,e164"`
	Email   *string `json:"email,omitempty" validate:"omitempty,email"`
	Address *string `json:"address,omitempty" validate:"omitempty,max=500"`
}

// ContactRequest is the public contact form.
type ContactRequest struct {
	Name    string `json:"name" validate:"required,max=100"`
	Email   string `json:"email" validate:"required,email"`
	Phone   string `json:"phone,omitempty" validate:"omitempty,e164"`
	Message string `json:"message" validate:"required,max=5000"`
}

// ContactResponse acknowledges a contact submission.
type ContactResponse struct {
	Contact models.Contact `json:"contact"`
	Message string         `json:"message"`
}

// DeleteResponse reports a physical delete outside the audited tables.
type DeleteResponse struct {
	ID          string   `json:"id"`
	Deleted     bool     `json:"deleted"`
	PurgedFiles []string `json:"purged_files"`
}
