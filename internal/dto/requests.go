package dto

// LoginRequest represents an email/password login request
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// GoogleLoginRequest represents an OAuth code exchange login request
type GoogleLoginRequest struct {
	Code string `json:"code" binding:"required"`
}

// SignupRequest represents a signup request
type SignupRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	FullName string `json:"full_name" binding:"required"`
}

// RefreshRequest represents a token refresh request
type RefreshRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

// PasswordResetRequest represents a password reset request
type PasswordResetRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// ChangePasswordRequest presents a reset token with the new password
type ChangePasswordRequest struct {
	Token       string `json:"token" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,min=8"`
}

// SendActivationRequest asks for a new activation token
type SendActivationRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// ActivationRequest presents an activation token
type ActivationRequest struct {
	ActivationToken string `json:"activationToken" binding:"required"`
}

// CompanyLookupRequest resolves a tenant by slug or domain
type CompanyLookupRequest struct {
	Slug   string `json:"slug"`
	Domain string `json:"domain"`
}

// CreateUserRequest is the admin user-creation payload
type CreateUserRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	FullName string `json:"full_name" binding:"required"`
	Type     string `json:"type"`
}

// UpdateUserRequest is the admin user-update payload; omitted fields are
// left unchanged
type UpdateUserRequest struct {
	FullName *string `json:"full_name"`
	Type     *string `json:"type"`
	IsActive *bool   `json:"is_active"`
	IsBanned *bool   `json:"is_banned"`
}

// UserInfo represents user information in responses
type UserInfo struct {
	ID        string `json:"id"`
	CompanyID string `json:"company_id"`
	Email     string `json:"email"`
	FullName  string `json:"full_name"`
	Type      string `json:"type"`
	IsActive  bool   `json:"is_active"`
	IsBanned  bool   `json:"is_banned"`
}

// TokenInfo carries an issued token pair
type TokenInfo struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// LoginResponse is the success shape for login endpoints
type LoginResponse struct {
	User  UserInfo  `json:"user"`
	Token TokenInfo `json:"token"`
}

// RefreshResponse is the success shape for the refresh endpoint
type RefreshResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// Pagination describes a user listing page
type Pagination struct {
	Page       int    `json:"page"`
	PerPage    int    `json:"per_page"`
	Total      int    `json:"total"`
	TotalPages int    `json:"total_pages"`
	SortField  string `json:"sort_field"`
	SortOrder  string `json:"sort_order"`
}

// UserListResponse is the admin user listing shape
type UserListResponse struct {
	Data       []UserInfo `json:"data"`
	Pagination Pagination `json:"pagination"`
}

// SuccessResponse represents a success response
type SuccessResponse struct {
	Message string `json:"message"`
}

// ErrorResponse is the failure envelope. Key is the stable identifier
// clients localize against.
type ErrorResponse struct {
	Error string `json:"error"`
	Key   string `json:"key"`
}
