package dto

// UpdateProfileRequest captures self-service profile changes. The avatar, when
// present, arrives as a multipart file alongside these fields.
type UpdateProfileRequest struct {
	Name  *string `json:"name" form:"name" validate:"omitempty,min=2,max=255"`
	Email *string `json:"email" form:"email" validate:"omitempty,email"`
}

// ChangePasswordRequest captures a password rotation.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=6"`
}
