package request

// UpdateProfileRequest replaces the name. Email and phone change only when sent.
type UpdateProfileRequest struct {
	FullName string  `json:"full_name" validate:"required,min=2,max=100"`
	Email    *string `json:"email,omitempty" validate:"omitempty,email,max=255"`
	Phone    *string `json:"phone,omitempty" validate:"omitempty,min=7,max=20"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=8,max=72"`
}

// MaxProfilePictureBytes caps a profile picture upload.
const MaxProfilePictureBytes = 5 << 20
