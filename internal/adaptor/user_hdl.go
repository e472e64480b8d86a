package adaptor

import (
	"errors"
	"net/http"

	"service-marketplace/internal/dto/request"
	"service-marketplace/internal/usecase"
	"service-marketplace/pkg/apperror"
	"service-marketplace/pkg/utils"

	"go.uber.org/zap"
)

type UserHandler struct {
	service usecase.UserService
	log     *zap.Logger
}

func NewUserHandler(service usecase.UserService, log *zap.Logger) *UserHandler {
	return &UserHandler{
		service: service,
		log:     log.With(zap.String("handler", "user")),
	}
}

// GetProfile handles GET /api/users/me
func (h *UserHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	profile, err := h.service.GetProfile(r.Context(), userID)
	if err != nil {
		handleServiceError(h.log, w, err, "get profile")
		return
	}

	utils.ResponseSuccess(w, "Profile retrieved successfully", profile)
}

// UpdateProfile handles PUT /api/users/me
func (h *UserHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req request.UpdateProfileRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	profile, err := h.service.UpdateProfile(r.Context(), userID, &req)
	if err != nil {
		handleServiceError(h.log, w, err, "update profile")
		return
	}

	utils.ResponseSuccess(w, "Profile updated successfully", profile)
}

// ChangePassword handles PUT /api/users/change-password
func (h *UserHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	identity, ok := utils.IdentityFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	var req request.ChangePasswordRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.service.ChangePassword(r.Context(), identity.UserID, identity.Token, &req); err != nil {
		handleServiceError(h.log, w, err, "change password")
		return
	}

	utils.ResponseSuccess(w, "Password changed successfully", nil)
}

// UpdatePicture handles PUT /api/users/me/picture (multipart/form-data, field "picture")
func (h *UserHandler) UpdatePicture(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	upload, err := parsePicture(w, r)
	if err != nil {
		handleServiceError(h.log, w, err, "parse picture form")
		return
	}

	profile, err := h.service.UpdatePicture(r.Context(), userID, upload)
	if err != nil {
		handleServiceError(h.log, w, err, "update picture")
		return
	}

	utils.ResponseSuccess(w, "Profile picture updated", profile)
}

// ==================== HELPER METHODS ====================

func parsePicture(w http.ResponseWriter, r *http.Request) (request.AttachmentUpload, error) {
	r.Body = http.MaxBytesReader(w, r.Body, request.MaxProfilePictureBytes+multipartOverhead)
	if err := r.ParseMultipartForm(multipartOverhead); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return request.AttachmentUpload{}, apperror.Validation("Validation failed", map[string]any{
				"picture": "Picture must be 5 MB or smaller",
			})
		}
		return request.AttachmentUpload{}, apperror.Validation("Request must be multipart/form-data", nil)
	}

	files := r.MultipartForm.File["picture"]
	if len(files) == 0 {
		return request.AttachmentUpload{}, apperror.Validation("Validation failed", map[string]any{
			"picture": "Picture is required",
		})
	}

	fh := files[0]
	return request.AttachmentUpload{FileName: fh.Filename, Size: fh.Size, Open: openPart(fh)}, nil
}
