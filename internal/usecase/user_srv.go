package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"service-marketplace/internal/data/entity"
	"service-marketplace/internal/data/repository"
	"service-marketplace/internal/dto/request"
	"service-marketplace/internal/dto/response"
	"service-marketplace/internal/storage"
	"service-marketplace/pkg/apperror"
	"service-marketplace/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type UserService interface {
	GetProfile(ctx context.Context, userID uuid.UUID) (*response.UserResponse, error)
	UpdateProfile(ctx context.Context, userID uuid.UUID, req *request.UpdateProfileRequest) (*response.UserResponse, error)
	// ChangePassword ends every other session of the user; keepToken stays valid.
	ChangePassword(ctx context.Context, userID uuid.UUID, keepToken string, req *request.ChangePasswordRequest) error
	// UpdatePicture replaces the profile picture. Only images are accepted.
	UpdatePicture(ctx context.Context, userID uuid.UUID, upload request.AttachmentUpload) (*response.UserResponse, error)
}

type userService struct {
	repo  *repository.Repository
	files storage.FileStore
	log   *zap.Logger
}

func NewUserService(repo *repository.Repository, files storage.FileStore, log *zap.Logger) UserService {
	return &userService{
		repo:  repo,
		files: files,
		log:   log.With(zap.String("service", "user")),
	}
}

func (us *userService) GetProfile(ctx context.Context, userID uuid.UUID) (*response.UserResponse, error) {
	user, err := us.findUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	return us.convertUserResponse(user), nil
}

func (us *userService) UpdateProfile(ctx context.Context, userID uuid.UUID, req *request.UpdateProfileRequest) (*response.UserResponse, error) {
	// 1. Normalise then validate
	if req.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*req.Email))
		req.Email = &email
	}
	if req.Phone != nil {
		phone := strings.TrimSpace(*req.Phone)
		req.Phone = &phone
	}
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return nil, apperror.Validation("Validation failed", utils.ValidationDetails(errs))
	}

	// 2. Find user
	user, err := us.findUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	// 3. Email and phone must stay unique
	if req.Email != nil {
		email := *req.Email
		if email != strings.ToLower(user.Email) {
			other, err := us.repo.User.FindByEmail(ctx, email)
			if err != nil {
				return nil, fmt.Errorf("check email: %w", err)
			}
			if other != nil && other.ID != user.ID {
				return nil, apperror.Conflict("Email is already taken")
			}
			user.Email = email
		}
	}
	if req.Phone != nil {
		phone := *req.Phone
		if phone != user.PhoneOrEmpty() {
			other, err := us.repo.User.FindByPhone(ctx, phone)
			if err != nil {
				return nil, fmt.Errorf("check phone: %w", err)
			}
			if other != nil && other.ID != user.ID {
				return nil, apperror.Conflict("Phone number is already taken")
			}
			user.Phone = &phone
		}
	}

	// 4. Update fields
	user.FullName = strings.TrimSpace(req.FullName)
	user.UpdatedAt = time.Now()

	if err := us.save(ctx, user); err != nil {
		return nil, err
	}

	us.log.Info("Profile updated", zap.String("user_id", userID.String()))
	return us.convertUserResponse(user), nil
}

func (us *userService) ChangePassword(ctx context.Context, userID uuid.UUID, keepToken string, req *request.ChangePasswordRequest) error {
	// 1. Validasi
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return apperror.Validation("Validation failed", utils.ValidationDetails(errs))
	}

	// 2. Current password must match
	user, err := us.findUser(ctx, userID)
	if err != nil {
		return err
	}
	if !utils.CheckPasswordHash(req.CurrentPassword, user.PasswordHash) {
		us.log.Warn("Wrong current password", zap.String("user_id", userID.String()))
		return apperror.Validation("Validation failed", map[string]any{
			"current_password": "Incorrect current password",
		})
	}

	// 3. Hash and save
	hash, err := utils.HashPassword(req.NewPassword)
	if err != nil {
		us.log.Error("Failed to hash password", zap.Error(err))
		return fmt.Errorf("hash password: %w", err)
	}
	user.PasswordHash = hash
	user.UpdatedAt = time.Now()
	if err := us.save(ctx, user); err != nil {
		return err
	}

	// 4. Sign out other devices
	revoked, err := us.repo.Session.RevokeOtherSessions(ctx, userID, keepToken)
	if err != nil {
		us.log.Warn("Failed to revoke other sessions", zap.Error(err), zap.String("user_id", userID.String()))
	}

	us.log.Info("Password changed",
		zap.String("user_id", userID.String()),
		zap.Int64("sessions_revoked", revoked),
	)
	return nil
}

func (us *userService) UpdatePicture(ctx context.Context, userID uuid.UUID, upload request.AttachmentUpload) (*response.UserResponse, error) {
	// 1. Validasi
	if upload.Open == nil || upload.Size <= 0 {
		return nil, apperror.Validation("Validation failed", map[string]any{"picture": "Picture is required"})
	}
	if upload.Size > request.MaxProfilePictureBytes {
		return nil, apperror.Validation("Validation failed", map[string]any{"picture": "Picture must be 5 MB or smaller"})
	}

	user, err := us.findUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	// 2. Sniff and store
	file, err := upload.Open()
	if err != nil {
		return nil, fmt.Errorf("open picture: %w", err)
	}
	defer file.Close()

	classified, err := storage.Classify(upload.FileName, file)
	if errors.Is(err, storage.ErrUnsupportedType) || (err == nil && classified.FileType != entity.FileTypeImage) {
		return nil, apperror.Validation("Validation failed", map[string]any{"picture": "Invalid file type. Allowed: Images"})
	}
	if err != nil {
		return nil, err
	}

	ref, err := us.files.Store(ctx, storage.ProfilePicturesFolder, upload.FileName, classified.Body)
	if err != nil {
		us.log.Error("Failed to store picture", zap.Error(err), zap.String("user_id", userID.String()))
		return nil, fmt.Errorf("store picture: %w", err)
	}

	// 3. Save, then drop the old file
	old := user.PictureRef
	user.PictureRef = &ref
	user.UpdatedAt = time.Now()
	if err := us.save(ctx, user); err != nil {
		us.removePicture(ref)
		return nil, err
	}
	if old != nil {
		us.removePicture(*old)
	}

	us.log.Info("Profile picture updated", zap.String("user_id", userID.String()))
	return us.convertUserResponse(user), nil
}

// ==================== HELPER METHODS ====================

func (us *userService) findUser(ctx context.Context, userID uuid.UUID) (*entity.User, error) {
	user, err := us.repo.User.FindByID(ctx, userID)
	if err != nil {
		us.log.Error("Failed to find user", zap.Error(err), zap.String("user_id", userID.String()))
		return nil, fmt.Errorf("find user: %w", err)
	}
	if user == nil {
		return nil, apperror.NotFound("User")
	}
	return user, nil
}

// save maps a unique violation from a concurrent update to Conflict.
func (us *userService) save(ctx context.Context, user *entity.User) error {
	if err := us.repo.User.Update(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return apperror.Conflict("Email or phone number is already taken")
		}
		us.log.Error("Failed to update user", zap.Error(err), zap.String("user_id", user.ID.String()))
		return fmt.Errorf("update user: %w", err)
	}
	return nil
}

func (us *userService) removePicture(ref string) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := us.files.Delete(ctx, storage.ProfilePicturesFolder, ref); err != nil {
		us.log.Warn("Failed to delete picture", zap.Error(err), zap.String("file_ref", ref))
	}
}

func (us *userService) convertUserResponse(user *entity.User) *response.UserResponse {
	resp := response.UserToResponse(user)
	if user.PictureRef != nil && us.files != nil {
		url := us.files.PublicURL(storage.ProfilePicturesFolder, *user.PictureRef)
		resp.ProfilePictureURL = &url
	}
	return resp
}
