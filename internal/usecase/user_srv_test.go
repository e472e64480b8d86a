package usecase

import (
	"context"
	"testing"
	"time"

	"service-marketplace/internal/data/entity"
	"service-marketplace/internal/dto/request"
	"service-marketplace/internal/storage"
	"service-marketplace/pkg/apperror"
	"service-marketplace/pkg/utils"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newUserFixture() (*memStore, *memFiles, UserService) {
	store := newMemStore()
	files := newMemFiles()
	return store, files, NewUserService(store.repository(), files, zap.NewNop())
}

func TestUserProfile(t *testing.T) {
	store, _, svc := newUserFixture()
	lina := store.addUser("Lina")
	ctx := context.Background()

	profile, err := svc.GetProfile(ctx, lina.ID)
	require.NoError(t, err)
	assert.Equal(t, "Lina", profile.FullName)
	assert.Equal(t, "Lina@example.com", profile.Email)
	assert.Nil(t, profile.ProfilePictureURL)

	phone := "0790000000"
	updated, err := svc.UpdateProfile(ctx, lina.ID, &request.UpdateProfileRequest{FullName: "  Lina Haddad ", Phone: &phone})
	require.NoError(t, err)
	assert.Equal(t, "Lina Haddad", updated.FullName)
	require.NotNil(t, updated.Phone)
	assert.Equal(t, phone, *updated.Phone)
	assert.Equal(t, "Lina@example.com", updated.Email)

	_, err = svc.UpdateProfile(ctx, lina.ID, &request.UpdateProfileRequest{FullName: "L"})
	assert.True(t, apperror.Is(err, apperror.CodeValidation))

	_, err = svc.GetProfile(ctx, uuid.New())
	assert.True(t, apperror.Is(err, apperror.CodeNotFound))
}

func TestUpdateProfile_EmailAndPhoneUnique(t *testing.T) {
	store, _, svc := newUserFixture()
	lina := store.addUser("Lina")
	omar := store.addUser("Omar")
	omarPhone := "0781111111"
	store.users[omar.ID].Phone = &omarPhone
	ctx := context.Background()

	taken := "omar@example.com"
	store.users[omar.ID].Email = taken
	_, err := svc.UpdateProfile(ctx, lina.ID, &request.UpdateProfileRequest{FullName: "Lina", Email: &taken})
	appErr, ok := apperror.As(err)
	require.True(t, ok)
	assert.Equal(t, "Email is already taken", appErr.Message)

	_, err = svc.UpdateProfile(ctx, lina.ID, &request.UpdateProfileRequest{FullName: "Lina", Phone: &omarPhone})
	appErr, ok = apperror.As(err)
	require.True(t, ok)
	assert.Equal(t, "Phone number is already taken", appErr.Message)

	fresh := " Lina.Haddad@Example.com "
	updated, err := svc.UpdateProfile(ctx, lina.ID, &request.UpdateProfileRequest{FullName: "Lina", Email: &fresh})
	require.NoError(t, err)
	assert.Equal(t, "lina.haddad@example.com", updated.Email)

	// Sending the current email again is not a conflict with oneself
	same := "LINA.HADDAD@example.com"
	_, err = svc.UpdateProfile(ctx, lina.ID, &request.UpdateProfileRequest{FullName: "Lina", Email: &same})
	assert.NoError(t, err)

	bad := "not-an-email"
	_, err = svc.UpdateProfile(ctx, lina.ID, &request.UpdateProfileRequest{FullName: "Lina", Email: &bad})
	assert.True(t, apperror.Is(err, apperror.CodeValidation))
}

func TestChangePassword(t *testing.T) {
	store, _, svc := newUserFixture()
	lina := store.addUser("Lina")
	hash, err := utils.HashPassword("old-password")
	require.NoError(t, err)
	store.users[lina.ID].PasswordHash = hash
	ctx := context.Background()

	sessions := store.repository().Session
	current, other := uuid.New(), uuid.New()
	for _, token := range []uuid.UUID{current, other} {
		require.NoError(t, sessions.Create(ctx, &entity.Session{
			BaseSimple: entity.BaseSimple{ID: uuid.New()}, UserID: lina.ID, Token: token, ExpiresAt: time.Now().Add(time.Hour),
		}))
	}

	err = svc.ChangePassword(ctx, lina.ID, current.String(), &request.ChangePasswordRequest{CurrentPassword: "wrong", NewPassword: "new-password"})
	assert.True(t, apperror.Is(err, apperror.CodeValidation))

	err = svc.ChangePassword(ctx, lina.ID, current.String(), &request.ChangePasswordRequest{CurrentPassword: "old-password", NewPassword: "short"})
	assert.True(t, apperror.Is(err, apperror.CodeValidation))

	require.NoError(t, svc.ChangePassword(ctx, lina.ID, current.String(), &request.ChangePasswordRequest{
		CurrentPassword: "old-password", NewPassword: "new-password",
	}))
	assert.True(t, utils.CheckPasswordHash("new-password", store.users[lina.ID].PasswordHash))
	assert.False(t, utils.CheckPasswordHash("old-password", store.users[lina.ID].PasswordHash))

	kept, err := sessions.FindValidSession(ctx, current.String())
	require.NoError(t, err)
	assert.NotNil(t, kept)
	revoked, err := sessions.FindValidSession(ctx, other.String())
	require.NoError(t, err)
	assert.Nil(t, revoked)
}

func TestUpdatePicture(t *testing.T) {
	store, files, svc := newUserFixture()
	lina := store.addUser("Lina")
	ctx := context.Background()

	first, err := svc.UpdatePicture(ctx, lina.ID, upload("me.png", pngBytes()))
	require.NoError(t, err)
	require.NotNil(t, first.ProfilePictureURL)
	assert.Contains(t, *first.ProfilePictureURL, storage.ProfilePicturesFolder)
	firstRef := *store.users[lina.ID].PictureRef

	second, err := svc.UpdatePicture(ctx, lina.ID, upload("me2.png", pngBytes()))
	require.NoError(t, err)
	assert.NotEqual(t, *first.ProfilePictureURL, *second.ProfilePictureURL)
	assert.Contains(t, files.deleted, firstRef)
	assert.Equal(t, 1, files.count())

	profile, err := svc.GetProfile(ctx, lina.ID)
	require.NoError(t, err)
	assert.Equal(t, second.ProfilePictureURL, profile.ProfilePictureURL)
}

func TestUpdatePicture_Rejects(t *testing.T) {
	store, files, svc := newUserFixture()
	lina := store.addUser("Lina")
	ctx := context.Background()

	cases := map[string]request.AttachmentUpload{
		"audio clip": upload("voice.mp3", []byte("ID3\x03\x00\x00\x00\x00\x00\x00")),
		"text file":  upload("notes.txt", []byte("hello")),
		"empty":      {FileName: "me.png"},
		"too large":  {FileName: "me.png", Size: request.MaxProfilePictureBytes + 1, Open: upload("me.png", pngBytes()).Open},
	}
	for name, up := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := svc.UpdatePicture(ctx, lina.ID, up)
			assert.True(t, apperror.Is(err, apperror.CodeValidation))
		})
	}
	assert.Zero(t, files.count())
	assert.Nil(t, store.users[lina.ID].PictureRef)
}
