package services

import (
	"fmt"
	"mime/multipart"
	"path/filepath"
	"strings"

	"github.com/alphabatem/common/context"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/brainforge-app/forge_api/dto"
	"github.com/brainforge-app/forge_api/model"
	"github.com/brainforge-app/forge_api/shared"
)

// UserService handles profile reads and edits on top of SqlService, plus
// avatar storage through StorageService.
type UserService struct {
	context.DefaultService

	sqlSvc     *SqlService
	storageSvc *StorageService
}

const USER_SVC = "user_svc"

const maxAvatarSize = 5 << 20 // 5MB

var allowedAvatarTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
}

func (svc UserService) Id() string {
	return USER_SVC
}

func (svc *UserService) Configure(ctx *context.Context) error {
	return svc.DefaultService.Configure(ctx)
}

func (svc *UserService) Start() error {
	svc.sqlSvc = svc.Service(SQL_SVC).(*SqlService)
	svc.storageSvc = svc.Service(STORAGE_SVC).(*StorageService)
	return nil
}

func (svc *UserService) GetProfile(userID string) (*dto.UserProfileResponse, error) {
	user, err := svc.sqlSvc.GetUser(userID)
	if err != nil {
		return nil, err
	}
	return svc.toProfileResponse(user), nil
}

// UpdateProfile applies partial edits. Username and email changes are checked
// for availability before the write.
func (svc *UserService) UpdateProfile(userID string, req dto.UpdateProfileRequest) (*dto.UserProfileResponse, error) {
	user, err := svc.sqlSvc.GetUser(userID)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}

	if req.Username != "" && req.Username != user.Username {
		available, err := svc.sqlSvc.IsUsernameAvailable(req.Username)
		if err != nil {
			return nil, err
		}
		if !available {
			return nil, shared.NewConflictError(nil, "Username already taken")
		}
		updates["username"] = req.Username
	}

	if req.Email != "" && !strings.EqualFold(req.Email, user.Email) {
		available, err := svc.sqlSvc.IsEmailAvailable(req.Email)
		if err != nil {
			return nil, err
		}
		if !available {
			return nil, shared.NewConflictError(nil, "Email already registered")
		}
		updates["email"] = strings.ToLower(req.Email)
	}

	if req.FullName != "" && req.FullName != user.FullName {
		updates["full_name"] = req.FullName
	}

	if len(updates) > 0 {
		if err := svc.sqlSvc.UpdateUserProfile(userID, updates); err != nil {
			return nil, err
		}

		user, err = svc.sqlSvc.GetUser(userID)
		if err != nil {
			return nil, err
		}

		log.WithFields(log.Fields{
			"user_id": userID,
			"fields":  len(updates),
		}).Info("Profile updated")
	}

	return svc.toProfileResponse(user), nil
}

func (svc *UserService) CheckUsernameAvailability(username string) (*dto.UsernameAvailabilityResponse, error) {
	available, err := svc.sqlSvc.IsUsernameAvailable(username)
	if err != nil {
		return nil, err
	}
	return &dto.UsernameAvailabilityResponse{
		Username:  username,
		Available: available,
	}, nil
}

// UploadAvatar stores the image and points the profile at the new object.
// The previous avatar is removed once the swap succeeds.
func (svc *UserService) UploadAvatar(userID string, fileHeader *multipart.FileHeader) (*dto.AvatarUploadResponse, error) {
	if fileHeader.Size > maxAvatarSize {
		return nil, shared.NewBadRequestError(nil, "Avatar must be 5MB or smaller")
	}

	contentType := fileHeader.Header.Get("Content-Type")
	if !allowedAvatarTypes[contentType] {
		return nil, shared.NewBadRequestError(nil, "Avatar must be a JPEG, PNG or WebP image")
	}

	user, err := svc.sqlSvc.GetUser(userID)
	if err != nil {
		return nil, err
	}

	file, err := fileHeader.Open()
	if err != nil {
		return nil, shared.NewBadRequestError(err, "Failed to read uploaded file")
	}
	defer file.Close()

	objectID, _ := uuid.NewV7()
	objectName := fmt.Sprintf("avatars/%s/%s%s", userID, objectID.String(), filepath.Ext(fileHeader.Filename))

	info, err := svc.storageSvc.UploadAvatar(objectName, file, fileHeader.Size, contentType)
	if err != nil {
		return nil, shared.NewInternalError(err, "Failed to store avatar")
	}

	if err := svc.sqlSvc.UpdateUserAvatar(userID, objectName); err != nil {
		return nil, err
	}

	if user.AvatarObject != "" {
		if err := svc.storageSvc.DeleteAvatar(user.AvatarObject); err != nil {
			log.WithError(err).WithField("object", user.AvatarObject).Warn("Failed to remove old avatar")
		}
	}

	url, err := svc.storageSvc.AvatarURL(objectName)
	if err != nil {
		return nil, shared.NewInternalError(err, "Failed to generate avatar URL")
	}

	log.WithFields(log.Fields{
		"user_id": userID,
		"object":  objectName,
		"size":    info.Size,
	}).Info("Avatar uploaded")

	return &dto.AvatarUploadResponse{
		AvatarURL: url,
		Size:      info.Size,
	}, nil
}

func (svc *UserService) toProfileResponse(user *model.User) *dto.UserProfileResponse {
	resp := &dto.UserProfileResponse{
		ID:          user.ID,
		Username:    user.Username,
		Email:       user.Email,
		FullName:    user.FullName,
		IsActive:    user.IsActive,
		CreatedAt:   user.CreatedAt,
		LastLoginAt: user.LastLoginAt,
	}

	if user.AvatarObject != "" && svc.storageSvc != nil {
		url, err := svc.storageSvc.AvatarURL(user.AvatarObject)
		if err != nil {
			log.WithError(err).WithField("object", user.AvatarObject).Warn("Failed to resolve avatar URL")
		} else {
			resp.AvatarURL = url
		}
	}

	return resp
}
