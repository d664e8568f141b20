package service

import (
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mamatrack/mamatrack-api/internal/domain"
	"github.com/mamatrack/mamatrack-api/internal/repository"
	"github.com/mamatrack/mamatrack-api/internal/timeutil"
)

var ErrUserNotFound = errors.New("user not found")

// PublicUser is the external view of an account: no password hash, dates
// rendered as YYYY-MM-DD.
type PublicUser struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	Email     string         `json:"email"`
	Gender    *domain.Gender `json:"gender"`
	DueDate   *string        `json:"dueDate"`
	AvatarURL *string        `json:"avatarUrl"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
}

func toPublicUser(user *domain.User) PublicUser {
	var dueDate *string
	if user.DueDate != nil {
		formatted := timeutil.FormatDate(*user.DueDate)
		dueDate = &formatted
	}
	return PublicUser{
		ID:        user.ID,
		Name:      user.Name,
		Email:     user.Email,
		Gender:    user.Gender,
		DueDate:   dueDate,
		AvatarURL: user.AvatarURL,
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.UpdatedAt,
	}
}

// UpdateUserInput distinguishes "not provided" (nil pointer) from "clear
// the field" (pointer to nil/zero) the same way a JSON PATCH body does.
type UpdateUserInput struct {
	Name    *string
	Gender  **domain.Gender
	DueDate **time.Time
}

// AvatarUpload is one validated image file received from the client.
type AvatarUpload struct {
	Filename    string
	ContentType string
	Data        []byte
}

const MaxAvatarBytes = 5 << 20

type UserService struct {
	users   repository.UserRepository
	avatars AvatarStore
}

func NewUserService(users repository.UserRepository, avatars AvatarStore) *UserService {
	return &UserService{users: users, avatars: avatars}
}

func (s *UserService) GetCurrent(userID string) (*PublicUser, error) {
	user, err := s.users.FindByID(userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	view := toPublicUser(user)
	return &view, nil
}

func (s *UserService) Update(userID string, input UpdateUserInput) (*PublicUser, error) {
	user, err := s.users.FindByID(userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	if input.Name != nil {
		user.Name = *input.Name
	}
	if input.Gender != nil {
		user.Gender = *input.Gender
	}
	if input.DueDate != nil {
		user.DueDate = *input.DueDate
	}

	if err := s.users.Update(user); err != nil {
		return nil, err
	}
	view := toPublicUser(user)
	return &view, nil
}

var avatarExtByMime = map[string]string{
	"image/jpeg": ".jpg",
	"image/jpg":  ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
	"image/gif":  ".gif",
}

// UpdateAvatar stores the uploaded image and records its URL on the user.
func (s *UserService) UpdateAvatar(userID string, upload AvatarUpload) (*PublicUser, error) {
	if len(upload.Data) == 0 || len(upload.Data) > MaxAvatarBytes {
		return nil, fmt.Errorf("%w: avatar must be between 1 byte and %d bytes", ErrInvalidAvatar, MaxAvatarBytes)
	}
	ext, ok := avatarExtByMime[strings.ToLower(upload.ContentType)]
	if !ok {
		ext = strings.ToLower(path.Ext(upload.Filename))
	}
	switch ext {
	case ".jpg", ".jpeg", ".png", ".webp", ".gif":
		if ext == ".jpeg" {
			ext = ".jpg"
		}
	default:
		return nil, fmt.Errorf("%w: unsupported image type %q", ErrInvalidAvatar, upload.ContentType)
	}

	user, err := s.users.FindByID(userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	url, err := s.avatars.Save(uuid.NewString()+ext, upload.Data)
	if err != nil {
		return nil, fmt.Errorf("store avatar: %w", err)
	}
	user.AvatarURL = &url
	if err := s.users.Update(user); err != nil {
		return nil, err
	}
	view := toPublicUser(user)
	return &view, nil
}

var ErrInvalidAvatar = errors.New("invalid avatar upload")
