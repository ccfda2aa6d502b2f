package service

import (
	"context"
	"strings"

	"teamcollab/internal/auth"
	"teamcollab/internal/domain/errors"
	"teamcollab/internal/domain/models"

	"github.com/rs/zerolog/log"
)

type UserService struct {
	users UserRepository
}

func NewUserService(users UserRepository) *UserService {
	return &UserService{users: users}
}

// UserUpdate carries the mutable user fields. Empty Email or Role keep the
// stored value.
type UserUpdate struct {
	Name  string
	Email string
	Role  models.Role
}

func (s *UserService) GetAll(ctx context.Context) ([]models.User, error) {
	return s.users.ListUsers(ctx)
}

func (s *UserService) GetByID(ctx context.Context, id string) (*models.User, error) {
	return s.users.GetUserByID(ctx, id)
}

func (s *UserService) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.users.GetUserByUsername(ctx, username)
}

// Create stores a new user. user.Password holds the plain password on input
// and the bcrypt hash on return.
func (s *UserService) Create(ctx context.Context, user *models.User) (*models.User, error) {
	user.Username = strings.TrimSpace(user.Username)
	user.Email = strings.TrimSpace(user.Email)
	if user.Username == "" {
		return nil, errors.ErrInvalidUsername
	}
	if user.Email == "" {
		return nil, errors.ErrInvalidEmail
	}
	if user.Password == "" {
		return nil, errors.ErrInvalidPassword
	}
	if user.Role == "" {
		user.Role = models.RoleMember
	}
	if !user.Role.Valid() {
		return nil, errors.ErrInvalidRole
	}

	taken, err := s.users.UserExistsByUsername(ctx, user.Username)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, errors.ErrUsernameTaken
	}
	taken, err = s.users.UserExistsByEmail(ctx, user.Email)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, errors.ErrEmailTaken
	}

	hash, err := auth.HashPassword(user.Password)
	if err != nil {
		return nil, err
	}
	user.Password = hash

	if err := s.users.CreateUser(ctx, user); err != nil {
		return nil, err
	}
	log.Info().Str("user_id", user.ID).Str("username", user.Username).Msg("user created")
	return user, nil
}

func (s *UserService) Update(ctx context.Context, id string, fields UserUpdate) (*models.User, error) {
	user, err := s.users.GetUserByID(ctx, id)
	if err != nil {
		return nil, err
	}

	user.Name = fields.Name
	if email := strings.TrimSpace(fields.Email); email != "" && email != user.Email {
		taken, err := s.users.UserExistsByEmail(ctx, email)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, errors.ErrEmailTaken
		}
		user.Email = email
	}
	if fields.Role != "" {
		if !fields.Role.Valid() {
			return nil, errors.ErrInvalidRole
		}
		user.Role = fields.Role
	}

	if err := s.users.UpdateUser(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *UserService) Delete(ctx context.Context, id string) error {
	if err := s.users.DeleteUser(ctx, id); err != nil {
		return err
	}
	log.Info().Str("user_id", id).Msg("user deleted")
	return nil
}

func (s *UserService) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	return s.users.UserExistsByUsername(ctx, username)
}

func (s *UserService) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	return s.users.UserExistsByEmail(ctx, email)
}

// Authenticate returns the user when the password matches. Unknown users and
// wrong passwords yield the same error.
func (s *UserService) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	user, err := s.users.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, errors.ErrUserNotFound) {
			return nil, errors.ErrInvalidCredentials
		}
		return nil, err
	}
	if err := auth.CheckPassword(user.Password, password); err != nil {
		return nil, err
	}
	return user, nil
}
