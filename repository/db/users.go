package db

import (
	"context"

	"teamcollab/internal/domain/errors"
	"teamcollab/internal/domain/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog/log"
)

const userColumns = `u.id, u.username, u.email, u.password, u.name, u.role, u.created_at`

const (
	listUsersSQL         = `SELECT ` + userColumns + ` FROM users u ORDER BY u.created_at, u.id`
	getUserByIDSQL       = `SELECT ` + userColumns + ` FROM users u WHERE u.id = $1`
	getUserByUsernameSQL = `SELECT ` + userColumns + ` FROM users u WHERE u.username = $1`
	createUserSQL        = `INSERT INTO users (id, username, email, password, name, role) VALUES ($1, $2, $3, $4, $5, $6) RETURNING created_at`
	updateUserSQL        = `UPDATE users SET username = $1, email = $2, password = $3, name = $4, role = $5 WHERE id = $6`
	deleteUserSQL        = `DELETE FROM users WHERE id = $1`
	usernameExistsSQL    = `SELECT EXISTS (SELECT 1 FROM users WHERE username = $1)`
	emailExistsSQL       = `SELECT EXISTS (SELECT 1 FROM users WHERE email = $1)`
)

func scanUser(row pgx.Row) (*models.User, error) {
	user := &models.User{}
	var role string
	if err := row.Scan(&user.ID, &user.Username, &user.Email, &user.Password, &user.Name, &role, &user.CreatedAt); err != nil {
		return nil, err
	}
	user.Role = models.Role(role)
	return user, nil
}

func (s *Storage) ListUsers(ctx context.Context) ([]models.User, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	rows, err := s.pool.Query(ctx, listUsersSQL)
	if err != nil {
		log.Error().Err(err).Msg("failed to list users")
		return nil, err
	}
	defer rows.Close()

	users := []models.User{}
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			log.Error().Err(err).Msg("failed to read users")
			return nil, err
		}
		users = append(users, *user)
	}
	return users, rows.Err()
}

func (s *Storage) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	user, err := scanUser(s.pool.QueryRow(ctx, getUserByIDSQL, id))
	if err != nil {
		return nil, notFound(err, errors.ErrUserNotFound)
	}
	return user, nil
}

func (s *Storage) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	user, err := scanUser(s.pool.QueryRow(ctx, getUserByUsernameSQL, username))
	if err != nil {
		return nil, notFound(err, errors.ErrUserNotFound)
	}
	return user, nil
}

func (s *Storage) CreateUser(ctx context.Context, user *models.User) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	id := uuid.New().String()
	err := s.pool.QueryRow(ctx, createUserSQL,
		id, user.Username, user.Email, user.Password, user.Name, string(user.Role),
	).Scan(&user.CreatedAt)
	if err != nil {
		log.Error().Err(err).Str("username", user.Username).Msg("failed to create user")
		return uniqueUser(err)
	}
	user.ID = id
	log.Debug().Str("user_id", id).Msg("user stored")
	return nil
}

func (s *Storage) UpdateUser(ctx context.Context, user *models.User) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	ct, err := s.pool.Exec(ctx, updateUserSQL,
		user.Username, user.Email, user.Password, user.Name, string(user.Role), user.ID,
	)
	if err != nil {
		log.Error().Err(err).Str("user_id", user.ID).Msg("failed to update user")
		return notFound(uniqueUser(err), errors.ErrUserNotFound)
	}
	if ct.RowsAffected() == 0 {
		return errors.ErrUserNotFound
	}
	return nil
}

// DeleteUser relies on the schema: memberships and assignments cascade,
// creator and author columns are set to NULL.
func (s *Storage) DeleteUser(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	ct, err := s.pool.Exec(ctx, deleteUserSQL, id)
	if err != nil {
		log.Error().Err(err).Str("user_id", id).Msg("failed to delete user")
		return notFound(err, errors.ErrUserNotFound)
	}
	if ct.RowsAffected() == 0 {
		return errors.ErrUserNotFound
	}
	return nil
}

func (s *Storage) UserExistsByUsername(ctx context.Context, username string) (bool, error) {
	return s.exists(ctx, usernameExistsSQL, username)
}

func (s *Storage) UserExistsByEmail(ctx context.Context, email string) (bool, error) {
	return s.exists(ctx, emailExistsSQL, email)
}

func (s *Storage) exists(ctx context.Context, query string, arg any) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var found bool
	if err := s.pool.QueryRow(ctx, query, arg).Scan(&found); err != nil {
		log.Error().Err(err).Msg("failed to check user existence")
		return false, err
	}
	return found, nil
}

func uniqueUser(err error) error {
	code, constraint := pgCode(err)
	if code != codeUniqueViolation {
		return err
	}
	if constraint == "users_email_key" {
		return errors.ErrEmailTaken
	}
	return errors.ErrUsernameTaken
}
