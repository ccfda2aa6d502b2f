package service

import (
	"context"
	"strings"

	"teamcollab/internal/domain/errors"
	"teamcollab/internal/domain/models"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

type ProjectService struct {
	projects ProjectRepository
	users    UserRepository
}

func NewProjectService(projects ProjectRepository, users UserRepository) *ProjectService {
	return &ProjectService{projects: projects, users: users}
}

func (s *ProjectService) GetAll(ctx context.Context) ([]models.Project, error) {
	return s.projects.ListProjects(ctx)
}

func (s *ProjectService) GetByID(ctx context.Context, id string) (*models.Project, error) {
	return s.projects.GetProjectByID(ctx, id)
}

func (s *ProjectService) GetByMember(ctx context.Context, userID string) ([]models.Project, error) {
	return s.projects.ListProjectsByMember(ctx, userID)
}

func (s *ProjectService) GetByCreator(ctx context.Context, userID string) ([]models.Project, error) {
	return s.projects.ListProjectsByCreator(ctx, userID)
}

// SearchByName matches a case-insensitive substring of the project name.
func (s *ProjectService) SearchByName(ctx context.Context, name string) ([]models.Project, error) {
	return s.projects.SearchProjectsByName(ctx, name)
}

// Create stores project with creatorID as its creator. The creator is always
// added to the members, whatever the payload carried.
func (s *ProjectService) Create(ctx context.Context, project *models.Project, creatorID string) (*models.Project, error) {
	project.Name = strings.TrimSpace(project.Name)
	if project.Name == "" {
		return nil, errors.ErrInvalidInput
	}

	creator, err := s.users.GetUserByID(ctx, creatorID)
	if err != nil {
		return nil, err
	}

	project.CreatedByID = creator.ID
	project.AddMember(*creator)

	if err := s.projects.CreateProject(ctx, project); err != nil {
		return nil, err
	}
	log.Info().Str("project_id", project.ID).Str("creator_id", creator.ID).Msg("project created")
	return project, nil
}

// Update overwrites name and color. Membership and creator are untouched.
func (s *ProjectService) Update(ctx context.Context, id string, fields *models.Project) (*models.Project, error) {
	project, err := s.projects.GetProjectByID(ctx, id)
	if err != nil {
		return nil, err
	}

	name := strings.TrimSpace(fields.Name)
	if name == "" {
		return nil, errors.ErrInvalidInput
	}
	project.Name = name
	project.Color = fields.Color

	if err := s.projects.UpdateProject(ctx, project); err != nil {
		return nil, err
	}
	return project, nil
}

// Delete removes the project and, with it, every task of the project.
func (s *ProjectService) Delete(ctx context.Context, id string) error {
	if err := s.projects.DeleteProject(ctx, id); err != nil {
		return err
	}
	log.Info().Str("project_id", id).Msg("project deleted")
	return nil
}

func (s *ProjectService) AddMember(ctx context.Context, projectID, userID string) (*models.Project, error) {
	if err := s.requireProjectAndUser(ctx, projectID, userID); err != nil {
		return nil, err
	}
	if err := s.projects.AddProjectMember(ctx, projectID, userID); err != nil {
		return nil, err
	}
	return s.projects.GetProjectByID(ctx, projectID)
}

// RemoveMember is a no-op for a user that is not a member.
func (s *ProjectService) RemoveMember(ctx context.Context, projectID, userID string) (*models.Project, error) {
	if err := s.requireProjectAndUser(ctx, projectID, userID); err != nil {
		return nil, err
	}
	if err := s.projects.RemoveProjectMember(ctx, projectID, userID); err != nil {
		return nil, err
	}
	return s.projects.GetProjectByID(ctx, projectID)
}

func (s *ProjectService) requireProjectAndUser(ctx context.Context, projectID, userID string) error {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		_, err := s.projects.GetProjectByID(gctx, projectID)
		return err
	})
	g.Go(func() error {
		_, err := s.users.GetUserByID(gctx, userID)
		return err
	})
	return g.Wait()
}
