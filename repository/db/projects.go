package db

import (
	"context"

	"teamcollab/internal/domain/errors"
	"teamcollab/internal/domain/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog/log"
)

const projectColumns = `p.id, p.name, p.color, p.created_by, p.created_at, p.updated_at`

const (
	listProjectsSQL          = `SELECT ` + projectColumns + ` FROM projects p ORDER BY p.created_at, p.id`
	getProjectByIDSQL        = `SELECT ` + projectColumns + ` FROM projects p WHERE p.id = $1`
	listProjectsByMemberSQL  = `SELECT ` + projectColumns + ` FROM projects p JOIN project_members m ON m.project_id = p.id WHERE m.user_id = $1 ORDER BY p.created_at, p.id`
	listProjectsByCreatorSQL = `SELECT ` + projectColumns + ` FROM projects p WHERE p.created_by = $1 ORDER BY p.created_at, p.id`
	searchProjectsSQL        = `SELECT ` + projectColumns + ` FROM projects p WHERE strpos(lower(p.name), lower($1)) > 0 ORDER BY p.created_at, p.id`
	createProjectSQL         = `INSERT INTO projects (id, name, color, created_by) VALUES ($1, $2, $3, $4) RETURNING created_at, updated_at`
	updateProjectSQL         = `UPDATE projects SET name = $1, color = $2, updated_at = clock_timestamp() WHERE id = $3 RETURNING updated_at`
	deleteProjectSQL         = `DELETE FROM projects WHERE id = $1`
	addProjectMemberSQL      = `INSERT INTO project_members (project_id, user_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`
	removeProjectMemberSQL   = `DELETE FROM project_members WHERE project_id = $1 AND user_id = $2`
	projectExistsSQL         = `SELECT EXISTS (SELECT 1 FROM projects WHERE id = $1)`
	projectMembersSQL        = `SELECT m.project_id, ` + userColumns + ` FROM project_members m JOIN users u ON u.id = m.user_id WHERE m.project_id = ANY($1::uuid[]) ORDER BY m.added_at, u.id`
)

func scanProject(row pgx.Row) (*models.Project, error) {
	p := &models.Project{}
	var createdBy *string
	if err := row.Scan(&p.ID, &p.Name, &p.Color, &createdBy, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	p.CreatedByID = stringOrEmpty(createdBy)
	p.Members = []models.User{}
	return p, nil
}

func (s *Storage) queryProjects(ctx context.Context, query string, args ...any) ([]models.Project, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		log.Error().Err(err).Msg("failed to query projects")
		return nil, err
	}
	projects := []models.Project{}
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			rows.Close()
			log.Error().Err(err).Msg("failed to read projects")
			return nil, err
		}
		projects = append(projects, *p)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		if code, _ := pgCode(err); code == codeInvalidTextRepr {
			return []models.Project{}, nil
		}
		return nil, err
	}

	if err := s.attachMembers(ctx, projects); err != nil {
		return nil, err
	}
	return projects, nil
}

// attachMembers loads the members of all projects with one query.
func (s *Storage) attachMembers(ctx context.Context, projects []models.Project) error {
	if len(projects) == 0 {
		return nil
	}
	ids := make([]string, len(projects))
	index := make(map[string]int, len(projects))
	for i, p := range projects {
		ids[i] = p.ID
		index[p.ID] = i
	}

	rows, err := s.pool.Query(ctx, projectMembersSQL, ids)
	if err != nil {
		log.Error().Err(err).Msg("failed to load project members")
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var projectID string
		u := models.User{}
		var role string
		if err := rows.Scan(&projectID, &u.ID, &u.Username, &u.Email, &u.Password, &u.Name, &role, &u.CreatedAt); err != nil {
			return err
		}
		u.Role = models.Role(role)
		i := index[projectID]
		projects[i].AddMember(u)
	}
	return rows.Err()
}

func (s *Storage) ListProjects(ctx context.Context) ([]models.Project, error) {
	return s.queryProjects(ctx, listProjectsSQL)
}

func (s *Storage) GetProjectByID(ctx context.Context, id string) (*models.Project, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	p, err := scanProject(s.pool.QueryRow(ctx, getProjectByIDSQL, id))
	if err != nil {
		return nil, notFound(err, errors.ErrProjectNotFound)
	}
	projects := []models.Project{*p}
	if err := s.attachMembers(ctx, projects); err != nil {
		return nil, err
	}
	return &projects[0], nil
}

func (s *Storage) ListProjectsByMember(ctx context.Context, userID string) ([]models.Project, error) {
	return s.queryProjects(ctx, listProjectsByMemberSQL, userID)
}

func (s *Storage) ListProjectsByCreator(ctx context.Context, userID string) ([]models.Project, error) {
	return s.queryProjects(ctx, listProjectsByCreatorSQL, userID)
}

func (s *Storage) SearchProjectsByName(ctx context.Context, name string) ([]models.Project, error) {
	return s.queryProjects(ctx, searchProjectsSQL, name)
}

// CreateProject inserts the project and its initial members atomically.
func (s *Storage) CreateProject(ctx context.Context, project *models.Project) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	id := uuid.New().String()
	err := s.inTx(ctx, func(tx pgx.Tx) error {
		if err := tx.QueryRow(ctx, createProjectSQL,
			id, project.Name, project.Color, nullableID(project.CreatedByID),
		).Scan(&project.CreatedAt, &project.UpdatedAt); err != nil {
			return err
		}
		for _, m := range project.Members {
			if _, err := tx.Exec(ctx, addProjectMemberSQL, id, m.ID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		log.Error().Err(err).Str("name", project.Name).Msg("failed to create project")
		return foreignKey(err)
	}
	project.ID = id
	log.Debug().Str("project_id", id).Msg("project stored")
	return nil
}

func (s *Storage) UpdateProject(ctx context.Context, project *models.Project) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	err := s.pool.QueryRow(ctx, updateProjectSQL, project.Name, project.Color, project.ID).Scan(&project.UpdatedAt)
	if err != nil {
		if mapped := notFound(err, errors.ErrProjectNotFound); mapped != err {
			return mapped
		}
		log.Error().Err(err).Str("project_id", project.ID).Msg("failed to update project")
		return err
	}
	return nil
}

// DeleteProject cascades through the schema to tasks, their assignees,
// comments and attachments, and to the membership rows.
func (s *Storage) DeleteProject(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	ct, err := s.pool.Exec(ctx, deleteProjectSQL, id)
	if err != nil {
		log.Error().Err(err).Str("project_id", id).Msg("failed to delete project")
		return notFound(err, errors.ErrProjectNotFound)
	}
	if ct.RowsAffected() == 0 {
		return errors.ErrProjectNotFound
	}
	return nil
}

func (s *Storage) AddProjectMember(ctx context.Context, projectID, userID string) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	if _, err := s.pool.Exec(ctx, addProjectMemberSQL, projectID, userID); err != nil {
		log.Error().Err(err).Str("project_id", projectID).Str("user_id", userID).Msg("failed to add project member")
		return foreignKey(err)
	}
	return nil
}

func (s *Storage) RemoveProjectMember(ctx context.Context, projectID, userID string) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var found bool
	if err := s.pool.QueryRow(ctx, projectExistsSQL, projectID).Scan(&found); err != nil {
		return notFound(err, errors.ErrProjectNotFound)
	}
	if !found {
		return errors.ErrProjectNotFound
	}
	if _, err := s.pool.Exec(ctx, removeProjectMemberSQL, projectID, userID); err != nil {
		log.Error().Err(err).Str("project_id", projectID).Str("user_id", userID).Msg("failed to remove project member")
		return notFound(err, errors.ErrUserNotFound)
	}
	return nil
}
