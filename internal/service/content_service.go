package service

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/iiitdCrypto/crypto-resource-manager/internal/domain"
	"github.com/iiitdCrypto/crypto-resource-manager/internal/repository"
	apperrors "github.com/iiitdCrypto/crypto-resource-manager/pkg/util"
)

// ContentService coordinates CRUD over the site's published content.
type ContentService struct {
	articles   repository.ArticleRepository
	events     repository.EventRepository
	resources  repository.ResourceRepository
	professors repository.ProfessorRepository
	projects   repository.ProjectRepository
}

// ContentDependencies bundles repositories for the content service.
type ContentDependencies struct {
	ArticleRepo   repository.ArticleRepository
	EventRepo     repository.EventRepository
	ResourceRepo  repository.ResourceRepository
	ProfessorRepo repository.ProfessorRepository
	ProjectRepo   repository.ProjectRepository
}

// NewContentService builds the service.
func NewContentService(deps ContentDependencies) *ContentService {
	return &ContentService{
		articles:   deps.ArticleRepo,
		events:     deps.EventRepo,
		resources:  deps.ResourceRepo,
		professors: deps.ProfessorRepo,
		projects:   deps.ProjectRepo,
	}
}

func mapNotFound(err error, resource string) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return apperrors.NewNotFound(resource, nil)
	}
	return apperrors.MapError(err)
}

// CreateArticle validates and stores a new article.
func (s *ContentService) CreateArticle(ctx context.Context, article *domain.Article) error {
	if strings.TrimSpace(article.Title) == "" {
		return apperrors.NewValidationError("title required", nil)
	}
	return apperrors.MapError(s.articles.Create(ctx, article))
}

func (s *ContentService) UpdateArticle(ctx context.Context, article *domain.Article) error {
	if err := s.articles.Update(ctx, article); err != nil {
		return mapNotFound(err, "article")
	}
	return nil
}

func (s *ContentService) DeleteArticle(ctx context.Context, id int64) error {
	if err := s.articles.Delete(ctx, id); err != nil {
		return mapNotFound(err, "article")
	}
	return nil
}

func (s *ContentService) GetArticle(ctx context.Context, id int64) (*domain.Article, error) {
	article, err := s.articles.GetByID(ctx, id)
	if err != nil {
		return nil, mapNotFound(err, "article")
	}
	return article, nil
}

func (s *ContentService) ListArticles(ctx context.Context, limit, offset int) ([]*domain.Article, error) {
	articles, err := s.articles.List(ctx, limit, offset)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return articles, nil
}

// CreateEvent validates and stores a new event listing.
func (s *ContentService) CreateEvent(ctx context.Context, event *domain.Event) error {
	if strings.TrimSpace(event.Title) == "" {
		return apperrors.NewValidationError("title required", nil)
	}
	if event.StartsAt.IsZero() {
		return apperrors.NewValidationError("starts_at required", nil)
	}
	return apperrors.MapError(s.events.Create(ctx, event))
}

func (s *ContentService) UpdateEvent(ctx context.Context, event *domain.Event) error {
	if err := s.events.Update(ctx, event); err != nil {
		return mapNotFound(err, "event")
	}
	return nil
}

func (s *ContentService) DeleteEvent(ctx context.Context, id int64) error {
	if err := s.events.Delete(ctx, id); err != nil {
		return mapNotFound(err, "event")
	}
	return nil
}

func (s *ContentService) GetEvent(ctx context.Context, id int64) (*domain.Event, error) {
	event, err := s.events.GetByID(ctx, id)
	if err != nil {
		return nil, mapNotFound(err, "event")
	}
	return event, nil
}

func (s *ContentService) ListEvents(ctx context.Context, limit, offset int) ([]*domain.Event, error) {
	listings, err := s.events.List(ctx, limit, offset)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return listings, nil
}

// CreateResource validates and stores a study resource.
func (s *ContentService) CreateResource(ctx context.Context, resource *domain.Resource) error {
	if strings.TrimSpace(resource.Title) == "" {
		return apperrors.NewValidationError("title required", nil)
	}
	switch resource.Kind {
	case domain.ResourceKindLecture, domain.ResourceKindPaper, domain.ResourceKindTool, domain.ResourceKindLink:
	default:
		return apperrors.NewValidationError("unknown resource kind", map[string]any{"kind": resource.Kind})
	}
	return apperrors.MapError(s.resources.Create(ctx, resource))
}

func (s *ContentService) UpdateResource(ctx context.Context, resource *domain.Resource) error {
	if err := s.resources.Update(ctx, resource); err != nil {
		return mapNotFound(err, "resource")
	}
	return nil
}

func (s *ContentService) DeleteResource(ctx context.Context, id int64) error {
	if err := s.resources.Delete(ctx, id); err != nil {
		return mapNotFound(err, "resource")
	}
	return nil
}

func (s *ContentService) GetResource(ctx context.Context, id int64) (*domain.Resource, error) {
	resource, err := s.resources.GetByID(ctx, id)
	if err != nil {
		return nil, mapNotFound(err, "resource")
	}
	return resource, nil
}

func (s *ContentService) ListResources(ctx context.Context, limit, offset int) ([]*domain.Resource, error) {
	resources, err := s.resources.List(ctx, limit, offset)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return resources, nil
}

// CreateProfessor validates and stores a faculty profile.
func (s *ContentService) CreateProfessor(ctx context.Context, professor *domain.Professor) error {
	if strings.TrimSpace(professor.Name) == "" {
		return apperrors.NewValidationError("name required", nil)
	}
	return apperrors.MapError(s.professors.Create(ctx, professor))
}

func (s *ContentService) UpdateProfessor(ctx context.Context, professor *domain.Professor) error {
	if err := s.professors.Update(ctx, professor); err != nil {
		return mapNotFound(err, "professor")
	}
	return nil
}

func (s *ContentService) DeleteProfessor(ctx context.Context, id int64) error {
	if err := s.professors.Delete(ctx, id); err != nil {
		return mapNotFound(err, "professor")
	}
	return nil
}

func (s *ContentService) GetProfessor(ctx context.Context, id int64) (*domain.Professor, error) {
	professor, err := s.professors.GetByID(ctx, id)
	if err != nil {
		return nil, mapNotFound(err, "professor")
	}
	return professor, nil
}

func (s *ContentService) ListProfessors(ctx context.Context, limit, offset int) ([]*domain.Professor, error) {
	professors, err := s.professors.List(ctx, limit, offset)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return professors, nil
}

// CreateProject validates and stores a research project.
func (s *ContentService) CreateProject(ctx context.Context, project *domain.Project) error {
	if strings.TrimSpace(project.Title) == "" {
		return apperrors.NewValidationError("title required", nil)
	}
	return apperrors.MapError(s.projects.Create(ctx, project))
}

func (s *ContentService) UpdateProject(ctx context.Context, project *domain.Project) error {
	if err := s.projects.Update(ctx, project); err != nil {
		return mapNotFound(err, "project")
	}
	return nil
}

func (s *ContentService) DeleteProject(ctx context.Context, id int64) error {
	if err := s.projects.Delete(ctx, id); err != nil {
		return mapNotFound(err, "project")
	}
	return nil
}

func (s *ContentService) GetProject(ctx context.Context, id int64) (*domain.Project, error) {
	project, err := s.projects.GetByID(ctx, id)
	if err != nil {
		return nil, mapNotFound(err, "project")
	}
	return project, nil
}

func (s *ContentService) ListProjects(ctx context.Context, limit, offset int) ([]*domain.Project, error) {
	projects, err := s.projects.List(ctx, limit, offset)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return projects, nil
}
