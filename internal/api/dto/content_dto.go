package dto

import (
	"time"

	"github.com/iiitdCrypto/crypto-resource-manager/internal/domain"
)

// ArticleRequest payload for creating or updating an article.
type ArticleRequest struct {
	Title       string     `json:"title"`
	Summary     string     `json:"summary"`
	Content     string     `json:"content"`
	Author      string     `json:"author"`
	CoverURL    *string    `json:"coverUrl"`
	PublishedAt *time.Time `json:"publishedAt"`
}

// ToDomain maps the request onto a domain article.
func (r ArticleRequest) ToDomain(id int64) *domain.Article {
	return &domain.Article{
		ID:          id,
		Title:       r.Title,
		Summary:     r.Summary,
		Content:     r.Content,
		Author:      r.Author,
		CoverURL:    r.CoverURL,
		PublishedAt: r.PublishedAt,
	}
}

// EventRequest payload for creating or updating an event.
type EventRequest struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Location    string     `json:"location"`
	StartsAt    time.Time  `json:"startsAt"`
	EndsAt      *time.Time `json:"endsAt"`
}

func (r EventRequest) ToDomain(id int64) *domain.Event {
	return &domain.Event{
		ID:          id,
		Title:       r.Title,
		Description: r.Description,
		Location:    r.Location,
		StartsAt:    r.StartsAt,
		EndsAt:      r.EndsAt,
	}
}

// ResourceRequest payload for creating or updating a resource.
type ResourceRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Kind        string `json:"kind"`
	URL         string `json:"url"`
}

func (r ResourceRequest) ToDomain(id int64) *domain.Resource {
	return &domain.Resource{
		ID:          id,
		Title:       r.Title,
		Description: r.Description,
		Kind:        domain.ResourceKind(r.Kind),
		URL:         r.URL,
	}
}

// ProfessorRequest payload for creating or updating a faculty profile.
type ProfessorRequest struct {
	Name    string  `json:"name"`
	Title   string  `json:"title"`
	Email   string  `json:"email"`
	Bio     string  `json:"bio"`
	Website *string `json:"website"`
}

func (r ProfessorRequest) ToDomain(id int64) *domain.Professor {
	return &domain.Professor{
		ID:      id,
		Name:    r.Name,
		Title:   r.Title,
		Email:   r.Email,
		Bio:     r.Bio,
		Website: r.Website,
	}
}

// ProjectRequest payload for creating or updating a research project.
type ProjectRequest struct {
	Title       string `json:"title"`
	Abstract    string `json:"abstract"`
	ProfessorID *int64 `json:"professorId"`
	Year        int    `json:"year"`
}

func (r ProjectRequest) ToDomain(id int64) *domain.Project {
	return &domain.Project{
		ID:          id,
		Title:       r.Title,
		Abstract:    r.Abstract,
		ProfessorID: r.ProfessorID,
		Year:        r.Year,
	}
}
