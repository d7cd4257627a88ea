package domain

import "time"

// Professor is a faculty profile.
type Professor struct {
	ID        int64
	Name      string
	Title     string
	Email     string
	Bio       string
	Website   *string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Project is a research project, optionally linked to a professor.
type Project struct {
	ID          int64
	Title       string
	Abstract    string
	ProfessorID *int64
	Year        int
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
