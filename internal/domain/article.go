package domain

import "time"

// Article is a news or blog entry published on the site.
type Article struct {
	ID          int64
	Title       string
	Summary     string
	Content     string
	Author      string
	CoverURL    *string
	PublishedAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
