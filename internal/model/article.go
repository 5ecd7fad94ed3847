package model

import "fmt"

// ArticleStatus represents the download state of an article. It is
// monotonic: once downloaded it never reverts to normal.
type ArticleStatus string

const (
	ArticleStatusNormal     ArticleStatus = "normal"
	ArticleStatusDownloaded ArticleStatus = "downloaded"
)

// Article represents a single discovered article record.
type Article struct {
	ID          string
	Title       string
	Authors     string
	Journal     string
	PublishDate string
	Abstract    string
	URL         string
	// Keyword is the search term that produced the article.
	Keyword        string
	LiteratureType string
	Status         ArticleStatus
}

// Validate validates an article record received from the remote side.
func (a *Article) Validate() error {
	if a.ID == "" {
		return fmt.Errorf("article id is required: %w", ErrNotValid)
	}

	switch a.Status {
	case ArticleStatusNormal, ArticleStatusDownloaded:
	default:
		return fmt.Errorf("unknown article status %q: %w", a.Status, ErrNotValid)
	}

	return nil
}

// ArticleFilters are the optional filters of an article listing.
type ArticleFilters struct {
	Text           string
	Keyword        string
	LiteratureType string
}

// ArticlePage is one page of the article collection.
type ArticlePage struct {
	Articles []Article
	Page     int
	PerPage  int
	Total    int
}
