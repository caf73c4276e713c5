package domain

import (
	"net/url"
	"strings"
	"time"
)

// DefaultCategory is applied when a project is created without a category.
const DefaultCategory = "uncategorized"

// DefaultImage is the placeholder image reference for projects created without one.
const DefaultImage = "https://www.hostinger.com/tutorials/wp-content/uploads/sites/2/2021/09/how-to-write-a-blog-post.png"

// Project represents one project record owned by a user.
type Project struct {
	ID        string
	OwnerID   string
	Slug      string
	Title     string
	Category  string
	Image     string
	Content   string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ProjectInput holds the values needed to construct a project.
type ProjectInput struct {
	ID       string
	OwnerID  string
	Title    string
	Category string
	Image    string
	Content  string
}

// NewProject constructs a validated project stamped with now.
func NewProject(in ProjectInput, now time.Time) (Project, error) {
	id := strings.TrimSpace(in.ID)
	owner := strings.TrimSpace(in.OwnerID)
	title := strings.TrimSpace(in.Title)
	if id == "" {
		return Project{}, ErrInvalidID
	}
	if owner == "" {
		return Project{}, ErrInvalidOwnerID
	}
	if title == "" {
		return Project{}, ErrInvalidTitle
	}
	category, err := normalizeCategory(in.Category)
	if err != nil {
		return Project{}, err
	}
	image, err := normalizeImage(in.Image)
	if err != nil {
		return Project{}, err
	}

	return Project{
		ID:        id,
		OwnerID:   owner,
		Slug:      Slugify(title),
		Title:     title,
		Category:  category,
		Image:     image,
		Content:   strings.TrimSpace(in.Content),
		CreatedAt: now.UTC(),
		UpdatedAt: now.UTC(),
	}, nil
}

// OwnedBy reports whether the project belongs to ownerID.
func (p Project) OwnedBy(ownerID string) bool {
	ownerID = strings.TrimSpace(ownerID)
	return ownerID != "" && p.OwnerID == ownerID
}

// normalizeCategory lowercases the category and applies the default.
func normalizeCategory(category string) (string, error) {
	category = strings.ToLower(strings.TrimSpace(category))
	if category == "" {
		return DefaultCategory, nil
	}
	if strings.ContainsAny(category, "\n\r\t") {
		return "", ErrInvalidCategory
	}
	return category, nil
}

// normalizeImage validates an image reference as an absolute URI.
func normalizeImage(image string) (string, error) {
	image = strings.TrimSpace(image)
	if image == "" {
		return DefaultImage, nil
	}
	u, err := url.Parse(image)
	if err != nil || u.Scheme == "" {
		return "", ErrInvalidImage
	}
	return image, nil
}

// Slugify lowercases s and collapses every run of non-alphanumerics to one dash.
func Slugify(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return ""
	}

	var b strings.Builder
	prevDash := false
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z':
			b.WriteRune(r)
			prevDash = false
		case r >= '0' && r <= '9':
			b.WriteRune(r)
			prevDash = false
		default:
			if !prevDash {
				b.WriteByte('-')
				prevDash = true
			}
		}
	}
	return strings.Trim(b.String(), "-")
}
