// Package models defines the core data structures for projects, uploads
// and the privileged-request envelope shared by client and server.
package models

import "time"

// Project is a single portfolio entry as stored and returned by the API.
type Project struct {
	// ID is the unique identifier for the project (UUID).
	ID string `json:"id"`
	// Slug is the unique, URL-friendly name of the project.
	Slug string `json:"slug"`
	// Title is the display title.
	Title string `json:"title"`
	// Description is the short summary shown in lists.
	Description string `json:"description"`
	// Content is the optional long-form body.
	Content *string `json:"content,omitempty"`
	// ImageURL points at the cover image, usually an uploaded object.
	ImageURL *string `json:"imageUrl,omitempty"`
	// LiveURL is the optional address of a running demo.
	LiveURL *string `json:"liveUrl,omitempty"`
	// RepoURL is the source repository address.
	RepoURL string `json:"repoUrl"`
	// Featured marks projects highlighted on the landing page.
	Featured bool `json:"featured"`
	// PublishedAt drives list ordering.
	PublishedAt *time.Time `json:"publishedAt,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// ProjectInput is the writable part of a project, used by create and update.
type ProjectInput struct {
	Title       string     `json:"title" validate:"required"`
	Slug        string     `json:"slug" validate:"required"`
	Description string     `json:"description" validate:"required"`
	Content     *string    `json:"content,omitempty"`
	ImageURL    *string    `json:"imageUrl,omitempty"`
	LiveURL     *string    `json:"liveUrl,omitempty"`
	RepoURL     string     `json:"repoUrl" validate:"required"`
	PublishedAt *time.Time `json:"publishedAt,omitempty"`
	Featured    bool       `json:"featured"`
}

// ProjectRef identifies the project a delete targets.
type ProjectRef struct {
	ID string `json:"id" validate:"required"`
}

// ListParams selects one page of projects.
type ListParams struct {
	// Limit is the page size, 1..50. Nil means the default.
	Limit *int
	// Cursor is the id of the first project of the requested page.
	Cursor string
	// Featured, when set, restricts the page to (non-)featured projects.
	Featured *bool
}

// ProjectFilter narrows a repository listing.
type ProjectFilter struct {
	// Featured, when non-nil, keeps only projects with that flag.
	Featured *bool
}

// Page is one cursor-paginated slice of projects.
type Page struct {
	Items      []Project `json:"items"`
	NextCursor string    `json:"nextCursor,omitempty"`
}

// UploadInput carries a base64 image from the admin client.
type UploadInput struct {
	FileName string `json:"fileName" validate:"required"`
	FileType string `json:"fileType" validate:"required,startswith=image/"`
	// FileData is standard base64, optionally prefixed with a data URL header.
	FileData string `json:"fileData" validate:"required"`
}

// UploadResult describes a stored object.
type UploadResult struct {
	Success bool   `json:"success"`
	URL     string `json:"url"`
	ETag    string `json:"etag"`
	Key     string `json:"key"`
}

// StoredObject is what an object store reports after a successful put.
type StoredObject struct {
	URL  string
	ETag string
}

// AdminKeyInput is the body of the admin verify call.
type AdminKeyInput struct {
	AdminKey string `json:"adminKey" validate:"required"`
}
