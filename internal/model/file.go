package model

import (
	"fmt"
	"time"
)

// FileCategory is a remote resource directory category.
type FileCategory string

const (
	FileCategoryLinks     FileCategory = "links"
	FileCategoryDownloads FileCategory = "downloads"
	FileCategoryExports   FileCategory = "exports"
	FileCategoryLogs      FileCategory = "logs"
)

// ParseFileCategory validates and returns a file category.
func ParseFileCategory(s string) (FileCategory, error) {
	switch c := FileCategory(s); c {
	case FileCategoryLinks, FileCategoryDownloads, FileCategoryExports, FileCategoryLogs:
		return c, nil
	}
	return "", fmt.Errorf("unknown file category %q: %w", s, ErrNotValid)
}

// ResourceFile describes a file in one of the worker's resource directories.
type ResourceFile struct {
	Name         string
	Path         string
	RelativePath string
	Size         int64
	Modified     time.Time
}
