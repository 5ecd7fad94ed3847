package listfiles

import (
	"context"
	"fmt"
	"sort"

	"github.com/slok/scraperctl/internal/log"
	"github.com/slok/scraperctl/internal/model"
	"github.com/slok/scraperctl/internal/remote"
)

// ServiceConfig is the configuration for the list files service.
type ServiceConfig struct {
	Client remote.Client
	Logger log.Logger
}

func (c *ServiceConfig) defaults() error {
	if c.Client == nil {
		return fmt.Errorf("remote client is required")
	}

	if c.Logger == nil {
		c.Logger = log.Noop
	}

	return nil
}

// Service lists the files a worker holds in one of its resource
// directories.
type Service struct {
	client remote.Client
	logger log.Logger
}

// NewService creates a new list files service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Service{
		client: cfg.Client,
		logger: cfg.Logger,
	}, nil
}

// Request represents the list files request parameters.
type Request struct {
	Category model.FileCategory
}

// Run lists the files of a worker resource category, newest first.
func (s *Service) Run(ctx context.Context, req Request) ([]model.ResourceFile, error) {
	files, err := s.client.ListFiles(ctx, req.Category)
	if err != nil {
		return nil, fmt.Errorf("could not list %s files: %w", req.Category, err)
	}

	sort.Slice(files, func(i, j int) bool {
		if !files[i].Modified.Equal(files[j].Modified) {
			return files[i].Modified.After(files[j].Modified)
		}
		return files[i].Name < files[j].Name
	})

	s.logger.Debugf("found %d %s files", len(files), req.Category)
	return files, nil
}
