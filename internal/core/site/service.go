package site

import (
	"context"
	"log/slog"

	"github.com/buivan/fedisearch/pkg/slice"
)

type Service struct {
	repo   Repository
	logger *slog.Logger
}

func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
	}
}

// Register records an instance, or refreshes its name and last-seen time
// when it is already known. Crawl cursors are never touched here.
func (service *Service) Register(context context.Context, actorID, name string) error {
	return service.repo.Register(context, actorID, name)
}

// Instances lists every known instance in wire shape.
func (service *Service) Instances(context context.Context) ([]InstanceView, error) {
	sites, err := service.repo.All(context)
	if err != nil {
		return nil, err
	}

	return slice.Map(sites, func(s *Site) InstanceView {
		return InstanceView{Site: InstanceSite{ActorID: s.ActorID, Name: s.Name}}
	}), nil
}

func (service *Service) All(context context.Context) ([]*Site, error) {
	return service.repo.All(context)
}

func (service *Service) LastPostPage(context context.Context, actorID string) (int, error) {
	return service.repo.LastPostPage(context, actorID)
}

func (service *Service) SetLastPostPage(context context.Context, actorID string, page int) error {
	return service.repo.SetLastPostPage(context, actorID, page)
}
