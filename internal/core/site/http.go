package site

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/buivan/fedisearch/internal/platform/respond"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (handler *Handler) RegisterRoutes(router chi.Router) {
	router.Get("/instances", handler.listInstances)
}

func (handler *Handler) listInstances(writer http.ResponseWriter, request *http.Request) {
	instances, err := handler.service.Instances(request.Context())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	// The instance picker expects an array even when nothing is known yet.
	if instances == nil {
		instances = []InstanceView{}
	}
	respond.OK(writer, instances)
}
