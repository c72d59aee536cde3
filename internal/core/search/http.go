// Copyright (c) 2026 Fedisearch. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package search

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/buivan/fedisearch/internal/platform/respond"
	"github.com/buivan/fedisearch/pkg/pagination"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (handler *Handler) RegisterRoutes(router chi.Router) {
	router.Get("/search", handler.search)
}

func (handler *Handler) search(writer http.ResponseWriter, request *http.Request) {
	result, err := handler.service.Search(
		request.Context(),
		request.URL.Query(),
		pagination.FromRequest(request),
	)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, result)
}
