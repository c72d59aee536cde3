// Copyright (c) 2026 Fedisearch. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package api

import (
	"net/http"

	"github.com/buivan/fedisearch/internal/platform/constants"
	"github.com/buivan/fedisearch/internal/platform/respond"
)

// NewVersionHandler reports the release the process was built from.
func NewVersionHandler() http.HandlerFunc {
	return func(writer http.ResponseWriter, request *http.Request) {
		respond.OK(writer, map[string]string{"version": constants.AppVersion})
	}
}

// NewHeartbeatHandler answers the development liveness probe.
func NewHeartbeatHandler() http.HandlerFunc {
	return func(writer http.ResponseWriter, request *http.Request) {
		respond.Text(writer, "Ready")
	}
}

// NewCrawlHandler fires one immediate crawl pass and returns without
// waiting for it to finish.
func NewCrawlHandler(trigger func()) http.HandlerFunc {
	return func(writer http.ResponseWriter, request *http.Request) {
		trigger()
		respond.Text(writer, "Started")
	}
}
