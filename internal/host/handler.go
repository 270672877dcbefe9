// Copyright 2024 Juca Crispim <juca@poraodojuca.net>

// This file is part of cgikit.

// cgikit is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

// cgikit is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.

// You should have received a copy of the GNU Affero General Public License
// along with cgikit. If not, see <http://www.gnu.org/licenses/>.

package host

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jucacrispim/cgikit/cgi"
)

// Handler runs the CGI scripts found under Config.CGIDir.
type Handler struct {
	cfg    Config
	logger *zap.Logger
	newID  func() string
}

func New(cfg Config, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		cfg:    cfg.withDefaults(),
		logger: logger,
		newID:  func() string { return uuid.NewString() },
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet, http.MethodHead, http.MethodPost:
	default:
		w.Header().Set("Allow", "GET, HEAD, POST")
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	requestID := h.newID()
	log := h.logger.With(
		zap.String("request_id", requestID),
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
	)

	m, err := h.metaVars(r, requestID)
	if err != nil {
		log.Error("building meta variables", zap.Error(err))
		http.Error(w, INTERNAL_SERVER_ERROR_MSG, http.StatusInternalServerError)
		return
	}
	if m["SCRIPT_FILENAME"] == "" {
		http.Error(w, "NOT FOUND", http.StatusNotFound)
		return
	}
	log = log.With(zap.String("script", m["SCRIPT_FILENAME"]))

	if r.ContentLength > h.cfg.MaxBodySize {
		log.Warn("request body too large", zap.Int64("content_length", r.ContentLength))
		http.Error(w, "Request entity too large", http.StatusRequestEntityTooLarge)
		return
	}

	var rawBody []byte
	if r.ContentLength != 0 && r.Body != nil {
		defer r.Body.Close()
		rawBody, err = io.ReadAll(http.MaxBytesReader(w, r.Body, h.cfg.MaxBodySize))
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			log.Warn("request body too large", zap.Int64("limit", tooLarge.Limit))
			http.Error(w, "Request entity too large", http.StatusRequestEntityTooLarge)
			return
		}
		if err != nil {
			log.Warn("reading request body", zap.Error(err))
			http.Error(w, "Bad request", http.StatusBadRequest)
			return
		}
		m["CONTENT_LENGTH"] = strconv.Itoa(len(rawBody))
	}

	output, err := h.execScript(r.Context(), m, rawBody)
	if err != nil {
		log.Error("running script", zap.Error(err))
		http.Error(w, INTERNAL_SERVER_ERROR_MSG, http.StatusInternalServerError)
		return
	}

	resp, err := cgi.ParseResponse(output)
	if err != nil {
		log.Error("parsing script response", zap.Error(err))
		http.Error(w, INTERNAL_SERVER_ERROR_MSG, http.StatusInternalServerError)
		return
	}

	for k, values := range resp.Header {
		for _, v := range values {
			w.Header().Add(k, v)
		}
	}
	w.WriteHeader(resp.Status.Code)
	if r.Method != http.MethodHead {
		w.Write(resp.Body)
	}
	log.Debug("script done", zap.Int("status", resp.Status.Code))
}
