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

// Command plugin is the tupi plugin entry point. Build it with
// -buildmode=plugin and point tupi's conf at the resulting .so.
package main

import (
	"net/http"
	"sync"

	"go.uber.org/zap"

	"github.com/jucacrispim/cgikit/internal/host"
	"github.com/jucacrispim/cgikit/internal/logging"
)

var (
	loggerOnce sync.Once
	logger     *zap.Logger
)

func pluginLogger() *zap.Logger {
	loggerOnce.Do(func() {
		l, err := logging.New("info")
		if err != nil {
			l = zap.NewNop()
		}
		logger = l.Named("cgikit")
	})
	return logger
}

func Init(domain string, conf *map[string]any) error {
	if conf == nil {
		return host.MissingConfigError
	}
	cfg, err := host.ConfigFromMap(*conf)
	if err != nil {
		return err
	}
	pluginLogger().Info("cgi plugin ready",
		zap.String("domain", domain), zap.String("cgi_dir", cfg.CGIDir))
	return nil
}

func Serve(w http.ResponseWriter, r *http.Request, conf *map[string]any) {
	if conf == nil {
		http.Error(w, host.INTERNAL_SERVER_ERROR_MSG, http.StatusInternalServerError)
		return
	}
	cfg, err := host.ConfigFromMap(*conf)
	if err != nil {
		pluginLogger().Error("bad plugin config", zap.Error(err))
		http.Error(w, host.INTERNAL_SERVER_ERROR_MSG, http.StatusInternalServerError)
		return
	}
	host.New(cfg, pluginLogger()).ServeHTTP(w, r)
}

func main() {}
