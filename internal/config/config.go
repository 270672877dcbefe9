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

// Package config loads the cgikit command line configuration from flags,
// CGIKIT_* environment variables and an optional TOML file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
	"github.com/spf13/viper"

	"github.com/jucacrispim/cgikit/internal/host"
)

const (
	CGIDirKey         = "cgi_dir"
	AddrKey           = "addr"
	TimeoutKey        = "timeout"
	LogLevelKey       = "log_level"
	ServerSoftwareKey = "server_software"
	MaxBodySizeKey    = "max_body_size"

	envPrefix = "CGIKIT"
	fileMode  = 0o600
	dirMode   = 0o700
)

var ErrConfigExists = errors.New("config file already exists")

type Config struct {
	CGIDir         string
	Addr           string
	Timeout        time.Duration
	LogLevel       string
	ServerSoftware string
	MaxBodySize    int64
}

func Default() Config {
	return Config{
		CGIDir:         "./cgi-bin",
		Addr:           ":8080",
		Timeout:        host.DefaultTimeout,
		LogLevel:       "info",
		ServerSoftware: host.DefaultServerSoftware,
		MaxBodySize:    host.DefaultMaxBodySize,
	}
}

// fileSchema is the on-disk layout of the config file.
type fileSchema struct {
	CGIDir         string `toml:"cgi_dir"`
	Addr           string `toml:"addr"`
	Timeout        string `toml:"timeout"`
	LogLevel       string `toml:"log_level"`
	ServerSoftware string `toml:"server_software"`
	MaxBodySize    int64  `toml:"max_body_size"`
}

// Load resolves the configuration. path may be empty, in which case only
// defaults, environment and whatever flags were bound to v count.
func Load(v *viper.Viper, path string) (Config, error) {
	if v == nil {
		v = viper.New()
	}
	def := Default()
	v.SetDefault(CGIDirKey, def.CGIDir)
	v.SetDefault(AddrKey, def.Addr)
	v.SetDefault(TimeoutKey, def.Timeout.String())
	v.SetDefault(LogLevelKey, def.LogLevel)
	v.SetDefault(ServerSoftwareKey, def.ServerSoftware)
	v.SetDefault(MaxBodySizeKey, def.MaxBodySize)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("toml")
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
	}

	timeout, err := time.ParseDuration(v.GetString(TimeoutKey))
	if err != nil {
		return Config{}, fmt.Errorf("parse %s: %w", TimeoutKey, err)
	}
	if timeout <= 0 {
		return Config{}, fmt.Errorf("%s must be positive, got %s", TimeoutKey, timeout)
	}

	cfg := Config{
		CGIDir:         v.GetString(CGIDirKey),
		Addr:           v.GetString(AddrKey),
		Timeout:        timeout,
		LogLevel:       v.GetString(LogLevelKey),
		ServerSoftware: v.GetString(ServerSoftwareKey),
		MaxBodySize:    v.GetInt64(MaxBodySizeKey),
	}
	if cfg.CGIDir == "" {
		return Config{}, fmt.Errorf("%s is empty", CGIDirKey)
	}
	if cfg.MaxBodySize <= 0 {
		return Config{}, fmt.Errorf("%s must be positive, got %d", MaxBodySizeKey, cfg.MaxBodySize)
	}
	return cfg, nil
}

// Write stores cfg as a TOML file. It refuses to replace an existing file.
func Write(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), dirMode); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	data, err := toml.Marshal(fileSchema{
		CGIDir:         cfg.CGIDir,
		Addr:           cfg.Addr,
		Timeout:        cfg.Timeout.String(),
		LogLevel:       cfg.LogLevel,
		ServerSoftware: cfg.ServerSoftware,
		MaxBodySize:    cfg.MaxBodySize,
	})
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, fileMode)
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			return fmt.Errorf("%w: %s", ErrConfigExists, path)
		}
		return fmt.Errorf("create config file: %w", err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return fmt.Errorf("write config file: %w", err)
	}
	return f.Close()
}

// Host is the part of the config the CGI gateway needs.
func (c Config) Host() host.Config {
	return host.Config{
		CGIDir:         c.CGIDir,
		Timeout:        c.Timeout,
		ServerSoftware: c.ServerSoftware,
		MaxBodySize:    c.MaxBodySize,
	}
}
