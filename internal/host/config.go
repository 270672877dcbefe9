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
	"fmt"
	"os"
	"time"
)

const (
	DefaultTimeout        = 30 * time.Second
	DefaultServerSoftware = "cgikit"
	DefaultMaxBodySize    = 10 << 20
)

type Config struct {
	CGIDir         string
	Timeout        time.Duration
	ServerSoftware string
	// MaxBodySize is the largest request body, in bytes, passed to a script.
	MaxBodySize int64
}

// ConfigFromMap reads the plugin config given by tupi. CGI_DIR is required,
// TIMEOUT is in seconds and MAX_BODY_SIZE in bytes.
func ConfigFromMap(conf map[string]any) (Config, error) {
	if conf == nil {
		return Config{}, MissingConfigError
	}

	d, exists := conf["CGI_DIR"]
	if !exists {
		return Config{}, NoCgiDirError
	}
	cgiDir, ok := d.(string)
	if !ok {
		return Config{}, BadCgiDirError
	}

	cfg := Config{CGIDir: cgiDir}
	if t, exists := conf["TIMEOUT"]; exists {
		secs, ok := toNumber(t)
		if !ok || secs <= 0 {
			return Config{}, BadTimeoutError
		}
		cfg.Timeout = time.Duration(secs * float64(time.Second))
	}
	if m, exists := conf["MAX_BODY_SIZE"]; exists {
		size, ok := toNumber(m)
		if !ok || size < 1 || size != float64(int64(size)) {
			return Config{}, BadMaxBodySizeError
		}
		cfg.MaxBodySize = int64(size)
	}
	if s, ok := conf["SERVER_SOFTWARE"].(string); ok {
		cfg.ServerSoftware = s
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg.withDefaults(), nil
}

func (c Config) Validate() error {
	if c.CGIDir == "" {
		return NoCgiDirError
	}
	info, err := os.Stat(c.CGIDir)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: %s is not a directory", BadCgiDirError, c.CGIDir)
	}
	return nil
}

func (c Config) withDefaults() Config {
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	if c.ServerSoftware == "" {
		c.ServerSoftware = DefaultServerSoftware
	}
	if c.MaxBodySize <= 0 {
		c.MaxBodySize = DefaultMaxBodySize
	}
	return c
}

// toml numbers arrive as int64 or float64
func toNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}
