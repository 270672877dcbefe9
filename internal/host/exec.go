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
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

const (
	maxStderrLog = 4 << 10
	waitDelay    = 500 * time.Millisecond
)

// execScript runs the script named by SCRIPT_FILENAME with the meta
// variables as its environment and returns what it wrote to stdout.
func (h *Handler) execScript(ctx context.Context, meta map[string]string, rawBody []byte) (*bytes.Buffer, error) {
	script := meta["SCRIPT_FILENAME"]
	if script == "" {
		return nil, NoScriptError
	}
	cmdPath, err := filepath.Abs(script)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, h.cfg.Timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, cmdPath)
	cmd.Dir = filepath.Dir(cmdPath)
	cmd.Env = scriptEnv(meta)
	if rawBody != nil {
		cmd.Stdin = bytes.NewReader(rawBody)
	}
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	cmd.WaitDelay = waitDelay

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("%s: %w", script, ctx.Err())
		}
		return nil, fmt.Errorf("%s: %w: %s", script, err, truncate(stderr.String(), maxStderrLog))
	}
	return &stdout, nil
}

func scriptEnv(meta map[string]string) []string {
	env := make([]string, 0, len(meta)+1)
	for k, v := range meta {
		env = append(env, fmt.Sprintf("%s=%s", k, v))
	}
	if p, ok := os.LookupEnv("PATH"); ok {
		env = append(env, "PATH="+p)
	}
	sort.Strings(env)
	return env
}

func truncate(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
