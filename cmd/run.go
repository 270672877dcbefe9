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

package cmd

import (
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sort"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/jucacrispim/cgikit/cgi"
	"github.com/jucacrispim/cgikit/internal/host"
)

type runOptions struct {
	method   string
	query    string
	data     string
	user     string
	password string
	headers  []string
}

func newRunCmd(a *app) *cobra.Command {
	var opts runOptions

	cmd := &cobra.Command{
		Use:   "run <path>",
		Short: "Run one CGI script and print its response",
		Long: "run resolves <path> below the cgi dir the way serve does, runs the script " +
			"with the given request and prints the status line, the headers and the body.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.setup()
			if err != nil {
				return err
			}
			if err := cfg.Host().Validate(); err != nil {
				return fmt.Errorf("cgi dir: %w", err)
			}

			req, err := opts.request(args[0])
			if err != nil {
				return err
			}
			rec := httptest.NewRecorder()
			host.New(cfg.Host(), a.logger).ServeHTTP(rec, req)
			return printResponse(cmd.OutOrStdout(), rec)
		},
	}

	cmd.Flags().StringVarP(&opts.method, "method", "X", http.MethodGet, "request method")
	cmd.Flags().StringVarP(&opts.query, "query", "q", "", "query string, e.g. a=1&b=2")
	cmd.Flags().StringVarP(&opts.data, "data", "d", "", "request body")
	cmd.Flags().StringVarP(&opts.user, "user", "u", "", "Basic auth username")
	cmd.Flags().StringVarP(&opts.password, "password", "p", "", "Basic auth password")
	cmd.Flags().StringArrayVarP(&opts.headers, "header", "H", nil, "extra request header, e.g. 'Accept: text/plain'")
	return cmd
}

func (o runOptions) request(path string) (*http.Request, error) {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	u := &url.URL{Scheme: "http", Host: "localhost", Path: path, RawQuery: o.query}

	var body io.Reader
	if o.data != "" {
		body = strings.NewReader(o.data)
	}
	req, err := http.NewRequest(strings.ToUpper(o.method), u.String(), body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.RemoteAddr = "127.0.0.1:0"
	if o.data != "" {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	for _, h := range o.headers {
		k, v, found := strings.Cut(h, ":")
		if !found {
			return nil, fmt.Errorf("bad header %q, want 'Name: value'", h)
		}
		req.Header.Add(strings.TrimSpace(k), strings.TrimSpace(v))
	}
	if o.user != "" {
		req.Header.Set("Authorization", cgi.BasicAuth{Username: o.user, Password: o.password}.Header())
	}
	return req, nil
}

func printResponse(out io.Writer, rec *httptest.ResponseRecorder) error {
	status := cgi.Status{Code: rec.Code, Reason: http.StatusText(rec.Code)}
	statusColor(rec.Code).Fprintf(out, "Status: %s\n", status)

	header := rec.Header()
	keys := make([]string, 0, len(header))
	for k := range header {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		for _, v := range header[k] {
			fmt.Fprintf(out, "%s: %s\n", k, v)
		}
	}
	fmt.Fprintln(out)
	if _, err := out.Write(rec.Body.Bytes()); err != nil {
		return err
	}

	if rec.Code >= http.StatusInternalServerError {
		return fmt.Errorf("script failed with status %d", rec.Code)
	}
	return nil
}

func statusColor(code int) *color.Color {
	switch {
	case code >= 500:
		return color.New(color.FgRed, color.Bold)
	case code >= 400:
		return color.New(color.FgYellow)
	case code >= 300:
		return color.New(color.FgCyan)
	}
	return color.New(color.FgGreen)
}
