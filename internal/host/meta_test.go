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
	"crypto/tls"
	"errors"
	"net/http"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/zap"
)

func TestGetMetaVars(t *testing.T) {
	dir := cgiDir(t)
	script := filepath.Join(dir, "something")

	expected := func(overrides map[string]string) map[string]string {
		m := map[string]string{
			"AUTH_TYPE":            "",
			"CONTENT_LENGTH":       "",
			"CONTENT_TYPE":         "",
			"GATEWAY_INTERFACE":    "CGI/1.1",
			"HTTP_SERVER_SOFTWARE": "tupi",
			"PATH_INFO":            "",
			"PATH_TRANSLATED":      "",
			"QUERY_STRING":         "",
			"REMOTE_ADDR":          "",
			"REMOTE_PORT":          "",
			"REMOTE_USER":          "",
			"REQUEST_METHOD":       "GET",
			"SCRIPT_FILENAME":      script,
			"SCRIPT_NAME":          "/something",
			"SERVER_NAME":          "",
			"SERVER_PORT":          "80",
			"SERVER_PROTOCOL":      "HTTP/1.1",
			"SERVER_SOFTWARE":      "cgikit",
			"UNIQUE_ID":            "req-1",
		}
		for k, v := range overrides {
			m[k] = v
		}
		return m
	}

	var testCases = []struct {
		name     string
		r        *http.Request
		expected map[string]string
	}{
		{
			"simple",
			func() *http.Request {
				r, _ := http.NewRequest("GET", "/something", nil)
				r.URL.Scheme = "http"
				r.Header.Add("Server-Software", "tupi")
				return r
			}(),
			expected(nil),
		},
		{
			"script does not exist",
			func() *http.Request {
				r, _ := http.NewRequest("GET", "/bad.cgi", nil)
				r.Header.Add("Server-Software", "tupi")
				return r
			}(),
			expected(map[string]string{
				"SCRIPT_NAME":     "",
				"SCRIPT_FILENAME": "",
				"PATH_INFO":       "/bad.cgi",
				"PATH_TRANSLATED": dir + "/bad.cgi",
			}),
		},
		{
			"with path info",
			func() *http.Request {
				r, _ := http.NewRequest("GET", "/something/the/path", nil)
				r.TLS = &tls.ConnectionState{}
				r.Header.Add("Server-Software", "tupi")
				return r
			}(),
			expected(map[string]string{
				"SERVER_PORT":     "443",
				"PATH_INFO":       "/the/path",
				"PATH_TRANSLATED": dir + "/the/path",
			}),
		},
		{
			"nested script",
			func() *http.Request {
				r, _ := http.NewRequest("GET", "/sub/nested/x", nil)
				r.Header.Add("Server-Software", "tupi")
				return r
			}(),
			expected(map[string]string{
				"SCRIPT_NAME":     "/sub/nested",
				"SCRIPT_FILENAME": filepath.Join(dir, "sub", "nested"),
				"PATH_INFO":       "/x",
				"PATH_TRANSLATED": dir + "/x",
			}),
		},
		{
			"with query string",
			func() *http.Request {
				r, _ := http.NewRequest("GET", "https://example.com/something?the=query&other=param", nil)
				r.Header.Add("Server-Software", "tupi")
				return r
			}(),
			expected(map[string]string{
				"QUERY_STRING": "the=query&other=param",
				"SERVER_NAME":  "example.com",
				"SERVER_PORT":  "443",
			}),
		},
		{
			"custom port and remote addr",
			func() *http.Request {
				r, _ := http.NewRequest("GET", "/something", nil)
				r.Host = "LocalHost:1234"
				r.RemoteAddr = "10.0.0.7:51000"
				r.Header.Add("Server-Software", "tupi")
				return r
			}(),
			expected(map[string]string{
				"SERVER_NAME": "localhost",
				"SERVER_PORT": "1234",
				"REMOTE_ADDR": "10.0.0.7",
				"REMOTE_PORT": "51000",
			}),
		},
		{
			"basic auth and content type",
			func() *http.Request {
				r, _ := http.NewRequest("GET", "/something", nil)
				r.SetBasicAuth("juca", "secret")
				r.Header.Add("Server-Software", "tupi")
				r.Header.Add("Content-Type", "text/plain")
				r.Header.Add("X-Forwarded-For", "1.2.3.4")
				return r
			}(),
			expected(map[string]string{
				"AUTH_TYPE":            "Basic",
				"REMOTE_USER":          "juca",
				"HTTP_AUTHORIZATION":   "Basic anVjYTpzZWNyZXQ=",
				"CONTENT_TYPE":         "text/plain",
				"HTTP_X_FORWARDED_FOR": "1.2.3.4",
			}),
		},
	}

	h := New(Config{CGIDir: dir}, zap.NewNop())
	for _, test := range testCases {
		t.Run(test.name, func(t *testing.T) {
			meta, err := h.metaVars(test.r, "req-1")
			if err != nil {
				t.Fatal(err)
			}
			if diff := cmp.Diff(test.expected, meta); diff != "" {
				t.Fatalf("Bad meta vars (-want +got):\n%s", diff)
			}
		})
	}
}

func TestGetPortForRequest(t *testing.T) {
	var testCases = []struct {
		name string
		host string
		port int
		err  error
	}{
		{"no host", "", 80, nil},
		{"explicit port", "localhost:8081", 8081, nil},
		{"ipv6 with port", "[::1]:9000", 9000, nil},
		{"ipv6 without port", "[::1]", 80, nil},
		{"confused", "a:b:c", 0, ConfusionError},
	}

	for _, test := range testCases {
		t.Run(test.name, func(t *testing.T) {
			r, _ := http.NewRequest("GET", "/", nil)
			r.Host = test.host
			port, err := getPortForRequest(r)
			if !errors.Is(err, test.err) {
				t.Fatal(err)
			}
			if port != test.port {
				t.Fatalf("bad port %d", port)
			}
		})
	}
}

func TestFindScript(t *testing.T) {
	dir := cgiDir(t)

	var testCases = []struct {
		path     string
		file     string
		name     string
		pathInfo string
	}{
		{"/something", dir + "/something", "/something", ""},
		{"/something/a/b", dir + "/something", "/something", "/a/b"},
		{"/sub/nested", dir + "/sub/nested", "/sub/nested", ""},
		{"/sub", "", "", ""},
		{"/", "", "", ""},
		{"/missing/x", "", "", "/missing/x"},
		{"../../../../../bin/ls", "", "", "/bin/ls"},
		{"/sub/../something", dir + "/something", "/something", ""},
	}

	for _, test := range testCases {
		t.Run(test.path, func(t *testing.T) {
			file, name, pathInfo := findScript(dir, test.path)
			if file != test.file || name != test.name || pathInfo != test.pathInfo {
				t.Fatalf("got %q %q %q", file, name, pathInfo)
			}
		})
	}
}
