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
	"net"
	"net/http"
	"os"
	"path"
	"strconv"
	"strings"

	"github.com/jucacrispim/cgikit/cgi"
)

// metaVars builds the RFC 3875 meta-variables for the request. Every
// request header is passed on as HTTP_<NAME>, Authorization included, so
// scripts can read their credentials with cgi.ParseAuth.
func (h *Handler) metaVars(r *http.Request, requestID string) (map[string]string, error) {
	meta := make(map[string]string)

	for k, values := range r.Header {
		name := strings.ReplaceAll(strings.ToUpper(k), "-", "_")
		switch name {
		case "CONTENT_TYPE", "CONTENT_LENGTH", "PROXY":
			continue
		}
		meta["HTTP_"+name] = strings.Join(values, ", ")
	}

	scriptFile, scriptName, pathInfo := findScript(h.cfg.CGIDir, r.URL.Path)
	pathTranslated := ""
	if pathInfo != "" {
		pathTranslated = h.cfg.CGIDir + pathInfo
	}

	contentLength := ""
	if r.ContentLength > 0 {
		contentLength = strconv.FormatInt(r.ContentLength, 10)
	}

	meta["AUTH_TYPE"] = ""
	meta["REMOTE_USER"] = ""
	if auth, err := cgi.ParseAuthorization(r.Header.Get("Authorization")); err == nil && auth != nil {
		meta["AUTH_TYPE"] = "Basic"
		meta["REMOTE_USER"] = auth.Username
	}

	meta["CONTENT_LENGTH"] = contentLength
	meta["CONTENT_TYPE"] = r.Header.Get("Content-Type")
	meta["GATEWAY_INTERFACE"] = "CGI/1.1"
	meta["PATH_INFO"] = pathInfo
	meta["PATH_TRANSLATED"] = pathTranslated
	meta["SCRIPT_NAME"] = scriptName
	meta["SCRIPT_FILENAME"] = scriptFile
	meta["QUERY_STRING"] = r.URL.RawQuery
	meta["REMOTE_ADDR"], meta["REMOTE_PORT"] = remoteAddr(r)
	meta["REQUEST_METHOD"] = r.Method
	meta["SERVER_NAME"] = getDomainForRequest(r)
	port, err := getPortForRequest(r)
	if err != nil {
		return nil, err
	}
	meta["SERVER_PORT"] = strconv.Itoa(port)
	meta["SERVER_PROTOCOL"] = r.Proto
	meta["SERVER_SOFTWARE"] = h.cfg.ServerSoftware
	meta["UNIQUE_ID"] = requestID

	return meta, nil
}

func getDomainForRequest(req *http.Request) string {
	domain := req.Host
	if host, _, err := net.SplitHostPort(req.Host); err == nil {
		domain = host
	}
	return strings.ToLower(domain)
}

func getPortForRequest(r *http.Request) (int, error) {
	if strings.Count(r.Host, ":") > 1 && !strings.HasPrefix(r.Host, "[") {
		return 0, ConfusionError
	}
	if _, port, err := net.SplitHostPort(r.Host); err == nil {
		return strconv.Atoi(port)
	}

	if r.TLS != nil {
		return 443, nil
	}
	switch r.URL.Scheme {
	case "", "http":
		return 80, nil
	case "https":
		return 443, nil
	}
	return 0, UnknownSchemeError
}

func remoteAddr(req *http.Request) (string, string) {
	host, port, err := net.SplitHostPort(req.RemoteAddr)
	if err != nil {
		return req.RemoteAddr, ""
	}
	return host, port
}

// findScript walks the cleaned url path below cgiDir. The first regular
// file found is the script and what is left of the path is the path info.
// It returns the script file, its url path and the path info.
func findScript(cgiDir string, urlPath string) (string, string, string) {
	cleaned := path.Clean("/" + urlPath)
	parts := strings.Split(strings.TrimPrefix(cleaned, "/"), "/")
	scriptPath := cgiDir
	for i, p := range parts {
		if p == "" {
			break
		}
		testPath := scriptPath + string(os.PathSeparator) + p
		info, err := os.Stat(testPath)
		if err != nil {
			return "", "", "/" + strings.Join(parts[i:], "/")
		}
		if info.Mode().IsRegular() {
			pathInfo := ""
			if rest := parts[i+1:]; len(rest) > 0 {
				pathInfo = "/" + strings.Join(rest, "/")
			}
			return testPath, "/" + strings.Join(parts[:i+1], "/"), pathInfo
		}
		scriptPath = testPath
	}
	return "", "", ""
}
