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

package cgi

import (
	"bufio"
	"fmt"
	"io"
	"net/http"
	"net/textproto"
	"strconv"
	"strings"
)

// Response is a CGI program's output as seen by the server.
type Response struct {
	Status Status
	Header http.Header
	Body   []byte
}

// ParseResponse splits a program's output into its header block and body
// and resolves the status. Without a Status header a Location header means
// a 302 redirect and anything else means 200.
func ParseResponse(r io.Reader) (*Response, error) {
	br := bufio.NewReader(r)
	mime, err := textproto.NewReader(br).ReadMIMEHeader()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidResponse, err)
	}
	body, err := io.ReadAll(br)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidResponse, err)
	}

	header := http.Header(mime)
	resp := &Response{Status: StatusOK, Header: header, Body: body}
	if sts := header.Get("Status"); sts != "" {
		resp.Status, err = ParseStatus(sts)
		if err != nil {
			return nil, err
		}
		header.Del("Status")
	} else if header.Get("Location") != "" {
		resp.Status = Status{Code: http.StatusFound, Reason: http.StatusText(http.StatusFound)}
	}
	return resp, nil
}

// ParseStatus reads a Status header value such as "404 Not Found" or "404".
// Informational 1xx codes are rejected: a script's status is always final.
func ParseStatus(value string) (Status, error) {
	codeStr, reason, _ := strings.Cut(strings.TrimSpace(value), " ")
	code, err := strconv.Atoi(codeStr)
	if err != nil || code < 200 || code > 999 {
		return Status{}, fmt.Errorf("%w: %q", ErrInvalidStatus, value)
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		reason = http.StatusText(code)
	}
	return Status{Code: code, Reason: reason}, nil
}
