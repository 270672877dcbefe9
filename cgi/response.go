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
	"os"
	"strings"
)

const DefaultContentType = "text/html"

// Status is the code and reason phrase of the Status header.
type Status struct {
	Code   int
	Reason string
}

var StatusOK = Status{Code: 200, Reason: "OK"}

func (s Status) String() string {
	if s.Reason == "" {
		return fmt.Sprintf("%d", s.Code)
	}
	return fmt.Sprintf("%d %s", s.Code, s.Reason)
}

func (s Status) isZero() bool {
	return s.Code == 0 && s.Reason == ""
}

// Preamble is the header block a CGI program prints before its body.
// Extra holds complete header lines, e.g. "Cache-Control: no-store".
type Preamble struct {
	ContentType string
	Status      Status
	Extra       []string
}

// Write emits the status line, the content type, the extra lines and the
// blank separator line, then flushes. Nothing is written if an extra line
// is invalid.
func (p Preamble) Write(w io.Writer) error {
	for _, line := range p.Extra {
		if strings.ContainsAny(line, "\r\n") {
			return fmt.Errorf("%w: %q", ErrHeaderInjection, line)
		}
	}
	contentType := p.ContentType
	if contentType == "" {
		contentType = DefaultContentType
	}
	if strings.ContainsAny(contentType, "\r\n") {
		return fmt.Errorf("%w: %q", ErrHeaderInjection, contentType)
	}
	status := p.Status
	if status.isZero() {
		status = StatusOK
	}

	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "Status: %s\n", status)
	fmt.Fprintf(bw, "Content-Type: %s\n", contentType)
	for _, line := range p.Extra {
		fmt.Fprintf(bw, "%s\n", line)
	}
	bw.WriteString("\n")
	return bw.Flush()
}

// WriteResponse writes the preamble to w.
func WriteResponse(w io.Writer, contentType string, status Status, extra ...string) error {
	p := Preamble{ContentType: contentType, Status: status, Extra: extra}
	return p.Write(w)
}

// StartResponse writes the preamble to standard output. An empty content
// type means text/html and a zero status means 200 OK.
func StartResponse(contentType string, status Status, extra ...string) error {
	return WriteResponse(os.Stdout, contentType, status, extra...)
}
