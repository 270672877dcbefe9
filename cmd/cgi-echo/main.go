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

// Command cgi-echo is a CGI program that answers with what it received.
// Drop the binary in a cgi dir to check a server setup:
//
//	/cgi-echo?a=1           echoes the method, the query and the user
//	/cgi-echo?private=1     requires Basic credentials
//	/cgi-echo?trace=1       dumps the goroutine stacks
package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/jucacrispim/cgikit/cgi"
)

const realm = "cgi-echo"

func main() {
	if err := run(os.LookupEnv, os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(lookup cgi.LookupFunc, w io.Writer) error {
	query := cgi.QueryFrom(lookup)

	auth, err := cgi.AuthFrom(lookup)
	if err != nil {
		if !errors.Is(err, cgi.ErrMalformedAuth) {
			return err
		}
		if err := cgi.WriteResponse(w, "text/plain", cgi.Status{Code: 400, Reason: "Bad Request"}); err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, "bad credentials")
		return err
	}

	if query["private"] != "" && auth == nil {
		err := cgi.WriteResponse(w, "text/plain", cgi.Status{Code: 401, Reason: "Unauthorized"},
			fmt.Sprintf("WWW-Authenticate: Basic realm=%q", realm))
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, "credentials required")
		return err
	}

	if query["trace"] != "" {
		if err := cgi.WriteResponse(w, "text/plain", cgi.StatusOK); err != nil {
			return err
		}
		_, err := io.WriteString(w, cgi.FullTrace())
		return err
	}

	if err := cgi.WriteResponse(w, "text/plain", cgi.StatusOK, "Cache-Control: no-store"); err != nil {
		return err
	}
	method, _ := lookup("REQUEST_METHOD")
	fmt.Fprintf(w, "method: %s\n", method)

	keys := make([]string, 0, len(query))
	for k := range query {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(w, "query %s: %s\n", k, query[k])
	}
	if auth != nil {
		fmt.Fprintf(w, "user: %s\n", auth.Username)
	}
	return nil
}
