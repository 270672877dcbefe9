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

// Package cgi holds the helpers a CGI program needs: writing the response
// preamble, reading the query string and Basic credentials from the
// environment the server hands over, and dumping goroutine stacks when
// something goes wrong.
package cgi

import "os"

const (
	QueryStringVar   = "QUERY_STRING"
	AuthorizationVar = "HTTP_AUTHORIZATION"
)

// LookupFunc reads one meta-variable. os.LookupEnv is the usual one.
type LookupFunc func(key string) (string, bool)

// MapLookup serves meta-variables from a map instead of the process
// environment.
func MapLookup(m map[string]string) LookupFunc {
	return func(key string) (string, bool) {
		v, ok := m[key]
		return v, ok
	}
}

func processEnv() LookupFunc {
	return os.LookupEnv
}
