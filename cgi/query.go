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
	"encoding/hex"
	"net/url"
	"strings"
)

// Query returns the request query parameters found in QUERY_STRING.
func Query() map[string]string {
	return QueryFrom(processEnv())
}

func QueryFrom(lookup LookupFunc) map[string]string {
	raw, ok := lookup(QueryStringVar)
	if !ok {
		return map[string]string{}
	}
	return ParseQuery(raw)
}

// ParseQuery decodes a query string keeping the first value of each key.
// Pairs with an empty value are skipped. Malformed percent escapes are kept
// as literal text.
func ParseQuery(raw string) map[string]string {
	params := make(map[string]string)
	for raw != "" {
		var pair string
		pair, raw, _ = strings.Cut(raw, "&")
		if pair == "" {
			continue
		}
		k, v, _ := strings.Cut(pair, "=")
		key, value := unescape(k), unescape(v)
		if value == "" {
			continue
		}
		if _, seen := params[key]; seen {
			continue
		}
		params[key] = value
	}
	return params
}

// unescape decodes like url.QueryUnescape but leaves invalid % sequences
// untouched instead of failing.
func unescape(s string) string {
	if v, err := url.QueryUnescape(s); err == nil {
		return v
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '+':
			b.WriteByte(' ')
		case c == '%' && i+2 < len(s):
			d, err := hex.DecodeString(s[i+1 : i+3])
			if err != nil {
				b.WriteByte(c)
				continue
			}
			b.Write(d)
			i += 2
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}
