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
	"encoding/base64"
	"fmt"
	"strings"
)

const basicScheme = "Basic"

// BasicAuth is the credential pair sent with the Basic scheme.
type BasicAuth struct {
	Username string
	Password string
}

func (a BasicAuth) String() string {
	return fmt.Sprintf("<BasicAuth username=%q password=\"***\">", a.Username)
}

// Header encodes the credentials as an Authorization header value.
func (a BasicAuth) Header() string {
	raw := a.Username + ":" + a.Password
	return basicScheme + " " + base64.StdEncoding.EncodeToString([]byte(raw))
}

// ParseAuth reads the Basic credentials from HTTP_AUTHORIZATION. It returns
// nil and no error when the variable is absent or carries another scheme.
func ParseAuth() (*BasicAuth, error) {
	return AuthFrom(processEnv())
}

func AuthFrom(lookup LookupFunc) (*BasicAuth, error) {
	header, ok := lookup(AuthorizationVar)
	if !ok {
		return nil, nil
	}
	return ParseAuthorization(header)
}

func ParseAuthorization(header string) (*BasicAuth, error) {
	header = strings.TrimSpace(header)
	if header == "" {
		return nil, nil
	}
	scheme, value, found := strings.Cut(header, " ")
	if !found {
		return nil, fmt.Errorf("%w: missing credentials", ErrMalformedAuth)
	}
	if !strings.EqualFold(scheme, basicScheme) {
		return nil, nil
	}

	decoded, err := base64.StdEncoding.DecodeString(strings.TrimSpace(value))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedAuth, err)
	}
	username, password, found := strings.Cut(string(decoded), ":")
	if !found {
		return nil, fmt.Errorf("%w: missing colon separator", ErrMalformedAuth)
	}
	if username == "" || password == "" {
		return nil, fmt.Errorf("%w: empty username or password", ErrMalformedAuth)
	}
	return &BasicAuth{Username: username, Password: password}, nil
}
