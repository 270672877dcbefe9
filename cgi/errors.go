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

import "errors"

var (
	ErrMalformedAuth   = errors.New("[cgi] malformed authorization")
	ErrHeaderInjection = errors.New("[cgi] header line contains a line break")
	ErrInvalidResponse = errors.New("[cgi] invalid cgi response")
	ErrInvalidStatus   = errors.New("[cgi] invalid status")
)
