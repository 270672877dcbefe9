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

import "errors"

var INTERNAL_SERVER_ERROR_MSG = "Internal server error"

var MissingConfigError = errors.New("[cgikit] No config")
var NoCgiDirError = errors.New("[cgikit] CGI_DIR missing from config")
var BadCgiDirError = errors.New("[cgikit] CGI_DIR wrong config value")
var BadTimeoutError = errors.New("[cgikit] TIMEOUT wrong config value")
var BadMaxBodySizeError = errors.New("[cgikit] MAX_BODY_SIZE wrong config value")
var UnknownSchemeError = errors.New("[cgikit] Unknown scheme")
var ConfusionError = errors.New("[cgikit] Im'm confused")
var NoScriptError = errors.New("[cgikit] No script to run")
