// Copyright (C) 2025 stridemap contributors
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

package controllers

import (
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/stridemap-dev/stridemap/shared"
)

// httpError maps the core error taxonomy onto HTTP status codes. Anything
// outside the taxonomy is a 500 with the original error attached as the
// internal cause.
func httpError(err error, msg string) *echo.HTTPError {
	switch {
	case shared.IsNotFound(err):
		return echo.NewHTTPError(404, msg).WithInternal(err)
	case shared.IsValidation(err):
		return echo.NewHTTPError(400, msg).WithInternal(err)
	case errors.Is(err, shared.ErrConcurrencyConflict):
		return echo.NewHTTPError(409, msg).WithInternal(err)
	default:
		return echo.NewHTTPError(500, msg).WithInternal(err)
	}
}

func bindAndValidate(ctx shared.Context, body any) error {
	if err := ctx.Bind(body); err != nil {
		return echo.NewHTTPError(400, "could not parse request body").WithInternal(err)
	}
	if err := shared.V.Struct(body); err != nil {
		return echo.NewHTTPError(400, err.Error()).WithInternal(err)
	}
	return nil
}
