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

package middlewares

import (
	"github.com/labstack/echo/v4"
	"github.com/stridemap-dev/stridemap/shared"
)

// ProjectScoped resolves the :projectID path parameter and puts the project
// on the request context. Routes below it can rely on shared.GetProject.
func ProjectScoped(projectRepository shared.ProjectRepository) shared.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx shared.Context) error {
			id, err := shared.ParseID(ctx, "projectID")
			if err != nil {
				return echo.NewHTTPError(400, "invalid project id").WithInternal(err)
			}
			project, err := projectRepository.Read(id)
			if err != nil {
				if shared.IsNotFound(err) {
					return echo.NewHTTPError(404, "project not found")
				}
				return echo.NewHTTPError(500, "could not read project").WithInternal(err)
			}
			shared.SetProject(ctx, project)
			return next(ctx)
		}
	}
}

// ArtifactScoped resolves :artifactID below a project scoped route. The
// artifact must belong to the project on the context.
func ArtifactScoped(artifactRepository shared.ArtifactRepository) shared.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx shared.Context) error {
			id, err := shared.ParseID(ctx, "artifactID")
			if err != nil {
				return echo.NewHTTPError(400, "invalid artifact id").WithInternal(err)
			}
			artifact, err := artifactRepository.Read(id)
			if err != nil {
				if shared.IsNotFound(err) {
					return echo.NewHTTPError(404, "artifact not found")
				}
				return echo.NewHTTPError(500, "could not read artifact").WithInternal(err)
			}
			project := shared.GetProject(ctx)
			if artifact.ProjectID != project.ID {
				return echo.NewHTTPError(404, "artifact not found")
			}
			shared.SetArtifact(ctx, artifact)
			return next(ctx)
		}
	}
}
