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
// along with this program.  If not, see <http://www.gnu.org/licenses/>.
package shared

import (
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/stridemap-dev/stridemap/database/models"
)

func GetProject(ctx Context) models.Project {
	return ctx.Get("project").(models.Project)
}

func SetProject(ctx Context, project models.Project) {
	ctx.Set("project", project)
}

func GetArtifact(ctx Context) models.Artifact {
	return ctx.Get("artifact").(models.Artifact)
}

func SetArtifact(ctx Context, artifact models.Artifact) {
	ctx.Set("artifact", artifact)
}

// ParseID parses a path parameter into a uuid, mapping garbage input onto
// the validation error class.
func ParseID(ctx Context, param string) (uuid.UUID, error) {
	id, err := uuid.Parse(ctx.Param(param))
	if err != nil {
		return uuid.Nil, errors.Wrapf(ErrValidation, "invalid %s: %s", param, ctx.Param(param))
	}
	return id, nil
}
