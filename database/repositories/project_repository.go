// Copyright 2025 stridemap contributors.
// SPDX-License-Identifier: 	AGPL-3.0-or-later

package repositories

import (
	goerrors "errors"

	"github.com/google/uuid"
	"github.com/stridemap-dev/stridemap/database/models"
	"github.com/stridemap-dev/stridemap/shared"
	"gorm.io/gorm"
)

type projectRepository struct {
	db *gorm.DB
	*GormRepository[uuid.UUID, models.Project]
}

func NewProjectRepository(db *gorm.DB) *projectRepository {
	return &projectRepository{
		db:             db,
		GormRepository: newGormRepository[uuid.UUID, models.Project](db),
	}
}

var _ shared.ProjectRepository = &projectRepository{}

func (r *projectRepository) ReadByName(name string) (models.Project, error) {
	var project models.Project
	err := r.db.First(&project, "name = ?", name).Error
	if goerrors.Is(err, gorm.ErrRecordNotFound) {
		return project, shared.ErrNotFound
	}
	return project, err
}
