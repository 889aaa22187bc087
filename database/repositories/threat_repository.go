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

type threatRepository struct {
	db *gorm.DB
	*GormRepository[uuid.UUID, models.Threat]
}

func NewThreatRepository(db *gorm.DB) *threatRepository {
	return &threatRepository{
		db:             db,
		GormRepository: newGormRepository[uuid.UUID, models.Threat](db),
	}
}

var _ shared.ThreatRepository = &threatRepository{}

func (r *threatRepository) FindByName(name string) (models.Threat, error) {
	var threat models.Threat
	err := r.db.First(&threat, "name = ?", name).Error
	if goerrors.Is(err, gorm.ErrRecordNotFound) {
		return threat, shared.ErrNotFound
	}
	return threat, err
}
