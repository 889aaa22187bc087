// Copyright 2025 stridemap contributors.
// SPDX-License-Identifier: 	AGPL-3.0-or-later

package repositories

import (
	"github.com/google/uuid"
	"github.com/stridemap-dev/stridemap/database/models"
	"github.com/stridemap-dev/stridemap/shared"
	"gorm.io/gorm"
)

type scanHistoryRepository struct {
	db *gorm.DB
	*GormRepository[uuid.UUID, models.ScanHistory]
}

func NewScanHistoryRepository(db *gorm.DB) *scanHistoryRepository {
	return &scanHistoryRepository{
		db:             db,
		GormRepository: newGormRepository[uuid.UUID, models.ScanHistory](db),
	}
}

var _ shared.ScanHistoryRepository = &scanHistoryRepository{}

func (r *scanHistoryRepository) FindByArtifactID(artifactID uuid.UUID) ([]models.ScanHistory, error) {
	var histories []models.ScanHistory
	err := r.db.Where("artifact_id = ?", artifactID).Order("created_at DESC").Find(&histories).Error
	return histories, err
}
