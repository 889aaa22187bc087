// Copyright 2025 stridemap contributors.
// SPDX-License-Identifier: 	AGPL-3.0-or-later

package repositories

import (
	"github.com/google/uuid"
	"github.com/stridemap-dev/stridemap/database/models"
	"github.com/stridemap-dev/stridemap/shared"
	"gorm.io/gorm"
)

type scannerRepository struct {
	db *gorm.DB
	*GormRepository[uuid.UUID, models.Scanner]
}

func NewScannerRepository(db *gorm.DB) *scannerRepository {
	return &scannerRepository{
		db:             db,
		GormRepository: newGormRepository[uuid.UUID, models.Scanner](db),
	}
}

var _ shared.ScannerRepository = &scannerRepository{}

func (r *scannerRepository) CountEnabled() (int, error) {
	var count int64
	err := r.db.Model(&models.Scanner{}).Where("enabled = ?", true).Count(&count).Error
	return int(count), err
}
