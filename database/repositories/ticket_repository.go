// Copyright 2025 stridemap contributors.
// SPDX-License-Identifier: 	AGPL-3.0-or-later

package repositories

import (
	"github.com/google/uuid"
	"github.com/stridemap-dev/stridemap/database/models"
	"github.com/stridemap-dev/stridemap/shared"
	"gorm.io/gorm"
)

type ticketRepository struct {
	db *gorm.DB
	*GormRepository[uuid.UUID, models.Ticket]
}

func NewTicketRepository(db *gorm.DB) *ticketRepository {
	return &ticketRepository{
		db:             db,
		GormRepository: newGormRepository[uuid.UUID, models.Ticket](db),
	}
}

var _ shared.TicketRepository = &ticketRepository{}

func (r *ticketRepository) FindByThreatIDs(threatIDs []uuid.UUID) ([]models.Ticket, error) {
	if len(threatIDs) == 0 {
		return []models.Ticket{}, nil
	}
	var tickets []models.Ticket
	err := r.db.Where("threat_id IN ?", threatIDs).Order("created_at ASC").Find(&tickets).Error
	return tickets, err
}

func (r *ticketRepository) FindByArtifactID(artifactID uuid.UUID) ([]models.Ticket, error) {
	var tickets []models.Ticket
	err := r.db.Where("artifact_id = ?", artifactID).Order("created_at ASC").Find(&tickets).Error
	return tickets, err
}

func (r *ticketRepository) DeleteByArtifactID(tx *gorm.DB, artifactID uuid.UUID) error {
	return r.GetDB(tx).Where("artifact_id = ?", artifactID).Delete(&models.Ticket{}).Error
}
