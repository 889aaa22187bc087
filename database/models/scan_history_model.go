// Copyright 2025 stridemap contributors.
// SPDX-License-Identifier: 	AGPL-3.0-or-later

package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/stridemap-dev/stridemap/dtos"
	"gorm.io/datatypes"
)

// ScanHistory is the audit snapshot the reconciler writes after every
// completed scan cycle.
type ScanHistory struct {
	ID        uuid.UUID `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	CreatedAt time.Time `json:"createdAt"`

	ArtifactID uuid.UUID `json:"artifactId" gorm:"not null;type:uuid;index"`
	Artifact   Artifact  `json:"-" gorm:"foreignKey:ArtifactID;constraint:OnDelete:CASCADE;"`

	Vulnerabilities datatypes.JSONSlice[dtos.Vulnerability] `json:"vulnerabilities"`
}

func (s ScanHistory) TableName() string {
	return "scan_histories"
}
