// Copyright 2025 stridemap contributors.
// SPDX-License-Identifier: 	AGPL-3.0-or-later

package models

import (
	"time"

	"github.com/google/uuid"
)

// Scanner is a registered scanning tool. The aggregator derives the expected
// scanner count for a scan from the enabled scanners when the caller does not
// pass one explicitly.
type Scanner struct {
	ID        uuid.UUID `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	CreatedAt time.Time `json:"createdAt"`
	Name      string    `json:"name" gorm:"uniqueIndex;not null"`
	// Kind is the tool family: sast, sca, image or dast.
	Kind    string `json:"kind" gorm:"not null"`
	Enabled bool   `json:"enabled" gorm:"default:true"`
}

func (s Scanner) TableName() string {
	return "scanners"
}
