// Copyright 2025 stridemap contributors.
// SPDX-License-Identifier: 	AGPL-3.0-or-later

package utils

// Tabler is implemented by every gorm model.
type Tabler interface {
	TableName() string
}
