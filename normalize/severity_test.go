// Copyright 2025 stridemap contributors.
// SPDX-License-Identifier: 	AGPL-3.0-or-later
package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stridemap-dev/stridemap/dtos"
)

func TestSeverity(t *testing.T) {
	t.Run("should normalize common scanner labels", func(t *testing.T) {
		assert.Equal(t, dtos.SeverityCritical, Severity("CRITICAL"))
		assert.Equal(t, dtos.SeverityHigh, Severity("Important"))
		assert.Equal(t, dtos.SeverityMedium, Severity(" moderate "))
		assert.Equal(t, dtos.SeverityLow, Severity("negligible"))
	})

	t.Run("should map unknown labels to unknown", func(t *testing.T) {
		assert.Equal(t, dtos.SeverityUnknown, Severity(""))
		assert.Equal(t, dtos.SeverityUnknown, Severity("info"))
	})
}

func TestSeverityFromScore(t *testing.T) {
	assert.Equal(t, dtos.SeverityCritical, SeverityFromScore(9.8))
	assert.Equal(t, dtos.SeverityHigh, SeverityFromScore(7.0))
	assert.Equal(t, dtos.SeverityMedium, SeverityFromScore(5.4))
	assert.Equal(t, dtos.SeverityLow, SeverityFromScore(0.1))
	assert.Equal(t, dtos.SeverityUnknown, SeverityFromScore(0))
}

func TestScoreFromVector(t *testing.T) {
	t.Run("should score a cvss 3.1 vector", func(t *testing.T) {
		score := ScoreFromVector("CVSS:3.1/AV:N/AC:L/PR:N/UI:N/S:U/C:H/I:H/A:H")

		if assert.NotNil(t, score) {
			assert.InDelta(t, 9.8, *score, 0.001)
		}
	})

	t.Run("should score a cvss 3.0 vector", func(t *testing.T) {
		score := ScoreFromVector("CVSS:3.0/AV:N/AC:L/PR:N/UI:N/S:U/C:L/I:L/A:N")

		if assert.NotNil(t, score) {
			assert.InDelta(t, 6.5, *score, 0.001)
		}
	})

	t.Run("should fall back to cvss 2.0 parsing for unprefixed vectors", func(t *testing.T) {
		score := ScoreFromVector("AV:N/AC:L/Au:N/C:C/I:C/A:C")

		if assert.NotNil(t, score) {
			assert.InDelta(t, 10.0, *score, 0.001)
		}
	})

	t.Run("should return nil for garbage", func(t *testing.T) {
		assert.Nil(t, ScoreFromVector(""))
		assert.Nil(t, ScoreFromVector("not-a-vector"))
		assert.Nil(t, ScoreFromVector("CVSS:3.1/bogus"))
	})
}
