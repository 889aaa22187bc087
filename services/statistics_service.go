// Copyright 2025 stridemap contributors.
// SPDX-License-Identifier: 	AGPL-3.0-or-later

package services

import (
	"github.com/google/uuid"
	"github.com/stridemap-dev/stridemap/database/models"
	"github.com/stridemap-dev/stridemap/dtos"
	"github.com/stridemap-dev/stridemap/shared"
	"github.com/stridemap-dev/stridemap/utils"
)

type statisticsService struct {
	artifactRepository shared.ArtifactRepository
}

func NewStatisticsService(artifactRepository shared.ArtifactRepository) *statisticsService {
	return &statisticsService{artifactRepository: artifactRepository}
}

var _ shared.StatisticsService = &statisticsService{}

// GetProjectWorkflowStats aggregates the workflow posture of a project. The
// per-step histogram only counts artifacts with an open workflow, completed
// ones are reported separately.
func (s *statisticsService) GetProjectWorkflowStats(projectID uuid.UUID) (dtos.ProjectWorkflowStats, error) {
	artifacts, err := s.artifactRepository.GetByProjectID(projectID)
	if err != nil {
		return dtos.ProjectWorkflowStats{}, err
	}

	stats := dtos.ProjectWorkflowStats{
		PerStepCounts: make(map[int]int),
	}

	withCycles := 0
	for _, artifact := range artifacts {
		stats.TotalCycles += artifact.WorkflowCyclesCount
		if artifact.WorkflowCyclesCount > 0 {
			withCycles++
		}
		if artifact.WorkflowCompleted {
			stats.CompletedCount++
			continue
		}
		if cycle := artifact.ActiveCycle(); cycle != nil {
			stats.PerStepCounts[cycle.CurrentStep]++
		}
	}

	if withCycles > 0 {
		stats.AverageCycles = float64(stats.TotalCycles) / float64(withCycles)
	}
	return stats, nil
}

// GetArtifactsByWorkflowStep lists a project's artifacts with an open
// workflow, optionally filtered to a single step.
func (s *statisticsService) GetArtifactsByWorkflowStep(projectID uuid.UUID, step *int) ([]models.Artifact, error) {
	artifacts, err := s.artifactRepository.GetByProjectID(projectID)
	if err != nil {
		return nil, err
	}

	return utils.Filter(artifacts, func(a models.Artifact) bool {
		if a.WorkflowCompleted {
			return false
		}
		if step == nil {
			return true
		}
		return a.CurrentWorkflowStep == *step
	}), nil
}
