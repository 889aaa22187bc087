// Copyright (C) 2025 stridemap contributors
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.
package services

import (
	"sync"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/stridemap-dev/stridemap/database/models"
	"github.com/stridemap-dev/stridemap/dtos"
	"github.com/stridemap-dev/stridemap/shared"
	"github.com/stridemap-dev/stridemap/statemachine"
	"github.com/stridemap-dev/stridemap/utils"
	"gorm.io/datatypes"
)

// fakeStore is an in-memory stand-in for the database. The repository fakes
// share one store and one mutex, which gives them the same observable
// atomicity as the conditional writes of the real repositories.
type fakeStore struct {
	mu        sync.Mutex
	projects  map[uuid.UUID]models.Project
	artifacts map[uuid.UUID]models.Artifact
	threats   map[uuid.UUID]models.Threat
	// links maps artifact id to linked threat ids
	links     map[uuid.UUID][]uuid.UUID
	tickets   map[uuid.UUID]models.Ticket
	histories []models.ScanHistory
	scanners  []models.Scanner
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		projects:  make(map[uuid.UUID]models.Project),
		artifacts: make(map[uuid.UUID]models.Artifact),
		threats:   make(map[uuid.UUID]models.Threat),
		links:     make(map[uuid.UUID][]uuid.UUID),
		tickets:   make(map[uuid.UUID]models.Ticket),
	}
}

func (s *fakeStore) addProject(name string) models.Project {
	s.mu.Lock()
	defer s.mu.Unlock()
	project := models.Project{ID: uuid.New(), Name: name}
	s.projects[project.ID] = project
	return project
}

func (s *fakeStore) addArtifact(projectID uuid.UUID, name string) models.Artifact {
	s.mu.Lock()
	defer s.mu.Unlock()
	artifact := models.Artifact{ID: uuid.New(), ProjectID: projectID, Name: name, Type: dtos.ArtifactTypeSourceCode}
	s.artifacts[artifact.ID] = artifact
	return artifact
}

func (s *fakeStore) threatsOf(artifactID uuid.UUID) []models.Threat {
	r := make([]models.Threat, 0, len(s.links[artifactID]))
	for _, threatID := range s.links[artifactID] {
		r = append(r, s.threats[threatID])
	}
	return r
}

type fakeProjectRepository struct{ store *fakeStore }

func (f *fakeProjectRepository) All() ([]models.Project, error) {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	r := make([]models.Project, 0, len(f.store.projects))
	for _, p := range f.store.projects {
		r = append(r, p)
	}
	return r, nil
}

func (f *fakeProjectRepository) Read(id uuid.UUID) (models.Project, error) {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	p, ok := f.store.projects[id]
	if !ok {
		return models.Project{}, shared.ErrNotFound
	}
	return p, nil
}

func (f *fakeProjectRepository) ReadByName(name string) (models.Project, error) {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	for _, p := range f.store.projects {
		if p.Name == name {
			return p, nil
		}
	}
	return models.Project{}, shared.ErrNotFound
}

func (f *fakeProjectRepository) Create(tx shared.DB, project *models.Project) error {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	if project.ID == uuid.Nil {
		project.ID = uuid.New()
	}
	f.store.projects[project.ID] = *project
	return nil
}

func (f *fakeProjectRepository) Delete(tx shared.DB, id uuid.UUID) error {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	delete(f.store.projects, id)
	return nil
}

func (f *fakeProjectRepository) GetDB(tx shared.DB) shared.DB { return nil }

type fakeArtifactRepository struct{ store *fakeStore }

func (f *fakeArtifactRepository) Read(id uuid.UUID) (models.Artifact, error) {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	return f.read(id)
}

func (f *fakeArtifactRepository) read(id uuid.UUID) (models.Artifact, error) {
	artifact, ok := f.store.artifacts[id]
	if !ok {
		return models.Artifact{}, shared.ErrNotFound
	}
	artifact.Threats = nil
	return artifact, nil
}

func (f *fakeArtifactRepository) ReadWithThreats(id uuid.UUID) (models.Artifact, error) {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	artifact, err := f.read(id)
	if err != nil {
		return artifact, err
	}
	artifact.Threats = f.store.threatsOf(id)
	return artifact, nil
}

func (f *fakeArtifactRepository) ReadWithThreatsLocked(tx shared.DB, id uuid.UUID) (models.Artifact, error) {
	return f.ReadWithThreats(id)
}

func (f *fakeArtifactRepository) GetByProjectID(projectID uuid.UUID) ([]models.Artifact, error) {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	var r []models.Artifact
	for _, artifact := range f.store.artifacts {
		if artifact.ProjectID == projectID {
			artifact.Threats = nil
			r = append(r, artifact)
		}
	}
	return r, nil
}

func (f *fakeArtifactRepository) Create(tx shared.DB, artifact *models.Artifact) error {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	if artifact.ID == uuid.Nil {
		artifact.ID = uuid.New()
	}
	f.store.artifacts[artifact.ID] = *artifact
	return nil
}

func (f *fakeArtifactRepository) Save(tx shared.DB, artifact *models.Artifact) error {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	stored := *artifact
	stored.Threats = nil
	f.store.artifacts[artifact.ID] = stored
	return nil
}

func (f *fakeArtifactRepository) Delete(tx shared.DB, id uuid.UUID) error {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	delete(f.store.artifacts, id)
	delete(f.store.links, id)
	return nil
}

func (f *fakeArtifactRepository) GetDB(tx shared.DB) shared.DB { return nil }

func (f *fakeArtifactRepository) Transaction(fn func(tx shared.DB) error) error {
	return fn(nil)
}

func (f *fakeArtifactRepository) StartScan(id uuid.UUID, totalScanners int) error {
	if totalScanners <= 0 {
		return errors.Wrap(shared.ErrValidation, "totalScanners must be positive")
	}
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	artifact, err := f.read(id)
	if err != nil {
		return err
	}
	if artifact.IsScanning {
		return errors.Wrap(shared.ErrValidation, "a scan is already in progress for this artifact")
	}
	artifact.IsScanning = true
	artifact.ScannersCompleted = 0
	artifact.TotalScanners = totalScanners
	artifact.TempVuls = datatypes.NewJSONSlice([]dtos.Vulnerability{})
	artifact.ScanRevision++
	f.store.artifacts[id] = artifact
	return nil
}

func (f *fakeArtifactRepository) StageScannerResult(id uuid.UUID, vulns []dtos.Vulnerability, state dtos.ArtifactState) (models.Artifact, bool, error) {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	artifact, err := f.read(id)
	if err != nil {
		return models.Artifact{}, false, err
	}
	if !artifact.IsScanning {
		return models.Artifact{}, false, errors.Wrap(shared.ErrValidation, "no scan in progress for this artifact")
	}

	artifact.TempVuls = statemachine.MergeVulnerabilities(artifact.TempVuls, vulns)
	completed := artifact.ScannersCompleted + 1
	allDone := completed >= artifact.TotalScanners
	if allDone {
		artifact.IsScanning = false
		artifact.ScannersCompleted = 0
		artifact.TotalScanners = 0
	} else {
		artifact.ScannersCompleted = completed
	}
	if state == dtos.ArtifactStateS1 || (state != "" && artifact.State != dtos.ArtifactStateS1) {
		artifact.State = state
	}
	artifact.ScanRevision++
	f.store.artifacts[id] = artifact
	return artifact, allDone, nil
}

func (f *fakeArtifactRepository) FinalizeScanResult(tx shared.DB, id uuid.UUID, revision int, vulns []dtos.Vulnerability) error {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	artifact, err := f.read(id)
	if err != nil {
		return err
	}
	if artifact.ScanRevision != revision {
		return errors.Wrap(shared.ErrConcurrencyConflict, "scan revision changed during reconciliation")
	}
	// only the two scan list fields are written, like the real conditional
	// update
	stored := f.store.artifacts[id]
	stored.VulnerabilityList = datatypes.NewJSONSlice(append([]dtos.Vulnerability{}, vulns...))
	stored.TempVuls = datatypes.NewJSONSlice([]dtos.Vulnerability{})
	f.store.artifacts[id] = stored
	return nil
}

func (f *fakeArtifactRepository) ForceFinishScan(id uuid.UUID) error {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	artifact, err := f.read(id)
	if err != nil {
		return err
	}
	artifact.IsScanning = false
	artifact.ScanRevision++
	f.store.artifacts[id] = artifact
	return nil
}

func (f *fakeArtifactRepository) LinkThreat(tx shared.DB, artifact *models.Artifact, threat models.Threat) error {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	for _, linked := range f.store.links[artifact.ID] {
		if linked == threat.ID {
			return nil
		}
	}
	f.store.links[artifact.ID] = append(f.store.links[artifact.ID], threat.ID)
	return nil
}

func (f *fakeArtifactRepository) UnlinkThreat(tx shared.DB, artifact *models.Artifact, threat models.Threat) error {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	f.store.links[artifact.ID] = utils.Filter(f.store.links[artifact.ID], func(id uuid.UUID) bool {
		return id != threat.ID
	})
	return nil
}

type fakeThreatRepository struct{ store *fakeStore }

func (f *fakeThreatRepository) Read(id uuid.UUID) (models.Threat, error) {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	threat, ok := f.store.threats[id]
	if !ok {
		return models.Threat{}, shared.ErrNotFound
	}
	return threat, nil
}

func (f *fakeThreatRepository) FindByName(name string) (models.Threat, error) {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	for _, threat := range f.store.threats {
		if threat.Name == name {
			return threat, nil
		}
	}
	return models.Threat{}, shared.ErrNotFound
}

func (f *fakeThreatRepository) Create(tx shared.DB, threat *models.Threat) error {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	if threat.ID == uuid.Nil {
		threat.ID = uuid.New()
	}
	// mirror the BeforeSave hook
	threat.Score.Total = (threat.Score.Damage + threat.Score.Reproducibility + threat.Score.Exploitability + threat.Score.AffectedUsers + threat.Score.Discoverability) / 5
	f.store.threats[threat.ID] = *threat
	return nil
}

func (f *fakeThreatRepository) Save(tx shared.DB, threat *models.Threat) error {
	return f.Create(tx, threat)
}

func (f *fakeThreatRepository) GetDB(tx shared.DB) shared.DB { return nil }

type fakeTicketRepository struct{ store *fakeStore }

func (f *fakeTicketRepository) Read(id uuid.UUID) (models.Ticket, error) {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	ticket, ok := f.store.tickets[id]
	if !ok {
		return models.Ticket{}, shared.ErrNotFound
	}
	return ticket, nil
}

func (f *fakeTicketRepository) FindByThreatIDs(threatIDs []uuid.UUID) ([]models.Ticket, error) {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	var r []models.Ticket
	for _, ticket := range f.store.tickets {
		for _, threatID := range threatIDs {
			if ticket.ThreatID == threatID {
				r = append(r, ticket)
			}
		}
	}
	return r, nil
}

func (f *fakeTicketRepository) FindByArtifactID(artifactID uuid.UUID) ([]models.Ticket, error) {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	var r []models.Ticket
	for _, ticket := range f.store.tickets {
		if ticket.ArtifactID == artifactID {
			r = append(r, ticket)
		}
	}
	return r, nil
}

func (f *fakeTicketRepository) Create(tx shared.DB, ticket *models.Ticket) error {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	if ticket.ID == uuid.Nil {
		ticket.ID = uuid.New()
	}
	f.store.tickets[ticket.ID] = *ticket
	return nil
}

func (f *fakeTicketRepository) Save(tx shared.DB, ticket *models.Ticket) error {
	return f.Create(tx, ticket)
}

func (f *fakeTicketRepository) DeleteByArtifactID(tx shared.DB, artifactID uuid.UUID) error {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	for id, ticket := range f.store.tickets {
		if ticket.ArtifactID == artifactID {
			delete(f.store.tickets, id)
		}
	}
	return nil
}

func (f *fakeTicketRepository) GetDB(tx shared.DB) shared.DB { return nil }

type fakeScanHistoryRepository struct {
	store *fakeStore
	// onCreate, when set, runs before the row is stored. Tests use it to
	// interleave writes with a running reconciliation.
	onCreate func()
}

func (f *fakeScanHistoryRepository) Create(tx shared.DB, history *models.ScanHistory) error {
	if f.onCreate != nil {
		f.onCreate()
	}
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	if history.ID == uuid.Nil {
		history.ID = uuid.New()
	}
	f.store.histories = append(f.store.histories, *history)
	return nil
}

func (f *fakeScanHistoryRepository) FindByArtifactID(artifactID uuid.UUID) ([]models.ScanHistory, error) {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	return utils.Filter(f.store.histories, func(h models.ScanHistory) bool {
		return h.ArtifactID == artifactID
	}), nil
}

func (f *fakeScanHistoryRepository) GetDB(tx shared.DB) shared.DB { return nil }

type fakeScannerRepository struct{ store *fakeStore }

func (f *fakeScannerRepository) All() ([]models.Scanner, error) {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	return append([]models.Scanner{}, f.store.scanners...), nil
}

func (f *fakeScannerRepository) CountEnabled() (int, error) {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	return utils.Count(f.store.scanners, func(s models.Scanner) bool { return s.Enabled }), nil
}

func (f *fakeScannerRepository) Create(tx shared.DB, scanner *models.Scanner) error {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	if scanner.ID == uuid.Nil {
		scanner.ID = uuid.New()
	}
	f.store.scanners = append(f.store.scanners, *scanner)
	return nil
}

func (f *fakeScannerRepository) GetDB(tx shared.DB) shared.DB { return nil }

var (
	_ shared.ProjectRepository     = &fakeProjectRepository{}
	_ shared.ArtifactRepository    = &fakeArtifactRepository{}
	_ shared.ThreatRepository      = &fakeThreatRepository{}
	_ shared.TicketRepository      = &fakeTicketRepository{}
	_ shared.ScanHistoryRepository = &fakeScanHistoryRepository{}
	_ shared.ScannerRepository     = &fakeScannerRepository{}
)
