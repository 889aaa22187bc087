// Copyright 2025 stridemap contributors.
// SPDX-License-Identifier: 	AGPL-3.0-or-later

package dtos

type ArtifactType string

const (
	ArtifactTypeDocs                ArtifactType = "docs"
	ArtifactTypeSourceCode          ArtifactType = "sourceCode"
	ArtifactTypeImage               ArtifactType = "image"
	ArtifactTypeTestReport          ArtifactType = "testReport"
	ArtifactTypeVersionRelease      ArtifactType = "versionRelease"
	ArtifactTypeDeploymentConfig    ArtifactType = "deploymentConfig"
	ArtifactTypeLog                 ArtifactType = "log"
	ArtifactTypeMonitoringDashboard ArtifactType = "monitoringDashboard"
)

// ArtifactState is the validation/security state a scanner run leaves the
// artifact in. Only S1 (insecure) and S3 (clean) carry contractual meaning,
// the remaining values are scanner specific.
type ArtifactState string

const (
	ArtifactStateS1 ArtifactState = "S1"
	ArtifactStateS2 ArtifactState = "S2"
	ArtifactStateS3 ArtifactState = "S3"
	ArtifactStateS4 ArtifactState = "S4"
	ArtifactStateS5 ArtifactState = "S5"
	ArtifactStateS6 ArtifactState = "S6"
	ArtifactStateS7 ArtifactState = "S7"
)

// ThreatType is the STRIDE category of a threat.
type ThreatType string

const (
	ThreatTypeSpoofing              ThreatType = "spoofing"
	ThreatTypeTampering             ThreatType = "tampering"
	ThreatTypeRepudiation           ThreatType = "repudiation"
	ThreatTypeInformationDisclosure ThreatType = "informationDisclosure"
	ThreatTypeDenialOfService       ThreatType = "denialOfService"
	ThreatTypeElevationOfPrivilege  ThreatType = "elevationOfPrivilege"
)

type ThreatStatus string

const (
	ThreatStatusNonMitigated       ThreatStatus = "nonMitigated"
	ThreatStatusPartiallyMitigated ThreatStatus = "partiallyMitigated"
	ThreatStatusFullyMitigated     ThreatStatus = "fullyMitigated"
)

type TicketStatus string

const (
	TicketStatusNotAccepted TicketStatus = "notAccepted"
	TicketStatusProcessing  TicketStatus = "processing"
	TicketStatusSubmitted   TicketStatus = "submitted"
	TicketStatusResolved    TicketStatus = "resolved"
)

type TicketPriority string

const (
	TicketPriorityLow      TicketPriority = "low"
	TicketPriorityMedium   TicketPriority = "medium"
	TicketPriorityHigh     TicketPriority = "high"
	TicketPriorityCritical TicketPriority = "critical"
)

// Workflow step identifiers. The workflow cycle engine advances an artifact
// through these five steps, possibly over multiple cycles.
const (
	WorkflowStepDetection      = 1
	WorkflowStepClassification = 2
	WorkflowStepAssignment     = 3
	WorkflowStepRemediation    = 4
	WorkflowStepVerification   = 5
)
