// Copyright 2025 stridemap contributors.
// SPDX-License-Identifier: 	AGPL-3.0-or-later

package dtos

type BeginScanRequest struct {
	// TotalScanners may be zero, in which case the number of enabled
	// registered scanners is used.
	TotalScanners int `json:"totalScanners" validate:"gte=0"`
}

type ScannerResultRequest struct {
	ScannerName     string          `json:"scannerName"`
	Vulnerabilities []Vulnerability `json:"vulnerabilities"`
	// State the scanner derived for the artifact (S1 insecure, S3 clean).
	State ArtifactState `json:"state,omitempty"`
}

type ScanStatusResponse struct {
	IsScanning        bool `json:"isScanning"`
	ScannersCompleted int  `json:"scannersCompleted"`
	TotalScanners     int  `json:"totalScanners"`
}
