// Copyright 2025 stridemap contributors.
// SPDX-License-Identifier: 	AGPL-3.0-or-later

package controllers

import (
	"github.com/stridemap-dev/stridemap/database/models"
	"github.com/stridemap-dev/stridemap/shared"
)

type ScannerController struct {
	scannerRepository shared.ScannerRepository
}

func NewScannerController(scannerRepository shared.ScannerRepository) *ScannerController {
	return &ScannerController{scannerRepository: scannerRepository}
}

func (c *ScannerController) List(ctx shared.Context) error {
	scanners, err := c.scannerRepository.All()
	if err != nil {
		return httpError(err, "could not list scanners")
	}
	return ctx.JSON(200, scanners)
}

// Register adds a scanning tool. Registered and enabled scanners define the
// default expected scanner count of a scan cycle.
func (c *ScannerController) Register(ctx shared.Context) error {
	type requestBody struct {
		Name    string `json:"name" validate:"required"`
		Kind    string `json:"kind" validate:"required,oneof=sast sca image dast"`
		Enabled *bool  `json:"enabled"`
	}

	var body requestBody
	if err := bindAndValidate(ctx, &body); err != nil {
		return err
	}

	enabled := true
	if body.Enabled != nil {
		enabled = *body.Enabled
	}
	scanner := models.Scanner{
		Name:    body.Name,
		Kind:    body.Kind,
		Enabled: enabled,
	}
	if err := c.scannerRepository.Create(nil, &scanner); err != nil {
		return httpError(err, "could not register scanner")
	}
	return ctx.JSON(201, scanner)
}
