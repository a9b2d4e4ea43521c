// Package factors owns emission factors: the shared central catalogue,
// organization overrides of central rows, and organization custom factors.
package factors

import (
	"math"
	"strings"

	"carbonyx/internal/core/apperror"
)

// Source tells where an effective factor comes from.
type Source string

const (
	SourceCentral      Source = "central"
	SourceOrganization Source = "organization"
)

// Factor is one row of the factors table.
// OrgID is nil for central rows; OriginalFactorID is set on overrides.
type Factor struct {
	ID               int64   `db:"id" json:"id"`
	OrgID            *string `db:"org_id" json:"orgId,omitempty"`
	OriginalFactorID *int64  `db:"original_factor_id" json:"originalFactorId,omitempty"`
	Name             string  `db:"name" json:"name"`
	Type             string  `db:"type" json:"type"`
	SubType          *string `db:"sub_type" json:"subType,omitempty"`
	Unit             string  `db:"unit" json:"unit"`
	Factor           float64 `db:"factor" json:"factor"`
	IsCustom         bool    `db:"is_custom" json:"isCustom"`
}

// IsCentral reports whether the row belongs to the shared catalogue.
func (f Factor) IsCentral() bool { return f.OrgID == nil }

// IsOverride reports whether the row replaces a central factor.
func (f Factor) IsOverride() bool { return f.OrgID != nil && f.OriginalFactorID != nil }

// OwnedBy reports whether the row is private to orgID.
func (f Factor) OwnedBy(orgID string) bool { return f.OrgID != nil && *f.OrgID == orgID }

// EffectiveFactor is a factor as seen by one organization after override resolution.
// For an overridden central factor ID stays the central id and OverrideID names the org row.
type EffectiveFactor struct {
	ID           int64   `json:"id"`
	Name         string  `json:"name"`
	Type         string  `json:"type"`
	SubType      *string `json:"subType,omitempty"`
	Unit         string  `json:"unit"`
	Factor       float64 `json:"factor"`
	IsCustom     bool    `json:"isCustom"`
	Source       Source  `json:"factorSource"`
	IsOverridden bool    `json:"isOverridden"`
	OverrideID   *int64  `json:"overrideId,omitempty"`
}

// Input is the writable part of a factor.
type Input struct {
	OriginalFactorID *int64  `json:"originalFactorId,omitempty"`
	Name             string  `json:"name"`
	Type             string  `json:"type"`
	SubType          *string `json:"subType,omitempty"`
	Unit             string  `json:"unit"`
	Factor           float64 `json:"factor"`
}

// Normalize trims string fields in place.
func (in *Input) Normalize() {
	in.Name = strings.TrimSpace(in.Name)
	in.Type = strings.TrimSpace(in.Type)
	in.Unit = strings.TrimSpace(in.Unit)
	if in.SubType != nil {
		s := strings.TrimSpace(*in.SubType)
		if s == "" {
			in.SubType = nil
		} else {
			in.SubType = &s
		}
	}
}

// Validate checks required fields and the coefficient range.
func (in Input) Validate() error {
	switch {
	case in.Name == "":
		return apperror.NewValidation("name is required").WithDetail("field", "name")
	case in.Type == "":
		return apperror.NewValidation("type is required").WithDetail("field", "type")
	case in.Unit == "":
		return apperror.NewValidation("unit is required").WithDetail("field", "unit")
	case math.IsNaN(in.Factor) || math.IsInf(in.Factor, 0) || in.Factor < 0:
		return apperror.NewValidation("factor must be a finite number >= 0").WithDetail("field", "factor")
	}
	return nil
}

// apply copies the input fields onto a row.
func (in Input) apply(f *Factor) {
	f.Name = in.Name
	f.Type = in.Type
	f.SubType = in.SubType
	f.Unit = in.Unit
	f.Factor = in.Factor
}
