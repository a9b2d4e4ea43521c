package dto

import (
	"carbonyx/internal/domain/factors"
)

// FactorRequest is the body of POST /factors and PUT /factors/:id.
type FactorRequest struct {
	OriginalFactorID *int64  `json:"originalFactorId"`
	Name             string  `json:"name" binding:"required"`
	Type             string  `json:"type" binding:"required"`
	SubType          *string `json:"subType"`
	Unit             string  `json:"unit" binding:"required"`
	Factor           float64 `json:"factor" binding:"min=0"`
}

// ToInput converts request to domain input.
func (r FactorRequest) ToInput() factors.Input {
	return factors.Input{
		OriginalFactorID: r.OriginalFactorID,
		Name:             r.Name,
		Type:             r.Type,
		SubType:          r.SubType,
		Unit:             r.Unit,
		Factor:           r.Factor,
	}
}

// FactorResponse is a stored factor row.
type FactorResponse struct {
	ID               int64   `json:"id"`
	OriginalFactorID *int64  `json:"originalFactorId,omitempty"`
	Name             string  `json:"name"`
	Type             string  `json:"type"`
	SubType          *string `json:"subType,omitempty"`
	Unit             string  `json:"unit"`
	Factor           float64 `json:"factor"`
	IsCustom         bool    `json:"isCustom"`
}

// FromFactor creates response from domain row.
func FromFactor(f *factors.Factor) FactorResponse {
	return FactorResponse{
		ID:               f.ID,
		OriginalFactorID: f.OriginalFactorID,
		Name:             f.Name,
		Type:             f.Type,
		SubType:          f.SubType,
		Unit:             f.Unit,
		Factor:           f.Factor,
		IsCustom:         f.IsCustom,
	}
}
