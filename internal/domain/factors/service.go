package factors

import (
	"context"
	"fmt"
	"strings"

	"carbonyx/internal/core/apperror"
	"carbonyx/internal/core/tx"
	"carbonyx/pkg/logger"
)

// Service provides factor resolution and the organization write path.
type Service struct {
	repo      Repository
	txManager tx.Manager
}

// NewService creates a new factors service. txManager may be nil, in which
// case writes run without an explicit transaction.
func NewService(repo Repository, txManager tx.Manager) *Service {
	return &Service{repo: repo, txManager: txManager}
}

func (s *Service) inTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if s.txManager == nil {
		return fn(ctx)
	}
	return s.txManager.RunInTransaction(ctx, fn)
}

func requireOrg(orgID string) (string, error) {
	orgID = strings.TrimSpace(orgID)
	if orgID == "" {
		return "", apperror.NewValidation("organization is required").WithDetail("field", "org")
	}
	return orgID, nil
}

// ListEffective returns the factors visible to orgID after override resolution.
func (s *Service) ListEffective(ctx context.Context, orgID string) ([]EffectiveFactor, error) {
	orgID, err := requireOrg(orgID)
	if err != nil {
		return nil, err
	}

	rows, err := s.repo.ListVisible(ctx, orgID)
	if err != nil {
		return nil, fmt.Errorf("list factors: %w", err)
	}
	return Resolve(rows, orgID), nil
}

// Add creates a custom factor, or an override when OriginalFactorID is set.
// A second override of the same central factor, or a row whose (type, name)
// is already visible to the org, is rejected with Duplicate.
func (s *Service) Add(ctx context.Context, orgID string, in Input) (*Factor, error) {
	orgID, err := requireOrg(orgID)
	if err != nil {
		return nil, err
	}
	in.Normalize()
	if err := in.Validate(); err != nil {
		return nil, err
	}

	f := &Factor{OrgID: &orgID, OriginalFactorID: in.OriginalFactorID, IsCustom: in.OriginalFactorID == nil}
	in.apply(f)

	err = s.inTx(ctx, func(ctx context.Context) error {
		var replaces int64
		if in.OriginalFactorID != nil {
			if err := s.checkOverridable(ctx, orgID, *in.OriginalFactorID); err != nil {
				return err
			}
			replaces = *in.OriginalFactorID
		}
		if err := s.checkNameFree(ctx, orgID, in, replaces); err != nil {
			return err
		}
		return s.repo.Create(ctx, f)
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "factor created", "org_id", orgID, "factor_id", f.ID, "override", f.IsOverride())
	return f, nil
}

func (s *Service) checkOverridable(ctx context.Context, orgID string, centralID int64) error {
	central, err := s.repo.GetByID(ctx, centralID)
	if err != nil {
		return err
	}
	if !central.IsCentral() {
		return apperror.NewValidation("only central factors can be overridden").
			WithDetail("originalFactorId", centralID)
	}

	existing, err := s.repo.FindOverride(ctx, orgID, centralID)
	if err != nil {
		return fmt.Errorf("find override: %w", err)
	}
	if existing != nil {
		return apperror.NewDuplicate("factor override", "originalFactorId", centralID).
			WithDetail("overrideId", existing.ID)
	}
	return nil
}

// checkNameFree rejects in when another effective factor of orgID already has
// its type and name. replaces is the effective id the write takes the place
// of, or 0 for a new custom factor.
func (s *Service) checkNameFree(ctx context.Context, orgID string, in Input, replaces int64) error {
	rows, err := s.repo.ListVisible(ctx, orgID)
	if err != nil {
		return fmt.Errorf("list factors: %w", err)
	}
	for _, eff := range Resolve(rows, orgID) {
		if eff.ID != replaces && eff.Type == in.Type && strings.EqualFold(eff.Name, in.Name) {
			return apperror.NewDuplicate("factor", "name", in.Name).
				WithDetail("type", in.Type).
				WithDetail("existingId", eff.ID)
		}
	}
	return nil
}

// Edit changes a factor. Editing a central factor writes the org's override,
// creating it when absent. Editing an org row requires ownership.
func (s *Service) Edit(ctx context.Context, orgID string, id int64, in Input) (*Factor, error) {
	orgID, err := requireOrg(orgID)
	if err != nil {
		return nil, err
	}
	in.Normalize()
	if err := in.Validate(); err != nil {
		return nil, err
	}

	var result *Factor
	err = s.inTx(ctx, func(ctx context.Context) error {
		existing, err := s.repo.GetByID(ctx, id)
		if err != nil {
			return err
		}

		if !existing.IsCentral() && !existing.OwnedBy(orgID) {
			return apperror.NewForbidden("factor belongs to another organization").WithDetail("id", id)
		}
		replaces := id
		if existing.IsOverride() {
			replaces = *existing.OriginalFactorID
		}
		if err := s.checkNameFree(ctx, orgID, in, replaces); err != nil {
			return err
		}

		if existing.IsCentral() {
			override, err := s.repo.FindOverride(ctx, orgID, id)
			if err != nil {
				return fmt.Errorf("find override: %w", err)
			}
			if override == nil {
				centralID := id
				override = &Factor{OrgID: &orgID, OriginalFactorID: &centralID}
				in.apply(override)
				if err := s.repo.Create(ctx, override); err != nil {
					return err
				}
				result = override
				return nil
			}
			in.apply(override)
			result = override
			return s.repo.Update(ctx, override)
		}

		in.apply(existing)
		result = existing
		return s.repo.Update(ctx, existing)
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "factor updated", "org_id", orgID, "factor_id", result.ID)
	return result, nil
}

// Delete removes an org row. Deleting an override makes the central factor
// visible again. Central rows cannot be deleted.
func (s *Service) Delete(ctx context.Context, orgID string, id int64) (*Factor, error) {
	orgID, err := requireOrg(orgID)
	if err != nil {
		return nil, err
	}

	var deleted *Factor
	err = s.inTx(ctx, func(ctx context.Context) error {
		existing, err := s.repo.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if existing.IsCentral() {
			return apperror.NewForbidden("central factors cannot be deleted").WithDetail("id", id)
		}
		if !existing.OwnedBy(orgID) {
			return apperror.NewNotFound("factor", id)
		}
		deleted = existing
		return s.repo.Delete(ctx, orgID, id)
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "factor deleted", "org_id", orgID, "factor_id", id, "override", deleted.IsOverride())
	return deleted, nil
}

// Effective returns one factor as orgID sees it, by central or custom id.
func (s *Service) Effective(ctx context.Context, orgID string, id int64) (*EffectiveFactor, error) {
	list, err := s.ListEffective(ctx, orgID)
	if err != nil {
		return nil, err
	}
	for i := range list {
		if list[i].ID == id {
			return &list[i], nil
		}
	}
	return nil, apperror.NewNotFound("factor", id)
}
