package factors

import "sort"

// Resolve layers an organization's rows over the central catalogue.
//
// rows may contain central rows and rows of any organization; rows of other
// organizations are ignored. A central factor with an override is emitted once
// with its central id and the override's values. Custom rows are emitted as
// organization factors. The result is sorted by type, name, then id.
func Resolve(rows []Factor, orgID string) []EffectiveFactor {
	overrides := make(map[int64]Factor)
	for _, f := range rows {
		if f.OwnedBy(orgID) && f.OriginalFactorID != nil {
			overrides[*f.OriginalFactorID] = f
		}
	}

	out := make([]EffectiveFactor, 0, len(rows))
	for _, f := range rows {
		switch {
		case f.IsCentral():
			eff := EffectiveFactor{
				ID:       f.ID,
				Name:     f.Name,
				Type:     f.Type,
				SubType:  f.SubType,
				Unit:     f.Unit,
				Factor:   f.Factor,
				IsCustom: f.IsCustom,
				Source:   SourceCentral,
			}
			if o, ok := overrides[f.ID]; ok {
				overrideID := o.ID
				eff.Name = o.Name
				eff.Type = o.Type
				eff.SubType = o.SubType
				eff.Unit = o.Unit
				eff.Factor = o.Factor
				eff.IsOverridden = true
				eff.OverrideID = &overrideID
			}
			out = append(out, eff)
		case f.OwnedBy(orgID) && f.OriginalFactorID == nil:
			out = append(out, EffectiveFactor{
				ID:       f.ID,
				Name:     f.Name,
				Type:     f.Type,
				SubType:  f.SubType,
				Unit:     f.Unit,
				Factor:   f.Factor,
				IsCustom: true,
				Source:   SourceOrganization,
			})
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Type != b.Type {
			return a.Type < b.Type
		}
		if a.Name != b.Name {
			return a.Name < b.Name
		}
		return a.ID < b.ID
	})
	return out
}
