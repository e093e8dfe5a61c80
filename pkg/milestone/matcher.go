package milestone

import "tpmtools/pkg/config"

// Match finds the existing milestone a spec applies to, if any. The
// lookup order is fixed: the existingNameToRename first, then the
// reference milestone's name, then the spec's own name. The first
// exact-name hit wins; there is no fuzzy matching.
func Match(existing []Existing, spec config.Spec, ref *Reference) *Existing {
	if spec.ExistingNameToRename != "" {
		if found := findByName(existing, spec.ExistingNameToRename); found != nil {
			return found
		}
	}

	if ref != nil {
		if found := findByName(existing, ref.Name); found != nil {
			return found
		}
	}

	if spec.Name != "" {
		if found := findByName(existing, spec.Name); found != nil {
			return found
		}
	}

	return nil
}

func findByName(existing []Existing, name string) *Existing {
	for i := range existing {
		if existing[i].Name == name {
			return &existing[i]
		}
	}

	return nil
}
