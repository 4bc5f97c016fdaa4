package schema

import "sort"

// Resolved is the outcome of resolving a node type schema against a
// concrete parameter map: which properties are visible for this
// configuration and which of those are required.
type Resolved struct {
	Visible  map[string]*Property
	Required []string // Sorted property names
}

// Resolve evaluates display conditions against the given parameters and
// returns the visible property set plus the effective required list.
// A required property only counts as required while it is visible: e.g.
// "channelId" is required only once operation=post and select=channel
// make it visible.
func (t *NodeType) Resolve(parameters map[string]any) Resolved {
	resolved := Resolved{
		Visible:  make(map[string]*Property, len(t.Properties)),
		Required: make([]string, 0),
	}

	for _, prop := range t.Properties {
		if !t.visible(prop, parameters) {
			continue
		}

		resolved.Visible[prop.Name] = prop

		if prop.Required {
			resolved.Required = append(resolved.Required, prop.Name)
		}
	}

	sort.Strings(resolved.Required)

	return resolved
}

func (t *NodeType) visible(prop *Property, parameters map[string]any) bool {
	if prop.DisplayOptions == nil {
		return true
	}

	for sibling, allowed := range prop.DisplayOptions.Show {
		if !matchesAny(t.effectiveValue(sibling, parameters), allowed) {
			return false
		}
	}

	for sibling, blocked := range prop.DisplayOptions.Hide {
		if matchesAny(t.effectiveValue(sibling, parameters), blocked) {
			return false
		}
	}

	return true
}

// effectiveValue returns the configured value of a sibling property,
// falling back to the sibling's declared default when unset. Display
// conditions resolve against defaults the same way the editor does.
func (t *NodeType) effectiveValue(name string, parameters map[string]any) any {
	if value, ok := parameters[name]; ok {
		return value
	}

	if prop := t.Property(name); prop != nil {
		return prop.Default
	}

	return nil
}

func matchesAny(value any, candidates []any) bool {
	for _, candidate := range candidates {
		if looseEqual(value, candidate) {
			return true
		}
	}

	return false
}

// looseEqual compares condition values the way JSON round-trips deliver
// them: all numbers as float64, everything else by interface equality.
func looseEqual(a, b any) bool {
	if fa, ok := asFloat(a); ok {
		if fb, ok := asFloat(b); ok {
			return fa == fb
		}

		return false
	}

	return a == b
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}

	return 0, false
}
