/*
normalize.go - Boundary normalization of raw schedule cells

PURPOSE:
  Stored cells come in several historical shapes: nothing at all, a list of
  bare shift-id strings (legacy), or a list of structured objects decoded
  from JSON. Normalize collapses all of them into []Assignment so the union
  never leaks past this boundary.

CONTRACT:
  - Never returns an error and never panics on data.
  - Every string element becomes {type: "shift", shiftId: s}.
  - Every object element passes through with Type defaulted to "shift".
  - Anything unrecognized (including nil) yields an empty list.
*/
package engine

// Normalize collapses a raw stored cell value into the canonical
// assignment list.
func Normalize(raw any) []Assignment {
	switch v := raw.(type) {
	case nil:
		return nil
	case []Assignment:
		out := make([]Assignment, len(v))
		copy(out, v)
		for i := range out {
			if out[i].Type == "" {
				out[i].Type = TypeShift
			}
		}
		return out
	case Assignment:
		return Normalize([]Assignment{v})
	case []string:
		out := make([]Assignment, 0, len(v))
		for _, id := range v {
			if id == "" {
				continue
			}
			out = append(out, Assignment{Type: TypeShift, ShiftID: id})
		}
		return out
	case []any:
		out := make([]Assignment, 0, len(v))
		for _, el := range v {
			if a, ok := normalizeElement(el); ok {
				out = append(out, a)
			}
		}
		return out
	case []map[string]any:
		out := make([]Assignment, 0, len(v))
		for _, el := range v {
			out = append(out, assignmentFromMap(el))
		}
		return out
	default:
		return nil
	}
}

func normalizeElement(el any) (Assignment, bool) {
	switch v := el.(type) {
	case string:
		if v == "" {
			return Assignment{}, false
		}
		return Assignment{Type: TypeShift, ShiftID: v}, true
	case Assignment:
		if v.Type == "" {
			v.Type = TypeShift
		}
		return v, true
	case map[string]any:
		return assignmentFromMap(v), true
	default:
		return Assignment{}, false
	}
}

func assignmentFromMap(m map[string]any) Assignment {
	a := Assignment{
		Type:         AssignmentType(stringField(m, "type")),
		ShiftID:      stringField(m, "shiftId"),
		StartTime:    stringField(m, "startTime"),
		EndTime:      stringField(m, "endTime"),
		StartTime2:   stringField(m, "startTime2"),
		EndTime2:     stringField(m, "endTime2"),
		LicenciaType: stringField(m, "licenciaType"),
		Texto:        stringField(m, "texto"),
	}
	if a.Type == "" {
		a.Type = TypeShift
	}
	return a
}

func stringField(m map[string]any, key string) string {
	if v, ok := m[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}
