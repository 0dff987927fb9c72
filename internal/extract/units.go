package extract

// UnitRecognizer recognizes unit tokens by caseless exact match.
type UnitRecognizer struct {
	units map[string]struct{}
}

// NewUnitRecognizer builds a recognizer from unit tokens. Blank tokens are
// ignored.
func NewUnitRecognizer(units []string) *UnitRecognizer {
	r := &UnitRecognizer{units: make(map[string]struct{}, len(units))}
	for _, u := range units {
		if f := Fold(u); f != "" {
			r.units[f] = struct{}{}
		}
	}
	return r
}

// IsUnit reports whether text is exactly one of the recognized units.
func (r *UnitRecognizer) IsUnit(text string) bool {
	f := Fold(text)
	if f == "" {
		return false
	}
	_, ok := r.units[f]
	return ok
}
