package measure

import "strings"

// Primitive element names used inside compound tags.
const (
	ElemPoint       = "point"
	ElemLine        = "line"
	ElemLabel       = "label"
	ElemPolygon     = "polygon"
	ElemTotalLabel  = "total_label"
	ElemMovingLine  = "moving_line"
	ElemMovingLabel = "moving_label"
	ElemHighlight   = "highlight"
)

const tagPrefix = "annotate_"

// Order matters for parsing: longest names first so "moving_line" is not
// consumed as "line".
var tagElements = []string{
	ElemMovingLabel,
	ElemMovingLine,
	ElemTotalLabel,
	ElemHighlight,
	ElemPolygon,
	ElemPoint,
	ElemLabel,
	ElemLine,
}

// Tag builds the compound primitive identifier
// annotate_<mode>_<element>_<measureId> used for reverse lookup from
// backend pick results.
func Tag(kind Kind, element, measureID string) string {
	return tagPrefix + kind.String() + "_" + element + "_" + measureID
}

// ParseTag decomposes a compound tag. ok is false for tags this package did
// not produce.
func ParseTag(tag string) (kind Kind, element, measureID string, ok bool) {
	rest, found := strings.CutPrefix(tag, tagPrefix)
	if !found {
		return 0, "", "", false
	}

	var matched bool
	for k, name := range kindNames {
		if r, f := strings.CutPrefix(rest, name+"_"); f {
			kind, rest, matched = k, r, true
			break
		}
	}
	if !matched {
		return 0, "", "", false
	}

	for _, elem := range tagElements {
		if r, f := strings.CutPrefix(rest, elem+"_"); f {
			return kind, elem, r, r != ""
		}
	}
	return 0, "", "", false
}

// IsAnnotationTag reports whether the tag was produced by this package.
func IsAnnotationTag(tag string) bool {
	_, _, _, ok := ParseTag(tag)
	return ok
}
