// Package normalize canonicalizes raw change-management object records
// into comparable, immutable normalized objects.
package normalize

import (
	"fmt"
	"strings"

	"crosscheck/internal/common"
	"crosscheck/internal/model"
)

// KnownClasses is the vocabulary of transport object classes.
var KnownClasses = map[string]struct{}{
	"R3TR": {},
	"LIMU": {},
}

// KnownTypes is the vocabulary of common ABAP object types used for
// scoping. Not exhaustive; unknown types are flagged, not rejected.
var KnownTypes = map[string]struct{}{
	// reports/programs
	"PROG": {}, "REPS": {}, "REPT": {},
	// enhancements / exits
	"CMOD": {}, "SMOD": {}, "ENHO": {}, "ENHS": {}, "SPOT": {},
	// classes/function modules
	"CLAS": {}, "INTF": {}, "FUGR": {}, "FUNC": {},
	// data dictionary
	"TABL": {}, "VIEW": {}, "DTEL": {}, "DOMA": {}, "TTYP": {}, "DDLS": {},
}

// Normalize canonicalizes a raw object record. It trims and uppercases
// all tokens, flags class/type values outside the known vocabulary,
// strips a redundant package qualifier from the name, and infers the
// package best-effort when absent. Pure and idempotent:
// Normalize(Normalize(x).AsRecord()) equals Normalize(x).
//
// A record without a name is malformed; the returned error wraps
// common.ErrMalformedInput and the caller is expected to skip the record
// and keep going.
func Normalize(raw model.ObjectRecord) (model.NormalizedObject, error) {
	name := norm(raw.Name)
	if name == "" {
		return model.NormalizedObject{}, fmt.Errorf("%w: missing object name", common.ErrMalformedInput)
	}

	class := norm(raw.Class)
	if class == "" {
		class = "R3TR"
	}
	typ := norm(raw.Type)
	pkg := norm(raw.Package)

	// A name qualified with its own package ("PKG/NAME") is redundant;
	// strip the qualifier so identity stays stable across export styles.
	if pkg != "" && strings.HasPrefix(name, pkg+"/") {
		name = strings.TrimPrefix(name, pkg+"/")
	}

	if pkg == "" {
		pkg = inferPackage(name)
	}

	obj := model.NormalizedObject{
		Class:   class,
		Type:    typ,
		Name:    name,
		Package: pkg,
	}

	if _, ok := KnownClasses[class]; !ok {
		obj.UnknownClass = true
	}
	if _, ok := KnownTypes[typ]; !ok {
		obj.UnknownType = true
	}

	obj.MatchKey = matchKey(pkg, name)

	return obj, nil
}

// matchKey derives the rule-lookup key. Pure function of the normalized
// package and name. Names carrying a /NAMESPACE/ prefix are already
// qualified and are used verbatim.
func matchKey(pkg, name string) string {
	if pkg == "" || strings.HasPrefix(name, "/") {
		return name
	}
	return pkg + "/" + name
}

// inferPackage guesses a package from the object name when none was
// supplied. Best effort, never fails: a /NAMESPACE/ prefix wins,
// otherwise the customer-namespace segment (Z or Y prefix up to the
// first underscore) is used as a pseudo package.
func inferPackage(name string) string {
	if strings.HasPrefix(name, "/") {
		if end := strings.Index(name[1:], "/"); end > 0 {
			return name[1 : end+1]
		}
		return ""
	}

	if len(name) < 2 || (name[0] != 'Z' && name[0] != 'Y') {
		return ""
	}
	if idx := strings.Index(name, "_"); idx > 0 {
		return name[:idx]
	}
	return ""
}

func norm(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}
