package unit

import "strings"

// CanonicalPath builds a unit's porcelain canonical path (SPEC_FULL.md §3):
// slash-joined Group/Script names from the root (the root Group itself
// contributes nothing), and for a Step, its script's path, a single space,
// then the step name.
func CanonicalPath(u Unit) string {
	if step, ok := u.(*Step); ok {
		return CanonicalPath(step.parent) + " " + step.name
	}
	return strings.Join(groupScriptSegments(u), "/")
}

// ExecPath is CanonicalPath's sibling form used to build the actual
// on-disk/exec path: it appends ScriptFileExt to the script's own name
// segment (ancestor group names are unaffected).
func ExecPath(u Unit) string {
	switch t := u.(type) {
	case *Step:
		return ExecPath(t.parent) + " " + t.name
	case *Script:
		segs := groupScriptSegments(Unit(t.parent))
		segs = append(segs, t.name+ScriptFileExt)
		return strings.Join(segs, "/")
	default:
		return CanonicalPath(u)
	}
}

func groupScriptSegments(u Unit) []string {
	switch t := u.(type) {
	case *Group:
		if t.parent == nil {
			return nil
		}
		return append(groupScriptSegments(Unit(t.parent)), t.name)
	case *Script:
		return append(groupScriptSegments(Unit(t.parent)), t.name)
	default:
		return nil
	}
}
