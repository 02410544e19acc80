package schema

import (
	"fmt"
	"regexp"
	"strings"
)

// Strategy selects how a group's canonical code is derived. The SchILD
// export went through two generations: older files carry structured
// group IDs ("raum-kurs", "raum-klasse", "raum-fach"), newer files only
// have meaningful display names. Which one is authoritative for new data
// is an open question; both are kept selectable.
type Strategy string

const (
	// StrategyGroupID dispatches on substrings of the group ID.
	StrategyGroupID Strategy = "group-id"
	// StrategyGroupName inspects the raw display name directly.
	StrategyGroupName Strategy = "group-name"
)

// Catch-all sentinel codes. They mark "every student" / "every staff
// member" and never carry the school-year suffix.
const (
	CatchAllStudents = "AlleS"
	CatchAllStaff    = "AlleL"
)

// Catch-all display names as they appear in the export.
const (
	catchAllStudentsName = "Alle - Schueler"
	catchAllStaffName    = "Alle - Lehrer"
)

// MappingMissingError reports a group name that must resolve through the
// curated mapping table but has no entry. Only the direct-lookup path for
// "Fach"/"Bereich" names raises it; every other mapping miss in the
// pipeline drops silently. The asymmetry is intentional: subject-area
// groups are curated by hand and a hole in the table means the table is
// stale, while an ordinary course miss just means "no target-system
// equivalent".
type MappingMissingError struct {
	Name string
}

func (e *MappingMissingError) Error() string {
	return fmt.Sprintf("no group mapping for %q", e.Name)
}

// courseNameRe captures the text before the first parenthesis pair and
// the comma-separated fields inside it, e.g.
// "M GK (06, 2, Q1, XYZ) - Schueler" -> "M GK " and "06, 2, Q1, XYZ".
var courseNameRe = regexp.MustCompile(`^([^()]*)\(([^()]*)\)`)

// Canonicalizer reduces free-text group names to short codes. It is a
// pure transformation over immutable Group values; the raw display name
// is never rewritten.
type Canonicalizer struct {
	Strategy Strategy
	// SchoolYear is the two-digit code the name-driven strategy appends
	// (e.g. "24" for 2024/25), computed once per input file.
	SchoolYear string
	// Mapping backs the direct-lookup path for "Fach"/"Bereich" names.
	Mapping map[string]string
}

// Canonicalize returns the short code for a group, or "" when the group
// has no parseable structure (such groups are excluded from every course
// list). Only the name-driven strategy can fail, and only with a
// *MappingMissingError.
func (c *Canonicalizer) Canonicalize(g Group) (string, error) {
	if c.Strategy == StrategyGroupName {
		return c.canonicalizeByName(g.DisplayName)
	}
	return c.canonicalizeByID(g), nil
}

// canonicalizeByID dispatches on the structural category encoded in the
// group ID. Subject-area groups ("raum-fach") and unrecognized IDs are
// always excluded.
func (c *Canonicalizer) canonicalizeByID(g Group) string {
	switch {
	case strings.Contains(g.ID, "raum-kurs"):
		return canonicalCourseCode(g.DisplayName, "")
	case strings.Contains(g.ID, "raum-klasse"):
		return canonicalHomeroomCode(g.DisplayName)
	case strings.Contains(g.ID, "raum-fach"):
		return ""
	default:
		return ""
	}
}

// canonicalizeByName derives the code from the display name alone.
func (c *Canonicalizer) canonicalizeByName(name string) (string, error) {
	switch name {
	case catchAllStudentsName:
		return CatchAllStudents, nil
	case catchAllStaffName:
		return CatchAllStaff, nil
	}

	if strings.Contains(name, "Fach") || strings.Contains(name, "Bereich") {
		mapped, ok := c.Mapping[name]
		if !ok {
			return "", &MappingMissingError{Name: name}
		}
		return mapped, nil
	}

	if strings.Contains(name, "Klasse") {
		code := strings.TrimPrefix(name, "Klasse ")
		code = separatorReplacer.Replace(code)
		code = strings.ReplaceAll(code, "Schueler", "S")
		code = strings.ReplaceAll(code, "Lehrer", "L")
		return code + c.SchoolYear, nil
	}

	if strings.Contains(name, "BI8") || strings.Contains(name, "(") {
		return canonicalCourseCode(name, c.SchoolYear), nil
	}

	return "", nil
}

// canonicalCourseCode parses a subject-course display name of the form
//
//	<Subj> [<Tier>] (<..>, <..>, <YearGroup>, <TeacherCode>) - <Lehrer|Schueler>
//
// and assembles subject + tier + year-group + teacher code + role suffix
// (+ the school-year code when the caller passes one). The tier token is
// only kept when it is exactly "GK" or "LK". Malformed names (no
// parenthesis pair, fewer than 4 comma fields, empty head) yield "".
func canonicalCourseCode(name, schoolYear string) string {
	m := courseNameRe.FindStringSubmatch(name)
	if m == nil {
		return ""
	}

	fields := strings.Split(m[2], ",")
	if len(fields) < 4 {
		return ""
	}

	head := strings.Fields(m[1])
	if len(head) == 0 {
		return ""
	}

	subject := head[0]
	tier := ""
	if len(head) > 1 && (head[1] == "GK" || head[1] == "LK") {
		tier = head[1]
	}

	yearGroup := strings.TrimSpace(fields[2])
	teacherCode := strings.TrimSpace(fields[3])

	return subject + tier + yearGroup + teacherCode + roleSuffix(name) + schoolYear
}

// canonicalHomeroomCode reduces a homeroom-class name ("Klasse 07D
// Schueler") to its class label plus role suffix ("07DS"). Groups for
// external training companies are dropped entirely.
func canonicalHomeroomCode(name string) string {
	if strings.Contains(name, "Betriebe") || strings.Contains(name, "Ausbilder") {
		return ""
	}

	fields := strings.Fields(name)
	if len(fields) < 2 {
		return ""
	}

	return fields[1] + roleSuffix(name)
}

// roleSuffix marks which side of a paired group a name belongs to:
// "L" for the teacher variant, "S" for the student variant.
func roleSuffix(name string) string {
	switch {
	case strings.Contains(name, "Lehrer"):
		return "L"
	case strings.Contains(name, "Schueler"):
		return "S"
	}
	return ""
}
