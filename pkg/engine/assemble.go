package engine

import (
	"fmt"
	"slices"
	"strings"

	"github.com/liebero3/schild2jamf/pkg/config"
	"github.com/liebero3/schild2jamf/pkg/schema"
)

// SerialLookupError reports a device name from a class roster that has
// no entry in the device registry. Serial attachment is positional, so a
// hole would shift every following serial onto the wrong student; the
// batch aborts instead.
type SerialLookupError struct {
	Name string
}

func (e *SerialLookupError) Error() string {
	return fmt.Sprintf("device registry has no serial number for %q", e.Name)
}

// Assembler combines identities, course lists, and the curated tables
// into provisioning records.
type Assembler struct {
	Config *config.Config
	Canon  *schema.Canonicalizer
	Roster *Roster
	// Mapping is the canonical-code to target-group table. Misses drop
	// silently during catch-all expansion.
	Mapping GroupMapping
	// EmailKuerzel maps staff emails (lowercase) to their short codes.
	EmailKuerzel map[string]string
}

// StudentRecords emits one record per student. classFilter restricts the
// batch to one homeroom class ("" means all students); serialNumbers, if
// non-empty, are attached to the emitted records in positional order.
func (a *Assembler) StudentRecords(classFilter string, serialNumbers []string) ([]schema.ProvisioningRecord, error) {
	var records []schema.ProvisioningRecord
	serialIdx := 0

	for i, p := range a.Roster.Persons {
		if p.Role != schema.RoleStudent {
			continue
		}

		courses, err := a.Roster.CoursesOf(p.ExternalID, a.Canon)
		if err != nil {
			return nil, err
		}

		if classFilter != "" && a.classOf(courses) != classFilter {
			continue
		}

		groups := courses
		if slices.Contains(courses, schema.CatchAllStudents) {
			groups = a.expandCatchAll(courses, a.Config.StudentSupplementaryGroups)
		}

		identity := a.Roster.Identities[i]
		first, last := splitUsername(identity.Username)
		record := schema.ProvisioningRecord{
			Username: a.Config.OrgPrefix + "-" + identity.Username,
			Email:    identity.Username + "@" + a.Config.EmailDomain,
			// First/last labels come from the synthetic username, not the
			// real name. Intentional: the target system shows no real
			// student names on shared devices.
			FirstName: first,
			LastName:  last,
			Groups:    groups,
			Password:  identity.InitialPassword,
		}

		if len(serialNumbers) > 0 {
			if serialIdx >= len(serialNumbers) {
				return nil, fmt.Errorf("class roster has %d serial numbers but batch matched more students", len(serialNumbers))
			}
			record.SerialNumber = serialNumbers[serialIdx]
			serialIdx++
		}

		records = append(records, record)
	}

	return records, nil
}

// StaffRecords emits one record per faculty or external staff member.
// Identity fields are keyed off the email-to-kuerzel table with the
// WebUntis UID as fallback; the real name never appears in the output.
func (a *Assembler) StaffRecords() ([]schema.ProvisioningRecord, error) {
	var records []schema.ProvisioningRecord

	for i, p := range a.Roster.Persons {
		if !p.Role.IsStaff() {
			continue
		}

		courses, err := a.Roster.CoursesOf(p.ExternalID, a.Canon)
		if err != nil {
			return nil, err
		}

		teacherGroups := courses
		if slices.Contains(courses, schema.CatchAllStaff) {
			teacherGroups = a.expandCatchAll(courses, a.Config.StaffSupplementaryGroups)
		}

		code, ok := a.EmailKuerzel[strings.ToLower(p.Email)]
		if !ok {
			code = webuntisUID(p)
		}
		short := schema.DeriveUsername(code, "", schema.RoleStudent)

		records = append(records, schema.ProvisioningRecord{
			Username:      a.Config.OrgPrefix + "-" + short,
			Email:         short + "@" + a.Config.EmailDomain,
			FirstName:     code,
			LastName:      code,
			TeacherGroups: teacherGroups,
			Groups:        []string{schema.CatchAllStaff},
			Password:      a.Roster.Identities[i].InitialPassword,
		})
	}

	return records, nil
}

// SerialsForRoster resolves a class roster's device names against the
// device registry, preserving roster order. A missing entry fails the
// batch with a *SerialLookupError.
func SerialsForRoster(rosterNames []string, registry map[string]string) ([]string, error) {
	serials := make([]string, 0, len(rosterNames))
	for _, name := range rosterNames {
		serial, ok := registry[name]
		if !ok {
			return nil, &SerialLookupError{Name: name}
		}
		serials = append(serials, serial)
	}
	return serials, nil
}

// expandCatchAll replaces a course list containing a catch-all sentinel
// with its mapped form: every course is resolved through the group
// mapping (misses drop silently), the sentinel itself is dropped, and
// the deployment's supplementary groups are appended.
func (a *Assembler) expandCatchAll(courses, supplementary []string) []string {
	groups := make([]string, 0, len(courses)+len(supplementary))
	for _, course := range courses {
		if course == schema.CatchAllStudents || course == schema.CatchAllStaff {
			continue
		}
		if target, ok := a.Mapping.Resolve(course); ok {
			groups = append(groups, target)
		}
	}
	return append(groups, supplementary...)
}

// classOf returns the first whitelisted class label whose current-year
// homeroom group appears in the course list, or "" if none matches.
func (a *Assembler) classOf(courses []string) string {
	for _, course := range courses {
		for _, label := range a.Config.ClassLabels {
			if course == a.homeroomCode(label) {
				return label
			}
		}
	}
	return ""
}

// homeroomCode is the canonical code of a class label's student homeroom
// group under the active strategy ("07D" -> "07DS" or "07DS24").
func (a *Assembler) homeroomCode(label string) string {
	code := label + "S"
	if a.Canon.Strategy == schema.StrategyGroupName {
		code += a.Canon.SchoolYear
	}
	return code
}

// webuntisUID derives the fallback staff short code: the shortform
// username when the external ID carries an "X" marker, otherwise the
// external ID with its first 10 characters stripped.
func webuntisUID(p schema.Person) string {
	if strings.Contains(p.ExternalID, "X") {
		return schema.DeriveUsername(p.GivenName, p.FamilyName, schema.RoleStudent)
	}
	if len(p.ExternalID) <= 10 {
		return ""
	}
	return p.ExternalID[10:]
}

// splitUsername halves a synthetic shortform username into the first and
// last name labels (first 4 characters / remainder).
func splitUsername(username string) (first, last string) {
	if len(username) <= 4 {
		return username, ""
	}
	return username[:4], username[4:]
}
