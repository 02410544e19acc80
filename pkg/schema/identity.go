package schema

import (
	"slices"
	"strings"
)

// separatorReplacer strips the separators SchILD allows inside family
// names before slicing them into username parts.
var separatorReplacer = strings.NewReplacer(" ", "", "-", "")

// DeriveUsername builds the base username for a person.
//
// Students get the shortform: the first 4 characters of the given name's
// first space-delimited token concatenated with the first 4 characters of
// the family name with spaces and hyphens removed. Faculty and external
// staff get the dotted form: first given-name token, a period, and the
// stripped family name. Both forms are transliterated and lowercased.
func DeriveUsername(given, family string, role Role) string {
	givenToken, _, _ := strings.Cut(Transliterate(given), " ")
	familyToken := separatorReplacer.Replace(Transliterate(family))

	var username string
	if role.IsStaff() {
		username = givenToken + "." + familyToken
	} else {
		username = prefixOf(givenToken, 4) + prefixOf(familyToken, 4)
	}

	return strings.ToLower(username)
}

// ResolveCollision appends "1" to the candidate if any previously
// assigned username equals it. Only a single collision level exists: a
// third identity with the same base also ends in "1" instead of
// cascading to "2". That quirk is load-bearing for existing accounts and
// is pinned by tests; do not "fix" it without a product decision.
func ResolveCollision(candidate string, assigned []string) string {
	if slices.Contains(assigned, candidate) {
		return candidate + "1"
	}
	return candidate
}

// DerivePassword assembles the initial password from fixed-size slices:
// the last 3 characters of the external ID, the last 2 of the username,
// the first 3 of the birth date with hyphens removed, and the first 2 of
// the username. Each slice truncates to what is available; short inputs
// yield a shorter password, never an error.
func DerivePassword(externalID, username, birthDate string) string {
	return suffixOf(externalID, 3) +
		suffixOf(username, 2) +
		prefixOf(strings.ReplaceAll(birthDate, "-", ""), 3) +
		prefixOf(username, 2)
}

// NormalizeIdentities derives one Identity per person, in input order.
// Collision resolution scans the usernames assigned so far, which makes
// the result order-sensitive; callers must keep the export's person
// order stable.
func NormalizeIdentities(persons []Person) []Identity {
	identities := make([]Identity, 0, len(persons))
	assigned := make([]string, 0, len(persons))

	for _, p := range persons {
		username := ResolveCollision(DeriveUsername(p.GivenName, p.FamilyName, p.Role), assigned)

		birthDate := p.BirthDate
		if p.Role.IsStaff() {
			birthDate = ""
		}

		identities = append(identities, Identity{
			Username:        username,
			InitialPassword: DerivePassword(p.ExternalID, username, birthDate),
		})
		assigned = append(assigned, username)
	}

	return identities
}

func prefixOf(s string, n int) string {
	if len(s) < n {
		return s
	}
	return s[:n]
}

func suffixOf(s string, n int) string {
	if len(s) < n {
		return s
	}
	return s[len(s)-n:]
}
