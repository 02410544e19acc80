package schema

import (
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransliterate(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Müller", "Mueller"},
		{"Jörg", "Joerg"},
		{"Über", "Ueber"},
		{"Ärger", "Aerger"},
		{"Öl", "Oel"},
		{"Groß", "Gross"},
		{"José", "Jose"},
		{"Çağla", "Cagla"},
		{"Noël-André", "Noel-Andre"},
		{"plain", "plain"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Transliterate(tt.in), "Transliterate(%q)", tt.in)
	}
}

func TestDeriveUsernameShortform(t *testing.T) {
	assert.Equal(t, "michmuel", DeriveUsername("Michael", "Müller", RoleStudent))

	// First space-delimited token of the given name only.
	assert.Equal(t, "annmeie", DeriveUsername("Ann Kathrin", "Meier", RoleStudent))

	// Spaces and hyphens are stripped from the family name before slicing.
	assert.Equal(t, "lisavonb", DeriveUsername("Lisa", "von Berg", RoleStudent))
	assert.Equal(t, "timschm", DeriveUsername("Tim", "Schm", RoleStudent))
}

func TestDeriveUsernameDotted(t *testing.T) {
	assert.Equal(t, "jan.meyer", DeriveUsername("Jan", "Meyer", RoleFaculty))
	assert.Equal(t, "joerg.muellerluedenscheidt", DeriveUsername("Jörg", "Müller-Lüdenscheidt", RoleFaculty))
	assert.Equal(t, "eva.dewit", DeriveUsername("Eva Maria", "de Wit", RoleExtern))
}

func TestUsernameShape(t *testing.T) {
	studentRe := regexp.MustCompile(`^[a-z0-9.]+$`)

	persons := []Person{
		{GivenName: "Annika", FamilyName: "Öztürk", Role: RoleStudent},
		{GivenName: "François", FamilyName: "Dubois", Role: RoleStudent},
		{GivenName: "Björn", FamilyName: "Straße", Role: RoleFaculty},
	}
	for _, p := range persons {
		username := DeriveUsername(p.GivenName, p.FamilyName, p.Role)
		require.NotEmpty(t, username)
		if p.Role.IsStaff() {
			assert.Equal(t, 1, strings.Count(username, "."), "dotted username %q", username)
		} else {
			assert.Regexp(t, studentRe, username)
			assert.LessOrEqual(t, len(username), 8)
		}
	}
}

func TestDerivePassword(t *testing.T) {
	got := DerivePassword("DE.NW.123456X789", "michmuel", "2008-05-12")
	assert.Equal(t, "789el200mi", got)
}

func TestDerivePasswordShortInputs(t *testing.T) {
	// Each slice truncates independently; short inputs never pad or error.
	// All four slices draw from inputs shorter than their size.
	assert.Equal(t, "abababab", DerivePassword("ab", "ab", "ab"))
	assert.Equal(t, "", DerivePassword("", "", ""))
	assert.Equal(t, "789elmi", DerivePassword("DE.NW.123456X789", "michmuel", ""))
}

func TestResolveCollisionNonCascading(t *testing.T) {
	// First occupant keeps the base name.
	assert.Equal(t, "michmuel", ResolveCollision("michmuel", nil))
	// Second gets a "1" appended.
	assert.Equal(t, "michmuel1", ResolveCollision("michmuel", []string{"michmuel"}))
	// A third collision with the same base also ends in "1" — suffixing
	// does not cascade to "2". Pinned on purpose: existing accounts were
	// provisioned under this rule.
	assert.Equal(t, "michmuel1",
		ResolveCollision("michmuel", []string{"michmuel", "michmuel1"}))
}

func TestNormalizeIdentities(t *testing.T) {
	persons := []Person{
		{ExternalID: "DE.NW.123456X789", GivenName: "Michael", FamilyName: "Müller", Role: RoleStudent, BirthDate: "2008-05-12"},
		{ExternalID: "DE.NW.223456X789", GivenName: "Michaela", FamilyName: "Muelheim", Role: RoleStudent, BirthDate: "2009-01-30"},
		{ExternalID: "DE.NW.323456X789", GivenName: "Michail", FamilyName: "Mueller", Role: RoleStudent, BirthDate: "2008-11-02"},
		{ExternalID: "DE.NW.987654X321", GivenName: "Jan", FamilyName: "Meyer", Role: RoleFaculty, BirthDate: ""},
	}

	identities := NormalizeIdentities(persons)
	require.Len(t, identities, 4)

	assert.Equal(t, "michmuel", identities[0].Username)
	assert.Equal(t, "michmuel1", identities[1].Username)
	// Non-cascading quirk: the third collision also resolves to "1".
	assert.Equal(t, "michmuel1", identities[2].Username)

	assert.Equal(t, "789el200mi", identities[0].InitialPassword)

	// Staff passwords never include a birth-date slice.
	assert.Equal(t, "jan.meyer", identities[3].Username)
	assert.Equal(t, "321erja", identities[3].InitialPassword)
}
