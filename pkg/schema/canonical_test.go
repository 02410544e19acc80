package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanonicalizeByID(t *testing.T) {
	canon := &Canonicalizer{Strategy: StrategyGroupID, SchoolYear: "24"}

	tests := []struct {
		name  string
		group Group
		want  string
	}{
		{
			name:  "subject course with tier",
			group: Group{ID: "raum-kurs-0815", DisplayName: "M GK (06, 2, Q1, XYZ) - Schueler"},
			want:  "MGKQ1XYZS",
		},
		{
			name:  "subject course without tier",
			group: Group{ID: "raum-kurs-0816", DisplayName: "D (01, 1, 07, ABC) - Lehrer"},
			want:  "D07ABCL",
		},
		{
			name:  "tier token kept only for GK or LK",
			group: Group{ID: "raum-kurs-0817", DisplayName: "E AG (01, 1, 08, DEF) - Schueler"},
			want:  "E08DEFS",
		},
		{
			name:  "course missing parenthesis pair",
			group: Group{ID: "raum-kurs-0818", DisplayName: "M GK Q1 XYZ - Schueler"},
			want:  "",
		},
		{
			name:  "course with too few comma fields",
			group: Group{ID: "raum-kurs-0819", DisplayName: "M GK (06, Q1) - Schueler"},
			want:  "",
		},
		{
			name:  "homeroom class students",
			group: Group{ID: "raum-klasse-4711", DisplayName: "Klasse 07D Schueler"},
			want:  "07DS",
		},
		{
			name:  "homeroom class teachers",
			group: Group{ID: "raum-klasse-4712", DisplayName: "Klasse 10A Lehrer"},
			want:  "10AL",
		},
		{
			name:  "homeroom for training companies is dropped",
			group: Group{ID: "raum-klasse-4713", DisplayName: "Klasse 10A Betriebe"},
			want:  "",
		},
		{
			name:  "homeroom for trainers is dropped",
			group: Group{ID: "raum-klasse-4714", DisplayName: "Klasse BM21 Ausbilder"},
			want:  "",
		},
		{
			name:  "subject area always empty",
			group: Group{ID: "raum-fach-0001", DisplayName: "Mathematik"},
			want:  "",
		},
		{
			name:  "unknown id pattern",
			group: Group{ID: "raum-sonstiges-9", DisplayName: "Klasse 07D Schueler"},
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := canon.Canonicalize(tt.group)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCanonicalizeByName(t *testing.T) {
	canon := &Canonicalizer{
		Strategy:   StrategyGroupName,
		SchoolYear: "24",
		Mapping: map[string]string{
			"Fach Mathematik": "MA-ALL",
		},
	}

	tests := []struct {
		name  string
		group Group
		want  string
	}{
		{
			name:  "homeroom gets year suffix",
			group: Group{DisplayName: "Klasse 07D Schueler"},
			want:  "07DS24",
		},
		{
			name:  "homeroom teachers",
			group: Group{DisplayName: "Klasse 07D Lehrer"},
			want:  "07DL24",
		},
		{
			name:  "parenthesized course gets year suffix",
			group: Group{DisplayName: "M GK (06, 2, Q1, XYZ) - Schueler"},
			want:  "MGKQ1XYZS24",
		},
		{
			name:  "catch-all students without year suffix",
			group: Group{DisplayName: "Alle - Schueler"},
			want:  CatchAllStudents,
		},
		{
			name:  "catch-all staff without year suffix",
			group: Group{DisplayName: "Alle - Lehrer"},
			want:  CatchAllStaff,
		},
		{
			name:  "subject area resolves through the mapping table",
			group: Group{DisplayName: "Fach Mathematik"},
			want:  "MA-ALL",
		},
		{
			name:  "unrecognized name",
			group: Group{DisplayName: "Schulgarten AG"},
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := canon.Canonicalize(tt.group)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCanonicalizeByNameMappingMissing(t *testing.T) {
	canon := &Canonicalizer{Strategy: StrategyGroupName, SchoolYear: "24", Mapping: map[string]string{}}

	_, err := canon.Canonicalize(Group{DisplayName: "Bereich Naturwissenschaften"})
	require.Error(t, err)

	var missing *MappingMissingError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, "Bereich Naturwissenschaften", missing.Name)
}
