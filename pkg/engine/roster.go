package engine

import (
	"github.com/liebero3/schild2jamf/pkg/schema"
)

// Roster indexes one export's persons, groups, and memberships for the
// provisioning pass. Person order is the export's element order; the
// derived identities are order-sensitive and stored parallel to Persons.
type Roster struct {
	Persons    []schema.Person
	Identities []schema.Identity

	groupsByID       map[string]schema.Group
	groupIDsByPerson map[string][]string
}

// BuildRoster derives identities for every person and indexes groups and
// membership edges. Duplicate membership edges are kept: course lists
// retain them.
func BuildRoster(persons []schema.Person, groups []schema.Group, memberships []schema.Membership) *Roster {
	r := &Roster{
		Persons:          persons,
		Identities:       schema.NormalizeIdentities(persons),
		groupsByID:       make(map[string]schema.Group, len(groups)),
		groupIDsByPerson: make(map[string][]string, len(persons)),
	}

	for _, g := range groups {
		// First occurrence wins for duplicated group IDs.
		if _, exists := r.groupsByID[g.ID]; !exists {
			r.groupsByID[g.ID] = g
		}
	}

	for _, m := range memberships {
		r.groupIDsByPerson[m.PersonID] = append(r.groupIDsByPerson[m.PersonID], m.GroupID)
	}

	return r
}

// Group returns the group record for an ID.
func (r *Roster) Group(id string) (schema.Group, bool) {
	g, ok := r.groupsByID[id]
	return g, ok
}

// CoursesOf returns the canonicalized names of every group the person is
// a member of, in membership order, duplicates retained. Edges pointing
// at unknown groups and groups that canonicalize to "" are skipped
// silently. Only the canonicalizer's Fach/Bereich direct-lookup path can
// produce an error.
func (r *Roster) CoursesOf(personID string, canon *schema.Canonicalizer) ([]string, error) {
	var courses []string
	for _, groupID := range r.groupIDsByPerson[personID] {
		g, ok := r.groupsByID[groupID]
		if !ok {
			continue
		}
		code, err := canon.Canonicalize(g)
		if err != nil {
			return nil, err
		}
		if code != "" {
			courses = append(courses, code)
		}
	}
	return courses, nil
}
