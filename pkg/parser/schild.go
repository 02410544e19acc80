package parser

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strconv"

	"github.com/liebero3/schild2jamf/pkg/schema"
)

// ErrMissingField marks a required XML field that is absent from the
// export. Any occurrence aborts the run; a half-parsed roster must never
// reach provisioning.
var ErrMissingField = errors.New("required field missing")

// ErrNoSchoolYear is returned when the export contains no recognizable
// school-year marker.
var ErrNoSchoolYear = errors.New("no school year found in export")

// Document is the parsed content of one SchILD export file.
type Document struct {
	Persons     []schema.Person
	Groups      []schema.Group
	Memberships []schema.Membership
}

// xmlPerson mirrors the IMS-Enterprise person element of the SchILD
// cockpit sync format.
type xmlPerson struct {
	ID     string `xml:"sourcedid>id"`
	Family string `xml:"name>n>family"`
	Given  string `xml:"name>n>given"`
	Role   struct {
		Type string `xml:"institutionroletype,attr"`
	} `xml:"institutionrole"`
	Email string `xml:"email"`
	BDay  string `xml:"demographics>bday"`
}

type xmlGroup struct {
	ID     string `xml:"sourcedid>id"`
	Short  string `xml:"description>short"`
	Parent string `xml:"relationship>sourcedid>id"`
}

type xmlMembership struct {
	GroupID  string `xml:"sourcedid>id"`
	MemberID string `xml:"member>sourcedid>id"`
}

// ParseDocument parses a SchILD cockpit-sync XML export into raw person,
// group, and membership tuples. Element order is preserved: identity
// collision resolution and course lists both depend on it.
func ParseDocument(data []byte) (*Document, error) {
	decoded, _, err := DetectAndDecode(data)
	if err != nil {
		return nil, fmt.Errorf("schild export: %w", err)
	}

	decoder := xml.NewDecoder(bytes.NewReader(decoded))
	doc := &Document{}

	for {
		token, err := decoder.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("schild export: %w", err)
		}

		start, ok := token.(xml.StartElement)
		if !ok {
			continue
		}

		switch start.Name.Local {
		case "person":
			var p xmlPerson
			if err := decoder.DecodeElement(&p, &start); err != nil {
				return nil, fmt.Errorf("schild export: person %d: %w", len(doc.Persons)+1, err)
			}
			person, err := convertPerson(p)
			if err != nil {
				return nil, fmt.Errorf("schild export: person %d: %w", len(doc.Persons)+1, err)
			}
			doc.Persons = append(doc.Persons, person)

		case "group":
			var g xmlGroup
			if err := decoder.DecodeElement(&g, &start); err != nil {
				return nil, fmt.Errorf("schild export: group %d: %w", len(doc.Groups)+1, err)
			}
			if g.ID == "" {
				return nil, fmt.Errorf("schild export: group %d: id: %w", len(doc.Groups)+1, ErrMissingField)
			}
			doc.Groups = append(doc.Groups, schema.Group{
				ID:          g.ID,
				DisplayName: g.Short,
				ParentID:    g.Parent,
			})

		case "membership":
			var m xmlMembership
			if err := decoder.DecodeElement(&m, &start); err != nil {
				return nil, fmt.Errorf("schild export: membership %d: %w", len(doc.Memberships)+1, err)
			}
			if m.GroupID == "" || m.MemberID == "" {
				return nil, fmt.Errorf("schild export: membership %d: %w", len(doc.Memberships)+1, ErrMissingField)
			}
			doc.Memberships = append(doc.Memberships, schema.Membership{
				GroupID:  m.GroupID,
				PersonID: m.MemberID,
			})
		}
	}

	return doc, nil
}

func convertPerson(p xmlPerson) (schema.Person, error) {
	switch {
	case p.ID == "":
		return schema.Person{}, fmt.Errorf("id: %w", ErrMissingField)
	case p.Family == "":
		return schema.Person{}, fmt.Errorf("family name: %w", ErrMissingField)
	case p.Given == "":
		return schema.Person{}, fmt.Errorf("given name: %w", ErrMissingField)
	case p.Role.Type == "":
		return schema.Person{}, fmt.Errorf("institution role: %w", ErrMissingField)
	}

	role := schema.Role(p.Role.Type)
	switch role {
	case schema.RoleStudent, schema.RoleFaculty, schema.RoleExtern:
	default:
		return schema.Person{}, fmt.Errorf("unsupported institution role %q", p.Role.Type)
	}

	person := schema.Person{
		ExternalID: p.ID,
		FamilyName: p.Family,
		GivenName:  p.Given,
		Role:       role,
		Email:      p.Email,
	}
	// Birth dates only exist for students; staff passwords are derived
	// without a date slice.
	if role == schema.RoleStudent {
		person.BirthDate = p.BDay
	}
	return person, nil
}

// schoolYearRe matches a school-year marker such as "2024/25" anywhere
// in the raw export.
var schoolYearRe = regexp.MustCompile(`20(\d\d)/(\d\d)`)

// ParseSchoolYear scans the raw export for a school-year marker and
// returns the two-digit code of the starting year ("24" for 2024/25).
// Only pairs of consecutive years count; other slash-separated numbers
// in the document are ignored.
func ParseSchoolYear(data []byte) (string, error) {
	for _, m := range schoolYearRe.FindAllSubmatch(data, -1) {
		first, err := strconv.Atoi(string(m[1]))
		if err != nil {
			continue
		}
		second, err := strconv.Atoi(string(m[2]))
		if err != nil {
			continue
		}
		if second == (first+1)%100 {
			return string(m[1]), nil
		}
	}
	return "", ErrNoSchoolYear
}
