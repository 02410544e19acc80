package schema

// Role is the institution role a person carries in the SchILD export.
type Role string

const (
	RoleStudent Role = "Student"
	RoleFaculty Role = "faculty"
	RoleExtern  Role = "extern"
)

// IsStaff reports whether the role belongs to the staff batch
// (faculty and external staff share the same provisioning rules).
func (r Role) IsStaff() bool {
	return r == RoleFaculty || r == RoleExtern
}

// Person is one raw person record from the SchILD export. It is immutable
// after parsing; derived login data lives in Identity.
type Person struct {
	ExternalID string `json:"externalId"`
	FamilyName string `json:"familyName"`
	GivenName  string `json:"givenName"`
	Role       Role   `json:"role"`
	Email      string `json:"email"`
	// BirthDate is ISO YYYY-MM-DD and only present for students.
	BirthDate string `json:"birthDate"`
}

// Identity holds the derived login data for one person. It is computed
// once per export run; username assignment depends on every identity
// assigned earlier in input order (see NormalizeIdentities).
type Identity struct {
	Username        string `json:"username"`
	InitialPassword string `json:"initialPassword"`
}

// Group is one raw group record from the SchILD export. DisplayName is
// the free-text name as exported; canonicalization never mutates it but
// derives a short code from it.
type Group struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName"`
	ParentID    string `json:"parentId"`
}

// Membership is a person-to-group edge. Duplicate edges are kept as-is.
type Membership struct {
	GroupID  string `json:"groupId"`
	PersonID string `json:"personId"`
}

// ProvisioningRecord is one output row of a provisioning batch.
// TeacherGroups is only populated for the staff batch, SerialNumber only
// for student batches generated against a device roster.
type ProvisioningRecord struct {
	Username      string   `json:"username"`
	Email         string   `json:"email"`
	FirstName     string   `json:"firstName"`
	LastName      string   `json:"lastName"`
	TeacherGroups []string `json:"teacherGroups,omitempty"`
	Groups        []string `json:"groups"`
	Password      string   `json:"password"`
	SerialNumber  string   `json:"serialNumber,omitempty"`
}
