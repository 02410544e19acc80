// Package report writes the output artifacts: provisioning batches for
// the device-management import and the raw users/groups exports the
// curated mapping table is derived from.
package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/liebero3/schild2jamf/pkg/schema"
)

// Batch headers, fixed per batch kind. The import on the JAMF side is
// column-order sensitive.
const (
	studentHeader           = "Username;Email;FirstName;LastName;Groups;Password"
	studentHeaderWithSerial = studentHeader + ";SerialNumber"
	staffHeader             = "Username;Email;FirstName;LastName;TeacherGroups;Groups;Password"
)

// writeAtomic writes an artifact through a temp file and renames it into
// place on success. A failure mid-write removes the temp file so a
// truncated artifact is never left behind; artifacts completed earlier
// in the same run are untouched.
func writeAtomic(path string, write func(io.Writer) error) error {
	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("create %s: %w", tmp, err)
	}

	if err := write(f); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("close %s: %w", tmp, err)
	}

	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("rename %s: %w", path, err)
	}
	return nil
}

// WriteStudentBatch writes the student provisioning CSV. The serial
// column only exists when a device roster was supplied for the batch.
func WriteStudentBatch(path string, records []schema.ProvisioningRecord, withSerials bool) error {
	return writeAtomic(path, func(w io.Writer) error {
		header := studentHeader
		if withSerials {
			header = studentHeaderWithSerial
		}
		if _, err := fmt.Fprintln(w, header); err != nil {
			return err
		}

		for _, r := range records {
			fields := []string{
				r.Username,
				r.Email,
				r.FirstName,
				r.LastName,
				strings.Join(r.Groups, ","),
				r.Password,
			}
			if withSerials {
				fields = append(fields, r.SerialNumber)
			}
			if _, err := fmt.Fprintln(w, strings.Join(fields, ";")); err != nil {
				return err
			}
		}
		return nil
	})
}

// WriteStaffBatch writes the staff provisioning CSV.
func WriteStaffBatch(path string, records []schema.ProvisioningRecord) error {
	return writeAtomic(path, func(w io.Writer) error {
		if _, err := fmt.Fprintln(w, staffHeader); err != nil {
			return err
		}

		for _, r := range records {
			fields := []string{
				r.Username,
				r.Email,
				r.FirstName,
				r.LastName,
				strings.Join(r.TeacherGroups, ","),
				strings.Join(r.Groups, ","),
				r.Password,
			}
			if _, err := fmt.Fprintln(w, strings.Join(fields, ";")); err != nil {
				return err
			}
		}
		return nil
	})
}

// WriteUserExport writes the raw users CSV. It seeds the email-to-kuerzel
// table: the kuerzel column starts out as the derived username and is
// hand-corrected afterwards.
func WriteUserExport(path string, persons []schema.Person, identities []schema.Identity) error {
	return writeAtomic(path, func(w io.Writer) error {
		cw := csv.NewWriter(w)
		if err := cw.Write([]string{"given", "name", "username", "email", "kuerzel"}); err != nil {
			return err
		}
		for i, p := range persons {
			row := []string{
				p.GivenName,
				p.FamilyName,
				identities[i].Username,
				strings.ToLower(p.Email),
				identities[i].Username,
			}
			if err := cw.Write(row); err != nil {
				return err
			}
		}
		cw.Flush()
		return cw.Error()
	})
}

// WriteGroupExport writes the raw groups CSV. The empty "newname" column
// is filled in by hand; the result is loaded back as the curated group
// mapping table.
func WriteGroupExport(path string, groups []schema.Group) error {
	return writeAtomic(path, func(w io.Writer) error {
		cw := csv.NewWriter(w)
		if err := cw.Write([]string{"groupid", "parent", "name", "newname"}); err != nil {
			return err
		}
		for _, g := range groups {
			if err := cw.Write([]string{g.ID, g.ParentID, g.DisplayName, ""}); err != nil {
				return err
			}
		}
		cw.Flush()
		return cw.Error()
	})
}
