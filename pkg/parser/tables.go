package parser

import (
	"fmt"
	"strings"
)

// LoadGroupMapping parses the curated canonical-code mapping table. The
// table is the groups export CSV after hand-editing: the "name" column
// holds the canonical code (or raw name, for the name-driven strategy)
// and "newname" the target-system group identifier. Rows whose target is
// blank are left out of the map — absence means "no target-system
// equivalent" and is consulted as a silent drop everywhere except the
// Fach/Bereich direct-lookup path.
func LoadGroupMapping(data []byte) (map[string]string, error) {
	header, rows, err := readTable(data, ',')
	if err != nil {
		return nil, fmt.Errorf("group mapping: %w", err)
	}

	nameIdx, err := columnIndex(header, "name")
	if err != nil {
		return nil, fmt.Errorf("group mapping: %w", err)
	}
	targetIdx, err := columnIndex(header, "newname")
	if err != nil {
		return nil, fmt.Errorf("group mapping: %w", err)
	}

	mapping := make(map[string]string, len(rows))
	for _, row := range rows {
		name := strings.TrimSpace(row[nameIdx])
		target := strings.TrimSpace(row[targetIdx])
		if name != "" && target != "" {
			mapping[name] = target
		}
	}
	return mapping, nil
}

// LoadEmailKuerzel parses the email to staff short-code table. Emails are
// lowercased so lookups can use the export's mixed-case addresses; rows
// with a blank email or code are skipped.
func LoadEmailKuerzel(data []byte) (map[string]string, error) {
	header, rows, err := readTable(data, ',')
	if err != nil {
		return nil, fmt.Errorf("kuerzel table: %w", err)
	}

	emailIdx, err := columnIndex(header, "email")
	if err != nil {
		return nil, fmt.Errorf("kuerzel table: %w", err)
	}
	codeIdx, err := columnIndex(header, "kuerzel")
	if err != nil {
		return nil, fmt.Errorf("kuerzel table: %w", err)
	}

	mapping := make(map[string]string, len(rows))
	for _, row := range rows {
		email := strings.ToLower(strings.TrimSpace(row[emailIdx]))
		code := strings.TrimSpace(row[codeIdx])
		if email != "" && code != "" {
			mapping[email] = code
		}
	}
	return mapping, nil
}

// LoadDeviceSerials parses the device registry: a semicolon-separated
// CSV with "Name" and "SerialNumber" columns located by header. Rows
// missing either value are skipped.
func LoadDeviceSerials(data []byte) (map[string]string, error) {
	header, rows, err := readTable(data, ';')
	if err != nil {
		return nil, fmt.Errorf("device registry: %w", err)
	}

	nameIdx, err := columnIndex(header, "Name")
	if err != nil {
		return nil, fmt.Errorf("device registry: %w", err)
	}
	serialIdx, err := columnIndex(header, "SerialNumber")
	if err != nil {
		return nil, fmt.Errorf("device registry: %w", err)
	}

	serials := make(map[string]string, len(rows))
	for _, row := range rows {
		name := strings.TrimSpace(row[nameIdx])
		serial := strings.TrimSpace(row[serialIdx])
		if name != "" && serial != "" {
			serials[name] = serial
		}
	}
	return serials, nil
}

// LoadClassRoster parses a per-class device roster. The first column
// holds device display names in hand-out order; the header row is
// skipped. Order is preserved because serials are attached to matched
// students positionally.
func LoadClassRoster(data []byte) ([]string, error) {
	_, rows, err := readTable(data, ',')
	if err != nil {
		return nil, fmt.Errorf("class roster: %w", err)
	}

	names := make([]string, 0, len(rows))
	for _, row := range rows {
		if name := strings.TrimSpace(row[0]); name != "" {
			names = append(names, name)
		}
	}
	return names, nil
}
