// Command schild2jamf converts a SchILD student-information export into
// provisioning CSVs for a JAMF School import.
//
// Two modes exist: "export" writes the raw users/groups tables the
// curated mapping CSVs are derived from, "generate" produces the final
// provisioning batch.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	flag "github.com/spf13/pflag"

	"github.com/liebero3/schild2jamf/pkg/config"
	"github.com/liebero3/schild2jamf/pkg/engine"
	"github.com/liebero3/schild2jamf/pkg/parser"
	"github.com/liebero3/schild2jamf/pkg/report"
	"github.com/liebero3/schild2jamf/pkg/schema"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

type options struct {
	mode        string
	input       string
	configPath  string
	outDir      string
	kind        string
	class       string
	mappingPath string
	kuerzelPath string
	serialsPath string
}

func run(args []string) int {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	opts, err := parseArgs(args)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		printUsage()
		return 2
	}

	cfg := config.Default()
	if opts.configPath != "" {
		cfg, err = config.Load(opts.configPath)
		if err != nil {
			logger.Error("loading config failed", "error", err)
			return 1
		}
	}

	switch opts.mode {
	case "export":
		err = runExport(logger, opts)
	case "generate":
		err = runGenerate(logger, cfg, opts)
	default:
		fmt.Fprintf(os.Stderr, "error: unknown mode %q\n", opts.mode)
		printUsage()
		return 2
	}
	if err != nil {
		logger.Error("run failed", "mode", opts.mode, "error", err)
		return 1
	}
	return 0
}

func parseArgs(args []string) (*options, error) {
	opts := &options{}

	flags := flag.NewFlagSet("schild2jamf", flag.ContinueOnError)
	flags.StringVar(&opts.input, "input", "", "path to the SchILD XML export")
	flags.StringVar(&opts.configPath, "config", "", "deployment config file (YAML)")
	flags.StringVar(&opts.outDir, "out-dir", ".", "directory output files are written to")
	flags.StringVar(&opts.kind, "kind", "student", `batch kind: "student" or "staff"`)
	flags.StringVar(&opts.class, "class", "", "restrict the student batch to one class label")
	flags.StringVar(&opts.mappingPath, "mapping", "", "curated group mapping CSV")
	flags.StringVar(&opts.kuerzelPath, "kuerzel", "", "email-to-kuerzel CSV for staff batches")
	flags.StringVar(&opts.serialsPath, "serials", "", "device registry CSV keyed by device name")
	if err := flags.Parse(args); err != nil {
		return nil, err
	}

	if flags.NArg() != 1 {
		return nil, fmt.Errorf("expected exactly one mode argument (export or generate)")
	}
	opts.mode = flags.Arg(0)

	if opts.input == "" {
		return nil, fmt.Errorf("--input is required")
	}
	if opts.kind != "student" && opts.kind != "staff" {
		return nil, fmt.Errorf("unknown batch kind %q", opts.kind)
	}
	return opts, nil
}

func printUsage() {
	fmt.Fprintln(os.Stderr, `usage: schild2jamf [flags] <export|generate>

  export    parse the SchILD XML and write the raw users/groups CSVs
  generate  write a provisioning batch (see --kind, --class, --serials)

Flags:
  --input    path to the SchILD XML export (required)
  --config   deployment config file (YAML)
  --out-dir  directory output files are written to
  --kind     batch kind for generate: student (default) or staff
  --class    restrict the student batch to one class label
  --mapping  curated group mapping CSV
  --kuerzel  email-to-kuerzel CSV for staff batches
  --serials  device registry CSV keyed by device name`)
}

// runExport writes the raw users and groups CSVs. The groups file gets
// an empty "newname" column that is curated by hand and fed back in as
// the group mapping for generate runs.
func runExport(logger *slog.Logger, opts *options) error {
	doc, _, err := parseInput(opts.input)
	if err != nil {
		return err
	}

	identities := schema.NormalizeIdentities(doc.Persons)
	date := exportDate(opts.input)

	usersPath := filepath.Join(opts.outDir, "users"+date+".csv")
	if err := report.WriteUserExport(usersPath, doc.Persons, identities); err != nil {
		return err
	}
	logger.Info("wrote user export", "path", usersPath, "persons", len(doc.Persons))

	groupsPath := filepath.Join(opts.outDir, "groups"+date+".csv")
	if err := report.WriteGroupExport(groupsPath, doc.Groups); err != nil {
		return err
	}
	logger.Info("wrote group export", "path", groupsPath, "groups", len(doc.Groups))
	return nil
}

// runGenerate writes one provisioning batch.
func runGenerate(logger *slog.Logger, cfg *config.Config, opts *options) error {
	doc, raw, err := parseInput(opts.input)
	if err != nil {
		return err
	}

	schoolYear := cfg.SchoolYear
	if schoolYear == "" {
		schoolYear, err = parser.ParseSchoolYear(raw)
		if err != nil {
			return err
		}
	}
	logger.Info("parsed export",
		"persons", len(doc.Persons),
		"groups", len(doc.Groups),
		"memberships", len(doc.Memberships),
		"schoolYear", schoolYear)

	mapping := engine.GroupMapping{}
	if opts.mappingPath != "" {
		data, err := os.ReadFile(opts.mappingPath)
		if err != nil {
			return fmt.Errorf("group mapping: %w", err)
		}
		if mapping, err = parser.LoadGroupMapping(data); err != nil {
			return err
		}
	}

	kuerzel := map[string]string{}
	if opts.kuerzelPath != "" {
		data, err := os.ReadFile(opts.kuerzelPath)
		if err != nil {
			return fmt.Errorf("kuerzel table: %w", err)
		}
		if kuerzel, err = parser.LoadEmailKuerzel(data); err != nil {
			return err
		}
	}

	assembler := &engine.Assembler{
		Config: cfg,
		Canon: &schema.Canonicalizer{
			Strategy:   cfg.Strategy,
			SchoolYear: schoolYear,
			Mapping:    mapping,
		},
		Roster:       engine.BuildRoster(doc.Persons, doc.Groups, doc.Memberships),
		Mapping:      mapping,
		EmailKuerzel: kuerzel,
	}

	date := exportDate(opts.input)
	if opts.kind == "staff" {
		records, err := assembler.StaffRecords()
		if err != nil {
			return err
		}
		path := filepath.Join(opts.outDir, "jamf-teachers"+date+".csv")
		if err := report.WriteStaffBatch(path, records); err != nil {
			return err
		}
		logger.Info("wrote staff batch", "path", path, "records", len(records))
		return nil
	}

	serials, err := classSerials(logger, opts)
	if err != nil {
		return err
	}

	records, err := assembler.StudentRecords(opts.class, serials)
	if err != nil {
		return err
	}
	path := filepath.Join(opts.outDir, "jamf-students"+date+".csv")
	if err := report.WriteStudentBatch(path, records, len(serials) > 0); err != nil {
		return err
	}
	logger.Info("wrote student batch", "path", path, "records", len(records), "class", opts.class)
	return nil
}

// classSerials resolves the per-class device roster, if one exists next
// to the output files, against the device registry. No roster file means
// the batch is generated without a serial column.
func classSerials(logger *slog.Logger, opts *options) ([]string, error) {
	if opts.class == "" {
		return nil, nil
	}

	rosterPath := filepath.Join(opts.outDir, opts.class+".csv")
	rosterData, err := os.ReadFile(rosterPath)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("class roster: %w", err)
	}

	names, err := parser.LoadClassRoster(rosterData)
	if err != nil {
		return nil, err
	}

	if opts.serialsPath == "" {
		return nil, fmt.Errorf("class roster %s exists but --serials was not given", rosterPath)
	}
	registryData, err := os.ReadFile(opts.serialsPath)
	if err != nil {
		return nil, fmt.Errorf("device registry: %w", err)
	}
	registry, err := parser.LoadDeviceSerials(registryData)
	if err != nil {
		return nil, err
	}

	serials, err := engine.SerialsForRoster(names, registry)
	if err != nil {
		return nil, err
	}
	logger.Info("resolved class roster", "class", opts.class, "devices", len(serials))
	return serials, nil
}

// parseInput reads and parses the SchILD export, returning the raw bytes
// as well (the school-year scan works on the raw document).
func parseInput(path string) (*parser.Document, []byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("input: %w", err)
	}
	doc, err := parser.ParseDocument(data)
	if err != nil {
		return nil, nil, err
	}
	return doc, data, nil
}

// exportDate extracts the date token from the input filename: every
// digit of the base name, in order ("SchILD20241007.xml" -> "20241007").
func exportDate(path string) string {
	var b strings.Builder
	for _, r := range filepath.Base(path) {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
