package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/jmoiron/sqlx"
	"golang.org/x/term"

	"github.com/trezcool/facultypref/core"
	"github.com/trezcool/facultypref/core/catalog"
	"github.com/trezcool/facultypref/core/selection"
	digestsvc "github.com/trezcool/facultypref/services/digest"
)

var (
	readPasswordFunc = term.ReadPassword // mockable

	errHelp = errors.New("help provided")
)

type commandLine struct {
	conf   *core.Config
	db     *sqlx.DB // nil unless the store is a database
	selSvc *selection.Service
	catSvc *catalog.Service
	digest *digestsvc.Service
	out    io.Writer
}

func (cli *commandLine) printUsage() {
	fmt.Fprintln(cli.out, "Usage:")
	fmt.Fprintln(cli.out, "  migrate COMMAND [ARGS]                 - run a goose migration command (up, down, status...)")
	fmt.Fprintln(cli.out, "  report [-top N] [-year Y] [-latest]    - print the faculty counts per subject")
	fmt.Fprintln(cli.out, "  workload [-year Y] [-latest]           - print the selections per faculty member")
	fmt.Fprintln(cli.out, "  import-subjects -file FILE             - replace the subjects with a CSV file")
	fmt.Fprintln(cli.out, "  import-faculty -file FILE              - replace the faculty list with a CSV file")
	fmt.Fprintln(cli.out, "  reset-availability                     - mark every faculty member available for every subject")
	fmt.Fprintln(cli.out, "  clear -yes                             - delete every recorded selection")
	fmt.Fprintln(cli.out, "  digest [-to EMAIL,...]                 - email the selections summary now")
	fmt.Fprintln(cli.out, "  hashpassword                           - hash the admin password; the password will be prompted")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	reportCmd := flag.NewFlagSet("report", flag.ContinueOnError)
	reportTop := reportCmd.Int("top", cli.conf.Report.TopN, "Only keep the N most chosen faculty members per subject; 0 keeps all.")
	reportYear := reportCmd.Int("year", 0, "Only count the selections of this year of study.")
	reportLatest := reportCmd.Bool("latest", false, "Only count the latest choice of each student per subject.")

	workloadCmd := flag.NewFlagSet("workload", flag.ContinueOnError)
	workloadYear := workloadCmd.Int("year", 0, "Only count the selections of this year of study.")
	workloadLatest := workloadCmd.Bool("latest", false, "Only count the latest choice of each student per subject.")

	importSubjectsCmd := flag.NewFlagSet("import-subjects", flag.ContinueOnError)
	importSubjectsFile := importSubjectsCmd.String("file", "", "CSV file with the Year, Subject_Code & Subject_Name columns.")

	importFacultyCmd := flag.NewFlagSet("import-faculty", flag.ContinueOnError)
	importFacultyFile := importFacultyCmd.String("file", "", "CSV file with a faculty name column.")

	clearCmd := flag.NewFlagSet("clear", flag.ContinueOnError)
	clearYes := clearCmd.Bool("yes", false, "Confirm the deletion of every recorded selection.")

	digestCmd := flag.NewFlagSet("digest", flag.ContinueOnError)
	digestTo := digestCmd.String("to", "", "Comma separated recipients; defaults to the configured ones.")

	for _, fs := range []*flag.FlagSet{reportCmd, workloadCmd, importSubjectsCmd, importFacultyCmd, clearCmd, digestCmd} {
		fs.SetOutput(cli.out)
	}

	switch args[1] {
	case "migrate":
		if len(args) < 3 {
			fmt.Fprintln(cli.out, "Usage: migrate COMMAND [ARGS]")
			return errHelp
		}
		return cli.migrate(args[2:])

	case "report":
		if err := parse(reportCmd, args[2:]); err != nil {
			return err
		}
		return cli.report(selection.ReportOptions{TopN: *reportTop, Year: *reportYear, Latest: *reportLatest})

	case "workload":
		if err := parse(workloadCmd, args[2:]); err != nil {
			return err
		}
		return cli.workload(selection.ReportOptions{Year: *workloadYear, Latest: *workloadLatest})

	case "import-subjects":
		if err := parse(importSubjectsCmd, args[2:]); err != nil {
			return err
		}
		if *importSubjectsFile == "" {
			importSubjectsCmd.Usage()
			return errHelp
		}
		return cli.importSubjects(*importSubjectsFile)

	case "import-faculty":
		if err := parse(importFacultyCmd, args[2:]); err != nil {
			return err
		}
		if *importFacultyFile == "" {
			importFacultyCmd.Usage()
			return errHelp
		}
		return cli.importFaculty(*importFacultyFile)

	case "reset-availability":
		return cli.resetAvailability()

	case "clear":
		if err := parse(clearCmd, args[2:]); err != nil {
			return err
		}
		if !*clearYes {
			clearCmd.Usage()
			return errHelp
		}
		return cli.clear()

	case "digest":
		if err := parse(digestCmd, args[2:]); err != nil {
			return err
		}
		to := cli.conf.Report.DigestRecipients
		if *digestTo != "" {
			to = core.SplitList(*digestTo)
		}
		if len(to) == 0 {
			digestCmd.Usage()
			return errHelp
		}
		return cli.sendDigest(to)

	case "hashpassword":
		fmt.Fprint(cli.out, "Enter password:")
		pwd, err := readPasswordFunc(int(os.Stdin.Fd()))
		fmt.Fprintln(cli.out)
		if err != nil {
			return err
		}
		if len(pwd) == 0 {
			fmt.Fprintln(cli.out, "Usage: hashpassword")
			return errHelp
		}
		return cli.hashPassword(pwd)

	default:
		cli.printUsage()
		return errHelp
	}
}

// parse parses the subcommand flags; -h is reported as errHelp.
func parse(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return errHelp
		}
		return err
	}
	return nil
}
