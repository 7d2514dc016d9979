package main

import (
	"context"
	"strconv"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"

	"github.com/trezcool/facultypref/core/selection"
)

func (cli *commandLine) report(opts selection.ReportOptions) error {
	report, err := cli.selSvc.Report(context.Background(), opts)
	if err != nil {
		return err
	}
	if len(report) == 0 {
		color.New(color.FgRed).Fprintln(cli.out, selection.ErrNoData.Error())
		return nil
	}

	heading := color.New(color.FgYellow)
	for _, subject := range report.Subjects() {
		heading.Fprintf(cli.out, "\n%s\n", subject)
		cli.printCounts(report[subject])
	}
	return nil
}

func (cli *commandLine) workload(opts selection.ReportOptions) error {
	counts, err := cli.selSvc.Workload(context.Background(), opts)
	if err != nil {
		return err
	}
	if len(counts) == 0 {
		color.New(color.FgRed).Fprintln(cli.out, selection.ErrNoData.Error())
		return nil
	}

	color.New(color.FgYellow).Fprintln(cli.out, "\nFaculty Workload")
	cli.printCounts(counts)
	return nil
}

func (cli *commandLine) printCounts(counts []selection.FacultyCount) {
	table := tablewriter.NewWriter(cli.out)
	table.SetHeader([]string{"Faculty", "Students"})
	for _, fc := range counts {
		table.Append([]string{fc.Faculty, strconv.Itoa(fc.Count)})
	}
	table.Render()
}
