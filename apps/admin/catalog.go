package main

import (
	"context"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/pkg/errors"
)

func (cli *commandLine) importSubjects(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return errors.Wrap(err, "opening subjects file")
	}
	defer func() { _ = f.Close() }()

	subjects, err := cli.catSvc.ImportSubjects(context.Background(), f)
	if err != nil {
		return err
	}
	color.New(color.FgGreen).Fprintf(cli.out, "%d subject(s) imported\n", len(subjects))
	return nil
}

func (cli *commandLine) importFaculty(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return errors.Wrap(err, "opening faculty file")
	}
	defer func() { _ = f.Close() }()

	faculty, warnings, err := cli.catSvc.ImportFaculty(context.Background(), f)
	if err != nil {
		return err
	}
	color.New(color.FgGreen).Fprintf(cli.out, "%d faculty member(s) imported\n", len(faculty))
	warn := color.New(color.FgYellow)
	for _, w := range warnings {
		warn.Fprintf(cli.out, "warning: row %d: %s\n", w.Row, w.Message)
	}
	return nil
}

func (cli *commandLine) resetAvailability() error {
	avail, err := cli.catSvc.ResetAvailability(context.Background())
	if err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "%d availability entries reset\n", len(avail))
	return nil
}
