package main

import (
	"errors"
	"path/filepath"

	"github.com/pressly/goose/v3"

	"github.com/trezcool/facultypref/storage/database"
)

var (
	gooseRunFunc = goose.Run // mockable

	errNoDatabase = errors.New("migrations only apply to the postgres & sqlite stores")
)

func (cli *commandLine) migrate(args []string) error {
	if cli.db == nil {
		return errNoDatabase
	}
	if err := database.PrepareMigrations(database.Dialect(cli.db)); err != nil {
		return err
	}

	dir := "migrations"
	if args[0] == "create" || args[0] == "fix" {
		// new migration files are written next to the embedded ones
		goose.SetBaseFS(nil)
		dir = filepath.Join(cli.conf.WorkDir, "fs", "migrations")
	}

	arguments := make([]string, 0)
	if len(args) > 1 {
		arguments = append(arguments, args[1:]...)
	}
	return gooseRunFunc(args[0], cli.db.DB, dir, arguments...)
}
