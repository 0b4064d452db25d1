package main

import (
	"github.com/trezcool/goose"

	"github.com/trezcool/alama/storage/database"
)

var gooseRunFunc = goose.RunFS // mockable

func (cli *commandLine) migrate(command string, args []string) error {
	if cli.db == nil {
		return errNoDatabase
	}
	return gooseRunFunc(command, cli.db.DB, database.MigrationsFS, database.MigrationsDir, args...)
}
