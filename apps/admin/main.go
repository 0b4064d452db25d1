package main

import (
	"log"
	"os"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/alama/core"
	"github.com/trezcool/alama/core/user"
	"github.com/trezcool/alama/storage/database"
	inmemdb "github.com/trezcool/alama/storage/database/inmem"
	sqlxrepos "github.com/trezcool/alama/storage/database/sqlx"
)

var logger = log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)

func main() {
	os.Exit(run())
}

func run() int {
	conf := core.NewConfig()
	cli := commandLine{out: os.Stdout}

	// set up DB
	var usrRepo user.Repository
	if conf.Database.Engine == "postgres" {
		if err := database.CreateIfNotExist(conf); err != nil {
			logger.Printf("error: %s\n", err)
			return 1
		}
		db, err := database.Open(conf)
		if err != nil {
			logger.Printf("error: %s\n", err)
			return 1
		}
		defer func() { _ = db.Close() }()

		cli.db = db
		usrRepo = sqlxrepos.NewUserRepository(db)
	} else {
		// the memory engine lives and dies with this process
		usrRepo = inmemdb.NewUserRepository(inmemdb.Open())
	}
	cli.usrSvc = user.NewService(usrRepo, validator.New())

	// start CLI
	if err := cli.run(os.Args); err != nil {
		if err != errHelp {
			logger.Printf("\nerror: %s\n", err)
		}
		return 1
	}
	return 0
}
