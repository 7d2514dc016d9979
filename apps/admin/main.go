package main

import (
	"log"
	"os"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/facultypref/core"
	"github.com/trezcool/facultypref/core/catalog"
	"github.com/trezcool/facultypref/core/selection"
	digestsvc "github.com/trezcool/facultypref/services/digest"
	emailsvc "github.com/trezcool/facultypref/services/email"
	logsvc "github.com/trezcool/facultypref/services/logger"
	"github.com/trezcool/facultypref/storage"
	"github.com/trezcool/facultypref/storage/database"
)

var logger *log.Logger

func main() {
	logger = log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)

	conf := core.NewConfig()
	appLogger := logsvc.NewRollbarLogger(logger, conf)
	appLogger.Enable(!conf.Debug)

	// set up stores
	stores, err := storage.Open(conf)
	errAndDie(err)

	// schema changes are left to the migrate command
	if stores.DB != nil && (len(os.Args) < 2 || os.Args[1] != "migrate") {
		errAndDie(database.Migrate(stores.DB))
	}

	// set up services
	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)
	selection.InitValidators(validate, translator)
	catalog.InitValidators(validate, translator)

	var mailSvc core.EmailService
	if conf.Debug || conf.Email.SendgridAPIKey == "" {
		mailSvc = emailsvc.NewConsoleService(conf, appLogger)
	} else {
		mailSvc = emailsvc.NewSendgridService(conf, appLogger)
	}
	selSvc := selection.NewService(stores.Selection, validate, appLogger)

	// start CLI
	cli := commandLine{
		conf:   conf,
		db:     stores.DB,
		selSvc: selSvc,
		catSvc: catalog.NewService(stores.Catalog, validate),
		digest: digestsvc.NewService(conf, selSvc, mailSvc, appLogger),
		out:    os.Stdout,
	}
	err = cli.run(os.Args)
	if cErr := stores.Close(); cErr != nil {
		logger.Printf("closing store: %v", cErr)
	}
	if err != nil {
		if err != errHelp {
			logger.Printf("\nerror: %s\n", err)
		}
		os.Exit(1)
	}
}

func errAndDie(err error) {
	if err != nil {
		logger.Fatal(err)
	}
}
