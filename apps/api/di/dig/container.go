package dig_container

import (
	"fmt"
	"log"
	"os"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"go.uber.org/dig"

	echoapi "github.com/trezcool/facultypref/apps/api/echo"
	"github.com/trezcool/facultypref/core"
	"github.com/trezcool/facultypref/core/catalog"
	"github.com/trezcool/facultypref/core/selection"
	chartsvc "github.com/trezcool/facultypref/services/chart"
	digestsvc "github.com/trezcool/facultypref/services/digest"
	emailsvc "github.com/trezcool/facultypref/services/email"
	logsvc "github.com/trezcool/facultypref/services/logger"
	"github.com/trezcool/facultypref/storage"
	"github.com/trezcool/facultypref/storage/database"
)

type DBLoggerParam struct {
	dig.In
	Logger core.Logger `name:"dbLogger"`
}

// StoreCloser releases the resources of the store, if any.
type StoreCloser func() error

func newLogger(conf *core.Config) core.Logger {
	stdLogger := log.New(os.Stdout, "API : ", log.LstdFlags)
	logger := logsvc.NewRollbarLogger(stdLogger, conf)
	logger.Enable(!conf.Debug)
	return logger
}

func newDBLogger(conf *core.Config) core.Logger {
	stdLogger := log.New(os.Stdout, "DB : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)
	logger := logsvc.NewRollbarLogger(stdLogger, conf)
	logger.Enable(!conf.Debug)
	return logger
}

func newStores(conf *core.Config, loggerParam DBLoggerParam) (selection.Store, catalog.Repository, StoreCloser) {
	setUp := func() (storage.Stores, error) {
		stores, err := storage.Open(conf)
		if err != nil {
			return stores, err
		}
		if stores.DB != nil {
			if err = database.Migrate(stores.DB); err != nil {
				_ = stores.Close()
				return stores, err
			}
		}
		return stores, nil
	}

	stores, err := setUp()
	if err != nil {
		loggerParam.Logger.Fatal(fmt.Sprintf("setting up %s store: %v", conf.Store.Engine, err), err)
	}
	return stores.Selection, stores.Catalog, stores.Close
}

func newEmailService(conf *core.Config, logger core.Logger) core.EmailService {
	if conf.Debug || conf.Email.SendgridAPIKey == "" {
		return emailsvc.NewConsoleService(conf, logger)
	}
	return emailsvc.NewSendgridService(conf, logger)
}

func newServer(
	conf *core.Config,
	logger core.Logger,
	selSvc *selection.Service,
	catSvc *catalog.Service,
	charts echoapi.Charts,
	validate *validator.Validate,
	translator ut.Translator,
) *echoapi.Server {
	return echoapi.NewServer(echoapi.ServerDeps{
		Conf:         conf,
		Logger:       logger,
		SelectionSvc: selSvc,
		CatalogSvc:   catSvc,
		Charts:       charts,
		Validate:     validate,
		Translator:   translator,
	})
}

// New returns a new dependency injection dig.Container
func New() *dig.Container {
	c := dig.New()

	must(c.Provide(core.NewConfig))
	must(c.Provide(newLogger))
	must(c.Provide(newDBLogger, dig.Name("dbLogger")))
	must(c.Provide(newStores))
	must(c.Provide(newEmailService))
	must(c.Provide(validator.New))
	must(c.Provide(core.NewTranslator))
	must(c.Provide(selection.NewService))
	must(c.Provide(catalog.NewService))
	must(c.Provide(chartsvc.NewSVGRenderer, dig.As(new(echoapi.Charts))))
	must(c.Provide(digestsvc.NewService))
	must(c.Provide(newServer))

	return c
}

// must exits program if err happened
func must(err error) {
	if err != nil {
		log.Fatal(errors.Wrap(err, "failed to provide dependency").Error())
	}
}
