package digcontainer

import (
	"context"
	"fmt"
	"log"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"go.uber.org/dig"

	echoapi "github.com/trezcool/lonesystem/apps/api/echo"
	"github.com/trezcool/lonesystem/core"
	"github.com/trezcool/lonesystem/core/employee"
	"github.com/trezcool/lonesystem/core/payslip"
	"github.com/trezcool/lonesystem/core/raise"
	"github.com/trezcool/lonesystem/core/report"
	"github.com/trezcool/lonesystem/core/semester"
	"github.com/trezcool/lonesystem/core/tax"
	"github.com/trezcool/lonesystem/core/user"
	emailsvc "github.com/trezcool/lonesystem/services/email"
	logsvc "github.com/trezcool/lonesystem/services/logger"
	"github.com/trezcool/lonesystem/storage/database"
	"github.com/trezcool/lonesystem/storage/database/sqlxrepos"
)

type DBLoggerParam struct {
	dig.In
	Logger core.Logger `name:"dbLogger"`
}

type loggers struct {
	dig.Out
	API    core.Logger
	DB     core.Logger `name:"dbLogger"`
	Syncer *logsvc.RollbarLogger
}

func newLoggers(conf *core.Config) (loggers, error) {
	local, err := logsvc.NewZapLogger(conf)
	if err != nil {
		return loggers{}, errors.Wrap(err, "building zap logger")
	}
	apiLogger := logsvc.NewRollbarLogger(local.Named("API"), conf)
	apiLogger.Enable(!conf.Debug && conf.RollbarToken != "")
	return loggers{
		API:    apiLogger,
		DB:     logsvc.NewRollbarLogger(local.Named("DB"), conf),
		Syncer: apiLogger,
	}, nil
}

type dbOut struct {
	dig.Out
	SqlxDB   *sqlx.DB
	DB       core.DB
	Executor core.DBExecutor
}

func newDB(conf *core.Config, loggerParam DBLoggerParam) dbOut {
	setUp := func() (*sqlx.DB, error) {
		if err := database.CreateIfNotExist(conf); err != nil {
			return nil, err
		}

		db, err := database.Open(conf)
		if err != nil {
			return nil, err
		}

		if err = database.Migrate(context.Background(), db, conf.Database.Engine); err != nil {
			_ = db.Close()
			return nil, err
		}
		return db, nil
	}

	db, err := setUp()
	if err != nil {
		loggerParam.Logger.Fatal(fmt.Sprintf("setting up database: %v", err), err)
	}
	return dbOut{SqlxDB: db, DB: db, Executor: db}
}

func newValidator(translator ut.Translator) *validator.Validate {
	validate := core.NewValidator(translator)
	user.RegisterValidators(validate, translator)
	return validate
}

func newTaxCalculator(conf *core.Config) tax.Calculator {
	return tax.NewCalculator(conf.Tax)
}

func newSemesterService(conf *core.Config, db core.DB, repo semester.Repository, empRepo employee.Repository) *semester.Service {
	return semester.NewService(db, repo, empRepo, conf.Semester)
}

// New returns a new dependency injection dig.Container
func New(newConfig func() *core.Config) *dig.Container {
	c := dig.New()

	must(c.Provide(newConfig))
	must(c.Provide(newLoggers))
	must(c.Provide(newDB))
	must(c.Provide(emailsvc.NewService))

	// storage
	must(c.Provide(sqlxrepos.NewEmployeeRepository, dig.As(new(employee.Repository))))
	must(c.Provide(sqlxrepos.NewRaiseRepository, dig.As(new(raise.Repository))))
	must(c.Provide(sqlxrepos.NewSemesterRepository, dig.As(new(semester.Repository))))
	must(c.Provide(sqlxrepos.NewUserRepository, dig.As(new(user.Repository))))

	// validation
	must(c.Provide(core.NewTranslator))
	must(c.Provide(newValidator))

	// services
	must(c.Provide(newTaxCalculator))
	must(c.Provide(employee.NewService))
	must(c.Provide(raise.NewService))
	must(c.Provide(newSemesterService))
	must(c.Provide(report.NewService))
	must(c.Provide(payslip.NewService))
	must(c.Provide(user.NewService))

	must(c.Provide(echoapi.NewServer))

	return c
}

// must exits program if err happened
func must(err error) {
	if err != nil {
		log.Fatal(errors.Wrap(err, "failed to provide dependency").Error())
	}
}
