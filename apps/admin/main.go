package main

import (
	"context"
	"os"

	"go.uber.org/zap"

	"github.com/trezcool/lonesystem/core"
	"github.com/trezcool/lonesystem/core/employee"
	"github.com/trezcool/lonesystem/core/report"
	"github.com/trezcool/lonesystem/core/tax"
	"github.com/trezcool/lonesystem/core/user"
	logsvc "github.com/trezcool/lonesystem/services/logger"
	"github.com/trezcool/lonesystem/storage/database"
	"github.com/trezcool/lonesystem/storage/database/sqlxrepos"
)

var logger *zap.SugaredLogger

func main() {
	conf := core.NewConfig()

	var err error
	logger, err = logsvc.NewZapLogger(conf)
	if err != nil {
		panic(err)
	}
	logger = logger.Named("ADMIN")
	defer func() { _ = logger.Sync() }()

	// set up DB
	errAndDie(database.CreateIfNotExist(conf))
	db, err := database.Open(conf)
	errAndDie(err)
	defer func() { _ = db.Close() }()
	errAndDie(database.Migrate(context.Background(), db, conf.Database.Engine))

	translator := core.NewTranslator()
	validate := core.NewValidator(translator)
	user.RegisterValidators(validate, translator)

	empRepo := sqlxrepos.NewEmployeeRepository(db)
	raiseRepo := sqlxrepos.NewRaiseRepository(db)
	semesterRepo := sqlxrepos.NewSemesterRepository(db)

	// start CLI
	cli := commandLine{
		conf:      conf,
		db:        db,
		validate:  validate,
		usrSvc:    user.NewService(sqlxrepos.NewUserRepository(db)),
		empSvc:    employee.NewService(db, empRepo, validate, translator),
		reportSvc: report.NewService(empRepo, raiseRepo, semesterRepo, tax.NewCalculator(conf.Tax)),
		out:       os.Stdout,
	}
	if err = cli.run(os.Args); err != nil {
		if err != errHelp {
			logger.Errorf("error: %+v", err)
		}
		_ = logger.Sync()
		_ = db.Close()
		os.Exit(1)
	}
}

func errAndDie(err error) {
	if err != nil {
		logger.Fatal(err)
	}
}
