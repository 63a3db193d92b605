package main

import (
	"fmt"
	"log"
	"os"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/icba/core"
	"github.com/trezcool/icba/core/user"
	logsvc "github.com/trezcool/icba/services/logger"
	"github.com/trezcool/icba/storage/database"
	"github.com/trezcool/icba/storage/database/sqlxrepos"
)

func main() {
	conf := core.NewConfig()
	logger := logsvc.NewRollbarLogger(log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile), conf)
	logger.Enable(false)

	// set up DB
	db, err := database.Open(conf)
	if err != nil {
		logger.Fatal(fmt.Sprintf("opening database: %v", err), err)
	}

	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)
	user.LoadCommonPasswords(conf.PasswordListPath, logger)

	// start CLI; no emails are sent from the CLI
	cli := commandLine{
		usrSvc: user.NewService(db, sqlxrepos.NewUserRepository(db), nil, nil, validate, conf),
		db:     db.DB,
		engine: conf.Database.Engine,
		out:    os.Stdout,
	}
	err = cli.run(os.Args)
	_ = db.Close()
	if err != nil {
		if err != errHelp {
			logger.Error(fmt.Sprintf("error: %s", err), err)
		}
		os.Exit(1)
	}
}
