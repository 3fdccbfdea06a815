package main

import (
	"log"
	"os"

	"github.com/RezzaFairusNugraha/SMKN4PADALARANG/core"
	"github.com/RezzaFairusNugraha/SMKN4PADALARANG/core/account"
	emailsvc "github.com/RezzaFairusNugraha/SMKN4PADALARANG/services/email"
	logsvc "github.com/RezzaFairusNugraha/SMKN4PADALARANG/services/logger"
	"github.com/RezzaFairusNugraha/SMKN4PADALARANG/storage/database"
	sqlxrepos "github.com/RezzaFairusNugraha/SMKN4PADALARANG/storage/database/sqlx"
)

func main() {
	conf := core.NewConfig()
	logger := logsvc.NewRollbarLogger(log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile), conf)
	logger.Enable(false)

	// set up DB
	if err := database.CreateIfNotExist(conf); err != nil {
		logger.Fatal(err.Error(), err)
	}
	db, err := database.Open(conf)
	if err != nil {
		logger.Fatal(err.Error(), err)
	}

	// start CLI
	accRepo := sqlxrepos.NewAccountRepository(db)
	rosterRepo := sqlxrepos.NewRosterRepository(db)
	cli := commandLine{
		db:       db.DB,
		accounts: accRepo,
		accSvc: account.NewService(
			sqlxrepos.NewTransactor(db), accRepo, rosterRepo, emailsvc.NewConsoleService(conf, logger), conf,
		),
	}
	err = cli.run(os.Args)
	_ = db.Close()
	if err != nil {
		if err != errHelp {
			logger.Error("\nerror: "+err.Error(), err)
		}
		os.Exit(1)
	}
}
