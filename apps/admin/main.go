package main

import (
	"log"
	"os"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/user"
	mongodb "github.com/trezcool/darasa/storage/database/mongo"
)

var logger *log.Logger

func main() {
	defer os.Exit(0)

	logger = log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)

	conf, err := core.NewConfig("config")
	errAndDie(err)

	// set up DB
	db, closeDB, err := mongodb.Open(conf)
	errAndDie(err)
	defer closeDB()

	// start CLI
	cli := commandLine{
		conf:   conf,
		usrSvc: user.NewService(conf, mongodb.NewUserRepository(db), nil /* no mail */),
	}
	if err := cli.run(os.Args); err != nil {
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
