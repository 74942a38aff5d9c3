package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	echoapi "github.com/trezcool/darasa/apps/api/echo"
	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/assignment"
	"github.com/trezcool/darasa/core/classroom"
	"github.com/trezcool/darasa/core/user"
	emailsvc "github.com/trezcool/darasa/services/email"
	logsvc "github.com/trezcool/darasa/services/logger"
	mongodb "github.com/trezcool/darasa/storage/database/mongo"
	"github.com/trezcool/darasa/storage/uploads"
)

func main() {
	std := log.New(os.Stdout, "API : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)

	conf, err := core.NewConfig("config")
	if err != nil {
		std.Fatalf("loading config: %v", err)
	}

	// set up logger
	var logger core.Logger
	if conf.RollbarToken != "" {
		logger = logsvc.NewRollbarLogger(std, conf)
	} else {
		logger = logsvc.NewStdLogger(std)
	}
	logger.Enable(!conf.Debug)

	// set up DB
	db, closeDB, err := mongodb.Open(conf)
	if err != nil {
		logger.Fatal("opening database", err)
	}
	defer closeDB()

	// set up file store
	var fileStore core.FileStore
	if conf.Uploads.Backend == "b2" {
		fileStore, err = uploads.NewB2Store(context.Background(), conf)
	} else {
		fileStore, err = uploads.NewLocalStore(conf.Uploads.Dir)
	}
	if err != nil {
		logger.Fatal("setting up file store", err)
	}

	// set up services
	var mailSvc core.EmailService
	if conf.Debug {
		mailSvc = emailsvc.NewConsoleService(conf)
	} else {
		mailSvc = emailsvc.NewSendgridService(conf, logger)
	}

	usrRepo := mongodb.NewUserRepository(db)
	clsRepo := mongodb.NewClassroomRepository(db)
	asgRepo := mongodb.NewAssignmentRepository(db)

	usrSvc := user.NewService(conf, usrRepo, mailSvc)
	clsSvc := classroom.NewService(clsRepo)
	asgSvc := assignment.NewService(asgRepo, clsRepo, fileStore)

	validate, translator := core.NewValidator()

	// start API server
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	app := echoapi.NewServer(&echoapi.Options{
		Address:       conf.Server.Address(),
		Conf:          conf,
		Logger:        logger,
		Validate:      validate,
		Translator:    translator,
		UserSvc:       usrSvc,
		ClassroomSvc:  clsSvc,
		AssignmentSvc: asgSvc,
		Shutdown:      func() { shutdown <- syscall.SIGTERM },
	})

	go app.Start()

	<-shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err = app.Stop(ctx); err != nil {
		logger.Error("stopping server", err)
	}
}
