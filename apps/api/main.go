package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	echoapi "github.com/trezcool/darasa/api/echo"
	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/course"
	"github.com/trezcool/darasa/core/enroll"
	"github.com/trezcool/darasa/core/user"
	emailsvc "github.com/trezcool/darasa/services/email"
	logsvc "github.com/trezcool/darasa/services/logger"
	mediasvc "github.com/trezcool/darasa/services/media"
	paymentsvc "github.com/trezcool/darasa/services/payment"
	"github.com/trezcool/darasa/storage/cache"
	"github.com/trezcool/darasa/storage/database"
)

func main() {
	std := log.New(os.Stdout, "API : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)
	logger := logsvc.NewRollbarLogger(std, core.Conf)
	logger.Enable(!core.Conf.Debug)

	// set up DB
	db, err := database.Open(core.Conf)
	if err != nil {
		logger.Fatal("opening database", err)
	}
	defer db.Close()
	if err = db.Ping(); err != nil {
		logger.Fatal("pinging database", err)
	}

	usrRepo := database.NewUserRepository(db)
	crsRepo := database.NewCourseRepository(db)
	enrRepo := database.NewEnrollmentRepository(db)

	// set up services
	var mailSvc core.EmailService
	if core.Conf.Debug {
		mailSvc = emailsvc.NewConsoleService()
	} else {
		mailSvc = emailsvc.NewSendgridService(logger)
	}

	var crsCache course.Cache = cache.NoopCourseCache{}
	if core.Conf.Redis.Addr != "" {
		crsCache = cache.NewCourseCache(cache.NewClient(core.Conf))
	}

	gateway := paymentsvc.NewHMACGateway(core.Conf.SecretKey)
	usrSvc := user.NewService(usrRepo)
	enrSvc := enroll.NewService(enrRepo, crsRepo, usrRepo, gateway, mailSvc)
	crsSvc := course.NewService(crsRepo, crsCache, enrSvc, logger)

	// start API server
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	app := echoapi.NewServer(&echoapi.Options{
		Address:   core.Conf.Server.Address(),
		UserSvc:   usrSvc,
		CourseSvc: crsSvc,
		EnrollSvc: enrSvc,
		FileStore: mediasvc.NewLocalFileStore(core.Conf),
		Logger:    logger,
		Shutdown:  func() { shutdown <- syscall.SIGTERM },
	})
	go app.Start()

	<-shutdown
	logger.Info("shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := app.Stop(ctx); err != nil {
		logger.Error("graceful shutdown failed", err)
	}
}
