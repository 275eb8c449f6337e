package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/matryer/way"
	log "github.com/sirupsen/logrus"

	"github.com/zucenko/pathviz/config"
	"github.com/zucenko/pathviz/model"
	"github.com/zucenko/pathviz/server"
	"github.com/zucenko/pathviz/session"
)

type Server struct {
	router *way.Router
	Hub    *server.Hub
}

func main() {
	path := os.Getenv("PATHVIZ_CONFIG")
	if path == "" {
		path = "pathviz.yaml"
	}
	cfg, err := config.Load(path)
	if err != nil {
		log.Fatalln(err)
	}
	cfg.SetupLogging()

	opts := session.Options{
		Scale:     cfg.Grid.Scale,
		TieBreak:  cfg.Search.TieBreak,
		StepDelay: cfg.Search.StepDelay,
	}
	var sess *session.Session
	if cfg.Server.Layout != "" {
		var grid *model.Grid
		grid, err = server.LoadLayout(cfg.Server.Layout)
		if err == nil {
			sess = session.NewSessionWithGrid(grid, opts)
		}
	} else {
		sess, err = session.NewSession(opts)
	}
	if err != nil {
		log.Fatalln(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	s := Server{Hub: server.NewHub(sess, cfg.Server.PushInterval)}
	go s.Hub.Loop(ctx)
	s.routes()

	httpServer := &http.Server{Addr: cfg.Server.Addr, Handler: s.router}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			log.Warnf("shutdown %v", err)
		}
	}()

	log.Infof("listening on %s", cfg.Server.Addr)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalln(err)
	}
}
