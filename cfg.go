package main

import (
	"os"

	log "github.com/sirupsen/logrus"

	"github.com/zucenko/pathviz/config"
	"github.com/zucenko/pathviz/model"
	"github.com/zucenko/pathviz/session"
)

// Load reads the config named by PATHVIZ_CONFIG and builds the session the
// viewer edits. An optional first argument names a layout file to start
// from.
func Load(args []string) (*session.Session, config.Config, error) {
	path := os.Getenv("PATHVIZ_CONFIG")
	if path == "" {
		path = "pathviz.yaml"
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, cfg, err
	}
	opts := session.Options{
		Scale:     cfg.Grid.Scale,
		TieBreak:  cfg.Search.TieBreak,
		StepDelay: cfg.Search.StepDelay,
	}
	if len(args) == 0 {
		s, err := session.NewSession(opts)
		return s, cfg, err
	}

	file, err := os.Open(args[0])
	if err != nil {
		return nil, cfg, err
	}
	defer file.Close()
	grid, err := model.ParseLayout(file)
	if err != nil {
		return nil, cfg, err
	}
	if _, err := grid.CellSize(cfg.Viewer.Width, cfg.Viewer.Height); err != nil {
		log.Warnf("layout %s does not fit the window, press 1-6 to pick a scale", args[0])
	}
	return session.NewSessionWithGrid(grid, opts), cfg, nil
}
