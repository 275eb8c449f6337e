package server

import (
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"

	"github.com/zucenko/pathviz/model"
)

// LoadLayout reads the board the shared session starts from.
func LoadLayout(path string) (*model.Grid, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	g, err := model.ParseLayout(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	log.Infof("loaded %dx%d layout from %s, %d obstacles", g.Width, g.Height, path, len(g.Obstacles))
	return g, nil
}
