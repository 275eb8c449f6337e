package main

import (
	"github.com/matryer/way"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const URI_WS = "/play"
const URI_STATE = "/state"
const URI_COMMAND = "/command"
const URI_METRICS = "/metrics"

func (s *Server) routes() {
	s.router = way.NewRouter()
	s.router.HandleFunc("GET", URI_WS, s.Hub.HandleWebsocket())
	s.router.HandleFunc("GET", URI_STATE, s.Hub.HandleState())
	s.router.HandleFunc("POST", URI_COMMAND, s.Hub.HandleCommand())
	s.router.Handle("GET", URI_METRICS, promhttp.Handler())
}
