// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/luxfi/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/cors"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"
)

const (
	baseURL              = "/ext"
	maxConcurrentStreams = 64
)

var (
	_ Server = (*server)(nil)

	errAlreadyReserved = errors.New("route is either already aliased or already maps to a handle")
)

// PathAdder registers handlers under the base URL.
type PathAdder interface {
	// AddRoute registers handler at /ext/<base><endpoint>.
	AddRoute(handler http.Handler, base, endpoint string) error
}

// Server maintains the HTTP router
type Server interface {
	PathAdder
	http.Handler
	// Dispatch starts the API server
	Dispatch() error
	// Shutdown this server
	Shutdown() error
}

type HTTPConfig struct {
	ReadTimeout       time.Duration `json:"readTimeout"`
	ReadHeaderTimeout time.Duration `json:"readHeaderTimeout"`
	WriteTimeout      time.Duration `json:"writeHeaderTimeout"`
	IdleTimeout       time.Duration `json:"idleTimeout"`
}

type server struct {
	// log this server writes to
	log log.Logger

	shutdownTimeout time.Duration

	metrics *serverMetrics

	// Maps endpoints to handlers
	lock    sync.RWMutex
	router  *mux.Router
	routes  map[string]struct{}
	handler http.Handler

	srv *http.Server

	// Listener used to serve traffic
	listener net.Listener
}

// New returns an instance of a Server.
func New(
	log log.Logger,
	listener net.Listener,
	allowedOrigins []string,
	shutdownTimeout time.Duration,
	registerer prometheus.Registerer,
	httpConfig HTTPConfig,
) (Server, error) {
	m, err := newMetrics(registerer)
	if err != nil {
		return nil, err
	}

	s := &server{
		log:             log,
		shutdownTimeout: shutdownTimeout,
		metrics:         m,
		router:          mux.NewRouter(),
		routes:          make(map[string]struct{}),
		listener:        listener,
	}
	s.handler = wrapHandler(http.HandlerFunc(s.route), allowedOrigins)
	s.srv = &http.Server{
		Handler: h2c.NewHandler(
			s.handler,
			&http2.Server{
				MaxConcurrentStreams: maxConcurrentStreams,
			}),
		ReadTimeout:       httpConfig.ReadTimeout,
		ReadHeaderTimeout: httpConfig.ReadHeaderTimeout,
		WriteTimeout:      httpConfig.WriteTimeout,
		IdleTimeout:       httpConfig.IdleTimeout,
	}

	log.Info("API created with allowed origins: " + strings.Join(allowedOrigins, ","))
	return s, nil
}

func (s *server) Dispatch() error {
	s.log.Info("HTTP API server listening", log.Stringer("address", s.listener.Addr()))
	return s.srv.Serve(s.listener)
}

func (s *server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

func (s *server) route(w http.ResponseWriter, r *http.Request) {
	s.lock.RLock()
	defer s.lock.RUnlock()

	s.router.ServeHTTP(w, r)
}

func (s *server) AddRoute(handler http.Handler, base, endpoint string) error {
	url := fmt.Sprintf("%s/%s", baseURL, base)
	path := url + endpoint

	s.lock.Lock()
	defer s.lock.Unlock()

	if _, exists := s.routes[path]; exists {
		return fmt.Errorf("%w: %s", errAlreadyReserved, path)
	}
	s.routes[path] = struct{}{}

	s.log.Info("adding route",
		log.String("url", url),
		log.String("endpoint", endpoint),
	)
	s.router.Handle(path, s.metrics.wrapHandler(base, handler))
	return nil
}

func (s *server) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
	err := s.srv.Shutdown(ctx)
	cancel()

	// If shutdown times out, make sure the server is still shutdown.
	_ = s.srv.Close()
	return err
}

func wrapHandler(handler http.Handler, allowedOrigins []string) http.Handler {
	return cors.New(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowCredentials: true,
	}).Handler(handler)
}
