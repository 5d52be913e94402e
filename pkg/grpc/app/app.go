package app

import (
	"context"
	"crypto/tls"
	"expvar"
	"net"
	"net/http"
	"net/http/pprof"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	grpc_middleware "github.com/grpc-ecosystem/go-grpc-middleware"
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/health"
	healthgrpc "google.golang.org/grpc/health/grpc_health_v1"

	grpc_util "github.com/bri1545/SkillChain/pkg/grpc"
	"github.com/bri1545/SkillChain/pkg/grpc/metrics"
	metrics_util "github.com/bri1545/SkillChain/pkg/metrics"
	"github.com/bri1545/SkillChain/pkg/osutil"
)

// App is a long lived application that services network requests over HTTP
// and, optionally, gRPC.
//
// The lifecycle of the App is tied to the process. The app gets initialized
// before the servers run, and gets stopped after the servers have stopped
// serving.
type App interface {
	// Init initializes the application in a blocking fashion. When Init returns, it
	// is expected that the application is ready to start receiving requests.
	Init(config Config, metricsProvider *newrelic.Application) error

	// RegisterWithGRPC provides a mechanism for the application to register gRPC services
	// with the gRPC server.
	RegisterWithGRPC(server *grpc.Server)

	// RegisterWithHTTP provides a mechanism for the application to mount its HTTP
	// handlers on the API router.
	RegisterWithHTTP(r chi.Router)

	// ShutdownChan returns a channel that is closed when the application is shutdown.
	//
	// If the channel is closed, the servers will initiate a shutdown if they have
	// not already done so.
	ShutdownChan() <-chan struct{}

	// Stop stops the service, allowing for it to clean up any resources. When Stop()
	// returns, the process exits.
	//
	// Stop should be idempotent.
	Stop()
}

var (
	osSigCh = make(chan os.Signal, 1)
)

func init() {
	signal.Notify(osSigCh, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT, syscall.SIGHUP)
}

// Run loads the base configuration at configPath and runs the app until the
// process is signalled, a server stops, or the app shuts itself down.
func Run(app App, configPath string, options ...Option) error {
	logger := logrus.StandardLogger().WithField("type", "grpc/app")

	config, err := LoadConfig(configPath)
	if err != nil {
		return err
	}

	// todo: Better abstraction so we're not directly tied to NR
	var metricsProvider *newrelic.Application
	if len(config.NewRelicLicenseKey) > 0 {
		nr, err := newrelic.NewApplication(
			newrelic.ConfigFromEnvironment(),
			newrelic.ConfigAppName(config.AppName),
			newrelic.ConfigLicense(config.NewRelicLicenseKey),
			newrelic.ConfigDistributedTracerEnabled(true),
			newrelic.ConfigAppLogForwardingEnabled(true),
		)
		if err != nil {
			return errors.Wrap(err, "error connecting to new relic")
		}

		metricsProvider = nr
	}

	configureLogger(config, metricsProvider)

	// We don't want to expose pprof/expvar publically, so we reset the default
	// http ServeMux, which will have those installed due to the init() function
	// in those packages.
	http.DefaultServeMux = http.NewServeMux()

	if config.EnableExpvar || config.EnablePprof || config.EnablePrometheus {
		debugHTTPMux := newDebugMux(config)
		go func() {
			for {
				if err := http.ListenAndServe(config.DebugListenAddress, debugHTTPMux); err != nil {
					logger.WithError(err).Warn("Debug HTTP server failed. Retrying in 5s...")
				}
				time.Sleep(5 * time.Second)
			}
		}()
	}

	if config.EnableMemoryLimit {
		limit := osutil.SetMemoryLimit(config.MemoryLimitCapacity)
		logger.WithField("limit_bytes", limit).Debug("configured runtime memory limit")
	}

	memoryLeakShutdownCh := make(chan struct{})
	if config.EnableMemoryLeakCron {
		cronJob := cron.New(cron.WithLocation(time.Local))
		_, err = cronJob.AddFunc(config.MemoryLeakCronSchedule, func() {
			close(memoryLeakShutdownCh)
		})
		if err != nil {
			return errors.Wrap(err, "failed to initialize memory leak cron")
		}
		cronJob.Start()
		defer cronJob.Stop()
	}

	var cert *tls.Certificate
	if config.TLSCertificate != "" {
		cert, err = loadCertificate(config)
		if err != nil {
			return err
		}
	}

	insecureLis, err := net.Listen("tcp", config.InsecureListenAddress)
	if err != nil {
		return errors.Wrapf(err, "failed to listen on %s", config.InsecureListenAddress)
	}

	var secureLis net.Listener
	var transportCreds credentials.TransportCredentials
	if cert != nil {
		transportCreds = credentials.NewServerTLSFromCert(cert)
		secureLis, err = net.Listen("tcp", config.ListenAddress)
		if err != nil {
			return errors.Wrapf(err, "failed to listen on %s", config.ListenAddress)
		}
	}

	httpLis, err := net.Listen("tcp", config.HttpListenAddress)
	if err != nil {
		return errors.Wrapf(err, "failed to listen on %s", config.HttpListenAddress)
	}

	// Metrics interceptor should be near the top of the chain, so we can
	// capture as many calls as possible. Apps that only serve HTTP leave the
	// health service as the sole gRPC traffic, where Check is unary and Watch
	// is a stream. HTTP routes are traced by NewRelicHttpMiddleware instead.
	defaultUnaryServerInterceptors := []grpc.UnaryServerInterceptor{
		metrics.CustomNewRelicUnaryServerInterceptor(metricsProvider),
	}
	defaultStreamServerInterceptors := []grpc.StreamServerInterceptor{
		metrics.CustomNewRelicStreamServerInterceptor(metricsProvider),
	}
	if config.MaintenanceMode {
		defaultUnaryServerInterceptors = append(defaultUnaryServerInterceptors, grpc_util.MaintenanceModeUnaryServerInterceptor())
		defaultStreamServerInterceptors = append(defaultStreamServerInterceptors, grpc_util.MaintenanceModeStreamServerInterceptor())
	}

	opts := opts{
		unaryServerInterceptors:  defaultUnaryServerInterceptors,
		streamServerInterceptors: defaultStreamServerInterceptors,
	}
	for _, o := range options {
		o(&opts)
	}

	if err := app.Init(config.AppConfig, metricsProvider); err != nil {
		return errors.Wrap(err, "failed to initialize application")
	}

	grpcServerOpts := []grpc.ServerOption{
		grpc_middleware.WithUnaryServerChain(opts.unaryServerInterceptors...),
		grpc_middleware.WithStreamServerChain(opts.streamServerInterceptors...),
	}
	secureServ := grpc.NewServer(append(grpcServerOpts, grpc.Creds(transportCreds))...)
	insecureServ := grpc.NewServer(grpcServerOpts...)
	app.RegisterWithGRPC(secureServ)
	app.RegisterWithGRPC(insecureServ)

	healthgrpc.RegisterHealthServer(secureServ, health.NewServer())
	healthgrpc.RegisterHealthServer(insecureServ, health.NewServer())

	router := newHttpRouter(config, metricsProvider, opts.httpMiddleware...)
	app.RegisterWithHTTP(router)

	httpServ := &http.Server{
		Handler:      router,
		ReadTimeout:  config.HttpReadTimeout,
		WriteTimeout: config.HttpWriteTimeout,
	}
	if cert != nil {
		httpServ.TLSConfig = &tls.Config{Certificates: []tls.Certificate{*cert}}
	}

	secureServShutdownCh := make(chan struct{})
	insecureServShutdownCh := make(chan struct{})
	httpServShutdownCh := make(chan struct{})

	if secureLis != nil {
		go func() {
			if err := secureServ.Serve(secureLis); err != nil {
				logger.WithError(err).Error("grpc serve stopped")
			} else {
				logger.Info("grpc server stopped")
			}

			close(secureServShutdownCh)
		}()
	}

	go func() {
		if err := insecureServ.Serve(insecureLis); err != nil {
			logger.WithError(err).Error("grpc serve stopped")
		} else {
			logger.Info("grpc server stopped")
		}

		close(insecureServShutdownCh)
	}()

	go func() {
		var err error
		if cert != nil {
			err = httpServ.ServeTLS(httpLis, "", "")
		} else {
			err = httpServ.Serve(httpLis)
		}

		if err != nil && err != http.ErrServerClosed {
			logger.WithError(err).Error("http serve stopped")
		} else {
			logger.Info("http server stopped")
		}

		close(httpServShutdownCh)
	}()

	logger.WithFields(logrus.Fields{
		"http_address": httpLis.Addr().String(),
		"grpc_address": insecureLis.Addr().String(),
	}).Info("serving")

	// Wait for the following shutdown conditions:
	//    1. OS Signal telling us to shutdown
	//    2. A server has shutdown (for whatever reason)
	//    3. The application has shutdown (for whatever reason)
	select {
	case <-osSigCh:
		logger.Info("interrupt received, shutting down")
	case <-secureServShutdownCh:
		logger.Info("secure grpc server shutdown")
	case <-insecureServShutdownCh:
		logger.Info("insecure grpc server shutdown")
	case <-httpServShutdownCh:
		logger.Info("http server shutdown")
	case <-memoryLeakShutdownCh:
		logger.Info("shutdown to deal with memory leak")
	case <-app.ShutdownChan():
		logger.Info("app shutdown")
	}

	ctx, cancel := context.WithTimeout(context.Background(), config.ShutdownGracePeriod)
	defer cancel()

	shutdownCh := make(chan struct{})
	go func() {
		// The servers and the application have idempotent shutdown methods, so
		// it's fine to call them all, regardless of the shutdown condition.
		if err := httpServ.Shutdown(ctx); err != nil {
			logger.WithError(err).Warn("failure shutting down http server")
		}
		secureServ.GracefulStop()
		insecureServ.GracefulStop()
		app.Stop()

		close(shutdownCh)
	}()

	select {
	case <-shutdownCh:
		return nil
	case <-ctx.Done():
		return errors.Errorf("failed to stop the application within %v", config.ShutdownGracePeriod)
	}
}

func loadCertificate(config BaseConfig) (*tls.Certificate, error) {
	if config.TLSKey == "" {
		return nil, errors.New("tls key must be provided if certificate is specified")
	}

	certBytes, err := LoadFile(config.TLSCertificate)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load tls certificate")
	}

	keyBytes, err := LoadFile(config.TLSKey)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load tls key")
	}

	cert, err := tls.X509KeyPair(certBytes, keyBytes)
	if err != nil {
		return nil, errors.Wrap(err, "invalid certificate/private key")
	}
	return &cert, nil
}

func newDebugMux(config BaseConfig) *http.ServeMux {
	debugHTTPMux := http.NewServeMux()
	if config.EnableExpvar {
		debugHTTPMux.Handle("/debug/vars", expvar.Handler())
	}
	if config.EnablePprof {
		debugHTTPMux.HandleFunc("/debug/pprof/", pprof.Index)
		debugHTTPMux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
		debugHTTPMux.HandleFunc("/debug/pprof/profile", pprof.Profile)
		debugHTTPMux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
		debugHTTPMux.HandleFunc("/debug/pprof/trace", pprof.Trace)
	}
	if config.EnablePrometheus {
		debugHTTPMux.Handle("/metrics", promhttp.Handler())
	}
	return debugHTTPMux
}

func newHttpRouter(config BaseConfig, metricsProvider *newrelic.Application, extra ...func(http.Handler) http.Handler) *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(metrics.NewRelicHttpMiddleware(metricsProvider))
	if config.MaintenanceMode {
		r.Use(maintenanceModeHttpMiddleware)
	}
	for _, m := range extra {
		r.Use(m)
	}

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	return r
}

// Only reads are served in maintenance mode
func maintenanceModeHttpMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			next.ServeHTTP(w, r)
		default:
			w.Header().Set("content-type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"success":false,"error":"temporarily unavailable"}`))
		}
	})
}

func configureLogger(config BaseConfig, metricsProvider *newrelic.Application) {
	if metricsProvider != nil {
		logrus.SetFormatter(metrics_util.NewCustomNewRelicLogFormatter(metricsProvider, &logrus.JSONFormatter{}))
	} else {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	}

	level, err := logrus.ParseLevel(strings.ToLower(config.LogLevel))
	if err != nil {
		logrus.StandardLogger().WithField("log_level", config.LogLevel).Warn("unknown log level, ignoring")
	} else {
		logrus.SetLevel(level)
	}

	logrus.SetOutput(os.Stdout)
}
