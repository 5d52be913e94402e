package main

import (
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/mitchellh/mapstructure"
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	xrate "golang.org/x/time/rate"
	"google.golang.org/grpc"

	code_data "github.com/bri1545/SkillChain/pkg/code/data"
	"github.com/bri1545/SkillChain/pkg/code/runtime"
	web "github.com/bri1545/SkillChain/pkg/code/server/web/skillchain"
	"github.com/bri1545/SkillChain/pkg/code/skillchain"
	"github.com/bri1545/SkillChain/pkg/grpc/app"
	"github.com/bri1545/SkillChain/pkg/rate"
)

// nodeConfig is decoded from the app section of the node configuration
type nodeConfig struct {
	Ledger code_data.Config `mapstructure:"ledger"`

	// Per-signer submit rate, in instructions per second. Zero disables
	// rate limiting.
	SubmitRateLimit float64 `mapstructure:"submit_rate_limit"`
	SubmitRateBurst int     `mapstructure:"submit_rate_burst"`
}

var defaultNodeConfig = nodeConfig{
	Ledger: code_data.Config{
		Backend: code_data.LedgerBackendMemory,
	},
	SubmitRateLimit: 5,
	SubmitRateBurst: 10,
}

func decodeNodeConfig(config app.Config) (*nodeConfig, error) {
	decoded := defaultNodeConfig
	if err := mapstructure.Decode(config, &decoded); err != nil {
		return nil, errors.Wrap(err, "invalid app config")
	}
	return &decoded, nil
}

type node struct {
	log *logrus.Entry

	data   code_data.Provider
	server *web.Server

	shutdownCh   chan struct{}
	shutdownOnce sync.Once
}

func newNode() *node {
	return &node{
		log:        logrus.StandardLogger().WithField("type", "cmd/node"),
		shutdownCh: make(chan struct{}),
	}
}

// Init implements app.App.Init
func (n *node) Init(config app.Config, _ *newrelic.Application) error {
	nodeConfig, err := decodeNodeConfig(config)
	if err != nil {
		return err
	}

	data, err := code_data.NewDataProvider(&nodeConfig.Ledger)
	if err != nil {
		return errors.Wrap(err, "failed to initialize data provider")
	}
	n.data = data

	rt := runtime.New(data, runtime.WithEnvConfigs())
	rt.RegisterProgram(skillchain.NewProgram())

	var limiter rate.Limiter = &rate.NoLimiter{}
	if nodeConfig.SubmitRateLimit > 0 {
		limiter = rate.NewLocalRateLimiter(xrate.Limit(nodeConfig.SubmitRateLimit), nodeConfig.SubmitRateBurst)
	}

	n.server = web.NewSkillChainServer(rt, skillchain.NewReader(rt, skillchain.WithEnvConfigs()), limiter)

	n.log.WithField("ledger_backend", nodeConfig.Ledger.Backend).Info("node initialized")
	return nil
}

// RegisterWithGRPC implements app.App.RegisterWithGRPC. The node only serves
// the standard health service over gRPC.
func (n *node) RegisterWithGRPC(_ *grpc.Server) {
}

// RegisterWithHTTP implements app.App.RegisterWithHTTP
func (n *node) RegisterWithHTTP(r chi.Router) {
	n.server.Register(r)
}

// ShutdownChan implements app.App.ShutdownChan
func (n *node) ShutdownChan() <-chan struct{} {
	return n.shutdownCh
}

// Stop implements app.App.Stop
func (n *node) Stop() {
	n.shutdownOnce.Do(func() {
		close(n.shutdownCh)

		if n.data != nil {
			if err := n.data.Close(); err != nil {
				n.log.WithError(err).Warn("failure closing data provider")
			}
		}
	})
}

func serveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run a SkillChain node serving the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return app.Run(newNode(), globalFlags.configFile)
		},
	}
}
