package main

import (
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	code_data "github.com/bri1545/SkillChain/pkg/code/data"
	"github.com/bri1545/SkillChain/pkg/grpc/app"
)

func TestDecodeNodeConfig(t *testing.T) {
	config, err := decodeNodeConfig(nil)
	require.NoError(t, err)
	assert.Equal(t, defaultNodeConfig, *config)

	config, err = decodeNodeConfig(app.Config{
		"ledger": map[string]interface{}{
			"backend":         "badger",
			"badger_data_dir": "/var/lib/skillchain",
		},
		"submit_rate_limit": 0.5,
	})
	require.NoError(t, err)
	assert.Equal(t, code_data.LedgerBackendBadger, config.Ledger.Backend)
	assert.Equal(t, "/var/lib/skillchain", config.Ledger.BadgerDataDir)
	assert.Equal(t, 0.5, config.SubmitRateLimit)
	assert.Equal(t, defaultNodeConfig.SubmitRateBurst, config.SubmitRateBurst)

	_, err = decodeNodeConfig(app.Config{"submit_rate_burst": "lots"})
	assert.Error(t, err)
}

func TestNodeLifecycle(t *testing.T) {
	n := newNode()
	require.NoError(t, n.Init(app.Config{
		"ledger": map[string]interface{}{"backend": "badger"},
	}, nil))

	r := chi.NewRouter()
	n.RegisterWithHTTP(r)
	var routes []string
	require.NoError(t, chi.Walk(r, func(method, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
		routes = append(routes, method+" "+route)
		return nil
	}))
	assert.Contains(t, routes, "POST /v1/submit")
	assert.Contains(t, routes, "GET /v1/profile/{owner}")

	n.Stop()
	n.Stop()

	select {
	case <-n.ShutdownChan():
	default:
		t.Fatal("shutdown channel not closed")
	}

	assert.Error(t, newNode().Init(app.Config{
		"ledger": map[string]interface{}{"backend": "unknown"},
	}, nil))
}
