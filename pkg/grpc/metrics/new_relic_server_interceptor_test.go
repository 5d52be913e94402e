package metrics

import (
	"context"
	"net"
	"sync"
	"testing"

	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	grpc_core "google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/health"
	healthgrpc "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/test/bufconn"

	"github.com/bri1545/SkillChain/pkg/metrics"
)

type seenCalls struct {
	sync.Mutex
	withApp map[string]bool
}

func (s *seenCalls) record(ctx context.Context, fullMethod string) {
	s.Lock()
	defer s.Unlock()

	_, ok := ctx.Value(metrics.NewRelicContextKey{}).(*newrelic.Application)
	s.withApp[fullMethod] = ok && newrelic.FromContext(ctx) != nil
}

func (s *seenCalls) get(fullMethod string) (bool, bool) {
	s.Lock()
	defer s.Unlock()

	withApp, ok := s.withApp[fullMethod]
	return withApp, ok
}

func setupHealthServer(t *testing.T, app *newrelic.Application) (healthgrpc.HealthClient, *seenCalls) {
	seen := &seenCalls{withApp: make(map[string]bool)}

	lis := bufconn.Listen(1024 * 1024)
	serv := grpc_core.NewServer(
		grpc_core.ChainUnaryInterceptor(
			CustomNewRelicUnaryServerInterceptor(app),
			func(ctx context.Context, req interface{}, info *grpc_core.UnaryServerInfo, handler grpc_core.UnaryHandler) (interface{}, error) {
				seen.record(ctx, info.FullMethod)
				return handler(ctx, req)
			},
		),
		grpc_core.ChainStreamInterceptor(
			CustomNewRelicStreamServerInterceptor(app),
			func(srv interface{}, ss grpc_core.ServerStream, info *grpc_core.StreamServerInfo, handler grpc_core.StreamHandler) error {
				seen.record(ss.Context(), info.FullMethod)
				return handler(srv, ss)
			},
		),
	)
	healthgrpc.RegisterHealthServer(serv, health.NewServer())

	go serv.Serve(lis)
	t.Cleanup(serv.Stop)

	conn, err := grpc_core.NewClient(
		"passthrough:///bufnet",
		grpc_core.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc_core.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	return healthgrpc.NewHealthClient(conn), seen
}

func TestNewRelicServerInterceptors_HealthService(t *testing.T) {
	app, err := newrelic.NewApplication(
		newrelic.ConfigAppName("skillchain-test"),
		newrelic.ConfigEnabled(false),
	)
	require.NoError(t, err)

	for _, tc := range []struct {
		name    string
		app     *newrelic.Application
		withApp bool
	}{
		{"no application", nil, false},
		{"with application", app, true},
	} {
		t.Run(tc.name, func(t *testing.T) {
			client, seen := setupHealthServer(t, tc.app)

			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			resp, err := client.Check(ctx, &healthgrpc.HealthCheckRequest{})
			require.NoError(t, err)
			assert.Equal(t, healthgrpc.HealthCheckResponse_SERVING, resp.Status)

			withApp, ok := seen.get("/grpc.health.v1.Health/Check")
			require.True(t, ok)
			assert.Equal(t, tc.withApp, withApp)

			stream, err := client.Watch(ctx, &healthgrpc.HealthCheckRequest{})
			require.NoError(t, err)
			update, err := stream.Recv()
			require.NoError(t, err)
			assert.Equal(t, healthgrpc.HealthCheckResponse_SERVING, update.Status)

			withApp, ok = seen.get("/grpc.health.v1.Health/Watch")
			require.True(t, ok)
			assert.Equal(t, tc.withApp, withApp)
		})
	}
}
