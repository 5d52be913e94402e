package grpc

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestParseFullMethodName_ComponentExtraction(t *testing.T) {
	packageName, serviceName, methodName, err := ParseFullMethodName("/internal.v1.test.Service/Method")
	require.NoError(t, err)

	assert.Equal(t, "internal.v1.test", packageName)
	assert.Equal(t, "Service", serviceName)
	assert.Equal(t, "Method", methodName)
}

func TestParseFullMethodName_Validation(t *testing.T) {
	for _, invalidValue := range []string{
		"",
		"/internal.v1.test.Service",
		"/internal.v1.test.Service/",
		"internal.v1.test.Service/Method",
		"/internal.v1.test.Service./Method",
		"/Service/Method",
	} {
		_, _, _, err := ParseFullMethodName(invalidValue)
		assert.Error(t, err)
	}
}

func TestIsHealthCheckEndpoint(t *testing.T) {
	assert.True(t, IsHealthCheckEndpoint("/grpc.health.v1.Health/Check"))
	assert.True(t, IsHealthCheckEndpoint("/grpc.health.v1.Health/Watch"))
	assert.False(t, IsHealthCheckEndpoint("/grpc.health.v1.Health/List"))
	assert.False(t, IsHealthCheckEndpoint(""))
}

func TestMaintenanceModeUnaryServerInterceptor(t *testing.T) {
	interceptor := MaintenanceModeUnaryServerInterceptor()

	var called bool
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		called = true
		return "ok", nil
	}

	resp, err := interceptor(context.Background(), nil, &grpc.UnaryServerInfo{FullMethod: "/grpc.health.v1.Health/Check"}, handler)
	require.NoError(t, err)
	assert.Equal(t, "ok", resp)
	assert.True(t, called)

	called = false
	_, err = interceptor(context.Background(), nil, &grpc.UnaryServerInfo{FullMethod: "/skillchain.v1.Registry/Get"}, handler)
	assert.Equal(t, codes.Unavailable, status.Code(err))
	assert.False(t, called)
}
