package grpc

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

var (
	healthCheckEndpoints = map[string]struct{}{
		"/grpc.health.v1.Health/Check": {},
		"/grpc.health.v1.Health/Watch": {},
	}
	fullMethodNameRegex = regexp.MustCompile("^/([a-zA-Z0-9]+\\.)+[a-zA-Z0-9]+/[a-zA-Z0-9]+$")
)

// ParseFullMethodName parses a gRPC full method name into its components
func ParseFullMethodName(fullMethodName string) (packageName, serviceName, methodName string, err error) {
	if !fullMethodNameRegex.MatchString(fullMethodName) {
		return "", "", "", errors.New("invalid full method name")
	}

	parts := strings.Split(fullMethodName, "/")
	methodName = parts[2]

	parts = strings.Split(parts[1], ".")
	serviceName = parts[len(parts)-1]
	packageName = strings.Join(parts[:len(parts)-1], ".")

	return packageName, serviceName, methodName, nil
}

// MaintenanceModeUnaryServerInterceptor makes all unary RPCs, other than health
// checks, return UNAVAILABLE.
func MaintenanceModeUnaryServerInterceptor() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		// Allow health checks to pass so we don't churn servers
		if IsHealthCheckEndpoint(info.FullMethod) {
			return handler(ctx, req)
		}

		return nil, status.Error(codes.Unavailable, "temporarily unavailable")
	}
}

// MaintenanceModeStreamServerInterceptor makes all streaming RPCs, other than
// health watches, return UNAVAILABLE.
func MaintenanceModeStreamServerInterceptor() grpc.StreamServerInterceptor {
	return func(srv interface{}, ss grpc.ServerStream, info *grpc.StreamServerInfo, handler grpc.StreamHandler) error {
		if IsHealthCheckEndpoint(info.FullMethod) {
			return handler(srv, ss)
		}

		return status.Error(codes.Unavailable, "temporarily unavailable")
	}
}

// IsHealthCheckEndpoint returns whether a method belongs to the health service
func IsHealthCheckEndpoint(methodName string) bool {
	_, ok := healthCheckEndpoints[methodName]
	return ok
}
