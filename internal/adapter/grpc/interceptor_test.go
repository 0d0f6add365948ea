package grpc

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestRecoveryInterceptor(t *testing.T) {
	interceptor := RecoveryInterceptor(zerolog.Nop())
	info := &grpc.UnaryServerInfo{FullMethod: "/portfoy.v1.PortfolioService/ComputeRebalance"}

	tests := []struct {
		name         string
		handler      grpc.UnaryHandler
		expectedCode codes.Code
		expectedResp interface{}
	}{
		{
			name: "Handler Succeeds",
			handler: func(ctx context.Context, req interface{}) (interface{}, error) {
				return "success", nil
			},
			expectedCode: codes.OK,
			expectedResp: "success",
		},
		{
			name: "Handler Returns Error",
			handler: func(ctx context.Context, req interface{}) (interface{}, error) {
				return nil, status.Error(codes.NotFound, "asset not found")
			},
			expectedCode: codes.NotFound,
		},
		{
			name: "Handler Panics",
			handler: func(ctx context.Context, req interface{}) (interface{}, error) {
				var m map[string]int
				m["boom"]++
				return "unreachable", nil
			},
			expectedCode: codes.Internal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := interceptor(context.Background(), "test-request", info, tt.handler)

			if tt.expectedCode == codes.OK {
				assert.NoError(t, err)
				assert.Equal(t, tt.expectedResp, resp)
			} else {
				assert.Error(t, err)
				st, ok := status.FromError(err)
				assert.True(t, ok, "error should be a gRPC status")
				assert.Equal(t, tt.expectedCode, st.Code())
				assert.Nil(t, resp)
			}
		})
	}
}

func TestLoggingInterceptor(t *testing.T) {
	info := &grpc.UnaryServerInfo{FullMethod: "/portfoy.v1.PortfolioService/GetSummary"}

	tests := []struct {
		name          string
		err           error
		expectedLevel string
	}{
		{name: "OK", err: nil, expectedLevel: `"level":"debug"`},
		{name: "Client Error", err: status.Error(codes.InvalidArgument, "bad"), expectedLevel: `"level":"warn"`},
		{name: "Server Error", err: errors.New("disk full"), expectedLevel: `"level":"error"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			log := zerolog.New(&buf).Level(zerolog.DebugLevel)
			interceptor := LoggingInterceptor(log)

			_, err := interceptor(context.Background(), "req", info, func(ctx context.Context, req interface{}) (interface{}, error) {
				return nil, tt.err
			})

			assert.Equal(t, tt.err, err, "error must pass through unchanged")
			assert.Contains(t, buf.String(), tt.expectedLevel)
			assert.Contains(t, buf.String(), "GetSummary")
		})
	}
}
