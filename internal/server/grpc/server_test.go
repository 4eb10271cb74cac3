package grpc

import (
	"context"
	"errors"
	"net"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"

	"github.com/dmitrijs2005/notekeeper/internal/logging"
)

type fakePinger struct {
	fail  atomic.Bool
	calls atomic.Int32
}

func (p *fakePinger) PingContext(context.Context) error {
	p.calls.Add(1)
	if p.fail.Load() {
		return errors.New("connection refused")
	}
	return nil
}

func healthStatus(t *testing.T, s *GRPCServer, service string) healthpb.HealthCheckResponse_ServingStatus {
	t.Helper()
	resp, err := s.health.Check(context.Background(), &healthpb.HealthCheckRequest{Service: service})
	require.NoError(t, err)
	return resp.GetStatus()
}

func TestCheck_ReflectsDatabase(t *testing.T) {
	p := &fakePinger{}
	s := NewGRPCServer("127.0.0.1:0", p, logging.Discard())

	s.check(context.Background())
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, healthStatus(t, s, ""))
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, healthStatus(t, s, ServiceName))

	p.fail.Store(true)
	s.check(context.Background())
	assert.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, healthStatus(t, s, ""))
	assert.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, healthStatus(t, s, ServiceName))
}

func TestCheck_NoPingerIsServing(t *testing.T) {
	s := NewGRPCServer("127.0.0.1:0", nil, logging.Discard())
	s.check(context.Background())
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, healthStatus(t, s, ""))
}

func TestWatch_RechecksPeriodically(t *testing.T) {
	p := &fakePinger{}
	s := NewGRPCServer("127.0.0.1:0", p, logging.Discard())
	s.interval = 5 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go s.watch(ctx)

	assert.Eventually(t, func() bool { return p.calls.Load() >= 3 }, time.Second, 5*time.Millisecond)
}

func TestServe_HealthOverTheWire(t *testing.T) {
	lis, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	s := NewGRPCServer("", &fakePinger{}, logging.Discard())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx, lis) }()

	conn, err := grpc.NewClient(lis.Addr().String(), grpc.WithTransportCredentials(insecure.NewCredentials()))
	require.NoError(t, err)
	defer conn.Close()

	callCtx, callCancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer callCancel()

	client := healthpb.NewHealthClient(conn)
	resp, err := client.Check(callCtx, &healthpb.HealthCheckRequest{Service: ServiceName})
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, resp.GetStatus())

	_, err = client.Check(callCtx, &healthpb.HealthCheckRequest{Service: "unknown"})
	assert.Equal(t, codes.NotFound, status.Code(err))

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("server did not stop after context cancel")
	}
}

func TestRun_ReturnsErrorOnBadAddress(t *testing.T) {
	s := NewGRPCServer("127.0.0.1:99999", nil, logging.Discard())
	assert.Error(t, s.Run(context.Background()))
}

func TestLoggingInterceptor_PassesThrough(t *testing.T) {
	s := NewGRPCServer("", nil, logging.Discard())
	info := &grpc.UnaryServerInfo{FullMethod: "/grpc.health.v1.Health/Check"}

	resp, err := s.loggingInterceptor(context.Background(), "req", info, func(ctx context.Context, req any) (any, error) {
		return "ok", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "ok", resp)

	wantErr := status.Error(codes.Unavailable, "down")
	_, err = s.loggingInterceptor(context.Background(), "req", info, func(ctx context.Context, req any) (any, error) {
		return nil, wantErr
	})
	assert.Equal(t, wantErr, err)
}
