package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"
)

type targetNameAPIMock struct {
	names map[string]string
	err   error
	calls int
}

func (m *targetNameAPIMock) TargetName(_ context.Context, platformName, target string) (string, error) {
	m.calls++
	if m.err != nil {
		return "", m.err
	}
	return m.names[platformName+"/"+target], nil
}

func TestResolverMemoizesSuccess(t *testing.T) {
	api := &targetNameAPIMock{names: map[string]string{"weibo/12345": "Artful Dodger"}}
	resolver := NewTargetResolver(api, time.Minute, zaptest.NewLogger(t))

	for i := 0; i < 3; i++ {
		name, err := resolver.Resolve(context.Background(), "weibo", "12345")
		if err != nil {
			t.Fatalf("resolve #%d: %v", i, err)
		}
		if name != "Artful Dodger" {
			t.Fatalf("resolve #%d: unexpected name %q", i, name)
		}
	}
	if api.calls != 1 {
		t.Fatalf("expected one round-trip, got %d", api.calls)
	}
}

func TestResolverMemoizesNotFound(t *testing.T) {
	api := &targetNameAPIMock{}
	resolver := NewTargetResolver(api, time.Minute, zaptest.NewLogger(t))

	for i := 0; i < 2; i++ {
		_, err := resolver.Resolve(context.Background(), "weibo", "ghost")
		if !errors.Is(err, ErrTargetNotFound) {
			t.Fatalf("resolve #%d: expected ErrTargetNotFound, got %v", i, err)
		}
	}
	if api.calls != 1 {
		t.Fatalf("not-found must be memoized, got %d calls", api.calls)
	}
}

func TestResolverTransportFailureNotMemoized(t *testing.T) {
	api := &targetNameAPIMock{err: errors.New("timeout")}
	resolver := NewTargetResolver(api, time.Minute, zaptest.NewLogger(t))

	if _, err := resolver.Resolve(context.Background(), "weibo", "12345"); !errors.Is(err, ErrServiceUnavailable) {
		t.Fatalf("expected ErrServiceUnavailable, got %v", err)
	}

	api.err = nil
	api.names = map[string]string{"weibo/12345": "Artful Dodger"}
	name, err := resolver.Resolve(context.Background(), "weibo", "12345")
	if err != nil {
		t.Fatalf("retry after transport failure: %v", err)
	}
	if name != "Artful Dodger" || api.calls != 2 {
		t.Fatalf("expected retry to hit the collaborator, calls=%d name=%q", api.calls, name)
	}
}

func TestResolverForget(t *testing.T) {
	api := &targetNameAPIMock{names: map[string]string{"weibo/12345": "Old Name"}}
	resolver := NewTargetResolver(api, time.Minute, zaptest.NewLogger(t))

	if _, err := resolver.Resolve(context.Background(), "weibo", "12345"); err != nil {
		t.Fatalf("resolve: %v", err)
	}

	api.names["weibo/12345"] = "New Name"
	resolver.Forget("weibo", "12345")

	name, err := resolver.Resolve(context.Background(), "weibo", "12345")
	if err != nil {
		t.Fatalf("resolve after forget: %v", err)
	}
	if name != "New Name" || api.calls != 2 {
		t.Fatalf("forget must force a fresh round-trip, calls=%d name=%q", api.calls, name)
	}
}
