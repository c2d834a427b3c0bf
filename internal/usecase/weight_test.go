package usecase

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap/zaptest"

	"github.com/arklim/subhub-console/internal/core/domain"
	"github.com/arklim/subhub-console/internal/querycache"
)

type weightAPIMock struct {
	weights   []domain.TargetWeight
	listCalls int

	putCalls     int
	lastPlatform string
	lastTarget   string
	lastWeight   domain.WeightConfig
}

func (m *weightAPIMock) Weights(context.Context) ([]domain.TargetWeight, error) {
	m.listCalls++
	return m.weights, nil
}

func (m *weightAPIMock) PutWeight(_ context.Context, platformName, target string, weight domain.WeightConfig) error {
	m.putCalls++
	m.lastPlatform = platformName
	m.lastTarget = target
	m.lastWeight = weight
	for i, w := range m.weights {
		if w.PlatformName == platformName && w.Target == target {
			m.weights[i].Weight = weight
			return nil
		}
	}
	m.weights = append(m.weights, domain.TargetWeight{
		PlatformName: platformName,
		Target:       target,
		Weight:       weight,
	})
	return nil
}

func TestApplyValidatesAndRefreshesWeights(t *testing.T) {
	api := &weightAPIMock{weights: []domain.TargetWeight{
		{PlatformName: "weibo", Target: "123456", Weight: domain.WeightConfig{Default: 10}},
	}}
	logger := zaptest.NewLogger(t)
	svc := NewWeightService(api, querycache.New(logger), logger)
	ctx := context.Background()

	if _, err := svc.Weights(ctx); err != nil {
		t.Fatalf("prime weights: %v", err)
	}

	applied, err := svc.Apply(ctx, "weibo", "123456", WeightDraft{
		Default: 20,
		TimeWindows: []TimeWindowDraft{
			{Start: "18:00", End: "23:00", Weight: 50},
		},
	})
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if applied.Default != 20 || len(applied.TimeWindows) != 1 {
		t.Fatalf("unexpected applied config: %+v", applied)
	}
	if api.putCalls != 1 || api.lastPlatform != "weibo" || api.lastTarget != "123456" {
		t.Fatalf("write not forwarded: %+v", api)
	}

	weights, err := svc.Weights(ctx)
	if err != nil {
		t.Fatalf("weights after apply: %v", err)
	}
	if api.listCalls != 2 {
		t.Fatalf("expected exactly one refetch after the write, got %d", api.listCalls)
	}
	if weights[0].Weight.Default != 20 {
		t.Fatalf("refetched weights must reflect the write: %+v", weights[0])
	}
}

func TestApplyRejectsInvalidDraftBeforeWrite(t *testing.T) {
	api := &weightAPIMock{}
	logger := zaptest.NewLogger(t)
	svc := NewWeightService(api, querycache.New(logger), logger)

	_, err := svc.Apply(context.Background(), "weibo", "123456", WeightDraft{
		Default: 20,
		TimeWindows: []TimeWindowDraft{
			{Start: "23:00", End: "18:00", Weight: 50},
		},
	})
	var ferrs *FieldErrors
	if !errors.As(err, &ferrs) {
		t.Fatalf("expected field errors, got %v", err)
	}
	if api.putCalls != 0 {
		t.Fatalf("invalid drafts must never reach the server")
	}
}
