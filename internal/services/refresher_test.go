package services_test

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/vsgo/appcore/internal/services"
)

type fakeKeeper struct {
	calls  atomic.Int64
	leeway atomic.Int64
}

func (f *fakeKeeper) Reauthenticate(ctx context.Context, leeway time.Duration) {
	f.leeway.Store(int64(leeway))
	f.calls.Add(1)
}

func TestRefresherInvokesReauthenticate(t *testing.T) {
	keeper := &fakeKeeper{}
	refresher := services.NewSessionRefresher(keeper, nil, services.RefresherConfig{
		Interval: time.Second,
		Leeway:   30 * time.Second,
	})

	refresher.Start()
	defer refresher.Stop(context.Background())

	deadline := time.After(5 * time.Second)
	for keeper.calls.Load() == 0 {
		select {
		case <-deadline:
			t.Fatal("reauthenticate was never invoked")
		case <-time.After(50 * time.Millisecond):
		}
	}
	assert.Equal(t, int64(30*time.Second), keeper.leeway.Load())
}

func TestRefresherStopIsSafe(t *testing.T) {
	refresher := services.NewSessionRefresher(&fakeKeeper{}, nil, services.RefresherConfig{})
	refresher.Start()
	refresher.Stop(context.Background())

	var nilRefresher *services.SessionRefresher
	nilRefresher.Start()
	nilRefresher.Stop(context.Background())
}
