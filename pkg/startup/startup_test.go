package startup

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Gobusters/ectologger"
	"github.com/Gobusters/ectologger/zapadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func getTestLogger() ectologger.Logger {
	zapLogger, _ := zap.NewDevelopment()
	return zapadapter.NewZapEctoLogger(zapLogger, nil)
}

func recorder(log *[]string, name string, needs ...string) *Dependency {
	return &Dependency{
		Name:  name,
		Needs: needs,
		StartFn: func(context.Context) error {
			*log = append(*log, "start:"+name)
			return nil
		},
		StopFn: func(context.Context) error {
			*log = append(*log, "stop:"+name)
			return nil
		},
	}
}

func TestStartup_StartsInDependencyOrder(t *testing.T) {
	var log []string
	s := NewStartup(getTestLogger(), 1)
	s.AddDependency(recorder(&log, "sweeper", "database", "kafka"))
	s.AddDependency(recorder(&log, "migrations", "database"))
	s.AddDependency(recorder(&log, "database"))
	s.AddDependency(recorder(&log, "kafka"))

	require.NoError(t, s.Start(context.Background()))
	assert.Equal(t, []string{"start:database", "start:kafka", "start:sweeper", "start:migrations"}, log)
	assert.Equal(t, StartupStatusStarted, s.Status("sweeper"))

	log = nil
	require.NoError(t, s.Stop(context.Background()))
	assert.Equal(t, []string{"stop:migrations", "stop:sweeper", "stop:kafka", "stop:database"}, log)
	assert.Equal(t, StartupStatusStopped, s.Status("database"))
}

func TestStartup_RetriesFailedDependency(t *testing.T) {
	calls := 0
	s := NewStartup(getTestLogger(), 3).WithBackoffUnit(time.Millisecond)
	s.AddDependency(&Dependency{
		Name: "redis",
		StartFn: func(context.Context) error {
			calls++
			if calls < 2 {
				return errors.New("not yet")
			}
			return nil
		},
	})

	require.NoError(t, s.Start(context.Background()))
	assert.Equal(t, 2, calls)
}

func TestStartup_GivesUp(t *testing.T) {
	s := NewStartup(getTestLogger(), 2).WithBackoffUnit(time.Millisecond)
	s.AddDependency(&Dependency{
		Name:    "database",
		StartFn: func(context.Context) error { return errors.New("refused") },
	})

	err := s.Start(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "startup failed after 2 attempts")
	assert.Equal(t, StartupStatusFailed, s.Status("database"))
}

func TestStartup_UnknownAndCyclicDependencies(t *testing.T) {
	s := NewStartup(getTestLogger(), 1)
	s.AddDependency(&Dependency{Name: "a", Needs: []string{"missing"}, StartFn: func(context.Context) error { return nil }})
	assert.ErrorContains(t, s.Start(context.Background()), "unknown dependency 'missing'")

	s = NewStartup(getTestLogger(), 1)
	s.AddDependency(&Dependency{Name: "a", Needs: []string{"b"}, StartFn: func(context.Context) error { return nil }})
	s.AddDependency(&Dependency{Name: "b", Needs: []string{"a"}, StartFn: func(context.Context) error { return nil }})
	assert.ErrorContains(t, s.Start(context.Background()), "dependency cycle")
}
