package bootstrap

import (
	"context"
	"fmt"
	"testing"
	"time"

	"golang.org/x/sync/errgroup"

	platformerrors "rayee-server-go/internal/platform/errors"
	platformtesting "rayee-server-go/internal/platform/testing"
)

func TestInitGraphDependenciesAreOrdered(t *testing.T) {
	steps := InitGraph()
	seen := make(map[string]struct{}, len(steps))
	for _, step := range steps {
		for _, dep := range step.DependsOn {
			if _, ok := seen[dep]; !ok {
				t.Errorf("step %s depends on %s which is not declared before it", step.ID, dep)
			}
		}
		seen[step.ID] = struct{}{}
	}
}

func TestInitGraphCoversStartupConcerns(t *testing.T) {
	steps := InitGraph()
	ids := make(map[string]struct{}, len(steps))
	for _, step := range steps {
		ids[step.ID] = struct{}{}
	}
	for _, want := range []string{"config:load", "logging:init", "credential:load", "describe:init", "speech:init"} {
		if _, ok := ids[want]; !ok {
			t.Errorf("init graph is missing step %s", want)
		}
	}
}

func TestExecuteInitStepsRunsInOrder(t *testing.T) {
	var order []string
	record := func(id string) stepFn {
		return func(context.Context, *appState) error {
			order = append(order, id)
			return nil
		}
	}

	steps := []initStep{
		{ID: "a", Execute: record("a")},
		{ID: "b", DependsOn: []string{"a"}, Execute: record("b")},
		{ID: "c", DependsOn: []string{"b"}, Execute: record("c")},
	}

	err := executeInitSteps(context.Background(), steps, &appState{})
	platformtesting.AssertNoError(t, err)
	platformtesting.AssertEqual(t, 3, len(order))
	platformtesting.AssertEqual(t, "a", order[0])
	platformtesting.AssertEqual(t, "c", order[2])
}

func TestExecuteInitStepsRejectsUnsatisfiedDependency(t *testing.T) {
	steps := []initStep{
		{ID: "b", DependsOn: []string{"a"}, Execute: func(context.Context, *appState) error { return nil }},
	}

	err := executeInitSteps(context.Background(), steps, &appState{})
	platformtesting.AssertError(t, err)
	if !platformerrors.IsKind(err, platformerrors.KindBootstrap) {
		t.Errorf("expected bootstrap kind, got %v", err)
	}
}

func TestExecuteInitStepsWrapsPlainErrors(t *testing.T) {
	steps := []initStep{
		{
			ID:   "fail",
			Kind: platformerrors.KindConfig,
			Execute: func(context.Context, *appState) error {
				return fmt.Errorf("boom")
			},
		},
	}

	err := executeInitSteps(context.Background(), steps, &appState{})
	platformtesting.AssertError(t, err)
	if !platformerrors.IsKind(err, platformerrors.KindConfig) {
		t.Errorf("expected the step kind on the wrapped error, got %v", err)
	}
}

func TestWaitForShutdownReturnsOnGroupFailure(t *testing.T) {
	logger := platformtesting.SetupTestLogger(t)

	rootCtx, cancel := context.WithCancel(context.Background())
	defer cancel()
	group, groupCtx := errgroup.WithContext(rootCtx)
	group.Go(func() error {
		return fmt.Errorf("listen tcp :8000: address already in use")
	})

	done := make(chan error, 1)
	go func() {
		// Signal context never fires; only the failed group can unblock.
		done <- waitForShutdown(context.Background(), groupCtx, cancel, logger, group)
	}()

	select {
	case err := <-done:
		platformtesting.AssertError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("waitForShutdown did not return after the server group failed")
	}
}

func TestExecuteInitStepsStopsAtFirstFailure(t *testing.T) {
	ran := false
	steps := []initStep{
		{ID: "fail", Execute: func(context.Context, *appState) error { return fmt.Errorf("boom") }},
		{ID: "after", Execute: func(context.Context, *appState) error { ran = true; return nil }},
	}

	err := executeInitSteps(context.Background(), steps, &appState{})
	platformtesting.AssertError(t, err)
	if ran {
		t.Error("steps after a failure must not run")
	}
}
