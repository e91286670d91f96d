package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/five82/extman/internal/controller"
	"github.com/five82/extman/internal/gateway"
)

// maxConcurrentWaits bounds the goroutines waiting on mutations.
const maxConcurrentWaits = 8

type intent func(id gateway.ID) (*controller.Mutation, error)

// applyAll issues one intent per id, waits for every remote call to resolve
// and prints a line per id. It fails if any change was rolled back.
func applyAll(cmd *cobra.Command, flags *rootFlags, action string, args []string, do func(*controller.Controller) intent) error {
	ids, err := parseIDs(args)
	if err != nil {
		return err
	}

	session, err := openLoaded(cmd, flags)
	if err != nil {
		return err
	}
	defer session.Close()

	issue := do(session.Controller)
	results := make([]result, len(ids))
	mutations := make([]*controller.Mutation, len(ids))
	for i, id := range ids {
		results[i] = result{ID: id, Action: action}
		if ext, err := session.Store.Get(id); err == nil {
			results[i].Name = ext.Name
		}
		m, err := issue(id)
		if err != nil {
			results[i].Error = describe(err)
			continue
		}
		mutations[i] = m
	}

	waitMutations(cmd.Context(), mutations, results)

	if err := writeResults(cmd.OutOrStdout(), flags.json, results); err != nil {
		return err
	}
	if n := failureCount(results); n > 0 {
		return fmt.Errorf("%d of %d changes failed", n, len(results))
	}
	return nil
}

// waitMutations fills results[i] from mutations[i]. Nil entries were never
// issued and keep their preset error.
func waitMutations(ctx context.Context, mutations []*controller.Mutation, results []result) {
	g := new(errgroup.Group)
	g.SetLimit(maxConcurrentWaits)
	for i, m := range mutations {
		if m == nil {
			continue
		}
		g.Go(func() error {
			if err := m.Wait(ctx); err != nil {
				results[i].Error = describe(err)
				return err
			}
			results[i].OK = true
			return nil
		})
	}
	// Per-id failures are already recorded in results.
	_ = g.Wait()
}

func describe(err error) string {
	var gwErr *gateway.Error
	switch {
	case errors.As(err, &gwErr) && gwErr.Kind == gateway.KindRejected:
		return fmt.Sprintf("rejected by server (status %d)", gwErr.StatusCode)
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return "interrupted before the server answered"
	default:
		return err.Error()
	}
}
