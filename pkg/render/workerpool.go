package render

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/yafaray-go/renderer/pkg/core"
)

// RunTiles dispatches tiles to a pool of worker goroutines. Each worker
// pulls one tile at a time from a shared channel, checks the
// cancellation context before dequeuing, and reports completion through onDone, which the
// pool serializes so output callbacks need no locking of their own. All
// workers have joined before RunTiles returns.
//
// errgroup ties the workers together so a failing tile or a cancelled
// context tears the whole pool down with one error path.
func RunTiles(ctx context.Context, threads int, tiles []*Tile, work func(worker int, t *Tile) error, onDone func(t *Tile)) error {
	if threads <= 0 {
		threads = defaultThreads()
	}
	queue := make(chan *Tile, len(tiles))
	for _, t := range tiles {
		queue <- t
	}
	close(queue)

	done := make(chan *Tile, len(tiles))
	g, gctx := errgroup.WithContext(ctx)
	for w := 0; w < threads; w++ {
		w := w
		g.Go(func() error {
			for {
				// Poll cancellation with priority: a ready queue must not
				// win the select race against an already-cancelled context.
				select {
				case <-gctx.Done():
					return core.NewError(core.KindCancelled, gctx.Err(), "render cancelled")
				default:
				}
				select {
				case <-gctx.Done():
					return core.NewError(core.KindCancelled, gctx.Err(), "render cancelled")
				case t, ok := <-queue:
					if !ok {
						return nil
					}
					if err := work(w, t); err != nil {
						return err
					}
					done <- t
				}
			}
		})
	}

	// Drain completions on one dedicated goroutine so onDone callbacks
	// are single-threaded.
	drained := make(chan struct{})
	go func() {
		for t := range done {
			if onDone != nil {
				onDone(t)
			}
		}
		close(drained)
	}()

	err := g.Wait()
	close(done)
	<-drained
	return err
}

// defaultThreads is one worker per hardware thread.
func defaultThreads() int { return runtime.NumCPU() }
