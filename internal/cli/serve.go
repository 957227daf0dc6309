package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/sandeepkv93/wird/internal/model"
	"github.com/sandeepkv93/wird/internal/reminder"
	"github.com/sandeepkv93/wird/internal/scheduler"
	"github.com/sandeepkv93/wird/internal/server"
	"github.com/spf13/cobra"
)

func newServeCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API and deliver reminders",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, opts)
		},
	}
}

func runServe(cmd *cobra.Command, opts *rootOptions) error {
	a, err := openApp(opts, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if _, err := a.tracker.Open(ctx); err != nil {
		return err
	}

	engine := scheduler.NewEngine(a.cfg.Reminders.SchedulerBuffer)
	engine.Start()
	defer engine.Stop()

	platform, sched := a.reminders(engine)
	if _, err := platform.Restore(ctx); err != nil {
		a.logger.Warn("restore reminders failed", "err", err)
	}
	if err := a.reschedule(ctx, platform, sched); err != nil && !errors.Is(err, reminder.ErrPermissionDenied) {
		a.logger.Warn("reschedule reminders failed", "err", err)
	}
	go reminder.Dispatch(ctx, engine.C(), notifier(), a.logger, nil)
	waitReconcile := a.startReconcileLoop(ctx, time.Minute)
	// Runs before the deferred a.Close so the loop never sees a closed DB.
	defer func() {
		stop()
		waitReconcile()
	}()

	srv := server.New(a.tracker, a.repo, VersionString(), a.logger)
	addr := a.cfg.ListenAddr()
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           srv,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		fmt.Fprintf(cmd.ErrOrStderr(), "wird serving on %s\n", addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}
	fmt.Fprintln(cmd.ErrOrStderr(), "\nshutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}

// startReconcileLoop runs reconcileLoop in the background. The returned
// func blocks until the loop has exited after ctx is cancelled.
func (a *app) startReconcileLoop(ctx context.Context, every time.Duration) func() {
	last := a.tracker.Today()
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		a.reconcileLoop(ctx, every, last)
	}()
	return wg.Wait
}

// reconcileLoop backfills the new day once the date rolls over while the
// server keeps running.
func (a *app) reconcileLoop(ctx context.Context, every time.Duration, last model.Date) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			today := a.tracker.Today()
			if today.Equal(last) {
				continue
			}
			if _, err := a.tracker.Open(ctx); err != nil {
				a.logger.Warn("day rollover reconcile failed", "err", err)
				continue
			}
			a.logger.Info("day rollover", "from", last.String(), "to", today.String())
			last = today
		}
	}
}
