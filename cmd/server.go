package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	subscriber "github.com/arthurdotwork/signaling/internal/adapters/primary/redis"
	"github.com/arthurdotwork/signaling/internal/adapters/primary/ws"
	"github.com/arthurdotwork/signaling/internal/adapters/secondary/broadcaster"
	"github.com/arthurdotwork/signaling/internal/adapters/secondary/store"
	"github.com/arthurdotwork/signaling/internal/domain"
	"github.com/arthurdotwork/signaling/internal/infrastructure/redis"
	"github.com/arthurdotwork/signaling/internal/infrastructure/runner"
)

const eventsChannel = "signaling-events"

// Server wires the stores, the dispatcher and the transport, then supervises
// them until the context is canceled. With REDIS_ADDR set, state and fan-out
// move to redis so several server processes can share rooms; without it,
// everything stays in process.
func Server(ctx context.Context, _ *cobra.Command) error {
	allowedOrigin := env("ALLOWED_ORIGIN", "*")
	redisAddr := env("REDIS_ADDR", "")

	var (
		registry    domain.Registry
		rooms       domain.RoomDirectory
		bus         domain.Broadcaster
		redisClient *redis.Client
	)

	if redisAddr != "" {
		redisClient = redis.NewClient(redisAddr)
		registry = store.NewRedisRegistry(redisClient)
		rooms = store.NewRedisRoomDirectory(redisClient)
	} else {
		registry = store.NewMemoryRegistry()
		rooms = store.NewMemoryRoomDirectory()
	}

	dispatcher := domain.NewDispatcher(rooms)

	if redisAddr != "" {
		bus = broadcaster.NewRedis(redisClient, eventsChannel)
	} else {
		bus = broadcaster.NewLocal(dispatcher)
	}

	signalingService := domain.NewSignalingService(registry, rooms, bus, dispatcher)
	handler := ws.NewHandler(signalingService, dispatcher, allowedOrigin)
	router := ws.NewRouter(handler, rooms, allowedOrigin)

	addr := fmt.Sprintf(":%s", env("HTTP_PORT", "3001"))

	r := runner.New(ctx)
	r.Go(func() error {
		errCh := make(chan error, 1)

		go func() {
			slog.DebugContext(ctx, "starting server", "address", addr)

			if err := router.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
				slog.ErrorContext(ctx, "error serving", "error", err)
				errCh <- fmt.Errorf("router.Start: %w", err)
				return
			}

			errCh <- nil
		}()

		select {
		case <-ctx.Done():
			slog.DebugContext(ctx, "context done, stopping server")
			return ctx.Err()
		case err := <-errCh:
			return err
		}
	})

	if redisClient != nil {
		r.Go(func() error {
			sub := subscriber.NewSubscriber(redisClient, dispatcher)
			errCh := make(chan error, 1)

			go func() {
				errCh <- sub.Subscribe(ctx, eventsChannel)
			}()

			select {
			case <-ctx.Done():
				slog.DebugContext(ctx, "context done, stopping subscriber")
				return ctx.Err()
			case err := <-errCh:
				if err != nil {
					slog.ErrorContext(ctx, "error subscribing", "error", err)
					return fmt.Errorf("sub.Subscribe: %w", err)
				}
			}

			slog.DebugContext(ctx, "subscriber stopped")
			return nil
		})
	}

	if err := r.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		slog.ErrorContext(ctx, "error running server", "error", err)
		return fmt.Errorf("errGroup.Wait: %w", err)
	}

	slog.DebugContext(ctx, "initiating server shutdown")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer shutdownCancel()

	if err := signalingService.Close(shutdownCtx); err != nil {
		slog.ErrorContext(shutdownCtx, "error closing signaling service", "error", err)
	}

	if err := router.Shutdown(shutdownCtx); err != nil {
		slog.ErrorContext(shutdownCtx, "error shutting down server", "error", err)
	}

	return nil
}

func env(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}

	return fallback
}
