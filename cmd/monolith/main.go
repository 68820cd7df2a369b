// Command hlsfrag-monolith runs the single-host deployment: the
// notification HTTP endpoint, a Redis-backed queue/state adapter, local
// filesystem storage, and an in-process pool of worker goroutines, all in
// one process (SPEC_FULL.md §C.3).
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/golang/glog"
	"github.com/julienschmidt/httprouter"
	"golang.org/x/sync/errgroup"

	"github.com/livepeer/hlsfrag/cache"
	"github.com/livepeer/hlsfrag/config"
	"github.com/livepeer/hlsfrag/ingress"
	"github.com/livepeer/hlsfrag/log"
	"github.com/livepeer/hlsfrag/metrics"
	"github.com/livepeer/hlsfrag/middleware"
	"github.com/livepeer/hlsfrag/orchestrator"
	"github.com/livepeer/hlsfrag/redisadapter"
	"github.com/livepeer/hlsfrag/storage/fsstorage"
	"github.com/livepeer/hlsfrag/video"
	"github.com/livepeer/hlsfrag/worker"
)

func main() {
	if err := flag.Set("logtostderr", "true"); err != nil {
		glog.Fatal(err)
	}
	promPort := flag.Int("prom-port", 9090, "Prometheus metrics listen port")
	flag.Parse()

	cli := config.MonolithConfigFromEnv()

	if err := os.MkdirAll(cli.UploadDir, 0755); err != nil {
		glog.Fatalf("creating upload dir %s: %v", cli.UploadDir, err)
	}

	redisAdapter, err := redisadapter.NewFromURL(cli.RedisURL)
	if err != nil {
		glog.Fatalf("connecting to redis: %v", err)
	}
	fsAdapter := fsstorage.New(cli.UploadDir)

	orchestratorSvc := orchestrator.Service{
		Storage:              fsAdapter,
		Queue:                redisAdapter,
		State:                redisAdapter,
		Prober:               video.Probe{},
		EnqueueRetryAttempts: config.DefaultRetryAttempts,
	}
	workerSvc := worker.Service{
		Storage:        fsAdapter,
		Queue:          redisAdapter,
		State:          redisAdapter,
		Transcoder:     video.Transcoder{},
		DequeueTimeout: config.DefaultDequeueTimeout,
		// Shared across the goroutine pool below: they're one process on
		// one disk, so reusing a already-downloaded source across the
		// pool's goroutines is safe and saves repeat downloads for
		// multi-segment videos.
		SourceCache: cache.New[string](),
	}

	group, ctx := errgroup.WithContext(context.Background())

	group.Go(func() error {
		return metrics.ListenAndServe(*promPort)
	})

	group.Go(func() error {
		return serveHTTP(ctx, cli, orchestratorSvc)
	})

	for i := 0; i < cli.WorkerPoolSize; i++ {
		group.Go(func() error {
			workerSvc.Run(ctx)
			return nil
		})
	}

	group.Go(func() error {
		return handleSignals(ctx)
	})

	if err := group.Wait(); err != nil {
		log.LogNoRequestID("shutdown complete", "reason", err.Error())
	}
}

func serveHTTP(ctx context.Context, cli config.Cli, orchestratorSvc orchestrator.Service) error {
	router := httprouter.New()
	handlers := ingress.Handlers{Orchestrator: orchestratorSvc}
	router.POST("/api/v1/sources", middleware.LogRequest()(middleware.AllowCORS()(handlers.NewSource())))

	addr := fmt.Sprintf("%s:%d", cli.Addr, cli.Port)
	server := &http.Server{Addr: addr, Handler: router}

	go func() {
		<-ctx.Done()
		_ = server.Close()
	}()

	log.LogNoRequestID("starting hlsfrag monolith HTTP server", "addr", addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func handleSignals(ctx context.Context) error {
	c := make(chan os.Signal, 1)
	signal.Notify(c, syscall.SIGQUIT, syscall.SIGTERM, syscall.SIGINT)
	select {
	case s := <-c:
		return fmt.Errorf("caught signal=%v", s)
	case <-ctx.Done():
		return nil
	}
}
