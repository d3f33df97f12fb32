package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/WorldOfGZ/myastroboard/internal/analytics"
	"github.com/WorldOfGZ/myastroboard/internal/api"
	"github.com/WorldOfGZ/myastroboard/internal/cache"
	"github.com/WorldOfGZ/myastroboard/internal/cachefile"
	"github.com/WorldOfGZ/myastroboard/internal/config"
	"github.com/WorldOfGZ/myastroboard/internal/jobsched"
	"github.com/WorldOfGZ/myastroboard/internal/leader"
	"github.com/WorldOfGZ/myastroboard/internal/location"
	"github.com/WorldOfGZ/myastroboard/internal/metrics"
	"github.com/WorldOfGZ/myastroboard/internal/refresher"
	"github.com/WorldOfGZ/myastroboard/internal/report"
	"github.com/WorldOfGZ/myastroboard/internal/settings"
	"github.com/WorldOfGZ/myastroboard/internal/store/postgres"

	_ "github.com/lib/pq"
)

// Build-time variables set via -ldflags
var (
	version = "dev"
	commit  = "unknown"
)

const (
	exitSuccess       = 0
	exitRuntimeError  = 1
	exitInvalidConfig = 2
)

// Leader lock resources. Several workers may share one DATA_DIR; each
// background loop runs in exactly one of them.
const (
	refresherResource = "cache_scheduler"
	schedulerResource = "scheduler"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(exitRuntimeError)
	}

	cmd := os.Args[1]

	switch cmd {
	case "serve":
		os.Exit(runServe())
	case "validate":
		os.Exit(runValidate())
	case "config":
		os.Exit(runConfig())
	case "version":
		os.Exit(runVersion())
	case "--help", "-h", "help":
		printUsage()
		os.Exit(exitSuccess)
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", cmd)
		printUsage()
		os.Exit(exitRuntimeError)
	}
}

func printUsage() {
	fmt.Println(`myastroboard - personal astronomy dashboard backend

Usage:
  myastroboard <command>

Commands:
  serve      Start the API server and background loops
  validate   Validate configuration (no connections made)
  config     Print effective configuration as JSON (secrets masked)
  version    Print version information

Environment Variables:
  HTTP_ADDR                 HTTP server address (default: ":8080")
  DATA_DIR                  Shared state directory (default: "./data")
  CONFIG_DIR                Generated job config directory (default: "./data/job_config")
  OUTPUT_DIR                Job artifact directory (default: "./data/job_output")
  HOST_CONFIG_DIR           Host path of CONFIG_DIR for docker-in-docker (optional)
  HOST_OUTPUT_DIR           Host path of OUTPUT_DIR for docker-in-docker (optional)

  DATABASE_URL              PostgreSQL connection string (optional, enables CRUD)
  DB_OP_TIMEOUT             Database operation timeout (default: "5s")
  REDIS_ADDR                Redis address for analytics (optional)

  CACHE_TTL                 Report cache TTL (default: "30m")
  WEATHER_CACHE_TTL         Weather report TTL (default: "1h")
  REFRESH_INTERVAL          Cache refresh interval (default: "25m")

  SCHEDULE_INTERVAL         Gap between job cycles (default: "2h0m1s")
  SCHEDULE_CRON             Cron expression overriding the fixed gap (optional)
  SCHEDULE_POLL_INTERVAL    Job scheduler poll interval (default: "1m")
  JOB_RUN_TIMEOUT           Hard timeout per target run (default: "10m")
  JOB_IMAGE                 Container image for the external job

  HTTP_SHUTDOWN_TIMEOUT     Graceful HTTP shutdown timeout (default: "10s")

  METRICS_ENABLED           Enable Prometheus metrics (default: "false")
  METRICS_PATH              Metrics endpoint path (default: "/metrics")
  METRICS_PORT              Metrics server port (default: "9090")`)
}

func runServe() int {
	cfg := config.Load()

	if err := config.Validate(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		return exitInvalidConfig
	}

	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "failed to create data dir: %v\n", err)
		return exitRuntimeError
	}

	// Initialize metrics sink (optional)
	var metricsSink *metrics.PrometheusSink
	var metricsServer *http.Server

	if cfg.MetricsEnabled {
		metricsSink = metrics.NewPrometheusSink(prometheus.DefaultRegisterer)
		log.Printf("myastroboard: metrics enabled (port=%s, path=%s)", cfg.MetricsPort, cfg.MetricsPath)

		metricsMux := http.NewServeMux()
		metricsMux.Handle(cfg.MetricsPath, promhttp.Handler())
		metricsServer = &http.Server{
			Addr:    ":" + cfg.MetricsPort,
			Handler: metricsMux,
		}
		go func() {
			log.Printf("myastroboard: metrics server listening on :%s", cfg.MetricsPort)
			if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Printf("myastroboard: metrics server error: %v", err)
			}
		}()
	} else {
		log.Println("myastroboard: METRICS_ENABLED not set; metrics disabled")
	}

	// Shared cache file and the in-process cache on top of it
	shared, err := cachefile.New(cfg.DataDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to open shared cache: %v\n", err)
		return exitRuntimeError
	}

	reportCache := cache.NewManager(shared, cfg.CacheTTL, cfg.WeatherCacheTTL)
	if metricsSink != nil {
		reportCache = reportCache.WithMetrics(metricsSink)
	}

	settingsStore := settings.NewStore(cfg.DataDir)
	detector := location.NewDetector(cfg.DataDir, reportCache)

	weather := report.NewWeatherClient()
	generators := report.Registry(weather)

	// PostgreSQL is optional; without it the CRUD endpoints answer 503.
	var db *sql.DB
	var crudStore *postgres.Store
	if cfg.DatabaseURL != "" {
		db, err = sql.Open("postgres", cfg.DatabaseURL)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to open database: %v\n", err)
			return exitRuntimeError
		}
		defer db.Close()

		if err := db.Ping(); err != nil {
			fmt.Fprintf(os.Stderr, "failed to connect to database: %v\n", err)
			return exitRuntimeError
		}
		crudStore = postgres.New(db, cfg.DBOpTimeout)
		log.Println("myastroboard: database connected, CRUD endpoints enabled")
	} else {
		log.Println("myastroboard: DATABASE_URL not set; CRUD endpoints disabled")
	}

	// Leader election per background loop. Losing a lock is the normal
	// multi-worker case, not an error.
	refresherLock := leader.NewFileLock(cfg.DataDir, refresherResource)
	schedulerLock := leader.NewFileLock(cfg.DataDir, schedulerResource)
	defer func() {
		if err := refresherLock.Release(); err != nil {
			log.Printf("myastroboard: release %s: %v", refresherResource, err)
		}
		if err := schedulerLock.Release(); err != nil {
			log.Printf("myastroboard: release %s: %v", schedulerResource, err)
		}
	}()

	var refresherWg, schedulerWg sync.WaitGroup
	refresherCtx, cancelRefresher := context.WithCancel(context.Background())
	schedulerCtx, cancelScheduler := context.WithCancel(context.Background())
	defer cancelRefresher()
	defer cancelScheduler()

	isRefreshLeader, err := refresherLock.TryAcquire()
	if err != nil {
		fmt.Fprintf(os.Stderr, "leader election failed: %v\n", err)
		return exitRuntimeError
	}
	if metricsSink != nil {
		metricsSink.LeaderStatusChanged(refresherResource, isRefreshLeader)
	}

	if isRefreshLeader {
		refr := refresher.New(
			refresher.Config{Interval: cfg.RefreshInterval},
			reportCache,
			detector,
			generators,
			settingsStore,
		)
		if metricsSink != nil {
			refr = refr.WithMetrics(metricsSink)
		}
		refresherWg.Add(1)
		go func() {
			defer refresherWg.Done()
			refr.Run(refresherCtx)
		}()
	} else {
		log.Println("myastroboard: cache refresher owned by another worker")
	}

	isJobLeader, err := schedulerLock.TryAcquire()
	if err != nil {
		fmt.Fprintf(os.Stderr, "leader election failed: %v\n", err)
		return exitRuntimeError
	}
	if metricsSink != nil {
		metricsSink.LeaderStatusChanged(schedulerResource, isJobLeader)
	}

	var schedulerControl api.SchedulerControl
	if isJobLeader {
		runner := jobsched.NewDockerRunner(cfg.JobImage)
		if cfg.HostConfigDir != "" {
			runner = runner.WithHostPaths(cfg.ConfigDir, cfg.HostConfigDir, cfg.OutputDir, cfg.HostOutputDir)
		}

		sched, err := jobsched.New(
			jobsched.Config{
				PollInterval:   cfg.SchedulePollInterval,
				Interval:       cfg.ScheduleInterval,
				RunTimeout:     cfg.JobRunTimeout,
				CronExpression: cfg.ScheduleCron,
				DataDir:        cfg.DataDir,
				ConfigDir:      cfg.ConfigDir,
				OutputDir:      cfg.OutputDir,
			},
			settingsStore,
			runner,
		)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to create job scheduler: %v\n", err)
			return exitRuntimeError
		}
		sched = sched.WithConditions(weather)
		if metricsSink != nil {
			sched = sched.WithMetrics(metricsSink)
		}

		schedulerWg.Add(1)
		go func() {
			defer schedulerWg.Done()
			sched.Run(schedulerCtx)
		}()
		schedulerControl = sched
	} else {
		log.Println("myastroboard: job scheduler owned by another worker, using remote control")
		schedulerControl = jobsched.NewRemote(cfg.DataDir)
	}

	// Single-tenant mode: one fixed user ID
	userID := uuid.MustParse("00000000-0000-0000-0000-000000000001")
	apiHandler := api.NewHandler(reportCache, generators, settingsStore, detector, schedulerControl, userID)
	if crudStore != nil {
		apiHandler = apiHandler.WithStore(crudStore).WithHealthChecker(db)
	}

	// Wire analytics if Redis is configured
	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr: cfg.RedisAddr,
		})
		apiHandler = apiHandler.WithAnalytics(analytics.NewRedisSink(redisClient))
		log.Printf("myastroboard: analytics enabled (redis=%s)", cfg.RedisAddr)
	} else {
		log.Println("myastroboard: REDIS_ADDR not set; analytics disabled")
	}

	httpServer := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: apiHandler,
	}

	go func() {
		log.Printf("myastroboard: http server listening on %s", cfg.HTTPAddr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("myastroboard: http server error: %v", err)
		}
	}()

	log.Printf("myastroboard: started (refresh_leader=%t, job_leader=%t, http=%s)",
		isRefreshLeader, isJobLeader, cfg.HTTPAddr)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	received := <-sig

	log.Printf("myastroboard: received signal %v, shutting down", received)

	// Phase 1: Stop the refresher (no new cache writes)
	log.Println("myastroboard: stopping refresher...")
	cancelRefresher()
	refresherWg.Wait()
	log.Println("myastroboard: refresher stopped")

	// Phase 2: Stop the job scheduler (finishes status publication)
	log.Println("myastroboard: stopping job scheduler...")
	cancelScheduler()
	schedulerWg.Wait()
	log.Println("myastroboard: job scheduler stopped")

	// Phase 3: Stop HTTP server with graceful shutdown
	log.Println("myastroboard: stopping http server...")
	httpShutdownCtx, httpShutdownCancel := context.WithTimeout(context.Background(), cfg.HTTPShutdownTimeout)
	defer httpShutdownCancel()
	if err := httpServer.Shutdown(httpShutdownCtx); err != nil {
		log.Printf("myastroboard: http server shutdown error: %v", err)
	}
	log.Println("myastroboard: http server stopped")

	// Phase 4: Stop metrics server if running (with same timeout)
	if metricsServer != nil {
		log.Println("myastroboard: stopping metrics server...")
		metricsShutdownCtx, metricsShutdownCancel := context.WithTimeout(context.Background(), cfg.HTTPShutdownTimeout)
		defer metricsShutdownCancel()
		if err := metricsServer.Shutdown(metricsShutdownCtx); err != nil {
			log.Printf("myastroboard: metrics server shutdown error: %v", err)
		}
		log.Println("myastroboard: metrics server stopped")
	}

	log.Println("myastroboard: stopped")
	return exitSuccess
}

func runValidate() int {
	cfg := config.Load()

	if err := config.Validate(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return exitInvalidConfig
	}

	fmt.Println("configuration valid")
	return exitSuccess
}

func runConfig() int {
	cfg := config.Load()

	data, err := cfg.MaskedJSON()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to marshal config: %v\n", err)
		return exitRuntimeError
	}

	fmt.Println(string(data))
	return exitSuccess
}

func runVersion() int {
	fmt.Printf("myastroboard version %s (commit: %s)\n", version, commit)
	return exitSuccess
}
