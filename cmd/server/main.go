package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/annel0/voxel-sim/internal/api"
	"github.com/annel0/voxel-sim/internal/app"
	"github.com/annel0/voxel-sim/internal/config"
	"github.com/annel0/voxel-sim/internal/eventbus"
	"github.com/annel0/voxel-sim/internal/logging"
	"github.com/annel0/voxel-sim/internal/observability"
	"github.com/annel0/voxel-sim/internal/sim"
)

func main() {
	configPath := flag.String("config", "", "путь к YAML-конфигурации (по умолчанию VOXEL_CONFIG)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("❌ Ошибка загрузки конфигурации: %v", err)
	}

	consoleLevel, err := logging.ParseLevel(cfg.Logging.ConsoleLevel)
	if err != nil {
		log.Fatalf("❌ %v", err)
	}
	fileLevel, err := logging.ParseLevel(cfg.Logging.FileLevel)
	if err != nil {
		log.Fatalf("❌ %v", err)
	}
	logging.Configure(cfg.Logging.Dir, consoleLevel, fileLevel)
	if err := logging.GetLoggerManager().ApplyLevels(cfg.Logging.Components); err != nil {
		log.Fatalf("❌ %v", err)
	}

	if err := logging.InitDefaultLogger("server"); err != nil {
		log.Fatalf("❌ Ошибка инициализации логирования: %v", err)
	}
	defer logging.CloseDefaultLogger()
	defer logging.GetLoggerManager().CloseAll()

	logging.Info("🎮 Запуск воксельной сцены...")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		logging.Error("❌ %v", err)
		logging.CloseDefaultLogger()
		os.Exit(1)
	}

	logging.Info("👋 Сцена остановлена")
}

func run(ctx context.Context, cfg *config.Config) error {
	// === ТРАССИРОВКА ===
	if cfg.Telemetry.Enabled {
		shutdown, err := observability.InitTelemetry(ctx, cfg.Telemetry.ServiceName, cfg.Telemetry.Endpoint)
		if err != nil {
			return fmt.Errorf("инициализация OpenTelemetry: %w", err)
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := shutdown(shutdownCtx); err != nil {
				logging.Warn("Ошибка остановки OpenTelemetry: %v", err)
			}
		}()
		logging.Info("📡 Трассировки отправляются в %s", cfg.Telemetry.Endpoint)
	}

	// === МЕТРИКИ ===
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	bus := eventbus.NewBus()
	busLog := eventbus.StartLoggingListener(bus)
	defer busLog.Unsubscribe()

	busMetrics := eventbus.NewMetricsExporter(bus, registry)
	busMetrics.Start(5 * time.Second)
	defer busMetrics.Stop()

	// === СЦЕНА ===
	opts := app.OptionsFromConfig(cfg)
	opts.Bus = bus
	opts.Metrics = sim.NewMetrics(registry)
	opts.Logger = logging.GetSimLogger()
	opts.PickingLogger = logging.GetPickingLogger()

	scene, err := app.NewScene(opts)
	if err != nil {
		return fmt.Errorf("создание сцены: %w", err)
	}
	defer scene.Close()

	mesh := app.NewMeshSummary(scene.Registry, logging.GetRenderLogger())
	scene.SetRenderer(mesh)

	if cfg.World.SeedBlocks {
		if err := scene.Seed(); err != nil {
			return fmt.Errorf("начальное содержимое: %w", err)
		}
	}

	loop := app.NewLoop(scene, cfg.Loop.FrameRate, logging.Default())

	// === REST API ===
	var rest *api.RestServer
	if cfg.Server.Enabled {
		rest, err = api.NewRestServer(api.Config{
			Port:     fmt.Sprintf(":%d", cfg.Server.GetRESTPort()),
			Scene:    scene,
			Executor: loop,
			Mesh:     mesh,
			Registry: registry,
			Logger:   logging.GetAPILogger(),
		})
		if err != nil {
			return err
		}
		go func() {
			if err := rest.Start(); err != nil {
				logging.Error("❌ Ошибка REST API: %v", err)
			}
		}()
		port := cfg.Server.GetRESTPort()
		logging.Info("   ❤️  Health check: http://localhost:%d/health", port)
		logging.Info("   💡 curl -X POST http://localhost:%d/api/pick -d '{\"x\":320,\"y\":240}'", port)
	}

	logging.Info("✅ Сцена запущена: %d кадров/с, %d тиков/с", cfg.Loop.FrameRate, sim.TicksPerSecond)

	// Блокируется до сигнала завершения
	if err := loop.Run(ctx); err != nil {
		return err
	}

	// === GRACEFUL SHUTDOWN ===
	if rest != nil {
		logging.Debug("Остановка REST API...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := rest.Stop(shutdownCtx); err != nil {
			logging.Error("❌ Ошибка остановки REST API: %v", err)
		}
	}
	return nil
}
