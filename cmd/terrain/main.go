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

	"github.com/annel0/terrain-erosion/internal/config"
	"github.com/annel0/terrain-erosion/internal/logging"
	"github.com/annel0/terrain-erosion/internal/metrics"
	"github.com/annel0/terrain-erosion/internal/observability"
	"github.com/annel0/terrain-erosion/internal/pipeline"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
)

func main() {
	var (
		configPath = flag.String("config", "", "YAML config path (or TERRAIN_CONFIG)")
		size       = flag.Int("size", 0, "Heightfield side length")
		iterations = flag.Int("iterations", 0, "Number of erosion droplets")
		seed       = flag.Int64("seed", 0, "Noise seed")
		erosionSd  = flag.Int64("erosion-seed", 0, "Droplet spawn seed")
		preset     = flag.String("preset", "", "Erosion preset: default, subtle, heavy")
		basis      = flag.String("basis", "", "Noise basis: perlin, simplex")
		serve      = flag.Bool("serve", false, "Keep /metrics up after the run until SIGINT")
	)
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("❌ Ошибка загрузки конфигурации: %v", err)
	}

	// Флаги, заданные явно, важнее конфигурации
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "size":
			cfg.Terrain.Size = *size
		case "iterations":
			cfg.Terrain.Iterations = iterations
		case "seed":
			cfg.Noise.Seed = seed
		case "erosion-seed":
			cfg.Erosion.Seed = *erosionSd
		case "preset":
			cfg.Erosion.Preset = *preset
		case "basis":
			cfg.Noise.Basis = *basis
		}
	})

	level, err := logging.ParseLevel(cfg.Logging.Level)
	if err != nil {
		log.Fatalf("❌ %v", err)
	}
	if err := logging.InitDefaultLogger("terrain", cfg.Logging.Dir, level); err != nil {
		log.Fatalf("❌ Ошибка инициализации логирования: %v", err)
	}

	// os.Exit не выполняет defer, поэтому выходим только после run
	err = run(cfg, *serve)
	logging.CloseDefaultLogger()
	if err != nil {
		os.Exit(1)
	}
}

// run выполняет прогон; все отложенные остановки (OTLP, /metrics) срабатывают до выхода
func run(cfg *config.Config, serve bool) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Telemetry.Enabled {
		shutdown, err := observability.InitTelemetry(ctx, cfg.Telemetry.ServiceName, uuid.NewString())
		if err != nil {
			logging.Error("❌ Ошибка инициализации OpenTelemetry: %v", err)
		} else {
			defer func() {
				if err := shutdown(context.Background()); err != nil {
					logging.Error("Ошибка остановки OpenTelemetry: %v", err)
				}
			}()
		}
	}

	reg := prometheus.NewRegistry()
	recorder := metrics.NewErosionMetrics(reg)

	var exporter *metrics.Exporter
	if cfg.Metrics.Enabled || serve {
		exporter = metrics.NewExporter(cfg.Metrics.GetAddr(), reg)
		exporter.StartHTTP()
	}

	p, err := pipeline.New(cfg, recorder)
	if err != nil {
		logging.Error("❌ %v", err)
		return stopExporter(exporter, err)
	}

	res, err := p.Run(ctx)
	if err != nil {
		logging.Error("❌ Ошибка прогона: %v", err)
		return stopExporter(exporter, fmt.Errorf("прогон: %w", err))
	}

	min, max := res.Field.MinMax()
	n := float64(res.Field.Size() * res.Field.Size())
	logging.Info("🗺️ Карта %d×%d: min=%.4f max=%.4f mean=%.4f",
		res.Field.Size(), res.Field.Size(), min, max, res.Field.Sum()/n)
	logging.Info("💧 Капли: %d (до конца жизни %d, застряли %d, вытекли %d, испарились %d), шагов %d",
		res.Stats.Droplets, res.Stats.Expired, res.Stats.Stuck, res.Stats.Exited, res.Stats.Evaporated, res.Stats.Steps)
	logging.Info("⛰️ Размыто %.4f, отложено %.4f, унесено %.4f",
		res.Stats.Eroded, res.Stats.Deposited, res.Stats.SedimentLost)

	if snap, err := metrics.TakeProcessSnapshot(); err == nil {
		logging.Info("🖥️ CPU %.1f%%, RSS %.1f MB, heap %.1f MB, GC %d",
			snap.CPUPercent, snap.RSSMB, snap.AllocMB, snap.NumGC)
	} else {
		logging.Debug("Статистика процесса недоступна: %v", err)
	}

	if exporter != nil && serve {
		logging.Info("📡 Метрики доступны до получения сигнала завершения")
		<-ctx.Done()
	}
	if err := stopExporter(exporter, nil); err != nil {
		return err
	}
	logging.Info("👋 Завершено")
	return nil
}

// stopExporter останавливает /metrics и возвращает runErr, если он был
func stopExporter(exporter *metrics.Exporter, runErr error) error {
	if exporter == nil {
		return runErr
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := exporter.Stop(shutdownCtx); err != nil {
		logging.Error("Ошибка остановки /metrics: %v", err)
		if runErr == nil {
			return fmt.Errorf("остановка /metrics: %w", err)
		}
	}
	return runErr
}
