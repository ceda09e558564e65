package main

import (
	"time"

	"github.com/rs/zerolog/log"

	"github.com/thatsimonsguy/firesim/db"
	"github.com/thatsimonsguy/firesim/internal/api"
	"github.com/thatsimonsguy/firesim/internal/config"
	"github.com/thatsimonsguy/firesim/internal/configdoc"
	"github.com/thatsimonsguy/firesim/internal/datadog"
	"github.com/thatsimonsguy/firesim/internal/discovery"
	"github.com/thatsimonsguy/firesim/internal/env"
	"github.com/thatsimonsguy/firesim/internal/logging"
	"github.com/thatsimonsguy/firesim/internal/match"
	"github.com/thatsimonsguy/firesim/internal/model"
	"github.com/thatsimonsguy/firesim/internal/notifications"
	"github.com/thatsimonsguy/firesim/internal/plan"
	"github.com/thatsimonsguy/firesim/internal/sim"
)

func main() {
	cfg := config.Load()
	env.Cfg = &cfg
	logging.Init(cfg.LogLevel, cfg.LogFile)

	log.Info().
		Str("plan_file", cfg.PlanFile).
		Str("config_doc", cfg.ConfigDocFile).
		Msg("Starting fire-alarm simulator")

	datadog.InitMetrics()
	notifications.Init()

	snap, err := plan.Load(cfg.PlanFile)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load floor-plan snapshot")
	}
	log.Info().
		Int("devices", len(snap.Devices)).
		Int("connections", len(snap.Connections)).
		Msg("Loaded floor plan")

	doc, err := configdoc.LoadFile(cfg.ConfigDocFile)
	if err != nil {
		// Validation failures block loading; the message names the field.
		log.Fatal().Err(err).Msg("Configuration document rejected")
	}
	log.Info().
		Str("project", doc.ProjectName).
		Int("devices", len(doc.Devices)).
		Int("rules", len(doc.CauseEffect)).
		Msg("Loaded configuration document")

	history, err := db.Open(cfg.DBPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open history database")
	}
	defer history.Close()

	loops := discovery.DiscoverAll(snap)
	for driverID, devices := range loops {
		broken := false
		for _, d := range devices {
			if d.DiscoveredFrom == model.DiscoveredIn {
				broken = true
				break
			}
		}
		datadog.Gauge("discovery.devices", float64(len(devices)), "loop_driver:"+driverID)
		if err := db.InsertDiscoveryRun(history, driverID, len(devices), broken); err != nil {
			log.Warn().Err(err).Str("loop_driver", driverID).Msg("Failed to record discovery run")
		}
		log.Info().
			Str("loop_driver", driverID).
			Int("devices", len(devices)).
			Bool("broken_loop", broken).
			Msg("Loop discovery complete")
	}

	report := match.Verify(doc, snap)
	datadog.Gauge("match.matched", float64(len(report.Matched)))
	datadog.Gauge("match.missing", float64(len(report.Missing)))
	datadog.Gauge("match.type_mismatch", float64(len(report.TypeMismatch)))
	datadog.Gauge("match.extra", float64(len(report.Extra)))
	if err := db.InsertMatchReport(history, len(report.Matched), len(report.Missing), len(report.TypeMismatch), len(report.Extra), report.Valid()); err != nil {
		log.Warn().Err(err).Msg("Failed to record match report")
	}
	if !report.Valid() {
		log.Warn().
			Strs("missing", report.Missing).
			Strs("type_mismatch", report.TypeMismatch).
			Msg("Installation does not realize the configuration")
	}

	session := sim.New(doc, snap, history)
	session.Run(time.Duration(cfg.TickIntervalMS) * time.Millisecond)
	defer session.Stop()

	server := api.NewServer(loops, report, session)
	if err := server.Start(cfg.APIPort); err != nil {
		log.Fatal().Err(err).Msg("API server failed")
	}
}
