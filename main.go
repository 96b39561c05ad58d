package main

import (
	"os"

	"github.com/vishwajeetguru/smart-truck-manager/Cache"
	"github.com/vishwajeetguru/smart-truck-manager/Config"
	"github.com/vishwajeetguru/smart-truck-manager/CronJobs"
	"github.com/vishwajeetguru/smart-truck-manager/FiberConfig"
	"github.com/vishwajeetguru/smart-truck-manager/Logger"
	"github.com/vishwajeetguru/smart-truck-manager/Models"
	"github.com/vishwajeetguru/smart-truck-manager/email"
)

func main() {
	cfg := Config.Load()
	Logger.SetLevel(cfg.Log.Level)

	db, err := Models.Connect(cfg.Database)
	if err != nil {
		Logger.Log.Fatal().Err(err).Msg("database connection failed")
	}

	services := FiberConfig.Services{
		OTP:  Cache.NewOTPStore(cfg.Cache, db),
		Mail: email.NewSender(cfg.Email),
	}

	var reminders *CronJobs.Reminders
	switch {
	case !cfg.Cron.Enabled:
		Logger.Log.Info().Msg("scheduled jobs disabled")
	case !cfg.Email.Configured():
		Logger.Log.Info().Msg("smtp not configured, scheduled reminders skipped")
	default:
		reminders = CronJobs.NewReminders(db, services.Mail)
		if err := reminders.Start(); err != nil {
			Logger.Log.Error().Err(err).Msg("failed to start reminders")
			reminders = nil
		}
	}

	err = FiberConfig.FiberConfig(cfg, db, services)
	if reminders != nil {
		reminders.Stop()
	}
	if err != nil {
		Logger.Log.Error().Err(err).Msg("server stopped")
		os.Exit(1)
	}
}
