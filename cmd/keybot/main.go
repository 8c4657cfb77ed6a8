package main

import (
	"log"

	"github.com/joho/godotenv"

	corebootstrap "github.com/m3rciful/keybot/core/bootstrap"
	corecmd "github.com/m3rciful/keybot/core/cmd"
	"github.com/m3rciful/keybot/internal/bot"
	appconfig "github.com/m3rciful/keybot/internal/config"
)

func main() {
	// Local development convenience; absence of .env is not an error.
	_ = godotenv.Load()

	err := corecmd.Run(corecmd.Options{
		DefaultConfigPath: "config.yaml",
		LoadConfig: func(path string) (corecmd.ConfigCarrier, error) {
			cfg, err := appconfig.Load(path)
			if err != nil {
				return nil, err
			}
			return cfg, nil
		},
		Bootstrap: func(carrier corecmd.ConfigCarrier) (corecmd.TelegramApp, error) {
			cfg := carrier.(*appconfig.Config)
			res, err := corebootstrap.Run(corebootstrap.Options{
				Config:   cfg.CoreConfig(),
				Database: cfg.Database,
			})
			if err != nil {
				return nil, err
			}
			return bot.New(cfg, res.DB), nil
		},
	})
	if err != nil {
		log.Fatalf("fatal: %v", err)
	}
}
