// Command autoservice-bot runs the Telegram front end of the service shop database.
package main

import (
	"log"

	corecmd "github.com/m3rciful/autoservice-bot/core/cmd"
	"github.com/m3rciful/autoservice-bot/internal/bot"
	"github.com/m3rciful/autoservice-bot/internal/config"
)

func main() {
	err := corecmd.Run(corecmd.Options{
		ConfigEnvVar:      "CONFIG_PATH",
		DefaultConfigPath: "config.yaml",
		LoadConfig: func(path string) (corecmd.ConfigCarrier, error) {
			cfg, err := config.Load(path)
			if err != nil {
				return nil, err
			}
			return cfg, nil
		},
		Bootstrap: bot.Bootstrap,
	})
	if err != nil {
		log.Fatal(err)
	}
}
