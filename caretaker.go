package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/callummance/caretaker/bot"
	"github.com/callummance/caretaker/config"
	"github.com/sirupsen/logrus"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("Invalid configuration: %v", err)
	}
	if err := cfg.SetupLogging(); err != nil {
		logrus.Fatalf("Failed to set up logging: %v", err)
	}
	bot, err := bot.Init(cfg)
	if err != nil {
		logrus.Fatalf("Failed to start discord bot: %v", err)
	}
	logrus.Infof("Bot is now running. Press ^+C to exit.")
	addURL, err := bot.BotAddURL()
	if err != nil {
		logrus.Errorf("Failed to generate bot add URL due to error %v", err)
	} else {
		logrus.Infof("Go to `%v` to add bot to your server", addURL)
	}
	closeChan := make(chan os.Signal, 1)
	signal.Notify(closeChan, syscall.SIGINT, syscall.SIGTERM)
	<-closeChan

	bot.Close()
	fmt.Println("Goodbye!")
}
