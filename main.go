//go:build linux || darwin

package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	palSignal "multitun/infrastructure/PAL/signal"
	"multitun/infrastructure/logging"
	"multitun/infrastructure/settings"
	"multitun/infrastructure/tun"
	"multitun/presentation/elevation"
	"multitun/presentation/runners/probe"
	"multitun/presentation/signals/shutdown"
	"os"
	"time"
)

const PackageName = "multitun"

func main() {
	configPath := flag.String("config", "", "path to a JSON interface configuration")
	statsInterval := flag.Duration("stats", 30*time.Second, "interval between traffic summaries, 0 to disable")
	flag.Parse()

	processElevation := elevation.NewProcessElevation()
	if !processElevation.IsElevated() {
		fmt.Printf("Warning: %s must be run with admin privileges: %s\n", PackageName, processElevation.Hint())
		os.Exit(1)
	}

	cfg := settings.Tun{}
	if *configPath != "" {
		loaded, err := settings.LoadTun(*configPath)
		if err != nil {
			log.Fatal(err)
		}
		cfg = loaded
	}

	appCtx, appCtxCancel := context.WithCancel(context.Background())
	defer appCtxCancel()

	logger := logging.NewLogLogger()
	shutdown.NewHandler(appCtx, appCtxCancel, palSignal.NewDefaultProvider(), shutdown.NewNotifier(), logger).Handle()

	runner := probe.NewRunner(tun.DefaultBackend(logger), cfg, logger, *statsInterval)
	if err := runner.Run(appCtx); err != nil {
		log.Fatal(err)
	}
}
