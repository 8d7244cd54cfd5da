package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/diwise/service-chassis/pkg/infrastructure/buildinfo"
	"github.com/diwise/service-chassis/pkg/infrastructure/env"
	"github.com/diwise/service-chassis/pkg/infrastructure/o11y"
	"github.com/oparl-tools/oparl-client/pkg/oparl"
	"github.com/oparl-tools/oparl-client/pkg/oparl/diag"
	"github.com/oparl-tools/oparl-client/pkg/oparl/types"
)

const (
	appName string = "oparl-explorer"
)

func main() {
	appVersion := buildinfo.SourceVersion()

	ctx, log, cleanup := o11y.Init(context.Background(), appName, appVersion, "json")
	defer cleanup()

	cfg := LoadConfiguration(ctx)

	options := []func(*oparl.Client){
		oparl.WithDiagnostics(diag.NewLogSink(log)),
	}
	if cfg.insecureTLS {
		options = append(options, oparl.WithInsecureTLS())
	}

	c := oparl.New(options...)

	system, err := c.FromID(ctx, cfg.entrypoint)
	if err != nil {
		log.Error("failed to fetch oparl system", "err", err.Error())
		os.Exit(1)
	}

	systemName, _ := system.Get(ctx, "name")
	log.Info("connected to oparl system", slog.String("id", system.ID()), slog.String("name", fmt.Sprint(systemName)))

	bodiesValue, err := system.Get(ctx, "body")
	if err != nil {
		log.Error("failed to resolve body list", "err", err.Error())
		os.Exit(1)
	}

	bodies, ok := bodiesValue.(types.ObjectList)
	if !ok {
		log.Error("the system's body field is not an external list")
		os.Exit(1)
	}

	count := 0
	iter := bodies.Items()

	for iter.Next(ctx) {
		body := iter.Value()

		name, _ := body.Get(ctx, "name")
		log.Info("body", slog.String("id", body.ID()), slog.String("name", fmt.Sprint(name)))

		count++
	}

	if err := iter.Err(); err != nil {
		log.Error("failed to iterate bodies", "err", err.Error())
		os.Exit(1)
	}

	log.Info("done", slog.Int("bodies", count))
}

type Config struct {
	entrypoint  string
	insecureTLS bool
}

func LoadConfiguration(ctx context.Context) Config {
	return Config{
		entrypoint:  env.GetVariableOrDefault(ctx, "OPARL_ENTRYPOINT", "https://politik-bei-uns.de/oparl"),
		insecureTLS: env.GetVariableOrDefault(ctx, "OPARL_INSECURE_TLS", "false") == "true",
	}
}
