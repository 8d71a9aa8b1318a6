package cmd

import (
	"github.com/spf13/viper"

	"github.com/hirewire/loadgen/internal/adapters/scenario"
	"github.com/hirewire/loadgen/internal/adapters/seedstore/postgres"
	"github.com/hirewire/loadgen/internal/config"
	"github.com/hirewire/loadgen/internal/ports"
)

// app holds the seams the commands share. Construction stays cheap and
// side-effect free; real connections happen inside the command that
// needs them.
type app struct {
	loadConfig func(scenarioPath string) (config.Config, error)
	openStore  func(dsn string) (ports.SeedStore, func() error, error)
	clock      ports.Clock
}

func wireApp() *app {
	return &app{
		loadConfig: loadConfig,
		openStore:  openSeedStore,
		clock:      ports.SystemClock{},
	}
}

func loadConfig(scenarioPath string) (config.Config, error) {
	v := viper.New()
	v.AutomaticEnv()
	if scenarioPath != "" {
		if err := scenario.Apply(v, scenarioPath, false); err != nil {
			return config.Config{}, err
		}
	}
	return config.Load(v)
}

func openSeedStore(dsn string) (ports.SeedStore, func() error, error) {
	db, err := postgres.Open(dsn)
	if err != nil {
		return nil, nil, err
	}
	return postgres.NewStore(db, ports.SystemClock{}), db.Close, nil
}
