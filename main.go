package main

import (
	"fmt"

	"github.com/samuelfneumann/goarm/agent/random"
	"github.com/samuelfneumann/goarm/environment/envconfig"
	"github.com/samuelfneumann/goarm/experiment"
	"github.com/samuelfneumann/goarm/experiment/trackers"
)

func main() {
	var seed uint64 = 192382

	// Create the environment config with default physical parameters
	envConf, err := envconfig.NewConfig(envconfig.Joint, 250, 0.99)
	if err != nil {
		panic(err)
	}

	// Create the experiment configuration
	conf := experiment.Config{
		Type:        experiment.OnlineExp,
		MaxSteps:    10_000,
		EnvConfig:   envConf,
		AgentConfig: random.Config{},
	}

	// Experiment
	var tracker trackers.Tracker = trackers.NewReturn("./data.bin")
	e, err := conf.CreateExp(seed, []trackers.Tracker{tracker})
	if err != nil {
		panic(err)
	}

	if err := e.Run(); err != nil {
		panic(err)
	}
	e.Save()

	data := trackers.LoadData("./data.bin")
	fmt.Println(data[len(data)-10:])
}
