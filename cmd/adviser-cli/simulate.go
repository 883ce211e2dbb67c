package main

import (
	"context"
	"fmt"
	"os"

	"github.com/couchcryptid/humidity-adviser/internal/domain"
	"github.com/couchcryptid/humidity-adviser/internal/scenario"
	"github.com/jessevdk/go-flags"
	"gopkg.in/yaml.v3"
)

type WindowOptions struct {
	Start      string `long:"start" short:"s" description:"first day as YYYY-MM-DD, today if left blank"`
	Days       int    `long:"days" short:"d" description:"length of the window in days" default:"7"`
	Resolution int    `long:"resolution" short:"r" description:"sampling resolution in minutes" default:"15"`
}

type ScenarioCommand struct {
	WindowOptions
	List bool `long:"list" short:"l" description:"list registered scenarios and exit"`

	Args struct {
		Name string
	} `positional-args:"yes"`
}

type SimulateCommand struct {
	WindowOptions
	Scenario string `long:"scenario" description:"scenario name" default:"one-bed-flat"`
	ID       string `long:"id" description:"job identifier echoed in logs"`

	Args struct {
		RoomFile flags.Filename
	} `positional-args:"yes" required:"true"`
}

var (
	scenarioCommand = &ScenarioCommand{}
	simulateCommand = &SimulateCommand{}
)

func (c *ScenarioCommand) Execute(args []string) error {
	registry := scenario.Default()
	if c.List {
		return printJSON(registry.Names())
	}

	name := c.Args.Name
	if name == "" {
		name = domain.DefaultScenario
	}
	start, err := parseDate(c.Start)
	if err != nil {
		return err
	}
	sources, err := registry.Synthesize(name, scenario.Window{
		Start:             start,
		Days:              c.Days,
		ResolutionMinutes: c.Resolution,
	})
	if err != nil {
		return err
	}
	return printJSON(sources)
}

func (c *SimulateCommand) Execute(args []string) error {
	room, err := readRoomFile(string(c.Args.RoomFile))
	if err != nil {
		return err
	}
	start, err := parseDate(c.Start)
	if err != nil {
		return err
	}
	svc, err := services()
	if err != nil {
		return err
	}
	result, err := svc.Runner.Run(context.Background(), domain.SimulationJob{
		ID:                c.ID,
		Scenario:          c.Scenario,
		StartDate:         start,
		Days:              c.Days,
		ResolutionMinutes: c.Resolution,
		Room:              room,
	})
	if err != nil {
		return err
	}
	return printJSON(result)
}

// readRoomFile decodes a room from YAML. Unknown keys are rejected.
func readRoomFile(path string) (domain.Room, error) {
	f, err := os.Open(path)
	if err != nil {
		return domain.Room{}, err
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	var room domain.Room
	if err := dec.Decode(&room); err != nil {
		return domain.Room{}, fmt.Errorf("read room file %s: %w", path, err)
	}
	return room, nil
}

func init() {
	if _, err := parser.AddCommand("scenario",
		"synthesize scenario sources",
		"synthesize the humidity sources of a scenario and write them as JSON",
		scenarioCommand); err != nil {
		panic(err.Error())
	}
	if _, err := parser.AddCommand("simulate",
		"simulate a room",
		"simulate a room described in a YAML file under a scenario, using the configured simulation engine",
		simulateCommand); err != nil {
		panic(err.Error())
	}
}
