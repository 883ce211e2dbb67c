package main

import (
	"context"
	"strings"

	"github.com/couchcryptid/humidity-adviser/internal/domain"
)

type CoordinateOptions struct {
	Latitude  float64 `long:"lat" description:"latitude in decimal degrees" required:"true"`
	Longitude float64 `long:"lon" description:"longitude in decimal degrees" required:"true"`
	Timezone  string  `long:"timezone" short:"t" description:"IANA timezone or auto" default:"auto"`
}

type ForecastCommand struct {
	CoordinateOptions
	Hourly       string `long:"hourly" description:"comma-separated hourly fields, all humidity fields if unset"`
	Daily        string `long:"daily" description:"comma-separated daily fields, all humidity fields if unset"`
	NoHourly     bool   `long:"no-hourly" description:"request no hourly fields"`
	NoDaily      bool   `long:"no-daily" description:"request no daily fields"`
	PastDays     int    `long:"past-days" description:"days of history to include" default:"0"`
	ForecastDays int    `long:"forecast-days" description:"days of forecast to include" default:"7"`
}

type CurrentCommand struct {
	CoordinateOptions
}

type ConditionsCommand struct {
	CoordinateOptions
}

var (
	forecastCommand   = &ForecastCommand{}
	currentCommand    = &CurrentCommand{}
	conditionsCommand = &ConditionsCommand{}
)

// query builds the forecast query. --no-hourly and --no-daily win over the
// field lists.
func (c *ForecastCommand) query() domain.ForecastQuery {
	q := domain.NewForecastQuery()
	q.Hourly = splitFields(c.Hourly, c.NoHourly)
	q.Daily = splitFields(c.Daily, c.NoDaily)
	q.PastDays = c.PastDays
	q.ForecastDays = c.ForecastDays
	q.Timezone = c.Timezone
	return q
}

func splitFields(list string, none bool) []string {
	if none {
		return []string{}
	}
	if list == "" {
		return nil
	}
	var fields []string
	for _, f := range strings.Split(list, ",") {
		if f = strings.TrimSpace(f); f != "" {
			fields = append(fields, f)
		}
	}
	return fields
}

func (c *ForecastCommand) Execute(args []string) error {
	svc, err := services()
	if err != nil {
		return err
	}
	forecast, err := svc.Forecaster.HumidityForecast(context.Background(), c.Latitude, c.Longitude, c.query())
	if err != nil {
		return err
	}
	return printJSON(forecast)
}

func (c *CurrentCommand) Execute(args []string) error {
	svc, err := services()
	if err != nil {
		return err
	}
	current, err := svc.Forecaster.CurrentHumidity(context.Background(), c.Latitude, c.Longitude, c.Timezone)
	if err != nil {
		return err
	}
	return printJSON(current)
}

func (c *ConditionsCommand) Execute(args []string) error {
	svc, err := services()
	if err != nil {
		return err
	}
	conditions, err := svc.Forecaster.CurrentConditions(context.Background(), c.Latitude, c.Longitude, c.Timezone)
	if err != nil {
		return err
	}
	return printJSON(struct {
		domain.CurrentConditions
		WeatherDescription string `json:"weather_description,omitempty"`
	}{conditions, conditions.Description()})
}

func init() {
	if _, err := parser.AddCommand("forecast",
		"fetch a humidity forecast",
		"fetch hourly and daily humidity series for a location",
		forecastCommand); err != nil {
		panic(err.Error())
	}
	if _, err := parser.AddCommand("current",
		"latest hourly humidity",
		"print the most recent hourly humidity sample of the forecast window",
		currentCommand); err != nil {
		panic(err.Error())
	}
	if _, err := parser.AddCommand("conditions",
		"current weather conditions",
		"print current temperature, relative humidity and weather code",
		conditionsCommand); err != nil {
		panic(err.Error())
	}
}
