package main

import (
	"context"
)

type GeocodeCommand struct {
	City    string `long:"city" short:"c" description:"city name" required:"true"`
	Country string `long:"country" short:"C" description:"country name or code" required:"true"`
	State   string `long:"state" short:"s" description:"state or region"`
}

type ReverseCommand struct {
	Latitude  float64 `long:"lat" description:"latitude in decimal degrees" required:"true"`
	Longitude float64 `long:"lon" description:"longitude in decimal degrees" required:"true"`
}

var (
	geocodeCommand = &GeocodeCommand{}
	reverseCommand = &ReverseCommand{}
)

func (c *GeocodeCommand) Execute(args []string) error {
	svc, err := services()
	if err != nil {
		return err
	}
	loc, err := svc.Resolver.ForwardGeocode(context.Background(), c.City, c.Country, c.State)
	if err != nil {
		return err
	}
	return printJSON(loc)
}

func (c *ReverseCommand) Execute(args []string) error {
	svc, err := services()
	if err != nil {
		return err
	}
	loc, err := svc.Resolver.ReverseGeocode(context.Background(), c.Latitude, c.Longitude)
	if err != nil {
		return err
	}
	return printJSON(loc)
}

func init() {
	if _, err := parser.AddCommand("geocode",
		"resolve a city to coordinates",
		"resolve a city and country (state optional) to a location with coordinates",
		geocodeCommand); err != nil {
		panic(err.Error())
	}
	if _, err := parser.AddCommand("reverse",
		"resolve coordinates to a place",
		"resolve a latitude and longitude to the nearest named location",
		reverseCommand); err != nil {
		panic(err.Error())
	}
}
