package httpadapter

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/couchcryptid/humidity-adviser/internal/domain"
	"github.com/couchcryptid/humidity-adviser/internal/scenario"
	"github.com/gin-gonic/gin"
)

func (s *Server) handleGeocode(c *gin.Context) {
	loc, err := s.deps.Resolver.ForwardGeocode(c.Request.Context(),
		c.Query("city"), c.Query("country"), c.Query("state"))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, loc)
}

func (s *Server) handleReverse(c *gin.Context) {
	lat, lon, err := coordinates(c)
	if err != nil {
		s.writeError(c, err)
		return
	}
	loc, err := s.deps.Resolver.ReverseGeocode(c.Request.Context(), lat, lon)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, loc)
}

func (s *Server) handleForecast(c *gin.Context) {
	lat, lon, err := coordinates(c)
	if err != nil {
		s.writeError(c, err)
		return
	}
	q := domain.NewForecastQuery()
	q.Hourly = fieldList(c, "hourly")
	q.Daily = fieldList(c, "daily")
	if q.PastDays, err = intParam(c, "past_days", 0); err != nil {
		s.writeError(c, err)
		return
	}
	if q.ForecastDays, err = intParam(c, "forecast_days", domain.DefaultForecastDays); err != nil {
		s.writeError(c, err)
		return
	}
	q.Timezone = c.DefaultQuery("timezone", domain.DefaultTimezone)

	forecast, err := s.deps.Forecaster.HumidityForecast(c.Request.Context(), lat, lon, q)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, forecast)
}

func (s *Server) handleCurrent(c *gin.Context) {
	lat, lon, err := coordinates(c)
	if err != nil {
		s.writeError(c, err)
		return
	}
	current, err := s.deps.Forecaster.CurrentHumidity(c.Request.Context(), lat, lon,
		c.DefaultQuery("timezone", domain.DefaultTimezone))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, current)
}

func (s *Server) handleConditions(c *gin.Context) {
	lat, lon, err := coordinates(c)
	if err != nil {
		s.writeError(c, err)
		return
	}
	conditions, err := s.deps.Forecaster.CurrentConditions(c.Request.Context(), lat, lon,
		c.DefaultQuery("timezone", domain.DefaultTimezone))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, conditionsResponse{
		CurrentConditions:  conditions,
		WeatherDescription: conditions.Description(),
	})
}

type conditionsResponse struct {
	domain.CurrentConditions
	WeatherDescription string `json:"weather_description,omitempty"`
}

type scenarioInfo struct {
	Name        string `json:"name"`
	DisplayName string `json:"display_name"`
	Description string `json:"description,omitempty"`
}

func (s *Server) handleListScenarios(c *gin.Context) {
	names := s.deps.Scenarios.Names()
	out := make([]scenarioInfo, 0, len(names))
	for _, name := range names {
		sc, err := s.deps.Scenarios.Lookup(name)
		if err != nil {
			continue
		}
		out = append(out, scenarioInfo{Name: sc.Name, DisplayName: sc.DisplayName, Description: sc.Description})
	}
	c.JSON(http.StatusOK, gin.H{"scenarios": out})
}

func (s *Server) handleScenario(c *gin.Context) {
	sc, err := s.deps.Scenarios.Lookup(c.Param("name"))
	if err != nil {
		s.writeError(c, err)
		return
	}

	start := domain.Today()
	if v := c.Query("start"); v != "" {
		start, err = time.Parse(time.DateOnly, v)
		if err != nil {
			s.writeError(c, &domain.ValidationError{Field: "start", Message: "must be a YYYY-MM-DD date"})
			return
		}
	}
	days, err := intParam(c, "days", domain.DefaultSimulationDays)
	if err != nil {
		s.writeError(c, err)
		return
	}
	resolution, err := intParam(c, "resolution", domain.DefaultResolutionMinutes)
	if err != nil {
		s.writeError(c, err)
		return
	}

	sources, err := sc.Factory(scenario.Window{Start: start, Days: days, ResolutionMinutes: resolution})
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"name":         sc.Name,
		"display_name": sc.DisplayName,
		"sources":      sources,
	})
}

func (s *Server) handleSimulate(c *gin.Context) {
	var job domain.SimulationJob
	if err := c.ShouldBindJSON(&job); err != nil {
		s.writeError(c, &domain.ValidationError{Message: "invalid simulation job: " + err.Error()})
		return
	}
	result, err := s.deps.Runner.Run(c.Request.Context(), job)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// writeError maps an error kind to a status code and a JSON body.
func (s *Server) writeError(c *gin.Context, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Warn("request failed", "path", c.FullPath(), "status", status, "error", err)
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func statusFor(err error) int {
	var (
		validation   *domain.ValidationError
		notFound     *domain.NotFoundError
		connectivity *domain.ConnectivityError
		remote       *domain.RemoteError
		service      *domain.ServiceError
	)
	switch {
	case errors.As(err, &validation):
		return http.StatusBadRequest
	case errors.As(err, &notFound):
		return http.StatusNotFound
	case errors.As(err, &remote):
		return http.StatusBadGateway
	case errors.As(err, &connectivity), errors.As(err, &service):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func coordinates(c *gin.Context) (float64, float64, error) {
	lat, err := floatParam(c, "lat")
	if err != nil {
		return 0, 0, err
	}
	lon, err := floatParam(c, "lon")
	if err != nil {
		return 0, 0, err
	}
	return lat, lon, nil
}

func floatParam(c *gin.Context, name string) (float64, error) {
	v, ok := c.GetQuery(name)
	if !ok || v == "" {
		return 0, &domain.ValidationError{Field: name, Message: "is required"}
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, &domain.ValidationError{Field: name, Message: "must be a number"}
	}
	return f, nil
}

func intParam(c *gin.Context, name string, fallback int) (int, error) {
	v := c.Query(name)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, &domain.ValidationError{Field: name, Message: "must be an integer"}
	}
	return n, nil
}

// fieldList reads a comma-separated field list. An absent parameter means
// every field (nil); a present but empty one means none.
func fieldList(c *gin.Context, name string) []string {
	v, ok := c.GetQuery(name)
	if !ok {
		return nil
	}
	fields := []string{}
	for _, f := range strings.Split(v, ",") {
		if f = strings.TrimSpace(f); f != "" {
			fields = append(fields, f)
		}
	}
	return fields
}
