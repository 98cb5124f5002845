package main

import (
	"fmt"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-signup/internal/config"
	"github.com/goliatone/go-signup/internal/logging"
	"github.com/goliatone/go-signup/pkg/metrics"
	"github.com/goliatone/go-signup/pkg/model"
)

// app bundles what every command needs after flags are parsed.
type app struct {
	cfg      config.Config
	logger   *zap.SugaredLogger
	registry *prometheus.Registry
	metrics  *metrics.Metrics
}

func newApp(flags *globalFlags) (*app, error) {
	cfg, err := config.Load(flags.configPath)
	if err != nil {
		return nil, err
	}
	level := cfg.Log.Level
	if flags.logLevel != "" {
		level = flags.logLevel
	}
	logger, err := logging.New(level, cfg.Log.Format, os.Stderr)
	if err != nil {
		return nil, err
	}

	registry := prometheus.NewRegistry()
	return &app{
		cfg:      cfg,
		logger:   logger,
		registry: registry,
		metrics:  metrics.New(registry),
	}, nil
}

// logMetrics writes the counter totals at debug level.
func (a *app) logMetrics() {
	families, err := a.registry.Gather()
	if err != nil {
		a.logger.Warnw("gather metrics", "error", err)
		return
	}
	for _, family := range families {
		total := 0.0
		for _, metric := range family.GetMetric() {
			total += metric.GetCounter().GetValue()
		}
		a.logger.Debugw("metric", "name", family.GetName(), "total", total)
	}
}

func (a *app) close() {
	_ = a.logger.Sync()
}

// snapshotFile is the on-disk form of a snapshot. JSON is valid YAML, so one
// decoder reads both. Errors optionally carries server feedback keyed by
// field path.
type snapshotFile struct {
	Terms  bool                `yaml:"terms"`
	Errors map[string][]string `yaml:"errors"`
	Values map[string]string   `yaml:",inline"`
}

type snapshotInput struct {
	snap   model.FormSnapshot
	errors map[string][]string
}

func readSnapshot(path string) (snapshotInput, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return snapshotInput{}, fmt.Errorf("read snapshot: %w", err)
	}
	return parseSnapshot(data)
}

func parseSnapshot(data []byte) (snapshotInput, error) {
	var file snapshotFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return snapshotInput{}, fmt.Errorf("decode snapshot: %w", err)
	}
	values := make(map[model.FieldName]string, len(file.Values))
	for raw, value := range file.Values {
		name, err := model.ParseFieldName(raw)
		if err != nil {
			return snapshotInput{}, fmt.Errorf("decode snapshot: %w", err)
		}
		values[name] = value
	}
	return snapshotInput{
		snap:   model.NewSnapshot(values, file.Terms),
		errors: file.Errors,
	}, nil
}

func writeOutput(path string, data []byte, stdout func([]byte) error) error {
	if path == "" {
		return stdout(data)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}
