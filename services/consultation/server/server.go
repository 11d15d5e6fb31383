// Copyright (C) 2025 PakarTani (dev@pakartani.id)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package server wires the consultation service together: knowledge
// base, consultation log, metrics, tracing, and the gin router. Both
// the service container entrypoint and the CLI serve command run it.
package server

import (
	"context"
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/pakartani/sipakar/services/consultation/history"
	"github.com/pakartani/sipakar/services/consultation/observability"
	"github.com/pakartani/sipakar/services/consultation/routes"
	"github.com/pakartani/sipakar/services/knowledge"
	"github.com/pakartani/sipakar/services/knowledge/seed"

	// --- OpenTelemetry imports ---
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

// Config holds everything Run needs. Zero values fall back to the
// embedded knowledge base and the default port.
type Config struct {
	// Port the HTTP server listens on. Default "8515".
	Port string

	// RulesFile is an external knowledge-base YAML overriding the
	// embedded seed. Edits to it are hot-reloaded.
	RulesFile string

	// DataDir is the BadgerDB directory for the consultation log.
	// Default "./data/consultations".
	DataDir string

	// OTLPEndpoint enables tracing when set (host:port of an OTLP
	// gRPC collector).
	OTLPEndpoint string
}

func initTracer(endpoint string) (func(context.Context), error) {
	ctx := context.Background()

	if endpoint == "" {
		// No collector configured, tracing stays off.
		return func(context.Context) {}, nil
	}
	conn, err := grpc.NewClient(endpoint,
		grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, err
	}
	traceExporter, err := otlptracegrpc.New(ctx, otlptracegrpc.WithGRPCConn(conn))
	if err != nil {
		return nil, err
	}
	res, err := resource.New(ctx,
		resource.WithAttributes(semconv.ServiceNameKey.String("consultation-service")))
	if err != nil {
		return nil, err
	}
	bsp := sdktrace.NewBatchSpanProcessor(traceExporter)
	traceProvider := sdktrace.NewTracerProvider(
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
		sdktrace.WithResource(res),
		sdktrace.WithSpanProcessor(bsp))
	otel.SetTracerProvider(traceProvider)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(propagation.
		TraceContext{}, propagation.Baggage{}))

	return func(ctx context.Context) {
		ctx, cancel := context.WithTimeout(ctx, time.Second*5)
		defer cancel()
		if err := traceExporter.Shutdown(ctx); err != nil {
			slog.Error("failed to shutdown OTLP exporter", "error", err)
		}
	}, nil
}

// loadKnowledge prefers an external rules file over the embedded seed.
// When a file is used, a watcher keeps the store in sync with edits.
func loadKnowledge(ctx context.Context, rulesFile string) (*knowledge.Store, error) {
	if rulesFile == "" {
		slog.Info("no rules file configured, using the embedded knowledge base")
		return knowledge.Load(seed.Rules)
	}

	store, err := knowledge.LoadFile(rulesFile)
	if err != nil {
		return nil, err
	}
	slog.Info("loaded external knowledge base", "path", rulesFile,
		"rules", len(store.Snapshot()))

	watcher, err := knowledge.NewFileWatcher(rulesFile, store)
	if err != nil {
		slog.Warn("knowledge base hot-reload disabled", "error", err)
		return store, nil
	}
	go watcher.Start(ctx)
	return store, nil
}

// Run starts the consultation service and blocks until the HTTP server
// stops.
func Run(ctx context.Context, cfg Config) error {
	if cfg.Port == "" {
		cfg.Port = "8515"
	}
	if cfg.DataDir == "" {
		cfg.DataDir = "./data/consultations"
	}

	cleanup, err := initTracer(cfg.OTLPEndpoint)
	if err != nil {
		return err
	}
	defer cleanup(context.Background())

	metrics := observability.InitMetrics()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	store, err := loadKnowledge(ctx, cfg.RulesFile)
	if err != nil {
		return err
	}
	metrics.SetActiveRules(store.Statistics().ActiveRules)

	consultationLog, err := history.Open(history.DefaultConfig(cfg.DataDir))
	if err != nil {
		return err
	}
	defer consultationLog.Close()

	router := gin.Default()
	router.Use(otelgin.Middleware("consultation-service"))

	routes.SetupRoutes(router, store, consultationLog)

	slog.Info("starting the consultation server", "port", cfg.Port)
	return router.Run(":" + cfg.Port)
}
