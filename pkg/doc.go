// Package pkg provides the core libraries for bookplot opening book analysis.
//
// # Overview
//
// bookplot reads engine self-play games, scores every game against the start
// position recorded in its FEN tag, fits a Dirichlet prior to the per-opening
// white-win / draw / black-win counts and draws the openings and the fitted
// density on ternary diagrams. The pkg directory is organized into four areas:
//
//  1. [core] - Domain logic (outcome counts, Dirichlet fitting, simplex geometry)
//  2. [pgn], [io], [render] - Input and output (game records, CSV/JSON, SVG/PNG/PDF)
//  3. [pipeline] - Orchestration (aggregate → fit → render) with caching
//  4. [api], [cache], [store], [config], [observability] - Serving infrastructure
//
// # Architecture
//
// The typical data flow through bookplot:
//
//	PGN file
//	    ↓
//	[pgn] package (stream tag pairs and results)
//	    ↓
//	[core/opening] package (group by start position, count outcomes)
//	    ↓
//	[core/dirichlet] package (Minka fixed-point fit of alpha)
//	    ↓
//	[render/ternary] package (scatter and density plots)
//	    ↓
//	SVG/PNG/PDF plots, CSV tables, analysis JSON
//
// # Quick Start
//
// Fit a prior and render its density:
//
//	import (
//	    "context"
//	    "github.com/matzehuels/bookplot/pkg/pipeline"
//	)
//
//	runner := pipeline.NewRunner(nil, nil, nil)
//	res, err := runner.Execute(context.Background(), pipeline.Options{
//	    Input:   "selfplay.pgn",
//	    Formats: []string{"svg", "csv"},
//	})
//	if err != nil {
//	    return err
//	}
//	fmt.Println(res.Fit.Alpha)
//
// # Main Packages
//
// ## Core Domain Logic
//
// [core/opening] - Books of openings and their outcome counts, built by an
// aggregator that enforces one FEN tag and a decisive termination per game.
//
// [core/dirichlet] - Maximum-likelihood Dirichlet fitting of count data by
// fixed-point iteration, plus density evaluation on the simplex.
//
// [core/ternary] - Projection of outcome shares onto an equilateral triangle,
// axis ticks, and the triangular mesh the density plot is shaded on.
//
// ## Infrastructure
//
// [cache] - Fit and plot cache with file, Redis and no-op backends.
//
// [store] - Saved analyses for the API, on disk or in MongoDB.
//
// [api] - HTTP API for fits, density plots and stored analyses.
//
// [observability] - Hooks for pipeline, cache and HTTP events, with a
// Prometheus implementation in observability/prom.
package pkg
