// Copyright 2021 the u-root Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package metric

import (
	"errors"
	"net/http"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry holds every collector created through this package.
var Registry = prometheus.NewRegistry()

// MetricOpts contains naming pieces of the exposed metric
type MetricOpts struct {
	Namespace string
	Subsystem string
	Name      string
	Help      string
}

// Handler serves Registry in the Prometheus text format
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// StartMetrics adds the metrics handler to a http.ServeMux
func StartMetrics(mux *http.ServeMux) {
	mux.Handle("/metrics", Handler())
}

// CounterVec creates and registers a labelled counter. Asking twice for the
// same name returns the collector registered first.
func CounterVec(opts MetricOpts, labels []string) *prometheus.CounterVec {
	c := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: opts.Namespace,
		Subsystem: opts.Subsystem,
		Name:      opts.Name,
		Help:      help(opts),
	}, labels)
	if err := Registry.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			return are.ExistingCollector.(*prometheus.CounterVec)
		}
		panic(err)
	}
	return c
}

func help(opts MetricOpts) string {
	if opts.Help != "" {
		return opts.Help
	}
	return FullName(opts)
}

// FullName joins the non-empty naming pieces the way Prometheus does
func FullName(opts MetricOpts) string {
	if opts.Name == "" {
		return ""
	}
	switch {
	case opts.Namespace != "" && opts.Subsystem != "":
		return strings.Join([]string{opts.Namespace, opts.Subsystem, opts.Name}, "_")
	case opts.Namespace != "":
		return strings.Join([]string{opts.Namespace, opts.Name}, "_")
	case opts.Subsystem != "":
		return strings.Join([]string{opts.Subsystem, opts.Name}, "_")
	}
	return opts.Name
}
