package telemetry

import (
	"strings"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Label-bound children are cached so hot paths skip the Vec's own lookup.

type handleKey struct {
	vec    interface{}
	labels string
}

var handleCache sync.Map

func labelsKey(labels []string) string {
	return strings.Join(labels, "\x1f")
}

// CounterHandle returns a cached child counter for the given labels.
func CounterHandle(cv *prometheus.CounterVec, labels ...string) prometheus.Counter {
	k := handleKey{vec: cv, labels: labelsKey(labels)}
	if v, ok := handleCache.Load(k); ok {
		return v.(prometheus.Counter)
	}
	actual, _ := handleCache.LoadOrStore(k, cv.WithLabelValues(labels...))
	return actual.(prometheus.Counter)
}

// ObserverHandle returns a cached child observer for the given labels.
func ObserverHandle(hv *prometheus.HistogramVec, labels ...string) prometheus.Observer {
	k := handleKey{vec: hv, labels: labelsKey(labels)}
	if v, ok := handleCache.Load(k); ok {
		return v.(prometheus.Observer)
	}
	actual, _ := handleCache.LoadOrStore(k, hv.WithLabelValues(labels...))
	return actual.(prometheus.Observer)
}
