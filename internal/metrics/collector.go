package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const namespace = "symptom_predictor"

// Collector records service metrics.
type Collector struct {
	registry *prometheus.Registry

	requests          *prometheus.CounterVec
	requestLatency    *prometheus.HistogramVec
	predictions       *prometheus.CounterVec
	predictionLatency prometheus.Histogram
	symptoms          *prometheus.CounterVec
	vocabularySize    prometheus.Gauge
}

func New() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route and status code",
		}, []string{"method", "route", "status"}),
		requestLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		predictions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "predictions_total",
			Help:      "Prediction attempts by outcome",
		}, []string{"outcome"}),
		predictionLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "prediction_duration_seconds",
			Help:      "Time spent encoding and classifying one request",
			Buckets:   []float64{.0005, .001, .0025, .005, .01, .025, .05, .1, .25, .5, 1},
		}),
		symptoms: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "symptoms_total",
			Help:      "Submitted symptoms by vocabulary match result",
		}, []string{"result"}),
		vocabularySize: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "vocabulary_size",
			Help:      "Number of symptoms in the loaded vocabulary",
		}),
	}

	c.registry.MustRegister(
		c.requests,
		c.requestLatency,
		c.predictions,
		c.predictionLatency,
		c.symptoms,
		c.vocabularySize,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return c
}

func (c *Collector) ObserveRequest(method, route string, status int, d time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	c.requests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	c.requestLatency.WithLabelValues(method, route).Observe(d.Seconds())
}

// ObservePrediction records one prediction attempt. outcome is "success" or
// an error kind.
func (c *Collector) ObservePrediction(outcome string, matched, unmatched int, d time.Duration) {
	c.predictions.WithLabelValues(outcome).Inc()
	c.predictionLatency.Observe(d.Seconds())
	c.symptoms.WithLabelValues("matched").Add(float64(matched))
	c.symptoms.WithLabelValues("unmatched").Add(float64(unmatched))
}

func (c *Collector) SetVocabularySize(n int) {
	c.vocabularySize.Set(float64(n))
}
