package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds Prometheus collectors for the attendance workflows.
type Metrics struct {
	RecognitionPasses *prometheus.CounterVec
	FacesRecognized   prometheus.Counter
	FacesUnknown      prometheus.Counter
	ServiceErrors     *prometheus.CounterVec
}

// New registers and returns the workflow metrics collectors.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		RecognitionPasses: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "rollcall_recognition_passes_total",
			Help: "Recognition submissions by outcome",
		}, []string{"outcome"}),
		FacesRecognized: factory.NewCounter(prometheus.CounterOpts{
			Name: "rollcall_faces_recognized_total",
			Help: "Faces matched to enrolled students across all passes",
		}),
		FacesUnknown: factory.NewCounter(prometheus.CounterOpts{
			Name: "rollcall_faces_unknown_total",
			Help: "Detected faces that matched no enrolled student",
		}),
		ServiceErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "rollcall_service_errors_total",
			Help: "Failed calls to the attendance service by operation",
		}, []string{"op"}),
	}
}

// PassOutcome records one recognition pass with its faces, tolerating a nil
// receiver so workflows can run unmetered in tests.
func (m *Metrics) PassOutcome(outcome string, recognized, unknown int) {
	if m == nil {
		return
	}
	m.RecognitionPasses.WithLabelValues(outcome).Inc()
	m.FacesRecognized.Add(float64(recognized))
	m.FacesUnknown.Add(float64(unknown))
}

// ServiceError records a failed service call for the named operation.
func (m *Metrics) ServiceError(op string) {
	if m == nil {
		return
	}
	m.ServiceErrors.WithLabelValues(op).Inc()
}
