package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus instruments shared across the portal's
// services. One instance is created in main and injected where needed.
type Metrics struct {
	RegistrationsAccepted prometheus.Counter
	RegistrationsRejected *prometheus.CounterVec

	VerificationSubmissions prometheus.Counter
	VerificationDecisions   *prometheus.CounterVec

	ExamAttempts       *prometheus.CounterVec
	ExamAttemptRefused *prometheus.CounterVec

	DocumentsRejected *prometheus.CounterVec
}

// New creates and registers all portal metrics on the default registry.
func New() *Metrics {
	return &Metrics{
		RegistrationsAccepted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "chalak_registrations_accepted_total",
			Help: "Signup submissions that passed the full validation pipeline",
		}),
		RegistrationsRejected: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "chalak_registrations_rejected_total",
			Help: "Signup submissions rejected, labelled by the failing rule",
		}, []string{"rule"}),
		VerificationSubmissions: promauto.NewCounter(prometheus.CounterOpts{
			Name: "chalak_verification_submissions_total",
			Help: "Applications submitted for government verification",
		}),
		VerificationDecisions: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "chalak_verification_decisions_total",
			Help: "Reviewer decisions applied, labelled by outcome",
		}, []string{"outcome"}),
		ExamAttempts: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "chalak_exam_attempts_total",
			Help: "Theory exam attempts recorded, labelled by result",
		}, []string{"result"}),
		ExamAttemptRefused: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "chalak_exam_attempts_refused_total",
			Help: "Theory exam attempts refused before grading, labelled by reason",
		}, []string{"reason"}),
		DocumentsRejected: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "chalak_documents_rejected_total",
			Help: "Document uploads rejected locally, labelled by reason",
		}, []string{"reason"}),
	}
}
