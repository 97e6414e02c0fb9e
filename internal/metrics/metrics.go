package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics содержит счетчики движка прогресса и внешних интеграций
type Metrics struct {
	ChallengesStarted   prometheus.Counter
	ChallengesCompleted prometheus.Counter
	ChallengeRetakes    prometheus.Counter
	CreditsGranted      prometheus.Counter
	AssignmentsReceived prometheus.Counter

	AIRequests  *prometheus.CounterVec
	AIRefusals  prometheus.Counter
	NewsFetches *prometheus.CounterVec
}

// New регистрирует метрики в реестре по умолчанию
func New() *Metrics {
	return &Metrics{
		ChallengesStarted: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: "bytebolt",
			Subsystem: "progress",
			Name:      "challenges_started_total",
			Help:      "Total number of challenge starts (including restarts)",
		}),
		ChallengesCompleted: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: "bytebolt",
			Subsystem: "progress",
			Name:      "challenges_completed_total",
			Help:      "Total number of completed quizzes",
		}),
		ChallengeRetakes: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: "bytebolt",
			Subsystem: "progress",
			Name:      "challenge_retakes_total",
			Help:      "Total number of retakes of completed challenges",
		}),
		CreditsGranted: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: "bytebolt",
			Subsystem: "progress",
			Name:      "credits_granted_total",
			Help:      "Total credits granted for quizzes and assignments",
		}),
		AssignmentsReceived: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: "bytebolt",
			Subsystem: "progress",
			Name:      "assignments_received_total",
			Help:      "Total number of assignment submissions",
		}),
		AIRequests: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "bytebolt",
			Subsystem: "ai",
			Name:      "requests_total",
			Help:      "Total requests to the text generation API",
		}, []string{"status"}),
		AIRefusals: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: "bytebolt",
			Subsystem: "ai",
			Name:      "refusals_total",
			Help:      "Total prompts refused by the topic allow-list",
		}),
		NewsFetches: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "bytebolt",
			Subsystem: "news",
			Name:      "fetches_total",
			Help:      "Total upstream news feed fetches",
		}, []string{"status"}),
	}
}
