package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	RegisteredUsers = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "users_registered_total",
			Help: "Total number of successfully registered users",
		},
	)

	UserLogins = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "user_logins_total",
			Help: "Total number of successful logins",
		},
	)

	CreatedNotes = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "notes_created_total",
			Help: "Total number of notes created",
		},
	)
)

func Init() {
	prometheus.MustRegister(RegisteredUsers)
	prometheus.MustRegister(UserLogins)
	prometheus.MustRegister(CreatedNotes)
}

func Handler() http.Handler {
	return promhttp.Handler()
}
