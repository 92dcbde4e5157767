package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	chatRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "webchat_chat_requests_total",
		Help: "Chat requests by outcome.",
	}, []string{"outcome"})

	rateLimitRejections = promauto.NewCounter(prometheus.CounterOpts{
		Name: "webchat_ratelimit_rejections_total",
		Help: "Requests rejected by the sliding-window gate.",
	})
)
