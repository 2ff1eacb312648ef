package metrics

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	MessagesSent = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "renegade",
		Subsystem: "messaging",
		Name:      "messages_sent_total",
		Help:      "Messages accepted into conversation logs.",
	})

	ConversationsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "renegade",
		Subsystem: "messaging",
		Name:      "conversations_created_total",
		Help:      "New conversation threads opened.",
	})
)

// Handler exposes the default Prometheus registry on a fiber route.
func Handler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.Handler())
}
