package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(
		usersRegistered,
		botUpdates,
		botRateLimited,
		adminCommands,
	)
}

var (
	usersRegistered = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "users_registered_total",
		Help:      "Users created by the registration conversation.",
	})

	botUpdates = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "telegram_commands_received_total",
		Help:      "Incoming bot updates by command; plain text is counted as \"text\".",
	}, []string{"command"})

	botRateLimited = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "telegram_rate_limit_triggered_total",
		Help:      "Updates dropped by the per-user rate limiter.",
	})

	// status: authorized | unauthorized
	adminCommands = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "admin_command_total",
		Help:      "Admin command attempts from the bot by outcome of the admin check.",
	}, []string{"command", "status"})
)

func IncUsersRegistered() { usersRegistered.Inc() }

func IncTelegramCommand(command string) { botUpdates.WithLabelValues(norm(command)).Inc() }

func IncRateLimitTriggered() { botRateLimited.Inc() }

func IncAdminCommand(command, status string) {
	adminCommands.WithLabelValues(norm(command), norm(status)).Inc()
}
