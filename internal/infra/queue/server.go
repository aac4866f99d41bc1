package queue

import (
	"context"

	"telegram-event-reminder/internal/config"
	"telegram-event-reminder/internal/infra/logging"
	red "telegram-event-reminder/internal/infra/redis"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"
)

// RedisOpt points asynq at the same Redis the bot uses, accepting the same URL forms.
func RedisOpt(cfg *config.RedisConfig) (asynq.RedisClientOpt, error) {
	o, err := red.Options(cfg)
	if err != nil {
		return asynq.RedisClientOpt{}, err
	}
	return asynq.RedisClientOpt{
		Addr:      o.Addr,
		Username:  o.Username,
		Password:  o.Password,
		DB:        o.DB,
		TLSConfig: o.TLSConfig,
	}, nil
}

// Server consumes dispatch tasks.
type Server struct {
	server *asynq.Server
	mux    *asynq.ServeMux
}

func NewServer(opt asynq.RedisConnOpt, cfg *config.QueueConfig, h *Handlers, logger *zerolog.Logger) *Server {
	log := logger.With().Str("component", "queue.Server").Logger()
	srv := asynq.NewServer(opt, asynq.Config{
		Concurrency: cfg.Concurrency,
		Queues:      map[string]int{cfg.Name: 1},
		Logger:      logging.NewAsynqLogger(logger),
		ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
			id, _ := asynq.GetTaskID(ctx)
			log.Error().Err(err).Str("type", task.Type()).Str("job_id", id).Msg("task failed")
		}),
	})
	return &Server{server: srv, mux: h.Mux()}
}

// Run starts the server and blocks until the context is canceled, then gracefully shuts down.
func (s *Server) Run(ctx context.Context) error {
	if err := s.server.Start(s.mux); err != nil {
		return err
	}
	<-ctx.Done()
	s.server.Shutdown()
	return nil
}
