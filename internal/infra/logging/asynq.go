package logging

import (
	"fmt"

	"github.com/rs/zerolog"
)

// AsynqLogger routes asynq's internal logs into zerolog.
// It satisfies asynq.Logger.
type AsynqLogger struct {
	log zerolog.Logger
}

func NewAsynqLogger(base *zerolog.Logger) *AsynqLogger {
	return &AsynqLogger{log: base.With().Str("component", "asynq").Logger()}
}

func (l *AsynqLogger) Debug(args ...any) { l.log.Debug().Msg(fmt.Sprint(args...)) }
func (l *AsynqLogger) Info(args ...any)  { l.log.Info().Msg(fmt.Sprint(args...)) }
func (l *AsynqLogger) Warn(args ...any)  { l.log.Warn().Msg(fmt.Sprint(args...)) }
func (l *AsynqLogger) Error(args ...any) { l.log.Error().Msg(fmt.Sprint(args...)) }
func (l *AsynqLogger) Fatal(args ...any) { l.log.Fatal().Msg(fmt.Sprint(args...)) }
