package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/jhoicas/inventario-ledger/internal/bootstrap"
	"github.com/jhoicas/inventario-ledger/internal/infrastructure/queue"
	"github.com/jhoicas/inventario-ledger/pkg/config"
	"github.com/jhoicas/inventario-ledger/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("store", cfg.Store.Backend).
		Str("queue", cfg.Queue.Name).
		Msg("iniciando worker")

	deps, err := bootstrap.Build(context.Background(), cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("inicializar dependencias")
	}
	defer deps.Close()

	srv := asynq.NewServer(
		bootstrap.AsynqRedisOpt(cfg.Redis),
		asynq.Config{
			Concurrency:     cfg.Queue.Concurrency,
			Queues:          map[string]int{cfg.Queue.Name: 1},
			RetryDelayFunc:  exponentialBackoff,
			ShutdownTimeout: 30 * time.Second,
			ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
				log.Error().Err(err).Str("type", task.Type()).Bytes("payload", task.Payload()).Msg("tarea fallida")
			}),
			Logger: &asynqLogger{log: log.Named("asynq")},
		},
	)

	mux := asynq.NewServeMux()
	queue.NewReconcileProcessor(deps.Ledger, log).Register(mux)

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := srv.Run(mux); err != nil {
			log.Error().Err(err).Msg("servidor de tareas finalizado")
			shutdown <- syscall.SIGTERM
		}
	}()

	sig := <-shutdown
	log.Info().Str("signal", sig.String()).Msg("señal de apagado recibida")
	srv.Shutdown()
	log.Info().Msg("worker detenido")
}

func exponentialBackoff(n int, _ error, _ *asynq.Task) time.Duration {
	delay := time.Second * time.Duration(1<<uint(n))
	if delay > 10*time.Minute || delay <= 0 {
		delay = 10 * time.Minute
	}
	return delay
}

// asynqLogger adapta el logger de la app a asynq.Logger.
type asynqLogger struct {
	log *logger.Logger
}

func (l *asynqLogger) Debug(args ...interface{}) {
	l.log.Debug().Msg(fmt.Sprint(args...))
}
func (l *asynqLogger) Info(args ...interface{}) {
	l.log.Info().Msg(fmt.Sprint(args...))
}
func (l *asynqLogger) Warn(args ...interface{}) {
	l.log.Warn().Msg(fmt.Sprint(args...))
}
func (l *asynqLogger) Error(args ...interface{}) {
	l.log.Error().Msg(fmt.Sprint(args...))
}
func (l *asynqLogger) Fatal(args ...interface{}) {
	l.log.Fatal().Msg(fmt.Sprint(args...))
}
