package asynqserver

import (
	"github.com/kyrios-fx/backend/internal/cache"
	"github.com/kyrios-fx/backend/internal/config"
	"github.com/kyrios-fx/backend/internal/queue/processor"
	"github.com/kyrios-fx/backend/internal/queue/task"
	"github.com/kyrios-fx/backend/internal/worker"

	"github.com/hibiken/asynq"
)

func New(cfg config.Cache, queueCfg config.QueueConfig, workers *worker.Workers) (*asynq.Server, *asynq.ServeMux) {
	mux, queues := getQueues(workers)

	concurrency := queueCfg.Concurrency
	if concurrency <= 0 {
		concurrency = 10
	}

	srv := asynq.NewServer(
		RedisOptions(cfg),
		asynq.Config{
			Concurrency: concurrency,
			LogLevel:    asynq.ErrorLevel,
			Queues:      queues,
		},
	)

	return srv, mux
}

func RedisOptions(cfg config.Cache) asynq.RedisConnOpt {
	var opts asynq.RedisConnOpt
	if cfg.Type == cache.RedisTypeCluster {
		opts = asynq.RedisClusterClientOpt{Addrs: cfg.RedisCluster.Addresses, Password: cfg.RedisCluster.Password}
	} else {
		opts = asynq.RedisClientOpt{Addr: cfg.Redis.Address, Password: cfg.Redis.Password}
	}
	return opts
}

func getQueues(workers *worker.Workers) (*asynq.ServeMux, map[string]int) {
	mux := asynq.NewServeMux()
	mux.Handle(task.SendVerificationEmailTaskName, processor.NewSendVerificationEmailProcessor(workers))
	mux.Handle(task.SendWelcomeEmailTaskName, processor.NewSendWelcomeEmailProcessor(workers))
	mux.Handle(task.SendPasswordResetEmailTaskName, processor.NewSendPasswordResetEmailProcessor(workers))
	queues := map[string]int{
		task.SendEmailQueueName: 1,
	}
	return mux, queues
}
