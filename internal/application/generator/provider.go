package generator

import (
	"github.com/google/wire"

	"promptforge/internal/config"
	"promptforge/internal/domain/chat"
	"promptforge/internal/domain/file"
	"promptforge/internal/domain/prompt"
	"promptforge/internal/domain/tokenusage"
)

// ServiceProvider wires the generation orchestrator and the job worker.
var ServiceProvider = wire.NewSet(
	NewService,
	wire.Bind(new(Prompts), new(*prompt.PromptService)),
	wire.Bind(new(History), new(*chat.ChatService)),
	wire.Bind(new(UsageRecorder), new(*tokenusage.Service)),

	ProvideJobConfig,
	NewJobService,
	wire.Bind(new(PromptLoader), new(*prompt.PromptService)),
	wire.Bind(new(FileResolver), new(*file.FileService)),
)

func ProvideJobConfig(cfg *config.Config) JobConfig {
	return JobConfig{
		Workers:    cfg.JobWorkers,
		QueueSize:  cfg.JobQueueSize,
		Retention:  cfg.JobRetention,
		StaleAfter: cfg.JobStaleAfter,
	}
}
