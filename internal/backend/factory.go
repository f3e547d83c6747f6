package backend

import (
	"fmt"
	"log/slog"

	"spendlog/internal/adapters"
	"spendlog/internal/amqp"
	"spendlog/internal/config"
	"spendlog/internal/services"
	"spendlog/internal/sheets/memory"
	"spendlog/internal/storage"
)

// Factory builds backends from application config.
type Factory struct {
	logger *slog.Logger
}

func NewFactory(logger *slog.Logger) *Factory {
	if logger == nil {
		logger = slog.Default()
	}
	return &Factory{logger: logger}
}

// Create builds the backend named by cfg.DataBackend.
func (f *Factory) Create(cfg *config.Config) (*Result, error) {
	t := Type(cfg.DataBackend)
	if !t.IsValid() {
		return nil, fmt.Errorf("invalid backend type: %s", cfg.DataBackend)
	}

	switch t {
	case SQLiteBackend:
		return f.createSQLite(cfg)
	case MemoryBackend:
		return f.createMemory()
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", t)
	}
}

func (f *Factory) createSQLite(cfg *config.Config) (*Result, error) {
	repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
	if err != nil {
		return nil, fmt.Errorf("initialize SQLite repository: %w", err)
	}

	// AMQP is optional: without it expenses stay local until the worker's
	// periodic scan finds them.
	var amqpClient *amqp.Client
	if cfg.AMQPURL != "" {
		amqpClient, err = amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			f.logger.Warn("Failed to initialize AMQP client, continuing without sync",
				"error", err)
			amqpClient = nil
		} else {
			f.logger.Info("Initialized AMQP client",
				"exchange", cfg.AMQPExchange,
				"queue", cfg.AMQPQueue)
		}
	}

	service := services.NewExpenseService(repo, amqpClient)

	f.logger.Info("Initialized SQLite backend",
		"db_path", cfg.SQLiteDBPath,
		"amqp_enabled", amqpClient != nil)

	return &Result{
		Backend: adapters.NewSQLiteAdapter(repo, service),
		Cleanup: service.Close,
	}, nil
}

func (f *Factory) createMemory() (*Result, error) {
	f.logger.Info("Initialized memory backend")
	return &Result{Backend: memory.New()}, nil
}
