package worker

import (
	"benefits-web/internal/config"

	"github.com/hibiken/asynq"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
)

func RegisterHandlers(mux *asynq.ServeMux, db *sqlx.DB, rdb *redis.Client, cfg *config.Config) {
	importHandler := NewImportTaskHandler(db, rdb, cfg)
	mux.HandleFunc(TaskTypeImportProcess, importHandler.Handle)
}
