package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"benefits-web/internal/config"
	"benefits-web/internal/models"
	"benefits-web/internal/repository"
	"benefits-web/internal/service"
	"benefits-web/internal/utils"

	"github.com/hibiken/asynq"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
)

const TaskTypeImportProcess = "import:process"

// Redis keys the web tier and the worker share for one running batch.
func ProgressKey(batchCode string) string {
	return fmt.Sprintf("import:progress:%s", batchCode)
}

func CancelKey(batchCode string) string {
	return fmt.Sprintf("import:cancel:%s", batchCode)
}

// ImportTaskPayload is the enqueue contract between the web handler and
// the worker.
type ImportTaskPayload struct {
	BatchCode  string `json:"batch_code"`
	ImportType string `json:"import_type"`
	FilePath   string `json:"file_path"`
	Filename   string `json:"filename"`
	UserID     int    `json:"user_id"`
}

// NewImportTask builds the asynq task for one accepted upload.
func NewImportTask(payload ImportTaskPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeImportProcess, data), nil
}

type ImportTaskHandler struct {
	db         *sqlx.DB
	redis      *redis.Client
	cfg        *config.Config
	importRepo *repository.ImportRepository
}

func NewImportTaskHandler(db *sqlx.DB, rdb *redis.Client, cfg *config.Config) *ImportTaskHandler {
	return &ImportTaskHandler{
		db:         db,
		redis:      rdb,
		cfg:        cfg,
		importRepo: repository.NewImportRepository(db),
	}
}

func (h *ImportTaskHandler) Handle(ctx context.Context, task *asynq.Task) error {
	var payload ImportTaskPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	log := utils.GetLogger()
	log.WithField("batch_code", payload.BatchCode).Info("import task picked up")

	// A batch that already ran (worker restart, duplicate delivery)
	// must not run again.
	if existing, err := h.importRepo.FindBatchByCode(payload.BatchCode); err == nil && existing != nil {
		log.WithField("batch_code", payload.BatchCode).
			WithField("status", existing.Status).
			Info("batch already recorded, skipping")
		return nil
	}

	store := repository.NewImportStore(h.db)
	alertRepo := repository.NewAlertRepository(h.db)
	detector := service.NewDetector(store, alertRepo, log)

	orchestrator := service.NewOrchestrator(service.ImportConfig{
		CompanyCodes:     h.cfg.CompanyCodes,
		BatchSize:        h.cfg.BatchSize,
		MaxSummaryErrors: h.cfg.MaxSummaryErrors,
	}, store, detector, h.importRepo, log).
		WithCancelCheck(h.cancelRequested).
		WithProgress(h.publishProgress)

	summary, err := orchestrator.Run(ctx, service.ImportRequest{
		BatchCode:  payload.BatchCode,
		ImportType: payload.ImportType,
		FilePath:   payload.FilePath,
		Filename:   payload.Filename,
		UserID:     payload.UserID,
	})
	if err != nil {
		return fmt.Errorf("import run could not be recorded: %w", err)
	}

	// The run is finished either way; clean up the shared keys so a
	// stale cancel flag cannot leak into a future batch.
	h.redis.Del(ctx, CancelKey(payload.BatchCode))
	h.redis.Set(ctx, ProgressKey(payload.BatchCode), summary.RowsTotal, 24*time.Hour)

	if summary.Status == models.ImportStatusFailed {
		log.WithField("batch_code", summary.BatchCode).Warn("import finished in FAILED state")
	}
	return nil
}

func (h *ImportTaskHandler) cancelRequested(ctx context.Context, batchCode string) bool {
	n, err := h.redis.Exists(ctx, CancelKey(batchCode)).Result()
	if err != nil {
		return false
	}
	return n > 0
}

func (h *ImportTaskHandler) publishProgress(batchCode string, processed int) {
	h.redis.Set(context.Background(), ProgressKey(batchCode), processed, 24*time.Hour)
}
