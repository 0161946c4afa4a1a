package odoo

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/xelth-com/eckodoo/internal/logger"
	"github.com/xelth-com/eckodoo/internal/models"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	defaultSyncInterval = 15 * time.Minute
	defaultSyncBatch    = 1000
)

// SyncConfig holds mirror settings.
type SyncConfig struct {
	Models    []string      // e.g. "res.partner", "product.product"
	Fields    []string      // empty means every field
	Interval  time.Duration // between passes
	BatchSize int           // max records per model per pass
}

// SyncService copies records of the configured models into the local
// odoo_records table, incrementally by write_date.
type SyncService struct {
	client *Client
	db     *gorm.DB
	cfg    SyncConfig
	logger *logger.Logger
	now    func() time.Time

	stop     chan struct{}
	done     chan struct{}
	started  atomic.Bool
	stopOnce sync.Once
}

// NewSyncService creates a new synchronization service
func NewSyncService(client *Client, db *gorm.DB, cfg SyncConfig, log *logger.Logger) *SyncService {
	if cfg.Interval <= 0 {
		cfg.Interval = defaultSyncInterval
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = defaultSyncBatch
	}
	if log == nil {
		log = logger.Nop()
	}

	return &SyncService{
		client: client,
		db:     db,
		cfg:    cfg,
		logger: log,
		now:    func() time.Time { return time.Now().UTC() },
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
	}
}

// Start begins the background synchronization loop
func (s *SyncService) Start() {
	if !s.started.CompareAndSwap(false, true) {
		return
	}
	if len(s.cfg.Models) == 0 {
		s.logger.Info().Msg("odoo mirror disabled: no models configured")
		close(s.done)
		return
	}

	go func() {
		defer close(s.done)
		s.logger.Info().Strs("models", s.cfg.Models).Dur("interval", s.cfg.Interval).Msg("odoo mirror started")

		if _, err := s.client.Connect(); err != nil {
			s.logger.Error().Err(err).Msg("odoo mirror stopped: authentication failed")
			return
		}

		s.RunOnce()

		ticker := time.NewTicker(s.cfg.Interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				s.RunOnce()
			case <-s.stop:
				s.logger.Info().Msg("odoo mirror stopped")
				return
			}
		}
	}()
}

// Stop halts the loop and waits for a running pass to finish.
func (s *SyncService) Stop() {
	s.stopOnce.Do(func() { close(s.stop) })
	if s.started.Load() {
		<-s.done
	}
}

// RunOnce syncs every configured model once. Models are independent; the
// result maps each failed model to its error.
func (s *SyncService) RunOnce() map[string]error {
	log := s.logger.Child("run_id", uuid.NewString())
	log.Info().Msg("odoo mirror pass started")

	failed := map[string]error{}
	for _, model := range s.cfg.Models {
		n, err := s.SyncModel(model)
		if err != nil {
			log.Error().Err(err).Str("model", model).Msg("odoo mirror: model sync failed")
			failed[model] = err
			continue
		}
		log.Info().Str("model", model).Int("records", n).Msg("odoo mirror: model synced")
	}

	log.Info().Int("failed", len(failed)).Msg("odoo mirror pass completed")
	return failed
}

// SyncModel pulls records of model ordered past the newest mirrored
// (write_date, id) and upserts them. It returns the number of records stored.
func (s *SyncService) SyncModel(model string) (int, error) {
	if err := validateModel(model); err != nil {
		return 0, err
	}

	// 1. Newest (write_date, id) already mirrored
	var domain Domain
	var last models.OdooRecord
	err := s.db.Where("model = ?", model).Order("write_date DESC, odoo_id DESC").First(&last).Error
	switch {
	case err == nil && last.WriteDate != "":
		domain = after(last.WriteDate, last.OdooID)
	case err != nil && !errors.Is(err, gorm.ErrRecordNotFound):
		return 0, fmt.Errorf("failed to read last write_date for %s: %w", model, err)
	}

	// 2. Fetch from Odoo
	records, err := s.client.SearchRead(model, domain, s.fields(), Limit(s.cfg.BatchSize), Order("write_date asc, id asc"))
	if err != nil {
		return 0, err
	}

	// 3. Save to local DB
	count := 0
	for _, rec := range records {
		id, ok := rec.ID()
		if !ok {
			s.logger.Warn().Str("model", model).Msg("odoo mirror: record without id skipped")
			continue
		}

		data, err := json.Marshal(rec)
		if err != nil {
			s.logger.Warn().Err(err).Str("model", model).Int64("odoo_id", id).Msg("odoo mirror: record not encodable")
			continue
		}

		row := models.OdooRecord{
			Model:     model,
			OdooID:    id,
			Data:      datatypes.JSON(data),
			WriteDate: writeDate(rec),
			SyncedAt:  s.now(),
		}

		if err := s.db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "model"}, {Name: "odoo_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"data", "write_date", "synced_at"}),
		}).Create(&row).Error; err != nil {
			s.logger.Warn().Err(err).Str("model", model).Int64("odoo_id", id).Msg("odoo mirror: failed to save record")
			continue
		}
		count++
	}

	return count, nil
}

// after matches records strictly past the (writeDate, id) cursor. Odoo stamps
// every record of one transaction with the same write_date, so the id breaks
// ties across batch boundaries.
func after(writeDate string, id int64) Domain {
	return Domain{
		Or,
		Term{Field: "write_date", Operator: ">", Value: writeDate},
		And,
		Term{Field: "write_date", Operator: "=", Value: writeDate},
		Term{Field: "id", Operator: ">", Value: id},
	}
}

// fields returns the configured fields plus write_date, which the cursor needs.
func (s *SyncService) fields() []string {
	if len(s.cfg.Fields) == 0 {
		return nil
	}
	for _, f := range s.cfg.Fields {
		if f == "write_date" {
			return s.cfg.Fields
		}
	}
	return append(append([]string{}, s.cfg.Fields...), "write_date")
}

func writeDate(rec Record) string {
	if s, ok := rec["write_date"].(string); ok {
		return s
	}
	return ""
}
