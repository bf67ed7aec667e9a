package history

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"gorm.io/gorm"
)

const (
	// DefaultLimit applies when a caller asks for zero or fewer rows.
	DefaultLimit = 200
	// MaxLimit caps every listing regardless of the requested size.
	MaxLimit = 1000
)

// Store persists request history. Implementations must write each
// record in a single atomic insert and must reclaim the on-disk
// artifact of a record before removing its row.
type Store interface {
	Insert(ctx context.Context, rec *Record) error
	List(ctx context.Context, limit int) ([]Record, error)
	DeleteOne(ctx context.Context, id uint64) (bool, error)
	DeleteAll(ctx context.Context) error
}

// row is the relational shape of a Record. The table is additive-only:
// variant columns are nullable so rows of either request type (and rows
// written before a column existed) always scan cleanly.
type row struct {
	ID          uint64    `gorm:"primaryKey;autoIncrement"`
	CreatedAt   time.Time `gorm:"index"`
	RequestType string    `gorm:"type:varchar(8);not null"`
	Prompt      string    `gorm:"type:text;not null"`
	Status      string    `gorm:"type:varchar(8);not null"`
	Error       *string   `gorm:"type:text"`
	DurationMs  int64     `gorm:"not null"`

	Response       *string `gorm:"type:text"`
	ResultJSON     *string `gorm:"column:result_json;type:text"`
	CommandName    *string `gorm:"type:varchar(128)"`
	FileName       *string `gorm:"type:varchar(255)"`
	FileMime       *string `gorm:"type:varchar(128)"`
	FileSize       *int64
	FilePath       *string `gorm:"type:varchar(512)"`
	ExternalFileID *string `gorm:"column:external_file_id;type:varchar(128)"`
}

func (row) TableName() string { return "request_history" }

type gormStore struct {
	db  *gorm.DB
	log *slog.Logger
}

// NewStore migrates the request_history table and returns a Store
// backed by db.
func NewStore(db *gorm.DB, log *slog.Logger) (Store, error) {
	if err := db.AutoMigrate(&row{}); err != nil {
		return nil, fmt.Errorf("migrate request_history: %w", err)
	}
	if log == nil {
		log = slog.Default()
	}
	return &gormStore{db: db, log: log}, nil
}

func (s *gormStore) Insert(ctx context.Context, rec *Record) error {
	rw := toRow(rec)
	if err := s.db.WithContext(ctx).Create(rw).Error; err != nil {
		return err
	}
	rec.ID = rw.ID
	rec.CreatedAt = rw.CreatedAt
	return nil
}

func (s *gormStore) List(ctx context.Context, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	var rows []row
	if err := s.db.WithContext(ctx).
		Order("id DESC").
		Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]Record, 0, len(rows))
	for i := range rows {
		out = append(out, fromRow(&rows[i]))
	}
	return out, nil
}

func (s *gormStore) DeleteOne(ctx context.Context, id uint64) (bool, error) {
	var rw row
	err := s.db.WithContext(ctx).First(&rw, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	// artifact first; a cleanup failure never blocks the row delete
	s.removeArtifact(&rw)

	res := s.db.WithContext(ctx).Delete(&row{}, id)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (s *gormStore) DeleteAll(ctx context.Context) error {
	var rows []row
	if err := s.db.WithContext(ctx).
		Where("file_path IS NOT NULL").
		Find(&rows).Error; err != nil {
		return err
	}
	for i := range rows {
		s.removeArtifact(&rows[i])
	}
	return s.db.WithContext(ctx).
		Session(&gorm.Session{AllowGlobalUpdate: true}).
		Delete(&row{}).Error
}

func (s *gormStore) removeArtifact(rw *row) {
	if rw.FilePath == nil || *rw.FilePath == "" {
		return
	}
	if err := os.Remove(*rw.FilePath); err != nil && !os.IsNotExist(err) {
		s.log.Warn("history.artifact.remove_failed",
			"id", rw.ID,
			"path", *rw.FilePath,
			"error", err.Error(),
		)
	}
}

func toRow(rec *Record) *row {
	rw := &row{
		ID:          rec.ID,
		CreatedAt:   rec.CreatedAt,
		RequestType: rec.RequestType,
		Prompt:      rec.Prompt,
		Status:      rec.Status,
		Error:       optStr(rec.Error),
		DurationMs:  rec.DurationMs,
	}
	if rec.Chat != nil {
		rw.Response = optStr(rec.Chat.Response)
	}
	if f := rec.File; f != nil {
		rw.ResultJSON = optStr(f.ResultJSON)
		rw.CommandName = optStr(f.CommandName)
		rw.FileName = optStr(f.FileName)
		rw.FileMime = optStr(f.FileMime)
		size := f.FileSize
		rw.FileSize = &size
		rw.FilePath = optStr(f.FilePath)
		rw.ExternalFileID = optStr(f.ExternalFileID)
	}
	return rw
}

func fromRow(rw *row) Record {
	rec := Record{
		ID:          rw.ID,
		CreatedAt:   rw.CreatedAt,
		RequestType: rw.RequestType,
		Prompt:      rw.Prompt,
		Status:      rw.Status,
		Error:       deref(rw.Error),
		DurationMs:  rw.DurationMs,
	}
	switch rw.RequestType {
	case TypeChat:
		rec.Chat = &ChatPayload{Response: deref(rw.Response)}
	case TypeFile:
		f := &FilePayload{
			ResultJSON:     deref(rw.ResultJSON),
			CommandName:    deref(rw.CommandName),
			FileName:       deref(rw.FileName),
			FileMime:       deref(rw.FileMime),
			FilePath:       deref(rw.FilePath),
			ExternalFileID: deref(rw.ExternalFileID),
		}
		if rw.FileSize != nil {
			f.FileSize = *rw.FileSize
		}
		rec.File = f
	}
	return rec
}
