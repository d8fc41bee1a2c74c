package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/majeanson/newjo-sub001/internal/game"
)

// roomRecord is the durable row: one JSON state blob per room id.
type roomRecord struct {
	RoomID    string          `gorm:"primaryKey;column:room_id"`
	State     json.RawMessage `gorm:"column:state;type:jsonb"`
	UpdatedAt time.Time       `gorm:"column:updated_at"`
}

func (roomRecord) TableName() string { return "rooms" }

// Postgres stores snapshots in a rooms table via gorm. Each Put is a
// single upsert, so a snapshot is replaced all-or-nothing.
type Postgres struct {
	db *gorm.DB
}

func OpenPostgres(dsn string) (*Postgres, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.AutoMigrate(&roomRecord{}); err != nil {
		return nil, fmt.Errorf("migrate rooms table: %w", err)
	}
	return &Postgres{db: db}, nil
}

func (p *Postgres) Get(ctx context.Context, roomID string) (*game.State, error) {
	var rec roomRecord
	err := p.db.WithContext(ctx).First(&rec, "room_id = ?", roomID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load room %s: %w", roomID, err)
	}
	var s game.State
	if err := json.Unmarshal(rec.State, &s); err != nil {
		return nil, fmt.Errorf("decode room %s: %w", roomID, err)
	}
	return &s, nil
}

func (p *Postgres) Put(ctx context.Context, roomID string, s *game.State) error {
	raw, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode room %s: %w", roomID, err)
	}
	rec := roomRecord{RoomID: roomID, State: raw, UpdatedAt: time.Now()}
	err = p.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "room_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"state", "updated_at"}),
	}).Create(&rec).Error
	if err != nil {
		return fmt.Errorf("save room %s: %w", roomID, err)
	}
	return nil
}
