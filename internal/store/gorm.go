package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/i474232898/weather-dashboard/internal/weather"
)

// Supported values for Config.Driver.
const (
	DriverSQLite = "sqlite"
	DriverMySQL  = "mysql"
	DriverMemory = "memory"
)

// Store is a location store that owns a releasable resource.
type Store interface {
	weather.LocationStore
	Close() error
}

// Config selects and configures a backend.
type Config struct {
	Driver string
	Path   string // sqlite database file
	DSN    string // mysql data source name
	Debug  bool   // log every SQL statement
}

// locationRecord is the row shape of the locations table.
type locationRecord struct {
	ID         int64   `gorm:"primaryKey;autoIncrement"`
	Name       string  `gorm:"not null"`
	Latitude   float64 `gorm:"not null"`
	Longitude  float64 `gorm:"not null"`
	IsFavorite bool    `gorm:"column:is_favorite;not null"`
	Country    *string `gorm:"column:country"`
	Admin1     *string `gorm:"column:admin1"`
}

func (locationRecord) TableName() string {
	return "locations"
}

func (r locationRecord) toLocation() weather.Location {
	return weather.Location{
		ID:         r.ID,
		Name:       r.Name,
		Latitude:   r.Latitude,
		Longitude:  r.Longitude,
		IsFavorite: r.IsFavorite,
		Country:    r.Country,
		Admin1:     r.Admin1,
	}
}

// GormStore persists locations in a relational database through gorm.
type GormStore struct {
	db *gorm.DB
}

// New opens the backend named by cfg.Driver and applies the schema.
func New(cfg Config, log *zap.Logger) (Store, error) {
	if log == nil {
		log = zap.NewNop()
	}
	log = log.Named("store")

	var dialector gorm.Dialector
	switch cfg.Driver {
	case DriverMemory:
		log.Info("using in-memory location store")
		return NewMemoryStore(), nil
	case DriverSQLite, "":
		if cfg.Path == "" {
			return nil, fmt.Errorf("sqlite driver requires a database path")
		}
		dialector = sqlite.Open(cfg.Path)
	case DriverMySQL:
		if cfg.DSN == "" {
			return nil, fmt.Errorf("mysql driver requires a DSN")
		}
		dialector = mysql.Open(cfg.DSN)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}

	s, err := openGorm(dialector, log, cfg.Debug)
	if err != nil {
		return nil, err
	}
	log.Info("location store ready", zap.String("driver", dialector.Name()))
	return s, nil
}

func openGorm(dialector gorm.Dialector, log *zap.Logger, debug bool) (*GormStore, error) {
	level := gormlogger.Warn
	if debug {
		level = gormlogger.Info
	}
	gl := gormlogger.New(zap.NewStdLog(log), gormlogger.Config{
		SlowThreshold:             200 * time.Millisecond,
		LogLevel:                  level,
		IgnoreRecordNotFoundError: true,
	})

	db, err := gorm.Open(dialector, &gorm.Config{Logger: gl})
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", dialector.Name(), err)
	}
	if err := db.AutoMigrate(&locationRecord{}); err != nil {
		return nil, fmt.Errorf("failed to migrate locations table: %w", err)
	}
	return &GormStore{db: db}, nil
}

// ListLocations returns all rows ordered by id.
func (s *GormStore) ListLocations(ctx context.Context) ([]weather.Location, error) {
	var recs []locationRecord
	if err := s.db.WithContext(ctx).Order("id ASC").Find(&recs).Error; err != nil {
		return nil, fmt.Errorf("list locations: %w", err)
	}

	out := make([]weather.Location, 0, len(recs))
	for _, r := range recs {
		out = append(out, r.toLocation())
	}
	return out, nil
}

// GetLocation returns the row with the given id, or ErrNotFound.
func (s *GormStore) GetLocation(ctx context.Context, id int64) (weather.Location, error) {
	var rec locationRecord
	err := s.db.WithContext(ctx).First(&rec, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return weather.Location{}, ErrNotFound
	}
	if err != nil {
		return weather.Location{}, fmt.Errorf("get location %d: %w", id, err)
	}
	return rec.toLocation(), nil
}

// CreateLocation inserts a row and returns it with the assigned id.
func (s *GormStore) CreateLocation(ctx context.Context, in weather.NewLocation) (weather.Location, error) {
	rec := locationRecord{
		Name:       in.Name,
		Latitude:   in.Latitude,
		Longitude:  in.Longitude,
		IsFavorite: in.IsFavorite,
		Country:    in.Country,
		Admin1:     in.Admin1,
	}
	if err := s.db.WithContext(ctx).Create(&rec).Error; err != nil {
		return weather.Location{}, fmt.Errorf("create location: %w", err)
	}
	return rec.toLocation(), nil
}

// DeleteLocation removes the row if present. Missing rows are not an error.
func (s *GormStore) DeleteLocation(ctx context.Context, id int64) error {
	if err := s.db.WithContext(ctx).Delete(&locationRecord{}, id).Error; err != nil {
		return fmt.Errorf("delete location %d: %w", id, err)
	}
	return nil
}

// CountLocations returns the number of rows.
func (s *GormStore) CountLocations(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.WithContext(ctx).Model(&locationRecord{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("count locations: %w", err)
	}
	return n, nil
}

// Close releases the underlying connection pool.
func (s *GormStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
