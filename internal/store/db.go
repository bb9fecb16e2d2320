package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// Database wraps the GORM DB handle and exposes repository helpers.
type Database struct {
	gorm *gorm.DB
	mu   sync.Mutex
}

var _ Repository = (*Database)(nil)

// Open initializes the SQLite-backed database at the provided path.
func Open(path string, silent bool) (*Database, error) {
	cfg := &gorm.Config{}
	if silent {
		cfg.Logger = logger.Default.LogMode(logger.Silent)
	}
	db, err := gorm.Open(sqlite.Open(path), cfg)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.AutoMigrate(&FitGuide{}); err != nil {
		return nil, fmt.Errorf("auto migrate: %w", err)
	}
	if err := db.Exec("PRAGMA journal_mode=WAL").Error; err != nil {
		logrus.WithError(err).Warn("enable WAL mode")
	}
	if err := db.Exec("PRAGMA synchronous=NORMAL").Error; err != nil {
		logrus.WithError(err).Warn("set synchronous pragma")
	}
	if err := applyIndexes(db); err != nil {
		return nil, fmt.Errorf("apply indexes: %w", err)
	}
	return &Database{gorm: db}, nil
}

// Close closes the underlying database connection.
func (d *Database) Close() error {
	if d == nil {
		return nil
	}
	sqlDB, err := d.gorm.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// SaveFitGuide inserts the record, or replaces the row with the same public id.
func (d *Database) SaveFitGuide(ctx context.Context, f *FitGuide) error {
	if f == nil {
		return errors.New("fit guide is nil")
	}
	if f.PublicID == "" {
		f.PublicID = uuid.NewString()
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.gorm.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "public_id"}},
		UpdateAll: true,
	}).Create(f).Error
}

// GetFitGuide loads a record by its public id.
func (d *Database) GetFitGuide(ctx context.Context, publicID string) (*FitGuide, error) {
	var f FitGuide
	err := d.gorm.WithContext(ctx).Where("public_id = ?", strings.TrimSpace(publicID)).First(&f).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &f, nil
}

// ListFitGuides returns a page of records plus the total matching the filters.
func (d *Database) ListFitGuides(ctx context.Context, opts FitGuideQuery) ([]FitGuide, int64, error) {
	var total int64
	base := d.gorm.WithContext(ctx).Model(&FitGuide{})
	if q := strings.TrimSpace(opts.Query); q != "" {
		like := fmt.Sprintf("%%%s%%", strings.ToLower(q))
		base = base.Where("LOWER(church_name) LIKE ? OR LOWER(contact_name) LIKE ? OR LOWER(email) LIKE ?", like, like, like)
	}
	if country := strings.TrimSpace(opts.Country); country != "" {
		base = base.Where("LOWER(top_country) = ?", strings.ToLower(country))
	}
	if confidence := strings.TrimSpace(opts.Confidence); confidence != "" {
		base = base.Where("confidence_level = ?", strings.ToLower(confidence))
	}

	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	queryBuilder := base.Order(orderForSort(opts.Sort)).Offset(opts.Offset)
	if opts.Limit > 0 {
		queryBuilder = queryBuilder.Limit(opts.Limit)
	}

	var rows []FitGuide
	if err := queryBuilder.Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

// UpdateNotificationStatus records how the two lead emails went.
func (d *Database) UpdateNotificationStatus(ctx context.Context, publicID string, status NotificationStatus) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	res := d.gorm.WithContext(ctx).Model(&FitGuide{}).
		Where("public_id = ?", publicID).
		Updates(map[string]any{
			"internal_email_status": status.Internal,
			"pastor_email_status":   status.Pastor,
			"email_error":           status.Error,
			"updated_at":            time.Now().UTC(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func orderForSort(sort string) string {
	switch normalizeSort(sort) {
	case SortCreatedAsc:
		return "fit_guides.created_at ASC, fit_guides.id ASC"
	case SortChurchAsc:
		return "fit_guides.church_name ASC, fit_guides.id DESC"
	default:
		return "fit_guides.created_at DESC, fit_guides.id DESC"
	}
}

func applyIndexes(db *gorm.DB) error {
	stmts := []string{
		"UPDATE fit_guides SET email = LOWER(email) WHERE email IS NOT NULL AND email <> LOWER(email)",
		"CREATE INDEX IF NOT EXISTS idx_fit_guides_country_created ON fit_guides(top_country, created_at)",
		"CREATE INDEX IF NOT EXISTS idx_fit_guides_confidence_created ON fit_guides(confidence_level, created_at)",
	}
	for _, stmt := range stmts {
		if err := db.Exec(stmt).Error; err != nil {
			return err
		}
	}
	return nil
}
