package store

import (
	"context"
	"errors"
	"strings"
)

// ErrNotFound is returned when no fit guide matches the requested public id.
var ErrNotFound = errors.New("fit guide not found")

// Driver names accepted by the server configuration.
const (
	DriverSQLite = "sqlite"
	DriverMongo  = "mongo"
)

// Repository is the persistence surface shared by the SQLite and MongoDB backends.
type Repository interface {
	SaveFitGuide(ctx context.Context, f *FitGuide) error
	GetFitGuide(ctx context.Context, publicID string) (*FitGuide, error)
	ListFitGuides(ctx context.Context, opts FitGuideQuery) ([]FitGuide, int64, error)
	UpdateNotificationStatus(ctx context.Context, publicID string, status NotificationStatus) error
	Close() error
}

// NotificationStatus is the outcome of the two lead emails.
type NotificationStatus struct {
	Internal string
	Pastor   string
	Error    string
}

// Sort orders understood by ListFitGuides.
const (
	SortCreatedDesc = "created_desc"
	SortCreatedAsc  = "created_asc"
	SortChurchAsc   = "church_asc"
)

// FitGuideQuery encapsulates filters and pagination for listing fit guides.
type FitGuideQuery struct {
	Query      string
	Country    string
	Confidence string
	Sort       string
	Offset     int
	Limit      int
}

func normalizeSort(sort string) string {
	switch s := strings.ToLower(strings.TrimSpace(sort)); s {
	case SortCreatedAsc, SortChurchAsc:
		return s
	default:
		return SortCreatedDesc
	}
}
