package stats

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"
)

const (
	dayKeyFormat = "2006-01-02"
	recentDays   = 14
)

// Service records usage and serves the admin dashboard reads. Writes
// are fire-and-forget: a store outage must never surface as or cause a
// user-visible error, so Record logs and discards every failure. This
// is a deliberate availability-over-completeness tradeoff.
type Service interface {
	Record(ctx context.Context, entry Entry)
	Recent(ctx context.Context, limit int) ([]Entry, error)
	UserStats(ctx context.Context) ([]UserStat, error)
	Overview(ctx context.Context) (Overview, error)
}

type service struct {
	store     Store
	retention time.Duration
	logger    *slog.Logger
	now       func() time.Time
}

// NewService is a wire provider for the stats domain.
func NewService(store Store, retention time.Duration, logger *slog.Logger) Service {
	return &service{
		store:     store,
		retention: retention,
		logger:    logger.With("component", "stats.service"),
		now:       time.Now,
	}
}

func (s *service) Record(ctx context.Context, entry Entry) {
	entry.ID = uuid.NewString()
	entry.Timestamp = s.now().UTC()
	day := entry.Timestamp.Format(dayKeyFormat)

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 2*time.Second)
	defer cancel()

	if err := s.store.AppendEntry(ctx, day, entry, s.retention); err != nil {
		s.logger.Warn("usage log append failed", "error", err)
		return
	}
	if entry.User != "" {
		if err := s.store.BumpUser(ctx, entry.User, entry.Timestamp); err != nil {
			s.logger.Warn("user stat bump failed", "error", err)
		}
	}
	if entry.Status == StatusSuccess && entry.ImageHash != "" {
		if err := s.store.MarkImage(ctx, entry.ImageHash); err != nil {
			s.logger.Warn("image hash tracking failed", "error", err)
		}
	}
}

// Recent walks backwards over the per-day lists until limit entries are
// collected or the lookback window is exhausted. A failed day is
// skipped, not fatal.
func (s *service) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 50
	}
	today := s.now().UTC()
	out := make([]Entry, 0, limit)
	for i := 0; i < recentDays && len(out) < limit; i++ {
		day := today.AddDate(0, 0, -i).Format(dayKeyFormat)
		entries, err := s.store.EntriesByDay(ctx, day, limit-len(out))
		if err != nil {
			s.logger.Warn("day log fetch failed", "day", day, "error", err)
			continue
		}
		out = append(out, entries...)
	}
	return out, nil
}

func (s *service) UserStats(ctx context.Context) ([]UserStat, error) {
	users, err := s.store.Users(ctx)
	if err != nil {
		return nil, err
	}
	sort.Slice(users, func(i, j int) bool {
		return users[i].TotalAnalyses > users[j].TotalAnalyses
	})
	return users, nil
}

func (s *service) Overview(ctx context.Context) (Overview, error) {
	users, err := s.UserStats(ctx)
	if err != nil {
		return Overview{}, err
	}
	unique, err := s.store.UniqueImageCount(ctx)
	if err != nil {
		return Overview{}, err
	}

	var total int64
	for _, u := range users {
		total += u.TotalAnalyses
	}
	duplicates := total - unique
	if duplicates < 0 {
		duplicates = 0
	}
	percent := 0
	if total > 0 {
		percent = int(duplicates * 100 / total)
	}
	return Overview{
		TotalAnalyses:    total,
		UniqueImages:     unique,
		Duplicates:       duplicates,
		DuplicatePercent: percent,
		Users:            len(users),
	}, nil
}
