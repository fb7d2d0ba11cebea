package jobs

import (
	"context"

	"github.com/papyri/archive/internal/service"
	"github.com/papyri/archive/internal/store"
	"github.com/sirupsen/logrus"
)

// LegacySeeder sweeps documents created before versioning existed and
// persists their synthesized initial version, so the moderation worklist does
// not have to seed them lazily one by one. Seeding is idempotent, so the
// sweep is safe to run on every tick.
type LegacySeeder struct {
	store    store.Store
	docs     *service.DocumentService
	schedule string
}

func NewLegacySeeder(schedule string, store store.Store, docs *service.DocumentService) *LegacySeeder {
	return &LegacySeeder{
		store:    store,
		docs:     docs,
		schedule: schedule,
	}
}

func (s *LegacySeeder) Schedule() string {
	return s.schedule
}

func (s *LegacySeeder) Run() {
	ctx := context.Background()

	docs, err := s.store.ListDocuments(ctx)
	if err != nil {
		logrus.Errorf("legacy seed sweep: listing documents: %v", err)
		return
	}

	var seeded int
	for _, doc := range docs {
		if len(doc.Versions) > 0 || doc.AttachFile == "" {
			continue
		}
		if _, err := s.docs.FetchVersions(ctx, doc.ID); err != nil {
			logrus.Errorf("legacy seed sweep: document %d: %v", doc.ID, err)
			continue
		}
		seeded++
	}

	if seeded > 0 {
		logrus.Infof("legacy seed sweep: seeded %d documents", seeded)
	}
}
