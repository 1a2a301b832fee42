package services

import (
	"context"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"archive-twin/internal/models"
)

const settingsKey = "automation:settings"

// SettingsStore is the persistence slice used for the automation
// settings overlay. The Redis client satisfies it; nil means the
// settings live in memory only.
type SettingsStore interface {
	SaveJSON(ctx context.Context, key string, v any) error
	LoadJSON(ctx context.Context, key string, dest any) (bool, error)
}

type IAutomationService interface {
	Get() models.AutomationSettings
	Update(ctx context.Context, settings models.AutomationSettings) (models.AutomationSettings, error)
}

// automationService keeps a lock-free snapshot for readers; writers are
// serialized and replace the whole struct.
type automationService struct {
	snapshot atomic.Value
	mu       sync.Mutex
	store    SettingsStore
}

func NewAutomationService(ctx context.Context, store SettingsStore) IAutomationService {
	s := &automationService{store: store}

	settings := models.DefaultAutomationSettings()
	settings.LastUpdated = time.Now()
	if store != nil {
		var persisted models.AutomationSettings
		found, err := store.LoadJSON(ctx, settingsKey, &persisted)
		switch {
		case err != nil:
			log.Printf("Could not load persisted automation settings, using defaults: %v", err)
		case found:
			if err := persisted.Validate(); err != nil {
				log.Printf("Persisted automation settings invalid (%v), using defaults", err)
			} else {
				settings = persisted
				log.Printf("Loaded automation settings persisted at %s", persisted.LastUpdated.Format(time.RFC3339))
			}
		}
	}
	s.snapshot.Store(settings)
	return s
}

func (s *automationService) Get() models.AutomationSettings {
	return s.snapshot.Load().(models.AutomationSettings)
}

func (s *automationService) Update(ctx context.Context, settings models.AutomationSettings) (models.AutomationSettings, error) {
	if err := settings.Validate(); err != nil {
		return models.AutomationSettings{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	settings.LastUpdated = time.Now()
	s.snapshot.Store(settings)

	if s.store != nil {
		if err := s.store.SaveJSON(ctx, settingsKey, settings); err != nil {
			log.Printf("Automation settings accepted but not persisted: %v", err)
		}
	}
	return settings, nil
}
