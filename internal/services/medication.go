package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/medtrack/internal/common"
	"github.com/dmitrijs2005/medtrack/internal/logging"
	"github.com/dmitrijs2005/medtrack/internal/models"
)

// MedicationService is the CRUD collaborator for medication definitions.
// All data is stored as one JSON list under the medications collection and
// rides through the vault, encrypted when encryption mode is on.
type MedicationService struct {
	vault *Vault
	log   logging.Logger

	lowStockThreshold int
	now               func() time.Time
}

// NewMedicationService constructs a MedicationService. A remaining stock at
// or below lowStockThreshold is reported back to callers on decrement.
func NewMedicationService(vault *Vault, log logging.Logger, lowStockThreshold int) *MedicationService {
	return &MedicationService{
		vault:             vault,
		log:               log,
		lowStockThreshold: lowStockThreshold,
		now:               time.Now,
	}
}

// List returns all stored medications. An empty store yields an empty list.
func (s *MedicationService) List(ctx context.Context) ([]models.Medication, error) {
	meds := []models.Medication{}
	if _, err := s.vault.ReadJSON(ctx, CollectionMedications, &meds); err != nil {
		return nil, err
	}
	return meds, nil
}

// Add validates and stores a new medication, assigning its id and creation
// timestamp. The creation timestamp anchors every-other-day parity, so it is
// set here and never touched again.
func (s *MedicationService) Add(ctx context.Context, med models.Medication) (models.Medication, error) {
	if med.Name == "" {
		return models.Medication{}, fmt.Errorf("medication name is required")
	}
	if !med.Frequency.Valid() {
		return models.Medication{}, fmt.Errorf("%w: unknown frequency %q", common.ErrScheduleConfig, med.Frequency.Kind)
	}
	if _, _, err := med.TimeOfDay(); err != nil {
		return models.Medication{}, err
	}

	meds, err := s.List(ctx)
	if err != nil {
		return models.Medication{}, err
	}

	med.ID = uuid.NewString()
	med.CreatedAt = s.now()
	meds = append(meds, med)

	if err := s.vault.WriteJSON(ctx, CollectionMedications, meds); err != nil {
		return models.Medication{}, err
	}

	s.log.Info(ctx, "medication added", "id", med.ID, "name", med.Name)
	return med, nil
}

// Update replaces the stored medication with the same id.
func (s *MedicationService) Update(ctx context.Context, med models.Medication) error {
	meds, err := s.List(ctx)
	if err != nil {
		return err
	}

	for i := range meds {
		if meds[i].ID == med.ID {
			// CreatedAt is immutable: it anchors schedule parity.
			med.CreatedAt = meds[i].CreatedAt
			meds[i] = med
			return s.vault.WriteJSON(ctx, CollectionMedications, meds)
		}
	}
	return common.ErrorNotFound
}

// Delete removes the medication with the given id.
func (s *MedicationService) Delete(ctx context.Context, id string) error {
	meds, err := s.List(ctx)
	if err != nil {
		return err
	}

	for i := range meds {
		if meds[i].ID == id {
			meds = append(meds[:i], meds[i+1:]...)
			return s.vault.WriteJSON(ctx, CollectionMedications, meds)
		}
	}
	return common.ErrorNotFound
}

// DecrementStock records that a dose was taken: the remaining stock count
// goes down by one, floored at zero. It returns the remaining count and
// whether it is at or below the low-stock threshold.
func (s *MedicationService) DecrementStock(ctx context.Context, id string) (remaining int, low bool, err error) {
	meds, err := s.List(ctx)
	if err != nil {
		return 0, false, err
	}

	for i := range meds {
		if meds[i].ID != id {
			continue
		}
		if meds[i].Stock > 0 {
			meds[i].Stock--
		}
		remaining = meds[i].Stock
		if err := s.vault.WriteJSON(ctx, CollectionMedications, meds); err != nil {
			return 0, false, err
		}
		low = remaining <= s.lowStockThreshold
		if low {
			s.log.Warn(ctx, "medication stock is low", "id", id, "name", meds[i].Name, "remaining", remaining)
		}
		return remaining, low, nil
	}
	return 0, false, common.ErrorNotFound
}
