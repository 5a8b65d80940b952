package service

import (
	"fmt"
	"sort"
	"sync"

	"github.com/kcirtapfromspace/offleash-sub004/internal/models"
)

// Catalog holds the service offerings loaded from configuration and answers
// lookup and walker eligibility questions.
type Catalog struct {
	mu       sync.RWMutex
	services []models.Service
	byID     map[string]models.Service
}

func NewCatalog(services []models.Service) *Catalog {
	c := &Catalog{}
	c.Replace(services)
	return c
}

// Replace swaps the catalog contents, e.g. on config reload.
func (c *Catalog) Replace(services []models.Service) {
	sorted := append([]models.Service(nil), services...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].SortOrder < sorted[j].SortOrder })

	byID := make(map[string]models.Service, len(sorted))
	for _, svc := range sorted {
		byID[svc.ID] = svc
	}

	c.mu.Lock()
	c.services = sorted
	c.byID = byID
	c.mu.Unlock()
}

// Active returns the offerings currently bookable, in display order.
func (c *Catalog) Active() []models.Service {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var active []models.Service
	for _, svc := range c.services {
		if svc.IsActive {
			active = append(active, svc)
		}
	}
	return active
}

// Get resolves a service id, active or not.
func (c *Catalog) Get(id string) (models.Service, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	svc, ok := c.byID[id]
	if !ok {
		return models.Service{}, fmt.Errorf("%w: %s", ErrUnknownService, id)
	}
	return svc, nil
}

// CheckEligibility verifies the walker may perform the service. A service
// with no walker list is open to every walker.
func (c *Catalog) CheckEligibility(serviceID, walkerID string) (models.Service, error) {
	svc, err := c.Get(serviceID)
	if err != nil {
		return models.Service{}, err
	}
	if len(svc.WalkerIDs) == 0 {
		return svc, nil
	}
	for _, id := range svc.WalkerIDs {
		if id == walkerID {
			return svc, nil
		}
	}
	return models.Service{}, fmt.Errorf("%w: %s for %s", ErrWalkerNotEligible, walkerID, serviceID)
}
