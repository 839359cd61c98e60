package service

import (
	"sort"
	"strings"

	"groombot/internal/models"
)

// CatalogService отдает прайс-лист услуг. Каталог задается конфигом и
// неизменен на время работы процесса.
type CatalogService struct {
	services []models.Service
	byID     map[int64]models.Service
}

func NewCatalogService(services []models.Service) *CatalogService {
	visible := make([]models.Service, 0, len(services))
	byID := make(map[int64]models.Service, len(services))
	for _, svc := range services {
		byID[svc.ID] = svc
		if svc.Available {
			visible = append(visible, svc)
		}
	}
	sort.SliceStable(visible, func(i, j int) bool {
		return visible[i].SortOrder < visible[j].SortOrder
	})

	return &CatalogService{services: visible, byID: byID}
}

// GetServices returns available services in display order.
func (s *CatalogService) GetServices() []models.Service {
	return s.services
}

func (s *CatalogService) GetService(id int64) (*models.Service, bool) {
	svc, ok := s.byID[id]
	if !ok {
		return nil, false
	}
	return &svc, true
}

// TotalPrice sums prices of the chosen services; unknown ids count as zero.
func (s *CatalogService) TotalPrice(ids []int64) int64 {
	var total int64
	for _, id := range ids {
		if svc, ok := s.byID[id]; ok {
			total += svc.Price
		}
	}
	return total
}

// ServiceNames builds the human-readable snapshot stored on the appointment.
func (s *CatalogService) ServiceNames(ids []int64) string {
	names := make([]string, 0, len(ids))
	for _, id := range ids {
		if svc, ok := s.byID[id]; ok {
			names = append(names, svc.Name)
		}
	}
	return strings.Join(names, ", ")
}
