package catalog

import (
	"context"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/shared"
)

// SectionService manages landing-page sections. Admins manage the global
// marketplace sections (nil owner); vendors manage the sections of their own
// storefront page.
type SectionService struct {
	sectionRepo catalog.SectionRepository
	productRepo catalog.ProductRepository
}

// NewSectionService creates a new SectionService
func NewSectionService(sectionRepo catalog.SectionRepository, productRepo catalog.ProductRepository) *SectionService {
	return &SectionService{
		sectionRepo: sectionRepo,
		productRepo: productRepo,
	}
}

// Create creates a new section. ownerVendorID is nil for global sections.
func (s *SectionService) Create(ctx context.Context, ownerVendorID *uuid.UUID, req CreateSectionRequest) (*SectionResponse, error) {
	kind := catalog.SectionKind(req.Kind)
	section, err := catalog.NewSection(req.Title, kind, ownerVendorID)
	if err != nil {
		return nil, err
	}

	if req.CategoryID != nil {
		if err := section.SetCategory(*req.CategoryID); err != nil {
			return nil, err
		}
	}
	if len(req.ProductIDs) > 0 {
		if err := s.validateProducts(ctx, req.ProductIDs); err != nil {
			return nil, err
		}
		if err := section.SetProducts(req.ProductIDs); err != nil {
			return nil, err
		}
	}
	if req.Limit != nil {
		if err := section.SetLimit(*req.Limit); err != nil {
			return nil, err
		}
	}
	if req.SortOrder != nil {
		section.SortOrder = *req.SortOrder
	}

	if err := s.sectionRepo.Save(ctx, section); err != nil {
		return nil, err
	}

	response := ToSectionResponse(section)
	return &response, nil
}

// GetByID retrieves a section, enforcing ownership for vendor callers
func (s *SectionService) GetByID(ctx context.Context, ownerVendorID *uuid.UUID, sectionID uuid.UUID) (*SectionResponse, error) {
	section, err := s.findOwned(ctx, ownerVendorID, sectionID)
	if err != nil {
		return nil, err
	}

	response := ToSectionResponse(section)
	return &response, nil
}

// List returns sections for the back office. Vendor callers see only their
// own sections; admin callers see everything the filter allows.
func (s *SectionService) List(ctx context.Context, ownerVendorID *uuid.UUID, filter shared.Filter) ([]SectionResponse, error) {
	if filter.Filters == nil {
		filter.Filters = make(map[string]interface{})
	}
	if ownerVendorID != nil {
		filter.Filters["vendor_id"] = *ownerVendorID
	}

	sections, err := s.sectionRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}
	return ToSectionResponses(sections), nil
}

// Update updates a section
func (s *SectionService) Update(ctx context.Context, ownerVendorID *uuid.UUID, sectionID uuid.UUID, req UpdateSectionRequest) (*SectionResponse, error) {
	section, err := s.findOwned(ctx, ownerVendorID, sectionID)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		if *req.Title == "" {
			return nil, shared.NewDomainError("INVALID_TITLE", "Section title cannot be empty")
		}
		section.Title = *req.Title
	}
	if req.CategoryID != nil {
		if err := section.SetCategory(*req.CategoryID); err != nil {
			return nil, err
		}
	}
	if req.ProductIDs != nil {
		if err := s.validateProducts(ctx, req.ProductIDs); err != nil {
			return nil, err
		}
		if err := section.SetProducts(req.ProductIDs); err != nil {
			return nil, err
		}
	}
	if req.Limit != nil {
		if err := section.SetLimit(*req.Limit); err != nil {
			return nil, err
		}
	}
	if req.SortOrder != nil {
		section.SortOrder = *req.SortOrder
	}
	if req.Active != nil {
		if *req.Active {
			section.Activate()
		} else {
			section.Deactivate()
		}
	}

	if err := s.sectionRepo.Save(ctx, section); err != nil {
		return nil, err
	}

	response := ToSectionResponse(section)
	return &response, nil
}

// Delete removes a section
func (s *SectionService) Delete(ctx context.Context, ownerVendorID *uuid.UUID, sectionID uuid.UUID) error {
	if _, err := s.findOwned(ctx, ownerVendorID, sectionID); err != nil {
		return err
	}
	return s.sectionRepo.Delete(ctx, sectionID)
}

func (s *SectionService) findOwned(ctx context.Context, ownerVendorID *uuid.UUID, sectionID uuid.UUID) (*catalog.Section, error) {
	section, err := s.sectionRepo.FindByID(ctx, sectionID)
	if err != nil {
		return nil, err
	}
	if ownerVendorID != nil && !section.BelongsTo(ownerVendorID) {
		return nil, shared.ErrNotFound
	}
	return section, nil
}

// validateProducts rejects manual product lists that reference unknown IDs
func (s *SectionService) validateProducts(ctx context.Context, ids []uuid.UUID) error {
	products, err := s.productRepo.FindByIDs(ctx, ids)
	if err != nil {
		return err
	}
	if len(products) != len(ids) {
		return shared.NewDomainError("INVALID_PRODUCTS", "One or more section products do not exist")
	}
	return nil
}
