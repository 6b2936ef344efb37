package service

import (
	"context"
	"fmt"
	"log"

	"backend/internal/model"
	"backend/internal/repository"
)

type TemplateResponse struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	ServiceType  string `json:"service_type"`
	HTMLTemplate string `json:"html_template"`
	IsDefault    bool   `json:"is_default"`
}

type TemplateService interface {
	// GetByServiceType returns the template for a service type, falling back
	// to the default template when the typed lookup fails. Only when both
	// fail does the caller see an error.
	GetByServiceType(ctx context.Context, serviceType string) (*model.ProposalTemplate, error)
	GetDefault(ctx context.Context) (*model.ProposalTemplate, error)
	List(ctx context.Context) ([]TemplateResponse, error)
}

type templateService struct {
	repo repository.TemplateRepository
}

func NewTemplateService(repo repository.TemplateRepository) TemplateService {
	return &templateService{repo: repo}
}

func (s *templateService) GetByServiceType(ctx context.Context, serviceType string) (*model.ProposalTemplate, error) {
	if !model.IsValidServiceType(serviceType) {
		return nil, fmt.Errorf("unknown service type: %s", serviceType)
	}

	tpl, err := s.repo.FindByServiceType(ctx, serviceType)
	if err == nil {
		return tpl, nil
	}
	log.Printf("no template for service type %s, falling back to default: %v", serviceType, err)

	tpl, err = s.repo.FindDefault(ctx)
	if err != nil {
		return nil, fmt.Errorf("no template available for service type %s: %w", serviceType, err)
	}
	return tpl, nil
}

func (s *templateService) GetDefault(ctx context.Context) (*model.ProposalTemplate, error) {
	return s.repo.FindDefault(ctx)
}

func (s *templateService) List(ctx context.Context) ([]TemplateResponse, error) {
	templates, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch templates: %w", err)
	}

	result := make([]TemplateResponse, 0, len(templates))
	for _, t := range templates {
		result = append(result, TemplateResponse{
			ID:           t.ID.String(),
			Name:         t.Name,
			ServiceType:  t.ServiceType,
			HTMLTemplate: t.HTMLTemplate,
			IsDefault:    t.IsDefault,
		})
	}
	return result, nil
}
