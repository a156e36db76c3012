package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"gift-store-api/internal/model"
	"gift-store-api/pkg/apierror"
)

// CertificateStore is the persistence surface the catalog service needs.
type CertificateStore interface {
	FindByID(ctx context.Context, id string) (model.Certificate, error)
	List(ctx context.Context, page int, limit int) ([]model.Certificate, int, error)
	Save(ctx context.Context, c model.Certificate) (model.Certificate, error)
	Delete(ctx context.Context, id string) error
}

type TagStore interface {
	FindByID(ctx context.Context, id string) (model.Tag, error)
	List(ctx context.Context) ([]model.Tag, error)
	Create(ctx context.Context, t model.Tag) (model.Tag, error)
	Delete(ctx context.Context, id string) error
}

// CatalogService manages gift certificates and their tags.
type CatalogService struct {
	certificates CertificateStore
	tags         TagStore
}

func NewCatalogService(certificates CertificateStore, tags TagStore) *CatalogService {
	return &CatalogService{certificates: certificates, tags: tags}
}

func (s *CatalogService) GetCertificate(ctx context.Context, id string) (model.Certificate, error) {
	return s.certificates.FindByID(ctx, id)
}

func (s *CatalogService) ListCertificates(ctx context.Context, page int, limit int) ([]model.Certificate, model.Meta, error) {
	if page < 1 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}

	certs, total, err := s.certificates.List(ctx, page, limit)
	if err != nil {
		return nil, model.Meta{}, err
	}

	totalPages := (total + limit - 1) / limit
	return certs, model.Meta{Page: page, Limit: limit, Total: total, TotalPages: totalPages}, nil
}

func (s *CatalogService) CreateCertificate(ctx context.Context, req model.CreateCertificateRequest) (model.Certificate, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return model.Certificate{}, apierror.BadRequest("certificate name is required", "")
	}
	if req.Price < 0 {
		return model.Certificate{}, apierror.BadRequest("price cannot be negative", "")
	}

	now := time.Now().UTC()
	cert := model.Certificate{
		ID:           uuid.NewString(),
		Name:         name,
		Description:  strings.TrimSpace(req.Description),
		Price:        req.Price,
		DurationDays: req.DurationDays,
		Tags:         tagsFromNames(req.Tags),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	return s.certificates.Save(ctx, cert)
}

// PatchCertificate applies only the fields present in the request. The
// updated_at stamp is assigned here, right before the write.
func (s *CatalogService) PatchCertificate(ctx context.Context, id string, req model.PatchCertificateRequest) (model.Certificate, error) {
	cert, err := s.certificates.FindByID(ctx, id)
	if err != nil {
		return model.Certificate{}, err
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return model.Certificate{}, apierror.BadRequest("certificate name cannot be blank", "")
		}
		cert.Name = name
	}
	if req.Description != nil {
		cert.Description = strings.TrimSpace(*req.Description)
	}
	if req.Price != nil {
		if *req.Price < 0 {
			return model.Certificate{}, apierror.BadRequest("price cannot be negative", "")
		}
		cert.Price = *req.Price
	}
	if req.DurationDays != nil {
		cert.DurationDays = *req.DurationDays
	}
	if req.Tags != nil {
		cert.Tags = tagsFromNames(*req.Tags)
	}

	cert.UpdatedAt = time.Now().UTC()
	return s.certificates.Save(ctx, cert)
}

func (s *CatalogService) DeleteCertificate(ctx context.Context, id string) error {
	return s.certificates.Delete(ctx, id)
}

func (s *CatalogService) GetTag(ctx context.Context, id string) (model.Tag, error) {
	return s.tags.FindByID(ctx, id)
}

func (s *CatalogService) ListTags(ctx context.Context) ([]model.Tag, error) {
	return s.tags.List(ctx)
}

func (s *CatalogService) CreateTag(ctx context.Context, req model.CreateTagRequest) (model.Tag, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return model.Tag{}, apierror.BadRequest("tag name is required", "")
	}

	return s.tags.Create(ctx, model.Tag{ID: uuid.NewString(), Name: name})
}

func (s *CatalogService) DeleteTag(ctx context.Context, id string) error {
	return s.tags.Delete(ctx, id)
}

func tagsFromNames(names []string) []model.Tag {
	tags := make([]model.Tag, 0, len(names))
	seen := map[string]struct{}{}
	for _, raw := range names {
		name := strings.TrimSpace(raw)
		if name == "" {
			continue
		}
		if _, dup := seen[strings.ToLower(name)]; dup {
			continue
		}
		seen[strings.ToLower(name)] = struct{}{}
		tags = append(tags, model.Tag{ID: uuid.NewString(), Name: name})
	}
	return tags
}
