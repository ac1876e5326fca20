package service

import (
	"context"
	"errors"
	"time"

	"barterhub-api/internal/classify"
	"barterhub-api/internal/model"
	"barterhub-api/internal/repository"
	"barterhub-api/pkg/apierror"
	"barterhub-api/pkg/uid"
)

// PriceBander maps a price to its bucket label.
type PriceBander func(price float64) string

// ItemService handles item catalog business logic. The category
// classifier and price-band labeler are injected capabilities so tests
// can substitute deterministic ones.
type ItemService struct {
	users      repository.UserRepository
	items      repository.ItemRepository
	classifier classify.Classifier
	priceBand  PriceBander
}

// NewItemService creates a new item service.
func NewItemService(users repository.UserRepository, items repository.ItemRepository, classifier classify.Classifier, priceBand PriceBander) *ItemService {
	if users == nil || items == nil {
		return nil
	}
	return &ItemService{
		users:      users,
		items:      items,
		classifier: classifier,
		priceBand:  priceBand,
	}
}

// UploadItemInput carries the caller-supplied fields of a new item.
type UploadItemInput struct {
	Owner     string
	Title     string
	Tags      []string
	Condition int
	Price     float64
	Category  string
}

// Upload creates a new item for a known owner. Category is backfilled
// from the classifier when not supplied, and the price band is derived
// from the price.
func (s *ItemService) Upload(ctx context.Context, in UploadItemInput) (model.Item, error) {
	if in.Condition < 0 || in.Condition > 100 {
		return model.Item{}, apierror.ValidationError("condition must be between 0 and 100")
	}
	if in.Price < 0 {
		return model.Item{}, apierror.ValidationError("price must not be negative")
	}

	if _, err := s.users.GetUser(ctx, in.Owner); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.Item{}, apierror.NotFound("owner is not registered")
		}
		return model.Item{}, err
	}

	category := in.Category
	if category == "" && s.classifier != nil {
		category = s.classifier(classify.ItemText(in.Title, in.Tags))
	}

	band := ""
	if s.priceBand != nil {
		band = s.priceBand(in.Price)
	}

	item := model.Item{
		ID:            uid.New(),
		OwnerIdentity: in.Owner,
		Title:         in.Title,
		Tags:          in.Tags,
		Condition:     in.Condition,
		Price:         in.Price,
		Category:      category,
		PriceBand:     band,
		Rating:        model.DefaultRating,
		CreatedAt:     time.Now().UTC(),
	}
	if err := s.items.CreateItem(ctx, item); err != nil {
		return model.Item{}, err
	}
	return item, nil
}

// Search matches keyword against item titles and tags, optionally
// excluding one owner's items.
func (s *ItemService) Search(ctx context.Context, keyword, excludeOwner string) ([]model.Item, error) {
	items, err := s.items.SearchItems(ctx, keyword, excludeOwner)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []model.Item{}
	}
	return items, nil
}
