package service

import (
	"context"

	"github.com/gofrs/uuid/v5"

	"github.com/vpetrukhin/authgate/internal/model"
	"github.com/vpetrukhin/authgate/internal/repository"
)

// HistoryPage carries one page of login history plus the total event count.
type HistoryPage struct {
	Events []model.HistoryEvent
	Total  int
	Page   int
	Size   int
}

// HistoryService reads the append-only login/logout log.
type HistoryService interface {
	// Page returns the requested page (1-based, newest first) and the total
	// number of events.
	Page(ctx context.Context, userID uuid.UUID, size, number int) (*HistoryPage, error)
}

type HistoryServiceImpl struct {
	history repository.HistoryRepository
}

// NewHistoryService constructs HistoryService.
func NewHistoryService(history repository.HistoryRepository) *HistoryServiceImpl {
	return &HistoryServiceImpl{history: history}
}

// Page clamps size/number and reads count plus one page.
func (s *HistoryServiceImpl) Page(ctx context.Context, userID uuid.UUID, size, number int) (*HistoryPage, error) {
	if size <= 0 {
		size = 20
	}
	if number <= 0 {
		number = 1
	}
	total, err := s.history.Count(ctx, userID)
	if err != nil {
		return nil, err
	}
	events, err := s.history.Page(ctx, userID, size, number)
	if err != nil {
		return nil, err
	}
	return &HistoryPage{Events: events, Total: total, Page: number, Size: size}, nil
}
