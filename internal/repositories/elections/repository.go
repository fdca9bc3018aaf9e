package elections

import (
	"context"

	"github.com/muralvote/muralvote/internal/models"
)

type Repository interface {
	Create(ctx context.Context, election *models.Election) error
	Update(ctx context.Context, election *models.Election) error
	GetByID(ctx context.Context, id int64) (*models.Election, error)
	List(ctx context.Context) ([]*models.Election, error)
}
