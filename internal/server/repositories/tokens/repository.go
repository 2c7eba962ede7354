package tokens

import (
	"context"

	"github.com/ekazakov/taskmate/internal/server/models"
)

type Repository interface {
	GetOrCreate(ctx context.Context, userID int64, key string) (string, error)
	Find(ctx context.Context, key string) (*models.AuthToken, error)
	DeleteByUserID(ctx context.Context, userID int64) error
}
