package member

import "context"

type Repository interface {
	Create(ctx context.Context, name, email string, isStudent bool) (*Member, error)
	FindByID(ctx context.Context, id int) (*Member, error)
	EmailExists(ctx context.Context, email string) (bool, error)
}
