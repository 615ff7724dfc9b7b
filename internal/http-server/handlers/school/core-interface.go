package school

import (
	"EduPortal/entity"
	"context"
)

type Core interface {
	AdminSchools(ctx context.Context, session *entity.Session, status string) ([]entity.School, error)
}
