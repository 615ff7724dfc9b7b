package franchisor

import (
	"EduPortal/entity"
	"context"
)

type Core interface {
	FranchisorSchools(ctx context.Context, session *entity.Session, franchisorID string) ([]entity.School, error)
	FranchisorSchool(ctx context.Context, session *entity.Session, franchisorID, schoolID string) (*entity.School, error)
}
