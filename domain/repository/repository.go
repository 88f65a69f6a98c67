package repository

import (
	"context"

	"github.com/pyama86/snowpanel/domain/entity"
)

type IncidentRepository interface {
	Incidents(context.Context) ([]entity.Incident, error)
	CreateIncident(context.Context, entity.Payload) (*entity.Incident, error)
	UpdateIncident(context.Context, string, entity.Payload) (*entity.Incident, error)
	DeleteIncident(context.Context, string) error
}

// SessionRepository は認証状態を扱う。SubscribeはIsAuthenticatedの変化をすべて届ける
type SessionRepository interface {
	IsAuthenticated() bool
	Login(context.Context) error
	Logout(context.Context) error
	Subscribe() <-chan bool
}

type Repository interface {
	IncidentRepository
	SessionRepository
}

type RepositoryFacade struct {
	IncidentRepository
	SessionRepository
}

func NewRepository(incidentRepository IncidentRepository, sessionRepository SessionRepository) Repository {
	return RepositoryFacade{
		IncidentRepository: incidentRepository,
		SessionRepository:  sessionRepository,
	}
}
