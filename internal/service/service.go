package service

import (
	"jobchat/internal/repository"
)

type Services struct {
	Registry *RoomRegistry
	Gateway  *ConnectionGateway
	History  *HistoryService
}

func NewServices(repos *repository.Repositories, opts GatewayOptions) *Services {
	registry := NewRoomRegistry()

	return &Services{
		Registry: registry,
		Gateway:  NewConnectionGateway(registry, repos.Message, opts),
		History:  NewHistoryService(repos.Message),
	}
}
