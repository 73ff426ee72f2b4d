package repository

import "jobchat/internal/storage"

type Repositories struct {
	Message MessageRepository
}

func NewRepositories(db *storage.PostgresDB) *Repositories {
	return &Repositories{
		Message: NewMessageRepository(db),
	}
}
