// Package service implements the transactional business operations behind
// the HTTP handlers. Every mutation runs inside one gorm transaction so the
// authorization check and the paired membership edges it gates are applied
// atomically; a failed operation leaves prior state unchanged.
package service

import (
	"github.com/pozor22/iiko/internal/notify"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Service bundles the shared dependencies of all business operations
type Service struct {
	db       *gorm.DB
	notifier *notify.Notifier
	log      *zap.Logger
}

// New creates the service. The notifier may be backed by a nil broker.
func New(db *gorm.DB, notifier *notify.Notifier, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{db: db, notifier: notifier, log: log}
}
