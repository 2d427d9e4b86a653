package http

import (
	"github.com/nats-io/nats.go"
	"github.com/nthds/segyscope/internal/core/usecases"
)

// Dependencies holds all services needed by HTTP handlers.
type Dependencies struct {
	Datasets *usecases.DatasetService
	NATS     *nats.Conn
}
