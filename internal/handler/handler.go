// Package handler adapts gin requests onto internal/validator and
// internal/ledger, translating domain errors into the wire shapes of
// §6/§7. It holds no business logic of its own beyond DTO <-> domain
// mapping, mirroring the teacher's thin handler layer.
package handler

import (
	"github.com/relaycore/securemsg/internal/ledger"
	"github.com/relaycore/securemsg/internal/validator"
)

type Handler struct {
	Validator *validator.Validator
	Store     ledger.Store
}

func New(v *validator.Validator, store ledger.Store) *Handler {
	return &Handler{Validator: v, Store: store}
}
