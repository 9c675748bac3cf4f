// Package events publishes workflow notifications on a NATS subject so
// interested services (mailers, feed builders) can react without being
// wired into the approval path. Publishing is fire-and-forget and
// optional: a nil Publisher is valid and does nothing.
package events

import (
	"encoding/json"
	"time"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"
)

// Subjects published by the workflow.
const (
	SubjectChangeApproved = "umunna.changes.approved"
	SubjectChangeRejected = "umunna.changes.rejected"
)

// ChangeEvent is the payload published on change resolution.
type ChangeEvent struct {
	ChangeID   string    `json:"change_id"`
	PersonID   string    `json:"person_id"`
	FamilyID   string    `json:"family_id"`
	ProposerID string    `json:"proposer_id"`
	ResolvedBy string    `json:"resolved_by"`
	Fields     []string  `json:"fields"`
	ResolvedAt time.Time `json:"resolved_at"`
}

// Publisher wraps a NATS connection. Use Connect to build one; keep it
// nil to disable eventing.
type Publisher struct {
	nc  *nats.Conn
	log *zap.Logger
}

// Connect dials the NATS server. The connection reconnects forever with
// the client's defaults; a dial failure is returned so startup can
// decide whether eventing is required.
func Connect(url string, logger *zap.Logger) (*Publisher, error) {
	nc, err := nats.Connect(url, nats.Name("umunna"))
	if err != nil {
		return nil, err
	}
	return &Publisher{nc: nc, log: logger}, nil
}

// Publish sends one event. Errors are logged, not returned: eventing is
// advisory and must never fail the workflow that triggered it.
func (p *Publisher) Publish(subject string, ev ChangeEvent) {
	if p == nil || p.nc == nil {
		return
	}
	data, err := json.Marshal(ev)
	if err != nil {
		p.log.Error("event marshal failed", zap.String("subject", subject), zap.Error(err))
		return
	}
	if err := p.nc.Publish(subject, data); err != nil {
		p.log.Warn("event publish failed", zap.String("subject", subject), zap.Error(err))
	}
}

// Close drains the connection.
func (p *Publisher) Close() {
	if p == nil || p.nc == nil {
		return
	}
	if err := p.nc.Drain(); err != nil {
		p.log.Warn("nats drain failed", zap.Error(err))
	}
}
