package storage

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/m3rciful/autoservice-bot/internal/domain"
)

// CreateAppointment inserts a service appointment. Unknown client, branch or
// service ids are rejected by the store and reported as ErrForeignKeyViolation.
func (r *Repository) CreateAppointment(ctx context.Context, a domain.Appointment) error {
	start := time.Now()
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO service_appointments (client_id, branch_id, service_id, appointment_date)
		VALUES ($1, $2, $3, $4)`,
		a.ClientID, a.BranchID, a.ServiceID, a.At)
	observe(ctx, "appointments.insert", start, err,
		slog.Int64("client_id", a.ClientID),
		slog.Int64("branch_id", a.BranchID),
		slog.Int64("service_id", a.ServiceID),
	)
	if err != nil {
		return fmt.Errorf("create appointment: %w", mapError(err))
	}
	return nil
}
