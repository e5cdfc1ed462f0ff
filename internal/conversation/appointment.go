package conversation

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/m3rciful/autoservice-bot/core/logger"
	"github.com/m3rciful/autoservice-bot/internal/domain"
	"github.com/m3rciful/autoservice-bot/internal/report"
)

// BeginAppointment shows the client list and asks for the client id.
func (e *Engine) BeginAppointment(ctx context.Context, userID int64) ([]Reply, error) {
	defer e.locks.acquire(userID)()

	clients, err := e.repo.ListClientsBrief(ctx)
	if err != nil {
		return e.abandon(ctx, userID, logger.CompAppointments, "appointments.clients", err)
	}
	if err := e.transition(ctx, userID, AwaitingClientID{}); err != nil {
		return e.abandon(ctx, userID, logger.CompSession, "session.save", err)
	}
	return []Reply{
		{Text: report.RefList("Клиенты", clients)},
		{Text: textAskClientID, Keyboard: KeyboardCancel},
	}, nil
}

func (e *Engine) appointmentClient(ctx context.Context, userID int64, text string) ([]Reply, error) {
	clientID := strings.TrimSpace(text)
	next := AwaitingBranchID{ClientID: clientID}
	if !e.askService {
		next.ServiceID = clientID
	}

	branches, err := e.repo.ListBranchesBrief(ctx)
	if err != nil {
		return e.abandon(ctx, userID, logger.CompAppointments, "appointments.branches", err)
	}
	if err := e.transition(ctx, userID, next); err != nil {
		return e.abandon(ctx, userID, logger.CompSession, "session.save", err)
	}
	return []Reply{
		{Text: report.RefList("Филиалы", branches)},
		{Text: textAskBranchID, Keyboard: KeyboardCancel},
	}, nil
}

func (e *Engine) appointmentBranch(ctx context.Context, userID int64, step AwaitingBranchID, text string) ([]Reply, error) {
	branchID := strings.TrimSpace(text)
	if !e.askService {
		return e.createAppointment(ctx, userID, step.ClientID, branchID, step.ServiceID, true)
	}

	services, err := e.repo.ListServicesBrief(ctx)
	if err != nil {
		return e.abandon(ctx, userID, logger.CompAppointments, "appointments.services", err)
	}
	next := AwaitingServiceID{ClientID: step.ClientID, BranchID: branchID}
	if err := e.transition(ctx, userID, next); err != nil {
		return e.abandon(ctx, userID, logger.CompSession, "session.save", err)
	}
	return []Reply{
		{Text: report.RefList("Услуги", services)},
		{Text: textAskServiceID, Keyboard: KeyboardCancel},
	}, nil
}

func (e *Engine) appointmentService(ctx context.Context, userID int64, step AwaitingServiceID, text string) ([]Reply, error) {
	return e.createAppointment(ctx, userID, step.ClientID, step.BranchID, strings.TrimSpace(text), false)
}

// createAppointment persists the collected ids stamped with the current time.
// Whether the ids exist is left to the store.
func (e *Engine) createAppointment(ctx context.Context, userID int64, clientID, branchID, serviceID string, implicitService bool) ([]Reply, error) {
	appt, err := parseAppointment(clientID, branchID, serviceID)
	if err != nil {
		return e.abandon(ctx, userID, logger.CompAppointments, "appointments.parse", err)
	}
	appt.At = e.now()

	if implicitService {
		logger.Warn(ctx, logger.CompAppointments, "appointments.service_id_implicit",
			slog.Int64("client_id", appt.ClientID),
			slog.Int64("service_id", appt.ServiceID),
		)
	}
	if err := e.repo.CreateAppointment(ctx, appt); err != nil {
		return e.abandon(ctx, userID, logger.CompAppointments, "appointments.create", err)
	}
	if err := e.transition(ctx, userID, Idle{}); err != nil {
		logger.Warn(ctx, logger.CompSession, "session.clear",
			slog.String("status", "fail"),
			slog.String("err", err.Error()),
		)
	}
	logger.Info(ctx, logger.CompAppointments, "appointments.created",
		slog.String("status", "ok"),
		slog.Int64("client_id", appt.ClientID),
		slog.Int64("branch_id", appt.BranchID),
		slog.Int64("service_id", appt.ServiceID),
	)
	return one(textAppointmentDone, KeyboardMenu), nil
}

func parseAppointment(clientID, branchID, serviceID string) (domain.Appointment, error) {
	var appt domain.Appointment
	fields := []struct {
		name string
		raw  string
		dst  *int64
	}{
		{"client_id", clientID, &appt.ClientID},
		{"branch_id", branchID, &appt.BranchID},
		{"service_id", serviceID, &appt.ServiceID},
	}
	for _, f := range fields {
		id, err := strconv.ParseInt(f.raw, 10, 64)
		if err != nil {
			return appt, fmt.Errorf("некорректный %s %q", f.name, f.raw)
		}
		*f.dst = id
	}
	return appt, nil
}
