// internal/notify/dispatcher.go
package notify

import (
	"context"
	"strconv"
	"time"

	"github.com/google/uuid"

	stderrors "marketplace-notify/internal/common/errors"
	"marketplace-notify/internal/common/logger"
	"marketplace-notify/internal/common/metrics"
	"marketplace-notify/internal/common/observability"
	"marketplace-notify/internal/models"
)

// Senders holds the four channel senders in their fixed dispatch slots.
type Senders struct {
	Email ChannelSender
	Toast ChannelSender
	Push  ChannelSender
	InApp ChannelSender
}

func (s Senders) forChannel(ch models.Channel) ChannelSender {
	switch ch {
	case models.ChannelEmail:
		return s.Email
	case models.ChannelToast:
		return s.Toast
	case models.ChannelPush:
		return s.Push
	case models.ChannelDatabase:
		return s.InApp
	}
	return nil
}

// Dispatcher orchestrates one notification send: catalog lookup, gating
// (active flag, dedup, rate limits), template and preference resolution,
// per-channel fan-out and the audit log append.
type Dispatcher struct {
	catalog CatalogStore
	gate    GateStore
	senders Senders
	audit   AuditStore
	obs     *observability.Observability
	logger  logger.Logger
	now     func() time.Time
}

func NewDispatcher(catalog CatalogStore, gate GateStore, senders Senders, audit AuditStore, obs *observability.Observability, log logger.Logger) *Dispatcher {
	return &Dispatcher{
		catalog: catalog,
		gate:    gate,
		senders: senders,
		audit:   audit,
		obs:     obs,
		logger:  log.WithFields(map[string]interface{}{"component": "dispatcher"}),
		now:     time.Now,
	}
}

// Send dispatches eventKey to user in their recipientType role. Gating
// rejections are reported in Result.Error and never as a Go error; the only
// error Send returns is a failed audit log append, which must not pass
// silently. Channel failures are independent and never abort siblings.
func (d *Dispatcher) Send(ctx context.Context, eventKey string, user models.User, recipientType string, variables map[string]any) (Result, error) {
	started := d.now()

	event, rejection, err := d.gateSend(ctx, eventKey, user, variables)
	if err != nil {
		return Result{}, err
	}
	if rejection != "" {
		metrics.DispatchRejected.WithLabelValues(eventKey, rejection).Inc()
		if d.obs != nil {
			d.obs.RecordDispatch(ctx, "rejected")
		}
		return Result{Results: map[string]bool{}, Channels: []string{}, Error: rejection}, nil
	}

	tmpl, found, err := d.catalog.FindActiveTemplate(ctx, event.ID, recipientType)
	if err != nil {
		d.logger.Error("template lookup failed", map[string]interface{}{
			"eventKey":      eventKey,
			"recipientType": recipientType,
			"error":         err,
		})
		found = false
	}
	if !found {
		metrics.DispatchRejected.WithLabelValues(eventKey, ReasonNoTemplate).Inc()
		return Result{Results: map[string]bool{}, Channels: []string{}, Error: ReasonNoTemplate}, nil
	}

	pref := d.loadPreference(ctx, user.ID, event.ID)
	quiet := inQuietHours(started, user)

	result := d.fanOut(ctx, user, event, tmpl, pref, quiet, variables)

	entry := models.NotificationLog{
		ID:            uuid.New().String(),
		EventID:       event.ID,
		TemplateID:    tmpl.ID,
		UserID:        user.ID,
		RecipientType: recipientType,
		Variables:     variables,
		Channels:      result.Channels,
		Results:       result.Results,
		Success:       result.Success,
		CreatedAt:     d.now().UTC(),
	}
	if err := d.audit.Append(ctx, entry); err != nil {
		// Losing the audit trail silently is worse than a visible failure;
		// this is the one error allowed out of Send.
		return result, stderrors.NewAuditAppendError(err.Error())
	}

	metrics.DispatchTotal.WithLabelValues(eventKey, strconv.FormatBool(result.Success)).Inc()
	metrics.DispatchDuration.WithLabelValues(eventKey).Observe(d.now().Sub(started).Seconds())
	if d.obs != nil {
		status := "failed"
		if result.Success {
			status = "sent"
		}
		d.obs.RecordDispatch(ctx, status)
		d.obs.RecordDispatchDuration(ctx, d.now().Sub(started), status)
	}

	return result, nil
}

// gateSend runs the short-circuiting gates ahead of template resolution:
// event lookup and active flag, dedup claim, per-event and global rate
// limits. It returns the event and an empty rejection on success.
func (d *Dispatcher) gateSend(ctx context.Context, eventKey string, user models.User, variables map[string]any) (models.NotificationEvent, string, error) {
	event, found, err := d.catalog.FindEventByKey(ctx, eventKey)
	if err != nil {
		d.logger.Error("event lookup failed", map[string]interface{}{
			"eventKey": eventKey,
			"error":    err,
		})
		found = false
	}
	if !found {
		return event, ReasonEventNotFound, nil
	}
	if !event.IsActive {
		return event, ReasonEventDisabled, nil
	}

	claimed, err := d.gate.SetIfAbsent(ctx, dedupKey(user.ID, eventKey, variables), dedupTTL)
	if err != nil {
		// Gate store outage fails open: delivery beats suppression.
		d.logger.Warn("dedup check unavailable, allowing send", map[string]interface{}{
			"eventKey": eventKey,
			"userId":   user.ID,
			"error":    err,
		})
		claimed = true
	}
	if !claimed {
		return event, ReasonDuplicate, nil
	}

	count, err := d.gate.IncrementWithTTL(ctx, eventRateKey(user.ID, eventKey), eventRateWindow)
	if err != nil {
		d.logger.Warn("event rate limit unavailable, allowing send", map[string]interface{}{
			"eventKey": eventKey,
			"userId":   user.ID,
			"error":    err,
		})
	} else if count > eventRateLimit {
		return event, ReasonEventRateLimited, nil
	}

	count, err = d.gate.IncrementWithTTL(ctx, userRateKey(user.ID), userRateWindow)
	if err != nil {
		d.logger.Warn("global rate limit unavailable, allowing send", map[string]interface{}{
			"userId": user.ID,
			"error":  err,
		})
	} else if count > userRateLimit {
		return event, ReasonUserRateLimited, nil
	}

	return event, "", nil
}

func (d *Dispatcher) loadPreference(ctx context.Context, userID, eventID string) *models.UserNotificationPreference {
	pref, found, err := d.catalog.FindPreference(ctx, userID, eventID)
	if err != nil {
		d.logger.Warn("preference lookup failed, using template defaults", map[string]interface{}{
			"userId":  userID,
			"eventId": eventID,
			"error":   err,
		})
		return nil
	}
	if !found {
		return nil
	}
	return &pref
}

// fanOut invokes each enabled channel in fixed order. A channel suppressed by
// quiet hours is recorded as false without being attempted; a channel the
// template or preference disables is absent from the results entirely.
func (d *Dispatcher) fanOut(ctx context.Context, user models.User, event models.NotificationEvent, tmpl models.NotificationTemplate, pref *models.UserNotificationPreference, quiet bool, variables map[string]any) Result {
	result := Result{
		Channels: []string{},
		Results:  map[string]bool{},
	}

	for _, ch := range models.ChannelOrder {
		if !resolveChannel(tmpl, pref, ch, false) {
			continue
		}
		if !resolveChannel(tmpl, pref, ch, quiet) {
			result.Results[string(ch)] = false
			continue
		}

		sender := d.senders.forChannel(ch)
		if sender == nil {
			continue
		}

		ok := sender.Dispatch(ctx, user, event, tmpl, variables)
		result.Results[string(ch)] = ok
		if ok {
			result.Channels = append(result.Channels, string(ch))
			result.Success = true
		}
	}

	return result
}
