// Package gate decides whether an event may produce an alert for a shop and
// which channel credentials to deliver with. Decisions are fail-closed: a shop
// with no saved configuration, or an event type outside the known flag
// mapping, never alerts.
package gate

import (
	"context"
	"errors"
	"fmt"

	"shopalert/internal/domain/entity"
	"shopalert/internal/repository"

	"golang.org/x/sync/errgroup"
)

// ErrUnsupportedChannel is returned when a shop's receiver record names a
// channel this deployment cannot deliver to. For an enabled event a
// half-migrated or corrupted record is a loud failure, not a silent skip;
// for a disabled event Check swallows it, since the dispatch would abort
// anyway.
var ErrUnsupportedChannel = errors.New("unsupported receiver channel")

// Gate evaluates per-shop alert configuration. It holds no cache: every call
// re-reads current state, so configuration changes take effect on the next
// dispatch.
type Gate struct {
	configs repository.ConfigRepository
}

// NewGate creates a Gate backed by the given configuration repository.
func NewGate(configs repository.ConfigRepository) *Gate {
	return &Gate{configs: configs}
}

// IsEnabled reports whether the shop has opted in to alerts for the event
// type. Missing configuration records and unmapped event types both report
// false.
func (g *Gate) IsEnabled(ctx context.Context, shopID string, eventType entity.EventType) (bool, error) {
	config, err := g.configs.GetAlertConfig(ctx, shopID)
	if err != nil {
		return false, fmt.Errorf("IsEnabled: %w", err)
	}
	return config.IsEnabled(eventType), nil
}

// ResolveChannel returns validated delivery credentials for the shop, or
// nil when no channel is configured or required credential fields are
// missing. A receiver record naming an unrecognized channel returns
// ErrUnsupportedChannel.
func (g *Gate) ResolveChannel(ctx context.Context, shopID string) (*entity.TelegramCredentials, error) {
	config, err := g.configs.GetReceiverConfig(ctx, shopID)
	if err != nil {
		return nil, fmt.Errorf("ResolveChannel: %w", err)
	}
	if config == nil || config.Channel == "" {
		return nil, nil
	}
	if config.Channel != entity.ChannelTelegram {
		return nil, fmt.Errorf("ResolveChannel: %w: %q", ErrUnsupportedChannel, config.Channel)
	}
	return config.TelegramCredentials(), nil
}

// Decision is the combined answer for one dispatch: whether the event is
// enabled and, if a channel is configured, the credentials to deliver with.
type Decision struct {
	Enabled     bool
	Credentials *entity.TelegramCredentials
}

// Check evaluates both halves of the gate concurrently. The two reads are
// independent and need no transactional isolation; the most recent state
// wins. The enabled flag is authoritative: a broken receiver record is only
// surfaced when the event is enabled, because a disabled event must abort
// with no observable side effects regardless of channel state.
func (g *Gate) Check(ctx context.Context, shopID string, eventType entity.EventType) (Decision, error) {
	var decision Decision
	var channelErr error

	eg, egctx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		enabled, err := g.IsEnabled(egctx, shopID, eventType)
		if err != nil {
			return err
		}
		decision.Enabled = enabled
		return nil
	})
	eg.Go(func() error {
		creds, err := g.ResolveChannel(egctx, shopID)
		if err != nil {
			// 有効フラグが出揃うまで破損レコードの扱いは保留する
			if errors.Is(err, ErrUnsupportedChannel) {
				channelErr = err
				return nil
			}
			return err
		}
		decision.Credentials = creds
		return nil
	})

	if err := eg.Wait(); err != nil {
		return Decision{}, fmt.Errorf("Check: %w", err)
	}
	if channelErr != nil && decision.Enabled {
		return Decision{}, fmt.Errorf("Check: %w", channelErr)
	}
	return decision, nil
}
