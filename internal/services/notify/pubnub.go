package notify

import (
	"context"
	"errors"
	"fmt"

	"marketing-ops/config"

	pubnub "github.com/pubnub/go/v7"
)

var ErrPubNubNotConfigured = errors.New("pubnub publish key is empty")

// PubNubNotifier publishes events to a realtime channel for dashboards.
type PubNubNotifier struct {
	pn      *pubnub.PubNub
	channel string
}

func NewPubNubNotifier(cfg config.PubNubConfig) (*PubNubNotifier, error) {
	if cfg.PublishKey == "" {
		return nil, ErrPubNubNotConfigured
	}

	pnCfg := pubnub.NewConfigWithUserId(pubnub.UserId(cfg.UserID))
	pnCfg.PublishKey = cfg.PublishKey
	pnCfg.SubscribeKey = cfg.SubscribeKey

	return &PubNubNotifier{
		pn:      pubnub.NewPubNub(pnCfg),
		channel: cfg.Channel,
	}, nil
}

func (n *PubNubNotifier) Name() string {
	return "pubnub"
}

func (n *PubNubNotifier) Notify(ctx context.Context, ev Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	_, status, err := n.pn.Publish().
		Channel(n.channel).
		Message(ev).
		Execute()
	if err != nil {
		return fmt.Errorf("pubnub publish: %w", err)
	}
	if status.StatusCode >= 300 {
		return fmt.Errorf("pubnub publish: status %d", status.StatusCode)
	}
	return nil
}
