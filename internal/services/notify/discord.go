package notify

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/bwmarrin/discordgo"
)

// DiscordNotifier posts selected events to a team channel webhook.
type DiscordNotifier struct {
	session *discordgo.Session
	id      string
	token   string
	types   map[string]bool
}

// NewDiscordNotifier accepts a webhook URL of the form
// https://discord.com/api/webhooks/{id}/{token}. Only the listed event types
// are forwarded; none listed means all.
func NewDiscordNotifier(webhookURL string, types ...string) (*DiscordNotifier, error) {
	id, token, err := ParseWebhookURL(webhookURL)
	if err != nil {
		return nil, err
	}

	session, err := discordgo.New("")
	if err != nil {
		return nil, fmt.Errorf("discord session: %w", err)
	}

	n := &DiscordNotifier{session: session, id: id, token: token, types: map[string]bool{}}
	for _, t := range types {
		n.types[t] = true
	}
	return n, nil
}

func ParseWebhookURL(raw string) (id, token string, err error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", "", fmt.Errorf("invalid discord webhook url: %w", err)
	}
	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	for i := 0; i+2 < len(parts); i++ {
		if parts[i] == "webhooks" {
			return parts[i+1], parts[i+2], nil
		}
	}
	return "", "", fmt.Errorf("invalid discord webhook url: %q", raw)
}

func (n *DiscordNotifier) Name() string {
	return "discord"
}

func (n *DiscordNotifier) Accepts(eventType string) bool {
	return len(n.types) == 0 || n.types[eventType]
}

func (n *DiscordNotifier) Notify(ctx context.Context, ev Event) error {
	if !n.Accepts(ev.Type) {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	content := "**" + ev.Title + "**"
	if ev.Message != "" {
		content += "\n" + ev.Message
	}

	_, err := n.session.WebhookExecute(n.id, n.token, false, &discordgo.WebhookParams{
		Content:  content,
		Username: "Marketing Ops",
	})
	if err != nil {
		return fmt.Errorf("discord webhook: %w", err)
	}
	return nil
}
