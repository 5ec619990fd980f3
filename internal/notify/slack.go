package notify

import (
	"context"
	"fmt"

	slacklib "github.com/slack-go/slack"
)

// SlackAPI is the subset of the Slack client used by the forwarder.
type SlackAPI interface {
	PostMessageContext(ctx context.Context, channelID string, options ...slacklib.MsgOption) (string, string, error)
}

// SlackNotifier forwards coordination events to a Slack channel. It only
// forwards claim and handoff events; progress and chat noise stays internal.
type SlackNotifier struct {
	api     SlackAPI
	channel string
}

func NewSlackNotifier(api SlackAPI, channel string) *SlackNotifier {
	return &SlackNotifier{api: api, channel: channel}
}

func (n *SlackNotifier) Publish(ctx context.Context, e Event) error {
	if e.Type != EventClaim && e.Type != EventHandoff {
		return nil
	}

	text := e.Message
	if e.Note != "" {
		text += "\n> " + e.Note
	}

	_, _, err := n.api.PostMessageContext(ctx, n.channel, slacklib.MsgOptionText(text, false))
	if err != nil {
		return fmt.Errorf("notify.SlackNotifier: %w", err)
	}

	return nil
}
