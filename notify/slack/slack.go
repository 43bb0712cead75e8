// Package slack posts plan lifecycle announcements to a Slack channel.
package slack

import (
	"context"
	"fmt"
	"log"

	"github.com/slack-go/slack"

	"rampup/store"
)

// Notifier posts messages to a fixed Slack channel.
type Notifier struct {
	api     *slack.Client
	channel string
}

// New creates a Notifier posting to the given channel ID.
func New(botToken, channel string, opts ...slack.Option) *Notifier {
	return &Notifier{
		api:     slack.New(botToken, opts...),
		channel: channel,
	}
}

// PlanApproved posts a Block Kit message summarizing the committed plan.
func (n *Notifier) PlanApproved(ctx context.Context, projectName, roleName, approvedBy string, result *store.ApproveResult) error {
	headerText := slack.NewTextBlockObject(slack.MarkdownType,
		fmt.Sprintf(":white_check_mark: *Onboarding plan approved* for *%s* / `%s`", projectName, roleName),
		false, false)
	headerSection := slack.NewSectionBlock(headerText, nil, nil)

	detail := fmt.Sprintf("%d steps, %d task templates committed", result.StepsCreated, result.TasksCreated)
	if len(result.SkippedTasks) > 0 {
		detail += fmt.Sprintf(" (%d tasks skipped: unresolved step references)", len(result.SkippedTasks))
	}
	contextBlock := slack.NewContextBlock("",
		slack.NewTextBlockObject(slack.MarkdownType,
			fmt.Sprintf("%s | approved by %s", detail, approvedBy),
			false, false),
	)

	_, _, err := n.api.PostMessageContext(ctx, n.channel,
		slack.MsgOptionBlocks(headerSection, slack.NewDividerBlock(), contextBlock),
	)
	if err != nil {
		log.Printf("slack: failed to post approval message: %v", err)
		// Fall back to plain text.
		_, _, err = n.api.PostMessageContext(ctx, n.channel,
			slack.MsgOptionText(
				fmt.Sprintf(":white_check_mark: Onboarding plan approved for %s / %s (%s)",
					projectName, roleName, detail),
				false),
		)
	}
	return err
}

// PlanRejected posts a plain text rejection notice.
func (n *Notifier) PlanRejected(ctx context.Context, projectName, roleName, rejectedBy string) error {
	_, _, err := n.api.PostMessageContext(ctx, n.channel,
		slack.MsgOptionText(
			fmt.Sprintf(":x: Onboarding draft for %s / %s rejected by %s",
				projectName, roleName, rejectedBy),
			false),
	)
	if err != nil {
		log.Printf("slack: failed to post rejection message: %v", err)
	}
	return err
}
