package notify

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"

	"healthtrack/internal/health"
)

type discordSession interface {
	ChannelMessageSendComplex(channelID string, data *discordgo.MessageSend, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// DiscordNotifier posts reminders to a channel with a button per action.
type DiscordNotifier struct {
	session   *discordgo.Session
	send      discordSession
	channelID string
	logger    health.Logger
}

var (
	_ health.Notifier       = (*DiscordNotifier)(nil)
	_ health.ActionListener = (*DiscordNotifier)(nil)
)

func NewDiscordNotifier(token, channelID string, logger health.Logger) (*DiscordNotifier, error) {
	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("creating discord session: %w", err)
	}
	return &DiscordNotifier{session: session, send: session, channelID: channelID, logger: logger}, nil
}

func (d *DiscordNotifier) Notify(_ context.Context, n health.Notification) error {
	if _, err := d.send.ChannelMessageSendComplex(d.channelID, buildDiscordMessage(n)); err != nil {
		return fmt.Errorf("sending discord message: %w", err)
	}
	d.logger.Debug("discord notification sent", "channel", d.channelID, "reminder", n.ReminderID)
	return nil
}

// Listen opens the gateway and handles button presses until ctx is done.
func (d *DiscordNotifier) Listen(ctx context.Context, handle health.ActionHandler) error {
	remove := d.session.AddHandler(func(s *discordgo.Session, i *discordgo.InteractionCreate) {
		if i.Type != discordgo.InteractionMessageComponent {
			return
		}
		reply := "Done"
		data := i.MessageComponentData().CustomID
		actionID, reminderID, err := parseCallbackData(data)
		if err == nil {
			err = handle(ctx, actionID, reminderID)
		}
		if err != nil {
			d.logger.Error("discord action failed", "data", data, "error", err)
			reply = "Something went wrong"
		}
		err = s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
			Type: discordgo.InteractionResponseChannelMessageWithSource,
			Data: &discordgo.InteractionResponseData{Content: reply, Flags: discordgo.MessageFlagsEphemeral},
		})
		if err != nil {
			d.logger.Warn("discord interaction response failed", "error", err)
		}
	})
	defer remove()

	if err := d.session.Open(); err != nil {
		return fmt.Errorf("opening discord gateway: %w", err)
	}
	<-ctx.Done()
	if err := d.session.Close(); err != nil {
		return fmt.Errorf("closing discord gateway: %w", err)
	}
	return ctx.Err()
}

func buildDiscordMessage(n health.Notification) *discordgo.MessageSend {
	msg := &discordgo.MessageSend{Content: fmt.Sprintf("**%s**\n%s", n.Title, n.Body)}
	if len(n.Actions) == 0 || n.ReminderID == "" {
		return msg
	}
	buttons := make([]discordgo.MessageComponent, 0, len(n.Actions))
	for i, a := range n.Actions {
		style := discordgo.SecondaryButton
		if i == 0 {
			style = discordgo.PrimaryButton
		}
		buttons = append(buttons, discordgo.Button{
			Label:    a.Title,
			Style:    style,
			CustomID: callbackData(a.ID, n.ReminderID),
		})
	}
	msg.Components = []discordgo.MessageComponent{discordgo.ActionsRow{Components: buttons}}
	return msg
}
