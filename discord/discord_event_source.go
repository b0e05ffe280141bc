//Package discord connects to the Discord gateway and performs the REST calls the moderation actions need
package discord

import (
	"fmt"
	"net/url"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/sirupsen/logrus"
)

const botScope = "bot"
const permissions = discordgo.PermissionViewChannel | discordgo.PermissionSendMessages |
	discordgo.PermissionManageMessages | discordgo.PermissionReadMessageHistory

//EventHandler is a struct which can handle all the events the discord listener generates.
type EventHandler interface {
	HandleMessage(*discordgo.Message)
}

//EventSource represents a connection to the Discord gateway
type EventSource struct {
	discordClient *discordgo.Session
	handler       EventHandler
}

//StartDiscordListener initializes an EventSource and starts listening for events from the discord gateway
func StartDiscordListener(token string, handler EventHandler) (*EventSource, error) {
	if token == "" {
		logrus.Error("No discord bot token was provided.")
		return nil, fmt.Errorf("no discord bot token was provided")
	}

	//Create new client
	dc, err := discordgo.New("Bot " + token)
	if err != nil {
		logrus.Warnf("Failed to create Discord gateway client due to %v", err)
		return nil, err
	}
	dispatch := EventSource{
		discordClient: dc,
		handler:       handler,
	}

	//Register event handlers
	dc.AddHandler(dispatch.dispatchMessageCreateEvent)

	//Register intents
	dc.Identify.Intents = discordgo.IntentsGuildMessages | discordgo.IntentsMessageContent

	//Open a websocket connection
	err = dc.Open()
	if err != nil {
		logrus.Errorf("Failed to connect to discord websockets gateway; encountered error %v", err)
		return nil, err
	}
	return &dispatch, nil
}

//BotAddURL generates a URL that can be used to add the bot to a server
func (d *EventSource) BotAddURL() (*url.URL, error) {
	user, err := d.discordClient.User("@me")
	if err != nil {
		return nil, err
	}
	clientID := user.ID

	url, err := url.Parse("https://discord.com/api/oauth2/authorize")
	if err != nil {
		return nil, err
	}
	q := url.Query()
	q.Set("client_id", clientID)
	q.Set("scope", botScope)
	q.Set("permissions", fmt.Sprintf("%d", permissions))
	url.RawQuery = q.Encode()

	return url, nil
}

//Close cleanly terminates the Discord connection
func (d *EventSource) Close() {
	logrus.Info("Terminating discord event listener...")
	_ = d.discordClient.Close()
}

//HeartbeatLatency returns the latency of the last gateway heartbeat
func (d *EventSource) HeartbeatLatency() time.Duration {
	return d.discordClient.HeartbeatLatency()
}

//DeleteMessage removes a message from a channel
func (d *EventSource) DeleteMessage(channelID, messageID string) error {
	return d.discordClient.ChannelMessageDelete(channelID, messageID)
}

//SendMessage posts a plain text message to a channel
func (d *EventSource) SendMessage(channelID, content string) error {
	_, err := d.discordClient.ChannelMessageSend(channelID, content)
	return err
}

func (d *EventSource) dispatchMessageCreateEvent(s *discordgo.Session, m *discordgo.MessageCreate) {
	//Prevent panic from crashing the whole bot
	defer func() {
		if r := recover(); r != nil {
			logrus.Errorf("Bot handler thread panicked: %v", r)
		}
	}()

	//Ignore messages created by bot
	if m.Author != nil && s.State != nil && s.State.User != nil && m.Author.ID == s.State.User.ID {
		logrus.Debug("Got a message from self; Ignoring.")
		return
	}

	//Dispatch to bot handlers
	d.handler.HandleMessage(m.Message)
}
