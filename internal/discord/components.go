package discord

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/opencode-ai/discode/internal/logging"
	"github.com/opencode-ai/discode/internal/pager"
	"github.com/opencode-ai/discode/pkg/types"
)

// Custom ID layout: "discode:<action>:<menuKey>[:<index>]".
const customIDPrefix = "discode"

func pickCustomID(key string, index int) string {
	return fmt.Sprintf("%s:pick:%s:%d", customIDPrefix, key, index)
}

func nextCustomID(key string) string {
	return fmt.Sprintf("%s:next:%s", customIDPrefix, key)
}

// sendModelPicker opens a menu over the catalog and posts its first page.
func (c *Client) sendModelPicker(channelID, userID string) error {
	candidates := make([]pager.Candidate, len(c.catalog))
	for i, ref := range c.catalog {
		candidates[i] = pager.Candidate{Value: ref.String(), Label: ref.DisplayLabel()}
	}

	menu := c.menus.Open(userID, candidates)
	_, err := c.session.ChannelMessageSendComplex(channelID, &discordgo.MessageSend{
		Content:    menuContent(menu),
		Components: menuComponents(menu),
	})
	return err
}

func menuContent(menu *pager.Menu) string {
	return fmt.Sprintf("Pick a model (page %d/%d):", menu.Page()+1, menu.PageCount())
}

// menuComponents renders the menu's current page as button rows, with a
// navigation row appended when more pages remain.
func menuComponents(menu *pager.Menu) []discordgo.MessageComponent {
	var components []discordgo.MessageComponent
	for _, row := range menu.Rows() {
		buttons := make([]discordgo.MessageComponent, 0, len(row))
		for _, c := range row {
			buttons = append(buttons, discordgo.Button{
				Label:    buttonLabel(c.Label),
				Style:    discordgo.SecondaryButton,
				CustomID: pickCustomID(menu.Key, c.Index),
			})
		}
		components = append(components, discordgo.ActionsRow{Components: buttons})
	}

	if menu.HasNext() {
		components = append(components, discordgo.ActionsRow{
			Components: []discordgo.MessageComponent{
				discordgo.Button{
					Label:    "Next »",
					Style:    discordgo.PrimaryButton,
					CustomID: nextCustomID(menu.Key),
				},
			},
		})
	}
	return components
}

// buttonLabel truncates to the platform's 80-char button label limit.
func buttonLabel(label string) string {
	if len(label) > 80 {
		return label[:77] + "..."
	}
	return label
}

// onInteractionCreate resolves button presses against the menu store.
func (c *Client) onInteractionCreate(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionMessageComponent {
		return
	}

	parts := strings.Split(i.MessageComponentData().CustomID, ":")
	if len(parts) < 3 || parts[0] != customIDPrefix {
		return
	}
	action, key := parts[1], parts[2]

	// Only the user the menu was opened for may drive it.
	if menu, ok := c.menus.Get(key); ok && menu.UserID != interactionUserID(i) {
		return
	}

	switch action {
	case "next":
		c.handleMenuNext(i, key)
	case "pick":
		if len(parts) != 4 {
			return
		}
		index, err := strconv.Atoi(parts[3])
		if err != nil {
			return
		}
		c.handleMenuPick(i, key, index)
	}
}

func (c *Client) handleMenuNext(i *discordgo.InteractionCreate, key string) {
	menu, ok := c.menus.Advance(key)
	if !ok {
		c.respondExpired(i)
		return
	}

	err := c.session.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseUpdateMessage,
		Data: &discordgo.InteractionResponseData{
			Content:    menuContent(menu),
			Components: menuComponents(menu),
		},
	})
	if err != nil {
		logging.Warn().Err(err).Msg("menu page update failed")
	}
}

func (c *Client) handleMenuPick(i *discordgo.InteractionCreate, key string, index int) {
	candidate, ok := c.menus.Resolve(key, index)
	if !ok {
		c.respondExpired(i)
		return
	}

	ref, ok := types.ParseModel(candidate.Value)
	if !ok {
		c.respondExpired(i)
		return
	}
	ref.Label = candidate.Label

	userID := interactionUserID(i)
	c.models.Set(userID, ref)
	c.publishModelSelected(userID, ref.String())

	err := c.session.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseUpdateMessage,
		Data: &discordgo.InteractionResponseData{
			Content:    "Model set to **" + ref.DisplayLabel() + "**.",
			Components: []discordgo.MessageComponent{},
		},
	})
	if err != nil {
		logging.Warn().Err(err).Msg("pick response failed")
	}
}

func (c *Client) respondExpired(i *discordgo.InteractionCreate) {
	err := c.session.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseUpdateMessage,
		Data: &discordgo.InteractionResponseData{
			Content:    "This menu has expired. Run the model command again.",
			Components: []discordgo.MessageComponent{},
		},
	})
	if err != nil {
		logging.Warn().Err(err).Msg("expired-menu response failed")
	}
}

// interactionUserID works for both guild and DM interactions.
func interactionUserID(i *discordgo.InteractionCreate) string {
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User.ID
	}
	if i.User != nil {
		return i.User.ID
	}
	return ""
}
