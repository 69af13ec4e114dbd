package translator

import (
	"strings"

	"github.com/anthibo/custom-whatsapp-connector/internal/models"
)

// Offset past "<action prefix><4 char token>_" in a reply id.
const actionIDOffset = len(actionReplyPrefix) + replyTokenLen + 1

// ToPlatform converts an inbound WhatsApp message into the platform's native
// shape. senderName is the contact's profile name; mediaURL is the already
// resolved public URL for media messages. ErrUnsupportedType is returned for
// message types the platform cannot represent.
func ToPlatform(msg *models.InboundMessage, senderName, mediaURL string) (*models.PlatformMessage, error) {
	channel := &models.Channel{Name: models.ChannelName}

	switch msg.Type {
	case "text":
		if msg.Text == nil {
			return nil, ErrUnsupportedType
		}
		return &models.PlatformMessage{
			Text:           msg.Text.Body,
			SenderFullname: senderName,
			Channel:        channel,
		}, nil

	case "button":
		if msg.Button == nil {
			return nil, ErrUnsupportedType
		}
		return &models.PlatformMessage{
			Text:           msg.Button.Text,
			SenderFullname: senderName,
			Channel:        channel,
		}, nil

	case "interactive":
		if msg.Interactive == nil {
			return nil, ErrUnsupportedType
		}
		return translateReply(msg.Interactive, senderName, channel)

	case "image":
		text := "Image attached"
		if msg.Image != nil && msg.Image.Caption != "" {
			text = msg.Image.Caption
		}
		return &models.PlatformMessage{
			Text:           text,
			SenderFullname: senderName,
			Channel:        channel,
			Type:           "image",
			Metadata:       &models.Metadata{Src: mediaURL},
		}, nil

	case "video":
		return &models.PlatformMessage{
			Text:           "[Download video](" + mediaURL + ")",
			SenderFullname: senderName,
			Channel:        channel,
			Type:           "file",
			Metadata: &models.Metadata{
				Name: "video.mp4",
				Type: "video/mp4",
				Src:  mediaURL,
			},
		}, nil

	case "document":
		return &models.PlatformMessage{
			Text:           "[Download document](" + mediaURL + ")",
			SenderFullname: senderName,
			Channel:        channel,
			Type:           "file",
			Metadata: &models.Metadata{
				// The inbound payload carries no usable filename.
				Name: "document.pdf",
				Type: "application/pdf",
				Src:  mediaURL,
			},
		}, nil

	case "audio":
		return &models.PlatformMessage{
			Text:           "",
			SenderFullname: senderName,
			Channel:        channel,
			Type:           "file",
			Metadata: &models.Metadata{
				Name: "audio.mp3",
				Type: "audio/mpeg",
				Src:  mediaURL,
			},
		}, nil

	default:
		return nil, ErrUnsupportedType
	}
}

// translateReply handles list and inline button replies. Action-prefixed ids
// carry the encoded action past the id prefix; quick-prefixed ids are plain
// quick replies.
func translateReply(reply *models.InteractiveReply, senderName string, channel *models.Channel) (*models.PlatformMessage, error) {
	var echoed *models.Reply
	switch reply.Type {
	case "list_reply":
		echoed = reply.ListReply
	case "button_reply":
		echoed = reply.ButtonReply
	default:
		return nil, ErrUnsupportedType
	}
	if echoed == nil {
		return nil, ErrUnsupportedType
	}

	switch {
	case strings.HasPrefix(echoed.ID, actionReplyPrefix):
		// Ids arrive from the webhook and may be shorter than the
		// prefix+token shape this connector mints.
		if len(echoed.ID) < actionIDOffset {
			return nil, ErrUnsupportedType
		}
		return &models.PlatformMessage{
			Text:           echoed.Title,
			SenderFullname: senderName,
			Type:           "text",
			Attributes:     &models.Attributes{Action: echoed.ID[actionIDOffset:]},
			Channel:        channel,
		}, nil

	case strings.HasPrefix(echoed.ID, quickReplyPrefix):
		return &models.PlatformMessage{
			Text:           echoed.Title,
			SenderFullname: senderName,
			Channel:        channel,
		}, nil

	default:
		return nil, ErrUnsupportedType
	}
}
