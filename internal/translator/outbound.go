package translator

import (
	"strings"

	"github.com/anthibo/custom-whatsapp-connector/internal/models"
)

// ToWhatsApp renders a platform message as a Cloud API payload addressed to
// recipient. It returns ErrUnsupportedType for attachment types the channel
// cannot carry.
//
// Decision order, first match wins: frame, media attachment, buttons,
// template, plain text.
func ToWhatsApp(msg *models.PlatformMessage, recipient string) (*models.WhatsAppMessage, error) {
	out := &models.WhatsAppMessage{
		MessagingProduct: models.MessagingProduct,
		To:               recipient,
	}

	text := msg.Text

	if msg.Type == "frame" {
		src := ""
		if msg.Metadata != nil {
			src = msg.Metadata.Src
		}
		out.Text = &models.TextPayload{Body: text + urlPointer + src}
		return out, nil
	}

	if msg.Metadata != nil {
		return translateMedia(msg, out, text)
	}

	if msg.Attributes != nil && msg.Attributes.Attachment != nil {
		if len(msg.Attributes.Attachment.Buttons) > 0 {
			return translateButtons(msg, out, text)
		}
		if msg.Attributes.Attachment.Template != nil {
			return translateTemplate(msg.Attributes.Attachment.Template, out), nil
		}
	}

	out.Text = &models.TextPayload{Body: text}
	return out, nil
}

// translateMedia dispatches on the MIME-type-like prefix of the attachment
// type, falling back to the message type prefix.
func translateMedia(msg *models.PlatformMessage, out *models.WhatsAppMessage, text string) (*models.WhatsAppMessage, error) {
	meta := msg.Metadata

	switch {
	case strings.HasPrefix(meta.Type, "image") || strings.HasPrefix(msg.Type, "image"):
		out.Type = "image"
		out.Image = &models.MediaPayload{Link: meta.Src, Caption: text}

	case strings.HasPrefix(meta.Type, "video") || strings.HasPrefix(msg.Type, "video"):
		caption := meta.Name
		if caption == "" {
			caption = text
		}
		out.Type = "video"
		out.Video = &models.MediaPayload{Link: meta.Src, Caption: caption}

	case strings.HasPrefix(meta.Type, "application"):
		out.Type = "document"
		out.Document = &models.DocumentPayload{
			Link:     meta.DownloadURL,
			Filename: meta.Name,
		}
		// When the body embeds the attachment link, the trailing remainder
		// (past the markdown closer) becomes the caption.
		if idx := strings.Index(text, meta.Src); idx != -1 && meta.Src != "" {
			if start := idx + len(meta.Src) + 2; start <= len(text) {
				out.Document.Caption = text[start:]
			}
		}

	default:
		return nil, ErrUnsupportedType
	}

	return out, nil
}

// translateButtons renders the attached buttons. Up to three non-url buttons
// become inline reply buttons, four to ten become a list, more than ten fall
// back to the raw message text. Url buttons never render as buttons; their
// link is appended to the body instead.
func translateButtons(msg *models.PlatformMessage, out *models.WhatsAppMessage, text string) (*models.WhatsAppMessage, error) {
	buttons := msg.Attributes.Attachment.Buttons

	count := 0
	for _, btn := range buttons {
		if btn.Type != "url" {
			count++
		}
	}

	switch {
	case count == 0:
		for _, btn := range buttons {
			if btn.Type == "url" {
				text += urlPointer + btn.Value + " (" + btn.Link + ")"
			}
		}
		out.Text = &models.TextPayload{Body: text}

	case count <= maxInlineButtons:
		var replies []models.ReplyButton
		for _, btn := range buttons {
			title := truncateTitle(btn.Value, inlineTitleLimit)
			switch btn.Type {
			case "text":
				replies = append(replies, models.ReplyButton{
					Type:  "reply",
					Reply: models.Reply{ID: newReplyID(quickReplyPrefix, btn.Value), Title: title},
				})
			case "action":
				replies = append(replies, models.ReplyButton{
					Type:  "reply",
					Reply: models.Reply{ID: newReplyID(actionReplyPrefix, btn.Action), Title: title},
				})
			case "url":
				text += urlPointer + btn.Value + " (" + btn.Link + ")"
			}
		}
		out.Type = "interactive"
		out.Interactive = &models.InteractivePayload{
			Type:   "button",
			Body:   &models.InteractiveBody{Text: text},
			Action: &models.InteractiveAction{Buttons: replies},
		}

	case count <= maxListRows:
		var optionRows, actionRows []models.Reply
		for _, btn := range buttons {
			title := truncateTitle(btn.Value, listRowTitleLimit)
			switch btn.Type {
			case "text":
				// Text buttons land in the action rows as well; the option
				// split below only matters once something populates it.
				actionRows = append(actionRows, models.Reply{ID: newReplyID(quickReplyPrefix, btn.Value), Title: title})
			case "action":
				actionRows = append(actionRows, models.Reply{ID: newReplyID(actionReplyPrefix, btn.Action), Title: title})
			case "url":
				text += urlPointer + btn.Value + " (" + btn.Link + ")"
			}
		}
		out.Type = "interactive"
		out.Interactive = &models.InteractivePayload{
			Type: "list",
			Body: &models.InteractiveBody{Text: text},
			Action: &models.InteractiveAction{
				Button:   listButtonLabel,
				Sections: listSections(optionRows, actionRows),
			},
		}

	default:
		// Too many rows for a list message; send the raw message text.
		raw := ""
		if msg.Attributes != nil {
			raw = msg.Attributes.RawMessage
		}
		out.Text = &models.TextPayload{Body: raw}
	}

	return out, nil
}

func listSections(optionRows, actionRows []models.Reply) []models.ListSection {
	if len(optionRows) > 0 && len(actionRows) > 0 {
		return []models.ListSection{
			{Title: "Options", Rows: optionRows},
			{Title: "Actions", Rows: actionRows},
		}
	}
	if len(optionRows) > 0 {
		return []models.ListSection{{Title: "Options", Rows: optionRows}}
	}
	return []models.ListSection{{Rows: actionRows}}
}

// translateTemplate renders a template attachment, attaching the header,
// body and button parameter groups carried on the template itself.
func translateTemplate(tpl *models.TemplateSpec, out *models.WhatsAppMessage) *models.WhatsAppMessage {
	out.Type = "template"
	out.Template = &models.TemplatePayload{
		Name:     tpl.Name,
		Language: models.TemplateLanguage{Code: tpl.Language},
	}

	if tpl.Params == nil {
		return out
	}

	var components []models.TemplateComponent
	if len(tpl.Params.Header) > 0 {
		components = append(components, models.TemplateComponent{
			Type:       "header",
			Parameters: tpl.Params.Header,
		})
	}
	if len(tpl.Params.Body) > 0 {
		components = append(components, models.TemplateComponent{
			Type:       "body",
			Parameters: tpl.Params.Body,
		})
	}
	if len(tpl.Params.Buttons) > 0 {
		components = append(components, models.TemplateComponent{
			Type:       "button",
			SubType:    "url",
			Index:      "0",
			Parameters: tpl.Params.Buttons,
		})
	}
	out.Template.Components = components
	return out
}
