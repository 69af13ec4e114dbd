package translator

import (
	"github.com/anthibo/custom-whatsapp-connector/internal/models"
)

// BuildTemplate assembles a Cloud API template message for one recipient.
// Components are emitted in fixed order: header, body, button; the recipient's
// url-button group, when present, is appended as a second button component.
func BuildTemplate(tpl *models.TemplateSpec, rcpt *models.TemplateRecipient) *models.WhatsAppMessage {
	out := &models.WhatsAppMessage{
		MessagingProduct: models.MessagingProduct,
		To:               rcpt.PhoneNumber,
		Type:             "template",
		Template: &models.TemplatePayload{
			Name:     tpl.Name,
			Language: models.TemplateLanguage{Code: tpl.Language},
		},
	}

	var components []models.TemplateComponent
	if len(rcpt.HeaderParams) > 0 {
		components = append(components, models.TemplateComponent{
			Type:       "header",
			Parameters: rcpt.HeaderParams,
		})
	}
	if len(rcpt.BodyParams) > 0 {
		components = append(components, models.TemplateComponent{
			Type:       "body",
			Parameters: rcpt.BodyParams,
		})
	}
	if len(rcpt.ButtonsParams) > 0 {
		components = append(components, models.TemplateComponent{
			Type:       "button",
			SubType:    "url",
			Index:      "0",
			Parameters: rcpt.ButtonsParams,
		})
	}
	if len(rcpt.URLButtonsParams) > 0 {
		components = append(components, models.TemplateComponent{
			Type:       "button",
			SubType:    "url",
			Index:      "0",
			Parameters: rcpt.URLButtonsParams,
		})
	}
	if len(components) > 0 {
		out.Template.Components = components
	}
	return out
}

// FillParams maps positional recipient values onto template parameter slots.
// IMAGE and DOCUMENT header parameters are wrapped as media links; LOCATION
// parameters are left untouched until the Cloud API contract for location
// headers is settled.
func FillParams(params *models.TemplateParams, values *models.RecipientValues) *models.TemplateParams {
	if params == nil {
		return nil
	}
	if values == nil {
		return params
	}

	for i := range params.Header {
		if i >= len(values.HeaderParams) {
			break
		}
		value := values.HeaderParams[i]
		switch params.Header[i].Type {
		case "text":
			params.Header[i].Text = value
		case "IMAGE":
			params.Header[i].Image = &models.MediaLink{Link: value}
		case "DOCUMENT":
			params.Header[i].Document = &models.MediaLink{Link: value}
		case "LOCATION":
			// Unsupported.
		}
	}

	for i := range params.Body {
		if i >= len(values.BodyParams) {
			break
		}
		params.Body[i].Text = values.BodyParams[i]
	}

	for i := range params.Buttons {
		if i >= len(values.ButtonsParams) {
			break
		}
		params.Buttons[i].Text = values.ButtonsParams[i]
	}

	return params
}

// SanitizeTemplateMessage fills the template parameters embedded in a
// platform message in place, using the per-recipient values. Messages without
// template params pass through unchanged.
func SanitizeTemplateMessage(msg *models.PlatformMessage, values *models.RecipientValues) *models.PlatformMessage {
	if msg.Attributes == nil || msg.Attributes.Attachment == nil ||
		msg.Attributes.Attachment.Template == nil ||
		msg.Attributes.Attachment.Template.Params == nil {
		return msg
	}
	FillParams(msg.Attributes.Attachment.Template.Params, values)
	return msg
}
