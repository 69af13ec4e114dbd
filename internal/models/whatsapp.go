package models

// MessagingProduct is the literal the Cloud API expects on every outbound
// message.
const MessagingProduct = "whatsapp"

// WhatsAppMessage is the outbound Cloud API payload. Exactly one of the
// type-specific fields is populated, matching Type; a plain text message
// carries only Text and no Type at all.
type WhatsAppMessage struct {
	MessagingProduct string              `json:"messaging_product"`
	To               string              `json:"to"`
	Type             string              `json:"type,omitempty"`
	Text             *TextPayload        `json:"text,omitempty"`
	Image            *MediaPayload       `json:"image,omitempty"`
	Video            *MediaPayload       `json:"video,omitempty"`
	Document         *DocumentPayload    `json:"document,omitempty"`
	Interactive      *InteractivePayload `json:"interactive,omitempty"`
	Template         *TemplatePayload    `json:"template,omitempty"`
}

type TextPayload struct {
	Body string `json:"body"`
}

type MediaPayload struct {
	Link    string `json:"link"`
	Caption string `json:"caption,omitempty"`
}

type DocumentPayload struct {
	Link     string `json:"link"`
	Filename string `json:"filename,omitempty"`
	Caption  string `json:"caption,omitempty"`
}

// InteractivePayload carries either a reply-button message (Type "button",
// Action.Buttons set) or a list message (Type "list", Action.Button and
// Action.Sections set).
type InteractivePayload struct {
	Type   string             `json:"type"`
	Body   *InteractiveBody   `json:"body,omitempty"`
	Action *InteractiveAction `json:"action,omitempty"`
}

type InteractiveBody struct {
	Text string `json:"text"`
}

type InteractiveAction struct {
	Button   string        `json:"button,omitempty"`
	Buttons  []ReplyButton `json:"buttons,omitempty"`
	Sections []ListSection `json:"sections,omitempty"`
}

type ReplyButton struct {
	Type  string `json:"type"`
	Reply Reply  `json:"reply"`
}

// Reply is the id/title pair inside a reply button or list row. WhatsApp
// echoes it back verbatim when the user taps the button.
type Reply struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

type ListSection struct {
	Title string  `json:"title,omitempty"`
	Rows  []Reply `json:"rows"`
}

type TemplatePayload struct {
	Name       string              `json:"name"`
	Language   TemplateLanguage    `json:"language"`
	Components []TemplateComponent `json:"components,omitempty"`
}

type TemplateLanguage struct {
	Code string `json:"code"`
}

type TemplateComponent struct {
	Type       string          `json:"type"`
	SubType    string          `json:"sub_type,omitempty"`
	Index      string          `json:"index,omitempty"`
	Parameters []TemplateParam `json:"parameters,omitempty"`
}

// TemplateParam is one positional parameter slot of a template component.
// Text parameters carry Text; IMAGE/DOCUMENT parameters carry a link wrapper.
type TemplateParam struct {
	Type     string     `json:"type"`
	Text     string     `json:"text,omitempty"`
	Image    *MediaLink `json:"image,omitempty"`
	Document *MediaLink `json:"document,omitempty"`
}

type MediaLink struct {
	Link string `json:"link"`
}

// TemplateRecipient is one target of a proactive template send, carrying the
// per-recipient component parameters already shaped for the wire.
type TemplateRecipient struct {
	PhoneNumber      string          `json:"phone_number"`
	HeaderParams     []TemplateParam `json:"header_params,omitempty"`
	BodyParams       []TemplateParam `json:"body_params,omitempty"`
	ButtonsParams    []TemplateParam `json:"buttons_params,omitempty"`
	URLButtonsParams []TemplateParam `json:"url_buttons_params,omitempty"`
}

// RecipientValues holds the raw positional fill-in values for one recipient,
// before they are mapped onto template parameter slots.
type RecipientValues struct {
	HeaderParams  []string `json:"header_params,omitempty"`
	BodyParams    []string `json:"body_params,omitempty"`
	ButtonsParams []string `json:"buttons_params,omitempty"`
}
