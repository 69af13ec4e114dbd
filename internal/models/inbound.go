package models

// WebhookPayload is the top-level Cloud API webhook delivery.
type WebhookPayload struct {
	Object string  `json:"object"`
	Entry  []Entry `json:"entry"`
}

type Entry struct {
	ID      string   `json:"id"`
	Changes []Change `json:"changes"`
}

type Change struct {
	Field string      `json:"field"`
	Value ChangeValue `json:"value"`
}

type ChangeValue struct {
	MessagingProduct string           `json:"messaging_product"`
	Metadata         WebhookMetadata  `json:"metadata"`
	Contacts         []Contact        `json:"contacts,omitempty"`
	Messages         []InboundMessage `json:"messages,omitempty"`
	Statuses         []DeliveryStatus `json:"statuses,omitempty"`
}

// WebhookMetadata identifies the business phone number the event was
// delivered to.
type WebhookMetadata struct {
	DisplayPhoneNumber string `json:"display_phone_number"`
	PhoneNumberID      string `json:"phone_number_id"`
}

type Contact struct {
	Profile ContactProfile `json:"profile"`
	WaID    string         `json:"wa_id"`
}

type ContactProfile struct {
	Name string `json:"name"`
}

// InboundMessage is one message received from a WhatsApp user. Type selects
// which payload field is set.
type InboundMessage struct {
	From        string              `json:"from"`
	ID          string              `json:"id,omitempty"`
	Timestamp   string              `json:"timestamp,omitempty"`
	Type        string              `json:"type"`
	Text        *TextPayload        `json:"text,omitempty"`
	Button      *ButtonReply        `json:"button,omitempty"`
	Interactive *InteractiveReply   `json:"interactive,omitempty"`
	Image       *InboundMedia       `json:"image,omitempty"`
	Video       *InboundMedia       `json:"video,omitempty"`
	Document    *InboundMedia       `json:"document,omitempty"`
	Audio       *InboundMedia       `json:"audio,omitempty"`
}

// ButtonReply is the payload of a template quick-reply button tap.
type ButtonReply struct {
	Text    string `json:"text"`
	Payload string `json:"payload,omitempty"`
}

// InteractiveReply is the payload of an interactive message reply; Type is
// "list_reply" or "button_reply" and the matching field carries the echoed
// id/title pair.
type InteractiveReply struct {
	Type        string `json:"type"`
	ListReply   *Reply `json:"list_reply,omitempty"`
	ButtonReply *Reply `json:"button_reply,omitempty"`
}

type InboundMedia struct {
	ID       string `json:"id,omitempty"`
	MimeType string `json:"mime_type,omitempty"`
	SHA256   string `json:"sha256,omitempty"`
	Caption  string `json:"caption,omitempty"`
	Filename string `json:"filename,omitempty"`
}

type DeliveryStatus struct {
	ID          string `json:"id"`
	Status      string `json:"status"`
	Timestamp   string `json:"timestamp"`
	RecipientID string `json:"recipient_id"`
}
