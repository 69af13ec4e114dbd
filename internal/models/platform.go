package models

// ChannelName is the channel identifier used across the chat platform API.
const ChannelName = "whatsapp"

// PlatformMessage is the chat platform's native message shape. It is what the
// platform delivers for outbound sends and what the connector produces when
// translating inbound WhatsApp traffic.
type PlatformMessage struct {
	Text           string      `json:"text"`
	Type           string      `json:"type,omitempty"`
	SenderFullname string      `json:"senderFullname,omitempty"`
	Channel        *Channel    `json:"channel,omitempty"`
	Metadata       *Metadata   `json:"metadata,omitempty"`
	Attributes     *Attributes `json:"attributes,omitempty"`
}

type Channel struct {
	Name string `json:"name"`
}

// Metadata describes an attachment carried by a platform message. For media
// messages Src (or DownloadURL for documents) must be a resolvable URL.
type Metadata struct {
	Src         string `json:"src,omitempty"`
	Name        string `json:"name,omitempty"`
	Type        string `json:"type,omitempty"`
	DownloadURL string `json:"downloadURL,omitempty"`
}

type Attributes struct {
	Action     string      `json:"action,omitempty"`
	RawMessage string      `json:"_raw_message,omitempty"`
	Attachment *Attachment `json:"attachment,omitempty"`
}

type Attachment struct {
	Buttons  []ButtonSpec  `json:"buttons,omitempty"`
	Template *TemplateSpec `json:"template,omitempty"`
}

// ButtonSpec is one button attached to a platform message. Type is one of
// "text", "action" or "url"; Link is set for url buttons and Action for
// action buttons.
type ButtonSpec struct {
	Type   string `json:"type"`
	Value  string `json:"value"`
	Link   string `json:"link,omitempty"`
	Action string `json:"action,omitempty"`
}

// TemplateSpec identifies a pre-approved WhatsApp template plus its fill-in
// parameter groups.
type TemplateSpec struct {
	Name     string          `json:"name"`
	Language string          `json:"language"`
	Params   *TemplateParams `json:"params,omitempty"`
}

type TemplateParams struct {
	Header  []TemplateParam `json:"header,omitempty"`
	Body    []TemplateParam `json:"body,omitempty"`
	Buttons []TemplateParam `json:"buttons,omitempty"`
}
