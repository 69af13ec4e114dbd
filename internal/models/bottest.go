package models

// BotTestRecord binds a short test code to the bot under test. It is written
// to the session store when an operator starts a test and read back once per
// inbound test message, serialized as JSON.
type BotTestRecord struct {
	Code  string `json:"code"`
	BotID string `json:"bot_id"`
}

// ChannelMeta carries the channel routing info attached to a chat platform
// dispatch.
type ChannelMeta struct {
	Channel  string       `json:"channel"`
	WhatsApp WhatsAppMeta `json:"whatsapp"`
}

type WhatsAppMeta struct {
	PhoneNumberID string `json:"phone_number_id"`
	From          string `json:"from"`
	Firstname     string `json:"firstname"`
	Lastname      string `json:"lastname"`
}

// CMPTestPayload is the bot-test request shape posted by the company
// management platform, already flattened out of the webhook envelope.
type CMPTestPayload struct {
	Message         *InboundMessage `json:"message"`
	Contact         CMPContact      `json:"contact"`
	ReceiverAddress string          `json:"receiverAddress"`
}

type CMPContact struct {
	Name string `json:"name"`
}

// DispatchResponse is whatever the chat platform returns from a send.
type DispatchResponse struct {
	Success   bool   `json:"success"`
	RequestID string `json:"request_id,omitempty"`
	Message   string `json:"message,omitempty"`
}
