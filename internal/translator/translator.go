// Package translator converts between the chat platform's native message
// shape and the WhatsApp Business Cloud API payloads, in both directions.
package translator

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
)

// ErrUnsupportedType is returned when a message carries a type or attachment
// the translator does not know how to render. Callers are expected to log and
// skip, not fail the whole pipeline.
var ErrUnsupportedType = errors.New("translator: unsupported message type")

const (
	// urlPointer prefixes links appended to a message body.
	urlPointer = "\n\n\U0001F449 "

	quickReplyPrefix  = "quick"
	actionReplyPrefix = "action"
	replyTokenLen     = 4
	inlineTitleLimit  = 20
	listRowTitleLimit = 24
	maxInlineButtons  = 3
	maxListRows       = 10
	listButtonLabel   = "Choose an option"
)

// newReplyID builds a reply id of the form <kind><token>_<label> where the
// token is replyTokenLen hex chars. The random token keeps ids unique across
// renders of the same button; the consumer must tolerate the residual
// collision chance.
func newReplyID(kind, label string) string {
	var buf [replyTokenLen / 2]byte
	_, _ = rand.Read(buf[:])
	return kind + hex.EncodeToString(buf[:]) + "_" + label
}

// truncateTitle shortens a button title to limit runes, marking the cut with
// a two-dot ellipsis.
func truncateTitle(title string, limit int) string {
	runes := []rune(title)
	if len(runes) <= limit {
		return title
	}
	return string(runes[:limit-2]) + ".."
}
