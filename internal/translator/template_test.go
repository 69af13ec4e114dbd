package translator

import (
	"testing"

	"github.com/anthibo/custom-whatsapp-connector/internal/models"
)

func TestBuildTemplateBare(t *testing.T) {
	tpl := &models.TemplateSpec{Name: "welcome", Language: "it"}
	rcpt := &models.TemplateRecipient{PhoneNumber: "393331112222"}

	out := BuildTemplate(tpl, rcpt)

	if out.MessagingProduct != "whatsapp" || out.To != "393331112222" {
		t.Errorf("envelope = %+v", out)
	}
	if out.Type != "template" {
		t.Errorf("type = %q, want template", out.Type)
	}
	if out.Template.Name != "welcome" || out.Template.Language.Code != "it" {
		t.Errorf("template = %+v", out.Template)
	}
	if out.Template.Components != nil {
		t.Errorf("bare template must carry no components, got %+v", out.Template.Components)
	}
}

func TestBuildTemplateComponentOrder(t *testing.T) {
	tpl := &models.TemplateSpec{Name: "order_update", Language: "en_US"}
	rcpt := &models.TemplateRecipient{
		PhoneNumber:      "15551230001",
		HeaderParams:     []models.TemplateParam{{Type: "text", Text: "Order 42"}},
		BodyParams:       []models.TemplateParam{{Type: "text", Text: "shipped"}},
		ButtonsParams:    []models.TemplateParam{{Type: "text", Text: "track/42"}},
		URLButtonsParams: []models.TemplateParam{{Type: "text", Text: "cancel/42"}},
	}

	out := BuildTemplate(tpl, rcpt)

	comps := out.Template.Components
	if len(comps) != 4 {
		t.Fatalf("got %d components, want 4", len(comps))
	}

	wantTypes := []string{"header", "body", "button", "button"}
	for i, want := range wantTypes {
		if comps[i].Type != want {
			t.Errorf("component %d type = %q, want %q", i, comps[i].Type, want)
		}
	}
	for _, i := range []int{2, 3} {
		if comps[i].SubType != "url" || comps[i].Index != "0" {
			t.Errorf("button component %d = %+v, want sub_type url index 0", i, comps[i])
		}
	}
}

func TestBuildTemplateSkipsAbsentGroups(t *testing.T) {
	tpl := &models.TemplateSpec{Name: "plain", Language: "en"}
	rcpt := &models.TemplateRecipient{
		PhoneNumber: "15551230001",
		BodyParams:  []models.TemplateParam{{Type: "text", Text: "only body"}},
	}

	out := BuildTemplate(tpl, rcpt)

	comps := out.Template.Components
	if len(comps) != 1 || comps[0].Type != "body" {
		t.Fatalf("components = %+v, want single body component", comps)
	}
}

func TestFillParams(t *testing.T) {
	params := &models.TemplateParams{
		Header: []models.TemplateParam{
			{Type: "text"},
			{Type: "IMAGE"},
			{Type: "DOCUMENT"},
			{Type: "LOCATION"},
		},
		Body:    []models.TemplateParam{{Type: "text"}, {Type: "text"}},
		Buttons: []models.TemplateParam{{Type: "text"}},
	}
	values := &models.RecipientValues{
		HeaderParams:  []string{"Hi", "https://x/a.jpg", "https://x/a.pdf", "41.9,12.5"},
		BodyParams:    []string{"first", "second"},
		ButtonsParams: []string{"go/now"},
	}

	got := FillParams(params, values)

	if got.Header[0].Text != "Hi" {
		t.Errorf("header text = %q", got.Header[0].Text)
	}
	if got.Header[1].Image == nil || got.Header[1].Image.Link != "https://x/a.jpg" {
		t.Errorf("image param = %+v, want link wrapper", got.Header[1].Image)
	}
	if got.Header[2].Document == nil || got.Header[2].Document.Link != "https://x/a.pdf" {
		t.Errorf("document param = %+v, want link wrapper", got.Header[2].Document)
	}
	// Location params stay untouched.
	if got.Header[3].Text != "" || got.Header[3].Image != nil || got.Header[3].Document != nil {
		t.Errorf("location param was filled: %+v", got.Header[3])
	}
	if got.Body[0].Text != "first" || got.Body[1].Text != "second" {
		t.Errorf("body params = %+v", got.Body)
	}
	if got.Buttons[0].Text != "go/now" {
		t.Errorf("button param = %+v", got.Buttons[0])
	}
}

func TestFillParamsNil(t *testing.T) {
	if got := FillParams(nil, &models.RecipientValues{}); got != nil {
		t.Errorf("FillParams(nil) = %+v, want nil", got)
	}
}

func TestSanitizeTemplateMessage(t *testing.T) {
	msg := &models.PlatformMessage{
		Attributes: &models.Attributes{
			Attachment: &models.Attachment{
				Template: &models.TemplateSpec{
					Name:     "promo",
					Language: "en",
					Params: &models.TemplateParams{
						Body: []models.TemplateParam{{Type: "text"}},
					},
				},
			},
		},
	}
	values := &models.RecipientValues{BodyParams: []string{"Alice"}}

	got := SanitizeTemplateMessage(msg, values)

	if got.Attributes.Attachment.Template.Params.Body[0].Text != "Alice" {
		t.Errorf("body param not filled: %+v", got.Attributes.Attachment.Template.Params.Body[0])
	}
}

func TestSanitizeTemplateMessagePassthrough(t *testing.T) {
	msg := &models.PlatformMessage{Text: "no template here"}
	if got := SanitizeTemplateMessage(msg, &models.RecipientValues{}); got != msg {
		t.Errorf("message without template params must pass through unchanged")
	}
}
