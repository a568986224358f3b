package email

import (
	"bytes"
	"fmt"
	htmltemplate "html/template"
	"strings"
	texttemplate "text/template"
)

// SiteConfig holds the branding and addresses used when composing messages.
type SiteConfig struct {
	SiteName        string
	SiteURL         string
	LogoURL         string
	SupportEmail    string
	FromAddress     string
	OperatorAddress string
}

// InquiryDetails holds the validated fields of one booking inquiry
type InquiryDetails struct {
	FirstName  string
	LastName   string
	Email      string
	Phone      string
	EventDate  string
	VenueName  string
	City       string
	State      string
	EventType  string
	GuestCount string
	Message    string
}

func (d InquiryDetails) FullName() string {
	return strings.TrimSpace(d.FirstName + " " + d.LastName)
}

type templateData struct {
	InquiryDetails
	Site        SiteConfig
	SenderName  string
	MessageHTML htmltemplate.HTML
}

var funcs = map[string]any{
	"dash": dash,
}

var (
	operatorHTML = htmltemplate.Must(htmltemplate.New("operator_html").Funcs(funcs).Parse(operatorHTMLTemplate))
	operatorText = texttemplate.Must(texttemplate.New("operator_text").Funcs(funcs).Parse(operatorTextTemplate))
	receiptHTML  = htmltemplate.Must(htmltemplate.New("receipt_html").Funcs(funcs).Parse(receiptHTMLTemplate))
	receiptText  = texttemplate.Must(texttemplate.New("receipt_text").Funcs(funcs).Parse(receiptTextTemplate))
)

// Compose builds the operator notification and the submitter receipt.
func Compose(details InquiryDetails, site SiteConfig) (operator OutgoingMessage, receipt OutgoingMessage, err error) {
	senderName := site.SiteName
	if senderName == "" {
		senderName = DefaultSenderName
	}
	site.SiteName = senderName

	data := templateData{
		InquiryDetails: details,
		Site:           site,
		SenderName:     senderName,
		MessageHTML:    EscapeMultiline(details.Message),
	}
	from := FormatSender(site.FromAddress, senderName)

	operator = OutgoingMessage{
		From:    from,
		To:      site.OperatorAddress,
		ReplyTo: details.Email,
		Subject: sanitizeHeader(fmt.Sprintf("New booking inquiry from %s", details.FullName())),
	}
	if operator.Text, err = renderText(operatorText, data); err != nil {
		return OutgoingMessage{}, OutgoingMessage{}, err
	}
	if operator.HTML, err = renderHTML(operatorHTML, data); err != nil {
		return OutgoingMessage{}, OutgoingMessage{}, err
	}

	receipt = OutgoingMessage{
		From:    from,
		To:      details.Email,
		ReplyTo: site.OperatorAddress,
		Subject: sanitizeHeader(fmt.Sprintf("We received your booking request - %s", senderName)),
	}
	if receipt.Text, err = renderText(receiptText, data); err != nil {
		return OutgoingMessage{}, OutgoingMessage{}, err
	}
	if receipt.HTML, err = renderHTML(receiptHTML, data); err != nil {
		return OutgoingMessage{}, OutgoingMessage{}, err
	}

	return operator, receipt, nil
}

// EscapeMultiline HTML-escapes s and turns newlines into <br /> tags.
func EscapeMultiline(s string) htmltemplate.HTML {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	escaped := htmltemplate.HTMLEscapeString(s)
	return htmltemplate.HTML(strings.ReplaceAll(escaped, "\n", "<br />"))
}

func dash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}

func renderHTML(tmpl *htmltemplate.Template, data templateData) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute %s template: %w", tmpl.Name(), err)
	}
	return buf.String(), nil
}

func renderText(tmpl *texttemplate.Template, data templateData) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute %s template: %w", tmpl.Name(), err)
	}
	return buf.String(), nil
}
