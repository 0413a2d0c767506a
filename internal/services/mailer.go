package services

import (
	"encoding/base64"
	"fmt"
	"net/http"
	"os"

	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
	"github.com/walkthru-dev/walkthru/internal/models"
)

var (
	sendgridHost     = "https://api.sendgrid.com"
	sendgridEndpoint = "/v3/mail/send"
)

// SendReportEmail mails a rendered inspection report to the organization's
// configured recipients. Callers run this off the request goroutine; the
// HTTP response streaming the same PDF is never affected by the outcome.
func SendReportEmail(org models.Organization, propertyName, filename string, pdf []byte) error {
	key := os.Getenv("SENDGRID_API_KEY")
	if key == "" {
		return fmt.Errorf("SENDGRID_API_KEY is not set")
	}

	recipients := org.RecipientList()
	if len(recipients) == 0 {
		return fmt.Errorf("organization %q has no report recipients configured", org.Name)
	}

	from := os.Getenv("FROM_EMAIL")
	if from == "" {
		from = "reports@walkthru.app"
	}

	p := sgmail.NewPersonalization()
	p.Subject = fmt.Sprintf("[Walkthru] Inspection report - %s", propertyName)

	for _, recipient := range recipients {
		p.AddTos(sgmail.NewEmail("", recipient))
	}

	m := sgmail.NewV3Mail()
	m.SetFrom(sgmail.NewEmail("Walkthru", from))
	m.AddPersonalizations(p)
	m.AddContent(sgmail.NewContent("text/plain",
		fmt.Sprintf("The inspection report for %s is attached.", propertyName)))

	m.AddAttachment(&sgmail.Attachment{
		Content:     base64.StdEncoding.EncodeToString(pdf),
		Type:        "application/pdf",
		Filename:    filename,
		Disposition: "attachment",
	})

	req := sendgrid.GetRequest(key, sendgridEndpoint, sendgridHost)
	req.Method = http.MethodPost
	req.Body = sgmail.GetRequestBody(m)

	res, err := sendgrid.API(req)
	if err != nil {
		return fmt.Errorf("failed to send report email: %w", err)
	}

	if res.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("sendgrid returned status %d: %s", res.StatusCode, res.Body)
	}

	return nil
}
