package mail

import (
	"bytes"
	"fmt"
	"text/template"

	"gopkg.in/gomail.v2"

	"github.com/xavierca1/ligue-leads/internal/entity"
)

// Inline so the binary doesn't depend on a templates/ directory at runtime.
const leadNotificationTemplate = `
<h2>Novo lead capturado 🎉</h2>
<p><b>Nome:</b> {{.CustomerName}}</p>
<p><b>Plataforma:</b> {{.Platform}}</p>
<p><b>Email:</b> {{.Email}}</p>
<p><b>Telefone:</b> {{.Phone}}</p>
<p><b>Campanha:</b> {{.CampaignName}}</p>
<p><b>Formulário:</b> {{.FormName}}</p>
<p><b>Recebido em:</b> {{.ReceivedAt}}</p>
`

func NewEmailSender(host string, port int, user, password, notifyTo string) *EmailSender {
	return &EmailSender{
		Host:     host,
		Port:     port,
		User:     user,
		Password: password,
		NotifyTo: notifyTo,
	}
}

// NotifyNewLead mails the sales inbox about a freshly created lead.
// Failures are the caller's problem to log, never to escalate.
func (s *EmailSender) NotifyNewLead(lead *entity.Lead) error {
	data := leadNotificationData{
		CustomerName: orDash(lead.CustomerName),
		Platform:     string(lead.Platform),
		Email:        orDash(lead.Email),
		Phone:        orDash(lead.Phone),
		CampaignName: orDash(lead.CampaignName),
		FormName:     orDash(lead.FormName),
		ReceivedAt:   lead.ReceivedAt.Format("02/01/2006 15:04"),
	}

	t, err := template.New("lead").Parse(leadNotificationTemplate)
	if err != nil {
		return fmt.Errorf("erro ao ler template de email: %w", err)
	}

	var body bytes.Buffer
	if err := t.Execute(&body, data); err != nil {
		return fmt.Errorf("erro ao processar template: %w", err)
	}

	m := gomail.NewMessage()
	m.SetHeader("From", "nao-responda@liguemedicina.com")
	m.SetHeader("To", s.NotifyTo)
	m.SetHeader("Subject", fmt.Sprintf("Novo lead (%s): %s", lead.Platform, data.CustomerName))
	m.SetBody("text/html", body.String())

	d := gomail.NewDialer(s.Host, s.Port, s.User, s.Password)

	if err := d.DialAndSend(m); err != nil {
		return fmt.Errorf("erro ao enviar email SMTP: %w", err)
	}

	return nil
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
