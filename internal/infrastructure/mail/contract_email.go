package mail

import (
	"bytes"
	"errors"
	"html/template"
	"strings"
)

const contractEmailTemplate = `<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
  <h2 style="color: #333;">Contrato de Compra e Venda</h2>
  <p>Olá <strong>{{.CustomerName}}</strong>,</p>
  <p>Segue em anexo o seu contrato de compra e venda <strong>{{.ContractNumber}}</strong>.</p>
  <p>Por favor, revise o documento e entre em contato conosco caso tenha alguma dúvida.</p>
  {{- if .CustomMessage}}
  <div style="background: #f5f5f5; padding: 15px; border-radius: 5px; margin: 20px 0;">
    <p><strong>Mensagem personalizada:</strong></p>
    <p>{{.CustomMessage}}</p>
  </div>
  {{- end}}
  <div style="margin-top: 30px; padding-top: 20px; border-top: 1px solid #eee;">
    <p style="margin: 0;"><strong>{{.CompanyName}}</strong></p>
    {{- if .CompanyPhone}}
    <p style="margin: 5px 0; color: #666;">Telefone: {{.CompanyPhone}}</p>
    {{- end}}
    {{- if .CompanyEmail}}
    <p style="margin: 5px 0; color: #666;">Email: {{.CompanyEmail}}</p>
    {{- end}}
  </div>
</div>
`

var contractEmail = template.Must(template.New("contract-email").Parse(contractEmailTemplate))

// DefaultCompanyName is the signature used when none is configured
const DefaultCompanyName = "Lotiva Desenvolvimento Imobiliário"

// ContractEmail describes the email that carries a contract PDF
type ContractEmail struct {
	To             string
	CustomerName   string
	ContractNumber string
	CustomMessage  string
	CompanyName    string
	CompanyPhone   string
	CompanyEmail   string
	PDF            []byte
}

// Subject returns the email subject line
func (e *ContractEmail) Subject() string {
	return "Contrato de Compra e Venda - " + e.ContractNumber
}

// Filename returns the attachment file name
func (e *ContractEmail) Filename() string {
	return "Contrato_" + e.ContractNumber + ".pdf"
}

// Build renders the body and returns the ready-to-send message
func (e *ContractEmail) Build() (*Message, error) {
	if strings.TrimSpace(e.To) == "" {
		return nil, errors.New("recipient is required")
	}
	if e.ContractNumber == "" {
		return nil, errors.New("contract number is required")
	}
	if len(e.PDF) == 0 {
		return nil, errors.New("contract pdf is required")
	}

	data := *e
	data.CustomMessage = strings.TrimSpace(e.CustomMessage)
	if data.CompanyName == "" {
		data.CompanyName = DefaultCompanyName
	}

	var body bytes.Buffer
	if err := contractEmail.Execute(&body, data); err != nil {
		return nil, err
	}

	return &Message{
		To:       e.To,
		Subject:  e.Subject(),
		HTMLBody: body.String(),
		Attachments: []Attachment{{
			Filename:    e.Filename(),
			Content:     e.PDF,
			ContentType: "application/pdf",
		}},
	}, nil
}
