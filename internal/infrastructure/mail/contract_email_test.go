package mail

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContractEmail_Build(t *testing.T) {
	email := &ContractEmail{
		To:             "maria@example.com",
		CustomerName:   "Maria Silva",
		ContractNumber: "CT202501021000123",
		CompanyPhone:   "(11) 1234-5678",
		CompanyEmail:   "contato@lotiva.com.br",
		PDF:            []byte("%PDF-1.4"),
	}

	msg, err := email.Build()
	require.NoError(t, err)

	assert.Equal(t, "maria@example.com", msg.To)
	assert.Equal(t, "Contrato de Compra e Venda - CT202501021000123", msg.Subject)
	assert.Contains(t, msg.HTMLBody, "Olá <strong>Maria Silva</strong>")
	assert.Contains(t, msg.HTMLBody, "<strong>CT202501021000123</strong>")
	assert.Contains(t, msg.HTMLBody, DefaultCompanyName)
	assert.Contains(t, msg.HTMLBody, "Telefone: (11) 1234-5678")
	assert.NotContains(t, msg.HTMLBody, "Mensagem personalizada")

	require.Len(t, msg.Attachments, 1)
	assert.Equal(t, "Contrato_CT202501021000123.pdf", msg.Attachments[0].Filename)
	assert.Equal(t, "application/pdf", msg.Attachments[0].ContentType)
	assert.Equal(t, []byte("%PDF-1.4"), msg.Attachments[0].Content)
}

func TestContractEmail_CustomMessageIsEscaped(t *testing.T) {
	email := &ContractEmail{
		To:             "maria@example.com",
		CustomerName:   "Maria <b>Silva</b>",
		ContractNumber: "CT1",
		CustomMessage:  "  <script>alert(1)</script> Assine até sexta  ",
		PDF:            []byte("%PDF-1.4"),
	}

	msg, err := email.Build()
	require.NoError(t, err)

	assert.Contains(t, msg.HTMLBody, "Mensagem personalizada:")
	assert.Contains(t, msg.HTMLBody, "&lt;script&gt;alert(1)&lt;/script&gt; Assine até sexta")
	assert.NotContains(t, msg.HTMLBody, "<script>")
	assert.Contains(t, msg.HTMLBody, "Maria &lt;b&gt;Silva&lt;/b&gt;")
}

func TestContractEmail_Validation(t *testing.T) {
	tests := []struct {
		name  string
		email ContractEmail
	}{
		{"missing recipient", ContractEmail{ContractNumber: "CT1", PDF: []byte("x")}},
		{"blank recipient", ContractEmail{To: "  ", ContractNumber: "CT1", PDF: []byte("x")}},
		{"missing number", ContractEmail{To: "a@b.com", PDF: []byte("x")}},
		{"missing pdf", ContractEmail{To: "a@b.com", ContractNumber: "CT1"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.email.Build()
			assert.Error(t, err)
		})
	}
}
