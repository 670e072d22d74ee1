package document

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/lotiva/backend/internal/domain/contract"
	"github.com/lotiva/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// TemplateVersion identifies the clause set produced by Assembler.
// Bump it whenever the wording or layout of the contract changes.
const TemplateVersion = "lotiva-compra-venda/v2"

// FirstDueDateDays is the number of calendar days between generation and the first installment
const FirstDueDateDays = 30

// DefaultComarca is the jurisdiction cited in the forum clause
const DefaultComarca = "São Paulo/SP"

//go:embed templates/contract.html
var templateFS embed.FS

// AssemblerConfig contains configuration for the clause assembler
type AssemblerConfig struct {
	// Seller printed in the parties section (default: DefaultSeller)
	Seller Party
	// Comarca cited in the forum clause (default: DefaultComarca)
	Comarca string
	// Location used for every printed date (default: America/Sao_Paulo, falling back to UTC)
	Location *time.Location
}

// AssembleInput is everything a contract document is built from
type AssembleInput struct {
	Sale           *contract.Sale
	ContractNumber string
	GeneratedAt    time.Time
}

// Assembler builds the standalone contract HTML document for a sale.
// Output depends only on the input and the configuration.
type Assembler struct {
	tmpl     *template.Template
	seller   Party
	comarca  string
	location *time.Location
	validate *validator.Validate
}

// NewAssembler parses the embedded contract template
func NewAssembler(cfg AssemblerConfig) (*Assembler, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/contract.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse contract template: %w", err)
	}

	if cfg.Seller.IsZero() {
		cfg.Seller = DefaultSeller()
	}
	if strings.TrimSpace(cfg.Comarca) == "" {
		cfg.Comarca = DefaultComarca
	}
	if cfg.Location == nil {
		cfg.Location = defaultLocation()
	}

	return &Assembler{
		tmpl:     tmpl,
		seller:   cfg.Seller,
		comarca:  cfg.Comarca,
		location: cfg.Location,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}, nil
}

// Version returns the template version stamped on generated documents
func (a *Assembler) Version() string {
	return TemplateVersion
}

// Location returns the time zone dates are printed in
func (a *Assembler) Location() *time.Location {
	return a.location
}

// Assemble renders the contract document
func (a *Assembler) Assemble(in AssembleInput) (string, error) {
	if in.Sale == nil {
		return "", shared.NewValidationError("sale is required")
	}
	if err := a.validateInput(in); err != nil {
		return "", err
	}

	view, err := a.buildView(in)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := a.tmpl.ExecuteTemplate(&buf, "contract", view); err != nil {
		return "", fmt.Errorf("failed to execute contract template: %w", err)
	}
	return buf.String(), nil
}

// =============================================================================
// Validation
// =============================================================================

// assembleTerms holds the fields checked before rendering, in cents
type assembleTerms struct {
	ContractNumber   string `validate:"required"`
	BuyerName        string `validate:"required"`
	CPFDigits        string `validate:"len=11,numeric"`
	InstallmentCount int    `validate:"gt=0"`
	TotalCents       int64  `validate:"gt=0"`
	DownPaymentCents int64  `validate:"gte=0,ltefield=TotalCents"`
	InstallmentCents int64  `validate:"gte=0"`
}

func (a *Assembler) validateInput(in AssembleInput) error {
	s := in.Sale
	terms := assembleTerms{
		ContractNumber:   strings.TrimSpace(in.ContractNumber),
		BuyerName:        strings.TrimSpace(s.Customer.Name),
		CPFDigits:        DigitsOnly(s.Customer.CPF),
		InstallmentCount: s.InstallmentCount,
		TotalCents:       toCents(s.TotalValue),
		DownPaymentCents: toCents(s.DownPayment),
		InstallmentCents: toCents(s.InstallmentValue),
	}

	err := a.validate.Struct(terms)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return shared.NewValidationError(err.Error())
	}
	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, fmt.Sprintf("%s failed '%s'", fe.Field(), fe.Tag()))
	}
	return shared.NewValidationError("invalid contract input: " + strings.Join(fields, "; "))
}

func toCents(v decimal.Decimal) int64 {
	return v.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}

// =============================================================================
// View model
// =============================================================================

type contractView struct {
	TemplateVersion string
	Number          string
	GeneratedAt     string
	Seller          Party
	Buyer           buyerView
	Lot             lotView
	Payment         paymentView
	Clauses         []clauseView
}

type buyerView struct {
	Name          string
	CPF           string
	RG            string
	Address       string
	Email         string
	Profession    string
	MaritalStatus string
	Birthplace    string
	BirthDate     string
}

type lotView struct {
	Identifier string
	Block      string
	TotalArea  string
	Front      string
	Back       string
	LeftSide   string
	RightSide  string
	Price      string
}

type paymentView struct {
	Total            string
	DownPayment      string
	HasDownPayment   bool
	Financed         string
	InstallmentCount int
	InstallmentWords string
	Installment      string
	FirstDueDate     string
	AnnualAdjustment bool
}

type clauseView struct {
	Heading    string
	Paragraphs []string
}

func (a *Assembler) buildView(in AssembleInput) (*contractView, error) {
	s := in.Sale

	total, err := FormatCurrency(s.TotalValue)
	if err != nil {
		return nil, err
	}
	down, err := FormatCurrency(s.DownPayment)
	if err != nil {
		return nil, err
	}
	financed, err := FormatCurrency(s.FinancedBalance())
	if err != nil {
		return nil, err
	}
	installment, err := FormatCurrency(s.InstallmentValue)
	if err != nil {
		return nil, err
	}
	price, err := FormatCurrency(s.Lot.Price)
	if err != nil {
		return nil, err
	}
	countWords, err := NumberToWords(int64(s.InstallmentCount))
	if err != nil {
		return nil, err
	}

	firstDue := in.GeneratedAt.In(a.location).AddDate(0, 0, FirstDueDateDays)

	birthDate := ""
	if !s.Customer.BirthDate.IsZero() {
		// Birth dates are calendar dates, not instants; print them as stored.
		birthDate = FormatShortDate(s.Customer.BirthDate, nil)
	}

	view := &contractView{
		TemplateVersion: TemplateVersion,
		Number:          in.ContractNumber,
		GeneratedAt:     FormatLongDate(in.GeneratedAt, a.location),
		Seller:          a.seller,
		Buyer: buyerView{
			Name:          cases.Upper(language.BrazilianPortuguese).String(strings.TrimSpace(s.Customer.Name)),
			CPF:           FormatCPF(s.Customer.CPF),
			RG:            s.Customer.RG,
			Address:       s.Customer.Address,
			Email:         s.Customer.Email,
			Profession:    s.Customer.Profession,
			MaritalStatus: s.Customer.MaritalStatus.Label(),
			Birthplace:    s.Customer.Birthplace,
			BirthDate:     birthDate,
		},
		Lot: lotView{
			Identifier: s.Lot.Identifier,
			Block:      s.Lot.Block.Identifier,
			TotalArea:  FormatDecimal2(s.Lot.TotalArea),
			Front:      FormatDecimal2(s.Lot.Front),
			Back:       FormatDecimal2(s.Lot.Back),
			LeftSide:   FormatDecimal2(s.Lot.LeftSide),
			RightSide:  FormatDecimal2(s.Lot.RightSide),
			Price:      price,
		},
		Payment: paymentView{
			Total:            total,
			DownPayment:      down,
			HasDownPayment:   s.HasDownPayment(),
			Financed:         financed,
			InstallmentCount: s.InstallmentCount,
			InstallmentWords: countWords,
			Installment:      installment,
			FirstDueDate:     FormatLongDate(firstDue, nil),
			AnnualAdjustment: s.AnnualAdjustment,
		},
	}

	view.Clauses = a.clauses(view, firstDue.Day())
	return view, nil
}

// clauses returns the numbered clause list. Optional clauses are skipped
// entirely so numbering stays contiguous.
func (a *Assembler) clauses(v *contractView, dueDay int) []clauseView {
	type clause struct {
		title      string
		paragraphs []string
	}

	price := fmt.Sprintf(
		"O preço certo e ajustado para a presente compra e venda é de %s, a ser pago conforme a seção Das Condições de Pagamento.",
		v.Payment.Total)
	schedule := fmt.Sprintf(
		"O saldo de %s será pago em %d (%s) parcelas mensais e sucessivas de %s cada, vencendo-se a primeira em %s e as demais no dia %d dos meses subsequentes.",
		v.Payment.Financed, v.Payment.InstallmentCount, v.Payment.InstallmentWords,
		v.Payment.Installment, v.Payment.FirstDueDate, dueDay)
	pricing := []string{price}
	if v.Payment.HasDownPayment {
		pricing = append(pricing, fmt.Sprintf(
			"A título de entrada, o COMPRADOR pagará %s no ato da assinatura deste instrumento.",
			v.Payment.DownPayment))
	}
	pricing = append(pricing, schedule)

	list := []clause{
		{
			title: "DO OBJETO",
			paragraphs: []string{fmt.Sprintf(
				"O presente contrato tem por objeto a compra e venda do Lote %s, localizado no Bloco %s, descrito na seção Do Imóvel, livre e desembaraçado de qualquer ônus, dívida ou gravame.",
				v.Lot.Identifier, v.Lot.Block)},
		},
		{title: "DO PREÇO E DA FORMA DE PAGAMENTO", paragraphs: pricing},
	}

	if v.Payment.AnnualAdjustment {
		list = append(list, clause{
			title: "DO REAJUSTE ANUAL",
			paragraphs: []string{
				"As parcelas vincendas serão reajustadas anualmente, a cada período de 12 (doze) meses contado da data de assinatura deste contrato, pela variação acumulada do INCC (Índice Nacional de Custo da Construção) no período.",
				"Na hipótese de extinção do INCC, será adotado o índice oficial que vier a substituí-lo.",
			},
		})
	}

	list = append(list,
		clause{
			title: "DA ANTECIPAÇÃO DE PARCELAS",
			paragraphs: []string{
				"É facultado ao COMPRADOR antecipar o pagamento de parcelas vincendas, total ou parcialmente, hipótese em que as parcelas antecipadas serão quitadas pelo seu valor vigente na data do pagamento, sem acréscimo de encargos futuros.",
			},
		},
		clause{
			title: "DA MORA E DAS PENALIDADES",
			paragraphs: []string{
				"O COMPRADOR se obriga ao pagamento pontual das parcelas acordadas, sob pena de incidência de multa de 2% (dois por cento) sobre o valor em atraso, acrescida de juros de mora de 1% (um por cento) ao mês e correção monetária.",
			},
		},
		clause{
			title: "DO INADIMPLEMENTO E DA RESCISÃO",
			paragraphs: []string{
				"O atraso superior a 90 (noventa) dias no pagamento de qualquer parcela constituirá o COMPRADOR em mora, podendo o VENDEDOR, a seu critério, considerar rescindido o presente contrato, mediante notificação prévia.",
			},
		},
		clause{
			title: "DA IRREVOGABILIDADE",
			paragraphs: []string{
				"O presente contrato é celebrado em caráter irrevogável e irretratável, obrigando as partes, seus herdeiros e sucessores a qualquer título, ressalvadas as hipóteses de rescisão nele previstas.",
			},
		},
		clause{
			title: "DA ENTREGA E POSSE",
			paragraphs: []string{
				"A posse definitiva do imóvel será transferida ao COMPRADOR mediante a quitação integral do preço acordado e a assinatura da escritura pública de compra e venda.",
			},
		},
		clause{
			title: "DAS DECLARAÇÕES E OBRIGAÇÕES DO VENDEDOR",
			paragraphs: []string{
				"O VENDEDOR declara ser legítimo proprietário do imóvel e se obriga a entregá-lo livre de qualquer ônus, dívida ou impedimento legal, bem como a fornecer toda a documentação necessária para a transferência da propriedade.",
			},
		},
		clause{
			title: "DA ESCRITURA DEFINITIVA",
			paragraphs: []string{
				"Quitado integralmente o preço, o VENDEDOR outorgará ao COMPRADOR a escritura pública definitiva no prazo de até 60 (sessenta) dias, correndo por conta do COMPRADOR as despesas de escritura, registro e tributos de transmissão.",
			},
		},
		clause{
			title: "DO FORO",
			paragraphs: []string{fmt.Sprintf(
				"As partes elegem o foro da Comarca de %s para dirimir quaisquer dúvidas ou questões oriundas do presente contrato, com renúncia a qualquer outro, por mais privilegiado que seja.",
				a.comarca)},
		},
	)

	out := make([]clauseView, len(list))
	for i, c := range list {
		out[i] = clauseView{
			Heading:    fmt.Sprintf("CLÁUSULA %dª - %s", i+1, c.title),
			Paragraphs: c.paragraphs,
		}
	}
	return out
}

func defaultLocation() *time.Location {
	loc, err := time.LoadLocation("America/Sao_Paulo")
	if err != nil {
		return time.UTC
	}
	return loc
}
