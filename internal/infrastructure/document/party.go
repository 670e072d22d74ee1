package document

// Party is the seller block printed on every contract
type Party struct {
	Name       string
	CNPJ       string
	Address    string
	PostalCode string
	City       string
	Phone      string
	Email      string
}

// DefaultSeller returns the Lotiva company data
func DefaultSeller() Party {
	return Party{
		Name:       "LOTIVA DESENVOLVIMENTO IMOBILIÁRIO LTDA",
		CNPJ:       "12.345.678/0001-90",
		Address:    "Rua das Empresas, 123 - Centro",
		PostalCode: "12345-678",
		City:       "Cidade/Estado",
		Phone:      "(11) 1234-5678",
		Email:      "contato@lotiva.com.br",
	}
}

// IsZero reports whether no seller field is set
func (p Party) IsZero() bool {
	return p == Party{}
}
