package mapping

import (
	"fmt"
	"strings"
)

// Output literals shared by the CRM schemas.
const (
	CountryBrazil     = "Brasil"
	OriginOutbound    = "Outbound"
	CategoryProspect  = "Cliente em potencial"
	DealStageOngoing  = "Em andamento"
	DealStatusOpen    = "Aberto"
	SourceLeadName    = "Nome do Lead"
	SourceSocialField = "Rede Social"
)

// CompanySchema is the CRM company import (Empresas.xlsx).
var CompanySchema = Schema{
	Name: "Empresas",
	Fields: []Field{
		{"Nome", Column(SourceLeadName)},
		{"CNPJ", Column("CNPJ")},
		{"Razão Social", Column(SourceLeadName)},
		{"Categoria", Literal(CategoryProspect)},
		{"Origem", Literal(OriginOutbound)},
		{"Usuário responsável", Param(ParamUser)},
		{"Setor", Empty()},
		{"Descrição", Empty()},
		{"E-mail", Column("E-mails Válidos de Decisores")},
		{"WhatsApp", Empty()},
		{"Telefone", Column("Telefones")},
		{"Celular", Empty()},
		{"Fax", Empty()},
		{"Ramal", Empty()},
		{"Website", Empty()},
		{"CEP", Column("CEP")},
		{"País", Literal(CountryBrazil)},
		{"Estado", Column("Estado")},
		{"Cidade", Column("Cidade")},
		{"Bairro", Column("Bairro")},
		{"Rua", Column("Logradouro")},
		{"Número", Derived(TransformAddressNumber, "Número")},
		{"Complemento", Column("Complemento")},
		{"Produto", Empty()},
		{"Facebook", Derived(TransformFacebookLink, SourceSocialField)},
		{"Twitter", Empty()},
		{"LinkedIn", Empty()},
		{"Skype", Empty()},
		{"Instagram", Derived(TransformInstagramLink, SourceSocialField)},
		{"Ranking", Empty()},
	},
}

// DealSchema is the CRM deal import (Negocios.xlsx). It is applied to the
// mapped company table, so Nome is the generated company display name.
var DealSchema = Schema{
	Name: "Negocios",
	Fields: []Field{
		{"Título do negócio", Column("Nome")},
		{"Empresa relacionada", Column("Nome")},
		{"Pessoa relacionada", Empty()},
		{"Usuário responsável", Param(ParamUser)},
		{"Data de início", Param(ParamToday)},
		{"Data de conclusão", Empty()},
		{"Valor Total", Empty()},
		{"Funil", Param(ParamFunnel)},
		{"Etapa", Literal(DealStageOngoing)},
		{"Status", Literal(DealStatusOpen)},
		{"Motivo de perda", Empty()},
		{"Descrição do motivo de perda", Empty()},
		{"Ranking", Empty()},
		{"Descrição", Empty()},
		{"Produtos e Serviços", Empty()},
	},
}

// PersonSchema is the CRM person import (Pessoas{i}.xlsx), one per partner slot.
var PersonSchema = Schema{
	Name: "Pessoas{i}",
	Fields: []Field{
		{"Nome", Column("SOCIO{i}Nome")},
		{"CPF", Column("SOCIO{i}CPF")},
		{"Empresa", Column(SourceLeadName)},
		{"Cargo", Column("SOCIO{i}Cargo")},
		{"Aniversário", Column("SOCIO{i}Aniversario")},
		{"Ano de nascimento", Column("SOCIO{i}AnoNascimento")},
		{"Usuário responsável", Param(ParamUser)},
		{"Categoria", Literal(CategoryProspect)},
		{"Origem", Literal(OriginOutbound)},
		{"Descrição", Empty()},
		{"E-mail", Column("SOCIO{i}Email1")},
		{"WhatsApp", Column("SOCIO{i}WhatsApp")},
		{"Telefone", Column("SOCIO{i}Telefone")},
		{"Celular", Column("SOCIO{i}Celular1")},
		{"Fax", Empty()},
		{"Ramal", Empty()},
		{"CEP", Column("CEP")},
		{"País", Literal(CountryBrazil)},
		{"Estado", Column("Estado")},
		{"Cidade", Column("Cidade")},
		{"Bairro", Column("Bairro")},
		{"Rua", Column("Logradouro")},
		{"Número", Column("Número")},
		{"Complemento", Column("Complemento")},
		{"Produto", Empty()},
		{"Rede Social", Column(SourceSocialField)},
		{"Twitter", Column("SOCIO{i}Twitter")},
		{"LinkedIn", Column("SOCIO{i}Linkedin")},
		{"Skype", Column("SOCIO{i}Skype")},
		{"Instagram", Column("SOCIO{i}Instagram")},
		{"Ranking", Empty()},
	},
}

// PartnerPhoneSchema lists one partner slot's name and best phone for the
// outbound call agent. Business is the second column of the source sheet.
var PartnerPhoneSchema = Schema{
	Name: "socio{i}",
	Fields: []Field{
		{"name", Column("SOCIO{i}Nome")},
		{"phone_number", Derived(TransformFirstPhone, "SOCIO{i}Celular1", "SOCIO{i}Celular2")},
		{"business", Positional(1)},
		{"prompt", FromOutput(TransformCallScript, "name", "business")},
	},
}

// RegistrySchema unifies CNPJ registry exports (Speedio, Assertiva) into the
// lead layout consumed by the CRM conversion. It carries a second header row.
var RegistrySchema = buildRegistrySchema()

func buildRegistrySchema() Schema {
	fields := []Field{
		{"CNPJ", Derived(TransformTrim, "CNPJ")},
		{SourceLeadName, Column("Razao")},
		{"Nome Fantasia", Column("Fantasia")},
		{"Observação", Empty()},
		{"Origem", Empty()},
		{"Mercado", Derived(TransformClean, "CNAEDescricao")},
		{"Site", Empty()},
		{SourceSocialField, Empty()},
		{"E-mails Válidos de Decisores", Joined(`^Email\d+`, TransformClean, ", ")},
		{"Estado", Column("UF")},
		{"Cidade", Column("Cidade")},
		{"Logradouro", Column("Logradouro")},
		{"Número", Column("Numero")},
		{"Bairro", Column("Bairro")},
		{"Complemento", Column("Complemento")},
		{"CEP", Column("CEP")},
		{"Telefones", Joined(`^Telefone\d+`, TransformDigits, ", ")},
		{"Faixa de Faturamento da Unidade CNPJ", Empty()},
		{"Faixa de Funcionários da Empresa", Derived(TransformEmployeeBucket, "QtdeFuncionarios")},
		{"Data de Abertura", Derived(TransformDate, "DataAbertura")},
		{"Idade da Empresa", Derived(TransformCompanyAge, "DataAbertura")},
		{"Linkedln", Empty()},
	}
	for i := 1; i <= MaxPartners; i++ {
		p := fmt.Sprintf("SOCIO%d", i)
		fields = append(fields,
			Field{p + "Nome", Column(p + "Nome")},
			Field{p + "Email1", Column(p + "Email1")},
			Field{p + "Email2", Column(p + "Email2")},
			Field{p + "Celular1", Derived(TransformDigits, p+"Celular1")},
			Field{p + "Celular2", Derived(TransformDigits, p+"Celular2")},
			Field{p + "Linkedin", Empty()},
			Field{spacer(i), Empty()},
		)
	}
	return Schema{
		Name:   "Speedio_Assertiva_Unificado",
		Fields: fields,
		Labels: map[string]string{
			SourceLeadName:                 "Razão Social",
			"Nome Fantasia":                "Nome Fantasia",
			"Telefones":                    "Telefones Válidos",
			"E-mails Válidos de Decisores": "Todos E-mails",
		},
	}
}

// spacer is the blank separator column after partner block i, named by i spaces.
func spacer(i int) string {
	return strings.Repeat(" ", i)
}

// SalesforceContactSlots is the number of contact blocks in the Salesforce lead layout.
const SalesforceContactSlots = 4

// SalesforceSchema is the Salesforce lead import layout.
var SalesforceSchema = buildSalesforceSchema()

func buildSalesforceSchema() Schema {
	fields := []Field{
		{"Company", Column(SourceLeadName)},
		{"LastName", Column("SOCIO1Nome")},
		{"MobilePhone", Column("SOCIO1Celular1")},
		{"Email", Column("E-mails Válidos de Decisores")},
		{"Website", Column("Site")},
		{"Documento__c", Column("CNPJ")},
		{"Faturamento_Mensal_N_mero_Exato__c", Empty()},
		{"Canal_Origem__c", Empty()},
		{"Segmento__c", Empty()},
		{"Facebook__c", Derived(TransformFacebookField, SourceSocialField)},
		{"Instagram__c", Derived(TransformInstagramField, SourceSocialField)},
		{"Biblioteca_de_An_ncios__c", Empty()},
		{"LinkedIn__c", Column("SOCIO1Linkedin")},
		{"Observa_es_fixadas__c", Column("Observação")},
		{"Quantidade_de_an_ncios__c", Empty()},
		{"Email_do_Investidor_que_Indicou__c", Empty()},
	}
	for i := 1; i <= SalesforceContactSlots; i++ {
		p := fmt.Sprintf("Contato_%d_", i)
		name, phone, phone2 := Empty(), Empty(), Empty()
		if i <= MaxPartners {
			s := fmt.Sprintf("SOCIO%d", i)
			name = Column(s + "Nome")
			phone = Column(s + "Celular1").WithFill()
			phone2 = Column(s + "Celular2").WithFill()
		}
		fields = append(fields,
			Field{p + "Nome__c", name},
			Field{p + "Cargo__c", Empty()},
			Field{p + "Telefone__c", phone},
			Field{p + "Telefone_2__c", phone2},
			Field{p + "Telefone_3__c", Empty()},
		)
	}
	return Schema{Name: "Salesforce", Fields: fields}
}

// FillColumns lists the source columns whose cell colors a schema copies.
func FillColumns(s Schema) []string {
	var cols []string
	for _, f := range s.Fields {
		if f.Source.CopyFill && len(f.Source.Columns) > 0 {
			cols = append(cols, f.Source.Columns[0])
		}
	}
	return cols
}
