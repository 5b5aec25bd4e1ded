package action

// Option set names
const (
	SetOperationTypes     = "operationTypes"
	SetEAEUCountries      = "eaeuCountries"
	SetRecipientCountries = "recipientCountries"
	SetDecisionCodes      = "decisionCodes"
	SetAllCountries       = "allCountries"
)

// circulationFields is shared by the enter and exit circulation notices
var circulationFields = []string{"reason", "basisDocumentName", "basisDocumentNumber", "basisDocumentDate"}

// DefaultDefinitions returns the built-in actions in picker order
func DefaultDefinitions() []Definition {
	return []Definition{
		{ID: AcceptanceAct, LabelKey: "acceptanceAct", RequiredFields: []string{"buyer", "operationType"}},
		{ID: ImportNoticeEAEU, LabelKey: "importNoticeEAEU", RequiredFields: []string{"senderIIN", "senderName", "countryOfOrigin"}},
		{ID: ImportNoticeThird, LabelKey: "importNoticeThird", RequiredFields: []string{
			"exportCountry", "registrationNumber", "registrationDate", "decisionCode",
			"documentType", "documentNumber", "documentDate",
		}},
		{ID: EnterCirculationNotice, LabelKey: "enterCirculationNotice", RequiredFields: circulationFields},
		{ID: ExitCirculationNotice, LabelKey: "exitCirculationNotice", RequiredFields: circulationFields},
		{ID: ExportNoticeEAEU, LabelKey: "exportNoticeEAEU", RequiredFields: []string{
			"recipientCountry", "recipientIIN", "primaryDocumentNumber", "recipientName",
			"primaryDocumentDate", "actualShipmentDate",
		}},
		{ID: AcceptanceNoticeEAEU, LabelKey: "acceptanceNoticeEAEU", RequiredFields: []string{"shipmentDocumentId", "acceptanceDate"}},
		{ID: Other, LabelKey: "other"},
	}
}

// DefaultFields returns the built-in field bindings
func DefaultFields() []FieldSpec {
	text := func(name string) FieldSpec {
		return FieldSpec{Name: name, LabelKey: name, Kind: KindShortText}
	}
	date := func(name string) FieldSpec {
		return FieldSpec{Name: name, LabelKey: name, Kind: KindDate, PlaceholderKey: "selectDate"}
	}
	choice := func(name, set, placeholder string) FieldSpec {
		return FieldSpec{Name: name, LabelKey: name, Kind: KindSingleChoice, OptionSet: set, PlaceholderKey: placeholder}
	}

	return []FieldSpec{
		text("buyer"),
		choice("operationType", SetOperationTypes, "selectOperationType"),

		text("senderIIN"),
		text("senderName"),
		choice("countryOfOrigin", SetEAEUCountries, "selectCountry"),

		choice("exportCountry", SetAllCountries, "startTypingCountry"),
		text("registrationNumber"),
		date("registrationDate"),
		choice("decisionCode", SetDecisionCodes, "selectDecisionCode"),
		text("documentType"),
		text("documentNumber"),
		date("documentDate"),

		text("reason"),
		text("basisDocumentName"),
		text("basisDocumentNumber"),
		date("basisDocumentDate"),

		choice("recipientCountry", SetRecipientCountries, "selectCountry"),
		text("recipientIIN"),
		text("primaryDocumentNumber"),
		text("recipientName"),
		date("primaryDocumentDate"),
		date("actualShipmentDate"),

		text("shipmentDocumentId"),
		date("acceptanceDate"),
	}
}

// DefaultOptionSets returns the built-in option lists
func DefaultOptionSets() []OptionSet {
	keyed := func(keys ...string) []Option {
		out := make([]Option, len(keys))
		for i, k := range keys {
			out[i] = Option{Value: k, LabelKey: k}
		}
		return out
	}

	countries := make([]Option, len(allCountries))
	for i, name := range allCountries {
		countries[i] = Option{Value: name}
	}

	return []OptionSet{
		{Name: SetOperationTypes, Options: []Option{
			{Value: "realization", LabelKey: "realization"},
			{Value: "commission", LabelKey: "commissionTrade"},
		}},
		{Name: SetEAEUCountries, Options: keyed("armenia", "belarus", "kyrgyzstan", "russia")},
		{Name: SetRecipientCountries, Options: keyed("belarus", "russia")},
		{Name: SetDecisionCodes, Options: []Option{
			{Value: "1", LabelKey: "releaseAllowed"},
			{Value: "2", LabelKey: "releaseWithGuarantee"},
			{Value: "3", LabelKey: "releaseArticle121"},
			{Value: "4", LabelKey: "releaseArticle122"},
			{Value: "5", LabelKey: "releaseArticle123"},
			{Value: "6", LabelKey: "conditionalRelease"},
		}},
		{Name: SetAllCountries, Searchable: true, Options: countries},
	}
}

// DefaultCatalog builds the catalog from the built-in tables
func DefaultCatalog() *Catalog {
	c, err := NewCatalog(DefaultDefinitions(), DefaultFields(), DefaultOptionSets())
	if err != nil {
		panic("action: built-in catalog is inconsistent: " + err.Error())
	}
	return c
}

// allCountries are the third countries an import can originate from
var allCountries = []string{
	"Австралия", "Австрия", "Азербайджан", "Албания", "Алжир", "Ангола", "Аргентина",
	"Бангладеш", "Бельгия", "Болгария", "Бразилия", "Великобритания", "Венгрия",
	"Вьетнам", "Германия", "Греция", "Грузия", "Дания", "Египет", "Израиль", "Индия",
	"Индонезия", "Ирак", "Иран", "Ирландия", "Испания", "Италия", "Канада", "Китай",
	"Корея Южная", "Латвия", "Литва", "Малайзия", "Мексика", "Монголия", "Нидерланды",
	"Норвегия", "ОАЭ", "Пакистан", "Польша", "Португалия", "Румыния", "Саудовская Аравия",
	"Сербия", "Сингапур", "Словакия", "Словения", "США", "Таджикистан", "Таиланд",
	"Тайвань", "Туркменистан", "Турция", "Узбекистан", "Украина", "Финляндия", "Франция",
	"Хорватия", "Чехия", "Швейцария", "Швеция", "Эстония", "Япония",
}
