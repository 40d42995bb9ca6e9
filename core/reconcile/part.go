package reconcile

// PartRecord is one row of the parts database lookup table. Column names are
// load-bearing: they are both the SQL select list and ledger headers.
type PartRecord struct {
	OrderCode       string `json:"COD_OS_COMPLETO"`
	PartCode        string `json:"COD_PECAS"`
	CustomerOrder   string `json:"N_OS_CLIENTE"`
	Drawing         string `json:"N_DESENHO"`
	Quantity        string `json:"QTDE_PECAS"`
	EntryDate       string `json:"DT_ENTRADA"`
	Rev2D           string `json:"U_ZLT_REVISAO_2D"`
	Rev3DDesign     string `json:"U_ZLT_REVISAO_DES_3D"`
	RevDI           string `json:"U_ZLT_REVISAO_DI"`
	RevDIF2         string `json:"U_ZLT_REVISAO_DI_F2"`
	RevDIF3         string `json:"U_ZLT_REVISAO_DI_F3"`
	RevFI           string `json:"U_ZLT_REVISAO_FI"`
	RevLP           string `json:"U_ZLT_REVISAO_LP"`
	RevLPF2         string `json:"U_ZLT_REVISAO_LP_F2"`
	RevLPF3         string `json:"U_ZLT_REVISAO_LP_F3"`
	RevPN           string `json:"U_ZLT_REVISAO_PN"`
	RevRouting      string `json:"U_ZLT_REVISAO_ROT"`
	Rev3DMF         string `json:"U_REVISAO_3D_MF"`
	ElebClass       string `json:"U_CLASSE_ELEB"`
	ProjectPN       string `json:"U_PN_DE_PROJETO"`
	OM              string `json:"U_OM"`
	AdditionalField string `json:"CAMPO_ADICIONAL9"`
}

// PartColumn binds a database column name to its PartRecord field.
type PartColumn struct {
	Name  string
	Field func(*PartRecord) *string
}

// PartColumns lists the lookup table columns in select/ledger order.
var PartColumns = []PartColumn{
	{"COD_OS_COMPLETO", func(r *PartRecord) *string { return &r.OrderCode }},
	{"COD_PECAS", func(r *PartRecord) *string { return &r.PartCode }},
	{"N_OS_CLIENTE", func(r *PartRecord) *string { return &r.CustomerOrder }},
	{"N_DESENHO", func(r *PartRecord) *string { return &r.Drawing }},
	{"QTDE_PECAS", func(r *PartRecord) *string { return &r.Quantity }},
	{"DT_ENTRADA", func(r *PartRecord) *string { return &r.EntryDate }},
	{"U_ZLT_REVISAO_2D", func(r *PartRecord) *string { return &r.Rev2D }},
	{"U_ZLT_REVISAO_DES_3D", func(r *PartRecord) *string { return &r.Rev3DDesign }},
	{"U_ZLT_REVISAO_DI", func(r *PartRecord) *string { return &r.RevDI }},
	{"U_ZLT_REVISAO_DI_F2", func(r *PartRecord) *string { return &r.RevDIF2 }},
	{"U_ZLT_REVISAO_DI_F3", func(r *PartRecord) *string { return &r.RevDIF3 }},
	{"U_ZLT_REVISAO_FI", func(r *PartRecord) *string { return &r.RevFI }},
	{"U_ZLT_REVISAO_LP", func(r *PartRecord) *string { return &r.RevLP }},
	{"U_ZLT_REVISAO_LP_F2", func(r *PartRecord) *string { return &r.RevLPF2 }},
	{"U_ZLT_REVISAO_LP_F3", func(r *PartRecord) *string { return &r.RevLPF3 }},
	{"U_ZLT_REVISAO_PN", func(r *PartRecord) *string { return &r.RevPN }},
	{"U_ZLT_REVISAO_ROT", func(r *PartRecord) *string { return &r.RevRouting }},
	{"U_REVISAO_3D_MF", func(r *PartRecord) *string { return &r.Rev3DMF }},
	{"U_CLASSE_ELEB", func(r *PartRecord) *string { return &r.ElebClass }},
	{"U_PN_DE_PROJETO", func(r *PartRecord) *string { return &r.ProjectPN }},
	{"U_OM", func(r *PartRecord) *string { return &r.OM }},
	{"CAMPO_ADICIONAL9", func(r *PartRecord) *string { return &r.AdditionalField }},
}

// PartColumnNames returns the column names of PartColumns.
func PartColumnNames() []string {
	names := make([]string, len(PartColumns))
	for i, c := range PartColumns {
		names[i] = c.Name
	}
	return names
}

// Get returns the value of the named column, and false if the column is unknown.
func (r *PartRecord) Get(column string) (string, bool) {
	for _, c := range PartColumns {
		if c.Name == column {
			return *c.Field(r), true
		}
	}
	return "", false
}

// Set assigns the named column. Unknown columns are ignored.
func (r *PartRecord) Set(column, value string) bool {
	for _, c := range PartColumns {
		if c.Name == column {
			*c.Field(r) = value
			return true
		}
	}
	return false
}
