package ledger

import "revision-validator/core/reconcile"

// Column names of the ledger header. Existing files are matched by these names,
// not by position.
const (
	ColID                  = "OS"
	ColOrder               = "OC"
	ColItem                = "Item"
	ColCodem               = "CODEM"
	ColRoutingRevDate      = "DT. REV. ROT."
	ColPartNumber          = "PN"
	ColPartRevision        = "REV. PN"
	ColLID                 = "LID"
	ColPlant               = "PLANTA"
	ColTraceability        = "IND. RASTR."
	ColSerials             = "NÚMERO DE SERIAÇÃO"
	ColExtractedPN         = "PN extraído"
	ColFSERevision         = "REV. FSE"
	ColEngineeringRevision = "REV. Engenharia"
	ColDatabaseRevision    = "Revisão do Banco"
)

// PartNumberNotFound is written to ColExtractedPN when extraction could not
// derive a part number. It reads back as an empty part number.
const PartNumberNotFound = "Não encontrado"

// StatusColumn returns the verdict column of a comparison pair.
func StatusColumn(p reconcile.Pair) string {
	return "Status (" + p.String() + ")"
}

// DetailColumn returns the detail column of a comparison pair.
func DetailColumn(p reconcile.Pair) string {
	return "Detalhes (" + p.String() + ")"
}

type field struct {
	name string
	get  func(*reconcile.Row) string
	set  func(*reconcile.Row, string)
}

// extractionFields are written once, by Append.
var extractionFields = []field{
	{ColID, func(r *reconcile.Row) string { return r.ID }, func(r *reconcile.Row, v string) { r.ID = v }},
	{ColOrder, func(r *reconcile.Row) string { return r.WorkOrder.Order }, func(r *reconcile.Row, v string) { r.WorkOrder.Order = v }},
	{ColItem, func(r *reconcile.Row) string { return r.WorkOrder.Item }, func(r *reconcile.Row, v string) { r.WorkOrder.Item = v }},
	{ColCodem, func(r *reconcile.Row) string { return r.WorkOrder.Codem }, func(r *reconcile.Row, v string) { r.WorkOrder.Codem = v }},
	{ColRoutingRevDate, func(r *reconcile.Row) string { return r.WorkOrder.RoutingRevDate }, func(r *reconcile.Row, v string) { r.WorkOrder.RoutingRevDate = v }},
	{ColPartNumber, func(r *reconcile.Row) string { return r.WorkOrder.PartNumber }, func(r *reconcile.Row, v string) { r.WorkOrder.PartNumber = v }},
	{ColPartRevision, func(r *reconcile.Row) string { return r.WorkOrder.PartRevision }, func(r *reconcile.Row, v string) { r.WorkOrder.PartRevision = v }},
	{ColLID, func(r *reconcile.Row) string { return r.WorkOrder.LID }, func(r *reconcile.Row, v string) { r.WorkOrder.LID = v }},
	{ColPlant, func(r *reconcile.Row) string { return r.WorkOrder.Plant }, func(r *reconcile.Row, v string) { r.WorkOrder.Plant = v }},
	{ColTraceability, func(r *reconcile.Row) string { return r.WorkOrder.Traceability }, func(r *reconcile.Row, v string) { r.WorkOrder.Traceability = v }},
	{ColSerials, func(r *reconcile.Row) string { return r.WorkOrder.Serials }, func(r *reconcile.Row, v string) { r.WorkOrder.Serials = v }},
	{ColExtractedPN, getPartNumber, setPartNumber},
	{ColFSERevision, func(r *reconcile.Row) string { return r.FSERevision }, func(r *reconcile.Row, v string) { r.FSERevision = v }},
}

// revisionFields are written by SaveComparison.
var revisionFields = []field{
	{ColEngineeringRevision, func(r *reconcile.Row) string { return r.EngineeringRevision }, func(r *reconcile.Row, v string) { r.EngineeringRevision = v }},
	{ColDatabaseRevision, func(r *reconcile.Row) string { return r.DatabaseRevision }, func(r *reconcile.Row, v string) { r.DatabaseRevision = v }},
}

// verdictFields hold the three comparisons; ClearVerdicts empties exactly these.
var verdictFields = buildVerdictFields()

// partFields hold the parts database record.
var partFields = buildPartFields()

// Header is the column list of a newly created ledger.
var Header = buildHeader()

func buildVerdictFields() []field {
	fields := make([]field, 0, 2*len(reconcile.Pairs))
	for _, pair := range reconcile.Pairs {
		p := pair
		fields = append(fields,
			field{
				name: StatusColumn(p),
				get:  func(r *reconcile.Row) string { return string(r.Results[p].Verdict) },
				set:  func(r *reconcile.Row, v string) { r.Results[p].Verdict = reconcile.ParseVerdict(v) },
			},
			field{
				name: DetailColumn(p),
				get:  func(r *reconcile.Row) string { return r.Results[p].Detail },
				set:  func(r *reconcile.Row, v string) { r.Results[p].Detail = v },
			},
		)
	}
	return fields
}

func buildPartFields() []field {
	fields := make([]field, 0, len(reconcile.PartColumns))
	for _, col := range reconcile.PartColumns {
		c := col
		fields = append(fields, field{
			name: c.Name,
			get:  func(r *reconcile.Row) string { return *c.Field(&r.Part) },
			set:  func(r *reconcile.Row, v string) { *c.Field(&r.Part) = v },
		})
	}
	return fields
}

func buildHeader() []string {
	var header []string
	for _, group := range allFields() {
		for _, f := range group {
			header = append(header, f.name)
		}
	}
	return header
}

func allFields() [][]field {
	return [][]field{extractionFields, revisionFields, verdictFields, partFields}
}

func getPartNumber(r *reconcile.Row) string {
	if r.PartNumber == "" {
		return PartNumberNotFound
	}
	return r.PartNumber
}

func setPartNumber(r *reconcile.Row, v string) {
	if v == PartNumberNotFound {
		v = ""
	}
	r.PartNumber = v
}

// requiredColumns must exist in any ledger the engine is allowed to write to.
func requiredColumns() []string {
	cols := []string{ColID}
	for _, p := range reconcile.Pairs {
		cols = append(cols, StatusColumn(p))
	}
	return cols
}
