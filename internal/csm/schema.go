// Package csm decodes MailDat CSM (Container Summary) fixed-width records.
//
// Field positions follow the MailDat CSM record layout. Positions are 1-based
// and inclusive; gaps between fields are reserved bytes.
package csm

// RecordLength is the byte length of a complete CSM record.
const RecordLength = 790

// Field names referenced by the decoder and by downstream consumers.
const (
	FieldJobID              = "Job ID"
	FieldDisplayContainerID = "Display Container ID"
	FieldContainerDestZip   = "Container Destination Zip"
	FieldLocaleKey          = "Entry Point - Actual/Delivery Locale Key"
	FieldInductionStartDate = "Scheduled Induction Start Date"
	FieldNumberOfPieces     = "Number of Pieces"
	FieldTotalWeight        = "Total Weight"
	FieldIMContainerFinal   = "Label: IM Container - Final"
	FieldDestinationLine1   = "Label: Destination Line 1"
	FieldAddress            = "Address"
)

// FieldSpec locates one named field inside a record.
type FieldSpec struct {
	Name  string
	Start int
	End   int
}

// Len returns the width of the field in bytes.
func (f FieldSpec) Len() int { return f.End - f.Start + 1 }

// DisplayColumns is the projected column set shown to operators and exported.
var DisplayColumns = []string{
	FieldJobID,
	FieldDisplayContainerID,
	FieldContainerDestZip,
	FieldDestinationLine1,
	FieldInductionStartDate,
	FieldNumberOfPieces,
	FieldTotalWeight,
	FieldIMContainerFinal,
	FieldAddress,
}

var fields = []FieldSpec{
	{Name: FieldJobID, Start: 1, End: 8},
	{Name: "Segment ID", Start: 9, End: 12},
	{Name: "Container Type", Start: 13, End: 14},
	{Name: "Container ID", Start: 15, End: 20},
	{Name: FieldDisplayContainerID, Start: 21, End: 26},
	{Name: FieldContainerDestZip, Start: 36, End: 41},
	{Name: "Container Level", Start: 42, End: 43},
	{Name: "Entry Point - Postal Code", Start: 44, End: 49},
	{Name: "Entry Point - Facility Type", Start: 50, End: 51},
	{Name: FieldLocaleKey, Start: 52, End: 60},
	{Name: "Entry Point - Actual Postal Code", Start: 61, End: 69},
	{Name: "Parent Container Reference ID", Start: 70, End: 75},
	{Name: "Truck or Dispatch Number", Start: 76, End: 95},
	{Name: "Stop Designator", Start: 96, End: 97},
	{Name: "Reservation Number", Start: 98, End: 112},
	{Name: "Actual Container Ship Date", Start: 113, End: 120},
	{Name: "Actual Container Ship Time", Start: 121, End: 125},
	{Name: "Scheduled Pick Up Date", Start: 126, End: 133},
	{Name: "Scheduled Pick Up Time", Start: 134, End: 138},
	{Name: "Scheduled In-Home Date", Start: 139, End: 146},
	{Name: "Additional In-Home Range", Start: 147, End: 147},
	{Name: FieldInductionStartDate, Start: 148, End: 155},
	{Name: "Scheduled Induction Start Time", Start: 156, End: 160},
	{Name: "Scheduled Induction End Date", Start: 161, End: 168},
	{Name: "Scheduled Induction End Time", Start: 169, End: 173},
	{Name: "Actual Induction Date", Start: 174, End: 181},
	{Name: "Actual Induction Time", Start: 182, End: 186},
	{Name: "Postage Statement Mailing Date", Start: 187, End: 194},
	{Name: "Postage Statement Mailing Time", Start: 195, End: 199},
	{Name: "Number of Copies", Start: 200, End: 207},
	{Name: FieldNumberOfPieces, Start: 208, End: 215},
	{Name: FieldTotalWeight, Start: 216, End: 227},
	{Name: "Container Status", Start: 240, End: 240},
	{Name: "Included in Other Documentation", Start: 241, End: 241},
	{Name: "Tray Preparation Type", Start: 242, End: 242},
	{Name: "Trans-Ship Bill of Lading Number", Start: 243, End: 252},
	{Name: "Sibling Container Indicator", Start: 253, End: 253},
	{Name: "Sibling Container Reference ID", Start: 254, End: 259},
	{Name: "Postage Grouping ID", Start: 260, End: 267},
	{Name: "Container Gross Weight", Start: 268, End: 279},
	{Name: "Container Height", Start: 280, End: 282},
	{Name: "EMD ASN Barcode", Start: 283, End: 302},
	{Name: "Transportation Carrier ID", Start: 303, End: 317},
	{Name: "FAST Content ID", Start: 318, End: 326},
	{Name: "FAST Scheduler ID", Start: 327, End: 338},
	{Name: "USPS Pick Up", Start: 339, End: 339},
	{Name: "CSA Separation ID", Start: 340, End: 342},
	{Name: "Scheduled Ship Date", Start: 343, End: 350},
	{Name: "Scheduled Ship Time", Start: 351, End: 355},
	{Name: "DMM Section Defining Container Preparation", Start: 356, End: 367},
	{Name: FieldIMContainerFinal, Start: 368, End: 391},
	{Name: "Label: IM Container - Original", Start: 392, End: 415},
	{Name: FieldDestinationLine1, Start: 416, End: 445},
	{Name: "Label: Destination Line 2", Start: 446, End: 475},
	{Name: "Label: Contents - Line 1", Start: 476, End: 505},
	{Name: "Label: Contents - Line 2", Start: 506, End: 525},
	{Name: "Label: Entry Point Line", Start: 526, End: 555},
	{Name: "Label: User Information Line 1", Start: 556, End: 595},
	{Name: "Label: User Information Line 2", Start: 596, End: 635},
	{Name: "Label: Container Label CIN Code", Start: 636, End: 639},
	{Name: "eInduction Indicator", Start: 660, End: 660},
	{Name: "CSA Agreement ID", Start: 661, End: 670},
	{Name: "Presort Labeling List Effective Date", Start: 671, End: 678},
	{Name: "Last Used Labeling List Effective Date", Start: 679, End: 686},
	{Name: "Presort City-State Publication Date", Start: 687, End: 694},
	{Name: "Last Used City-State Publication Date", Start: 695, End: 702},
	{Name: "Presort Zone Chart Matrix Publication Date", Start: 703, End: 710},
	{Name: "Last Used Zone Chart Matrix Publication Date", Start: 711, End: 718},
	{Name: "Last Used Mail Direction Publication Date", Start: 719, End: 726},
	{Name: "Supplemental Physical Container ID", Start: 727, End: 732},
	{Name: "Accept Misshipped", Start: 733, End: 733},
	{Name: "Referenceable Mail Start Date", Start: 734, End: 741},
	{Name: "Referenceable Mail End Date", Start: 742, End: 749},
	{Name: "CSM Record Status", Start: 750, End: 750},
	{Name: "Reserve", Start: 751, End: 789},
	{Name: "Closing Character", Start: 790, End: 790},
}

var fieldIndex = func() map[string]FieldSpec {
	m := make(map[string]FieldSpec, len(fields))
	for _, f := range fields {
		m[f.Name] = f
	}
	return m
}()

// Fields returns the ordered CSM field layout. The returned slice is a copy.
func Fields() []FieldSpec {
	out := make([]FieldSpec, len(fields))
	copy(out, fields)
	return out
}

// FieldNames returns the field names in layout order.
func FieldNames() []string {
	names := make([]string, len(fields))
	for i, f := range fields {
		names[i] = f.Name
	}
	return names
}

// Lookup returns the byte range of a named field.
func Lookup(name string) (FieldSpec, bool) {
	f, ok := fieldIndex[name]
	return f, ok
}
