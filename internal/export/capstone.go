package export

import (
	"regexp"
	"strings"

	"github.com/jimelj/mailApp/internal/csm"
	"github.com/jimelj/mailApp/internal/table"
)

// DefaultPickupTime is appended to the induction date to form the pickup time.
const DefaultPickupTime = "3:00 AM"

// Origin is the shipper block repeated on every Capstone row.
type Origin struct {
	CustomerNumber string `json:"customer_number" validate:"required"`
	Name           string `json:"name" validate:"required"`
	Address        string `json:"address" validate:"required"`
	Suite          string `json:"suite,omitempty"`
	City           string `json:"city" validate:"required"`
	State          string `json:"state" validate:"required,len=2"`
	ZIP            string `json:"zip" validate:"required,numeric,len=5"`
	Phone          string `json:"phone,omitempty"`
	Remarks        string `json:"remarks,omitempty"`
	Email          string `json:"email,omitempty" validate:"omitempty,email"`
	PickupTime     string `json:"pickup_time,omitempty"`
}

// CapstoneColumns is the Capstone upload layout. Required columns end in "*".
var CapstoneColumns = []string{
	"Customer Number*",
	"Billing Group",
	"Origin Name*",
	"Origin Address*",
	"Origin Suite",
	"Origin City*",
	"Origin State*",
	"Origin Zip*",
	"Origin Plus 4",
	"Origin Phone",
	"Origin Remarks",
	"Destination Name*",
	"Destination Address*",
	"Destination Suite",
	"Destination City*",
	"Destination State*",
	"Destination Zip*",
	"Destination Plus 4",
	"Destination Phone",
	"Destination Remarks",
	"Email Address",
	"Send Confirmation Email",
	"Send POP Email",
	"Send POD Email",
	"Reference 1",
	"Reference 2",
	"Order Type*",
	"Pieces",
	"Weight",
	"Pickup Date*",
	"Driver ID",
	"Order Comments",
	"Parcel Barcode",
	"Parcel Pieces",
	"Parcel Length",
	"Parcel Width",
	"Parcel Height",
	"Parcel Weight",
}

var addressPattern = regexp.MustCompile(`^(.*?),\s*(.*?),\s*([A-Z]{2}),\s*(\d{5})$`)

// SplitAddress breaks a formatted facility address into street, city, state
// and ZIP. It reports false when the address does not have that shape.
func SplitAddress(addr string) (street, city, state, zip string, ok bool) {
	m := addressPattern.FindStringSubmatch(addr)
	if m == nil {
		return "", "", "", "", false
	}
	return m[1], m[2], m[3], m[4], true
}

// Capstone builds the courier upload table from a display table. Rows whose
// address cannot be split leave the destination columns empty.
func Capstone(display table.Table, origin Origin) table.Table {
	pickupTime := origin.PickupTime
	if pickupTime == "" {
		pickupTime = DefaultPickupTime
	}

	rows := make([]table.Row, 0, display.Len())
	for i := 0; i < display.Len(); i++ {
		row := table.Row{}
		set := func(column, value string) {
			if value != "" {
				row[column] = value
			}
		}

		set("Customer Number*", origin.CustomerNumber)
		set("Origin Name*", origin.Name)
		set("Origin Address*", origin.Address)
		set("Origin Suite", origin.Suite)
		set("Origin City*", origin.City)
		set("Origin State*", origin.State)
		set("Origin Zip*", origin.ZIP)
		set("Origin Phone", origin.Phone)
		set("Origin Remarks", origin.Remarks)
		set("Email Address", origin.Email)

		set("Destination Name*", display.Text(i, csm.FieldDestinationLine1))
		if street, city, state, zip, ok := SplitAddress(display.Text(i, csm.FieldAddress)); ok {
			set("Destination Address*", street)
			set("Destination City*", city)
			set("Destination State*", state)
			set("Destination Zip*", zip)
		}

		set("Reference 1", display.Text(i, csm.FieldJobID))
		set("Reference 2", display.Text(i, csm.FieldDisplayContainerID))
		if pieces, ok := display.Value(i, csm.FieldNumberOfPieces); ok {
			row["Pieces"] = pieces
		}
		set("Weight", strings.Replace(display.Text(i, csm.FieldTotalWeight), " LBS", "", 1))
		if date := display.Text(i, csm.FieldInductionStartDate); date != "" {
			row["Pickup Date*"] = date + " " + pickupTime
		}
		set("Parcel Barcode", display.Text(i, csm.FieldIMContainerFinal))

		rows = append(rows, row)
	}
	return table.New(CapstoneColumns, rows)
}
