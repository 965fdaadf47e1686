// =============================================================================
// GST Template Auto-Fill - Alias Tables
// =============================================================================
//
// An alias table lists, for every canonical field, the raw source headers
// that may carry it. Order encodes priority: the first alias present in a
// sheet wins. Books ledgers and GST portal exports name the same field very
// differently, so each source kind has its own table.
//
// EXTENDING:
//   Extra aliases can be appended from a YAML file (see LoadAliasFile).
//   Built-in aliases always keep priority over file-provided ones.
//
// =============================================================================

package schema

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// AliasTable maps each canonical field to its ordered alias list.
// Tables are treated as immutable once built; use Extend to derive a new one.
type AliasTable [FieldCount][]string

// =============================================================================
// BUILT-IN TABLES
// =============================================================================

var booksAliases = AliasTable{
	FieldRecipientGSTIN: {"Original Customer Billing GSTIN", "Customer GSTIN", "GSTIN", "My GSTIN"},
	FieldReceiverName:   {"Customer Name", "Receiver Name", "Billed To Name", "Customer Billing Name"},
	FieldInvoiceNo: {
		"Original Invoice Number (In case of amendment)",
		"Invoice Number",
		"Bill No",
		"Voucher Number of Linked Advance Receipt",
		"Document Number",
	},
	FieldInvoiceDate: {
		"Original Invoice Date (In case of amendment)",
		"Invoice Date",
		"Bill Date",
		"Date of Linked Advance Receipt",
		"Document Date",
	},
	FieldInvoiceValue:  {"Invoice Value", "Total Amount", "Invoice Amt"},
	FieldPlaceOfSupply: {"Place of Supply", "State", "State Place of Supply"},
	FieldInvoiceType:   {"Type of Export"},
	FieldTaxableValue:  {"Item Taxable Value", "Taxable Amount"},
	FieldIntegratedTax: {"IGST Amount", "Integrated Tax", "IGST Rate"},
	FieldCentralTax:    {"CGST Amount", "Central Tax", "CGST Rate"},
	FieldStateUTTax:    {"SGST Amount", "State/UT Tax", "SGST Rate"},
	FieldIRN:           {"IRN Number", "IRN"},
}

var gstAliases = AliasTable{
	FieldRecipientGSTIN: {"GSTIN/UIN of Recipient"},
	FieldReceiverName:   {"Receiver Name"},
	FieldInvoiceNo:      {"Invoice number", "Invoice Number", "Note Number"},
	FieldInvoiceDate:    {"Invoice date", "Invoice Date", "Note Date"},
	FieldInvoiceValue:   {"Invoice value", "Invoice Value", "Note value"},
	FieldPlaceOfSupply:  {"Place of Supply"},
	FieldInvoiceType:    {"Invoice Type", "Note Supply Type"},
	FieldTaxableValue:   {"Taxable Value"},
	FieldIntegratedTax:  {"Integrated Tax"},
	FieldCentralTax:     {"Central Tax"},
	FieldStateUTTax:     {"State/UT Tax"},
	FieldIRN:            {"IRN"},
}

// BooksAliases returns a copy of the built-in Books alias table.
func BooksAliases() AliasTable { return booksAliases.clone() }

// GSTAliases returns a copy of the built-in GST alias table.
func GSTAliases() AliasTable { return gstAliases.clone() }

func (t AliasTable) clone() AliasTable {
	var out AliasTable
	for i, aliases := range t {
		out[i] = append([]string(nil), aliases...)
	}
	return out
}

// Extend returns a new table with extra aliases appended after the existing
// ones. Aliases that normalize to a key already present for the field are
// skipped.
func (t AliasTable) Extend(extra map[Field][]string) AliasTable {
	out := t.clone()
	for field, aliases := range extra {
		if field < 0 || int(field) >= FieldCount {
			continue
		}
		seen := make(map[string]bool, len(out[field]))
		for _, a := range out[field] {
			seen[NormalizeHeader(a)] = true
		}
		for _, a := range aliases {
			key := NormalizeHeader(a)
			if key == "" || seen[key] {
				continue
			}
			seen[key] = true
			out[field] = append(out[field], a)
		}
	}
	return out
}

// =============================================================================
// ALIAS FILE
// =============================================================================

// AliasFile is the YAML layout of an alias extension file:
//
//	books:
//	  INVOICE NO: ["Voucher No", "Inv #"]
//	gst:
//	  RECEIVER NAME: ["Trade/Legal name"]
//
// Field names are matched case-insensitively against the canonical columns.
type AliasFile struct {
	Books map[string][]string `yaml:"books" toml:"books"`
	GST   map[string][]string `yaml:"gst" toml:"gst"`
}

// AliasSet holds the effective alias table for each source kind.
type AliasSet struct {
	Books AliasTable
	GST   AliasTable
}

// DefaultAliasSet returns the built-in tables.
func DefaultAliasSet() AliasSet {
	return AliasSet{Books: BooksAliases(), GST: GSTAliases()}
}

// For returns the table for a source kind.
func (s AliasSet) For(kind SourceKind) (AliasTable, error) {
	switch kind {
	case KindBooks:
		return s.Books, nil
	case KindGST:
		return s.GST, nil
	default:
		return AliasTable{}, fmt.Errorf("no alias table for source kind %q", kind)
	}
}

// LoadAliasFile reads an alias extension file and returns the built-in
// tables extended with its entries. An empty path returns the built-ins.
// Files ending in .toml are read as TOML, everything else as YAML.
func LoadAliasFile(path string) (AliasSet, error) {
	set := DefaultAliasSet()
	if path == "" {
		return set, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return set, fmt.Errorf("failed to read alias file: %w", err)
	}

	var file AliasFile
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		err = toml.Unmarshal(data, &file)
	} else {
		err = yaml.Unmarshal(data, &file)
	}
	if err != nil {
		return set, fmt.Errorf("failed to parse alias file: %w", err)
	}

	books, err := resolveFieldNames(file.Books)
	if err != nil {
		return set, fmt.Errorf("books aliases: %w", err)
	}
	gst, err := resolveFieldNames(file.GST)
	if err != nil {
		return set, fmt.Errorf("gst aliases: %w", err)
	}

	set.Books = set.Books.Extend(books)
	set.GST = set.GST.Extend(gst)
	return set, nil
}

func resolveFieldNames(raw map[string][]string) (map[Field][]string, error) {
	out := make(map[Field][]string, len(raw))
	for name, aliases := range raw {
		field, ok := FieldByName(name)
		if !ok {
			return nil, fmt.Errorf("unknown template column %q", name)
		}
		out[field] = append(out[field], aliases...)
	}
	return out, nil
}
