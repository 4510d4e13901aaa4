package masterdata

import (
	"errors"
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
)

var (
	ErrUnknownKeys   = errors.New("unknown_keys")
	ErrInvalidRecord = errors.New("invalid_record")
)

// File is the on-disk master-data layout:
//
//	[[companies]]
//	name = "Kaynes Technology"
//	gstin = "07AAACK9500A1Z5"
//
//	[[templates]]
//	name = "GST 18%"
//	company = "Kaynes Technology"
//	gst_rate = 18.0
//
//	[[items]]
//	item_code = "SKU-001"
//	gst_hsn_code = "8471"
//	taxes = ["GST 18%"]
type File struct {
	Companies []Company  `toml:"companies"`
	Templates []Template `toml:"templates"`
	Items     []Item     `toml:"items"`
}

type Company struct {
	Name  string `toml:"name"`
	GSTIN string `toml:"gstin"`
}

type Template struct {
	Name     string   `toml:"name"`
	Title    string   `toml:"title"`
	Company  string   `toml:"company"`
	GSTRate  *float64 `toml:"gst_rate"`
	Disabled bool     `toml:"disabled"`
}

type Item struct {
	ItemCode   string   `toml:"item_code"`
	ItemName   string   `toml:"item_name"`
	GSTHSNCode string   `toml:"gst_hsn_code"`
	Taxes      []string `toml:"taxes"`
}

// Load reads and validates a master-data file.
func Load(path string) (*File, error) {
	var f File
	meta, err := toml.DecodeFile(path, &f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return finish(&f, meta)
}

// Parse decodes master data from a TOML document.
func Parse(data string) (*File, error) {
	var f File
	meta, err := toml.Decode(data, &f)
	if err != nil {
		return nil, fmt.Errorf("decode master data: %w", err)
	}
	return finish(&f, meta)
}

func finish(f *File, meta toml.MetaData) (*File, error) {
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, key := range undecoded {
			keys = append(keys, key.String())
		}
		return nil, fmt.Errorf("%w: %s", ErrUnknownKeys, strings.Join(keys, ", "))
	}
	if err := f.Validate(); err != nil {
		return nil, err
	}
	return f, nil
}

func (f *File) Validate() error {
	for i := range f.Companies {
		f.Companies[i].Name = strings.TrimSpace(f.Companies[i].Name)
		f.Companies[i].GSTIN = strings.ToUpper(strings.TrimSpace(f.Companies[i].GSTIN))
		if f.Companies[i].Name == "" {
			return fmt.Errorf("%w: companies[%d] has no name", ErrInvalidRecord, i)
		}
	}
	for i := range f.Templates {
		tpl := &f.Templates[i]
		tpl.Name = strings.TrimSpace(tpl.Name)
		tpl.Company = strings.TrimSpace(tpl.Company)
		if tpl.Name == "" || tpl.Company == "" {
			return fmt.Errorf("%w: templates[%d] needs name and company", ErrInvalidRecord, i)
		}
		if tpl.GSTRate != nil && (*tpl.GSTRate < 0 || *tpl.GSTRate > 100) {
			return fmt.Errorf("%w: templates[%d] gst_rate %v out of range", ErrInvalidRecord, i, *tpl.GSTRate)
		}
	}
	for i := range f.Items {
		f.Items[i].ItemCode = strings.TrimSpace(f.Items[i].ItemCode)
		if f.Items[i].ItemCode == "" {
			return fmt.Errorf("%w: items[%d] has no item_code", ErrInvalidRecord, i)
		}
	}
	return nil
}
