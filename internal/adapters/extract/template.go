// Package extract turns supplier pages into product records using per-supplier
// templates: CSS field selectors, JSON-LD product blocks and series tables
package extract

import (
	"io"
	"os"
	"regexp"
	"strconv"

	"supplysync/internal/core/urlnorm"
	perr "supplysync/internal/platform/errors"

	"gopkg.in/yaml.v3"
)

// Field picks one value from a page
type Field struct {
	Selector string `yaml:"selector"`
	// Attr reads an attribute instead of the text
	Attr string `yaml:"attr"`
	// Pattern keeps the first capture group of the value when set
	Pattern string `yaml:"pattern"`

	re *regexp.Regexp
}

// Fields are the single-record selectors
type Fields struct {
	ExternalID     Field `yaml:"external_id"`
	Title          Field `yaml:"title"`
	PartType       Field `yaml:"part_type"`
	Description    Field `yaml:"description"`
	Images         Field `yaml:"images"`
	PriceMsrp      Field `yaml:"price_msrp"`
	PriceWholesale Field `yaml:"price_wholesale"`
	Availability   Field `yaml:"availability"`
}

// SpecRows reads key/value spec tables
type SpecRows struct {
	Rows  string `yaml:"rows"`
	Key   string `yaml:"key"`
	Value string `yaml:"value"`
}

// Series describes the multi-row table on series listing pages
type Series struct {
	Rows        string `yaml:"rows"`
	HeaderClass string `yaml:"header_class"`
	// Columns maps header text (case-insensitive) to a record field.
	// Unmapped columns become specs
	Columns map[string]string `yaml:"columns"`
	// Order names fields by cell position when the table has no header row
	Order []string `yaml:"order"`
}

// Login is the supplier's form login used by the price refresh
type Login struct {
	URL           string            `yaml:"url"`
	UsernameField string            `yaml:"username_field"`
	PasswordField string            `yaml:"password_field"`
	Extra         map[string]string `yaml:"extra"`
}

// Template is one supplier site's crawl and extraction recipe
type Template struct {
	SupplierID     int64    `yaml:"supplier_id"`
	TemplateID     *int64   `yaml:"template_id"`
	Name           string   `yaml:"name"`
	BaseURL        string   `yaml:"base_url"`
	Seeds          []string `yaml:"seeds"`
	DetailPath     string   `yaml:"detail_path"`
	ListPath       string   `yaml:"list_path"`
	SeriesPath     string   `yaml:"series_path"`
	SearchEndpoint string   `yaml:"search_endpoint"`
	Fields         Fields   `yaml:"fields"`
	Specs          SpecRows `yaml:"specs"`
	Series         Series   `yaml:"series"`
	Login          Login    `yaml:"login"`

	detail, list, series, search *regexp.Regexp
}

// compile checks and caches every pattern
func (t *Template) compile() error {
	var err error
	re := func(name, src string) *regexp.Regexp {
		if src == "" || err != nil {
			return nil
		}
		r, e := regexp.Compile(src)
		if e != nil {
			err = perr.Configf("template %s: bad %s pattern: %v", t.Key(), name, e)
		}
		return r
	}
	t.detail = re("detail_path", t.DetailPath)
	t.list = re("list_path", t.ListPath)
	t.series = re("series_path", t.SeriesPath)
	t.search = re("search_endpoint", t.SearchEndpoint)
	for _, f := range []*Field{
		&t.Fields.ExternalID, &t.Fields.Title, &t.Fields.PartType, &t.Fields.Description,
		&t.Fields.Images, &t.Fields.PriceMsrp, &t.Fields.PriceWholesale, &t.Fields.Availability,
	} {
		f.re = re("field", f.Pattern)
	}
	if err != nil {
		return err
	}
	if t.detail == nil {
		return perr.Configf("template %s: detail_path is required", t.Key())
	}
	if _, ok := urlnorm.Normalize(t.BaseURL, ""); !ok {
		return perr.Configf("template %s: base_url %q is not a url", t.Key(), t.BaseURL)
	}
	return nil
}

// Key names the template in logs
func (t *Template) Key() string {
	k := strconv.FormatInt(t.SupplierID, 10)
	if t.TemplateID != nil {
		k += "/" + strconv.FormatInt(*t.TemplateID, 10)
	}
	return k
}

func pathMatch(re *regexp.Regexp, u string) bool {
	return re != nil && re.MatchString(urlnorm.Path(u))
}

// IsDetail reports a product detail url
func (t *Template) IsDetail(u string) bool { return pathMatch(t.detail, u) }

// IsList reports a collection or pagination url
func (t *Template) IsList(u string) bool { return pathMatch(t.list, u) }

// IsSeries reports a series listing url
func (t *Template) IsSeries(u string) bool { return pathMatch(t.series, u) }

// DetailPattern is the compiled detail path pattern
func (t *Template) DetailPattern() *regexp.Regexp { return t.detail }

// SearchPattern is the compiled search endpoint pattern, nil when unset
func (t *Template) SearchPattern() *regexp.Regexp { return t.search }

// Set holds every loaded template
type Set struct {
	Templates []*Template `yaml:"templates"`
}

// Load parses a YAML template document
func Load(r io.Reader) (*Set, error) {
	var s Set
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&s); err != nil {
		return nil, perr.Configf("templates: %v", err)
	}
	for _, t := range s.Templates {
		if err := t.compile(); err != nil {
			return nil, err
		}
	}
	return &s, nil
}

// LoadFile reads templates from path
func LoadFile(path string) (*Set, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, perr.Configf("templates: %v", err)
	}
	defer func() { _ = f.Close() }()
	return Load(f)
}

// For picks the supplier's template. A nil templateID selects the supplier's first template
func (s *Set) For(supplierID int64, templateID *int64) (*Template, error) {
	if s != nil {
		for _, t := range s.Templates {
			if t.SupplierID != supplierID {
				continue
			}
			if templateID == nil || (t.TemplateID != nil && *t.TemplateID == *templateID) {
				return t, nil
			}
		}
	}
	if templateID != nil {
		return nil, perr.Configf("no extraction template for supplier %d template %d", supplierID, *templateID)
	}
	return nil, perr.Configf("no extraction template for supplier %d", supplierID)
}
