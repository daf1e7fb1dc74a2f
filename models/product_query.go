package models

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"gorm.io/gorm"
)

const (
	DefaultPageSize = 10
)

// SortFields maps the accepted `sort` values to product columns.
var SortFields = map[string]string{
	"product_name":    "product_name",
	"package_volume":  "package_volume",
	"created_at":      "created_at",
	"updated_at":      "updated_at",
	"throat_diameter": "throat_diameter",
	"weight":          "weight",
}

// IntRange is an inclusive integer bound; a nil end is open.
type IntRange struct {
	Min *int
	Max *int
}

// TimeRange is an inclusive timestamp bound; a nil end is open.
type TimeRange struct {
	Min *time.Time
	Max *time.Time
}

// ProductQuery is the validated form of the product list query string.
// Zero values mean "no constraint".
type ProductQuery struct {
	TypeID     *int64
	CategoryID *int64

	Name           string
	ThroatStandard string
	Dimensions     string
	Compound       string
	Material       string
	Package        string
	Application    string
	Description    string

	ThroatDiameter      *int
	ThroatDiameterRange IntRange
	Volume              *int
	VolumeRange         IntRange
	Weight              *int
	WeightRange         IntRange

	Color string

	CreatedAt TimeRange
	UpdatedAt TimeRange

	Sort string
	Desc bool

	// Page is the requested 1-based page. Values below 1 are out of range.
	Page     int
	PageSize int
}

// ParseProductQuery validates the raw query string. The first malformed
// parameter is reported as a *QueryParamError. Empty values are treated as absent.
func ParseProductQuery(values url.Values) (ProductQuery, error) {
	q := ProductQuery{Page: 1, PageSize: DefaultPageSize}
	get := func(key string) string { return strings.TrimSpace(values.Get(key)) }

	var err error
	if q.TypeID, err = parseID(get("type"), "type"); err != nil {
		return q, err
	}
	if q.CategoryID, err = parseID(get("category"), "category"); err != nil {
		return q, err
	}

	q.Name = get("name")
	q.ThroatStandard = get("throat_standard")

	ints := []struct {
		param string
		dst   **int
	}{
		{"throat_diameter", &q.ThroatDiameter},
		{"throat_diameter_min", &q.ThroatDiameterRange.Min},
		{"throat_diameter_max", &q.ThroatDiameterRange.Max},
		{"volume", &q.Volume},
		{"volume_min", &q.VolumeRange.Min},
		{"volume_max", &q.VolumeRange.Max},
		{"weight", &q.Weight},
		{"weight_min", &q.WeightRange.Min},
		{"weight_max", &q.WeightRange.Max},
	}
	for _, p := range ints {
		if *p.dst, err = parseInt(get(p.param), p.param); err != nil {
			return q, err
		}
	}

	q.Dimensions = get("dimensions")
	q.Compound = get("compound")
	q.Color = get("color")
	q.Material = get("material")
	q.Package = get("package")
	q.Application = get("application")
	q.Description = get("description")

	times := []struct {
		param string
		dst   **time.Time
	}{
		{"created_at_min", &q.CreatedAt.Min},
		{"created_at_max", &q.CreatedAt.Max},
		{"updated_at_min", &q.UpdatedAt.Min},
		{"updated_at_max", &q.UpdatedAt.Max},
	}
	for _, p := range times {
		if *p.dst, err = parseTimestamp(get(p.param), p.param); err != nil {
			return q, err
		}
	}

	if sort := get("sort"); sort != "" {
		if _, ok := SortFields[sort]; !ok {
			return q, &QueryParamError{
				Param:   "sort",
				Reason:  fmt.Sprintf("%q is not a sortable field", sort),
				Summary: "Invalid sort field",
			}
		}
		q.Sort = sort
		q.Desc = get("order") == "desc"
	}

	if size, err := strconv.Atoi(get("page_size")); err == nil && size > 0 {
		q.PageSize = size
	}
	if raw := get("page"); raw != "" {
		if page, err := strconv.Atoi(raw); err == nil {
			q.Page = page
		}
	}

	return q, nil
}

func parseID(raw, param string) (*int64, error) {
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, &QueryParamError{Param: param, Reason: "expected an integer id", Summary: fmt.Sprintf("Invalid %s ID", param)}
	}
	return &v, nil
}

func parseInt(raw, param string) (*int, error) {
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return nil, &QueryParamError{Param: param, Reason: "expected an integer"}
	}
	return &v, nil
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04Z07:00",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	"2006-01-02",
}

func parseTimestamp(raw, param string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	for _, layout := range timestampLayouts {
		// Layouts without a zone parse as UTC.
		if t, err := time.Parse(layout, raw); err == nil {
			t = t.UTC()
			return &t, nil
		}
	}
	return nil, &QueryParamError{Param: param, Reason: "expected an ISO-8601 timestamp", Summary: fmt.Sprintf("Invalid %s format", param)}
}

// Scope is a single predicate or ordering stage applied to a product query.
type Scope = func(*gorm.DB) *gorm.DB

// Filters returns one scope per supplied predicate, in parameter order.
// Applying all of them narrows the product set conjunctively.
func (q ProductQuery) Filters() []Scope {
	var scopes []Scope

	if q.TypeID != nil {
		scopes = append(scopes, equals("type_id", *q.TypeID))
	}
	if q.CategoryID != nil {
		id := *q.CategoryID
		scopes = append(scopes, func(db *gorm.DB) *gorm.DB {
			return db.Where("products.type_id IN (?)",
				db.Session(&gorm.Session{NewDB: true}).Model(&Type{}).Select("id").Where("category_id = ?", id))
		})
	}

	scopes = appendContains(scopes, "product_name", q.Name)
	scopes = appendContains(scopes, "throat_standard", q.ThroatStandard)
	scopes = appendInt(scopes, "throat_diameter", q.ThroatDiameter, q.ThroatDiameterRange)
	scopes = appendInt(scopes, "package_volume", q.Volume, q.VolumeRange)
	scopes = appendContains(scopes, "dimensions", q.Dimensions)
	scopes = appendContains(scopes, "compound", q.Compound)

	if q.Color != "" {
		color := q.Color
		scopes = append(scopes, func(db *gorm.DB) *gorm.DB {
			return db.Where("products.id IN (?)",
				db.Session(&gorm.Session{NewDB: true}).Table("product_colors").
					Select("product_colors.product_id").
					Joins("JOIN colors ON colors.id = product_colors.product_color_id").
					Where("colors.color = ?", color))
		})
	}

	scopes = appendContains(scopes, "material", q.Material)
	scopes = appendContains(scopes, "package", q.Package)
	scopes = appendInt(scopes, "weight", q.Weight, q.WeightRange)
	scopes = appendContains(scopes, "application", q.Application)
	scopes = appendContains(scopes, "description", q.Description)
	scopes = appendTime(scopes, "created_at", q.CreatedAt)
	scopes = appendTime(scopes, "updated_at", q.UpdatedAt)

	return scopes
}

// Ordering returns the scope that orders the filtered set. Products are
// ordered by id when no sort field was requested; id always breaks ties.
func (q ProductQuery) Ordering() Scope {
	dir := "ASC"
	if q.Desc {
		dir = "DESC"
	}
	return func(db *gorm.DB) *gorm.DB {
		if col, ok := SortFields[q.Sort]; ok {
			db = db.Order(fmt.Sprintf("products.%s %s", col, dir))
			return db.Order("products.id " + dir)
		}
		return db.Order("products.id ASC")
	}
}

func equals(col string, v any) Scope {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where(fmt.Sprintf("products.%s = ?", col), v)
	}
}

func appendContains(scopes []Scope, col, term string) []Scope {
	if term == "" {
		return scopes
	}
	pattern := "%" + escapeLike(term) + "%"
	return append(scopes, func(db *gorm.DB) *gorm.DB {
		return db.Where(fmt.Sprintf(`UPPER(products.%s) LIKE UPPER(?) ESCAPE '\'`, col), pattern)
	})
}

func appendInt(scopes []Scope, col string, exact *int, r IntRange) []Scope {
	if exact != nil {
		scopes = append(scopes, equals(col, *exact))
	}
	if r.Min != nil {
		lo := *r.Min
		scopes = append(scopes, func(db *gorm.DB) *gorm.DB {
			return db.Where(fmt.Sprintf("products.%s >= ?", col), lo)
		})
	}
	if r.Max != nil {
		hi := *r.Max
		scopes = append(scopes, func(db *gorm.DB) *gorm.DB {
			return db.Where(fmt.Sprintf("products.%s <= ?", col), hi)
		})
	}
	return scopes
}

func appendTime(scopes []Scope, col string, r TimeRange) []Scope {
	if r.Min != nil {
		lo := *r.Min
		scopes = append(scopes, func(db *gorm.DB) *gorm.DB {
			return db.Where(fmt.Sprintf("products.%s >= ?", col), lo)
		})
	}
	if r.Max != nil {
		hi := *r.Max
		scopes = append(scopes, func(db *gorm.DB) *gorm.DB {
			return db.Where(fmt.Sprintf("products.%s <= ?", col), hi)
		})
	}
	return scopes
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

// Page describes one slice of a paginated result.
type Page struct {
	Count       int64
	TotalPages  int
	Number      int
	Size        int
	HasNext     bool
	HasPrevious bool
}

// Offset is the number of rows to skip for this page.
func (p Page) Offset() int {
	return (p.Number - 1) * p.Size
}

// Paginate clamps the requested page into [1, TotalPages]. Requests below 1 or
// beyond the last page land on the last page. An empty set has one empty page.
func Paginate(count int64, requested, size int) Page {
	if size <= 0 {
		size = DefaultPageSize
	}
	total := int((count + int64(size) - 1) / int64(size))
	if total < 1 {
		total = 1
	}
	number := requested
	if number < 1 || number > total {
		number = total
	}
	return Page{
		Count:       count,
		TotalPages:  total,
		Number:      number,
		Size:        size,
		HasNext:     number < total,
		HasPrevious: number > 1,
	}
}

// ParseIDParam validates an optional integer id query parameter.
func ParseIDParam(raw, param string) (*int64, error) {
	return parseID(strings.TrimSpace(raw), param)
}
