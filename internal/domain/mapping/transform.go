package mapping

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/dibaisales/central/internal/domain/normalize"
)

// TransformFunc derives one value from the values of its input columns.
// Absent inputs are passed as "".
type TransformFunc func(values ...string) string

// Names of the built-in transforms.
const (
	TransformTrim           = "trim"
	TransformClean          = "clean"
	TransformPhone          = "phone"
	TransformFirstPhone     = "first_phone"
	TransformDigits         = "digits"
	TransformAddressNumber  = "address_number"
	TransformEmployeeBucket = "employee_bucket"
	TransformCompanyAge     = "company_age"
	TransformDate           = "date"
	TransformFacebookLink   = "facebook_link"
	TransformInstagramLink  = "instagram_link"
	TransformFacebookField  = "facebook_field"
	TransformInstagramField = "instagram_field"
	TransformCallScript     = "call_script"
)

// TransformRegistry holds named transforms referenced by Derived sources.
type TransformRegistry struct {
	transforms map[string]TransformFunc
	now        func() time.Time
}

// RegistryOption configures a TransformRegistry.
type RegistryOption func(*TransformRegistry)

// WithClock sets the clock used by date-relative transforms.
func WithClock(now func() time.Time) RegistryOption {
	return func(r *TransformRegistry) {
		r.now = now
	}
}

// NewTransformRegistry creates a registry preloaded with the built-in transforms.
func NewTransformRegistry(opts ...RegistryOption) *TransformRegistry {
	r := &TransformRegistry{
		transforms: make(map[string]TransformFunc),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}

	r.Add(TransformTrim, unary(strings.TrimSpace))
	r.Add(TransformClean, unary(normalize.Clean))
	r.Add(TransformPhone, unary(normalize.Phone))
	r.Add(TransformFirstPhone, normalize.FirstPhone)
	r.Add(TransformDigits, unary(normalize.Digits))
	r.Add(TransformAddressNumber, unary(normalize.AddressNumber))
	r.Add(TransformEmployeeBucket, unary(normalize.EmployeeBucketText))
	r.Add(TransformCompanyAge, unary(func(v string) string {
		return normalize.CompanyAge(v, r.now())
	}))
	r.Add(TransformDate, unary(normalize.FormatDayFirst))
	r.Add(TransformFacebookLink, unary(func(v string) string {
		fb, _ := normalize.SocialLinks(v)
		return fb
	}))
	r.Add(TransformInstagramLink, unary(func(v string) string {
		_, ig := normalize.SocialLinks(v)
		return ig
	}))
	r.Add(TransformFacebookField, unary(normalize.FacebookField))
	r.Add(TransformInstagramField, unary(normalize.InstagramField))
	r.Add(TransformCallScript, callScript)

	return r
}

// Add registers or replaces a transform.
func (r *TransformRegistry) Add(name string, fn TransformFunc) {
	r.transforms[name] = fn
}

// Get returns a transform by name.
func (r *TransformRegistry) Get(name string) (TransformFunc, bool) {
	fn, ok := r.transforms[name]
	return fn, ok
}

// Names returns the registered transform names, sorted.
func (r *TransformRegistry) Names() []string {
	names := make([]string, 0, len(r.transforms))
	for n := range r.transforms {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Validate checks that every transform referenced by schema is registered.
func (r *TransformRegistry) Validate(schema Schema) error {
	for _, f := range schema.Fields {
		switch f.Source.Kind {
		case FromTransform, FromPattern, FromTargets:
			if _, ok := r.transforms[f.Source.Transform]; !ok {
				return fmt.Errorf("schema %s: column %q references unknown transform %q",
					schema.Name, f.Target, f.Source.Transform)
			}
		}
	}
	return nil
}

func unary(fn func(string) string) TransformFunc {
	return func(values ...string) string {
		if len(values) == 0 {
			return fn("")
		}
		return fn(values[0])
	}
}

// CallScriptTemplate is the outbound call script handed to the voice agent
// for each partner phone number.
const CallScriptTemplate = "Angela-Dibai Sales. OBJETIVO: Confirmar se número é de {name} ({business}). " +
	"ABERTURA: Olá! Angela da Dibai Sales. Este número é de {name} da {business}? " +
	"CENÁRIOS: A)Sim=Silêncio+Log CONFIRMADO. " +
	"B)Não=Desculpe+Log ERRADO. " +
	"C)Conheço=Pedir número de {name}+Log NOVO. " +
	"D)Quem é?=Yasmin sobre marketing {business}."

// callScript renders CallScriptTemplate for (name, business).
func callScript(values ...string) string {
	var name, business string
	if len(values) > 0 {
		name = values[0]
	}
	if len(values) > 1 {
		business = values[1]
	}
	return strings.NewReplacer("{name}", name, "{business}", business).Replace(CallScriptTemplate)
}
