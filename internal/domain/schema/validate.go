package schema

import (
	"encoding/json"
	"fmt"
	"math"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"blocks-cms/internal/domain/errs"

	"github.com/google/uuid"
)

const dateLayout = "2006-01-02"

var (
	languageCodeRe = regexp.MustCompile(`^[a-z]{2}(-[A-Z]{2})?$`)
	versionRe      = regexp.MustCompile(`^\d+\.\d+\.\d+$`)
	buildRe        = regexp.MustCompile(`^\d+(\.\d+)*$`)
	licenseKeyRe   = regexp.MustCompile(`^[A-Za-z0-9-]+$`)
)

// ValidLanguageCode reports whether code matches the locale grammar
// ("en", "en-US").
func ValidLanguageCode(code string) bool { return languageCodeRe.MatchString(code) }

// NewLicenseKey returns a fresh key in the canonical 36 char form.
func NewLicenseKey() string { return strings.ToUpper(uuid.NewString()) }

// Validate checks raw against def and returns the normalized value.
// A nil raw means the value is absent.
func Validate(def *AttributeDefinition, raw any) (any, error) {
	if isAbsent(def, raw) {
		if def.Default != nil && raw == nil {
			raw = def.Default
		} else if def.Required {
			return nil, errs.Missing(def.Name)
		} else {
			return nil, nil
		}
	}

	if def.Type.IsText() {
		return validateText(def, raw)
	}

	switch def.Type {
	case TypeInteger:
		return validateInteger(def, raw)
	case TypeBoolean:
		return validateBoolean(def, raw)
	case TypeDate:
		return validateDate(def, raw)
	case TypeJSON:
		return validateJSON(def, raw)
	case TypeLanguage:
		s, err := asString(def, raw)
		if err != nil {
			return nil, err
		}
		if !ValidLanguageCode(s) {
			return nil, errs.Invalid(def.Name, "%q is not a valid language code", s)
		}
		return s, nil
	case TypeVersion:
		return matchGrammar(def, raw, versionRe, "dotted version (1.2.3)")
	case TypeBuild:
		return matchGrammar(def, raw, buildRe, "dotted build number")
	case TypeURL:
		s, err := asString(def, raw)
		if err != nil {
			return nil, err
		}
		u, perr := url.Parse(s)
		if perr != nil || u.Scheme == "" || u.Host == "" {
			return nil, errs.Invalid(def.Name, "%q is not an absolute URL", s)
		}
		if err := checkLength(def, s); err != nil {
			return nil, err
		}
		return s, nil
	case TypeLicenseKey:
		s, err := asString(def, raw)
		if err != nil {
			return nil, err
		}
		size := def.MaxLength
		if size == 0 {
			size = licenseKeySize
		}
		if len(s) != size || !licenseKeyRe.MatchString(s) {
			return nil, errs.Invalid(def.Name, "license key must be %d alphanumeric characters", size)
		}
		return s, nil
	}
	return nil, errs.Invalid(def.Name, "unknown type %q", def.Type)
}

func isAbsent(def *AttributeDefinition, raw any) bool {
	if raw == nil {
		return true
	}
	if s, ok := raw.(string); ok && def.Type != TypeJSON {
		return strings.TrimSpace(s) == ""
	}
	return false
}

func asString(def *AttributeDefinition, raw any) (string, error) {
	switch v := raw.(type) {
	case string:
		return v, nil
	case []byte:
		return string(v), nil
	}
	return "", errs.Invalid(def.Name, "expected a string, got %T", raw)
}

func checkLength(def *AttributeDefinition, s string) error {
	n := utf8.RuneCountInString(s)
	if def.MaxLength > 0 && n > def.MaxLength {
		return errs.Invalid(def.Name, "must be at most %d characters", def.MaxLength)
	}
	if def.MinLength > 0 && n < def.MinLength {
		return errs.Invalid(def.Name, "must be at least %d characters", def.MinLength)
	}
	return nil
}

func validateText(def *AttributeDefinition, raw any) (any, error) {
	s, err := asString(def, raw)
	if err != nil {
		return nil, err
	}
	if def.Type == TypeName {
		s = strings.TrimSpace(s)
	}
	if err := checkLength(def, s); err != nil {
		return nil, err
	}
	return s, nil
}

func matchGrammar(def *AttributeDefinition, raw any, re *regexp.Regexp, what string) (any, error) {
	s, err := asString(def, raw)
	if err != nil {
		return nil, err
	}
	if !re.MatchString(s) {
		return nil, errs.Invalid(def.Name, "%q is not a %s", s, what)
	}
	return s, nil
}

func validateInteger(def *AttributeDefinition, raw any) (any, error) {
	var n int64
	switch v := raw.(type) {
	case int:
		n = int64(v)
	case int8:
		n = int64(v)
	case int16:
		n = int64(v)
	case int32:
		n = int64(v)
	case int64:
		n = v
	case uint:
		return validateInteger(def, uint64(v))
	case uint8:
		n = int64(v)
	case uint16:
		n = int64(v)
	case uint32:
		n = int64(v)
	case uint64:
		if v > math.MaxInt64 {
			return nil, errs.Invalid(def.Name, "integer out of range")
		}
		n = int64(v)
	case float32:
		return validateInteger(def, float64(v))
	case float64:
		if v != math.Trunc(v) || math.IsInf(v, 0) || math.IsNaN(v) {
			return nil, errs.Invalid(def.Name, "%v is not an integer", v)
		}
		// float64(math.MaxInt64) rounds up to 2^63
		if v < math.MinInt64 || v >= math.MaxInt64 {
			return nil, errs.Invalid(def.Name, "integer out of range")
		}
		n = int64(v)
	case json.Number:
		i, err := v.Int64()
		if err != nil {
			return nil, errs.Invalid(def.Name, "%q is not an integer", v.String())
		}
		n = i
	case string:
		i, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil {
			return nil, errs.Invalid(def.Name, "%q is not an integer", v)
		}
		n = i
	case bool:
		return nil, errs.Invalid(def.Name, "expected an integer, got bool")
	default:
		return nil, errs.Invalid(def.Name, "expected an integer, got %T", raw)
	}
	if def.Min != nil && n < *def.Min {
		return nil, errs.Invalid(def.Name, "must be >= %d", *def.Min)
	}
	if def.Max != nil && n > *def.Max {
		return nil, errs.Invalid(def.Name, "must be <= %d", *def.Max)
	}
	return n, nil
}

func validateBoolean(def *AttributeDefinition, raw any) (any, error) {
	switch v := raw.(type) {
	case bool:
		return v, nil
	case string:
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return nil, errs.Invalid(def.Name, "%q is not a boolean", v)
		}
		return b, nil
	case int, int64, float64:
		switch fmt.Sprint(v) {
		case "0":
			return false, nil
		case "1":
			return true, nil
		}
		return nil, errs.Invalid(def.Name, "%v is not a boolean", v)
	}
	return nil, errs.Invalid(def.Name, "expected a boolean, got %T", raw)
}

func validateDate(def *AttributeDefinition, raw any) (any, error) {
	switch v := raw.(type) {
	case time.Time:
		return v.UTC(), nil
	case *time.Time:
		if v == nil {
			return nil, errs.Invalid(def.Name, "expected a date")
		}
		return v.UTC(), nil
	case string:
		s := strings.TrimSpace(v)
		if t, err := time.Parse(dateLayout, s); err == nil {
			return t.UTC(), nil
		}
		if t, err := time.Parse(time.RFC3339, s); err == nil {
			return t.UTC(), nil
		}
		return nil, errs.Invalid(def.Name, "%q is not a date (YYYY-MM-DD or RFC3339)", v)
	}
	return nil, errs.Invalid(def.Name, "expected a date, got %T", raw)
}

func validateJSON(def *AttributeDefinition, raw any) (any, error) {
	var data []byte
	switch v := raw.(type) {
	case string:
		data = []byte(v)
	case []byte:
		data = v
	case json.RawMessage:
		data = v
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return nil, errs.Invalid(def.Name, "not encodable as JSON: %v", err)
		}
		data = b
	}
	var out any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, errs.Invalid(def.Name, "invalid JSON: %v", err)
	}
	switch out.(type) {
	case map[string]any, []any:
		return out, nil
	}
	return nil, errs.Invalid(def.Name, "JSON value must be an object or array")
}
