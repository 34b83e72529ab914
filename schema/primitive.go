package schema

import "github.com/reoring/fhirview/node"

// Primitive enumerates the FHIR primitive datatypes a field can hold.
type Primitive int

const (
	NotPrimitive Primitive = iota
	Boolean
	Integer
	PositiveInt
	UnsignedInt
	Decimal
	String
	Code
	ID
	URI
	URL
	Canonical
	OID
	UUID
	Markdown
	Base64Binary
	Date
	DateTime
	Instant
	Time
	XHTML
)

var primitiveNames = [...]string{
	NotPrimitive: "",
	Boolean:      "boolean",
	Integer:      "integer",
	PositiveInt:  "positiveInt",
	UnsignedInt:  "unsignedInt",
	Decimal:      "decimal",
	String:       "string",
	Code:         "code",
	ID:           "id",
	URI:          "uri",
	URL:          "url",
	Canonical:    "canonical",
	OID:          "oid",
	UUID:         "uuid",
	Markdown:     "markdown",
	Base64Binary: "base64Binary",
	Date:         "date",
	DateTime:     "dateTime",
	Instant:      "instant",
	Time:         "time",
	XHTML:        "xhtml",
}

var primitiveByName = func() map[string]Primitive {
	m := make(map[string]Primitive, len(primitiveNames))
	for p, name := range primitiveNames {
		if name != "" {
			m[name] = Primitive(p)
		}
	}
	return m
}()

// String returns the FHIR name of the primitive ("dateTime", "code", ...).
func (p Primitive) String() string {
	if p < 0 || int(p) >= len(primitiveNames) {
		return ""
	}
	return primitiveNames[p]
}

// ParsePrimitive looks up a primitive by its FHIR name.
func ParsePrimitive(name string) (Primitive, bool) {
	p, ok := primitiveByName[name]
	return p, ok
}

// Kind is the node kind a value of the primitive is stored as in JSON.
func (p Primitive) Kind() node.Kind {
	switch p {
	case NotPrimitive:
		return node.KindObject
	case Boolean:
		return node.KindBool
	case Integer, PositiveInt, UnsignedInt, Decimal:
		return node.KindNumber
	default:
		return node.KindString
	}
}

// IsTemporal reports whether the primitive is date, dateTime, instant or time.
func (p Primitive) IsTemporal() bool {
	switch p {
	case Date, DateTime, Instant, Time:
		return true
	}
	return false
}

// IsInteger reports whether the primitive only admits whole numbers.
func (p Primitive) IsInteger() bool {
	return p == Integer || p == PositiveInt || p == UnsignedInt
}
