package types

// Conversion is the classification of a conversion between two types.
type Conversion int

// Enumeration of conversion classes.
const (
	// The conversion is not possible.
	ConvNone Conversion = iota

	// The types are the same: no conversion is needed.
	ConvIdentity

	// The conversion is widening and may be inserted silently.
	ConvImplicit

	// The conversion is narrowing or changes representation.  It is only legal
	// through an explicit conversion.
	ConvExplicit

	// The conversion of a constant that can be folded at compile time.
	ConvImmediate
)

func (c Conversion) String() string {
	switch c {
	case ConvIdentity:
		return "identity"
	case ConvImplicit:
		return "implicit"
	case ConvExplicit:
		return "explicit"
	case ConvImmediate:
		return "immediate"
	default:
		return "none"
	}
}

// IsSilent returns whether the conversion may be inserted without being
// written explicitly.
func (c Conversion) IsSilent() bool {
	return c == ConvIdentity || c == ConvImplicit || c == ConvImmediate
}

// Classify classifies the conversion of a non-constant value of type `from`
// to the type `to`.
func Classify(from, to *Type) Conversion {
	return classify(from, nil, false, to)
}

// ClassifyLiteral classifies the conversion of the constant `value` of type
// `from` to the type `to`.  Constants can undergo immediate conversions that
// other values can't.
func ClassifyLiteral(from *Type, value interface{}, to *Type) Conversion {
	return classify(from, value, true, to)
}

func classify(from *Type, value interface{}, isLiteral bool, to *Type) Conversion {
	// Error-typed operands have already been reported.
	if from.IsError() || to.IsError() {
		return ConvIdentity
	}

	if from.Equals(to) {
		return ConvIdentity
	}

	switch from.Kind {
	case KindNull:
		if to.IsPointer() || to.Kind == KindFunction {
			return ConvImplicit
		}
	case KindByte:
		switch to.Kind {
		case KindInt, KindFloat:
			return ConvImplicit
		case KindBool, KindString:
			return ConvExplicit
		}
	case KindInt:
		switch to.Kind {
		case KindFloat:
			return ConvImplicit
		case KindByte:
			if isLiteral && fitsInByte(value) {
				return ConvImmediate
			}

			return ConvExplicit
		case KindBool, KindString:
			return ConvExplicit
		}
	case KindFloat:
		switch to.Kind {
		case KindInt, KindByte, KindString:
			return ConvExplicit
		}
	case KindBool:
		switch to.Kind {
		case KindInt, KindByte, KindString:
			return ConvExplicit
		}
	case KindString:
		switch to.Kind {
		case KindInt, KindFloat, KindByte, KindBool:
			return ConvExplicit
		}
	case KindPointer:
		if to.IsPointer() {
			return ConvExplicit
		}
	}

	return ConvNone
}

func fitsInByte(value interface{}) bool {
	var n int64
	switch v := value.(type) {
	case int32:
		n = int64(v)
	case int64:
		n = v
	case int:
		n = int64(v)
	default:
		return false
	}

	return 0 <= n && n <= 255
}
